package controllers

import (
	"github.com/gin-gonic/gin"

	"flyttman/internal/models/request_models"
	"flyttman/internal/repositories"
	"flyttman/internal/services"
	"flyttman/pkg/utils"
)

type AdminTipController struct {
	reportService services.TipReportService
	payoutService services.TipPayoutService
}

func NewAdminTipController(reportService services.TipReportService, payoutService services.TipPayoutService) *AdminTipController {
	return &AdminTipController{
		reportService: reportService,
		payoutService: payoutService,
	}
}

// GetAdminTips godoc
// @Summary Collected tips per driver with supplier banking details and payout totals
// @Tags Admin
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/tips [get]
func (a *AdminTipController) GetAdminTips(c *gin.Context) {
	report, err := a.reportService.GetAdminTips(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, report, "Tips fetched successfully", "Dricks hämtade")
}

// MarkTipsAsPaid godoc
// @Summary Mark a driver's collected tips as paid out
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body request_models.MarkTipsPaidRequest true "Driver and order ids"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/mark-paid [post]
func (a *AdminTipController) MarkTipsAsPaid(c *gin.Context) {
	var request request_models.MarkTipsPaidRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.HandleServiceError(c, utils.ErrInvalidPayoutRequest)
		return
	}

	rows, err := a.payoutService.MarkTipsAsPaid(c.Request.Context(),
		repositories.DriverRef{Email: request.DriverEmail, ID: request.DriverID},
		request.OrderIDs)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, rows, "Tips marked as paid", "Dricks markerade som utbetalda")
}
