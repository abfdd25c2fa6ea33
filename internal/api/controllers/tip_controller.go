package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"flyttman/internal/models/request_models"
	"flyttman/internal/models/response_models"
	"flyttman/internal/services"
	"flyttman/pkg/utils"
)

type TipController struct {
	tipService    services.TipServiceInterface
	reportService services.TipReportService
}

func NewTipController(tipService services.TipServiceInterface, reportService services.TipReportService) *TipController {
	return &TipController{
		tipService:    tipService,
		reportService: reportService,
	}
}

// AddTip godoc
// @Summary Start a tip payment for an order
// @Description Creates a Stripe PaymentIntent for a tip to the order's assigned driver and records the tip as pending
// @Tags Tips
// @Accept json
// @Produce json
// @Param orderId path string true "Order ID"
// @Param request body request_models.AddTipRequest true "Tip amount and optional message"
// @Success 200 {object} response_models.AddTipResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /order/{orderId}/tip [post]
func (t *TipController) AddTip(c *gin.Context) {
	var request request_models.AddTipRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.HandleServiceError(c, utils.ErrInvalidPayload)
		return
	}

	result, err := t.tipService.AddTip(c.Request.Context(), services.AddTipInput{
		OrderID:       c.Param("orderId"),
		CustomerID:    c.GetString("user_id"),
		CustomerEmail: c.GetString("email"),
		Amount:        request.Amount,
		Message:       request.Message,
	})
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response_models.AddTipResponse{
		Success:      true,
		ClientSecret: result.ClientSecret,
		Message:      "Tip payment initiated",
		MessageSv:    "Dricksbetalning initierad",
	})
}

// GetDriverTips godoc
// @Summary List tips received by the calling driver
// @Tags Tips
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /driver/tips [get]
func (t *TipController) GetDriverTips(c *gin.Context) {
	tips, err := t.reportService.GetDriverTips(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, tips, "Tips fetched successfully", "Dricks hämtade")
}

// GetSupplierTips godoc
// @Summary List tips received by the calling supplier's drivers, grouped per driver
// @Tags Tips
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /supplier/driver-tips [get]
func (t *TipController) GetSupplierTips(c *gin.Context) {
	report, err := t.reportService.GetSupplierTips(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, report, "Driver tips fetched successfully", "Förarnas dricks hämtade")
}
