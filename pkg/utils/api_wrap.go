package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ExposeErrorsKey is the gin context key deciding whether raw internal error
// texts are echoed to clients.
const ExposeErrorsKey = "expose_errors"

type APIResponse struct {
	Success   bool        `json:"success"`
	Code      int         `json:"code"`
	Message   string      `json:"message,omitempty"`
	MessageSv string      `json:"messageSv,omitempty"`
	Error     string      `json:"error,omitempty"`
	TraceID   string      `json:"trace_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

func RespondSuccess(c *gin.Context, data interface{}, message, messageSv string) {
	c.JSON(http.StatusOK, APIResponse{
		Success:   true,
		Code:      http.StatusOK,
		Message:   message,
		MessageSv: messageSv,
		TraceID:   c.GetString("trace_id"),
		Data:      data,
	})
}

func RespondError(c *gin.Context, code int, message, messageSv string) {
	c.JSON(code, APIResponse{
		Success:   false,
		Code:      code,
		Message:   message,
		MessageSv: messageSv,
		TraceID:   c.GetString("trace_id"),
	})
}

func HandleServiceError(c *gin.Context, err error) {
	traceID := c.GetString("trace_id")

	var appErr *AppError
	if errors.As(err, &appErr) {
		RespondError(c, appErr.Status, appErr.Message, appErr.MessageSv)
		return
	}

	if errors.Is(err, ErrDatabaseError) {
		zap.L().Error("database error", zap.String("trace_id", traceID), zap.Error(err))
	} else {
		zap.L().Error("unhandled service error", zap.String("trace_id", traceID), zap.Error(err))
	}

	resp := APIResponse{
		Success:   false,
		Code:      http.StatusInternalServerError,
		Message:   "Internal server error",
		MessageSv: "Internt serverfel",
		TraceID:   traceID,
	}
	if c.GetBool(ExposeErrorsKey) {
		resp.Error = err.Error()
	}
	c.JSON(http.StatusInternalServerError, resp)
}
