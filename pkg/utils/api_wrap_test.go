package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serveError(t *testing.T, err error, expose bool) (int, APIResponse) {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set("trace_id", "trace-1")
	c.Set(ExposeErrorsKey, expose)

	HandleServiceError(c, err)

	var body APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return w.Code, body
}

func TestHandleServiceError_AppError(t *testing.T) {
	code, body := serveError(t, fmt.Errorf("wrapped: %w", ErrTipAlreadyPaid), true)

	if code != http.StatusBadRequest || body.Code != http.StatusBadRequest {
		t.Errorf("status = %d/%d, want 400", code, body.Code)
	}
	if body.Message != ErrTipAlreadyPaid.Message || body.MessageSv != ErrTipAlreadyPaid.MessageSv {
		t.Errorf("messages = %q / %q", body.Message, body.MessageSv)
	}
	if body.Error != "" {
		t.Error("client errors carry no raw error text")
	}
	if body.TraceID != "trace-1" {
		t.Errorf("trace_id = %q", body.TraceID)
	}
}

func TestHandleServiceError_Unexpected(t *testing.T) {
	err := errors.New("connection refused")

	code, body := serveError(t, err, true)
	if code != http.StatusInternalServerError || body.Error != "connection refused" {
		t.Errorf("exposed: status = %d, error = %q", code, body.Error)
	}

	code, body = serveError(t, err, false)
	if code != http.StatusInternalServerError || body.Error != "" {
		t.Errorf("hidden: status = %d, error = %q", code, body.Error)
	}
	if body.MessageSv != "Internt serverfel" {
		t.Errorf("messageSv = %q", body.MessageSv)
	}
}
