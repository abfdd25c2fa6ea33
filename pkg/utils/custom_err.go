package utils

import (
	"errors"
	"net/http"
)

// AppError is a client-facing failure with an HTTP status and the English and
// Swedish texts shown by the frontend.
type AppError struct {
	Status    int
	Message   string
	MessageSv string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrOrderNotFound = &AppError{
		Status:    http.StatusNotFound,
		Message:   "Order not found or does not belong to you",
		MessageSv: "Beställningen hittades inte eller tillhör inte dig",
	}
	ErrOrderDetailsNotFound = &AppError{
		Status:    http.StatusNotFound,
		Message:   "Order details not found",
		MessageSv: "Beställningsdetaljer hittades inte",
	}
	ErrTipAlreadyPaid = &AppError{
		Status:    http.StatusBadRequest,
		Message:   "A tip has already been paid for this order",
		MessageSv: "Dricks har redan betalats för denna beställning",
	}
	ErrNoDriverAssigned = &AppError{
		Status:    http.StatusBadRequest,
		Message:   "No driver has been assigned to this order yet",
		MessageSv: "Ingen förare har tilldelats denna beställning ännu",
	}
	ErrInvalidTipAmount = &AppError{
		Status:    http.StatusBadRequest,
		Message:   "Tip amount must be greater than zero",
		MessageSv: "Dricksbeloppet måste vara större än noll",
	}
	ErrInvalidPayoutRequest = &AppError{
		Status:    http.StatusBadRequest,
		Message:   "driverEmail or driverId and a non-empty orderIds array are required",
		MessageSv: "driverEmail eller driverId och en icke-tom orderIds-lista krävs",
	}
	ErrInvalidPayload = &AppError{
		Status:    http.StatusBadRequest,
		Message:   "Invalid request payload",
		MessageSv: "Ogiltig begäran",
	}

	ErrDatabaseError = errors.New("database error")
)
