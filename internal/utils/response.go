package utils

import (
	"net/http"
	"time"

	"ridelink/internal/apperrors"

	"github.com/gin-gonic/gin"
)

type APIResponse struct {
	Status    string      `json:"status"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Meta      *Meta       `json:"meta,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Meta struct {
	Pagination *PaginationMeta `json:"pagination,omitempty"`
}

func SuccessResponse(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Status:    StatusSuccess,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	})
}

func SuccessResponseWithMeta(c *gin.Context, message string, data interface{}, meta *Meta) {
	c.JSON(http.StatusOK, APIResponse{
		Status:    StatusSuccess,
		Message:   message,
		Data:      data,
		Meta:      meta,
		Timestamp: time.Now(),
	})
}

func CreatedResponse(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{
		Status:    StatusSuccess,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	})
}

func ErrorResponse(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, APIResponse{
		Status: StatusError,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
		Timestamp: time.Now(),
	})
}

func BadRequestResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusBadRequest, "BAD_REQUEST", message)
}

// AppErrorResponse maps an engine error kind to the HTTP surface.
func AppErrorResponse(c *gin.Context, err error) {
	kind := apperrors.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		ErrorResponse(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}
	ErrorResponse(c, status, kindCode(kind), err.Error())
}

var kindStatus = map[apperrors.Kind]int{
	apperrors.KindValidation:        http.StatusBadRequest,
	apperrors.KindNotFound:          http.StatusNotFound,
	apperrors.KindForbidden:         http.StatusForbidden,
	apperrors.KindConflict:          http.StatusConflict,
	apperrors.KindInvalidTransition: http.StatusConflict,
	apperrors.KindExpired:           http.StatusGone,
	apperrors.KindInsufficientFunds: http.StatusPaymentRequired,
}

func kindCode(kind apperrors.Kind) string {
	switch kind {
	case apperrors.KindValidation:
		return "VALIDATION_ERROR"
	case apperrors.KindNotFound:
		return "NOT_FOUND"
	case apperrors.KindForbidden:
		return "FORBIDDEN"
	case apperrors.KindConflict:
		return "CONFLICT"
	case apperrors.KindInvalidTransition:
		return "INVALID_TRANSITION"
	case apperrors.KindExpired:
		return "EXPIRED"
	case apperrors.KindInsufficientFunds:
		return "INSUFFICIENT_FUNDS"
	}
	return "INTERNAL_ERROR"
}
