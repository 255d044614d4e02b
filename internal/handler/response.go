package handler

import (
	"errors"
	"net/http"

	"soko/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{Success: true, Message: message, Data: data})
}

func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "something went wrong"
	switch {
	case errors.Is(err, service.ErrWalletNotFound),
		errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrTransactionNotFound),
		errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrCategoryNotFound),
		errors.Is(err, service.ErrRatingNotFound),
		errors.Is(err, service.ErrUserNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, service.ErrInsufficientBalance),
		errors.Is(err, service.ErrWalletSuspended),
		errors.Is(err, service.ErrSelfTransfer),
		errors.Is(err, service.ErrInvalidPaymentMethod),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrPaymentInit),
		errors.Is(err, service.ErrEmailExists),
		errors.Is(err, service.ErrCategoryExists):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, service.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		message = err.Error()
	case errors.Is(err, service.ErrVerificationFailed):
		status = http.StatusBadGateway
		message = err.Error()
	default:
		logrus.WithError(err).Error("unhandled request error")
	}
	c.JSON(status, Response{Success: false, Message: message})
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Message: message})
}
