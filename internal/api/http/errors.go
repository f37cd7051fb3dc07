package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/novaframes/content-admin/internal/logger"
	"github.com/novaframes/content-admin/internal/records/domain"
)

// statusFor maps service errors onto a status and a static message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "record not found"
	case errors.Is(err, domain.ErrBusy):
		return http.StatusConflict, "another submission is in flight"
	case errors.Is(err, domain.ErrInvalidIcon):
		return http.StatusBadRequest, "invalid icon"
	case errors.Is(err, domain.ErrInvalidRecord):
		return http.StatusBadRequest, "invalid record"
	case errors.Is(err, domain.ErrIndexOutOfRange):
		return http.StatusBadRequest, "index out of range"
	case errors.Is(err, domain.ErrUnknownCollection):
		return http.StatusBadRequest, "unknown collection"
	case errors.Is(err, domain.ErrUploadFailed):
		return http.StatusUnprocessableEntity, "upload failed"
	case errors.Is(err, domain.ErrWriteRejected):
		return http.StatusUnprocessableEntity, "write rejected"
	case errors.Is(err, domain.ErrRemoteUnavailable):
		return http.StatusServiceUnavailable, "remote store unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "request timed out"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func writeError(c *gin.Context, op string, err error) {
	status, msg := statusFor(err)
	l := logger.For(c.Request.Context(), op)
	if status >= http.StatusInternalServerError {
		l.Error("request failed", zap.Int("status", status), zap.Error(err))
	} else {
		l.Warn("request rejected", zap.Int("status", status), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": msg})
}
