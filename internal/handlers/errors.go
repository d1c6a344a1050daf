package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"commerce-api/internal/errs"
)

// writeError maps the error taxonomy onto HTTP responses. Storage
// failures and anything unrecognized are logged with detail and
// surfaced as a generic 503; internals never reach the client.
func writeError(c *gin.Context, log *slog.Logger, err error) {
	var stockErr *errs.InsufficientStockError
	var validationErr *errs.ValidationError

	switch {
	case errors.As(err, &stockErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "insufficient stock",
			"stock":     stockErr.Stock,
			"in_cart":   stockErr.InCart,
			"requested": stockErr.Requested,
		})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
	case errors.Is(err, errs.ErrInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ID"})
	case errors.Is(err, errs.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"error": errs.ErrInvalidQuantity.Error()})
	case errors.Is(err, errs.ErrProductUnavailable):
		c.JSON(http.StatusBadRequest, gin.H{"error": "product is not available"})
	case errors.Is(err, errs.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": errs.ErrItemNotFound.Error()})
	case errors.Is(err, errs.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		log.Error("storage failure",
			"error", err.Error(),
			"request_id", RequestID(c),
		)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable"})
	}
}
