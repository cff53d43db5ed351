package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"kase/internal/app/dto"
	"kase/internal/app/policies"
	domaincheckout "kase/internal/domain/checkout"
	domainlistings "kase/internal/domain/listings"
)

// writeError maps domain and collaborator errors onto HTTP statuses.
// Validation failures keep their field scoping so the UI can render inline
// messages; booking API rejections keep the server's wording.
func writeError(c *gin.Context, err error) {
	if ve, ok := domaincheckout.AsValidation(err); ok {
		out := make([]dto.FieldErrorDTO, 0, len(ve.Violations))
		for _, v := range ve.Violations {
			out = append(out, dto.FieldErrorDTO{Field: v.Field, Message: v.Message})
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "violations": out})
		return
	}

	var apiErr *policies.BookingError
	if errors.As(err, &apiErr) {
		c.JSON(http.StatusBadGateway, gin.H{"error": apiErr.Message})
		return
	}

	switch {
	case errors.Is(err, domaincheckout.ErrSessionNotFound),
		errors.Is(err, domainlistings.ErrListingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domaincheckout.ErrSubmitInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domaincheckout.ErrInvalidStep):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
