package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/gin-gonic/gin"
)

// fail writes the error envelope. Storage errors surface with their
// generic message only; wrapped driver errors stay out of responses.
func fail(c *gin.Context, err error) {
	c.JSON(statusOf(err), gin.H{
		"message": messageOf(err),
		"error":   string(domain.KindOf(err)),
	})
}

func statusOf(err error) int {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func messageOf(err error) string {
	var e *domain.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}

const dateLayout = "2006-01-02"

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, domain.Validationf("invalid date format, use YYYY-MM-DD")
	}
	return t, nil
}
