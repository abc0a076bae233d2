package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/showtrail/agjournal-backend/internal/services"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
	Meta  gin.H    `json:"meta,omitempty"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondServiceError maps the suggestion core's typed errors onto HTTP
// statuses. Anything untyped becomes a 500.
func RespondServiceError(c *gin.Context, err error) {
	var vErr *services.ValidationError
	if errors.As(err, &vErr) {
		RespondError(c, http.StatusBadRequest, services.CodeValidationError, err)
		return
	}
	var cErr *services.ConsentRequiredError
	if errors.As(err, &cErr) {
		c.JSON(http.StatusForbidden, ErrorEnvelope{
			Error: APIError{
				Message: "parental consent required",
				Code:    services.CodeConsentRequired,
			},
			Meta: gin.H{"fallback_available": cErr.FallbackAvailable},
		})
		return
	}
	var rErr *services.RateLimitError
	if errors.As(err, &rErr) {
		c.JSON(http.StatusTooManyRequests, ErrorEnvelope{
			Error: APIError{
				Message: "daily generation limit reached",
				Code:    services.CodeRateLimitExceeded,
			},
			Meta: gin.H{
				"current_usage": rErr.CurrentUsage,
				"daily_limit":   rErr.DailyLimit,
				"resets_at":     rErr.ResetsAt.UTC().Format(time.RFC3339),
			},
		})
		return
	}
	RespondError(c, http.StatusInternalServerError, "", err)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
