package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/h4ks-com/farmhand/internal/services"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func statusFor(kind string) int {
	switch kind {
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindInvalidState, services.KindImmutableState:
		return http.StatusConflict
	case services.KindPrecondition:
		return http.StatusPreconditionFailed
	case services.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err with the status for its kind. The message is passed through unchanged.
func respondError(c *gin.Context, err error) {
	kind := services.Kind(err)
	_ = c.Error(err)
	c.JSON(statusFor(kind), ErrorResponse{Error: err.Error(), Kind: kind})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, Kind: services.KindValidation})
}

func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

const dateTimeLayout = time.RFC3339

func parseDay(value string) (time.Time, error) {
	return services.ParseDay(value)
}

func parseOptionalDay(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := services.ParseDay(value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
