package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/h4ks-com/farmhand/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestRespondError_StatusByKind(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err    error
		status int
		kind   string
	}{
		{fmt.Errorf("%w: acres_done must be greater than 0", services.ErrValidation), http.StatusBadRequest, services.KindValidation},
		{fmt.Errorf("%w: log is approved", services.ErrInvalidState), http.StatusConflict, services.KindInvalidState},
		{fmt.Errorf("%w: approved logs cannot be edited", services.ErrImmutableState), http.StatusConflict, services.KindImmutableState},
		{fmt.Errorf("%w: select a rate card", services.ErrPrecondition), http.StatusPreconditionFailed, services.KindPrecondition},
		{services.ErrJobNotFound, http.StatusNotFound, services.KindNotFound},
		{errors.New("connection refused"), http.StatusInternalServerError, services.KindRemote},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, fmt.Sprintf(`{"error":%q,"kind":%q}`, tt.err.Error(), tt.kind), w.Body.String())
		})
	}
}
