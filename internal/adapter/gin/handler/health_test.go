package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"menu-service/internal/adapter/db/provider"
)

type fakeStatus struct {
	state   provider.State
	target  string
	pingErr error
}

func (f fakeStatus) State() provider.State          { return f.state }
func (f fakeStatus) Target() string                 { return f.target }
func (f fakeStatus) Ping(ctx context.Context) error { return f.pingErr }

func TestHealth(t *testing.T) {
	tests := []struct {
		name     string
		status   fakeStatus
		wantCode int
		wantBody string
	}{
		{
			name:     "ready",
			status:   fakeStatus{state: provider.StateReady, target: provider.TargetLocal},
			wantCode: http.StatusOK,
			wantBody: `{"status":"ok","database":"ready","target":"local"}`,
		},
		{
			name:     "failed",
			status:   fakeStatus{state: provider.StateFailed},
			wantCode: http.StatusServiceUnavailable,
			wantBody: `{"status":"unavailable","database":"failed"}`,
		},
		{
			name:     "ping fails",
			status:   fakeStatus{state: provider.StateReady, target: provider.TargetPrimary, pingErr: errors.New("timeout")},
			wantCode: http.StatusServiceUnavailable,
			wantBody: `{"status":"unavailable","database":"unreachable","target":"primary"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			r := gin.New()
			r.GET("/health", NewHealthHandler(tt.status).Health)

			w := doJSON(r, http.MethodGet, "/health", "")

			assert.Equal(t, tt.wantCode, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}
