package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/jo-hoe/spectra/internal/backend/database"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) PingStore(ctx context.Context) error { return f(ctx) }

func serve(t *testing.T, pinger StorePinger, target string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	NewAPIService(pinger).SetRoutes(e)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestProbe(t *testing.T) {
	rec := serve(t, pingerFunc(func(context.Context) error {
		t.Error("liveness probe must not touch the store")
		return nil
	}), "/probe")

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestStoreProbe(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "reachable", err: nil, want: http.StatusOK},
		{name: "unavailable", err: fmt.Errorf("%w: no credentials", database.ErrStoreUnavailable), want: http.StatusServiceUnavailable},
		{name: "timeout", err: context.DeadlineExceeded, want: http.StatusServiceUnavailable},
		{name: "unexpected", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, pingerFunc(func(ctx context.Context) error {
				if _, ok := ctx.Deadline(); !ok {
					t.Error("expected the probe to set a deadline")
				}
				return tt.err
			}), "/probe/store")

			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}
