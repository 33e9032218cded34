package backend

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jo-hoe/spectra/internal/backend/database"
)

const storeProbeTimeout = 5 * time.Second

// StorePinger reports whether the tabular store can be reached.
type StorePinger interface {
	PingStore(ctx context.Context) error
}

// APIService serves the liveness and readiness probes.
type APIService struct {
	store StorePinger
}

func NewAPIService(store StorePinger) *APIService {
	return &APIService{store: store}
}

func (s *APIService) SetRoutes(e *echo.Echo) {
	// Set probe routes
	e.GET("/probe", func(c echo.Context) error {
		return c.String(http.StatusOK, "Service is running")
	})
	e.GET("/probe/store", s.storeProbeHandler)
}

func (s *APIService) storeProbeHandler(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), storeProbeTimeout)
	defer cancel()

	if err := s.store.PingStore(ctx); err != nil {
		status := http.StatusServiceUnavailable
		if !errors.Is(err, database.ErrStoreUnavailable) && !errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusInternalServerError
		}
		slog.Warn("store probe failed", "status", status, "error", err)
		return c.String(status, "Store is unavailable")
	}
	return c.String(http.StatusOK, "Store is reachable")
}
