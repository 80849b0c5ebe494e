package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/nizaesteves/backoffice/pkg/carrier"
)

// handleTracking resolves a tracking code against the Correios API.
// An unknown object is a 404 carrying the carrier message. A failure
// to authenticate with the carrier is a hard error.
func (s *Server) handleTracking(c echo.Context) error {
	code := c.Param("code")
	if s.deps.Tracker == nil {
		return c.JSON(http.StatusServiceUnavailable, errorBody{
			Message: "Rastreamento indisponível.",
		})
	}

	obj, err := s.deps.Tracker.Track(c.Request().Context(), code)
	if err != nil {
		if errors.Is(err, carrier.ErrObjectNotFound) {
			return c.JSON(http.StatusNotFound, errorBody{
				Message: "Objeto não encontrado.",
				Details: carrier.UpstreamDetails(err),
			})
		}
		s.deps.Logger.Error("Tracking lookup failed",
			zap.String("code", code),
			zap.Error(err))
		s.deps.Metrics.RecordError("correios", "tracking")
		return c.JSON(http.StatusInternalServerError, errorBody{
			Message: "Não foi possível consultar o rastreamento.",
		})
	}

	return c.JSON(http.StatusOK, obj)
}
