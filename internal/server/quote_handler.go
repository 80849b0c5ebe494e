package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/nizaesteves/backoffice/pkg/carrier"
)

// handleQuote fans the request out to every registered provider and
// returns the merged quotes sorted by price. The body is the wire
// shape the providers consume: {from, to, package}. Provider failures
// are logged and counted but never fail the request as long as the
// input is valid.
func (s *Server) handleQuote(c echo.Context) error {
	var req carrier.QuoteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Message: "Corpo da requisição inválido."})
	}

	if err := req.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{
			Message: "CEP de origem, CEP de destino e dados do pacote são obrigatórios.",
		})
	}

	start := time.Now()
	quotes, failures := s.deps.Registry.GetAllQuotes(c.Request().Context(), &req)
	duration := time.Since(start).Seconds()

	for _, f := range failures {
		s.deps.Logger.Warn("Quote provider failed",
			zap.String("provider", f.Provider),
			zap.Error(f.Err))
		s.deps.Metrics.RecordError(f.Provider, "quote")
	}

	status := "ok"
	if len(failures) > 0 {
		status = "partial"
	}
	s.deps.Metrics.RecordRequest("quote", "all", status, duration)

	return c.JSON(http.StatusOK, quotes)
}
