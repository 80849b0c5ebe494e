package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/nizaesteves/backoffice/internal/storage"
	"github.com/nizaesteves/backoffice/pkg/carrier"
	"github.com/nizaesteves/backoffice/pkg/carrier/melhorenvio"
)

// labelsUnavailable answers for every label route when the Melhor
// Envio integration is disabled.
func (s *Server) labelsUnavailable(c echo.Context) (bool, error) {
	if s.deps.Labels != nil {
		return false, nil
	}
	return true, c.JSON(http.StatusServiceUnavailable, errorBody{
		Message: "Integração com o Melhor Envio desabilitada.",
	})
}

// handleCreateLabel purchases a label and mirrors it as a shipment.
func (s *Server) handleCreateLabel(c echo.Context) error {
	if off, err := s.labelsUnavailable(c); off {
		return err
	}

	var order melhorenvio.LabelOrder
	if err := c.Bind(&order); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Message: "Corpo da requisição inválido."})
	}

	created, err := s.deps.Labels.CreateLabel(c.Request().Context(), &order)
	if err != nil {
		if errors.Is(err, carrier.ErrInvalidRequest) {
			return c.JSON(http.StatusBadRequest, errorBody{
				Message: "Dados da etiqueta incompletos.",
				Details: carrier.UpstreamDetails(err),
			})
		}
		if errors.Is(err, storage.ErrDuplicate) {
			return c.JSON(http.StatusConflict, errorBody{
				Message: "Já existe um envio com este código de rastreio.",
			})
		}
		s.deps.Logger.Error("Label creation failed", zap.Error(err))
		s.deps.Metrics.RecordError("melhorenvio", "checkout")
		return c.JSON(labelErrorStatus(err), errorBody{
			Message: "Não foi possível gerar a etiqueta.",
			Details: carrier.UpstreamDetails(err),
		})
	}

	return c.JSON(http.StatusCreated, struct {
		*storage.Shipment
		MelhorEnvioID string `json:"melhorEnvioId"`
	}{Shipment: created.Shipment, MelhorEnvioID: created.RemoteID})
}

func (s *Server) handlePreviewLabel(c echo.Context) error {
	if off, err := s.labelsUnavailable(c); off {
		return err
	}

	doc, err := s.deps.Labels.Preview(c.Request().Context(), c.Param("id"))
	if err != nil {
		s.deps.Logger.Error("Label preview failed", zap.Error(err))
		return c.JSON(labelErrorStatus(err), errorBody{
			Message: "Não foi possível gerar a prévia da etiqueta.",
			Details: carrier.UpstreamDetails(err),
		})
	}
	return c.Blob(http.StatusOK, "application/pdf", doc)
}

func (s *Server) handlePayLabel(c echo.Context) error {
	if off, err := s.labelsUnavailable(c); off {
		return err
	}

	if err := s.deps.Labels.Pay(c.Request().Context(), c.Param("id")); err != nil {
		s.deps.Logger.Error("Label payment failed", zap.Error(err))
		s.deps.Metrics.RecordError("melhorenvio", "pay")
		return c.JSON(labelErrorStatus(err), errorBody{
			Message: "Não foi possível pagar a etiqueta.",
			Details: carrier.UpstreamDetails(err),
		})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Etiqueta paga com sucesso!"})
}

func (s *Server) handlePrintLabel(c echo.Context) error {
	if off, err := s.labelsUnavailable(c); off {
		return err
	}

	doc, err := s.deps.Labels.Print(c.Request().Context(), c.Param("id"))
	if err != nil {
		s.deps.Logger.Error("Label print failed", zap.Error(err))
		return c.JSON(labelErrorStatus(err), errorBody{
			Message: "Não foi possível imprimir a etiqueta.",
			Details: carrier.UpstreamDetails(err),
		})
	}
	return c.Blob(http.StatusOK, "application/pdf", doc)
}

// labelErrorStatus maps upstream label errors to HTTP statuses. Client
// mistakes surfaced by the aggregator keep their status; everything
// else is a 500.
func labelErrorStatus(err error) int {
	var cerr *carrier.Error
	if errors.As(err, &cerr) && cerr.StatusCode >= 400 && cerr.StatusCode < 500 {
		return cerr.StatusCode
	}
	return http.StatusInternalServerError
}
