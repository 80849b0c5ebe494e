package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/nizaesteves/backoffice/internal/storage"
)

func parseID(c echo.Context) (uuid.UUID, error) {
	return uuid.Parse(c.Param("id"))
}

func storageErrorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorBody{Message: "Registro não encontrado."})
	case errors.Is(err, storage.ErrDuplicate):
		return c.JSON(http.StatusConflict, errorBody{Message: "Registro duplicado."})
	}
	return c.JSON(http.StatusInternalServerError, errorBody{Message: "Erro interno."})
}

// ----------------------------------------------------------------------------
// Clients
// ----------------------------------------------------------------------------

func (s *Server) handleCreateClient(c echo.Context) error {
	var client storage.Client
	if err := c.Bind(&client); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Message: "Corpo da requisição inválido."})
	}
	if client.Nome == "" {
		return c.JSON(http.StatusBadRequest, errorBody{Message: "O nome do cliente é obrigatório."})
	}
	if err := s.deps.Clients.Create(c.Request().Context(), &client); err != nil {
		return storageErrorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, client)
}

func (s *Server) handleListClients(c echo.Context) error {
	clients, err := s.deps.Clients.List(c.Request().Context())
	if err != nil {
		return storageErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, clients)
}

func (s *Server) handleGetClient(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Message: "Identificador inválido."})
	}
	client, err := s.deps.Clients.Get(c.Request().Context(), id)
	if err != nil {
		return storageErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, client)
}

func (s *Server) handleUpdateClient(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Message: "Identificador inválido."})
	}
	var client storage.Client
	if err := c.Bind(&client); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Message: "Corpo da requisição inválido."})
	}
	client.ID = id
	if err := s.deps.Clients.Update(c.Request().Context(), &client); err != nil {
		return storageErrorResponse(c, err)
	}
	updated, err := s.deps.Clients.Get(c.Request().Context(), id)
	if err != nil {
		return storageErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (s *Server) handleDeleteClient(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Message: "Identificador inválido."})
	}
	if err := s.deps.Clients.Delete(c.Request().Context(), id); err != nil {
		return storageErrorResponse(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ----------------------------------------------------------------------------
// Packages
// ----------------------------------------------------------------------------

func (s *Server) handleCreatePackage(c echo.Context) error {
	var pkg storage.Package
	if err := c.Bind(&pkg); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Message: "Corpo da requisição inválido."})
	}
	if pkg.Nome == "" || pkg.Peso <= 0 {
		return c.JSON(http.StatusBadRequest, errorBody{Message: "Nome e peso do pacote são obrigatórios."})
	}
	if err := s.deps.Packages.Create(c.Request().Context(), &pkg); err != nil {
		return storageErrorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, pkg)
}

func (s *Server) handleListPackages(c echo.Context) error {
	packages, err := s.deps.Packages.List(c.Request().Context())
	if err != nil {
		return storageErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, packages)
}

func (s *Server) handleGetPackage(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Message: "Identificador inválido."})
	}
	pkg, err := s.deps.Packages.Get(c.Request().Context(), id)
	if err != nil {
		return storageErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, pkg)
}

func (s *Server) handleUpdatePackage(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Message: "Identificador inválido."})
	}
	var pkg storage.Package
	if err := c.Bind(&pkg); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Message: "Corpo da requisição inválido."})
	}
	pkg.ID = id
	if err := s.deps.Packages.Update(c.Request().Context(), &pkg); err != nil {
		return storageErrorResponse(c, err)
	}
	updated, err := s.deps.Packages.Get(c.Request().Context(), id)
	if err != nil {
		return storageErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (s *Server) handleDeletePackage(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Message: "Identificador inválido."})
	}
	if err := s.deps.Packages.Delete(c.Request().Context(), id); err != nil {
		return storageErrorResponse(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ----------------------------------------------------------------------------
// Settings
// ----------------------------------------------------------------------------

func (s *Server) handleGetSettings(c echo.Context) error {
	settings, err := s.deps.Settings.Get(c.Request().Context())
	if err != nil {
		return storageErrorResponse(c, err)
	}
	if settings == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, settings)
}

func (s *Server) handleSaveSettings(c echo.Context) error {
	var settings storage.Settings
	if err := c.Bind(&settings); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Message: "Corpo da requisição inválido."})
	}
	if err := s.deps.Settings.Save(c.Request().Context(), &settings); err != nil {
		return storageErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, settings)
}

// ----------------------------------------------------------------------------
// Shipments
// ----------------------------------------------------------------------------

// handleCreateShipments accepts either one shipment object or an array
// of them, matching what the import tooling sends. The body is read
// once because its shape is only known after looking at it.
func (s *Server) handleCreateShipments(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Message: "Corpo da requisição inválido."})
	}

	var many []storage.Shipment
	if err := json.Unmarshal(body, &many); err == nil {
		if len(many) == 0 {
			return c.JSON(http.StatusBadRequest, errorBody{Message: "Nenhum envio informado."})
		}
		if err := s.deps.Shipments.CreateBatch(c.Request().Context(), many); err != nil {
			return storageErrorResponse(c, err)
		}
		return c.JSON(http.StatusCreated, many)
	}

	var one storage.Shipment
	if err := json.Unmarshal(body, &one); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Message: "Corpo da requisição inválido."})
	}
	if err := s.deps.Shipments.Create(c.Request().Context(), &one); err != nil {
		return storageErrorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, one)
}

func (s *Server) handleListShipments(c echo.Context) error {
	filter := storage.ShipmentFilter{
		Query: c.QueryParam("q"),
	}
	if status := c.QueryParam("status"); status != "" {
		st := storage.ShipmentStatus(status)
		if !st.Valid() {
			return c.JSON(http.StatusBadRequest, errorBody{Message: "Status inválido."})
		}
		filter.Status = st
	}
	filter.Page, _ = strconv.Atoi(c.QueryParam("page"))
	filter.Limit, _ = strconv.Atoi(c.QueryParam("limit"))

	page, err := s.deps.Shipments.List(c.Request().Context(), filter)
	if err != nil {
		return storageErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

func (s *Server) handleUpdateShipmentStatus(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Message: "Identificador inválido."})
	}

	var body struct {
		Status storage.ShipmentStatus `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Message: "Corpo da requisição inválido."})
	}
	if !body.Status.Valid() {
		return c.JSON(http.StatusBadRequest, errorBody{Message: "Status inválido."})
	}

	updated, err := s.deps.Shipments.UpdateStatus(c.Request().Context(), id, body.Status)
	if err != nil {
		return storageErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (s *Server) handleDeleteShipment(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Message: "Identificador inválido."})
	}
	if err := s.deps.Shipments.Delete(c.Request().Context(), id); err != nil {
		return storageErrorResponse(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
