package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/appregistry/internal/apperr"
	"github.com/iliyamo/appregistry/internal/database"
	"github.com/iliyamo/appregistry/internal/queue"
	"github.com/iliyamo/appregistry/internal/repository"
	"github.com/iliyamo/appregistry/internal/service"
)

// RoleHandler serves /v1/roles.
type RoleHandler struct {
	Roles *repository.RoleRepo
	audit auditor
}

func NewRoleHandler(roles *repository.RoleRepo, pub service.Publisher) *RoleHandler {
	return &RoleHandler{Roles: roles, audit: auditor{pub}}
}

type roleReq struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Serve dispatches on the request method.
func (h *RoleHandler) Serve(c echo.Context) error {
	switch c.Request().Method {
	case http.MethodGet:
		return h.get(c)
	case http.MethodPost:
		return h.create(c)
	case http.MethodPut:
		return h.update(c)
	case http.MethodDelete:
		return h.delete(c)
	}
	return apperr.MethodNotAllowed()
}

func (h *RoleHandler) get(c echo.Context) error {
	id, single, err := queryID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if single {
		role, err := h.Roles.Get(ctx, id)
		if err != nil {
			return err
		}
		return respond(c, http.StatusOK, "Role retrieved successfully", role)
	}
	roles, err := h.Roles.List(ctx)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Roles retrieved successfully", roles)
}

func (h *RoleHandler) create(c echo.Context) error {
	var req roleReq
	if err := bind(c, &req); err != nil {
		return err
	}
	role, err := h.Roles.Create(c.Request().Context(), req.Name)
	if err != nil {
		return err
	}
	h.audit.record(c, queue.ActionCreate, database.TableRoles, role.ID)
	return respond(c, http.StatusCreated, "Role created successfully", role)
}

func (h *RoleHandler) update(c echo.Context) error {
	var req roleReq
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := requireID(req.ID); err != nil {
		return err
	}
	role, err := h.Roles.Rename(c.Request().Context(), req.ID, req.Name)
	if err != nil {
		return err
	}
	h.audit.record(c, queue.ActionUpdate, database.TableRoles, role.ID)
	return respond(c, http.StatusOK, "Role updated successfully", role)
}

func (h *RoleHandler) delete(c echo.Context) error {
	var req idBody
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := requireID(req.ID); err != nil {
		return err
	}
	if err := h.Roles.Delete(c.Request().Context(), req.ID); err != nil {
		return err
	}
	h.audit.record(c, queue.ActionDelete, database.TableRoles, req.ID)
	return respond(c, http.StatusOK, "Role deleted successfully", nil)
}
