package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/appregistry/internal/apperr"
	"github.com/iliyamo/appregistry/internal/database"
	"github.com/iliyamo/appregistry/internal/middleware"
	"github.com/iliyamo/appregistry/internal/queue"
	"github.com/iliyamo/appregistry/internal/repository"
	"github.com/iliyamo/appregistry/internal/service"
)

// ApplicationHandler serves /v1/applications. Listing is public; writes
// are stamped with the caller's id.
type ApplicationHandler struct {
	Apps  *repository.ApplicationRepo
	audit auditor
}

func NewApplicationHandler(apps *repository.ApplicationRepo, pub service.Publisher) *ApplicationHandler {
	return &ApplicationHandler{Apps: apps, audit: auditor{pub}}
}

type appReq struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Version     string `json:"version"`
	Type        string `json:"type"`
	DownloadURL string `json:"download_url"`
}

func (r appReq) input() repository.AppInput {
	return repository.AppInput{Name: r.Name, Version: r.Version, Type: r.Type, DownloadURL: r.DownloadURL}
}

// Serve dispatches on the request method.
func (h *ApplicationHandler) Serve(c echo.Context) error {
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

func (h *ApplicationHandler) get(c echo.Context) error {
	id, single, err := queryID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if single {
		app, err := h.Apps.Get(ctx, id)
		if err != nil {
			return err
		}
		return respond(c, http.StatusOK, "Application retrieved successfully", app)
	}
	apps, err := h.Apps.List(ctx)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Applications retrieved successfully", apps)
}

func (h *ApplicationHandler) create(c echo.Context) error {
	var req appReq
	if err := bind(c, &req); err != nil {
		return err
	}
	app, err := h.Apps.Create(c.Request().Context(), req.input(), middleware.CallerID(c))
	if err != nil {
		return err
	}
	h.audit.record(c, queue.ActionCreate, database.TableApplications, app.ID)
	return respond(c, http.StatusCreated, "Application created successfully", app)
}

func (h *ApplicationHandler) update(c echo.Context) error {
	var req appReq
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := requireID(req.ID); err != nil {
		return err
	}
	app, err := h.Apps.Update(c.Request().Context(), req.ID, req.input(), middleware.CallerID(c))
	if err != nil {
		return err
	}
	h.audit.record(c, queue.ActionUpdate, database.TableApplications, app.ID)
	return respond(c, http.StatusOK, "Application updated successfully", app)
}

func (h *ApplicationHandler) delete(c echo.Context) error {
	var req idBody
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := requireID(req.ID); err != nil {
		return err
	}
	if err := h.Apps.Delete(c.Request().Context(), req.ID); err != nil {
		return err
	}
	h.audit.record(c, queue.ActionDelete, database.TableApplications, req.ID)
	return respond(c, http.StatusOK, "Application deleted successfully", nil)
}
