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

// UserHandler serves /v1/users. Responses carry model.User, which never
// serializes the password hash.
type UserHandler struct {
	Users *repository.UserRepo
	audit auditor
}

func NewUserHandler(users *repository.UserRepo, pub service.Publisher) *UserHandler {
	return &UserHandler{Users: users, audit: auditor{pub}}
}

type createUserReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	RoleID   *int64 `json:"role_id"`
}

type updateUserReq struct {
	ID       int64   `json:"id"`
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	RoleID   *int64  `json:"role_id"`
}

// Serve dispatches on the request method.
func (h *UserHandler) Serve(c echo.Context) error {
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

// checkGrant stops callers from handing out a role above their own.
func checkGrant(c echo.Context, role *int64) error {
	if role == nil {
		return nil
	}
	if *role < 1 {
		return apperr.Validation("role_id must be at least 1")
	}
	if *role > middleware.CallerRole(c) {
		return apperr.Authorization("Forbidden: cannot grant a role above your own")
	}
	return nil
}

func (h *UserHandler) get(c echo.Context) error {
	id, single, err := queryID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if single {
		u, err := h.Users.Get(ctx, id)
		if err != nil {
			return err
		}
		return respond(c, http.StatusOK, "User retrieved successfully", u)
	}
	users, err := h.Users.List(ctx)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Users retrieved successfully", users)
}

func (h *UserHandler) create(c echo.Context) error {
	var req createUserReq
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := checkGrant(c, req.RoleID); err != nil {
		return err
	}
	in := repository.NewUser{Username: req.Username, Email: req.Email, Password: req.Password}
	if req.RoleID != nil {
		in.RoleID = *req.RoleID
	}
	u, err := h.Users.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	h.audit.record(c, queue.ActionCreate, database.TableUsers, u.ID)
	return respond(c, http.StatusCreated, "User created successfully", u)
}

func (h *UserHandler) update(c echo.Context) error {
	var req updateUserReq
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := requireID(req.ID); err != nil {
		return err
	}
	if err := checkGrant(c, req.RoleID); err != nil {
		return err
	}
	u, err := h.Users.Update(c.Request().Context(), req.ID, repository.UserPatch{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		RoleID:   req.RoleID,
	})
	if err != nil {
		return err
	}
	h.audit.record(c, queue.ActionUpdate, database.TableUsers, u.ID)
	return respond(c, http.StatusOK, "User updated successfully", u)
}

func (h *UserHandler) delete(c echo.Context) error {
	var req idBody
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := requireID(req.ID); err != nil {
		return err
	}
	if err := h.Users.Delete(c.Request().Context(), req.ID); err != nil {
		return err
	}
	h.audit.record(c, queue.ActionDelete, database.TableUsers, req.ID)
	return respond(c, http.StatusOK, "User deleted successfully", nil)
}
