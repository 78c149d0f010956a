package handler // handler renders every response in the {"message","data"} envelope

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/appregistry/internal/apperr"
	"github.com/iliyamo/appregistry/internal/middleware"
	"github.com/iliyamo/appregistry/internal/queue"
	"github.com/iliyamo/appregistry/internal/service"
)

// Envelope is the body of every response.
type Envelope struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func respond(c echo.Context, status int, msg string, data any) error {
	return c.JSON(status, Envelope{Message: msg, Data: data})
}

// ErrorHandler renders handler and middleware errors. Server errors are
// logged; their detail is only sent to clients when dev is set.
func ErrorHandler(dev bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var (
			status = http.StatusInternalServerError
			msg    string
			detail error
		)
		var he *echo.HTTPError
		var ae *apperr.Error
		switch {
		case errors.As(err, &ae):
			status = apperr.Status(ae.Kind)
			msg = ae.Message
			detail = ae.Err
		case errors.As(err, &he):
			status = he.Code
			msg = fmt.Sprint(he.Message)
			detail = he.Internal
		default:
			detail = err
		}

		if status >= http.StatusInternalServerError {
			c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Request().URL.Path, err)
			msg = "Internal server error"
			if dev {
				msg = "An error occurred"
			}
		}
		var data any
		if dev && detail != nil {
			data = detail.Error()
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = respond(c, status, msg, data)
		}
		if err != nil {
			c.Logger().Error(err)
		}
	}
}

func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return apperr.New(apperr.KindValidation, "Invalid request body", err)
	}
	return nil
}

// queryID reads ?id=. Absent or "all" selects the whole collection.
func queryID(c echo.Context) (int64, bool, error) {
	raw := c.QueryParam("id")
	if raw == "" || raw == "all" {
		return 0, false, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, false, apperr.Validation("id must be a positive integer or \"all\"")
	}
	return id, true, nil
}

type idBody struct {
	ID int64 `json:"id"`
}

func requireID(id int64) error {
	if id < 1 {
		return apperr.Validation("id is required")
	}
	return nil
}

// auditor publishes one event per successful mutation, attributed to the
// authenticated caller.
type auditor struct{ pub service.Publisher }

func (a auditor) record(c echo.Context, action, resource string, id int64) {
	if a.pub == nil {
		return
	}
	a.pub.Publish(queue.NewAuditEvent(action, resource, id, middleware.CallerID(c)))
}
