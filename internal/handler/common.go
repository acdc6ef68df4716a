// Package handler exposes the parcel, rider, user, payment and tracking
// services over HTTP. Handlers bind the request, call one service
// operation and shape the response; authorization happens in the guards
// registered by the router.
package handler

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fastshift/internal/middleware"
	"github.com/iliyamo/fastshift/internal/service"
)

// requestTimeout bounds the store calls made for one request.
const requestTimeout = 5 * time.Second

// Validator plugs go-playground/validator into echo's c.Validate.
type Validator struct {
	v *validator.Validate
}

// NewValidator reports fields by their JSON names.
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v}
}

func (cv *Validator) Validate(i any) error {
	return cv.v.Struct(i)
}

// requestContext derives the store context of a request.
func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// bindBody decodes the JSON body only; path and query parameters never
// leak into documents.
func bindBody(c echo.Context, v any) error {
	return (&echo.DefaultBinder{}).BindBody(c, v)
}

// bindValid binds the body and runs the struct validator on it.
func bindValid(c echo.Context, v any) error {
	if err := bindBody(c, v); err != nil {
		return &service.Error{Kind: service.KindBadRequest, Message: "invalid request body", Err: err}
	}
	if err := c.Validate(v); err != nil {
		return &service.Error{Kind: service.KindBadRequest, Message: validationMessage(err), Err: err}
	}
	return nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request body"
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field()+" is "+describeTag(fe.Tag()))
	}
	return strings.Join(fields, ", ")
}

func describeTag(tag string) string {
	switch tag {
	case "required":
		return "required"
	case "gt", "gte", "min":
		return "too small"
	case "oneof":
		return "not an accepted value"
	}
	return "invalid"
}

// principalEmail returns the authenticated email, empty on public routes.
func principalEmail(c echo.Context) string {
	p, _ := middleware.PrincipalFrom(c)
	return p.Email
}

// respondError maps a service failure to its status code. Internal
// failures carry the underlying error text the way the web client expects.
func respondError(c echo.Context, err error) error {
	var se *service.Error
	if !errors.As(err, &se) {
		se = &service.Error{Kind: service.KindInternal, Message: "Internal Server Error", Err: err}
	}

	status := http.StatusInternalServerError
	switch se.Kind {
	case service.KindBadRequest:
		status = http.StatusBadRequest
	case service.KindUnauthenticated:
		status = http.StatusUnauthorized
	case service.KindForbidden:
		status = http.StatusForbidden
	case service.KindNotFound:
		status = http.StatusNotFound
	}

	body := echo.Map{"success": false, "message": se.Message}
	if status == http.StatusInternalServerError && se.Err != nil {
		body["error"] = se.Err.Error()
	}
	return c.JSON(status, body)
}

// listBody is the envelope of parcel and payment listings.
func listBody[T any](items []T) echo.Map {
	return echo.Map{"success": true, "count": len(items), "data": items}
}
