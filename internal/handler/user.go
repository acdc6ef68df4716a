package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fastshift/internal/model"
	"github.com/iliyamo/fastshift/internal/service"
)

// UserHandler serves sign-in upserts, user search and role management.
type UserHandler struct {
	Users *service.UserService
}

// NewUserHandler panics on a nil service.
func NewUserHandler(users *service.UserService) *UserHandler {
	if users == nil {
		panic("nil service passed to NewUserHandler")
	}
	return &UserHandler{Users: users}
}

// Upsert handles POST /users.
func (h *UserHandler) Upsert(c echo.Context) error {
	var u model.User
	if err := bindBody(c, &u); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request body"})
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	res, err := h.Users.Upsert(ctx, &u)
	if err != nil {
		return respondError(c, err)
	}
	if !res.Inserted {
		return c.JSON(http.StatusOK, echo.Map{"message": "User already exist", "inserted": false})
	}
	return c.JSON(http.StatusOK, echo.Map{"acknowledged": true, "inserted": true, "insertedId": res.ID})
}

// Search handles GET /users/search?q=.
func (h *UserHandler) Search(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	items, err := h.Users.Search(ctx, c.QueryParam("q"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

// MakeAdmin handles PATCH /users/make-admin/:id.
func (h *UserHandler) MakeAdmin(c echo.Context) error {
	return h.setRole(c, model.RoleAdmin)
}

// RemoveAdmin handles PATCH /users/remove-admin/:id.
func (h *UserHandler) RemoveAdmin(c echo.Context) error {
	return h.setRole(c, model.RoleUser)
}

func (h *UserHandler) setRole(c echo.Context, role string) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	res, err := h.Users.SetRole(ctx, c.Param("id"), role)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Role handles GET /users/:email/role.
func (h *UserHandler) Role(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	r, err := h.Users.GetRole(ctx, c.Param("email"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, r)
}
