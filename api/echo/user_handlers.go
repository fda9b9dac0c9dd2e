package echo

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.pilab.hu/mcportal/dto"
)

func (a *PortalAPI) ListUsersHandler(c echo.Context) error {
	users, err := a.users.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// GetUserHandler returns a user record to its owner or to an admin.
func (a *PortalAPI) GetUserHandler(c echo.Context) error {
	caller, err := currentUser(c)
	if err != nil {
		return err
	}

	user, err := a.users.Get(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (a *PortalAPI) ToggleAdminHandler(c echo.Context) error {
	caller, err := currentUser(c)
	if err != nil {
		return err
	}

	isAdmin, err := a.users.ToggleAdmin(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.ToggleAdminResponse{
		Message: fmt.Sprintf("User admin status updated to %t", isAdmin),
		IsAdmin: isAdmin,
	})
}

func (a *PortalAPI) DeleteUserHandler(c echo.Context) error {
	caller, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := a.users.Delete(c.Request().Context(), caller, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "User deleted successfully"})
}
