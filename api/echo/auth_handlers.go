package echo

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.pilab.hu/mcportal/dto"
	apierrors "go.pilab.hu/mcportal/errors"
)

// LoginHandler resolves the Minecraft username, creates or updates the
// user and returns a session token.
func (a *PortalAPI) LoginHandler(c echo.Context) error {
	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.NewBadRequest("Invalid request body")
	}

	res, err := a.auth.Login(c.Request().Context(), req.MinecraftUsername)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.LoginResponse{
		AccessToken: res.AccessToken,
		TokenType:   "bearer",
		ExpiresAt:   res.ExpiresAt,
		User:        res.User,
	})
}

// MeHandler returns the caller's user record.
func (a *PortalAPI) MeHandler(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}
