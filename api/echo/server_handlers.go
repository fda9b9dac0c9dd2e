package echo

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.pilab.hu/mcportal/dto"
)

// ServerStatusHandler polls the game server. An unreachable server is
// reported as the fallback record with source "fallback", never as an error.
func (a *PortalAPI) ServerStatusHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, a.status.Poll(c.Request().Context()))
}

func (a *PortalAPI) PlayersHandler(c echo.Context) error {
	status := a.status.Poll(c.Request().Context())
	return c.JSON(http.StatusOK, dto.PlayersResponse{
		PlayersOnline: status.PlayersOnline,
		MaxPlayers:    status.MaxPlayers,
		Online:        status.Online,
	})
}
