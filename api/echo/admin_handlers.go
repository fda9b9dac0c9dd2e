package echo

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.pilab.hu/mcportal/dto"
	apierrors "go.pilab.hu/mcportal/errors"
)

func (a *PortalAPI) StatsHandler(c echo.Context) error {
	stats, err := a.admin.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

func (a *PortalAPI) ActivityHandler(c echo.Context) error {
	activity, err := a.admin.Activity(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, activity)
}

func (a *PortalAPI) ServerLogsHandler(c echo.Context) error {
	history, err := a.admin.ServerLogs(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, history)
}

// LogCommandHandler stores an admin command. Commands are not sent to the
// game server.
func (a *PortalAPI) LogCommandHandler(c echo.Context) error {
	caller, err := currentUser(c)
	if err != nil {
		return err
	}

	var req dto.CommandRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.NewBadRequest("Invalid request body")
	}

	cmd, err := a.admin.LogCommand(c.Request().Context(), caller, req.Command)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.CommandResponse{
		Message: "Command logged: " + cmd.Command,
		Command: cmd,
	})
}

func (a *PortalAPI) CommandHistoryHandler(c echo.Context) error {
	cmds, err := a.admin.CommandHistory(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cmds)
}
