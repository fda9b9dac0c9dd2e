//nolint:varnamelen
package echo

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"go.pilab.hu/mcportal/domain"
	apierrors "go.pilab.hu/mcportal/errors"
	"go.pilab.hu/mcportal/middleware"
	"go.pilab.hu/mcportal/services"
)

// PortalAPI holds the handlers of the /api routes.
type PortalAPI struct {
	auth   *services.AuthService
	users  *services.UserService
	shop   *services.ShopService
	status *services.StatusService
	admin  *services.AdminService
}

// NewPortalAPI initializes the API from the service set.
func NewPortalAPI(svcs *services.Services) *PortalAPI {
	return &PortalAPI{
		auth:   svcs.Auth,
		users:  svcs.Users,
		shop:   svcs.Shop,
		status: svcs.Status,
		admin:  svcs.Admin,
	}
}

// RegisterRoutes registers the portal routes under /api.
func (a *PortalAPI) RegisterRoutes(e *echo.Echo) {
	requireAuth := middleware.RequireAuth(a.auth)
	requireAdmin := middleware.RequireAdmin()

	api := e.Group("/api")

	// Public
	api.POST("/auth/login", a.LoginHandler)
	api.GET("/server/status", a.ServerStatusHandler)
	api.GET("/server/players", a.PlayersHandler)
	api.GET("/shop/items", a.ListItemsHandler)
	api.GET("/shop/items/:id", a.GetItemHandler)

	// Authenticated
	api.GET("/auth/me", a.MeHandler, requireAuth)
	api.GET("/users/:id", a.GetUserHandler, requireAuth)
	api.POST("/shop/purchase/:item_id", a.PurchaseHandler, requireAuth)
	api.GET("/shop/purchases", a.MyPurchasesHandler, requireAuth)

	// Admin
	api.GET("/users", a.ListUsersHandler, requireAuth, requireAdmin)
	api.PUT("/users/:id/admin", a.ToggleAdminHandler, requireAuth, requireAdmin)
	api.DELETE("/users/:id", a.DeleteUserHandler, requireAuth, requireAdmin)
	api.POST("/shop/items", a.CreateItemHandler, requireAuth, requireAdmin)
	api.PUT("/shop/items/:id", a.UpdateItemHandler, requireAuth, requireAdmin)
	api.DELETE("/shop/items/:id", a.DeleteItemHandler, requireAuth, requireAdmin)
	api.GET("/admin/shop/items", a.AdminListItemsHandler, requireAuth, requireAdmin)
	api.GET("/admin/shop/purchases", a.AdminListPurchasesHandler, requireAuth, requireAdmin)
	api.GET("/admin/stats", a.StatsHandler, requireAuth, requireAdmin)
	api.GET("/admin/users/activity", a.ActivityHandler, requireAuth, requireAdmin)
	api.GET("/admin/server/logs", a.ServerLogsHandler, requireAuth, requireAdmin)
	api.POST("/admin/commands", a.LogCommandHandler, requireAuth, requireAdmin)
	api.GET("/admin/commands", a.CommandHistoryHandler, requireAuth, requireAdmin)
}

// ErrorHandler renders every error as {"detail": "..."}. It is installed as
// the echo HTTPErrorHandler.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var apiErr *apierrors.APIError
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &apiErr):
	case errors.As(err, &httpErr):
		apiErr = &apierrors.APIError{Status: httpErr.Code, Detail: http.StatusText(httpErr.Code)}
		if msg, ok := httpErr.Message.(string); ok && msg != "" {
			apiErr.Detail = msg
		}
	default:
		apiErr = apierrors.FromDomain(err)
	}

	if apiErr.Status >= http.StatusInternalServerError {
		log.Ctx(c.Request().Context()).Error().Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("Request failed")
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(apiErr.Status)
	} else {
		err = c.JSON(apiErr.Status, apiErr)
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to write error response")
	}
}

// currentUser returns the user stored by the auth middleware.
func currentUser(c echo.Context) (*domain.User, error) {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		return nil, apierrors.NewUnauthorized("Not authenticated")
	}
	return user, nil
}
