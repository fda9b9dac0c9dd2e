package echo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.pilab.hu/mcportal/domain"
	"go.pilab.hu/mcportal/dto"
	"go.pilab.hu/mcportal/internal/auth"
	"go.pilab.hu/mcportal/internal/federation"
	"go.pilab.hu/mcportal/internal/mcstatus"
	"go.pilab.hu/mcportal/internal/memstore"
	"go.pilab.hu/mcportal/services"
)

// knownPlayers resolves names case-insensitively to a canonical profile.
type knownPlayers map[string]federation.Profile

func (k knownPlayers) LookupProfile(_ context.Context, name string) (*federation.Profile, error) {
	p, ok := k[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("lookup %s: %w", name, federation.ErrProfileNotFound)
	}
	return &p, nil
}

func (knownPlayers) LookupSkin(context.Context, string) (string, error) { return "", nil }

type downPinger struct{}

func (downPinger) Ping(context.Context, string) (*mcstatus.Response, error) {
	return nil, fmt.Errorf("dial tcp: connection refused")
}

type testAPI struct {
	e        *echo.Echo
	store    *memstore.Store
	sessions *auth.SessionIssuer
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	sessions, err := auth.NewSessionIssuer("api-test-secret-value")
	require.NoError(t, err)

	store := memstore.New()
	svcs := services.NewServices(store, services.Dependencies{
		Identity: knownPlayers{
			"steve": {ID: "8667ba71b85a4004af54457a9734eed7", Name: "Steve"},
			"alex":  {ID: "ec561538f3fd461daff5086b22154bce", Name: "Alex"},
			"notch": {ID: "069a79f444e94726a5befca90e38aaf5", Name: "Notch"},
		},
		Sessions:   sessions,
		Pinger:     downPinger{},
		ServerAddr: "127.0.0.1:25565",
	})

	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	NewPortalAPI(svcs).RegisterRoutes(e)

	return &testAPI{e: e, store: store, sessions: sessions}
}

func (a *testAPI) do(method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) login(t *testing.T, name string) dto.LoginResponse {
	t.Helper()
	rec := a.do(http.MethodPost, "/api/auth/login", "", fmt.Sprintf(`{"minecraft_username":%q}`, name))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res dto.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res
}

// loginAdmin logs name in and grants admin rights directly in the store.
func (a *testAPI) loginAdmin(t *testing.T, name string) dto.LoginResponse {
	t.Helper()
	res := a.login(t, name)
	require.NoError(t, a.store.UserRepository().SetAdmin(context.Background(), res.User.ID, true))
	return res
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func detail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rec)["detail"]
}

func TestLogin_CreatesThenUpdates(t *testing.T) {
	api := newTestAPI(t)

	first := api.login(t, "steve")
	assert.Equal(t, "bearer", first.TokenType)
	assert.NotEmpty(t, first.AccessToken)
	assert.Equal(t, "Steve", first.User.MinecraftUsername)
	assert.Equal(t, int64(1), first.User.LoginCount)
	assert.False(t, first.User.IsAdmin)

	second := api.login(t, "Steve")
	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Equal(t, int64(2), second.User.LoginCount)

	users, err := api.store.UserRepository().ListUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 1)

	logs, err := api.store.LoginLogRepository().RecentLoginLogs(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}

func TestLogin_UnknownName(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodPost, "/api/auth/login", "", `{"minecraft_username":"Herobrine"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid Minecraft username", detail(t, rec))

	rec = api.do(http.MethodPost, "/api/auth/login", "", `{"minecraft_username":"no spaces!"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPost, "/api/auth/login", "", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMe(t *testing.T) {
	api := newTestAPI(t)
	steve := api.login(t, "Steve")

	rec := api.do(http.MethodGet, "/api/auth/me", steve.AccessToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[domain.User](t, rec)
	assert.Equal(t, steve.User.ID, me.ID)
	assert.NotNil(t, me.LastSeen)

	rec = api.do(http.MethodGet, "/api/auth/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, detail(t, rec))

	rec = api.do(http.MethodGet, "/api/auth/me", "not-a-token", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDeletedUserTokenIsRejected(t *testing.T) {
	api := newTestAPI(t)
	steve := api.login(t, "Steve")
	require.NoError(t, api.store.UserRepository().DeleteUser(context.Background(), steve.User.ID))

	rec := api.do(http.MethodGet, "/api/auth/me", steve.AccessToken, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutes_RequireAdmin(t *testing.T) {
	api := newTestAPI(t)
	player := api.login(t, "Steve")
	admin := api.loginAdmin(t, "Alex")

	adminGets := []string{
		"/api/users",
		"/api/admin/stats",
		"/api/admin/users/activity",
		"/api/admin/server/logs",
		"/api/admin/commands",
		"/api/admin/shop/items",
		"/api/admin/shop/purchases",
	}
	for _, path := range adminGets {
		t.Run(path, func(t *testing.T) {
			assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, path, "", "").Code)

			rec := api.do(http.MethodGet, path, player.AccessToken, "")
			assert.Equal(t, http.StatusForbidden, rec.Code)
			assert.Equal(t, "Admin access required", detail(t, rec))

			assert.Equal(t, http.StatusOK, api.do(http.MethodGet, path, admin.AccessToken, "").Code)
		})
	}
}

func TestGetUser_SelfOrAdmin(t *testing.T) {
	api := newTestAPI(t)
	steve := api.login(t, "Steve")
	alex := api.login(t, "Alex")
	admin := api.loginAdmin(t, "Notch")

	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/users/"+steve.User.ID, steve.AccessToken, "").Code)
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodGet, "/api/users/"+alex.User.ID, steve.AccessToken, "").Code)
	// Unknown ids are refused before the lookup for non-admins.
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodGet, "/api/users/missing", steve.AccessToken, "").Code)

	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/users/"+alex.User.ID, admin.AccessToken, "").Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/api/users/missing", admin.AccessToken, "").Code)
}

func TestToggleAdmin_TakesEffectOnNextLogin(t *testing.T) {
	api := newTestAPI(t)
	steve := api.login(t, "Steve")
	admin := api.loginAdmin(t, "Alex")

	rec := api.do(http.MethodPut, "/api/users/"+steve.User.ID+"/admin", admin.AccessToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[dto.ToggleAdminResponse](t, rec).IsAdmin)

	// The token issued before the toggle keeps its old claim.
	claims, err := api.sessions.Parse(steve.AccessToken)
	require.NoError(t, err)
	assert.False(t, claims.IsAdmin)

	again := api.login(t, "Steve")
	assert.True(t, again.User.IsAdmin)
	claims, err = api.sessions.Parse(again.AccessToken)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin)
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/admin/stats", again.AccessToken, "").Code)

	rec = api.do(http.MethodPut, "/api/users/"+steve.User.ID+"/admin", admin.AccessToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[dto.ToggleAdminResponse](t, rec).IsAdmin)

	demoted := api.login(t, "Steve")
	claims, err = api.sessions.Parse(demoted.AccessToken)
	require.NoError(t, err)
	assert.False(t, claims.IsAdmin)

	assert.Equal(t, http.StatusNotFound, api.do(http.MethodPut, "/api/users/missing/admin", admin.AccessToken, "").Code)
}

func TestDeleteUser(t *testing.T) {
	api := newTestAPI(t)
	steve := api.login(t, "Steve")
	admin := api.loginAdmin(t, "Alex")

	rec := api.do(http.MethodDelete, "/api/users/"+admin.User.ID, admin.AccessToken, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, detail(t, rec))

	assert.Equal(t, http.StatusOK, api.do(http.MethodDelete, "/api/users/"+steve.User.ID, admin.AccessToken, "").Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodDelete, "/api/users/"+steve.User.ID, admin.AccessToken, "").Code)
}

func TestShop_CatalogAndPurchase(t *testing.T) {
	api := newTestAPI(t)
	steve := api.login(t, "Steve")
	admin := api.loginAdmin(t, "Alex")

	rec := api.do(http.MethodPost, "/api/shop/items", admin.AccessToken,
		`{"name":"VIP Rank","description":"30 days","price":9.99,"category":"ranks"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	vip := decode[domain.ShopItem](t, rec)
	assert.True(t, vip.InStock)

	rec = api.do(http.MethodPost, "/api/shop/items", admin.AccessToken,
		`{"name":"Old Cape","price":2,"category":"cosmetics","in_stock":false}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	cape := decode[domain.ShopItem](t, rec)

	// Validation
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodPost, "/api/shop/items", admin.AccessToken, `{"price":1}`).Code)
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodPost, "/api/shop/items", admin.AccessToken, `{"name":"x","price":-1}`).Code)
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodPost, "/api/shop/items", steve.AccessToken, `{"name":"x","price":1}`).Code)

	// Public listing hides out-of-stock items, the admin catalog does not.
	rec = api.do(http.MethodGet, "/api/shop/items", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.ShopItem](t, rec), 1)
	rec = api.do(http.MethodGet, "/api/admin/shop/items", admin.AccessToken, "")
	assert.Len(t, decode[[]domain.ShopItem](t, rec), 2)

	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/shop/items/"+vip.ID, "", "").Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/api/shop/items/missing", "", "").Code)

	// Purchases
	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodPost, "/api/shop/purchase/"+vip.ID, "", "").Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodPost, "/api/shop/purchase/missing", steve.AccessToken, "").Code)
	rec = api.do(http.MethodPost, "/api/shop/purchase/"+cape.ID, steve.AccessToken, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPost, "/api/shop/purchase/"+vip.ID, steve.AccessToken, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	purchase := decode[domain.Purchase](t, rec)
	assert.Equal(t, domain.PurchaseStatusPending, purchase.Status)
	assert.Equal(t, "VIP Rank", purchase.ItemName)
	assert.InDelta(t, 9.99, purchase.Price, 1e-9)
	assert.Equal(t, steve.User.ID, purchase.UserID)

	rec = api.do(http.MethodGet, "/api/shop/purchases", steve.AccessToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	mine := decode[[]domain.Purchase](t, rec)
	require.Len(t, mine, 1)
	assert.Equal(t, purchase.ID, mine[0].ID)

	rec = api.do(http.MethodGet, "/api/shop/purchases", admin.AccessToken, "")
	assert.Empty(t, decode[[]domain.Purchase](t, rec))

	rec = api.do(http.MethodGet, "/api/admin/stats", admin.AccessToken, "")
	stats := decode[services.Stats](t, rec)
	assert.Equal(t, int64(2), stats.TotalUsers)
	assert.Equal(t, int64(1), stats.AdminUsers)
	assert.Equal(t, int64(2), stats.TotalItems)
	assert.Equal(t, int64(1), stats.TotalPurchases)
	assert.InDelta(t, 9.99, stats.TotalRevenue, 1e-9)
	assert.Equal(t, domain.StatusSourceFallback, stats.ServerStatus.Source)
}

func TestShop_UpdateAndDeleteItem(t *testing.T) {
	api := newTestAPI(t)
	admin := api.loginAdmin(t, "Alex")

	rec := api.do(http.MethodPost, "/api/shop/items", admin.AccessToken, `{"name":"Kit","price":5}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	kit := decode[domain.ShopItem](t, rec)

	rec = api.do(http.MethodPut, "/api/shop/items/"+kit.ID, admin.AccessToken, `{"name":"Starter Kit","price":4,"in_stock":false}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[domain.ShopItem](t, rec)
	assert.Equal(t, "Starter Kit", updated.Name)
	assert.False(t, updated.InStock)

	assert.Equal(t, http.StatusNotFound, api.do(http.MethodPut, "/api/shop/items/missing", admin.AccessToken, `{"name":"x","price":1}`).Code)
	assert.Equal(t, http.StatusOK, api.do(http.MethodDelete, "/api/shop/items/"+kit.ID, admin.AccessToken, "").Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodDelete, "/api/shop/items/"+kit.ID, admin.AccessToken, "").Code)
}

func TestServerStatus_Fallback(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/api/server/status", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	st := decode[domain.ServerStatus](t, rec)
	assert.Equal(t, domain.StatusSourceFallback, st.Source)
	assert.False(t, st.Online)
	assert.Equal(t, 0, st.PlayersOnline)
	assert.Equal(t, 20, st.MaxPlayers)
	assert.Equal(t, "Unknown", st.ServerVersion)
	assert.Equal(t, "Server offline", st.MOTD)

	rec = api.do(http.MethodGet, "/api/server/players", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dto.PlayersResponse{PlayersOnline: 0, MaxPlayers: 20, Online: false}, decode[dto.PlayersResponse](t, rec))
}

func TestAdminCommands(t *testing.T) {
	api := newTestAPI(t)
	admin := api.loginAdmin(t, "Alex")

	rec := api.do(http.MethodPost, "/api/admin/commands", admin.AccessToken, `{"command":"say hello"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "say hello", decode[dto.CommandResponse](t, rec).Command.Command)

	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodPost, "/api/admin/commands", admin.AccessToken, `{"command":"  "}`).Code)

	rec = api.do(http.MethodGet, "/api/admin/commands", admin.AccessToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	cmds := decode[[]domain.AdminCommand](t, rec)
	require.Len(t, cmds, 1)
	assert.Equal(t, "Alex", cmds[0].ExecutedBy)
}
