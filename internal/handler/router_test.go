package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"toolhub/internal/middleware"
	"toolhub/internal/model"
	"toolhub/internal/service"
	"toolhub/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router  *gin.Engine
	users   *memUserRepo
	tools   *memToolRepo
	jwtUtil *utils.JWTUtil
}

func sampleTools() []model.Tool {
	return []model.Tool{
		{ID: 1, Name: "Zeta", URL: "https://z.example", Type: model.ToolTypeFree, CategoryName: model.DefaultCategoryName},
		{ID: 2, Name: "Beta", URL: "https://b.example", Type: model.ToolTypePro, CategoryID: 2, CategoryName: "Writing"},
		{ID: 3, Name: "Secret", URL: "https://s.example", Type: model.ToolTypeCustom, CategoryID: 2, CategoryName: "Writing"},
		{ID: 4, Name: "Alpha", URL: "https://a.example", Type: model.ToolTypeFree, CategoryID: 2, CategoryName: "Writing"},
		{ID: 5, Name: "Canvas", URL: "https://c.example", Type: model.ToolTypeFree, CategoryID: 1, CategoryName: "Design"},
	}
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	users := newMemUserRepo()
	tools := &memToolRepo{tools: sampleTools()}
	jwtUtil := utils.NewJWTUtil("test-secret", time.Hour, utils.WithIssuer("toolhub"))

	router := NewRouter(RouterDeps{
		AuthService:    service.NewAuthService(users, jwtUtil, "boss@x.com", nil),
		CatalogService: service.NewCatalogService(tools),
		JWTUtil:        jwtUtil,
		DB:             fakePinger{},
	})
	return &testServer{router: router, users: users, tools: tools, jwtUtil: jwtUtil}
}

func (s *testServer) do(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestSignupLoginDashboard(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/signup", `{"email":"A@x.com","password":"pw123456","firstName":"Ann","lastName":"Lee"}`, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "password")
	assert.NotContains(t, w.Body.String(), "$2a$")

	var created struct {
		Message string            `json:"message"`
		User    map[string]string `json:"user"`
	}
	decode(t, w, &created)
	assert.Equal(t, "User created successfully.", created.Message)
	assert.Equal(t, "a@x.com", created.User["email"])
	assert.Equal(t, "Ann", created.User["first_name"])
	assert.Equal(t, "Lee", created.User["last_name"])
	assert.NotEmpty(t, created.User["created_at"])
	assert.Len(t, created.User, 4)

	w = s.do(http.MethodPost, "/login", `{"email":"a@X.com","password":"pw123456"}`, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login struct {
		Message string `json:"message"`
		Token   string `json:"token"`
	}
	decode(t, w, &login)
	assert.Equal(t, "Login successful.", login.Message)
	require.NotEmpty(t, login.Token)

	w = s.do(http.MethodGet, "/user/dashboard", "", login.Token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var dashboard model.Dashboard
	decode(t, w, &dashboard)
	assert.Equal(t, model.DashboardUser{Email: "a@x.com", Role: model.RoleUser, FirstName: "Ann"}, dashboard.User)

	names := make([]string, 0, len(dashboard.Tools))
	for _, tool := range dashboard.Tools {
		names = append(names, tool.Name)
		assert.True(t, tool.HasAccess)
		assert.NotEqual(t, model.ToolTypeCustom, tool.Type)
	}
	assert.Equal(t, []string{"Canvas", "Alpha", "Beta", "Zeta"}, names)
	assert.Equal(t, model.DefaultCategoryName, dashboard.Tools[len(dashboard.Tools)-1].CategoryName)
}

func TestDashboard_AdminSeesSameTools(t *testing.T) {
	s := newTestServer(t)

	userToken, err := s.jwtUtil.GenerateToken(model.SessionUser{Email: "u@x.com", Role: model.RoleUser, Name: "U"})
	require.NoError(t, err)
	adminToken, err := s.jwtUtil.GenerateToken(model.SessionUser{Email: "boss@x.com", Role: model.RoleAdmin, Name: "B"})
	require.NoError(t, err)

	var asUser, asAdmin model.Dashboard
	decode(t, s.do(http.MethodGet, "/user/dashboard", "", userToken), &asUser)
	decode(t, s.do(http.MethodGet, "/user/dashboard", "", adminToken), &asAdmin)

	assert.Equal(t, model.RoleAdmin, asAdmin.User.Role)
	assert.Equal(t, asUser.Tools, asAdmin.Tools)
}

func TestSignup_InitialAdmin(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/signup", `{"email":"Boss@x.com","password":"pw","firstName":"B","lastName":"O"}`, "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, model.RoleAdmin, s.users.users["boss@x.com"].Role)
	assert.NotContains(t, w.Body.String(), "role")
}

func TestSignup_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{"missing last name", `{"email":"a@x.com","password":"pw","firstName":"A"}`, http.StatusBadRequest, msgSignupMissingFields},
		{"blank first name", `{"email":"a@x.com","password":"pw","firstName":"  ","lastName":"L"}`, http.StatusBadRequest, msgSignupMissingFields},
		{"empty body", ``, http.StatusBadRequest, msgSignupMissingFields},
		{"malformed json", `{"email":`, http.StatusBadRequest, msgSignupMissingFields},
		{"password too long", `{"email":"a@x.com","password":"` + strings.Repeat("p", 73) + `","firstName":"A","lastName":"L"}`, http.StatusBadRequest, msgPasswordTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			w := s.do(http.MethodPost, "/signup", tt.body, "")
			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, `{"message":"`+tt.message+`"}`, w.Body.String())
			assert.Empty(t, s.users.users)
		})
	}
}

func TestSignup_Duplicate(t *testing.T) {
	s := newTestServer(t)
	body := `{"email":"a@x.com","password":"pw","firstName":"A","lastName":"L"}`

	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/signup", body, "").Code)
	w := s.do(http.MethodPost, "/signup", strings.Replace(body, "a@x.com", "A@X.COM", 1), "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"message":"A user with this email already exists."}`, w.Body.String())
}

func TestSignup_ConcurrentDuplicates(t *testing.T) {
	s := newTestServer(t)
	bodies := []string{
		`{"email":"dup@x.com","password":"pw","firstName":"A","lastName":"L"}`,
		`{"email":"DUP@x.com","password":"pw","firstName":"B","lastName":"M"}`,
	}

	codes := make([]int, len(bodies))
	var wg sync.WaitGroup
	for i, body := range bodies {
		wg.Add(1)
		go func(i int, body string) {
			defer wg.Done()
			codes[i] = s.do(http.MethodPost, "/signup", body, "").Code
		}(i, body)
	}
	wg.Wait()

	assert.ElementsMatch(t, []int{http.StatusCreated, http.StatusConflict}, codes)
	assert.Len(t, s.users.users, 1)
}

func TestSignup_StoreFailure(t *testing.T) {
	s := newTestServer(t)
	s.users.err = errStoreDown

	w := s.do(http.MethodPost, "/signup", `{"email":"a@x.com","password":"pw","firstName":"A","lastName":"L"}`, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"Internal Server Error"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "refused")
}

func TestLogin_Errors(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated,
		s.do(http.MethodPost, "/signup", `{"email":"a@x.com","password":"right","firstName":"A","lastName":"L"}`, "").Code)

	w := s.do(http.MethodPost, "/login", `{"email":"a@x.com"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"Email and password are required."}`, w.Body.String())

	w = s.do(http.MethodPost, "/login", `{"email":"   ","password":"x"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	wrongPassword := s.do(http.MethodPost, "/login", `{"email":"a@x.com","password":"wrong"}`, "")
	unknownEmail := s.do(http.MethodPost, "/login", `{"email":"nobody@x.com","password":"wrong"}`, "")
	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, wrongPassword.Code, unknownEmail.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
	assert.JSONEq(t, `{"message":"Invalid credentials."}`, wrongPassword.Body.String())

	s.users.err = errStoreDown
	w = s.do(http.MethodPost, "/login", `{"email":"a@x.com","password":"right"}`, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"Internal Server Error"}`, w.Body.String())
}

func TestDashboard_TokenRejections(t *testing.T) {
	s := newTestServer(t)

	past := time.Now().Add(-time.Hour - time.Second)
	expired, err := utils.NewJWTUtil("test-secret", time.Hour, utils.WithIssuer("toolhub"),
		utils.WithClock(func() time.Time { return past })).
		GenerateToken(model.SessionUser{Email: "a@x.com", Role: model.RoleUser})
	require.NoError(t, err)

	valid, err := s.jwtUtil.GenerateToken(model.SessionUser{Email: "a@x.com", Role: model.RoleUser})
	require.NoError(t, err)
	tampered := valid[:strings.LastIndex(valid, ".")] + ".c2lnbmF0dXJl"

	noToken := s.do(http.MethodGet, "/user/dashboard", "", "")
	expiredResp := s.do(http.MethodGet, "/user/dashboard", "", expired)
	tamperedResp := s.do(http.MethodGet, "/user/dashboard", "", tampered)

	for _, w := range []*httptest.ResponseRecorder{noToken, expiredResp, tamperedResp} {
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"message":"`+middleware.UnauthorizedMessage+`"}`, w.Body.String())
	}
	assert.Equal(t, expiredResp.Body.String(), tamperedResp.Body.String())
}

func TestDashboard_StoreFailure(t *testing.T) {
	s := newTestServer(t)
	s.tools.err = errStoreDown
	token, err := s.jwtUtil.GenerateToken(model.SessionUser{Email: "a@x.com", Role: model.RoleUser})
	require.NoError(t, err)

	w := s.do(http.MethodGet, "/user/dashboard", "", token)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"Server error fetching dashboard data."}`, w.Body.String())
}

func TestPublicTools(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/public-tools", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "Secret")
	assert.NotContains(t, w.Body.String(), "has_access")

	var groups []model.CategoryGroup
	decode(t, w, &groups)
	require.Len(t, groups, 3)
	assert.Equal(t, "Design", groups[0].CategoryName)
	assert.Equal(t, "Writing", groups[1].CategoryName)
	assert.Equal(t, model.DefaultCategoryName, groups[2].CategoryName)
	assert.Equal(t, []model.PublicTool{
		{Name: "Alpha", URL: "https://a.example", Type: model.ToolTypeFree},
		{Name: "Beta", URL: "https://b.example", Type: model.ToolTypePro},
	}, groups[1].Tools)

	s.tools.err = errStoreDown
	w = s.do(http.MethodGet, "/public-tools", "", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"Server error fetching tools list."}`, w.Body.String())
}

func TestPublicTools_Empty(t *testing.T) {
	s := newTestServer(t)
	s.tools.tools = nil

	w := s.do(http.MethodGet, "/public-tools", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	s := newTestServer(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/signup"},
		{http.MethodGet, "/login"},
		{http.MethodPost, "/user/dashboard"},
		{http.MethodDelete, "/public-tools"},
	} {
		w := s.do(tc.method, tc.path, "", "")
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, tc.method+" "+tc.path)
		assert.JSONEq(t, `{"message":"Method Not Allowed"}`, w.Body.String())
	}

	w := s.do(http.MethodGet, "/nope", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"Not Found"}`, w.Body.String())
}

func TestRouter_Preflight(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodOptions, "/login", "", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := middleware.NewMetrics(reg)
	require.NoError(t, err)
	limiter := middleware.NewMemoryRateLimiter()
	defer limiter.Close()

	jwtUtil := utils.NewJWTUtil("test-secret", time.Hour)
	router := NewRouter(RouterDeps{
		AuthService:    service.NewAuthService(newMemUserRepo(), jwtUtil, "", nil),
		CatalogService: service.NewCatalogService(&memToolRepo{}),
		JWTUtil:        jwtUtil,
		DB:             fakePinger{err: errStoreDown},
		Limiter:        limiter,
		LoginLimit:     1,
		Metrics:        metrics,
		Gatherer:       reg,
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	for i := 0; i < 2; i++ {
		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(`{}`)))
	}
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "toolhub_http_requests_total")
	assert.Contains(t, w.Body.String(), `toolhub_rate_limit_hits_total{route="login"} 1`)
}

func TestHealth_OK(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","db":"healthy"}`, w.Body.String())
}
