package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tinylink/internal/apperrors"
	"tinylink/internal/i18n"
	"tinylink/internal/middleware"
	"tinylink/internal/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// failingService fails every call with err.
type failingService struct{ err error }

func (f failingService) List(context.Context) ([]model.Link, error) { return nil, f.err }
func (f failingService) Create(context.Context, string, string) (*model.Link, error) {
	return nil, f.err
}
func (f failingService) Get(context.Context, string) (*model.Link, error) { return nil, f.err }
func (f failingService) Delete(context.Context, string) error             { return f.err }
func (f failingService) Resolve(context.Context, string, string) (*model.Link, error) {
	return nil, f.err
}
func (f failingService) DailyStats(context.Context, string) ([]model.DailyStat, error) {
	return nil, f.err
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func newTestEngine(t *testing.T, h *LinkHandler) *gin.Engine {
	t.Helper()
	bundle, err := i18n.InitI18n("en")
	require.NoError(t, err)

	r := gin.New()
	r.Use(middleware.I18nMiddleware(bundle), middleware.GlobalErrorMiddleware())
	r.GET("/api/healthz", h.Health)
	r.GET("/api/links", h.List)
	r.POST("/api/links", h.Create)
	r.DELETE("/api/links/:code", h.Delete)
	r.GET("/api/links/:code/stats", h.DailyStats)
	r.GET("/:code", h.Redirect)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLinkHandler_StoreFailuresAre500(t *testing.T) {
	svc := failingService{err: apperrors.SystemError(apperrors.MsgListFailed, errors.New("db gone"))}
	r := newTestEngine(t, NewLinkHandler(svc, svc, pingFunc(func(context.Context) error { return nil })))

	w := do(r, http.MethodGet, "/api/links", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch links"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "db gone")
}

func TestLinkHandler_RedirectFailureIsPlainText500(t *testing.T) {
	svc := failingService{err: apperrors.SystemErrorDefault()}
	r := newTestEngine(t, NewLinkHandler(svc, svc, nil))

	w := do(r, http.MethodGet, "/gh", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", w.Body.String())
	assert.Empty(t, w.Header().Get("Location"))
}

func TestLinkHandler_CreateBindErrors(t *testing.T) {
	svc := failingService{err: errors.New("service must not be reached")}
	r := newTestEngine(t, NewLinkHandler(svc, svc, nil))

	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty body", "", "URL and code are required"},
		{"missing url", `{"code":"x"}`, "URL and code are required"},
		{"missing code", `{"url":"https://example.com"}`, "URL and code are required"},
		{"empty strings", `{"code":"","url":""}`, "URL and code are required"},
		{"malformed", `{"code":`, "Request body must be a JSON object with code and url"},
		{"wrong type", `{"code":1,"url":"https://example.com"}`, "Request body must be a JSON object with code and url"},
		{"code too long", `{"code":"` + strings.Repeat("c", 65) + `","url":"https://example.com"}`, "Code must be at most 64 characters"},
		{"url too long", `{"code":"x","url":"https://e.com/` + strings.Repeat("u", 2048) + `"}`, "URL must be at most 2048 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/links", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"error":"`+tt.want+`"}`, w.Body.String())
		})
	}
}

func TestLinkHandler_Health(t *testing.T) {
	healthy := newTestEngine(t, NewLinkHandler(nil, nil, pingFunc(func(context.Context) error { return nil })))
	w := do(healthy, http.MethodGet, "/api/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	down := newTestEngine(t, NewLinkHandler(nil, nil, pingFunc(func(context.Context) error { return errors.New("refused") })))
	w = do(down, http.MethodGet, "/api/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"unavailable"}`, w.Body.String())
}
