package dashboard

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tinylink/internal/model"
)

func newWebEngine(t *testing.T, api LinksAPI) *gin.Engine {
	t.Helper()
	web, err := NewWeb(api)
	require.NoError(t, err)

	r := gin.New()
	web.Register(r)
	return r
}

func postForm(r http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestWeb_Index(t *testing.T) {
	last := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	api := &fakeAPI{links: []model.Link{
		{Code: "gh", URL: "https://github.com", Clicks: 7, LastClicked: &last},
		{Code: "new", URL: "https://example.com"},
	}}
	r := newWebEngine(t, api)

	w := get(r, "/")
	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "TinyLink Dashboard")
	assert.Contains(t, body, `href="/gh"`)
	assert.Contains(t, body, `href="/code/gh"`)
	assert.Contains(t, body, `action="/dashboard/links/gh/delete"`)
	assert.Contains(t, body, "2024-05-01 10:00:00 UTC")
	assert.Contains(t, body, "Never")
	assert.Contains(t, body, "confirm(")
}

func TestWeb_IndexEmptyAndError(t *testing.T) {
	w := get(newWebEngine(t, &fakeAPI{}), "/")
	assert.Contains(t, w.Body.String(), "No links yet.")

	w = get(newWebEngine(t, &fakeAPI{listErr: errors.New("down")}), "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), MsgLoadFailed)
}

func TestWeb_CreateSuccessRedirects(t *testing.T) {
	api := &fakeAPI{}
	r := newWebEngine(t, api)

	w := postForm(r, "/dashboard/links", url.Values{"code": {"gh"}, "url": {"https://github.com"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.Equal(t, []string{"gh"}, api.created)
}

func TestWeb_CreateFailureKeepsForm(t *testing.T) {
	api := &fakeAPI{createErr: &APIError{Status: http.StatusConflict, Message: "Code already exists. Choose another."}}
	r := newWebEngine(t, api)

	w := postForm(r, "/dashboard/links", url.Values{"code": {"gh"}, "url": {"https://github.com"}})
	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Code already exists. Choose another.")
	assert.Contains(t, body, `value="gh"`)
	assert.Contains(t, body, `value="https://github.com"`)

	w = postForm(r, "/dashboard/links", url.Values{"code": {"gh"}})
	assert.Contains(t, w.Body.String(), MsgFieldsRequired)
	assert.Len(t, api.created, 1)
}

func TestWeb_Delete(t *testing.T) {
	api := &fakeAPI{links: sampleLinks()}
	r := newWebEngine(t, api)

	w := postForm(r, "/dashboard/links/b/delete", nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, []string{"b"}, api.deleted)

	api.deleteErr = &APIError{Status: http.StatusNotFound, Message: "Not found"}
	w = postForm(r, "/dashboard/links/zz/delete", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Not found")
	assert.Contains(t, w.Body.String(), `href="/b"`)
}

func TestWeb_Stats(t *testing.T) {
	api := &fakeAPI{
		links: []model.Link{{Code: "gh", URL: "https://github.com", Clicks: 3}},
		days:  []model.DailyStat{{Date: "2024-05-01", Clicks: 3, Visitors: 1}},
	}
	r := newWebEngine(t, api)

	w := get(r, "/code/gh")
	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Stats for: gh")
	assert.Contains(t, body, "https://github.com")
	assert.Contains(t, body, "2024-05-01")
	assert.Contains(t, body, "Never")

	w = get(r, "/code/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Not found")
	assert.NotContains(t, w.Body.String(), "Stats for:")
}
