package dashboard

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templates embed.FS

const timeLayout = "2006-01-02 15:04:05 MST"

var funcs = template.FuncMap{
	"formatTime": func(t time.Time) string { return t.Format(timeLayout) },
	"lastClicked": func(t *time.Time) string {
		if t == nil {
			return "Never"
		}
		return t.Format(timeLayout)
	},
}

// Web serves the server-rendered dashboard on top of the links API.
type Web struct {
	api  LinksAPI
	tmpl *template.Template
}

func NewWeb(api LinksAPI) (*Web, error) {
	tmpl, err := template.New("dashboard").Funcs(funcs).ParseFS(templates, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Web{api: api, tmpl: tmpl}, nil
}

// Register mounts the dashboard pages.
func (w *Web) Register(r *gin.Engine) {
	r.SetHTMLTemplate(w.tmpl)
	r.GET("/", w.Index)
	r.POST("/dashboard/links", w.Create)
	r.POST("/dashboard/links/:code/delete", w.Delete)
	r.GET("/code/:code", w.Stats)
}

type indexPage struct {
	View      *ListView
	ShortBase string
}

type statsPage struct {
	View *StatsView
}

// Index handles GET /.
func (w *Web) Index(c *gin.Context) {
	view := NewListView()
	view.Load(w.ctx(c), w.api)
	w.renderIndex(c, view)
}

// Create handles POST /dashboard/links.
func (w *Web) Create(c *gin.Context) {
	ctx := w.ctx(c)
	view := NewListView()
	if view.Submit(ctx, w.api, c.PostForm("code"), c.PostForm("url")) {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	view.Load(ctx, w.api)
	w.renderIndex(c, view)
}

// Delete handles POST /dashboard/links/:code/delete.
func (w *Web) Delete(c *gin.Context) {
	ctx := w.ctx(c)
	view := NewListView()
	if view.Remove(ctx, w.api, c.Param("code")) {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	errMsg := view.Error
	view.Load(ctx, w.api)
	if view.Error == MsgLoadFailed && errMsg != "" {
		view.Error = errMsg
	}
	w.renderIndex(c, view)
}

// Stats handles GET /code/:code.
func (w *Web) Stats(c *gin.Context) {
	view := NewStatsView()
	view.Load(w.ctx(c), w.api, c.Param("code"))

	status := http.StatusOK
	if view.Failed() {
		status = http.StatusNotFound
		if view.Error == MsgStatsLoadFailed {
			status = http.StatusBadGateway
		}
	}
	c.HTML(status, "stats.html", statsPage{View: view})
}

func (w *Web) renderIndex(c *gin.Context, view *ListView) {
	c.HTML(http.StatusOK, "index.html", indexPage{View: view, ShortBase: shortBase(c.Request)})
}

func (w *Web) ctx(c *gin.Context) context.Context {
	return WithAcceptLanguage(c.Request.Context(), c.GetHeader("Accept-Language"))
}

func shortBase(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
