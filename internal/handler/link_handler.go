package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"tinylink/internal/apperrors"
	"tinylink/internal/dto"
	"tinylink/internal/model"
	"tinylink/response"
)

// LinkService is what the HTTP layer needs from service.LinkService.
type LinkService interface {
	List(ctx context.Context) ([]model.Link, error)
	Create(ctx context.Context, code, url string) (*model.Link, error)
	Get(ctx context.Context, code string) (*model.Link, error)
	Delete(ctx context.Context, code string) error
	Resolve(ctx context.Context, code, visitor string) (*model.Link, error)
}

type StatsReader interface {
	DailyStats(ctx context.Context, code string) ([]model.DailyStat, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type LinkHandler struct {
	links LinkService
	stats StatsReader
	db    Pinger
}

func NewLinkHandler(links LinkService, stats StatsReader, db Pinger) *LinkHandler {
	return &LinkHandler{links: links, stats: stats, db: db}
}

// List handles GET /api/links.
func (h *LinkHandler) List(c *gin.Context) {
	links, err := h.links.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, links)
}

// Create handles POST /api/links.
func (h *LinkHandler) Create(c *gin.Context) {
	var req dto.CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindError(req, err))
		return
	}

	link, err := h.links.Create(c.Request.Context(), req.Code, req.URL)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, link)
}

// Get handles GET /api/links/:code.
func (h *LinkHandler) Get(c *gin.Context) {
	link, err := h.links.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, link)
}

// Delete handles DELETE /api/links/:code.
func (h *LinkHandler) Delete(c *gin.Context) {
	if err := h.links.Delete(c.Request.Context(), c.Param("code")); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.OK())
}

// DailyStats handles GET /api/links/:code/stats.
func (h *LinkHandler) DailyStats(c *gin.Context) {
	code := c.Param("code")
	days, err := h.stats.DailyStats(c.Request.Context(), code)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.DailyStatsResponse{Code: strings.TrimSpace(code), Days: days})
}

// Health handles GET /api/healthz.
func (h *LinkHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// bindError turns a ShouldBindJSON failure into a 400. Validation failures report the
// field's msg tag for length limits and the shared "required" message otherwise.
func bindError(req interface{}, err error) *apperrors.AppError {
	if errors.Is(err, io.EOF) {
		return apperrors.InvalidRequestError(apperrors.MsgCodeAndURLRequired)
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return apperrors.InvalidRequestErrorDefault()
	}

	for _, e := range validationErrs {
		if e.Tag() == "required" {
			return apperrors.InvalidRequestError(apperrors.MsgCodeAndURLRequired)
		}
	}
	for _, e := range validationErrs {
		field, ok := reflect.TypeOf(req).FieldByName(e.StructField())
		if !ok {
			continue
		}
		if customMsg := field.Tag.Get("msg"); customMsg != "" {
			return apperrors.InvalidRequestError(customMsg)
		}
	}
	return apperrors.InvalidRequestErrorDefault()
}
