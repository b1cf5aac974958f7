package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tinylink/constant"
)

// Redirect handles GET /:code. The click is stored before the 302 is written; on any
// failure no redirect is issued and the error is rendered as plain text.
func (h *LinkHandler) Redirect(c *gin.Context) {
	c.Set(constant.PlainTextErrorsKey, true)

	link, err := h.links.Resolve(c.Request.Context(), c.Param("code"), c.ClientIP())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Redirect(http.StatusFound, link.URL)
}
