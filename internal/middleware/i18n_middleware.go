package middleware

import (
	"github.com/gin-gonic/gin"
	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"tinylink/internal/i18n"
)

// I18nMiddleware picks the best supported language from Accept-Language and stores a
// localizer on the request context. Unsupported or missing headers fall back to the
// bundle's default language.
func I18nMiddleware(bundle *goi18n.Bundle) gin.HandlerFunc {
	matcher := language.NewMatcher(bundle.LanguageTags())

	return func(c *gin.Context) {
		tags, _, _ := language.ParseAcceptLanguage(c.GetHeader("Accept-Language"))
		_, idx, confidence := matcher.Match(tags...)

		lang := bundle.LanguageTags()[0].String()
		if confidence != language.No {
			lang = bundle.LanguageTags()[idx].String()
		}

		localizer := goi18n.NewLocalizer(bundle, lang)
		c.Request = c.Request.WithContext(i18n.WithLocalizer(c.Request.Context(), localizer))
		c.Next()
	}
}
