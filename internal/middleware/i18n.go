// internal/middleware/i18n.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/frima-market/frima-gateway/internal/i18n"
)

// I18nMiddleware picks the response language from ?lang= or the first
// supported entry of Accept-Language.
func I18nMiddleware(defaultLang string) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := defaultLang
		if q := normalizeLang(c.Query("lang")); q != "" {
			lang = q
		} else {
			for _, part := range strings.Split(c.GetHeader("Accept-Language"), ",") {
				if l := normalizeLang(strings.Split(part, ";")[0]); l != "" {
					lang = l
					break
				}
			}
		}

		c.Set("lang", lang)
		c.Next()
	}
}

func normalizeLang(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	switch {
	case tag == "ja" || strings.HasPrefix(tag, "ja-") || strings.HasPrefix(tag, "ja_"):
		return i18n.LangJA
	case tag == "en" || strings.HasPrefix(tag, "en-") || strings.HasPrefix(tag, "en_"):
		return i18n.LangEN
	}
	return ""
}
