package middleware

import (
	"context"
	"net/http"

	"github.com/stillpath/stillpath/internal/utils"
)

type ctxKey int

const localeKey ctxKey = 1

// SupportedLocales are the languages the server can answer in; the
// owner's settings.language uses the same values.
var SupportedLocales = []string{"en", "es"}

// Locale resolves the request language from the lang query param or
// Accept-Language and stores it in the request context.
func Locale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale := utils.DetermineLocale(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"), SupportedLocales, "en")
		ctx := context.WithValue(r.Context(), localeKey, locale)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LocaleFromContext retrieves the locale stored by Locale.
func LocaleFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(localeKey).(string); ok {
		return s
	}
	return "en"
}
