package utils

// Minimal server-side i18n for fixed keys.
// UI strings live in the frontend; the server provides only essentials.

var translations = map[string]map[string]string{
	"en": {
		"health.ok":   "ok",
		"pin.invalid": "Invalid PIN",
	},
	"es": {
		"health.ok":   "bien",
		"pin.invalid": "PIN no válido",
	},
}

// T returns the translated string for key in locale; falls back to English.
func T(locale, key string) string {
	if m, ok := translations[locale]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if m, ok := translations["en"]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return key
}
