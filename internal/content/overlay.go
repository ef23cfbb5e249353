package content

import "strings"

// MergeLocale overlays the translation row for locale onto the base document
// and returns the effective view. Translation values win on key collision,
// though by construction the two documents hold disjoint field sets. When no
// translation exists for the locale the base document is returned unchanged:
// translatable fields are simply absent, there is no fallback locale.
//
// Inputs are never mutated.
func MergeLocale(base map[string]any, translations []*ContentTranslation, locale string) map[string]any {
	merged := cloneMap(base)
	if merged == nil {
		merged = map[string]any{}
	}

	locale = strings.TrimSpace(locale)
	if locale == "" {
		return merged
	}

	for _, tr := range translations {
		if tr == nil || !strings.EqualFold(tr.LocaleCode, locale) {
			continue
		}
		for key, value := range tr.TranslatedData {
			merged[key] = value
		}
		break
	}
	return merged
}
