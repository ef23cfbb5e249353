package content

import "testing"

func TestMergeLocaleOverlay(t *testing.T) {
	base := map[string]any{"price": 10.0, "label": "base"}
	translations := []*ContentTranslation{
		{LocaleCode: "es", TranslatedData: map[string]any{"label": "etiqueta", "extra": true}},
		{LocaleCode: "fr", TranslatedData: map[string]any{"label": "etiquette"}},
	}

	merged := MergeLocale(base, translations, "es")
	if merged["price"] != 10.0 {
		t.Fatalf("base value lost: %v", merged)
	}
	if merged["label"] != "etiqueta" {
		t.Fatalf("translation should win on collision, got %v", merged["label"])
	}
	if merged["extra"] != true {
		t.Fatalf("translation-only key missing: %v", merged)
	}
}

func TestMergeLocaleNoFallback(t *testing.T) {
	base := map[string]any{"price": 10.0}
	translations := []*ContentTranslation{
		{LocaleCode: "en", TranslatedData: map[string]any{"label": "label"}},
	}

	merged := MergeLocale(base, translations, "de")
	if _, ok := merged["label"]; ok {
		t.Fatalf("no fallback expected for missing locale, got %v", merged)
	}
	if merged["price"] != 10.0 {
		t.Fatalf("base data should survive: %v", merged)
	}
}

func TestMergeLocaleCaseInsensitive(t *testing.T) {
	translations := []*ContentTranslation{
		{LocaleCode: "pt-BR", TranslatedData: map[string]any{"label": "rotulo"}},
	}
	merged := MergeLocale(nil, translations, "pt-br")
	if merged["label"] != "rotulo" {
		t.Fatalf("locale match should be case-insensitive, got %v", merged)
	}
}

func TestMergeLocaleDoesNotMutate(t *testing.T) {
	base := map[string]any{"label": "base"}
	translations := []*ContentTranslation{
		{LocaleCode: "es", TranslatedData: map[string]any{"label": "etiqueta"}},
	}

	_ = MergeLocale(base, translations, "es")
	if base["label"] != "base" {
		t.Fatalf("base document mutated: %v", base)
	}
	if translations[0].TranslatedData["label"] != "etiqueta" {
		t.Fatalf("translation document mutated: %v", translations[0].TranslatedData)
	}
}
