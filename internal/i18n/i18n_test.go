package i18n

import (
	"testing"
)

func TestT_ReturnsDefaultMessage(t *testing.T) {
	Init("en")
	got := T("transcript.loading", "Loading...")
	if got != "Loading..." {
		t.Errorf("T() = %q, want %q", got, "Loading...")
	}
}

func TestT_UnknownKeyFallsBack(t *testing.T) {
	Init("en")
	got := T("no.such.key", "fallback text")
	if got != "fallback text" {
		t.Errorf("T() = %q, want %q", got, "fallback text")
	}
}

func TestTn_Pluralization(t *testing.T) {
	Init("en")

	one := Tn("picker.turns", "{{.Count}} turn", "{{.Count}} turns", 1)
	if one != "1 turn" {
		t.Errorf("Tn(1) = %q, want %q", one, "1 turn")
	}

	many := Tn("picker.turns", "{{.Count}} turn", "{{.Count}} turns", 5)
	if many != "5 turns" {
		t.Errorf("Tn(5) = %q, want %q", many, "5 turns")
	}
}

func TestTn_UninitializedSubstitutesCount(t *testing.T) {
	mu.Lock()
	saved := localizer
	localizer = nil
	mu.Unlock()
	defer func() {
		mu.Lock()
		localizer = saved
		mu.Unlock()
	}()

	got := Tn("picker.turns", "{{.Count}} turn", "{{.Count}} turns", 3)
	if got != "3 turns" {
		t.Errorf("Tn() = %q, want %q", got, "3 turns")
	}
	if got := Tn("picker.turns", "{{.Count}} turn", "{{.Count}} turns", 1); got != "1 turn" {
		t.Errorf("Tn() = %q, want %q", got, "1 turn")
	}
}

func TestTf_Formats(t *testing.T) {
	Init("en")
	got := Tf("transcript.hidden", "%s hidden", "12,000")
	if got != "12,000 hidden" {
		t.Errorf("Tf() = %q, want %q", got, "12,000 hidden")
	}
}

func TestInit_FallbackToEnglish(t *testing.T) {
	Init("xx-nonexistent")
	got := T("transcript.loading", "Loading...")
	if got != "Loading..." {
		t.Errorf("expected English fallback, got %q", got)
	}
}

func TestResolveLocale(t *testing.T) {
	tests := []struct {
		name       string
		env        map[string]string
		configLang string
		want       string
	}{
		{"parley lang wins", map[string]string{"PARLEY_LANG": "es", "LANG": "de_DE.UTF-8"}, "fr", "es"},
		{"config next", map[string]string{"LANG": "de_DE.UTF-8"}, "es", "es"},
		{"lc_all normalized", map[string]string{"LC_ALL": "es_MX.UTF-8"}, "", "es-MX"},
		{"lang normalized", map[string]string{"LANG": "es_ES.utf8"}, "", "es-ES"},
		{"default english", nil, "", "en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"PARLEY_LANG", "LC_ALL", "LANG"} {
				t.Setenv(k, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if got := ResolveLocale(tt.configLang); got != tt.want {
				t.Errorf("ResolveLocale(%q) = %q, want %q", tt.configLang, got, tt.want)
			}
		})
	}
}
