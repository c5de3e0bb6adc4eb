package tui

import "testing"

func TestTrimTornRune(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"ascii unchanged", "hello", "hello"},
		{"complete multibyte unchanged", "café", "café"},
		{"torn trailing byte dropped", "caf\xc3", "caf"},
		{"torn three-byte sequence dropped", "ab\xe2\x94", "ab"},
		{"empty", "", ""},
		{"only torn bytes", "\xc3", ""},
		{"literal replacement char kept", "a�", "a�"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := trimTornRune(tt.in); got != tt.want {
				t.Errorf("trimTornRune(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 20); got != "short" {
		t.Errorf("truncate(short) = %q, want unchanged", got)
	}
	if got := truncate("abcdefghij", 8); got != "abcde..." {
		t.Errorf("truncate = %q, want %q", got, "abcde...")
	}
	// Never tears a rune at the cut.
	if got := truncate("ééééé", 7); got != "éé..." {
		t.Errorf("truncate multibyte = %q, want %q", got, "éé...")
	}
}

func TestFormatCount(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{23000, "23,000"},
		{1234567, "1,234,567"},
		{-4500, "-4,500"},
	}
	for _, tt := range tests {
		if got := formatCount(tt.in); got != tt.want {
			t.Errorf("formatCount(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{500, "500 B"},
		{2048, "2.0 KB"},
		{1572864, "1.5 MB"},
	}
	for _, tt := range tests {
		if got := formatFileSize(tt.in); got != tt.want {
			t.Errorf("formatFileSize(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
