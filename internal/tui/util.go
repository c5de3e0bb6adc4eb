package tui

import (
	"fmt"
	"os"
	"strconv"
	"unicode/utf8"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"
)

// termSizeOpts probes the terminal size so the first frame is laid out
// before the first WindowSizeMsg arrives.
func termSizeOpts() []tea.ProgramOption {
	var opts []tea.ProgramOption
	for _, fd := range []int{int(os.Stdout.Fd()), int(os.Stdin.Fd()), int(os.Stderr.Fd())} {
		if term.IsTerminal(fd) {
			w, h, err := term.GetSize(fd)
			if err == nil && w > 0 && h > 0 {
				opts = append(opts, tea.WithWindowSize(w, h))
				break
			}
		}
	}
	return opts
}

// trimTornRune drops an incomplete trailing UTF-8 sequence from s.
// Disclosure slices cut at byte offsets; the renderer owns making the
// cut safe to display.
func trimTornRune(s string) string {
	for len(s) > 0 {
		r, size := utf8.DecodeLastRuneInString(s)
		if r != utf8.RuneError || size != 1 {
			return s
		}
		s = s[:len(s)-1]
	}
	return s
}

// truncate shortens s to at most n bytes without tearing a rune,
// appending an ellipsis when anything was cut.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return trimTornRune(s[:n])
	}
	return trimTornRune(s[:n-3]) + "..."
}

// formatCount renders n with thousands separators for disclosure
// footers ("23,000").
func formatCount(n int) string {
	s := strconv.Itoa(n)
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	if len(s) <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}
	var out []byte
	lead := len(s) % 3
	if lead > 0 {
		out = append(out, s[:lead]...)
	}
	for i := lead; i < len(s); i += 3 {
		if len(out) > 0 {
			out = append(out, ',')
		}
		out = append(out, s[i:i+3]...)
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}

// formatFileSize formats a byte count for the picker.
func formatFileSize(size int64) string {
	const (
		KB = 1024
		MB = 1024 * KB
	)
	switch {
	case size >= MB:
		return fmt.Sprintf("%.1f MB", float64(size)/float64(MB))
	case size >= KB:
		return fmt.Sprintf("%.1f KB", float64(size)/float64(KB))
	default:
		return fmt.Sprintf("%d B", size)
	}
}
