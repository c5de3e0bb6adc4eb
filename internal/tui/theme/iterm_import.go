package theme

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strings"
)

// ParseItermColors parses an iTerm2 .itermcolors plist XML file and returns
// a map of color names to RGB float64 triples (0.0-1.0).
func ParseItermColors(r io.Reader) (map[string][3]float64, error) {
	decoder := xml.NewDecoder(r)
	colors := make(map[string][3]float64)

	// Navigate to the top-level <dict> inside <plist>
	if err := seekElement(decoder, "dict"); err != nil {
		return nil, fmt.Errorf("plist: missing top-level dict: %w", err)
	}

	// Parse key/dict pairs inside the top-level dict
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("plist: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		if start.Name.Local == "key" {
			name, err := readText(decoder)
			if err != nil {
				return nil, err
			}

			// Expect a <dict> with the color components
			if err := seekElement(decoder, "dict"); err != nil {
				continue // skip non-dict values
			}

			rgb, err := parseColorDict(decoder)
			if err != nil {
				return nil, fmt.Errorf("plist: color %q: %w", name, err)
			}

			colors[name] = rgb
		}
	}

	if len(colors) == 0 {
		return nil, fmt.Errorf("plist: no colors found")
	}

	return colors, nil
}

// parseColorDict reads key/value pairs from inside a color <dict>,
// extracting only the Red/Green/Blue Component real values.
func parseColorDict(decoder *xml.Decoder) ([3]float64, error) {
	var rgb [3]float64
	depth := 1 // we're inside the dict

	for depth > 0 {
		tok, err := decoder.Token()
		if err != nil {
			return rgb, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "key" {
				key, err := readText(decoder)
				if err != nil {
					return rgb, err
				}

				// Read the next value element (could be <real>, <string>, <integer>, etc.)
				valTag, err := nextStartElement(decoder)
				if err != nil {
					continue
				}
				valStr, err := readText(decoder)
				if err != nil {
					return rgb, err
				}

				// Only care about <real> values for RGB components
				if valTag != "real" {
					continue
				}

				var val float64
				if _, err := fmt.Sscanf(valStr, "%f", &val); err != nil {
					continue
				}

				switch key {
				case "Red Component":
					rgb[0] = val
				case "Green Component":
					rgb[1] = val
				case "Blue Component":
					rgb[2] = val
				}
			}
		case xml.EndElement:
			if t.Name.Local == "dict" {
				depth--
			}
		}
	}

	return rgb, nil
}

// nextStartElement advances until the next StartElement and returns its local name.
func nextStartElement(decoder *xml.Decoder) (string, error) {
	for {
		tok, err := decoder.Token()
		if err != nil {
			return "", err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start.Name.Local, nil
		}
	}
}

// seekElement advances the decoder to the next StartElement with the given name.
func seekElement(decoder *xml.Decoder, name string) error {
	for {
		tok, err := decoder.Token()
		if err != nil {
			return err
		}
		if start, ok := tok.(xml.StartElement); ok && start.Name.Local == name {
			return nil
		}
	}
}

// readText reads the character data inside the current element until its end tag.
func readText(decoder *xml.Decoder) (string, error) {
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.Write(t)
		case xml.EndElement:
			return strings.TrimSpace(buf.String()), nil
		}
	}
}

// floatToHex converts 0.0-1.0 RGB floats to a hex color string.
func floatToHex(r, g, b float64) string {
	ri := int(math.Round(clampF(r, 0, 1) * 255))
	gi := int(math.Round(clampF(g, 0, 1) * 255))
	bi := int(math.Round(clampF(b, 0, 1) * 255))
	return rgbToHex(ri, gi, bi)
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// rgbToHex formats 0-255 RGB components as "#RRGGBB".
func rgbToHex(r, g, b int) string {
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

// hexToRGB parses a "#RRGGBB" color into 0-255 components.
// Malformed input yields black.
func hexToRGB(hex string) (int, int, int) {
	hex = strings.TrimPrefix(hex, "#")
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		return 0, 0, 0
	}
	return r, g, b
}

// luminance returns the relative luminance of a hex color in 0.0-1.0.
func luminance(hex string) float64 {
	r, g, b := hexToRGB(hex)
	return (0.2126*float64(r) + 0.7152*float64(g) + 0.0722*float64(b)) / 255
}

// contrastFor picks black or white text for the given background color.
func contrastFor(bg string) string {
	if luminance(bg) > 0.55 {
		return "#000000"
	}
	return "#FFFFFF"
}

// blendColors linearly interpolates between two hex colors.
// t=0 returns a, t=1 returns b.
func blendColors(a, b string, t float64) string {
	ar, ag, ab := hexToRGB(a)
	br, bg, bb := hexToRGB(b)

	lerp := func(x, y int, t float64) int {
		return int(math.Round(float64(x)*(1-t) + float64(y)*t))
	}

	return rgbToHex(
		lerp(ar, br, t),
		lerp(ag, bg, t),
		lerp(ab, bb, t),
	)
}

// ImportIterm converts an iTerm2 .itermcolors file into a Theme.
//
// The mapping leans on the scheme's ANSI palette: blue for the user,
// green for the assistant, yellow for tools, bright black for muted
// chrome. The markdown style follows the background's luminance so
// light schemes get glamour's light rendering.
func ImportIterm(r io.Reader, name string) (Theme, error) {
	colors, err := ParseItermColors(r)
	if err != nil {
		return Theme{}, err
	}

	get := func(key string) string {
		if c, ok := colors[key]; ok {
			return floatToHex(c[0], c[1], c[2])
		}
		return "#888888"
	}

	bg := get("Background Color")
	fg := get("Foreground Color")

	ansi := func(n int) string {
		return get(fmt.Sprintf("Ansi %d Color", n))
	}

	// ANSI color assignments:
	// 0=black 1=red 2=green 3=yellow 4=blue 5=magenta 6=cyan 7=white
	// 8-15 = bright variants

	accent := ansi(12)       // bright blue
	textSecondary := ansi(8) // bright black (gray)

	markdown := "dark"
	if luminance(bg) > 0.5 {
		markdown = "light"
	}

	t := Theme{
		Name:        name,
		Description: fmt.Sprintf("Imported from %s iTerm2 color scheme", name),

		Accent:         accent,
		BorderActive:   accent,
		BorderInactive: ansi(8),

		Markdown: markdown,

		TextPrimary:   Style{Fg: fg},
		TextSecondary: Style{Fg: textSecondary},
		TextMuted:     Style{Fg: blendColors(ansi(8), bg, 0.4)},

		UserLabel:      Style{Fg: ansi(4), Bold: true},
		AssistantLabel: Style{Fg: ansi(2), Bold: true},
		SystemLabel:    Style{Fg: ansi(8), Italic: true},
		ToolLabel:      Style{Fg: ansi(3), Bold: true},

		UserBar:      ansi(4),
		AssistantBar: ansi(2),
		SystemBar:    ansi(8),
		ToolBar:      ansi(3),

		Disclosure: Style{Fg: ansi(3), Italic: true},
		Streaming:  Style{Fg: ansi(10), Bold: true},
		StatusBar:  Style{Fg: textSecondary, Bg: blendColors(bg, fg, 0.07)},
		Selection:  Style{Fg: contrastFor(accent), Bg: accent, Bold: true},
	}

	return t, nil
}
