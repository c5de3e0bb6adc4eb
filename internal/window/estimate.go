package window

import "github.com/parleyhq/go-parley/internal/parley"

// chromeRows is the fixed rendering overhead of a turn: the role
// header line and the trailing separator.
const chromeRows = 2

// minEstimateWidth keeps the estimate sane before the first real
// WindowSizeMsg arrives.
const minEstimateWidth = 20

// EstimateExtent guesses the rendered row extent of a turn before a
// real measurement exists. Pure and deterministic; monotonic in
// contentLen. Assistant turns assume fewer characters per rendered row
// than user turns because their output carries structure (code fences,
// lists, headings) that renders taller per character.
//
// The estimate only has to be close enough to avoid visible layout
// jumps until the first measurement replaces it.
func EstimateExtent(role parley.Role, contentLen, width int) int {
	if width < minEstimateWidth {
		width = minEstimateWidth
	}
	perRow := width
	if role == parley.RoleAssistant {
		perRow = width * 2 / 3
		if perRow < 1 {
			perRow = 1
		}
	}
	rows := 1
	if contentLen > 0 {
		rows = (contentLen + perRow - 1) / perRow
	}
	return rows + chromeRows
}
