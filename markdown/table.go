package markdown

import (
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"
)

var (
	separatorCellRe = regexp.MustCompile(`^:?-{3,}:?$`)
	inlineCodeRe    = regexp.MustCompile("`([^`]+)`")
	inlineLinkRe    = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	spacesRe        = regexp.MustCompile(`\s+`)
	cellBreakRe     = regexp.MustCompile(`(?:<br\s*/?>|\n)`)
)

const maxColumnWeight = 40

// LayoutTable parses a contiguous run of pipe-delimited lines into a Table
// with per-column alignment and resolved widths. availableWidth and
// minCellWidth are in the output unit of the caller (twips); the sum of
// resolved widths always equals availableWidth exactly. Returns false when
// the run is too short to form a table.
func (r *Resolver) LayoutTable(lines []string, availableWidth, minCellWidth int) (Table, bool) {
	if len(lines) < 2 {
		return Table{}, false
	}

	var rawRows [][]string
	for _, l := range lines {
		if !strings.HasPrefix(strings.TrimSpace(l), "|") {
			continue
		}
		rawRows = append(rawRows, splitRow(l))
	}
	if len(rawRows) == 0 {
		return Table{}, false
	}

	sepIdx := -1
	if len(rawRows) > 1 && isSeparatorRow(rawRows[1]) {
		sepIdx = 1
	}
	header := rawRows[0]
	var body [][]string
	if sepIdx >= 0 {
		body = rawRows[sepIdx+1:]
	} else {
		body = rawRows[1:]
	}

	numCols := len(header)
	for _, row := range body {
		if len(row) > numCols {
			numCols = len(row)
		}
	}
	header = padRow(header, numCols)
	for i, row := range body {
		body[i] = padRow(row, numCols)
	}

	aligns := make([]Alignment, numCols)
	if sepIdx == 1 {
		for i, c := range padRow(rawRows[1], numCols) {
			aligns[i] = columnAlignment(c)
		}
	}

	widths := resolveWidths(header, body, numCols, availableWidth, minCellWidth)

	t := Table{
		Header: make([]Cell, numCols),
		Body:   make([][]Cell, len(body)),
		Aligns: aligns,
		Widths: widths,
	}
	for ci := 0; ci < numCols; ci++ {
		t.Header[ci] = r.resolveCell(header[ci])
	}
	for ri, row := range body {
		t.Body[ri] = make([]Cell, numCols)
		for ci := 0; ci < numCols; ci++ {
			t.Body[ri][ci] = r.resolveCell(row[ci])
		}
	}
	return t, true
}

// resolveCell splits cell text on explicit line breaks and resolves each
// sub-paragraph independently.
func (r *Resolver) resolveCell(text string) Cell {
	parts := cellBreakRe.Split(text, -1)
	if len(parts) == 0 {
		parts = []string{""}
	}
	c := Cell{Paragraphs: make([][]Span, len(parts))}
	for i, p := range parts {
		c.Paragraphs[i] = r.Resolve(p)
	}
	return c
}

// resolveWidths computes column widths proportional to content, bounded,
// then normalized so the total matches availableWidth exactly.
func resolveWidths(header []string, body [][]string, numCols, availableWidth, minCellWidth int) []int {
	minCol := minCellWidth
	if byCount := availableWidth / max(1, numCols*3); byCount > minCol {
		minCol = byCount
	}

	weights := make([]int, numCols)
	for ci := 0; ci < numCols; ci++ {
		maxLen := plainLength(header[ci])
		for _, row := range body {
			if l := plainLength(row[ci]); l > maxLen {
				maxLen = l
			}
		}
		weights[ci] = max(1, min(maxLen, maxColumnWeight))
	}

	sumW := 0
	for _, w := range weights {
		sumW += w
	}
	if sumW == 0 {
		sumW = 1
	}

	widths := make([]int, numCols)
	total := 0
	for ci, w := range weights {
		widths[ci] = max(minCol, availableWidth*w/sumW)
		total += widths[ci]
	}
	if total > availableWidth {
		even := max(1, availableWidth/max(1, numCols))
		total = 0
		for ci := range widths {
			widths[ci] = even
			total += even
		}
	}
	if total < availableWidth {
		// hand the remainder out one unit at a time, heaviest columns first
		order := make([]int, numCols)
		for i := range order {
			order[i] = i
		}
		for i := 0; i < numCols; i++ {
			for j := i + 1; j < numCols; j++ {
				if weights[order[j]] > weights[order[i]] {
					order[i], order[j] = order[j], order[i]
				}
			}
		}
		for rem, oi := availableWidth-total, 0; rem > 0; rem, oi = rem-1, oi+1 {
			widths[order[oi%numCols]]++
		}
	}
	return widths
}

// plainLength measures the display width of cell text with inline code and
// link markup stripped first.
func plainLength(s string) int {
	t := inlineCodeRe.ReplaceAllString(s, "$1")
	t = inlineLinkRe.ReplaceAllString(t, "$1")
	t = strings.TrimSpace(spacesRe.ReplaceAllString(t, " "))
	return runewidth.StringWidth(t)
}

// splitRow keeps empty cells and trims surrounding pipes.
func splitRow(line string) []string {
	raw := strings.Trim(strings.TrimSpace(line), "|")
	cells := strings.Split(raw, "|")
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	return cells
}

func isSeparatorRow(cells []string) bool {
	if len(cells) == 0 {
		return false
	}
	for _, c := range cells {
		if !separatorCellRe.MatchString(strings.TrimSpace(c)) {
			return false
		}
	}
	return true
}

func columnAlignment(cell string) Alignment {
	s := strings.TrimSpace(cell)
	switch {
	case strings.HasPrefix(s, ":") && strings.HasSuffix(s, ":"):
		return AlignCenter
	case strings.HasSuffix(s, ":"):
		return AlignRight
	default:
		return AlignLeft
	}
}

func padRow(row []string, n int) []string {
	for len(row) < n {
		row = append(row, "")
	}
	return row
}
