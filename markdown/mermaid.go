package markdown

import (
	"regexp"
	"strings"
)

var (
	headerTitleRe    = regexp.MustCompile(`(?i)^(\S.*?)(?:\s+title\s*:?\s+)(.+)$`)
	quotedTitleRe    = regexp.MustCompile(`(?i)^title\s*:?\s+"(.+)"\s*$`)
	bareTitleRe      = regexp.MustCompile(`(?i)^title\s*:?\s+(.+)$`)
	mermaidLayoutRe  = regexp.MustCompile(`(?im)^(graph|flowchart)\s+LR\b`)
	anyTitleLineRe   = regexp.MustCompile(`(?i)^title\s*:?\s+(".+"|.+)$`)
)

// normalizeMermaid unifies line endings and guarantees a trailing newline.
func normalizeMermaid(source string) string {
	text := strings.ReplaceAll(source, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.TrimSpace(text) + "\n"
}

// ExtractMermaidTitle pulls the diagram title out of the header line (some
// diagram headers embed one, e.g. "xychart-beta title: Foo") or the first
// standalone title directive. Directive comments (%%) are skipped.
func ExtractMermaidTitle(source string) string {
	headerFound := false
	for _, raw := range strings.Split(normalizeMermaid(source), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "%%{") && strings.HasSuffix(line, "}%%") {
			continue
		}
		if strings.HasPrefix(line, "%%") {
			continue
		}
		if !headerFound {
			headerFound = true
			if m := headerTitleRe.FindStringSubmatch(line); m != nil {
				title := strings.Trim(strings.TrimSpace(m[2]), `"'`)
				if title != "" {
					return title
				}
			}
			continue
		}
		if m := quotedTitleRe.FindStringSubmatch(line); m != nil {
			return strings.TrimSpace(m[1])
		}
		if m := bareTitleRe.FindStringSubmatch(line); m != nil {
			return strings.Trim(strings.TrimSpace(m[1]), `"'`)
		}
	}
	return ""
}

// StripMermaidTitle removes title directives from the source before handing
// it to the renderer. Captions already carry the title.
func StripMermaidTitle(source string) string {
	var out []string
	headerFound := false
	titleStripped := false
	meaningfulAfterHeader := false
	for _, line := range strings.Split(normalizeMermaid(source), "\n") {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			out = append(out, line)
			continue
		}
		if strings.HasPrefix(stripped, "%%{") && strings.HasSuffix(stripped, "}%%") {
			out = append(out, line)
			continue
		}
		if strings.HasPrefix(stripped, "%%") {
			out = append(out, line)
			continue
		}
		if !headerFound {
			headerFound = true
			if m := headerTitleRe.FindStringSubmatch(stripped); m != nil {
				cleaned := strings.TrimSpace(m[1])
				if cleaned == "" {
					cleaned = stripped
				}
				out = append(out, cleaned)
				titleStripped = true
				continue
			}
			out = append(out, line)
			continue
		}
		if !titleStripped && !meaningfulAfterHeader {
			if anyTitleLineRe.MatchString(stripped) {
				titleStripped = true
				continue
			}
		}
		meaningfulAfterHeader = true
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n")) + "\n"
}

// OptimizeMermaidLayout rewrites left-to-right flowcharts as top-down, which
// generally fits page-width constraints better.
func OptimizeMermaidLayout(source string) string {
	return mermaidLayoutRe.ReplaceAllString(source, "$1 TD")
}
