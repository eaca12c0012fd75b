package markdown

import (
	"regexp"
	"strings"
)

var (
	singleLineBracketMathRe = regexp.MustCompile(`^\\\[(.*)\\\]$`)
	singleLineDollarMathRe  = regexp.MustCompile(`^\$\$(.*)\$\$$`)
)

// extractSingleLineMath recognizes one-line display math, either
// \[ ... \] or $$ ... $$, and returns the enclosed latex.
func extractSingleLineMath(line string) (string, bool) {
	s := strings.TrimSpace(line)
	if m := singleLineBracketMathRe.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	if m := singleLineDollarMathRe.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	return "", false
}
