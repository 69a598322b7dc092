package extract

import (
	"regexp"
	"strings"
)

// locateJSON narrows trimmed generator text to the JSON object candidate.
// Strategies are tried in priority order, stopping at the first that applies:
// a ```json fenced block, then the first generic ``` fence pair, then a
// balanced {...} span when the text still does not start with an object.
func locateJSON(text string) string {
	for _, strategy := range []func(string) (string, bool){
		fencedJSONBlock,
		firstFencedBlock,
	} {
		if inner, ok := strategy(text); ok {
			text = inner
			break
		}
	}
	if !strings.HasPrefix(text, "{") {
		if span, ok := braceSpan(text); ok {
			return span
		}
	}
	return text
}

// fencedJSONBlock extracts the body of a ```json ... ``` block.
func fencedJSONBlock(text string) (string, bool) {
	_, after, found := strings.Cut(text, "```json")
	if !found {
		return "", false
	}
	inner, _, _ := strings.Cut(after, "```")
	return strings.TrimSpace(inner), true
}

// firstFencedBlock extracts the body between the first pair of ``` fences.
func firstFencedBlock(text string) (string, bool) {
	_, after, found := strings.Cut(text, "```")
	if !found {
		return "", false
	}
	inner, _, _ := strings.Cut(after, "```")
	return strings.TrimSpace(inner), true
}

// braceSpan returns the first balanced {...} span. The scan is string-aware:
// braces inside JSON string values (including escaped quotes) do not count
// toward the balance.
func braceSpan(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}
	text = text[start:]

	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return text[:i+1], true
				}
			}
		}
	}
	// Unbalanced: hand back everything from the first brace and let the
	// parser report the failure.
	return text, true
}

// Repair patterns for the JSON defects the generator most often produces:
// JavaScript-style unquoted keys, trailing commas, and missing commas
// between adjacent lines.
var (
	unquotedKeyPattern    = regexp.MustCompile(`([{,])\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*:`)
	trailingCommaPattern  = regexp.MustCompile(`,\s*([}\]])`)
	missingCommaString    = regexp.MustCompile(`([}\]"])\s*\n\s*"`)
	missingCommaObject    = regexp.MustCompile(`([}\]])\s*\n\s*\{`)
	missingCommaArray     = regexp.MustCompile(`([}\]])\s*\n\s*\[`)
	adjacentStringPattern = regexp.MustCompile(`"\s*\n\s*"`)
)

// repairJSON rewrites the common defects so a second parse can succeed. It is
// best-effort; the caller still treats a failed re-parse as malformed.
func repairJSON(text string) string {
	text = unquotedKeyPattern.ReplaceAllString(text, `${1}"${2}":`)
	text = trailingCommaPattern.ReplaceAllString(text, `${1}`)
	text = missingCommaString.ReplaceAllString(text, "${1},\n\"")
	text = missingCommaObject.ReplaceAllString(text, "${1},\n{")
	text = missingCommaArray.ReplaceAllString(text, "${1},\n[")
	text = adjacentStringPattern.ReplaceAllString(text, "\",\n\"")
	return text
}
