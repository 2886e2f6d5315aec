// Package extract holds the heuristic rules that turn recognized text and
// filenames into record fields. Every function here is pure.
package extract

import (
	"path/filepath"
	"regexp"
	"strings"
)

const (
	// DelimitersSpaceOnly splits "AY-0039-A01 HUAMBO" into "AY-0039-A01".
	DelimitersSpaceOnly = " "
	// DelimitersAll also splits on hyphen and underscore, so "AY-0039-A01" becomes "AY".
	DelimitersAll = " -_"
)

// DefaultKeywords anchor the responsible-name search on OCR text.
var DefaultKeywords = []string{
	"responsable", "firma", "firmante", "beneficiario",
	"autoridad", "nombre", "yo", "suscriben",
}

// DefaultInlineKeywords anchor the name search on native text layers.
var DefaultInlineKeywords = []string{"responsable", "firmante", "beneficiario"}

// Boundaries count any Unicode letter or digit as a word character.
var dniPattern = regexp.MustCompile(`(?:^|[^\p{L}\p{N}_])(\d{8})(?:[^\p{L}\p{N}_]|$)`)

// Fields are the text-derived parts of a record.
type Fields struct {
	Institution     string
	ResponsibleName string
	DNI             string
}

// ID returns the filename stem up to the first rune found in delimiters.
// An empty delimiter set returns the whole stem.
func ID(filename, delimiters string) string {
	base := filename
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	stem := stripExt(base)
	if delimiters == "" {
		return stem
	}
	if i := strings.IndexAny(stem, delimiters); i >= 0 {
		return stem[:i]
	}
	return stem
}

// stripExt removes the last extension. Leading dots do not start an extension.
func stripExt(name string) string {
	trimmed := strings.TrimLeft(name, ".")
	ext := filepath.Ext(trimmed)
	if ext == "" || ext == trimmed {
		return name
	}
	return strings.TrimSuffix(name, ext)
}

// DNI returns the first run of exactly eight digits not touching a letter,
// digit or underscore on either side. Longer digit runs never yield a sub-window.
func DNI(text string) string {
	if m := dniPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

// Lines splits text into trimmed, non-blank lines.
func Lines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// Institution returns the first non-blank line, assumed to be the letterhead.
func Institution(text string) string {
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			return l
		}
	}
	return ""
}

// ResponsibleName scans lines top-down. When a line contains any keyword
// (case-insensitive substring), the following line is accepted as the name if
// it has at least two whitespace-separated tokens.
func ResponsibleName(text string, keywords []string) string {
	lines := Lines(text)
	for i, line := range lines {
		if !containsAny(strings.ToLower(line), keywords) || i+1 >= len(lines) {
			continue
		}
		cand := lines[i+1]
		if len(strings.Fields(cand)) >= 2 {
			return cand
		}
	}
	return ""
}

func containsAny(low string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(low, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

// InlineNamePattern builds the text-layer name pattern: a keyword
// (case-insensitive) followed on the same line by an uppercase run of at
// least five letters or spaces.
func InlineNamePattern(keywords []string) *regexp.Regexp {
	quoted := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			quoted = append(quoted, regexp.QuoteMeta(k))
		}
	}
	if len(quoted) == 0 {
		quoted = append(quoted, "responsable")
	}
	return regexp.MustCompile(`(?i:` + strings.Join(quoted, "|") + `)[: \t]*([A-ZÁÉÍÓÚÑ ]{5,})`)
}

// InlineName returns the first non-blank uppercase run matched by pattern.
func InlineName(text string, pattern *regexp.Regexp) string {
	for _, m := range pattern.FindAllStringSubmatch(text, -1) {
		if name := strings.TrimSpace(m[1]); name != "" {
			return name
		}
	}
	return ""
}
