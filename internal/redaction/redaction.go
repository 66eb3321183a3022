// Package redaction scrubs personal data and credentials from study text
// before it leaves the machine for an AI provider.
package redaction

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Placeholder replaces every redacted span.
const Placeholder = "[REDACTED]"

// IgnoreFile is the per-home file of extra patterns, one regexp per line.
const IgnoreFile = ".aiignore"

// builtin patterns run after explicit <private> spans.
var builtin = []*regexp.Regexp{
	regexp.MustCompile(`(?s)-----BEGIN [A-Z ]*PRIVATE KEY-----.*?(?:-----END [A-Z ]*PRIVATE KEY-----|$)`),
	regexp.MustCompile(`\bsk-(?:or-|proj-)?[A-Za-z0-9_-]{16,}`),         // OpenAI / OpenRouter keys
	regexp.MustCompile(`\bgh[pousr]_[A-Za-z0-9]{20,}`),                 // GitHub tokens
	regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`),                         // AWS access key ids
	regexp.MustCompile(`\beyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]*`), // JWTs
	regexp.MustCompile(`(?i)\b(?:password|passwd|secret|api[_-]?key|token)\s*[:=]\s*\S+`),
	regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`), // email addresses
}

var privateSpan = regexp.MustCompile(`(?s)<private>.*?</private>`)

// Sanitizer applies the built-in patterns plus user-supplied ones.
type Sanitizer struct {
	extra []*regexp.Regexp
}

// New returns a Sanitizer with extra patterns appended to the built-in set.
func New(extra ...*regexp.Regexp) *Sanitizer {
	return &Sanitizer{extra: extra}
}

// Load builds a Sanitizer from the ignore file at path. A missing file is
// not an error.
func Load(path string) (*Sanitizer, error) {
	extra, err := LoadIgnoreFile(path)
	if err != nil {
		return nil, err
	}
	return New(extra...), nil
}

// Clean returns text with every sensitive span replaced by Placeholder and
// the number of replacements made.
func (s *Sanitizer) Clean(text string) (string, int) {
	n := 0
	replace := func(re *regexp.Regexp) {
		text = re.ReplaceAllStringFunc(text, func(string) string {
			n++
			return Placeholder
		})
	}

	replace(privateSpan)
	// Unpaired markers carry no content of their own.
	text = strings.NewReplacer("<private>", "", "</private>", "").Replace(text)

	for _, re := range builtin {
		replace(re)
	}
	if s != nil {
		for _, re := range s.extra {
			replace(re)
		}
	}
	return text, n
}

// LoadIgnoreFile compiles each non-blank, non-comment line of path.
// Returns nil, nil when the file does not exist.
func LoadIgnoreFile(path string) ([]*regexp.Regexp, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var patterns []*regexp.Regexp
	scanner := bufio.NewScanner(f)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		re, err := regexp.Compile(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		patterns = append(patterns, re)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return patterns, nil
}
