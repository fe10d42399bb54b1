package safety

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"livenotify-srv/pkg/log"
)

// Filter matches text against a case-insensitive word list. It is read-only
// after construction and safe for concurrent use.
type Filter struct {
	patterns []*regexp.Regexp
	// homophones holds the spelled-out reading of literal Chinese entries and
	// is only matched against the phonetic form of the text.
	homophones []*regexp.Regexp
	// numeralForms holds entries with ASCII digits rewritten as numerals, to
	// meet the digit-normalized text.
	numeralForms []*regexp.Regexp
}

var _ Checker = (*Filter)(nil)

// Load reads one pattern per line. Blank lines are ignored; lines that are not
// valid regular expressions are logged and skipped.
func Load(ctx context.Context, words io.Reader, logger log.Logger) (*Filter, error) {
	var lines []string
	sc := bufio.NewScanner(words)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("safety.Load: %w", err)
	}
	return New(ctx, lines, logger), nil
}

// New builds a filter from the given patterns.
func New(ctx context.Context, lines []string, logger log.Logger) *Filter {
	f := &Filter{}
	for i, line := range lines {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		re, err := regexp.Compile("(?i)" + line)
		if err != nil {
			logger.Warnf(ctx, "safety.New: skip line %d %q: %v", i+1, line, err)
			continue
		}
		f.patterns = append(f.patterns, re)

		if numeral := replaceDigits(line); numeral != line {
			if nre, err := regexp.Compile("(?i)" + numeral); err == nil {
				f.numeralForms = append(f.numeralForms, nre)
			}
		}

		if reading, ok := literalReading(line); ok {
			f.homophones = append(f.homophones, regexp.MustCompile("(?i)"+regexp.QuoteMeta(reading)))
		}
	}
	return f
}

// literalReading returns the phonetic spelling of a plain Chinese entry.
func literalReading(line string) (string, bool) {
	re, err := regexp.Compile(line)
	if err != nil {
		return "", false
	}
	lit, complete := re.LiteralPrefix()
	if !complete {
		return "", false
	}
	lit = replaceDigits(lit)
	if !hasIdeograph(lit) {
		return "", false
	}
	return phonetic(lit), true
}

// Len returns the number of active patterns.
func (f *Filter) Len() int {
	if f == nil {
		return 0
	}
	return len(f.patterns)
}

func (f *Filter) IsSensitive(text string) bool {
	if f == nil || text == "" {
		return false
	}

	if matchAny(f.patterns, text) {
		return true
	}
	normalized := replaceDigits(text)
	if matchAny(f.patterns, normalized) || matchAny(f.numeralForms, normalized) {
		return true
	}

	// latin text is its own spelling
	spelled := normalized
	if hasIdeograph(normalized) {
		spelled = phonetic(normalized)
	}
	return matchAny(f.patterns, spelled) || matchAny(f.numeralForms, spelled) || matchAny(f.homophones, spelled)
}

func matchAny(patterns []*regexp.Regexp, s string) bool {
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
