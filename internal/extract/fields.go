package extract

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

type compiledRule struct {
	name  string
	re    *regexp.Regexp
	group int
}

// FieldExtractor applies an ordered rule table to recognized text. It is a
// pure function of its input text: absence of a field is a normal outcome,
// never an error.
type FieldExtractor struct {
	rules  []compiledRule
	logger *slog.Logger
}

// NewFieldExtractor compiles the rule table. Rules with an invalid pattern or
// a capture group the pattern does not have are rejected up front.
func NewFieldExtractor(rules []FieldRule, logger *slog.Logger) (*FieldExtractor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %q: compile pattern: %w", r.Name, err)
		}
		group := r.Group
		if group == 0 {
			group = 1
		}
		if re.NumSubexp() < group {
			return nil, fmt.Errorf("rule %q: pattern has %d capture groups, group %d requested", r.Name, re.NumSubexp(), group)
		}
		compiled = append(compiled, compiledRule{name: r.Name, re: re, group: group})
	}
	return &FieldExtractor{rules: compiled, logger: logger}, nil
}

// ExtractFields scans text with every rule in order. For each rule the first
// match wins; the captured group is trimmed. A missing field maps to nil.
func (e *FieldExtractor) ExtractFields(text string) map[string]*string {
	fields := make(map[string]*string, len(e.rules))
	for _, rule := range e.rules {
		m := rule.re.FindStringSubmatch(text)
		if m == nil {
			fields[rule.name] = nil
			continue
		}
		v := strings.TrimSpace(m[rule.group])
		fields[rule.name] = &v
	}
	return fields
}
