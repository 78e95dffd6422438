package extraction

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ParameterExtractor runs the per-biomarker pattern waterfalls over report
// text.
type ParameterExtractor struct {
	rules RuleTable
}

// NewParameterExtractor creates an extractor over rules. A nil table uses
// DefaultRules.
func NewParameterExtractor(rules RuleTable) *ParameterExtractor {
	if rules == nil {
		rules = DefaultRules
	}
	return &ParameterExtractor{rules: rules}
}

var defaultParameterExtractor = NewParameterExtractor(nil)

// ExtractParameter extracts one biomarker with the default rules.
func ExtractParameter(text string, name Biomarker) ParameterRecord {
	return defaultParameterExtractor.Extract(text, name)
}

// ExtractAll extracts every biomarker with the default rules.
func ExtractAll(text string) ParameterSet {
	return defaultParameterExtractor.ExtractAll(text)
}

// Extract tries name's patterns in order and returns the first match.
func (e *ParameterExtractor) Extract(text string, name Biomarker) ParameterRecord {
	return e.extract(normalizeSpaces(text), name)
}

// ExtractAll extracts every biomarker in enumeration order.
func (e *ParameterExtractor) ExtractAll(text string) ParameterSet {
	text = normalizeSpaces(text)
	records := make([]ParameterRecord, 0, len(Biomarkers))
	for _, b := range Biomarkers {
		records = append(records, e.extract(text, b))
	}
	return ParameterSet{records: records}
}

// normalizeSpaces rewrites non-ASCII spaces (no-break, narrow no-break,
// thin, ideographic) as ' '. RE2's \s only matches ASCII whitespace and
// PDF text layers often separate labels from values with U+00A0.
func normalizeSpaces(text string) string {
	if !strings.ContainsFunc(text, isWideSpace) {
		return text
	}
	return strings.Map(func(r rune) rune {
		if isWideSpace(r) {
			return ' '
		}
		return r
	}, text)
}

func isWideSpace(r rune) bool {
	return r > unicode.MaxASCII && unicode.IsSpace(r)
}

func (e *ParameterExtractor) extract(text string, name Biomarker) ParameterRecord {
	record := ParameterRecord{Name: name, Unit: Units[name]}

	for _, r := range e.rules[name] {
		value, raw, ok := r.match(text)
		if !ok {
			continue
		}
		record.Value = &value
		record.RawMatch = raw
		break
	}
	return record
}

// match returns the trimmed last capture group and the trimmed full match
// of the leftmost acceptable match.
func (r Rule) match(text string) (value, raw string, ok bool) {
	if r.Pattern == nil {
		return "", "", false
	}

	// Start positions at or before the last excluded token are rejected.
	lastExcluded := -1
	if r.notFollowedBy != nil {
		for _, loc := range r.notFollowedBy.FindAllStringIndex(text, -1) {
			lastExcluded = loc[0]
		}
	}

	offset := 0
	for offset <= len(text) {
		loc := r.Pattern.FindStringSubmatchIndex(text[offset:])
		if loc == nil {
			return "", "", false
		}
		start := offset + loc[0]

		if start <= lastExcluded {
			_, size := utf8.DecodeRuneInString(text[start:])
			if size == 0 {
				return "", "", false
			}
			offset = start + size
			continue
		}

		last := len(loc)/2 - 1
		gs, ge := loc[2*last], loc[2*last+1]
		if gs < 0 {
			return "", "", false
		}
		value = strings.TrimSpace(text[offset+gs : offset+ge])
		raw = strings.TrimSpace(text[start : offset+loc[1]])
		return value, raw, true
	}
	return "", "", false
}
