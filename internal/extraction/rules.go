package extraction

import "regexp"

// Rule is one candidate pattern in a biomarker's waterfall. Patterns are
// compiled case-insensitive with `.` matching newlines. The value is the
// last capture group.
//
// RE2 has no lookahead, so a rule may instead name a token that must not
// appear anywhere after the start of the match.
type Rule struct {
	Pattern       *regexp.Regexp
	notFollowedBy *regexp.Regexp
}

func rule(expr string) Rule {
	return Rule{Pattern: regexp.MustCompile(`(?is)` + expr)}
}

func ruleNotFollowedBy(expr, token string) Rule {
	r := rule(expr)
	r.notFollowedBy = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(token))
	return r
}

// RuleTable maps each biomarker to its ordered patterns, most specific
// first.
type RuleTable map[Biomarker][]Rule

// DefaultRules covers the report layouts seen so far: Indian diagnostic lab
// formats (SRL, Thyrocare style tables), hospital discharge summaries, and
// plain "Label: value" dumps from OCR.
var DefaultRules = RuleTable{
	Glucose: {
		rule(`Glucose\s*[-\s]*fasting\b.*?\s+(\d{2,3})`),
		rule(`Fasting\s+Blood\s+Sugar\b.*?\s+(?:H|L)?\s*(\d{2,3}(?:\.\d+)?)`),
		rule(`GLUCOSE[^\n]*?([0-9.]+)\s*mg/[dl1I]+`),
	},
	Insulin: {
		rule(`(Insulin)\s+([0-9.]+)`),
	},
	Creatinine: {
		rule(`Creatinine(?:-serum|,\s*Serum)?\b.*?\s+(\d{1,2}\.\d{1,2})`),
		rule(`CREATININE[^\n]*?([0-9.]+)`),
	},
	UreaBUN: {
		rule(`UREA\s*\*?\s+(\d{2,3}(?:\.\d+)?)`),
		rule(`Urea\b.*?\s+(?:H|L)?\s*(\d{2,3}(?:\.\d+)?)`),
		rule(`BUN[^\n]*?([0-9.]+)`),
	},
	Sodium: {
		rule(`SODIUM[^\n]*?([0-9.]+)`),
		rule(`Sodium\s*\(Na\+\).*?(\d{2,3})`),
	},
	Potassium: {
		rule(`POTASSIUM[^\n]*?([0-9.]+)`),
		rule(`Potassium\s*\(K\+\).*?(\d{1,2}\.\d{1,2})`),
	},
	Hemoglobin: {
		rule(`Haemoglobin\b.*?\s+(\d{1,2}\.\d{1,2})`),
		rule(`Hemoglobin\b.*?\s+(\d{1,2}\.\d{1,2})`),
	},
	WBC: {
		rule(`Total\s+WBC\s+Count\b.*?\s+(\d{4,6})`),
		rule(`WBC\s+Count\b.*?\s+(\d{4,6})`),
	},
	Lactate: {
		rule(`(Lactate)\s+([0-9.]+)`),
	},
	PH: {
		rule(`\bpH\b\s*([0-9.]+)`),
	},
	Age: {
		rule(`Age\s*/\s*Gender\s*:\s*(\d{1,3})\s*years`),
		rule(`Sex\s*/\s*Age\s*:\s*\w+\s*/\s*(\d{1,3})\s*Y`),
		rule(`Age\s*:\s*([0-9]{1,3})`),
	},
	Gender: {
		rule(`Age\s*/\s*Gender\s*:\s*\d{1,3}\s*years\s*/\s*(Male|Female)`),
		rule(`Sex\s*/\s*Age\s*:\s*(Male|Female)`),
		rule(`(?:Sex|Gender)\s*:\s*([A-Za-z]+)`),
	},
	Cholesterol: {
		rule(`Cholesterol-Total\b.*?\s+(\d{2,3})`),
		// total cholesterol only: skip any mention with an HDL line after it
		ruleNotFollowedBy(`Cholesterol\b.*?\s+(\d{2,3}(?:\.\d+)?)`, "HDL"),
		rule(`(Cholesterol)\s+([0-9.]+)`),
	},
	HbA1c: {
		rule(`Glyco\s+Hb\s*\(HbA1C\)\b.*?\s+(\d{1,2}\.\d{1,2})`),
		rule(`HbA1c\b.*?\s+(?:H|L)?\s*(\d{1,2}\.\d{1,2})`),
	},
}
