package extraction

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Biomarker names a lab value recognized by the parameter extractor. The
// string values double as JSON keys and as the lookup keys used by the
// feature vectorizer.
type Biomarker string

const (
	Glucose     Biomarker = "Glucose"
	Insulin     Biomarker = "Insulin"
	Creatinine  Biomarker = "Creatinine"
	UreaBUN     Biomarker = "Urea (BUN)"
	Sodium      Biomarker = "Sodium"
	Potassium   Biomarker = "Potassium"
	Hemoglobin  Biomarker = "Hemoglobin"
	WBC         Biomarker = "WBC"
	Lactate     Biomarker = "Lactate"
	PH          Biomarker = "pH"
	Age         Biomarker = "Age"
	Gender      Biomarker = "Gender"
	Cholesterol Biomarker = "Cholestrol" // key spelling is shared with existing report consumers
	HbA1c       Biomarker = "HbA1c"
)

// Biomarkers is the fixed extraction order.
var Biomarkers = []Biomarker{
	Glucose, Insulin, Creatinine, UreaBUN, Sodium, Potassium, Hemoglobin,
	WBC, Lactate, PH, Age, Gender, Cholesterol, HbA1c,
}

// Units is the static unit label reported with each biomarker.
var Units = map[Biomarker]string{
	Glucose:     "mg/dL",
	Insulin:     "µIU/mL",
	Creatinine:  "mg/dL",
	UreaBUN:     "mg/dL",
	Sodium:      "mmol/L",
	Potassium:   "mmol/L",
	Hemoglobin:  "g/dL",
	WBC:         "/cmm",
	Lactate:     "mmol/L",
	PH:          "",
	Age:         "years",
	Gender:      "",
	Cholesterol: "mg/dL",
	HbA1c:       "%",
}

// ParameterRecord is the extraction result for one biomarker. A nil Value
// means the biomarker was not found in the source text.
type ParameterRecord struct {
	Name     Biomarker `json:"name"`
	Value    *string   `json:"value"`
	Unit     string    `json:"unit"`
	RawMatch string    `json:"raw_match"`
}

// Found reports whether a value was extracted.
func (r ParameterRecord) Found() bool {
	return r.Value != nil
}

// ParameterSet holds exactly one record per biomarker in Biomarkers order.
type ParameterSet struct {
	records []ParameterRecord
}

// NewParameterSet builds a set from raw values keyed by biomarker. Missing
// keys and nil values become not-found records.
func NewParameterSet(values map[Biomarker]*string) ParameterSet {
	records := make([]ParameterRecord, 0, len(Biomarkers))
	for _, b := range Biomarkers {
		records = append(records, ParameterRecord{Name: b, Value: values[b], Unit: Units[b]})
	}
	return ParameterSet{records: records}
}

// Records returns the records in enumeration order.
func (s ParameterSet) Records() []ParameterRecord {
	out := make([]ParameterRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Get returns the record for name.
func (s ParameterSet) Get(name Biomarker) (ParameterRecord, bool) {
	for _, r := range s.records {
		if r.Name == name {
			return r, true
		}
	}
	return ParameterRecord{}, false
}

// Value returns the raw value for name, or "" and false when absent.
func (s ParameterSet) Value(name Biomarker) (string, bool) {
	r, ok := s.Get(name)
	if !ok || r.Value == nil {
		return "", false
	}
	return *r.Value, true
}

// FoundCount returns how many biomarkers carry a value.
func (s ParameterSet) FoundCount() int {
	n := 0
	for _, r := range s.records {
		if r.Found() {
			n++
		}
	}
	return n
}

// MarshalJSON encodes the set as an object keyed by biomarker name,
// preserving enumeration order.
func (s ParameterSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, r := range s.records {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(r.Name))
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ManualValues are biomarkers typed in by a user instead of read from a
// report. Zero optional values are treated as not supplied.
type ManualValues struct {
	Glucose     float64
	Creatinine  float64
	UreaBUN     float64
	Sodium      float64
	Potassium   float64
	Cholesterol float64
	Age         int
	Gender      string
	Hemoglobin  float64
	HbA1c       float64
}

const (
	defaultManualAge    = "45"
	defaultManualGender = "Male"
)

// ParameterSet converts manual values into the same shape the extractor
// produces. Insulin, WBC, Lactate and pH are never collected manually.
func (m ManualValues) ParameterSet() ParameterSet {
	values := map[Biomarker]*string{
		Glucose:     floatPtr(m.Glucose),
		Creatinine:  floatPtr(m.Creatinine),
		UreaBUN:     floatPtr(m.UreaBUN),
		Sodium:      floatPtr(m.Sodium),
		Potassium:   floatPtr(m.Potassium),
		Cholesterol: floatPtr(m.Cholesterol),
		Age:         strPtr(defaultManualAge),
		Gender:      strPtr(defaultManualGender),
	}
	if m.Age != 0 {
		values[Age] = strPtr(strconv.Itoa(m.Age))
	}
	if g := strings.TrimSpace(m.Gender); g != "" {
		values[Gender] = strPtr(g)
	}
	if m.Hemoglobin != 0 {
		values[Hemoglobin] = floatPtr(m.Hemoglobin)
	}
	if m.HbA1c != 0 {
		values[HbA1c] = floatPtr(m.HbA1c)
	}
	return NewParameterSet(values)
}

func floatPtr(v float64) *string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	return &s
}

func strPtr(s string) *string {
	return &s
}
