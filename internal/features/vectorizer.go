// Package features maps extracted biomarkers onto the fixed-width input the
// risk model was trained on.
package features

import (
	"strconv"
	"strings"

	"github.com/ai-nutricare/backend/internal/extraction"
)

const (
	// NumFeatures is the model input width.
	NumFeatures = 17
	// Timesteps is the length of the sequence window the model expects.
	Timesteps = 24
)

// Feature names in model input order.
const (
	HeartRate       = "Heart Rate"
	MAP             = "MAP"
	RespiratoryRate = "Respiratory Rate"
	Temperature     = "Temperature"
	Glucose         = "Glucose"
	Creatinine      = "Creatinine"
	BUN             = "BUN"
	Sodium          = "Sodium"
	Potassium       = "Potassium"
	Hemoglobin      = "Hemoglobin"
	WBC             = "WBC"
	Lactate         = "Lactate"
	FluidBalance    = "Fluid Balance"
	Vasopressors    = "Vasopressors"
	Sedatives       = "Sedatives"
	Antibiotics     = "Antibiotics"
	Insulin         = "Insulin"
)

// Names lists the features in model input order.
var Names = [NumFeatures]string{
	HeartRate, MAP, RespiratoryRate, Temperature,
	Glucose, Creatinine, BUN, Sodium, Potassium,
	Hemoglobin, WBC, Lactate,
	FluidBalance, Vasopressors, Sedatives, Antibiotics, Insulin,
}

// aliases maps feature names to biomarker keys where they differ.
var aliases = map[string]extraction.Biomarker{
	BUN:           extraction.UreaBUN,
	"Cholesterol": extraction.Cholesterol,
}

// Defaults are used when a feature cannot be resolved: normal resting vitals
// and absent interventions. Anything not listed defaults to 0.
var Defaults = map[string]float64{
	HeartRate:       75,
	MAP:             90,
	RespiratoryRate: 16,
	Temperature:     98.4,
	Lactate:         1.0,
	FluidBalance:    0,
	Vasopressors:    0,
	Sedatives:       0,
	Antibiotics:     0,
	Insulin:         0,
}

// wbcAbsoluteThreshold separates absolute counts (cells/cmm) from counts in
// thousands per microliter.
const wbcAbsoluteThreshold = 1000

// Vector is one resolved observation in model input order.
type Vector [NumFeatures]float64

// Index returns the position of name, or -1.
func Index(name string) int {
	for i, n := range Names {
		if n == name {
			return i
		}
	}
	return -1
}

// Get returns the value of the named feature, or 0 for unknown names.
func (v Vector) Get(name string) float64 {
	if i := Index(name); i >= 0 {
		return v[i]
	}
	return 0
}

// Vitals returns the vector keyed by feature name.
func (v Vector) Vitals() map[string]float64 {
	out := make(map[string]float64, NumFeatures)
	for i, n := range Names {
		out[n] = v[i]
	}
	return out
}

// Clean strips H/L flags and inequality markers from a raw report value and
// parses it. Sentinels and unparseable text report false.
func Clean(raw string) (float64, bool) {
	switch raw {
	case "N/A", "Not Found":
		return 0, false
	}
	cleaned := strings.NewReplacer("H", "", "L", "", "<", "", ">", "").Replace(raw)
	f, err := strconv.ParseFloat(strings.TrimSpace(cleaned), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Lookup resolves a feature from the parameter set without applying
// defaults.
func Lookup(set extraction.ParameterSet, feature string) (float64, bool) {
	key, ok := aliases[feature]
	if !ok {
		key = extraction.Biomarker(feature)
	}
	raw, ok := set.Value(key)
	if !ok {
		return 0, false
	}
	return Clean(raw)
}

// Vectorize resolves every feature, falling back to Defaults, and rescales
// absolute WBC counts. The result is always complete.
func Vectorize(set extraction.ParameterSet) Vector {
	var v Vector
	for i, name := range Names {
		val, ok := Lookup(set, name)
		if !ok {
			val = Defaults[name]
		}
		if name == WBC && val > wbcAbsoluteThreshold {
			val = val / 1000.0
		}
		v[i] = val
	}
	return v
}
