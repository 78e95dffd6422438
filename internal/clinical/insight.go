// Package clinical turns a risk score and resolved biomarkers into the
// structured insight that drives food selection and plan prompts.
package clinical

import (
	"strconv"
	"strings"

	"github.com/ai-nutricare/backend/internal/extraction"
	"github.com/ai-nutricare/backend/internal/features"
)

// Risk tier boundaries.
const (
	HighRiskThreshold     = 0.60
	ModerateRiskThreshold = 0.30
)

// Biomarker thresholds.
const (
	GlucoseThreshold    = 126.0 // mg/dL, fasting hyperglycemia
	HbA1cThreshold      = 6.5   // %
	CreatinineThreshold = 1.2   // mg/dL
	MAPThreshold        = 100.0 // mmHg
)

// Condition labels.
const (
	ConditionCritical     = "Critical Stability Risk"
	ConditionModerate     = "Moderate Clinical Risk"
	ConditionDiabetes     = "Diabetes (Type 2 / Hyperglycemia)"
	ConditionRenal        = "Renal Stress / Kidney Strain"
	ConditionHypertension = "Hypertension Risk"
	ConditionGeneral      = "General Health Maintenance"
)

const (
	summaryHigh     = "Patient is at HIGH RISK. Immediate metabolic intervention required."
	summaryModerate = "Patient requires dietary management and monitoring."
	summaryStable   = "Patient is stable. Routine maintenance diet recommended."
)

var (
	diabetesAvoid     = []string{"Fruit juices", "White bread", "Processed sugars", "High-GI foods"}
	diabetesRecommend = []string{"Complex carbohydrates", "High fiber foods (>30g/day)", "Leafy greens"}

	renalAvoid     = []string{"High sodium foods", "Excessive red meat", "Processed deli meats"}
	renalRecommend = []string{"Low-potassium vegetables", "Cauliflower", "Berries"}

	hypertensionAvoid     = []string{"Salt/Sodium"}
	hypertensionRecommend = []string{"DASH diet principles"}

	generalRecommend = []string{"Balanced diet with lean proteins and vegetables"}
)

// Metrics are the headline numbers carried alongside the insight.
type Metrics struct {
	MortalityRisk float64 `json:"mortality_risk"`
	Glucose       float64 `json:"glucose"`
	Creatinine    float64 `json:"creatinine"`
}

// Insight is built once per request and not modified afterwards.
type Insight struct {
	PatientMetrics Metrics  `json:"patient_metrics"`
	Conditions     []string `json:"conditions"`
	Avoid          []string `json:"avoid"`
	Recommend      []string `json:"recommend"`
	Summary        string   `json:"summary"`
}

// Reason applies the risk tiers and the condition rules in order: diabetes,
// renal, hypertension, then the general fallback. Lists accumulate without
// deduplication.
func Reason(risk float64, v features.Vector, params extraction.ParameterSet) Insight {
	in := Insight{
		PatientMetrics: Metrics{
			MortalityRisk: risk,
			Glucose:       v.Get(features.Glucose),
			Creatinine:    v.Get(features.Creatinine),
		},
		Conditions: []string{},
		Avoid:      []string{},
		Recommend:  []string{},
	}

	switch {
	case risk > HighRiskThreshold:
		in.Conditions = append(in.Conditions, ConditionCritical)
		in.Summary = summaryHigh
	case risk > ModerateRiskThreshold:
		in.Conditions = append(in.Conditions, ConditionModerate)
		in.Summary = summaryModerate
	default:
		in.Summary = summaryStable
	}

	if isDiabetic(in.PatientMetrics.Glucose, params) {
		in.add(ConditionDiabetes, diabetesAvoid, diabetesRecommend)
	}
	if in.PatientMetrics.Creatinine > CreatinineThreshold {
		in.add(ConditionRenal, renalAvoid, renalRecommend)
	}
	if v.Get(features.MAP) > MAPThreshold {
		in.add(ConditionHypertension, hypertensionAvoid, hypertensionRecommend)
	}
	if len(in.Conditions) == 0 {
		in.add(ConditionGeneral, nil, generalRecommend)
	}
	return in
}

func (in *Insight) add(condition string, avoid, recommend []string) {
	in.Conditions = append(in.Conditions, condition)
	in.Avoid = append(in.Avoid, avoid...)
	in.Recommend = append(in.Recommend, recommend...)
}

func isDiabetic(glucose float64, params extraction.ParameterSet) bool {
	if glucose > GlucoseThreshold {
		return true
	}
	hba1c, ok := HbA1c(params)
	return ok && hba1c > HbA1cThreshold
}

// HbA1c parses the raw HbA1c value with H/L flags removed.
func HbA1c(params extraction.ParameterSet) (float64, bool) {
	raw, ok := params.Value(extraction.HbA1c)
	if !ok || raw == "N/A" {
		return 0, false
	}
	cleaned := strings.NewReplacer("H", "", "L", "").Replace(raw)
	f, err := strconv.ParseFloat(strings.TrimSpace(cleaned), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ConditionText is the lowercased, space-joined condition list.
func (in Insight) ConditionText() string {
	return strings.ToLower(strings.Join(in.Conditions, " "))
}

// AvoidText is the lowercased, space-joined avoid list.
func (in Insight) AvoidText() string {
	return strings.ToLower(strings.Join(in.Avoid, " "))
}
