package clinical

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/ai-nutricare/backend/internal/extraction"
	"github.com/ai-nutricare/backend/internal/features"
)

func vector(values map[string]float64) features.Vector {
	v := features.Vectorize(extraction.NewParameterSet(nil))
	for name, val := range values {
		v[features.Index(name)] = val
	}
	return v
}

func withHbA1c(raw string) extraction.ParameterSet {
	return extraction.NewParameterSet(map[extraction.Biomarker]*string{extraction.HbA1c: &raw})
}

var none = extraction.NewParameterSet(nil)

func TestReason_RiskTiers(t *testing.T) {
	tests := []struct {
		risk        float64
		wantFirst   string
		wantSummary string
	}{
		{0.75, ConditionCritical, summaryHigh},
		{0.61, ConditionCritical, summaryHigh},
		{0.60, ConditionModerate, summaryModerate},
		{0.45, ConditionModerate, summaryModerate},
		{0.30, ConditionGeneral, summaryStable},
		{0.10, ConditionGeneral, summaryStable},
	}
	for _, tt := range tests {
		in := Reason(tt.risk, vector(nil), none)
		if in.Conditions[0] != tt.wantFirst {
			t.Errorf("risk %.2f: first condition = %q, want %q", tt.risk, in.Conditions[0], tt.wantFirst)
		}
		if in.Summary != tt.wantSummary {
			t.Errorf("risk %.2f: summary = %q, want %q", tt.risk, in.Summary, tt.wantSummary)
		}
		if in.PatientMetrics.MortalityRisk != tt.risk {
			t.Errorf("risk %.2f: mortality_risk = %v", tt.risk, in.PatientMetrics.MortalityRisk)
		}
	}
}

func TestReason_LowRiskHasNoTierCondition(t *testing.T) {
	in := Reason(0.10, vector(nil), none)
	for _, c := range in.Conditions {
		if c == ConditionCritical || c == ConditionModerate {
			t.Fatalf("unexpected tier condition %q", c)
		}
	}
}

func TestReason_Diabetes(t *testing.T) {
	tests := []struct {
		name    string
		glucose float64
		params  extraction.ParameterSet
		want    bool
	}{
		{"glucose above threshold", 130, none, true},
		{"glucose at threshold", 126, none, false},
		{"hba1c above threshold", 100, withHbA1c("7.0"), true},
		{"hba1c with flag", 100, withHbA1c("H 6.9"), true},
		{"hba1c at threshold", 100, withHbA1c("6.5"), false},
		{"hba1c unparseable", 100, withHbA1c("pending"), false},
		{"hba1c sentinel", 100, withHbA1c("N/A"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := Reason(0.1, vector(map[string]float64{features.Glucose: tt.glucose}), tt.params)
			got := contains(in.Conditions, ConditionDiabetes)
			if got != tt.want {
				t.Fatalf("diabetes = %v, want %v (conditions %v)", got, tt.want, in.Conditions)
			}
			if got && !reflect.DeepEqual(in.Avoid, diabetesAvoid) {
				t.Errorf("avoid = %v", in.Avoid)
			}
		})
	}
}

func TestReason_RenalAndHypertension(t *testing.T) {
	in := Reason(0.1, vector(map[string]float64{
		features.Creatinine: 1.5,
		features.MAP:        105,
	}), none)

	wantConditions := []string{ConditionRenal, ConditionHypertension}
	if !reflect.DeepEqual(in.Conditions, wantConditions) {
		t.Fatalf("conditions = %v, want %v", in.Conditions, wantConditions)
	}
	wantAvoid := append(append([]string{}, renalAvoid...), hypertensionAvoid...)
	if !reflect.DeepEqual(in.Avoid, wantAvoid) {
		t.Errorf("avoid = %v, want %v", in.Avoid, wantAvoid)
	}
	wantRecommend := append(append([]string{}, renalRecommend...), hypertensionRecommend...)
	if !reflect.DeepEqual(in.Recommend, wantRecommend) {
		t.Errorf("recommend = %v, want %v", in.Recommend, wantRecommend)
	}
}

func TestReason_RuleOrder(t *testing.T) {
	in := Reason(0.75, vector(map[string]float64{
		features.Glucose:    200,
		features.Creatinine: 1.5,
		features.MAP:        110,
	}), none)

	want := []string{ConditionCritical, ConditionDiabetes, ConditionRenal, ConditionHypertension}
	if !reflect.DeepEqual(in.Conditions, want) {
		t.Fatalf("conditions = %v, want %v", in.Conditions, want)
	}
	if len(in.Avoid) != len(diabetesAvoid)+len(renalAvoid)+len(hypertensionAvoid) {
		t.Errorf("avoid has %d entries", len(in.Avoid))
	}
}

func TestReason_Fallback(t *testing.T) {
	in := Reason(0.1, vector(nil), none)

	if !reflect.DeepEqual(in.Conditions, []string{ConditionGeneral}) {
		t.Errorf("conditions = %v", in.Conditions)
	}
	if !reflect.DeepEqual(in.Recommend, generalRecommend) {
		t.Errorf("recommend = %v", in.Recommend)
	}
	if len(in.Avoid) != 0 {
		t.Errorf("avoid = %v, want empty", in.Avoid)
	}
}

func TestReason_ModerateSkipsFallback(t *testing.T) {
	in := Reason(0.45, vector(nil), none)
	if !reflect.DeepEqual(in.Conditions, []string{ConditionModerate}) {
		t.Errorf("conditions = %v", in.Conditions)
	}
	if len(in.Recommend) != 0 {
		t.Errorf("recommend = %v, want empty", in.Recommend)
	}
}

func TestInsight_JSONListsNeverNull(t *testing.T) {
	data, err := json.Marshal(Reason(0.45, vector(nil), none))
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	for _, want := range []string{`"avoid":[]`, `"recommend":[]`, `"patient_metrics":{"mortality_risk":0.45,"glucose":0,"creatinine":0}`} {
		if !strings.Contains(s, want) {
			t.Errorf("json %s missing %s", s, want)
		}
	}
	if strings.Contains(s, "null") {
		t.Errorf("json contains null: %s", s)
	}
}

func TestInsight_Text(t *testing.T) {
	in := Reason(0.1, vector(map[string]float64{features.Glucose: 150}), none)
	if !strings.Contains(in.ConditionText(), "diabetes") {
		t.Errorf("ConditionText() = %q", in.ConditionText())
	}
	if !strings.Contains(in.AvoidText(), "sugar") {
		t.Errorf("AvoidText() = %q", in.AvoidText())
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
