package extraction

import "testing"

func TestManualValues_ParameterSet(t *testing.T) {
	m := ManualValues{
		Glucose:     200,
		Creatinine:  1.5,
		UreaBUN:     40,
		Sodium:      140,
		Potassium:   4.5,
		Cholesterol: 220,
	}
	set := m.ParameterSet()

	want := map[Biomarker]string{
		Glucose:     "200",
		Creatinine:  "1.5",
		UreaBUN:     "40",
		Sodium:      "140",
		Potassium:   "4.5",
		Cholesterol: "220",
		Age:         "45",
		Gender:      "Male",
	}
	for b, v := range want {
		got, ok := set.Value(b)
		if !ok || got != v {
			t.Errorf("Value(%s) = %q, %v; want %q", b, got, ok, v)
		}
	}

	for _, b := range []Biomarker{Insulin, WBC, Lactate, PH, Hemoglobin, HbA1c} {
		if _, ok := set.Value(b); ok {
			t.Errorf("Value(%s) should be absent", b)
		}
	}
	if n := len(set.Records()); n != len(Biomarkers) {
		t.Fatalf("len(Records()) = %d, want %d", n, len(Biomarkers))
	}
}

func TestManualValues_OptionalFields(t *testing.T) {
	m := ManualValues{Glucose: 100, Age: 62, Gender: "Female", Hemoglobin: 11.2, HbA1c: 7}
	set := m.ParameterSet()

	tests := []struct {
		b    Biomarker
		want string
	}{
		{Age, "62"},
		{Gender, "Female"},
		{Hemoglobin, "11.2"},
		{HbA1c, "7"},
	}
	for _, tt := range tests {
		got, ok := set.Value(tt.b)
		if !ok || got != tt.want {
			t.Errorf("Value(%s) = %q, %v; want %q", tt.b, got, ok, tt.want)
		}
	}
}

func TestParameterSet_Get(t *testing.T) {
	set := NewParameterSet(nil)
	r, ok := set.Get(Sodium)
	if !ok {
		t.Fatal("Get(Sodium) missing")
	}
	if r.Found() || r.Unit != "mmol/L" {
		t.Fatalf("Get(Sodium) = %+v", r)
	}
	if _, ok := set.Get(Biomarker("Ferritin")); ok {
		t.Fatal("Get(Ferritin) should not exist")
	}
}
