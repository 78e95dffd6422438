package foods

import (
	"encoding/json"
	"math/rand/v2"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ai-nutricare/backend/internal/clinical"
)

const sampleKB = `[
  {"name": "Moong Dal Chilla", "Carbohydrate (g)": 22, "Protein (g)": 12, "Total Fat (g)": 5, "ingredients": "moong dal, onion, green chilli", "region": "North"},
  {"name": "Gulab Jamun", "Carbohydrate (g)": 55, "Protein (g)": 4, "Total Fat (g)": 14, "ingredients": "khoya, sugar syrup", "region": "North"},
  {"name": "Fish Curry", "Carbohydrate (g)": 8, "Protein (g)": 14, "Total Fat (g)": 7, "ingredients": "rohu fish, mustard, turmeric", "region": "East"},
  {"name": "Egg Bhurji", "Carbohydrate (g)": 4, "Protein (g)": 13, "Total Fat (g)": 11, "ingredients": ["egg", "onion", "tomato"], "region": "West"},
  {"name": "Ragi Dosa", "Carbohydrate (g)": 28, "Protein (g)": 6, "Total Fat (g)": 3, "ingredients": "ragi flour, rice", "region": "South"},
  {"name": "Bamboo Shoot Fry", "Carbohydrate (g)": 10, "Protein (g)": 3, "Total Fat (g)": 4, "ingredients": "bamboo shoot, chilli", "region": "North East"}
]`

func loadSample(t *testing.T) *KnowledgeBase {
	t.Helper()
	var items []Item
	if err := json.Unmarshal([]byte(sampleKB), &items); err != nil {
		t.Fatal(err)
	}
	return NewKnowledgeBase(items)
}

func names(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		raw, _ := it.Field("name")
		var s string
		_ = json.Unmarshal(raw, &s)
		out = append(out, s)
	}
	return out
}

func newTestSelector(kb *KnowledgeBase) *Selector {
	return NewSelector(kb, rand.NewPCG(1, 2))
}

var stable = clinical.Insight{Conditions: []string{clinical.ConditionGeneral}}

func TestTag(t *testing.T) {
	kb := loadSample(t)
	want := map[string][]string{
		"Moong Dal Chilla": {TagDiabeticFriendly, TagLowSugar, TagHighProtein, TagLowFat, TagRenalSafe},
		"Gulab Jamun":      {},
		"Fish Curry":       {TagDiabeticFriendly, TagLowSugar, TagHighProtein, TagLowFat, TagRenalSafe},
		"Egg Bhurji":       {TagDiabeticFriendly, TagLowSugar, TagHighProtein, TagRenalSafe},
		"Ragi Dosa":        {TagDiabeticFriendly, TagLowSugar, TagLowFat, TagRenalSafe},
		"Bamboo Shoot Fry": {TagDiabeticFriendly, TagLowSugar, TagLowFat},
	}
	for i, it := range kb.Items() {
		name := names([]Item{it})[0]
		if !reflect.DeepEqual(it.Tags, want[name]) {
			t.Errorf("item %d %s: tags = %v, want %v", i, name, it.Tags, want[name])
		}
	}
}

func TestTag_MissingNutrientsFailThresholds(t *testing.T) {
	var it Item
	if err := json.Unmarshal([]byte(`{"name": "Mystery"}`), &it); err != nil {
		t.Fatal(err)
	}
	if tags := Tag(it); len(tags) != 0 {
		t.Errorf("tags = %v, want none", tags)
	}
}

func TestItem_MarshalPreservesColumns(t *testing.T) {
	kb := loadSample(t)
	data, err := json.Marshal(kb.Items()[4])
	if err != nil {
		t.Fatal(err)
	}
	want := `{"name":"Ragi Dosa","Carbohydrate (g)":28,"Protein (g)":6,"Total Fat (g)":3,"ingredients":"ragi flour, rice","region":"South","medical_tags":["diabetic_friendly","low_sugar","low_fat","renal_safe"]}`
	if string(data) != want {
		t.Errorf("json =\n%s\nwant\n%s", data, want)
	}
}

func TestLoadKnowledgeBase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diet_kb.json")
	if err := os.WriteFile(path, []byte(sampleKB), 0o600); err != nil {
		t.Fatal(err)
	}
	kb, err := LoadKnowledgeBase(path)
	if err != nil {
		t.Fatal(err)
	}
	if kb.Len() != 6 {
		t.Errorf("Len() = %d, want 6", kb.Len())
	}
}

func TestLoadKnowledgeBase_MissingIsEmpty(t *testing.T) {
	kb, err := LoadKnowledgeBase(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatal(err)
	}
	if kb.Len() != 0 {
		t.Errorf("Len() = %d, want 0", kb.Len())
	}
	got := NewSelector(kb, nil).Select(stable, DefaultPreferences())
	if got == nil || len(got) != 0 {
		t.Errorf("Select() = %v, want empty non-nil slice", got)
	}
}

func TestLoadKnowledgeBase_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diet_kb.json")
	if err := os.WriteFile(path, []byte(`{"not": "an array"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadKnowledgeBase(path); err == nil {
		t.Fatal("expected error")
	}
}

func TestSelect(t *testing.T) {
	kb := loadSample(t)
	diabetic := clinical.Insight{
		Conditions: []string{clinical.ConditionDiabetes},
		Avoid:      []string{"Processed sugars"},
	}
	renal := clinical.Insight{Conditions: []string{clinical.ConditionRenal}}

	tests := []struct {
		name    string
		insight clinical.Insight
		prefs   Preferences
		want    []string
	}{
		{
			name:    "both keeps everything",
			insight: stable,
			prefs:   DefaultPreferences(),
			want:    []string{"Moong Dal Chilla", "Gulab Jamun", "Fish Curry", "Egg Bhurji", "Ragi Dosa", "Bamboo Shoot Fry"},
		},
		{
			name:    "non-vegetarian keeps everything",
			insight: stable,
			prefs:   Preferences{DietType: NonVegetarian},
			want:    []string{"Moong Dal Chilla", "Gulab Jamun", "Fish Curry", "Egg Bhurji", "Ragi Dosa", "Bamboo Shoot Fry"},
		},
		{
			name:    "vegetarian drops animal products",
			insight: stable,
			prefs:   Preferences{DietType: Vegetarian},
			want:    []string{"Moong Dal Chilla", "Gulab Jamun", "Ragi Dosa", "Bamboo Shoot Fry"},
		},
		{
			name:    "diabetes keeps diabetic friendly",
			insight: diabetic,
			prefs:   DefaultPreferences(),
			want:    []string{"Moong Dal Chilla", "Fish Curry", "Egg Bhurji", "Ragi Dosa", "Bamboo Shoot Fry"},
		},
		{
			name:    "renal keeps renal safe",
			insight: renal,
			prefs:   Preferences{DietType: Vegetarian},
			want:    []string{"Moong Dal Chilla", "Ragi Dosa"},
		},
		{
			name:    "region alias",
			insight: stable,
			prefs:   Preferences{DietType: Both, Region: "northeast"},
			want:    []string{"Bamboo Shoot Fry"},
		},
		{
			name:    "region case insensitive",
			insight: stable,
			prefs:   Preferences{DietType: Both, Region: "SOUTH"},
			want:    []string{"Ragi Dosa"},
		},
		{
			name:    "region all",
			insight: stable,
			prefs:   Preferences{DietType: Vegetarian, Region: "All"},
			want:    []string{"Moong Dal Chilla", "Gulab Jamun", "Ragi Dosa", "Bamboo Shoot Fry"},
		},
		{
			name:    "empty pool falls back to full table",
			insight: diabetic,
			prefs:   Preferences{DietType: Vegetarian, Region: "East"},
			want:    []string{"Moong Dal Chilla", "Gulab Jamun", "Fish Curry", "Egg Bhurji", "Ragi Dosa", "Bamboo Shoot Fry"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := names(newTestSelector(kb).Select(tt.insight, tt.prefs))
			if !sameSet(got, tt.want) {
				t.Errorf("Select() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSelect_CapsSample(t *testing.T) {
	var b strings.Builder
	b.WriteString("[")
	for i := 0; i < 80; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(`{"Carbohydrate (g)": 20, "Protein (g)": 8, "Total Fat (g)": 4, "ingredients": "rice", "region": "South"}`)
	}
	b.WriteString("]")

	var items []Item
	if err := json.Unmarshal([]byte(b.String()), &items); err != nil {
		t.Fatal(err)
	}
	kb := NewKnowledgeBase(items)

	got := newTestSelector(kb).Select(stable, DefaultPreferences())
	if len(got) != MaxCandidates {
		t.Errorf("len = %d, want %d", len(got), MaxCandidates)
	}
	if kb.Len() != 80 {
		t.Errorf("knowledge base modified: Len() = %d", kb.Len())
	}
}

func TestSelect_DoesNotReorderKnowledgeBase(t *testing.T) {
	kb := loadSample(t)
	before := names(kb.Items())
	newTestSelector(kb).Select(stable, DefaultPreferences())
	if after := names(kb.Items()); !reflect.DeepEqual(before, after) {
		t.Errorf("order changed: %v -> %v", before, after)
	}
}

func TestParseDietType(t *testing.T) {
	tests := []struct {
		in      string
		want    DietType
		wantErr bool
	}{
		{"", Both, false},
		{"both", Both, false},
		{"vegetarian", Vegetarian, false},
		{"non-vegetarian", NonVegetarian, false},
		{"vegan", "", true},
		{"Vegetarian", "", true},
	}
	for _, tt := range tests {
		got, err := ParseDietType(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDietType(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseDietType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeRegion(t *testing.T) {
	tests := map[string]string{
		"north":      "North",
		"North East": "North East",
		"north_east": "North East",
		"NORTHEAST":  "North East",
		"central":    "Central",
		" deccan ":   "Deccan",
		"west":       "West",
	}
	for in, want := range tests {
		if got := NormalizeRegion(in); got != want {
			t.Errorf("NormalizeRegion(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsNonVegetarian(t *testing.T) {
	tests := map[string]bool{
		"Chicken, garlic":     true,
		"paneer, peas":        false,
		"Eggplant, tomato":    true, // substring match on "egg"
		"Hilsa fish, mustard": true,
		"":                    false,
	}
	for in, want := range tests {
		if got := IsNonVegetarian(in); got != want {
			t.Errorf("IsNonVegetarian(%q) = %v, want %v", in, got, want)
		}
	}
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, s := range a {
		seen[s]++
	}
	for _, s := range b {
		seen[s]--
	}
	for _, n := range seen {
		if n != 0 {
			return false
		}
	}
	return true
}
