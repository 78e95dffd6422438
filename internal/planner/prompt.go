package planner

import (
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/ai-nutricare/backend/internal/clinical"
	"github.com/ai-nutricare/backend/internal/foods"
)

// DefaultAge is used when the patient's age is unknown.
const DefaultAge = "45"

// Patient identifies who the plan is for.
type Patient struct {
	Name string `json:"name"`
	Age  string `json:"age"`
}

// DayRequest carries everything needed to plan one day. Requests for
// different days share no mutable state.
type DayRequest struct {
	Day         int
	Patient     Patient
	Insight     clinical.Insight
	Candidates  []foods.Item
	Preferences foods.Preferences
}

const promptRules = `    CRITICAL RULES FOR MEAL CATEGORIES:
    1. **Breakfast:** MUST be a complete meal like Idli Sambhar, Poha, Upma, Paratha with Curd, or Oats with Milk. DO NOT suggest snacks like "Almonds" or "Tea" alone. NO heavy curries or rice.
    2. **Lunch:** MUST be a full meal. Rice/Roti + Dal + Sabzi (Dry Vegetable) + Salad. Example: "2 Rotis with Paneer Curry and Salad".
    3. **Dinner:** MUST be lighter than lunch. Khichdi, Soup with Bread, Light Roti with Dal. NO heavy biryanis or heavy fried items.
    4. **Snacks:** Healthy light items. Roasted Chana, Fruit Chaat, Buttermilk, Sprouted Salad.

    MEAL DESCRIPTION STYLE (MANDATORY):
    - Describe meals in natural, appetizing form.
    - BAD: "Oats", "Milk", "Apple"
    - GOOD: "Oats porridge cooked with skim milk and topped with apple slices"
    - GOOD: "2 Multigrain Rotis with Palak Paneer and Cucumber Salad"

    TAGGING RULES:
    - If creatinine > 2.0 → add "renal_safe" tag
    - If glucose > 180 → add "diabetic_friendly" tag

    Return JSON with 1-2 complete meal descriptions per category:
    {
      "breakfast": [{"item": "Oats porridge with skim milk", "calories": 250, "protein": 8, "fat": 4, "carbs": 45, "tags": ["diabetic_friendly"], "ingredients": ["oats", "milk"], "origin": "North"}],
      "lunch": [],
      "dinner": [],
      "snacks": []
    }
`

// DietInstructions renders the preference directives for the prompt.
func DietInstructions(p foods.Preferences) string {
	var b strings.Builder
	switch p.DietType {
	case foods.Vegetarian:
		b.WriteString("\n    - Patient is VEGETARIAN. NO meat, fish, or eggs.")
	case foods.NonVegetarian:
		b.WriteString("\n    - Include a mix of vegetarian and non-vegetarian items.")
	}
	if p.Region != "" {
		fmt.Fprintf(&b, "\n    - Prioritize %s Indian cuisine.", p.Region)
	}
	return b.String()
}

type promptClinical struct {
	Glucose    float64  `json:"glucose"`
	Creatinine float64  `json:"creatinine"`
	Conditions []string `json:"conditions"`
}

// BuildPrompt renders the single-day prompt.
func BuildPrompt(req DayRequest) (string, error) {
	summary := req.Insight.Summary
	if summary == "" {
		summary = "Healthy Diet"
	}
	age := req.Patient.Age
	if age == "" {
		age = DefaultAge
	}

	conditions := req.Insight.Conditions
	if conditions == nil {
		conditions = []string{}
	}
	metrics, err := json.Marshal(promptClinical{
		Glucose:    req.Insight.PatientMetrics.Glucose,
		Creatinine: req.Insight.PatientMetrics.Creatinine,
		Conditions: conditions,
	})
	if err != nil {
		return "", fmt.Errorf("encode clinical metrics: %w", err)
	}

	candidates := req.Candidates
	if candidates == nil {
		candidates = []foods.Item{}
	}
	options, err := json.MarshalIndent(candidates, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode food candidates: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n    You are a clinical dietitian AI creating DAY %d of a 7-day meal plan.\n\n", req.Day)
	fmt.Fprintf(&b, "    PATIENT: %s, Age: %s years (ADULT)\n", req.Patient.Name, age)
	fmt.Fprintf(&b, "    CONDITION: %s\n", summary)
	fmt.Fprintf(&b, "    Clinical: %s\n", metrics)
	fmt.Fprintf(&b, "    %s\n\n", DietInstructions(req.Preferences))
	fmt.Fprintf(&b, "    Available foods: %s\n\n", options)
	b.WriteString(promptRules)
	return b.String(), nil
}

func mealItemSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"item":        {Type: genai.TypeString},
			"calories":    {Type: genai.TypeNumber},
			"protein":     {Type: genai.TypeNumber},
			"fat":         {Type: genai.TypeNumber},
			"carbs":       {Type: genai.TypeNumber},
			"tags":        {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			"ingredients": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			"origin":      {Type: genai.TypeString},
		},
		Required: []string{"item", "calories", "protein", "fat", "carbs", "tags"},
	}
}

// DaySchema is the structured-output schema for one day.
func DaySchema() *genai.Schema {
	item := mealItemSchema()
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			Breakfast: {Type: genai.TypeArray, Items: item},
			Lunch:     {Type: genai.TypeArray, Items: item},
			Dinner:    {Type: genai.TypeArray, Items: item},
			Snacks:    {Type: genai.TypeArray, Items: item},
		},
		Required: []string{Breakfast, Lunch, Dinner, Snacks},
	}
}
