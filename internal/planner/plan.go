// Package planner generates the 7-day meal plan, one generative call per
// day, and assembles the week with nutrition averages and a narrative.
package planner

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DaysPerWeek is the plan length.
const DaysPerWeek = 7

// Meal categories in output order.
const (
	Breakfast = "breakfast"
	Lunch     = "lunch"
	Dinner    = "dinner"
	Snacks    = "snacks"
)

// MealItem is one dish suggestion.
type MealItem struct {
	Item        string   `json:"item"`
	Calories    float64  `json:"calories"`
	Protein     float64  `json:"protein"`
	Fat         float64  `json:"fat"`
	Carbs       float64  `json:"carbs"`
	Tags        []string `json:"tags"`
	Ingredients []string `json:"ingredients,omitempty"`
	Origin      string   `json:"origin,omitempty"`
}

// DayPlan holds the four meal categories of one day.
type DayPlan struct {
	Breakfast []MealItem `json:"breakfast"`
	Lunch     []MealItem `json:"lunch"`
	Dinner    []MealItem `json:"dinner"`
	Snacks    []MealItem `json:"snacks"`
}

// Meals returns pointers to the category slices in output order.
func (d *DayPlan) Meals() []*[]MealItem {
	return []*[]MealItem{&d.Breakfast, &d.Lunch, &d.Dinner, &d.Snacks}
}

// normalize replaces missing categories and tag lists with empty slices.
func (d *DayPlan) normalize() {
	for _, meal := range d.Meals() {
		if *meal == nil {
			*meal = []MealItem{}
		}
		for i := range *meal {
			if (*meal)[i].Tags == nil {
				(*meal)[i].Tags = []string{}
			}
		}
	}
}

// Nutrition is a set of daily nutrient amounts.
type Nutrition struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Fat      float64 `json:"fat"`
	Carbs    float64 `json:"carbs"`
}

func (n *Nutrition) add(it MealItem) {
	n.Calories += it.Calories
	n.Protein += it.Protein
	n.Fat += it.Fat
	n.Carbs += it.Carbs
}

func (n *Nutrition) round(ndigits int) {
	n.Calories = roundHalfEven(n.Calories, ndigits)
	n.Protein = roundHalfEven(n.Protein, ndigits)
	n.Fat = roundHalfEven(n.Fat, ndigits)
	n.Carbs = roundHalfEven(n.Carbs, ndigits)
}

// WeekPlan is indexed by day-1 and serializes as {"day1": ..., "day7": ...}.
type WeekPlan [DaysPerWeek]DayPlan

// DayKey returns the JSON key for a 1-based day number.
func DayKey(day int) string {
	return "day" + strconv.Itoa(day)
}

func (w WeekPlan) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i := range w {
		if i > 0 {
			b.WriteByte(',')
		}
		day, err := json.Marshal(w[i])
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&b, "%q:", DayKey(i+1))
		b.Write(day)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

func (w *WeekPlan) UnmarshalJSON(data []byte) error {
	var days map[string]DayPlan
	if err := json.Unmarshal(data, &days); err != nil {
		return err
	}
	for i := range w {
		day, ok := days[DayKey(i+1)]
		if !ok {
			return fmt.Errorf("week plan missing %s", DayKey(i+1))
		}
		day.normalize()
		w[i] = day
	}
	return nil
}

// Result is the assembled week.
type Result struct {
	WeekPlan         WeekPlan  `json:"week_plan"`
	TotalNutrition   Nutrition `json:"total_nutrition"`
	MedicalReasoning string    `json:"medical_reasoning"`
}

// Round rounds every nutrition field of every item and the totals to
// ndigits decimals, ties to even.
func Round(r *Result, ndigits int) *Result {
	for d := range r.WeekPlan {
		for _, meal := range r.WeekPlan[d].Meals() {
			for i := range *meal {
				it := &(*meal)[i]
				it.Calories = roundHalfEven(it.Calories, ndigits)
				it.Protein = roundHalfEven(it.Protein, ndigits)
				it.Fat = roundHalfEven(it.Fat, ndigits)
				it.Carbs = roundHalfEven(it.Carbs, ndigits)
			}
		}
	}
	r.TotalNutrition.round(ndigits)
	return r
}

// roundHalfEven rounds the exact binary value of v to ndigits decimals,
// breaking true ties to even. 0.35 is stored just below the tie, so it
// rounds to 0.3.
func roundHalfEven(v float64, ndigits int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	if ndigits < 0 {
		scale := math.Pow(10, float64(-ndigits))
		return math.RoundToEven(v/scale) * scale
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', ndigits, 64), 64)
	if err != nil {
		return v
	}
	return r
}
