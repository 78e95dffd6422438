package planner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ai-nutricare/backend/internal/clinical"
	"github.com/ai-nutricare/backend/internal/foods"
	"github.com/ai-nutricare/backend/internal/logging"
)

var logger = logging.Logger(logging.SourcePlanner)

// Planner fans the week out to a Generator.
type Planner struct {
	gen Generator
}

// New creates a Planner.
func New(gen Generator) *Planner {
	return &Planner{gen: gen}
}

// Generate plans all seven days concurrently. Days are stored by day number,
// not completion order. The first failing day cancels the others and the
// whole week fails.
func (p *Planner) Generate(ctx context.Context, patient Patient, insight clinical.Insight, candidates []foods.Item, prefs foods.Preferences) (*Result, error) {
	start := time.Now()

	var week WeekPlan
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(DaysPerWeek)
	for day := 1; day <= DaysPerWeek; day++ {
		g.Go(func() error {
			plan, err := p.gen.GenerateDay(gctx, DayRequest{
				Day:         day,
				Patient:     patient,
				Insight:     insight,
				Candidates:  candidates,
				Preferences: prefs,
			})
			if err != nil {
				return fmt.Errorf("generate day %d: %w", day, err)
			}
			if plan == nil {
				plan = &DayPlan{}
			}
			plan.normalize()
			week[day-1] = *plan
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("week plan failed", "err", err, "duration", time.Since(start))
		return nil, err
	}

	result := &Result{
		WeekPlan:         week,
		TotalNutrition:   DailyAverage(week),
		MedicalReasoning: Reasoning(insight),
	}
	logger.Info("week plan generated", "patient", patient.Name, "candidates", len(candidates), "duration", time.Since(start))
	return result, nil
}

// DailyAverage sums every item of every day, divides by seven and rounds to
// one decimal.
func DailyAverage(week WeekPlan) Nutrition {
	var total Nutrition
	for d := range week {
		for _, meal := range week[d].Meals() {
			for _, it := range *meal {
				total.add(it)
			}
		}
	}
	total.Calories /= DaysPerWeek
	total.Protein /= DaysPerWeek
	total.Fat /= DaysPerWeek
	total.Carbs /= DaysPerWeek
	total.round(1)
	return total
}

// Reasoning builds the closing narrative from the insight's conditions and
// headline metrics.
func Reasoning(in clinical.Insight) string {
	conditions := "general health maintenance"
	if len(in.Conditions) > 0 {
		conditions = strings.Join(in.Conditions, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "This 7-day meal plan is designed for a patient with %s. ", conditions)
	b.WriteString("Each day provides balanced nutrition with variety across Indian cuisines. ")
	if in.PatientMetrics.Glucose > clinical.GlucoseThreshold {
		b.WriteString("Diabetic-friendly options are prioritized with low glycemic index foods. ")
	}
	if in.PatientMetrics.Creatinine > clinical.CreatinineThreshold {
		b.WriteString("Renal-safe options with controlled protein and sodium are included. ")
	}
	return b.String()
}
