package planner

import (
	"context"
	"fmt"

	"github.com/ai-nutricare/backend/internal/gemini"
)

//go:generate mockgen -source=generator.go -destination=generator_mock.go -package=planner

// Generator produces the meal plan for a single day.
type Generator interface {
	GenerateDay(ctx context.Context, req DayRequest) (*DayPlan, error)
}

// PlanTemperature keeps day plans close to the prompt's rules.
const PlanTemperature = 0.1

type jsonGenerator interface {
	GenerateJSON(ctx context.Context, req gemini.Request) (string, error)
}

// GeminiGenerator plans days with schema-constrained Gemini calls.
type GeminiGenerator struct {
	client jsonGenerator
}

// NewGeminiGenerator creates a generator backed by client.
func NewGeminiGenerator(client jsonGenerator) *GeminiGenerator {
	return &GeminiGenerator{client: client}
}

// GenerateDay implements Generator.
func (g *GeminiGenerator) GenerateDay(ctx context.Context, req DayRequest) (*DayPlan, error) {
	prompt, err := BuildPrompt(req)
	if err != nil {
		return nil, err
	}

	text, err := g.client.GenerateJSON(ctx, gemini.Request{
		Prompt:      prompt,
		Schema:      DaySchema(),
		Temperature: PlanTemperature,
	})
	if err != nil {
		return nil, err
	}

	var plan DayPlan
	if err := gemini.DecodeJSON(text, &plan); err != nil {
		return nil, &gemini.Error{
			Code:    gemini.ErrInvalidResponse,
			Message: fmt.Sprintf("day %d plan is not valid JSON", req.Day),
			Cause:   err,
		}
	}
	plan.normalize()
	return &plan, nil
}
