package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ai-nutricare/backend/internal/extraction"
	"github.com/ai-nutricare/backend/internal/foods"
)

const maxJSONBody = 1 << 20

// ManualRequest is the body of POST /plan-diet-manual. Pointer fields tell
// a missing value apart from an explicit zero.
type ManualRequest struct {
	Glucose     *float64 `json:"glucose"`
	Creatinine  *float64 `json:"creatinine"`
	UreaBUN     *float64 `json:"urea_bun"`
	Sodium      *float64 `json:"sodium"`
	Potassium   *float64 `json:"potassium"`
	Cholesterol *float64 `json:"cholesterol"`

	Age        *int     `json:"age"`
	Gender     *string  `json:"gender"`
	Hemoglobin *float64 `json:"hemoglobin"`
	HbA1c      *float64 `json:"hba1c"`

	Preferences *PreferencesRequest `json:"preferences"`
}

// PreferencesRequest is the optional preferences object of a manual entry.
type PreferencesRequest struct {
	DietType string  `json:"diet_type"`
	Region   *string `json:"region"`
}

// Validate checks required fields and converts the request. Every missing
// required field is reported at once.
func (m ManualRequest) Validate() (extraction.ManualValues, foods.Preferences, error) {
	required := []struct {
		name string
		v    *float64
	}{
		{"glucose", m.Glucose},
		{"creatinine", m.Creatinine},
		{"urea_bun", m.UreaBUN},
		{"sodium", m.Sodium},
		{"potassium", m.Potassium},
		{"cholesterol", m.Cholesterol},
	}

	var missing []string
	for _, f := range required {
		if f.v == nil {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return extraction.ManualValues{}, foods.Preferences{},
			unprocessable("missing required fields: "+strings.Join(missing, ", "), missing...)
	}

	values := extraction.ManualValues{
		Glucose:     *m.Glucose,
		Creatinine:  *m.Creatinine,
		UreaBUN:     *m.UreaBUN,
		Sodium:      *m.Sodium,
		Potassium:   *m.Potassium,
		Cholesterol: *m.Cholesterol,
	}
	if m.Age != nil {
		values.Age = *m.Age
	}
	if m.Gender != nil {
		values.Gender = *m.Gender
	}
	if m.Hemoglobin != nil {
		values.Hemoglobin = *m.Hemoglobin
	}
	if m.HbA1c != nil {
		values.HbA1c = *m.HbA1c
	}

	prefs := foods.DefaultPreferences()
	if m.Preferences != nil {
		dt, err := foods.ParseDietType(m.Preferences.DietType)
		if err != nil {
			return extraction.ManualValues{}, foods.Preferences{}, unprocessable(err.Error(), "preferences.diet_type")
		}
		prefs.DietType = dt
		if m.Preferences.Region != nil {
			prefs.Region = strings.TrimSpace(*m.Preferences.Region)
		}
	}
	return values, prefs, nil
}

// decodeJSON reads a bounded JSON body. Malformed or mistyped bodies are
// validation errors.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &typeErr):
			return unprocessable(fmt.Sprintf("%s must be a %s", typeErr.Field, typeErr.Type), typeErr.Field)
		case errors.Is(err, io.EOF):
			return unprocessable("request body is required")
		default:
			return unprocessable("request body is not valid JSON: " + err.Error())
		}
	}
	return nil
}
