// Package foods loads the Indian food knowledge base, tags each dish with
// clinical suitability labels and samples candidate pools for plan prompts.
package foods

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strings"

	"github.com/ai-nutricare/backend/internal/logging"
)

var logger = logging.Logger(logging.SourcePlanner)

// Knowledge base column names.
const (
	FieldCarbohydrate = "Carbohydrate (g)"
	FieldProtein      = "Protein (g)"
	FieldFat          = "Total Fat (g)"
	FieldIngredients  = "ingredients"
	FieldRegion       = "region"
	FieldTags         = "medical_tags"
)

// Medical tags.
const (
	TagDiabeticFriendly = "diabetic_friendly"
	TagLowSugar         = "low_sugar"
	TagHighProtein      = "high_protein"
	TagLowFat           = "low_fat"
	TagRenalSafe        = "renal_safe"
)

type field struct {
	key   string
	value json.RawMessage
}

// Item is one knowledge-base row. Every source column is kept, in file
// order, so the row can be handed to the model as it was authored.
type Item struct {
	fields []field

	Carbohydrate float64
	Protein      float64
	Fat          float64
	Ingredients  string
	Region       string
	Tags         []string
}

// HasTag reports whether the item carries tag.
func (it Item) HasTag(tag string) bool {
	for _, t := range it.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Field returns the raw JSON of a source column.
func (it Item) Field(key string) (json.RawMessage, bool) {
	for _, f := range it.fields {
		if f.key == key {
			return f.value, true
		}
	}
	return nil, false
}

// MarshalJSON writes the source columns followed by medical_tags.
func (it Item) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for _, f := range it.fields {
		if f.key == FieldTags {
			continue
		}
		key, _ := json.Marshal(f.key)
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(f.value)
		buf.WriteByte(',')
	}
	tags := it.Tags
	if tags == nil {
		tags = []string{}
	}
	encoded, err := json.Marshal(tags)
	if err != nil {
		return nil, err
	}
	buf.WriteString(`"` + FieldTags + `":`)
	buf.Write(encoded)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads one row, keeping column order.
func (it *Item) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("food record must be an object")
	}

	*it = Item{Carbohydrate: math.NaN(), Protein: math.NaN(), Fat: math.NaN()}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		it.fields = append(it.fields, field{key: key, value: raw})

		switch key {
		case FieldCarbohydrate:
			it.Carbohydrate = number(raw)
		case FieldProtein:
			it.Protein = number(raw)
		case FieldFat:
			it.Fat = number(raw)
		case FieldIngredients:
			it.Ingredients = text(raw)
		case FieldRegion:
			it.Region = text(raw)
		}
	}
	_, err = dec.Token()
	return err
}

// number decodes a numeric column. Absent or non-numeric values are NaN so
// every threshold comparison fails.
func number(raw json.RawMessage) float64 {
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return math.NaN()
	}
	return f
}

// text decodes a string column, joining string arrays with ", ".
func text(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, ", ")
	}
	return ""
}

// Tag computes the medical tags for an item from its nutrient columns.
func Tag(it Item) []string {
	tags := []string{}
	if it.Carbohydrate < 30 && !strings.Contains(strings.ToLower(it.Ingredients), "sugar") {
		tags = append(tags, TagDiabeticFriendly, TagLowSugar)
	}
	if it.Protein > 10 {
		tags = append(tags, TagHighProtein)
	}
	if it.Fat < 8 {
		tags = append(tags, TagLowFat)
	}
	if it.Protein > 5 && it.Protein < 15 {
		tags = append(tags, TagRenalSafe)
	}
	return tags
}

// KnowledgeBase is the tagged food table. It is read-only after loading.
type KnowledgeBase struct {
	items []Item
}

// NewKnowledgeBase tags items and wraps them.
func NewKnowledgeBase(items []Item) *KnowledgeBase {
	tagged := make([]Item, len(items))
	for i, it := range items {
		it.Tags = Tag(it)
		tagged[i] = it
	}
	return &KnowledgeBase{items: tagged}
}

// LoadKnowledgeBase reads a JSON array of food records. A missing file
// yields an empty base so the service can still answer clinical questions.
func LoadKnowledgeBase(path string) (*KnowledgeBase, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("food knowledge base not found, candidate pools will be empty", "path", path)
		return NewKnowledgeBase(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read food knowledge base: %w", err)
	}

	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode food knowledge base %s: %w", path, err)
	}

	kb := NewKnowledgeBase(items)
	logger.Info("loaded food knowledge base", "path", path, "items", kb.Len())
	return kb, nil
}

// Len returns the number of rows.
func (kb *KnowledgeBase) Len() int {
	return len(kb.items)
}

// Items returns a copy of the rows.
func (kb *KnowledgeBase) Items() []Item {
	out := make([]Item, len(kb.items))
	copy(out, kb.items)
	return out
}
