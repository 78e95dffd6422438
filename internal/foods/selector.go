package foods

import (
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/ai-nutricare/backend/internal/clinical"
)

// MaxCandidates bounds the pool handed to the plan generator.
const MaxCandidates = 30

// Selector samples candidate pools from a knowledge base. It is safe for
// concurrent use.
type Selector struct {
	kb    *KnowledgeBase
	limit int

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSelector creates a selector. A nil src seeds from the clock.
func NewSelector(kb *KnowledgeBase, src rand.Source) *Selector {
	if src == nil {
		seed := uint64(time.Now().UnixNano())
		src = rand.NewPCG(seed, seed>>1|1)
	}
	if kb == nil {
		kb = NewKnowledgeBase(nil)
	}
	return &Selector{kb: kb, limit: MaxCandidates, rng: rand.New(src)}
}

// Select filters by clinical tags, diet type and region, then returns a
// random sample of at most MaxCandidates rows. When filtering leaves nothing
// the sample is drawn from the whole table instead.
func (s *Selector) Select(in clinical.Insight, prefs Preferences) []Item {
	all := s.kb.items
	if len(all) == 0 {
		return []Item{}
	}

	conditions := in.ConditionText()
	avoid := in.AvoidText()
	needDiabetic := strings.Contains(conditions, "diabetes") || strings.Contains(avoid, "sugar")
	needRenal := strings.Contains(conditions, "renal") || strings.Contains(conditions, "kidney")

	var region string
	if prefs.FiltersRegion() {
		region = strings.ToLower(NormalizeRegion(prefs.Region))
	}

	pool := make([]Item, 0, len(all))
	for _, it := range all {
		if needDiabetic && !it.HasTag(TagDiabeticFriendly) {
			continue
		}
		if needRenal && !it.HasTag(TagRenalSafe) {
			continue
		}
		if prefs.DietType == Vegetarian && IsNonVegetarian(it.Ingredients) {
			continue
		}
		if region != "" && strings.ToLower(it.Region) != region {
			continue
		}
		pool = append(pool, it)
	}

	if len(pool) == 0 {
		logger.Warn("no foods match filters, sampling from full table",
			"conditions", in.Conditions, "diet_type", prefs.DietType, "region", prefs.Region)
		pool = append(pool, all...)
	}
	return s.sample(pool)
}

// sample shuffles pool in place and truncates it to the limit.
func (s *Selector) sample(pool []Item) []Item {
	s.mu.Lock()
	s.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	s.mu.Unlock()

	if len(pool) > s.limit {
		pool = pool[:s.limit]
	}
	return pool
}
