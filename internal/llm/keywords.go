package llm

import (
	"context"
	"strings"

	"github.com/joescharf/hotelops/internal/models"
)

// KeywordSuggester triages a report with keyword heuristics. It needs no
// network access and is used when no API key is configured.
type KeywordSuggester struct{}

// Keyword lists are checked in order; the first category with a hit wins.
var categoryKeywords = []struct {
	category models.Category
	words    []string
}{
	{models.CategoryPlumbing, []string{"leak", "drip", "faucet", "toilet", "drain", "pipe", "shower", "sink", "clog", "water pressure", "flood"}},
	{models.CategoryElectrical, []string{"outlet", "socket", "spark", "light", "lamp", "bulb", "breaker", "power", "switch", "wiring"}},
	{models.CategoryHVAC, []string{"ac ", "a/c", "air condition", "heat", "thermostat", "vent", "hvac", "too hot", "too cold", "fan"}},
	{models.CategoryAppliances, []string{"fridge", "refrigerator", "minibar", "microwave", "tv", "television", "kettle", "coffee", "hair dryer", "safe"}},
	{models.CategoryFurniture, []string{"chair", "bed", "table", "desk", "drawer", "wardrobe", "closet", "sofa", "door", "curtain", "mirror"}},
	{models.CategoryCleaning, []string{"stain", "dirty", "smell", "odor", "mold", "dust", "trash", "spill", "pest", "bug"}},
}

var (
	urgentKeywords = []string{"flood", "fire", "smoke", "spark", "gas", "burst", "sewage", "no power", "electric shock", "unsafe", "locked out"}
	highKeywords   = []string{"leak", "no heat", "no hot water", "not working", "broken", "won't lock", "doesn't lock", "overflow", "guest complaint"}
	lowKeywords    = []string{"minor", "cosmetic", "scratch", "scuff", "squeak", "loose", "when possible", "low priority"}
)

// SuggestTriage implements the same contract as Client.SuggestTriage.
func (KeywordSuggester) SuggestTriage(_ context.Context, _ string, description string) (*Suggestion, error) {
	lower := " " + strings.ToLower(description) + " "

	s := &Suggestion{Category: models.CategoryOther, Priority: models.PriorityMedium}
	for _, c := range categoryKeywords {
		if kw, ok := containsAny(lower, c.words); ok {
			s.Category = c.category
			s.Reason = "mentions " + strings.TrimSpace(kw)
			break
		}
	}

	// Urgent before high before low, so "minor leak" is still high.
	switch {
	case hit(lower, urgentKeywords):
		s.Priority = models.PriorityUrgent
	case hit(lower, highKeywords):
		s.Priority = models.PriorityHigh
	case hit(lower, lowKeywords):
		s.Priority = models.PriorityLow
	}
	if s.Reason == "" {
		s.Reason = "no known keywords"
	}
	return s, nil
}

func containsAny(s string, words []string) (string, bool) {
	for _, w := range words {
		if strings.Contains(s, w) {
			return w, true
		}
	}
	return "", false
}

func hit(s string, words []string) bool {
	_, ok := containsAny(s, words)
	return ok
}
