package router

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/wagneradl/mc-v1/mission-analyzer/internal/dataset"
	"github.com/wagneradl/mc-v1/mission-analyzer/internal/models"
)

// ErrUnknownIntent is returned when asked to project an intent with no field.
var ErrUnknownIntent = errors.New("unknown intent")

// Rule maps a keyword to an intent. WholeWord rules match a full token of
// the query; the others match any substring.
type Rule struct {
	Keyword   string
	Intent    models.Intent
	WholeWord bool
}

// KeywordRules is the bare field cascade: mission, then year, then status.
func KeywordRules() []Rule {
	return []Rule{
		{Keyword: "mission", Intent: models.IntentByMission},
		{Keyword: "year", Intent: models.IntentByYear},
		{Keyword: "status", Intent: models.IntentByStatus},
	}
}

// DefaultRules puts plural and aggregate cue words ahead of the keyword
// cascade, so "mission launch years" asks for years while "mission year"
// still resolves to missions.
func DefaultRules() []Rule {
	cues := []Rule{
		{Keyword: "years", Intent: models.IntentByYear, WholeWord: true},
		{Keyword: "statuses", Intent: models.IntentByStatus, WholeWord: true},
		{Keyword: "all", Intent: models.IntentAllFields, WholeWord: true},
	}
	return append(cues, KeywordRules()...)
}

// Router classifies queries and projects the injected table.
type Router struct {
	table *dataset.Table
	rules []Rule
}

// New creates a router over table. With no rules it uses DefaultRules.
func New(table *dataset.Table, rules ...Rule) *Router {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	normalized := make([]Rule, len(rules))
	for i, r := range rules {
		r.Keyword = strings.ToLower(strings.TrimSpace(r.Keyword))
		normalized[i] = r
	}
	return &Router{table: table, rules: normalized}
}

// Table returns the dataset the router projects from.
func (r *Router) Table() *dataset.Table {
	return r.table
}

// Classify returns the intent of the first matching rule, or AllFields.
func (r *Router) Classify(query string) models.Intent {
	queryLower := strings.ToLower(query)
	var tokens map[string]bool

	for _, rule := range r.rules {
		if rule.Keyword == "" {
			continue
		}
		if !rule.WholeWord {
			if strings.Contains(queryLower, rule.Keyword) {
				return rule.Intent
			}
			continue
		}
		if tokens == nil {
			tokens = tokenize(queryLower)
		}
		if tokens[rule.Keyword] {
			return rule.Intent
		}
	}
	return models.IntentAllFields
}

// Route classifies query and returns the matching projection.
func (r *Router) Route(query string) (models.Intent, any, error) {
	intent := r.Classify(query)
	data, err := Project(intent, r.table)
	if err != nil {
		return intent, nil, err
	}
	return intent, data, nil
}

// Project returns one field across all records in dataset order, or the
// full records for AllFields.
func Project(intent models.Intent, table *dataset.Table) (any, error) {
	records := table.Records()
	switch intent {
	case models.IntentByMission:
		out := make([]string, len(records))
		for i, rec := range records {
			out[i] = rec.Mission
		}
		return out, nil
	case models.IntentByYear:
		out := make([]int, len(records))
		for i, rec := range records {
			out[i] = rec.Year
		}
		return out, nil
	case models.IntentByStatus:
		out := make([]string, len(records))
		for i, rec := range records {
			out[i] = string(rec.Status)
		}
		return out, nil
	case models.IntentAllFields:
		return records, nil
	default:
		return nil, fmt.Errorf("project %q: %w", intent, ErrUnknownIntent)
	}
}

func tokenize(s string) map[string]bool {
	fields := strings.FieldsFunc(s, func(c rune) bool {
		return !unicode.IsLetter(c) && !unicode.IsDigit(c)
	})
	tokens := make(map[string]bool, len(fields))
	for _, f := range fields {
		tokens[f] = true
	}
	return tokens
}
