// Package footprint scores lifestyle surveys in tonnes of CO2e per year.
package footprint

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// Category is a survey category.
type Category string

const (
	Home   Category = "home"
	Travel Category = "travel"
	Food   Category = "food"
	Others Category = "others"
)

// Categories lists every category in display order.
var Categories = []Category{Home, Travel, Food, Others}

var ErrUnknownCategory = errors.New("unknown survey category")

// ParseCategory validates a category name.
func ParseCategory(raw string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := surveys[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, raw)
	}
	return c, nil
}

// Title is the display name, e.g. "Travel".
func (c Category) Title() string {
	if c == "" {
		return ""
	}
	return strings.ToUpper(string(c[:1])) + string(c[1:])
}

// Question is one multiple-choice survey field.
type Question struct {
	Field   string
	Default string
	Scores  map[string]float64
}

// Label is the field name as display text, e.g. "Home size".
func (q Question) Label() string {
	words := strings.ReplaceAll(q.Field, "_", " ")
	if words == "" {
		return ""
	}
	return strings.ToUpper(words[:1]) + words[1:]
}

// Options returns the accepted answers in a stable order.
func (q Question) Options() []string {
	opts := make([]string, 0, len(q.Scores))
	for k := range q.Scores {
		opts = append(opts, k)
	}
	sort.Strings(opts)
	return opts
}

// Score returns the contribution of an answer. Unknown answers score 0.
func (q Question) Score(answer string) float64 {
	return q.Scores[answer]
}

// Answers maps form field names to chosen options. A field that is absent
// takes the question default; a present but unrecognised answer scores 0.
type Answers map[string]string

var surveys = map[Category][]Question{
	Home:   homeQuestions,
	Travel: travelQuestions,
	Food:   foodQuestions,
	Others: othersQuestions,
}

// Questions returns the questions for c.
func Questions(c Category) []Question {
	return surveys[c]
}

// Calculate scores answers for category c. The result is never negative.
func Calculate(c Category, answers Answers) (float64, error) {
	qs, ok := surveys[c]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, string(c))
	}
	var total float64
	for _, q := range qs {
		answer, ok := answers[q.Field]
		if !ok {
			answer = q.Default
		}
		total += q.Score(answer)
	}
	// Round away float noise from the fractional scores.
	total = math.Round(total*100) / 100
	return math.Max(0, total), nil
}
