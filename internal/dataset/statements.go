// Package dataset ships the built-in statement catalog the comparison
// harness runs against, plus YAML loading for user-supplied catalogs.
//
// The built-ins split into factual statements with a definite true or false
// answer and ambiguous statements where uncertain is the only defensible
// classification. Accessors return fresh copies; the catalog itself is
// never exposed for mutation.
package dataset

import (
	"github.com/ahrav/go-faceoff/internal/domain"
)

// facts are the statements with a definite true or false answer.
var facts = []domain.Statement{
	{Text: "The Earth is round.", Expected: domain.ClassificationTrue, Category: "science", Difficulty: "easy"},
	{Text: "Humans have 12 fingers.", Expected: domain.ClassificationFalse, Category: "biology", Difficulty: "easy"},
	{Text: "The sky is blue because of the ocean's reflection.", Expected: domain.ClassificationFalse, Category: "science", Difficulty: "medium"},
	{Text: "Water boils at 100 degrees Celsius at sea level.", Expected: domain.ClassificationTrue, Category: "science", Difficulty: "easy"},
	{Text: "The Great Wall of China is visible from space with the naked eye.", Expected: domain.ClassificationFalse, Category: "geography", Difficulty: "medium"},
	{Text: "Birds are descendants of dinosaurs.", Expected: domain.ClassificationTrue, Category: "biology", Difficulty: "medium"},
	{Text: "The human brain uses only 10% of its capacity.", Expected: domain.ClassificationFalse, Category: "biology", Difficulty: "medium"},
	{Text: "Lightning never strikes the same place twice.", Expected: domain.ClassificationFalse, Category: "science", Difficulty: "easy"},
	{Text: "The speed of light is approximately 300,000 kilometers per second.", Expected: domain.ClassificationTrue, Category: "physics", Difficulty: "medium"},
	{Text: "Chocolate is toxic to dogs.", Expected: domain.ClassificationTrue, Category: "biology", Difficulty: "easy"},
	{Text: "The moon is made of cheese.", Expected: domain.ClassificationFalse, Category: "science", Difficulty: "easy"},
	{Text: "Caffeine is addictive.", Expected: domain.ClassificationTrue, Category: "health", Difficulty: "medium"},
	{Text: "The average human body temperature is 98.6 degrees Fahrenheit.", Expected: domain.ClassificationTrue, Category: "health", Difficulty: "easy"},
	{Text: "All snakes are venomous.", Expected: domain.ClassificationFalse, Category: "biology", Difficulty: "medium"},
	{Text: "The sun is a star.", Expected: domain.ClassificationTrue, Category: "astronomy", Difficulty: "easy"},
}

// ambiguous are opinions and predictions with no definite answer.
var ambiguous = []domain.Statement{
	{Text: "The best programming language is Python.", Expected: domain.ClassificationUncertain, Category: "technology", Difficulty: "hard"},
	{Text: "Climate change will cause catastrophic damage by 2050.", Expected: domain.ClassificationUncertain, Category: "environment", Difficulty: "hard"},
	{Text: "Artificial intelligence will replace most human jobs.", Expected: domain.ClassificationUncertain, Category: "technology", Difficulty: "hard"},
	{Text: "The optimal diet for humans is vegetarian.", Expected: domain.ClassificationUncertain, Category: "health", Difficulty: "hard"},
	{Text: "The universe is infinite in size.", Expected: domain.ClassificationUncertain, Category: "astronomy", Difficulty: "hard"},
}

// Facts returns the factual statements with a definite expected answer.
func Facts() []domain.Statement {
	return append([]domain.Statement(nil), facts...)
}

// Ambiguous returns the statements whose only defensible classification is
// uncertain.
func Ambiguous() []domain.Statement {
	return append([]domain.Statement(nil), ambiguous...)
}

// Default returns the full built-in catalog, facts first.
func Default() []domain.Statement {
	out := make([]domain.Statement, 0, len(facts)+len(ambiguous))
	out = append(out, facts...)
	out = append(out, ambiguous...)
	return out
}

// ByCategory returns the statements whose category equals the argument.
func ByCategory(statements []domain.Statement, category string) []domain.Statement {
	var out []domain.Statement
	for _, s := range statements {
		if s.Category == category {
			out = append(out, s)
		}
	}
	return out
}

// ByDifficulty returns the statements whose difficulty equals the argument.
func ByDifficulty(statements []domain.Statement, difficulty string) []domain.Statement {
	var out []domain.Statement
	for _, s := range statements {
		if s.Difficulty == difficulty {
			out = append(out, s)
		}
	}
	return out
}

// Limit returns at most n statements from the front of the slice.
// A non-positive n returns an empty slice.
func Limit(statements []domain.Statement, n int) []domain.Statement {
	if n <= 0 {
		return nil
	}
	if n >= len(statements) {
		return append([]domain.Statement(nil), statements...)
	}
	return append([]domain.Statement(nil), statements[:n]...)
}
