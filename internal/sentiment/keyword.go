// Package sentiment classifies review comments into a positive,
// negative or neutral bucket.
package sentiment

import "strings"

// Label is the sentiment bucket assigned to a piece of text.
type Label int

const (
	Neutral Label = iota
	Positive
	Negative
)

// Tally counts classified comments per bucket.
type Tally struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

// Add counts one label into the tally.
func (t *Tally) Add(l Label) {
	switch l {
	case Positive:
		t.Positive++
	case Negative:
		t.Negative++
	default:
		t.Neutral++
	}
}

// Classifier assigns a sentiment label to free text. The aggregation
// code only depends on this interface so keyword lists can be swapped
// without touching it.
type Classifier interface {
	Classify(text string) Label
}

// KeywordClassifier matches text case-insensitively against fixed
// keyword lists. Text matching both lists, or neither, is neutral.
type KeywordClassifier struct {
	positive []string
	negative []string
}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		positive: []string{"great", "excellent", "good", "amazing", "perfect", "wonderful", "love", "fantastic", "awesome"},
		negative: []string{"bad", "poor", "disappointing", "broken", "terrible", "awful", "horrible", "hate", "waste"},
	}
}

func (c *KeywordClassifier) Classify(text string) Label {
	lower := strings.ToLower(text)
	pos := containsAny(lower, c.positive)
	neg := containsAny(lower, c.negative)
	switch {
	case pos && !neg:
		return Positive
	case neg && !pos:
		return Negative
	default:
		return Neutral
	}
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// TallyComments classifies every comment with c and accumulates the
// counts.
func TallyComments(c Classifier, comments []string) Tally {
	var t Tally
	for _, comment := range comments {
		t.Add(c.Classify(comment))
	}
	return t
}
