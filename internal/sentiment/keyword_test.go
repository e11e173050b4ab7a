package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeywordClassifier(t *testing.T) {
	c := NewKeywordClassifier()

	tests := []struct {
		name string
		text string
		want Label
	}{
		{"positive match", "excellent service", Positive},
		{"negative match", "terrible experience", Negative},
		{"both sets is neutral", "great but broken", Neutral},
		{"no match is neutral", "it arrived on tuesday", Neutral},
		{"case insensitive", "ABSOLUTELY WONDERFUL", Positive},
		{"substring match", "disappointingly slow", Negative},
		{"empty comment", "", Neutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.text))
		})
	}
}

func TestTallyComments(t *testing.T) {
	c := NewKeywordClassifier()

	tally := TallyComments(c, []string{
		"excellent service",
		"love it",
		"terrible experience",
		"great but broken",
		"meh",
	})

	assert.Equal(t, Tally{Positive: 2, Negative: 1, Neutral: 2}, tally)
}

func TestTallyCommentsEmpty(t *testing.T) {
	assert.Equal(t, Tally{}, TallyComments(NewKeywordClassifier(), nil))
}
