package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenizeSearchTerms(t *testing.T) {
	tests := []struct {
		name   string
		inputs []string
		want   []string
	}{
		{
			name:   "lowercases and splits on punctuation",
			inputs: []string{"Lead Camera-Operator (Unit B)"},
			want:   []string{"camera", "lead", "operator", "unit"},
		},
		{
			name:   "deduplicates across inputs",
			inputs: []string{"Sound Mixer", "sound", "MIXER"},
			want:   []string{"mixer", "sound"},
		},
		{
			name:   "drops single-character tokens",
			inputs: []string{"a b grip"},
			want:   []string{"grip"},
		},
		{
			name:   "empty input",
			inputs: []string{"", "  "},
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TokenizeSearchTerms(tt.inputs...))
		})
	}
}

func TestContainsAllTerms(t *testing.T) {
	terms := []string{"camera", "film", "steadicam"}

	assert.True(t, containsAllTerms(terms, nil), "empty query matches everything")
	assert.True(t, containsAllTerms(terms, []string{"film"}))
	assert.True(t, containsAllTerms(terms, []string{"film", "camera"}))
	assert.False(t, containsAllTerms(terms, []string{"film", "drone"}), "every token must match")
}
