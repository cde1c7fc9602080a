package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple name", "Fresh Organic Tomatoes!", "fresh-organic-tomatoes"},
		{"collapses and trims hyphens", "  A--B  ", "a-b"},
		{"already clean", "yam", "yam"},
		{"digits kept", "Maize 2026", "maize-2026"},
		{"punctuation only", "!!!", ""},
		{"unicode replaced", "Épinard frais", "pinard-frais"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Slugify(tc.input))
		})
	}
}
