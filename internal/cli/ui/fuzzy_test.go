package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"abc", "abc", 0},
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},
		{"Widget", "Widgt", 1},
		{"naïve", "naive", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.expected, LevenshteinDistance(tt.a, tt.b))
		})
	}
}

func TestFindSimilar(t *testing.T) {
	candidates := []string{
		"Contoso.Widgets.Widget",
		"Contoso.Widgets.Gadget",
		"Contoso.Widgets.Color",
		"Contoso.Abc.First",
	}

	tests := []struct {
		name     string
		target   string
		opts     *FuzzyMatchOptions
		expected []string
	}{
		{"simple name typo", "Widgt", nil, []string{"Contoso.Widgets.Widget", "Contoso.Widgets.Gadget", "Contoso.Abc.First"}},
		{"full name typo", "Contoso.Widgets.Widgt", nil, []string{"Contoso.Widgets.Widget", "Contoso.Widgets.Gadget"}},
		{"case insensitive", "color", nil, []string{"Contoso.Widgets.Color"}},
		{"case sensitive", "color", &FuzzyMatchOptions{CaseSensitive: true}, []string{"Contoso.Widgets.Color"}},
		{"limited", "Widgt", &FuzzyMatchOptions{MaxSuggestions: 1}, []string{"Contoso.Widgets.Widget"}},
		{"nothing close", "Unrelated", nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FindSimilar(tt.target, candidates, tt.opts))
		})
	}
}
