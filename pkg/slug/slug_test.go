// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/yomira-client/pkg/slug"
)

/*
TestFrom covers the normalization pipeline: accent folding, lowercasing,
hyphenation, and hyphen cleanup.
*/
func TestFrom(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple_title", "Tower of Dawn", "tower-of-dawn"},
		{"accents_folded", "Café Étoile", "cafe-etoile"},
		{"punctuation_stripped", "Re:Zero — Starting Life!", "re-zero-starting-life"},
		{"multiple_spaces_collapse", "solo    leveling", "solo-leveling"},
		{"leading_trailing_trimmed", "  --Omniscient Reader--  ", "omniscient-reader"},
		{"digits_kept", "86: Eighty Six", "86-eighty-six"},
		{"empty_input", "", ""},
		{"only_punctuation", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, slug.From(tt.input))
		})
	}
}
