package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLocality_Empty(t *testing.T) {
	for _, input := range []string{"", "   ", ",;/", " и "} {
		parsed := ParseLocality(input)

		assert.True(t, parsed.Empty(), "input: %q", input)
		assert.Len(t, parsed.AllTerms, 0)
		assert.NotNil(t, parsed.RegionTerms)
	}
}

func TestParseLocality(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		regions   []string
		districts []string
		general   []string
		all       []string
	}{
		{
			name:      "District and region",
			input:     "Есильский район, Акмолинская область",
			regions:   []string{"акмолинская"},
			districts: []string{"есильский"},
			general:   []string{},
			all:       []string{"акмолинская", "есильский"},
		},
		{
			name:      "Major city is a region",
			input:     "г.Алматы",
			regions:   []string{"г алматы"},
			districts: []string{},
			general:   []string{},
			all:       []string{"г алматы", "г", "алматы"},
		},
		{
			name:      "Short oblast suffix",
			input:     "Карагандинская обл.",
			regions:   []string{"карагандинская"},
			districts: []string{},
			general:   []string{},
			all:       []string{"карагандинская"},
		},
		{
			name:      "Kazakh district marker",
			input:     "Сарыарқа ауданы",
			regions:   []string{},
			districts: []string{"сарыарқа"},
			general:   []string{},
			all:       []string{"сарыарқа"},
		},
		{
			name:      "Abbreviated district marker",
			input:     "Абайский р-н",
			regions:   []string{},
			districts: []string{"абайский"},
			general:   []string{},
			all:       []string{"абайский"},
		},
		{
			name:      "General with locality prefix",
			input:     "город Косшы",
			regions:   []string{},
			districts: []string{},
			general:   []string{"косшы"},
			all:       []string{"косшы"},
		},
		{
			name:      "General with dotted prefix",
			input:     "пос.Балкашино",
			regions:   []string{},
			districts: []string{},
			general:   []string{"балкашино"},
			all:       []string{"балкашино"},
		},
		{
			name:      "Bare affix falls back to the part itself",
			input:     "город",
			regions:   []string{},
			districts: []string{},
			general:   []string{"город"},
			all:       []string{"город"},
		},
		{
			name:      "Connector words split parts",
			input:     "Косшы или Шортанды",
			regions:   []string{},
			districts: []string{},
			general:   []string{"косшы", "шортанды"},
			all:       []string{"косшы", "шортанды"},
		},
		{
			name:      "Repeated connector kept as general term",
			input:     "Алматы или или Астана",
			regions:   []string{},
			districts: []string{},
			general:   []string{"алматы", "или", "астана"},
			all:       []string{"алматы", "или", "астана"},
		},
		{
			name:      "Duplicates removed",
			input:     "Косшы; косшы / КОСШЫ",
			regions:   []string{},
			districts: []string{},
			general:   []string{"косшы"},
			all:       []string{"косшы"},
		},
		{
			name:      "General term already classified as district is dropped",
			input:     "Есильский район, Есильский",
			regions:   []string{},
			districts: []string{"есильский"},
			general:   []string{},
			all:       []string{"есильский"},
		},
		{
			name:      "Single-letter district pieces dropped",
			input:     "в Есильском районе",
			regions:   []string{},
			districts: []string{"есильском", "районе"},
			general:   []string{},
			all:       []string{"есильском", "районе"},
		},
		{
			name:      "Word starting with connector letter not split",
			input:     "район имени Абая",
			regions:   []string{},
			districts: []string{},
			general:   []string{"имени", "абая"},
			all:       []string{"имени", "абая"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			parsed := ParseLocality(tc.input)

			assert.Equal(t, tc.regions, parsed.RegionTerms)
			assert.Equal(t, tc.districts, parsed.DistrictTerms)
			assert.Equal(t, tc.general, parsed.GeneralTerms)
			assert.Equal(t, tc.all, parsed.AllTerms)
		})
	}
}

func TestSplitParts(t *testing.T) {
	testCases := []struct {
		input    string
		expected []string
	}{
		{"", nil},
		{"Алматы", []string{"Алматы"}},
		{"Алматы, Астана", []string{"Алматы", "Астана"}},
		{"Алматы и Астана", []string{"Алматы", "Астана"}},
		{"Алматы ИЛИ Астана", []string{"Алматы", "Астана"}},
		{"Almaty or Astana", []string{"Almaty", "Astana"}},
		{"Алматы,и Астана", []string{"Алматы", "Астана"}},
		{"Алматы или или Астана", []string{"Алматы", "или Астана"}},
		{"Иргели", []string{"Иргели"}},
		{"Алматы/Астана;Шымкент", []string{"Алматы", "Астана", "Шымкент"}},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, defaultParser.SplitParts(tc.input))
		})
	}
}
