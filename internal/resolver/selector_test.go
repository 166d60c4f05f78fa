package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ugd-resolver/internal/parser"
	"github.com/ugd-resolver/internal/reference"
)

func TestSelect_EmptyCandidates(t *testing.T) {
	assert.Nil(t, Select(nil, parser.ParseLocality("Косшы")))
}

func TestSelect_EmptyQuery(t *testing.T) {
	candidates := []MatchCandidate{{Record: NewRecord(almatyCity), Score: 0}}
	assert.Nil(t, Select(candidates, parser.ParseLocality("")))
}

func TestRank_StableOnTies(t *testing.T) {
	a := NewRecord(reference.RawRecord{Code: "A"})
	b := NewRecord(reference.RawRecord{Code: "B"})
	c := NewRecord(reference.RawRecord{Code: "C"})

	ranked := Rank([]MatchCandidate{{Record: a, Score: 10}, {Record: b, Score: 30}, {Record: c, Score: 10}})

	require.Len(t, ranked, 3)
	assert.Equal(t, []string{"B", "A", "C"}, []string{ranked[0].Record.Code, ranked[1].Record.Code, ranked[2].Record.Code})
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	input := []MatchCandidate{{Score: 1}, {Score: 2}}
	Rank(input)
	assert.Equal(t, 1, input[0].Score)
}

func TestSelect_ConfidenceGate(t *testing.T) {
	rec := NewRecord(almatyCity)

	testCases := []struct {
		name     string
		score    int
		parsed   *parser.ParsedAddressInput
		selected bool
	}{
		{name: "Multi-term above floor", score: 50, parsed: &parser.ParsedAddressInput{AllTerms: []string{"a", "b"}}, selected: true},
		{name: "Multi-term below floor", score: 49, parsed: &parser.ParsedAddressInput{AllTerms: []string{"a", "b"}}, selected: false},
		{name: "Single term below floor", score: 20, parsed: &parser.ParsedAddressInput{AllTerms: []string{"a"}}, selected: true},
		{name: "Single term negative", score: -50, parsed: &parser.ParsedAddressInput{AllTerms: []string{"a"}}, selected: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Select([]MatchCandidate{{Record: rec, Score: tc.score}}, tc.parsed)
			assert.Equal(t, tc.selected, got != nil)
		})
	}
}

// Input hai term, điểm thấp: fallback một-term không chạy dù có token trùng khớp
func TestSelect_SingleTermFallbackNeverRunsForMultiTermInput(t *testing.T) {
	table := newTestTable(numberedUGD)
	parsed := parser.ParseLocality("№5, Шортанды")
	require.Len(t, parsed.AllTerms, 2)

	candidates := ScoreAll(table.all(), parsed)
	require.Len(t, candidates, 1)
	assert.Equal(t, 40, candidates[0].Score)

	assert.Nil(t, Select(candidates, parsed))
}

func TestSingleTermFallback(t *testing.T) {
	ranked := []MatchCandidate{
		{Record: NewRecord(astanaCity), Score: 30},
		{Record: NewRecord(almatyCity), Score: 0},
		{Record: NewRecord(reference.RawRecord{Code: "X", Name: "УГД по Алматы"}), Score: 10},
	}

	got := singleTermFallback(ranked, "алматы")
	require.NotNil(t, got)
	assert.Equal(t, "X", got.Record.Code)

	assert.Nil(t, singleTermFallback(ranked, "шымкент"))

	regional := []MatchCandidate{{Record: NewRecord(esilDistrict), Score: 5}}
	assert.NotNil(t, singleTermFallback(regional, "акмолинская"))
}
