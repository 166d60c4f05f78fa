package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ugd-resolver/internal/reference"
	"github.com/ugd-resolver/internal/resolver"
)

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("алматы", "алматы"))
	assert.Equal(t, 0.0, Similarity("", "алматы"))
	assert.Greater(t, Similarity("алмааты", "алматы"), 0.85)
	assert.Greater(t, Similarity("almaty", "алматы"), 0.9)
	assert.Less(t, Similarity("шымкент", "астане"), 0.6)
}

func TestSuggester_Suggest(t *testing.T) {
	table := resolver.NewTable([]reference.RawRecord{
		{Code: "6201", Name: "ДГД по г.Астане"},
		{Code: "6001", Name: "ДГД по г.Алматы"},
		{Code: "5901", Name: "ДГД по г.Шымкенту"},
	}, "")

	s := NewSuggester(0, 2)

	got := s.Suggest(table.Records(), []string{"алмааты"})
	require.Len(t, got, 1)
	assert.Equal(t, "6001", got[0].Code)
	assert.Equal(t, "алматы", got[0].Token)
	assert.Equal(t, "алмааты", got[0].Term)

	assert.Empty(t, s.Suggest(table.Records(), []string{"павлодар"}))
	assert.Nil(t, s.Suggest(table.Records(), nil))
}

func TestSuggester_Limit(t *testing.T) {
	table := resolver.NewTable([]reference.RawRecord{
		{Code: "1", Name: "УГД по Косшы"},
		{Code: "2", Name: "УГД Косшы"},
		{Code: "3", Name: "Косшы"},
	}, "")

	got := NewSuggester(0.5, 2).Suggest(table.Records(), []string{"косшы"})
	assert.Len(t, got, 2)
	assert.Equal(t, "1", got[0].Code)
}
