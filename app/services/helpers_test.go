package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"github.com/ugd-resolver/internal/metrics"
	"github.com/ugd-resolver/internal/reference"
	"github.com/ugd-resolver/internal/resolver"
	"github.com/ugd-resolver/internal/search"
	"go.uber.org/zap"
)

func zapNop() *zap.Logger {
	return zap.NewNop()
}

var testRows = []reference.RawRecord{
	{Code: "0301", BIN: "123456789013", Name: "Есильское районное управление", Region: "Акмолинская область"},
	{Code: "6001", BIN: "000000000000", Name: "ДГД по г.Алматы"},
	{Code: "6201", BIN: "000000000000", Name: "ДГД по г.Астане"},
	{Code: "4810", Name: "Абайский район", Region: "Карагандинская область"},
}

const testCSV = "code;bin;name;region\n" +
	"0301;123456789013;Есильское районное управление;Акмолинская область\n" +
	"6001;000000000000;ДГД по г.Алматы;\n" +
	"6201;000000000000;ДГД по г.Астане;\n"

func newTestMetrics() *metrics.Metrics {
	reg := prometheus.NewRegistry()
	return metrics.New(reg, reg)
}

func newTestResolver() *resolver.Resolver {
	return resolver.NewResolver(resolver.NewTable(testRows, "v1"), zap.NewNop())
}

func writeTestCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "offices.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// failingSearcher giả lập Meilisearch không phản hồi
type failingSearcher struct{}

func (failingSearcher) Search(ctx context.Context, table *resolver.Table, query string, limit int) ([]search.OfficeHit, error) {
	if query == "" {
		return nil, search.ErrEmptyQuery
	}
	return nil, errors.New("meilisearch unavailable")
}

// fakeIndexer ghi lại bảng được seed
type fakeIndexer struct {
	builds int
	seeded *resolver.Table
	err    error
}

func (f *fakeIndexer) BuildIndexes() error {
	f.builds++
	return f.err
}

func (f *fakeIndexer) SeedOffices(table *resolver.Table) error {
	f.seeded = table
	return nil
}
