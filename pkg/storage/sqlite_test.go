package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XiaoConstantine/evolve-go/internal/testutil"
	"github.com/XiaoConstantine/evolve-go/pkg/errors"
	"github.com/XiaoConstantine/evolve-go/pkg/evolution"
)

func newStore(t *testing.T) *SQLiteReportStore {
	t.Helper()
	store, err := NewSQLiteReportStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleReport(t *testing.T) *evolution.Report {
	t.Helper()

	engine := evolution.NewEngine(&evolution.Config{PopulationSize: 4, Seed: 7})

	ctx := context.Background()
	engine.InitializePopulation(ctx, nil)
	for _, h := range engine.Population() {
		h.Predictor = testutil.EchoPredictor()
	}

	_, err := engine.EvolveGeneration(ctx, testutil.IdentityCases(3, "echo"))
	require.NoError(t, err)

	return engine.GenerateReport()
}

func TestSaveAndGet(t *testing.T) {
	store := newStore(t)
	report := sampleReport(t)

	require.NoError(t, store.Save(report))

	got, err := store.Get(report.Summary.RunID)
	require.NoError(t, err)
	assert.Equal(t, report.Summary, got.Summary)
	assert.Equal(t, report.Performance, got.Performance)
	assert.Len(t, got.BestHypotheses, len(report.BestHypotheses))
}

func TestSaveUpserts(t *testing.T) {
	store := newStore(t)
	report := sampleReport(t)

	require.NoError(t, store.Save(report))
	report.Performance.FinalBestFitness = 0.99
	require.NoError(t, store.Save(report))

	got, err := store.Get(report.Summary.RunID)
	require.NoError(t, err)
	assert.Equal(t, 0.99, got.Performance.FinalBestFitness)

	runIDs, err := store.List()
	require.NoError(t, err)
	assert.Len(t, runIDs, 1)
}

func TestSaveRejectsAnonymousReports(t *testing.T) {
	store := newStore(t)

	assert.Error(t, store.Save(nil))
	assert.Error(t, store.Save(&evolution.Report{}))
}

func TestGetMissingRun(t *testing.T) {
	store := newStore(t)

	_, err := store.Get("no-such-run")
	require.Error(t, err)

	var typed *errors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, errors.ResourceNotFound, typed.Code())
}

func TestList(t *testing.T) {
	store := newStore(t)

	runIDs, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, runIDs)

	first := sampleReport(t)
	second := sampleReport(t)
	require.NoError(t, store.Save(first))
	require.NoError(t, store.Save(second))

	runIDs, err = store.List()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{first.Summary.RunID, second.Summary.RunID}, runIDs)
}

func TestDelete(t *testing.T) {
	store := newStore(t)
	report := sampleReport(t)
	require.NoError(t, store.Save(report))

	require.NoError(t, store.Delete(report.Summary.RunID))
	_, err := store.Get(report.Summary.RunID)
	assert.Error(t, err)

	// Deleting again is a no-op.
	require.NoError(t, store.Delete(report.Summary.RunID))
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")

	store, err := NewSQLiteReportStore(path)
	require.NoError(t, err)
	report := sampleReport(t)
	require.NoError(t, store.Save(report))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteReportStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(report.Summary.RunID)
	require.NoError(t, err)
	assert.Equal(t, report.Summary.RunID, got.Summary.RunID)
}
