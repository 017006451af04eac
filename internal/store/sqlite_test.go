package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridline-data/locator-cli/internal/aggregate"
	"github.com/gridline-data/locator-cli/internal/model"
	"github.com/gridline-data/locator-cli/internal/scorer"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

// --- Sweeps ---

func TestSQLite_CreateSweep_And_GetSweep(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	sw, err := st.CreateSweep(ctx, "generac", 1200)
	require.NoError(t, err)
	assert.NotEmpty(t, sw.ID)
	assert.Equal(t, model.SweepRunning, sw.Status)
	assert.Equal(t, 1200, sw.TotalZips)

	fetched, err := st.GetSweep(ctx, sw.ID)
	require.NoError(t, err)
	assert.Equal(t, sw.ID, fetched.ID)
	assert.Equal(t, "generac", fetched.OEM)
	assert.Nil(t, fetched.CompletedAt)
}

func TestSQLite_CompleteSweep(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	sw, err := st.CreateSweep(ctx, "carrier", 800)
	require.NoError(t, err)

	err = st.CompleteSweep(ctx, sw.ID, model.SweepCompleted, 5400, 3100, 2)
	require.NoError(t, err)

	fetched, err := st.GetSweep(ctx, sw.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SweepCompleted, fetched.Status)
	assert.Equal(t, 5400, fetched.RawCount)
	assert.Equal(t, 3100, fetched.UniqueCount)
	assert.Equal(t, 2, fetched.FailedZips)
	require.NotNil(t, fetched.CompletedAt)
}

func TestSQLite_CompleteSweep_Unknown(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	err := st.CompleteSweep(ctx, "no-such-id", model.SweepFailed, 0, 0, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sweep not found")
}

func TestSQLite_ListSweeps_FilterByOEMAndStatus(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	sw1, err := st.CreateSweep(ctx, "generac", 100)
	require.NoError(t, err)
	_, err = st.CreateSweep(ctx, "carrier", 100)
	require.NoError(t, err)

	err = st.CompleteSweep(ctx, sw1.ID, model.SweepCompleted, 10, 8, 0)
	require.NoError(t, err)

	sweeps, err := st.ListSweeps(ctx, SweepFilter{OEM: "generac", Limit: 10})
	require.NoError(t, err)
	require.Len(t, sweeps, 1)
	assert.Equal(t, sw1.ID, sweeps[0].ID)

	sweeps, err = st.ListSweeps(ctx, SweepFilter{Status: model.SweepRunning, Limit: 10})
	require.NoError(t, err)
	require.Len(t, sweeps, 1)
	assert.Equal(t, "carrier", sweeps[0].OEM)
}

// --- Dealers ---

func TestSQLite_InsertDealers_And_List(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	sw, err := st.CreateSweep(ctx, "generac", 10)
	require.NoError(t, err)

	dealers := []model.Dealer{
		{Name: "Acme Electric", Phone: "5125551234", State: "TX", OEMSource: "generac", Tier: "Premier"},
		{Name: "Bolt Power", Phone: "2135559876", State: "CA", OEMSource: "generac"},
	}
	n, err := st.InsertDealers(ctx, sw.ID, dealers)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := st.ListDealers(ctx, DealerFilter{OEM: "generac"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Acme Electric", got[0].Name)
	assert.Equal(t, "Premier", got[0].Tier)
}

func TestSQLite_ListDealers_FilterByState(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	sw, err := st.CreateSweep(ctx, "tesla-energy", 10)
	require.NoError(t, err)

	_, err = st.InsertDealers(ctx, sw.ID, []model.Dealer{
		{Name: "Sun Co", State: "CA", OEMSource: "tesla-energy"},
		{Name: "Lone Star Solar", State: "TX", OEMSource: "tesla-energy"},
	})
	require.NoError(t, err)

	got, err := st.ListDealers(ctx, DealerFilter{State: "TX"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Lone Star Solar", got[0].Name)
}

func TestSQLite_InsertDealers_Empty(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	n, err := st.InsertDealers(ctx, "any", nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

// --- Leads ---

func testLead(key string, score float64, tier string) scorer.Lead {
	return scorer.Lead{
		Profile: aggregate.Profile{
			Dealer: model.Dealer{Name: key},
			OEMs:   []string{"generac"},
			Key:    key,
		},
		Score: score,
		Tier:  tier,
	}
}

func TestSQLite_SaveLeads_And_List(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	n, err := st.SaveLeads(ctx, []scorer.Lead{
		testLead("phone:5125551234", 91.2, "A"),
		testLead("phone:2135559876", 44.0, "C"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	leads, err := st.ListLeads(ctx, LeadFilter{})
	require.NoError(t, err)
	require.Len(t, leads, 2)
	// Ordered by score descending.
	assert.Equal(t, "phone:5125551234", leads[0].Profile.Key)
	assert.Equal(t, 91.2, leads[0].Score)
}

func TestSQLite_SaveLeads_RescoreReplaces(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.SaveLeads(ctx, []scorer.Lead{testLead("phone:5125551234", 51.5, "B")})
	require.NoError(t, err)

	_, err = st.SaveLeads(ctx, []scorer.Lead{testLead("phone:5125551234", 88.0, "A")})
	require.NoError(t, err)

	leads, err := st.ListLeads(ctx, LeadFilter{})
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, 88.0, leads[0].Score)
	assert.Equal(t, "A", leads[0].Tier)
}

func TestSQLite_ListLeads_FilterByTierAndScore(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.SaveLeads(ctx, []scorer.Lead{
		testLead("k1", 95.0, "A"),
		testLead("k2", 72.0, "B"),
		testLead("k3", 30.0, "D"),
	})
	require.NoError(t, err)

	leads, err := st.ListLeads(ctx, LeadFilter{Tier: "A"})
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "k1", leads[0].Profile.Key)

	leads, err = st.ListLeads(ctx, LeadFilter{MinScore: 70})
	require.NoError(t, err)
	assert.Len(t, leads, 2)
}

// --- Migrate ---

func TestSQLite_Migrate_Idempotent(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	// Migrate was already called in newTestSQLiteStore; calling again should not error.
	err := st.Migrate(ctx)
	require.NoError(t, err)
}
