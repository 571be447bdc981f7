package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ja7ad/uepsim/pkg/simulation"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "packs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func samplePack() *Pack {
	cfg := simulation.DefaultConfig()
	cfg.Ks = []int{100, 900}
	cfg.RFs = []int{3, 1}
	cfg.EF = 4
	cfg.NBlocks = 1000
	cfg.IIDPer = 0.05

	p := NewPack(cfg, "deadbeef")
	p.Add(0.1, &simulation.Result{
		NBlocks: 1000, N: 1100, Ks: []int{100, 900},
		ErrorCounts: []int{12, 4000}, ErrorRates: []float64{0.00012, 0.0044},
		DropCount: 55000, DropRate: 0.05, AvgRipple: 3.5,
	})
	p.Add(0.2, &simulation.Result{
		NBlocks: 1000, N: 1200, Ks: []int{100, 900},
		ErrorCounts: []int{0, 10}, ErrorRates: []float64{0, 0.000011},
	})
	return p
}

func TestStore_PutGet(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	want := samplePack()

	require.NoError(t, s.Put(ctx, "run-1", want))
	got, err := s.Get(ctx, "run-1")
	require.NoError(t, err)

	assert.Equal(t, want.Metadata.Config.Ks, got.Metadata.Config.Ks)
	assert.Equal(t, want.Metadata.Config.RFs, got.Metadata.Config.RFs)
	assert.Equal(t, 0.05, got.Metadata.Config.IIDPer)
	assert.Equal(t, []float64{0.1, 0.2}, got.Metadata.Overheads)
	assert.Equal(t, "deadbeef", got.Metadata.Revision)
	assert.True(t, want.Metadata.Timestamp.Equal(got.Metadata.Timestamp))
	require.Len(t, got.Points, 2)
	assert.Equal(t, want.Points[0].Result, got.Points[0].Result)
}

func TestStore_PutReplaces(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	p := samplePack()
	require.NoError(t, s.Put(ctx, "k", p))
	p.Metadata.Revision = "cafe"
	require.NoError(t, s.Put(ctx, "k", p))

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "cafe", got.Metadata.Revision)

	keys, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"k"}, keys)
}

func TestStore_NotFound(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "missing"), ErrNotFound)
	assert.ErrorIs(t, s.Put(ctx, "", samplePack()), ErrInvalidKey)
}

func TestStore_ListAndDelete(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	for _, k := range []string{"iid-b", "iid-a", "markov-a", "noloss"} {
		require.NoError(t, s.Put(ctx, k, samplePack()))
	}

	keys, err := s.List(ctx, "iid-")
	require.NoError(t, err)
	assert.Equal(t, []string{"iid-a", "iid-b"}, keys)

	require.NoError(t, s.Delete(ctx, "iid-a"))
	keys, err = s.List(ctx, "iid-")
	require.NoError(t, err)
	assert.Equal(t, []string{"iid-b"}, keys)

	keys, err = s.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, keys, 3)
}

func TestStore_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "packs.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "persist", samplePack()))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	_, err = s.Get(ctx, "persist")
	assert.NoError(t, err)
}

func TestNewKey(t *testing.T) {
	a, b := NewKey("uep_"), NewKey("uep_")
	assert.True(t, strings.HasPrefix(a, "uep_"))
	assert.NotEqual(t, a, b)
	assert.Len(t, a, len("uep_")+36)
}
