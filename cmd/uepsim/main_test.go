package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ja7ad/uepsim/pkg/channel"
	"github.com/ja7ad/uepsim/pkg/simulation"
	"github.com/ja7ad/uepsim/pkg/stats"
	"github.com/ja7ad/uepsim/pkg/store"
)

func parse(t *testing.T, args ...string) (simulation.Config, []float64, error) {
	t.Helper()
	var o opts
	cmd := newRootCmd(&o)
	require.NoError(t, cmd.ParseFlags(args))
	return resolve(cmd, o)
}

func TestLinspace(t *testing.T) {
	assert.Equal(t, []float64{0.5}, linspace(0.5, 1, 1))
	got := linspace(0, 0.4, 5)
	require.Len(t, got, 5)
	for i, want := range []float64{0, 0.1, 0.2, 0.3, 0.4} {
		assert.InDelta(t, want, got[i], 1e-12, "i=%d", i)
	}
	assert.Equal(t, 0.4, got[4])
}

func TestResolve_Flags(t *testing.T) {
	cfg, overheads, err := parse(t,
		"--ks", "100,900", "--rfs", "3,1", "--ef", "4", "-c", "0.1", "--delta", "0.5",
		"--nblocks", "1000", "--overhead", "0.25", "--overhead", "0.5", "--seed", "7")
	require.NoError(t, err)

	assert.Equal(t, []int{100, 900}, cfg.Ks)
	assert.Equal(t, []int{3, 1}, cfg.RFs)
	assert.Equal(t, 4, cfg.EF)
	assert.Equal(t, 1000, cfg.NBlocks)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, []float64{0.25, 0.5}, overheads)
	assert.Equal(t, channel.NoLoss, cfg.Kind())
}

func TestResolve_DefaultsRFs(t *testing.T) {
	cfg, overheads, err := parse(t, "--ks", "10,20")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1}, cfg.RFs)
	assert.Equal(t, []float64{0}, overheads)
}

func TestResolve_ConfigFileWithOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	doc := "ks: [100, 900]\nrfs: [3, 1]\nef: 4\nnblocks: 50\niid_per: 0.1\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, _, err := parse(t, "--config", path, "--nblocks", "20")
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.NBlocks)
	assert.Equal(t, 4, cfg.EF)
	assert.Equal(t, channel.IID, cfg.Kind())

	cfg, _, err = parse(t, "--config", path, "--markov-pgb", "0.1", "--markov-pbg", "0.5")
	require.NoError(t, err)
	assert.Equal(t, channel.Markov, cfg.Kind())
	assert.Equal(t, 0.0, cfg.IIDPer, "channel flags replace the file's channel")
}

func TestResolve_Sweep(t *testing.T) {
	_, overheads, err := parse(t, "--ks", "10",
		"--overhead-min", "0", "--overhead-max", "0.3", "--overhead-steps", "4")
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 0.1, 0.2, 0.3}, overheads, 1e-12)

	_, _, err = parse(t, "--ks", "10", "--overhead", "0.1", "--overhead-steps", "3")
	assert.Error(t, err)

	_, _, err = parse(t, "--ks", "10", "--overhead-min", "0.5", "--overhead-max", "0.1", "--overhead-steps", "3")
	assert.Error(t, err)
}

func TestResolve_Channels(t *testing.T) {
	cfg, _, err := parse(t, "--ks", "10", "--avg-per", "0.1", "--avg-bad-run", "4")
	require.NoError(t, err)
	assert.Equal(t, channel.Markov, cfg.Kind())
	assert.InDelta(t, 0.25, cfg.MarkovPBG, 1e-12)
	assert.InDelta(t, 0.25*0.1/0.9, cfg.MarkovPGB, 1e-12)

	tests := [][]string{
		{"--ks", "10", "--iid-per", "0.1", "--markov-pgb", "0.1"},
		{"--ks", "10", "--avg-per", "0.1"},
		{"--ks", "10", "--avg-per", "0.1", "--avg-bad-run", "4", "--iid-per", "0.1"},
		{"--ks", "10", "--iid-per", "1.5"},
	}
	for _, args := range tests {
		_, _, err := parse(t, args...)
		assert.Error(t, err, "%v", args)
	}
}

func TestResolve_Invalid(t *testing.T) {
	_, _, err := parse(t)
	assert.ErrorIs(t, err, simulation.ErrInvalidParameters, "no classes")

	_, _, err = parse(t, "--ks", "10,20", "--rfs", "1")
	assert.ErrorIs(t, err, simulation.ErrInvalidParameters)

	_, _, err = parse(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	// Every sweep point is checked before anything runs.
	_, overheads, err := parse(t, "--ks", "10", "--overhead", "0.1", "--overhead", "-0.5")
	assert.ErrorIs(t, err, simulation.ErrInvalidParameters)
	assert.Nil(t, overheads)
}

func samplePoint() point {
	return newPoint(0.25, &simulation.Result{
		NBlocks: 100, N: 13, Ks: []int{10},
		ErrorCounts: []int{5}, ErrorRates: []float64{0.005},
		DropRate: 0.1, AvgRipple: 2.5, AvgDecodeSec: 0.002,
	})
}

func TestNewPoint_ConfidenceInterval(t *testing.T) {
	p := samplePoint()
	require.Len(t, p.Classes, 1)
	c := p.Classes[0]
	assert.Less(t, c.Lower, c.Rate)
	assert.Greater(t, c.Upper, c.Rate)
	assert.InDelta(t, c.Rate-c.Lower, c.Below, 1e-12)
	assert.InDelta(t, c.Upper-c.Rate, c.Above, 1e-12)

	lo, hi, err := stats.BernoulliCI(5, 1000, stats.DefaultConfidence)
	require.NoError(t, err)
	assert.InDelta(t, lo, c.Lower, 1e-12)
	assert.InDelta(t, hi, c.Upper, 1e-12)

	empty := newPoint(0, &simulation.Result{Ks: []int{10}, ErrorCounts: []int{0}, ErrorRates: []float64{0}})
	assert.Equal(t, 0.0, empty.Classes[0].Lower)
	assert.Equal(t, 1.0, empty.Classes[0].Upper)
}

func TestCSVRecord(t *testing.T) {
	h := csvHeader(2)
	assert.Equal(t, "overhead", h[0])
	assert.Equal(t, "per_hi_1", h[len(h)-1])

	rec := csvRecord(samplePoint())
	assert.Len(t, rec, len(csvHeader(1)))
	assert.Equal(t, []string{"0.25", "13", "100", "0.1"}, rec[:4])
	assert.Equal(t, "5", rec[7])
}

func TestTableRow(t *testing.T) {
	row := tableRow(samplePoint())
	assert.True(t, strings.HasPrefix(row, "0.250\t13\t100\t5.000e-03 ["), row)
	assert.True(t, strings.HasSuffix(row, "\t0.1000\t2.50\t2.000\n"), row)
}

func TestWriteHTML(t *testing.T) {
	cfg := simulation.DefaultConfig()
	cfg.Ks, cfg.RFs = []int{10}, []int{1}
	pack := store.NewPack(cfg, "abc123")

	var buf bytes.Buffer
	require.NoError(t, writeHTML(&buf, pack, nil), "empty sweep")

	buf.Reset()
	require.NoError(t, writeHTML(&buf, pack, []point{samplePoint()}))
	out := buf.String()
	assert.Contains(t, out, "abc123")
	assert.Contains(t, out, "PER[0]")
	assert.Contains(t, out, "5.000e-03")
	assert.Contains(t, out, "channel: noloss")
}
