package channel

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dropRate(m Model, n int) float64 {
	drops := 0
	for i := 0; i < n; i++ {
		if !m.Poll() {
			drops++
		}
	}
	return float64(drops) / float64(n)
}

func TestNoLoss_AlwaysDelivers(t *testing.T) {
	m := NewNoLoss()
	m.Reset()
	for i := 0; i < 1000; i++ {
		require.True(t, m.Poll())
	}
	assert.Equal(t, NoLoss, m.Kind())
}

func TestIID_EmpiricalDropRate(t *testing.T) {
	for _, p := range []float64{0, 0.01, 0.1, 0.5} {
		m, err := NewIID(p, rand.New(rand.NewSource(11)))
		require.NoError(t, err)
		got := dropRate(m, 10_000)
		t.Logf("p=%.2f empirical=%.4f", p, got)
		assert.InDelta(t, p, got, 0.02)
	}
}

func TestIID_InvalidParameters(t *testing.T) {
	for _, p := range []float64{-0.1, 1, 1.5} {
		_, err := NewIID(p, rand.New(rand.NewSource(1)))
		assert.ErrorIs(t, err, ErrInvalidParameters, "p=%v", p)
	}
	_, err := NewIID(0.1, nil)
	assert.ErrorIs(t, err, ErrInvalidParameters)
}

func TestMarkov_AlwaysSwitchingAlternates(t *testing.T) {
	m, err := NewMarkov(1, 1, rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	// First poll leaves Good, second comes back, and so on.
	for i := 0; i < 100; i++ {
		assert.Equal(t, i%2 == 1, m.Poll(), "poll %d", i)
	}
	assert.InDelta(t, 0.5, dropRate(m, 10_000), 1e-9)

	// Reset always restarts from Good, so the next poll drops again.
	m.Reset()
	assert.False(t, m.Poll())
}

func TestMarkov_RareTransitionsStayGood(t *testing.T) {
	m, err := NewMarkov(1e-9, 0.5, rand.New(rand.NewSource(5)))
	require.NoError(t, err)
	m.Reset()
	assert.Equal(t, 0.0, dropRate(m, 10_000))
}

func TestMarkov_StationaryLoss(t *testing.T) {
	pGB, pBG, err := MarkovFromBurst(0.1, 5)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, pBG, 1e-12)
	assert.InDelta(t, 0.2*0.1/0.9, pGB, 1e-12)

	m, err := NewMarkov(pGB, pBG, rand.New(rand.NewSource(9)))
	require.NoError(t, err)
	assert.InDelta(t, 0.1, m.StationaryLoss(), 1e-12)

	got := dropRate(m, 200_000)
	t.Logf("pGB=%.4f pBG=%.4f empirical=%.4f", pGB, pBG, got)
	assert.InDelta(t, 0.1, got, 0.02)
}

func TestMarkov_InvalidParameters(t *testing.T) {
	cases := [][2]float64{{0, 0.5}, {0.5, 0}, {-1, 0.5}, {0.5, 1.01}}
	for _, c := range cases {
		_, err := NewMarkov(c[0], c[1], rand.New(rand.NewSource(1)))
		assert.ErrorIs(t, err, ErrInvalidParameters, "pGB=%v pBG=%v", c[0], c[1])
	}

	_, _, err := MarkovFromBurst(1, 10)
	assert.ErrorIs(t, err, ErrInvalidParameters)
	_, _, err = MarkovFromBurst(0.1, 0.5)
	assert.ErrorIs(t, err, ErrInvalidParameters)
}

func TestNew_SelectionRule(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		want Kind
	}{
		{"zero_value", Config{}, NoLoss},
		{"degenerate_markov", Config{MarkovPGB: 0, MarkovPBG: 1}, NoLoss},
		{"iid", Config{IIDPer: 0.1}, IID},
		{"markov", Config{MarkovPGB: 0.01, MarkovPBG: 0.5}, Markov},
		{"iid_wins", Config{IIDPer: 0.2, MarkovPGB: 0.01, MarkovPBG: 0.5}, IID},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.NoError(t, tc.cfg.Validate())
			m, err := New(tc.cfg, rand.New(rand.NewSource(1)))
			require.NoError(t, err)
			assert.Equal(t, tc.want, m.Kind())
			assert.Equal(t, tc.want, tc.cfg.Kind())
		})
	}

	_, err := New(Config{MarkovPGB: 0.1}, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, ErrInvalidParameters, "pBG must be set")
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "noloss", NoLoss.String())
	assert.Equal(t, "iid", IID.String())
	assert.Equal(t, "markov", Markov.String())
}
