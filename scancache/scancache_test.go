package scancache_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viewscan/curve"
	"viewscan/scancache"
	"viewscan/types"
)

func TestFingerprintIsStableAndDistinguishesKeys(t *testing.T) {
	a, err := curve.ScalarFromBytes(make([]byte, 32))
	require.NoError(t, err)
	bBytes := make([]byte, 32)
	bBytes[0] = 1
	b, err := curve.ScalarFromBytes(bBytes)
	require.NoError(t, err)

	fpA1 := scancache.Fingerprint(a)
	fpA2 := scancache.Fingerprint(a)
	fpB := scancache.Fingerprint(b)

	assert.Equal(t, fpA1, fpA2)
	assert.NotEqual(t, fpA1, fpB)
}

func TestPutThenGetRoundTrips(t *testing.T) {
	cache, err := scancache.Open(t.TempDir())
	require.NoError(t, err)
	defer cache.Close()

	fp := [8]byte{1, 2, 3, 4, 5, 6, 7, 8}
	result := scancache.BlockScanResult{
		Height: 42,
		Candidates: []types.CandidateOutput{
			{OutputIndex: 0, AmountPiconero: 100, AmountXMR: "0.000000000100"},
		},
	}

	require.NoError(t, cache.Put(fp, result))

	got, found, err := cache.Get(fp, 42)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, result.Height, got.Height)
	require.Len(t, got.Candidates, 1)
	assert.Equal(t, uint64(100), got.Candidates[0].AmountPiconero)
}

func TestGetMissingHeightReturnsNotFound(t *testing.T) {
	cache, err := scancache.Open(t.TempDir())
	require.NoError(t, err)
	defer cache.Close()

	fp := [8]byte{9, 9, 9, 9, 9, 9, 9, 9}
	_, found, err := cache.Get(fp, 100)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDifferentFingerprintsDoNotCollide(t *testing.T) {
	cache, err := scancache.Open(t.TempDir())
	require.NoError(t, err)
	defer cache.Close()

	fpA := [8]byte{1}
	fpB := [8]byte{2}

	require.NoError(t, cache.Put(fpA, scancache.BlockScanResult{Height: 5}))

	_, found, err := cache.Get(fpB, 5)
	require.NoError(t, err)
	assert.False(t, found)
}
