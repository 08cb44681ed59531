package curve_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viewscan/curve"
)

func TestScalarFromBytesRejectsShortInput(t *testing.T) {
	_, err := curve.ScalarFromBytes([]byte{1, 2, 3})
	require.ErrorIs(t, err, curve.ErrInvalidLength)
}

func TestScalarMultBaseAndPointDecodeRoundtrip(t *testing.T) {
	one := make([]byte, 32)
	one[0] = 1
	s, err := curve.ScalarFromBytes(one)
	require.NoError(t, err)

	g := curve.ScalarMultBase(s)
	encoded := curve.PointEncode(g)
	require.Len(t, encoded, 32)

	decoded, err := curve.PointDecode(encoded)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(curve.PointEncode(decoded), encoded))
}

func TestPointDecodeRejectsInvalidPoint(t *testing.T) {
	// No x satisfies the curve equation for this y. (All-0xFF is not
	// usable here: it is a non-canonical but valid encoding of y = 18.)
	garbage := bytes.Repeat([]byte{0xDD}, 32)
	_, err := curve.PointDecode(garbage)
	require.ErrorIs(t, err, curve.ErrInvalidPoint)
}

func TestPointAddNegateInverse(t *testing.T) {
	one := make([]byte, 32)
	one[0] = 1
	s, err := curve.ScalarFromBytes(one)
	require.NoError(t, err)

	g := curve.ScalarMultBase(s)
	negG := curve.PointNegate(g)
	identity := curve.PointAdd(g, negG)

	zero := make([]byte, 32)
	zeroScalar, err := curve.ScalarFromBytes(zero)
	require.NoError(t, err)
	expectedIdentity := curve.ScalarMultBase(zeroScalar)

	assert.Equal(t, curve.PointEncode(expectedIdentity), curve.PointEncode(identity))
}

func TestMultByCofactorOfIdentityIsIdentity(t *testing.T) {
	zero := make([]byte, 32)
	zeroScalar, err := curve.ScalarFromBytes(zero)
	require.NoError(t, err)

	identity := curve.ScalarMultBase(zeroScalar)
	cleared := curve.MultByCofactor(identity)

	assert.Equal(t, curve.PointEncode(identity), curve.PointEncode(cleared))
}
