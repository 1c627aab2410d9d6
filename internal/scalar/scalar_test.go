package scalar

import (
	"encoding/hex"
	"math/rand"
	"testing"

	"filippo.io/edwards25519"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// orderBytes is the little-endian encoding of l.
var orderBytes, _ = hex.DecodeString("edd3f55c1a631258d69cf7a2def9de1400000000000000000000000000000010")

func TestScalar_SetCanonicalBytes(t *testing.T) {
	_, err := New().SetCanonicalBytes(orderBytes)
	assert.True(t, errors.Is(err, ErrNonCanonical), "l itself is not canonical")

	lMinusOne := append([]byte(nil), orderBytes...)
	lMinusOne[0]--
	s, err := New().SetCanonicalBytes(lMinusOne)
	require.NoError(t, err)
	assert.Equal(t, lMinusOne, s.Bytes())
	assert.Equal(t, 1, New().Add(s, New().SetUint64(1)).IsZero())

	high := make([]byte, Size)
	high[31] = 0xff
	_, err = New().SetCanonicalBytes(high)
	assert.True(t, errors.Is(err, ErrNonCanonical))

	_, err = New().SetCanonicalBytes(make([]byte, 31))
	assert.True(t, errors.Is(err, ErrLength))

	zero, err := New().SetCanonicalBytes(make([]byte, Size))
	require.NoError(t, err)
	assert.Equal(t, 1, zero.IsZero())
}

func TestScalar_SetUniformBytes(t *testing.T) {
	_, err := New().SetUniformBytes(make([]byte, 32))
	assert.True(t, errors.Is(err, ErrLength))

	wide := make([]byte, 64)
	copy(wide, orderBytes)
	s, err := New().SetUniformBytes(wide)
	require.NoError(t, err)
	assert.Equal(t, 1, s.IsZero(), "l reduces to zero")
}

func TestScalar_MatchesEdwards25519(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for i := 0; i < 32; i++ {
		xb, yb := make([]byte, 64), make([]byte, 64)
		r.Read(xb)
		r.Read(yb)

		x, err := New().SetUniformBytes(xb)
		require.NoError(t, err)
		y, err := New().SetUniformBytes(yb)
		require.NoError(t, err)
		fx, err := edwards25519.NewScalar().SetUniformBytes(xb)
		require.NoError(t, err)
		fy, err := edwards25519.NewScalar().SetUniformBytes(yb)
		require.NoError(t, err)

		assert.Equal(t, fx.Bytes(), x.Bytes(), "reduce")
		assert.Equal(t, edwards25519.NewScalar().Add(fx, fy).Bytes(), New().Add(x, y).Bytes(), "add")
		assert.Equal(t, edwards25519.NewScalar().Subtract(fx, fy).Bytes(), New().Subtract(x, y).Bytes(), "sub")
		assert.Equal(t, edwards25519.NewScalar().Multiply(fx, fy).Bytes(), New().Multiply(x, y).Bytes(), "mul")
		assert.Equal(t, edwards25519.NewScalar().Negate(fx).Bytes(), New().Negate(x).Bytes(), "neg")
	}
}
