package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyIsDeterministic(t *testing.T) {
	a := key([]float64{1.5, -2, 0.000001})
	b := key([]float64{1.5, -2, 0.000001})
	assert.Equal(t, a, b)
	assert.Equal(t, "solver:warmstart:1.5,-2,1e-06", a)
}

func TestKeyDistinguishesVectors(t *testing.T) {
	assert.NotEqual(t, key([]float64{1, 2}), key([]float64{2, 1}))
	assert.NotEqual(t, key([]float64{1}), key([]float64{1, 0}))
	assert.NotEqual(t, key([]float64{12, 3}), key([]float64{1, 23}))
}
