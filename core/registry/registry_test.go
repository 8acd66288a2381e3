package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_LockRejectsWrites(t *testing.T) {
	r := New()
	r.SetGlobal("k", 1)
	r.Lock("k")

	v, ok := r.GetGlobal("k")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Panics(t, func() { r.SetGlobal("k", 2) })

	r.UnlockForTesting("k")
	r.SetGlobal("k", 2)
	v, _ = r.GetGlobal("k")
	assert.Equal(t, 2, v)
}
