package cache_test

import (
	"testing"

	"github.com/NeuralTrust/ConsensusSentry/pkg/infra/cache"
	"github.com/stretchr/testify/assert"
)

func TestGenerations(t *testing.T) {
	gens := cache.NewGenerations()
	gen := gens.Current("k")

	written := 0
	assert.True(t, gens.IfCurrent("k", gen, func() { written++ }))

	dropped := false
	gens.Bump("k", func() { dropped = true })
	assert.True(t, dropped)
	assert.False(t, gens.IfCurrent("k", gen, func() { written++ }))
	assert.Equal(t, 1, written)

	assert.True(t, gens.IfCurrent("other", 0, func() { written++ }))
	assert.Equal(t, 2, written)
}

func TestFillToken_String(t *testing.T) {
	assert.Equal(t, "3.7", cache.FillToken{Remote: 3, Local: 7}.String())
}
