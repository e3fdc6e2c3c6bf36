package identity_test

import (
	"context"
	"testing"

	"github.com/NeuralTrust/ConsensusSentry/pkg/domain/identity"
	"github.com/stretchr/testify/assert"
)

func TestFromContext(t *testing.T) {
	t.Run("identity present", func(t *testing.T) {
		ctx := identity.WithIdentity(context.Background(), "2vxsx-fae")
		id, ok := identity.FromContext(ctx)
		assert.True(t, ok)
		assert.Equal(t, identity.Identity("2vxsx-fae"), id)
	})

	t.Run("identity missing", func(t *testing.T) {
		_, ok := identity.FromContext(context.Background())
		assert.False(t, ok)
	})

	t.Run("zero identity is treated as missing", func(t *testing.T) {
		ctx := identity.WithIdentity(context.Background(), "")
		_, ok := identity.FromContext(ctx)
		assert.False(t, ok)
	})
}
