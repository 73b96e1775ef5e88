package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want Direction
	}{
		{"buy", DirectionLong},
		{"long", DirectionLong},
		{"sell", DirectionShort},
		{"short", DirectionShort},
		{" BUY ", DirectionLong},
		{"Short", DirectionShort},
	}
	for _, tt := range tests {
		got, err := ParseDirection(tt.raw)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}

	_, err := ParseDirection("sideways")
	assert.Error(t, err)
}

func TestDirectionSide(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "buy", DirectionLong.Side())
	assert.Equal(t, "sell", DirectionShort.Side())
}

func TestDirectionValid(t *testing.T) {
	t.Parallel()

	assert.True(t, DirectionLong.Valid())
	assert.True(t, DirectionShort.Valid())
	assert.False(t, Direction("").Valid())
	assert.False(t, Direction("both").Valid())
}
