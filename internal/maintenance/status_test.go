package maintenance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusToggled(t *testing.T) {
	assert.Equal(t, StatusInactive, StatusActive.Toggled())
	assert.Equal(t, StatusActive, StatusInactive.Toggled())

	// Two toggles restore the original value.
	assert.Equal(t, StatusActive, StatusActive.Toggled().Toggled())
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus(" ACTIVE ")
	require.NoError(t, err)
	assert.Equal(t, StatusActive, s)
	assert.True(t, s.IsActive())

	_, err = ParseStatus("1")
	assert.Error(t, err)
}
