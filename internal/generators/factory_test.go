package generators

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactoryCreatesBuiltins(t *testing.T) {
	f := NewFactory(logrus.New())

	assert.Equal(t, []string{TypeEmpirical, TypeStatistical}, f.AvailableSynthesizers())

	for _, synthType := range f.AvailableSynthesizers() {
		s, err := f.CreateSynthesizer(synthType)
		require.NoError(t, err)
		assert.Equal(t, synthType, s.Type())
		assert.False(t, s.IsTrained())
	}
}

func TestFactoryUnknownType(t *testing.T) {
	f := NewFactory(logrus.New())

	assert.False(t, f.IsSupported("ctgan"))
	_, err := f.CreateSynthesizer("ctgan")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown synthesizer type")
}
