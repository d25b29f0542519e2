package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketlens/ashare/internal/models"
)

func TestResolveIndex(t *testing.T) {
	tests := []struct {
		alias string
		code  string
	}{
		{"CSI300", "000300"},
		{"csi300", "000300"},
		{"沪深300", "000300"},
		{"hs300", "000300"},
		{"000300", "000300"},
		{"CSI100", "000903"},
		{"中证100", "000903"},
		{"CSI200", "000904"},
		{"CSI500", "000905"},
		{"中证500", "000905"},
		{" csi500 ", "000905"},
	}

	for _, tt := range tests {
		t.Run(tt.alias, func(t *testing.T) {
			info, err := ResolveIndex(tt.alias)
			require.NoError(t, err)
			assert.Equal(t, tt.code, info.Code)
			assert.NotEmpty(t, info.Name)
		})
	}
}

func TestResolveIndexUnknown(t *testing.T) {
	for _, alias := range []string{"", "SP500", "999999", "csi3000"} {
		_, err := ResolveIndex(alias)
		assert.ErrorIs(t, err, models.ErrUnknownIndex, "alias %q", alias)
	}
}

func TestSupportedIndexes(t *testing.T) {
	indexes := SupportedIndexes()
	require.Len(t, indexes, 4)
	assert.Equal(t, "000903", indexes[0].Code)
	assert.Equal(t, "000300", indexes[2].Code)
}
