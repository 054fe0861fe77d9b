package topics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"journal", "patterns"}, Names())
}

func TestGet(t *testing.T) {
	tests := []struct {
		name    string
		heading string
	}{
		{"patterns", "# Patterns"},
		{"Journal", "# Journal"},
		{"patterns.md", "# Patterns"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			topic, err := Get(tt.name)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(topic.Content, tt.heading))
		})
	}
}

func TestGetUnknownListsAvailable(t *testing.T) {
	_, err := Get("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "journal, patterns")
}

func TestRenderPlainWhenNotTTY(t *testing.T) {
	rendered, err := Render("patterns", false)
	require.NoError(t, err)

	topic, err := Get("patterns")
	require.NoError(t, err)
	assert.Equal(t, topic.Content, rendered)
}

func TestGlamourRendererKeepsText(t *testing.T) {
	rendered := GlamourRenderer{Width: 60}.Render("# Title\n\nSome body text.\n")
	assert.Contains(t, rendered, "Title")
	assert.Contains(t, rendered, "Some body text.")
}
