package docs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopics(t *testing.T) {
	topics := Topics()
	require.NotEmpty(t, topics)

	names := make([]string, 0, len(topics))
	for _, tp := range topics {
		names = append(names, tp.Name)
	}
	assert.Equal(t, []string{"config", "storage", "tui"}, names)
	assert.Equal(t, "Storage", topics[1].Title)
}

func TestGet(t *testing.T) {
	body, ok := Get(" Storage ")
	require.True(t, ok)
	assert.Contains(t, body, "regihub_events_v1")

	_, ok = Get("nope")
	assert.False(t, ok)
	_, ok = Get("../docs")
	assert.False(t, ok)
	_, ok = Get("")
	assert.False(t, ok)
}
