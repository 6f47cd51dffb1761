package format

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	AllDay bool   `json:"allDay"`
}

type rows []row

func (r rows) Text() string {
	var b strings.Builder
	for _, x := range r {
		b.WriteString(x.ID + " " + x.Title + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

var payload = rows{
	{ID: "evt-1", Title: "Standup", AllDay: false},
	{ID: "tsk-1", Title: "Pay rent", AllDay: true},
}

func TestWriteJSON_Golden(t *testing.T) {
	g := goldie.New(t)

	var compact bytes.Buffer
	require.NoError(t, Write(&compact, payload, "json", false))
	g.Assert(t, "records_compact", compact.Bytes())

	var pretty bytes.Buffer
	require.NoError(t, Write(&pretty, payload, "", true))
	g.Assert(t, "records_pretty", pretty.Bytes())
}

func TestWrite_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, payload, "text", false))
	assert.Equal(t, "evt-1 Standup\ntsk-1 Pay rent\n", buf.String())

	buf.Reset()
	require.NoError(t, Write(&buf, map[string]int{"n": 1}, "TEXT", false))
	assert.Equal(t, "{\n  \"n\": 1\n}\n", buf.String(), "non-texters fall back to indented JSON")
}

func TestWrite_UnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, payload, "edn", false)
	assert.ErrorContains(t, err, "unknown format")
}

func TestTable(t *testing.T) {
	out := Table([]string{"ID", "TITLE"}, [][]string{{"evt-1", "Standup"}, {"tsk-1", "Pay rent"}})
	lines := strings.Split(out, "\n")
	require.GreaterOrEqual(t, len(lines), 5)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "Pay rent")
	assert.Less(t, strings.Index(out, "evt-1"), strings.Index(out, "tsk-1"))
}
