package main

import (
	"bytes"
	"encoding/csv"
	"testing"

	"tgscraper/internal/service"
	"tgscraper/internal/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs("")
	require.NoError(t, err)
	assert.Empty(t, ids)

	ids, err = parseIDs("4, 9,,2")
	require.NoError(t, err)
	assert.Equal(t, []uint{4, 9, 2}, ids)

	_, err = parseIDs("1,x")
	assert.Error(t, err)
	_, err = parseIDs("0")
	assert.Error(t, err)
}

func statsRows() []service.ChannelStats {
	subs := 1500
	return []service.ChannelStats{
		{
			ChannelID:       1,
			ChannelTitle:    "Alpha",
			SubscriberCount: &subs,
			Summary: stats.Summary{
				PostsAnalyzed:  2,
				Views:          stats.Distribution{Mean: 150, Median: 150},
				EngagementRate: stats.Distribution{Mean: 2.5, Median: 2.5},
				WindowPosts:    1,
			},
		},
		{ChannelID: 2, ChannelTitle: "Beta"},
	}
}

func TestWriteStats_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeStats(&buf, "csv", statsRows()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "channel_id", records[0][0])
	assert.Equal(t, []string{"1", "Alpha", "1500", "2", "150.00", "150.00", "2.5000", "2.5000", "1", "0.00"}, records[1])
	assert.Equal(t, "", records[2][2])
}

func TestWriteStats_TableAndJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeStats(&buf, "table", statsRows()))
	assert.Contains(t, buf.String(), "Alpha")
	assert.Contains(t, buf.String(), "AVG RATE %")

	buf.Reset()
	require.NoError(t, writeStats(&buf, "json", statsRows()))
	assert.Contains(t, buf.String(), `"channel_title": "Beta"`)

	assert.Error(t, writeStats(&buf, "xml", nil))
}
