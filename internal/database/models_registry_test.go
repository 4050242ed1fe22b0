package database

import (
	"testing"

	modelspkg "tgscraper/internal/models"

	"github.com/stretchr/testify/require"
)

func TestPersistentModels_ChannelsBeforePosts(t *testing.T) {
	models := PersistentModels()
	require.Len(t, models, 2)
	_, ok := models[0].(*modelspkg.Channel)
	require.True(t, ok, "channels must migrate first")
	_, ok = models[1].(*modelspkg.Post)
	require.True(t, ok)
}
