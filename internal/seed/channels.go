// Package seed loads the configured channel list and builds demo data for
// development.
package seed

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"tgscraper/internal/models"
	"tgscraper/internal/repository"
	"tgscraper/internal/validation"

	"gopkg.in/yaml.v3"
)

// ChannelSpec is one entry of the channels seed file.
type ChannelSpec struct {
	Title     string  `yaml:"title"`
	Username  string  `yaml:"username"`
	ChannelID int64   `yaml:"channel_id"`
	ColorFlag *int    `yaml:"color_flag"`
	Notes     *string `yaml:"notes"`
	Inactive  bool    `yaml:"inactive"`
}

type channelsFile struct {
	Channels []ChannelSpec `yaml:"channels"`
}

// LoadChannels reads and validates a channels seed file.
func LoadChannels(path string) ([]ChannelSpec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return ParseChannels(raw)
}

// ParseChannels decodes the seed YAML. Channel ids are normalized and
// duplicates rejected.
func ParseChannels(raw []byte) ([]ChannelSpec, error) {
	var file channelsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	seen := make(map[int64]int, len(file.Channels))
	for i := range file.Channels {
		entry := &file.Channels[i]
		entry.Title = strings.TrimSpace(entry.Title)
		entry.Username = validation.NormalizeUsername(entry.Username)
		entry.ChannelID = models.NormalizeChannelID(entry.ChannelID)

		if err := validation.ValidateChannelTitle(entry.Title); err != nil {
			return nil, fmt.Errorf("channels[%d]: %w", i, err)
		}
		if err := validation.ValidateChannelID(entry.ChannelID); err != nil {
			return nil, fmt.Errorf("channels[%d]: %w", i, err)
		}
		if err := validation.ValidateChannelUsername(entry.Username); err != nil {
			return nil, fmt.Errorf("channels[%d]: %w", i, err)
		}
		if prev, dup := seen[entry.ChannelID]; dup {
			return nil, fmt.Errorf("channels[%d]: channel_id %d already listed at channels[%d]", i, entry.ChannelID, prev)
		}
		seen[entry.ChannelID] = i
	}
	return file.Channels, nil
}

// ToChannel builds the row for an entry.
func (s ChannelSpec) ToChannel() *models.Channel {
	ch := &models.Channel{
		Title:     s.Title,
		ChannelID: s.ChannelID,
		IsActive:  !s.Inactive,
		ColorFlag: s.ColorFlag,
		Notes:     s.Notes,
	}
	if s.Username != "" {
		username := s.Username
		ch.Username = &username
	}
	return ch
}

// SeedChannels inserts every entry whose channel_id is not stored yet.
// Existing rows are left untouched.
func SeedChannels(ctx context.Context, repo repository.ChannelRepository, specs []ChannelSpec) (created, skipped int, err error) {
	ids := make([]int64, len(specs))
	for i, s := range specs {
		ids[i] = s.ChannelID
	}
	existing, err := repo.ExistingChannelIDs(ctx, ids)
	if err != nil {
		return 0, 0, err
	}

	for _, entry := range specs {
		if existing[entry.ChannelID] {
			skipped++
			continue
		}
		ch := entry.ToChannel()
		if err := repo.Create(ctx, ch); err != nil {
			return created, skipped, fmt.Errorf("create %q: %w", entry.Title, err)
		}
		if !ch.IsActive {
			if err := repo.Deactivate(ctx, ch.ID); err != nil {
				return created, skipped, fmt.Errorf("deactivate %q: %w", entry.Title, err)
			}
		}
		created++
	}
	log.Printf("✓ channels seeded: %d created, %d already present", created, skipped)
	return created, skipped, nil
}
