package seed

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"tgscraper/internal/engagement"
	"tgscraper/internal/models"
	"tgscraper/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options configuration for the demo seeder
type Options struct {
	NumChannels     int
	PostsPerChannel int
	MaxDays         int
	ShouldClean     bool
	// Seed makes generated data reproducible when non-zero.
	Seed int64
}

var emojis = []string{"👍", "❤️", "🔥", "😁", "🎉", "🤔", "😢", "👏"}

// Factory builds fetched posts and channels that look like scraped data.
type Factory struct {
	faker *gofakeit.Faker
	opts  Options
	now   func() time.Time
}

// NewFactory creates a factory. A zero opts.Seed draws a random seed.
func NewFactory(opts Options) *Factory {
	if opts.MaxDays <= 0 {
		opts.MaxDays = 30
	}
	return &Factory{faker: gofakeit.New(opts.Seed), opts: opts, now: time.Now}
}

// BuildChannel returns an unsaved active channel with a unique-looking id.
func (f *Factory) BuildChannel() *models.Channel {
	title := strings.TrimSuffix(f.faker.Company(), ".") + " " + f.faker.RandomString([]string{"News", "Daily", "Insider", "Digest", "Live"})
	username := strings.ToLower(f.faker.LetterN(1)) + strings.ToLower(strings.ReplaceAll(f.faker.Username(), ".", "_"))
	if len(username) > 32 {
		username = username[:32]
	}
	subscribers := f.faker.Number(500, 250000)
	return &models.Channel{
		Title:           title,
		Username:        &username,
		ChannelID:       int64(f.faker.Number(1000000000, 2000000000)),
		IsActive:        true,
		SubscriberCount: &subscribers,
	}
}

// BuildFetchedPost returns a post as the message source would report it.
// Some posts carry paid reactions; a few have no view counter at all.
func (f *Factory) BuildFetchedPost(messageID int) models.FetchedPost {
	daysBack := f.faker.Number(0, f.opts.MaxDays-1)
	minsBack := f.faker.Number(0, 24*60-1)
	date := f.now().UTC().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(minsBack)*time.Minute)

	p := models.FetchedPost{
		MessageID: messageID,
		Date:      date.Truncate(time.Second),
		Text:      f.faker.Paragraph(1, f.faker.Number(1, 4), 12, "\n"),
	}
	if f.faker.Number(1, 20) == 1 {
		return p
	}

	views := f.faker.Number(200, 50000)
	forwards := f.faker.Number(0, views/50)
	replies := f.faker.Number(0, views/100)
	p.Views = &views
	p.Forwards = &forwards
	p.Replies = &replies

	for i, n := 0, f.faker.Number(0, 4); i < n; i++ {
		p.Reactions = append(p.Reactions, engagement.ReactionResult{
			Kind:  engagement.KindStandard,
			Emoji: emojis[f.faker.Number(0, len(emojis)-1)],
			Count: f.faker.Number(1, views/20+1),
		})
	}
	if f.faker.Number(1, 4) == 1 {
		p.Reactions = append(p.Reactions, engagement.ReactionResult{
			Kind:  engagement.KindPaidStar,
			Count: f.faker.Number(1, 200),
		})
	}
	return p
}

// BuildFetchedPosts returns n posts newest first, as the source orders them.
func (f *Factory) BuildFetchedPosts(n int) []models.FetchedPost {
	posts := make([]models.FetchedPost, n)
	for i := range posts {
		posts[i] = f.BuildFetchedPost(n - i)
	}
	for i := 1; i < len(posts); i++ {
		if posts[i].Date.After(posts[i-1].Date) {
			posts[i].Date = posts[i-1].Date.Add(-time.Minute)
		}
	}
	return posts
}

// Seed fills the database with demo channels and posts. Posts go through
// the same normalize-and-upsert path a scrape uses.
func Seed(ctx context.Context, db *gorm.DB, opts Options) error {
	log.Printf("🌱 Seeding %d demo channels with %d posts each...", opts.NumChannels, opts.PostsPerChannel)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			return fmt.Errorf("clear data: %w", err)
		}
	}

	f := NewFactory(opts)
	channels := repository.NewChannelRepository(db)
	posts := repository.NewPostRepository(db)

	total := 0
	for i := 0; i < opts.NumChannels; i++ {
		ch := f.BuildChannel()
		if err := channels.Create(ctx, ch); err != nil {
			return fmt.Errorf("create channel: %w", err)
		}

		fetched := f.BuildFetchedPosts(opts.PostsPerChannel)
		batch := make([]models.IngestedPost, 0, len(fetched))
		for j := len(fetched) - 1; j >= 0; j-- {
			batch = append(batch, fetched[j].Normalize())
		}
		res, err := posts.UpsertBatch(ctx, ch.ID, batch, &models.ChannelMetadata{SubscriberCount: ch.SubscriberCount})
		if err != nil {
			return fmt.Errorf("seed posts for %q: %w", ch.Title, err)
		}
		total += res.New
	}

	log.Printf("✓ %d demo posts created", total)
	return nil
}

func clearData(db *gorm.DB) error {
	log.Println("🗑️  Clearing existing data...")
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM posts").Error; err != nil {
			return err
		}
		return tx.Exec("DELETE FROM channels").Error
	})
}
