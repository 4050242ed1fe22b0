package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeUsername(t *testing.T) {
	tests := map[string]string{
		"  @pokernews ":          "pokernews",
		"https://t.me/pokernews": "pokernews",
		"t.me/pokernews/":        "pokernews",
		"pokernews":              "pokernews",
		"":                       "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeUsername(in), "input %q", in)
	}
}

func TestValidateChannelTitle(t *testing.T) {
	assert.NoError(t, ValidateChannelTitle("Покер новости"))
	assert.Error(t, ValidateChannelTitle("   "))
	assert.NoError(t, ValidateChannelTitle(strings.Repeat("я", 255)))
	assert.Error(t, ValidateChannelTitle(strings.Repeat("я", 256)))
}

func TestValidateChannelUsername(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty allowed", "", false},
		{"plain", "pokernews", false},
		{"underscores", "poker_news_24", false},
		{"too short", "abc", true},
		{"starts with digit", "1poker", true},
		{"bad character", "poker-news", true},
		{"too long", strings.Repeat("a", 33), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateChannelUsername(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateChannelIDAndColorFlag(t *testing.T) {
	assert.Error(t, ValidateChannelID(0))
	assert.NoError(t, ValidateChannelID(-1001234567890))
	assert.NoError(t, ValidateColorFlag(0))
	assert.Error(t, ValidateColorFlag(-1))
}
