package generation

import (
	"testing"

	"github.com/jordanlanch/scribely/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(Request{Topic: "space travel", Style: StyleBlog, Length: LengthShort})

	assert.Contains(t, prompt, "Write a short blog about: space travel.")
	assert.Contains(t, prompt, "engaging and well-structured")
	assert.Contains(t, prompt, "short (300 words), medium (600 words), long (1000 words)")
}

func TestParseStyle(t *testing.T) {
	tests := []struct {
		in   string
		want Style
	}{
		{"", StyleArticle},
		{"article", StyleArticle},
		{"blog", StyleBlog},
		{" Script ", StyleScript},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStyle(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseStyle("poem")
	assert.True(t, domain.IsValidation(err))
}

func TestParseLength(t *testing.T) {
	tests := []struct {
		in   string
		want Length
	}{
		{"", LengthMedium},
		{"short", LengthShort},
		{"MEDIUM", LengthMedium},
		{"long", LengthLong},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLength(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseLength("epic")
	assert.True(t, domain.IsValidation(err))
}

func TestResult_NeverBoth(t *testing.T) {
	ok := Result{Text: "hello"}
	assert.False(t, ok.Failed())
	assert.Empty(t, ok.Message())

	failed := failedWithStatus(500)
	assert.True(t, failed.Failed())
	assert.Empty(t, failed.Text)
	assert.Equal(t, "API request failed with status 500", failed.Message())
}
