package extract_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/compliance-engine/extract"
)

func TestPlainText_ReadsTextAndCountsPages(t *testing.T) {
	// GIVEN: A three-page document separated by form feeds
	// WHEN: Extracting
	// THEN: Full text, full confidence, three pages

	doc := "first page\fsecond page\fthird page"
	ex, err := extract.PlainText{}.Extract(context.Background(), strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, doc, ex.Text)
	assert.Equal(t, 1.0, ex.Confidence)
	assert.Equal(t, 3, ex.Pages)
	assert.False(t, ex.Empty())
}

func TestPlainText_SinglePage(t *testing.T) {
	ex, err := extract.PlainText{}.Extract(context.Background(), strings.NewReader("just one page"))
	require.NoError(t, err)
	assert.Equal(t, 1, ex.Pages)
}

func TestPlainText_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := extract.PlainText{}.Extract(ctx, strings.NewReader("anything"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtraction_Empty(t *testing.T) {
	ex, err := extract.PlainText{}.Extract(context.Background(), strings.NewReader("  \n\t"))
	require.NoError(t, err)
	assert.True(t, ex.Empty())
}
