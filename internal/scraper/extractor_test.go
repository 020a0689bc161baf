package scraper

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenAIExtractor_NilWithoutKey(t *testing.T) {
	assert.Nil(t, NewOpenAIExtractor(""))
	assert.NotNil(t, NewOpenAIExtractor("sk-test"))
}

func TestDemoExtractor(t *testing.T) {
	activities, err := DemoExtractor{}.ExtractActivities(context.Background(), "<html></html>", "https://example.com")
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, "Guided City Highlights Tour", activities[0].Title)
	assert.Equal(t, "$49", activities[0].Price)
}
