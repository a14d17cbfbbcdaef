package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractKey(t *testing.T) {
	t.Run("configured base URL", func(t *testing.T) {
		key, err := ExtractKey("https://media.example.com/listings/2026/abc_house.jpg", "https://media.example.com")
		require.NoError(t, err)
		assert.Equal(t, "listings/2026/abc_house.jpg", key)

		// Trailing slash on the base is tolerated.
		key, err = ExtractKey("https://media.example.com/listings/a.jpg", "https://media.example.com/")
		require.NoError(t, err)
		assert.Equal(t, "listings/a.jpg", key)
	})

	t.Run("virtual-hosted S3 form", func(t *testing.T) {
		key, err := ExtractKey("https://bucket.s3.eu-west-1.amazonaws.com/tours/2026/xyz.jpg", "")
		require.NoError(t, err)
		assert.Equal(t, "tours/2026/xyz.jpg", key)
	})

	t.Run("no key", func(t *testing.T) {
		_, err := ExtractKey("https://media.example.com/", "https://media.example.com")
		assert.Error(t, err)
		_, err = ExtractKey("https://bucket.s3.amazonaws.com", "")
		assert.Error(t, err)
	})
}
