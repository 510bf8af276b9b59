package shortener_test

import (
	"strings"
	"testing"

	"github.com/serroba/shortlink/internal/shortener"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCodeGenerator(t *testing.T) {
	t.Run("generates base62 codes of the default length", func(t *testing.T) {
		generate, err := shortener.NewCodeGenerator(0)
		require.NoError(t, err)

		for range 100 {
			code := generate()

			assert.Len(t, code, shortener.DefaultCodeLength)

			for _, r := range code {
				assert.True(t, strings.ContainsRune(shortener.Base62Alphabet, r), "unexpected rune %q", r)
			}
		}
	})

	t.Run("honours a custom length", func(t *testing.T) {
		generate, err := shortener.NewCodeGenerator(10)
		require.NoError(t, err)

		assert.Len(t, generate(), 10)
	})

	t.Run("rarely repeats", func(t *testing.T) {
		generate, err := shortener.NewCodeGenerator(shortener.DefaultCodeLength)
		require.NoError(t, err)

		seen := make(map[string]struct{}, 1000)
		for range 1000 {
			seen[generate()] = struct{}{}
		}

		assert.Greater(t, len(seen), 995)
	})
}
