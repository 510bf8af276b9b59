package analytics_test

import (
	"context"
	"testing"
	"time"

	"github.com/serroba/shortlink/internal/analytics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestAuditLog(t *testing.T) {
	t.Run("logs created links", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		audit := analytics.NewAuditLog(zap.New(core))

		err := audit.HandleURLCreated(context.Background(), &analytics.URLCreatedEvent{
			Code:        "abc123",
			OriginalURL: "https://example.com",
			CreatedBy:   "alice@example.com",
			CreatedAt:   time.Now(),
		})

		require.NoError(t, err)
		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "short url created", logs.All()[0].Message)
		assert.Equal(t, "alice@example.com", logs.All()[0].ContextMap()["createdBy"])
	})

	t.Run("logs deleted links", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		audit := analytics.NewAuditLog(zap.New(core))

		err := audit.HandleURLDeleted(context.Background(), &analytics.URLDeletedEvent{
			Code:      "abc123",
			DeletedBy: "root@example.com",
			AsAdmin:   true,
		})

		require.NoError(t, err)
		require.Equal(t, 1, logs.Len())
		assert.Equal(t, true, logs.All()[0].ContextMap()["asAdmin"])
	})
}
