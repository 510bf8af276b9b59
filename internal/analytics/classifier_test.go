package analytics_test

import (
	"testing"

	"github.com/serroba/shortlink/internal/analytics"
	"github.com/stretchr/testify/assert"
)

func TestUserAgentClassifier(t *testing.T) {
	classifier := analytics.NewUserAgentClassifier()

	t.Run("desktop chrome", func(t *testing.T) {
		client := classifier.Classify("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

		assert.Equal(t, "Chrome", client.Browser)
		assert.Equal(t, "Windows", client.OperatingSystem)
		assert.Equal(t, analytics.DeviceDesktop, client.DeviceType)
	})

	t.Run("iphone", func(t *testing.T) {
		client := classifier.Classify("Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 " +
			"(KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1")

		assert.Equal(t, analytics.DevicePhone, client.DeviceType)
		assert.NotEmpty(t, client.Browser)
	})

	t.Run("ipad", func(t *testing.T) {
		client := classifier.Classify("Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X) AppleWebKit/605.1.15 " +
			"(KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1")

		assert.Equal(t, analytics.DeviceTablet, client.DeviceType)
	})

	t.Run("crawler", func(t *testing.T) {
		client := classifier.Classify("Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)")

		assert.Equal(t, analytics.DeviceRobot, client.DeviceType)
	})

	t.Run("blank header is unknown everywhere", func(t *testing.T) {
		client := classifier.Classify("   ")

		assert.Equal(t, analytics.Client{
			Browser:         analytics.Unknown,
			OperatingSystem: analytics.Unknown,
			DeviceType:      analytics.Unknown,
		}, client)
	})

	t.Run("labels are never empty", func(t *testing.T) {
		for _, ua := range []string{"curl/8.4.0", "x", "Mozilla/5.0"} {
			client := classifier.Classify(ua)

			assert.NotEmpty(t, client.Browser, ua)
			assert.NotEmpty(t, client.OperatingSystem, ua)
			assert.NotEmpty(t, client.DeviceType, ua)
		}
	})
}
