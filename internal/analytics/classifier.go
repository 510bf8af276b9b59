package analytics

import (
	"strings"

	"github.com/mssola/useragent"
)

// Device classes reported by the classifier.
const (
	DeviceRobot   = "Robot"
	DeviceTablet  = "Tablet"
	DevicePhone   = "Phone"
	DeviceDesktop = "Desktop"
)

// Client is the classified browser, OS and device of a user agent. Fields are never empty.
type Client struct {
	Browser         string
	OperatingSystem string
	DeviceType      string
}

// Classifier turns a raw User-Agent header into labels.
type Classifier interface {
	Classify(userAgent string) Client
}

// UserAgentClassifier classifies with github.com/mssola/useragent.
type UserAgentClassifier struct{}

// NewUserAgentClassifier creates a new classifier.
func NewUserAgentClassifier() *UserAgentClassifier {
	return &UserAgentClassifier{}
}

func (c *UserAgentClassifier) Classify(userAgent string) Client {
	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" {
		return Client{Browser: Unknown, OperatingSystem: Unknown, DeviceType: Unknown}
	}

	ua := useragent.New(userAgent)
	browser, _ := ua.Browser()

	return Client{
		Browser:         orUnknown(browser),
		OperatingSystem: orUnknown(ua.OSInfo().Name),
		DeviceType:      deviceClass(ua, userAgent),
	}
}

func deviceClass(ua *useragent.UserAgent, raw string) string {
	switch {
	case ua.Bot():
		return DeviceRobot
	case isTablet(raw):
		return DeviceTablet
	case ua.Mobile():
		return DevicePhone
	default:
		return DeviceDesktop
	}
}

// isTablet covers iPads and Android devices that omit the "Mobile" token.
func isTablet(raw string) bool {
	return strings.Contains(raw, "iPad") ||
		strings.Contains(raw, "Tablet") ||
		(strings.Contains(raw, "Android") && !strings.Contains(raw, "Mobile"))
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return Unknown
	}

	return s
}
