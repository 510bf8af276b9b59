package analytics

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/serroba/shortlink/internal/messaging"
	"github.com/serroba/shortlink/internal/shortener"
	"go.uber.org/zap"
)

// RecordParams describes one resolution of a code.
type RecordParams struct {
	Code      shortener.Code
	IPAddress string
	UserAgent string
	Referrer  string
	// ClickedAt defaults to the recorder's clock when zero.
	ClickedAt time.Time
}

// EntryFinder looks up the ACTIVE entry for a code.
type EntryFinder interface {
	FindActiveByCode(ctx context.Context, code shortener.Code) (*shortener.ShortURL, error)
}

// Recorder persists click events for active entries.
type Recorder struct {
	entries    EntryFinder
	clicks     Store
	classifier Classifier
	logger     *zap.Logger
	now        func() time.Time
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithRecorderClock overrides the time source used when RecordParams.ClickedAt is zero.
func WithRecorderClock(now func() time.Time) RecorderOption {
	return func(r *Recorder) { r.now = now }
}

// NewRecorder creates a new click recorder.
func NewRecorder(
	entries EntryFinder,
	clicks Store,
	classifier Classifier,
	logger *zap.Logger,
	opts ...RecorderOption,
) *Recorder {
	r := &Recorder{
		entries:    entries,
		clicks:     clicks,
		classifier: classifier,
		logger:     logger,
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Record stores a click for the active entry holding params.Code.
func (r *Recorder) Record(ctx context.Context, params RecordParams) (*ClickEvent, error) {
	entry, err := r.entries.FindActiveByCode(ctx, params.Code)
	if err != nil {
		if errors.Is(err, shortener.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", shortener.ErrNotFound, params.Code)
		}

		return nil, fmt.Errorf("find short url: %w", err)
	}

	client := r.classifier.Classify(params.UserAgent)

	clickedAt := params.ClickedAt
	if clickedAt.IsZero() {
		clickedAt = r.now()
	}

	click := &ClickEvent{
		ID:              uuid.NewString(),
		ShortURLID:      entry.ID,
		Code:            entry.Code,
		IPAddress:       clip(strings.TrimSpace(params.IPAddress), MaxIPAddressLength),
		Browser:         clip(client.Browser, MaxLabelLength),
		OperatingSystem: clip(client.OperatingSystem, MaxLabelLength),
		DeviceType:      clip(client.DeviceType, MaxDeviceLength),
		Referrer:        clip(normalizeReferrer(params.Referrer), MaxReferrerLength),
		ClickedAt:       clickedAt,
	}

	if err = r.clicks.SaveClick(ctx, click); err != nil {
		return nil, fmt.Errorf("save click: %w", err)
	}

	return click, nil
}

// HandleURLAccessed records the click carried by a URLAccessedEvent.
// Clicks on codes that are no longer active, and clicks the store rejects as invalid, are dropped rather than retried.
func (r *Recorder) HandleURLAccessed(ctx context.Context, event *URLAccessedEvent) error {
	click, err := r.Record(ctx, RecordParams{
		Code:      shortener.Code(event.Code),
		IPAddress: event.IPAddress,
		UserAgent: event.UserAgent,
		Referrer:  event.Referrer,
		ClickedAt: event.AccessedAt,
	})
	if err != nil {
		if errors.Is(err, shortener.ErrNotFound) || errors.Is(err, shortener.ErrInvalidRequest) {
			return messaging.Permanent(err)
		}

		return err
	}

	r.logger.Debug("click recorded",
		zap.String("code", event.Code),
		zap.String("browser", click.Browser),
		zap.String("deviceType", click.DeviceType),
	)

	return nil
}

func normalizeReferrer(referrer string) string {
	referrer = strings.TrimSpace(referrer)
	if referrer == "" {
		return DirectReferrer
	}

	return referrer
}
