package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"feedback-bot/internal/logger"
	"feedback-bot/internal/notifier"
	"feedback-bot/internal/stats"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const digestTimeout = 30 * time.Second

type StatsReader interface {
	WindowStats(ctx context.Context, days int) (stats.Summary, error)
}

// Digest periodically publishes a rating summary to the staff channels.
type Digest struct {
	cron     *cron.Cron
	stats    StatsReader
	notifier notifier.Notifier
	days     int
	log      zerolog.Logger
}

// NewDigest schedules the digest on a standard five-field cron spec.
func NewDigest(spec string, days int, statsReader StatsReader, notify notifier.Notifier) (*Digest, error) {
	if days <= 0 {
		return nil, fmt.Errorf("digest window must be at least one day, got %d", days)
	}

	d := &Digest{
		cron:     cron.New(),
		stats:    statsReader,
		notifier: notify,
		days:     days,
		log:      logger.With("digest"),
	}

	if _, err := d.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), digestTimeout)
		defer cancel()
		if err := d.Run(ctx); err != nil {
			d.log.Error().Err(err).Msg("digest failed")
		}
	}); err != nil {
		return nil, fmt.Errorf("invalid digest schedule %q: %w", spec, err)
	}
	return d, nil
}

func (d *Digest) Start() {
	d.cron.Start()
	d.log.Info().Int("days", d.days).Msg("digest scheduled")
}

// Stop halts scheduling and waits for a running digest to finish.
func (d *Digest) Stop() {
	<-d.cron.Stop().Done()
}

// Run computes and publishes one digest.
func (d *Digest) Run(ctx context.Context) error {
	summary, err := d.stats.WindowStats(ctx, d.days)
	if err != nil {
		return fmt.Errorf("compute digest: %w", err)
	}
	if err := d.notifier.Publish(ctx, FormatDigest(summary)); err != nil {
		return err
	}
	d.log.Info().Int("count", summary.Count).Float64("average", summary.Average).Msg("digest published")
	return nil
}

func FormatDigest(s stats.Summary) string {
	if s.Count == 0 {
		return fmt.Sprintf("📊 Feedback digest, last %d days: no reviews.", s.Days)
	}
	return fmt.Sprintf("📊 Feedback digest, last %d days: %d review(s), average rating %s.",
		s.Days, s.Count, strconv.FormatFloat(s.Average, 'f', -1, 64))
}
