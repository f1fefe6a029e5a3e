package monitor

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"mxarb/internal/domain/model"
)

type SnapshotSource interface {
	Snapshot() []*model.PriceMessage
}

type SnapshotWriter interface {
	WriteSnapshot(ts time.Time, line string) error
}

// Reporter periodically writes a summary of the current spreads.
type Reporter struct {
	src   SnapshotSource
	fmt   *Formatter
	out   SnapshotWriter
	every time.Duration
}

func NewReporter(src SnapshotSource, f *Formatter, out SnapshotWriter, every time.Duration) *Reporter {
	if f == nil {
		f = NewFormatter(0)
	}
	if every <= 0 {
		every = time.Minute
	}
	return &Reporter{src: src, fmt: f, out: out, every: every}
}

func (r *Reporter) Run(ctx context.Context) error {
	t := time.NewTicker(r.every)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-t.C:
			if err := r.out.WriteSnapshot(now, r.fmt.Render(r.src.Snapshot())); err != nil {
				log.Warn().Err(err).Msg("write spread summary failed")
			}
		}
	}
}
