package worker

import (
	"context"
	"fmt"

	"github.com/saintsjh/PortfolioWebsite/internal/protocol"
)

// Run drives a fresh worker headless: it posts msgs (which must start with
// an init), returns every buffer as soon as it arrives, and hands the
// frames-th render to last. The worker is terminated before Run returns.
func Run(ctx context.Context, opts Options, msgs []protocol.Message, frames int, last func(Render) error) error {
	if frames < 1 {
		return fmt.Errorf("frames must be >= 1, got %d", frames)
	}
	w := New(opts)
	w.Start(ctx)
	defer w.Terminate()

	for _, msg := range msgs {
		if err := w.Post(msg); err != nil {
			return err
		}
	}

	for i := 1; ; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case r, ok := <-w.Renders():
			if !ok {
				return ErrTerminated
			}
			if i == frames {
				return last(r)
			}
			if err := w.Return(r.Particles); err != nil {
				return err
			}
		}
	}
}
