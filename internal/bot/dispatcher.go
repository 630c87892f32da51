package bot

import (
	"context"

	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/pborman/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/iamwavecut/guardbot/internal/infra"
	"github.com/iamwavecut/guardbot/internal/observability"
)

const DefaultWorkers = 16

// Dispatcher fans updates out to a bounded pool of workers. Each update is an
// independent unit: its errors and panics are logged and never stop the pool.
type Dispatcher struct {
	processor *UpdateProcessor
	workers   int
}

func NewDispatcher(processor *UpdateProcessor, workers int) *Dispatcher {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Dispatcher{
		processor: processor,
		workers:   workers,
	}
}

// Run consumes updates until the channel is closed or ctx is done, then waits
// for in-flight updates.
func (d *Dispatcher) Run(ctx context.Context, updates <-chan api.Update) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)

	for {
		select {
		case <-gctx.Done():
			_ = g.Wait()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return g.Wait()
			}
			g.Go(func() error {
				d.dispatch(gctx, update)
				return nil
			})
		}
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, update api.Update) {
	entry := log.WithFields(log.Fields{
		"object":    "Dispatcher",
		"update_id": update.UpdateID,
		"trace_id":  uuid.New(),
	})
	done := observability.StartUpdateProcessing()
	status := "ok"
	defer func() { done(status) }()

	panicked := infra.Isolate(entry, func() {
		if err := d.processor.Process(ctx, &update); err != nil {
			status = "error"
			entry.WithField("error", err.Error()).Error("cant process update")
		}
	})
	if panicked {
		status = "panic"
	}
}
