package lifecycle

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const DefaultShutdownTimeout = 10 * time.Second

type Component interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Hooks adapts a pair of functions to Component. Nil hooks are no-ops.
type Hooks struct {
	Name    string
	OnStart func(ctx context.Context) error
	OnStop  func(ctx context.Context) error
}

func (h Hooks) Start(ctx context.Context) error {
	if h.OnStart == nil {
		return nil
	}
	return h.OnStart(ctx)
}

func (h Hooks) Stop(ctx context.Context) error {
	if h.OnStop == nil {
		return nil
	}
	return h.OnStop(ctx)
}

func (h Hooks) String() string {
	return h.Name
}

// Runtime starts components in registration order and stops the started ones
// in reverse order.
type Runtime struct {
	mu         sync.Mutex
	components []Component
	started    []Component
}

func NewRuntime(components ...Component) *Runtime {
	r := &Runtime{}
	for _, component := range components {
		r.Register(component)
	}
	return r
}

func (r *Runtime) Register(component Component) {
	if component == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.components = append(r.components, component)
}

func (r *Runtime) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, component := range r.components {
		entry := r.getLogEntry().WithField("component", componentName(component))
		if err := component.Start(ctx); err != nil {
			entry.WithField("error", err.Error()).Error("component failed to start")
			_ = r.stopStarted(ctx)
			return errors.Wrapf(err, "start component %s", componentName(component))
		}
		entry.Debug("component started")
		r.started = append(r.started, component)
	}
	return nil
}

func (r *Runtime) Stop(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopStarted(ctx)
}

// Run starts all components, blocks until ctx is done and then stops them
// within shutdownTimeout.
func (r *Runtime) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	if err := r.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()

	if shutdownTimeout <= 0 {
		shutdownTimeout = DefaultShutdownTimeout
	}
	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return r.Stop(stopCtx)
}

func (r *Runtime) stopStarted(ctx context.Context) error {
	var stopErr error
	for i := len(r.started) - 1; i >= 0; i-- {
		component := r.started[i]
		entry := r.getLogEntry().WithField("component", componentName(component))
		if err := component.Stop(ctx); err != nil {
			entry.WithField("error", err.Error()).Warn("component failed to stop")
			stopErr = stderrors.Join(stopErr, errors.Wrapf(err, "stop component %s", componentName(component)))
			continue
		}
		entry.Debug("component stopped")
	}
	r.started = nil
	return stopErr
}

func (r *Runtime) getLogEntry() *log.Entry {
	return log.WithField("object", "Runtime")
}

func componentName(component Component) string {
	if s, ok := component.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", component)
}
