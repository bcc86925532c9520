// Package printing delivers ESC/POS payloads to physical hardware without
// ever raising an OS print dialog. Delivery is a ranked list of
// strategies; the first one that succeeds wins and the rest are skipped.
package printing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/compazz/posbridge/internal/domain"
)

// errNotApplicable means a strategy's target pattern did not match; the
// dispatcher falls through without recording a failure.
var errNotApplicable = errors.New("strategy not applicable")

const (
	networkTimeout = 5 * time.Second
	silentTimeout  = 12 * time.Second
)

// Job is one delivery attempt: the raw payload plus the original text for
// the HTML render fallback.
type Job struct {
	Target     string
	Payload    []byte
	Content    string
	DrawerOnly bool
}

// Strategy is one way of getting bytes onto a printer.
type Strategy interface {
	Mode() string
	Attempt(ctx context.Context, job *Job) error
}

// Dispatcher walks its strategy list in priority order. Dispatch is
// serialized per target identifier so two concurrent jobs can never
// interleave bytes on the same socket or device file.
type Dispatcher struct {
	strategies []Strategy
	locks      sync.Map
}

// NewDispatcher assembles the standard strategy order: network socket,
// device file, OS raw spool, default-printer retry, silent render.
func NewDispatcher(dir *Directory, defaultPrinter string, renderer Renderer) *Dispatcher {
	spool := newSpoolStrategies()
	list := []Strategy{
		&networkStrategy{},
		&deviceStrategy{},
	}
	list = append(list, spool...)
	list = append(list, &defaultRetryStrategy{dir: dir, configured: defaultPrinter, inner: spool})
	list = append(list, &silentStrategy{renderer: renderer})
	return &Dispatcher{strategies: list}
}

// NewDispatcherWithStrategies builds a dispatcher over an explicit ranked
// list; deployments can reorder or drop strategies this way.
func NewDispatcherWithStrategies(strategies ...Strategy) *Dispatcher {
	return &Dispatcher{strategies: strategies}
}

func (d *Dispatcher) lockFor(target string) *sync.Mutex {
	key := target
	if key == "" {
		key = "__default__"
	}
	actual, _ := d.locks.LoadOrStore(key, &sync.Mutex{})
	return actual.(*sync.Mutex)
}

// Dispatch never returns a Go error: every outcome is a PrintResult, and
// an exhausted strategy list reports the last failure reason so the
// operator can diagnose hardware without log access.
func (d *Dispatcher) Dispatch(ctx context.Context, job *Job) domain.PrintResult {
	mu := d.lockFor(job.Target)
	mu.Lock()
	defer mu.Unlock()

	lastErr := ""
	for _, st := range d.strategies {
		if job.DrawerOnly && st.Mode() == domain.PrintModeSilent {
			continue
		}
		err := st.Attempt(ctx, job)
		if err == nil {
			zap.L().Info("print delivered",
				zap.String("mode", st.Mode()),
				zap.String("target", job.Target),
				zap.Int("bytes", len(job.Payload)),
			)
			return domain.PrintResult{Success: true, Mode: st.Mode()}
		}
		if errors.Is(err, errNotApplicable) {
			continue
		}
		lastErr = err.Error()
		zap.L().Warn("print strategy failed",
			zap.String("mode", st.Mode()),
			zap.String("target", job.Target),
			zap.String("reason", lastErr),
		)
	}

	if lastErr == "" {
		lastErr = fmt.Sprintf("no printer available for target %q", job.Target)
	}
	return domain.PrintResult{Success: false, Mode: domain.PrintModeNone, Error: lastErr}
}
