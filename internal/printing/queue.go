package printing

import (
	"context"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/compazz/posbridge/internal/domain"
)

// TopicPrintCompleted carries a *QueuedResult after each async job.
const TopicPrintCompleted = "print.completed"

// jobTimeout bounds a whole queued delivery including every fallback.
const jobTimeout = 30 * time.Second

// QueuedResult pairs an async outcome with the id the caller got back
// from Submit.
type QueuedResult struct {
	JobID  string
	Result domain.PrintResult
}

// Queue runs print jobs on a bounded worker pool so a till firing
// receipts during a rush never blocks on a slow printer. Results are
// published on the bus rather than returned.
type Queue struct {
	pool  *ants.Pool
	dsp   *Dispatcher
	bus   EventBus.Bus
	idGen func() string
}

func NewQueue(workers int, dsp *Dispatcher, bus EventBus.Bus, idGen func() string) (*Queue, error) {
	if workers <= 0 {
		workers = 2
	}
	pool, err := ants.NewPool(workers, ants.WithNonblocking(false))
	if err != nil {
		return nil, err
	}
	return &Queue{pool: pool, dsp: dsp, bus: bus, idGen: idGen}, nil
}

// Submit enqueues a job and returns its id immediately. The only error
// is a closed or saturated pool.
func (q *Queue) Submit(job *Job) (string, error) {
	id := q.idGen()
	err := q.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		result := q.dsp.Dispatch(ctx, job)
		zap.L().Debug("async print finished",
			zap.String("job_id", id),
			zap.String("mode", result.Mode),
			zap.Bool("success", result.Success),
		)
		if q.bus != nil {
			q.bus.Publish(TopicPrintCompleted, &QueuedResult{JobID: id, Result: result})
		}
	})
	if err != nil {
		return "", errors.Errorf("print queue submit: %v", err)
	}
	return id, nil
}

// Running reports workers currently busy, for the status endpoint.
func (q *Queue) Running() int {
	return q.pool.Running()
}

func (q *Queue) Release() {
	q.pool.Release()
}
