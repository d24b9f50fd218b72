package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/realspark/console-gateway/internal/api/metrics"
	"github.com/realspark/console-gateway/internal/core/domain"
	"github.com/realspark/console-gateway/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	persistTimeout = 5 * time.Second
)

// Dispatcher fans normalized notices out to a fixed set of workers using
// consistent hashing on the notice source, so the activity trail stays
// ordered per source. It is the asynchronous half of the notification relay:
// publishing never blocks the reporting code path.
type Dispatcher struct {
	workers  []chan domain.Notice
	activity ports.ActivityRepository
	log      zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, activity ports.ActivityRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:  make([]chan domain.Notice, numWorkers),
		activity: activity,
		log:      log.With().Str("component", "dispatcher").Logger(),
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.Notice, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Publish sends a notice to the worker responsible for its source. A full
// worker channel drops the notice rather than stall the caller; the notice
// was already logged by the relay.
func (d *Dispatcher) Publish(notice domain.Notice) {
	idx := d.shardIndex(notice.Source)
	select {
	case d.workers[idx] <- notice:
		metrics.NoticesQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.NoticesDroppedTotal.WithLabelValues(string(notice.Severity)).Inc()
		d.log.Warn().Str("source", notice.Source).Msg("notice queue full, dropping")
	}
}

// shardIndex maps a notice source deterministically to a worker index.
func (d *Dispatcher) shardIndex(source string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(source))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.Notice) {
	for {
		select {
		case <-ctx.Done():
			return
		case notice, ok := <-ch:
			if !ok {
				return
			}
			d.persist(ctx, id, notice)
		}
	}
}

func (d *Dispatcher) persist(ctx context.Context, id int, notice domain.Notice) {
	persistCtx, cancel := context.WithTimeout(ctx, persistTimeout)
	defer cancel()

	if err := d.activity.RecordNotice(persistCtx, &notice); err != nil {
		metrics.NoticesErrorsTotal.WithLabelValues("persist_failed").Inc()
		d.log.Error().Err(err).
			Str("notice_id", notice.ID).
			Int("worker_id", id).
			Msg("notice persistence failed")
		return
	}
	metrics.NoticesProcessedTotal.WithLabelValues(string(notice.Severity)).Inc()
}
