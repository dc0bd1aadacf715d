package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hospitalmgmt/hospital-api/internal/api/metrics"
	"github.com/hospitalmgmt/hospital-api/internal/core/domain"
	"github.com/hospitalmgmt/hospital-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	notifyTimeout  = 10 * time.Second
)

// ErrQueueFull is returned by Enqueue when the target worker's buffer is full.
var ErrQueueFull = errors.New("notification queue full")

// ErrStopped is returned by Enqueue once the dispatcher has shut down.
var ErrStopped = errors.New("notification dispatcher stopped")

// Dispatcher routes appointment events to a fixed set of workers using
// consistent hashing on the doctor ID, so each doctor's notifications are
// delivered in booking order.
type Dispatcher struct {
	workers  []chan domain.AppointmentEvent
	notifier ports.AppointmentNotifier
	log      zerolog.Logger
	wg       sync.WaitGroup
	done     chan struct{}
	once     sync.Once
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, notifier ports.AppointmentNotifier, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:  make([]chan domain.AppointmentEvent, numWorkers),
		notifier: notifier,
		log:      log,
		done:     make(chan struct{}),
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AppointmentEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
	go func() {
		<-ctx.Done()
		d.once.Do(func() { close(d.done) })
	}()
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue hands the event to the worker responsible for its doctor. It never
// blocks: a full buffer yields ErrQueueFull.
func (d *Dispatcher) Enqueue(ctx context.Context, event domain.AppointmentEvent) error {
	select {
	case <-d.done:
		return ErrStopped
	default:
	}

	idx := d.shardIndex(event.DoctorID)
	select {
	case d.workers[idx] <- event:
		metrics.NotificationQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		metrics.NotificationsTotal.WithLabelValues("dropped").Inc()
		return ErrQueueFull
	}
}

// shardIndex maps a doctor ID deterministically to a worker index.
func (d *Dispatcher) shardIndex(doctorID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(doctorID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AppointmentEvent) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-ch:
			metrics.NotificationQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.deliver(ctx, id, event)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, worker int, event domain.AppointmentEvent) {
	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()

	start := time.Now()
	err := d.notifier.Notify(ctx, event)
	metrics.NotificationDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.NotificationsTotal.WithLabelValues("failed").Inc()
		d.log.Error().Err(err).
			Str("appointment_id", event.AppointmentID).
			Str("doctor_id", event.DoctorID).
			Int("worker_id", worker).
			Msg("appointment notification failed")
		return
	}
	metrics.NotificationsTotal.WithLabelValues("sent").Inc()
}
