package propagation

import (
	"context"
	"sync"
	"time"

	"bookstore/internal/domain/model"
	"bookstore/internal/notification"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// StockWriter は在庫台帳への書き込み
type StockWriter interface {
	UpdateBookStock(ctx context.Context, isbn string, qty int64, strategy model.StockUpdateStrategy) (int64, error)
	DecreaseBookStockIfEnough(ctx context.Context, isbn string, qty int64) (int64, error)
}

type Publisher interface {
	Publish(ev notification.Event)
}

type Metrics interface {
	StockUpdated(kind string)
	PropagationFailed(kind string)
	QueueDepth(n int)
}

type Options struct {
	Workers        int
	QueueSize      int
	EnqueueTimeout time.Duration
	WriteTimeout   time.Duration
	Mode           Mode

	Logger   zerolog.Logger
	Metrics  Metrics
	Tracer   trace.Tracer
	Failures []FailureHandler
}

// Propagator は注文確定後の在庫反映を固定数のworkerで流す
type Propagator struct {
	writer StockWriter
	pub    Publisher
	opts   Options

	queue   chan Job
	workers sync.WaitGroup

	//投入済みで未完了のjob数。Submitと並行にWaitできるようWaitGroupは使わない
	pmu     sync.Mutex
	idle    *sync.Cond
	pending int

	mu      sync.RWMutex
	stopped bool

	startOnce sync.Once
	stopOnce  sync.Once
}

func New(writer StockWriter, pub Publisher, opts Options) *Propagator {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = 1
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 10 * time.Second
	}
	if opts.Mode == "" {
		opts.Mode = ModeReplace
	}
	if opts.Metrics == nil {
		opts.Metrics = noopMetrics{}
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer("bookstore/propagation")
	}
	p := &Propagator{
		writer: writer,
		pub:    pub,
		opts:   opts,
		queue:  make(chan Job, opts.QueueSize),
	}
	p.idle = sync.NewCond(&p.pmu)
	return p
}

func (p *Propagator) Mode() Mode { return p.opts.Mode }

func (p *Propagator) Start() {
	p.startOnce.Do(func() {
		for i := 0; i < p.opts.Workers; i++ {
			p.workers.Add(1)
			go p.work()
		}
		p.opts.Logger.Info().Int("workers", p.opts.Workers).Str("mode", string(p.opts.Mode)).Msg("stock propagator started")
	})
}

// Submit は書き込みを待たずに戻る。キューに入れられなければ失敗として扱う。
func (p *Propagator) Submit(job Job) {
	if len(job.Changes) == 0 {
		return
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		p.failJob(job, ErrStopped)
		return
	}

	p.addPending(1)
	if p.enqueue(job) {
		p.opts.Metrics.QueueDepth(len(p.queue))
		return
	}
	p.addPending(-1)
	p.failJob(job, ErrQueueFull)
}

func (p *Propagator) enqueue(job Job) bool {
	if p.opts.EnqueueTimeout <= 0 {
		select {
		case p.queue <- job:
			return true
		default:
			return false
		}
	}

	t := time.NewTimer(p.opts.EnqueueTimeout)
	defer t.Stop()
	select {
	case p.queue <- job:
		return true
	case <-t.C:
		return false
	}
}

// Wait はその時点で投入済みのjobが0になるまで待つ。Submitと並行に呼んでよい。
func (p *Propagator) Wait() {
	p.pmu.Lock()
	defer p.pmu.Unlock()
	for p.pending > 0 {
		p.idle.Wait()
	}
}

func (p *Propagator) addPending(n int) {
	p.pmu.Lock()
	defer p.pmu.Unlock()
	p.pending += n
	if p.pending == 0 {
		p.idle.Broadcast()
	}
}

// Shutdown は受付を止めて、キューに残ったjobを流し切る
func (p *Propagator) Shutdown(ctx context.Context) error {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.stopped = true
		close(p.queue)
		p.mu.Unlock()
	})
	//Startしていなければ残りはここで流す
	p.Start()

	done := make(chan struct{})
	go func() {
		p.workers.Wait()
		close(done)
	}()
	select {
	case <-done:
		p.opts.Logger.Info().Msg("stock propagator stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Propagator) work() {
	defer p.workers.Done()
	for job := range p.queue {
		p.opts.Metrics.QueueDepth(len(p.queue))
		p.process(job)
		p.addPending(-1)
	}
}

func (p *Propagator) process(job Job) {
	ctx, span := p.opts.Tracer.Start(context.Background(), "propagation."+string(job.Kind),
		trace.WithAttributes(
			attribute.String("order.id", job.OrderID),
			attribute.Int("changes", len(job.Changes)),
			attribute.String("mode", string(p.opts.Mode)),
		))
	defer span.End()

	failed := 0
	for _, ch := range job.Changes {
		strategy, qty := p.plan(job.Kind, ch)

		newStock, err := p.write(ctx, job.Kind, ch.BookID, qty, strategy)
		if err != nil {
			failed++
			p.fail(&Failure{
				OrderID:  job.OrderID,
				Kind:     job.Kind,
				BookID:   ch.BookID,
				Strategy: strategy,
				Quantity: qty,
				Err:      err,
			})
			//残りの本は続ける
			continue
		}

		p.opts.Metrics.StockUpdated(string(job.Kind))
		p.pub.Publish(notification.StockUpdated(ch.BookID, newStock))
	}

	if failed > 0 {
		span.SetStatus(codes.Error, "some stock writes failed")
		span.SetAttributes(attribute.Int("failed", failed))
	}
}

// plan はjobの種類とモードから書き込み方法を決める
func (p *Propagator) plan(kind Kind, ch Change) (model.StockUpdateStrategy, int64) {
	switch {
	case kind == KindRestock:
		return model.StockAdd, ch.Quantity
	case p.opts.Mode == ModeGuarded:
		return model.StockSubtract, ch.Quantity
	default:
		return model.StockReplace, ch.Target
	}
}

func (p *Propagator) write(ctx context.Context, kind Kind, bookID string, qty int64, strategy model.StockUpdateStrategy) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, p.opts.WriteTimeout)
	defer cancel()

	if kind == KindReserve && p.opts.Mode == ModeGuarded {
		return p.writer.DecreaseBookStockIfEnough(ctx, bookID, qty)
	}
	return p.writer.UpdateBookStock(ctx, bookID, qty, strategy)
}

func (p *Propagator) failJob(job Job, err error) {
	for _, ch := range job.Changes {
		strategy, qty := p.plan(job.Kind, ch)
		p.fail(&Failure{
			OrderID:  job.OrderID,
			Kind:     job.Kind,
			BookID:   ch.BookID,
			Strategy: strategy,
			Quantity: qty,
			Err:      err,
		})
	}
}

func (p *Propagator) fail(f *Failure) {
	p.opts.Metrics.PropagationFailed(string(f.Kind))

	ctx, cancel := context.WithTimeout(context.Background(), p.opts.WriteTimeout)
	defer cancel()
	for _, h := range p.opts.Failures {
		h.HandleFailure(ctx, f)
	}
}

type noopMetrics struct{}

func (noopMetrics) StockUpdated(string)      {}
func (noopMetrics) PropagationFailed(string) {}
func (noopMetrics) QueueDepth(int)           {}
