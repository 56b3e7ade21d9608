package crawler

import (
	"context"
	"fmt"
	"sync"

	"github.com/bool64/ctxd"
	"github.com/eapache/queue"
	"golang.org/x/sync/errgroup"
)

// defaultNumWorkers is the default value for number of workers.
const defaultNumWorkers = 1

// Pool is a fixed-size pool of workers that executes tasks.
//
// Tasks are submitted to an unbounded FIFO queue, so Submit never waits for a free worker. Each worker takes one task at a
// time, runs it with the LinkChecker and puts it on the completed queue, which is consumed with Next.
//
// The pool does not count the tasks, the caller knows how many tasks it has submitted and how many it has received.
type Pool struct {
	checker    LinkChecker
	log        ctxd.Logger
	numWorkers int

	submit chan *Task
	todo   chan *Task
	done   chan *Task
	closed chan struct{}
	// stopped is closed when the dispatcher returns.
	stopped chan struct{}

	group     *errgroup.Group
	cancel    context.CancelFunc
	startOnce sync.Once
	closeOnce sync.Once
}

// Start starts the dispatcher and the workers. It must be called before Submit, calling it again has no effect.
func (p *Pool) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		ctx, p.cancel = context.WithCancel(ctx)
		p.group, ctx = errgroup.WithContext(ctx)

		p.group.Go(func() error {
			p.dispatch(ctx)

			return nil
		})

		for i := 0; i < p.numWorkers; i++ {
			ctx := ctxd.AddFields(ctx, "crawler.worker_id", i)

			p.group.Go(func() error {
				p.work(ctx)

				return nil
			})
		}

		p.log.Debug(ctx, "started crawler pool", "crawler.num_workers", p.numWorkers)
	})
}

// Submit queues a task for execution.
//
// The queue is unbounded: Submit returns as soon as the dispatcher has taken the task, no matter how many tasks are waiting.
// Tasks submitted after Close, or after the context of Start is done, are dropped.
func (p *Pool) Submit(task *Task) {
	select {
	case p.submit <- task:
	case <-p.stopped:
	case <-p.closed:
	}
}

// Next blocks until a task is completed and returns it.
//
// It returns the context error if the context is done first, or ErrPoolClosed if the pool is closed.
func (p *Pool) Next(ctx context.Context) (*Task, error) {
	select {
	case task := <-p.done:
		return task, nil

	case <-ctx.Done():
		return nil, ctx.Err()

	case <-p.closed:
		return nil, ErrPoolClosed
	}
}

// Close stops the dispatcher and the workers and waits for them to return. Tasks that are still queued are discarded.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.closed)

		if p.cancel == nil {
			return
		}

		p.cancel()
		_ = p.group.Wait() // nolint: errcheck // Workers never return errors.

		p.log.Debug(context.Background(), "stopped all crawler workers")
	})
}

// dispatch moves tasks from the submit channel to the workers, holding them in a FIFO queue while all the workers are busy.
func (p *Pool) dispatch(ctx context.Context) {
	defer close(p.stopped)

	pending := queue.New()

	for {
		var (
			todo chan *Task
			next *Task
		)

		// A nil channel is never ready, so nothing is sent to the workers while the queue is empty.
		if pending.Length() > 0 {
			todo = p.todo
			next = pending.Peek().(*Task) // nolint: forcetypeassert // Only tasks are added to the queue.
		}

		select {
		case <-ctx.Done():
			return

		case task := <-p.submit:
			pending.Add(task)

		case todo <- next:
			pending.Remove()
		}
	}
}

func (p *Pool) work(ctx context.Context) {
	p.log.Debug(ctx, "started crawler worker")

	defer p.log.Debug(ctx, "stopped crawler worker")

	for {
		select {
		case <-ctx.Done():
			return

		case task := <-p.todo:
			p.run(ctx, task)

			select {
			case p.done <- task:
			case <-ctx.Done():
				return
			}
		}
	}
}

// run runs the task and turns a panic of the checker into a task error, so a single bad task never takes a worker down.
func (p *Pool) run(ctx context.Context, task *Task) {
	defer func() {
		if r := recover(); r != nil {
			task.Err = &TaskError{Kind: ErrorKindFetch, Err: fmt.Errorf("%w: %v", ErrTaskPanicked, r)}

			p.log.Error(ctx, "recovered from panic while checking link", "crawler.task.url", task.URL, "error", task.Err)
		}
	}()

	p.checker.Check(ctx, task)
}

// NewPool creates a new pool of workers running tasks with the given checker.
//
//	p, err := NewPool(NewHTTPLinkChecker(), WithNumWorkers(4))
//	if err != nil {
//		return err
//	}
//
//	p.Start(ctx)
//	defer p.Close()
//
//	p.Submit(NewTask("https://example.org/", true, 10*time.Second, true))
//
//	task, err := p.Next(ctx)
func NewPool(checker LinkChecker, opts ...PoolOption) (*Pool, error) {
	p := &Pool{
		checker:    checker,
		log:        ctxd.NoOpLogger{},
		numWorkers: defaultNumWorkers,
	}

	for _, opt := range opts {
		opt.applyPoolOption(p)
	}

	if p.numWorkers < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidNumWorkers, p.numWorkers)
	}

	p.submit = make(chan *Task)
	p.todo = make(chan *Task)
	p.done = make(chan *Task, p.numWorkers)
	p.closed = make(chan struct{})
	p.stopped = make(chan struct{})

	return p, nil
}

// PoolOption is option to set up Pool.
type PoolOption interface {
	applyPoolOption(p *Pool)
}

type poolOptionFunc func(p *Pool)

func (f poolOptionFunc) applyPoolOption(p *Pool) {
	f(p)
}

// WithNumWorkers sets number of workers for Pool.
func WithNumWorkers(numWorkers int) PoolOption {
	return poolOptionFunc(func(p *Pool) {
		p.numWorkers = numWorkers
	})
}

// WithPoolLogger sets logger for Pool.
func WithPoolLogger(l ctxd.Logger) PoolOption {
	return poolOptionFunc(func(p *Pool) {
		p.log = l
	})
}
