package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/AnishKajan/VaultGuardian-AI/internal/config"
)

// taskTimeout bounds one pipeline run, including the model-assist call.
const taskTimeout = 2 * time.Minute

// Pool is a bounded worker pool that runs pipeline advances in the
// background. Submit blocks when the queue is full, which backpressures
// intake instead of dropping documents in SCANNING.
type Pool struct {
	orch  *Orchestrator
	tasks chan string
	wg    sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewPool starts the workers immediately.
func NewPool(orch *Orchestrator, cfg config.PipelineConfig) *Pool {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	queue := cfg.QueueSize
	if queue <= 0 {
		queue = workers
	}

	p := &Pool{
		orch:  orch,
		tasks: make(chan string, queue),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for id := range p.tasks {
		ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
		if err := p.orch.Advance(ctx, id); err != nil {
			logJSON(map[string]any{
				"component":   "pipeline",
				"event":       "advance_failed",
				"level":       "error",
				"document_id": id,
				"error":       err.Error(),
			})
		}
		cancel()
	}
}

// Submit enqueues a document for processing. Fire-and-forget: results
// surface through the document row and audit log, not the caller. Submits
// after Close are dropped.
func (p *Pool) Submit(documentID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		logJSON(map[string]any{
			"component":   "pipeline",
			"event":       "submit_after_close",
			"level":       "warn",
			"document_id": documentID,
		})
		return
	}
	p.tasks <- documentID
}

// Close stops accepting work and waits for in-flight runs to finish.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()

	p.wg.Wait()
}
