package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// RequestQueue runs browser tasks one at a time so requests never interleave
// actions on the shared page.
type RequestQueue struct {
	tasks     chan *RequestTask
	mu        sync.RWMutex
	running   bool
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	processor TaskProcessor
}

// TaskProcessor defines the interface for processing tasks
type TaskProcessor interface {
	ProcessTask(ctx context.Context, task *RequestTask) *TaskResponse
}

// NewRequestQueue creates a new request queue
func NewRequestQueue(processor TaskProcessor) *RequestQueue {
	ctx, cancel := context.WithCancel(context.Background())
	return &RequestQueue{
		tasks:     make(chan *RequestTask, 100),
		ctx:       ctx,
		cancel:    cancel,
		processor: processor,
	}
}

// Start begins processing requests from the queue
func (q *RequestQueue) Start() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.running {
		return fmt.Errorf("queue is already running")
	}

	q.running = true
	q.wg.Add(1)

	go q.processLoop()
	log.Debug("Request queue started")
	return nil
}

// Stop stops the request queue and waits for current task to complete
func (q *RequestQueue) Stop() error {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return fmt.Errorf("queue is not running")
	}
	q.running = false
	q.mu.Unlock()

	q.cancel()
	close(q.tasks)
	q.wg.Wait()
	log.Debug("Request queue stopped")
	return nil
}

// AddTask adds a new task to the queue
func (q *RequestQueue) AddTask(task *RequestTask) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if !q.running {
		return fmt.Errorf("queue is not running")
	}

	select {
	case q.tasks <- task:
		log.Debugf("Task %s (%s) added to queue", task.ID, task.Kind)
		return nil
	case <-q.ctx.Done():
		return fmt.Errorf("queue is shutting down")
	default:
		return fmt.Errorf("queue is full")
	}
}

func (q *RequestQueue) processLoop() {
	defer q.wg.Done()

	for {
		select {
		case task, ok := <-q.tasks:
			if !ok {
				log.Debug("Task channel closed, stopping process loop")
				return
			}
			q.process(task)
		case <-q.ctx.Done():
			log.Debug("Context cancelled, stopping process loop")
			return
		}
	}
}

func (q *RequestQueue) process(task *RequestTask) {
	parent := task.Context
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	stop := context.AfterFunc(q.ctx, cancel)
	defer stop()

	if ctx.Err() != nil {
		log.Debugf("Task %s abandoned before processing", task.ID)
		task.Response <- &TaskResponse{Error: ctx.Err()}
		return
	}

	log.Debugf("Processing task %s", task.ID)
	startTime := time.Now()
	response := q.processor.ProcessTask(ctx, task)
	log.Debugf("Task %s completed in %v", task.ID, time.Since(startTime))

	// Response is buffered for one value.
	task.Response <- response
}

// GetQueueLength returns the current number of tasks in the queue
func (q *RequestQueue) GetQueueLength() int {
	return len(q.tasks)
}

// IsRunning returns whether the queue is currently running
func (q *RequestQueue) IsRunning() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.running
}
