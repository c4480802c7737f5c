package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrPoolStopped est retournée par Submit après Stop ou Wait
var ErrPoolStopped = errors.New("worker pool is stopped")

// Task représente une tâche à exécuter
type Task func() error

// WorkerPool gère un pool de workers pour traiter des tâches en parallèle
// Un pool sert un seul lot: Start, Submit..., puis Wait qui retourne les erreurs agrégées
type WorkerPool struct {
	workerCount int
	tasks       chan Task
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc

	mu   sync.Mutex
	errs []error

	// sendMu couvre l'envoi dans Submit et la fermeture du canal dans Wait
	sendMu sync.RWMutex
	closed bool
}

// NewWorkerPool crée un nouveau pool de workers
func NewWorkerPool(ctx context.Context, workerCount int) *WorkerPool {
	if workerCount <= 0 {
		workerCount = 1
	}
	ctx, cancel := context.WithCancel(ctx)
	return &WorkerPool{
		workerCount: workerCount,
		tasks:       make(chan Task, workerCount*2),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// worker est la routine d'exécution des tâches
func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	for {
		select {
		case <-wp.ctx.Done():
			return
		case task, ok := <-wp.tasks:
			if !ok {
				return
			}
			if err := task(); err != nil {
				wp.mu.Lock()
				wp.errs = append(wp.errs, err)
				wp.mu.Unlock()
			}
		}
	}
}

// Start démarre les workers
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
}

// Submit soumet une tâche au pool
func (wp *WorkerPool) Submit(task Task) error {
	wp.sendMu.RLock()
	defer wp.sendMu.RUnlock()
	if wp.closed {
		return ErrPoolStopped
	}

	select {
	case <-wp.ctx.Done():
		return ErrPoolStopped
	case wp.tasks <- task:
		return nil
	}
}

// Wait ferme le canal de tâches, attend la fin des workers et retourne les erreurs jointes
func (wp *WorkerPool) Wait() error {
	wp.sendMu.Lock()
	if !wp.closed {
		wp.closed = true
		close(wp.tasks)
	}
	wp.sendMu.Unlock()

	wp.wg.Wait()
	// contexte annulé: des tâches ont pu être abandonnées
	if err := wp.ctx.Err(); err != nil {
		wp.mu.Lock()
		wp.errs = append(wp.errs, err)
		wp.mu.Unlock()
	}
	wp.cancel()

	wp.mu.Lock()
	defer wp.mu.Unlock()
	if len(wp.errs) == 0 {
		return nil
	}
	return fmt.Errorf("%d task(s) failed: %w", len(wp.errs), errors.Join(wp.errs...))
}

// Stop arrête le pool immédiatement (les tâches en file sont abandonnées)
func (wp *WorkerPool) Stop() {
	wp.cancel()
	wp.wg.Wait()
}
