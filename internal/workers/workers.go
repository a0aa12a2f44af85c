// Package workers tracks background goroutines so shutdown can wait for them.
package workers

import (
	"log/slog"
	"sync"
)

var Global = NewWorker()

type Worker struct {
	wg sync.WaitGroup
}

func NewWorker() *Worker {
	return &Worker{}
}

// Go runs fn in its own goroutine. A panic in fn is logged with name and
// does not bring the process down.
func (w *Worker) Go(name string, fn func()) {
	w.wg.Add(1)

	go func() {
		defer w.wg.Done()
		defer func() {
			if recovered := recover(); recovered != nil {
				slog.Error("worker panicked", "worker", name, "panic", recovered)
			}
		}()

		fn()
	}()
}

func (w *Worker) Wait() {
	w.wg.Wait()
}
