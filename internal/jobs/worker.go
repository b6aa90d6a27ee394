// Package jobs runs background processing for queued vector-sync work.
package jobs

import (
	"context"
	"log"
	"time"
)

// JobProcessor drains whatever work is queued when the worker polls.
type JobProcessor interface {
	ProcessJobs(ctx context.Context) error
}

// Worker polls a JobProcessor on a fixed interval until stopped.
type Worker struct {
	processor    JobProcessor
	pollInterval time.Duration
	stopChan     chan struct{}
	doneChan     chan struct{}
}

func NewWorker(processor JobProcessor, pollInterval time.Duration) *Worker {
	return &Worker{
		processor:    processor,
		pollInterval: pollInterval,
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
}

// Start runs the polling loop until the context is cancelled or Stop is
// called. It blocks; run it in a goroutine.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	defer close(w.doneChan)

	log.Printf("sync worker: polling every %v", w.pollInterval)

	for {
		select {
		case <-ctx.Done():
			log.Println("sync worker: stopped, context cancelled")
			return
		case <-w.stopChan:
			log.Println("sync worker: stopped, stop signal received")
			return
		case <-ticker.C:
			if err := w.processor.ProcessJobs(ctx); err != nil {
				log.Printf("sync worker: processing failed: %v", err)
			}
		}
	}
}

// Stop signals the polling loop and waits for it to exit.
func (w *Worker) Stop() {
	close(w.stopChan)
	<-w.doneChan
	log.Println("sync worker: shutdown complete")
}
