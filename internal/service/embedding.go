package service

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// DefaultEmbeddingSubBatchSize bounds how many texts are embedded per
// sub-batch during batch processing.
const DefaultEmbeddingSubBatchSize = 10

// EmbeddingClient defines the interface for generating embeddings
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// EmbeddingClientFactory produces the underlying embedding client. It runs at
// most once concurrently; a successful result is cached for the process
// lifetime, a failure is returned to every waiter and retried on the next call.
type EmbeddingClientFactory func(ctx context.Context) (EmbeddingClient, error)

// EmbeddingService provides lazy, process-wide access to the embedding model.
// Initialization is guarded by singleflight so racing requests share one
// in-flight load instead of each triggering their own.
type EmbeddingService struct {
	factory EmbeddingClientFactory
	group   singleflight.Group

	mu           sync.RWMutex
	client       EmbeddingClient
	subBatchSize int
}

// NewEmbeddingService creates a new EmbeddingService instance
func NewEmbeddingService(factory EmbeddingClientFactory) *EmbeddingService {
	return &EmbeddingService{
		factory:      factory,
		subBatchSize: DefaultEmbeddingSubBatchSize,
	}
}

// NewEmbeddingServiceWithClient wraps an already-initialized client (for
// wiring paths that construct the client eagerly, and for tests).
func NewEmbeddingServiceWithClient(client EmbeddingClient) *EmbeddingService {
	s := NewEmbeddingService(func(ctx context.Context) (EmbeddingClient, error) {
		return client, nil
	})
	s.client = client
	return s
}

func (s *EmbeddingService) getClient(ctx context.Context) (EmbeddingClient, error) {
	s.mu.RLock()
	client := s.client
	s.mu.RUnlock()
	if client != nil {
		return client, nil
	}

	v, err, _ := s.group.Do("init", func() (interface{}, error) {
		s.mu.RLock()
		cached := s.client
		s.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}

		created, err := s.factory(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize embedding client: %w", err)
		}

		s.mu.Lock()
		s.client = created
		s.mu.Unlock()
		return created, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(EmbeddingClient), nil
}

// Embed generates one embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	client, err := s.getClient(ctx)
	if err != nil {
		return nil, err
	}
	return client.GenerateEmbedding(ctx, text)
}

// EmbedBatch embeds every text, preserving order and length. Inputs are
// grouped into fixed-size sub-batches to bound peak load on the model
// runtime: calls within a sub-batch run concurrently, sub-batches run
// strictly one after another.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	client, err := s.getClient(ctx)
	if err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(texts))
	size := s.subBatchSize
	if size <= 0 {
		size = DefaultEmbeddingSubBatchSize
	}

	for start := 0; start < len(texts); start += size {
		end := start + size
		if end > len(texts) {
			end = len(texts)
		}

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			g.Go(func() error {
				vec, err := client.GenerateEmbedding(gctx, texts[i])
				if err != nil {
					return fmt.Errorf("failed to embed text %d: %w", i, err)
				}
				vectors[i] = vec
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	return vectors, nil
}
