package service

import (
	"context"
	"fmt"
	"log"
	"path"
	"strings"
)

// ObjectStore is the slice of object storage the importer reads from.
type ObjectStore interface {
	ListTextObjects(ctx context.Context, prefix string) ([]string, error)
	GetObject(ctx context.Context, key string) ([]byte, error)
}

// ImportSummary reports the outcome of a corpus import.
type ImportSummary struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}

// ImporterService loads job-description documents from object storage into
// the relational store. Keys map to documents as <prefix>/<label>/<id>.txt;
// a key without a label directory imports unlabeled. Each imported document
// enqueues a sync job through the document service.
type ImporterService struct {
	objects ObjectStore
	docs    *JobDescriptionService
}

func NewImporterService(objects ObjectStore, docs *JobDescriptionService) *ImporterService {
	return &ImporterService{objects: objects, docs: docs}
}

// ImportAll imports every text object under the prefix. Existing documents
// (same derived id) are skipped, not overwritten.
func (s *ImporterService) ImportAll(ctx context.Context, prefix string) (*ImportSummary, error) {
	keys, err := s.objects.ListTextObjects(ctx, prefix)
	if err != nil {
		return nil, err
	}

	summary := &ImportSummary{}
	for _, key := range keys {
		id, label := parseObjectKey(key, prefix)
		if id == "" {
			summary.Skipped++
			continue
		}

		if existing, err := s.docs.Get(ctx, id); err == nil && existing != nil {
			summary.Skipped++
			continue
		}

		data, err := s.objects.GetObject(ctx, key)
		if err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", key, err))
			continue
		}

		content := strings.TrimSpace(string(data))
		if content == "" {
			summary.Skipped++
			continue
		}

		_, err = s.docs.Create(ctx, CreateJobDescriptionInput{
			ID:      id,
			Title:   titleFromContent(content, id),
			Label:   label,
			Content: content,
		})
		if err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", key, err))
			log.Printf("import: failed to import %s: %v", key, err)
			continue
		}
		summary.Imported++
	}
	return summary, nil
}

// parseObjectKey derives a document id and optional label from an object key.
// "corpus/engineering/backend-dev.txt" yields ("backend-dev", "engineering");
// "corpus/backend-dev.txt" yields ("backend-dev", "").
func parseObjectKey(key, prefix string) (id, label string) {
	rel := strings.TrimPrefix(key, prefix)
	rel = strings.TrimPrefix(rel, "/")
	if rel == "" {
		return "", ""
	}

	base := path.Base(rel)
	id = strings.TrimSuffix(strings.TrimSuffix(base, ".txt"), ".md")
	if id == "" {
		return "", ""
	}

	dir := path.Dir(rel)
	if dir != "." && dir != "/" {
		// Only the first directory level is treated as a label.
		label = strings.SplitN(dir, "/", 2)[0]
	}
	return id, label
}

// titleFromContent uses the first line as a title when it is short enough to
// plausibly be one.
func titleFromContent(content, fallback string) string {
	line := content
	if idx := strings.IndexByte(content, '\n'); idx >= 0 {
		line = content[:idx]
	}
	line = strings.TrimSpace(strings.TrimLeft(line, "# "))
	if line != "" && len(line) <= 120 {
		return line
	}
	return fallback
}
