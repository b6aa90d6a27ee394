package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/talentsift/jobdex/internal/domain"
	"github.com/talentsift/jobdex/internal/telemetry"
)

// DefaultTopK is how many chunks a question retrieves for grounding.
const DefaultTopK = 5

// noMatchAnswer is returned without calling the language model when the
// search comes back empty.
const noMatchAnswer = "No relevant information found in the indexed job descriptions."

// ChatClient answers a fully assembled prompt.
type ChatClient interface {
	Answer(ctx context.Context, prompt string) (string, error)
}

// ChatClientFactory builds a chat client from a resolved credential and model
// name. It is invoked per query, only after retrieval finds something to
// ground an answer on.
type ChatClientFactory func(apiKey, model string) ChatClient

// SettingsReader resolves runtime configuration overrides stored in the
// database. A missing key yields "" with no error.
type SettingsReader interface {
	Get(ctx context.Context, key string) (string, error)
}

// QueryInput is one retrieval-augmented question.
type QueryInput struct {
	Question string
	Label    string
	TopK     int
}

// Source identifies a chunk that grounded the answer.
type Source struct {
	JobDescriptionID string  `json:"job_description_id"`
	Title            string  `json:"title"`
	Label            string  `json:"label,omitempty"`
	ChunkIndex       int     `json:"chunk_index"`
	Score            float32 `json:"score"`
	ChunkText        string  `json:"chunk_text"`
}

// QueryOutput is the answer plus the retrieved chunks it was grounded on.
// Sources is empty when no chunks matched and the canned answer was returned.
type QueryOutput struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

// QueryService answers natural-language questions about the indexed corpus:
// embed the question, retrieve nearest chunks, and ask the language model to
// answer strictly from them.
type QueryService struct {
	embedder    Embedder
	store       VectorStore
	settings    SettingsReader
	chatFactory ChatClientFactory

	// envAPIKey and envChatModel come from process configuration and act as
	// fallbacks behind the settings store.
	envAPIKey    string
	envChatModel string
	defaultModel string
}

func NewQueryService(
	embedder Embedder,
	store VectorStore,
	settings SettingsReader,
	chatFactory ChatClientFactory,
	envAPIKey, envChatModel, defaultModel string,
) *QueryService {
	return &QueryService{
		embedder:     embedder,
		store:        store,
		settings:     settings,
		chatFactory:  chatFactory,
		envAPIKey:    envAPIKey,
		envChatModel: envChatModel,
		defaultModel: defaultModel,
	}
}

// Query runs the full retrieval-augmented pipeline. The chat credential is
// resolved only when there is something to answer from, so an empty corpus
// works without any language model configured.
func (s *QueryService) Query(ctx context.Context, input QueryInput) (*QueryOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "QueryService.Query", telemetry.SpanAttributes{
		Label:     input.Label,
		Operation: "query",
	})
	defer span.End()

	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "question must not be blank")
	}

	topK := input.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	// A store outage must surface before any embedding or chat spend.
	if err := s.store.EnsureCollection(ctx); err != nil {
		return nil, err
	}

	queryVector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	hits, err := s.store.Search(ctx, queryVector, topK, input.Label)
	if err != nil {
		return nil, err
	}

	if len(hits) == 0 {
		return &QueryOutput{Answer: noMatchAnswer, Sources: []Source{}}, nil
	}

	apiKey, model, err := s.resolveChatConfig(ctx)
	if err != nil {
		return nil, err
	}

	prompt := buildPrompt(question, hits)
	answer, err := s.chatFactory(apiKey, model).Answer(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	sources := make([]Source, len(hits))
	for i, hit := range hits {
		sources[i] = Source{
			JobDescriptionID: hit.Payload.JobDescriptionID,
			Title:            sourceTitle(hit.Payload),
			Label:            hit.Payload.Label,
			ChunkIndex:       hit.Payload.ChunkIndex,
			Score:            hit.Score,
			ChunkText:        hit.Payload.ChunkText,
		}
	}

	return &QueryOutput{Answer: answer, Sources: sources}, nil
}

// resolveChatConfig prefers settings-store values, then process configuration,
// then the built-in default model. A key found nowhere is a configuration
// error surfaced to the caller.
func (s *QueryService) resolveChatConfig(ctx context.Context) (apiKey, model string, err error) {
	apiKey, err = s.settings.Get(ctx, "openai_api_key")
	if err != nil {
		return "", "", fmt.Errorf("failed to read settings: %w", err)
	}
	if apiKey == "" {
		apiKey = s.envAPIKey
	}
	if apiKey == "" {
		return "", "", domain.ErrChatCredentialMissing
	}

	model, err = s.settings.Get(ctx, "chat_model")
	if err != nil {
		return "", "", fmt.Errorf("failed to read settings: %w", err)
	}
	if model == "" {
		model = s.envChatModel
	}
	if model == "" {
		model = s.defaultModel
	}
	return apiKey, model, nil
}

func buildPrompt(question string, hits []domain.SearchHit) string {
	var b strings.Builder
	b.WriteString("You are an assistant answering questions about job descriptions.\n")
	b.WriteString("Answer using ONLY the numbered excerpts below. ")
	b.WriteString("If the excerpts do not contain the answer, say you do not know. ")
	b.WriteString("Do not invent requirements, benefits, or qualifications.\n\n")

	for i, hit := range hits {
		fmt.Fprintf(&b, "[%d] %s", i+1, sourceTitle(hit.Payload))
		if hit.Payload.Label != "" {
			fmt.Fprintf(&b, " (%s)", hit.Payload.Label)
		}
		b.WriteString("\n")
		b.WriteString(hit.Payload.ChunkText)
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "Question: %s\n", question)
	b.WriteString("Answer:")
	return b.String()
}

// sourceTitle falls back to a short id-based label when the document carries
// no title.
func sourceTitle(p domain.VectorPayload) string {
	if p.Title != "" {
		return p.Title
	}
	id := p.JobDescriptionID
	if len(id) > 8 {
		id = id[:8]
	}
	return "Job description " + id
}
