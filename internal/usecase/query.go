package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"docrag/internal/domain"
	"docrag/internal/port"
)

// NoInformationAnswer is returned when the store holds nothing to answer
// from. An empty store is a defined result, not a failure.
const NoInformationAnswer = "No information available: no documents have been ingested yet."

const contextSeparator = "\n\n---\n\n"

// QueryConfig tunes the query pipeline.
type QueryConfig struct {
	DefaultTopK     int // used when the caller passes topK <= 0
	MaxContextChars int // budget for the generator context
	MaxSourceChars  int // per-source text truncation in the result
}

// QueryUseCase runs the query pipeline: embed the question, retrieve the
// most similar chunks, assemble a bounded context and delegate to the
// answer generator. With no generator configured the answer is the ranked
// context itself.
type QueryUseCase struct {
	retriever port.Retriever
	embedder  port.Embedder
	generator port.Generator
	cfg       QueryConfig
	log       zerolog.Logger
}

func NewQueryUseCase(
	retriever port.Retriever,
	embedder port.Embedder,
	generator port.Generator,
	cfg QueryConfig,
	log zerolog.Logger,
) *QueryUseCase {
	if cfg.DefaultTopK <= 0 {
		cfg.DefaultTopK = 1
	}
	if cfg.MaxContextChars <= 0 {
		cfg.MaxContextChars = 8000
	}
	if cfg.MaxSourceChars <= 0 {
		cfg.MaxSourceChars = 400
	}
	return &QueryUseCase{
		retriever: retriever,
		embedder:  embedder,
		generator: generator,
		cfg:       cfg,
		log:       log.With().Str("component", "query").Logger(),
	}
}

// Query answers question from the store. A failure to embed the question
// fails the query as a whole; no partial answer is ever produced. The store
// is never mutated on the query path.
func (u *QueryUseCase) Query(ctx context.Context, question string, topK int, collection string) (*domain.QueryResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrValidation)
	}
	if topK <= 0 {
		topK = u.cfg.DefaultTopK
	}

	vectors, err := u.embedder.Embed(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("%w: embedding question: %v", domain.ErrQueryFailed, err)
	}
	if len(vectors) != 1 || len(vectors[0]) == 0 {
		return nil, fmt.Errorf("%w: embedder returned no vector for the question", domain.ErrQueryFailed)
	}

	scored, err := u.retriever.Retrieve(vectors[0], topK, collection)
	if err != nil {
		return nil, err
	}

	result := &domain.QueryResult{
		Query:   question,
		Sources: make([]domain.Source, 0, len(scored)),
	}
	if len(scored) == 0 {
		result.Answer = NoInformationAnswer
		return result, nil
	}

	contextText := u.buildContext(scored)

	if u.generator != nil {
		answer, err := u.generator.Generate(ctx, question, contextText)
		if err != nil {
			return nil, err
		}
		result.Answer = answer
	} else {
		result.Answer = contextText
	}

	for _, s := range scored {
		result.Sources = append(result.Sources, domain.Source{
			Filename:   s.Entry.Filename,
			ChunkIndex: s.Entry.ChunkIndex,
			Score:      s.Score,
			Text:       truncateRunes(s.Entry.Text, u.cfg.MaxSourceChars),
		})
	}

	u.log.Debug().Int("sources", len(result.Sources)).Msg("query answered")
	return result, nil
}

// buildContext concatenates chunk texts in ranked order up to the
// configured budget. The top-ranked chunk is always included, even when it
// alone exceeds the budget.
func (u *QueryUseCase) buildContext(scored []domain.ScoredEntry) string {
	var sb strings.Builder
	for i, s := range scored {
		if i > 0 && sb.Len()+len(contextSeparator)+len(s.Entry.Text) > u.cfg.MaxContextChars {
			break
		}
		if i > 0 {
			sb.WriteString(contextSeparator)
		}
		sb.WriteString(s.Entry.Text)
	}
	return sb.String()
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
