package search

import (
	"context"
	"fmt"
	"log"

	"ai-storywriting-be/internal/repository/unitofwork"
	"ai-storywriting-be/pkg/embedding"
	"ai-storywriting-be/pkg/rag"

	"github.com/google/uuid"
)

// Searcher turns a query into an embedding and runs the project-scoped vector
// search, mapping stored chunks back to retrieval nodes.
type Searcher struct {
	embedder   embedding.EmbeddingProvider
	uowFactory unitofwork.RepositoryFactory
	cfg        Config
	logger     *log.Logger
}

// Config encapsulates search thresholds. DBThreshold is pushed into the SQL
// query, MinScore drops weak hits after they come back.
type Config struct {
	DBThreshold float64
	MinScore    float64
}

// DefaultConfig returns default search configuration
func DefaultConfig() Config {
	return Config{
		DBThreshold: 0.0,
		MinScore:    0.35,
	}
}

func NewSearcher(embedder embedding.EmbeddingProvider, uowFactory unitofwork.RepositoryFactory, cfg Config, logger *log.Logger) *Searcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Searcher{
		embedder:   embedder,
		uowFactory: uowFactory,
		cfg:        cfg,
		logger:     logger,
	}
}

// Retrieve embeds the query and returns the project's most similar chunks.
func (s *Searcher) Retrieve(ctx context.Context, projectID, query string, topK int) ([]rag.Node, error) {
	pid, err := uuid.Parse(projectID)
	if err != nil {
		return nil, fmt.Errorf("invalid project id %q: %w", projectID, err)
	}

	embeddingRes, err := s.embedder.Generate(query, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.DocEmbeddingRepository().SearchSimilarWithScore(
		ctx,
		embeddingRes.Embedding.Values,
		topK,
		pid,
		s.cfg.DBThreshold,
	)
	if err != nil {
		s.logger.Printf("[SEARCH] Vector search failed: %v", err)
		return nil, err
	}

	s.logger.Printf("[SEARCH] Raw vector hits: %d", len(scored))

	nodes := make([]rag.Node, 0, len(scored))
	for i, res := range scored {
		if res.Similarity < s.cfg.MinScore {
			s.logger.Printf("[SEARCH] Hit %d: score=%.4f [dropped]", i+1, res.Similarity)
			continue
		}

		e := res.Embedding
		characterName := ""
		if e.CharacterName != nil {
			characterName = *e.CharacterName
		}

		nodes = append(nodes, rag.Node{
			ID:    e.Id.String(),
			Text:  e.Chunk,
			Score: res.Similarity,
			Meta: rag.NodeMeta{
				SourcePath:    e.SourcePath,
				DocType:       rag.ParseDocumentType(e.DocType),
				DocTitle:      e.DocTitle,
				CharacterName: characterName,
				ProjectID:     e.ProjectId.String(),
			},
		})
		s.logger.Printf("[SEARCH] Hit %d: score=%.4f [kept]", i+1, res.Similarity)
	}

	return nodes, nil
}
