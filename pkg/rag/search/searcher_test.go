package search

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"ai-storywriting-be/internal/entity"
	"ai-storywriting-be/internal/repository/contract"
	"ai-storywriting-be/internal/repository/unitofwork"
	"ai-storywriting-be/pkg/embedding"
	"ai-storywriting-be/pkg/rag"

	"github.com/google/uuid"
)

type fakeEmbedder struct {
	values   []float32
	err      error
	lastText string
	lastTask string
}

func (f *fakeEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	f.lastText = text
	f.lastTask = taskType
	if f.err != nil {
		return nil, f.err
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: f.values},
	}, nil
}

type fakeDocEmbeddingRepo struct {
	contract.DocEmbeddingRepository

	scored        []*contract.ScoredDocEmbedding
	err           error
	lastLimit     int
	lastProjectId uuid.UUID
	lastThreshold float64
}

func (f *fakeDocEmbeddingRepo) SearchSimilarWithScore(ctx context.Context, emb []float32, limit int, projectId uuid.UUID, threshold float64) ([]*contract.ScoredDocEmbedding, error) {
	f.lastLimit = limit
	f.lastProjectId = projectId
	f.lastThreshold = threshold
	if f.err != nil {
		return nil, f.err
	}
	return f.scored, nil
}

type fakeUow struct {
	unitofwork.UnitOfWork

	docs contract.DocEmbeddingRepository
}

func (f *fakeUow) DocEmbeddingRepository() contract.DocEmbeddingRepository {
	return f.docs
}

type fakeUowFactory struct {
	uow unitofwork.UnitOfWork
}

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func scoredChunk(similarity float64, docType, title, path, chunk string) *contract.ScoredDocEmbedding {
	return &contract.ScoredDocEmbedding{
		Embedding: &entity.DocEmbedding{
			Id:         uuid.New(),
			ProjectId:  uuid.New(),
			DocId:      uuid.New(),
			DocType:    docType,
			DocTitle:   title,
			SourcePath: path,
			Chunk:      chunk,
		},
		Similarity: similarity,
	}
}

func TestRetrieveMapsScoredChunksToNodes(t *testing.T) {
	repo := &fakeDocEmbeddingRepo{
		scored: []*contract.ScoredDocEmbedding{
			scoredChunk(0.91, "scene", "The Siege", "/ws/projects/p/chapters/c/scenes/s.md", "The gates held through the night."),
			scoredChunk(0.65, "character", "Mara", "/ws/projects/p/characters/m.md", "Mara distrusts the regent."),
		},
	}
	embedder := &fakeEmbedder{values: []float32{0.1, 0.2}}
	s := NewSearcher(embedder, &fakeUowFactory{uow: &fakeUow{docs: repo}}, DefaultConfig(), discardLogger())

	projectID := uuid.New()
	nodes, err := s.Retrieve(context.Background(), projectID.String(), "what happened at the siege", 8)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}

	if embedder.lastTask != "RETRIEVAL_QUERY" {
		t.Errorf("embedding task = %q, want RETRIEVAL_QUERY", embedder.lastTask)
	}
	if repo.lastLimit != 8 {
		t.Errorf("limit = %d, want 8", repo.lastLimit)
	}
	if repo.lastProjectId != projectID {
		t.Errorf("search scoped to %s, want %s", repo.lastProjectId, projectID)
	}

	if len(nodes) != 2 {
		t.Fatalf("got %d nodes, want 2", len(nodes))
	}
	if nodes[0].Meta.DocType != rag.DocTypeScene {
		t.Errorf("node 0 doc type = %q, want scene", nodes[0].Meta.DocType)
	}
	if nodes[0].Score != 0.91 {
		t.Errorf("node 0 score = %v, want 0.91", nodes[0].Score)
	}
	if nodes[1].Meta.DocTitle != "Mara" {
		t.Errorf("node 1 title = %q, want Mara", nodes[1].Meta.DocTitle)
	}
}

func TestRetrieveDropsHitsBelowMinScore(t *testing.T) {
	repo := &fakeDocEmbeddingRepo{
		scored: []*contract.ScoredDocEmbedding{
			scoredChunk(0.80, "plan", "Outline", "", "Act two begins."),
			scoredChunk(0.20, "note", "Stray idea", "", "Maybe dragons?"),
		},
	}
	s := NewSearcher(&fakeEmbedder{values: []float32{0.5}}, &fakeUowFactory{uow: &fakeUow{docs: repo}}, DefaultConfig(), discardLogger())

	nodes, err := s.Retrieve(context.Background(), uuid.NewString(), "act two", 5)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(nodes) != 1 {
		t.Fatalf("got %d nodes, want 1 (weak hit dropped)", len(nodes))
	}
	if nodes[0].Meta.DocTitle != "Outline" {
		t.Errorf("kept node = %q, want Outline", nodes[0].Meta.DocTitle)
	}
}

func TestRetrieveUnknownDocTypeNormalized(t *testing.T) {
	repo := &fakeDocEmbeddingRepo{
		scored: []*contract.ScoredDocEmbedding{
			scoredChunk(0.9, "legacy_type", "Old row", "", "text"),
		},
	}
	s := NewSearcher(&fakeEmbedder{values: []float32{0.5}}, &fakeUowFactory{uow: &fakeUow{docs: repo}}, DefaultConfig(), discardLogger())

	nodes, err := s.Retrieve(context.Background(), uuid.NewString(), "q", 5)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if nodes[0].Meta.DocType != rag.DocTypeUnknown {
		t.Errorf("doc type = %q, want unknown", nodes[0].Meta.DocType)
	}
}

func TestRetrieveInvalidProjectID(t *testing.T) {
	s := NewSearcher(&fakeEmbedder{}, &fakeUowFactory{}, DefaultConfig(), discardLogger())

	_, err := s.Retrieve(context.Background(), "not-a-uuid", "q", 5)
	if err == nil {
		t.Fatal("expected error for invalid project id")
	}
	if !strings.Contains(err.Error(), "invalid project id") {
		t.Errorf("error = %v, want invalid project id", err)
	}
}

func TestRetrieveEmbeddingFailure(t *testing.T) {
	embedErr := errors.New("quota exceeded")
	s := NewSearcher(&fakeEmbedder{err: embedErr}, &fakeUowFactory{}, DefaultConfig(), discardLogger())

	_, err := s.Retrieve(context.Background(), uuid.NewString(), "q", 5)
	if !errors.Is(err, embedErr) {
		t.Errorf("error = %v, want wrapped %v", err, embedErr)
	}
}
