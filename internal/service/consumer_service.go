package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"ai-storywriting-be/internal/dto"
	"ai-storywriting-be/internal/entity"
	"ai-storywriting-be/internal/repository/unitofwork"
	"ai-storywriting-be/pkg/embedding"
	"ai-storywriting-be/pkg/rag"
	"ai-storywriting-be/pkg/store"
	"ai-storywriting-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService keeps the vector index in step with the workspace. Every
// document write publishes an index message; this worker reads the file,
// chunks it, embeds each chunk and swaps the document's embedding rows in
// one transaction.
type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	workspace         *store.Workspace
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	workspace *store.Workspace,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		workspace:         workspace,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishIndexDocMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal index message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	if payload.Deleted {
		if err := uow.DocEmbeddingRepository().DeleteByDocId(ctx, payload.DocId); err != nil {
			log.Printf("[ERROR] Failed to delete embeddings for doc %s: %v", payload.DocId, err)
			msg.Nack()
			return
		}
		log.Printf("[INFO] Removed embeddings for deleted doc %s", payload.DocId)
		msg.Ack()
		return
	}

	body, err := cs.workspace.Read(payload.Path)
	if err != nil {
		// The file went away between publish and consume. Drop its index
		// entries and move on.
		log.Printf("[WARN] Doc file missing for %s (%s), clearing index: %v", payload.DocId, payload.Path, err)
		if err := uow.DocEmbeddingRepository().DeleteByDocId(ctx, payload.DocId); err != nil {
			log.Printf("[ERROR] Failed to clear embeddings for %s: %v", payload.DocId, err)
			msg.Nack()
			return
		}
		msg.Ack()
		return
	}

	docType := rag.ParseDocumentType(payload.DocType)
	content := fmt.Sprintf("%s: %s\n\n%s", docType.Label(), payload.DocTitle, body)

	log.Printf("[INFO] Indexing %s %q (%d chars)", payload.DocType, payload.DocTitle, len(content))

	// ChunkSize 1500 chars with 200 overlap keeps each chunk well inside
	// the embedding model's context.
	chunks := utils.SplitText(content, 1500, 200)

	var characterName *string
	if payload.CharacterName != "" {
		characterName = &payload.CharacterName
	}

	var newEmbeddings []*entity.DocEmbedding
	for i, chunk := range chunks {
		res, err := cs.embeddingProvider.Generate(chunk, "RETRIEVAL_DOCUMENT")
		if err != nil {
			log.Printf("[ERROR] Failed to embed chunk %d of doc %s: %v", i, payload.DocId, err)
			msg.Nack()
			return
		}

		newEmbeddings = append(newEmbeddings, &entity.DocEmbedding{
			Id:             uuid.New(),
			ProjectId:      payload.ProjectId,
			DocId:          payload.DocId,
			DocType:        payload.DocType,
			DocTitle:       payload.DocTitle,
			CharacterName:  characterName,
			SourcePath:     payload.Path,
			Chunk:          chunk,
			ChunkIndex:     i,
			EmbeddingValue: res.Embedding.Values,
			CreatedAt:      time.Now(),
		})
	}

	if err := uow.Begin(ctx); err != nil {
		log.Printf("[ERROR] Failed to begin transaction: %v", err)
		msg.Nack()
		return
	}
	defer uow.Rollback()

	if err := uow.DocEmbeddingRepository().DeleteByDocId(ctx, payload.DocId); err != nil {
		log.Printf("[ERROR] Failed to delete old embeddings: %v", err)
		msg.Nack()
		return
	}

	if len(newEmbeddings) > 0 {
		if err := uow.DocEmbeddingRepository().CreateBulk(ctx, newEmbeddings); err != nil {
			log.Printf("[ERROR] Failed to create bulk embeddings: %v", err)
			msg.Nack()
			return
		}
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[ERROR] Failed to commit transaction: %v", err)
		msg.Nack()
		return
	}

	log.Printf("[SUCCESS] Doc indexed: %d chunks for %s %q", len(newEmbeddings), payload.DocType, payload.DocTitle)
	msg.Ack()
}
