package main

import (
	"context"
	"flag"
	"log"
	"time"

	"ai-storywriting-be/internal/config"
	"ai-storywriting-be/internal/repository/specification"
	"ai-storywriting-be/internal/repository/unitofwork"
	"ai-storywriting-be/pkg/database"
	"ai-storywriting-be/pkg/store"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

// Reaps soft-deleted rows once their grace period is over. Deleting a
// project or an account in the app only flips deleted_at; this job does the
// real cleanup: child rows, index entries, workspace files, then the row
// itself. Safe to rerun, meant for a daily cron.
func main() {
	days := flag.Int("days", 30, "reap rows soft-deleted at least this many days ago")
	dryRun := flag.Bool("dry-run", false, "report what would be reaped without deleting")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env: %v", err)
	}
	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("DB connection failed: %v", err)
	}

	workspace, err := store.NewWorkspace(cfg.Workspace.Root)
	if err != nil {
		log.Fatalf("Workspace open failed: %v", err)
	}

	uowFactory := unitofwork.NewRepositoryFactory(db)
	ctx := context.Background()
	cutoff := time.Now().AddDate(0, 0, -*days)

	// 1. Projects the owner deleted in the app.
	var projectIds []uuid.UUID
	db.Raw("SELECT id FROM projects WHERE deleted_at IS NOT NULL AND deleted_at < ?", cutoff).Scan(&projectIds)
	log.Printf("Found %d soft-deleted projects past the %d day grace period", len(projectIds), *days)

	for _, id := range projectIds {
		if *dryRun {
			log.Printf("[DRY RUN] Would reap project %s", id)
			continue
		}
		if err := reapProject(ctx, db, uowFactory, workspace, id); err != nil {
			log.Printf("Error reaping project %s: %v", id, err)
		} else {
			log.Printf("Reaped project %s", id)
		}
	}

	// 2. Deleted accounts. Their projects go first, deleted or not.
	var userIds []uuid.UUID
	db.Raw("SELECT id FROM users WHERE deleted_at IS NOT NULL AND deleted_at < ?", cutoff).Scan(&userIds)
	log.Printf("Found %d deleted accounts past the %d day grace period", len(userIds), *days)

	for _, userId := range userIds {
		if *dryRun {
			log.Printf("[DRY RUN] Would reap account %s", userId)
			continue
		}

		var owned []uuid.UUID
		db.Raw("SELECT id FROM projects WHERE user_id = ?", userId).Scan(&owned)
		failed := false
		for _, pid := range owned {
			if err := reapProject(ctx, db, uowFactory, workspace, pid); err != nil {
				log.Printf("Error reaping project %s of account %s: %v", pid, userId, err)
				failed = true
			}
		}
		if failed {
			// Leave the account for the next run so nothing is orphaned.
			continue
		}

		if err := reapUser(ctx, db, uowFactory, userId); err != nil {
			log.Printf("Error reaping account %s: %v", userId, err)
		} else {
			log.Printf("Reaped account %s", userId)
		}
	}

	log.Println("Done.")
}

func reapProject(ctx context.Context, db *gorm.DB, factory unitofwork.RepositoryFactory, workspace *store.Workspace, projectId uuid.UUID) error {
	uow := factory.NewUnitOfWork(ctx)

	// Assist messages hang off sessions, not the project, so they are
	// cleared session by session before the sessions go.
	sessions, err := uow.AssistSessionRepository().FindAll(ctx, specification.ByProjectID{ProjectID: projectId})
	if err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	for _, sess := range sessions {
		if err := uow.AssistMessageRepository().DeleteBySessionId(ctx, sess.Id); err != nil {
			return err
		}
	}
	if err := uow.AssistSessionRepository().DeleteAllByProjectIdUnscoped(ctx, projectId); err != nil {
		return err
	}
	if err := uow.ActivityRepository().DeleteAllByProjectIdUnscoped(ctx, projectId); err != nil {
		return err
	}
	if err := uow.SceneRepository().DeleteAllByProjectIdUnscoped(ctx, projectId); err != nil {
		return err
	}
	if err := uow.ChapterRepository().DeleteAllByProjectIdUnscoped(ctx, projectId); err != nil {
		return err
	}
	if err := uow.CharacterRepository().DeleteAllByProjectIdUnscoped(ctx, projectId); err != nil {
		return err
	}
	if err := uow.NoteRepository().DeleteAllByProjectIdUnscoped(ctx, projectId); err != nil {
		return err
	}
	if err := uow.DocEmbeddingRepository().DeleteByProjectIdUnscoped(ctx, projectId); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	// Files and the row go after the children commit. A crash between
	// these steps leaves a bare project row that the next run picks up.
	if err := workspace.RemoveProject(projectId); err != nil {
		return err
	}
	return db.Exec("DELETE FROM projects WHERE id = ?", projectId).Error
}

func reapUser(ctx context.Context, db *gorm.DB, factory unitofwork.RepositoryFactory, userId uuid.UUID) error {
	uow := factory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.SubscriptionRepository().DeleteAllSubscriptionsByUserIdUnscoped(ctx, userId); err != nil {
		return err
	}
	if err := uow.CreditRepository().DeleteAllByUserIdUnscoped(ctx, userId); err != nil {
		return err
	}
	if err := uow.ProjectRepository().DeleteAllByUserIdUnscoped(ctx, userId); err != nil {
		return err
	}
	if err := uow.UserRepository().DeleteUnscoped(ctx, userId); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	// Billing addresses have no repository delete; the schema keeps them
	// only for checkout prefill.
	return db.Exec("DELETE FROM billing_addresses WHERE user_id = ?", userId).Error
}
