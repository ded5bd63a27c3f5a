package main

import (
	"log"
	"os"

	"ai-storywriting-be/internal/model"
	"ai-storywriting-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Seeding Plan Catalog...")

	// The free tier also exists as a row so the pricing page can render it.
	// Quota numbers must stay in line with the no-subscription fallback.
	plans := []model.Plan{
		{
			Name:             "Free",
			Slug:             "free",
			Description:      "Try StoryFiber with a few projects and a daily taste of the assistant.",
			Tagline:          "For writers trying things out",
			Price:            0,
			TaxRate:          0,
			BillingPeriod:    "monthly",
			MaxProjects:      3,
			AssistDailyLimit: 10,
			SortOrder:        1,
		},
		{
			Name:             "Novelist",
			Slug:             "novelist-monthly",
			Description:      "Unlimited projects and enough assistant calls to draft every day.",
			Tagline:          "For writers working on their first book",
			Price:            9.99,
			TaxRate:          0.11,
			BillingPeriod:    "monthly",
			MaxProjects:      -1,
			AssistDailyLimit: 100,
			IsMostPopular:    true,
			SortOrder:        2,
		},
		{
			Name:             "Novelist",
			Slug:             "novelist-yearly",
			Description:      "Unlimited projects and enough assistant calls to draft every day.",
			Tagline:          "For writers working on their first book",
			Price:            99.99,
			TaxRate:          0.11,
			BillingPeriod:    "yearly",
			MaxProjects:      -1,
			AssistDailyLimit: 100,
			SortOrder:        3,
		},
		{
			Name:             "Studio",
			Slug:             "studio-monthly",
			Description:      "Everything unlimited for authors juggling several manuscripts at once.",
			Tagline:          "For serious authors and co-writing teams",
			Price:            24.99,
			TaxRate:          0.11,
			BillingPeriod:    "monthly",
			MaxProjects:      -1,
			AssistDailyLimit: -1,
			SortOrder:        4,
		},
		{
			Name:             "Studio",
			Slug:             "studio-yearly",
			Description:      "Everything unlimited for authors juggling several manuscripts at once.",
			Tagline:          "For serious authors and co-writing teams",
			Price:            249.99,
			TaxRate:          0.11,
			BillingPeriod:    "yearly",
			MaxProjects:      -1,
			AssistDailyLimit: -1,
			SortOrder:        5,
		},
	}

	for _, p := range plans {
		p.IsActive = true

		var existing model.Plan
		if err := db.Where("slug = ?", p.Slug).First(&existing).Error; err == nil {
			log.Printf("Plan '%s' already exists, skipping...", p.Slug)
			continue
		}

		if err := db.Create(&p).Error; err != nil {
			log.Printf("Error creating plan '%s': %v", p.Slug, err)
		} else {
			log.Printf("Created plan: %s (%s)", p.Name, p.Slug)
		}
	}

	log.Println("✅ Plan seeding completed.")
}
