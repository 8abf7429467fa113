package seed

import (
	"fmt"
	"log"

	"imhub/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumContacts      int
	NumResources     int
	NumSubmissions   int
	AnnouncementsDir string
	ShouldClean      bool
	// RandomSeed fixes the fake data generator; zero picks a random seed.
	RandomSeed int64
}

// Seed populates the database with the built-in groups and demo directory data.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("🌱 Seeding %d contacts, %d resources and %d submissions...",
		opts.NumContacts, opts.NumResources, opts.NumSubmissions)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			return fmt.Errorf("failed to clear existing data: %w", err)
		}
	}

	if err := Groups(db); err != nil {
		return err
	}
	log.Printf("✓ %d built-in groups ensured", len(BuiltInGroups))

	f := NewFactory(db, opts.RandomSeed)

	contacts, err := f.CreateContacts(opts.NumContacts)
	if err != nil {
		return fmt.Errorf("failed to create contacts: %w", err)
	}
	log.Printf("✓ %d contacts created", len(contacts))

	resources, err := f.CreateResources(opts.NumResources)
	if err != nil {
		return fmt.Errorf("failed to create resources: %w", err)
	}
	log.Printf("✓ %d resources created", len(resources))

	submissions, err := f.CreateSubmissions(opts.NumSubmissions)
	if err != nil {
		return fmt.Errorf("failed to create submissions: %w", err)
	}
	log.Printf("✓ %d pending submissions created", len(submissions))

	if opts.AnnouncementsDir != "" {
		n, err := ImportAnnouncements(db, opts.AnnouncementsDir)
		if err != nil {
			return fmt.Errorf("failed to import announcements: %w", err)
		}
		log.Printf("✓ %d announcements imported", n)
	}

	log.Println("🎉 Database seeding completed successfully!")
	return nil
}

// clearData removes directory rows. Users and short links are kept.
func clearData(db *gorm.DB) error {
	log.Println("🗑️  Clearing existing data...")
	tx := db.Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, m := range []any{
		&models.Group{}, &models.Resource{}, &models.ContactSubmission{},
		&models.Contact{}, &models.Announcement{},
	} {
		if err := tx.Delete(m).Error; err != nil {
			return err
		}
	}
	return nil
}
