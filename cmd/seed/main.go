// Command main runs the database seeder for IM Hub.
package main

import (
	"context"
	"flag"
	"log"

	"imhub/internal/config"
	"imhub/internal/database"
	"imhub/internal/seed"
)

func main() {
	numContacts := flag.Int("contacts", 40, "Number of demo contacts to create")
	numResources := flag.Int("resources", 20, "Number of demo resources to create")
	numSubmissions := flag.Int("submissions", 8, "Number of pending contact submissions to create")
	announcements := flag.String("announcements", "", "Directory of markdown announcements to import (defaults to ANNOUNCEMENTS_DIR)")
	randomSeed := flag.Int64("seed", 0, "Fixed seed for fake data (0 = random)")
	shouldClean := flag.Bool("clean", false, "Remove directory rows before seeding")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.ApplySchema(context.Background(), db, cfg); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	dir := *announcements
	if dir == "" {
		dir = cfg.AnnouncementsDir
	}

	if err := seed.Seed(db, seed.Options{
		NumContacts:      *numContacts,
		NumResources:     *numResources,
		NumSubmissions:   *numSubmissions,
		AnnouncementsDir: dir,
		ShouldClean:      *shouldClean,
		RandomSeed:       *randomSeed,
	}); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✨ All done! Your database is now populated with demo data.")
}
