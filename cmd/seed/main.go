// Command main runs the database seeder for PropNest.
package main

import (
	"flag"
	"log"

	"propnest/internal/config"
	"propnest/internal/database"
	"propnest/internal/seed"
)

func main() {
	numListings := flag.Int("listings", 100, "Number of listings to create")
	numUsers := flag.Int("users", 20, "Number of demo users with wishlists")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d listings, %d users, clean=%v\n", *numListings, *numUsers, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db)

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	properties, err := s.SeedListings(*numListings)
	if err != nil {
		log.Fatalf("Listing seeding failed: %v", err)
	}
	if err := s.SeedWishlists(*numUsers, properties); err != nil {
		log.Fatalf("Wishlist seeding failed: %v", err)
	}

	log.Println("All done! Your database is now populated with demo data.")
}
