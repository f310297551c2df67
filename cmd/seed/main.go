package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/seronsenapati/STAYLO/config"
	"github.com/seronsenapati/STAYLO/internal/domain/entity"
	repo "github.com/seronsenapati/STAYLO/internal/domain/repository"
	pginfra "github.com/seronsenapati/STAYLO/internal/infrastructure/postgres"
	"github.com/seronsenapati/STAYLO/pkg/helpers"
)

var sampleListings = []entity.Listing{
	{
		Title:       "Cozy Beachfront Cottage",
		Description: "Escape to this charming cottage with direct beach access.",
		Price:       1500,
		Location:    "Malibu",
		Country:     "United States",
		Image:       entity.Image{URL: "https://images.unsplash.com/photo-1552733407-5d5c46c3bb3b", Filename: "listingimage"},
		Geometry:    entity.Geometry{Type: entity.GeometryPoint, Coordinates: [2]float64{-118.7798, 34.0259}},
	},
	{
		Title:       "Modern Loft in Downtown",
		Description: "Stay in the heart of the city in this stylish loft apartment.",
		Price:       1200,
		Location:    "New York City",
		Country:     "United States",
		Image:       entity.Image{URL: "https://images.unsplash.com/photo-1501785888041-af3ef285b470", Filename: "listingimage"},
		Geometry:    entity.Geometry{Type: entity.GeometryPoint, Coordinates: [2]float64{-74.0060, 40.7128}},
	},
	{
		Title:       "Mountain Retreat",
		Description: "Unplug and unwind in this peaceful mountain cabin.",
		Price:       1000,
		Location:    "Aspen",
		Country:     "United States",
		Image:       entity.Image{URL: "https://images.unsplash.com/photo-1571896349842-33c89424de2d", Filename: "listingimage"},
		Geometry:    entity.Geometry{Type: entity.GeometryPoint, Coordinates: [2]float64{-106.8175, 39.1911}},
	},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	users := pginfra.NewUserRepository(pool)
	listings := pginfra.NewListingRepository(pool)

	username := "demoUser"
	password := "password123"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}
	u := &entity.User{Username: username, Email: "demo@staylo.dev", Password: hash}
	if err := users.Create(ctx, u); err != nil {
		if !errors.Is(err, repo.ErrDuplicate) {
			log.Fatalf("failed to seed user: %v", err)
		}
		if u, err = users.GetByUsername(ctx, username); err != nil {
			log.Fatalf("failed to load existing user: %v", err)
		}
	}
	fmt.Printf("seeded user: id=%s username=%s password=%s\n", u.ID, u.Username, password)

	for i := range sampleListings {
		l := sampleListings[i]
		l.Owner = entity.UserRef{ID: u.ID}
		if err := listings.Create(ctx, &l); err != nil {
			log.Fatalf("failed to seed listing %q: %v", l.Title, err)
		}
		fmt.Printf("seeded listing: id=%s title=%s\n", l.ID, l.Title)
	}
}
