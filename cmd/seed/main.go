// Package main seeds the profile store with the demo community profiles.
//
// The tool reads the same flags and environment as the server and does
// nothing when profiles already exist.
//
// Usage:
//
//	go run ./cmd/seed
//	go run ./cmd/seed --data-path ~/sensifinder --db-driver sqlite
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sensifinder/sensifinder-server/internal/config"
	"github.com/sensifinder/sensifinder-server/internal/domain"
	"github.com/sensifinder/sensifinder-server/internal/id"
	"github.com/sensifinder/sensifinder-server/internal/search"
	"github.com/sensifinder/sensifinder-server/internal/sensitivity"
	"github.com/sensifinder/sensifinder-server/internal/store/sqlstore"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := os.MkdirAll(cfg.Data.Path, 0o750); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	dsn := cfg.Database.DSN
	if cfg.Database.Driver == config.DriverSQLite && dsn == "" {
		dsn = cfg.SQLitePath()
	}

	ctx := context.Background()

	fmt.Printf("Opening %s database\n", cfg.Database.Driver)
	s, err := sqlstore.Open(ctx, sqlstore.Options{
		Driver: sqlstore.Driver(cfg.Database.Driver),
		DSN:    dsn,
	})
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	count, err := s.CountProfiles(ctx)
	if err != nil {
		log.Fatalf("Failed to count profiles: %v", err)
	}
	if count > 0 {
		fmt.Printf("Database already has %d profiles, nothing to do\n", count)
		return
	}

	var names []string
	for _, p := range demoProfiles() {
		if !p.Camera.InRange() || !p.ADS.InRange() || (p.Gyro != nil && !p.Gyro.InRange()) {
			log.Fatalf("Demo profile %s has a value outside %d..%d",
				p.DeviceName, sensitivity.MinValue, sensitivity.MaxValue)
		}

		profileID, err := id.Generate(id.PrefixProfile)
		if err != nil {
			log.Fatalf("Failed to generate ID: %v", err)
		}
		p.ID = profileID

		if err := s.CreateProfile(ctx, p); err != nil {
			log.Fatalf("Failed to create profile for %s: %v", p.DeviceName, err)
		}
		names = append(names, p.DeviceName)
		fmt.Printf("  + %-20s %-10s %3d upvotes\n", p.DeviceName, p.Game, p.Upvotes)
	}

	// The server rebuilds an empty index on startup, so a locked index is not fatal.
	idx, err := search.NewDeviceIndex(search.Options{Path: cfg.SearchIndexPath()})
	if err != nil {
		fmt.Printf("Skipping device index: %v\n", err)
	} else {
		if err := idx.Add(names...); err != nil {
			fmt.Printf("Failed to index devices: %v\n", err)
		}
		_ = idx.Close()
	}

	fmt.Printf("\nSeeded %d profiles\n", len(names))
}

// stepped returns a vector falling by step per tier from no scope to 8x.
func stepped(start, step int) sensitivity.ScopeSensitivity {
	return sensitivity.ScopeSensitivity{
		NoScope: start,
		RedDot:  start - step,
		X2:      start - 2*step,
		X3:      start - 3*step,
		X4:      start - 4*step,
		X6:      start - 5*step,
		X8:      start - 6*step,
	}
}

// gyroCurve keeps no scope and red dot at peak, then falls 20 per scope.
func gyroCurve(peak int) *sensitivity.ScopeSensitivity {
	g := sensitivity.ScopeSensitivity{
		NoScope: peak,
		RedDot:  peak,
		X2:      peak - 20,
		X3:      peak - 40,
		X4:      peak - 60,
		X6:      peak - 80,
		X8:      peak - 100,
	}
	return &g
}

func date(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func demoProfiles() []*domain.SensitivityProfile {
	return []*domain.SensitivityProfile{
		{
			Game:        sensitivity.GameBGMI,
			DeviceName:  "iPhone 13 Pro",
			ShareCode:   "7245913680",
			Camera:      stepped(95, 10),
			ADS:         stepped(90, 10),
			Gyro:        gyroCurve(300),
			GyroEnabled: true,
			Upvotes:     156,
			CreatedAt:   date("2024-01-15T10:30:00Z"),
		},
		{
			Game:       sensitivity.GameBGMI,
			DeviceName: "Redmi Note 10 Pro",
			ShareCode:  "8834521907",
			Camera:     stepped(100, 10),
			ADS:        stepped(95, 10),
			Upvotes:    89,
			CreatedAt:  date("2024-01-10T14:20:00Z"),
		},
		{
			Game:        sensitivity.GameFreeFire,
			DeviceName:  "Samsung Galaxy S24",
			ShareCode:   "FF9283746501",
			Camera:      stepped(85, 10),
			ADS:         stepped(80, 10),
			Gyro:        gyroCurve(250),
			GyroEnabled: true,
			Upvotes:     72,
			CreatedAt:   date("2024-01-12T09:15:00Z"),
		},
		{
			Game:       sensitivity.GameCOD,
			DeviceName: "OnePlus 12",
			ShareCode:  "COD2024PRO",
			Camera:     stepped(110, 10),
			ADS:        stepped(105, 10),
			Upvotes:    54,
			CreatedAt:  date("2024-01-08T16:45:00Z"),
		},
		{
			Game:        sensitivity.GamePUBG,
			DeviceName:  "iPad Pro 12.9",
			ShareCode:   "5567891234",
			Camera:      stepped(88, 10),
			ADS:         stepped(85, 10),
			Gyro:        gyroCurve(280),
			GyroEnabled: true,
			Upvotes:     45,
			CreatedAt:   date("2024-01-05T11:30:00Z"),
		},
		{
			Game:       sensitivity.GameBGMI,
			DeviceName: "Poco F5",
			ShareCode:  "3321654987",
			Camera:     stepped(92, 10),
			ADS:        stepped(88, 10),
			Upvotes:    38,
			CreatedAt:  date("2024-01-03T08:00:00Z"),
		},
	}
}
