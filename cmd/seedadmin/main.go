// Command seedadmin creates the admin account named by ADMIN_NAME,
// ADMIN_EMAIL and ADMIN_PASSWORD. Running it again is a no-op.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/01moynul/medistore/internal/auth"
	"github.com/01moynul/medistore/internal/config"
	"github.com/01moynul/medistore/internal/database"
	"github.com/01moynul/medistore/internal/service"
	"github.com/01moynul/medistore/internal/store"
	"github.com/joho/godotenv"
)

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("Missing required environment variable: %s", key)
	}
	return v
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: Could not find or load .env file. Relying on system environment variables.")
	}
	cfg := config.Load()

	name, email, password := mustEnv("ADMIN_NAME"), mustEnv("ADMIN_EMAIL"), mustEnv("ADMIN_PASSWORD")

	db, err := database.OpenDB(cfg.DBDSN, 2)
	if err != nil {
		log.Fatalf("Failed to connect to primary database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if cfg.DBAutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
	}

	users := service.NewUserService(store.New(db), auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL))

	log.Printf("Seeding admin: %s", email)
	created, err := users.SeedAdmin(ctx, name, email, password)
	if err != nil {
		log.Fatalf("Admin seeding failed: %v", err)
	}
	if !created {
		log.Println("Admin already exists in DB.")
		return
	}
	log.Println("Admin created.")
}
