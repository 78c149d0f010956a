// Command provision creates the schema and seeds the admin user, then
// exits. It is safe to run repeatedly.
package main

import (
	"context"
	"log"
	"time"

	"github.com/iliyamo/appregistry/internal/config"
	"github.com/iliyamo/appregistry/internal/database"
	"github.com/iliyamo/appregistry/internal/repository"
)

func main() {
	cfg := config.Load()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.Open(cfg.DB)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	if err := database.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("db: %v", err)
	}
	log.Printf("schema ready (%s)", db.Dialect().Name())

	created, err := repository.NewUserRepo(db, cfg.BcryptCost).EnsureAdmin(ctx, cfg.AdminPassword)
	if err != nil {
		log.Fatalf("seed admin: %v", err)
	}
	if created {
		log.Printf("admin user %q created", repository.AdminUsername)
	} else {
		log.Printf("admin user %q already present", repository.AdminUsername)
	}
}
