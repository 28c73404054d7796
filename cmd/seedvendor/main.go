// Command seedvendor creates or updates a professional profile in the
// vendor directory used to enrich booking responses.
//
//	seedvendor -id vendor-1 -name "Jane Doe" -phone "+15550100"
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/pro-booking/internal/config"
	"github.com/iliyamo/pro-booking/internal/database"
	"github.com/iliyamo/pro-booking/internal/model"
	"github.com/iliyamo/pro-booking/internal/repository"
)

func main() {
	_ = godotenv.Load()

	id := flag.String("id", "", "professional id (the JWT subject they sign in with)")
	name := flag.String("name", "", "display name")
	phone := flag.String("phone", "", "contact phone")
	flag.Parse()
	if *id == "" || *name == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if cfg.Migrate {
		if err := database.Migrate(ctx, db, cfg.DBDriver); err != nil {
			log.Fatalf("db migrate: %v", err)
		}
	}
	v := model.Vendor{ID: *id, Name: *name, Phone: *phone}
	if err := repository.NewVendorRepo(db).Upsert(ctx, v); err != nil {
		log.Fatalf("upsert vendor: %v", err)
	}
	log.Printf("vendor %s saved", v.ID)
}
