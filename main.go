package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"github.com/shehabalqudiry/vend/internal/api"
	"github.com/shehabalqudiry/vend/internal/config"
	"github.com/shehabalqudiry/vend/internal/database"
	"github.com/shehabalqudiry/vend/internal/ledger"
	"github.com/shehabalqudiry/vend/internal/migrations"
	"github.com/shehabalqudiry/vend/internal/seed"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	db := database.Connect(cfg.DatabaseDSN)
	defer db.Close()

	migrations.Run(db)
	seed.LoadProducts(db, cfg.SeedPath)

	handler := api.New(ledger.New(db), cfg.Secret)

	log.Printf("vend ledger server starting on :%s", cfg.HTTPPort)
	if err := http.ListenAndServe(":"+cfg.HTTPPort, handler.Router()); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
