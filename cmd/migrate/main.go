package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-dayreport/internal/config"
	"ms-dayreport/internal/models"
)

// Creates the tables the report service reads and writes. The events, orders
// and order_items tables mirror the upstream systems' shapes; column_prefs is
// owned by this service.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.Database.Username, cfg.Database.Password,
		cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)

	sqldb, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("Failed to open Postgres connection: %v", err)
	}
	defer sqldb.Close()

	bunDB := bun.NewDB(sqldb, pgdialect.New())
	ctx := context.Background()

	tables := []interface{}{
		(*models.Event)(nil),
		(*models.Order)(nil),
		(*models.OrderItem)(nil),
		(*models.ColumnPref)(nil),
	}

	for _, table := range tables {
		if _, err := bunDB.NewCreateTable().Model(table).IfNotExists().Exec(ctx); err != nil {
			log.Fatalf("Failed to create table for %T: %v", table, err)
		}
	}

	log.Println("Migration complete")
}
