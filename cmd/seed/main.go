// seed upserts the reference rows a fresh database needs before inventory
// can be received: a sample client, two warehouses and their locations.
// Clients, warehouses and locations are otherwise managed outside this service.
//
// Usage: go run ./cmd/seed
package main

import (
	"context"
	"log"
	"os"

	"github.com/carlosf02/acg-propack/internal/config"
	"github.com/carlosf02/acg-propack/internal/db"
)

func main() {
	cfg, err := config.Load(os.Getenv("PROPACK_CONFIG"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.Postgres.DSN, 1)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	log.Println("Restoring clients...")
	_, err = tx.Exec(ctx, `
		INSERT INTO clients (client_code, name)
		VALUES ('ACME', 'Acme Imports'), ('GLOBEX', 'Globex Freight')
		ON CONFLICT (client_code) DO UPDATE SET name = EXCLUDED.name;
	`)
	if err != nil {
		log.Fatalf("Failed to restore clients: %v", err)
	}

	log.Println("Restoring warehouses...")
	_, err = tx.Exec(ctx, `
		INSERT INTO warehouses (code, name)
		VALUES ('MIA', 'Miami'), ('ORL', 'Orlando')
		ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name;
	`)
	if err != nil {
		log.Fatalf("Failed to restore warehouses: %v", err)
	}

	log.Println("Restoring storage locations...")
	_, err = tx.Exec(ctx, `
		INSERT INTO storage_locations (warehouse_id, code, location_type)
		SELECT w.id, l.code, l.location_type
		FROM warehouses w
		JOIN (VALUES
		    ('MIA', 'RCV-01',  'RECEIVING'),
		    ('MIA', 'A-01-01', 'STORAGE'),
		    ('MIA', 'A-01-02', 'STORAGE'),
		    ('MIA', 'PCK-01',  'PACKING'),
		    ('MIA', 'SHP-01',  'SHIPPING'),
		    ('ORL', 'RCV-01',  'RECEIVING'),
		    ('ORL', 'B-01-01', 'STORAGE')
		) AS l(warehouse_code, code, location_type) ON l.warehouse_code = w.code
		ON CONFLICT (warehouse_id, code) DO UPDATE
		  SET location_type = EXCLUDED.location_type,
		      is_active = true;
	`)
	if err != nil {
		log.Fatalf("Failed to restore locations: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}
	log.Println("Seed data restored.")
}
