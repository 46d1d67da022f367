// seed-catalog creates products (and their opening stock) from a JSON file.
// Products whose code already exists are left alone.
//
// Usage (from backend directory):
//   DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-catalog -file catalog.json
//
// File format:
//   [{"name": "Green tea", "code": "TEA-01", "price": "4.50", "unit": "box", "stock": "20"}]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/mmdatafocus/shop_backend/config"
	"github.com/mmdatafocus/shop_backend/models"
	"github.com/mmdatafocus/shop_backend/utils"
	"github.com/shopspring/decimal"
)

type seedProduct struct {
	models.NewProduct
	Stock decimal.Decimal `json:"stock"`
}

func main() {
	file := flag.String("file", "", "Required: JSON file with products")
	migrate := flag.Bool("migrate", false, "Run AutoMigrate before seeding")
	dryRun := flag.Bool("dry-run", false, "Only validate the file")
	flag.Parse()

	if *file == "" && !*migrate {
		fmt.Fprintln(os.Stderr, "--file is required (or --migrate to only migrate)")
		os.Exit(1)
	}

	var products []seedProduct
	if *file != "" {
		data, err := os.ReadFile(*file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read %s: %v\n", *file, err)
			os.Exit(1)
		}
		if err := json.Unmarshal(data, &products); err != nil {
			fmt.Fprintf(os.Stderr, "failed to parse %s: %v\n", *file, err)
			os.Exit(1)
		}
	}
	if *dryRun {
		fmt.Printf("%d products in %s\n", len(products), *file)
		return
	}

	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	if *migrate {
		if err := models.MigrateTable(); err != nil {
			fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("migrated")
	}

	created, skipped := 0, 0
	for _, p := range products {
		product, err := models.CreateProduct(ctx, &p.NewProduct)
		var validationErr *utils.ValidationError
		if errors.As(err, &validationErr) && validationErr.Field == "code" {
			skipped++
			continue
		} else if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create %q: %v\n", p.Code, err)
			os.Exit(1)
		}
		if p.Stock.IsPositive() {
			if _, err := models.SetStock(ctx, product.ID, p.Stock); err != nil {
				fmt.Fprintf(os.Stderr, "failed to set stock of %q: %v\n", p.Code, err)
				os.Exit(1)
			}
		}
		created++
	}
	fmt.Printf("created=%d skipped=%d\n", created, skipped)
}
