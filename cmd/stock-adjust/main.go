package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mmdatafocus/shop_backend/config"
	"github.com/mmdatafocus/shop_backend/models"
	"github.com/mmdatafocus/shop_backend/utils"
)

func main() {
	productID := flag.Int("product-id", 0, "Required: products.id")
	op := flag.String("op", "", "Required: set, add or reduce")
	size := flag.String("size", "", "Required: stock size or delta")
	dryRun := flag.Bool("dry-run", true, "Show current stock only (no writes)")
	confirm := flag.String("confirm", "", "Type ADJUST to proceed when dry-run=false")
	flag.Parse()

	if *productID <= 0 || strings.TrimSpace(*size) == "" {
		fmt.Fprintln(os.Stderr, "--product-id and --size are required")
		os.Exit(1)
	}
	amount, err := utils.ParseDecimal(*size)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid --size: %v\n", err)
		os.Exit(1)
	}
	if !*dryRun && strings.TrimSpace(*confirm) != "ADJUST" {
		fmt.Fprintln(os.Stderr, "set --confirm=ADJUST to proceed")
		os.Exit(1)
	}

	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}
	ctx := context.Background()

	current, err := models.GetCurrentStock(ctx, *productID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "not found: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("product_id=%d stock_size=%s update_timestamp=%s\n", current.ProductId, current.StockSize.StringFixed(2), current.UpdateTimestamp.Format("2006-01-02 15:04:05.000000"))
	if *dryRun {
		return
	}

	var entry *models.ProductStock
	switch *op {
	case "set":
		entry, err = models.SetStock(ctx, *productID, amount)
	case "add":
		entry, err = models.IncreaseStock(ctx, *productID, amount)
	case "reduce":
		entry, err = models.DecreaseStock(ctx, *productID, amount)
	default:
		fmt.Fprintln(os.Stderr, "--op must be set, add or reduce")
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "adjust failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("new stock_size=%s\n", entry.StockSize.StringFixed(2))
}
