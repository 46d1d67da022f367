package reports

import (
	"context"
	"io"
	"time"

	"github.com/mmdatafocus/shop_backend/models"
)

type StockHistoryRow struct {
	UpdateTimestamp time.Time
	StockSize       float64
	Unit            string
}

func (r StockHistoryRow) GetCellValues() []interface{} {
	return []interface{}{r.UpdateTimestamp.UTC().Format(time.RFC3339Nano), r.StockSize, r.Unit}
}

func GetStockHistoryRows(ctx context.Context, productId int) (*models.Product, []StockHistoryRow, error) {
	product, err := models.GetProduct(ctx, productId)
	if err != nil {
		return nil, nil, err
	}
	history, err := models.ListStockHistory(ctx, productId)
	if err != nil {
		return nil, nil, err
	}
	rows := make([]StockHistoryRow, 0, len(history))
	for _, entry := range history {
		size, _ := entry.StockSize.Float64()
		rows = append(rows, StockHistoryRow{
			UpdateTimestamp: entry.UpdateTimestamp,
			StockSize:       size,
			Unit:            product.Unit,
		})
	}
	return product, rows, nil
}

// ExportStockHistory writes the product's stock ledger, newest first, as an xlsx workbook.
func ExportStockHistory(ctx context.Context, w io.Writer, productId int) error {
	_, rows, err := GetStockHistoryRows(ctx, productId)
	if err != nil {
		return err
	}
	return writeExcel(w, rows, "UpdateTimestamp", "StockSize", "Unit")
}
