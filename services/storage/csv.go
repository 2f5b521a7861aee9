package storage

import (
	"encoding/csv"
	"os"
	"strconv"

	"cardpricewatcher/internal/inventory"
	"cardpricewatcher/internal/market"
	errs "cardpricewatcher/pkg/errors"
)

var inventoryHeader = []string{
	"card_name", "my_price", "quantity", "expansion", "condition", "language", "foil",
}

var reportHeader = append(append([]string{}, inventoryHeader...),
	"market_min", "market_median", "market_samples", "diff")

// WriteInventory writes the crawled stock snapshot. It runs before the
// market pass as a safety checkpoint, so a failed analysis never loses
// the crawl.
func WriteInventory(path string, items []inventory.StockItem) error {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, itemFields(item))
	}
	return writeCSV(path, inventoryHeader, rows)
}

// WriteReport writes the final analysis report. Market cells are left
// empty when an item has no market data, keeping "no quotes found"
// distinct from a real zero price.
func WriteReport(path string, records []market.Record) error {
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		row := itemFields(record.StockItem)
		if record.HasMarketData() {
			row = append(row,
				formatPrice(record.MarketMin),
				formatPrice(record.MarketMedian),
				strconv.Itoa(record.Samples),
				formatPrice(record.Diff))
		} else {
			row = append(row, "", "", "0", "")
		}
		rows = append(rows, row)
	}
	return writeCSV(path, reportHeader, rows)
}

func itemFields(item inventory.StockItem) []string {
	return []string{
		item.CardName,
		formatPrice(item.MyPrice),
		item.Quantity,
		item.Expansion,
		item.Condition,
		item.Language,
		strconv.FormatBool(item.Foil),
	}
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return errs.NewStorage("storage", "create "+path, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(header); err != nil {
		return errs.NewStorage("storage", "write header to "+path, err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return errs.NewStorage("storage", "write record to "+path, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return errs.NewStorage("storage", "flush "+path, err)
	}
	return nil
}
