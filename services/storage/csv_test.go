package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"cardpricewatcher/internal/inventory"
	"cardpricewatcher/internal/market"

	"github.com/stretchr/testify/assert"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	assert.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	assert.NoError(t, err)
	return rows
}

func TestWriteInventory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.csv")

	items := []inventory.StockItem{
		{CardName: "Brainstorm", MyPrice: 12.5, Quantity: "3", Expansion: "Alpha Edition",
			Condition: "NM", Language: "Spanish", Foil: true},
		{CardName: "Island", MyPrice: 0, Quantity: "0", Expansion: "Tempest",
			Condition: "N/A", Language: "N/A"},
	}
	assert.NoError(t, WriteInventory(path, items))

	rows := readCSV(t, path)
	assert.Len(t, rows, 3)
	assert.Equal(t, inventoryHeader, rows[0])
	assert.Equal(t, []string{"Brainstorm", "12.50", "3", "Alpha Edition", "NM", "Spanish", "true"}, rows[1])
	assert.Equal(t, []string{"Island", "0.00", "0", "Tempest", "N/A", "N/A", "false"}, rows[2])
}

func TestWriteReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")

	records := []market.Record{
		{
			StockItem: inventory.StockItem{CardName: "Bonecrusher Giant", MyPrice: 4,
				Quantity: "1", Expansion: "Throne of Eldraine", Condition: "NM", Language: "English"},
			MarketMin: 3, MarketMedian: 3, Samples: 3, Diff: 1,
		},
		{
			// Failed lookup: original fields preserved, market cells empty
			StockItem: inventory.StockItem{CardName: "Black Lotus", MyPrice: 9000,
				Quantity: "1", Expansion: "Alpha Edition", Condition: "PO", Language: "English"},
		},
	}
	assert.NoError(t, WriteReport(path, records))

	rows := readCSV(t, path)
	assert.Len(t, rows, 3)
	assert.Equal(t, reportHeader, rows[0])
	assert.Equal(t, []string{"Bonecrusher Giant", "4.00", "1", "Throne of Eldraine", "NM", "English", "false",
		"3.00", "3.00", "3", "1.00"}, rows[1])
	assert.Equal(t, []string{"Black Lotus", "9000.00", "1", "Alpha Edition", "PO", "English", "false",
		"", "", "0", ""}, rows[2])
}

func TestWriteInventoryEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	assert.NoError(t, WriteInventory(path, nil))

	rows := readCSV(t, path)
	assert.Len(t, rows, 1)
	assert.Equal(t, inventoryHeader, rows[0])
}

func TestWriteInventoryBadPath(t *testing.T) {
	err := WriteInventory(filepath.Join(t.TempDir(), "missing", "backup.csv"), nil)
	assert.Error(t, err)
}
