package inventory

// Expansion is one sub-collection of the stock, discovered from the
// selection control on the stock page
type Expansion struct {
	Code      string
	Name      string
	CardCount int
}

// StockItem is one listing row of the seller's own inventory. Items are
// value objects; nothing mutates them after the crawl.
type StockItem struct {
	CardName  string  `json:"card_name"`
	MyPrice   float64 `json:"my_price"`
	Quantity  string  `json:"quantity"`
	Expansion string  `json:"expansion"`
	Condition string  `json:"condition"`
	Language  string  `json:"language"`
	Foil      bool    `json:"foil"`
}
