package market

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"cardpricewatcher/internal/inventory"
	"cardpricewatcher/internal/normalize"
	"cardpricewatcher/logger"
	"cardpricewatcher/services/fetcher"

	"github.com/PuerkitoBio/goquery"
)

const (
	productsPath = "/en/Magic/Products/Singles"

	// Only offers from Spanish sellers are comparable to this stock
	sellerCountryParam = "sellerCountry=10"

	// Structural selector for offer prices on the product page
	priceSelector = "span.color-primary.small.text-end.text-nowrap.fw-bold"
)

// Quote summarizes the surviving competitor prices for one card.
// Samples is zero when no usable price was observed, which is distinct
// from a real zero price.
type Quote struct {
	Min     float64
	Median  float64
	Samples int
}

// Record is the terminal analysis entity: one per StockItem, even when the
// market lookup failed (Samples stays zero and Diff is meaningless then).
type Record struct {
	inventory.StockItem
	MarketMin    float64 `json:"market_min"`
	MarketMedian float64 `json:"market_median"`
	Samples      int     `json:"market_samples"`
	Diff         float64 `json:"diff"`
}

// HasMarketData reports whether the lookup produced any usable quote
func (r Record) HasMarketData() bool {
	return r.Samples > 0
}

// Aggregator looks up competing offers for every stock item and derives
// summary statistics
type Aggregator struct {
	fetcher fetcher.PageFetcher
	tables  normalize.Tables
	baseURL string
	log     *logger.Logger
}

// NewAggregator creates a market aggregator with injected mapping tables
func NewAggregator(pageFetcher fetcher.PageFetcher, tables normalize.Tables, baseURL string, log *logger.Logger) *Aggregator {
	return &Aggregator{fetcher: pageFetcher, tables: tables, baseURL: baseURL, log: log}
}

// Analyze produces one Record per item, in input order. Per-item failures
// yield partial records and never abort the batch.
func (a *Aggregator) Analyze(items []inventory.StockItem) []Record {
	records := make([]Record, 0, len(items))
	for i, item := range items {
		a.log.Info().
			Int("item", i+1).
			Int("total", len(items)).
			Str("card", item.CardName).
			Msg("Looking up market prices")

		record := Record{StockItem: item}
		quote, err := a.lookup(item)
		if err != nil {
			a.log.Warn().Err(err).Str("card", item.CardName).Msg("Market lookup failed; keeping partial record")
			records = append(records, record)
			continue
		}

		record.MarketMin = quote.Min
		record.MarketMedian = quote.Median
		record.Samples = quote.Samples
		record.Diff = round2(item.MyPrice - quote.Min)
		records = append(records, record)
	}
	return records
}

func (a *Aggregator) lookup(item inventory.StockItem) (Quote, error) {
	doc, err := a.fetcher.Fetch(a.LookupURL(item), "")
	if err != nil {
		return Quote{}, err
	}
	return Summarize(collectPrices(doc)), nil
}

// LookupURL builds the public catalog URL for one stock item
func (a *Aggregator) LookupURL(item inventory.StockItem) string {
	url := fmt.Sprintf("%s%s/%s/%s?%s",
		a.baseURL, productsPath,
		a.tables.SetSlug(item.Expansion),
		a.tables.CardSlug(item.CardName),
		sellerCountryParam)
	if id, ok := a.tables.LanguageID(item.Language); ok {
		url += "&language=" + strconv.Itoa(id)
	}
	return url
}

// collectPrices extracts the observed offer prices from a product page,
// discarding individual values that fail numeric conversion
func collectPrices(doc *goquery.Document) []float64 {
	var raw []string
	doc.Find(priceSelector).Each(func(i int, s *goquery.Selection) {
		raw = append(raw, s.Text())
	})

	var prices []float64
	for _, text := range dedupeRenderedPrices(raw) {
		price, err := inventory.ParsePrice(text)
		if err != nil {
			continue
		}
		prices = append(prices, price)
	}
	return prices
}

// dedupeRenderedPrices keeps only the second node of each rendered pair.
// The product page renders every offer price twice in adjacent structures,
// so counting all matches would double every observation. If the site's
// markup changes, this is the one place to fix.
func dedupeRenderedPrices(raw []string) []string {
	var kept []string
	for i, text := range raw {
		if i%2 == 1 {
			kept = append(kept, text)
		}
	}
	return kept
}

// Summarize computes min and median over the surviving prices. An empty
// list yields zeros with Samples 0, the explicit "no data" state.
func Summarize(prices []float64) Quote {
	if len(prices) == 0 {
		return Quote{}
	}

	sorted := make([]float64, len(prices))
	copy(sorted, prices)
	sort.Float64s(sorted)

	median := sorted[len(sorted)/2]
	if len(sorted)%2 == 0 {
		median = (sorted[len(sorted)/2-1] + sorted[len(sorted)/2]) / 2
	}

	return Quote{
		Min:     sorted[0],
		Median:  median,
		Samples: len(sorted),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
