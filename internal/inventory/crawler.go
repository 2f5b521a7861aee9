package inventory

import (
	"fmt"
	"strconv"
	"strings"

	"cardpricewatcher/helpers"
	"cardpricewatcher/logger"
	errs "cardpricewatcher/pkg/errors"
	"cardpricewatcher/services/fetcher"

	"github.com/PuerkitoBio/goquery"
)

// PageSize is the number of listings Cardmarket serves per stock page.
// It is part of the external system's contract, not a tunable.
const PageSize = 20

const (
	stockPath     = "/en/Magic/Stock/Offers/Singles"
	listingsTable = "#UserOffersTable"
)

// Crawler extracts the seller's own inventory from the authenticated stock
// pages. Extraction is best effort: failed rows and failed pages are
// skipped, which under-counts the inventory rather than aborting it.
type Crawler struct {
	fetcher fetcher.PageFetcher
	baseURL string
	log     *logger.Logger
}

// NewCrawler creates an inventory crawler
func NewCrawler(pageFetcher fetcher.PageFetcher, baseURL string, log *logger.Logger) *Crawler {
	return &Crawler{fetcher: pageFetcher, baseURL: baseURL, log: log}
}

// DiscoverExpansions parses the expansion selection control on the stock
// landing page into expansions with a nonzero card count
func (c *Crawler) DiscoverExpansions() ([]Expansion, error) {
	doc, err := c.fetcher.Fetch(c.baseURL+stockPath+"?", "")
	if err != nil {
		return nil, err
	}

	var expansions []Expansion
	doc.Find(`select[name="idExpansion"] option`).Each(func(i int, s *goquery.Selection) {
		code, _ := s.Attr("value")
		if exp, ok := parseExpansionOption(code, s.Text()); ok {
			expansions = append(expansions, exp)
		}
	})

	c.log.Info().Int("expansions", len(expansions)).Msg("Discovered expansions with stock")
	return expansions, nil
}

// parseExpansionOption parses a "Name (N)" option label. Labels without a
// parseable count get count zero and are excluded.
func parseExpansionOption(code, label string) (Expansion, bool) {
	name, countText := helpers.SplitTrailingParen(strings.TrimSpace(label))
	count, err := strconv.Atoi(countText)
	if err != nil {
		count = 0
	}
	if count <= 0 {
		return Expansion{}, false
	}
	return Expansion{Code: code, Name: name, CardCount: count}, true
}

// FetchInventory crawls every discovered expansion page by page and returns
// all successfully parsed listings in discovery, page, and document order
func (c *Crawler) FetchInventory() ([]StockItem, error) {
	expansions, err := c.DiscoverExpansions()
	if err != nil {
		return nil, err
	}

	var items []StockItem
	for _, exp := range expansions {
		c.log.Info().
			Str("expansion", exp.Name).
			Int("cards", exp.CardCount).
			Msg("Crawling expansion")

		totalPages := (exp.CardCount + PageSize - 1) / PageSize
		for page := 1; page <= totalPages; page++ {
			pageItems, err := c.fetchPage(exp, page)
			if err != nil {
				// A skipped page under-counts the inventory; accepted.
				c.log.Warn().
					Err(err).
					Str("expansion", exp.Name).
					Int("page", page).
					Msg("Skipping page")
				continue
			}
			items = append(items, pageItems...)
		}
	}

	c.log.Info().Int("items", len(items)).Msg("Inventory crawl finished")
	return items, nil
}

func (c *Crawler) fetchPage(exp Expansion, page int) ([]StockItem, error) {
	url := fmt.Sprintf("%s%s?idExpansion=%s&site=%d", c.baseURL, stockPath, exp.Code, page)
	doc, err := c.fetcher.Fetch(url, listingsTable)
	if err != nil {
		return nil, err
	}

	var items []StockItem
	doc.Find("div.article-row").Each(func(i int, row *goquery.Selection) {
		item, err := parseRow(row, exp.Name)
		if err != nil {
			c.log.Debug().Err(err).Str("expansion", exp.Name).Msg("Skipping row")
			return
		}
		items = append(items, item)
	})
	return items, nil
}

// parseRow extracts one listing. A missing name or malformed price fails
// the row only; the caller skips it and keeps the page.
func parseRow(row *goquery.Selection, expansionName string) (StockItem, error) {
	name := strings.TrimSpace(row.Find("a").First().Text())
	if name == "" {
		return StockItem{}, errs.NewParsing("inventory", "listing row without a card name", nil)
	}

	rawPrice := "0.0"
	if priceSel := row.Find("span.color-primary").First(); priceSel.Length() > 0 {
		rawPrice = priceSel.Text()
	}
	price, err := ParsePrice(rawPrice)
	if err != nil {
		return StockItem{}, errs.NewParsing("inventory", "malformed price for "+name, err)
	}

	quantity := "0"
	if qtySel := row.Find("span.item-count").First(); qtySel.Length() > 0 {
		quantity = strings.TrimSpace(qtySel.Text())
	}

	condition := "N/A"
	if condSel := row.Find("a.article-condition").First(); condSel.Length() > 0 {
		condition = strings.TrimSpace(condSel.Text())
	}

	language := row.Find("span.icon").First().AttrOr("data-bs-original-title", "N/A")

	return StockItem{
		CardName:  name,
		MyPrice:   price,
		Quantity:  quantity,
		Expansion: expansionName,
		Condition: condition,
		Language:  language,
		Foil:      row.Find("span.st_SpecialIcon").Length() > 0,
	}, nil
}

// ParsePrice converts a display price like "12,50 €" to its numeric value
func ParsePrice(raw string) (float64, error) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(raw, "€", ""))
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	return strconv.ParseFloat(cleaned, 64)
}
