package inventory

import (
	"errors"
	"strings"
	"testing"

	"cardpricewatcher/logger"
	"cardpricewatcher/services/fetcher"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
)

// stubFetcher serves canned markup per URL and records requests
type stubFetcher struct {
	pages     map[string]string
	failOn    map[string]bool
	requested []string
}

var _ fetcher.PageFetcher = (*stubFetcher)(nil)

func (f *stubFetcher) Fetch(url string, waitFor string) (*goquery.Document, error) {
	f.requested = append(f.requested, url)
	if f.failOn[url] {
		return nil, errors.New("page load timed out")
	}
	html, ok := f.pages[url]
	if !ok {
		return nil, errors.New("no page for " + url)
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

const baseURL = "https://www.cardmarket.com"

func landingPage(options string) string {
	return `<html><body><select name="idExpansion">` + options + `</select></body></html>`
}

func offerRow(name, price, extra string) string {
	return `<div class="article-row"><a href="/x">` + name + `</a>` +
		`<span class="color-primary">` + price + `</span>` + extra + `</div>`
}

func offersPage(rows ...string) string {
	return `<html><body><div id="UserOffersTable">` + strings.Join(rows, "") + `</div></body></html>`
}

func newTestCrawler(f *stubFetcher) *Crawler {
	return NewCrawler(f, baseURL, logger.ForComponent("inventory_test"))
}

func TestDiscoverExpansions(t *testing.T) {
	f := &stubFetcher{pages: map[string]string{
		baseURL + "/en/Magic/Stock/Offers/Singles?": landingPage(
			`<option value="10">Alpha Edition (45)</option>` +
				`<option value="11">Promos</option>` +
				`<option value="12">Ice Age (garbled)</option>` +
				`<option value="13">Tempest (0)</option>` +
				`<option value="14">Core 2021 (3)</option>`),
	}}

	expansions, err := newTestCrawler(f).DiscoverExpansions()
	assert.NoError(t, err)
	assert.Equal(t, []Expansion{
		{Code: "10", Name: "Alpha Edition", CardCount: 45},
		{Code: "14", Name: "Core 2021", CardCount: 3},
	}, expansions)
}

func TestParseExpansionOption(t *testing.T) {
	exp, ok := parseExpansionOption("7", "Alpha Edition (45)")
	assert.True(t, ok)
	assert.Equal(t, Expansion{Code: "7", Name: "Alpha Edition", CardCount: 45}, exp)

	// No parenthesized suffix means count zero, which is excluded
	_, ok = parseExpansionOption("8", "Promos")
	assert.False(t, ok)

	// Malformed counts default to zero
	_, ok = parseExpansionOption("9", "Ice Age (soon)")
	assert.False(t, ok)
}

func TestFetchInventoryPageMath(t *testing.T) {
	stock := baseURL + "/en/Magic/Stock/Offers/Singles"
	f := &stubFetcher{pages: map[string]string{
		stock + "?": landingPage(`<option value="10">Alpha Edition (45)</option>` +
			`<option value="20">Tempest (20)</option>`),
		stock + "?idExpansion=10&site=1": offersPage(offerRow("Black Lotus", "9,50 €", "")),
		stock + "?idExpansion=10&site=2": offersPage(),
		stock + "?idExpansion=10&site=3": offersPage(),
		stock + "?idExpansion=20&site=1": offersPage(),
	}}

	items, err := newTestCrawler(f).FetchInventory()
	assert.NoError(t, err)
	assert.Len(t, items, 1)

	// 45 cards -> 3 pages, 20 cards -> exactly 1 page
	assert.Equal(t, []string{
		stock + "?",
		stock + "?idExpansion=10&site=1",
		stock + "?idExpansion=10&site=2",
		stock + "?idExpansion=10&site=3",
		stock + "?idExpansion=20&site=1",
	}, f.requested)
}

func TestFetchInventorySkipsFailedPages(t *testing.T) {
	stock := baseURL + "/en/Magic/Stock/Offers/Singles"
	f := &stubFetcher{
		pages: map[string]string{
			stock + "?": landingPage(`<option value="10">Alpha Edition (25)</option>`),
			stock + "?idExpansion=10&site=2": offersPage(offerRow("Counterspell", "1,20 €", "")),
		},
		failOn: map[string]bool{stock + "?idExpansion=10&site=1": true},
	}

	items, err := newTestCrawler(f).FetchInventory()
	assert.NoError(t, err)
	// Page 1 timed out but page 2 still contributed its rows
	assert.Len(t, items, 1)
	assert.Equal(t, "Counterspell", items[0].CardName)
}

func TestParseRowFields(t *testing.T) {
	html := offersPage(offerRow("Brainstorm", "12,50 €",
		`<span class="item-count">3</span>`+
			`<a class="article-condition">NM</a>`+
			`<span class="icon" data-bs-original-title="Spanish"></span>`+
			`<span class="st_SpecialIcon"></span>`))
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	assert.NoError(t, err)

	item, err := parseRow(doc.Find("div.article-row").First(), "Alpha Edition")
	assert.NoError(t, err)
	assert.Equal(t, StockItem{
		CardName:  "Brainstorm",
		MyPrice:   12.50,
		Quantity:  "3",
		Expansion: "Alpha Edition",
		Condition: "NM",
		Language:  "Spanish",
		Foil:      true,
	}, item)
}

func TestParseRowDefaults(t *testing.T) {
	// No price, quantity, condition, language, or foil marker
	html := offersPage(`<div class="article-row"><a href="/x">Island</a></div>`)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	assert.NoError(t, err)

	item, err := parseRow(doc.Find("div.article-row").First(), "Tempest")
	assert.NoError(t, err)
	assert.Equal(t, 0.0, item.MyPrice)
	assert.Equal(t, "0", item.Quantity)
	assert.Equal(t, "N/A", item.Condition)
	assert.Equal(t, "N/A", item.Language)
	assert.False(t, item.Foil)
}

func TestParseRowFailures(t *testing.T) {
	// A row without a card name fails, as does an unparsable price
	html := offersPage(
		`<div class="article-row"><span class="color-primary">1,00 €</span></div>`,
		offerRow("Sol Ring", "N/A", ""))
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	assert.NoError(t, err)

	rows := doc.Find("div.article-row")
	_, err = parseRow(rows.Eq(0), "Tempest")
	assert.Error(t, err)
	_, err = parseRow(rows.Eq(1), "Tempest")
	assert.Error(t, err)
}

func TestBadRowsDoNotAbortThePage(t *testing.T) {
	stock := baseURL + "/en/Magic/Stock/Offers/Singles"
	f := &stubFetcher{pages: map[string]string{
		stock + "?": landingPage(`<option value="10">Tempest (2)</option>`),
		stock + "?idExpansion=10&site=1": offersPage(
			offerRow("Sol Ring", "not-a-price", ""),
			offerRow("Counterspell", "1,20 €", "")),
	}}

	items, err := newTestCrawler(f).FetchInventory()
	assert.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, "Counterspell", items[0].CardName)
	assert.Equal(t, 1.20, items[0].MyPrice)
}

func TestParsePrice(t *testing.T) {
	price, err := ParsePrice("12,50 €")
	assert.NoError(t, err)
	assert.Equal(t, 12.50, price)

	price, err = ParsePrice("0.0")
	assert.NoError(t, err)
	assert.Equal(t, 0.0, price)

	_, err = ParsePrice("N/A")
	assert.Error(t, err)
}
