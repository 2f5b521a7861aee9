package worker

import (
	"encoding/json"

	"cardpricewatcher/config"
	"cardpricewatcher/internal/inventory"
	"cardpricewatcher/internal/market"
	"cardpricewatcher/internal/session"
	"cardpricewatcher/logger"
	"cardpricewatcher/services/publisher"
	"cardpricewatcher/services/storage"
)

// InventorySource provides the crawled stock
type InventorySource interface {
	FetchInventory() ([]inventory.StockItem, error)
}

// MarketAnalyzer turns stock items into analysis records
type MarketAnalyzer interface {
	Analyze(items []inventory.StockItem) []market.Record
}

// Worker sequences the whole pipeline: login, inventory crawl, backup
// snapshot, market analysis, final report, optional publishing.
type Worker struct {
	sess     session.Session
	source   InventorySource
	analyzer MarketAnalyzer
	pub      publisher.Publisher
	cfg      *config.Config
	log      *logger.Logger
}

// NewWorker creates a worker; pub may be nil to disable publishing
func NewWorker(
	sess session.Session,
	source InventorySource,
	analyzer MarketAnalyzer,
	pub publisher.Publisher,
	cfg *config.Config,
	log *logger.Logger,
) *Worker {
	return &Worker{
		sess:     sess,
		source:   source,
		analyzer: analyzer,
		pub:      pub,
		cfg:      cfg,
		log:      log,
	}
}

// Run executes one full pipeline pass. A failed login ends the run without
// an error; the session resource stays owned by the caller.
func (w *Worker) Run() error {
	creds := session.Credentials{Username: w.cfg.Username, Password: w.cfg.Password}
	if !session.Login(w.sess, w.cfg.BaseURL, creds, w.cfg.LoginTimeout, w.log) {
		w.log.Error().Msg("Authentication failed; nothing will be crawled")
		return nil
	}

	w.log.Info().Msg("Downloading inventory")
	items, err := w.source.FetchInventory()
	if err != nil {
		return err
	}
	w.log.Info().Int("items", len(items)).Msg("Inventory downloaded")

	// Safety checkpoint before the long market pass
	if err := storage.WriteInventory(w.cfg.InventoryBackupPath, items); err != nil {
		return err
	}
	w.log.Info().Str("path", w.cfg.InventoryBackupPath).Msg("Inventory backup written")

	w.log.Info().Msg("Analyzing market prices")
	records := w.analyzer.Analyze(items)

	if err := storage.WriteReport(w.cfg.ReportPath, records); err != nil {
		return err
	}
	w.log.Info().
		Str("path", w.cfg.ReportPath).
		Int("records", len(records)).
		Msg("Analysis report written")

	w.publish(records)
	w.preview(records)
	return nil
}

// publish forwards records to the configured publisher; delivery failures
// never fail the run, the CSV report is already on disk
func (w *Worker) publish(records []market.Record) {
	if w.pub == nil {
		return
	}
	published := 0
	for _, record := range records {
		data, err := json.Marshal(record)
		if err != nil {
			w.log.Warn().Err(err).Str("card", record.CardName).Msg("Could not marshal record")
			continue
		}
		if err := w.pub.Publish("analysis", data); err != nil {
			w.log.Warn().Err(err).Str("card", record.CardName).Msg("Could not publish record")
			continue
		}
		published++
	}
	w.log.Info().Int("published", published).Msg("Records published")
}

// preview logs the first few records so a run's outcome is visible without
// opening the report
func (w *Worker) preview(records []market.Record) {
	limit := 5
	if len(records) < limit {
		limit = len(records)
	}
	for _, record := range records[:limit] {
		w.log.Info().
			Str("card", record.CardName).
			Float64("my_price", record.MyPrice).
			Float64("market_min", record.MarketMin).
			Float64("diff", record.Diff).
			Msg("Preview")
	}
}
