package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents the application configuration
type Config struct {
	// Cardmarket credentials
	Username string
	Password string

	// Target site
	BaseURL string

	// Browser configuration
	Headless        bool
	LoginTimeout    time.Duration
	PageLoadTimeout time.Duration

	// Politeness delays
	PageDelayMin time.Duration
	PageDelayMax time.Duration
	LookupDelay  time.Duration

	// How market lookup pages are fetched: "browser" or "http".
	// The public catalog pages need no authentication, so a plain
	// HTTP fetch is a valid alternative to the browser session.
	MarketFetchMode string

	// Output files
	InventoryBackupPath string
	ReportPath          string

	// Memcache configuration (empty means in-memory cache)
	MemcacheAddr string
	BlockTime    time.Duration

	// Redis configuration (empty addr disables publishing)
	RedisAddr         string
	RedisDB           int
	RedisStream       string
	RedisStreamMaxLen int

	// Environment
	Environment string
}

// Fetch mode values for MarketFetchMode.
const (
	FetchModeBrowser = "browser"
	FetchModeHTTP    = "http"
)

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	redisMaxLen, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAXLEN", "500"))
	blockSeconds, _ := strconv.Atoi(getEnv("RATE_LIMIT_BLOCK_SECONDS", "300"))

	return &Config{
		Username:            getEnv("CM_USERNAME", ""),
		Password:            getEnv("CM_PASSWORD", ""),
		BaseURL:             getEnv("CARDMARKET_BASE_URL", "https://www.cardmarket.com"),
		Headless:            getEnv("BROWSER_HEADLESS", "true") == "true",
		LoginTimeout:        durationEnv("LOGIN_TIMEOUT_MS", 20000),
		PageLoadTimeout:     durationEnv("PAGE_LOAD_TIMEOUT_MS", 10000),
		PageDelayMin:        durationEnv("PAGE_DELAY_MIN_MS", 1500),
		PageDelayMax:        durationEnv("PAGE_DELAY_MAX_MS", 3000),
		LookupDelay:         durationEnv("LOOKUP_DELAY_MS", 1000),
		MarketFetchMode:     getEnv("MARKET_FETCH_MODE", FetchModeBrowser),
		InventoryBackupPath: getEnv("INVENTORY_BACKUP_PATH", "my_inventory_backup.csv"),
		ReportPath:          getEnv("REPORT_PATH", "market_analysis_report.csv"),
		MemcacheAddr:        getEnv("MEMCACHE_ADDR", ""),
		BlockTime:           time.Duration(blockSeconds) * time.Second,
		RedisAddr:           getEnv("REDIS_ADDR", ""),
		RedisDB:             redisDB,
		RedisStream:         getEnv("REDIS_STREAM", "market_analysis"),
		RedisStreamMaxLen:   redisMaxLen,
		Environment:         getEnv("CPW_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for values the pipeline cannot run with
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL must not be empty")
	}
	if c.PageDelayMax < c.PageDelayMin {
		return fmt.Errorf("page delay max (%s) is below min (%s)", c.PageDelayMax, c.PageDelayMin)
	}
	if c.MarketFetchMode != FetchModeBrowser && c.MarketFetchMode != FetchModeHTTP {
		return fmt.Errorf("unknown market fetch mode %q", c.MarketFetchMode)
	}
	if c.InventoryBackupPath == "" || c.ReportPath == "" {
		return fmt.Errorf("output paths must not be empty")
	}
	return nil
}

// PromptMissingCredentials asks for the username and password on the
// terminal when either is absent from the environment. This is the
// configuration-sourcing fallback, not an error path.
func (c *Config) PromptMissingCredentials(in io.Reader, out io.Writer) error {
	if c.Username != "" && c.Password != "" {
		return nil
	}

	reader := bufio.NewReader(in)
	if c.Username == "" {
		fmt.Fprint(out, "Username: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read username: %w", err)
		}
		c.Username = strings.TrimSpace(line)
	}
	if c.Password == "" {
		fmt.Fprint(out, "Password: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		c.Password = strings.TrimSpace(line)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// durationEnv reads a millisecond count from the environment
func durationEnv(key string, defaultMillis int) time.Duration {
	millis, err := strconv.Atoi(getEnv(key, strconv.Itoa(defaultMillis)))
	if err != nil || millis < 0 {
		millis = defaultMillis
	}
	return time.Duration(millis) * time.Millisecond
}
