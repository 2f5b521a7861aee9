package config

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	// Test with default values
	config := LoadConfig()
	assert.Equal(t, "https://www.cardmarket.com", config.BaseURL)
	assert.Equal(t, true, config.Headless)
	assert.Equal(t, 20*time.Second, config.LoginTimeout)
	assert.Equal(t, 10*time.Second, config.PageLoadTimeout)
	assert.Equal(t, 1500*time.Millisecond, config.PageDelayMin)
	assert.Equal(t, 3*time.Second, config.PageDelayMax)
	assert.Equal(t, time.Second, config.LookupDelay)
	assert.Equal(t, FetchModeBrowser, config.MarketFetchMode)
	assert.Equal(t, "my_inventory_backup.csv", config.InventoryBackupPath)
	assert.Equal(t, "market_analysis_report.csv", config.ReportPath)
	assert.Equal(t, "", config.MemcacheAddr)
	assert.Equal(t, "", config.RedisAddr)
	assert.Equal(t, "market_analysis", config.RedisStream)

	// Test with environment variables
	os.Setenv("CM_USERNAME", "seller")
	os.Setenv("CARDMARKET_BASE_URL", "https://cardmarket.example.com")
	os.Setenv("PAGE_DELAY_MIN_MS", "100")
	os.Setenv("PAGE_DELAY_MAX_MS", "200")
	os.Setenv("MARKET_FETCH_MODE", "http")
	os.Setenv("REDIS_ADDR", "redis.example.com:6379")

	config = LoadConfig()
	assert.Equal(t, "seller", config.Username)
	assert.Equal(t, "https://cardmarket.example.com", config.BaseURL)
	assert.Equal(t, 100*time.Millisecond, config.PageDelayMin)
	assert.Equal(t, 200*time.Millisecond, config.PageDelayMax)
	assert.Equal(t, FetchModeHTTP, config.MarketFetchMode)
	assert.Equal(t, "redis.example.com:6379", config.RedisAddr)

	// Clean up
	os.Unsetenv("CM_USERNAME")
	os.Unsetenv("CARDMARKET_BASE_URL")
	os.Unsetenv("PAGE_DELAY_MIN_MS")
	os.Unsetenv("PAGE_DELAY_MAX_MS")
	os.Unsetenv("MARKET_FETCH_MODE")
	os.Unsetenv("REDIS_ADDR")
}

func TestValidate(t *testing.T) {
	config := LoadConfig()
	assert.NoError(t, config.Validate())

	config.PageDelayMax = config.PageDelayMin / 2
	assert.Error(t, config.Validate())

	config = LoadConfig()
	config.MarketFetchMode = "carrier-pigeon"
	assert.Error(t, config.Validate())

	config = LoadConfig()
	config.ReportPath = ""
	assert.Error(t, config.Validate())
}

func TestPromptMissingCredentials(t *testing.T) {
	config := &Config{Username: "seller", Password: "secret"}
	var out bytes.Buffer
	assert.NoError(t, config.PromptMissingCredentials(strings.NewReader(""), &out))
	assert.Empty(t, out.String())

	config = &Config{}
	out.Reset()
	err := config.PromptMissingCredentials(strings.NewReader("seller\nsecret\n"), &out)
	assert.NoError(t, err)
	assert.Equal(t, "seller", config.Username)
	assert.Equal(t, "secret", config.Password)
	assert.Contains(t, out.String(), "Username: ")
	assert.Contains(t, out.String(), "Password: ")
}
