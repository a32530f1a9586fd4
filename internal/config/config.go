// Package config
package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

/*
YAML config example:
symbol: "ETH-USDT"
quantity: 0.006
rsi_period: 14
overbought: 70
oversold: 30
socket_url: "wss://stream.binance.com:9443/ws/ethusdt@kline_1m"
listen_addr: ":8080"
mode: "paper"
wallex_api_key: "..."
db_conn_str: "..."
telegram_token: "..."
telegram_chat: "..."
snapshot_spec: "@every 1m"
autostart: false
*/

type Config struct {
	Symbol        string        `yaml:"symbol"`
	Quantity      float64       `yaml:"quantity"`
	RSIPeriod     int           `yaml:"rsi_period"`
	Overbought    float64       `yaml:"overbought"`
	Oversold      float64       `yaml:"oversold"`
	SocketURL     string        `yaml:"socket_url"`
	ListenAddr    string        `yaml:"listen_addr"`
	Mode          string        `yaml:"mode"` // "paper" or "live"
	WallexAPIKey  string        `yaml:"wallex_api_key"`
	DBConnStr     string        `yaml:"db_conn_str"`
	TelegramToken string        `yaml:"telegram_token"`
	TelegramChat  string        `yaml:"telegram_chat"`
	OrderTimeout  time.Duration `yaml:"order_timeout"`
	LogFile       string        `yaml:"log_file"`
	SnapshotSpec  string        `yaml:"snapshot_spec"`
	Autostart     bool          `yaml:"autostart"`
}

func loadConfig() (Config, error) {
	symbol := flag.String("symbol", "ETH-USDT", "Trading symbol")
	quantity := flag.Float64("quantity", 0.006, "Fixed trade quantity per order")
	rsiPeriod := flag.Int("rsi-period", 14, "RSI lookback period")
	overbought := flag.Float64("overbought", 70, "RSI overbought threshold")
	oversold := flag.Float64("oversold", 30, "RSI oversold threshold")
	socketURL := flag.String("socket-url", "wss://stream.binance.com:9443/ws/ethusdt@kline_1m", "Candle stream websocket URL")
	listenAddr := flag.String("listen-addr", ":8080", "HTTP control surface listen address")
	mode := flag.String("mode", "paper", "Order mode: paper or live")
	orderTimeout := flag.Duration("order-timeout", 10*time.Second, "Timeout for order submission")
	logFile := flag.String("log-file", "rsi-bot.log", "Log file path")
	snapshotSpec := flag.String("snapshot-spec", "@every 1m", "Cron spec for periodic status snapshot logging")
	autostart := flag.Bool("autostart", false, "Start trading immediately instead of waiting for POST /start")
	configFile := flag.String("config", "", "Path to YAML config file")
	flag.Parse()

	if *configFile != "" {
		data, err := os.ReadFile(*configFile)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file: %w", err)
		}
		fileCfg.applyDefaults()
		fileCfg.applyEnv()
		return fileCfg, nil
	}

	cfg := Config{
		Symbol:       *symbol,
		Quantity:     *quantity,
		RSIPeriod:    *rsiPeriod,
		Overbought:   *overbought,
		Oversold:     *oversold,
		SocketURL:    *socketURL,
		ListenAddr:   *listenAddr,
		Mode:         *mode,
		OrderTimeout: *orderTimeout,
		LogFile:      *logFile,
		SnapshotSpec: *snapshotSpec,
		Autostart:    *autostart,
	}
	cfg.applyEnv()
	return cfg, nil
}

// applyDefaults fills zero-valued fields of a YAML-loaded config so a minimal
// file only needs to name the symbol and thresholds it cares about.
func (c *Config) applyDefaults() {
	if c.RSIPeriod == 0 {
		c.RSIPeriod = 14
	}
	if c.Overbought == 0 {
		c.Overbought = 70
	}
	if c.Oversold == 0 {
		c.Oversold = 30
	}
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
	if c.Mode == "" {
		c.Mode = "paper"
	}
	if c.OrderTimeout == 0 {
		c.OrderTimeout = 10 * time.Second
	}
	if c.LogFile == "" {
		c.LogFile = "rsi-bot.log"
	}
	if c.SnapshotSpec == "" {
		c.SnapshotSpec = "@every 1m"
	}
}

// applyEnv lets secrets come from the environment so they never land in
// flags or config files checked into a repo.
func (c *Config) applyEnv() {
	if v := os.Getenv("WALLEX_API_KEY"); v != "" {
		c.WallexAPIKey = v
	}
	if v := os.Getenv("DB_CONN_STR"); v != "" {
		c.DBConnStr = v
	}
	if v := os.Getenv("TELEGRAM_TOKEN"); v != "" {
		c.TelegramToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.TelegramChat = v
	}
}

func (c Config) Validate() error {
	if c.Symbol == "" {
		return fmt.Errorf("symbol is required")
	}
	if c.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive, got %v", c.Quantity)
	}
	if c.RSIPeriod <= 0 {
		return fmt.Errorf("rsi period must be positive, got %d", c.RSIPeriod)
	}
	if c.Oversold <= 0 || c.Oversold >= c.Overbought || c.Overbought > 100 {
		return fmt.Errorf("thresholds must satisfy 0 < oversold < overbought <= 100, got oversold=%v overbought=%v", c.Oversold, c.Overbought)
	}
	if c.SocketURL == "" {
		return fmt.Errorf("socket url is required")
	}
	if c.Mode != "paper" && c.Mode != "live" {
		return fmt.Errorf("mode must be paper or live, got %q", c.Mode)
	}
	if c.Mode == "live" && c.WallexAPIKey == "" {
		return fmt.Errorf("live mode requires WALLEX_API_KEY")
	}
	return nil
}

func MustLoadConfig() Config {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}
	return cfg
}
