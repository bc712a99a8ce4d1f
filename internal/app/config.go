package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const DefaultConfigPath = "config.json"

type (
	Cfg struct {
		ChainID    int64
		RPCURL     string
		PrivateKey string

		InputToken          string
		OutputToken         string
		AmountPerTurn       string
		LimitPrice          decimal.Decimal
		Side                string
		SlippageBps         int64
		FrequencyPerMinute  int
		DeadlineMinutes     int
		HopThresholdBps     int64
		ConfirmationTimeout time.Duration
		UnsupportedTokens   []string

		LogLevel    string
		Verbose     bool
		MetricsAddr string
		Postgres    Postgres
	}

	Postgres struct {
		Host     string
		Port     string
		User     string
		Password string
		DbName   string
		SslMode  string
		Timezone string
	}
)

var required = []string{"rpc_url", "private_key", "input_token", "output_token", "amount_per_turn", "limit_price"}

func configPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return DefaultConfigPath
}

func initConfig() (*Cfg, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	return LoadConfig(configPath())
}

// LoadConfig reads the policy file at path. Every key can be overridden from
// the environment, postgres.host by POSTGRES_HOST and so on. A missing file
// is not an error when the environment carries the required keys.
func LoadConfig(path string) (*Cfg, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("chain_id", 5)
	v.SetDefault("side", "buy")
	v.SetDefault("slippage_bps", 50)
	v.SetDefault("frequency_per_minute", 15)
	v.SetDefault("deadline_minutes", 20)
	v.SetDefault("hop_threshold_bps", 50)
	v.SetDefault("confirmation_timeout", "5m")
	v.SetDefault("log_level", "info")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.timezone", "UTC")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	for _, key := range required {
		if strings.TrimSpace(v.GetString(key)) == "" {
			return nil, fmt.Errorf("missing %s", key)
		}
	}

	limit, err := decimal.NewFromString(v.GetString("limit_price"))
	if err != nil {
		return nil, fmt.Errorf("invalid limit_price: %w", err)
	}

	cfg := Cfg{
		ChainID:    v.GetInt64("chain_id"),
		RPCURL:     v.GetString("rpc_url"),
		PrivateKey: v.GetString("private_key"),

		InputToken:          v.GetString("input_token"),
		OutputToken:         v.GetString("output_token"),
		AmountPerTurn:       v.GetString("amount_per_turn"),
		LimitPrice:          limit,
		Side:                strings.ToLower(v.GetString("side")),
		SlippageBps:         v.GetInt64("slippage_bps"),
		FrequencyPerMinute:  v.GetInt("frequency_per_minute"),
		DeadlineMinutes:     v.GetInt("deadline_minutes"),
		HopThresholdBps:     v.GetInt64("hop_threshold_bps"),
		ConfirmationTimeout: v.GetDuration("confirmation_timeout"),
		UnsupportedTokens:   v.GetStringSlice("unsupported_tokens"),

		LogLevel:    v.GetString("log_level"),
		Verbose:     v.GetBool("verbose"),
		MetricsAddr: v.GetString("metrics_addr"),
		Postgres: Postgres{
			Host:     v.GetString("postgres.host"),
			Port:     v.GetString("postgres.port"),
			User:     v.GetString("postgres.user"),
			Password: v.GetString("postgres.password"),
			DbName:   v.GetString("postgres.db_name"),
			SslMode:  v.GetString("postgres.sslmode"),
			Timezone: v.GetString("postgres.timezone"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Cfg) validate() error {
	switch {
	case c.Side != "buy" && c.Side != "sell":
		return fmt.Errorf("invalid side %q, expected buy or sell", c.Side)
	case !c.LimitPrice.IsPositive():
		return errors.New("limit_price must be positive")
	case c.SlippageBps < 0 || c.SlippageBps >= 10_000:
		return fmt.Errorf("slippage_bps %d out of range", c.SlippageBps)
	case c.HopThresholdBps < 0:
		return fmt.Errorf("hop_threshold_bps %d out of range", c.HopThresholdBps)
	case c.FrequencyPerMinute < 1:
		return fmt.Errorf("frequency_per_minute must be at least 1, got %d", c.FrequencyPerMinute)
	case c.DeadlineMinutes < 1:
		return fmt.Errorf("deadline_minutes must be at least 1, got %d", c.DeadlineMinutes)
	case c.ConfirmationTimeout <= 0:
		return errors.New("confirmation_timeout must be positive")
	}
	return nil
}
