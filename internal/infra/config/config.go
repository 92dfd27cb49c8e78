package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Load error policies for the chart command.
const (
	OnLoadErrorEmpty = "empty" // render empty charts and exit 0
	OnLoadErrorFail  = "fail"  // abort with a non-zero exit
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Chart    ChartConfig    `mapstructure:"chart"`
	GitHub   GitHubConfig   `mapstructure:"github"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

type AppConfig struct {
	DataDir string `mapstructure:"data_dir"`
	LogDir  string `mapstructure:"log_dir"`
}

// ChartConfig - canvas geometry and output options
type ChartConfig struct {
	Width        int    `mapstructure:"width"`
	Height       int    `mapstructure:"height"`
	MarginTop    int    `mapstructure:"margin_top"`
	MarginRight  int    `mapstructure:"margin_right"`
	MarginBottom int    `mapstructure:"margin_bottom"`
	MarginLeft   int    `mapstructure:"margin_left"`
	TickMonths   int    `mapstructure:"tick_months"`
	PNG          bool   `mapstructure:"png"`
	OnLoadError  string `mapstructure:"on_load_error"`
}

// GitHubConfig - GitHub REST API used by collect
type GitHubConfig struct {
	Token           string `mapstructure:"token"`
	BaseURL         string `mapstructure:"base_url"`
	RequestTimeout  int    `mapstructure:"request_timeout"` // seconds
	MaxRetries      int    `mapstructure:"max_retries"`
	PerPage         int    `mapstructure:"per_page"`
	MaxResponseSize int64  `mapstructure:"max_response_size"`
}

type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	Theme    string `mapstructure:"theme"` // theme of the published PNG
}

// RegisterFlags adds one flag per config key to fs. Flag values win over
// every other source when set.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("app.data_dir", "data", "Base dir of stats data (env: RELEASE_STATS_DATA_DIR)")
	fs.String("app.log_dir", "logs", "Directory for app.log (env: RELEASE_STATS_LOG_DIR)")

	fs.Int("chart.width", 800, "Chart width in px")
	fs.Int("chart.height", 400, "Chart height in px")
	fs.Int("chart.margin_top", 40, "Top margin in px")
	fs.Int("chart.margin_right", 70, "Right margin in px")
	fs.Int("chart.margin_bottom", 60, "Bottom margin in px")
	fs.Int("chart.margin_left", 40, "Left margin in px")
	fs.Int("chart.tick_months", 6, "Months between X axis ticks")
	fs.Bool("chart.png", false, "Also write PNG charts (env: RELEASE_STATS_PNG)")
	fs.String("chart.on_load_error", OnLoadErrorEmpty, "What to do when stats.json cannot be loaded: empty or fail (env: RELEASE_STATS_ON_LOAD_ERROR)")

	fs.String("github.base_url", "https://api.github.com", "GitHub API base URL")
	fs.Int("github.request_timeout", 30, "Request timeout in seconds")
	fs.Int("github.max_retries", 3, "Max retries for failed requests")
	fs.Int("github.per_page", 100, "Releases per page")

	fs.String("telegram.chat_id", "", "Telegram chat to publish to (env: TELEGRAM_CHAT_ID)")
	fs.String("telegram.theme", "dark", "Theme of the published chart")
}

// LoadConfig merges, lowest priority first:
// 1. defaults
// 2. config.yaml
// 3. .env file
// 4. environment
// 5. flags in fs (may be nil)
func LoadConfig(fs *pflag.FlagSet) (*Config, error) {
	_ = godotenv.Load(".env") // optional

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	}

	// chart.width is read from CHART_WIDTH
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func bindEnv(v *viper.Viper) {
	v.BindEnv("app.data_dir", "RELEASE_STATS_DATA_DIR")
	v.BindEnv("app.log_dir", "RELEASE_STATS_LOG_DIR")

	v.BindEnv("chart.png", "RELEASE_STATS_PNG")
	v.BindEnv("chart.on_load_error", "RELEASE_STATS_ON_LOAD_ERROR")

	v.BindEnv("github.token", "GITHUB_API_TOKEN")
	v.BindEnv("github.base_url", "GITHUB_API_URL")

	v.BindEnv("telegram.bot_token", "TELEGRAM_BOT_TOKEN")
	v.BindEnv("telegram.chat_id", "TELEGRAM_CHAT_ID")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.data_dir", "data")
	v.SetDefault("app.log_dir", "logs")

	v.SetDefault("chart.width", 800)
	v.SetDefault("chart.height", 400)
	v.SetDefault("chart.margin_top", 40)
	v.SetDefault("chart.margin_right", 70)
	v.SetDefault("chart.margin_bottom", 60)
	v.SetDefault("chart.margin_left", 40)
	v.SetDefault("chart.tick_months", 6)
	v.SetDefault("chart.png", false)
	v.SetDefault("chart.on_load_error", OnLoadErrorEmpty)

	v.SetDefault("github.token", "")
	v.SetDefault("github.base_url", "https://api.github.com")
	v.SetDefault("github.request_timeout", 30)
	v.SetDefault("github.max_retries", 3)
	v.SetDefault("github.per_page", 100)
	v.SetDefault("github.max_response_size", 10*1024*1024) // 10MB

	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", "")
	v.SetDefault("telegram.theme", "dark")
}

func validateConfig(cfg *Config) error {
	c := cfg.Chart
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("chart size must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.MarginTop < 0 || c.MarginRight < 0 || c.MarginBottom < 0 || c.MarginLeft < 0 {
		return fmt.Errorf("chart margins must not be negative")
	}
	if c.MarginLeft+c.MarginRight >= c.Width || c.MarginTop+c.MarginBottom >= c.Height {
		return fmt.Errorf("chart margins leave no plot area")
	}
	if c.TickMonths <= 0 {
		return fmt.Errorf("chart.tick_months must be positive, got %d", c.TickMonths)
	}
	switch c.OnLoadError {
	case OnLoadErrorEmpty, OnLoadErrorFail:
	default:
		return fmt.Errorf("chart.on_load_error must be %q or %q, got %q", OnLoadErrorEmpty, OnLoadErrorFail, c.OnLoadError)
	}
	if cfg.GitHub.PerPage <= 0 || cfg.GitHub.PerPage > 100 {
		return fmt.Errorf("github.per_page must be in 1..100, got %d", cfg.GitHub.PerPage)
	}
	return nil
}
