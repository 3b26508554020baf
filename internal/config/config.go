package config

import "github.com/kelseyhightower/envconfig"

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken    string `envconfig:"BOT_TOKEN" required:"true"`
	AdminID     int64  `envconfig:"ADMIN_ID" required:"true"`
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	ChannelID   int64  `envconfig:"PRIVATE_CHANNEL_ID" required:"true"`

	ShopID      string `envconfig:"YOO_SHOP_ID" required:"true"`
	ShopSecret  string `envconfig:"YOO_SECRET" required:"true"`
	GatewayMode string `envconfig:"YOO_MODE" default:"LIVE"` // TEST|LIVE
	ReturnURL   string `envconfig:"YOO_RETURN_URL" required:"true"`
	PriceRUB    int    `envconfig:"PRICE_RUB" default:"500"`
	Currency    string `envconfig:"CURRENCY" default:"RUB"`
	Description string `envconfig:"PAYMENT_DESCRIPTION" default:"Private channel access"`

	SupportText     string `envconfig:"SUPPORT_TEXT" default:"🆘 Write to the admin."`
	BroadcastPaceMs int    `envconfig:"BROADCAST_PACE_MS" default:"50"` // delay between sends
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`       // debug|info|warn|error
	HTTPAddr        string `envconfig:"HTTP_ADDR" default:":8080"`      // healthz
}

// Load reads environment variables into Config.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
