package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port         string `envconfig:"PORT" default:"8080"`
	DBDSN        string `envconfig:"DB_DSN" default:"realtysite.db"`
	MediaDir     string `envconfig:"MEDIA_DIR" default:"./web/media"`
	TemplatesDir string `envconfig:"TEMPLATES_DIR" default:"./web/templates"`
	StaticDir    string `envconfig:"STATIC_DIR" default:"./web/static"`
	LogFile      string `envconfig:"LOG_FILE" default:"./realtysite.log"`
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`

	// AssetStore selects where uploaded flyers live: "local" or "gridfs".
	AssetStore    string `envconfig:"ASSET_STORE" default:"local"`
	MongoURI      string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDatabase string `envconfig:"MONGO_DATABASE" default:"realtysite"`

	MaxUploadMB  int  `envconfig:"MAX_UPLOAD_MB" default:"20"`
	CookieSecure bool `envconfig:"COOKIE_SECURE" default:"false"`

	// TimeZone interprets go-live times entered without an offset.
	TimeZone string `envconfig:"SITE_TIMEZONE" default:"America/New_York"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("[config] no .env file, using environment only")
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	log.Printf("[config] PORT=%s DB_DSN=%s MEDIA_DIR=%s ASSET_STORE=%s LOG_FILE=%s LOG_LEVEL=%s",
		cfg.Port, cfg.DBDSN, cfg.MediaDir, cfg.AssetStore, cfg.LogFile, cfg.LogLevel)
	return cfg, nil
}

// MaxUploadBytes is the request body ceiling for the admin upload form.
func (c Config) MaxUploadBytes() int {
	if c.MaxUploadMB <= 0 {
		return 20 << 20
	}
	return c.MaxUploadMB << 20
}

// Location resolves TimeZone, falling back to UTC.
func (c Config) Location() *time.Location {
	if c.TimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		log.Printf("[config] unknown SITE_TIMEZONE %q, using UTC", c.TimeZone)
		return time.UTC
	}
	return loc
}
