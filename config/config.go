package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"json"`
	TimeZone    string `envconfig:"TIME_ZONE" default:"UTC"`

	// SiteURL is the public root, e.g. https://example.org. When empty the
	// root of the current request is used.
	SiteURL   string `envconfig:"SITE_URL"`
	AdminPath string `envconfig:"ADMIN_PATH" default:"/admin"`
	// SiteName keys the web stories settings row.
	SiteName string `envconfig:"SITE_NAME" default:"default"`

	Auth0Domain       string `envconfig:"AUTH0_DOMAIN"`
	Auth0Audience     string `envconfig:"AUTH0_AUDIENCE"`
	Auth0ClientID     string `envconfig:"AUTH0_CLIENT_ID"`
	Auth0ClientSecret string `envconfig:"AUTH0_CLIENT_SECRET"`
	Auth0CallbackURL  string `envconfig:"AUTH0_CALLBACK_URL"`

	R2Endpoint         string `envconfig:"R2_ENDPOINT"`
	MediaBucket        string `envconfig:"MEDIA_BUCKET"`
	MediaPublicURL     string `envconfig:"MEDIA_PUBLIC_URL"`
	AWSAccessKeyID     string `envconfig:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `envconfig:"AWS_SECRET_ACCESS_KEY"`
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	cfg.SiteURL = strings.TrimRight(cfg.SiteURL, "/")
	cfg.AdminPath = "/" + strings.Trim(cfg.AdminPath, "/")
	return &cfg, nil
}

func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIME_ZONE %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

// AuthEnabled reports whether the Auth0 settings needed for JWT checks are present.
func (c *Config) AuthEnabled() bool {
	return c.Auth0Domain != "" && c.Auth0Audience != ""
}

// OAuthEnabled reports whether editors can sign in through the browser.
func (c *Config) OAuthEnabled() bool {
	return c.AuthEnabled() && c.Auth0ClientID != "" && c.Auth0ClientSecret != "" && c.Auth0CallbackURL != ""
}

func (c *Config) MediaEnabled() bool {
	return c.MediaBucket != "" && c.AWSAccessKeyID != "" && c.AWSSecretAccessKey != ""
}
