package moderation

import (
	"net/url"
	"strings"
	"time"
)

const (
	DefaultEnvironment = "production"
	DefaultBaseURL     = "https://consensussentry-app.eastus.azurecontainer.io:8080"
	DefaultTimeout     = 5000 * time.Millisecond
)

// Options configures a moderation client. Zero values fall back to the defaults.
type Options struct {
	APIKey      string
	Environment string
	BaseURL     string
	Timeout     time.Duration
}

func (o Options) withDefaults() Options {
	if o.Environment == "" {
		o.Environment = DefaultEnvironment
	}
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	return o
}

func (o Options) validate() error {
	u, err := url.Parse(o.BaseURL)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidBaseURL
	}
	if u.Host == "" {
		return ErrInvalidBaseURL
	}
	return nil
}
