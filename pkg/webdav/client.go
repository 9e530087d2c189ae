package webdav

import (
	"strings"
	"time"

	"github.com/studio-b12/gowebdav"
)

// Some WebDAV providers reject unknown clients with 403, so every request
// carries a desktop-browser User-Agent.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

const (
	DefaultFolder  = "cashier"
	DefaultTimeout = 30 * time.Second
)

// Config is a fully normalized remote-store configuration.
type Config struct {
	URL      string
	Username string
	Password string
	Folder   string
	Timeout  time.Duration
}

// Normalize returns a copy with the URL scheme-prefixed and trailing-slash
// stripped, and the folder defaulted to "cashier".
func (c Config) Normalize() Config {
	c.URL = NormalizeURL(c.URL)
	c.Folder = NormalizeFolder(c.Folder)
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// NormalizeURL trims the URL, prefixes https:// when no scheme is given, and
// strips a trailing slash.
func NormalizeURL(raw string) string {
	formatted := strings.TrimSpace(raw)
	if formatted == "" {
		return ""
	}
	if !strings.HasPrefix(formatted, "http://") && !strings.HasPrefix(formatted, "https://") {
		formatted = "https://" + formatted
	}
	return strings.TrimSuffix(formatted, "/")
}

// NormalizeFolder strips leading/trailing slashes and falls back to the
// default folder name.
func NormalizeFolder(raw string) string {
	folder := strings.Trim(strings.TrimSpace(raw), "/")
	if folder == "" {
		return DefaultFolder
	}
	return folder
}

// NewClient builds a DAV client for the given configuration.
func NewClient(cfg Config) *gowebdav.Client {
	cfg = cfg.Normalize()

	client := gowebdav.NewClient(cfg.URL, cfg.Username, cfg.Password)
	client.SetTimeout(cfg.Timeout)
	client.SetHeader("User-Agent", browserUserAgent)
	client.SetHeader("Accept", "*/*")
	client.SetHeader("Cache-Control", "no-cache")
	return client
}
