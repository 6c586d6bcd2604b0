package config

import (
	"encoding/json"
	"flag"
	"os"
	"strings"
)

type Config struct {
	// server
	Port        string `json:"port"`
	CatalogsDir string `json:"catalogsDir"`
	DBURL       string `json:"dbUrl"` // empty = in-memory only

	// console
	APIBaseURL string `json:"apiBaseUrl"`

	// cookies / dev credential
	SessionCookie string `json:"sessionCookie"`
	CSRFCookie    string `json:"csrfCookie"`
	DevUser       string `json:"devUser"`
	DevPass       string `json:"devPass"`

	// logging
	LogLevel string `json:"logLevel"`
	LogDev   bool   `json:"logDev"`
}

func def() Config {
	return Config{
		Port:          "8080",
		CatalogsDir:   "catalogs",
		DBURL:         "",
		APIBaseURL:    "http://localhost:8080",
		SessionCookie: "session",
		CSRFCookie:    "csrf_token",
		DevUser:       "admin",
		DevPass:       "admin",
		LogLevel:      "info",
		LogDev:        false,
	}
}

func loadJSON(path string) (Config, error) {
	c := def()
	b, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := json.Unmarshal(b, &c); err != nil {
		return c, err
	}
	return c, nil
}

func getenv(k, fallback string) string {
	if v, ok := os.LookupEnv(k); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

func getenvBool(k string, fallback bool) bool {
	if v, ok := os.LookupEnv(k); ok {
		v = strings.TrimSpace(strings.ToLower(v))
		if v == "1" || v == "true" || v == "yes" {
			return true
		}
		if v == "0" || v == "false" || v == "no" {
			return false
		}
	}
	return fallback
}

// LoadWithPath reads the JSON file at jsonPath, then applies ENV and flags.
func LoadWithPath(jsonPath string) Config {
	return load(jsonPath, os.Args[1:])
}

// load runs the cascade on a fresh FlagSet: the re-read on a different
// -config path re-enters load, so the flags must not live on the global
// flag.CommandLine.
func load(jsonPath string, args []string) Config {
	cfg := def()

	if st, err := os.Stat(jsonPath); err == nil && !st.IsDir() {
		if c2, err := loadJSON(jsonPath); err == nil {
			cfg = c2
		}
	}

	// ENV overrides
	cfg.Port = getenv("SMARTORDER_PORT", cfg.Port)
	cfg.CatalogsDir = getenv("SMARTORDER_CATALOGS_DIR", cfg.CatalogsDir)
	cfg.DBURL = getenv("SMARTORDER_DB_URL", cfg.DBURL)
	cfg.APIBaseURL = getenv("SMARTORDER_API_URL", cfg.APIBaseURL)
	cfg.SessionCookie = getenv("SMARTORDER_SESSION_COOKIE", cfg.SessionCookie)
	cfg.CSRFCookie = getenv("SMARTORDER_CSRF_COOKIE", cfg.CSRFCookie)
	cfg.DevUser = getenv("SMARTORDER_DEV_USER", cfg.DevUser)
	cfg.DevPass = getenv("SMARTORDER_DEV_PASS", cfg.DevPass)
	cfg.LogLevel = getenv("SMARTORDER_LOG_LEVEL", cfg.LogLevel)
	cfg.LogDev = getenvBool("SMARTORDER_LOG_DEV", cfg.LogDev)

	// Flags overrides
	fs := flag.NewFlagSet("smartorder", flag.ContinueOnError)
	configPath := fs.String("config", jsonPath, "Path to config JSON")
	port := fs.String("port", cfg.Port, "HTTP port")
	catalogs := fs.String("catalogs", cfg.CatalogsDir, "Path to catalog descriptor directory")
	db := fs.String("db", cfg.DBURL, "Postgres URL (empty = in-memory)")
	api := fs.String("api", cfg.APIBaseURL, "Catalog API base URL (console)")
	level := fs.String("log-level", cfg.LogLevel, "Log level (debug/info/warn/error)")

	if err := fs.Parse(args); err != nil {
		return cfg
	}

	// re-read when a different config file was passed by flag
	if *configPath != jsonPath {
		return load(*configPath, args)
	}

	cfg.Port = strings.TrimSpace(*port)
	cfg.CatalogsDir = strings.TrimSpace(*catalogs)
	cfg.DBURL = strings.TrimSpace(*db)
	cfg.APIBaseURL = strings.TrimSpace(*api)
	cfg.LogLevel = strings.TrimSpace(*level)

	return cfg
}
