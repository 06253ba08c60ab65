package config

import (
	"encoding/json"
	"flag"
	"io"
	"os"
	"strconv"
	"strings"
)

const envPrefix = "COMMON_"

type Config struct {
	Port        string `json:"port"`
	DSLDir      string `json:"dslDir"`
	OptionsDir  string `json:"optionsDir"` // YAML с опциями общих полей по сущностям
	DBURL       string `json:"dbUrl"`
	AutoMigrate bool   `json:"autoMigrate"`
	LogLevel    string `json:"logLevel"`
}

func def() Config {
	return Config{
		Port:        "8080",
		DSLDir:      "dsl",
		OptionsDir:  "options",
		DBURL:       "",
		AutoMigrate: false,
		LogLevel:    "info",
	}
}

func loadJSON(path string, c Config) (Config, error) {
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
	if v, ok := os.LookupEnv(envPrefix + k); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

func parseBool(v string) (bool, bool) {
	switch strings.TrimSpace(strings.ToLower(v)) {
	case "1", "true", "yes":
		return true, true
	case "0", "false", "no":
		return false, true
	}
	return false, false
}

func getenvBool(k string, fallback bool) bool {
	if v, ok := os.LookupEnv(envPrefix + k); ok {
		if b, ok := parseBool(v); ok {
			return b
		}
	}
	return fallback
}

// LoadWithPath читает JSON по указанному пути, потом применяет ENV и флаги из args.
// Флаг -config с другим путём перечитывает всё с начала.
func LoadWithPath(jsonPath string, args []string) (Config, error) {
	cfg := def()

	// JSON (если файл существует)
	if st, err := os.Stat(jsonPath); err == nil && !st.IsDir() {
		c2, err := loadJSON(jsonPath, cfg)
		if err != nil {
			return cfg, err
		}
		cfg = c2
	}

	// ENV overrides
	cfg.Port = getenv("PORT", cfg.Port)
	cfg.DSLDir = getenv("DSL_DIR", cfg.DSLDir)
	cfg.OptionsDir = getenv("OPTIONS_DIR", cfg.OptionsDir)
	cfg.DBURL = getenv("DB_URL", cfg.DBURL)
	cfg.AutoMigrate = getenvBool("AUTO_MIGRATE", cfg.AutoMigrate)
	cfg.LogLevel = getenv("LOG_LEVEL", cfg.LogLevel)

	// Flags overrides
	fs := flag.NewFlagSet("commonfields", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	configPath := fs.String("config", jsonPath, "Path to config JSON")
	port := fs.String("port", cfg.Port, "HTTP port")
	dsl := fs.String("dsl", cfg.DSLDir, "Path to DSL directory")
	opts := fs.String("options", cfg.OptionsDir, "Path to common-fields options directory")
	db := fs.String("db", cfg.DBURL, "Postgres URL (empty = in-memory only)")
	auto := fs.String("auto-migrate", strconv.FormatBool(cfg.AutoMigrate), "Apply DDL on start (true/false)")
	level := fs.String("log-level", cfg.LogLevel, "Log level (debug/info/warn/error)")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if *configPath != jsonPath {
		return LoadWithPath(*configPath, args)
	}

	cfg.Port = strings.TrimSpace(*port)
	cfg.DSLDir = strings.TrimSpace(*dsl)
	cfg.OptionsDir = strings.TrimSpace(*opts)
	cfg.DBURL = strings.TrimSpace(*db)
	cfg.AutoMigrate, _ = parseBool(*auto)
	cfg.LogLevel = strings.TrimSpace(*level)

	return cfg, nil
}
