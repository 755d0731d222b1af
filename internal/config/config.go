package config

import (
	"time"

	"github.com/spf13/viper"
)

// Persistent store backends.
const (
	StoreSQLite = "sqlite"
	StoreNeo4j  = "neo4j"
)

// ServerConfig holds the HTTP boundary settings.
type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// StoreConfig selects and configures the persistent graph store (cache tier 1).
type StoreConfig struct {
	Backend    string `mapstructure:"backend"` // sqlite | neo4j
	SQLitePath string `mapstructure:"sqlite_path"`
	Neo4jURI   string `mapstructure:"neo4j_uri"`
	Neo4jUser  string `mapstructure:"neo4j_user"`
	Neo4jPass  string `mapstructure:"neo4j_pass"`
}

// CacheConfig configures the ephemeral cache (tier 2).
type CacheConfig struct {
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	TTL           time.Duration `mapstructure:"ttl"`
}

// WikiConfig configures the knowledge-lookup collaborator.
type WikiConfig struct {
	PrimaryLang   string        `mapstructure:"primary_lang"`
	SecondaryLang string        `mapstructure:"secondary_lang"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// AppConfig aggregates everything but the LLM block (see LoadLLMConfig).
type AppConfig struct {
	Server ServerConfig `mapstructure:"server"`
	Store  StoreConfig  `mapstructure:"store"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Wiki   WikiConfig   `mapstructure:"wiki"`

	// TemplatesDir holds user-supplied prompt override files.
	TemplatesDir string `mapstructure:"templates_dir"`
}

// DefaultAppConfig returns working local-development defaults.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Store: StoreConfig{
			Backend:    StoreSQLite,
			SQLitePath: ".conceptbridge",
			Neo4jURI:   "bolt://localhost:7687",
			Neo4jUser:  "neo4j",
		},
		Cache: CacheConfig{
			RedisAddr: "localhost:6379",
			TTL:       time.Hour,
		},
		Wiki: WikiConfig{
			PrimaryLang:   "en",
			SecondaryLang: "zh",
			Timeout:       10 * time.Second,
		},
	}
}

// LoadAppConfig resolves the application config from Viper over the defaults.
func LoadAppConfig() (AppConfig, error) {
	cfg := DefaultAppConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return AppConfig{}, err
	}
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = DefaultAppConfig().Server.Port
	}
	if cfg.Cache.TTL <= 0 {
		cfg.Cache.TTL = DefaultAppConfig().Cache.TTL
	}
	return cfg, nil
}
