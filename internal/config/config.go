package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers understood by repository.Open.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverRedis    = "redis"
)

type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Catalog  CatalogConfig
	CORS     CORSConfig
	Metrics  MetricsConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type AuthConfig struct {
	MasterKey     string
	MasterKeyHash string // bcrypt hash, takes precedence over MasterKey
}

type StorageConfig struct {
	Driver  string
	DataDir string // flat-file driver
}

type DatabaseConfig struct {
	Host       string
	Port       string
	User       string
	Password   string
	Database   string
	Schema     string
	DSN        string // overrides the discrete fields when set
	SQLitePath string
}

type RedisConfig struct {
	Host      string
	Port      string
	Password  string
	DB        int
	KeyPrefix string
}

type CatalogConfig struct {
	DefaultCount int
	MaxCount     int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type MetricsConfig struct {
	Enabled bool
}

// SetDefaults registers every default on v. Exported so the CLI can bind flags
// against the same instance before Load reads it.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_ENV", "development")
	v.SetDefault("STORAGE_DRIVER", DriverFile)
	v.SetDefault("STORAGE_DATA_DIR", "./data")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SCHEMA", "public")
	v.SetDefault("SQLITE_PATH", "./data/inventory.db")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_KEY_PREFIX", "inventory")
	v.SetDefault("CATALOG_DEFAULT_COUNT", 100)
	v.SetDefault("CATALOG_MAX_COUNT", 10000)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("METRICS_ENABLED", true)
}

// Load reads configuration from the environment, an optional .env file and
// whatever flags the caller already bound on v.
func Load(v *viper.Viper) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not read .env file: %v", err)
	}

	SetDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetString("SERVER_PORT"),
			Env:  v.GetString("SERVER_ENV"),
		},
		Auth: AuthConfig{
			MasterKey:     v.GetString("MASTER_KEY"),
			MasterKeyHash: v.GetString("MASTER_KEY_HASH"),
		},
		Storage: StorageConfig{
			Driver:  strings.ToLower(v.GetString("STORAGE_DRIVER")),
			DataDir: v.GetString("STORAGE_DATA_DIR"),
		},
		Database: DatabaseConfig{
			Host:       v.GetString("DB_HOST"),
			Port:       v.GetString("DB_PORT"),
			User:       v.GetString("DB_USER"),
			Password:   v.GetString("DB_PASSWORD"),
			Database:   v.GetString("DB_DATABASE"),
			Schema:     v.GetString("DB_SCHEMA"),
			DSN:        v.GetString("DB_DSN"),
			SQLitePath: v.GetString("SQLITE_PATH"),
		},
		Redis: RedisConfig{
			Host:      v.GetString("REDIS_HOST"),
			Port:      v.GetString("REDIS_PORT"),
			Password:  v.GetString("REDIS_PASSWORD"),
			DB:        v.GetInt("REDIS_DB"),
			KeyPrefix: v.GetString("REDIS_KEY_PREFIX"),
		},
		Catalog: CatalogConfig{
			DefaultCount: v.GetInt("CATALOG_DEFAULT_COUNT"),
			MaxCount:     v.GetInt("CATALOG_MAX_COUNT"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("METRICS_ENABLED"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory, DriverFile, DriverPostgres, DriverSQLite, DriverMySQL, DriverRedis:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.Auth.MasterKey == "" && c.Auth.MasterKeyHash == "" {
		return fmt.Errorf("MASTER_KEY or MASTER_KEY_HASH is required")
	}
	if c.Catalog.DefaultCount < 1 {
		return fmt.Errorf("CATALOG_DEFAULT_COUNT must be positive, got %d", c.Catalog.DefaultCount)
	}
	if c.Catalog.MaxCount < c.Catalog.DefaultCount {
		return fmt.Errorf("CATALOG_MAX_COUNT (%d) is below CATALOG_DEFAULT_COUNT (%d)",
			c.Catalog.MaxCount, c.Catalog.DefaultCount)
	}
	return nil
}

// IsDevelopment reports whether the server runs outside production.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env != "production"
}

// PostgresDSN builds a pgx connection string from the discrete fields.
func (d DatabaseConfig) PostgresDSN() string {
	if d.DSN != "" {
		return d.DSN
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable&search_path=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.Schema)
}

// MySQLDSN builds a go-sql-driver DSN. parseTime is always on so TIMESTAMP
// columns scan into time.Time.
func (d DatabaseConfig) MySQLDSN() string {
	if d.DSN != "" {
		return d.DSN
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&loc=UTC",
		d.User, d.Password, d.Host, d.Port, d.Database)
}

// Addr returns host:port for the redis client.
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
