package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Pilotes de staging acceptés
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// ErrInvalidConfig configuration incohérente après fusion des sources
var ErrInvalidConfig = errors.New("invalid configuration")

// AppConfig configuration de l'application
type AppConfig struct {
	Server    ServerConfig    `toml:"server"`
	Staging   StagingConfig   `toml:"staging"`
	Cache     CacheConfig     `toml:"cache"`
	Upload    UploadConfig    `toml:"upload"`
	Dashboard DashboardConfig `toml:"dashboard"`
}

// ServerConfig configuration HTTP
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// StagingConfig base de travail du jeu actif
type StagingConfig struct {
	Driver   string         `toml:"driver"`
	DataDir  string         `toml:"data_dir"`
	Postgres PostgresConfig `toml:"postgres"`
}

// PostgresConfig paramètres de connexion PostgreSQL
type PostgresConfig struct {
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Name     string `toml:"name"`
	SSLMode  string `toml:"sslmode"`
}

// CacheConfig durée de vie des agrégats en cache ("5m", "30s"...)
type CacheConfig struct {
	TTL string `toml:"ttl"`
}

// UploadConfig limites de téléversement
type UploadConfig struct {
	MaxMB int64 `toml:"max_mb"`
}

// DashboardConfig rendu de la page et des graphiques
type DashboardConfig struct {
	PreviewRows int `toml:"preview_rows"`
	ChartWidth  int `toml:"chart_width"`
	ChartHeight int `toml:"chart_height"`
}

// DefaultConfig configuration par défaut
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    8080,
			DevMode: false,
		},
		Staging: StagingConfig{
			Driver:  DriverSQLite,
			DataDir: "data",
			Postgres: PostgresConfig{
				Host:     "localhost",
				Port:     "5432",
				User:     "salesuser",
				Password: "salespass",
				Name:     "salesdb",
				SSLMode:  "disable",
			},
		},
		Cache: CacheConfig{
			TTL: "5m",
		},
		Upload: UploadConfig{
			MaxMB: 32,
		},
		Dashboard: DashboardConfig{
			PreviewRows: 10,
			ChartWidth:  900,
			ChartHeight: 450,
		},
	}
}

// Load fusionne défauts, fichier TOML (optionnel), .env puis variables d'environnement
// Un chemin vide ou un fichier absent laisse les défauts en place.
func Load(path string) (*AppConfig, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, err
		}
	}

	// .env facultatif: les variables déjà définies ne sont pas écrasées
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: PORT=%q", ErrInvalidConfig, v)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("MAX_UPLOAD_MB"); v != "" {
		mb, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: MAX_UPLOAD_MB=%q", ErrInvalidConfig, v)
		}
		c.Upload.MaxMB = mb
	}

	setString(&c.Staging.Driver, "STAGING_DRIVER")
	setString(&c.Staging.DataDir, "DATA_DIR")
	setString(&c.Staging.Postgres.Host, "DB_HOST")
	setString(&c.Staging.Postgres.Port, "DB_PORT")
	setString(&c.Staging.Postgres.User, "DB_USER")
	setString(&c.Staging.Postgres.Password, "DB_PASSWORD")
	setString(&c.Staging.Postgres.Name, "DB_NAME")
	setString(&c.Staging.Postgres.SSLMode, "DB_SSLMODE")
	setString(&c.Cache.TTL, "CACHE_TTL")
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate vérifie la cohérence de la configuration
func (c *AppConfig) Validate() error {
	switch c.Staging.Driver {
	case DriverSQLite, DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("%w: unknown staging driver %q", ErrInvalidConfig, c.Staging.Driver)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: port %d", ErrInvalidConfig, c.Server.Port)
	}
	if _, err := time.ParseDuration(c.Cache.TTL); err != nil {
		return fmt.Errorf("%w: cache ttl %q", ErrInvalidConfig, c.Cache.TTL)
	}
	if c.Upload.MaxMB <= 0 {
		return fmt.Errorf("%w: upload max_mb %d", ErrInvalidConfig, c.Upload.MaxMB)
	}
	if c.Dashboard.PreviewRows <= 0 {
		c.Dashboard.PreviewRows = 10
	}
	return nil
}

// Addr adresse d'écoute HTTP
func (c *AppConfig) Addr() string {
	return ":" + strconv.Itoa(c.Server.Port)
}

// CacheTTL durée de vie des entrées de cache
func (c *AppConfig) CacheTTL() time.Duration {
	ttl, err := time.ParseDuration(c.Cache.TTL)
	if err != nil {
		return 5 * time.Minute
	}
	return ttl
}

// MaxUploadBytes taille maximale d'un fichier téléversé
func (c *AppConfig) MaxUploadBytes() int64 {
	return c.Upload.MaxMB << 20
}

// StagingDSN chaîne de connexion du pilote de staging (vide pour "memory")
func (c *AppConfig) StagingDSN() string {
	switch c.Staging.Driver {
	case DriverPostgres:
		p := c.Staging.Postgres
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			p.Host, p.Port, p.User, p.Password, p.Name, p.SSLMode)
	case DriverSQLite:
		return filepath.Join(c.Staging.DataDir, "staging.db") + "?_busy_timeout=5000"
	}
	return ""
}

// EnsureDataDir crée le répertoire de données
func EnsureDataDir(c *AppConfig) (string, error) {
	if err := os.MkdirAll(c.Staging.DataDir, 0755); err != nil {
		return "", err
	}
	return c.Staging.DataDir, nil
}
