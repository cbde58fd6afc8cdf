package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath = "./config.yaml"
	defaultListenAddr = ":8000"
	defaultLogLevel   = "info"
	defaultChunkSize  = 64 << 10
	defaultMediaRoot  = "./media"
	defaultPrefix     = "media"

	memorySessionDSN = "memory://"
)

// StorageConfig описывает, где лежат файлы записей.
type StorageConfig struct {
	Backend   string `yaml:"backend" json:"backend"`
	Root      string `yaml:"root" json:"root"`
	Bucket    string `yaml:"bucket" json:"bucket"`
	Prefix    string `yaml:"prefix" json:"prefix"`
	Region    string `yaml:"region" json:"region"`
	Endpoint  string `yaml:"endpoint" json:"endpoint"`
	AccessKey string `yaml:"access_key" json:"-"`
	SecretKey string `yaml:"secret_key" json:"-"`
	UseSSL    bool   `yaml:"use_ssl" json:"use_ssl"`
}

type Config struct {
	ListenAddr        string        `yaml:"listen_addr" json:"listen_addr"`
	Debug             bool          `yaml:"debug" json:"debug"`
	LogLevel          string        `yaml:"log_level" json:"log_level"`
	SessionDSN        string        `yaml:"session_dsn" json:"-"`
	ChunkSize         int64         `yaml:"chunk_size" json:"chunk_size"`
	MaxBytesPerSecond int64         `yaml:"max_bytes_per_second" json:"max_bytes_per_second"`
	Storage           StorageConfig `yaml:"storage" json:"storage"`
}

// Load читает YAML-конфигурацию, применяет ENV-переопределения и значения по умолчанию.
// Отсутствие файла по умолчанию не ошибка; явно указанный CONFIG_PATH обязан существовать.
func Load() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}

	var c Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err = yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, err
	}

	if err = c.applyEnv(); err != nil {
		return nil, err
	}
	c.applyDefaults()

	return &c, nil
}

// applyEnv ENV override
func (c *Config) applyEnv() error {
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("SESSION_DSN"); v != "" {
		c.SessionDSN = v
	}
	if v := os.Getenv("STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("MEDIA_ROOT"); v != "" {
		c.Storage.Root = v
	}
	if v := os.Getenv("AWS_STORAGE_BUCKET_NAME"); v != "" {
		c.Storage.Bucket = v
	}
	if v := os.Getenv("STORAGE_PREFIX"); v != "" {
		c.Storage.Prefix = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		c.Storage.Region = v
	}
	if v := os.Getenv("STORAGE_ENDPOINT"); v != "" {
		c.Storage.Endpoint = v
	}
	if v := os.Getenv("MINIO_ACCESS_KEY"); v != "" {
		c.Storage.AccessKey = v
	}
	if v := os.Getenv("MINIO_SECRET_KEY"); v != "" {
		c.Storage.SecretKey = v
	}

	var err error
	if c.Debug, err = envBool("DEBUG", c.Debug); err != nil {
		return err
	}
	if c.Storage.UseSSL, err = envBool("MINIO_USE_SSL", c.Storage.UseSSL); err != nil {
		return err
	}
	if c.ChunkSize, err = envInt64("CHUNK_SIZE", c.ChunkSize); err != nil {
		return err
	}
	if c.MaxBytesPerSecond, err = envInt64("MAX_BYTES_PER_SECOND", c.MaxBytesPerSecond); err != nil {
		return err
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = defaultListenAddr
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.ChunkSize == 0 {
		c.ChunkSize = defaultChunkSize
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "local"
	}
	if c.Storage.Backend == "local" && c.Storage.Root == "" {
		c.Storage.Root = defaultMediaRoot
	}
	if c.Storage.Backend != "local" && c.Storage.Prefix == "" {
		c.Storage.Prefix = defaultPrefix
	}
}

// Validate проверяет согласованность настроек перед запуском сервера.
func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be > 0, got %d", c.ChunkSize)
	}
	if c.MaxBytesPerSecond < 0 {
		return fmt.Errorf("max_bytes_per_second must be >= 0, got %d", c.MaxBytesPerSecond)
	}

	switch c.Storage.Backend {
	case "local":
		if strings.TrimSpace(c.Storage.Root) == "" {
			return fmt.Errorf("storage root is empty")
		}
	case "s3":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage bucket is required for s3 backend")
		}
	case "minio":
		if c.Storage.Bucket == "" || c.Storage.Endpoint == "" {
			return fmt.Errorf("storage bucket and endpoint are required for minio backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	if !c.Debug {
		dsn := strings.TrimSpace(c.SessionDSN)
		if dsn == "" {
			return fmt.Errorf("session_dsn is required outside debug mode")
		}
		if strings.HasPrefix(dsn, memorySessionDSN) {
			return fmt.Errorf("session_dsn %q is only allowed in debug mode", dsn)
		}
	}

	return nil
}

func envBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("invalid %s=%q: %w", key, v, err)
	}
	return b, nil
}

func envInt64(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def, fmt.Errorf("invalid %s=%q: %w", key, v, err)
	}
	return n, nil
}
