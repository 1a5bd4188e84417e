// Package config loads runtime settings from the environment and an optional
// .env file.
package config

import (
	"fmt"
	"image/color"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"screentext/pkg/ocr"
)

type Config struct {
	AssetsDir    string
	OutputDir    string
	ArchiveDir   string
	TemplateFile string
	DumpDir      string

	ChromaKey     color.RGBA
	RowPitch      int
	HeaderRows    int
	RowHeaderRows int
	SpaceRun      int
	FlushTrailing bool

	Workers int

	DBDSN         string
	DBAutoMigrate bool

	RedisURL string
	CacheTTL time.Duration

	HTTPAddr             string
	JWTSecret            string
	OperatorUser         string
	OperatorPasswordHash string

	Verbose bool
}

// LoadDotEnv reads key=value pairs from the given files (default .env) into
// the environment without overriding variables that are already set. Missing
// files are not an error.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		_ = godotenv.Load(f)
	}
}

// Load builds a Config from the environment after loading .env.
func Load() (*Config, error) {
	LoadDotEnv()
	key, err := ParseChromaKey(getEnv("CHROMA_KEY", "221,221,221"))
	if err != nil {
		return nil, err
	}
	cfg := &Config{
		AssetsDir:            getEnv("ASSETS_DIR", "assets"),
		OutputDir:            getEnv("OUTPUT_DIR", "output"),
		ArchiveDir:           getEnv("ARCHIVE_DIR", ""),
		TemplateFile:         getEnv("TEMPLATE_FILE", "ascii_base.txt"),
		DumpDir:              getEnv("DUMP_DIR", ""),
		ChromaKey:            key,
		RowPitch:             getEnvInt("ROW_PITCH", ocr.DefaultRowPitch),
		HeaderRows:           getEnvInt("HEADER_ROWS", ocr.DefaultHeaderRows),
		RowHeaderRows:        getEnvInt("ROW_HEADER_ROWS", ocr.DefaultRowHeaderRows),
		SpaceRun:             getEnvInt("SPACE_RUN", ocr.DefaultSpaceRun),
		FlushTrailing:        getEnvBool("FLUSH_TRAILING", false),
		Workers:              getEnvInt("WORKERS", runtime.NumCPU()),
		DBDSN:                getEnv("DB_DSN", ""),
		DBAutoMigrate:        getEnvBool("DB_AUTO_MIGRATE", true),
		RedisURL:             getEnv("REDIS_URL", ""),
		CacheTTL:             getEnvDuration("CACHE_TTL", 24*time.Hour),
		HTTPAddr:             getEnv("HTTP_ADDR", ":8081"),
		JWTSecret:            getEnv("JWT_SECRET", ""),
		OperatorUser:         getEnv("OPERATOR_USER", "admin"),
		OperatorPasswordHash: getEnv("OPERATOR_PASSWORD_HASH", ""),
		Verbose:              getEnvBool("VERBOSE", false),
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks ranges of the pipeline settings.
func (c *Config) Validate() error {
	if c.Workers < 1 || c.Workers > 256 {
		return fmt.Errorf("WORKERS must be between 1 and 256, got %d", c.Workers)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("CACHE_TTL must not be negative, got %s", c.CacheTTL)
	}
	if err := c.Options().Validate(); err != nil {
		return err
	}
	return nil
}

// Options returns the recognizer settings.
func (c *Config) Options() ocr.Options {
	o := ocr.DefaultOptions()
	o.ChromaKey = c.ChromaKey
	o.RowPitch = c.RowPitch
	o.HeaderRows = c.HeaderRows
	o.RowHeaderRows = c.RowHeaderRows
	o.SpaceRun = c.SpaceRun
	o.FlushTrailing = c.FlushTrailing
	return o
}

// ParseChromaKey parses "R,G,B" with each component in 0..255.
func ParseChromaKey(s string) (color.RGBA, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return color.RGBA{}, fmt.Errorf("CHROMA_KEY must be R,G,B, got %q", s)
	}
	var c [3]uint8
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("CHROMA_KEY component %q: %w", p, err)
		}
		c[i] = uint8(v)
	}
	return color.RGBA{R: c[0], G: c[1], B: c[2], A: 255}, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(v) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
