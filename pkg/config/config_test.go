package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var keys = []string{
	"ASSETS_DIR", "OUTPUT_DIR", "ARCHIVE_DIR", "TEMPLATE_FILE", "DUMP_DIR", "CHROMA_KEY",
	"ROW_PITCH", "HEADER_ROWS", "ROW_HEADER_ROWS", "SPACE_RUN", "FLUSH_TRAILING",
	"WORKERS", "DB_DSN", "DB_AUTO_MIGRATE", "REDIS_URL", "CACHE_TTL", "HTTP_ADDR",
	"JWT_SECRET", "OPERATOR_USER", "OPERATOR_PASSWORD_HASH", "VERBOSE",
}

func clearEnv(t *testing.T) {
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.AssetsDir != "assets" || cfg.OutputDir != "output" {
		t.Errorf("dirs = %q %q", cfg.AssetsDir, cfg.OutputDir)
	}
	if cfg.ChromaKey != (color.RGBA{221, 221, 221, 255}) {
		t.Errorf("ChromaKey = %v", cfg.ChromaKey)
	}
	if cfg.RowPitch != 18 || cfg.HeaderRows != 2 || cfg.RowHeaderRows != 2 || cfg.SpaceRun != 8 {
		t.Errorf("layout = %d %d %d %d", cfg.RowPitch, cfg.HeaderRows, cfg.RowHeaderRows, cfg.SpaceRun)
	}
	if cfg.FlushTrailing {
		t.Error("FlushTrailing should default to false")
	}
	if !cfg.DBAutoMigrate {
		t.Error("DBAutoMigrate should default to true")
	}
	if cfg.CacheTTL != 24*time.Hour || cfg.HTTPAddr != ":8081" {
		t.Errorf("CacheTTL=%s HTTPAddr=%s", cfg.CacheTTL, cfg.HTTPAddr)
	}
}

func TestLoadWithEnv(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("CHROMA_KEY", "10, 20,30")
	t.Setenv("ROW_PITCH", "20")
	t.Setenv("FLUSH_TRAILING", "yes")
	t.Setenv("WORKERS", "3")
	t.Setenv("DB_AUTO_MIGRATE", "no")
	t.Setenv("CACHE_TTL", "90m")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	o := cfg.Options()
	if o.ChromaKey != (color.RGBA{10, 20, 30, 255}) || o.RowPitch != 20 || !o.FlushTrailing {
		t.Errorf("options = %+v", o)
	}
	if cfg.Workers != 3 || cfg.DBAutoMigrate || cfg.CacheTTL != 90*time.Minute {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("ASSETS_DIR=shots\nOUTPUT_DIR=from-file\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	os.Unsetenv("ASSETS_DIR")
	t.Setenv("OUTPUT_DIR", "from-env")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.AssetsDir != "shots" {
		t.Errorf("AssetsDir = %q", cfg.AssetsDir)
	}
	if cfg.OutputDir != "from-env" {
		t.Errorf("OutputDir = %q", cfg.OutputDir)
	}
}

func TestValidateRejects(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	for k, v := range map[string]string{
		"CHROMA_KEY": "300,0,0",
		"ROW_PITCH":  "-1",
		"WORKERS":    "0",
		"SPACE_RUN":  "0",
	} {
		t.Run(k, func(t *testing.T) {
			t.Setenv(k, v)
			if _, err := Load(); err == nil {
				t.Fatalf("%s=%s accepted", k, v)
			}
		})
	}
}
