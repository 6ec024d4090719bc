package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Load.Driver != DriverCSV || cfg.Load.Source != defaultSource {
		t.Errorf("load: %+v", cfg.Load)
	}
	if cfg.Pipeline.TopN != 20 || cfg.Pipeline.MonthWindow != 12 {
		t.Errorf("pipeline: %+v", cfg.Pipeline)
	}
	if len(cfg.Pipeline.DefaultFlatModels) != 8 {
		t.Errorf("default flat models: %v", cfg.Pipeline.DefaultFlatModels)
	}
	if cfg.Server.CacheTTL != 5*time.Minute {
		t.Errorf("cache ttl: got %v, want 5m", cfg.Server.CacheTTL)
	}
	if cfg.Snapshot.Timeout != time.Minute || cfg.Snapshot.Interval != 500*time.Millisecond {
		t.Errorf("snapshot durations: %+v", cfg.Snapshot)
	}
	if cfg.File != "" {
		t.Errorf("no config file expected, got %q", cfg.File)
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "custom.yaml")
	yaml := `load:
  source: /data/from-file.csv
  malformed: reject
pipeline:
  top_n: 10
server:
  addr: ":9000"
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("RESALE_PIPELINE_TOP_N", "15")
	t.Setenv("RESALE_SERVER_ADDR", ":9100")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("addr", ":8080", "")
	fs.Int("top", 20, "")
	if err := fs.Parse([]string{"--addr", ":9200"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, map[string]*pflag.Flag{
		"server.addr":    fs.Lookup("addr"),
		"pipeline.top_n": fs.Lookup("top"),
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Load.Source != "/data/from-file.csv" || cfg.Load.Malformed != "reject" {
		t.Errorf("file values: %+v", cfg.Load)
	}
	// env beats file, and an unchanged flag does not beat env
	if cfg.Pipeline.TopN != 15 {
		t.Errorf("top_n: got %d, want 15 from env", cfg.Pipeline.TopN)
	}
	// a changed flag beats env
	if cfg.Server.Addr != ":9200" {
		t.Errorf("addr: got %q, want :9200 from flag", cfg.Server.Addr)
	}
	if cfg.File != path {
		t.Errorf("File: got %q, want %q", cfg.File, path)
	}
}

func TestLoadPostgresFallsBackToEnvDSN(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("RESALE_LOAD_DRIVER", "postgres")
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("POSTGRES_DB", "hdb")

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := "host=db.internal port=5432 user=resale password= dbname=hdb sslmode=disable"
	if cfg.Load.Source != want {
		t.Errorf("source: got %q, want %q", cfg.Load.Source, want)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		key, val string
	}{
		{"RESALE_LOAD_DRIVER", "mysql"},
		{"RESALE_PIPELINE_TOP_N", "0"},
		{"RESALE_SERVER_RATE_LIMIT", "-1"},
		{"RESALE_SNAPSHOT_WIDTH", "0"},
		// sqlite without a source would open the default CSV path
		{"RESALE_LOAD_DRIVER", "sqlite"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.val, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tt.key, tt.val)
			if _, err := Load("", nil); err == nil {
				t.Errorf("%s=%s: expected an error", tt.key, tt.val)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil); err == nil {
		t.Error("expected an error for an explicit missing config file")
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Server.CacheTTL = 90 * time.Second
	cfg.Snapshot.Interval = 2 * time.Second

	data, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	path := filepath.Join(dir, "out.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	back, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load(%s): %v\n%s", path, err, data)
	}
	if back.Server.CacheTTL != 90*time.Second || back.Snapshot.Interval != 2*time.Second {
		t.Errorf("durations: %v %v\n%s", back.Server.CacheTTL, back.Snapshot.Interval, data)
	}
	if back.Pipeline.DefaultTown != cfg.Pipeline.DefaultTown || back.Snapshot.Width != cfg.Snapshot.Width {
		t.Errorf("round trip lost values:\n%s", data)
	}
}

func TestLoadSQLiteSource(t *testing.T) {
	tests := []struct {
		source  string
		wantErr bool
	}{
		{"./data/resale.db", false},
		{"file:resale.sqlite?mode=ro", false},
		{"./data/RESALE.CSV", true},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv("RESALE_LOAD_DRIVER", "sqlite")
			t.Setenv("RESALE_LOAD_SOURCE", tt.source)
			cfg, err := Load("", nil)
			if tt.wantErr {
				if err == nil {
					t.Errorf("source %q: expected an error", tt.source)
				}
				return
			}
			if err != nil {
				t.Fatalf("source %q: %v", tt.source, err)
			}
			if cfg.Load.Source != tt.source {
				t.Errorf("Source: got %q, want %q", cfg.Load.Source, tt.source)
			}
		})
	}
}
