package config

import (
	"os"
	"path/filepath"
	"testing"
	_ "time/tzdata"

	"github.com/google/go-cmp/cmp"
)

func TestLoadMissingFileWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "sdwcal.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Fatalf("unexpected defaults (-want +got):\n%s", diff)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("default config file not created: %v", err)
	}
	if got := info.Mode().Perm(); got != 0o600 {
		t.Fatalf("expected 0600 perms, got %o", got)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sdwcal.yaml")
	want := &Config{
		Timezone:       "Europe/Brussels",
		MergedSuffix:   ".merged.ics",
		ExpandedSuffix: ".expended.ics",
		Portal: &PortalConfig{
			URL:          "https://portal.example.com/export.ics",
			RefreshCron:  "30 5 * * 1-5",
			CacheDir:     "/tmp/portal-cache",
			DownloadPath: "/tmp/Calendar.ics",
		},
	}

	if err := Save(path, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeFillsZeroValues(t *testing.T) {
	cfg := &Config{Portal: &PortalConfig{URL: "https://portal.example.com/x.ics"}}
	cfg.Normalize()

	if cfg.Timezone != "Europe/Brussels" {
		t.Fatalf("timezone not defaulted: %q", cfg.Timezone)
	}
	if cfg.MergedSuffix != ".merged.ics" || cfg.ExpandedSuffix != ".expended.ics" {
		t.Fatalf("suffixes not defaulted: %q %q", cfg.MergedSuffix, cfg.ExpandedSuffix)
	}
	if cfg.Portal.RefreshCron == "" || cfg.Portal.CacheDir == "" || cfg.Portal.DownloadPath == "" {
		t.Fatalf("portal defaults missing: %+v", cfg.Portal)
	}
}

func TestLocationResolvesTimezone(t *testing.T) {
	cfg := DefaultConfig()
	loc, err := cfg.Location()
	if err != nil {
		t.Fatalf("location: %v", err)
	}
	if loc.String() != "Europe/Brussels" {
		t.Fatalf("unexpected zone %q", loc)
	}

	cfg.Timezone = "Not/AZone"
	if _, err := cfg.Location(); err == nil {
		t.Fatal("expected an error for an unknown zone")
	}
}

func TestLoadRejectsEmptyPath(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatal("expected an error for an empty path")
	}
	if err := Save("", DefaultConfig()); err == nil {
		t.Fatal("expected an error for an empty save path")
	}
}
