package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Recommendation.ThresholdDays != 2 {
		t.Errorf("ThresholdDays = %d, want 2", cfg.Recommendation.ThresholdDays)
	}
	if cfg.Recommendation.DefaultForecastDays != 7 {
		t.Errorf("DefaultForecastDays = %d, want 7", cfg.Recommendation.DefaultForecastDays)
	}
	if cfg.Recommendation.Timezone != "Pacific/Auckland" {
		t.Errorf("Timezone = %q, want Pacific/Auckland", cfg.Recommendation.Timezone)
	}
	if cfg.Scheduler.CronSchedule != "0 6 * * *" {
		t.Errorf("CronSchedule = %q, want 0 6 * * *", cfg.Scheduler.CronSchedule)
	}
	if cfg.SheetsExportEnabled() {
		t.Error("SheetsExportEnabled = true without credentials")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("REPURCHASE_THRESHOLD_DAYS", "5")
	t.Setenv("MONGODB_DB_NAME", "restock_test")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Server.Port)
	}
	if cfg.Recommendation.ThresholdDays != 5 {
		t.Errorf("ThresholdDays = %d, want 5", cfg.Recommendation.ThresholdDays)
	}
	if cfg.MongoDB.DBName != "restock_test" {
		t.Errorf("DBName = %q, want restock_test", cfg.MongoDB.DBName)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Run("non numeric threshold", func(t *testing.T) {
		t.Setenv("REPURCHASE_THRESHOLD_DAYS", "soon")
		if _, err := Load(""); err == nil {
			t.Fatal("expected error for non-numeric threshold")
		}
	})

	t.Run("negative threshold", func(t *testing.T) {
		t.Setenv("REPURCHASE_THRESHOLD_DAYS", "-1")
		if _, err := Load(""); err == nil {
			t.Fatal("expected error for negative threshold")
		}
	})

	t.Run("zero forecast horizon", func(t *testing.T) {
		t.Setenv("DEFAULT_FORECAST_DAYS", "0")
		if _, err := Load(""); err == nil {
			t.Fatal("expected error for zero forecast horizon")
		}
	})
}

func TestSheetsExportEnabled(t *testing.T) {
	cfg := &Config{}
	if cfg.SheetsExportEnabled() {
		t.Error("enabled with nothing configured")
	}

	cfg.Sheets.CredentialsPath = "/etc/creds.json"
	if cfg.SheetsExportEnabled() {
		t.Error("enabled with only credentials")
	}

	cfg.Sheets.SpreadsheetID = "sheet-id"
	if !cfg.SheetsExportEnabled() {
		t.Error("disabled with full configuration")
	}
}
