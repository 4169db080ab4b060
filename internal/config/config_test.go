package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"SERVER_PORT", "EXAM_BUDGET_MINUTES", "PASS_THRESHOLD_PERCENT",
		"REAPER_ENABLED", "REAPER_GRACE_MINUTES", "ALLOWED_ORIGINS",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.ExamBudget != 120*time.Minute {
		t.Errorf("ExamBudget = %v, want 2h", cfg.ExamBudget)
	}
	if cfg.PassThreshold != 75 {
		t.Errorf("PassThreshold = %v, want 75", cfg.PassThreshold)
	}
	if cfg.ReaperEnabled {
		t.Error("ReaperEnabled should default to false")
	}
	if cfg.AllowedOrigins != nil {
		t.Errorf("AllowedOrigins = %v, want nil (allow all)", cfg.AllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("EXAM_BUDGET_MINUTES", "90")
	t.Setenv("PASS_THRESHOLD_PERCENT", "80.5")
	t.Setenv("REAPER_ENABLED", "true")
	t.Setenv("REAPER_GRACE_MINUTES", "15")

	cfg := Load()

	if cfg.ExamBudget != 90*time.Minute {
		t.Errorf("ExamBudget = %v, want 90m", cfg.ExamBudget)
	}
	if cfg.PassThreshold != 80.5 {
		t.Errorf("PassThreshold = %v, want 80.5", cfg.PassThreshold)
	}
	if !cfg.ReaperEnabled {
		t.Error("ReaperEnabled should be true")
	}
	if cfg.ReaperGrace != 15*time.Minute {
		t.Errorf("ReaperGrace = %v, want 15m", cfg.ReaperGrace)
	}
}

func TestLoadMalformedValuesFallBack(t *testing.T) {
	t.Setenv("EXAM_BUDGET_MINUTES", "ninety")
	t.Setenv("PASS_THRESHOLD_PERCENT", "high")
	t.Setenv("REAPER_ENABLED", "yes please")

	cfg := Load()

	if cfg.ExamBudget != 120*time.Minute {
		t.Errorf("ExamBudget = %v, want default 2h", cfg.ExamBudget)
	}
	if cfg.PassThreshold != 75 {
		t.Errorf("PassThreshold = %v, want default 75", cfg.PassThreshold)
	}
	if cfg.ReaperEnabled {
		t.Error("ReaperEnabled should fall back to false")
	}
}

func TestParseOrigins(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty means allow all", "", nil},
		{"single origin", "https://app.careprep.example", []string{"https://app.careprep.example"}},
		{
			"trims and skips blanks",
			" https://a.example , ,https://b.example",
			[]string{"https://a.example", "https://b.example"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseOrigins(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseOrigins(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}
