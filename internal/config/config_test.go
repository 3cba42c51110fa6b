package config

import (
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	// Test source defaults
	if cfg.Source.Driver != DriverMySQL {
		t.Errorf("expected source driver 'mysql', got %s", cfg.Source.Driver)
	}
	if cfg.Source.Port != 3306 {
		t.Errorf("expected source port 3306, got %d", cfg.Source.Port)
	}
	if cfg.Source.MaxConnections != 10 {
		t.Errorf("expected source max_connections 10, got %d", cfg.Source.MaxConnections)
	}

	// Test mining defaults
	if cfg.Mining.Support != 0.07 {
		t.Errorf("expected support 0.07, got %v", cfg.Mining.Support)
	}
	if cfg.Mining.Confidence != 0.5 {
		t.Errorf("expected confidence 0.5, got %v", cfg.Mining.Confidence)
	}
	if cfg.Mining.CacheSize != 4096 {
		t.Errorf("expected cache_size 4096, got %d", cfg.Mining.CacheSize)
	}
	if cfg.Mining.Engine != EngineSQL {
		t.Errorf("expected engine 'sql', got %s", cfg.Mining.Engine)
	}

	// Test load and output defaults
	if cfg.Load.BatchSize != 500 {
		t.Errorf("expected load batch_size 500, got %d", cfg.Load.BatchSize)
	}
	if !cfg.Load.SkipIncomplete {
		t.Error("expected skip_incomplete enabled by default")
	}
	if cfg.Output.Format != "table" || !cfg.Output.Color {
		t.Errorf("expected colored table output, got %+v", cfg.Output)
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected logging level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.Output != "stderr" {
		t.Errorf("expected logging output 'stderr', got %s", cfg.Logging.Output)
	}
}

func TestGetJobMining(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Jobs = map[string]JobConfig{
		"inherits": {Table: "school", Categories: []string{"a"}},
		"overrides": {
			Table:      "school",
			Categories: []string{"a"},
			Mining:     &MiningConfig{Support: 0.2, Engine: EngineGorm},
		},
	}

	inherited := cfg.GetJobMining("inherits")
	if inherited != cfg.Mining {
		t.Errorf("expected global mining config, got %+v", inherited)
	}

	merged := cfg.GetJobMining("overrides")
	if merged.Support != 0.2 {
		t.Errorf("expected support 0.2, got %v", merged.Support)
	}
	if merged.Confidence != 0.5 {
		t.Errorf("expected confidence inherited as 0.5, got %v", merged.Confidence)
	}
	if merged.Engine != EngineGorm {
		t.Errorf("expected engine 'gorm', got %s", merged.Engine)
	}
	if merged.CacheSize != 4096 {
		t.Errorf("expected cache_size inherited as 4096, got %d", merged.CacheSize)
	}

	if missing := cfg.GetJobMining("nope"); missing != cfg.Mining {
		t.Errorf("expected global mining config for unknown job, got %+v", missing)
	}
}
