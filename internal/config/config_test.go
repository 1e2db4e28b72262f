package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TRADING_DAY_OFFSET_SECONDS", "")
	t.Setenv("API_PORT", "")
	t.Setenv("LOG_COMPRESS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TradingDayOffsetSeconds != 32400 {
		t.Fatalf("expected default offset 32400, got %d", cfg.TradingDayOffsetSeconds)
	}
	if cfg.APIPort != 3001 {
		t.Fatalf("expected default port 3001, got %d", cfg.APIPort)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TRADING_DAY_OFFSET_SECONDS", "-18000")
	t.Setenv("HISTOGRAM_BIN_PIPS", "2.5")
	t.Setenv("LOG_COMPRESS", "yes")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TradingDayOffsetSeconds != -18000 {
		t.Fatalf("offset = %d", cfg.TradingDayOffsetSeconds)
	}
	if cfg.HistogramBinPips != 2.5 {
		t.Fatalf("bin pips = %v", cfg.HistogramBinPips)
	}
	if !cfg.LogCompress {
		t.Fatal("expected LOG_COMPRESS=yes to enable compression")
	}
	if cfg.RedisDB != 0 {
		t.Fatalf("unparseable REDIS_DB should fall back to 0, got %d", cfg.RedisDB)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		DBUser:                "journal",
		APIPort:               3001,
		HistogramBinYen:       1000,
		HistogramBinPips:      5,
		DigestIntervalMinutes: 10,
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	cfg.TradingDayOffsetSeconds = 90000
	cfg.HistogramBinPips = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestFormatOffset(t *testing.T) {
	cases := map[int]string{32400: "UTC+09:00", -18000: "UTC-05:00", 19800: "UTC+05:30", 0: "UTC+00:00"}
	for in, want := range cases {
		if got := formatOffset(in); got != want {
			t.Fatalf("formatOffset(%d) = %s, want %s", in, got, want)
		}
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: 5433, DBName: "n"}
	if got := cfg.DSN(); got != "postgres://u:p@h:5433/n?sslmode=disable" {
		t.Fatalf("DSN = %s", got)
	}
}
