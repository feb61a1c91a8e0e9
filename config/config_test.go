package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("PORT", "")
	t.Setenv("ROOM_POLL_INTERVAL", "")
	t.Setenv("ROOM_TTL", "nonsense")
	t.Setenv("ALLOWED_ORIGINS", " http://a.test , http://b.test")

	cfg := Load()
	if cfg.Port != "5200" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.RoomPollInterval != 500*time.Millisecond {
		t.Errorf("RoomPollInterval = %s", cfg.RoomPollInterval)
	}
	if cfg.RoomTTL != 2*time.Hour {
		t.Errorf("invalid ROOM_TTL should fall back, got %s", cfg.RoomTTL)
	}
	if got := cfg.Origins(); got != "http://a.test,http://b.test" {
		t.Errorf("Origins() = %q", got)
	}
}

func TestR2Enabled(t *testing.T) {
	if (R2Config{AccountID: "acc", Bucket: "logs"}).Enabled() {
		t.Error("missing keys should disable R2")
	}
	if !(R2Config{AccountID: "acc", AccessKeyID: "k", AccessKeySecret: "s", Bucket: "logs"}).Enabled() {
		t.Error("complete config should enable R2")
	}
}
