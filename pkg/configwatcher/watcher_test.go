package configwatcher

import (
	"os"
	"path/filepath"
	"raid_checker_backend/internal/config"
	"testing"
	"time"
)

func TestWatchConfigReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  mode: debug\n"), 0644); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan *config.Config, 1)
	stop := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- WatchConfig(path, func(cfg *config.Config) {
			select {
			case reloaded <- cfg:
			default:
			}
		}, stop)
	}()

	// 等待监听注册
	time.Sleep(200 * time.Millisecond)
	if err := os.WriteFile(path, []byte("server:\n  mode: release\njwt:\n  secret: 0123456789abcdef0123456789abcdef\n"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.Server.Mode != "release" {
			t.Errorf("reloaded mode = %q, want release", cfg.Server.Mode)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}

	close(stop)
	if err := <-done; err != nil {
		t.Errorf("WatchConfig() error = %v", err)
	}
}
