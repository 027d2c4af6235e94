package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type testConfig struct {
	Name  string `toml:"name"`
	Value int    `toml:"value"`
}

func loadTestConfig(path string) (testConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return testConfig{}, err
	}
	var cfg testConfig
	err = toml.Unmarshal(data, &cfg)
	return cfg, err
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func startWatcher[T any](t *testing.T, w *Watcher[T]) {
	t.Helper()
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := w.Stop(); err != nil {
			t.Errorf("watcher.Stop failed: %v", err)
		}
	})
	// Let the watch loop register with the kernel.
	time.Sleep(100 * time.Millisecond)
}

func TestConfigWatcher_BasicReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeTestFile(t, path, "name = \"initial\"\nvalue = 1\n")

	received := make(chan testConfig, 1)
	watcher := NewConfigWatcher(path, loadTestConfig, newTestLogger(),
		WithDebounce[testConfig](50*time.Millisecond))
	watcher.OnReload(func(cfg testConfig) {
		received <- cfg
	})
	startWatcher(t, watcher)

	writeTestFile(t, path, "name = \"updated\"\nvalue = 42\n")

	select {
	case cfg := <-received:
		if cfg.Name != "updated" || cfg.Value != 42 {
			t.Errorf("got %+v, want name=updated, value=42", cfg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for config reload")
	}
}

func TestConfigWatcher_ReplaceByRename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	writeTestFile(t, path, "value = 1\n")

	received := make(chan testConfig, 4)
	watcher := NewConfigWatcher(path, loadTestConfig, newTestLogger(),
		WithDebounce[testConfig](50*time.Millisecond))
	watcher.OnReload(func(cfg testConfig) {
		received <- cfg
	})
	startWatcher(t, watcher)

	tmp := filepath.Join(dir, "config.toml.swp")
	writeTestFile(t, tmp, "value = 7\n")
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-received:
		if cfg.Value != 7 {
			t.Errorf("Value = %d, want 7", cfg.Value)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for reload after rename")
	}
}

func TestConfigWatcher_IgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	writeTestFile(t, path, "value = 1\n")

	var count atomic.Int32
	watcher := NewConfigWatcher(path, loadTestConfig, newTestLogger(),
		WithDebounce[testConfig](20*time.Millisecond))
	watcher.OnReload(func(testConfig) {
		count.Add(1)
	})
	startWatcher(t, watcher)

	writeTestFile(t, filepath.Join(dir, "other.toml"), "value = 2\n")
	time.Sleep(200 * time.Millisecond)

	if got := count.Load(); got != 0 {
		t.Errorf("expected no reloads for sibling file, got %d", got)
	}
}

func TestConfigWatcher_MultipleHandlers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeTestFile(t, path, "name = \"old\"\nvalue = 1\n")

	var wg sync.WaitGroup
	var mu sync.Mutex
	var configs []testConfig

	watcher := NewConfigWatcher(path, loadTestConfig, newTestLogger(),
		WithDebounce[testConfig](50*time.Millisecond))
	for range 3 {
		wg.Add(1)
		watcher.OnReload(func(cfg testConfig) {
			mu.Lock()
			configs = append(configs, cfg)
			mu.Unlock()
			wg.Done()
		})
	}
	startWatcher(t, watcher)

	writeTestFile(t, path, "name = \"new\"\nvalue = 2\n")

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for handlers")
	}

	mu.Lock()
	defer mu.Unlock()
	for i, cfg := range configs {
		if cfg.Name != "new" || cfg.Value != 2 {
			t.Errorf("handler %d got wrong config: %+v", i, cfg)
		}
	}
}

func TestConfigWatcher_Unsubscribe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeTestFile(t, path, "value = 1\n")

	first := make(chan int, 4)
	var count2 atomic.Int32
	watcher := NewConfigWatcher(path, loadTestConfig, newTestLogger(),
		WithDebounce[testConfig](50*time.Millisecond))
	watcher.OnReload(func(cfg testConfig) {
		first <- cfg.Value
	})
	unsub := watcher.OnReload(func(testConfig) {
		count2.Add(1)
	})
	startWatcher(t, watcher)

	writeTestFile(t, path, "value = 10\n")
	waitValue(t, first, 10)

	unsub()

	writeTestFile(t, path, "value = 20\n")
	waitValue(t, first, 20)

	if got := count2.Load(); got != 1 {
		t.Errorf("unsubscribed handler: expected 1 call, got %d", got)
	}
}

func waitValue(t *testing.T, ch <-chan int, want int) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case got := <-ch:
			if got == want {
				return
			}
		case <-deadline:
			t.Fatalf("timeout waiting for value %d", want)
		}
	}
}

func TestConfigWatcher_ErrorHandler(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeTestFile(t, path, "name = \"valid\"\nvalue = 1\n")

	errorReceived := make(chan error, 1)
	configReceived := make(chan testConfig, 1)
	watcher := NewConfigWatcher(path, loadTestConfig, newTestLogger(),
		WithDebounce[testConfig](50*time.Millisecond),
		WithErrorHandler[testConfig](func(err error) {
			errorReceived <- err
		}),
	)
	watcher.OnReload(func(cfg testConfig) {
		configReceived <- cfg
	})
	startWatcher(t, watcher)

	writeTestFile(t, path, "invalid toml [[[")

	select {
	case <-errorReceived:
	case <-configReceived:
		t.Fatal("config handler should not be called on error")
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for error handler")
	}
}

func TestConfigWatcher_Debounce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeTestFile(t, path, "value = 0\n")

	var count atomic.Int32
	var lastValue atomic.Int32
	watcher := NewConfigWatcher(path, loadTestConfig, newTestLogger(),
		WithDebounce[testConfig](200*time.Millisecond))
	watcher.OnReload(func(cfg testConfig) {
		count.Add(1)
		lastValue.Store(int32(cfg.Value))
	})
	startWatcher(t, watcher)

	for i := 1; i <= 5; i++ {
		writeTestFile(t, path, fmt.Sprintf("value = %d\n", i))
		time.Sleep(30 * time.Millisecond)
	}
	time.Sleep(600 * time.Millisecond)

	if got := count.Load(); got != 1 {
		t.Errorf("expected 1 debounced call, got %d", got)
	}
	if got := lastValue.Load(); got != 5 {
		t.Errorf("expected final value 5, got %d", got)
	}
}

func TestConfigWatcher_Stop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeTestFile(t, path, "value = 1\n")

	var count atomic.Int32
	watcher := NewConfigWatcher(path, loadTestConfig, newTestLogger(),
		WithDebounce[testConfig](50*time.Millisecond))
	watcher.OnReload(func(testConfig) {
		count.Add(1)
	})
	if err := watcher.Start(); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)

	if err := watcher.Stop(); err != nil {
		t.Fatal(err)
	}

	writeTestFile(t, path, "value = 99\n")
	time.Sleep(200 * time.Millisecond)

	if got := count.Load(); got != 0 {
		t.Errorf("expected 0 calls after stop, got %d", got)
	}
}

func TestConfigWatcher_ProfilesReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.toml")
	writeTestFile(t, path, "[display]\nrotation = 0\n")

	initial, err := LoadProfiles(path)
	if err != nil {
		t.Fatal(err)
	}
	store := NewProfileStore(initial)

	reloaded := make(chan struct{}, 1)
	watcher := NewConfigWatcher(path, LoadProfiles, newTestLogger(),
		WithDebounce[Profiles](50*time.Millisecond))
	watcher.OnReload(func(p Profiles) {
		store.Set(p)
		reloaded <- struct{}{}
	})
	startWatcher(t, watcher)

	writeTestFile(t, path, "[display]\nrotation = 270\n")

	select {
	case <-reloaded:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for profiles reload")
	}
	if got := store.Get().Display.Rotation; got != 270 {
		t.Errorf("rotation = %d, want 270", got)
	}
}
