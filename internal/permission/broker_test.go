package permission

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/smazurov/campreview/internal/camera"
)

var errDenied = errors.New("permission denied")

type fakeAccess struct {
	mu      sync.Mutex
	allowed map[string]bool
}

func (f *fakeAccess) set(path string, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.allowed[path] = ok
}

func (f *fakeAccess) check(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.allowed[path] {
		return nil
	}
	return errDenied
}

type results struct {
	mu  sync.Mutex
	got []bool
}

func (r *results) record(granted bool) {
	r.mu.Lock()
	r.got = append(r.got, granted)
	r.mu.Unlock()
}

func (r *results) list() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool(nil), r.got...)
}

func newTestBroker(manual bool) (*Broker, *fakeAccess, *results) {
	fa := &fakeAccess{allowed: make(map[string]bool)}
	b := NewBroker(Options{
		Manual: manual,
		Access: fa.check,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	r := &results{}
	b.SetResultHandler(r.record)
	return b, fa, r
}

func TestGranted(t *testing.T) {
	b, fa, _ := newTestBroker(false)
	id := camera.Identity("/dev/video0")

	if b.Granted(id) {
		t.Error("expected access to be refused")
	}
	fa.set("/dev/video0", true)
	if !b.Granted(id) {
		t.Error("expected access to be granted")
	}
}

func TestAutomaticRequestDenied(t *testing.T) {
	b, _, r := newTestBroker(false)
	id := camera.Identity("/dev/video0")

	if b.ShouldShowRationale(id) {
		t.Error("no rationale before the first denial")
	}

	b.Request(id)
	b.Wait()

	if got := r.list(); len(got) != 1 || got[0] {
		t.Fatalf("results = %v, want [false]", got)
	}
	if !b.ShouldShowRationale(id) {
		t.Error("rationale expected after a denial")
	}
	if _, pending := b.Pending(); pending {
		t.Error("request should no longer be pending")
	}
}

func TestAutomaticRequestGrantedClearsDenial(t *testing.T) {
	b, fa, r := newTestBroker(false)
	id := camera.Identity("/dev/video0")

	b.Request(id)
	b.Wait()
	fa.set("/dev/video0", true)
	b.Request(id)
	b.Wait()

	got := r.list()
	if len(got) != 2 || got[0] || !got[1] {
		t.Fatalf("results = %v, want [false true]", got)
	}
	if b.ShouldShowRationale(id) {
		t.Error("rationale should clear after a grant")
	}
}

func TestManualRequest(t *testing.T) {
	b, _, r := newTestBroker(true)
	id := camera.Identity("/dev/video2")

	if b.Answer(true) {
		t.Error("Answer with nothing pending should report false")
	}

	b.Request(id)
	if got, ok := b.Pending(); !ok || got != id {
		t.Fatalf("Pending() = %q, %v", got, ok)
	}
	if len(r.list()) != 0 {
		t.Fatal("manual mode must not answer on its own")
	}

	if !b.Answer(false) {
		t.Fatal("Answer should resolve the pending request")
	}
	if got := r.list(); len(got) != 1 || got[0] {
		t.Errorf("results = %v, want [false]", got)
	}
	if !b.ShouldShowRationale(id) {
		t.Error("rationale expected after a manual denial")
	}
}

func TestCheckAccessOnRealFile(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("access modes are unix only")
	}
	if os.Geteuid() == 0 {
		t.Skip("root bypasses file modes")
	}

	dir := t.TempDir()
	rw := filepath.Join(dir, "rw")
	ro := filepath.Join(dir, "ro")
	if err := os.WriteFile(rw, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(ro, nil, 0o400); err != nil {
		t.Fatal(err)
	}

	if err := checkAccess(rw); err != nil {
		t.Errorf("read-write file refused: %v", err)
	}
	if err := checkAccess(ro); err == nil {
		t.Error("read-only file should be refused")
	}
	if err := checkAccess(filepath.Join(dir, "missing")); err == nil {
		t.Error("missing file should be refused")
	}
}
