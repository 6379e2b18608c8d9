package artifact

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	heimdallerrors "github.com/ericrobolson/heimdall/errors"
)

func writeArtifact(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "plugin.wasm")
	if err := os.WriteFile(path, []byte("v1"), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	return path
}

// touch advances the file's mtime by a full second so the change is
// visible even on filesystems with coarse timestamps.
func touch(t *testing.T, path string) time.Time {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	next := info.ModTime().Add(time.Second)
	if err := os.Chtimes(path, next, next); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	return next
}

func TestStatDetector_Unchanged(t *testing.T) {
	path := writeArtifact(t, t.TempDir())
	d := NewStatDetector(path)

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}

	dec, err := d.Poll(info.ModTime())
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if dec.Changed {
		t.Error("expected Unchanged when mtime has not advanced")
	}
	if !dec.ModTime.Equal(info.ModTime()) {
		t.Errorf("ModTime = %v, want %v", dec.ModTime, info.ModTime())
	}
}

func TestStatDetector_Changed(t *testing.T) {
	path := writeArtifact(t, t.TempDir())
	d := NewStatDetector(path)

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	since := info.ModTime()
	next := touch(t, path)

	dec, err := d.Poll(since)
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if !dec.Changed {
		t.Error("expected Changed after mtime advanced")
	}
	if !dec.ModTime.Equal(next) {
		t.Errorf("ModTime = %v, want %v", dec.ModTime, next)
	}
}

func TestStatDetector_EqualTimestampIsUnchanged(t *testing.T) {
	// The contract is strictly-greater, not greater-or-equal.
	path := writeArtifact(t, t.TempDir())
	d := NewStatDetector(path)

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}

	dec, err := d.Poll(info.ModTime())
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if dec.Changed {
		t.Error("equal mtime must report Unchanged")
	}
}

func TestStatDetector_MissingFile(t *testing.T) {
	d := NewStatDetector(filepath.Join(t.TempDir(), "absent.wasm"))

	_, err := d.Poll(time.Now())
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !stderrors.Is(err, &heimdallerrors.Error{Phase: heimdallerrors.PhasePoll, Kind: heimdallerrors.KindIO}) {
		t.Errorf("err = %v, want poll io error", err)
	}
}

func TestNotifyDetector_QuietThenChanged(t *testing.T) {
	dir := t.TempDir()
	path := writeArtifact(t, dir)

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	since := info.ModTime()

	d, err := NewNotifyDetector(path)
	if err != nil {
		t.Fatalf("NewNotifyDetector: %v", err)
	}
	defer d.Close()

	dec, err := d.Poll(since)
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if dec.Changed {
		t.Error("expected Unchanged before any write")
	}

	if err := os.WriteFile(path, []byte("v2"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	touch(t, path)

	// Event delivery is asynchronous; poll until it lands.
	deadline := time.Now().Add(5 * time.Second)
	for {
		dec, err = d.Poll(since)
		if err != nil {
			t.Fatalf("Poll: %v", err)
		}
		if dec.Changed {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("change never observed through fsnotify")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if !dec.ModTime.After(since) {
		t.Errorf("ModTime %v not after %v", dec.ModTime, since)
	}
}

func TestNotifyDetector_IgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeArtifact(t, dir)

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	since := info.ModTime()

	d, err := NewNotifyDetector(path)
	if err != nil {
		t.Fatalf("NewNotifyDetector: %v", err)
	}
	defer d.Close()

	if err := os.WriteFile(filepath.Join(dir, "other.wasm"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write sibling: %v", err)
	}

	// Give the event time to arrive, then confirm it was filtered out.
	time.Sleep(200 * time.Millisecond)
	dec, err := d.Poll(since)
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if dec.Changed {
		t.Error("sibling file write must not trigger a change")
	}
}
