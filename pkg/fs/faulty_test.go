package fs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFaulty_Fail_InjectsErrorUntilHealed(t *testing.T) {
	t.Parallel()

	fsys := NewFaulty(NewReal())
	path := filepath.Join(t.TempDir(), "shop.db")
	boom := errors.New("disk full")

	fsys.Fail(OpWriteFileAtomic, boom)

	err := fsys.WriteFileAtomic(path, []byte("x"), 0o644)
	if !errors.Is(err, boom) || !IsInjected(err) {
		t.Fatalf("err=%v, want injected %v", err, boom)
	}

	if _, statErr := os.Stat(path); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("file written despite fault: %v", statErr)
	}

	fsys.Heal(OpWriteFileAtomic)

	if err := fsys.WriteFileAtomic(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("healed write: %v", err)
	}

	if got, want := fsys.Calls(OpWriteFileAtomic), 2; got != want {
		t.Fatalf("calls=%d, want %d", got, want)
	}
}

func TestIsInjected_ReturnsFalseForRealErrors(t *testing.T) {
	t.Parallel()

	fsys := NewFaulty(NewReal())

	_, err := fsys.ReadFile(filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Fatal("expected error")
	}

	if IsInjected(err) {
		t.Fatalf("real error reported as injected: %v", err)
	}
}
