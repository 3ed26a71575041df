package relocate

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMoveFileRenames(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "vbox")
	dest := filepath.Join(dir, "keg", "vbox")

	if err := os.WriteFile(src, []byte("0123456789"), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		t.Fatal(err)
	}

	size, err := moveFile(src, dest)
	if err != nil {
		t.Fatalf("moveFile: %v", err)
	}

	if size != 10 {
		t.Errorf("size = %d, want 10", size)
	}

	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Errorf("source still present after move")
	}
}

func TestMoveFileSurfacesRenameErrors(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}

	srcDir := t.TempDir()
	destDir := t.TempDir()
	src := filepath.Join(srcDir, "vbox")

	if err := os.WriteFile(src, []byte("vbox-bin"), 0o755); err != nil {
		t.Fatal(err)
	}

	// A read-only source directory fails the rename with EACCES, which
	// must not trigger the cross-device copy fallback.
	if err := os.Chmod(srcDir, 0o555); err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() { _ = os.Chmod(srcDir, 0o755) })

	dest := filepath.Join(destDir, "vbox")

	if _, err := moveFile(src, dest); err == nil {
		t.Fatal("moveFile succeeded with an un-renamable source")
	}

	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Errorf("destination created despite failed rename")
	}
}

func TestCopyFileRestoresMode(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dest := filepath.Join(dir, "dest")

	if err := os.WriteFile(src, []byte("new"), 0o755); err != nil {
		t.Fatal(err)
	}

	// A stale destination without the exec bit must not keep its mode.
	if err := os.WriteFile(dest, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := copyFile(src, dest, 0o755); err != nil {
		t.Fatalf("copyFile: %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}

	if string(data) != "new" {
		t.Errorf("content = %q, want %q", data, "new")
	}

	info, err := os.Stat(dest)
	if err != nil {
		t.Fatal(err)
	}

	if info.Mode().Perm() != 0o755 {
		t.Errorf("mode = %v, want 0755", info.Mode().Perm())
	}
}
