package fileutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDetectMediaType(t *testing.T) {
	t.Parallel()

	pngHeader := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

	tests := []struct {
		name string
		path string
		data []byte
		want string
	}{
		{name: "jpg extension", path: "photo.jpg", data: nil, want: "image/jpeg"},
		{name: "jpeg extension", path: "photo.JPEG", data: nil, want: "image/jpeg"},
		{name: "png extension", path: "shot.png", data: nil, want: "image/png"},
		{name: "uppercase extension", path: "SHOT.PNG", data: nil, want: "image/png"},
		{name: "unknown extension sniffs content", path: "shot.img", data: pngHeader, want: "image/png"},
		{name: "no extension sniffs content", path: "download", data: []byte("plain words"), want: "text/plain; charset=utf-8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := DetectMediaType(tt.path, tt.data); got != tt.want {
				t.Errorf("DetectMediaType(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestListImages(t *testing.T) {
	t.Parallel()

	t.Run("returns image files sorted by name", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		for _, name := range []string{"c.png", "a.jpg", "b.jpeg", "notes.txt", "doc.pdf"} {
			if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600); err != nil {
				t.Fatal(err)
			}
		}
		if err := os.Mkdir(filepath.Join(dir, "nested"), 0o750); err != nil {
			t.Fatal(err)
		}

		paths, err := ListImages(dir)
		if err != nil {
			t.Fatalf("ListImages() error: %v", err)
		}

		want := []string{
			filepath.Join(dir, "a.jpg"),
			filepath.Join(dir, "b.jpeg"),
			filepath.Join(dir, "c.png"),
		}
		if len(paths) != len(want) {
			t.Fatalf("paths = %v, want %v", paths, want)
		}
		for i := range want {
			if paths[i] != want[i] {
				t.Errorf("paths[%d] = %q, want %q", i, paths[i], want[i])
			}
		}
	})

	t.Run("fails on a plain file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		file := filepath.Join(dir, "plain.jpg")
		if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}

		if _, err := ListImages(file); !errors.Is(err, ErrNotADirectory) {
			t.Errorf("ListImages() error = %v, want ErrNotADirectory", err)
		}
	})

	t.Run("fails on a missing directory", func(t *testing.T) {
		t.Parallel()

		if _, err := ListImages(filepath.Join(t.TempDir(), "missing")); err == nil {
			t.Error("ListImages() error = nil, want stat failure")
		}
	})
}

func TestSafeBaseName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "clean name passes through", input: "Vacation Photos", want: "Vacation Photos"},
		{name: "path separators replaced", input: `a/b\c`, want: "a_b_c"},
		{name: "windows reserved characters replaced", input: `a:b*c?d"e<f>g|h`, want: "a_b_c_d_e_f_g_h"},
		{name: "control characters replaced", input: "a\tb\nc", want: "a_b_c"},
		{name: "surrounding whitespace trimmed", input: "  Trip  ", want: "Trip"},
		{name: "unicode preserved", input: "été à Paris", want: "été à Paris"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := SafeBaseName(tt.input); got != tt.want {
				t.Errorf("SafeBaseName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFileExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "present.jpg")
	if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	if !FileExists(file) {
		t.Error("FileExists(existing file) = false")
	}
	if FileExists(filepath.Join(dir, "absent.jpg")) {
		t.Error("FileExists(missing file) = true")
	}
	if FileExists(dir) {
		t.Error("FileExists(directory) = true")
	}
}

func TestEnsureDir(t *testing.T) {
	t.Parallel()

	t.Run("creates nested directories", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "a", "b", "c")
		if err := EnsureDir(dir, 0o750); err != nil {
			t.Fatalf("EnsureDir() error: %v", err)
		}
		if !IsDir(dir) {
			t.Error("directory was not created")
		}
	})

	t.Run("empty path is a no-op", func(t *testing.T) {
		t.Parallel()

		if err := EnsureDir("", 0o750); err != nil {
			t.Errorf("EnsureDir(\"\") error: %v", err)
		}
	})

	t.Run("existing directory is fine", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		if err := EnsureDir(dir, 0o750); err != nil {
			t.Errorf("EnsureDir(existing) error: %v", err)
		}
	})
}

func TestIsDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "f")
	if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	if !IsDir(dir) {
		t.Error("IsDir(directory) = false")
	}
	if IsDir(file) {
		t.Error("IsDir(file) = true")
	}
	if IsDir(filepath.Join(dir, "missing")) {
		t.Error("IsDir(missing) = true")
	}
}
