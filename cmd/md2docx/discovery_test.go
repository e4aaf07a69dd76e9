package main

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestResolveOutputPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		outputDir string
		baseDir   string
		want      string
	}{
		{"next to source", filepath.Join("docs", "guide.md"), "", "", filepath.Join("docs", "guide.docx")},
		{"markdown extension", filepath.Join("docs", "guide.markdown"), "", "", filepath.Join("docs", "guide.docx")},
		{"explicit file", "guide.md", filepath.Join("out", "final.docx"), "", filepath.Join("out", "final.docx")},
		{"explicit file any case", "guide.md", "FINAL.DOCX", "", "FINAL.DOCX"},
		{"into directory", filepath.Join("docs", "guide.md"), "out", "", filepath.Join("out", "guide.docx")},
		{"mirrors tree", filepath.Join("docs", "api", "v1.md"), "out", "docs", filepath.Join("out", "api", "v1.docx")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := resolveOutputPath(tt.input, tt.outputDir, tt.baseDir); got != tt.want {
				t.Errorf("resolveOutputPath(%q, %q, %q) = %q, want %q", tt.input, tt.outputDir, tt.baseDir, got, tt.want)
			}
		})
	}
}

func TestPreviewOutputPath(t *testing.T) {
	t.Parallel()

	if got := previewOutputPath(filepath.Join("out", "guide.docx")); got != filepath.Join("out", "guide.html") {
		t.Errorf("previewOutputPath() = %q", got)
	}
}

func TestValidateMarkdownExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path    string
		wantErr bool
	}{
		{"doc.md", false},
		{"doc.MD", false},
		{"doc.markdown", false},
		{"doc.txt", true},
		{"doc", true},
	}

	for _, tt := range tests {
		err := validateMarkdownExtension(tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("validateMarkdownExtension(%q) = %v, wantErr %v", tt.path, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidExtension) {
			t.Errorf("error = %v, want ErrInvalidExtension", err)
		}
	}
}

func TestValidateWorkers(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 1, 8} {
		if err := validateWorkers(n); err != nil {
			t.Errorf("validateWorkers(%d) = %v, want nil", n, err)
		}
	}
	for _, n := range []int{-1, 9} {
		if err := validateWorkers(n); !errors.Is(err, ErrInvalidWorkerCount) {
			t.Errorf("validateWorkers(%d) = %v, want ErrInvalidWorkerCount", n, err)
		}
	}
}

func TestDiscoverFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "a.md", "# A")
	writeFile(t, dir, filepath.Join("sub", "b.markdown"), "# B")
	writeFile(t, dir, "notes.txt", "skip")

	t.Run("directory is walked and mirrored", func(t *testing.T) {
		t.Parallel()

		files, err := discoverFiles(dir, "out")
		if err != nil {
			t.Fatalf("discoverFiles() error = %v", err)
		}
		var outputs []string
		for _, f := range files {
			outputs = append(outputs, f.OutputPath)
		}
		sort.Strings(outputs)
		want := []string{filepath.Join("out", "a.docx"), filepath.Join("out", "sub", "b.docx")}
		if len(outputs) != 2 || outputs[0] != want[0] || outputs[1] != want[1] {
			t.Errorf("outputs = %v, want %v", outputs, want)
		}
	})

	t.Run("single file", func(t *testing.T) {
		t.Parallel()

		files, err := discoverFiles(filepath.Join(dir, "a.md"), "")
		if err != nil {
			t.Fatalf("discoverFiles() error = %v", err)
		}
		if len(files) != 1 || files[0].OutputPath != filepath.Join(dir, "a.docx") {
			t.Errorf("files = %+v", files)
		}
	})

	t.Run("single file with wrong extension", func(t *testing.T) {
		t.Parallel()

		if _, err := discoverFiles(filepath.Join(dir, "notes.txt"), ""); !errors.Is(err, ErrInvalidExtension) {
			t.Errorf("error = %v, want ErrInvalidExtension", err)
		}
	})

	t.Run("missing path", func(t *testing.T) {
		t.Parallel()

		if _, err := discoverFiles(filepath.Join(dir, "missing.md"), ""); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("error = %v, want os.ErrNotExist", err)
		}
	})
}
