package sections

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/docgrade/internal/doctree"
)

func TestFormatReport(t *testing.T) {
	entries := []doctree.Entry{
		{Path: []string{"A"}, Content: "x"},
		{Path: []string{"A", "B"}, Content: "y\nz"},
	}
	want := "【结果一：各级标题及内容】\n\n" +
		"▶ A\nx\n\n" +
		"    ▶ A → B\n    y\nz\n\n"
	if got := FormatReport(entries); got != want {
		t.Errorf("report mismatch:\n got: %q\nwant: %q", got, want)
	}
}

func TestWriteReport_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overall.txt")
	if err := os.WriteFile(path, []byte("stale content that is longer"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := WriteReport(nil, path); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != ReportHeader+"\n\n" {
		t.Errorf("unexpected report %q", data)
	}
}

func TestWriteReport_MissingParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "overall.txt")
	err := WriteReport(nil, path)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`A → B`, `A → B`},
		{`a\b/c*d?e:f"g<h>i|j`, `a_b_c_d_e_f_g_h_i_j`},
		{"  padded  ", "padded"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if SanitizeFilename(tt.in) != SanitizeFilename(tt.in) {
			t.Errorf("SanitizeFilename(%q) is not deterministic", tt.in)
		}
	}
}

func TestSanitizeFilename_TruncatesRunes(t *testing.T) {
	long := strings.Repeat("绪论", 150)
	got := SanitizeFilename(long)
	if n := len([]rune(got)); n != MaxFilenameRunes {
		t.Fatalf("expected %d runes, got %d", MaxFilenameRunes, n)
	}
	if !strings.HasPrefix(long, got) {
		t.Errorf("truncation should keep the prefix")
	}
}

func TestWriteEntryFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "specific")
	entries := []doctree.Entry{
		{Path: []string{"第一章", "1.1 背景"}, Content: "背景内容"},
		{Path: []string{"Q/A"}, Content: "answers"},
		{Path: []string{"  "}, Content: "blank title"},
	}
	paths, err := WriteEntryFiles(entries, dir)
	if err != nil {
		t.Fatalf("WriteEntryFiles: %v", err)
	}

	want := map[string]string{
		"第一章 → 1.1 背景.txt": "背景内容",
		"Q_A.txt":          "answers",
		"untitled_2.txt":   "blank title",
	}
	if len(paths) != len(want) {
		t.Fatalf("expected %d paths, got %v", len(want), paths)
	}
	for name, content := range want {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Errorf("read %s: %v", name, err)
			continue
		}
		if string(data) != content {
			t.Errorf("%s: expected %q, got %q", name, content, data)
		}
	}

	// Existing directory is fine.
	if _, err := WriteEntryFiles(entries, dir); err != nil {
		t.Fatalf("second WriteEntryFiles: %v", err)
	}
}

func TestWriteEntryFiles_CollisionLastWriteWins(t *testing.T) {
	dir := t.TempDir()
	entries := []doctree.Entry{
		{Path: []string{"A:B"}, Content: "first"},
		{Path: []string{"A?B"}, Content: "second"},
	}
	if _, err := WriteEntryFiles(entries, dir); err != nil {
		t.Fatalf("WriteEntryFiles: %v", err)
	}
	files, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 surviving file, got %d", len(files))
	}
	data, err := os.ReadFile(filepath.Join(dir, "A_B.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "second" {
		t.Errorf("expected later entry content, got %q", data)
	}
}
