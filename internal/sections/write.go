package sections

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/docgrade/internal/doctree"
)

// ReportHeader is the first line of the overall report.
const ReportHeader = "【结果一：各级标题及内容】"

// MaxFilenameRunes bounds the length of a derived entry filename.
const MaxFilenameRunes = 200

var illegalFilenameChars = strings.NewReplacer(
	`\`, "_", "/", "_", "*", "_", "?", "_", ":", "_",
	`"`, "_", "<", "_", ">", "_", "|", "_",
)

// FormatReport renders entries as the human-readable overall report.
func FormatReport(entries []doctree.Entry) string {
	var sb strings.Builder
	sb.WriteString(ReportHeader)
	sb.WriteString("\n\n")
	for _, e := range entries {
		indent := strings.Repeat("    ", max(e.Depth()-1, 0))
		sb.WriteString(indent)
		sb.WriteString("▶ ")
		sb.WriteString(e.JoinedPath())
		sb.WriteString("\n")
		sb.WriteString(indent)
		sb.WriteString(e.Content)
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// WriteReport overwrites path with the overall report. The parent directory
// must already exist.
func WriteReport(entries []doctree.Entry, path string) error {
	if err := os.WriteFile(path, []byte(FormatReport(entries)), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// SanitizeFilename makes a joined heading path safe to use as a file name.
// The result may be empty.
func SanitizeFilename(name string) string {
	name = illegalFilenameChars.Replace(name)
	name = strings.TrimSpace(name)
	if runes := []rune(name); len(runes) > MaxFilenameRunes {
		name = string(runes[:MaxFilenameRunes])
	}
	return name
}

// EntryFilename derives the base name (without extension) for the entry at
// index.
func EntryFilename(e doctree.Entry, index int) string {
	if name := SanitizeFilename(e.JoinedPath()); name != "" {
		return name
	}
	return "untitled_" + strconv.Itoa(index)
}

// WriteEntryFiles writes each entry's content to dir/<name>.txt, creating dir
// if needed. Entries that sanitize to the same name overwrite each other in
// order. It returns the written paths in entry order.
func WriteEntryFiles(entries []doctree.Entry, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create entry dir: %w", err)
	}

	paths := make([]string, 0, len(entries))
	for i, e := range entries {
		path := filepath.Join(dir, EntryFilename(e, i)+".txt")
		if err := os.WriteFile(path, []byte(e.Content), 0o644); err != nil {
			return paths, fmt.Errorf("write entry %d: %w", i, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
