// Package review submits a whole document and its extracted sections to a
// grading service and stores the replies next to the inputs.
package review

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ResultsDirName is the subdirectory of a sections directory that receives
// per-section reviews.
const ResultsDirName = "AI评审结果"

// Grader is the grading service as seen by the reviewer.
type Grader interface {
	Grade(ctx context.Context, system, payload string) (string, error)
}

// Options configures a Reviewer.
type Options struct {
	Grader Grader
	Log    *slog.Logger
	Out    io.Writer // console progress; io.Discard when nil
}

// Reviewer runs the two review stages.
type Reviewer struct {
	grader Grader
	log    *slog.Logger
	out    io.Writer
}

func New(opts Options) *Reviewer {
	r := &Reviewer{grader: opts.Grader, log: opts.Log, out: opts.Out}
	if r.log == nil {
		r.log = slog.Default()
	}
	if r.out == nil {
		r.out = io.Discard
	}
	return r
}

// FileError records one file the batch could not review.
type FileError struct {
	Name string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

// Summary reports the outcome of ReviewEachFile.
type Summary struct {
	OutputDir string
	Written   []string
	Failed    []FileError
}

// ReviewWholeDocument grades the text at docPath as a complete paper and
// writes the reply to outPath. Any failure aborts the stage.
func (r *Reviewer) ReviewWholeDocument(ctx context.Context, docPath, outPath string) (string, error) {
	data, err := os.ReadFile(docPath)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}

	result, err := r.grader.Grade(ctx, DocumentPrompt, BuildPayload(string(data)))
	if err != nil {
		return "", fmt.Errorf("grade document: %w", err)
	}

	if err := os.WriteFile(outPath, []byte(result), 0o644); err != nil {
		return "", fmt.Errorf("write document review: %w", err)
	}
	r.log.Info("document reviewed", "input", docPath, "output", outPath)
	fmt.Fprintf(r.out, "AI分析结果已保存到%s\n", outPath)
	fmt.Fprintln(r.out, result)
	return result, nil
}

// ReviewEachFile grades every regular file directly inside dir, in lexical
// order, and writes one review per file into dir/AI评审结果. A failure on one
// file is logged and recorded in the summary; the batch continues.
func (r *Reviewer) ReviewEachFile(ctx context.Context, dir string) (Summary, error) {
	outDir := filepath.Join(dir, ResultsDirName)
	summary := Summary{OutputDir: outDir}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return summary, fmt.Errorf("create results dir: %w", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return summary, fmt.Errorf("list %s: %w", dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		name := entry.Name()
		path := filepath.Join(dir, name)
		if !isRegularFile(entry, path) {
			continue
		}

		outPath, err := r.reviewFile(ctx, path, outDir)
		if err != nil {
			r.log.Error("section review failed", "file", name, "error", err)
			fmt.Fprintf(r.out, "处理文件 %s 时出错：%v\n", name, err)
			summary.Failed = append(summary.Failed, FileError{Name: name, Err: err})
			continue
		}
		summary.Written = append(summary.Written, outPath)
		fmt.Fprintf(r.out, "成功处理：%s\n", name)
	}

	r.log.Info("section reviews complete", "written", len(summary.Written), "failed", len(summary.Failed), "output", outDir)
	fmt.Fprintf(r.out, "\n所有文件处理完成，结果已保存至：%s\n", outDir)
	return summary, nil
}

func (r *Reviewer) reviewFile(ctx context.Context, path, outDir string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read: %w", err)
	}

	result, err := r.grader.Grade(ctx, SectionPrompt, BuildPayload(string(data)))
	if err != nil {
		return "", fmt.Errorf("grade: %w", err)
	}

	name := filepath.Base(path)
	outPath := filepath.Join(outDir, ResultFilename(name))
	content := fmt.Sprintf("文件名：%s\n\n%s", name, result)
	if err := os.WriteFile(outPath, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write: %w", err)
	}
	return outPath, nil
}

// Scope selects which prompt GradeText uses.
type Scope string

const (
	ScopeDocument Scope = "document"
	ScopeSection  Scope = "section"
)

// GradeText grades text already in memory with the prompt for scope.
func (r *Reviewer) GradeText(ctx context.Context, scope Scope, text string) (string, error) {
	var system string
	switch scope {
	case ScopeDocument:
		system = DocumentPrompt
	case ScopeSection:
		system = SectionPrompt
	default:
		return "", fmt.Errorf("unknown review scope %q", scope)
	}
	return r.grader.Grade(ctx, system, BuildPayload(text))
}

// ResultFilename derives the review file name for an input file name:
// "<base>_AI评审结果<ext>".
func ResultFilename(name string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	if strings.Trim(base, ".") == "" {
		// Dot files such as ".notes" have no extension.
		base, ext = name, ""
	}
	return base + "_" + ResultsDirName + ext
}

// isRegularFile follows symlinks the way a stat of the path would.
func isRegularFile(entry os.DirEntry, path string) bool {
	if entry.Type().IsRegular() {
		return true
	}
	if entry.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
