// Package pipeline sequences a full run: extract sections from a document,
// persist them, then review the whole document and each section.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dgallion1/docgrade/internal/config"
	"github.com/dgallion1/docgrade/internal/doctree"
	"github.com/dgallion1/docgrade/internal/parser"
	"github.com/dgallion1/docgrade/internal/review"
	"github.com/dgallion1/docgrade/internal/sections"
)

// Runner executes the stages of a run strictly one after another.
type Runner struct {
	reviewer *review.Reviewer
	log      *slog.Logger
	out      io.Writer
}

// NewRunner creates a runner. reviewer may be nil for extraction-only use.
func NewRunner(reviewer *review.Reviewer, log *slog.Logger, out io.Writer) *Runner {
	if log == nil {
		log = slog.Default()
	}
	if out == nil {
		out = io.Discard
	}
	return &Runner{reviewer: reviewer, log: log, out: out}
}

// Result summarizes a completed run.
type Result struct {
	Entries        []doctree.Entry
	ReportPath     string
	EntryFiles     []string
	DocumentReview string
	Sections       review.Summary
}

// ParseFile reads a document and returns its paragraphs.
func ParseFile(path string) ([]doctree.Paragraph, error) {
	p, err := parser.ForFile(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer f.Close()

	paragraphs, err := p.Parse(f, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return paragraphs, nil
}

// Extract parses paths.Document, writes the overall report and one file per
// entry, and returns the entries.
func (r *Runner) Extract(ctx context.Context, paths config.PathsConfig) ([]doctree.Entry, []string, error) {
	if paths.Document == "" {
		return nil, nil, errors.New("no document path configured")
	}
	paragraphs, err := ParseFile(paths.Document)
	if err != nil {
		return nil, nil, err
	}
	entries := sections.Extract(paragraphs)
	r.log.Info("document extracted", "document", paths.Document, "paragraphs", len(paragraphs), "entries", len(entries))

	if err := sections.WriteReport(entries, paths.Report); err != nil {
		return entries, nil, err
	}
	files, err := sections.WriteEntryFiles(entries, paths.SectionsDir)
	if err != nil {
		return entries, files, err
	}

	fmt.Fprintf(r.out, "处理完成！结果一已保存到 %s\n", paths.Report)
	fmt.Fprintf(r.out, "结果二文件已保存到 %s 目录\n", paths.SectionsDir)
	return entries, files, ctx.Err()
}

// Run executes every stage. Extraction and whole-document review errors are
// fatal; per-section failures are reported in Result.Sections.
func (r *Runner) Run(ctx context.Context, paths config.PathsConfig) (Result, error) {
	if r.reviewer == nil {
		return Result{}, errors.New("pipeline: no reviewer configured")
	}
	fmt.Fprintln(r.out, "检测时间跟论文大小有关，请耐心等待")

	var res Result
	entries, files, err := r.Extract(ctx, paths)
	res.Entries, res.EntryFiles, res.ReportPath = entries, files, paths.Report
	if err != nil {
		return res, fmt.Errorf("extract: %w", err)
	}

	res.DocumentReview, err = r.reviewer.ReviewWholeDocument(ctx, paths.Report, paths.DocumentReview)
	if err != nil {
		return res, fmt.Errorf("document review: %w", err)
	}

	res.Sections, err = r.reviewer.ReviewEachFile(ctx, paths.SectionsDir)
	if err != nil {
		return res, fmt.Errorf("section review: %w", err)
	}
	return res, nil
}
