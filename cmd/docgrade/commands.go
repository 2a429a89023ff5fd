package main

import (
	"context"
	"fmt"

	"github.com/dgallion1/docgrade/internal/config"
	"github.com/dgallion1/docgrade/internal/grader"
	"github.com/dgallion1/docgrade/internal/pipeline"
	"github.com/dgallion1/docgrade/internal/review"
	"github.com/dgallion1/docgrade/internal/watch"
	"github.com/spf13/cobra"
)

// pathFlags override config.PathsConfig when set.
type pathFlags struct {
	report         string
	sectionsDir    string
	documentReview string
}

func (f *pathFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.report, "report", "", "overall report path (default: overall.txt)")
	cmd.Flags().StringVar(&f.sectionsDir, "sections-dir", "", "directory for per-section files (default: specific)")
	cmd.Flags().StringVar(&f.documentReview, "review-out", "", "whole-document review path (default: overall_AI.txt)")
}

func (f *pathFlags) apply(p config.PathsConfig, args []string) config.PathsConfig {
	if len(args) > 0 {
		p.Document = args[0]
	}
	if f.report != "" {
		p.Report = f.report
	}
	if f.sectionsDir != "" {
		p.SectionsDir = f.sectionsDir
	}
	if f.documentReview != "" {
		p.DocumentReview = f.documentReview
	}
	return p
}

// reviewer connects to the configured grading service.
func (a *app) reviewer(ctx context.Context, cmd *cobra.Command) (*review.Reviewer, *grader.Client, error) {
	if err := a.cfg.ValidateLLM(); err != nil {
		return nil, nil, err
	}
	client, err := grader.New(ctx, a.cfg.LLM, a.log)
	if err != nil {
		return nil, nil, err
	}
	a.log.Debug("grader ready", "provider", client.Provider, "model", client.Model)
	r := review.New(review.Options{Grader: client, Log: a.log, Out: cmd.OutOrStdout()})
	return r, client, nil
}

func extractCmd(a *app) *cobra.Command {
	var pf pathFlags
	cmd := &cobra.Command{
		Use:   "extract [document]",
		Short: "Write the heading report and one file per section",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := pf.apply(a.cfg.Paths, args)
			runner := pipeline.NewRunner(nil, a.log, cmd.OutOrStdout())
			entries, _, err := runner.Extract(cmd.Context(), paths)
			if err != nil {
				return err
			}
			a.log.Debug("extract finished", "entries", len(entries))
			return nil
		},
	}
	pf.register(cmd)
	return cmd
}

func reviewDocCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "review-doc [report]",
		Short: "Grade a whole document report and save the reply",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := a.cfg.Paths.Report
			if len(args) > 0 {
				in = args[0]
			}
			if out == "" {
				out = a.cfg.Paths.DocumentReview
			}
			r, client, err := a.reviewer(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer client.Close()
			_, err = r.ReviewWholeDocument(cmd.Context(), in, out)
			return err
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "review output path (default: overall_AI.txt)")
	return cmd
}

func reviewSectionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "review-sections [dir]",
		Short: "Grade every file in a sections directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := a.cfg.Paths.SectionsDir
			if len(args) > 0 {
				dir = args[0]
			}
			r, client, err := a.reviewer(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer client.Close()
			summary, err := r.ReviewEachFile(cmd.Context(), dir)
			if err != nil {
				return err
			}
			if len(summary.Failed) > 0 {
				a.log.Warn("some sections were not reviewed", "failed", len(summary.Failed))
			}
			return nil
		},
	}
}

func runCmd(a *app) *cobra.Command {
	var pf pathFlags
	cmd := &cobra.Command{
		Use:   "run [document]",
		Short: "Extract, then grade the whole document and every section",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := pf.apply(a.cfg.Paths, args)
			r, client, err := a.reviewer(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			res, err := pipeline.NewRunner(r, a.log, cmd.OutOrStdout()).Run(cmd.Context(), paths)
			if err != nil {
				return err
			}
			a.log.Info("run complete",
				"entries", len(res.Entries),
				"reviewed", len(res.Sections.Written),
				"failed", len(res.Sections.Failed),
				"llm", client.Stats.Snapshot(),
			)
			return nil
		},
	}
	pf.register(cmd)
	return cmd
}

func watchCmd(a *app) *cobra.Command {
	var pf pathFlags
	cmd := &cobra.Command{
		Use:   "watch [document]",
		Short: "Re-run extraction whenever the document changes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := pf.apply(a.cfg.Paths, args)
			if paths.Document == "" {
				return fmt.Errorf("no document given")
			}
			runner := pipeline.NewRunner(nil, a.log, cmd.OutOrStdout())
			w, err := watch.New(watch.Options{
				Path: paths.Document,
				Log:  a.log,
				OnChange: func(ctx context.Context) error {
					_, _, err := runner.Extract(ctx, paths)
					return err
				},
			})
			if err != nil {
				return err
			}
			return w.Run(cmd.Context())
		},
	}
	pf.register(cmd)
	return cmd
}
