// Command preen keeps a generated client library's working tree in sync
// with upstream generator output: it merges staged files, re-applies
// shared templates, and runs the configured patch rules.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/prgm-dev/preen/config"
	"github.com/prgm-dev/preen/fs"
	billyfs "github.com/prgm-dev/preen/fs/billy"
	"github.com/prgm-dev/preen/patch"
	"github.com/prgm-dev/preen/runner"
	"github.com/prgm-dev/preen/sync"
	"github.com/prgm-dev/preen/templates"
	"github.com/prgm-dev/preen/vcs"
	"github.com/prgm-dev/preen/watch"
)

var (
	// Global flags
	repoPath    string
	configPath  string
	verbose     bool
	dryRun      bool
	doCommit    bool
	keepStaging bool
	authorName  string
	authorEmail string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "preen",
	Short: "preen - keep generated client library sources in sync",
	Long: `preen merges freshly generated sources from a staging directory into
the repository working tree, re-applies the shared template set, and runs
the configured patch rules. Paths named by the staging and template
excludes are never overwritten.

Configuration lives in .preen.yaml at the repository root.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// runCmd executes the whole pipeline: sync, templates, patches.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run staging sync, templates, and patches",
	RunE: func(cmd *cobra.Command, args []string) error {
		fsys, cfg, err := openWorkingTree()
		if err != nil {
			return err
		}

		result, err := runner.Run(cmd.Context(), fsys, cfg, runner.Options{
			DryRun:    dryRun,
			Commit:    doCommit,
			Signature: vcs.Signature{Name: authorName, Email: authorEmail},
		})
		if err != nil {
			return err
		}

		logger.Info("pipeline finished",
			zap.Int("synced", result.Plan.Changes()),
			zap.Strings("protected", result.Plan.Skipped()),
			zap.Int("templated", len(result.Templated)),
			zap.Int("patched", result.Patched),
			zap.Bool("dry_run", dryRun),
		)
		if result.CommitSHA != "" {
			logger.Info("created commit", zap.String("sha", result.CommitSHA))
		}
		return nil
	},
}

// syncCmd runs only the staging merge.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Merge the staging directory into the working tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		fsys, cfg, err := openWorkingTree()
		if err != nil {
			return err
		}

		plan, err := sync.Run(fsys, sync.Options{
			StagingDir:  cfg.Staging.Dir,
			Excludes:    cfg.Staging.Excludes,
			DryRun:      dryRun,
			KeepStaging: keepStaging,
		})
		if err != nil {
			return err
		}

		for _, op := range plan.Ops {
			logger.Debug("planned operation",
				zap.String("path", op.Path),
				zap.String("kind", string(op.Kind)))
		}
		logger.Info("sync finished",
			zap.Int("changes", plan.Changes()),
			zap.Strings("protected", plan.Skipped()),
			zap.Bool("dry_run", dryRun))
		return nil
	},
}

// templatesCmd runs only template application.
var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Re-apply the shared template set",
	RunE: func(cmd *cobra.Command, args []string) error {
		fsys, cfg, err := openWorkingTree()
		if err != nil {
			return err
		}

		opts := templates.Options{
			Excludes: cfg.Templates.Excludes,
			Data: templates.Data{
				Name:          cfg.Repo.Name,
				DefaultBranch: cfg.Repo.DefaultBranch,
			},
			DryRun: dryRun,
		}
		if cfg.Templates.Dir != "" {
			opts.Source = os.DirFS(cfg.Templates.Dir)
			opts.Root = "."
		}

		written, err := templates.Apply(fsys, opts)
		if err != nil {
			return err
		}

		logger.Info("templates finished",
			zap.Strings("written", written),
			zap.Bool("dry_run", dryRun))
		return nil
	},
}

// patchCmd runs only the patch rules.
var patchCmd = &cobra.Command{
	Use:   "patch",
	Short: "Apply the configured patch rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		fsys, cfg, err := openWorkingTree()
		if err != nil {
			return err
		}

		n, err := patch.ApplyAll(fsys, cfg.Patches)
		if err != nil {
			return err
		}

		logger.Info("patches finished", zap.Int("replacements", n))
		return nil
	},
}

// pullCmd mirrors the upstream repository and refreshes staging from it.
var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Mirror the upstream generator output into staging",
	RunE: func(cmd *cobra.Command, args []string) error {
		fsys, cfg, err := openWorkingTree()
		if err != nil {
			return err
		}

		mirror, err := vcs.Mirror(cmd.Context(), vcs.MirrorOptions{
			URL:    cfg.Upstream.URL,
			Branch: cfg.Upstream.Branch,
		})
		if err != nil {
			return err
		}
		logger.Info("mirror up to date", zap.String("path", mirror))

		if err := sync.Stage(fsys, os.DirFS(mirror), cfg.Upstream.Path, cfg.Staging.Dir); err != nil {
			return err
		}
		logger.Info("staging refreshed",
			zap.String("staging", cfg.Staging.Dir),
			zap.String("subtree", cfg.Upstream.Path))
		return nil
	},
}

// watchCmd re-runs the pipeline whenever staging changes.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the staging directory and re-run on change",
	RunE: func(cmd *cobra.Command, args []string) error {
		fsys, cfg, err := openWorkingTree()
		if err != nil {
			return err
		}

		abs, err := fs.GetAbs(repoPath)
		if err != nil {
			return err
		}

		w, err := watch.New(filepath.Join(abs, cfg.Staging.Dir), 0, func(ctx context.Context) {
			result, runErr := runner.Run(ctx, fsys, cfg, runner.Options{KeepStaging: true})
			if runErr != nil {
				logger.Error("pipeline failed", zap.Error(runErr))
				return
			}
			logger.Info("pipeline re-ran",
				zap.Int("synced", result.Plan.Changes()),
				zap.Int("patched", result.Patched))
		})
		if err != nil {
			return err
		}

		if err := w.Start(cmd.Context()); err != nil {
			return err
		}
		defer w.Stop()

		logger.Info("watching staging directory", zap.String("dir", cfg.Staging.Dir))
		<-cmd.Context().Done()
		return nil
	},
}

// openWorkingTree opens the repository filesystem and its configuration.
func openWorkingTree() (fs.Filesystem, *config.Config, error) {
	abs, err := fs.GetAbs(repoPath)
	if err != nil {
		return nil, nil, err
	}

	fsys := billyfs.NewOSFS(abs)
	cfg, err := config.Load(fsys, configPath)
	if err != nil {
		return nil, nil, err
	}
	return fsys, cfg, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&repoPath, "repo", "r", ".", "repository root")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultFileName, "configuration file, relative to the repository root")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "plan without writing")
	runCmd.Flags().BoolVar(&doCommit, "commit", false, "commit the result")
	runCmd.Flags().StringVar(&authorName, "author-name", "preen", "commit author name")
	runCmd.Flags().StringVar(&authorEmail, "author-email", "preen@localhost", "commit author email")

	syncCmd.Flags().BoolVar(&dryRun, "dry-run", false, "plan without writing")
	syncCmd.Flags().BoolVar(&keepStaging, "keep-staging", false, "leave the staging directory in place")

	templatesCmd.Flags().BoolVar(&dryRun, "dry-run", false, "report without writing")

	rootCmd.AddCommand(runCmd, syncCmd, templatesCmd, patchCmd, pullCmd, watchCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
