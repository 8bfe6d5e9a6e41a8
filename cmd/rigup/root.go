package main

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/rigup/internal/version"
	"github.com/arthur-debert/rigup/pkg/cleanup"
	"github.com/arthur-debert/rigup/pkg/cobrax/topics"
	"github.com/arthur-debert/rigup/pkg/config"
	"github.com/arthur-debert/rigup/pkg/filesystem"
	"github.com/arthur-debert/rigup/pkg/installer"
	"github.com/arthur-debert/rigup/pkg/linker"
	"github.com/arthur-debert/rigup/pkg/logging"
	"github.com/arthur-debert/rigup/pkg/mirror"
	"github.com/arthur-debert/rigup/pkg/paths"
	"github.com/arthur-debert/rigup/pkg/pipeline"
	"github.com/arthur-debert/rigup/pkg/probe"
	"github.com/arthur-debert/rigup/pkg/run"
	"github.com/arthur-debert/rigup/pkg/steps"
	"github.com/arthur-debert/rigup/pkg/ui"
)

//go:embed topics
var topicsFS embed.FS

// NewRootCmd builds the rigup command. The flag surface is deliberately
// small: --attended switches the interaction mode, --help prints usage.
// Anything else is rejected with a usage message and a non-zero exit.
func NewRootCmd() *cobra.Command {
	var attended bool

	rootCmd := &cobra.Command{
		Use:   "rigup",
		Short: MsgRootShort,
		Long:  MsgRootLong,
		Args:  cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(logging.VerbosityFromEnv())
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProvision(attended)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.Flags().BoolVar(&attended, "attended", false, MsgFlagAttended)
	rootCmd.AddCommand(versionCmd)

	topicsSub, err := fs.Sub(topicsFS, "topics")
	if err == nil {
		_ = topics.Initialize(rootCmd, topicsSub, topics.Options{
			Renderer: topics.NewGlamourRenderer(),
		})
	}

	return rootCmd
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: MsgVersionShort,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("rigup version %s\n", version.Version)
		fmt.Printf("  commit: %s\n", version.Commit)
		fmt.Printf("  built:  %s\n", version.Date)
	},
}

// runProvision wires the components together and drives the pipeline.
func runProvision(attended bool) error {
	cfg, err := config.Load(filepath.Join(xdg.ConfigHome, paths.AppDirName))
	if err != nil {
		return err
	}

	p, err := paths.New("", paths.Layout{
		Bin:       cfg.Workspace.Bin,
		Config:    cfg.Workspace.Config,
		Docs:      cfg.Workspace.Docs,
		Workspace: cfg.Workspace.Root,
	})
	if err != nil {
		return err
	}

	fsys := filesystem.NewOS()
	console := ui.NewConsole()

	handler := cleanup.New()
	handler.InstallSignals(os.Exit)
	scratch := p.ScratchDir()
	handler.Register("scratch-dir", func() {
		if err := fsys.RemoveAll(scratch); err != nil {
			log.Warn().Err(err).Str("path", scratch).Msg("Could not remove scratch directory")
		}
	})

	tiers := make([]mirror.Tier, 0, len(cfg.Mirror.Tiers))
	for _, t := range cfg.Mirror.Tiers {
		tiers = append(tiers, mirror.Tier{Name: t.Name, Endpoints: t.Endpoints})
	}
	registry, err := mirror.NewRegistry(tiers, cfg.Mirror.File)
	if err != nil {
		return err
	}

	runner := run.NewOSRunner()
	inst := installer.New(installer.Options{
		Runner:        runner,
		Registry:      registry,
		FS:            fsys,
		Attended:      attended,
		Binary:        cfg.PkgMgr.Binary,
		InstallArgs:   cfg.PkgMgr.InstallArgs,
		ConfirmArgs:   cfg.PkgMgr.ConfirmArgs,
		RefreshArgs:   cfg.PkgMgr.RefreshArgs,
		MaxAttempts:   cfg.Retry.MaxAttempts,
		Pause:         time.Duration(cfg.Retry.PauseSeconds) * time.Second,
		NoisePatterns: cfg.PkgMgr.Noise,
	})

	resolver := paths.NewResolver(paths.ResolverOptions{
		FS:          fsys,
		Home:        p.HomeDir(),
		SharedRoots: cfg.Dotfiles.SharedRoots,
		DirName:     cfg.Dotfiles.DirName,
		Attended:    attended,
		Chooser:     console,
	})

	deps := steps.Deps{
		FS:        fsys,
		Probe:     probe.New(),
		Installer: inst,
		Registry:  registry,
		Runner:    runner,
		Paths:     p,
		Resolver:  resolver,
		Linker:    linker.New(fsys),
		Config:    cfg,
		Cleanup:   handler,
	}

	ctx := pipeline.NewContext(attended)
	result := pipeline.NewRunner(steps.Pipeline(deps), console).Run(ctx)

	if err := pipeline.WriteReceipt(fsys, p.ReceiptPath(), result); err != nil {
		fmt.Fprintf(os.Stderr, MsgReceiptFailed+"\n", err)
	}
	handler.RunAll()

	fmt.Print(renderSummary(result, console.Format()))
	return result.Err()
}
