package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/ppiankov/veritas/internal/config"
	"github.com/ppiankov/veritas/internal/pipeline"
	"github.com/ppiankov/veritas/internal/render"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// Version is set at build time
var Version = "0.1.0"

// ErrAnalysisFailed is returned after a failed analysis has been shown to the user
var ErrAnalysisFailed = errors.New("analysis failed")

var (
	cfgFile   string
	verbose   bool
	jsonOut   bool
	noCache   bool
	ephemeral bool

	appConfig *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "veritas",
	Short: "Veritas - AI fact and legal checks",
	Long: `Veritas sends a claim, link or document to a generative AI provider
and reports a scored verdict.

Fact checks answer True, Fake or Insufficient data.
Legal checks answer Original, Fake or Needs Further Verification.

Successful checks are kept in a local history of the 50 most recent entries.
Every submission asks the provider again unless cache.enabled is set in the
config file; --no-cache forces a fresh call even then.`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// Execute runs the root command
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("veritas v%s\n", Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.veritas/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "print JSON instead of formatted output")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "always ask the provider, ignoring cached results")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "keep history and preferences in memory only")

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads the config file and VERITAS_* environment variables,
// then initializes logging
func initConfig(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if cmd == configInitCmd {
		// init creates the file, so it may not exist yet
		if _, err := os.Stat(path); err != nil {
			path = ""
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if err := config.InitLogger(cfg.Log); err != nil {
		return err
	}
	if cfg.Source != "" {
		zap.L().Debug("using config file", zap.String("path", cfg.Source))
	}

	appConfig = cfg
	return nil
}

// openPipeline builds the shared components for a command
func openPipeline() (*pipeline.Pipeline, error) {
	return pipeline.New(appConfig, pipeline.Options{
		NoCache:   noCache,
		Ephemeral: ephemeral,
	})
}

// newRenderer returns a renderer in the stored theme, sized to the terminal
func newRenderer(p *pipeline.Pipeline) *render.Renderer {
	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 40 {
		width = min(w, 120)
	}
	return render.New(p.Prefs.Theme(), width)
}

// closePipeline closes p, keeping the first error
func closePipeline(p *pipeline.Pipeline, err *error) {
	if cerr := p.Close(); cerr != nil && *err == nil {
		*err = cerr
	}
}
