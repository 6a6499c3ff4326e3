package main

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pders01/cratuity/internal/cache"
	"github.com/pders01/cratuity/internal/config"
	"github.com/pders01/cratuity/internal/crates"
	"github.com/pders01/cratuity/internal/debuglog"
	"github.com/pders01/cratuity/internal/events"
	"github.com/pders01/cratuity/internal/feed"
	"github.com/pders01/cratuity/internal/index"
	"github.com/pders01/cratuity/internal/opener"
	"github.com/pders01/cratuity/internal/pager"
	"github.com/pders01/cratuity/internal/tui"
	"github.com/pders01/cratuity/internal/validation"
	"github.com/pders01/cratuity/internal/worker"
)

// Version is the version of the application, set at build time
var Version = "dev"

var (
	configPath     string
	findQuery      string
	sortName       string
	logLevel       string
	generateConfig bool
	quiet          bool
)

var rootCmd = &cobra.Command{
	Use:   "cratuity",
	Short: tui.Tagline,
	Long: `cratuity searches crates.io from the terminal.

Results are fetched in batches and cached for the session, so paging
through a result set only goes to the network once per batch.`,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE:         runApp,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		printVersion(os.Stdout)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configGenCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write the default configuration file",
	Run: func(cmd *cobra.Command, args []string) {
		if err := writeDefaultConfig(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("cratuity {{.Version}}\n")

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "path to configuration file")
	flags.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error, off)")

	rootCmd.Flags().StringVarP(&findQuery, "find", "f", "", "start with a search for this query")
	rootCmd.Flags().StringVarP(&sortName, "sort", "s", "", "sort order (relevance, downloads, recent-downloads, recent-updates, new)")
	rootCmd.Flags().BoolVar(&generateConfig, "generate-config", false, "write the default config file and exit")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "skip the startup banner")

	configCmd.AddCommand(configGenCmd)
	rootCmd.AddCommand(versionCmd, configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "cratuity %s\n", Version)
	fmt.Fprintln(w, tui.Tagline)
	fmt.Fprintln(w, "github.com/pders01/cratuity")
}

func writeDefaultConfig(w io.Writer) error {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	if err := config.GenerateDefaultConfig(path); err != nil {
		return fmt.Errorf("generating config: %w", err)
	}
	fmt.Fprintf(w, "Generated default configuration at: %s\n", path)
	return nil
}

// loadConfig applies command-line overrides on top of the config file.
func loadConfig() (*config.Config, crates.Sort, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, crates.SortRelevance, fmt.Errorf("loading config: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	name := cfg.Search.DefaultSort
	if sortName != "" {
		name = sortName
	}
	sort, err := crates.ParseSort(name)
	if err != nil {
		return nil, crates.SortRelevance, err
	}
	cfg.Search.DefaultSort = sort.Token()

	return cfg, sort, nil
}

func runApp(cmd *cobra.Command, args []string) error {
	if generateConfig {
		return writeDefaultConfig(cmd.OutOrStdout())
	}

	cfg, sort, err := loadConfig()
	if err != nil {
		return err
	}

	if err := debuglog.Setup(debuglog.ParseLogLevel(cfg.Logging.Level), cfg.Logging.File); err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	defer debuglog.Close()

	tui.ApplyColors(cfg.UI.Colors)
	if !quiet {
		tui.ShowBanner(Version)
	}

	return run(cfg, sort)
}

func run(cfg *config.Config, sort crates.Sort) error {
	idx, err := index.New()
	if err != nil {
		return fmt.Errorf("creating crate index: %w", err)
	}
	defer idx.Close()

	stream := events.NewStream(events.DefaultBuffer)
	w := worker.New(crates.NewClient(cfg), stream)
	w.Start()

	app := tui.NewApp(cfg, tui.Deps{
		Pager:     pager.New(cache.New(cfg.Search.BatchFactor), idx),
		Submitter: w,
		Opener:    opener.NewLauncher(cfg),
		Releases:  feed.NewManager(cfg),
		Finder:    idx,
	})
	if findQuery != "" {
		app.SetInitialSearch(validation.SanitizeQuery(findQuery), sort)
	}

	p := tea.NewProgram(app, tea.WithAltScreen())

	ctx, cancel := context.WithCancel(context.Background())
	stream.StartTicker(cfg.UI.TickInterval)
	go stream.Bridge(ctx, cfg.UI.PollTimeout, p.Send)

	debuglog.Infof("cratuity %s started", Version)
	_, runErr := p.Run()

	// The stream closes first so a worker blocked on Publish can exit.
	cancel()
	stream.Close()
	w.Stop()

	if runErr != nil {
		return fmt.Errorf("running UI: %w", runErr)
	}
	return nil
}
