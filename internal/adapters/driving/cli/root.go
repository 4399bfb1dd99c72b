// Package cli implements the reqlens command line using cobra.
package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/reqlens/internal/core/domain"
	"github.com/custodia-labs/reqlens/internal/core/ports/driving"
	"github.com/custodia-labs/reqlens/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Global flags.
var (
	configPath string
	verbose    bool
)

// Services wired by the bootstrap hook, or directly by tests.
var (
	knowledgeBase  driving.KnowledgeBase
	resolver       driving.ContextResolver
	searchDefaults domain.SearchOptions
	watchers       []Watcher
	closeServices  func() error
)

// Watcher reports changes in a document source. The filesystem source
// implements it.
type Watcher interface {
	Name() string
	Watch(ctx context.Context, debounce time.Duration, onChange func()) error
}

// Services is everything the commands need.
type Services struct {
	KnowledgeBase driving.KnowledgeBase
	Resolver      driving.ContextResolver
	SearchOptions domain.SearchOptions
	Watchers      []Watcher

	// Close releases backends. It runs after the command finishes.
	Close func() error
}

// Bootstrap builds the services once flags are parsed. configPath is the
// value of --config, empty for the default location.
type Bootstrap func(ctx context.Context, configPath string) (*Services, error)

var bootstrap Bootstrap

// SetBootstrap installs the function that wires services.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Configure installs services directly, bypassing the bootstrap hook.
func Configure(s *Services) {
	knowledgeBase = s.KnowledgeBase
	resolver = s.Resolver
	searchDefaults = s.SearchOptions
	watchers = s.Watchers
	closeServices = s.Close
}

// skipServices marks commands that run without a knowledge base.
const skipServices = "reqlens/skip-services"

var rootCmd = &cobra.Command{
	Use:   "reqlens",
	Short: "Requirements knowledge base for debt analysis",
	Long: `reqlens indexes reference documents (SEMPs, requirement specifications,
guides and standards) into a local vector knowledge base.

Every search hit carries exact character offsets into its source document,
so the surrounding text can always be shown with resolve.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(*cobra.Command, []string) error {
		return teardown()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config directory (default ~/.reqlens)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func setup(cmd *cobra.Command, _ []string) error {
	if verbose {
		logger.SetVerbose(true)
	}
	if cmd.Annotations[skipServices] == "true" || bootstrap == nil || knowledgeBase != nil {
		return nil
	}
	services, err := bootstrap(cmd.Context(), configPath)
	if err != nil {
		return err
	}
	Configure(services)
	return nil
}

func teardown() error {
	if closeServices == nil {
		return nil
	}
	err := closeServices()
	closeServices = nil
	return err
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if cerr := teardown(); cerr != nil {
		err = errors.Join(err, cerr)
	}
	return err
}

func requireKnowledgeBase() error {
	if knowledgeBase == nil {
		return errors.New("knowledge base not configured")
	}
	return nil
}

func requireResolver() error {
	if resolver == nil {
		return errors.New("context resolver not configured")
	}
	return nil
}

// searchOptions applies -k and -t over the configured defaults.
func searchOptions(cmd *cobra.Command, topK int, threshold float64) domain.SearchOptions {
	opts := searchDefaults
	if cmd.Flags().Changed("top-k") || opts.TopK <= 0 {
		opts.TopK = topK
	}
	if cmd.Flags().Changed("threshold") || opts.Threshold == nil {
		opts.Threshold = domain.Threshold(threshold)
	}
	return opts
}

func addSearchFlags(cmd *cobra.Command, topK *int, threshold *float64, asJSON *bool) {
	cmd.Flags().IntVarP(topK, "top-k", "k", domain.DefaultTopK, "maximum number of results")
	cmd.Flags().Float64VarP(threshold, "threshold", "t", domain.DefaultScoreThreshold, "minimum similarity score")
	cmd.Flags().BoolVar(asJSON, "json", false, "output results as JSON")
}

func fail(action string, err error) error {
	return fmt.Errorf("%s failed: %w", action, err)
}
