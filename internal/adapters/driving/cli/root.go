// Package cli wires the Cobra commands to the core services.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	configfile "github.com/openstrand/oracle-indexer/internal/adapters/driven/config/file"
	"github.com/openstrand/oracle-indexer/internal/adapters/driven/embedding/ollama"
	"github.com/openstrand/oracle-indexer/internal/adapters/driven/embedding/openai"
	"github.com/openstrand/oracle-indexer/internal/core/domain"
	"github.com/openstrand/oracle-indexer/internal/core/ports/driven"
	"github.com/openstrand/oracle-indexer/internal/core/ports/driving"
	"github.com/openstrand/oracle-indexer/internal/core/services"
	"github.com/openstrand/oracle-indexer/internal/logger"
	"github.com/openstrand/oracle-indexer/internal/progress"
	"github.com/openstrand/oracle-indexer/internal/sources/database"
	"github.com/openstrand/oracle-indexer/internal/sources/files"
)

// version is set at build time via -ldflags.
var version = "dev"

// Default flag values.
const (
	defaultOutput    = "public/oracle-embeddings.json"
	defaultModel     = "all-MiniLM-L6-v2"
	defaultChunkSize = 512
	defaultOverlap   = 50
	defaultMaxDocs   = 10000
	defaultSource    = "db"
	defaultProvider  = "ollama"
)

// genOptions are the resolved settings for one generator run.
type genOptions struct {
	output    string
	model     string
	chunkSize int
	overlap   int
	maxDocs   int
	source    string
	dbURL     string
	filesDir  string
	provider  string
	ollamaURL string
	openaiKey string
	dryRun    bool
	watch     bool
}

var (
	flagOutput    string
	flagModel     string
	flagChunkSize int
	flagOverlap   int
	flagMaxDocs   int
	flagSource    string
	flagDBURL     string
	flagFilesDir  string
	flagProvider  string
	flagOllamaURL string
	flagOpenAIKey string
	flagConfig    string
	flagVerbose   bool
	flagDryRun    bool
	flagWatch     bool
)

var rootCmd = &cobra.Command{
	Use:   "generate-embeddings",
	Short: "Precompute the OpenStrand Oracle embeddings index",
	Long: `Builds the precomputed semantic-search index consumed by the OpenStrand
web client. Documents are read from the product database or a directory of
text files, chunked at sentence boundaries, embedded chunk by chunk, and
written as a single versioned JSON artifact.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: applyConfigDefaults,
	RunE:              runGenerate,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagModel, "model", defaultModel, "embedding model name")
	pf.StringVar(&flagProvider, "provider", defaultProvider, "embedding provider (ollama|openai)")
	pf.StringVar(&flagOllamaURL, "ollama-url", ollama.DefaultBaseURL, "Ollama API base URL")
	pf.StringVar(&flagOpenAIKey, "openai-api-key", "", "OpenAI API key (default $OPENAI_API_KEY)")
	pf.StringVar(&flagConfig, "config", defaultConfigPath(), "TOML file supplying flag defaults")
	pf.BoolVar(&flagVerbose, "verbose", false, "enable verbose logging")

	f := rootCmd.Flags()
	f.StringVar(&flagOutput, "output", defaultOutput, "output path for the index artifact")
	f.IntVar(&flagChunkSize, "chunk-size", defaultChunkSize, "chunk size in tokens")
	f.IntVar(&flagOverlap, "overlap", defaultOverlap, "overlap between chunks in tokens")
	f.IntVar(&flagMaxDocs, "max-docs", defaultMaxDocs, "maximum documents to fetch")
	f.StringVar(&flagSource, "source", defaultSource, "document source (db|files)")
	f.StringVar(&flagDBURL, "db-url", "", "database URL (default $DATABASE_URL)")
	f.StringVar(&flagFilesDir, "files-dir", "", "directory to scan when --source files")
	f.BoolVar(&flagDryRun, "dry-run", false, "skip embedding calls and the output write")
	f.BoolVar(&flagWatch, "watch", false, "re-index when files change (files source only)")
}

// Execute runs the CLI. Fatal errors are returned to main for the exit code.
func Execute() error {
	return rootCmd.Execute()
}

// defaultConfigPath is ~/.openstrand/indexer.toml, or empty when the home
// directory cannot be determined.
func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home + "/.openstrand/indexer.toml"
}

// applyConfigDefaults fills flags not set on the command line from the TOML
// config file. Flag > config > built-in default.
func applyConfigDefaults(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(flagVerbose)

	if flagConfig == "" {
		return nil
	}
	store, err := configfile.NewConfigStore(flagConfig)
	if err != nil {
		return err
	}

	var applyErr error
	visit := func(f *pflag.Flag) {
		if f.Changed || f.Name == "config" {
			return
		}
		val, ok := store.Get(f.Name)
		if !ok {
			return
		}
		if err := f.Value.Set(fmt.Sprintf("%v", val)); err != nil && applyErr == nil {
			applyErr = fmt.Errorf("config value for %s: %w", f.Name, err)
		}
	}
	cmd.Flags().VisitAll(visit)

	logger.SetVerbose(flagVerbose)
	return applyErr
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	opts := optionsFromFlags()

	if opts.watch && opts.source != "files" {
		return fmt.Errorf("--watch requires --source files: %w", domain.ErrInvalidInput)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reporter := progress.ForWriter(os.Stderr)

	result, err := runPipeline(ctx, opts, reporter)
	if err != nil {
		return err
	}
	printSummary(cmd, result)

	if !opts.watch {
		return nil
	}
	return watchLoop(ctx, cmd, opts, reporter)
}

// optionsFromFlags resolves flags and environment fallbacks.
func optionsFromFlags() genOptions {
	opts := genOptions{
		output:    flagOutput,
		model:     flagModel,
		chunkSize: flagChunkSize,
		overlap:   flagOverlap,
		maxDocs:   flagMaxDocs,
		source:    flagSource,
		dbURL:     flagDBURL,
		filesDir:  flagFilesDir,
		provider:  flagProvider,
		ollamaURL: flagOllamaURL,
		openaiKey: flagOpenAIKey,
		dryRun:    flagDryRun,
		watch:     flagWatch,
	}
	if opts.dbURL == "" {
		opts.dbURL = os.Getenv("DATABASE_URL")
	}
	if opts.openaiKey == "" {
		opts.openaiKey = os.Getenv("OPENAI_API_KEY")
	}
	return opts
}

// buildSource selects and validates the document source. Configuration
// problems surface here, before any embedding or I/O work begins.
func buildSource(ctx context.Context, opts genOptions) (driven.DocumentSource, error) {
	switch opts.source {
	case "db":
		return database.New(ctx, opts.dbURL, opts.maxDocs)
	case "files":
		return files.New(opts.filesDir)
	default:
		return nil, fmt.Errorf("%q: %w", opts.source, domain.ErrUnknownSource)
	}
}

// buildEmbedder constructs the configured embedding service.
// Not called in dry-run mode.
func buildEmbedder(opts genOptions) (driven.EmbeddingService, error) {
	switch opts.provider {
	case "ollama":
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL: opts.ollamaURL,
			Model:   opts.model,
		}), nil
	case "openai":
		svc, err := openai.NewEmbeddingService(openai.Config{
			APIKey: opts.openaiKey,
			Model:  opts.model,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
		}
		return svc, nil
	default:
		return nil, fmt.Errorf("%q: %w", opts.provider, domain.ErrUnknownProvider)
	}
}

// runPipeline assembles the ports and executes one indexing pass.
func runPipeline(ctx context.Context, opts genOptions, reporter driven.ProgressReporter) (*driving.RunResult, error) {
	source, err := buildSource(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer source.Close()

	var embedder driven.EmbeddingService
	if !opts.dryRun {
		embedder, err = buildEmbedder(opts)
		if err != nil {
			return nil, err
		}
		defer embedder.Close()
	}

	indexer := services.NewIndexer(source, embedder, reporter, services.IndexerOptions{
		Model:      opts.model,
		Dimensions: dryRunDimensions(opts.model),
		ChunkSize:  opts.chunkSize,
		Overlap:    opts.overlap,
		OutputPath: opts.output,
		DryRun:     opts.dryRun,
	})
	return indexer.Run(ctx)
}

// watchLoop re-runs the pipeline whenever the files directory changes.
func watchLoop(ctx context.Context, cmd *cobra.Command, opts genOptions, reporter driven.ProgressReporter) error {
	source, err := files.New(opts.filesDir)
	if err != nil {
		return err
	}
	defer source.Close()

	cmd.PrintErrln("Watching for changes. Press Ctrl-C to stop.")
	err = source.Watch(ctx, func() {
		result, runErr := runPipeline(ctx, opts, reporter)
		if runErr != nil {
			// A failed re-index keeps the previous artifact and the watch.
			logger.Warn("re-index failed: %v", runErr)
			return
		}
		printSummary(cmd, result)
	})
	if ctx.Err() != nil {
		return nil // Ctrl-C is a clean stop
	}
	return err
}

// printSummary reports the run the way operators read it in CI logs.
func printSummary(cmd *cobra.Command, result *driving.RunResult) {
	idx := result.Index
	cmd.Printf("Indexed %d documents (%d chunks) with %s (%d dimensions) in %s\n",
		idx.DocumentCount, idx.ChunkCount, idx.Model, idx.Dimensions,
		result.Elapsed.Round(time.Millisecond))

	if len(result.Warnings) > 0 {
		cmd.Printf("%d warnings (see log above)\n", len(result.Warnings))
	}

	if result.DryRun {
		cmd.Printf("Dry run: %s not written\n", result.OutputPath)
		return
	}
	cmd.Printf("Wrote %s (%d bytes)\n", result.OutputPath, result.BytesWritten)
}

// dryRunDimensions reports the vector size recorded in a dry-run index,
// where no embedding service is constructed to ask.
func dryRunDimensions(model string) int {
	switch model {
	case "text-embedding-3-small", "text-embedding-ada-002":
		return 1536
	case "text-embedding-3-large":
		return 3072
	case "nomic-embed-text":
		return 768
	case "mxbai-embed-large":
		return 1024
	default:
		return ollama.DefaultDimensions
	}
}
