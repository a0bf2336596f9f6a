package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/debatelab/arguegraph/internal/cache"
	"github.com/debatelab/arguegraph/internal/llm"
	"github.com/debatelab/arguegraph/internal/model"
	"github.com/debatelab/arguegraph/internal/pipeline"
	"github.com/debatelab/arguegraph/internal/worker"
)

var (
	outJSON        string
	analyzeTimeout time.Duration
	llmEnabled     bool
	llmProvider    string
	llmModel       string
	noCache        bool
	cacheDir       string
)

// batchFile is the on-disk shape of one extraction batch. A full-debate file
// uses the same shape as a streamed batch line, just with everything at once.
type batchFile struct {
	Claims      []pipeline.ClaimInput      `json:"claims"`
	Relations   []pipeline.RelationInput   `json:"relations"`
	Annotations []pipeline.AnnotationInput `json:"annotations,omitempty"`
	FactChecks  []pipeline.FactCheckInput  `json:"fact_checks,omitempty"`
}

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze a full debate extraction in one pass",
	Long: `Analyze reads one JSON file holding extracted claims and relations,
builds the argument graph, runs the structural detectors and rigor
scoring, and writes the resulting snapshot as JSON.

Pass "-" to read from stdin.

Example:
  arguegraph analyze debate.json
  arguegraph analyze debate.json --json snapshot.json
  arguegraph analyze debate.json --llm --llm-provider openai`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Output flags
	analyzeCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (default: stdout)")
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 5*time.Minute, "overall analysis timeout (matters only with --llm)")

	// LLM flags
	analyzeCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM fallacy classification and fact-checking")
	analyzeCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, anthropic, ollama)")
	analyzeCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (provider default if empty)")
	analyzeCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the fact-check verdict cache")
	analyzeCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "directory for the on-disk verdict cache (verdicts persist across runs)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), analyzeTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Output.Verbose = verbose
	cfg.Cache.Enabled = !noCache
	if cacheDir != "" {
		cfg.Cache.Dir = cacheDir
	}
	if llmEnabled {
		if err := configureLLM(cfg); err != nil {
			return err
		}
	}

	batch, err := readBatchFile(args[0])
	if err != nil {
		return fmt.Errorf("read batch: %w", err)
	}

	logger := newLogger()
	coord := pipeline.NewCoordinator(cfg, logger)

	if _, err := coord.IngestBatch(pipeline.Batch{Claims: batch.Claims, Relations: batch.Relations}); err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	if len(batch.Annotations) > 0 {
		if _, err := coord.ApplyAnnotations(batch.Annotations); err != nil {
			return fmt.Errorf("apply annotations: %w", err)
		}
	}
	if len(batch.FactChecks) > 0 {
		if _, err := coord.ApplyFactChecks(batch.FactChecks); err != nil {
			return fmt.Errorf("apply fact checks: %w", err)
		}
	}

	if llmEnabled {
		if err := runCollaborators(ctx, cfg, coord, logger); err != nil {
			return fmt.Errorf("llm collaborators: %w", err)
		}
	}

	snap, err := coord.Finalize()
	if err != nil {
		return fmt.Errorf("finalize: %w", err)
	}

	return writeSnapshot(snap, outJSON)
}

// configureLLM fills in provider credentials from the environment,
// mirroring how each provider expects to be keyed.
func configureLLM(cfg *model.Config) error {
	cfg.LLM.Provider = llmProvider
	cfg.LLM.Model = llmModel

	switch llmProvider {
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		baseURL := os.Getenv("OLLAMA_BASE_URL")
		if baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	}
	return nil
}

// runCollaborators classifies the ingested claims for fallacies and
// fact-checks the factual ones, feeding both result sets back through the
// coordinator's validated boundary.
func runCollaborators(ctx context.Context, cfg *model.Config, coord *pipeline.Coordinator, logger *log.Logger) error {
	llmCfg := llm.ConfigFromModel(cfg.LLM)
	claims := coord.Store().Claims()

	classifier, err := llm.NewClassifier(llmCfg, logger)
	if err != nil {
		return err
	}
	anns, err := classifier.ClassifyClaims(ctx, claims)
	if err != nil {
		logger.Warn("fallacy classification failed", "err", err)
	} else if len(anns) > 0 {
		if _, err := coord.ApplyAnnotations(anns); err != nil {
			return err
		}
	}

	checker, err := llm.NewFactChecker(llmCfg, cache.NewVerdictCacheFromConfig(cfg.Cache), logger)
	if err != nil {
		return err
	}

	processor := worker.NewFactCheckProcessor(checker, cfg.LLM.Provider, cfg.LLM.MaxConcurrent, cfg.LLM.RequestsPerSecond)
	checks, errs := processor.CheckClaims(ctx, claims)
	for _, cerr := range errs {
		logger.Warn("fact check failed", "err", cerr)
	}
	if len(checks) > 0 {
		if _, err := coord.ApplyFactChecks(checks); err != nil {
			return err
		}
	}
	return nil
}

func readBatchFile(path string) (*batchFile, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var batch batchFile
	if err := json.NewDecoder(r).Decode(&batch); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &batch, nil
}

func writeSnapshot(snap model.GraphSnapshot, path string) error {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if path != "" && verbose {
		fmt.Fprintf(os.Stderr, "Wrote snapshot: %s\n", path)
	}
	return nil
}
