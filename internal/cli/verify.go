package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ndlegal/citecheck/internal/cache"
	"github.com/ndlegal/citecheck/internal/cite"
	"github.com/ndlegal/citecheck/internal/llm"
	"github.com/ndlegal/citecheck/internal/model"
	"github.com/ndlegal/citecheck/internal/sources"
	"github.com/ndlegal/citecheck/internal/util"
	"github.com/ndlegal/citecheck/internal/verify"
	"github.com/ndlegal/citecheck/internal/worker"
)

var (
	outJSON    string
	outMD      string
	runTimeout time.Duration
	workers    int
	cacheDir   string
	noCache    bool
	noFooter   bool
	courtData  string
	noQuotes   bool
	llmEnabled bool
	llmModel   string
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify <memo.md>",
	Short: "Verify every citation in a memo and generate a report",
	Long: `Verify parses a memo for North Dakota citations (slip opinions, N.W.2d
reporter citations, Century Code sections, court rules, record and
paragraph references) and checks each verifiable one against the
configured sources in priority order. Quoted language attributed to a
verified source is fuzzy-matched against the source's full text.

The command exits zero even when citations fail to verify; those appear
in the report as not found or needing manual review. A non-zero exit
means the memo file itself could not be read or a report could not be
written.

Example:
  citecheck verify memo.md
  citecheck verify memo.md --json report.json --md report.md
  citecheck verify memo.md --court-data ./ndcourts-data --llm`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVar(&outJSON, "json", "report.json", "output JSON path")
	verifyCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	verifyCmd.Flags().DurationVar(&runTimeout, "timeout", 5*time.Minute, "overall verification timeout")
	verifyCmd.Flags().IntVar(&workers, "workers", 4, "concurrent citation verifications")
	verifyCmd.Flags().StringVar(&cacheDir, "cache-dir", "./cache", "verification cache directory")
	verifyCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the persistent cache (force fresh lookups)")
	verifyCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	verifyCmd.Flags().StringVar(&courtData, "court-data", "", "local opinion corpus root (markdown/{year}/{year}ND{n}.md)")
	verifyCmd.Flags().BoolVar(&noQuotes, "no-quotes", false, "skip quotation fidelity checking")

	verifyCmd.Flags().BoolVar(&llmEnabled, "llm", false, "append an LLM narrative summary to the report")
	verifyCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

func runVerify(cmd *cobra.Command, args []string) error {
	memoPath := args[0]

	data, err := os.ReadFile(memoPath)
	if err != nil {
		return fmt.Errorf("read memo: %w", err)
	}
	text := string(data)

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Verify.RunTimeout)
	defer cancel()

	cites := cite.Parse(text)
	if verbose {
		fmt.Fprintf(os.Stderr, "Parsed %d citations (%d distinct) from %s\n",
			len(cites), len(cite.Unique(cites)), memoPath)
	}

	v := buildVerifier(cfg)
	results := v.Verify(ctx, cites)

	var quotes []model.QuotationCheck
	if !noQuotes {
		quotes = v.CheckQuotations(ctx, text, results)
	}

	report := verify.BuildReport(results, quotes)

	if llmEnabled {
		if err := summarize(ctx, cfg, report); err != nil {
			return err
		}
	}

	if outJSON != "" {
		if err := verify.WriteJSON(outJSON, report); err != nil {
			return fmt.Errorf("write JSON report: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Wrote %s\n", outJSON)
		}
	}
	if outMD != "" {
		if err := verify.WriteMarkdown(outMD, report, cfg.Output.IncludeFooter); err != nil {
			return fmt.Errorf("write Markdown report: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Wrote %s\n", outMD)
		}
	}

	verify.RenderSummary(os.Stdout, report)
	return nil
}

// buildConfig layers flags over environment and config-file values over
// the defaults.
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()

	if viper.IsSet("sources.court_data") {
		cfg.Sources.CourtData = viper.GetString("sources.court_data")
	}
	if viper.IsSet("sources.courtlistener_rps") {
		cfg.Sources.CourtListenerRPS = viper.GetFloat64("sources.courtlistener_rps")
	}
	if viper.IsSet("sources.scraper_rps") {
		cfg.Sources.ScraperRPS = viper.GetFloat64("sources.scraper_rps")
	}
	if viper.IsSet("cache.dir") {
		cfg.Cache.Dir = viper.GetString("cache.dir")
	}
	if viper.IsSet("http.user_agent") {
		cfg.HTTP.UserAgent = viper.GetString("http.user_agent")
	}
	if viper.IsSet("verify.quote_tolerance") {
		cfg.Verify.QuoteTolerance = viper.GetFloat64("verify.quote_tolerance")
	}
	if viper.IsSet("verify.quote_floor") {
		cfg.Verify.QuoteFloor = viper.GetFloat64("verify.quote_floor")
	}

	cfg.Sources.CourtListenerAPIKey = os.Getenv("COURTLISTENER_API_TOKEN")
	if cfg.Sources.CourtListenerAPIKey == "" {
		cfg.Sources.CourtListenerAPIKey = viper.GetString("sources.courtlistener_api_key")
	}

	if courtData != "" {
		cfg.Sources.CourtData = courtData
	}
	cfg.Verify.RunTimeout = runTimeout
	cfg.Concurrency.Workers = workers
	cfg.Cache.Enabled = !noCache
	if cacheDir != "" {
		cfg.Cache.Dir = cacheDir
	}
	cfg.Output.Verbose = verbose
	cfg.Output.IncludeFooter = !noFooter

	if llmEnabled {
		cfg.LLM.Provider = "openai"
		cfg.LLM.Model = llmModel
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	}

	return cfg, nil
}

// buildVerifier wires the source chain in priority order: local corpus,
// then CourtListener, then the two scrapers.
func buildVerifier(cfg *model.Config) *verify.Verifier {
	var backend cache.Cache
	if cfg.Cache.Enabled {
		backend = cache.NewLayeredCache(cfg.Cache.Dir, 5*time.Minute)
	} else {
		// Still dedupes within the run; nothing survives it.
		backend = cache.NewMemoryCache(5*time.Minute, 10*time.Minute)
	}
	store := cache.NewStore(backend)

	limiter := worker.NewLimiter(1, 1)
	limiter.SetSourceRate(sources.SourceCourtListener, cfg.Sources.CourtListenerRPS, 5)
	limiter.SetSourceRate(sources.SourceNDCourts, cfg.Sources.ScraperRPS, 1)
	limiter.SetSourceRate(sources.SourceNDStatutes, cfg.Sources.ScraperRPS, 1)

	retry := sources.PolicyFromConfig(cfg.Sources.Retry)
	robots := util.NewRobotsChecker(util.NormalizeUserAgent(cfg.HTTP.UserAgent), cfg.HTTP.Timeout)

	srcs := []sources.Source{
		sources.NewLocal(cfg.Sources.CourtData),
		sources.NewCourtListener(cfg.Sources.CourtListenerAPIKey, "", cfg.HTTP, limiter, retry),
		sources.NewNDCourts("", cfg.HTTP, limiter, retry, robots),
		sources.NewNDStatutes("", cfg.HTTP, limiter, retry, robots),
	}

	return verify.New(srcs, store, cfg.Verify, cfg.Concurrency.Workers, cfg.Output.Verbose)
}

func summarize(ctx context.Context, cfg *model.Config, report *model.Report) error {
	provider, err := llm.NewProvider(cfg.LLM)
	if err != nil {
		return err
	}
	llm.NewSummarizer(provider, cfg.LLM).Annotate(ctx, report)
	return nil
}
