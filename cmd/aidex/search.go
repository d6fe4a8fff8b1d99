package main

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/aidex/internal/catalog"
	"github.com/hyperjump/aidex/internal/cli"
	"github.com/hyperjump/aidex/internal/config"
	"github.com/hyperjump/aidex/internal/keyword"
	"github.com/hyperjump/aidex/internal/models"
	"github.com/hyperjump/aidex/internal/paging"
	"github.com/hyperjump/aidex/internal/prefs"
	"github.com/hyperjump/aidex/internal/search"
)

// printSearchUsage prints search subcommand usage and filter hints.
func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: aidex search [flags] [query]\n\n")
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces. An empty query lists the whole catalog.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Searches the local catalog with typo-tolerant matching, then applies filters and sort.
  • --category, --tags, and --pricing narrow the results (tags must all match).
  • --sort picks relevance, trending, newest, popular, rating, or name.
  • --pages shows that many pages of results (page size comes from config).

Examples:
  aidex search image generator
  aidex search midjurney                           # typo-tolerant
  aidex search -category writing -sort rating
  aidex search -tags api,free-tier -pricing free,freemium
`)
}

// searchOptions is the parsed search command line.
type searchOptions struct {
	query     string
	category  string
	tags      []string
	pricing   []models.Pricing
	sort      models.SortKey
	pages     int
	threshold float64
	noHistory bool
}

// searchTools runs one query through a controller and a paginator the way an
// interactive session does: the text is debounced, filters apply immediately,
// and each applied change resets the paginator to its first page.
func searchTools(snap *catalog.Snapshot, cfg *config.Config, opts searchOptions, logger *zap.Logger) (*paging.Paginator, error) {
	ctrl := search.NewController(snap,
		search.WithDebounce(cfg.Search.Debounce()),
		search.WithKeys(cfg.Search.Keys...),
		search.WithFuzzyOptions(keyword.WithThreshold(opts.threshold)),
		search.WithLogger(logger),
	)
	defer ctrl.Close()

	pager := paging.NewPaginator(cfg.Paging.PageSize)
	unsubscribe := ctrl.Subscribe(pager.SetResults)
	defer unsubscribe()

	if opts.category != "" {
		ctrl.SetCategory(opts.category)
	}
	if len(opts.tags) > 0 {
		ctrl.SetTags(opts.tags...)
	}
	if len(opts.pricing) > 0 {
		ctrl.SetPricing(opts.pricing...)
	}
	if err := ctrl.SetSort(opts.sort); err != nil {
		return nil, err
	}
	ctrl.SetQueryText(opts.query)
	ctrl.Flush()

	for pager.PagesShown() < opts.pages {
		if !pager.LoadMore() {
			break
		}
	}
	return pager, nil
}

func runSearch(args []string, out io.Writer) error {
	searchArgs := searchArgsReorder(args)
	configPath := searchConfigPathFromArgs(searchArgs, defaultConfigPath)
	defaultThreshold := keyword.DefaultThreshold
	if cfg, _, err := loadConfig(configPath); err == nil {
		defaultThreshold = cfg.Search.Threshold
	}

	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	var common commonFlags
	common.register(fs, true)
	category := fs.String("category", "", `category filter ("all" or empty matches every category)`)
	tags := fs.String("tags", "", "comma-separated tags; every tag must match")
	pricing := fs.String("pricing", "", "comma-separated pricing tiers: free, freemium, paid")
	sortKey := fs.String("sort", string(models.SortRelevance), "sort: relevance, trending, newest, popular, rating, or name")
	pages := fs.Int("pages", 1, "number of pages to show")
	threshold := fs.Float64("threshold", defaultThreshold, "fuzzy match cutoff from 0 (exact) to 1 (match anything)")
	noHistory := fs.Bool("no-history", false, "do not record the query in search history")
	fs.Usage = func() { printSearchUsage(fs) }
	if err := fs.Parse(searchArgs); err != nil {
		return errUsage
	}

	opts := searchOptions{
		query:     buildSearchQuery(fs.Args()),
		category:  *category,
		tags:      splitList(*tags),
		pages:     *pages,
		threshold: *threshold,
		noHistory: *noHistory,
	}
	for _, p := range splitList(*pricing) {
		tier, err := models.ParsePricing(p)
		if err != nil {
			return err
		}
		opts.pricing = append(opts.pricing, tier)
	}
	key, err := models.ParseSortKey(*sortKey)
	if err != nil {
		return err
	}
	opts.sort = key

	cfg, logger, format, err := common.setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	snap, err := loadSnapshot(cfg)
	if err != nil {
		return err
	}
	pager, err := searchTools(snap, cfg, opts, logger)
	if err != nil {
		return err
	}

	if opts.query != "" && !opts.noHistory {
		recordSearch(cfg, opts.query, logger)
	}

	page := paging.Meta(pager.Total(), pager.PagesShown(), cfg.Paging.PageSize)
	return cli.WriteTools(out, pager.Visible(), page, format)
}

// loadSnapshot reads the configured catalog, or the embedded seed when no path is set.
func loadSnapshot(cfg *config.Config) (*catalog.Snapshot, error) {
	if cfg.Catalog.Path == "" {
		return catalog.Seed()
	}
	snap, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return snap, nil
}

// recordSearch adds query to the search history. Failures only log: history is best effort.
func recordSearch(cfg *config.Config, query string, logger *zap.Logger) {
	store, err := openPrefs(cfg, logger)
	if err != nil {
		logger.Warn("search history unavailable", zap.Error(err))
		return
	}
	defer store.Close()
	if err := store.AddSearch(query); err != nil {
		logger.Warn("record search failed", zap.String("query", query), zap.Error(err))
	}
}

func openPrefs(cfg *config.Config, logger *zap.Logger) (*prefs.Store, error) {
	backend, err := prefs.OpenBolt(cfg.Prefs.Path)
	if err != nil {
		return nil, err
	}
	store, err := prefs.NewStore(backend, prefs.WithLogger(logger))
	if err != nil {
		backend.Close()
		return nil, err
	}
	return store, nil
}

func runSuggest(args []string, out io.Writer) error {
	args = searchArgsReorder(args)
	fs := flag.NewFlagSet("suggest", flag.ContinueOnError)
	var common commonFlags
	common.register(fs, true)
	complete := fs.Bool("complete", false, "complete the last word instead of correcting spelling")
	n := fs.Int("n", 5, "maximum completions")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	text := buildSearchQuery(fs.Args())
	if text == "" {
		fmt.Fprintln(fs.Output(), "Usage: aidex suggest [-complete] [-n 5] <text>")
		return errUsage
	}

	cfg, logger, format, err := common.setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	snap, err := loadSnapshot(cfg)
	if err != nil {
		return err
	}
	idx := keyword.BuildFuzzyIndex(snap.Tools(), cfg.Search.Keys, keyword.WithThreshold(cfg.Search.Threshold))
	suggester := keyword.NewSuggester(idx)
	if err := suggester.Refresh(); err != nil {
		return fmt.Errorf("build suggestions: %w", err)
	}

	if *complete {
		words := strings.Fields(text)
		return cli.WriteLines(out, suggester.Complete(words[len(words)-1], *n), format)
	}
	var lines []string
	if corrected := suggester.CorrectQuery(text); corrected != text {
		lines = append(lines, corrected)
	}
	return cli.WriteLines(out, lines, format)
}
