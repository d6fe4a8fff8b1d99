package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/hyperjump/aidex/internal/apiclient"
	"github.com/hyperjump/aidex/internal/cache"
	"github.com/hyperjump/aidex/internal/cli"
	"github.com/hyperjump/aidex/internal/models"
)

const remoteUsage = `Usage: aidex remote <command> [flags] [args]

Commands:
  list                      list tools (-page, -limit, -category, -pricing, -tags, -sort, -q)
  get <id>                  show one tool
  search <query>            backend full-text search (-limit)
  featured                  featured tools
  hot                       trending new or featured tools
  category <name>           one category (-page, -limit)
  categories                categories with tool counts
  stats                     directory counters
  submit                    submit a tool (-title, -description, -category, -tool-pricing, -tool-tags, -url, -email)
  subscribe <email>         subscribe to the newsletter
  feedback <message>        send feedback (-email, -rating)

Flags:
`

// remoteFlags holds every remote flag; each command reads the ones it needs.
type remoteFlags struct {
	commonFlags
	baseURL  string
	page     int
	limit    int
	category string
	pricing  string
	tags     string
	sort     string
	query    string

	title       string
	description string
	url         string
	email       string
	toolPricing string
	toolTags    string
	rating      int
}

func (f *remoteFlags) register(fs *flag.FlagSet) {
	f.commonFlags.register(fs, true)
	fs.StringVar(&f.baseURL, "base-url", "", "backend API root (default from config api.base_url)")
	fs.IntVar(&f.page, "page", 1, "page number")
	fs.IntVar(&f.limit, "limit", 0, "page size (0 = server default)")
	fs.StringVar(&f.category, "category", "", "category filter")
	fs.StringVar(&f.pricing, "pricing", "", "comma-separated pricing tiers")
	fs.StringVar(&f.tags, "tags", "", "comma-separated required tags")
	fs.StringVar(&f.sort, "sort", "", "sort key")
	fs.StringVar(&f.query, "q", "", "free-text filter for list")
	fs.StringVar(&f.title, "title", "", "submit: tool title")
	fs.StringVar(&f.description, "description", "", "submit: tool description")
	fs.StringVar(&f.url, "url", "", "submit: tool URL")
	fs.StringVar(&f.email, "email", "", "submit/feedback: contact email")
	fs.StringVar(&f.toolPricing, "tool-pricing", "", "submit: pricing tier")
	fs.StringVar(&f.toolTags, "tool-tags", "", "submit: comma-separated tags")
	fs.IntVar(&f.rating, "rating", 0, "feedback: rating from 1 to 5")
}

func (f *remoteFlags) listParams() (apiclient.ListParams, error) {
	p := apiclient.ListParams{
		Page:     f.page,
		Limit:    f.limit,
		Category: f.category,
		Tags:     splitList(f.tags),
		Query:    f.query,
	}
	for _, s := range splitList(f.pricing) {
		tier, err := models.ParsePricing(s)
		if err != nil {
			return p, err
		}
		p.Pricing = append(p.Pricing, tier)
	}
	if f.sort != "" {
		key, err := models.ParseSortKey(f.sort)
		if err != nil {
			return p, err
		}
		p.Sort = key
	}
	return p, nil
}

func runRemote(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("remote", flag.ContinueOnError)
	var f remoteFlags
	f.register(fs)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), remoteUsage)
		fs.PrintDefaults()
	}
	if len(args) < 1 {
		fs.Usage()
		return errUsage
	}
	command := args[0]
	if err := fs.Parse(searchArgsReorder(args[1:])); err != nil {
		return errUsage
	}
	positional := buildSearchQuery(fs.Args())

	cfg, logger, format, err := f.setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	baseURL := cfg.API.BaseURL
	if f.baseURL != "" {
		baseURL = f.baseURL
	}
	clientOpts := []apiclient.Option{
		apiclient.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
		apiclient.WithCache(cache.New(cache.WithTTL(cfg.API.CacheTTL))),
		apiclient.WithLogger(logger),
	}
	if cfg.API.BreakerFailures > 0 {
		clientOpts = append(clientOpts, apiclient.WithCircuitBreaker(apiclient.BreakerSettings{
			ConsecutiveFailures: uint32(cfg.API.BreakerFailures),
			Cooldown:            cfg.API.BreakerCooldown,
		}))
	}
	client := apiclient.New(baseURL, clientOpts...)
	ctx := context.Background()

	requireArg := func(name string) error {
		if positional == "" {
			fmt.Fprintf(os.Stderr, "aidex remote %s: missing <%s>\n", command, name)
			return errUsage
		}
		return nil
	}

	switch command {
	case "list":
		params, err := f.listParams()
		if err != nil {
			return err
		}
		page, err := client.ListTools(ctx, params)
		if err != nil {
			return err
		}
		return cli.WriteTools(out, page.Tools, page.Pagination, format)
	case "get":
		if err := requireArg("id"); err != nil {
			return err
		}
		tool, err := client.GetTool(ctx, positional)
		if err != nil {
			return err
		}
		return cli.WriteTools(out, []models.Tool{*tool}, nil, format)
	case "search":
		if err := requireArg("query"); err != nil {
			return err
		}
		res, err := client.SearchTools(ctx, positional, f.limit)
		if err != nil {
			return err
		}
		return cli.WriteSearchResponse(out, res, format)
	case "featured":
		tools, err := client.FeaturedTools(ctx)
		if err != nil {
			return err
		}
		return cli.WriteTools(out, tools, nil, format)
	case "hot":
		tools, err := client.HotTools(ctx)
		if err != nil {
			return err
		}
		return cli.WriteTools(out, tools, nil, format)
	case "category":
		if err := requireArg("name"); err != nil {
			return err
		}
		page, err := client.ToolsByCategory(ctx, positional, f.page, f.limit)
		if err != nil {
			return err
		}
		return cli.WriteTools(out, page.Tools, page.Pagination, format)
	case "categories":
		cats, err := client.GetCategories(ctx)
		if err != nil {
			return err
		}
		return cli.WriteCategories(out, cats, format)
	case "stats":
		st, err := client.GetStats(ctx)
		if err != nil {
			return err
		}
		return cli.WriteStats(out, st, format)
	case "submit":
		sub, err := client.SubmitTool(ctx, models.SubmissionInput{
			Title:       f.title,
			Description: f.description,
			Category:    f.category,
			Tags:        splitList(f.toolTags),
			Pricing:     models.Pricing(f.toolPricing),
			URL:         f.url,
			Email:       f.email,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Submitted %q for review (id %s, status %s)\n", sub.Title, sub.ID, sub.Status)
		return nil
	case "subscribe":
		if err := requireArg("email"); err != nil {
			return err
		}
		if err := client.Subscribe(ctx, positional); err != nil {
			return err
		}
		fmt.Fprintf(out, "Subscribed %s\n", positional)
		return nil
	case "feedback":
		if err := requireArg("message"); err != nil {
			return err
		}
		fb, err := client.SendFeedback(ctx, models.FeedbackInput{Email: f.email, Message: positional, Rating: f.rating})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Feedback received (id %s)\n", fb.ID)
		return nil
	default:
		fmt.Fprintf(os.Stderr, "Unknown remote command: %s\n", command)
		fs.Usage()
		return errUsage
	}
}
