package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/hyperjump/aidex/internal/baas"
	"github.com/hyperjump/aidex/internal/cli"
)

// tokenEnv holds the Supabase access token when -token is not given.
const tokenEnv = "AIDEX_SUPABASE_TOKEN"

const hostedUsage = `Usage: aidex hosted <command> [flags] [args]

Reads the hosted directory from the Supabase project in config (supabase.url, supabase.key).

Commands:
  list                 list tools (-page, -limit)
  search <query>       title or description contains query (-limit)
  tag <tag>            tools carrying tag
  categories           categories with tool counts
  favorites            your favorite tool IDs (needs -token or $` + tokenEnv + `)
  favorite <id>        add a favorite
  unfavorite <id>      remove a favorite

Flags:
`

func runHosted(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("hosted", flag.ContinueOnError)
	var common commonFlags
	common.register(fs, true)
	page := fs.Int("page", 1, "page number")
	limit := fs.Int("limit", 0, "page size (0 = default)")
	token := fs.String("token", "", "Supabase access token (default $"+tokenEnv+")")
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), hostedUsage)
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
	accessToken := *token
	if accessToken == "" {
		accessToken = os.Getenv(tokenEnv)
	}

	cfg, logger, format, err := common.setup()
	if err != nil {
		return err
	}
	defer logger.Sync()
	if !cfg.Supabase.Enabled() {
		return errors.New("supabase is not configured: set supabase.url and supabase.key")
	}
	client, err := baas.New(cfg.Supabase.URL, cfg.Supabase.Key, baas.WithLogger(logger))
	if err != nil {
		return err
	}
	ctx := context.Background()

	requireArg := func(name string) error {
		if positional == "" {
			fmt.Fprintf(os.Stderr, "aidex hosted %s: missing <%s>\n", command, name)
			return errUsage
		}
		return nil
	}

	switch command {
	case "list":
		tools, pg, err := client.ListTools(ctx, *page, *limit)
		if err != nil {
			return err
		}
		return cli.WriteTools(out, tools, pg, format)
	case "search":
		if err := requireArg("query"); err != nil {
			return err
		}
		tools, err := client.SearchTools(ctx, positional, *limit)
		if err != nil {
			return err
		}
		return cli.WriteTools(out, tools, nil, format)
	case "tag":
		if err := requireArg("tag"); err != nil {
			return err
		}
		tools, err := client.ToolsWithTag(ctx, positional)
		if err != nil {
			return err
		}
		return cli.WriteTools(out, tools, nil, format)
	case "categories":
		cats, err := client.CategoryCounts(ctx)
		if err != nil {
			return err
		}
		return cli.WriteCategories(out, cats, format)
	case "favorites":
		ids, err := client.ListFavorites(ctx, accessToken)
		if err != nil {
			return err
		}
		return cli.WriteLines(out, ids, format)
	case "favorite":
		if err := requireArg("id"); err != nil {
			return err
		}
		if err := client.AddFavorite(ctx, accessToken, positional); err != nil {
			return err
		}
		fmt.Fprintf(out, "Added %s to favorites\n", positional)
		return nil
	case "unfavorite":
		if err := requireArg("id"); err != nil {
			return err
		}
		if err := client.RemoveFavorite(ctx, accessToken, positional); err != nil {
			return err
		}
		fmt.Fprintf(out, "Removed %s from favorites\n", positional)
		return nil
	default:
		fmt.Fprintf(os.Stderr, "Unknown hosted command: %s\n", command)
		fs.Usage()
		return errUsage
	}
}
