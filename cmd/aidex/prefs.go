package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/hyperjump/aidex/internal/cli"
)

const prefsUsage = `Usage: aidex prefs <command> [flags] [args]

Commands:
  show                       theme, favorites, and recent searches
  theme [light|dark|system]  set the theme; without an argument toggles light/dark
  favorite <id>              add a favorite tool
  unfavorite <id>            remove a favorite tool
  history                    recent searches, newest first
  clear-history              forget recent searches

Flags:
`

func runPrefs(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("prefs", flag.ContinueOnError)
	var common commonFlags
	common.register(fs, true)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), prefsUsage)
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
	arg := buildSearchQuery(fs.Args())

	cfg, logger, format, err := common.setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	store, err := openPrefs(cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	switch command {
	case "show":
		return cli.WritePreferences(out, store.Get(), format)
	case "theme":
		if arg == "" {
			next, err := store.ToggleTheme()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Theme: %s\n", next)
			return nil
		}
		if err := store.SetTheme(arg); err != nil {
			return err
		}
		fmt.Fprintf(out, "Theme: %s\n", store.Theme())
		return nil
	case "favorite", "unfavorite":
		if arg == "" {
			fmt.Fprintf(os.Stderr, "aidex prefs %s: missing <id>\n", command)
			return errUsage
		}
		if command == "favorite" {
			err = store.AddFavorite(arg)
		} else {
			err = store.RemoveFavorite(arg)
		}
		if err != nil {
			return err
		}
		return cli.WriteLines(out, store.Favorites(), format)
	case "history":
		return cli.WriteLines(out, store.History(), format)
	case "clear-history":
		if err := store.ClearHistory(); err != nil {
			return err
		}
		fmt.Fprintln(out, "Search history cleared")
		return nil
	default:
		fmt.Fprintf(os.Stderr, "Unknown prefs command: %s\n", command)
		fs.Usage()
		return errUsage
	}
}
