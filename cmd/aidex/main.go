// Package main is the aidex CLI entry point.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/aidex/internal/cli"
	"github.com/hyperjump/aidex/internal/config"
	"github.com/hyperjump/aidex/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/aidex/config.yaml"

// errUsage is returned after usage has been printed; main exits 1 without repeating it.
var errUsage = errors.New("usage")

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used.
// When the default path does not exist either, built-in defaults are returned so the
// CLI works without any config file. Returns the config and the path that was loaded
// ("" for built-in defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			return config.Default(), "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) < 1 {
		printUsage(os.Stderr)
		return errUsage
	}
	command, rest := args[0], args[1:]
	switch command {
	case "server":
		return runServer(rest)
	case "search":
		return runSearch(rest, out)
	case "suggest":
		return runSuggest(rest, out)
	case "remote":
		return runRemote(rest, out)
	case "hosted":
		return runHosted(rest, out)
	case "prefs":
		return runPrefs(rest, out)
	case "version", "--version", "-v":
		fmt.Fprintf(out, "aidex version %s\n", version)
		return nil
	case "help", "--help", "-h":
		printUsage(out)
		return nil
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage(os.Stderr)
		return errUsage
	}
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `aidex - AI tools directory

Usage:
  aidex server   [-config path] [-debug]
  aidex search   [flags] [query]
  aidex suggest  [-complete] <text>
  aidex remote   <list|get|search|featured|hot|category|categories|stats|submit|subscribe|feedback> [flags]
  aidex hosted   <list|search|tag|categories|favorites|favorite|unfavorite> [flags]
  aidex prefs    <show|theme|favorite|unfavorite|history|clear-history> [args]
  aidex version
  aidex help

Every command accepts -config (default `+defaultConfigPath+`; ./config.yaml is
preferred when present). Run "aidex <command> -h" for the flags of a command.
`)
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting (e.g. "image generator" vs image generator).
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searchConfigPathFromArgs returns the value of -config/--config from args if present, else defaultPath.
func searchConfigPathFromArgs(args []string, defaultPath string) string {
	for i, a := range args {
		if (a == "-config" || a == "--config") && i+1 < len(args) {
			return args[i+1]
		}
		if v, ok := strings.CutPrefix(a, "-config="); ok {
			return v
		}
		if v, ok := strings.CutPrefix(a, "--config="); ok {
			return v
		}
	}
	return defaultPath
}

// searchArgsReorder moves any flags (and their values) that appear after the query
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument, so "aidex search writing -sort rating"
// would otherwise leave -sort unparsed.
func searchArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// splitList splits a comma-separated flag value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// commonFlags are shared by every subcommand that reads config and prints results.
type commonFlags struct {
	configPath string
	output     string
	debug      bool
}

func (c *commonFlags) register(fs *flag.FlagSet, withOutput bool) {
	fs.StringVar(&c.configPath, "config", defaultConfigPath, "config file path")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging")
	if withOutput {
		fs.StringVar(&c.output, "output", "text", "output format: text (human-readable), compact (one result per line), or json (parseable)")
	}
}

// setup loads config and builds the CLI logger and output format.
func (c *commonFlags) setup() (*config.Config, *zap.Logger, cli.OutputFormat, error) {
	format, err := cli.ParseFormat(c.output)
	if err != nil {
		return nil, nil, "", err
	}
	cfg, _, err := loadConfig(c.configPath)
	if err != nil {
		return nil, nil, "", fmt.Errorf("load config: %w", err)
	}
	logger, err := utils.NewCLILogger(cfg.Debug || c.debug)
	if err != nil {
		return nil, nil, "", fmt.Errorf("create logger: %w", err)
	}
	return cfg, logger, format, nil
}
