package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/shepherdwind/goresolver/internal/fsprobe"
	"github.com/shepherdwind/goresolver/internal/resolver"
	"github.com/shepherdwind/goresolver/internal/rlog"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <base-dir> <request>",
	Short: "Resolve a single request from a base directory",
	Args:  cobra.ExactArgs(2),
	RunE:  runResolve,
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseAliasEntries(raw []string) ([]resolver.AliasEntry, error) {
	entries := make([]resolver.AliasEntry, 0, len(raw))
	for _, item := range raw {
		key, value, ok := strings.Cut(item, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --alias entry %q, want key=value or key=!ignore", item)
		}
		switch value {
		case "!ignore":
			entries = append(entries, resolver.AliasEntry{Key: key, Value: resolver.AliasValue{Ignore: true}})
		case "!noop", "false":
			entries = append(entries, resolver.AliasEntry{Key: key, Value: resolver.AliasValue{NoOp: true}})
		default:
			entries = append(entries, resolver.AliasEntry{Key: key, Value: resolver.AliasValue{Path: value}})
		}
	}
	return entries, nil
}

func buildOptions() (resolver.Options, error) {
	alias, err := parseAliasEntries(viper.GetStringSlice("alias"))
	if err != nil {
		return resolver.Options{}, err
	}
	return resolver.Options{
		Extensions:     splitCSV(viper.GetString("extensions")),
		MainFields:     splitCSV(viper.GetString("main-fields")),
		MainFiles:      splitCSV(viper.GetString("main-files")),
		Modules:        splitCSV(viper.GetString("modules")),
		Conditions:     splitCSV(viper.GetString("conditions")),
		AliasFields:    splitCSV(viper.GetString("alias-fields")),
		Alias:          alias,
		PreferRelative: viper.GetBool("prefer-relative"),
		Tsconfig:       viper.GetString("tsconfig"),
		Logger:         rlog.NewLogrus(logger),
	}, nil
}

func runResolve(cmd *cobra.Command, args []string) error {
	baseArg, request := args[0], args[1]

	absBase, err := filepath.Abs(baseArg)
	if err != nil {
		return fmt.Errorf("invalid base directory %q: %w", baseArg, err)
	}
	base := filepath.ToSlash(absBase)

	opts, err := buildOptions()
	if err != nil {
		return err
	}

	r, err := resolver.NewResolver(fsprobe.OSFS{}, opts)
	if err != nil {
		return fmt.Errorf("constructing resolver: %w", err)
	}

	result, err := r.Resolve(base, request)
	if err != nil {
		return fmt.Errorf("resolve %q from %q: %w", request, base, err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
