// Command resolve is a thin CLI over the goresolver module resolution core,
// useful for poking at a project's resolution behavior from a shell.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	verbose bool
	logger  = logrus.New()

	rootCmd = &cobra.Command{
		Use:   "resolve",
		Short: "Resolve module specifiers the way a bundler would",
		Long: `resolve applies the same resolution algorithm bundlers use for
ES module and CommonJS specifiers: alias tables, package manifests
(exports/imports/main/browser fields), node_modules ascent, and optional
TypeScript-style path mapping.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger.SetLevel(logrus.DebugLevel)
			}
		},
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug-level resolution tracing")
	rootCmd.PersistentFlags().String("extensions", ".js,.json,.node", "comma-separated list of extensions to try")
	rootCmd.PersistentFlags().String("main-fields", "main", "comma-separated manifest main-field names, in priority order")
	rootCmd.PersistentFlags().String("main-files", "index", "comma-separated directory index file names")
	rootCmd.PersistentFlags().String("modules", "node_modules", "comma-separated vendored-dependency directory names")
	rootCmd.PersistentFlags().String("conditions", "node,require,default", "comma-separated exports/imports condition names")
	rootCmd.PersistentFlags().String("alias-fields", "browser", "comma-separated manifest fields treated as alias maps")
	rootCmd.PersistentFlags().StringSlice("alias", nil, "alias entries as key=value or key=!ignore, repeatable")
	rootCmd.PersistentFlags().Bool("prefer-relative", false, "try a leading ./ before treating a specifier as a package name")
	rootCmd.PersistentFlags().String("tsconfig", "", "path to a tsconfig.json providing a paths mapping table")
	rootCmd.PersistentFlags().String("config", "", "config file (default: .goresolverrc.yaml in the working directory)")

	for _, name := range []string{
		"extensions", "main-fields", "main-files", "modules", "conditions",
		"alias-fields", "alias", "prefer-relative", "tsconfig",
	} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(probeCmd)
}

func initConfig() {
	if cfg, _ := rootCmd.PersistentFlags().GetString("config"); cfg != "" {
		viper.SetConfigFile(cfg)
	} else {
		viper.SetConfigName(".goresolverrc")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}
	viper.SetEnvPrefix("GORESOLVER")
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "resolve: reading config: %v\n", err)
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
