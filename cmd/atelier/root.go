// Root command for the atelier CLI.
package main

import (
	"github.com/spf13/cobra"

	"github.com/montavis/atelier/internal/paths"
)

// Global flag values.
var (
	flagRoot      string
	flagConfigDir string
)

// configRoot holds the root value loaded from config.yaml. Set by
// PersistentPreRunE so all subcommands can use it.
var configRoot string

var rootCmd = &cobra.Command{
	Use:     "atelier",
	Short:   "Atelier manages structured instruction projects",
	Version: Version,
	Long: `Atelier stores assembly instructions as self-contained project folders,
each holding a database file and a media directory, under one managed root.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(flagConfigDir)
		if err != nil {
			return err
		}
		configRoot = cfg.GetString(cfgKeyRoot)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagRoot, "root", "", "managed root directory (default: platform data dir)")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: platform config dir)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(attachCmd)
}

// resolveRoot returns the managed root following the precedence chain:
// --root flag > config.yaml root > ATELIER_ROOT env > platform default.
func resolveRoot() (string, error) {
	return paths.ResolveRoot(flagRoot, configRoot)
}
