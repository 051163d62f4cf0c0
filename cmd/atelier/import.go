// Import command brings an exported project archive into the root.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/montavis/atelier/internal/archive"
)

var importCmd = &cobra.Command{
	Use:   "import <archive.zip>",
	Short: "Import a project archive",
	Long: `Import extracts the archive into the managed root. When a project
holding the same document already exists, the archive is discarded and
the existing folder name is printed instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot()
	if err != nil {
		return err
	}

	folder, err := archive.Import(root, args[0])
	if err != nil {
		return fmt.Errorf("importing archive: %w", err)
	}
	fmt.Println(folder)
	return nil
}
