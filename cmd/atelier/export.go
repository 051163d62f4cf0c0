// Export command packages a project as a zip archive.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/montavis/atelier/internal/archive"
)

var exportCmd = &cobra.Command{
	Use:   "export <folder> <archive.zip>",
	Short: "Export a project as a zip archive",
	Args:  cobra.ExactArgs(2),
	RunE:  runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot()
	if err != nil {
		return err
	}

	if err := archive.Export(root, args[0], args[1]); err != nil {
		return fmt.Errorf("exporting project: %w", err)
	}
	return nil
}
