// Create command makes a fresh empty project.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/montavis/atelier/internal/project"
)

var flagLanguage string

var createCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a new instruction project",
	Long: `Create makes a fresh project folder under the managed root: an empty
database with the document row seeded, and an empty media directory.

Example:
  atelier create "Garden Bench"
  atelier create "Gartenbank" --language de`,
	Args: cobra.ExactArgs(1),
	RunE: runCreate,
}

func init() {
	createCmd.Flags().StringVar(&flagLanguage, "language", "", "default document language (e.g. en, de)")
}

func runCreate(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot()
	if err != nil {
		return err
	}

	folder, err := project.Create(root, args[0], flagLanguage)
	if err != nil {
		return fmt.Errorf("creating project: %w", err)
	}
	fmt.Println(folder)
	return nil
}
