// Show command prints the full document of one project.
package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/montavis/atelier/internal/project"
	"github.com/montavis/atelier/pkg/types"
)

var showCmd = &cobra.Command{
	Use:   "show <folder>",
	Short: "Print the full document of a project as JSON",
	Long: `Show reads every table of the project database and prints the whole
document keyed by table name. Tables the project file does not have are
omitted.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot()
	if err != nil {
		return err
	}

	p, err := project.Open(root, args[0])
	if err != nil {
		return err
	}
	defer p.Close()

	doc, err := p.Document(types.DefaultApplyConfig())
	if err != nil {
		return fmt.Errorf("reading document: %w", err)
	}

	output, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling document: %w", err)
	}
	fmt.Println(string(output))
	return nil
}
