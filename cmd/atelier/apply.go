// Apply command applies a change-set to one project.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/montavis/atelier/internal/changeset"
	"github.com/montavis/atelier/internal/project"
	"github.com/montavis/atelier/pkg/types"
)

var applyCmd = &cobra.Command{
	Use:   "apply <folder> [file]",
	Short: "Apply a change-set to a project",
	Long: `Apply reads a change-set as JSON from the given file, or from stdin
when the file is omitted or "-", and applies it to the project in one
transaction.

The change-set carries rows to upsert under "changed", keyed by table
name ("instruction" addresses the document row), and primary keys to
delete under "deleted", keyed by "{table}_ids".

Example:
  atelier apply Garden-Bench changes.json
  generate-changes | atelier apply Garden-Bench`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runApply,
}

func runApply(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot()
	if err != nil {
		return err
	}

	data, err := readChangeSetInput(args)
	if err != nil {
		return err
	}

	var cs types.ChangeSet
	if err := json.Unmarshal(data, &cs); err != nil {
		return fmt.Errorf("parsing change-set: %w", err)
	}

	p, err := project.Open(root, args[0])
	if err != nil {
		return err
	}
	defer p.Close()

	if err := changeset.Apply(p.DB(), cs, types.DefaultApplyConfig()); err != nil {
		return fmt.Errorf("applying change-set: %w", err)
	}
	return nil
}

func readChangeSetInput(args []string) ([]byte, error) {
	if len(args) < 2 || args[1] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading change-set from stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(args[1])
	if err != nil {
		return nil, fmt.Errorf("reading change-set file: %w", err)
	}
	return data, nil
}
