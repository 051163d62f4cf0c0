// List command enumerates projects under the managed root.
package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/montavis/atelier/internal/project"
)

var flagListJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects under the managed root",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&flagListJSON, "json", false, "output as JSON")
}

func runList(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot()
	if err != nil {
		return err
	}

	infos, err := project.List(root)
	if err != nil {
		return fmt.Errorf("listing projects: %w", err)
	}

	if flagListJSON {
		output, err := json.MarshalIndent(infos, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling projects: %w", err)
		}
		fmt.Println(string(output))
		return nil
	}

	for _, info := range infos {
		fmt.Printf("%s\t%s\t(rev %d, %s)\n",
			info.Folder, info.Identity.Title, info.Identity.Revision, info.Identity.Language)
	}
	return nil
}
