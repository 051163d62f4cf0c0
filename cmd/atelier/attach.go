// Attach command attaches an image file to a step.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/montavis/atelier/internal/media"
	"github.com/montavis/atelier/pkg/types"
)

var flagCrop []float64

var attachCmd = &cobra.Command{
	Use:   "attach <folder> <step-id> <image>",
	Short: "Attach an image file to a step",
	Long: `Attach copies the image into the project's media directory, records
the media area and its link to the step, and sets the step preview.
The whole operation succeeds or leaves no trace.

Sources must live inside the user's home directory. Supported types:
jpg, jpeg, png.

Example:
  atelier attach Garden-Bench s1 ~/Pictures/frame.jpg
  atelier attach Garden-Bench s1 ~/Pictures/frame.jpg --crop 0.25,0.25,0.5,0.5`,
	Args: cobra.ExactArgs(3),
	RunE: runAttach,
}

func init() {
	attachCmd.Flags().Float64SliceVar(&flagCrop, "crop", nil, "fractional crop region as x,y,width,height")
}

func runAttach(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot()
	if err != nil {
		return err
	}

	creator, err := media.NewCreator(root)
	if err != nil {
		return err
	}

	var crop *types.Crop
	if len(flagCrop) > 0 {
		if len(flagCrop) != 4 {
			return fmt.Errorf("invalid crop: want x,y,width,height, got %d values", len(flagCrop))
		}
		crop = &types.Crop{X: flagCrop[0], Y: flagCrop[1], Width: flagCrop[2], Height: flagCrop[3]}
	}

	att, err := creator.Attach(args[0], args[1], args[2], crop)
	if err != nil {
		return fmt.Errorf("attaching media: %w", err)
	}
	fmt.Println(att.AreaID)
	return nil
}
