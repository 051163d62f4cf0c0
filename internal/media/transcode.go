package media

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/montavis/atelier/pkg/types"
)

// Transcoder renders cropped, scaled derivatives of source images by
// shelling out to an external converter. The default command is
// ImageMagick's convert; any tool with a compatible argument shape can
// be substituted.
type Transcoder struct {
	// Command is the converter binary. Defaults to "convert" when empty.
	Command string
}

// Render writes a derivative of src to dst, cropped to the given
// fractional region and scaled to width pixels wide (height preserves
// aspect when zero). Success requires both a zero exit status and an
// existing output file, since some converters exit zero on partial
// failures.
func (t *Transcoder) Render(src, dst string, crop types.Crop, width, height int) error {
	command := t.Command
	if command == "" {
		command = "convert"
	}

	args := []string{src}
	if crop != types.FullCrop() {
		args = append(args, "-crop", cropGeometry(crop))
	}
	if width > 0 || height > 0 {
		args = append(args, "-resize", resizeGeometry(width, height))
	}
	args = append(args, dst)

	cmd := exec.Command(command, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("transcoding %s: %w: %s", src, err, out)
	}
	if _, err := os.Stat(dst); err != nil {
		return fmt.Errorf("transcoding %s: no output produced", src)
	}
	return nil
}

// cropGeometry converts a fractional crop region into ImageMagick
// percent geometry, e.g. "50%x50%+25+25" picks the centered quarter.
func cropGeometry(c types.Crop) string {
	pct := func(f float64) string {
		return strconv.FormatFloat(f*100, 'f', -1, 64)
	}
	return pct(c.Width) + "%x" + pct(c.Height) + "%+" + pct(c.X) + "+" + pct(c.Y)
}

func resizeGeometry(width, height int) string {
	w := ""
	if width > 0 {
		w = strconv.Itoa(width)
	}
	h := ""
	if height > 0 {
		h = strconv.Itoa(height)
	}
	return w + "x" + h
}
