package media

import (
	"testing"

	"github.com/montavis/atelier/pkg/types"
)

func TestCropGeometry(t *testing.T) {
	got := cropGeometry(types.Crop{X: 0.25, Y: 0.25, Width: 0.5, Height: 0.5})
	if got != "50%x50%+25+25" {
		t.Errorf("cropGeometry = %q", got)
	}
}

func TestResizeGeometry(t *testing.T) {
	if got := resizeGeometry(640, 0); got != "640x" {
		t.Errorf("resizeGeometry(640, 0) = %q", got)
	}
	if got := resizeGeometry(0, 480); got != "x480" {
		t.Errorf("resizeGeometry(0, 480) = %q", got)
	}
	if got := resizeGeometry(640, 480); got != "640x480" {
		t.Errorf("resizeGeometry(640, 480) = %q", got)
	}
}
