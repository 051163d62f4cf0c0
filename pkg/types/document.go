package types

import "time"

// Identity is the stable identity of one instruction document: the
// UUID assigned at creation (never regenerated), the display title, and
// the revision counter. The folder holding the project is a display
// label only; two folders may hold documents with different ids, and
// the importer keys on ID, not on folder name.
type Identity struct {
	ID       string
	Title    string
	Revision int64
	Language string
}

// ProjectInfo describes one project folder under the managed root.
type ProjectInfo struct {
	Folder   string
	Identity Identity
	Modified time.Time
}

// Crop is a normalized crop rectangle, all values in [0, 1] relative to
// the source image.
type Crop struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// FullCrop is the unit square: no cropping.
func FullCrop() Crop {
	return Crop{X: 0, Y: 0, Width: 1, Height: 1}
}

// Attachment identifies the rows created by one attach operation.
type Attachment struct {
	AreaID     string
	JunctionID string
}
