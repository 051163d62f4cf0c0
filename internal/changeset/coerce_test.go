package changeset

import "testing"

func TestStorageValue(t *testing.T) {
	if got := StorageValue(true); got != int64(1) {
		t.Errorf("StorageValue(true) = %v, want 1", got)
	}
	if got := StorageValue(false); got != int64(0) {
		t.Errorf("StorageValue(false) = %v, want 0", got)
	}
	if got := StorageValue(nil); got != nil {
		t.Errorf("StorageValue(nil) = %v, want nil", got)
	}
	if got := StorageValue("text"); got != "text" {
		t.Errorf("StorageValue(string) = %v, want passthrough", got)
	}
	if got := StorageValue(3.5); got != 3.5 {
		t.Errorf("StorageValue(float64) = %v, want passthrough", got)
	}
}
