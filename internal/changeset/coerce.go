package changeset

// StorageValue normalizes an in-memory value to its storage-native
// form: booleans become 1/0, nil stays nil, everything else passes
// through unchanged. Pure and total.
func StorageValue(v any) any {
	switch b := v.(type) {
	case bool:
		if b {
			return int64(1)
		}
		return int64(0)
	default:
		return v
	}
}
