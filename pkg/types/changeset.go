package types

import "strings"

// InstructionKey is the logical change-set key for the root document
// table. Callers say "instruction"; the engine maps it to the physical
// instructions table. Every other key must equal its physical table name.
const InstructionKey = "instruction"

// deletedKeySuffix is appended to a table name to form a deletion key
// in ChangeSet.Deleted ("steps" -> "steps_ids").
const deletedKeySuffix = "_ids"

// Row is an untyped field bag: one full or partial entity row keyed by
// column name. Fields that do not match a known column of the target
// table are dropped silently when the row is applied.
type Row map[string]any

// ChangeSet is a caller-supplied diff against one project database:
// rows to upsert per table, and primary-key values to delete per
// "{table}_ids" key. It has no lifecycle of its own; it exists only for
// the duration of one Apply call.
type ChangeSet struct {
	Changed map[string][]Row `json:"changed"`
	Deleted map[string][]any `json:"deleted"`
}

// Empty reports whether the change-set carries no work at all.
func (cs ChangeSet) Empty() bool {
	return len(cs.Changed) == 0 && len(cs.Deleted) == 0
}

// DeletedTable recovers the table name from a deletion key.
// Returns false when the key does not carry the "_ids" suffix.
func DeletedTable(key string) (string, bool) {
	table := strings.TrimSuffix(key, deletedKeySuffix)
	if table == key || table == "" {
		return "", false
	}
	return table, true
}

// DeletedKey forms the deletion key for a table name.
func DeletedKey(table string) string {
	return table + deletedKeySuffix
}
