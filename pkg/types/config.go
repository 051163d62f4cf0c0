package types

// Physical table names of the project database. The engine never
// assumes a table exists. The set below only bounds which tables a
// change-set may touch; actual columns are discovered at runtime.
const (
	TableInstructions = "instructions"
	TableSteps        = "steps"
	TableSubsteps     = "substeps"
	TableMediaAreas   = "media_areas"
	TableStepMedia    = "step_media"
	TableSubstepMedia = "substep_media"
	TableParts        = "parts"
	TableTools        = "tools"
	TableStepParts    = "step_parts"
	TableStepTools    = "step_tools"
	TableNotes        = "notes"
	TableDrawings     = "drawings"
	TableDrawingAreas = "drawing_areas"
	TableTranslations = "translations"
)

// Audit shadow tables. Append-only; written by the audit recorder,
// never eligible as change-set targets.
const (
	AuditSteps    = "audit_steps"
	AuditSubsteps = "audit_substeps"
	AuditParts    = "audit_parts"
	AuditNotes    = "audit_notes"
	AuditMedia    = "audit_media"
)

// ApplyConfig controls one change-set application.
type ApplyConfig struct {
	// AllowedTables is the set of physical tables eligible for write.
	// Change-set keys outside this set are skipped, not rejected.
	AllowedTables []string

	// DeleteOrder lists tables child-first so deletes never violate a
	// referential constraint. Tables absent from the list sort after
	// every named table. The upsert phase walks the reverse of this
	// order so parents are inserted before their dependents.
	DeleteOrder []string

	// AuditTables maps an entity table to its append-only shadow table.
	// Tables without an entry are mutated without audit records.
	AuditTables map[string]string

	// BackfillTables lists tables whose NULL language column is filled
	// with the document default after the delete phase.
	BackfillTables []string

	// CleanupTranslations removes translation rows owned by a deleted
	// entity. Enabled by default; absence of the translations table is
	// tolerated either way.
	CleanupTranslations bool
}

// DefaultApplyConfig returns the configuration matching the current
// project schema. Projects written by older or newer versions of the
// software still apply cleanly: the engine skips whatever the on-disk
// schema does not have.
func DefaultApplyConfig() ApplyConfig {
	return ApplyConfig{
		AllowedTables: []string{
			TableInstructions, TableSteps, TableSubsteps,
			TableMediaAreas, TableStepMedia, TableSubstepMedia,
			TableParts, TableTools, TableStepParts, TableStepTools,
			TableNotes, TableDrawings, TableDrawingAreas,
			TableTranslations,
		},
		DeleteOrder: []string{
			TableTranslations,
			TableStepMedia, TableSubstepMedia, TableDrawingAreas,
			TableStepParts, TableStepTools,
			TableSubsteps, TableMediaAreas, TableDrawings, TableNotes,
			TableParts, TableTools,
			TableSteps,
			TableInstructions,
		},
		AuditTables: map[string]string{
			TableSteps:      AuditSteps,
			TableSubsteps:   AuditSubsteps,
			TableParts:      AuditParts,
			TableNotes:      AuditNotes,
			TableMediaAreas: AuditMedia,
		},
		BackfillTables:      []string{TableSteps, TableSubsteps, TableNotes},
		CleanupTranslations: true,
	}
}

// Allowed reports whether table is eligible for write under c.
func (c ApplyConfig) Allowed(table string) bool {
	for _, t := range c.AllowedTables {
		if t == table {
			return true
		}
	}
	return false
}

// DeleteRank returns the position of table in the FK-safe delete
// ordering. Tables absent from DeleteOrder rank after every named
// table, the conservative default.
func (c ApplyConfig) DeleteRank(table string) int {
	for i, t := range c.DeleteOrder {
		if t == table {
			return i
		}
	}
	return len(c.DeleteOrder)
}
