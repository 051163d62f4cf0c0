package changeset

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/montavis/atelier/pkg/types"
)

// Audit action kinds.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Columns every audit shadow table carries in addition to the mirrored
// entity columns. They are always written, even when rowData supplies
// neither.
const (
	auditActionColumn = "action"
	auditTimeColumn   = "created_at"
)

// recordAudit appends one immutable change record to the shadow table
// mapped for table. A no-op when no mapping is configured. The record
// holds the intersection of rowData's keys with the shadow table's own
// columns plus the action kind and timestamp. Audit tables are
// append-only; there is no upsert path. A write failure propagates so
// the enclosing transaction rolls back; an unaudited mutation is not
// an acceptable outcome.
func recordAudit(tx *sql.Tx, cache *schemaCache, auditTables map[string]string, table string, rowData types.Row, action, timestamp string) error {
	target, ok := auditTables[table]
	if !ok {
		return nil
	}
	if err := AssertIdentifier(target); err != nil {
		return err
	}

	schema, err := cache.describe(target)
	if err != nil {
		return err
	}
	if len(schema.columns) == 0 {
		// Shadow table absent in this document version.
		return nil
	}

	cols := make([]string, 0, len(rowData)+2)
	for col := range rowData {
		if col == auditActionColumn || col == auditTimeColumn {
			continue
		}
		if schema.hasColumn(col) {
			cols = append(cols, col)
		}
	}
	sort.Strings(cols)

	args := make([]any, 0, len(cols)+2)
	for _, col := range cols {
		args = append(args, StorageValue(rowData[col]))
	}
	cols = append(cols, auditActionColumn, auditTimeColumn)
	args = append(args, action, timestamp)

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		target, strings.Join(cols, ", "), placeholders)
	if _, err := tx.Exec(stmt, args...); err != nil {
		return fmt.Errorf("recording %s audit for %s: %w", action, table, err)
	}
	return nil
}
