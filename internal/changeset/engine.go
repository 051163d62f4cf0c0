// Package changeset applies caller-supplied diffs to a project database
// inside a single all-or-nothing transaction. The engine discovers each
// table's shape at runtime and acts only on what exists: unknown tables
// and unknown columns are skipped silently, which is how projects
// written by older or newer versions of the software stay applicable.
// Do not tighten that into a hard error.
package changeset

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/montavis/atelier/pkg/types"
)

// Apply applies one change-set to db under cfg. It opens one
// transaction with foreign-key enforcement on, runs the upsert phase,
// the delete phase, and the optional language backfill, then commits.
// Any failure rolls the whole transaction back and the underlying error
// propagates; a rollback failure is swallowed so the original cause is
// what the caller sees. Partial application is never observable.
func Apply(db *sql.DB, cs types.ChangeSet, cfg types.ApplyConfig) error {
	if cs.Empty() {
		return nil
	}

	// The pragma is connection-scoped, so pin one connection for both
	// the pragma and the transaction.
	ctx := context.Background()
	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquiring connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("enabling foreign keys: %w", err)
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	a := &applier{
		tx:    tx,
		cache: newSchemaCache(tx),
		stmts: make(map[string]*sql.Stmt),
		cfg:   cfg,
		now:   time.Now().Format(time.RFC3339),
	}
	defer a.closeStmts()

	if err := a.run(cs); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing change-set: %w", err)
	}
	return nil
}

// applier holds the per-invocation state of one Apply call. The schema
// cache and prepared-statement cache are scoped here, never shared
// across calls, to avoid stale-schema bugs on a long-lived process.
type applier struct {
	tx    *sql.Tx
	cache *schemaCache
	stmts map[string]*sql.Stmt
	cfg   types.ApplyConfig
	now   string
}

func (a *applier) run(cs types.ChangeSet) error {
	if err := a.upsertPhase(cs.Changed); err != nil {
		return err
	}
	if err := a.deletePhase(cs.Deleted); err != nil {
		return err
	}
	return a.backfillPhase()
}

func (a *applier) closeStmts() {
	for _, stmt := range a.stmts {
		stmt.Close()
	}
}

// physical maps a logical change-set key to its physical table name.
// Only "instruction" differs; every other key must already equal its
// physical name.
func physical(key string) string {
	if key == types.InstructionKey {
		return types.TableInstructions
	}
	return key
}

// upsertRank orders tables parent-first for the upsert phase: the
// reverse of the FK-safe delete ordering, with tables absent from that
// list after everything named.
func (a *applier) upsertRank(table string) int {
	r := a.cfg.DeleteRank(table)
	if r == len(a.cfg.DeleteOrder) {
		return math.MaxInt
	}
	return len(a.cfg.DeleteOrder) - 1 - r
}

// Upsert phase.

func (a *applier) upsertPhase(changed map[string][]types.Row) error {
	keys := make([]string, 0, len(changed))
	for key := range changed {
		keys = append(keys, key)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		ri, rj := a.upsertRank(physical(keys[i])), a.upsertRank(physical(keys[j]))
		if ri != rj {
			return ri < rj
		}
		return keys[i] < keys[j]
	})

	for _, key := range keys {
		if err := a.upsertTable(key, changed[key]); err != nil {
			return err
		}
	}
	return nil
}

func (a *applier) upsertTable(key string, rows []types.Row) error {
	if err := AssertIdentifier(key); err != nil {
		return err
	}

	table := physical(key)
	if key != types.InstructionKey && !a.cfg.Allowed(key) {
		// Change-sets from newer UI versions may reference tables this
		// engine does not recognize. Skip the whole table.
		return nil
	}

	schema, err := a.cache.describe(table)
	if err != nil {
		return err
	}
	if len(schema.columns) == 0 {
		return nil
	}

	isInstruction := key == types.InstructionKey
	var writtenIDs []any

	for _, row := range rows {
		cols, values := intersectRow(row, schema)
		if len(cols) == 0 {
			continue
		}

		action, err := a.classify(table, schema, row)
		if err != nil {
			return err
		}

		stmt, err := a.upsertStmt(table, schema, cols)
		if err != nil {
			return err
		}
		if _, err := stmt.Exec(values...); err != nil {
			return fmt.Errorf("upserting %s row: %w", table, err)
		}

		audited := auditRow(cols, values)
		if err := recordAudit(a.tx, a.cache, a.cfg.AuditTables, table, audited, action, a.now); err != nil {
			return err
		}

		if isInstruction {
			if id, ok := row[schema.pkColumn()]; ok {
				writtenIDs = append(writtenIDs, id)
			}
		}
	}

	if isInstruction {
		return a.touchInstructions(schema, writtenIDs)
	}
	return nil
}

// intersectRow drops row fields the table does not know about and
// coerces the survivors to storage values. Columns come back sorted so
// identically-shaped rows share one prepared statement.
func intersectRow(row types.Row, schema tableSchema) ([]string, []any) {
	cols := make([]string, 0, len(row))
	for col := range row {
		if schema.hasColumn(col) {
			cols = append(cols, col)
		}
	}
	sort.Strings(cols)

	values := make([]any, len(cols))
	for i, col := range cols {
		values[i] = StorageValue(row[col])
	}
	return cols, values
}

func auditRow(cols []string, values []any) types.Row {
	row := make(types.Row, len(cols))
	for i, col := range cols {
		row[col] = values[i]
	}
	return row
}

// classify decides whether writing row is a create or an update. The
// existence check must happen before the write: once the upsert
// commits, the two outcomes are indistinguishable.
func (a *applier) classify(table string, schema tableSchema, row types.Row) (string, error) {
	if len(schema.pk) == 0 {
		return ActionCreate, nil
	}

	conds := make([]string, 0, len(schema.pk))
	args := make([]any, 0, len(schema.pk))
	for _, col := range schema.pk {
		v, ok := row[col]
		if !ok {
			// A row without its full key cannot collide with an
			// existing one.
			return ActionCreate, nil
		}
		conds = append(conds, col+" = ?")
		args = append(args, StorageValue(v))
	}

	query := fmt.Sprintf("SELECT 1 FROM %s WHERE %s",
		table, strings.Join(conds, " AND "))
	var one int
	err := a.tx.QueryRow(query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return ActionCreate, nil
	}
	if err != nil {
		return "", fmt.Errorf("checking %s row existence: %w", table, err)
	}
	return ActionUpdate, nil
}

// upsertStmt returns the prepared statement for this exact column set,
// building and caching it on first use. Change-sets frequently carry
// hundreds of rows sharing one shape; preparing once amortizes the cost
// while each row still supplies its own bound values.
func (a *applier) upsertStmt(table string, schema tableSchema, cols []string) (*sql.Stmt, error) {
	fingerprint := table + "|" + strings.Join(cols, ",")
	if stmt, ok := a.stmts[fingerprint]; ok {
		return stmt, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")

	var b strings.Builder
	if len(schema.pk) == 0 {
		// No primary key: never overwrite, never error on duplicates.
		fmt.Fprintf(&b, "INSERT OR IGNORE INTO %s (%s) VALUES (%s)",
			table, strings.Join(cols, ", "), placeholders)
	} else {
		fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES (%s) ON CONFLICT(%s) DO ",
			table, strings.Join(cols, ", "), placeholders, strings.Join(schema.pk, ", "))

		var sets []string
		for _, col := range cols {
			if !isKeyColumn(schema, col) {
				sets = append(sets, col+" = excluded."+col)
			}
		}
		if len(sets) == 0 {
			b.WriteString("NOTHING")
		} else {
			b.WriteString("UPDATE SET " + strings.Join(sets, ", "))
		}
	}

	stmt, err := a.tx.Prepare(b.String())
	if err != nil {
		return nil, fmt.Errorf("preparing upsert for %s: %w", table, err)
	}
	a.stmts[fingerprint] = stmt
	return stmt, nil
}

func isKeyColumn(schema tableSchema, col string) bool {
	for _, k := range schema.pk {
		if k == col {
			return true
		}
	}
	return false
}

// touchInstructions stamps a fresh modification timestamp on exactly
// the instruction rows this change-set wrote. Never a blanket UPDATE:
// unrelated document rows sharing the table must stay untouched.
func (a *applier) touchInstructions(schema tableSchema, ids []any) error {
	if len(ids) == 0 || !schema.hasColumn("updated_at") {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	query := fmt.Sprintf("UPDATE %s SET updated_at = ? WHERE %s IN (%s)",
		types.TableInstructions, schema.pkColumn(), placeholders)

	args := make([]any, 0, len(ids)+1)
	args = append(args, a.now)
	for _, id := range ids {
		args = append(args, StorageValue(id))
	}
	if _, err := a.tx.Exec(query, args...); err != nil {
		return fmt.Errorf("stamping instruction timestamps: %w", err)
	}
	return nil
}

// Delete phase.

type deletion struct {
	table string
	ids   []any
}

func (a *applier) deletePhase(deleted map[string][]any) error {
	var dels []deletion
	for key, ids := range deleted {
		table, ok := types.DeletedTable(key)
		if !ok {
			continue
		}
		if err := AssertIdentifier(table); err != nil {
			return err
		}
		if !a.cfg.Allowed(table) {
			continue
		}
		dels = append(dels, deletion{table: table, ids: ids})
	}

	sort.SliceStable(dels, func(i, j int) bool {
		ri, rj := a.cfg.DeleteRank(dels[i].table), a.cfg.DeleteRank(dels[j].table)
		if ri != rj {
			return ri < rj
		}
		return dels[i].table < dels[j].table
	})

	for _, d := range dels {
		if err := a.deleteRows(d.table, d.ids); err != nil {
			return err
		}
	}
	return nil
}

func (a *applier) deleteRows(table string, ids []any) error {
	schema, err := a.cache.describe(table)
	if err != nil {
		return err
	}
	if len(schema.columns) == 0 {
		return nil
	}

	pk := schema.pkColumn()
	if err := AssertIdentifier(pk); err != nil {
		return err
	}

	_, audited := a.cfg.AuditTables[table]
	for _, id := range ids {
		sid := StorageValue(id)

		if audited {
			// Snapshot the row before it is gone. A row already absent
			// still gets a minimal record carrying the key value.
			row := a.snapshotRow(table, schema, pk, sid)
			if err := recordAudit(a.tx, a.cache, a.cfg.AuditTables, table, row, ActionDelete, a.now); err != nil {
				return err
			}
		}

		query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, pk)
		if _, err := a.tx.Exec(query, sid); err != nil {
			return fmt.Errorf("deleting %s row: %w", table, err)
		}

		if a.cfg.CleanupTranslations && table != types.TableTranslations {
			if err := a.cleanupTranslations(sid); err != nil {
				return err
			}
		}
	}
	return nil
}

// snapshotRow reads the full row for the pre-delete audit record.
// Best-effort: any failure degrades to a minimal record with only the
// key value rather than aborting the delete.
func (a *applier) snapshotRow(table string, schema tableSchema, pk string, id any) types.Row {
	cols := schema.sortedColumns()
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?",
		strings.Join(cols, ", "), table, pk)

	dest := make([]any, len(cols))
	holders := make([]any, len(cols))
	for i := range dest {
		holders[i] = &dest[i]
	}
	if err := a.tx.QueryRow(query, id).Scan(holders...); err != nil {
		return types.Row{pk: id}
	}

	row := make(types.Row, len(cols))
	for i, col := range cols {
		row[col] = dest[i]
	}
	return row
}

// cleanupTranslations removes translation rows owned by a deleted
// entity. Absence of the translations table, or of its owner column, is
// not an error.
func (a *applier) cleanupTranslations(ownerID any) error {
	schema, err := a.cache.describe(types.TableTranslations)
	if err != nil {
		return err
	}
	if len(schema.columns) == 0 || !schema.hasColumn("parent_id") {
		return nil
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE parent_id = ?", types.TableTranslations)
	if _, err := a.tx.Exec(query, ownerID); err != nil {
		return fmt.Errorf("cleaning up translations: %w", err)
	}
	return nil
}

// Backfill phase.

// backfillPhase writes the document's default language into rows whose
// language column is still NULL, for each configured table. Tables
// without a language column are tolerated, not fatal.
func (a *applier) backfillPhase() error {
	if len(a.cfg.BackfillTables) == 0 {
		return nil
	}

	lang, ok, err := a.defaultLanguage()
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	for _, table := range a.cfg.BackfillTables {
		if err := AssertIdentifier(table); err != nil {
			return err
		}
		schema, err := a.cache.describe(table)
		if err != nil {
			return err
		}
		if !schema.hasColumn("language") {
			continue
		}
		query := fmt.Sprintf("UPDATE %s SET language = ? WHERE language IS NULL", table)
		if _, err := a.tx.Exec(query, lang); err != nil {
			return fmt.Errorf("backfilling language on %s: %w", table, err)
		}
	}
	return nil
}

func (a *applier) defaultLanguage() (string, bool, error) {
	schema, err := a.cache.describe(types.TableInstructions)
	if err != nil {
		return "", false, err
	}
	if !schema.hasColumn("language") {
		return "", false, nil
	}

	var lang sql.NullString
	query := fmt.Sprintf("SELECT language FROM %s LIMIT 1", types.TableInstructions)
	err = a.tx.QueryRow(query).Scan(&lang)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading document language: %w", err)
	}
	if !lang.Valid || lang.String == "" {
		return "", false, nil
	}
	return lang.String, true, nil
}
