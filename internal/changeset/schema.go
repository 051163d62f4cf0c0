package changeset

import (
	"database/sql"
	"fmt"
	"sort"
)

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx
// that schema introspection needs.
type querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
}

// tableSchema is the runtime shape of one table: its column set and its
// primary-key columns in declaration order. A table that does not exist
// has an empty column set; callers treat that as "skip silently", not
// as an error, because some tables are version-conditional.
type tableSchema struct {
	columns map[string]bool
	pk      []string
}

func (s tableSchema) hasColumn(name string) bool {
	return s.columns[name]
}

// sortedColumns returns the column names in lexical order, for building
// deterministic statements and snapshots.
func (s tableSchema) sortedColumns() []string {
	cols := make([]string, 0, len(s.columns))
	for c := range s.columns {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// pkColumn returns the first primary-key column, defaulting to a
// literal "id" when the schema declares no key. Legacy tables predate
// explicit primary keys but still carry an id column.
func (s tableSchema) pkColumn() string {
	if len(s.pk) > 0 {
		return s.pk[0]
	}
	return "id"
}

// Schema is the runtime shape of one table as seen by read wrappers
// outside the engine. Missing tables come back with an empty column
// list, mirroring the internal skip-silently contract.
type Schema struct {
	Columns    []string
	PrimaryKey []string
}

// Describe introspects table against db without caching. The thin read
// wrappers (list projects, get full document) use this to discover what
// a given project file actually has.
func Describe(db *sql.DB, table string) (Schema, error) {
	s, err := newSchemaCache(db).describe(table)
	if err != nil {
		return Schema{}, err
	}
	return Schema{Columns: s.sortedColumns(), PrimaryKey: s.pk}, nil
}

// schemaCache introspects and memoizes table shapes against the live
// database. A cache is scoped to one Apply invocation, never shared
// across calls, so schema changes between invocations are picked up.
type schemaCache struct {
	q      querier
	tables map[string]tableSchema
}

func newSchemaCache(q querier) *schemaCache {
	return &schemaCache{q: q, tables: make(map[string]tableSchema)}
}

// describe returns the schema of table, issuing a PRAGMA table_info
// query on first request and memoizing the result. The table name is
// guarded before use even though pragma_table_info binds it as a value.
func (c *schemaCache) describe(table string) (tableSchema, error) {
	if s, ok := c.tables[table]; ok {
		return s, nil
	}
	if err := AssertIdentifier(table); err != nil {
		return tableSchema{}, err
	}

	rows, err := c.q.Query(
		"SELECT name, pk FROM pragma_table_info(?) ORDER BY cid", table)
	if err != nil {
		return tableSchema{}, fmt.Errorf("describing table %s: %w", table, err)
	}
	defer rows.Close()

	s := tableSchema{columns: make(map[string]bool)}
	type keyed struct {
		name string
		pos  int
	}
	var keys []keyed
	for rows.Next() {
		var name string
		var pk int
		if err := rows.Scan(&name, &pk); err != nil {
			return tableSchema{}, fmt.Errorf("scanning column info for %s: %w", table, err)
		}
		s.columns[name] = true
		if pk > 0 {
			keys = append(keys, keyed{name: name, pos: pk})
		}
	}
	if err := rows.Err(); err != nil {
		return tableSchema{}, fmt.Errorf("reading column info for %s: %w", table, err)
	}

	// pk values are 1-based positions within a composite key.
	sort.Slice(keys, func(i, j int) bool { return keys[i].pos < keys[j].pos })
	for _, k := range keys {
		s.pk = append(s.pk, k.name)
	}

	c.tables[table] = s
	return s, nil
}
