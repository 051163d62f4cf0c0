package project

import (
	"fmt"
	"strings"

	"github.com/montavis/atelier/internal/changeset"
	"github.com/montavis/atelier/pkg/types"
)

// Document reads the full document: every row of every eligible table,
// keyed by table name. The column set of each table is discovered at
// read time through the same introspection mechanism the engine uses,
// so documents written by other versions of the software read cleanly.
// Tables the file does not have are simply absent from the result.
func (p *Project) Document(cfg types.ApplyConfig) (map[string][]types.Row, error) {
	doc := make(map[string][]types.Row)
	for _, table := range cfg.AllowedTables {
		rows, err := p.readTable(table)
		if err != nil {
			return nil, err
		}
		if rows != nil {
			doc[table] = rows
		}
	}
	return doc, nil
}

func (p *Project) readTable(table string) ([]types.Row, error) {
	schema, err := changeset.Describe(p.db, table)
	if err != nil {
		return nil, err
	}
	if len(schema.Columns) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT %s FROM %s",
		strings.Join(schema.Columns, ", "), table)
	rows, err := p.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", table, err)
	}
	defer rows.Close()

	result := []types.Row{}
	for rows.Next() {
		dest := make([]any, len(schema.Columns))
		holders := make([]any, len(schema.Columns))
		for i := range dest {
			holders[i] = &dest[i]
		}
		if err := rows.Scan(holders...); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", table, err)
		}
		row := make(types.Row, len(schema.Columns))
		for i, col := range schema.Columns {
			row[col] = dest[i]
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
