package datarecording

import (
	"database/sql"
	"fmt"
	"reflect"
)

// QueryParams narrows and orders a table query.
type QueryParams struct {
	// Where holds the WHERE clause without the keyword, e.g. "Seq > ?".
	Where string

	// Args fills the placeholders of Where.
	Args []any

	// Limit caps the number of returned rows; 0 means no cap.
	Limit int

	// Offset skips rows for pagination.
	Offset int

	// OrderBy holds the ORDER BY clause without the keywords.
	OrderBy string
}

// A DataReader reads recorded data back from a database.
type DataReader interface {
	// MapTable binds a table to the struct type its rows scan into. The
	// binding is required before querying.
	MapTable(tableName string, sampleEntry any)

	// Query returns the matching rows of a table.
	Query(tableName string, params QueryParams) ([]any, error)

	// Close closes the database.
	Close() error
}

// NewReader opens a DataReader over a SQLite file.
func NewReader(filename string) DataReader {
	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		panic(err)
	}

	return &sqliteReader{DB: db, typeMap: make(map[string]reflect.Type)}
}

type sqliteReader struct {
	*sql.DB

	typeMap map[string]reflect.Type
}

func (r *sqliteReader) MapTable(tableName string, sampleEntry any) {
	t := reflect.TypeOf(sampleEntry)
	mustBeFlatStruct(t)

	r.typeMap[tableName] = t
}

func (r *sqliteReader) Query(
	tableName string,
	params QueryParams,
) ([]any, error) {
	structType, ok := r.typeMap[tableName]
	if !ok {
		return nil, fmt.Errorf("table %s is not mapped", tableName)
	}

	query := "SELECT * FROM " + tableName
	if params.Where != "" {
		query += " WHERE " + params.Where
	}
	if params.OrderBy != "" {
		query += " ORDER BY " + params.OrderBy
	}
	if params.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d",
			params.Limit, params.Offset)
	}

	rows, err := r.DB.Query(query, params.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []any

	for rows.Next() {
		entry := reflect.New(structType).Elem()

		fields := make([]any, structType.NumField())
		for i := range fields {
			fields[i] = entry.Field(i).Addr().Interface()
		}

		if err := rows.Scan(fields...); err != nil {
			return nil, err
		}

		results = append(results, entry.Interface())
	}

	return results, rows.Err()
}

func (r *sqliteReader) Close() error {
	return r.DB.Close()
}
