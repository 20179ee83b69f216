package database

import (
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// columnIndex maps `db:` tag names to struct field indexes, per type.
var columnIndex sync.Map // reflect.Type -> []taggedField

type taggedField struct {
	column string
	index  int
}

func fieldsOf(t reflect.Type) []taggedField {
	if cached, ok := columnIndex.Load(t); ok {
		return cached.([]taggedField)
	}
	var fields []taggedField
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		fields = append(fields, taggedField{column: tag, index: i})
	}
	columnIndex.Store(t, fields)
	return fields
}

// insertColumns extracts column names and values from a `db:`-tagged
// struct. A zero id column is left out so the database assigns it.
func insertColumns(record any) ([]string, []any, error) {
	v := reflect.Indirect(reflect.ValueOf(record))
	if v.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("record must be a struct, got %s", v.Kind())
	}
	var (
		cols []string
		vals []any
	)
	for _, f := range fieldsOf(v.Type()) {
		fv := v.Field(f.index)
		if f.column == "id" && fv.IsZero() {
			continue
		}
		cols = append(cols, f.column)
		vals = append(vals, fv.Interface())
	}
	if len(cols) == 0 {
		return nil, nil, errors.New("record has no db-tagged fields")
	}
	return cols, vals, nil
}

// scanRows appends every row to dest, a pointer to a slice of structs (or
// struct pointers). Columns without a matching field are discarded.
func scanRows(rows *sql.Rows, dest any) error {
	dv := reflect.ValueOf(dest)
	if dv.Kind() != reflect.Ptr || dv.Elem().Kind() != reflect.Slice {
		return errors.New("select: dest must be a pointer to a slice")
	}
	slice := dv.Elem()
	elemType := slice.Type().Elem()
	isPtr := elemType.Kind() == reflect.Ptr
	if isPtr {
		elemType = elemType.Elem()
	}
	if elemType.Kind() != reflect.Struct {
		return fmt.Errorf("select: slice element must be a struct, got %s", elemType.Kind())
	}

	cols, err := rows.Columns()
	if err != nil {
		return err
	}
	byColumn := make(map[string]int, len(cols))
	for _, f := range fieldsOf(elemType) {
		byColumn[f.column] = f.index
	}

	for rows.Next() {
		elem := reflect.New(elemType).Elem()
		ptrs := make([]any, len(cols))
		for i, c := range cols {
			if idx, ok := byColumn[c]; ok {
				ptrs[i] = elem.Field(idx).Addr().Interface()
			} else {
				ptrs[i] = new(any)
			}
		}
		if err := rows.Scan(ptrs...); err != nil {
			return err
		}
		if isPtr {
			elem = elem.Addr()
		}
		slice.Set(reflect.Append(slice, elem))
	}
	return rows.Err()
}
