package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
)

// InsertModels builds one multi-row INSERT from a slice of structs. Columns
// come from exported fields tagged `db:"name"`, in field order.
func InsertModels(table string, models any, suffix string) (string, []any, error) {
	slice := reflect.ValueOf(models)
	if slice.Kind() != reflect.Slice {
		return "", nil, fmt.Errorf("models must be a slice")
	}
	if slice.Len() == 0 {
		return "", nil, fmt.Errorf("insert values are required")
	}

	elem := slice.Type().Elem()
	for elem.Kind() == reflect.Pointer {
		elem = elem.Elem()
	}
	if elem.Kind() != reflect.Struct {
		return "", nil, fmt.Errorf("model must be struct")
	}
	columns, fields := taggedColumns(elem)
	if len(columns) == 0 {
		return "", nil, fmt.Errorf("model has no db columns")
	}

	builder := InsertInto(table).Columns(columns...).Suffix(suffix)
	for i := 0; i < slice.Len(); i++ {
		model := slice.Index(i)
		for model.Kind() == reflect.Pointer {
			if model.IsNil() {
				return "", nil, fmt.Errorf("model %d: model cannot be nil", i)
			}
			model = model.Elem()
		}
		values := make([]any, len(fields))
		for j, field := range fields {
			values[j] = model.Field(field).Interface()
		}
		builder.Values(values...)
	}
	return builder.ToSQL()
}

func taggedColumns(typ reflect.Type) ([]string, []int) {
	var columns []string
	var fields []int
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("db"), ",")
		name = strings.TrimSpace(name)
		if name == "" || name == "-" {
			continue
		}
		columns = append(columns, name)
		fields = append(fields, i)
	}
	return columns, fields
}
