package ml

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

type inputKind int

const (
	inputNone inputKind = iota
	inputRecord
	inputRecords
	inputMatrix
)

// RawInput holds one request worth of feature data in one of three shapes:
// a single record, a list of records, or a bare numeric matrix bound to the
// schema by column position. Shape is resolved exactly once, either in
// UnmarshalJSON or in a constructor.
type RawInput struct {
	kind    inputKind
	record  map[string]interface{}
	records []map[string]interface{}
	matrix  [][]interface{}
}

func NewRecordInput(record map[string]interface{}) RawInput {
	return RawInput{kind: inputRecord, record: record}
}

func NewRecordsInput(records []map[string]interface{}) RawInput {
	return RawInput{kind: inputRecords, records: records}
}

func NewMatrixInput(matrix [][]float64) RawInput {
	rows := make([][]interface{}, len(matrix))
	for i, row := range matrix {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		rows[i] = cells
	}
	return RawInput{kind: inputMatrix, matrix: rows}
}

func (in *RawInput) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return errors.New("empty input payload")
	}

	switch trimmed[0] {
	case '{':
		var record map[string]interface{}
		if err := json.Unmarshal(trimmed, &record); err != nil {
			return err
		}
		*in = RawInput{kind: inputRecord, record: record}
		return nil
	case '[':
		var elements []json.RawMessage
		if err := json.Unmarshal(trimmed, &elements); err != nil {
			return err
		}
		if len(elements) == 0 {
			*in = RawInput{kind: inputRecords}
			return nil
		}
		first := bytes.TrimSpace(elements[0])
		if len(first) > 0 && first[0] == '{' {
			var records []map[string]interface{}
			if err := json.Unmarshal(trimmed, &records); err != nil {
				return err
			}
			*in = RawInput{kind: inputRecords, records: records}
			return nil
		}
		var matrix [][]interface{}
		if err := json.Unmarshal(trimmed, &matrix); err != nil {
			return err
		}
		*in = RawInput{kind: inputMatrix, matrix: matrix}
		return nil
	default:
		return errors.New("input must be an object, an array of objects, or a numeric matrix")
	}
}

// Normalize validates the raw input against schema and returns the
// schema-aligned float matrix. Row order is preserved; no partial matrix is
// returned on failure.
func (in RawInput) Normalize(schema FeatureSchema) ([][]float64, error) {
	switch in.kind {
	case inputRecord:
		if len(in.record) == 0 {
			return nil, ErrEmptyInput
		}
		return normalizeRecords([]map[string]interface{}{in.record}, schema)
	case inputRecords:
		if len(in.records) == 0 {
			return nil, ErrEmptyInput
		}
		return normalizeRecords(in.records, schema)
	case inputMatrix:
		if len(in.matrix) == 0 {
			return nil, ErrEmptyInput
		}
		return normalizeMatrix(in.matrix, schema)
	default:
		return nil, ErrEmptyInput
	}
}

func normalizeRecords(records []map[string]interface{}, schema FeatureSchema) ([][]float64, error) {
	for _, record := range records {
		missing := make([]string, 0)
		for _, name := range schema {
			if _, ok := record[name]; !ok {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			return nil, &MissingFeaturesError{Missing: missing}
		}
	}

	rows := make([][]float64, len(records))
	for i, record := range records {
		row := make([]float64, len(schema))
		for j, name := range schema {
			value, err := coerceFloat(record[name], name)
			if err != nil {
				return nil, err
			}
			row[j] = value
		}
		rows[i] = row
	}
	return rows, nil
}

func normalizeMatrix(matrix [][]interface{}, schema FeatureSchema) ([][]float64, error) {
	for _, row := range matrix {
		if len(row) != len(schema) {
			return nil, &ShapeMismatchError{Expected: len(schema), Received: len(row)}
		}
	}

	rows := make([][]float64, len(matrix))
	for i, raw := range matrix {
		row := make([]float64, len(schema))
		for j, cell := range raw {
			value, err := coerceFloat(cell, schema[j])
			if err != nil {
				return nil, err
			}
			row[j] = value
		}
		rows[i] = row
	}
	return rows, nil
}

func coerceFloat(value interface{}, feature string) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, &NonNumericError{Feature: feature, Value: v.String()}
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, &NonNumericError{Feature: feature, Value: v}
		}
		return f, nil
	default:
		return 0, &NonNumericError{Feature: feature, Value: fmt.Sprintf("%v", value)}
	}
}
