// Package descriptor provides the block-sparse container for calculator
// outputs: named-column integer label tables, tensor blocks with attached
// gradient sub-blocks, and the key-indexed tensor map that groups them.
package descriptor

import (
	"fmt"

	"github.com/featgrad-ml/featgrad/internal/tensor"
)

// Labels is a named-column integer table. Each row identifies one logical
// entry of a block axis: which sample a values row belongs to, which
// spatial direction a component index means, which property a column is.
type Labels struct {
	names  []string
	values *tensor.RawTensor // Int32, shape [count, len(names)]
	empty  bool              // true for zero-row tables (backing tensor keeps one row)
}

// NewLabels creates a label table from explicit rows.
// Column names must be non-empty and unique; every row must have one entry
// per column.
func NewLabels(names []string, rows [][]int32) (*Labels, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("labels need at least one column")
	}
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if name == "" {
			return nil, fmt.Errorf("label column names can not be empty")
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate label column name %q", name)
		}
		seen[name] = true
	}

	flat := make([]int32, 0, len(rows)*len(names))
	for i, row := range rows {
		if len(row) != len(names) {
			return nil, fmt.Errorf("label row %d has %d entries, expected %d", i, len(row), len(names))
		}
		flat = append(flat, row...)
	}

	if len(rows) == 0 {
		// Shape validation rejects zero-sized dimensions, so an empty table
		// keeps a zero-filled one-row backing tensor and reports count 0.
		flat = make([]int32, len(names))
	}
	values, err := tensor.FromInt32(flat, tensor.Shape{maxInt(len(rows), 1), len(names)})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &Labels{names: append([]string(nil), names...), values: values, empty: true}, nil
	}
	return &Labels{names: append([]string(nil), names...), values: values}, nil
}

// Range creates a single-column label table with values 0..count-1.
// This is the usual property table for generated descriptors.
func Range(name string, count int) (*Labels, error) {
	rows := make([][]int32, count)
	for i := range rows {
		rows[i] = []int32{int32(i)}
	}
	return NewLabels([]string{name}, rows)
}

// Names returns the column names, in order.
func (l *Labels) Names() []string {
	return l.names
}

// Size returns the number of columns.
func (l *Labels) Size() int {
	return len(l.names)
}

// Count returns the number of rows.
func (l *Labels) Count() int {
	if l.empty {
		return 0
	}
	return l.values.Shape()[0]
}

// Position returns the column index for the given name, and whether the
// name exists at all.
func (l *Labels) Position(name string) (int, bool) {
	for i, n := range l.names {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

// Value returns the entry at the given row and column.
func (l *Labels) Value(row, col int) int32 {
	if row < 0 || row >= l.Count() {
		panic(fmt.Sprintf("labels: row %d out of range [0, %d)", row, l.Count()))
	}
	if col < 0 || col >= len(l.names) {
		panic(fmt.Sprintf("labels: column %d out of range [0, %d)", col, len(l.names)))
	}
	return l.values.AsInt32()[row*len(l.names)+col]
}

// Row returns a copy of one label row.
func (l *Labels) Row(row int) []int32 {
	out := make([]int32, len(l.names))
	data := l.values.AsInt32()
	copy(out, data[row*len(l.names):(row+1)*len(l.names)])
	return out
}

// Values returns the backing Int32 tensor of shape [count, size].
func (l *Labels) Values() *tensor.RawTensor {
	return l.values
}

// NamesEqual reports whether both tables have the same column names in the
// same order.
func (l *Labels) NamesEqual(other *Labels) bool {
	if len(l.names) != len(other.names) {
		return false
	}
	for i := range l.names {
		if l.names[i] != other.names[i] {
			return false
		}
	}
	return true
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
