package engine

// View is a read-only selection of rows of a ColumnStore, in table order.
// Views share the store; the row slice must not be modified.
type View struct {
	store *ColumnStore
	rows  []int32
}

// NewView selects the given rows of a store.
func NewView(cs *ColumnStore, rows []int32) View {
	return View{store: cs, rows: rows}
}

func (v View) Len() int { return len(v.rows) }

func (v View) Store() *ColumnStore { return v.store }

// Row returns the store row behind the i-th element of the view.
func (v View) Row(i int) int32 { return v.rows[i] }

// Rows exposes the selected row indices.
func (v View) Rows() []int32 { return v.rows }

// Value decodes a dimension of the i-th element.
func (v View) Value(f Field, i int) string {
	return v.store.Value(f, v.rows[i])
}

// IDs returns the record ids of the view in order.
func (v View) IDs() []int64 {
	out := make([]int64, len(v.rows))
	for i, r := range v.rows {
		out[i] = v.store.IDs[r]
	}
	return out
}
