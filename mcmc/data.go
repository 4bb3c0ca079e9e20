package mcmc

// Data is a fixed, immutable ordered collection of observation vectors, each
// of dimension m (Section 3). Every predicted observation must share
// dimension m; that invariant is checked where predictions are compared
// against Data, not here.
type Data struct {
	dim  int
	rows [][]float64
}

// NewData copies rows into a new Data set. Returns ErrDimensionMismatch if
// the rows do not share a common dimension.
func NewData(rows [][]float64) (Data, error) {
	if len(rows) == 0 {
		return Data{}, nil
	}

	dim := len(rows[0])
	copied := make([][]float64, len(rows))
	for i, r := range rows {
		if len(r) != dim {
			return Data{}, errDim("data row dimension", len(r), dim)
		}
		copied[i] = append([]float64(nil), r...)
	}
	return Data{dim: dim, rows: copied}, nil
}

// Size returns n, the number of observation rows.
func (d Data) Size() int { return len(d.rows) }

// Dim returns m, the dimension shared by every row.
func (d Data) Dim() int { return d.dim }

// Row returns a copy of the i-th observation vector.
func (d Data) Row(i int) []float64 {
	r := make([]float64, len(d.rows[i]))
	copy(r, d.rows[i])
	return r
}
