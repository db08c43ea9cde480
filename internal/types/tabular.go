package types

// Cell is a single column/value pair of a tabular row.
type Cell struct {
	Column string `json:"column"`
	Value  string `json:"value"`
}

// TabularRow is one row of tabular content, ordered by the table's header set.
type TabularRow []Cell

// Get returns the value stored under column and whether the column is present.
func (r TabularRow) Get(column string) (string, bool) {
	for _, c := range r {
		if c.Column == column {
			return c.Value, true
		}
	}
	return "", false
}

// Values returns the row's values in column order.
func (r TabularRow) Values() []string {
	values := make([]string, len(r))
	for i, c := range r {
		values[i] = c.Value
	}
	return values
}
