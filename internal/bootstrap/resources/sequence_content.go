package resources

import "sort"

// SequenceRow is one row of sequence data.
type SequenceRow struct {
	RowNumber int64 `json:"rowNumber" yaml:"rowNumber"`
	Values    []any `json:"values" yaml:"values"`
}

// SequenceContent holds the rows of the Sequence with the same external id. It is kept
// apart from the Sequence because rows and metadata are written by different calls.
type SequenceContent struct {
	SequenceExternalID string        `json:"externalId" yaml:"externalId"`
	Columns            []string      `json:"columns" yaml:"columns"`
	Rows               []SequenceRow `json:"rows" yaml:"rows"`
}

// NewSequenceContent builds content from row-oriented data.
func NewSequenceContent(sequenceExternalID string, columns []string, rows []SequenceRow) *SequenceContent {
	return &SequenceContent{
		SequenceExternalID: sequenceExternalID,
		Columns:            columns,
		Rows:               rows,
	}
}

// NewSequenceContentFromTable builds content from a dataframe-like table. Row numbers
// are assigned from the table position.
func NewSequenceContentFromTable(sequenceExternalID string, columns []string, table [][]any) *SequenceContent {
	rows := make([]SequenceRow, 0, len(table))
	for i, values := range table {
		rows = append(rows, SequenceRow{RowNumber: int64(i), Values: values})
	}
	return NewSequenceContent(sequenceExternalID, columns, rows)
}

func (c *SequenceContent) GetKind() Kind         { return KindSequenceContent }
func (c *SequenceContent) GetExternalID() string { return c.SequenceExternalID }
func (c *SequenceContent) sealed()               {}

// Table returns the rows ordered by row number together with their row numbers.
func (c *SequenceContent) Table() ([]int64, [][]any) {
	rows := make([]SequenceRow, len(c.Rows))
	copy(rows, c.Rows)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].RowNumber < rows[j].RowNumber
	})

	index := make([]int64, 0, len(rows))
	values := make([][]any, 0, len(rows))
	for _, r := range rows {
		index = append(index, r.RowNumber)
		values = append(values, r.Values)
	}
	return index, values
}
