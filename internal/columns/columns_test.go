package columns

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oakwood-commons/xmltab/pkg/record"
)

func rows() []*record.Row {
	return []*record.Row{
		record.FromPairs("Code", "1", "ErrTxtDoc.TxtPT", "pt", "ErrorMessage", "boom", "Empty", ""),
		record.FromPairs("Code", "2", "Extra", "x", "BL", "B1", "Empty", ""),
	}
}

func TestUnionFirstSeenOrder(t *testing.T) {
	assert.Equal(t,
		[]string{"Code", "ErrTxtDoc.TxtPT", "ErrorMessage", "Empty", "Extra", "BL"},
		Union(rows()))
}

func TestPlanFullView(t *testing.T) {
	got := Plan(rows(), false, DefaultPolicy())
	assert.Equal(t, []string{"BL", "ErrorMessage", "Code", "Extra"}, got)
}

func TestPlanSimpleView(t *testing.T) {
	got := Plan(rows(), true, DefaultPolicy())
	assert.Equal(t, []string{"BL", "ErrorMessage"}, got)
}

func TestPlanSimpleViewFallsBackWithoutPriorityColumns(t *testing.T) {
	rs := []*record.Row{record.FromPairs("A", "1", "B", "")}
	assert.Equal(t, []string{"A"}, Plan(rs, true, DefaultPolicy()))
}

func TestPlanSimpleViewPrunesEmptyPriorityColumn(t *testing.T) {
	rs := []*record.Row{record.FromPairs("BL", "", "ErrorMessage", "m", "X", "1")}
	assert.Equal(t, []string{"ErrorMessage"}, Plan(rs, true, DefaultPolicy()))
}

func TestPruneNeverEmptiesNonEmptyDataset(t *testing.T) {
	rs := []*record.Row{
		record.FromPairs("A", "", "B", ""),
		record.FromPairs("A", ""),
	}
	for _, simple := range []bool{true, false} {
		got := Plan(rs, simple, DefaultPolicy())
		assert.NotEmpty(t, got)
		assert.Equal(t, []string{"A", "B"}, got)
	}
}

func TestPrioritizeKeepsRemainderOrder(t *testing.T) {
	p := Policy{Priority: []string{"Z", "Y", "missing"}}
	assert.Equal(t, []string{"Z", "Y", "a", "b"}, Prioritize([]string{"a", "Y", "b", "Z"}, p))
}

func TestVisibleDropsHidden(t *testing.T) {
	p := Policy{Hidden: []string{"b"}}
	assert.Equal(t, []string{"a", "c"}, Visible([]string{"a", "b", "c"}, p))
}
