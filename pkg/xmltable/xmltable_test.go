package xmltable

import (
	"errors"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/xmltab/internal/config"
	"github.com/oakwood-commons/xmltab/internal/detect"
	"github.com/oakwood-commons/xmltab/internal/engine"
	"github.com/oakwood-commons/xmltab/internal/export"
	"github.com/oakwood-commons/xmltab/pkg/xmldoc"
)

const singleBL = `<Report>
  <Shipment>
    <TrnspCtrId>BL1</TrnspCtrId>
    <ErrTxtDoc><TxtEN>resolved</TxtEN><AppErrInfDoc><CodeLstId>S</CodeLstId></AppErrInfDoc></ErrTxtDoc>
    <ErrTxtDoc><TxtEN>broken</TxtEN><AppErrInfDoc><CodeLstId>E</CodeLstId></AppErrInfDoc></ErrTxtDoc>
    <ErrTxtDoc><TxtEN>unknown</TxtEN></ErrTxtDoc>
  </Shipment>
</Report>`

const catalog = `<catalog>
  <book id="1"><title>Go</title><price>10</price></book>
  <book id="2"><title>XML</title><price>9.5</price></book>
</catalog>`

func newSession(t *testing.T) *Session {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)
	return NewSession(cfg, logr.Discard())
}

func TestParseRoundTripSingleGroup(t *testing.T) {
	s := newSession(t)
	res, err := s.Load("report.xml", singleBL)
	require.NoError(t, err)
	assert.Equal(t, 3, res.RecordCount)
	assert.Equal(t, "Report/Shipment/ErrTxtDoc", res.UsedPath)
	assert.Equal(t, detect.StrategyPreferred, res.Strategy)

	p := s.Engine.Project()
	require.True(t, p.Grouped)
	require.Len(t, p.Groups, 1)
	assert.Equal(t, "BL1", p.Groups[0].Key)
	assert.Len(t, p.Groups[0].Rows, 2)
	assert.Equal(t, "Selected BLs: 1", p.Summary.String())

	assert.Equal(t, "Loaded 3 records.", s.Status())
	assert.Equal(t, "Record path: Report/Shipment/ErrTxtDoc", s.RecordPath())
	assert.Equal(t, "Rows: 2 (filtered from 3) | Columns: 2 | File: report.xml", s.Meta())
	assert.False(t, s.Failed())
}

func TestParseSimpleViewColumns(t *testing.T) {
	res, err := Parse(singleBL, Options{SimpleView: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"BL", "ErrorMessage"}, res.Columns)

	res, err = Parse(singleBL, Options{})
	require.NoError(t, err)
	assert.Equal(t, "BL", res.Columns[0])
	assert.Equal(t, []string{"BL", "ErrorMessage", "TxtEN", "AppErrInfDoc.CodeLstId"}, res.Columns)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		tag      string
		typ      ErrorType
		sentinel error
		message  string
		path     string
	}{
		{"empty input", "", "", ErrorMissingXML, ErrMissingInput, MessageMissingXML, ""},
		{"malformed", "<a><b></a>", "", ErrorInvalidXML, ErrInvalidDocument, MessageInvalidXML, ""},
		{"whitespace only", "   \n", "", ErrorInvalidXML, ErrInvalidDocument, MessageInvalidXML, ""},
		{"unknown tag", "<root><item/></root>", "Missing", ErrorNoRecords, ErrNoRecords, MessageNoRecords, "Missing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Parse(tt.text, Options{RecordTag: tt.tag})
			require.Error(t, err)
			assert.Nil(t, res)

			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.typ, pe.Type)
			assert.Equal(t, tt.message, pe.Message)
			assert.Equal(t, tt.path, pe.UsedPath)
			assert.ErrorIs(t, err, tt.sentinel)
		})
	}
}

func TestParseInvalidUnwrapsSyntaxError(t *testing.T) {
	_, err := Parse("<a><b></a>", Options{})
	var se *xmldoc.SyntaxError
	assert.True(t, errors.As(err, &se))
}

func TestParseExplicitTagIsCaseInsensitive(t *testing.T) {
	res, err := Parse(catalog, Options{RecordTag: "  BOOK "})
	require.NoError(t, err)
	assert.Equal(t, "BOOK", res.UsedPath)
	assert.Equal(t, 2, res.RecordCount)
	assert.Equal(t, "9.5", res.Rows[1].Get("price"))
	assert.Equal(t, "2", res.Rows[1].Get("@id"))
}

func TestParseWithCustomProfile(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Records.PreferredTags = []string{"book"}
	cfg.Columns.Priority = []string{"title"}

	res, err := Parse(catalog, Options{Profile: &cfg, SimpleView: true})
	require.NoError(t, err)
	assert.Equal(t, detect.StrategyPreferred, res.Strategy)
	assert.Equal(t, []string{"title"}, res.Columns)
}

func TestSessionNoRecordsClearsPriorDataset(t *testing.T) {
	s := newSession(t)
	_, err := s.Load("report.xml", singleBL)
	require.NoError(t, err)
	require.True(t, s.Engine.HasData())

	s.RecordTag = "Nothing"
	_, err = s.Load("other.xml", "<root><item/></root>")
	require.ErrorIs(t, err, ErrNoRecords)
	assert.False(t, s.Engine.HasData())
	assert.Empty(t, s.Engine.Columns())
	assert.Equal(t, MessageNoRecords, s.Status())
	assert.Equal(t, "", s.RecordPath())
	assert.True(t, s.Failed())
}

func TestSessionInvalidXMLKeepsPriorDataset(t *testing.T) {
	s := newSession(t)
	_, err := s.Load("report.xml", singleBL)
	require.NoError(t, err)
	s.Engine.SetSort("ErrorMessage", engine.Desc)

	_, err = s.Load("bad.xml", "<broken")
	require.ErrorIs(t, err, ErrInvalidDocument)
	assert.True(t, s.Engine.HasData())
	assert.Equal(t, "ErrorMessage", s.Engine.Sort().Column)
	assert.Equal(t, MessageInvalidXML, s.Status())
	assert.Equal(t, "report.xml", s.FileName())

	_, err = s.Load("", "")
	require.ErrorIs(t, err, ErrMissingInput)
	assert.True(t, s.Engine.HasData())
	assert.Equal(t, MessageMissingXML, s.Status())
}

func TestSessionExportsVisibleRows(t *testing.T) {
	s := newSession(t)
	_, err := s.Load("report.xml", singleBL)
	require.NoError(t, err)

	csv := export.CSV(s.Engine.Columns(), s.Engine.VisibleRows())
	assert.Equal(t, "BL,ErrorMessage\nBL1,broken\nBL1,unknown", csv)
}
