package rowbuild

import (
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/xmltab/internal/detect"
	"github.com/oakwood-commons/xmltab/pkg/record"
	"github.com/oakwood-commons/xmltab/pkg/xmldoc"
)

const report = `<Report>
  <Shipment>
    <TrnspCtrId>BL-100</TrnspCtrId>
    <AppErrInfHdr><CodeLstId>W</CodeLstId></AppErrInfHdr>
    <Errors>
      <ErrTxtDoc><TxtEN>first</TxtEN></ErrTxtDoc>
      <ErrTxtDoc><TxtPT>segundo</TxtPT><TxtEN>second</TxtEN><AppErrInfDoc><CodeLstId>E</CodeLstId></AppErrInfDoc></ErrTxtDoc>
    </Errors>
  </Shipment>
  <Shipment>
    <Errors>
      <ErrTxtDoc TrnspCtrId="BL-200"><TxtEN>third</TxtEN></ErrTxtDoc>
    </Errors>
  </Shipment>
</Report>`

func buildReport(t *testing.T) []*record.Row {
	t.Helper()
	doc, err := xmldoc.Parse(report)
	require.NoError(t, err)
	res, err := detect.Detect(doc, detect.Options{})
	require.NoError(t, err)
	b := New(DefaultFields(), logr.Discard())
	rows := b.Build(res.Elements)
	assert.Equal(t, 3, b.Stats().Rows)
	return rows
}

func TestBuildDerivesGroupKeyFromAncestors(t *testing.T) {
	rows := buildReport(t)
	require.Len(t, rows, 3)
	assert.Equal(t, "BL-100", rows[0].Get("BL"))
	assert.Equal(t, "BL-100", rows[1].Get("BL"))
}

func TestBuildAliasesGroupKeyFromOwnAttribute(t *testing.T) {
	rows := buildReport(t)
	assert.Equal(t, "BL-200", rows[2].Get("BL"))
	assert.Equal(t, "BL-200", rows[2].Get("@TrnspCtrId"))
}

func TestBuildMessageFallbackOrder(t *testing.T) {
	rows := buildReport(t)
	assert.Equal(t, "first", rows[0].Get("ErrorMessage"))
	assert.Equal(t, "segundo", rows[1].Get("ErrorMessage"))
}

func TestBuildCodeSetSearch(t *testing.T) {
	rows := buildReport(t)
	// Already present on the record: left untouched.
	assert.Equal(t, "E", rows[1].Get("AppErrInfDoc.CodeLstId"))
	// The search climbs to the shared Errors ancestor and finds the
	// document-level code of the sibling record before the header code.
	assert.Equal(t, "E", rows[0].Get("AppErrInfDoc.CodeLstId"))
}

func TestBuildCodeSetFromHeader(t *testing.T) {
	doc, err := xmldoc.Parse(`<Report>
  <AppErrInfHdr><CodeLstId>S</CodeLstId></AppErrInfHdr>
  <Rec><TxtEN>a</TxtEN></Rec>
  <Rec><TxtEN>b</TxtEN></Rec>
</Report>`)
	require.NoError(t, err)
	recs := doc.ElementsByName("Rec", false)
	rows := New(DefaultFields(), logr.Discard()).Build(recs)
	require.Len(t, rows, 2)
	assert.Equal(t, "S", rows[0].Get("AppErrInfDoc.CodeLstId"))
	assert.Equal(t, "S", rows[1].Get("AppErrInfDoc.CodeLstId"))
}

func TestBuildCodeSetAbsent(t *testing.T) {
	doc, err := xmldoc.Parse(`<Report><Rec><TxtEN>a</TxtEN></Rec><Rec/></Report>`)
	require.NoError(t, err)
	rows := New(DefaultFields(), logr.Discard()).Build(doc.Root().Children())
	assert.False(t, rows[0].Has("AppErrInfDoc.CodeLstId"))
}

func TestBuildCodeSetSkippedWhenHeaderKeyPresent(t *testing.T) {
	doc, err := xmldoc.Parse(`<R><Rec><AppErrInfHdr><CodeLstId>W</CodeLstId></AppErrInfHdr></Rec><AppErrInfDoc><CodeLstId>E</CodeLstId></AppErrInfDoc></R>`)
	require.NoError(t, err)
	row := New(DefaultFields(), logr.Discard()).BuildRow(doc.Root().Children()[0])
	assert.Equal(t, "W", row.Get("AppErrInfHdr.CodeLstId"))
	assert.False(t, row.Has("AppErrInfDoc.CodeLstId"))
}

func TestBuildKeepsExistingDerivedFields(t *testing.T) {
	doc, err := xmldoc.Parse(`<R><Rec><BL>own</BL><ErrorMessage>mine</ErrorMessage><TrnspCtrId>other</TrnspCtrId></Rec></R>`)
	require.NoError(t, err)
	row := New(DefaultFields(), logr.Logger{}).BuildRow(doc.Root().Children()[0])
	assert.Equal(t, "own", row.Get("BL"))
	assert.Equal(t, "mine", row.Get("ErrorMessage"))
}

func TestBuildMessageIsEmptyWhenNoSource(t *testing.T) {
	doc, err := xmldoc.Parse(`<Rec><Other>x</Other></Rec>`)
	require.NoError(t, err)
	row := New(DefaultFields(), logr.Discard()).BuildRow(doc.Root())
	assert.True(t, row.Has("ErrorMessage"))
	assert.Equal(t, "", row.Get("ErrorMessage"))
	assert.False(t, row.Has("BL"))
}

func TestFindKeyBySegment(t *testing.T) {
	doc, err := xmldoc.Parse(`<Rec><Box><trnspctrid>v</trnspctrid></Box></Rec>`)
	require.NoError(t, err)
	row := New(DefaultFields(), logr.Discard()).BuildRow(doc.Root())
	assert.Equal(t, "v", row.Get("BL"))
}

func TestBuildIgnoresChildAttributeForGroupKey(t *testing.T) {
	tests := map[string]struct {
		xml    string
		wantBL string
		hasBL  bool
	}{
		"ancestor element wins": {
			xml:    `<R><Hdr><TrnspCtrId>ANCESTOR</TrnspCtrId></Hdr><Rec><Ctr TrnspCtrId="INNER"/></Rec></R>`,
			wantBL: "ANCESTOR",
			hasBL:  true,
		},
		"no element to fall back to": {
			xml: `<R><Rec><Ctr TrnspCtrId="INNER"/></Rec></R>`,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			doc, err := xmldoc.Parse(tc.xml)
			require.NoError(t, err)
			rec := doc.Root().Children()[len(doc.Root().Children())-1]
			row := New(DefaultFields(), logr.Discard()).BuildRow(rec)
			assert.Equal(t, "INNER", row.Get("Ctr@TrnspCtrId"))
			assert.Equal(t, tc.hasBL, row.Has("BL"))
			assert.Equal(t, tc.wantBL, row.Get("BL"))
		})
	}
}
