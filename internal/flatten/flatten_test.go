package flatten

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/xmltab/pkg/xmldoc"
)

func parseRoot(t *testing.T, text string) xmldoc.Node {
	t.Helper()
	doc, err := xmldoc.Parse(text)
	require.NoError(t, err)
	return doc.Root()
}

func TestFlattenPathsAndAttributes(t *testing.T) {
	root := parseRoot(t, `<Rec id="1"><Hdr kind="x"><Code>E</Code></Hdr><Msg>boom</Msg></Rec>`)
	row := Row(root)

	assert.Equal(t, []string{"@id", "Hdr@kind", "Hdr.Code", "Msg"}, row.Keys())
	assert.Equal(t, "1", row.Get("@id"))
	assert.Equal(t, "x", row.Get("Hdr@kind"))
	assert.Equal(t, "E", row.Get("Hdr.Code"))
	assert.Equal(t, "boom", row.Get("Msg"))
}

func TestFlattenRepeatedKeyAccumulation(t *testing.T) {
	root := parseRoot(t, `<Rec><P>a</P><P>b</P><P>c</P></Rec>`)
	rec := Flatten(root)

	v, ok := rec.Value("P")
	require.True(t, ok)
	assert.Equal(t, Multi, v.Kind)
	assert.Equal(t, []string{"a", "b", "c"}, v.Multi)
	assert.Equal(t, "a; b; c", rec.Normalize().Get("P"))
}

func TestAddScalarThenList(t *testing.T) {
	rec := NewRecord()
	rec.Add("k", "1")
	v, _ := rec.Value("k")
	assert.Equal(t, Scalar, v.Kind)
	assert.Equal(t, []string{"1"}, v.Strings())

	rec.Add("k", "2")
	v, _ = rec.Value("k")
	assert.Equal(t, Multi, v.Kind)
	assert.Equal(t, []string{"1", "2"}, v.Multi)
}

func TestFlattenLeafRootUsesOwnTag(t *testing.T) {
	root := parseRoot(t, `<Note>hello</Note>`)
	assert.Equal(t, "hello", Row(root).Get("Note"))
}

func TestFlattenMixedContent(t *testing.T) {
	root := parseRoot(t, `<Rec>lead<A>x</A>trail</Rec>`)
	row := Row(root)
	assert.Equal(t, "leadtrail", row.Get("_text"))

	nested := parseRoot(t, `<Rec><B>in<C>y</C></B></Rec>`)
	assert.Equal(t, "in", Row(nested).Get("B._text"))
}

func TestFlattenSkipsEmptyLeaves(t *testing.T) {
	root := parseRoot(t, `<Rec><Empty/><Blank>   </Blank><V>1</V></Rec>`)
	row := Row(root)
	assert.False(t, row.Has("Empty"))
	assert.False(t, row.Has("Blank"))
	assert.Equal(t, []string{"V"}, row.Keys())
}

func TestFlattenShapeIsValueIndependent(t *testing.T) {
	a := parseRoot(t, `<R x="1"><A>one</A><B><C>two</C></B></R>`)
	b := parseRoot(t, `<R x="9"><A>uno</A><B><C>dos</C></B></R>`)
	assert.Equal(t, Flatten(a).Keys(), Flatten(b).Keys())
}

func TestFlattenNamespacedNames(t *testing.T) {
	root := parseRoot(t, `<p:Rec xmlns:p="urn:p"><p:Item p:attr="v">t</p:Item></p:Rec>`)
	row := Row(root)
	assert.Equal(t, "v", row.Get("Item@attr"))
	assert.Equal(t, "t", row.Get("Item"))
}
