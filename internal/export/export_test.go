package export

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/xmltab/pkg/record"
)

func sampleTable() Table {
	return Table{
		Title:   "report.xml",
		Columns: []string{"BL", "ErrorMessage"},
		Rows: []*record.Row{
			record.FromPairs("BL", "B1", "ErrorMessage", "He said, \"hi\"\n"),
			record.FromPairs("BL", "B2", "ErrorMessage", "plain", "Other", "ignored"),
			record.FromPairs("ErrorMessage", "no key"),
		},
	}
}

func TestEscapeCSV(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"", ""},
		{"a,b", `"a,b"`},
		{`say "x"`, `"say ""x"""`},
		{"line\nbreak", "\"line\nbreak\""},
		{"He said, \"hi\"\n", "\"He said, \"\"hi\"\"\n\""},
		{"tab\tand\rcr", "tab\tand\rcr"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapeCSV(tt.in))
		})
	}
}

func TestCSV(t *testing.T) {
	tbl := sampleTable()
	want := "BL,ErrorMessage\n" +
		"B1,\"He said, \"\"hi\"\"\n\"\n" +
		"B2,plain\n" +
		",no key"
	assert.Equal(t, want, CSV(tbl.Columns, tbl.Rows))
}

func TestCSVHeaderOnly(t *testing.T) {
	assert.Equal(t, "A,\"B,C\"", CSV([]string{"A", "B,C"}, nil))
}

func TestJSONKeepsColumnOrder(t *testing.T) {
	tbl := sampleTable()
	tbl.Rows = tbl.Rows[1:2]
	b, err := JSON(tbl)
	require.NoError(t, err)
	assert.Equal(t, "[\n  {\n    \"BL\": \"B2\",\n    \"ErrorMessage\": \"plain\"\n  }\n]\n", string(b))
}

func TestJSONEmpty(t *testing.T) {
	b, err := JSON(Table{Columns: []string{"A"}})
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(b))
}

func TestYAML(t *testing.T) {
	b, err := YAML(sampleTable())
	require.NoError(t, err)
	assert.Contains(t, string(b), "- BL: B1\n")
	assert.Contains(t, string(b), "|")

	var decoded []map[string]string
	require.NoError(t, yaml.Unmarshal(b, &decoded))
	require.Len(t, decoded, 3)
	assert.Equal(t, "He said, \"hi\"\n", decoded[0]["ErrorMessage"])
	assert.Equal(t, "", decoded[2]["BL"])
	assert.NotContains(t, decoded[1], "Other")
}

func TestTOML(t *testing.T) {
	b, err := TOML(sampleTable())
	require.NoError(t, err)
	assert.Contains(t, string(b), "[[rows]]")

	var doc tomlDocument
	require.NoError(t, toml.Unmarshal(b, &doc))
	assert.Equal(t, []string{"BL", "ErrorMessage"}, doc.Columns)
	require.Len(t, doc.Rows, 3)
	assert.Equal(t, "B2", doc.Rows[1]["BL"])
}

func TestMarkdown(t *testing.T) {
	rows := []*record.Row{record.FromPairs("BL", "B1", "ErrorMessage", "a | b\nc")}
	want := "| BL | ErrorMessage |\n" +
		"| --- | --- |\n" +
		"| B1 | a \\| b<br>c |\n"
	assert.Equal(t, want, Markdown([]string{"BL", "ErrorMessage"}, rows))
	assert.Equal(t, "", Markdown(nil, rows))
}

func TestHTML(t *testing.T) {
	tbl := Table{
		Title:   "r<1>.xml",
		Columns: []string{"BL", "ErrorMessage"},
		Rows:    []*record.Row{record.FromPairs("BL", "B1", "ErrorMessage", "<b>bold</b>")},
	}
	out := string(HTML(tbl))
	assert.Contains(t, out, "<title>r&lt;1&gt;.xml</title>")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "B1")
	assert.NotContains(t, out, "<b>bold</b>")
}

func TestParseFormat(t *testing.T) {
	for _, name := range Formats() {
		f, err := ParseFormat(name)
		require.NoError(t, err)
		assert.Equal(t, Format(name), f)
	}
	f, err := ParseFormat(" MD ")
	require.NoError(t, err)
	assert.Equal(t, FormatMarkdown, f)

	_, err = ParseFormat("xlsx")
	assert.ErrorContains(t, err, "unknown export format")
}

func TestEncodeAndWrite(t *testing.T) {
	tbl := sampleTable()
	for _, f := range []Format{FormatCSV, FormatJSON, FormatYAML, FormatTOML, FormatMarkdown, FormatHTML} {
		t.Run(string(f), func(t *testing.T) {
			want, err := Encode(f, tbl)
			require.NoError(t, err)
			require.NotEmpty(t, want)

			var buf bytes.Buffer
			require.NoError(t, Write(&buf, f, tbl))
			assert.Equal(t, want, buf.Bytes())
		})
	}
	_, err := Encode(Format("nope"), tbl)
	assert.Error(t, err)
}

func TestJSONIsValid(t *testing.T) {
	b, err := JSON(sampleTable())
	require.NoError(t, err)
	var decoded []map[string]string
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, "no key", decoded[2]["ErrorMessage"])
}

func TestFileName(t *testing.T) {
	tests := []struct {
		input string
		f     Format
		want  string
	}{
		{"report.xml", FormatCSV, "report.csv"},
		{"/tmp/dir/a.b.xml", FormatCSV, "a.b.csv"},
		{"noext", FormatJSON, "noext.json"},
		{".hidden", FormatCSV, ".hidden.csv"},
		{"", FormatCSV, "table.csv"},
		{"-", FormatMarkdown, "table.md"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, FileName(tt.input, tt.f))
		})
	}
}
