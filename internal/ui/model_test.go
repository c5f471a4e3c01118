package ui

import (
	"errors"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/xmltab/internal/config"
	"github.com/oakwood-commons/xmltab/internal/engine"
	"github.com/oakwood-commons/xmltab/pkg/xmltable"
)

const twoShipments = `<Report>
  <Shipment>
    <TrnspCtrId>BL2</TrnspCtrId>
    <ErrTxtDoc><TxtEN>warned</TxtEN><AppErrInfDoc><CodeLstId>W</CodeLstId></AppErrInfDoc></ErrTxtDoc>
  </Shipment>
  <Shipment>
    <TrnspCtrId>BL1</TrnspCtrId>
    <ErrTxtDoc><TxtEN>resolved</TxtEN><AppErrInfDoc><CodeLstId>S</CodeLstId></AppErrInfDoc></ErrTxtDoc>
    <ErrTxtDoc><TxtEN>broken</TxtEN><AppErrInfDoc><CodeLstId>E</CodeLstId></AppErrInfDoc></ErrTxtDoc>
    <ErrTxtDoc><TxtEN>unknown</TxtEN></ErrTxtDoc>
  </Shipment>
</Report>`

type written struct {
	name string
	data string
}

func newSession(t *testing.T) *xmltable.Session {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)
	return xmltable.NewSession(cfg, logr.Discard())
}

func newTestModel(t *testing.T) (*Model, *[]written) {
	t.Helper()
	s := newSession(t)
	_, err := s.Load("report.xml", twoShipments)
	require.NoError(t, err)

	var files []written
	m := New(s, Options{
		NoColor: true,
		Width:   80,
		Height:  30,
		WriteFile: func(name string, data []byte) error {
			files = append(files, written{name, string(data)})
			return nil
		},
	})
	return m, &files
}

func TestInitialViewShowsCollapsedGroups(t *testing.T) {
	m, _ := newTestModel(t)
	assert.Equal(t, []string{
		"▸ BL: BL2 | 1 Message(s)",
		"▸ BL: BL1 | 2 Message(s)",
	}, m.Lines())

	out := m.Render()
	assert.Contains(t, out, "Rows: 3 (filtered from 4) | Columns: 2 | File: report.xml")
	assert.Contains(t, out, "Selected BLs: 2")
	assert.Contains(t, out, "Loaded 4 records.")
	assert.Contains(t, out, "Record path: Report/Shipment/ErrTxtDoc")
}

func TestGroupExpandCollapse(t *testing.T) {
	m, _ := newTestModel(t)

	ApplyKeys(m, []string{"<Enter>"})
	assert.Equal(t, []string{
		"▾ BL: BL2 | 1 Message(s)",
		"BL2 | warned",
		"▸ BL: BL1 | 2 Message(s)",
	}, m.Lines())
	assert.Equal(t, 0, m.table.Cursor(), "cursor stays on the toggled group")

	ApplyKeys(m, []string{"<Space>"})
	assert.Len(t, m.Lines(), 2)

	ApplyKeys(m, []string{"+"})
	assert.Len(t, m.Lines(), 5)
	ApplyKeys(m, []string{"-"})
	assert.Len(t, m.Lines(), 2)
}

func TestToggleFromDataRowUsesItsGroup(t *testing.T) {
	m, _ := newTestModel(t)
	ApplyKeys(m, []string{"+", "<Down>", "<Enter>"})
	assert.Equal(t, []string{
		"▸ BL: BL2 | 1 Message(s)",
		"▾ BL: BL1 | 2 Message(s)",
		"BL1 | broken",
		"BL1 | unknown",
	}, m.Lines())
}

func TestGroupDoneMarker(t *testing.T) {
	m, _ := newTestModel(t)
	ApplyKeys(m, []string{"<Down>", "d"})
	lines := m.Lines()
	assert.NotContains(t, lines[0], "✓")
	assert.Equal(t, "▸ BL: BL1 | 2 Message(s)  ✓", lines[1])
	assert.True(t, m.session.Engine.State().Done["BL1"])

	ApplyKeys(m, []string{"d"})
	assert.False(t, m.session.Engine.State().Done["BL1"])
}

func TestSortFocusedColumn(t *testing.T) {
	m, _ := newTestModel(t)
	eng := m.session.Engine

	ApplyKeys(m, []string{"s"})
	assert.Equal(t, engine.SortSpec{Column: "BL", Direction: engine.Asc}, eng.Sort())
	assert.Equal(t, "▸ BL: BL1 | 2 Message(s)", m.Lines()[0])

	ApplyKeys(m, []string{"s"})
	assert.Equal(t, engine.Desc, eng.Sort().Direction)
	assert.Equal(t, "▸ BL: BL2 | 1 Message(s)", m.Lines()[0])

	ApplyKeys(m, []string{"l", "s"})
	assert.Equal(t, engine.SortSpec{Column: "ErrorMessage", Direction: engine.Asc}, eng.Sort())
}

func TestColumnFocusStaysInRange(t *testing.T) {
	m, _ := newTestModel(t)
	ApplyKeys(m, []string{"h", "h"})
	assert.Equal(t, 0, m.col)
	ApplyKeys(m, []string{"l", "l", "l"})
	assert.Equal(t, 1, m.col)
}

func TestFilterPicker(t *testing.T) {
	m, _ := newTestModel(t)
	eng := m.session.Engine

	ApplyKeys(m, []string{"l", "f"})
	require.NotNil(t, m.picker)
	assert.Equal(t, "ErrorMessage", m.picker.column)
	assert.Equal(t, []string{"broken", "unknown", "warned"}, m.picker.values)

	ApplyKeys(m, []string{"<Down>", "<Space>"})
	out := m.Render()
	assert.Contains(t, out, "Filter ErrorMessage (1 selected)")
	assert.Contains(t, out, "[x] unknown")
	assert.Contains(t, out, "[ ] broken")
	assert.Equal(t, []string{"unknown"}, eng.Filter("ErrorMessage"))

	ApplyKeys(m, []string{"<Enter>"})
	assert.Nil(t, m.picker)
	assert.Equal(t, []string{"▸ BL: BL1 | 1 Message(s)"}, m.Lines())
	assert.Contains(t, m.Render(), "Filters: 1")

	ApplyKeys(m, []string{"f", "a", "<Esc>"})
	assert.Empty(t, eng.Filter("ErrorMessage"))
	assert.Len(t, m.Lines(), 2)
}

func TestClearFilters(t *testing.T) {
	m, _ := newTestModel(t)
	ApplyKeys(m, []string{"f", "<Space>", "<Enter>"})
	require.Equal(t, 1, m.session.Engine.ActiveFilters())

	ApplyKeys(m, []string{"F"})
	assert.Zero(t, m.session.Engine.ActiveFilters())
	assert.Contains(t, m.Render(), "Filters cleared.")
}

func TestViewToggles(t *testing.T) {
	m, _ := newTestModel(t)
	eng := m.session.Engine

	ApplyKeys(m, []string{"g"})
	assert.Equal(t, []string{"BL2 | warned", "BL1 | broken", "BL1 | unknown"}, m.Lines())
	assert.Contains(t, m.Render(), "Grouping: off")

	ApplyKeys(m, []string{"r"})
	assert.Len(t, m.Lines(), 4)
	assert.Contains(t, m.Render(), "Showing resolved")

	ApplyKeys(m, []string{"l", "v"})
	assert.False(t, eng.State().SimpleView)
	assert.Equal(t, []string{"BL", "ErrorMessage", "TxtEN", "AppErrInfDoc.CodeLstId"}, eng.Columns())
	assert.Equal(t, 0, m.col, "focus resets when the columns change")
	assert.Contains(t, m.Render(), "All columns")
}

func TestSearch(t *testing.T) {
	m, _ := newTestModel(t)
	ApplyKeys(m, []string{"g", "/", "broken", "<Enter>"})
	assert.False(t, m.searching)
	assert.Equal(t, []string{"BL1 | broken"}, m.Lines())

	ApplyKeys(m, []string{"<Esc>"})
	assert.Len(t, m.Lines(), 3)

	ApplyKeys(m, []string{"/", "BL2", "<Esc>"})
	assert.False(t, m.searching)
	assert.Len(t, m.Lines(), 3, "escape while typing drops the search")
}

func TestSearchKeepsMatchingGroups(t *testing.T) {
	m, _ := newTestModel(t)
	ApplyKeys(m, []string{"/", "warned", "<Enter>"})
	assert.Equal(t, []string{"▸ BL: BL2 | 1 Message(s)"}, m.Lines())
}

func TestExportCSV(t *testing.T) {
	m, files := newTestModel(t)
	ApplyKeys(m, []string{"x"})
	require.Len(t, *files, 1)
	assert.Equal(t, "report.csv", (*files)[0].name)
	assert.Equal(t, "BL,ErrorMessage\nBL2,warned\nBL1,broken\nBL1,unknown", (*files)[0].data)
	assert.Equal(t, "Saved 3 rows to report.csv", m.status)
	assert.False(t, m.statusErr)
}

func TestExportCSVErrors(t *testing.T) {
	t.Run("no data", func(t *testing.T) {
		called := false
		m := New(newSession(t), Options{NoColor: true, WriteFile: func(string, []byte) error {
			called = true
			return nil
		}})
		ApplyKeys(m, []string{"x"})
		assert.False(t, called)
		assert.Equal(t, "Nothing to export.", m.status)
		assert.Contains(t, m.Render(), "No data.")
	})

	t.Run("write failure", func(t *testing.T) {
		s := newSession(t)
		_, err := s.Load("in.xml", twoShipments)
		require.NoError(t, err)
		m := New(s, Options{NoColor: true, ExportDir: "out", WriteFile: func(name string, _ []byte) error {
			assert.Equal(t, "out/in.csv", name)
			return errors.New("disk full")
		}})
		ApplyKeys(m, []string{"x"})
		assert.Equal(t, "Export failed: disk full", m.status)
		assert.True(t, m.statusErr)
	})
}

func TestCopySelection(t *testing.T) {
	var copied []string
	restore := StubClipboard(func(s string) error {
		copied = append(copied, s)
		return nil
	})
	defer restore()

	m, _ := newTestModel(t)
	ApplyKeys(m, []string{"<Down>", "y"})
	require.Len(t, copied, 1)
	assert.Equal(t, "BL,ErrorMessage\nBL1,broken\nBL1,unknown", copied[0])
	assert.Equal(t, "Copied 2 rows.", m.status)

	ApplyKeys(m, []string{"<Enter>", "<Down>", "y"})
	require.Len(t, copied, 2)
	assert.Equal(t, "BL,ErrorMessage\nBL1,broken", copied[1])
}

func TestHelpToggle(t *testing.T) {
	m, _ := newTestModel(t)
	ApplyKeys(m, []string{"?"})
	assert.Contains(t, m.Render(), "export visible rows to CSV")

	ApplyKeys(m, []string{"s"})
	assert.False(t, m.showHelp)
	assert.Empty(t, m.session.Engine.Sort().Column, "the key only closes help")
}

func TestQuitAndResize(t *testing.T) {
	m, _ := newTestModel(t)

	_, cmd := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Nil(t, cmd)
	assert.Equal(t, 120, m.width)

	_, cmd = m.Update(tea.KeyPressMsg{Code: 'q', Text: "q"})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	v := m.View()
	assert.True(t, v.AltScreen)
}

func TestSnapshot(t *testing.T) {
	s := newSession(t)
	_, err := s.Load("report.xml", twoShipments)
	require.NoError(t, err)

	out := Snapshot(s, Options{NoColor: true, Width: 80, Height: 20}, []string{"+"})
	assert.Contains(t, out, "warned")
	assert.Contains(t, out, "unknown")
	assert.NotContains(t, out, "resolved")
}

func TestKeyMsgs(t *testing.T) {
	msgs := KeyMsgs([]string{"<Down>ab<Enter>", `\<Esc>`, "<C-c>", "  ", "<Nope>"})
	require.Len(t, msgs, 4+5+1+6)
	assert.Equal(t, "down", msgs[0].String())
	assert.Equal(t, "a", msgs[1].String())
	assert.Equal(t, "enter", msgs[3].String())
	assert.Equal(t, "<", msgs[4].String(), "a backslash makes the token literal")
	assert.Equal(t, "ctrl+c", msgs[9].String())
	assert.Equal(t, "<", msgs[10].String())
}

func TestActionFor(t *testing.T) {
	tests := []struct {
		name     string
		bindings []Binding
		msg      tea.KeyPressMsg
		want     Action
	}{
		{"space toggles group", TableBindings, tea.KeyPressMsg{Code: tea.KeySpace, Text: " "}, ActionToggleGroup},
		{"shift letter", TableBindings, tea.KeyPressMsg{Code: 'G', Text: "G"}, ActionBottom},
		{"ctrl chord", TableBindings, tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl}, ActionQuit},
		{"picker toggle", PickerBindings, tea.KeyPressMsg{Code: 'x', Text: "x"}, ActionPickerToggle},
		{"unbound", TableBindings, tea.KeyPressMsg{Code: 'z', Text: "z"}, ActionNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ActionFor(tt.bindings, tt.msg))
		})
	}
}

func TestThemeFromConfig(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)
	th := ThemeFromConfig(cfg.Theme)
	assert.NotNil(t, th.HeaderFG)
	assert.NotNil(t, th.SelectedBG)
	assert.Nil(t, ThemeColor("  "))

	tc := th.TableColors()
	assert.Equal(t, th.GroupColor, tc.GroupColor)
}
