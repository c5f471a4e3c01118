package ui

import (
	"strings"

	tea "charm.land/bubbletea/v2"
)

// Action is what a key press does in the table view.
type Action string

const (
	ActionNone         Action = ""
	ActionUp           Action = "up"
	ActionDown         Action = "down"
	ActionPageUp       Action = "page_up"
	ActionPageDown     Action = "page_down"
	ActionTop          Action = "top"
	ActionBottom       Action = "bottom"
	ActionPrevColumn   Action = "prev_column"
	ActionNextColumn   Action = "next_column"
	ActionSort         Action = "sort"
	ActionFilter       Action = "filter"
	ActionClearFilters Action = "clear_filters"
	ActionToggleGroup  Action = "toggle_group"
	ActionToggleDone   Action = "toggle_done"
	ActionExpandAll    Action = "expand_all"
	ActionCollapseAll  Action = "collapse_all"
	ActionGrouping     Action = "grouping"
	ActionSimpleView   Action = "simple_view"
	ActionHideResolved Action = "hide_resolved"
	ActionExport       Action = "export"
	ActionCopy         Action = "copy"
	ActionSearch       Action = "search"
	ActionHelp         Action = "help"
	ActionBack         Action = "back"
	ActionQuit         Action = "quit"
	ActionPickerToggle Action = "picker_toggle"
	ActionPickerAll    Action = "picker_all"
	ActionPickerClose  Action = "picker_close"
)

// Binding maps keys to an action and describes it for the help panel.
type Binding struct {
	Keys   []string
	Action Action
	Help   string
}

// TableBindings are active while the table has focus.
var TableBindings = []Binding{
	{[]string{"up", "k"}, ActionUp, "move up"},
	{[]string{"down", "j"}, ActionDown, "move down"},
	{[]string{"pgup", "ctrl+b"}, ActionPageUp, "page up"},
	{[]string{"pgdown", "ctrl+f"}, ActionPageDown, "page down"},
	{[]string{"home"}, ActionTop, "first row"},
	{[]string{"end", "G"}, ActionBottom, "last row"},
	{[]string{"left", "h"}, ActionPrevColumn, "previous column"},
	{[]string{"right", "l"}, ActionNextColumn, "next column"},
	{[]string{"s"}, ActionSort, "sort by column (asc/desc)"},
	{[]string{"f"}, ActionFilter, "filter column values"},
	{[]string{"F"}, ActionClearFilters, "clear all filters"},
	{[]string{"enter", "space"}, ActionToggleGroup, "expand/collapse group"},
	{[]string{"d"}, ActionToggleDone, "mark group done"},
	{[]string{"+"}, ActionExpandAll, "expand all groups"},
	{[]string{"-"}, ActionCollapseAll, "collapse all groups"},
	{[]string{"g"}, ActionGrouping, "toggle grouping"},
	{[]string{"v"}, ActionSimpleView, "toggle simple view"},
	{[]string{"r"}, ActionHideResolved, "toggle hiding resolved rows"},
	{[]string{"x"}, ActionExport, "export visible rows to CSV"},
	{[]string{"y"}, ActionCopy, "copy row or group as CSV"},
	{[]string{"/"}, ActionSearch, "search rows"},
	{[]string{"?"}, ActionHelp, "toggle help"},
	{[]string{"esc"}, ActionBack, "clear search / close"},
	{[]string{"q", "ctrl+c"}, ActionQuit, "quit"},
}

// PickerBindings are active while the filter picker is open.
var PickerBindings = []Binding{
	{[]string{"up", "k"}, ActionUp, "move up"},
	{[]string{"down", "j"}, ActionDown, "move down"},
	{[]string{"space", "x"}, ActionPickerToggle, "toggle value"},
	{[]string{"a"}, ActionPickerAll, "all values"},
	{[]string{"enter", "esc", "f"}, ActionPickerClose, "close"},
	{[]string{"ctrl+c"}, ActionQuit, "quit"},
}

// keyName normalises a key press so a literal space matches "space".
func keyName(msg tea.KeyPressMsg) string {
	s := msg.String()
	if s == " " {
		return "space"
	}
	return s
}

// ActionFor returns the action bound to msg in bindings.
func ActionFor(bindings []Binding, msg tea.KeyPressMsg) Action {
	name := keyName(msg)
	for _, b := range bindings {
		for _, k := range b.Keys {
			if k == name {
				return b.Action
			}
		}
	}
	return ActionNone
}

// helpText lists bindings one per line.
func helpText(bindings []Binding, st styles) string {
	width := 0
	for _, b := range bindings {
		width = max(width, len(strings.Join(b.Keys, "/")))
	}
	lines := make([]string, 0, len(bindings))
	for _, b := range bindings {
		keys := strings.Join(b.Keys, "/")
		lines = append(lines, st.helpKey.Render(keys+strings.Repeat(" ", width-len(keys)))+"  "+st.helpValue.Render(b.Help))
	}
	return strings.Join(lines, "\n")
}
