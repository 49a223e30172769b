package navigation

import "strings"

type Layout string

const (
	// LayoutRail is the desktop side rail.
	LayoutRail Layout = "rail"
	// LayoutDrawer is the mobile top bar that opens into a full drawer.
	LayoutDrawer Layout = "drawer"
)

func ParseLayout(s string) Layout {
	if strings.EqualFold(strings.TrimSpace(s), string(LayoutDrawer)) {
		return LayoutDrawer
	}
	return LayoutRail
}

type MenuState string

const (
	MenuCollapsed MenuState = "collapsed"
	MenuRail      MenuState = "rail"
	MenuExpanded  MenuState = "expanded"
)

// ExpandedPresenceLimit is how many faces an opened menu shows.
const ExpandedPresenceLimit = 17

// Metrics are the only things that differ between layouts.
type Metrics struct {
	ClosedWidth       int  `json:"closedWidth"`
	OpenedWidth       int  `json:"openedWidth"`
	PresenceRowHeight int  `json:"presenceRowHeight"`
	PresenceRowTall   int  `json:"presenceRowTall"`
	PresenceRowGrows  bool `json:"presenceRowGrows"`
}

var layoutMetrics = map[Layout]Metrics{
	LayoutRail:   {ClosedWidth: 56, OpenedWidth: 400, PresenceRowHeight: 56, PresenceRowTall: 112},
	LayoutDrawer: {PresenceRowHeight: 56, PresenceRowTall: 56, PresenceRowGrows: true},
}

func (l Layout) Metrics() Metrics {
	return layoutMetrics[l]
}

// Menu is the open/closed state of one navigation instance. Open and Close
// are idempotent; Toggle flips.
type Menu struct {
	layout Layout
	opened bool
}

func NewMenu(layout Layout, opened bool) *Menu {
	return &Menu{layout: layout, opened: opened}
}

func (m *Menu) Layout() Layout { return m.layout }

func (m *Menu) IsOpen() bool { return m.opened }

func (m *Menu) State() MenuState {
	switch {
	case m.opened:
		return MenuExpanded
	case m.layout == LayoutRail:
		return MenuRail
	default:
		return MenuCollapsed
	}
}

func (m *Menu) Toggle() MenuState {
	m.opened = !m.opened
	return m.State()
}

// Open reports whether the state changed.
func (m *Menu) Open() bool {
	changed := !m.opened
	m.opened = true
	return changed
}

func (m *Menu) Close() bool {
	changed := m.opened
	m.opened = false
	return changed
}

// Escape closes an open menu and is a no-op otherwise.
func (m *Menu) Escape() bool {
	if !m.opened {
		return false
	}
	return m.Close()
}

func (m *Menu) PresenceLimit() int {
	if m.opened {
		return ExpandedPresenceLimit
	}
	return 0
}

func (m *Menu) Width() int {
	metrics := m.layout.Metrics()
	if m.opened {
		return metrics.OpenedWidth
	}
	return metrics.ClosedWidth
}
