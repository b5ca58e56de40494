package cli

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/gwmap/gwmap/pkg/resource"
)

// List styles
var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// gatewayItem is one selectable row in the gateway picker.
type gatewayItem struct {
	Namespace string
	Name      string
	Class     string
	Status    string
	Routes    int
}

// ref returns the namespace/name focus reference for the item.
func (g gatewayItem) ref() string {
	return g.Namespace + "/" + g.Name
}

// gatewayItems builds picker rows from a snapshot, sorted by namespace
// and name with attached route counts.
func gatewayItems(snap *resource.Snapshot) []gatewayItem {
	routeCounts := make(map[string]int)
	for _, rt := range snap.Routes {
		for _, ref := range rt.ParentRefs {
			ns := ref.Namespace
			if ns == "" {
				ns = rt.Namespace
			}
			routeCounts[ns+"/"+ref.Name]++
		}
	}

	items := make([]gatewayItem, 0, len(snap.Gateways))
	for _, gw := range snap.Gateways {
		items = append(items, gatewayItem{
			Namespace: gw.Namespace,
			Name:      gw.Name,
			Class:     gw.ClassName,
			Status:    gw.Status,
			Routes:    routeCounts[gw.Namespace+"/"+gw.Name],
		})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Namespace != items[j].Namespace {
			return items[i].Namespace < items[j].Namespace
		}
		return items[i].Name < items[j].Name
	})
	return items
}

// runGatewayPicker shows the interactive picker and returns the chosen
// gateway as a namespace/name reference, or "" if the user quit.
func runGatewayPicker(items []gatewayItem) (string, error) {
	model := NewGatewayListModel(items)
	p := tea.NewProgram(model)

	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("gateway picker: %w", err)
	}

	m, ok := final.(GatewayListModel)
	if !ok || m.Selected == nil {
		return "", nil
	}
	return m.Selected.ref(), nil
}

// =============================================================================
// GatewayListModel - Interactive gateway selection
// =============================================================================

// GatewayListModel is the bubbletea model for interactive gateway selection.
type GatewayListModel struct {
	Gateways []gatewayItem
	Cursor   int
	Selected *gatewayItem
	Height   int
	Offset   int
}

// NewGatewayListModel creates a new gateway list model.
func NewGatewayListModel(items []gatewayItem) GatewayListModel {
	return GatewayListModel{
		Gateways: items,
		Cursor:   0,
		Height:   15,
		Offset:   0,
	}
}

func (m GatewayListModel) Init() tea.Cmd {
	return nil
}

func (m GatewayListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Gateways)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			gw := m.Gateways[m.Cursor]
			m.Selected = &gw
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m GatewayListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Gateway"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Gateways) {
		end = len(m.Gateways)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		gw := m.Gateways[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		routes := fmt.Sprintf("%d", gw.Routes)
		if gw.Routes == 0 {
			routes = "none"
		}

		rows = append(rows, []string{cursor, gw.ref(), gw.Class, gw.Status, routes})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Gateway", "Class", "Status", "Routes").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}

			actualIdx := m.Offset + row
			if actualIdx >= len(m.Gateways) {
				return lipgloss.NewStyle()
			}
			gw := m.Gateways[actualIdx]
			isCurrent := actualIdx == m.Cursor

			base := lipgloss.NewStyle()
			if isCurrent {
				if gw.Routes > 0 {
					return base.Foreground(colorGreen).Bold(true)
				}
				return base.Foreground(colorDim).Bold(true)
			}
			if gw.Routes == 0 {
				return base.Foreground(colorDim)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Gateways))))

	return b.String()
}
