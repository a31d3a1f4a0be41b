// Package tui provides the interactive document map browser.
package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"docindex/internal/adapters/tui/styles"
	"docindex/internal/domain"
)

// BrowserKeyMap defines key bindings for the map browser
type BrowserKeyMap struct {
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding
	Enter key.Binding
	Copy  key.Binding
	Quit  key.Binding
}

var BrowserKeys = BrowserKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Left: key.NewBinding(
		key.WithKeys("h", "left"),
		key.WithHelp("h/←", "collapse"),
	),
	Right: key.NewBinding(
		key.WithKeys("l", "right"),
		key.WithHelp("l/→", "expand"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "toggle"),
	),
	Copy: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy path"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// BrowserModel is the model for the document map browser
type BrowserModel struct {
	root       string // documents root, for absolute path copying
	tree       *domain.MapNode
	flatNodes  []*domain.MapNode
	cursor     int
	width      int
	height     int
	message    string
	messageErr bool
}

// NewBrowser creates a browser over a prebuilt map tree.
func NewBrowser(root string, tree *domain.MapNode) *BrowserModel {
	for _, child := range tree.Children {
		child.Expand()
	}
	m := &BrowserModel{root: root, tree: tree}
	m.refreshFlatNodes()
	return m
}

// Init initializes the browser
func (m *BrowserModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the browser
func (m *BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		m.message = "" // Clear message on key press

		switch {
		case key.Matches(msg, BrowserKeys.Quit):
			return m, tea.Quit

		case key.Matches(msg, BrowserKeys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case key.Matches(msg, BrowserKeys.Down):
			if m.cursor < len(m.flatNodes)-1 {
				m.cursor++
			}
			return m, nil

		case key.Matches(msg, BrowserKeys.Left):
			if node := m.selectedNode(); node != nil {
				if node.IsExpanded && node.Kind != domain.NodeRoot {
					node.Collapse()
					m.refreshFlatNodes()
				} else if node.Parent != nil {
					for i, n := range m.flatNodes {
						if n == node.Parent {
							m.cursor = i
							break
						}
					}
				}
			}
			return m, nil

		case key.Matches(msg, BrowserKeys.Right), key.Matches(msg, BrowserKeys.Enter):
			if node := m.selectedNode(); node != nil && len(node.Children) > 0 {
				node.Toggle()
				m.refreshFlatNodes()
			}
			return m, nil

		case key.Matches(msg, BrowserKeys.Copy):
			if node := m.selectedNode(); node != nil && node.Path != "" {
				if err := clipboard.WriteAll(filepath.Join(m.root, node.Path)); err != nil {
					m.message = fmt.Sprintf("copy failed: %v", err)
					m.messageErr = true
				} else {
					m.message = "copied " + node.Path
				}
			}
			return m, nil
		}
	}
	return m, nil
}

// View renders the browser
func (m *BrowserModel) View() string {
	var sb strings.Builder
	sb.WriteString(styles.Title.Render("document map"))
	sb.WriteString("\n")

	visible := m.flatNodes
	if m.height > 4 && len(visible) > m.height-4 {
		start := 0
		if m.cursor > m.height-5 {
			start = m.cursor - (m.height - 5)
		}
		end := min(len(visible), start+m.height-4)
		visible = visible[start:end]
	}

	for _, node := range visible {
		sb.WriteString(m.renderNode(node))
		sb.WriteString("\n")
	}

	if m.message != "" {
		style := styles.StatusBar
		if m.messageErr {
			style = style.Foreground(styles.Error)
		}
		sb.WriteString(style.Render(m.message))
		sb.WriteString("\n")
	}
	sb.WriteString(styles.StatusBar.Render("j/k move · h/l fold · y copy path · q quit"))
	return styles.App.Render(sb.String())
}

func (m *BrowserModel) renderNode(node *domain.MapNode) string {
	indent := strings.Repeat("  ", node.Depth())

	indicator := styles.TreeLeaf
	if len(node.Children) > 0 {
		if node.IsExpanded {
			indicator = styles.TreeExpanded
		} else {
			indicator = styles.TreeCollapsed
		}
	}

	label := node.Name
	switch node.Kind {
	case domain.NodeCategory:
		label = styles.NodeCategory.Render(label)
	case domain.NodeDocument:
		label = styles.NodeDocument.Render(label)
		if !node.HasJSON {
			label += " " + styles.NoTwinBadge.Render("(no twin)")
		}
	}

	line := indent + indicator + label
	if node.Tokens.MD > 0 {
		line += " " + styles.TokenBadge.Render(fmt.Sprintf("[%d md / %d json]", node.Tokens.MD, node.Tokens.JSON))
	}

	if m.selectedNode() == node {
		return styles.NodeSelected.Render(line)
	}
	return line
}

func (m *BrowserModel) selectedNode() *domain.MapNode {
	if m.cursor < 0 || m.cursor >= len(m.flatNodes) {
		return nil
	}
	return m.flatNodes[m.cursor]
}

func (m *BrowserModel) refreshFlatNodes() {
	// The synthetic root is not shown; flatten its visible children.
	var nodes []*domain.MapNode
	for _, flattened := range m.tree.Flatten() {
		if flattened.Kind == domain.NodeRoot {
			continue
		}
		nodes = append(nodes, flattened)
	}
	m.flatNodes = nodes
	if m.cursor >= len(m.flatNodes) {
		m.cursor = len(m.flatNodes) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
