package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/holgraph/holgraph/pkg/depgraph"
)

// inspectCommand creates the inspect command: an interactive browser over
// the dependency graph.
func (c *CLI) inspectCommand() *cobra.Command {
	var reduce bool

	cmd := &cobra.Command{
		Use:   "inspect <src-root>",
		Short: "Browse the dependency graph interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd.Context(), args[0], reduce)
		},
	}

	cmd.Flags().BoolVar(&reduce, "reduce", false, "remove transitive dependency edges")

	return cmd
}

func (c *CLI) runInspect(ctx context.Context, root string, reduce bool) error {
	runner, err := c.newRunner(true)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := c.pipelineOptions(root)
	opts.Reduce = reduce

	spinner := newSpinnerWithContext(ctx, "Building graph...")
	spinner.Start()
	result, err := runner.Generate(ctx, opts)
	if err != nil {
		spinner.StopWithError("Graph generation failed")
		return err
	}
	spinner.Stop()

	model := newNodeListModel(result.Graph, reduce)
	_, err = tea.NewProgram(model, tea.WithContext(ctx)).Run()
	return err
}

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// nodeRow is one list entry, sorted by label for scanning.
type nodeRow struct {
	id    int
	label string
}

// NodeListModel is the bubbletea model for graph browsing. It shows the node
// list and, on selection, a detail pane with the node's dependencies and
// dependents.
type NodeListModel struct {
	graph   *depgraph.Graph
	reduced bool
	rows    []nodeRow

	cursor int
	offset int
	height int

	// detail is the selected node id, or -1 in list mode.
	detail int
}

// newNodeListModel builds the model with rows sorted by display label.
func newNodeListModel(g *depgraph.Graph, reduced bool) NodeListModel {
	rows := make([]nodeRow, 0, g.NodeCount())
	for _, n := range g.Nodes() {
		rows = append(rows, nodeRow{id: n.ID, label: g.Label(g.Path(n.ID))})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].label < rows[j].label })

	return NodeListModel{
		graph:   g,
		reduced: reduced,
		rows:    rows,
		height:  15,
		detail:  -1,
	}
}

func (m NodeListModel) Init() tea.Cmd {
	return nil
}

func (m NodeListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.detail >= 0 {
				m.detail = -1
				return m, nil
			}
			return m, tea.Quit
		case "up", "k":
			if m.detail < 0 && m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.detail < 0 && m.cursor < len(m.rows)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "enter":
			if m.detail < 0 && len(m.rows) > 0 {
				m.detail = m.rows[m.cursor].id
			}
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 6
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m NodeListModel) View() string {
	if m.detail >= 0 {
		return m.detailView()
	}
	return m.listView()
}

func (m NodeListModel) listView() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Dependency Graph"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ details  q quit"))
	b.WriteString("\n\n")

	end := m.offset + m.height
	if end > len(m.rows) {
		end = len(m.rows)
	}

	for i := m.offset; i < end; i++ {
		row := m.rows[i]
		node, _ := m.graph.Node(row.id)

		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}

		line := fmt.Sprintf("%s%-40s %s", cursor, row.label,
			listDimStyle.Render(fmt.Sprintf("%d deps · %d dependents",
				node.DependencyCount(), len(node.Dependents()))))

		if i == m.cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.rows))))

	return b.String()
}

func (m NodeListModel) detailView() string {
	node, ok := m.graph.Node(m.detail)
	if !ok {
		return "node not found"
	}
	path := m.graph.Path(node.ID)

	var b strings.Builder
	b.WriteString(StyleTitle.Render(m.graph.Label(path)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(path))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("esc back  q quit"))
	b.WriteString("\n\n")

	b.WriteString(StyleValue.Render("Dependencies"))
	b.WriteString("\n")
	if node.DependencyCount() == 0 {
		b.WriteString(listDimStyle.Render("  (none)"))
		b.WriteString("\n")
	}
	for _, dep := range node.Dependencies() {
		b.WriteString("  " + iconArrow + " " + m.graph.Label(m.graph.Path(dep)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	dependentsTitle := "Dependents"
	if m.reduced {
		// The dependents index reflects the graph before reduction.
		dependentsTitle = "Dependents (pre-reduction)"
	}
	b.WriteString(StyleValue.Render(dependentsTitle))
	b.WriteString("\n")
	if len(node.Dependents()) == 0 {
		b.WriteString(listDimStyle.Render("  (none)"))
		b.WriteString("\n")
	}
	for _, dep := range node.Dependents() {
		b.WriteString("  " + iconArrow + " " + m.graph.Label(m.graph.Path(dep)))
		b.WriteString("\n")
	}

	return b.String()
}
