package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	pio "github.com/matzehuels/neuronpath/pkg/io"
	"github.com/matzehuels/neuronpath/pkg/pipeline"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// PathListModel - Interactive path selection
// =============================================================================

// pathRow is the summary shown for one path.
type pathRow struct {
	name    string
	nodes   int
	edges   int
	linkers int
}

// PathListModel is the bubbletea model for interactive path selection.
type PathListModel struct {
	rows     []pathRow
	Cursor   int
	Selected string
	Height   int
	Offset   int
}

// NewPathListModel creates a new path list model.
func NewPathListModel(ps *pio.PathSet) PathListModel {
	rows := make([]pathRow, len(ps.Paths))
	for i, p := range ps.Paths {
		g, _ := pipeline.DistinctGraph(p)
		rows[i] = pathRow{name: p.Name, nodes: len(g.Nodes()), edges: len(p.Edges), linkers: len(p.Linkers)}
	}
	return PathListModel{rows: rows, Height: 15}
}

func (m PathListModel) Init() tea.Cmd {
	return nil
}

func (m PathListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.rows)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.rows) == 0 {
				return m, nil
			}
			m.Selected = m.rows[m.Cursor].name
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

func (m PathListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Path"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.rows))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		r := m.rows[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		linkers := "—"
		if r.linkers > 0 {
			linkers = fmt.Sprint(r.linkers)
		}
		rows = append(rows, []string{cursor, r.name, fmt.Sprint(r.nodes), fmt.Sprint(r.edges), linkers})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Path", "Nodes", "Edges", "Linkers").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if m.Offset+row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			if col >= 2 {
				return lipgloss.NewStyle().Foreground(colorGray)
			}
			return StyleValue
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.rows))))

	return b.String()
}

// =============================================================================
// browse command
// =============================================================================

// browseCommand creates the browse command: pick a path interactively and
// show every form of it.
func (c *CLI) browseCommand() *cobra.Command {
	var in inputOpts

	cmd := &cobra.Command{
		Use:   "browse [paths.json]",
		Short: "Pick a path interactively and show its tree and chains",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ps, err := loadPathSet(cmd, args[0], in)
			if err != nil {
				return err
			}

			name := ""
			if len(ps.Paths) == 1 {
				name = ps.Paths[0].Name
			} else {
				final, err := tea.NewProgram(NewPathListModel(ps), tea.WithContext(cmd.Context())).Run()
				if err != nil {
					return fmt.Errorf("path picker: %w", err)
				}
				name = final.(PathListModel).Selected
			}
			if name == "" {
				return nil
			}
			p, _ := ps.Get(name)

			ctx := cmd.Context()
			runner, err := c.newRunner(ctx)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			opts := c.pipelineOptions()
			opts.Verify = true
			res, err := runner.Execute(ctx, p, opts)
			if err != nil {
				return err
			}
			return showResult(cmd, res)
		},
	}

	in.register(cmd)
	return cmd
}

// showResult prints every form of one pipeline result.
func showResult(cmd *cobra.Command, res *pipeline.Result) error {
	w := stdout(cmd)
	hit := res.CacheInfo.ExpandHit && res.CacheInfo.EncodeHit && res.CacheInfo.DecomposeHit

	printSuccess("%s", StyleTitle.Render(res.Name))
	printStats(res.Stats, hit)
	printKeyValue("Hash", res.GraphHash[:12])
	printKeyValue("Depth", fmt.Sprint(res.Stats.Depth))
	printNewline()

	fmt.Fprintln(w, StyleHighlight.Render("Tree"))
	fmt.Fprintln(w, res.Forest.String())
	fmt.Fprintln(w)
	fmt.Fprintln(w, StyleHighlight.Render("Encoded"))
	fmt.Fprintln(w, res.Encoded.String())
	fmt.Fprintln(w)
	fmt.Fprintln(w, StyleHighlight.Render("Chains"))
	_, err := fmt.Fprintln(w, chainTable(res.Decomposition))
	if err == nil {
		printNextStep("Draw it", fmt.Sprintf("%s render --path %s <file>", appName, res.Name))
	}
	return err
}
