// Package ui renders live progress of `quill check` in the terminal.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"quill/internal/pipeline"
)

const statusWidth = 10

type progressModel struct {
	title      string
	events     <-chan pipeline.Event
	spinner    spinner.Model
	prog       progress.Model
	items      []fileItem
	index      map[string]int
	stageLabel string
	failures   int
	width      int
	done       bool
}

type fileItem struct {
	path   string
	status string
	stage  pipeline.Stage
	done   bool
}

type eventMsg pipeline.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that lists files and their
// current stage while a check run feeds events. The model quits once
// events is closed.
func NewProgressModel(title string, files []string, events <-chan pipeline.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	items := make([]fileItem, 0, len(files))
	index := make(map[string]int, len(files))
	for i, file := range files {
		items = append(items, fileItem{path: file, status: "queued"})
		index[file] = i
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		items:   items,
		index:   index,
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(pipeline.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = max(10, msg.Width-4)
		}
		return m, nil
	case tea.KeyMsg:
		// прерывание не отменяет проверку, только закрывает экран
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m, nil
	case progress.FrameMsg:
		model, cmd := m.prog.Update(msg)
		m.prog = model.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := m.title
	if m.stageLabel != "" {
		header = fmt.Sprintf("%s (%s)", header, m.stageLabel)
	}
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	nameWidth := max(20, m.width-statusWidth-4)
	for _, item := range m.items {
		status := styleStatus(item.status).Render(fmt.Sprintf("%*s", statusWidth, item.status))
		fmt.Fprintf(&b, "  %s %s\n", status, truncate(item.path, nameWidth))
	}
	if m.failures > 0 {
		fmt.Fprintf(&b, "\n%s\n", styleStatus("error").Render(fmt.Sprintf("%d file(s) failed", m.failures)))
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev pipeline.Event) tea.Cmd {
	label := statusLabel(ev.Stage, ev.Status)
	if ev.File == "" {
		if label != "" {
			m.stageLabel = label
		}
		return nil
	}
	idx, ok := m.index[ev.File]
	if !ok {
		return nil
	}
	item := &m.items[idx]
	if item.done {
		return nil
	}
	if label != "" {
		item.status = label
		item.stage = ev.Stage
	}
	if ev.Status == pipeline.StatusDone || ev.Status == pipeline.StatusError {
		item.done = true
		if ev.Status == pipeline.StatusError {
			m.failures++
		}
	}
	return m.prog.SetPercent(m.percent())
}

func (m *progressModel) percent() float64 {
	if len(m.items) == 0 {
		return 0
	}
	total := 0.0
	for _, item := range m.items {
		if item.done {
			total++
			continue
		}
		total += progressFromStage(item.stage)
	}
	return total / float64(len(m.items))
}

func progressFromStage(stage pipeline.Stage) float64 {
	switch stage {
	case pipeline.StageLoad:
		return 0.3
	case pipeline.StageDiscover:
		return 0.4
	case pipeline.StageAnalyze:
		return 0.6
	case pipeline.StageChktex:
		return 0.8
	default:
		return 0
	}
}

func statusLabel(stage pipeline.Stage, status pipeline.Status) string {
	switch status {
	case pipeline.StatusQueued:
		return "queued"
	case pipeline.StatusDone:
		return "done"
	case pipeline.StatusError:
		return "error"
	case pipeline.StatusWorking:
		return stageLabel(stage)
	default:
		return ""
	}
}

func stageLabel(stage pipeline.Stage) string {
	switch stage {
	case pipeline.StageLoad:
		return "loading"
	case pipeline.StageDiscover:
		return "includes"
	case pipeline.StageAnalyze:
		return "analyzing"
	case pipeline.StageChktex:
		return "linting"
	default:
		return ""
	}
}

func styleStatus(status string) lipgloss.Style {
	switch status {
	case "done":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case "error":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case "loading", "includes", "analyzing", "linting":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
