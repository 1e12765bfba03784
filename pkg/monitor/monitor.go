// Package monitor is a full-screen live view of a running kernel. It drives
// the host cadence itself, one step per frame, and shows the population as a
// table next to the most recent engine events.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rainmanp7/holokernel-EBOGS/pkg/engine"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/host"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/render"
)

const (
	maxEvents     = 200
	eventRows     = 8
	minPeriod     = 5 * time.Millisecond
	maxPeriod     = 2 * time.Second
	eventChanSize = 256
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#000000")).
			Background(lipgloss.Color("#5FD7FF")).
			Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#4B5563")).
			Padding(0, 1)

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#9CA3AF"))

	pausedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F59E0B"))
	eventStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
)

// Options configures the monitor.
type Options struct {
	// Period is the wall-clock time between cadence steps.
	Period time.Duration

	// Title is shown in the header bar.
	Title string
}

type stepMsg time.Time

type eventMsg engine.Event

// Model is the bubbletea model of the monitor.
type Model struct {
	host   *host.Host
	events chan engine.Event
	cancel func()

	table    table.Model
	snap     engine.Snapshot
	report   engine.UpdateReport
	log      []string
	period   time.Duration
	title    string
	paused   bool
	panel    bool
	width    int
	height   int
	steps    int
	quitting bool
}

// NewModel creates a monitor over h and subscribes to its events. Close
// releases the subscription.
func NewModel(h *host.Host, opts Options) *Model {
	if opts.Period <= 0 {
		opts.Period = h.Config().Simulation.StepPeriod
	}
	if opts.Period < minPeriod {
		opts.Period = minPeriod
	}
	if opts.Title == "" {
		opts.Title = "holokernel monitor"
	}

	t := table.New(
		table.WithColumns(columns()),
		table.WithFocused(true),
		table.WithHeight(render.MaxRows),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#2563EB"))
	t.SetStyles(styles)

	m := &Model{
		host:   h,
		events: make(chan engine.Event, eventChanSize),
		table:  t,
		period: opts.Period,
		title:  opts.Title,
		width:  80,
		height: 24,
	}
	m.cancel = h.Subscribe(func(ev engine.Event) {
		select {
		case m.events <- ev:
		default:
		}
	})
	m.refresh()
	return m
}

// Close unsubscribes from the host.
func (m *Model) Close() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func columns() []table.Column {
	return []table.Column{
		{Title: "ID", Width: 6},
		{Title: "St", Width: 2},
		{Title: "Domain", Width: 8},
		{Title: "Age", Width: 6},
		{Title: "Int", Width: 5},
		{Title: "Conf", Width: 5},
		{Title: "Fit", Width: 5},
		{Title: "Path", Width: 6},
		{Title: "Align", Width: 6},
		{Title: "Genome", Width: 10},
	}
}

func rowFor(v engine.EntityView) table.Row {
	state := "D"
	if v.Active {
		state = "A"
	}
	path, align := "-", "-"
	if v.HasTask {
		path = fmt.Sprintf("0x%X", v.PathID)
		align = fmt.Sprintf("%.2f", v.TaskAlignment)
	}
	genome := fmt.Sprintf("%08X", v.Genome)
	if v.Mutant {
		genome += "*"
	}
	return table.Row{
		fmt.Sprintf("0x%X", v.ID),
		state,
		v.Domain,
		fmt.Sprint(v.Age),
		fmt.Sprint(v.Interactions),
		fmt.Sprintf("%.2f", v.Confidence),
		fmt.Sprint(v.Fitness),
		path,
		align,
		genome,
	}
}

func (m *Model) refresh() {
	m.snap = m.host.Snapshot()
	rows := make([]table.Row, 0, len(m.snap.Entities))
	for _, v := range m.snap.Entities {
		rows = append(rows, rowFor(v))
	}
	m.table.SetRows(rows)
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.period, func(t time.Time) tea.Msg {
		return stepMsg(t)
	})
}

func (m *Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return eventMsg(<-m.events)
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.tick(), m.waitForEvent())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		h := msg.Height - eventRows - 8
		if h < 3 {
			h = 3
		}
		m.table.SetHeight(h)
		return m, nil

	case stepMsg:
		if !m.paused {
			if r, ok := m.host.Step(); ok {
				m.report = r
			}
			m.steps++
			m.refresh()
		}
		return m, m.tick()

	case eventMsg:
		m.appendEvent(engine.Event(msg))
		return m, m.waitForEvent()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return tea.Quit, true
	case " ", "p":
		m.paused = !m.paused
	case "u":
		m.report = m.host.Update()
		m.refresh()
	case "s":
		m.host.Spawn(1)
		m.refresh()
	case "r":
		if _, err := m.host.Boot(); err != nil {
			m.appendLine("reset failed: " + err.Error())
		}
		m.report = engine.UpdateReport{}
		m.refresh()
	case "v":
		m.panel = !m.panel
	case "+", "=":
		m.period /= 2
		if m.period < minPeriod {
			m.period = minPeriod
		}
	case "-":
		m.period *= 2
		if m.period > maxPeriod {
			m.period = maxPeriod
		}
	default:
		return nil, false
	}
	return nil, true
}

func (m *Model) appendEvent(ev engine.Event) {
	text := ev.Message
	if text == "" {
		text = fmt.Sprintf("%s 0x%X", ev.Kind, ev.EntityID)
	}
	m.appendLine(fmt.Sprintf("%08X %s", ev.Tick, text))
}

func (m *Model) appendLine(line string) {
	m.log = append(m.log, line)
	if len(m.log) > maxEvents {
		m.log = m.log[len(m.log)-maxEvents:]
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	status := ""
	if m.paused {
		status = pausedStyle.Render(" PAUSED")
	}
	header := headerStyle.Width(m.width).Render(m.title + "  " + render.Header(m.snap) + status)

	var body string
	if m.panel {
		lines := render.NewPanel(&strings.Builder{}).Lines(m.snap)
		body = strings.Join(lines[1:], "\n")
	} else {
		body = m.table.View()
	}

	r := m.report
	summary := fmt.Sprintf("last pass @%08X: +%d -%d spawned %d refused %d rewarded %d collected %d",
		r.Tick, r.Activated, r.Deactivated, r.Spawned, r.Refused, r.Rewarded, len(r.Collected))

	start := len(m.log) - eventRows
	if start < 0 {
		start = 0
	}
	events := eventStyle.Render(strings.Join(m.log[start:], "\n"))

	footer := footerStyle.Width(m.width).Render(fmt.Sprintf(
		"q quit · space pause · u update · s spawn · r reset · v view · +/- speed (%v)", m.period))

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		paneStyle.Render(body),
		summary,
		paneStyle.Width(max(m.width-2, 20)).Render(events),
		footer,
	)
}

// Run shows the monitor on the terminal until the user quits or ctx ends.
func Run(ctx context.Context, h *host.Host, opts Options) error {
	m := NewModel(h, opts)
	defer m.Close()

	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
