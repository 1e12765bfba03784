package monitor

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rainmanp7/holokernel-EBOGS/pkg/config"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/engine"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/host"
)

func newTestModel(t *testing.T) (*Model, *host.Host) {
	t.Helper()
	cfg := config.Default()
	cfg.Simulation.UpdateInterval = 100
	cfg.Simulation.TicksPerStep = 50
	cfg.Simulation.ActiveSeeds = 0

	h := host.New(cfg)
	_, err := h.Boot()
	require.NoError(t, err)

	m := NewModel(h, Options{Period: 10 * time.Millisecond})
	t.Cleanup(m.Close)
	return m, h
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m *Model, msg tea.Msg) tea.Cmd {
	_, cmd := m.Update(msg)
	return cmd
}

func TestNewModel(t *testing.T) {
	m, _ := newTestModel(t)

	assert.Len(t, m.table.Rows(), 3)
	assert.Equal(t, "0x0", m.table.Rows()[0][0])
	assert.Equal(t, "0xA1", m.table.Rows()[0][7], "boot task path")
	assert.Equal(t, "-", m.table.Rows()[2][7])
}

func TestPeriodFloor(t *testing.T) {
	h := host.New(config.Default())
	m := NewModel(h, Options{Period: time.Nanosecond})
	defer m.Close()
	assert.Equal(t, minPeriod, m.period)
}

func TestStepAdvancesHost(t *testing.T) {
	m, h := newTestModel(t)
	tick := h.Snapshot().Tick

	for i := 0; i < 3; i++ {
		cmd := send(m, stepMsg(time.Now()))
		assert.NotNil(t, cmd, "step reschedules itself")
	}
	snap := h.Snapshot()
	assert.Equal(t, tick+150, snap.Tick)
	assert.Equal(t, uint64(1), snap.Updates)
	assert.Equal(t, 3, m.steps)
	assert.Equal(t, snap.Tick, m.snap.Tick)
}

func TestPause(t *testing.T) {
	m, h := newTestModel(t)
	tick := h.Snapshot().Tick

	send(m, key(" "))
	assert.True(t, m.paused)
	send(m, stepMsg(time.Now()))
	assert.Equal(t, tick, h.Snapshot().Tick)
	assert.Contains(t, ansi.Strip(m.View()), "PAUSED")

	send(m, key("p"))
	assert.False(t, m.paused)
}

func TestKeys(t *testing.T) {
	m, h := newTestModel(t)

	send(m, key("u"))
	assert.Equal(t, uint64(1), h.Snapshot().Updates)

	send(m, key("s"))
	assert.Equal(t, 4, h.Snapshot().Live)
	assert.Len(t, m.table.Rows(), 4)

	gen := h.Snapshot().Generation
	send(m, key("r"))
	assert.NotEqual(t, gen, h.Snapshot().Generation)
	assert.Len(t, m.table.Rows(), 3)

	p := m.period
	send(m, key("-"))
	assert.Equal(t, 2*p, m.period)
	send(m, key("+"))
	assert.Equal(t, p, m.period)
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t)

	cmd := send(m, key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestEventsAreLogged(t *testing.T) {
	m, h := newTestModel(t)

	h.Update()
	ev := <-m.events
	send(m, eventMsg(ev))
	require.NotEmpty(t, m.log)
	assert.Contains(t, m.log[0], ev.Message)

	send(m, eventMsg(engine.Event{Kind: engine.EventSeed, EntityID: 7, Tick: 1}))
	assert.Equal(t, "00000001 seed 0x7", m.log[len(m.log)-1])
}

func TestLogIsBounded(t *testing.T) {
	m, _ := newTestModel(t)
	for i := 0; i < maxEvents+10; i++ {
		m.appendLine("x")
	}
	assert.Len(t, m.log, maxEvents)
}

func TestViewModes(t *testing.T) {
	m, _ := newTestModel(t)
	send(m, tea.WindowSizeMsg{Width: 100, Height: 40})

	out := ansi.Strip(m.View())
	assert.Contains(t, out, "holokernel monitor")
	assert.Contains(t, out, "Domain")
	assert.Contains(t, out, "generic")

	send(m, key("v"))
	out = ansi.Strip(m.View())
	assert.Contains(t, out, "E:0 D generi I:00 C:5 F:0")
}
