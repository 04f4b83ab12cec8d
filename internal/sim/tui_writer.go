package sim

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"plantops-sim/internal/config"
	"plantops-sim/internal/lifecycle"
	"plantops-sim/internal/telemetry"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// logMsg carries a telemetry log line for the viewport.
type logMsg struct{ line string }

// eventMsg carries a lifecycle event log line.
type eventMsg struct{ line string }

// telemetryMsg carries a telemetry row for the live asset table.
type telemetryMsg struct{ telemetry.TelemetryRow }

type setInjectMsg struct{ fn func(string, string) }

const (
	fallbackFaultInput  = "MTR-001-CON,BEARING_WEAR"
	maxSectionHeightPct = 0.2
)

// TUIWriter renders telemetry using a bubbletea TUI.
type TUIWriter struct {
	program    teaProgram
	done       chan struct{}
	sendSignal atomic.Bool
}

// NewTUIWriter starts a bubbletea program and returns a TUIWriter.
func NewTUIWriter(cfg *config.SimulationConfig) *TUIWriter {
	w := &TUIWriter{done: make(chan struct{})}
	w.sendSignal.Store(true)
	m := newTUIModel(cfg)
	p := tea.NewProgram(m, tea.WithAltScreen())
	w.program = p
	go func() {
		_ = p.Start()
		close(w.done)
		if w.sendSignal.Load() {
			if proc, err := os.FindProcess(os.Getpid()); err == nil {
				_ = proc.Signal(os.Interrupt)
			}
		}
	}()
	return w
}

// Write implements TelemetryWriter.
func (w *TUIWriter) Write(row telemetry.TelemetryRow) error {
	line := fmt.Sprintf("%s[%s]%s %s%s%s %sload=%.1f%%%s %srpm=%d%s %stemp=%.2fC%s %svib=%.2fmm/s%s %sdeg=%.1f%s %s%s%s",
		colorGray, row.Timestamp.Format(time.RFC3339), colorReset,
		colorCyan, row.AssetID, colorReset,
		colorBlue, row.LoadPct, colorReset,
		colorMagenta, row.SpeedRPM, colorReset,
		colorYellow, row.TemperatureC, colorReset,
		colorGreen, row.VibrationMMS, colorReset,
		colorGray, row.Degradation, colorReset,
		statusColor(row.Status), row.Status, colorReset,
	)
	w.program.Send(logMsg{line: line})
	w.program.Send(telemetryMsg{row})
	return nil
}

// WriteBatch outputs multiple telemetry rows.
func (w *TUIWriter) WriteBatch(rows []telemetry.TelemetryRow) error {
	for _, r := range rows {
		_ = w.Write(r)
	}
	return nil
}

// WriteEvent implements EventWriter.
func (w *TUIWriter) WriteEvent(e telemetry.LifecycleEventRow) error {
	line := fmt.Sprintf("%s[%s]%s %sLIFECYCLE%s %s%s%s %s %s->%s",
		colorGray, e.Timestamp.Format(time.RFC3339), colorReset,
		colorMagenta, colorReset,
		colorCyan, e.AssetID, colorReset,
		e.EventType, e.FromState, e.ToState)
	if e.Fault != "" {
		line += fmt.Sprintf(" %sfault=%s%s", colorRed, e.Fault, colorReset)
	}
	w.program.Send(eventMsg{line: line})
	return nil
}

// WriteEvents outputs multiple lifecycle events.
func (w *TUIWriter) WriteEvents(rows []telemetry.LifecycleEventRow) error {
	for _, e := range rows {
		_ = w.WriteEvent(e)
	}
	return nil
}

// SetFaultInjector registers a callback to inject faults into assets.
func (w *TUIWriter) SetFaultInjector(fn func(assetID, fault string)) {
	w.program.Send(setInjectMsg{fn: fn})
}

// Close shuts down the TUI program and waits for cleanup.
func (w *TUIWriter) Close() error {
	w.sendSignal.Store(false)
	if w.program != nil {
		w.program.Send(tea.Quit())
	}
	if w.done != nil {
		<-w.done
	}
	return nil
}

type tuiModel struct {
	cfg          *config.SimulationConfig
	table        table.Model
	vp           viewport.Model
	eventVP      viewport.Model
	logs         []string
	eventLogs    []string
	latest       map[string]telemetry.TelemetryRow
	assetTypes   map[string]string
	inject       func(string, string)
	faultInput   textinput.Model
	faultDialog  bool
	lastAsset    string
	wrap         bool
	autoscroll   bool
	summary      bool
	help         bool
	showTable    bool
	header       string
	headerHeight int
	height       int
}

func newTUIModel(cfg *config.SimulationConfig) tuiModel {
	cols := []table.Column{
		{Title: "Asset", Width: 14},
		{Title: "Type", Width: 10},
		{Title: "Status", Width: 12},
		{Title: "Load%", Width: 6},
		{Title: "RPM", Width: 5},
		{Title: "Temp", Width: 7},
		{Title: "Vib", Width: 6},
		{Title: "Deg", Width: 6},
	}
	types := make(map[string]string, len(cfg.Assets))
	rows := make([]table.Row, 0, len(cfg.Assets))
	for _, a := range cfg.Assets {
		types[a.ID] = a.Type
		rows = append(rows, table.Row{a.ID, a.Type, "-", "-", "-", "-", "-", "-"})
	}
	t := table.New(table.WithColumns(cols), table.WithRows(rows), table.WithHeight(len(rows)+1))
	m := tuiModel{
		cfg:        cfg,
		table:      t,
		vp:         viewport.New(0, 0),
		eventVP:    viewport.New(0, 0),
		latest:     make(map[string]telemetry.TelemetryRow),
		assetTypes: types,
		autoscroll: true,
		showTable:  true,
	}
	return m
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		tableWidth := msg.Width
		if m.showTable {
			tableWidth = msg.Width / 2
		}
		m.table.SetWidth(tableWidth)
		m.vp.Width = msg.Width
		m.eventVP.Width = msg.Width
		m.height = msg.Height
		m.header = m.renderHeader()
		m.headerHeight = lipgloss.Height(m.header)
		m.updateViewportHeight()
		m.refreshViewport()
		m.refreshEvents()
	case tea.KeyMsg:
		if m.faultDialog {
			switch msg.Type {
			case tea.KeyEnter:
				id, fault, err := parseFaultInput(m.faultInput.Value())
				if err == nil && m.inject != nil {
					go m.inject(id, fault)
				}
				m.faultDialog = false
				m.updateViewportHeight()
			case tea.KeyEsc:
				m.faultDialog = false
				m.updateViewportHeight()
			default:
				var cmd tea.Cmd
				m.faultInput, cmd = m.faultInput.Update(msg)
				return m, cmd
			}
			return m, nil
		}
		if m.help {
			switch msg.String() {
			case "?", "h", "esc":
				m.help = false
				m.updateViewportHeight()
			}
			return m, nil
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "w":
			m.wrap = !m.wrap
			m.refreshViewport()
			m.header = m.renderHeader()
			m.headerHeight = lipgloss.Height(m.header)
			m.updateViewportHeight()
			return m, nil
		case "s":
			m.autoscroll = !m.autoscroll
			if m.autoscroll {
				m.vp.GotoBottom()
				m.eventVP.GotoBottom()
			}
			return m, nil
		case "f":
			m.faultInput = textinput.New()
			m.faultInput.Placeholder = "asset_id,fault"
			val := fallbackFaultInput
			if m.lastAsset != "" {
				val = fmt.Sprintf("%s,%s", m.lastAsset, lifecycle.FaultBearingWear)
			}
			m.faultInput.SetValue(val)
			m.faultInput.CursorEnd()
			m.faultInput.Focus()
			m.faultDialog = true
			m.updateViewportHeight()
			return m, nil
		case "a":
			m.showTable = !m.showTable
			width := m.vp.Width
			if m.showTable {
				m.table.SetWidth(width / 2)
			} else {
				m.table.SetWidth(width)
			}
			m.header = m.renderHeader()
			m.headerHeight = lipgloss.Height(m.header)
			m.updateViewportHeight()
			return m, nil
		case "t":
			m.summary = !m.summary
			m.updateViewportHeight()
			return m, nil
		case "h", "?":
			m.help = !m.help
			m.updateViewportHeight()
			return m, nil
		}
		if !m.autoscroll {
			switch msg.String() {
			case "j", "down":
				m.vp.LineDown(1)
				m.eventVP.LineDown(1)
			case "k", "up":
				m.vp.LineUp(1)
				m.eventVP.LineUp(1)
			case "pgdown", "ctrl+n":
				m.vp.LineDown(10)
				m.eventVP.LineDown(10)
			case "pgup", "ctrl+p":
				m.vp.LineUp(10)
				m.eventVP.LineUp(10)
			default:
				var cmd tea.Cmd
				m.vp, cmd = m.vp.Update(msg)
				m.eventVP, _ = m.eventVP.Update(msg)
				return m, cmd
			}
			return m, nil
		}
		return m, nil
	case logMsg:
		m.logs = append(m.logs, msg.line)
		if len(m.logs) > 1000 {
			m.logs = m.logs[len(m.logs)-1000:]
		}
		m.refreshViewport()
	case eventMsg:
		m.eventLogs = append(m.eventLogs, msg.line)
		if len(m.eventLogs) > 1000 {
			m.eventLogs = m.eventLogs[len(m.eventLogs)-1000:]
		}
		m.updateViewportHeight()
		m.refreshEvents()
		m.refreshViewport()
	case telemetryMsg:
		m.latest[msg.AssetID] = msg.TelemetryRow
		m.lastAsset = msg.AssetID
		m.table.SetRows(m.tableRows())
		m.header = m.renderHeader()
		m.headerHeight = lipgloss.Height(m.header)
	case setInjectMsg:
		m.inject = msg.fn
	}
	return m, nil
}

func (m *tuiModel) updateViewportHeight() {
	bottomHeight := lipgloss.Height(m.renderBottom())

	maxLines := m.maxSectionLines()
	eventLines := len(m.eventLogs)
	if eventLines == 0 {
		eventLines = 1
	}
	if eventLines > maxLines {
		eventLines = maxLines
	}
	m.eventVP.Height = eventLines

	eventHeight := 1 + m.eventVP.Height
	dialogHeight := 0
	if m.faultDialog {
		dialogHeight = 2
	}
	h := m.height - m.headerHeight - bottomHeight - eventHeight - dialogHeight - 4
	if h < 0 {
		h = 0
	}
	m.vp.Height = h
	if m.autoscroll {
		m.eventVP.GotoBottom()
		m.vp.GotoBottom()
	}
}

func (m *tuiModel) refreshViewport() {
	var lines []string
	for _, l := range m.logs {
		if m.wrap {
			lines = append(lines, wordwrap.String(l, m.vp.Width))
		} else {
			lines = append(lines, l)
		}
	}
	m.vp.SetContent(strings.Join(lines, "\n"))
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m *tuiModel) refreshEvents() {
	content := "none"
	if len(m.eventLogs) > 0 {
		content = strings.Join(m.eventLogs, "\n")
	}
	m.eventVP.SetContent(content)
	if m.autoscroll {
		m.eventVP.GotoBottom()
	}
}

func (m tuiModel) maxSectionLines() int {
	h := int(float64(m.height) * maxSectionHeightPct)
	if h < 1 {
		h = 1
	}
	return h
}

// tableRows renders the configured fleet first, then any assets seen only in
// telemetry (replayed logs may carry IDs outside the config).
func (m tuiModel) tableRows() []table.Row {
	seen := make(map[string]bool, len(m.cfg.Assets))
	rows := make([]table.Row, 0, len(m.cfg.Assets))
	for _, a := range m.cfg.Assets {
		seen[a.ID] = true
		rows = append(rows, m.assetRow(a.ID, a.Type))
	}
	var extra []string
	for id := range m.latest {
		if !seen[id] {
			extra = append(extra, id)
		}
	}
	sort.Strings(extra)
	for _, id := range extra {
		rows = append(rows, m.assetRow(id, "-"))
	}
	return rows
}

func (m tuiModel) assetRow(id, typ string) table.Row {
	r, ok := m.latest[id]
	if !ok {
		return table.Row{id, typ, "-", "-", "-", "-", "-", "-"}
	}
	return table.Row{
		id,
		typ,
		r.Status,
		fmt.Sprintf("%.1f", r.LoadPct),
		fmt.Sprintf("%d", r.SpeedRPM),
		fmt.Sprintf("%.2f", r.TemperatureC),
		fmt.Sprintf("%.2f", r.VibrationMMS),
		fmt.Sprintf("%.1f", r.Degradation),
	}
}

func (m tuiModel) View() string {
	if m.help {
		return m.renderHelp()
	}
	bottom := m.renderBottom()
	divider := strings.Repeat("─", m.vp.Width)
	sections := []string{
		m.header,
		divider,
		m.vp.View(),
		divider,
		"Lifecycle Events:",
		m.eventVP.View(),
	}
	if m.faultDialog {
		sections = append(sections, divider, m.renderFaultDialog())
	}
	sections = append(sections, divider, bottom)
	return strings.Join(sections, "\n")
}

func (m tuiModel) renderHeader() string {
	tableView := m.table.View()
	if !m.showTable {
		return m.renderStatusTree(m.vp.Width)
	}
	statusWidth := m.vp.Width/2 - 1
	status := m.renderStatusTree(statusWidth)
	sep := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render("│")
	return lipgloss.JoinHorizontal(lipgloss.Top, tableView, sep, status)
}

func (m tuiModel) statusCounts() map[string]int {
	counts := make(map[string]int, 4)
	for _, r := range m.latest {
		counts[r.Status]++
	}
	return counts
}

func (m tuiModel) renderStatusTree(width int) string {
	counts := m.statusCounts()
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Site %s\n", m.cfg.SiteID))
	order := []string{
		telemetry.StatusNormal,
		telemetry.StatusWarning,
		telemetry.StatusCritical,
		telemetry.StatusMaintenance,
	}
	for i, st := range order {
		prefix := "├─"
		if i == len(order)-1 {
			prefix = "└─"
		}
		line := fmt.Sprintf("%s %s%s%s %d", prefix, statusColor(st), st, colorReset, counts[st])
		if m.wrap && width > 0 {
			line = wordwrap.String(line, width)
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m tuiModel) renderSummary() string {
	counts := m.statusCounts()
	var tempSum, degSum float64
	worstID := ""
	worstDeg := -1.0
	for id, row := range m.latest {
		tempSum += row.TemperatureC
		degSum += row.Degradation
		if row.Degradation > worstDeg {
			worstDeg = row.Degradation
			worstID = id
		}
	}
	n := len(m.latest)
	avgTemp, avgDeg := 0.0, 0.0
	if n > 0 {
		avgTemp = tempSum / float64(n)
		avgDeg = degSum / float64(n)
	}
	summary := fmt.Sprintf("%sSUMMARY%s %sassets=%d%s %snormal=%d%s %swarn=%d%s %scrit=%d%s %smaint=%d%s %savg_temp=%.1fC%s %savg_deg=%.1f%s",
		colorBlue, colorReset,
		colorCyan, n, colorReset,
		colorGreen, counts[telemetry.StatusNormal], colorReset,
		colorYellow, counts[telemetry.StatusWarning], colorReset,
		colorRed, counts[telemetry.StatusCritical], colorReset,
		colorBlue, counts[telemetry.StatusMaintenance], colorReset,
		colorMagenta, avgTemp, colorReset,
		colorGray, avgDeg, colorReset)
	if worstID != "" {
		summary = fmt.Sprintf("%s %sworst=%s(%.1f)%s", summary, colorRed, worstID, worstDeg, colorReset)
	}
	return summary
}

func (m tuiModel) renderBottom() string {
	wrapColor := lipgloss.Color("9")
	if m.wrap {
		wrapColor = lipgloss.Color("10")
	}
	scrollColor := lipgloss.Color("10")
	if !m.autoscroll {
		scrollColor = lipgloss.Color("9")
	}
	summaryColor := lipgloss.Color("9")
	if m.summary {
		summaryColor = lipgloss.Color("10")
	}
	helpColor := lipgloss.Color("9")
	if m.help {
		helpColor = lipgloss.Color("10")
	}
	tableColor := lipgloss.Color("10")
	if !m.showTable {
		tableColor = lipgloss.Color("9")
	}
	wrapIndicator := lipgloss.NewStyle().Foreground(wrapColor).Render("●")
	scrollIndicator := lipgloss.NewStyle().Foreground(scrollColor).Render("●")
	summaryIndicator := lipgloss.NewStyle().Foreground(summaryColor).Render("●")
	helpIndicator := lipgloss.NewStyle().Foreground(helpColor).Render("●")
	tableIndicator := lipgloss.NewStyle().Foreground(tableColor).Render("●")
	line := fmt.Sprintf("Wrap %s | Scroll %s | Summary %s | Help %s | Assets %s", wrapIndicator, scrollIndicator, summaryIndicator, helpIndicator, tableIndicator)
	if m.summary {
		return fmt.Sprintf("%s\n%s", m.renderSummary(), line)
	}
	return line
}

func (m tuiModel) renderFaultDialog() string {
	return fmt.Sprintf("Inject Fault (asset_id,fault) - Enter to inject, Esc to cancel: %s", m.faultInput.View())
}

func (m tuiModel) renderHelp() string {
	lines := []string{
		"Key Bindings:",
		" q  quit",
		" w  toggle wrap for status panel",
		" s  toggle auto-scroll",
		" f  inject fault (asset_id,fault)",
		" a  toggle asset table",
		" t  toggle summary footer",
		" h/? toggle this help view",
		"",
		"Faults: BEARING_WEAR, COOLING_FAIL, LOOSE_FOOT, MULTI",
		"",
		"When auto-scroll is disabled:",
		" j/k or up/down    scroll one line",
		" pgdown/pgup       scroll a page",
	}
	return strings.Join(lines, "\n")
}

func parseFaultInput(val string) (string, string, error) {
	parts := strings.Split(val, ",")
	if len(parts) < 2 {
		return "", "", fmt.Errorf("expected asset_id,fault")
	}
	id := strings.TrimSpace(parts[0])
	if id == "" {
		return "", "", fmt.Errorf("asset id required")
	}
	fault := strings.ToUpper(strings.TrimSpace(parts[1]))
	switch fault {
	case lifecycle.FaultBearingWear, lifecycle.FaultCoolingFail, lifecycle.FaultLooseFoot, lifecycle.FaultMulti:
	default:
		return "", "", fmt.Errorf("unknown fault %q", fault)
	}
	return id, fault, nil
}
