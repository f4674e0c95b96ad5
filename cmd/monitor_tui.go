// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Nexcell Networks

package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/nexcell/towerwatch/pkg/bscp"
	"github.com/nexcell/towerwatch/pkg/transport"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Live dashboard of station telemetry and link health",
	Long: `Full-screen dashboard showing the latest metric values, station status,
link statistics and a rolling event log.

Metric values arrive via METRICS responses and EVENT_METRIC_REPORT frames;
the station decides what it streams. Status rows update from STATUS
responses. Press 'q' to quit.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, args []string) error {
	tr, connInfo, err := OpenTransport()
	if err != nil {
		return err
	}
	defer tr.Close()

	return runMonitorProgram(tr, connInfo)
}

//////////////////////////////////////////////////////////////
// Messages
//////////////////////////////////////////////////////////////

type monitorTickMsg time.Time

type linkDataMsg struct {
	msg              *bscp.Message
	feedErr          error
	validationErrors []bscp.ValidationError
}

type monitorSyncMsg struct {
	invalidBytes int
}

// Event log entry
type eventLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool
}

//////////////////////////////////////////////////////////////
// Model
//////////////////////////////////////////////////////////////

type monitorModel struct {
	connInfo string

	stats         *bscp.Statistics
	latestMetrics map[uint8]float32
	metricSeen    map[uint8]time.Time
	lastStatus    *bscp.StatusPayload
	statusSeen    time.Time

	metricsTable  table.Model
	eventLog      []eventLogEntry
	maxLogEntries int

	synchronized bool
	invalidBytes int
	width        int
	height       int
	quitting     bool
}

func initialMonitorModel(connInfo string) monitorModel {
	columns := []table.Column{
		{Title: "Metric", Width: 24},
		{Title: "Value", Width: 12},
		{Title: "Unit", Width: 8},
		{Title: "Age", Width: 6},
	}
	tbl := table.New(
		table.WithColumns(columns),
		table.WithHeight(12),
		table.WithFocused(false),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).Foreground(lipgloss.Color("12"))
	styles.Selected = lipgloss.NewStyle()
	tbl.SetStyles(styles)

	return monitorModel{
		connInfo:      connInfo,
		stats:         bscp.NewStatistics(),
		latestMetrics: make(map[uint8]float32),
		metricSeen:    make(map[uint8]time.Time),
		metricsTable:  tbl,
		eventLog:      make([]eventLogEntry, 0),
		maxLogEntries: 100,
		width:         80,
		height:        24,
	}
}

func (m monitorModel) Init() tea.Cmd {
	return tea.Batch(
		monitorTickCmd(),
		tea.EnterAltScreen,
	)
}

func monitorTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return monitorTickMsg(t)
	})
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case monitorTickMsg:
		m.stats.CalculateRates()
		m.refreshMetricsTable()
		return m, monitorTickCmd()

	case monitorSyncMsg:
		m.synchronized = true
		m.invalidBytes = msg.invalidBytes
		if msg.invalidBytes > 0 {
			m.addLogEntry(fmt.Sprintf("Synchronized after skipping %d invalid bytes", msg.invalidBytes), false)
		} else {
			m.addLogEntry("Synchronized", false)
		}

	case linkDataMsg:
		if msg.feedErr != nil {
			if m.synchronized {
				m.stats.Update(nil, msg.feedErr, nil)
				m.addLogEntry(fmt.Sprintf("FRAME ERROR: %v", msg.feedErr), true)
			}
		} else if msg.msg != nil {
			m.stats.Update(msg.msg, nil, msg.validationErrors)
			m.absorb(msg.msg)

			if len(msg.validationErrors) > 0 {
				msgType := bscp.FormatMessageType(msg.msg.Type)
				for _, err := range msg.validationErrors {
					m.addLogEntry(fmt.Sprintf("%s: %s", msgType, err.Message), true)
				}
			}
		}
	}

	return m, nil
}

func (m *monitorModel) addLogEntry(message string, isError bool) {
	m.eventLog = append(m.eventLog, eventLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	})
	if len(m.eventLog) > m.maxLogEntries {
		m.eventLog = m.eventLog[len(m.eventLog)-m.maxLogEntries:]
	}
}

// absorb folds a decoded message into the dashboard state.
func (m *monitorModel) absorb(msg *bscp.Message) {
	now := time.Now()

	switch msg.Type {
	case bscp.MsgMetricsResponse, bscp.MsgEventMetricReport:
		metrics, err := bscp.DecodeMetrics(msg.Payload)
		if err != nil {
			return
		}
		for _, metric := range metrics {
			m.latestMetrics[metric.Type] = metric.Value
			m.metricSeen[metric.Type] = now
		}
		m.refreshMetricsTable()

	case bscp.MsgStatusResponse:
		status, err := bscp.DecodeStatus(msg.Payload)
		if err != nil {
			return
		}
		m.lastStatus = status
		m.statusSeen = now

	case bscp.MsgEventAlert, bscp.MsgEventFault:
		detail := ""
		if len(msg.Payload) > 1 {
			detail = ": " + string(msg.Payload[1:])
		}
		m.addLogEntry(bscp.FormatMessageType(msg.Type)+detail, true)

	case bscp.MsgEventStateChange:
		m.addLogEntry("Station state change", false)
	}
}

func (m *monitorModel) refreshMetricsTable() {
	codes := make([]int, 0, len(m.latestMetrics))
	for code := range m.latestMetrics {
		codes = append(codes, int(code))
	}
	sort.Ints(codes)

	rows := make([]table.Row, 0, len(codes))
	for _, c := range codes {
		code := uint8(c)
		age := time.Since(m.metricSeen[code]).Round(time.Second)
		rows = append(rows, table.Row{
			bscp.MetricName(code),
			fmt.Sprintf("%.2f", m.latestMetrics[code]),
			bscp.MetricUnit(code),
			age.String(),
		})
	}
	m.metricsTable.SetRows(rows)
}

//////////////////////////////////////////////////////////////
// View
//////////////////////////////////////////////////////////////

func (m monitorModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	var s strings.Builder
	s.WriteString(titleStyle.Render("TOWERWATCH - STATION MONITOR"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("Connection: %s | Press 'q' to quit", m.connInfo)))
	s.WriteString("\n\n")

	// Sync status
	if !m.synchronized {
		s.WriteString(warningStyle.Render("⏳ Waiting for synchronization..."))
		s.WriteString("\n\n")
	}

	// Station status line
	if m.lastStatus != nil {
		statusText := fmt.Sprintf("%s  errors=%d warnings=%d  (as of %s)",
			bscp.StatusName(m.lastStatus.Status),
			m.lastStatus.Errors, m.lastStatus.Warnings,
			m.statusSeen.Format("15:04:05"))
		style := valueStyle
		if m.lastStatus.Status != bscp.StatusOK {
			style = warningStyle
		}
		s.WriteString(labelStyle.Render("Status: "))
		s.WriteString(style.Render(statusText))
		s.WriteString("\n\n")
	}

	// Link statistics
	m.stats.CalculateRates()
	var validPercent float64
	if m.stats.TotalFrames > 0 {
		validPercent = float64(m.stats.ValidFrames) * 100.0 / float64(m.stats.TotalFrames)
	}
	totalErrors := m.stats.CRCErrors + m.stats.DecodeErrors + m.stats.MalformedFrames + m.stats.AnomalousValues

	statsLine := fmt.Sprintf("%s %s   %s %s   %s %s   %s %s",
		labelStyle.Render("Frames:"), valueStyle.Render(fmt.Sprintf("%d", m.stats.TotalFrames)),
		labelStyle.Render("Valid:"), valueStyle.Render(fmt.Sprintf("%.1f%%", validPercent)),
		labelStyle.Render("Errors:"), errorStyle.Render(fmt.Sprintf("%d", totalErrors)),
		labelStyle.Render("Rate:"), valueStyle.Render(fmt.Sprintf("%.1f fps", m.stats.FrameRate)),
	)
	s.WriteString(boxStyle.Render(statsLine))
	s.WriteString("\n\n")

	// Metrics table
	s.WriteString(labelStyle.Render("Latest Metrics:"))
	s.WriteString("\n")
	if len(m.latestMetrics) == 0 {
		s.WriteString(headerStyle.Render("  (no metrics received yet)"))
		s.WriteString("\n")
	} else {
		s.WriteString(boxStyle.Render(m.metricsTable.View()))
		s.WriteString("\n")
	}
	s.WriteString("\n")

	// Event log
	s.WriteString(labelStyle.Render("Recent Events:"))
	s.WriteString("\n")

	logHeight := m.height - 24
	if logHeight < 5 {
		logHeight = 5
	}
	startIdx := len(m.eventLog) - logHeight
	if startIdx < 0 {
		startIdx = 0
	}

	logContent := strings.Builder{}
	if len(m.eventLog) == 0 {
		logContent.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for i := startIdx; i < len(m.eventLog); i++ {
			entry := m.eventLog[i]
			timestamp := entry.timestamp.Format("15:04:05.000")
			if entry.isError {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					errorStyle.Render("✗ "+entry.message),
				))
			} else {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					warningStyle.Render("ℹ "+entry.message),
				))
			}
		}
	}
	s.WriteString(boxStyle.Width(m.width - 4).Render(logContent.String()))

	return s.String()
}

//////////////////////////////////////////////////////////////
// Program Runner
//////////////////////////////////////////////////////////////

// runMonitorProgram drives the dashboard from a reader goroutine. Shared by
// the monitor command and linkstats --tui.
func runMonitorProgram(tr transport.Transport, connInfo string) error {
	parser := bscp.NewParser()
	synchronized := false
	invalidBytesBeforeSync := 0

	m := initialMonitorModel(connInfo)
	p := tea.NewProgram(m)

	done := make(chan struct{})
	defer close(done)

	// Reader goroutine
	go func() {
		buf := make([]byte, 4096)
		for {
			select {
			case <-done:
				return
			default:
			}

			n, err := tr.Recv(buf, recvTimeout)
			if err != nil {
				p.Send(linkDataMsg{feedErr: err})
				return
			}

			for i := 0; i < n; i++ {
				msg, feedErr := parser.FeedByte(buf[i])

				if feedErr != nil {
					if synchronized {
						p.Send(linkDataMsg{feedErr: feedErr})
					} else {
						invalidBytesBeforeSync++
					}
				} else if msg != nil {
					if !synchronized {
						synchronized = true
						p.Send(monitorSyncMsg{invalidBytes: invalidBytesBeforeSync})
					}
					p.Send(linkDataMsg{
						msg:              msg,
						validationErrors: bscp.ValidateMessage(msg),
					})
				}
			}
		}
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %v", err)
	}
	return nil
}
