// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Johan Herland

package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jherland/nexactl/pkg/nexa"
)

//////////////////////////////////////////////////////////////
// Constants
//////////////////////////////////////////////////////////////

// Focus states
const (
	focusDeviceList = iota
	focusCommandInput
)

const watchMaxLogEntries = 100

//////////////////////////////////////////////////////////////
// Types
//////////////////////////////////////////////////////////////

// watchDevice is one device/channel heard on the air.
type watchDevice struct {
	version  nexa.Version
	deviceID uint32
	channel  uint8
	group    bool
	state    bool
	count    int
	lastSeen time.Time
}

// deviceKey identifies a device entry in the list.
type deviceKey struct {
	version  nexa.Version
	deviceID uint32
	channel  uint8
	group    bool
}

func (d watchDevice) key() deviceKey {
	return deviceKey{version: d.version, deviceID: d.deviceID, channel: d.channel, group: d.group}
}

// asCommand rebuilds the device's last command with the given state.
func (d watchDevice) asCommand(state bool) *nexa.Command {
	c := &nexa.Command{Version: d.version, Channel: d.channel, Group: d.group, State: state}
	c.SetDeviceID(d.deviceID)
	return c
}

// Implement list.Item interface
func (d watchDevice) Title() string {
	target := fmt.Sprintf("ch %X", d.channel)
	if d.group {
		target = "group"
	}
	if d.version == nexa.VersionLegacy12 {
		target = "legacy"
	}
	return fmt.Sprintf("Device %06X (%s)", d.deviceID, target)
}

func (d watchDevice) Description() string {
	state := "OFF"
	if d.state {
		state = "ON"
	}
	return fmt.Sprintf("%s, heard %d times, last %s", state, d.count, d.lastSeen.Format("15:04:05"))
}

func (d watchDevice) FilterValue() string { return fmt.Sprintf("%06X", d.deviceID) }

// Event log entry
type watchLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool
}

// watchModel is the Bubble Tea model for the watch TUI
type watchModel struct {
	connMgr  *watchConnManager
	connInfo string

	// Device tracking
	devices    map[deviceKey]*watchDevice
	deviceList list.Model

	// Monitoring
	stats         *nexa.Statistics
	prevStats     nexa.Statistics
	eventLog      []watchLogEntry
	maxLogEntries int

	// Control
	cmdInput     textinput.Model
	focusedField int
	sendFeedback string

	// UI state
	width          int
	height         int
	quitting       bool
	connectionLost bool
}

//////////////////////////////////////////////////////////////
// Messages
//////////////////////////////////////////////////////////////

type watchTickMsg time.Time

type watchBatchMsg struct {
	commands []*nexa.Command
	stats    *nexa.Statistics
}

type watchConnLostMsg struct{}

type watchReconnectedMsg struct {
	connInfo string
}

//////////////////////////////////////////////////////////////
// Model Initialization
//////////////////////////////////////////////////////////////

func initialWatchModel(connMgr *watchConnManager, connInfo string) watchModel {
	ti := textinput.New()
	ti.Placeholder = "2:ABCDEF:0:1:1"
	ti.CharLimit = 16
	ti.Width = 20

	delegate := list.NewDefaultDelegate()
	dl := list.New([]list.Item{}, delegate, 40, 10)
	dl.Title = "Devices"
	dl.SetShowStatusBar(false)
	dl.SetFilteringEnabled(false)
	dl.SetShowHelp(false)

	return watchModel{
		connMgr:       connMgr,
		connInfo:      connInfo,
		devices:       make(map[deviceKey]*watchDevice),
		deviceList:    dl,
		stats:         nexa.NewStatistics(),
		eventLog:      make([]watchLogEntry, 0),
		maxLogEntries: watchMaxLogEntries,
		cmdInput:      ti,
		focusedField:  focusDeviceList,
		width:         80,
		height:        24,
	}
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(
		watchTickCmd(),
		tea.EnterAltScreen,
	)
}

func watchTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return watchTickMsg(t)
	})
}

//////////////////////////////////////////////////////////////
// Update
//////////////////////////////////////////////////////////////

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "q":
			if m.focusedField == focusDeviceList {
				m.quitting = true
				return m, tea.Quit
			}

		case "tab":
			if m.focusedField == focusDeviceList {
				m.focusedField = focusCommandInput
				m.cmdInput.Focus()
			} else {
				m.focusedField = focusDeviceList
				m.cmdInput.Blur()
			}
			return m, nil

		case "enter":
			if m.focusedField == focusDeviceList {
				// Pre-fill the command field with the selected device,
				// state toggled.
				if d, ok := m.deviceList.SelectedItem().(watchDevice); ok {
					c := d.asCommand(!d.state)
					m.cmdInput.SetValue(strings.TrimSuffix(nexa.FormatCommandLine(c), "\n"))
					m.focusedField = focusCommandInput
					m.cmdInput.Focus()
				}
				return m, nil
			}
			m.sendCommand()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.deviceList.SetSize(m.width/2-4, m.height-14)

	case watchTickMsg:
		m.stats.CalculateRates()
		return m, watchTickCmd()

	case watchBatchMsg:
		for _, c := range msg.commands {
			m.recordCommand(c)
		}
		if msg.stats != nil {
			m.recordStats(msg.stats)
		}
		m.refreshDeviceList()

	case watchConnLostMsg:
		m.connectionLost = true
		m.addLogEntry("Connection lost, reconnecting...", true)

	case watchReconnectedMsg:
		m.connectionLost = false
		m.connInfo = msg.connInfo
		m.addLogEntry(fmt.Sprintf("Reconnected: %s", msg.connInfo), false)
	}

	// Route remaining messages to the focused component
	var cmd tea.Cmd
	if m.focusedField == focusCommandInput {
		m.cmdInput, cmd = m.cmdInput.Update(msg)
	} else {
		m.deviceList, cmd = m.deviceList.Update(msg)
	}
	return m, cmd
}

// sendCommand parses the input field and sends it through the bridge.
func (m *watchModel) sendCommand() {
	line := strings.TrimSpace(m.cmdInput.Value())
	if line == "" {
		return
	}
	c, err := nexa.ParseCommandLine(line)
	if err != nil {
		m.sendFeedback = fmt.Sprintf("parse: %v", err)
		return
	}
	if err := nexa.ValidateCommand(c); err != nil {
		m.sendFeedback = fmt.Sprintf("invalid: %v", err)
		return
	}
	if err := m.connMgr.send(c); err != nil {
		m.sendFeedback = fmt.Sprintf("send: %v", err)
		m.addLogEntry(fmt.Sprintf("Send failed: %v", err), true)
		return
	}
	m.sendFeedback = "sent " + line
	m.addLogEntry("Sent "+line, false)
	m.cmdInput.SetValue("")
}

// recordCommand folds a decoded command into the device table.
func (m *watchModel) recordCommand(c *nexa.Command) {
	d := watchDevice{
		version:  c.Version,
		deviceID: c.DeviceID(),
		channel:  c.Channel,
		group:    c.Group,
	}
	key := d.key()
	if existing, ok := m.devices[key]; ok {
		existing.state = c.State
		existing.count++
		existing.lastSeen = c.Timestamp
		return
	}
	d.state = c.State
	d.count = 1
	d.lastSeen = c.Timestamp
	m.devices[key] = &d
	m.addLogEntry("New device: "+d.Title(), false)
}

// recordStats adopts a fresh counter snapshot, logging error deltas.
func (m *watchModel) recordStats(s *nexa.Statistics) {
	if s.MalformedFrames > m.prevStats.MalformedFrames {
		m.addLogEntry(fmt.Sprintf("%d malformed frames", s.MalformedFrames-m.prevStats.MalformedFrames), true)
	}
	if s.OverflowDrops > m.prevStats.OverflowDrops {
		m.addLogEntry(fmt.Sprintf("%d tokens dropped (buffer overflow)", s.OverflowDrops-m.prevStats.OverflowDrops), true)
	}
	m.prevStats = *s
	start := m.stats.StartTime
	*m.stats = *s
	m.stats.StartTime = start
}

func (m *watchModel) refreshDeviceList() {
	devices := make([]*watchDevice, 0, len(m.devices))
	for _, d := range m.devices {
		devices = append(devices, d)
	}
	sort.Slice(devices, func(i, j int) bool {
		return devices[i].lastSeen.After(devices[j].lastSeen)
	})
	items := make([]list.Item, len(devices))
	for i, d := range devices {
		items[i] = *d
	}
	m.deviceList.SetItems(items)
}

func (m *watchModel) addLogEntry(message string, isError bool) {
	m.eventLog = append(m.eventLog, watchLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	})
	if len(m.eventLog) > m.maxLogEntries {
		m.eventLog = m.eventLog[len(m.eventLog)-m.maxLogEntries:]
	}
}

//////////////////////////////////////////////////////////////
// View
//////////////////////////////////////////////////////////////

func (m watchModel) View() string {
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

	focusedBoxStyle := boxStyle.
		BorderForeground(lipgloss.Color("12"))

	var s strings.Builder
	s.WriteString(titleStyle.Render("NEXACTL - WATCH"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("%s | Tab: switch focus | Enter: select/send | q: quit", m.connInfo)))
	s.WriteString("\n")
	if m.connectionLost {
		s.WriteString(errorStyle.Render("⚠ Connection lost, reconnecting..."))
		s.WriteString("\n")
	}
	s.WriteString("\n")

	// Statistics box
	statsContent := strings.Builder{}
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
		labelStyle.Render("Pulses:"), valueStyle.Render(fmt.Sprintf("%d (%.1f/s)", m.stats.Pulses, m.stats.PulseRate)),
		labelStyle.Render("Commands:"), valueStyle.Render(fmt.Sprintf("%d (%.2f/s)", m.stats.Commands, m.stats.CommandRate)),
		labelStyle.Render("Bits:"), valueStyle.Render(fmt.Sprintf("%d", m.stats.Bits)),
	))
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s",
		labelStyle.Render("Desyncs:"), warningStyle.Render(fmt.Sprintf("%d", m.stats.Desyncs)),
		labelStyle.Render("Malformed:"), errorStyle.Render(fmt.Sprintf("%d", m.stats.MalformedFrames)),
		labelStyle.Render("Overflow:"), errorStyle.Render(fmt.Sprintf("%d", m.stats.OverflowDrops)),
	))
	s.WriteString(boxStyle.Render(statsContent.String()))
	s.WriteString("\n\n")

	// Device list next to the command field
	listBox := boxStyle
	inputBox := boxStyle
	if m.focusedField == focusDeviceList {
		listBox = focusedBoxStyle
	} else {
		inputBox = focusedBoxStyle
	}

	inputContent := strings.Builder{}
	inputContent.WriteString(labelStyle.Render("Send command (V:DDDDDD:G:C:S):"))
	inputContent.WriteString("\n")
	inputContent.WriteString(m.cmdInput.View())
	if m.sendFeedback != "" {
		inputContent.WriteString("\n")
		inputContent.WriteString(headerStyle.Render(m.sendFeedback))
	}

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		listBox.Render(m.deviceList.View()),
		inputBox.Render(inputContent.String()),
	))
	s.WriteString("\n\n")

	// Event log
	s.WriteString(labelStyle.Render("Recent Events:"))
	s.WriteString("\n")

	logHeight := m.height - m.deviceList.Height() - 14
	if logHeight < 3 {
		logHeight = 3
	}

	logContent := strings.Builder{}
	startIdx := len(m.eventLog) - logHeight
	if startIdx < 0 {
		startIdx = 0
	}

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
					valueStyle.Render("• "+entry.message),
				))
			}
		}
	}

	s.WriteString(boxStyle.Width(m.width - 4).Render(logContent.String()))

	return s.String()
}
