// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Johan Herland

package cmd

import (
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jherland/nexactl/internal/recovery"
	"github.com/jherland/nexactl/pkg/nexa"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Interactive TUI for watching and controlling devices",
	Long: `Watch remote-control traffic in an interactive terminal UI.

Every device heard on the air is collected into a list with its last
known state. A command field sends new commands through the radio
bridge, pre-filled from the selected device so retransmitting or
toggling a device takes a couple of keystrokes.

Features:
  - Passive device discovery from decoded traffic
  - Live decoder statistics
  - Event logging (desyncs, malformed frames, overflow)
  - Automatic reconnection on connection loss

Tab switches between the device list and the command field. Arrow keys
navigate the device list; enter sends.

Supports both serial and WebSocket connections.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// watchConnManager handles connection lifecycle and reconnection
type watchConnManager struct {
	conn     Connection
	connInfo string
	mu       sync.RWMutex
	p        *tea.Program
	done     chan struct{}
}

func (cm *watchConnManager) getConn() Connection {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.conn
}

func (cm *watchConnManager) setConn(conn Connection, connInfo string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.conn = conn
	cm.connInfo = connInfo
}

// send writes a command line to the bridge.
func (cm *watchConnManager) send(c *nexa.Command) error {
	conn := cm.getConn()
	if conn == nil {
		return fmt.Errorf("not connected")
	}
	_, err := conn.Write([]byte(nexa.FormatCommandLine(c)))
	return err
}

func runWatch(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}

	cm := &watchConnManager{
		conn:     conn,
		connInfo: connInfo,
		done:     make(chan struct{}),
	}

	m := initialWatchModel(cm, connInfo)

	p := tea.NewProgram(m, tea.WithAltScreen())
	cm.p = p

	go cm.readerLoop()

	if _, err := p.Run(); err != nil {
		close(cm.done)
		cm.getConn().Close()
		return fmt.Errorf("TUI error: %v", err)
	}

	close(cm.done)
	cm.getConn().Close()
	return nil
}

// readerLoop handles reading from connection with automatic reconnection
func (cm *watchConnManager) readerLoop() {
	defer recovery.HandlePanicFunc(nil)
	for {
		select {
		case <-cm.done:
			return
		default:
		}

		connLost := cm.readFromConnection()

		if connLost {
			cm.p.Send(watchConnLostMsg{})
			if !cm.reconnect() {
				return // Shutdown requested during reconnect
			}
		}
	}
}

// readFromConnection decodes the pulse stream until the connection
// fails. Returns true if the connection was lost, false on shutdown.
func (cm *watchConnManager) readFromConnection() bool {
	decoder := nexa.NewDecoder(viper.GetInt("ring_capacity"))

	// Buffered channels for batching updates
	cmdChan := make(chan *nexa.Command, 100)
	statsChan := make(chan *nexa.Statistics, 1)
	readerDone := make(chan struct{})

	// Reader goroutine - decodes commands and sends to the batcher
	go func() {
		defer close(readerDone)
		conn := cm.getConn()
		if conn == nil {
			return
		}
		scanner := nexa.NewPulseScanner(conn)
		for {
			select {
			case <-cm.done:
				return
			default:
			}

			pulse, err := scanner.Next()
			if err != nil {
				select {
				case <-cm.done:
				default:
					if err == ErrConnectionClosed {
						return
					}
					// Brief pause before giving up on transient errors
					time.Sleep(10 * time.Millisecond)
				}
				return
			}

			decoder.Feed(pulse)
			for c := decoder.Next(); c != nil; c = decoder.Next() {
				select {
				case cmdChan <- c:
				default:
				}
			}
			// Publish a counter snapshot, replacing any stale one.
			snapshot := snapshotStats(decoder.Stats())
			select {
			case statsChan <- snapshot:
			default:
				select {
				case <-statsChan:
				default:
				}
				select {
				case statsChan <- snapshot:
				default:
				}
			}
		}
	}()

	// Batch sender goroutine - forwards updates to the TUI at fixed rate
	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-cm.done:
				return
			case <-readerDone:
				return
			case <-ticker.C:
				var batch watchBatchMsg

			drainLoop:
				for {
					select {
					case c := <-cmdChan:
						batch.commands = append(batch.commands, c)
					default:
						break drainLoop
					}
				}

				select {
				case batch.stats = <-statsChan:
				default:
				}
				if len(batch.commands) > 0 || batch.stats != nil {
					cm.p.Send(batch)
				}
			}
		}
	}()

	<-readerDone

	select {
	case <-cm.done:
		return false
	default:
		return true // Connection lost
	}
}

// snapshotStats copies the decoder counters for the TUI. The decoder
// goroutine keeps mutating the original.
func snapshotStats(s *nexa.Statistics) *nexa.Statistics {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}

// reconnect attempts to reconnect with exponential backoff
// Returns false if shutdown was requested during reconnection
func (cm *watchConnManager) reconnect() bool {
	if conn := cm.getConn(); conn != nil {
		conn.Close()
	}

	backoff := 1 * time.Second
	maxBackoff := 30 * time.Second

	for {
		select {
		case <-cm.done:
			return false
		case <-time.After(backoff):
		}

		conn, connInfo, err := OpenConnection()
		if err == nil {
			cm.setConn(conn, connInfo)
			cm.p.Send(watchReconnectedMsg{connInfo: connInfo})
			return true
		}

		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}
