// SPDX-License-Identifier: MIT
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type tickMsg time.Time

// tickCmd schedules the next render frame. tea.Tick aligns to the interval,
// so a slow View does not accumulate drift.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
