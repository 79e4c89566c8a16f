// SPDX-License-Identifier: MIT
//
// Package tui hosts the terminal front-end. It owns the Bubble Tea event
// loop and drives the render driver from tick messages, one frame per tick,
// so all drawing happens on the TUI goroutine.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"spectrum/internal/render"
)

// Rows reserved above and below the spectrum surface.
const chromeRows = 2

// Stats describes the running configuration shown in the header.
type Stats struct {
	Source     string
	SampleRate float64
	FFTSize    int
	Bars       int
	FrameRate  int
}

// Model is the Bubble Tea model for the visualizer.
type Model struct {
	driver  *render.Driver
	surface *render.CellSurface
	stats   Stats

	keys keyMap
	help help.Model

	width    int
	height   int
	sized    bool
	idle     bool
	quitting bool
}

// New creates a model rendering through driver onto surface. The surface
// must be the one the driver draws on; the model resizes it as the
// terminal changes.
func New(driver *render.Driver, surface *render.CellSurface, stats Stats) Model {
	return Model{
		driver:  driver,
		surface: surface,
		stats:   stats,
		keys:    defaultKeyMap(),
		help:    help.New(),
	}
}

func (m Model) Init() tea.Cmd {
	return tickCmd(m.driver.Interval())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.surface.Resize(msg.Width, max(msg.Height-chromeRows, 0))
		m.sized = true
		return m, nil

	case tickMsg:
		if m.sized {
			m.idle = m.driver.RenderFrame()
		}
		return m, tickCmd(m.driver.Interval())
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.sized {
		return "starting..."
	}

	var b strings.Builder
	b.WriteString(m.headerLine())
	b.WriteByte('\n')
	b.WriteString(m.surface.String())
	b.WriteByte('\n')
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m Model) headerLine() string {
	header := headerStyle.Render("spectrum")
	stats := statsStyle.Render(fmt.Sprintf(" %s  %.0f Hz  fft %d  %d bars  %d fps",
		m.stats.Source, m.stats.SampleRate, m.stats.FFTSize, m.stats.Bars, m.stats.FrameRate))
	if m.idle {
		return header + stats + idleStyle.Render("  [silence]")
	}
	return header + stats
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
