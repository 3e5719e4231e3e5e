// Package tui is the thin interactive shell over the engine: it steps the
// flow on a timer and prints the numbers the core computes. No rendering
// of geometry happens here, only metric readouts and ASCII series.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/thomaslab/internal/engine"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

const (
	historyLen = 120
	plotWidth  = 64
	plotHeight = 8
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(50*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Model drives one engine interactively.
type Model struct {
	eng *engine.Engine

	paused       bool
	stepsPerTick int
	lambdaHist   []float64
	xHist        []float64
	err          error
}

func NewModel(eng *engine.Engine) *Model {
	return &Model{
		eng:          eng,
		stepsPerTick: 20,
		lambdaHist:   make([]float64, 0, historyLen),
		xHist:        make([]float64, 0, historyLen),
	}
}

func (m *Model) Init() tea.Cmd { return tick() }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
		case "+", "=":
			m.stepsPerTick *= 2
			if m.stepsPerTick > 640 {
				m.stepsPerTick = 640
			}
		case "-":
			m.stepsPerTick /= 2
			if m.stepsPerTick < 1 {
				m.stepsPerTick = 1
			}
		case "]":
			m.err = m.eng.SetB(m.eng.Parameters().B + 0.01)
		case "[":
			b := m.eng.Parameters().B - 0.01
			if b > 0 {
				m.err = m.eng.SetB(b)
			}
		case "r":
			m.err = m.eng.Reset(nil)
			m.lambdaHist = m.lambdaHist[:0]
			m.xHist = m.xHist[:0]
		}
		return m, nil

	case tickMsg:
		if !m.paused {
			positions := m.eng.Step(m.stepsPerTick)
			if len(positions) > 0 {
				m.xHist = push(m.xHist, positions[len(positions)-1].X)
			}
			m.lambdaHist = push(m.lambdaHist, m.eng.QuickLyapunov())
		}
		return m, tick()
	}
	return m, nil
}

func push(hist []float64, v float64) []float64 {
	hist = append(hist, v)
	if len(hist) > historyLen {
		hist = hist[len(hist)-historyLen:]
	}
	return hist
}

func (m *Model) View() string {
	p := m.eng.Parameters()
	quick := m.eng.QuickLyapunov()

	var b strings.Builder
	b.WriteString(titleStyle.Render("thomaslab live"))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "%s %s   %s %s   %s %s   %s %s\n",
		labelStyle.Render("b"), valueStyle.Render(fmt.Sprintf("%.4f", p.B)),
		labelStyle.Render("dt"), valueStyle.Render(fmt.Sprintf("%.3f", p.Dt)),
		labelStyle.Render("t"), valueStyle.Render(fmt.Sprintf("%.1f", p.T)),
		labelStyle.Render("samples"), valueStyle.Render(fmt.Sprintf("%d", m.eng.Store().Len())))

	regime := "chaotic"
	if quick <= 0 {
		regime = "regular"
	}
	fmt.Fprintf(&b, "%s %s  (%s)\n\n",
		labelStyle.Render("quick λ₁"),
		valueStyle.Render(fmt.Sprintf("%+.4f", quick)),
		regime)

	if len(m.xHist) > 1 {
		b.WriteString(labelStyle.Render("x(t)"))
		b.WriteString("\n")
		b.WriteString(asciigraph.Plot(m.xHist,
			asciigraph.Height(plotHeight), asciigraph.Width(plotWidth)))
		b.WriteString("\n\n")
	}
	if len(m.lambdaHist) > 1 {
		b.WriteString(labelStyle.Render("quick λ₁ history"))
		b.WriteString("\n")
		b.WriteString(asciigraph.Plot(m.lambdaHist,
			asciigraph.Height(plotHeight), asciigraph.Width(plotWidth)))
		b.WriteString("\n\n")
	}

	if m.err != nil {
		b.WriteString(warnStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}
	if m.paused {
		b.WriteString(warnStyle.Render("paused"))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("space pause · +/- speed · [/] adjust b · r reset · q quit"))
	b.WriteString("\n")
	return b.String()
}

// Run starts the live view and blocks until the user quits.
func Run(eng *engine.Engine) error {
	_, err := tea.NewProgram(NewModel(eng)).Run()
	return err
}
