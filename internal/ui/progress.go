package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ProgressEvent reports how many files under Root have been applied.
type ProgressEvent struct {
	Root  string
	Done  int
	Total int
}

// ProgressRenderer displays indexing progress.
type ProgressRenderer interface {
	Start(ctx context.Context) error
	Update(event ProgressEvent)
	Stop() error
}

// NewProgressRenderer picks the animated renderer for an interactive color
// terminal and the plain one otherwise.
func NewProgressRenderer(out io.Writer, forcePlain bool) ProgressRenderer {
	if NoColorFor(out, forcePlain) {
		return NewPlainProgressRenderer(out)
	}
	r, err := NewTUIProgressRenderer(out)
	if err != nil {
		return NewPlainProgressRenderer(out)
	}
	return r
}

// PlainProgressRenderer prints one line per update (for CI and pipes).
type PlainProgressRenderer struct {
	mu  sync.Mutex
	out io.Writer
}

// NewPlainProgressRenderer creates a plain text renderer.
func NewPlainProgressRenderer(out io.Writer) *PlainProgressRenderer {
	return &PlainProgressRenderer{out: out}
}

// Start implements ProgressRenderer.
func (r *PlainProgressRenderer) Start(context.Context) error { return nil }

// Update implements ProgressRenderer.
func (r *PlainProgressRenderer) Update(event ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = fmt.Fprintf(r.out, "[INDEX] %d/%d - %s\n", event.Done, event.Total, event.Root)
}

// Stop implements ProgressRenderer.
func (r *PlainProgressRenderer) Stop() error { return nil }

// TUIProgressRenderer draws a spinner and progress bar with bubbletea.
type TUIProgressRenderer struct {
	mu      sync.Mutex
	out     io.Writer
	model   *progressModel
	program *tea.Program
	done    chan struct{}
}

// NewTUIProgressRenderer fails when out is not a terminal.
func NewTUIProgressRenderer(out io.Writer) (*TUIProgressRenderer, error) {
	if !IsTTY(out) {
		return nil, fmt.Errorf("output is not a TTY")
	}
	return &TUIProgressRenderer{
		out:   out,
		model: newProgressModel(GetStyles(DetectNoColor())),
		done:  make(chan struct{}),
	}, nil
}

// Start implements ProgressRenderer.
func (r *TUIProgressRenderer) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.program != nil {
		return nil
	}

	opts := []tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	}
	if f, ok := r.out.(*os.File); ok {
		opts = append(opts, tea.WithOutput(f))
	}
	r.program = tea.NewProgram(r.model, opts...)

	go func() {
		defer close(r.done)
		_, _ = r.program.Run()
	}()
	return nil
}

// Update implements ProgressRenderer.
func (r *TUIProgressRenderer) Update(event ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.program != nil {
		r.program.Send(progressMsg(event))
	}
}

// Stop implements ProgressRenderer. It draws the final state and waits
// briefly for the program to exit.
func (r *TUIProgressRenderer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.program == nil {
		return nil
	}

	r.program.Send(finishedMsg{})
	select {
	case <-r.done:
	case <-time.After(2 * time.Second):
		r.program.Quit()
	}
	r.program = nil
	return nil
}

type progressMsg ProgressEvent
type finishedMsg struct{}

// progressModel is the bubbletea model behind TUIProgressRenderer.
type progressModel struct {
	spinner  spinner.Model
	bar      progress.Model
	styles   Styles
	event    ProgressEvent
	finished bool
}

func newProgressModel(styles Styles) *progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLime))

	return &progressModel{
		spinner: s,
		bar:     progress.New(progress.WithSolidFill(ColorLime), progress.WithWidth(40)),
		styles:  styles,
	}
}

// Init implements tea.Model.
func (m *progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bar.Width = max(min(msg.Width-20, 60), 20)

	case progressMsg:
		m.event = ProgressEvent(msg)

	case finishedMsg:
		m.finished = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *progressModel) View() string {
	if m.event.Root == "" {
		if m.finished {
			return ""
		}
		return m.spinner.View() + " " + m.styles.Label.Render("Scanning...") + "\n"
	}

	head := m.spinner.View()
	if m.finished {
		head = m.styles.Success.Render("✓")
	}
	percent := 0.0
	if m.event.Total > 0 {
		percent = float64(m.event.Done) / float64(m.event.Total)
	}
	return fmt.Sprintf("%s %s\n  %s %s\n",
		head,
		m.styles.Path.Render(m.event.Root),
		m.bar.ViewAs(percent),
		m.styles.Dim.Render(fmt.Sprintf("%d/%d files", m.event.Done, m.event.Total)))
}
