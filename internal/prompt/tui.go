package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/alnah/go-jenkins/internal/recovery"
)

// TUIHost shows the prompt as a bordered modal using bubbletea.
// Show blocks until the user activates an action.
type TUIHost struct {
	form

	in  io.Reader
	out io.Writer
}

// NewTUIHost creates a TUIHost on the given terminal streams.
func NewTUIHost(in io.Reader, out io.Writer) *TUIHost {
	return &TUIHost{in: in, out: out}
}

// Show runs the modal and fires the chosen action's handler once it exits.
// Esc and Ctrl+C activate the cancel action.
func (h *TUIHost) Show(ctx context.Context, title, message string) error {
	if err := h.begin(); err != nil {
		return err
	}

	m := newModalModel(title, message, h.fields, h.actions)
	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(h.in),
		tea.WithOutput(h.out),
	)

	final, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("run prompt: %w", err)
	}

	fm, ok := final.(modalModel)
	if !ok {
		return fmt.Errorf("run prompt: unexpected model %T", final)
	}
	idx := fm.chosen
	if idx < 0 {
		idx = h.cancelIndex()
	}
	h.actions[idx].Handler(fm.values())
	return nil
}

// modalModel is the bubbletea model behind TUIHost.
// Focus cycles through the inputs first, then the buttons.
type modalModel struct {
	title   string
	message string
	fields  []recovery.Field
	inputs  []textinput.Model
	actions []recovery.Action

	focus  int
	cancel int
	def    int
	chosen int // -1 until an action is picked
}

func newModalModel(title, message string, fields []recovery.Field, actions []recovery.Action) modalModel {
	f := form{fields: fields, actions: actions}
	m := modalModel{
		title:   title,
		message: message,
		fields:  fields,
		actions: actions,
		cancel:  f.cancelIndex(),
		def:     f.defaultIndex(),
		chosen:  -1,
	}

	m.inputs = make([]textinput.Model, len(fields))
	for i, field := range fields {
		ti := textinput.New()
		ti.Placeholder = field.Placeholder
		ti.Prompt = fmt.Sprintf("%-10s ", field.Placeholder+":")
		ti.CharLimit = 256
		ti.Width = 32
		if field.Secret {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		m.inputs[i] = ti
	}

	// Start on the first input, or on the default button when there is none.
	if len(m.inputs) > 0 {
		m.inputs[0].Focus()
	} else {
		m.focus = m.def
	}
	return m
}

func (m modalModel) Init() tea.Cmd {
	if len(m.inputs) > 0 {
		return textinput.Blink
	}
	return nil
}

func (m modalModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m.updateInput(msg)
	}

	switch key.String() {
	case "ctrl+c", "esc":
		m.chosen = m.cancel
		return m, tea.Quit
	case "tab", "down":
		return m.moveFocus(1), textinput.Blink
	case "shift+tab", "up":
		return m.moveFocus(-1), textinput.Blink
	case "left":
		if m.onButton() {
			return m.moveFocus(-1), nil
		}
	case "right":
		if m.onButton() {
			return m.moveFocus(1), nil
		}
	case "enter":
		if m.onButton() {
			m.chosen = m.focus - len(m.inputs)
			return m, tea.Quit
		}
		// Enter on the last input submits with the default action.
		if m.focus == len(m.inputs)-1 {
			m.chosen = m.def
			return m, tea.Quit
		}
		return m.moveFocus(1), textinput.Blink
	}

	return m.updateInput(msg)
}

// updateInput forwards msg to the focused input, if any.
func (m modalModel) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.onButton() {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m modalModel) onButton() bool {
	return m.focus >= len(m.inputs)
}

// moveFocus advances focus by delta, wrapping around.
func (m modalModel) moveFocus(delta int) modalModel {
	n := len(m.inputs) + len(m.actions)
	m.focus = ((m.focus+delta)%n + n) % n
	for i := range m.inputs {
		if i == m.focus {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return m
}

// values snapshots the current text of every input.
func (m modalModel) values() map[string]string {
	out := make(map[string]string, len(m.fields))
	for i, f := range m.fields {
		out[f.Key] = m.inputs[i].Value()
	}
	return out
}

func (m modalModel) View() string {
	if m.chosen >= 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(m.title))
	sb.WriteString("\n")
	sb.WriteString(messageStyle.Render(m.message))
	sb.WriteString("\n")

	for _, in := range m.inputs {
		sb.WriteString(in.View())
		sb.WriteString("\n")
	}
	if len(m.inputs) > 0 {
		sb.WriteString("\n")
	}

	buttons := make([]string, len(m.actions))
	for i, a := range m.actions {
		style := buttonStyle
		if m.focus == len(m.inputs)+i {
			style = buttonActiveStyle
		}
		buttons[i] = style.Render(a.Label)
	}
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, buttons...))
	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("tab: next • enter: select • esc: " + strings.ToLower(m.actions[m.cancel].Label)))

	return boxStyle.Render(sb.String()) + "\n"
}

// Compile-time interface verification.
var _ recovery.Host = (*TUIHost)(nil)
