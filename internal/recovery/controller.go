package recovery

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Action labels.
const (
	LabelDiscard = "Discard"
	LabelSave    = "Save"
	LabelAlright = "Alright"
)

// Style is the visual role of an action.
type Style int

const (
	// StyleDefault marks the primary action, activated by Enter.
	StyleDefault Style = iota
	// StyleCancel marks the dismissing action, activated by Esc or end of input.
	StyleCancel
)

// String returns the string representation of the Style.
func (s Style) String() string {
	switch s {
	case StyleDefault:
		return "default"
	case StyleCancel:
		return "cancel"
	default:
		return fmt.Sprintf("Style(%d)", s)
	}
}

// Action is a terminal choice offered by a prompt.
// Handler receives a snapshot of every registered field's text at activation time.
type Action struct {
	Label   string
	Style   Style
	Handler func(values map[string]string)
}

// Host renders a modal prompt. A Host is used for a single Present call and
// discarded once the prompt is dismissed.
//
// Show displays the composed prompt. It may block until the user picks an
// action (terminal hosts) or return as soon as the prompt is on screen (event
// loop hosts); either way the host calls exactly one action handler per Show.
type Host interface {
	AddField(f Field)
	AddAction(a Action)
	Show(ctx context.Context, title, message string) error
}

// Outcome is how a prompt was resolved.
type Outcome int

const (
	// Submitted means the user saved the requested fields.
	Submitted Outcome = iota + 1
	// Discarded means the user dismissed a prompt that requested input.
	Discarded
	// Acknowledged means the user dismissed a prompt that requested nothing.
	Acknowledged
)

// String returns the string representation of the Outcome.
func (o Outcome) String() string {
	switch o {
	case Submitted:
		return "submitted"
	case Discarded:
		return "discarded"
	case Acknowledged:
		return "acknowledged"
	default:
		return fmt.Sprintf("Outcome(%d)", o)
	}
}

// Result is what the user chose. Values is non-nil only for Submitted and
// holds one entry per requested field, possibly empty strings.
type Result struct {
	Outcome Outcome
	Values  map[string]string
}

// Value returns the text entered for key, or "" if absent.
func (r Result) Value(key string) string {
	return r.Values[key]
}

// State is the lifecycle of a single presentation.
type State int

const (
	// StateIdle: the prompt is being composed.
	StateIdle State = iota
	// StatePresented: the host was asked to show the prompt.
	StatePresented
	// StateResolved: an action fired. Absorbing.
	StateResolved
	// StateFailed: the host could not show the prompt. Absorbing.
	StateFailed
)

// String returns the string representation of the State.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePresented:
		return "presented"
	case StateResolved:
		return "resolved"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// Presentation tracks one Present call.
// Safe for concurrent use; only the first action to fire reaches the callback.
type Presentation struct {
	mu         sync.Mutex
	state      State
	outcome    Outcome
	onResolved func(Result)
	logger     *slog.Logger
}

// State returns the current lifecycle state.
func (p *Presentation) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Outcome returns the resolved outcome, or false if not resolved yet.
func (p *Presentation) Outcome() (Outcome, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.outcome, p.state == StateResolved
}

// transition moves to next unless the presentation already terminated.
func (p *Presentation) transition(next State) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateResolved || p.state == StateFailed {
		return false
	}
	p.state = next
	return true
}

// resolve delivers r to the callback if no action fired before.
func (p *Presentation) resolve(r Result) {
	p.mu.Lock()
	if p.state == StateResolved || p.state == StateFailed {
		prev := p.outcome
		p.mu.Unlock()
		p.logger.Debug("ignoring action after prompt terminated",
			"outcome", r.Outcome, "resolved", prev)
		return
	}
	p.state = StateResolved
	p.outcome = r.Outcome
	p.mu.Unlock()

	p.logger.Debug("prompt resolved", "outcome", r.Outcome)
	p.onResolved(r)
}

// Controller presents recovery intents on prompt hosts.
type Controller struct {
	logger *slog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger for prompt lifecycle diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewController creates a Controller.
func NewController(opts ...Option) *Controller {
	c := &Controller{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Present composes the prompt for in on host and shows it.
// onResolved is called exactly once, when the user picks an action:
//   - RequireCredentials: "Discard" yields Discarded, "Save" yields Submitted
//     with the text of every requested field.
//   - Inform, InformWithDetail: "Alright" yields Acknowledged.
//
// Show is called exactly once. If it fails, Present returns an error wrapping
// ErrPresentation and onResolved is never called. Callers must not run two
// prompts on the same host concurrently.
func (c *Controller) Present(ctx context.Context, in Intent, host Host, onResolved func(Result)) (*Presentation, error) {
	if host == nil {
		return nil, fmt.Errorf("%w: nil host", ErrPresentation)
	}
	if onResolved == nil {
		return nil, fmt.Errorf("%w: nil callback", ErrPresentation)
	}

	p := &Presentation{onResolved: onResolved, logger: c.logger}

	switch in := in.(type) {
	case RequireCredentials:
		keys := make([]string, 0, len(in.Fields))
		for _, f := range in.Fields {
			host.AddField(f)
			keys = append(keys, f.Key)
		}
		host.AddAction(Action{
			Label: LabelDiscard,
			Style: StyleCancel,
			Handler: func(map[string]string) {
				p.resolve(Result{Outcome: Discarded})
			},
		})
		host.AddAction(Action{
			Label: LabelSave,
			Style: StyleDefault,
			Handler: func(values map[string]string) {
				p.resolve(Result{Outcome: Submitted, Values: snapshot(keys, values)})
			},
		})
	case Inform, InformWithDetail:
		host.AddAction(Action{
			Label: LabelAlright,
			Style: StyleCancel,
			Handler: func(map[string]string) {
				p.resolve(Result{Outcome: Acknowledged})
			},
		})
	default:
		return nil, fmt.Errorf("%w: unknown intent %T", ErrPresentation, in)
	}

	title, message := Text(in)
	p.transition(StatePresented)
	c.logger.Debug("presenting prompt", "intent", fmt.Sprintf("%T", in), "title", title)

	if err := host.Show(ctx, title, message); err != nil {
		p.transition(StateFailed)
		return p, fmt.Errorf("%w: %w", ErrPresentation, err)
	}
	return p, nil
}

// snapshot copies the values of keys, defaulting missing ones to "".
func snapshot(keys []string, values map[string]string) map[string]string {
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		out[k] = values[k]
	}
	return out
}
