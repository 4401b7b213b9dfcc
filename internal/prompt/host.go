// Package prompt provides terminal implementations of recovery.Host.
//
// TUIHost draws a modal box with bubbletea and is used on interactive
// terminals. LineHost reads plain lines and is used when the terminal cannot
// run a full-screen program or input is piped.
package prompt

import "github.com/alnah/go-jenkins/internal/recovery"

// form holds the fields and actions registered on a host.
type form struct {
	fields  []recovery.Field
	actions []recovery.Action
	shown   bool
}

func (f *form) AddField(field recovery.Field) {
	f.fields = append(f.fields, field)
}

func (f *form) AddAction(a recovery.Action) {
	f.actions = append(f.actions, a)
}

// begin marks the form as shown, rejecting a second Show.
func (f *form) begin() error {
	if f.shown {
		return ErrAlreadyShown
	}
	if len(f.actions) == 0 {
		return ErrNoActions
	}
	f.shown = true
	return nil
}

// cancelIndex returns the index of the first cancel-style action,
// falling back to the first action.
func (f *form) cancelIndex() int {
	for i, a := range f.actions {
		if a.Style == recovery.StyleCancel {
			return i
		}
	}
	return 0
}

// defaultIndex returns the index of the first default-style action,
// falling back to the cancel action.
func (f *form) defaultIndex() int {
	for i, a := range f.actions {
		if a.Style == recovery.StyleDefault {
			return i
		}
	}
	return f.cancelIndex()
}
