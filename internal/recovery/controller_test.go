package recovery_test

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/alnah/go-jenkins/internal/apierr"
	"github.com/alnah/go-jenkins/internal/recovery"
)

// ---------------------------------------------------------------------------
// fakeHost - records composition and lets tests activate actions
// ---------------------------------------------------------------------------

type fakeHost struct {
	fields  []recovery.Field
	actions []recovery.Action

	showErr   error
	showCalls int
	title     string
	message   string

	// onShow runs inside Show, simulating a blocking host.
	onShow func(h *fakeHost)
}

func (h *fakeHost) AddField(f recovery.Field)   { h.fields = append(h.fields, f) }
func (h *fakeHost) AddAction(a recovery.Action) { h.actions = append(h.actions, a) }

func (h *fakeHost) Show(_ context.Context, title, message string) error {
	h.showCalls++
	h.title, h.message = title, message
	if h.showErr != nil {
		return h.showErr
	}
	if h.onShow != nil {
		h.onShow(h)
	}
	return nil
}

func (h *fakeHost) activate(t *testing.T, label string, values map[string]string) {
	t.Helper()
	for _, a := range h.actions {
		if a.Label == label {
			a.Handler(values)
			return
		}
	}
	t.Fatalf("no action labeled %q", label)
}

// recorder collects onResolved calls.
type recorder struct {
	mu      sync.Mutex
	results []recovery.Result
}

func (r *recorder) record(res recovery.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
}

func (r *recorder) calls() []recovery.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recovery.Result(nil), r.results...)
}

func credentialsIntent() recovery.Intent {
	return recovery.Classify(&apierr.StatusError{Code: 403})
}

// ---------------------------------------------------------------------------
// TestPresent_RequireCredentials
// ---------------------------------------------------------------------------

func TestPresent_RequireCredentials(t *testing.T) {
	t.Parallel()

	t.Run("composes fields and actions in order", func(t *testing.T) {
		t.Parallel()

		host := &fakeHost{}
		rec := &recorder{}
		p, err := recovery.NewController().Present(context.Background(), credentialsIntent(), host, rec.record)
		if err != nil {
			t.Fatalf("Present() unexpected error: %v", err)
		}

		wantFields := []recovery.Field{
			{Key: "username", Placeholder: "Username"},
			{Key: "password", Placeholder: "Password", Secret: true},
		}
		if !reflect.DeepEqual(host.fields, wantFields) {
			t.Errorf("fields = %+v, want %+v", host.fields, wantFields)
		}
		if len(host.actions) != 2 {
			t.Fatalf("actions = %d, want 2", len(host.actions))
		}
		if host.actions[0].Label != "Discard" || host.actions[0].Style != recovery.StyleCancel {
			t.Errorf("actions[0] = %q/%v, want Discard/cancel", host.actions[0].Label, host.actions[0].Style)
		}
		if host.actions[1].Label != "Save" || host.actions[1].Style != recovery.StyleDefault {
			t.Errorf("actions[1] = %q/%v, want Save/default", host.actions[1].Label, host.actions[1].Style)
		}
		if host.showCalls != 1 {
			t.Errorf("Show calls = %d, want 1", host.showCalls)
		}
		if host.title != "Error" || host.message != "Please provide username and password" {
			t.Errorf("shown (%q, %q), want credentials text", host.title, host.message)
		}
		if p.State() != recovery.StatePresented {
			t.Errorf("State() = %v, want presented", p.State())
		}
		if len(rec.calls()) != 0 {
			t.Errorf("callback fired before any action: %+v", rec.calls())
		}
	})

	t.Run("discard resolves without data", func(t *testing.T) {
		t.Parallel()

		host := &fakeHost{}
		rec := &recorder{}
		p, err := recovery.NewController().Present(context.Background(), credentialsIntent(), host, rec.record)
		if err != nil {
			t.Fatal(err)
		}

		host.activate(t, "Discard", map[string]string{"username": "typed"})

		calls := rec.calls()
		if len(calls) != 1 {
			t.Fatalf("callback calls = %d, want 1", len(calls))
		}
		if calls[0].Outcome != recovery.Discarded || calls[0].Values != nil {
			t.Errorf("result = %+v, want Discarded with nil values", calls[0])
		}
		if out, ok := p.Outcome(); !ok || out != recovery.Discarded {
			t.Errorf("Outcome() = %v, %v, want discarded, true", out, ok)
		}
	})

	t.Run("save resolves with field values", func(t *testing.T) {
		t.Parallel()

		host := &fakeHost{}
		rec := &recorder{}
		if _, err := recovery.NewController().Present(context.Background(), credentialsIntent(), host, rec.record); err != nil {
			t.Fatal(err)
		}

		host.activate(t, "Save", map[string]string{"username": "a", "password": "b"})

		calls := rec.calls()
		if len(calls) != 1 {
			t.Fatalf("callback calls = %d, want 1", len(calls))
		}
		want := recovery.Result{Outcome: recovery.Submitted, Values: map[string]string{"username": "a", "password": "b"}}
		if !reflect.DeepEqual(calls[0], want) {
			t.Errorf("result = %+v, want %+v", calls[0], want)
		}
	})

	t.Run("save with empty fields is a submission", func(t *testing.T) {
		t.Parallel()

		host := &fakeHost{}
		rec := &recorder{}
		if _, err := recovery.NewController().Present(context.Background(), credentialsIntent(), host, rec.record); err != nil {
			t.Fatal(err)
		}

		host.activate(t, "Save", nil)

		calls := rec.calls()
		want := map[string]string{"username": "", "password": ""}
		if len(calls) != 1 || calls[0].Outcome != recovery.Submitted || !reflect.DeepEqual(calls[0].Values, want) {
			t.Errorf("result = %+v, want Submitted with empty values", calls)
		}
	})

	t.Run("unrequested keys are dropped", func(t *testing.T) {
		t.Parallel()

		host := &fakeHost{}
		rec := &recorder{}
		if _, err := recovery.NewController().Present(context.Background(), credentialsIntent(), host, rec.record); err != nil {
			t.Fatal(err)
		}

		host.activate(t, "Save", map[string]string{"username": "a", "password": "b", "extra": "x"})

		if v := rec.calls()[0].Values; len(v) != 2 {
			t.Errorf("values = %v, want only requested keys", v)
		}
	})

	t.Run("snapshot is independent of host map", func(t *testing.T) {
		t.Parallel()

		host := &fakeHost{}
		rec := &recorder{}
		if _, err := recovery.NewController().Present(context.Background(), credentialsIntent(), host, rec.record); err != nil {
			t.Fatal(err)
		}

		values := map[string]string{"username": "a", "password": "b"}
		host.activate(t, "Save", values)
		values["username"] = "mutated"

		if got := rec.calls()[0].Value("username"); got != "a" {
			t.Errorf("Value(username) = %q, want %q", got, "a")
		}
	})
}

// ---------------------------------------------------------------------------
// TestPresent_ExactlyOnce - terminal states are absorbing
// ---------------------------------------------------------------------------

func TestPresent_ExactlyOnce(t *testing.T) {
	t.Parallel()

	sequences := [][]string{
		{"Save", "Discard"},
		{"Discard", "Save"},
		{"Save", "Save"},
		{"Discard", "Discard", "Save"},
	}

	for _, seq := range sequences {
		t.Run(seq[0]+"_first", func(t *testing.T) {
			t.Parallel()

			host := &fakeHost{}
			rec := &recorder{}
			if _, err := recovery.NewController().Present(context.Background(), credentialsIntent(), host, rec.record); err != nil {
				t.Fatal(err)
			}

			for _, label := range seq {
				host.activate(t, label, map[string]string{"username": "u", "password": "p"})
			}

			calls := rec.calls()
			if len(calls) != 1 {
				t.Fatalf("callback calls = %d, want 1", len(calls))
			}
			want := recovery.Discarded
			if seq[0] == "Save" {
				want = recovery.Submitted
			}
			if calls[0].Outcome != want {
				t.Errorf("outcome = %v, want %v", calls[0].Outcome, want)
			}
		})
	}
}

func TestPresent_ConcurrentActivations(t *testing.T) {
	t.Parallel()

	host := &fakeHost{}
	rec := &recorder{}
	p, err := recovery.NewController().Present(context.Background(), credentialsIntent(), host, rec.record)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			host.actions[i%2].Handler(map[string]string{"username": "u"})
		}()
	}
	wg.Wait()

	if n := len(rec.calls()); n != 1 {
		t.Errorf("callback calls = %d, want 1", n)
	}
	if p.State() != recovery.StateResolved {
		t.Errorf("State() = %v, want resolved", p.State())
	}
}

// ---------------------------------------------------------------------------
// TestPresent_Inform
// ---------------------------------------------------------------------------

func TestPresent_Inform(t *testing.T) {
	t.Parallel()

	intents := map[string]recovery.Intent{
		"inform":             recovery.Classify(&apierr.StatusError{Code: 500}),
		"inform with detail": recovery.Classify(&apierr.TransportError{Err: errors.New("no route to host")}),
		"generic":            recovery.Classify(errors.New("weird")),
	}

	for name, in := range intents {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			host := &fakeHost{}
			rec := &recorder{}
			if _, err := recovery.NewController().Present(context.Background(), in, host, rec.record); err != nil {
				t.Fatal(err)
			}

			if len(host.fields) != 0 {
				t.Errorf("fields = %+v, want none", host.fields)
			}
			if len(host.actions) != 1 || host.actions[0].Label != "Alright" || host.actions[0].Style != recovery.StyleCancel {
				t.Fatalf("actions = %+v, want single Alright/cancel", host.actions)
			}
			_, wantMessage := recovery.Text(in)
			if host.message != wantMessage {
				t.Errorf("message = %q, want %q", host.message, wantMessage)
			}

			host.activate(t, "Alright", nil)
			host.activate(t, "Alright", nil)

			calls := rec.calls()
			if len(calls) != 1 {
				t.Fatalf("callback calls = %d, want 1", len(calls))
			}
			if calls[0].Outcome != recovery.Acknowledged || calls[0].Values != nil {
				t.Errorf("result = %+v, want Acknowledged without values", calls[0])
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestPresent_BlockingHost - action fires from inside Show
// ---------------------------------------------------------------------------

func TestPresent_BlockingHost(t *testing.T) {
	t.Parallel()

	host := &fakeHost{onShow: func(h *fakeHost) {
		h.actions[1].Handler(map[string]string{"username": "jenkins", "password": "token"})
	}}
	rec := &recorder{}

	p, err := recovery.NewController().Present(context.Background(), credentialsIntent(), host, rec.record)
	if err != nil {
		t.Fatalf("Present() unexpected error: %v", err)
	}
	if p.State() != recovery.StateResolved {
		t.Errorf("State() = %v, want resolved", p.State())
	}
	if calls := rec.calls(); len(calls) != 1 || calls[0].Value("password") != "token" {
		t.Errorf("calls = %+v, want one submission", calls)
	}
}

// ---------------------------------------------------------------------------
// TestPresent_Errors - presentation preconditions
// ---------------------------------------------------------------------------

type unknownIntent struct{ recovery.Inform }

func TestPresent_Errors(t *testing.T) {
	t.Parallel()

	t.Run("show failure is surfaced", func(t *testing.T) {
		t.Parallel()

		showErr := errors.New("another prompt is active")
		host := &fakeHost{showErr: showErr}
		rec := &recorder{}

		p, err := recovery.NewController().Present(context.Background(), credentialsIntent(), host, rec.record)
		if !errors.Is(err, recovery.ErrPresentation) {
			t.Errorf("error = %v, want ErrPresentation", err)
		}
		if !errors.Is(err, showErr) {
			t.Errorf("error = %v, want wrapped host error", err)
		}
		if host.showCalls != 1 {
			t.Errorf("Show calls = %d, want 1 (no retry)", host.showCalls)
		}
		if p.State() != recovery.StateFailed {
			t.Errorf("State() = %v, want failed", p.State())
		}

		host.activate(t, "Save", map[string]string{"username": "late"})
		if n := len(rec.calls()); n != 0 {
			t.Errorf("callback calls = %d, want 0 after failed show", n)
		}
	})

	t.Run("cancelled context is preserved", func(t *testing.T) {
		t.Parallel()

		host := &fakeHost{showErr: context.Canceled}
		_, err := recovery.NewController().Present(context.Background(), credentialsIntent(), host, func(recovery.Result) {})
		if !errors.Is(err, context.Canceled) || !errors.Is(err, recovery.ErrPresentation) {
			t.Errorf("error = %v, want ErrPresentation wrapping context.Canceled", err)
		}
	})

	t.Run("nil host", func(t *testing.T) {
		t.Parallel()

		_, err := recovery.NewController().Present(context.Background(), credentialsIntent(), nil, func(recovery.Result) {})
		if !errors.Is(err, recovery.ErrPresentation) {
			t.Errorf("error = %v, want ErrPresentation", err)
		}
	})

	t.Run("nil callback", func(t *testing.T) {
		t.Parallel()

		host := &fakeHost{}
		_, err := recovery.NewController().Present(context.Background(), credentialsIntent(), host, nil)
		if !errors.Is(err, recovery.ErrPresentation) {
			t.Errorf("error = %v, want ErrPresentation", err)
		}
		if host.showCalls != 0 {
			t.Errorf("Show calls = %d, want 0", host.showCalls)
		}
	})

	t.Run("unknown intent", func(t *testing.T) {
		t.Parallel()

		host := &fakeHost{}
		_, err := recovery.NewController().Present(context.Background(), unknownIntent{}, host, func(recovery.Result) {})
		if !errors.Is(err, recovery.ErrPresentation) {
			t.Errorf("error = %v, want ErrPresentation", err)
		}
		if host.showCalls != 0 || len(host.actions) != 0 {
			t.Errorf("host was touched: %d shows, %d actions", host.showCalls, len(host.actions))
		}
	})
}
