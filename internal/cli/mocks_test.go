package cli

import (
	"context"
	"maps"
	"sync"

	"github.com/alnah/go-jenkins/internal/config"
	"github.com/alnah/go-jenkins/internal/jenkins"
	"github.com/alnah/go-jenkins/internal/recovery"
)

// ---------------------------------------------------------------------------
// mockConfigStore - in-memory configuration
// ---------------------------------------------------------------------------

type mockConfigStore struct {
	mu      sync.Mutex
	cfg     config.Config
	data    map[string]string
	loadErr error
	saveErr error
	saved   []map[string]string
}

func (m *mockConfigStore) Load() (config.Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg, m.loadErr
}

func (m *mockConfigStore) List() (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	out := make(map[string]string, len(m.data))
	maps.Copy(out, m.data)
	return out, nil
}

func (m *mockConfigStore) SaveAll(values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, maps.Clone(values))
	if m.data == nil {
		m.data = make(map[string]string)
	}
	maps.Copy(m.data, values)
	return nil
}

func (m *mockConfigStore) SavedCalls() []map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]map[string]string(nil), m.saved...)
}

// ---------------------------------------------------------------------------
// mockClient - scripted Jenkins API
// ---------------------------------------------------------------------------

type mockClient struct {
	mu    sync.Mutex
	calls int

	JobsFunc       func(ctx context.Context) ([]jenkins.Job, error)
	BuildFunc      func(ctx context.Context, job string, number int) (jenkins.Build, error)
	LastBuildsFunc func(ctx context.Context, jobs []string, parallel int) ([]jenkins.Build, error)
}

func (m *mockClient) record() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
}

func (m *mockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *mockClient) BaseURL() string { return "http://jenkins.test" }

func (m *mockClient) Jobs(ctx context.Context) ([]jenkins.Job, error) {
	m.record()
	if m.JobsFunc != nil {
		return m.JobsFunc(ctx)
	}
	return nil, nil
}

func (m *mockClient) Build(ctx context.Context, job string, number int) (jenkins.Build, error) {
	m.record()
	if m.BuildFunc != nil {
		return m.BuildFunc(ctx, job, number)
	}
	return jenkins.Build{Job: job, Number: number}, nil
}

func (m *mockClient) LastBuilds(ctx context.Context, jobs []string, parallel int) ([]jenkins.Build, error) {
	m.record()
	if m.LastBuildsFunc != nil {
		return m.LastBuildsFunc(ctx, jobs, parallel)
	}
	return nil, nil
}

var _ Client = (*mockClient)(nil)

// ---------------------------------------------------------------------------
// mockClientFactory - records the settings of every client created
// ---------------------------------------------------------------------------

type mockClientFactory struct {
	mu       sync.Mutex
	client   *mockClient
	err      error
	settings []ClientSettings
}

func (m *mockClientFactory) NewClient(s ClientSettings) (Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = append(m.settings, s)
	if m.err != nil {
		return nil, m.err
	}
	return m.client, nil
}

func (m *mockClientFactory) Settings() []ClientSettings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ClientSettings(nil), m.settings...)
}

// ---------------------------------------------------------------------------
// mockHostFactory / mockHost - scripted prompt answers
// ---------------------------------------------------------------------------

// hostChoice is the scripted answer to one prompt.
// An empty label shows the prompt without activating any action.
type hostChoice struct {
	label  string
	values map[string]string
	err    error
}

type mockHostFactory struct {
	mu      sync.Mutex
	choices []hostChoice
	hosts   []*mockHost
	plain   []bool
}

func (m *mockHostFactory) NewHost(plain bool) recovery.Host {
	m.mu.Lock()
	defer m.mu.Unlock()
	var c hostChoice
	if len(m.choices) > 0 {
		c, m.choices = m.choices[0], m.choices[1:]
	}
	h := &mockHost{choice: c}
	m.hosts = append(m.hosts, h)
	m.plain = append(m.plain, plain)
	return h
}

func (m *mockHostFactory) Hosts() []*mockHost {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*mockHost(nil), m.hosts...)
}

type mockHost struct {
	mu      sync.Mutex
	choice  hostChoice
	fields  []recovery.Field
	actions []recovery.Action
	title   string
	message string
}

func (h *mockHost) AddField(f recovery.Field) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fields = append(h.fields, f)
}

func (h *mockHost) AddAction(a recovery.Action) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.actions = append(h.actions, a)
}

func (h *mockHost) Show(_ context.Context, title, message string) error {
	h.mu.Lock()
	h.title, h.message = title, message
	choice := h.choice
	actions := append([]recovery.Action(nil), h.actions...)
	h.mu.Unlock()

	if choice.err != nil {
		return choice.err
	}
	for _, a := range actions {
		if a.Label == choice.label {
			a.Handler(choice.values)
		}
	}
	return nil
}

func (h *mockHost) Labels() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	labels := make([]string, len(h.actions))
	for i, a := range h.actions {
		labels[i] = a.Label
	}
	return labels
}

func (h *mockHost) Message() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.message
}

// Compile-time interface verification.
var (
	_ ConfigStore   = (*mockConfigStore)(nil)
	_ ClientFactory = (*mockClientFactory)(nil)
	_ HostFactory   = (*mockHostFactory)(nil)
	_ recovery.Host = (*mockHost)(nil)
)
