package exec

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// MockResponse is the canned result of a mocked command.
type MockResponse struct {
	Stdout []byte
	Stderr []byte
	Err    error
}

// Call records one command issued through a MockExecutor.
type Call struct {
	Dir  string
	Name string
	Args []string
	Env  []string
}

// String renders the call as a shell-like command line.
func (c Call) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// MatchFunc decides whether a rule applies to a command.
type MatchFunc func(dir, name string, args []string) bool

type rule struct {
	match   MatchFunc
	respond func(Call) MockResponse
}

// MockExecutor answers commands from a list of rules. Rules are checked in
// the order they were added and the first match wins. Commands matching no
// rule are passed to the fallback executor, or fail when there is none.
type MockExecutor struct {
	mu       sync.Mutex
	rules    []rule
	calls    []Call
	fallback CommandExecutor
}

// NewMockExecutor creates a mock. fallback may be nil.
func NewMockExecutor(fallback CommandExecutor) *MockExecutor {
	return &MockExecutor{fallback: fallback}
}

// AddExactMatch answers resp when name and args match exactly.
func (m *MockExecutor) AddExactMatch(name string, args []string, resp MockResponse) {
	m.AddRule(func(_, n string, a []string) bool {
		return n == name && slices.Equal(a, args)
	}, resp)
}

// AddPrefixMatch answers resp when name matches and args start with prefix.
func (m *MockExecutor) AddPrefixMatch(name string, prefix []string, resp MockResponse) {
	m.AddRule(func(_, n string, a []string) bool {
		return n == name && len(a) >= len(prefix) && slices.Equal(a[:len(prefix)], prefix)
	}, resp)
}

// AddRule answers resp for every command accepted by match.
func (m *MockExecutor) AddRule(match MatchFunc, resp MockResponse) {
	m.AddHandler(match, func(Call) MockResponse { return resp })
}

// AddHandler computes the response per call, for commands whose answer must
// change over time (for example a conflict list before and after resolution).
func (m *MockExecutor) AddHandler(match MatchFunc, respond func(Call) MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append(m.rules, rule{match: match, respond: respond})
}

// Calls returns a copy of every command issued so far.
func (m *MockExecutor) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.calls)
}

// CallCount returns how many issued commands satisfy match.
func (m *MockExecutor) CallCount(match MatchFunc) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if match(c.Dir, c.Name, c.Args) {
			n++
		}
	}
	return n
}

func (m *MockExecutor) lookup(call Call) (MockResponse, bool) {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	var found *rule
	for i := range m.rules {
		if m.rules[i].match(call.Dir, call.Name, call.Args) {
			found = &m.rules[i]
			break
		}
	}
	m.mu.Unlock()

	if found == nil {
		return MockResponse{}, false
	}
	return found.respond(call), true
}

func (m *MockExecutor) Run(ctx context.Context, dir, name string, args ...string) ([]byte, []byte, error) {
	return m.RunWithEnv(ctx, dir, nil, name, args...)
}

func (m *MockExecutor) RunWithEnv(ctx context.Context, dir string, env []string, name string, args ...string) ([]byte, []byte, error) {
	resp, ok := m.lookup(Call{Dir: dir, Name: name, Args: args, Env: env})
	if !ok {
		if m.fallback != nil {
			return m.fallback.RunWithEnv(ctx, dir, env, name, args...)
		}
		return nil, nil, fmt.Errorf("mock: no rule for %q", name+" "+strings.Join(args, " "))
	}
	return resp.Stdout, resp.Stderr, resp.Err
}

func (m *MockExecutor) Output(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	stdout, _, err := m.Run(ctx, dir, name, args...)
	return stdout, err
}

func (m *MockExecutor) CombinedOutput(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	stdout, stderr, err := m.Run(ctx, dir, name, args...)
	return append(stdout, stderr...), err
}
