// Package searchui holds the search page state machine and the rules used to
// render its result area, shared by the no-script page and the CLI.
package searchui

import (
	"strings"
	"sync"

	"addictiontube/internal/search"
)

type State int

const (
	Idle State = iota
	Searching
	Rendered
	ErrorShown
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Searching:
		return "searching"
	case Rendered:
		return "rendered"
	case ErrorShown:
		return "error"
	}
	return "unknown"
}

// Rendered messages.
const (
	MsgSearching  = "Searching..."
	MsgNoResults  = "No results found."
	MsgFetchError = "Error fetching results."
)

// View is what the result area shows.
type View struct {
	State State
	// Message is set in Searching and ErrorShown.
	Message string
	Results []search.Result
}

// Machine tracks one result area. Responses are applied in arrival order;
// an earlier submission answering late overwrites a newer one.
type Machine struct {
	mu   sync.Mutex
	view View
}

func NewMachine() *Machine { return &Machine{} }

func (m *Machine) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view
}

// Submit trims the query and, unless it is empty, moves to Searching and
// returns the request to send. An empty query leaves the state untouched.
func (m *Machine) Submit(query, category string) (search.Request, bool) {
	q := strings.TrimSpace(query)
	if q == "" {
		return search.Request{}, false
	}

	m.mu.Lock()
	m.view = View{State: Searching, Message: MsgSearching}
	m.mu.Unlock()
	return search.Request{Query: q, Category: category}, true
}

// Receive applies a response body.
func (m *Machine) Receive(body []byte) View {
	p, err := search.Decode(body)
	if err != nil {
		return m.Fail(err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if p.Failed() {
		m.view = View{State: ErrorShown, Message: "Error: " + p.Err.Error}
		return m.view
	}
	m.view = View{State: Rendered, Results: p.Results}
	return m.view
}

// Fail records a network or decode failure. The cause is not shown.
func (m *Machine) Fail(error) View {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.view = View{State: ErrorShown, Message: MsgFetchError}
	return m.view
}
