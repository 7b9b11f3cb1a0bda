package entity

import (
	"fmt"
)

// Intent of a conversation
type Intent string

const (
	IntentNone         Intent = ""
	IntentFlightSearch Intent = "FLIGHT_SEARCH"
)

// FlowState is the position of a conversation in the flight flow
type FlowState string

const (
	StateChoosingTripType       FlowState = "CHOOSING_TRIP_TYPE"
	StateCollecting             FlowState = "COLLECTING"
	StateReadyToConfirm         FlowState = "READY_TO_CONFIRM"
	StateAwaitingNewDate        FlowState = "AWAITING_NEW_DATE"
	StateAwaitingNewOrigin      FlowState = "AWAITING_NEW_ORIGIN"
	StateAwaitingNewDestination FlowState = "AWAITING_NEW_DESTINATION"
	StateAwaitingCabinClass     FlowState = "AWAITING_CABIN_CLASS"
	StateAwaitingReconfirmation FlowState = "AWAITING_RECONFIRMATION"
	// StateSearching only exists while a search call is in flight and is never stored
	StateSearching     FlowState = "SEARCHING"
	StateResults       FlowState = "RESULTS"
	StateResultsChange FlowState = "RESULTS_CHANGE"
)

// ChangeTarget names the field being amended
type ChangeTarget string

const (
	ChangeNone        ChangeTarget = ""
	ChangePending     ChangeTarget = "pending"
	ChangeDate        ChangeTarget = "date"
	ChangeOrigin      ChangeTarget = "origin"
	ChangeDestination ChangeTarget = "destination"
	ChangeClass       ChangeTarget = "class"
)

// AwaitingState maps an amendment target to the state that collects its new value
func (t ChangeTarget) AwaitingState() (FlowState, bool) {
	switch t {
	case ChangeDate:
		return StateAwaitingNewDate, true
	case ChangeOrigin:
		return StateAwaitingNewOrigin, true
	case ChangeDestination:
		return StateAwaitingNewDestination, true
	case ChangeClass:
		return StateAwaitingCabinClass, true
	}
	return "", false
}

// SearchResultsPage holds formatted offers and the index of the first unseen item
type SearchResultsPage struct {
	Items    []string `json:"items"`
	Cursor   int      `json:"cursor"`
	PageSize int      `json:"pageSize"`
}

// Clone copies the page. Items are never mutated after creation and are shared.
func (p *SearchResultsPage) Clone() *SearchResultsPage {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// Exhausted reports whether every item has been shown
func (p *SearchResultsPage) Exhausted() bool {
	return p == nil || p.Cursor >= len(p.Items)
}

// ExecutedSearch is the key of the last search actually sent to the provider
type ExecutedSearch struct {
	OriginCode      string `json:"originCode"`
	DestinationCode string `json:"destinationCode"`
	Date            string `json:"date"`
	ReturnDate      string `json:"returnDate,omitempty"`
}

// ExecutedSearchFor builds the replay key for a query
func ExecutedSearchFor(q *FlightQuery) *ExecutedSearch {
	if q == nil {
		return nil
	}
	return &ExecutedSearch{
		OriginCode:      q.Origin.SearchCode(),
		DestinationCode: q.Destination.SearchCode(),
		Date:            q.Date,
		ReturnDate:      q.ReturnDate,
	}
}

// Matches reports whether running q would repeat this search
func (s *ExecutedSearch) Matches(q *FlightQuery) bool {
	if s == nil || q == nil {
		return false
	}
	return *s == *ExecutedSearchFor(q)
}

// Conversation is the single piece of state kept per user.
// Values are built with the per-state constructors below so that each state only carries
// the fields meaningful to it.
type Conversation struct {
	Intent             Intent             `json:"intent"`
	Flow               TripType           `json:"flow"`
	State              FlowState          `json:"state"`
	FlightQuery        *FlightQuery       `json:"flightQuery,omitempty"`
	LockedFlightQuery  *FlightQuery       `json:"lockedFlightQuery,omitempty"`
	Results            *SearchResultsPage `json:"results,omitempty"`
	LastExecutedSearch *ExecutedSearch    `json:"lastExecutedSearch,omitempty"`
	ChangeTarget       ChangeTarget       `json:"changeTarget,omitempty"`
}

func newFlightConversation(state FlowState, q *FlightQuery) *Conversation {
	flow := TripTypeOneWay
	if q != nil && q.TripType != "" {
		flow = q.TripType
	}
	return &Conversation{
		Intent:      IntentFlightSearch,
		Flow:        flow,
		State:       state,
		FlightQuery: q.Clone(),
	}
}

// NewTripTypeMenu starts a conversation at the trip type menu
func NewTripTypeMenu() *Conversation {
	return &Conversation{
		Intent: IntentFlightSearch,
		Flow:   TripTypeOneWay,
		State:  StateChoosingTripType,
	}
}

// NewCollecting gathers route or date. target is ChangePending when the user asked to change
// something without naming the field.
func NewCollecting(q *FlightQuery, target ChangeTarget) *Conversation {
	c := newFlightConversation(StateCollecting, q)
	c.ChangeTarget = target
	return c
}

// NewReadyToConfirm holds a complete query waiting for "yes"
func NewReadyToConfirm(q *FlightQuery) *Conversation {
	return newFlightConversation(StateReadyToConfirm, q)
}

// NewAwaiting builds one of the pre-search amendment states or AWAITING_RECONFIRMATION
func NewAwaiting(state FlowState, q *FlightQuery) *Conversation {
	return newFlightConversation(state, q)
}

// NewResults records an executed (or amended) search. results may be nil after an amendment.
func NewResults(q, locked *FlightQuery, results *SearchResultsPage, executed *ExecutedSearch) *Conversation {
	c := newFlightConversation(StateResults, q)
	c.LockedFlightQuery = locked.Clone()
	c.Results = results.Clone()
	if executed != nil {
		e := *executed
		c.LastExecutedSearch = &e
	}
	return c
}

// NewResultsChange amends an already searched query. Cached results are dropped.
func NewResultsChange(q, locked *FlightQuery, executed *ExecutedSearch, target ChangeTarget) *Conversation {
	c := NewResults(q, locked, nil, executed)
	c.State = StateResultsChange
	c.ChangeTarget = target
	return c
}

// HasExecutedSearch reports whether a search already ran for this conversation.
// Cabin class is immutable from then on.
func (c *Conversation) HasExecutedSearch() bool {
	return c != nil && c.LastExecutedSearch != nil
}

// Clone returns a copy safe to hand out of the store
func (c *Conversation) Clone() *Conversation {
	if c == nil {
		return nil
	}
	out := *c
	out.FlightQuery = c.FlightQuery.Clone()
	out.LockedFlightQuery = c.LockedFlightQuery.Clone()
	out.Results = c.Results.Clone()
	if c.LastExecutedSearch != nil {
		e := *c.LastExecutedSearch
		out.LastExecutedSearch = &e
	}
	return &out
}

// Validate rejects field combinations that no state allows
func (c *Conversation) Validate() error {
	if c == nil {
		return fmt.Errorf("conversation is nil")
	}

	switch c.State {
	case StateChoosingTripType:
		if c.FlightQuery != nil {
			return fmt.Errorf("state %s must not carry a query", c.State)
		}
	case StateCollecting, StateReadyToConfirm, StateAwaitingNewDate, StateAwaitingNewOrigin,
		StateAwaitingNewDestination, StateAwaitingCabinClass, StateAwaitingReconfirmation,
		StateResults, StateResultsChange:
		if c.FlightQuery == nil {
			return fmt.Errorf("state %s requires a query", c.State)
		}
	case StateSearching:
		return fmt.Errorf("state %s is transient and cannot be stored", c.State)
	default:
		return fmt.Errorf("unknown state %q", c.State)
	}

	inResults := c.State == StateResults || c.State == StateResultsChange
	if !inResults && (c.Results != nil || c.LastExecutedSearch != nil || c.LockedFlightQuery != nil) {
		return fmt.Errorf("state %s must not carry search results", c.State)
	}
	if c.State == StateResultsChange && c.Results != nil {
		return fmt.Errorf("state %s must not carry cached results", c.State)
	}
	if c.Results != nil && (c.Results.Cursor < 0 || c.Results.Cursor > len(c.Results.Items)) {
		return fmt.Errorf("results cursor %d out of range [0,%d]", c.Results.Cursor, len(c.Results.Items))
	}

	switch c.ChangeTarget {
	case ChangeNone:
		if c.State == StateResultsChange {
			return fmt.Errorf("state %s requires a change target", c.State)
		}
	case ChangePending:
		if c.State != StateCollecting && c.State != StateResultsChange {
			return fmt.Errorf("pending change not allowed in state %s", c.State)
		}
	case ChangeDate, ChangeOrigin, ChangeDestination:
		if c.State != StateResultsChange {
			return fmt.Errorf("change target %s not allowed in state %s", c.ChangeTarget, c.State)
		}
	default:
		return fmt.Errorf("change target %s not allowed in state %s", c.ChangeTarget, c.State)
	}

	if c.FlightQuery != nil {
		if err := c.FlightQuery.ValidateDates(); err != nil {
			return err
		}
	}

	return nil
}
