package usecase

import (
	"context"
	"errors"
	"strings"

	"flightbot-service/internal/domain/entity"
	"flightbot-service/pkg/logger"
	"flightbot-service/pkg/metrics"
	"flightbot-service/pkg/utils"
)

// QueryParser turns free text into a flight query draft
type QueryParser interface {
	Parse(ctx context.Context, text string) (*entity.FlightQuery, error)
}

// FlightSearcher executes a complete query
type FlightSearcher interface {
	Search(ctx context.Context, q *entity.FlightQuery) (*SearchOutcome, error)
}

// FlightFlow is the flight search state machine. It reads the turn's conversation and
// returns the next one; storing it is up to the caller.
type FlightFlow struct {
	parser   QueryParser
	searcher FlightSearcher
	signals  *SignalRecorder
	metrics  *metrics.Metrics
	pageSize int
	logger   logger.Logger
}

// NewFlightFlow creates a new flight flow
func NewFlightFlow(
	parser QueryParser,
	searcher FlightSearcher,
	signals *SignalRecorder,
	metrics *metrics.Metrics,
	pageSize int,
	logger logger.Logger,
) *FlightFlow {
	if pageSize <= 0 {
		pageSize = utils.DefaultPageSize
	}
	return &FlightFlow{
		parser:   parser,
		searcher: searcher,
		signals:  signals,
		metrics:  metrics,
		pageSize: pageSize,
		logger:   logger,
	}
}

// StartsQuery reports whether text opens a new flight search
func StartsQuery(text string) bool {
	return strings.Contains(text, "flight")
}

// Handle advances the conversation by one turn
func (f *FlightFlow) Handle(ctx context.Context, turn *Turn) Outcome {
	c := turn.Conversation

	if turn.Command == CommandCancel {
		return Clear(MsgCancelled)
	}

	// New query text wins over whatever state the user was in
	if turn.Command == CommandNone && StartsQuery(turn.Text) {
		return f.startQuery(ctx, turn)
	}

	if c == nil || c.Intent != entity.IntentFlightSearch {
		return Keep(MsgUsage)
	}

	switch c.State {
	case entity.StateChoosingTripType:
		return f.handleTripType(turn)
	case entity.StateCollecting:
		return f.handleCollecting(ctx, turn)
	case entity.StateReadyToConfirm, entity.StateAwaitingReconfirmation:
		return f.handleConfirmation(ctx, turn)
	case entity.StateAwaitingNewDate:
		return f.handleNewDate(turn)
	case entity.StateAwaitingNewOrigin, entity.StateAwaitingNewDestination:
		return f.handleNewPlace(ctx, turn)
	case entity.StateAwaitingCabinClass:
		return f.handleCabinClass(turn)
	case entity.StateResults:
		return f.handleResults(ctx, turn)
	case entity.StateResultsChange:
		return f.handleResultsChange(ctx, turn)
	}

	turn.Logger.Error("Conversation in unknown state", "state", c.State)
	return Clear(MsgMissingDetails)
}

// startQuery parses a "flight ..." message into a fresh conversation
func (f *FlightFlow) startQuery(ctx context.Context, turn *Turn) Outcome {
	if turn.Text == "flight" || turn.Text == "flights" {
		return Set(entity.NewTripTypeMenu(), MsgTripTypeMenu)
	}

	q, out, ok := f.parse(ctx, turn, turn.RawText, MsgUsage)
	if !ok {
		return out
	}

	turn.Logger.Info("Flight query parsed",
		"tripType", q.TripType,
		"origin", q.Origin.SearchCode(),
		"destination", q.Destination.SearchCode(),
		"date", q.Date,
		"returnDate", q.ReturnDate)

	if q.Date == "" {
		return Set(entity.NewCollecting(q, entity.ChangeNone), MsgDatePrompt)
	}
	return Set(entity.NewReadyToConfirm(q), ConfirmationMessage(q))
}

// parse runs the parser and maps its failures to replies that leave the state unchanged.
// unparsed is sent when the text is not a recognisable query.
func (f *FlightFlow) parse(ctx context.Context, turn *Turn, text, unparsed string) (*entity.FlightQuery, Outcome, bool) {
	q, err := f.parser.Parse(ctx, text)
	switch {
	case errors.Is(err, utils.ErrUnknownLocation):
		return nil, Keep(MsgUnknownLocation), false
	case errors.Is(err, utils.ErrInvalidReturnDate):
		return nil, Keep(MsgReturnOrder), false
	case err != nil:
		turn.Logger.Error("Failed to parse flight query", "error", err)
		f.metrics.ErrorsCount.WithLabelValues("parse").Inc()
		return nil, Keep(MsgProviderDown), false
	case q == nil:
		return nil, Keep(unparsed), false
	}
	return q, Outcome{}, true
}

func (f *FlightFlow) handleTripType(turn *Turn) Outcome {
	switch turn.Text {
	case "1", "one way", "one-way", "oneway":
		return Set(entity.NewCollecting(entity.NewFlightQuery(entity.TripTypeOneWay), entity.ChangeNone), MsgRoutePrompt)
	case "2", "3", "round trip", "round-trip", "multi city", "multi-city":
		return Keep(MsgComingSoon)
	}
	return Keep(MsgTripTypeMenu)
}

func (f *FlightFlow) handleCollecting(ctx context.Context, turn *Turn) Outcome {
	c := turn.Conversation
	q := c.FlightQuery

	if c.ChangeTarget == entity.ChangePending {
		target, ok := turn.Command.Target()
		if !ok {
			target, ok = ParseField(turn.Text)
		}
		if !ok {
			return Keep(MsgChangeWhat)
		}
		state, _ := target.AwaitingState()
		return Set(entity.NewAwaiting(state, q), ChangePrompt(target))
	}

	if !q.HasRoute() {
		return f.collectRoute(ctx, turn)
	}

	date, ok := utils.ParseISODate(turn.Text)
	if !ok {
		return Keep(MsgDatePrompt)
	}
	if q.ReturnDate != "" && !entity.DateBefore(date, q.ReturnDate) {
		return Keep(DepartureAfterReturnMessage(q.ReturnDate))
	}

	next := q.Clone()
	next.Date = date
	return Set(entity.NewReadyToConfirm(next), ConfirmationMessage(next))
}

// collectRoute reads "mumbai to new york" style replies
func (f *FlightFlow) collectRoute(ctx context.Context, turn *Turn) Outcome {
	q := turn.Conversation.FlightQuery

	parsed, out, ok := f.parse(ctx, turn, "flight from "+turn.Text, MsgRoutePrompt)
	if !ok {
		return out
	}

	next := q.Clone()
	next.Origin = parsed.Origin
	next.Destination = parsed.Destination
	if parsed.Date != "" {
		next.Date = parsed.Date
	}
	if parsed.ReturnDate != "" {
		next.ReturnDate = parsed.ReturnDate
		next.TripType = parsed.TripType
	}
	if err := next.ValidateDates(); err != nil {
		return Keep(MsgReturnOrder)
	}

	if !next.IsComplete() {
		return Set(entity.NewCollecting(next, entity.ChangeNone), MsgDatePrompt)
	}
	return Set(entity.NewReadyToConfirm(next), ConfirmationMessage(next))
}

// handleConfirmation serves READY_TO_CONFIRM and AWAITING_RECONFIRMATION
func (f *FlightFlow) handleConfirmation(ctx context.Context, turn *Turn) Outcome {
	c := turn.Conversation
	q := c.FlightQuery

	switch turn.Command {
	case CommandYes:
		return f.confirm(ctx, turn, q)

	case CommandChange:
		return Set(entity.NewCollecting(q, entity.ChangePending), MsgChangeWhat)

	case CommandChangeDate, CommandChangeOrigin, CommandChangeDestination, CommandChangeClass:
		target, _ := turn.Command.Target()
		state, _ := target.AwaitingState()
		return Set(entity.NewAwaiting(state, q), ChangePrompt(target))

	case CommandRemoveReturn:
		next := q.Clone()
		next.ReturnDate = ""
		next.TripType = entity.TripTypeOneWay
		if c.State == entity.StateReadyToConfirm {
			return Set(entity.NewReadyToConfirm(next), ConfirmationMessage(next))
		}
		return Set(entity.NewAwaiting(entity.StateAwaitingReconfirmation, next), ConfirmationMessage(next))
	}

	return Keep(ConfirmationMessage(q))
}

// confirm runs the pre-search checks and then the search
func (f *FlightFlow) confirm(ctx context.Context, turn *Turn, q *entity.FlightQuery) Outcome {
	if !q.IsComplete() {
		turn.Logger.Error("Confirmed query is incomplete",
			"state", turn.Conversation.State,
			"hasOrigin", q.Origin != nil,
			"hasDestination", q.Destination != nil,
			"date", q.Date)
		return Clear(MsgMissingDetails)
	}
	if q.TripType == entity.TripTypeMultiCity {
		return Keep(MsgMultiCityUnsupported)
	}
	if q.ReturnDate != "" {
		return Keep(MsgReturnUnsupported)
	}

	return f.search(ctx, turn, q)
}

// search executes q. Failures and empty answers leave the stored state as it was.
func (f *FlightFlow) search(ctx context.Context, turn *Turn, q *entity.FlightQuery) Outcome {
	turn.Logger.Info("Executing flight search",
		"fromState", turn.Conversation.State,
		"origin", q.Origin.SearchCode(),
		"destination", q.Destination.SearchCode(),
		"date", q.Date,
		"cabinClass", q.CabinClass)

	result, err := f.searcher.Search(ctx, q)
	if err != nil {
		turn.Logger.Error("Flight search failed", "error", err)
		return Keep(MsgProviderDown)
	}

	f.signals.Record(ctx, entity.SignalSearchExecuted, turn.From, turn.RequestID, map[string]interface{}{
		"origin":      result.Executed.OriginCode,
		"destination": result.Executed.DestinationCode,
		"date":        result.Executed.Date,
		"results":     len(result.Items),
	})

	if len(result.Items) == 0 {
		return Keep(MsgNoFlights)
	}

	text, page := utils.FirstPage(result.Items, f.pageSize)
	next := entity.NewResults(q, q, page, result.Executed)
	return Set(next, ResultsMessage(q, text, page.Exhausted()))
}

func (f *FlightFlow) handleNewDate(turn *Turn) Outcome {
	q := turn.Conversation.FlightQuery

	date, ok := utils.ParseISODate(turn.Text)
	if !ok {
		return Keep(MsgDatePrompt)
	}
	if q.ReturnDate != "" && !entity.DateBefore(date, q.ReturnDate) {
		return Keep(DepartureAfterReturnMessage(q.ReturnDate))
	}

	next := q.Clone()
	next.Date = date
	return Set(entity.NewAwaiting(entity.StateAwaitingReconfirmation, next), ConfirmationMessage(next))
}

func (f *FlightFlow) handleNewPlace(ctx context.Context, turn *Turn) Outcome {
	c := turn.Conversation

	target := entity.ChangeOrigin
	if c.State == entity.StateAwaitingNewDestination {
		target = entity.ChangeDestination
	}

	next, out, ok := f.replacePlace(ctx, turn, c.FlightQuery, target)
	if !ok {
		return out
	}
	return Set(entity.NewAwaiting(entity.StateAwaitingReconfirmation, next), ConfirmationMessage(next))
}

// replacePlace re-resolves one end of the route through a synthetic query and keeps the other end
func (f *FlightFlow) replacePlace(ctx context.Context, turn *Turn, q *entity.FlightQuery, target entity.ChangeTarget) (*entity.FlightQuery, Outcome, bool) {
	var text string
	if target == entity.ChangeOrigin {
		text = utils.RouteQueryText(turn.Text, q.Destination.DisplayName())
	} else {
		text = utils.RouteQueryText(q.Origin.DisplayName(), turn.Text)
	}

	parsed, out, ok := f.parse(ctx, turn, text, ChangePrompt(target))
	if !ok {
		return nil, out, false
	}

	next := q.Clone()
	if target == entity.ChangeOrigin {
		next.Origin = parsed.Origin
	} else {
		next.Destination = parsed.Destination
	}

	if next.Origin.SearchCode() == next.Destination.SearchCode() {
		return nil, Keep(MsgSameRoute), false
	}
	return next, Outcome{}, true
}

func (f *FlightFlow) handleCabinClass(turn *Turn) Outcome {
	c := turn.Conversation
	if c.HasExecutedSearch() {
		return Keep(MsgClassLocked)
	}

	class, ok := ParseCabinClass(turn.Text)
	if !ok {
		return Keep(MsgCabinMenu)
	}

	next := c.FlightQuery.Clone()
	next.CabinClass = class
	return Set(entity.NewAwaiting(entity.StateAwaitingReconfirmation, next), ConfirmationMessage(next))
}

func (f *FlightFlow) handleResults(ctx context.Context, turn *Turn) Outcome {
	c := turn.Conversation

	switch turn.Command {
	case CommandShowMore:
		if c.Results == nil {
			return Keep(MsgNoCachedResults)
		}
		text, page, ok := utils.NextPage(c.Results)
		if !ok {
			return Keep(text)
		}
		next := entity.NewResults(c.FlightQuery, c.LockedFlightQuery, page, c.LastExecutedSearch)
		return Set(next, MorePageMessage(text, page.Exhausted()))

	case CommandChange:
		return Set(entity.NewResultsChange(c.FlightQuery, c.LockedFlightQuery, c.LastExecutedSearch, entity.ChangePending), MsgChangeAfter)

	case CommandChangeDate, CommandChangeOrigin, CommandChangeDestination:
		target, _ := turn.Command.Target()
		return Set(entity.NewResultsChange(c.FlightQuery, c.LockedFlightQuery, c.LastExecutedSearch, target), ChangePrompt(target))

	case CommandChangeClass:
		return Keep(MsgClassLocked)

	case CommandRunSearch:
		return f.runSearch(ctx, turn)
	}

	if c.Results == nil {
		return Keep(MsgNoCachedResults)
	}
	return Keep(resultsMoreFooter)
}

// runSearch replays cached results when the query still matches the last execution
func (f *FlightFlow) runSearch(ctx context.Context, turn *Turn) Outcome {
	c := turn.Conversation
	q := c.FlightQuery

	if c.Results != nil && c.LastExecutedSearch.Matches(q) {
		text, page, ok := utils.ReplayPage(c.Results)
		if ok {
			f.metrics.SearchCacheReplays.Inc()
			f.signals.Record(ctx, entity.SignalSearchReplayed, turn.From, turn.RequestID, map[string]interface{}{
				"origin":      c.LastExecutedSearch.OriginCode,
				"destination": c.LastExecutedSearch.DestinationCode,
				"date":        c.LastExecutedSearch.Date,
			})
			next := entity.NewResults(q, c.LockedFlightQuery, page, c.LastExecutedSearch)
			return Set(next, ResultsMessage(q, text, page.Exhausted()))
		}
	}

	return f.confirm(ctx, turn, q)
}

func (f *FlightFlow) handleResultsChange(ctx context.Context, turn *Turn) Outcome {
	c := turn.Conversation
	q := c.FlightQuery

	if c.ChangeTarget == entity.ChangePending {
		target, ok := turn.Command.Target()
		if !ok {
			target, ok = ParseField(turn.Text)
		}
		switch {
		case !ok:
			return Keep(MsgChangeAfter)
		case target == entity.ChangeClass:
			return Keep(MsgClassLocked)
		}
		return Set(entity.NewResultsChange(q, c.LockedFlightQuery, c.LastExecutedSearch, target), ChangePrompt(target))
	}

	if turn.Command == CommandChangeClass {
		return Keep(MsgClassLocked)
	}

	switch c.ChangeTarget {
	case entity.ChangeDate:
		date, ok := utils.ParseISODate(turn.Text)
		if !ok {
			return Keep(MsgDatePrompt)
		}
		if q.ReturnDate != "" && !entity.DateBefore(date, q.ReturnDate) {
			return Keep(DepartureAfterReturnMessage(q.ReturnDate))
		}
		next := q.Clone()
		next.Date = date
		return Set(entity.NewResults(next, c.LockedFlightQuery, nil, c.LastExecutedSearch), AmendedMessage("Date", date))

	case entity.ChangeOrigin, entity.ChangeDestination:
		next, out, ok := f.replacePlace(ctx, turn, q, c.ChangeTarget)
		if !ok {
			return out
		}
		field, label := "Origin", LocationLabel(next.Origin)
		if c.ChangeTarget == entity.ChangeDestination {
			field, label = "Destination", LocationLabel(next.Destination)
		}
		return Set(entity.NewResults(next, c.LockedFlightQuery, nil, c.LastExecutedSearch), AmendedMessage(field, label))
	}

	turn.Logger.Error("Unexpected change target", "target", c.ChangeTarget)
	return Clear(MsgMissingDetails)
}
