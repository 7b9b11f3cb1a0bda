package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flightbot-service/internal/domain/entity"
	"flightbot-service/internal/interface/repository"
	"flightbot-service/pkg/logger"
	"flightbot-service/pkg/metrics"
	"flightbot-service/pkg/utils"
)

const testUser = "919876543210"

type stubLocations map[string]*entity.Location

func (s stubLocations) Resolve(_ context.Context, query string) (*entity.Location, error) {
	return s[strings.ToLower(strings.TrimSpace(query))], nil
}

func testLocations() stubLocations {
	delhi := &entity.Location{CityCode: "DEL", AirportCode: "DEL", CityName: "Delhi", Type: entity.LocationTypeAirport}
	london := &entity.Location{CityCode: "LON", AirportCode: "LHR", CityName: "London", Type: entity.LocationTypeAirport}
	mumbai := &entity.Location{CityCode: "BOM", AirportCode: "BOM", CityName: "Mumbai", Type: entity.LocationTypeAirport}
	return stubLocations{
		"delhi":  delhi,
		"london": london,
		"mumbai": mumbai,
	}
}

type fakeOffers struct {
	mu     sync.Mutex
	offers []entity.FlightOffer
	err    error
	params []entity.FlightSearchParams
}

func (f *fakeOffers) Search(_ context.Context, params entity.FlightSearchParams) (*entity.FlightSearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.params = append(f.params, params)
	if f.err != nil {
		return nil, f.err
	}
	return &entity.FlightSearchResult{
		Flights:  f.offers,
		Carriers: map[string]string{"AI": "AIR INDIA"},
	}, nil
}

func (f *fakeOffers) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.params)
}

func (f *fakeOffers) last() entity.FlightSearchParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.params[len(f.params)-1]
}

func makeOffers(n int) []entity.FlightOffer {
	offers := make([]entity.FlightOffer, n)
	for i := range offers {
		offers[i] = entity.FlightOffer{
			ID: fmt.Sprintf("%d", i+1),
			Itineraries: []entity.Itinerary{{
				Duration: "PT9H",
				Segments: []entity.Segment{{
					CarrierCode: "AI",
					Number:      fmt.Sprintf("%d", 100+i),
					Departure:   entity.FlightPoint{IataCode: "DEL", At: fmt.Sprintf("2025-12-10T%02d:00:00", 6+i)},
					Arrival:     entity.FlightPoint{IataCode: "LHR", At: fmt.Sprintf("2025-12-10T%02d:00:00", 15+i)},
				}},
			}},
			Price: entity.OfferPrice{Total: "50000", Currency: "INR"},
		}
	}
	return offers
}

type flowHarness struct {
	t       *testing.T
	flow    *FlightFlow
	repo    *repository.MemoryConversationRepository
	offers  *fakeOffers
	metrics *metrics.Metrics
}

func newFlowHarness(t *testing.T) *flowHarness {
	t.Helper()
	log := logger.NewNopLogger()
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	offers := &fakeOffers{offers: makeOffers(5)}

	parser := utils.NewFlightQueryParser(testLocations(), log)
	searcher := NewFlightSearchService(offers, nil, m, log)

	return &flowHarness{
		t:       t,
		flow:    NewFlightFlow(parser, searcher, NewSignalRecorder(nil, log), m, 3, log),
		repo:    repository.NewMemoryConversationRepository(time.Hour, log),
		offers:  offers,
		metrics: m,
	}
}

// say runs one turn and stores the outcome the way the processor does
func (h *flowHarness) say(text string) Outcome {
	h.t.Helper()
	ctx := context.Background()

	conversation, err := h.repo.Get(ctx, testUser)
	require.NoError(h.t, err)

	msg := entity.NewInboundMessage("wamid.test", testUser, text)
	out := h.flow.Handle(ctx, &Turn{
		From:         testUser,
		RawText:      msg.RawText,
		Text:         NormalizeText(msg.Text),
		Command:      ParseCommand(msg.Text),
		Conversation: conversation,
		Logger:       logger.NewNopLogger(),
	})

	switch out.Action {
	case ActionSet:
		require.NoError(h.t, h.repo.Set(ctx, testUser, out.Next), "stored state must be valid after %q", text)
	case ActionClear:
		require.NoError(h.t, h.repo.Clear(ctx, testUser))
	}
	require.NotEmpty(h.t, out.Messages, "every turn replies")
	return out
}

func (h *flowHarness) conversation() *entity.Conversation {
	c, err := h.repo.Get(context.Background(), testUser)
	require.NoError(h.t, err)
	return c
}

func (h *flowHarness) reachResults() {
	h.t.Helper()
	h.say("flight from delhi to london on 2025-12-10")
	h.say("yes")
	require.Equal(h.t, entity.StateResults, h.conversation().State)
}

func TestFlightFlow_SearchAndPaginate(t *testing.T) {
	h := newFlowHarness(t)

	out := h.say("flight from delhi to london on 2025-12-10")
	c := h.conversation()
	require.Equal(t, entity.StateReadyToConfirm, c.State)
	assert.Contains(t, out.Messages[0], "From: Delhi (DEL)")
	assert.Contains(t, out.Messages[0], "To: London (LON)")
	assert.Contains(t, out.Messages[0], "Departure: 2025-12-10")

	out = h.say("yes")
	c = h.conversation()
	require.Equal(t, entity.StateResults, c.State)
	assert.Equal(t, 1, h.offers.calls())
	assert.Equal(t, "DEL", h.offers.last().OriginCode)
	assert.Equal(t, "LON", h.offers.last().DestinationCode)
	assert.Equal(t, entity.CabinEconomy, h.offers.last().CabinClass)
	assert.Contains(t, out.Messages[0], "1. AIR INDIA")
	assert.Contains(t, out.Messages[0], "3. AIR INDIA")
	assert.NotContains(t, out.Messages[0], "4. AIR INDIA")
	assert.Equal(t, 3, c.Results.Cursor)
	assert.Equal(t, c.FlightQuery, c.LockedFlightQuery)
	assert.True(t, c.LastExecutedSearch.Matches(c.FlightQuery))

	out = h.say("show more")
	assert.Contains(t, out.Messages[0], "4. AIR INDIA")
	assert.Contains(t, out.Messages[0], "5. AIR INDIA")
	assert.Equal(t, 5, h.conversation().Results.Cursor)

	for i := 0; i < 2; i++ {
		out = h.say("show more")
		assert.Equal(t, utils.NoMoreResultsNotice, out.Messages[0])
		assert.Equal(t, ActionKeep, out.Action)
		assert.Equal(t, 5, h.conversation().Results.Cursor)
	}
	assert.Equal(t, 1, h.offers.calls())
}

func TestFlightFlow_RunSearchReplaysCache(t *testing.T) {
	h := newFlowHarness(t)
	h.reachResults()
	h.say("show more")

	out := h.say("run search")
	assert.Equal(t, 1, h.offers.calls(), "no second provider call")
	assert.Contains(t, out.Messages[0], "1. AIR INDIA")
	assert.Equal(t, 3, h.conversation().Results.Cursor)
	assert.Equal(t, float64(1), testutil.ToFloat64(h.metrics.SearchCacheReplays))
}

func TestFlightFlow_AmendThenRunSearchExecutes(t *testing.T) {
	h := newFlowHarness(t)
	h.reachResults()

	out := h.say("change date")
	c := h.conversation()
	require.Equal(t, entity.StateResultsChange, c.State)
	assert.Equal(t, entity.ChangeDate, c.ChangeTarget)
	assert.Nil(t, c.Results)
	assert.Equal(t, MsgDatePrompt, out.Messages[0])

	out = h.say("12-12-2025")
	assert.Equal(t, MsgDatePrompt, out.Messages[0])

	out = h.say("2025-12-12")
	c = h.conversation()
	require.Equal(t, entity.StateResults, c.State)
	assert.Nil(t, c.Results)
	assert.Equal(t, entity.ChangeNone, c.ChangeTarget)
	assert.Equal(t, "2025-12-12", c.FlightQuery.Date)
	assert.Equal(t, "2025-12-10", c.LockedFlightQuery.Date)
	assert.Contains(t, out.Messages[0], "run search")

	h.say("run search")
	c = h.conversation()
	assert.Equal(t, 2, h.offers.calls())
	assert.Equal(t, "2025-12-12", h.offers.last().Date)
	assert.Equal(t, "2025-12-12", c.LastExecutedSearch.Date)
	assert.Equal(t, "2025-12-12", c.LockedFlightQuery.Date)
	assert.NotNil(t, c.Results)
}

func TestFlightFlow_AmendOriginAfterResults(t *testing.T) {
	h := newFlowHarness(t)
	h.reachResults()

	h.say("change")
	require.Equal(t, entity.ChangePending, h.conversation().ChangeTarget)

	out := h.say("class")
	assert.Equal(t, MsgClassLocked, out.Messages[0])

	h.say("origin")
	require.Equal(t, entity.ChangeOrigin, h.conversation().ChangeTarget)

	out = h.say("london")
	assert.Equal(t, MsgSameRoute, out.Messages[0])
	assert.Equal(t, entity.StateResultsChange, h.conversation().State)

	out = h.say("mumbai")
	assert.Contains(t, out.Messages[0], "Mumbai (BOM)")

	h.say("run search")
	assert.Equal(t, 2, h.offers.calls())
	assert.Equal(t, "BOM", h.offers.last().OriginCode)
	assert.Equal(t, "LON", h.offers.last().DestinationCode)
}

func TestFlightFlow_SameKeyWithoutCachedResultsExecutes(t *testing.T) {
	h := newFlowHarness(t)
	h.reachResults()

	h.say("change date")
	h.say("2025-12-10")
	h.say("run search")

	assert.Equal(t, 2, h.offers.calls())
	assert.NotNil(t, h.conversation().Results)
}

func TestFlightFlow_CabinClassLockedAfterSearch(t *testing.T) {
	h := newFlowHarness(t)
	h.reachResults()
	before := h.conversation()

	out := h.say("change class")
	assert.Equal(t, MsgClassLocked, out.Messages[0])
	assert.Equal(t, ActionKeep, out.Action)
	assert.Equal(t, before, h.conversation())

	h.say("change date")
	out = h.say("change class")
	assert.Equal(t, MsgClassLocked, out.Messages[0])
	assert.Equal(t, entity.CabinEconomy, h.conversation().FlightQuery.CabinClass)
}

func TestFlightFlow_CabinClassBeforeSearch(t *testing.T) {
	h := newFlowHarness(t)
	h.say("flight from delhi to london on 2025-12-10")

	out := h.say("change class")
	assert.Equal(t, MsgCabinMenu, out.Messages[0])
	require.Equal(t, entity.StateAwaitingCabinClass, h.conversation().State)

	h.say("9")
	require.Equal(t, entity.StateAwaitingCabinClass, h.conversation().State)

	out = h.say("3")
	c := h.conversation()
	require.Equal(t, entity.StateAwaitingReconfirmation, c.State)
	assert.Equal(t, entity.CabinBusiness, c.FlightQuery.CabinClass)
	assert.Contains(t, out.Messages[0], "Class: Business")

	h.say("yes")
	assert.Equal(t, entity.CabinBusiness, h.offers.last().CabinClass)
	assert.Equal(t, entity.StateResults, h.conversation().State)
}

func TestFlightFlow_ZeroOffersKeepsState(t *testing.T) {
	h := newFlowHarness(t)
	h.offers.offers = nil

	h.say("flight from delhi to london on 2025-12-10")
	before := h.conversation()

	out := h.say("yes")
	assert.Equal(t, MsgNoFlights, out.Messages[0])
	assert.Equal(t, ActionKeep, out.Action)
	assert.Equal(t, before, h.conversation())
}

func TestFlightFlow_ProviderFailureKeepsState(t *testing.T) {
	h := newFlowHarness(t)
	h.offers.err = errors.New("503")

	h.say("flight from delhi to london on 2025-12-10")
	out := h.say("yes")
	assert.Equal(t, MsgProviderDown, out.Messages[0])
	assert.Equal(t, entity.StateReadyToConfirm, h.conversation().State)
}

func TestFlightFlow_CancelFromResultsChange(t *testing.T) {
	h := newFlowHarness(t)
	h.reachResults()
	h.say("change destination")
	require.Equal(t, entity.StateResultsChange, h.conversation().State)

	out := h.say("Cancel")
	assert.Equal(t, MsgCancelled, out.Messages[0])
	assert.Nil(t, h.conversation())
}

func TestFlightFlow_CollectDateForDatelessQuery(t *testing.T) {
	h := newFlowHarness(t)

	out := h.say("flight delhi to london")
	require.Equal(t, entity.StateCollecting, h.conversation().State)
	assert.Equal(t, MsgDatePrompt, out.Messages[0])

	out = h.say("tomorrow")
	assert.Equal(t, MsgDatePrompt, out.Messages[0])
	assert.Equal(t, ActionKeep, out.Action)

	h.say("2025-12-10")
	c := h.conversation()
	require.Equal(t, entity.StateReadyToConfirm, c.State)
	assert.Equal(t, "2025-12-10", c.FlightQuery.Date)
}

func TestFlightFlow_TripTypeMenu(t *testing.T) {
	h := newFlowHarness(t)

	out := h.say("flights")
	assert.Equal(t, MsgTripTypeMenu, out.Messages[0])
	require.Equal(t, entity.StateChoosingTripType, h.conversation().State)

	out = h.say("2")
	assert.Equal(t, MsgComingSoon, out.Messages[0])

	out = h.say("1")
	assert.Equal(t, MsgRoutePrompt, out.Messages[0])
	require.Equal(t, entity.StateCollecting, h.conversation().State)

	out = h.say("somewhere nice")
	assert.Equal(t, MsgRoutePrompt, out.Messages[0])

	out = h.say("delhi to london")
	assert.Equal(t, MsgDatePrompt, out.Messages[0])
	assert.True(t, h.conversation().FlightQuery.HasRoute())

	h.say("2025-12-10")
	assert.Equal(t, entity.StateReadyToConfirm, h.conversation().State)
}

func TestFlightFlow_ReturnDateIsNotSearched(t *testing.T) {
	h := newFlowHarness(t)

	out := h.say("flight delhi to london on 2025-12-10 returning 2025-12-20")
	c := h.conversation()
	require.Equal(t, entity.StateReadyToConfirm, c.State)
	assert.Equal(t, "2025-12-20", c.FlightQuery.ReturnDate)
	assert.Contains(t, out.Messages[0], "Return: 2025-12-20")

	out = h.say("yes")
	assert.Equal(t, MsgReturnUnsupported, out.Messages[0])
	assert.Zero(t, h.offers.calls())

	h.say("change date")
	out = h.say("2025-12-25")
	assert.Contains(t, out.Messages[0], "before your return date")
	require.Equal(t, entity.StateAwaitingNewDate, h.conversation().State)

	h.say("2025-12-15")
	require.Equal(t, entity.StateAwaitingReconfirmation, h.conversation().State)

	h.say("remove return")
	c = h.conversation()
	assert.Empty(t, c.FlightQuery.ReturnDate)
	assert.Equal(t, entity.TripTypeOneWay, c.FlightQuery.TripType)

	h.say("yes")
	assert.Equal(t, 1, h.offers.calls())
	assert.Equal(t, "2025-12-15", h.offers.last().Date)
}

func TestFlightFlow_MultiCityRefused(t *testing.T) {
	h := newFlowHarness(t)
	h.say("flight delhi via mumbai to london on 2025-12-10")
	require.Equal(t, entity.TripTypeMultiCity, h.conversation().FlightQuery.TripType)

	out := h.say("yes")
	assert.Equal(t, MsgMultiCityUnsupported, out.Messages[0])
	assert.Zero(t, h.offers.calls())
}

func TestFlightFlow_ChangeDestinationBeforeSearch(t *testing.T) {
	h := newFlowHarness(t)
	h.say("flight from delhi to london on 2025-12-10")

	h.say("change")
	require.Equal(t, entity.StateCollecting, h.conversation().State)
	require.Equal(t, entity.ChangePending, h.conversation().ChangeTarget)

	out := h.say("destination")
	assert.Equal(t, MsgNewDestination, out.Messages[0])
	require.Equal(t, entity.StateAwaitingNewDestination, h.conversation().State)

	out = h.say("delhi")
	assert.Equal(t, MsgSameRoute, out.Messages[0])

	out = h.say("atlantis")
	assert.Equal(t, MsgUnknownLocation, out.Messages[0])

	h.say("mumbai")
	c := h.conversation()
	require.Equal(t, entity.StateAwaitingReconfirmation, c.State)
	assert.Equal(t, "BOM", c.FlightQuery.Destination.SearchCode())
	assert.Equal(t, "DEL", c.FlightQuery.Origin.SearchCode())
}

func TestFlightFlow_ParserFailures(t *testing.T) {
	h := newFlowHarness(t)

	out := h.say("flight delhi to atlantis on 2025-12-10")
	assert.Equal(t, MsgUnknownLocation, out.Messages[0])
	assert.Nil(t, h.conversation())

	out = h.say("flight delhi to london on 2025-12-20 returning 2025-12-10")
	assert.Equal(t, MsgReturnOrder, out.Messages[0])
	assert.Nil(t, h.conversation())

	out = h.say("flight delhi to london on 10-12-2025")
	assert.Equal(t, MsgUsage, out.Messages[0])
	assert.Nil(t, h.conversation())
}

func TestFlightFlow_MissingDetailsAtConfirmation(t *testing.T) {
	h := newFlowHarness(t)
	q := entity.NewFlightQuery(entity.TripTypeOneWay)
	q.Origin = testLocations()["delhi"]
	require.NoError(t, h.repo.Set(context.Background(), testUser, entity.NewReadyToConfirm(q)))

	out := h.say("yes")
	assert.Equal(t, MsgMissingDetails, out.Messages[0])
	assert.Nil(t, h.conversation())
	assert.Zero(t, h.offers.calls())
}

func TestFlightFlow_NewQueryReplacesResults(t *testing.T) {
	h := newFlowHarness(t)
	h.reachResults()

	h.say("flight from mumbai to london on 2025-12-11")
	c := h.conversation()
	assert.Equal(t, entity.StateReadyToConfirm, c.State)
	assert.Nil(t, c.Results)
	assert.Nil(t, c.LastExecutedSearch)
}
