package usecase

import (
	"context"
	"errors"
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
)

type sentMessage struct {
	to   string
	body string
}

type fakeWhatsapp struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (f *fakeWhatsapp) SendText(_ context.Context, to, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMessage{to: to, body: body})
	return nil
}

func (f *fakeWhatsapp) bodies() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.sent))
	for i, m := range f.sent {
		out[i] = m.body
	}
	return out
}

// firstMatchRouter is the smallest router that honours registration order
type firstMatchRouter struct {
	handlers []IntentHandler
}

func (r *firstMatchRouter) Register(handler IntentHandler) {
	r.handlers = append(r.handlers, handler)
}

func (r *firstMatchRouter) GetHandler(turn *Turn) IntentHandler {
	for _, h := range r.handlers {
		if h.CanHandle(turn) {
			return h
		}
	}
	return nil
}

type flowHandler struct {
	flow *FlightFlow
}

func (h *flowHandler) Name() string { return "flight" }

func (h *flowHandler) CanHandle(turn *Turn) bool {
	return turn.Conversation != nil || StartsQuery(turn.Text)
}

func (h *flowHandler) Handle(ctx context.Context, turn *Turn) Outcome {
	return h.flow.Handle(ctx, turn)
}

type staticHandler struct {
	name    string
	outcome Outcome
}

func (h *staticHandler) Name() string                          { return h.name }
func (h *staticHandler) CanHandle(*Turn) bool                  { return true }
func (h *staticHandler) Handle(context.Context, *Turn) Outcome { return h.outcome }

type failingStore struct {
	*repository.MemoryConversationRepository
}

func (s *failingStore) Set(context.Context, string, *entity.Conversation) error {
	return errors.New("store unavailable")
}

type processorHarness struct {
	processor *ConversationProcessor
	store     *repository.MemoryConversationRepository
	whatsapp  *fakeWhatsapp
	offers    *fakeOffers
	metrics   *metrics.Metrics
}

func newProcessorHarness(t *testing.T) *processorHarness {
	t.Helper()
	flow := newFlowHarness(t)

	router := &firstMatchRouter{}
	router.Register(&flowHandler{flow: flow.flow})
	router.Register(&staticHandler{name: "fallback", outcome: Keep(MsgFallback)})

	whatsapp := &fakeWhatsapp{}
	return &processorHarness{
		processor: NewConversationProcessor(flow.repo, whatsapp, router, flow.metrics, logger.NewNopLogger()),
		store:     flow.repo,
		whatsapp:  whatsapp,
		offers:    flow.offers,
		metrics:   flow.metrics,
	}
}

func (h *processorHarness) send(t *testing.T, text string) {
	t.Helper()
	require.NoError(t, h.processor.ProcessMessage(context.Background(), entity.NewInboundMessage("wamid.x", testUser, text)))
}

func TestConversationProcessor_StoresStateAndReplies(t *testing.T) {
	h := newProcessorHarness(t)

	h.send(t, "Flight from Delhi to London on 2025-12-10")
	c, err := h.store.Get(context.Background(), testUser)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, entity.StateReadyToConfirm, c.State)

	h.send(t, "YES")
	c, _ = h.store.Get(context.Background(), testUser)
	assert.Equal(t, entity.StateResults, c.State)

	bodies := h.whatsapp.bodies()
	require.Len(t, bodies, 2)
	assert.Contains(t, bodies[0], "Please confirm")
	assert.Contains(t, bodies[1], "1. AIR INDIA")

	assert.Equal(t, float64(2), testutil.ToFloat64(h.metrics.MessagesReceived.WithLabelValues("flight")))
	assert.Equal(t, float64(2), testutil.ToFloat64(h.metrics.RepliesSent))
}

func TestConversationProcessor_FallbackWithoutConversation(t *testing.T) {
	h := newProcessorHarness(t)

	h.send(t, "what's the weather")
	assert.Equal(t, []string{MsgFallback}, h.whatsapp.bodies())
	assert.Equal(t, float64(1), testutil.ToFloat64(h.metrics.MessagesReceived.WithLabelValues("fallback")))

	c, err := h.store.Get(context.Background(), testUser)
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestConversationProcessor_CancelClears(t *testing.T) {
	h := newProcessorHarness(t)

	h.send(t, "flight from delhi to london on 2025-12-10")
	h.send(t, "cancel")

	c, err := h.store.Get(context.Background(), testUser)
	require.NoError(t, err)
	assert.Nil(t, c)
	assert.Equal(t, MsgCancelled, h.whatsapp.bodies()[1])
}

func TestConversationProcessor_NoHandler(t *testing.T) {
	store := repository.NewMemoryConversationRepository(time.Hour, logger.NewNopLogger())
	whatsapp := &fakeWhatsapp{}
	p := NewConversationProcessor(store, whatsapp, &firstMatchRouter{}, metrics.NewMetrics("test", prometheus.NewRegistry()), logger.NewNopLogger())

	err := p.ProcessMessage(context.Background(), entity.NewInboundMessage("wamid.x", testUser, "hello"))
	require.NoError(t, err)
	assert.Empty(t, whatsapp.bodies())
}

func TestConversationProcessor_StoreFailure(t *testing.T) {
	log := logger.NewNopLogger()
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	store := &failingStore{repository.NewMemoryConversationRepository(time.Hour, log)}
	whatsapp := &fakeWhatsapp{}

	router := &firstMatchRouter{}
	router.Register(&staticHandler{name: "flight", outcome: Set(entity.NewTripTypeMenu(), MsgTripTypeMenu)})
	p := NewConversationProcessor(store, whatsapp, router, m, log)

	err := p.ProcessMessage(context.Background(), entity.NewInboundMessage("wamid.x", testUser, "flights"))
	require.Error(t, err)
	assert.Equal(t, []string{MsgSomethingWrong}, whatsapp.bodies())
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ErrorsCount.WithLabelValues("conversation_store")))
}

func TestConversationProcessor_SendFailure(t *testing.T) {
	h := newProcessorHarness(t)
	h.whatsapp.err = errors.New("graph api down")

	err := h.processor.ProcessMessage(context.Background(), entity.NewInboundMessage("wamid.x", testUser, "flights"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to send reply")

	// the menu never reached the user, so no conversation is started
	c, getErr := h.store.Get(context.Background(), testUser)
	require.NoError(t, getErr)
	assert.Nil(t, c)
	assert.Equal(t, float64(1), testutil.ToFloat64(h.metrics.ErrorsCount.WithLabelValues("send")))
}

func TestConversationProcessor_UndeliveredPageKeepsCursor(t *testing.T) {
	h := newProcessorHarness(t)
	h.send(t, "flight from delhi to london on 2025-12-10")
	h.send(t, "yes")

	h.whatsapp.err = errors.New("graph api down")
	err := h.processor.ProcessMessage(context.Background(), entity.NewInboundMessage("wamid.y", testUser, "show more"))
	require.Error(t, err)

	c, getErr := h.store.Get(context.Background(), testUser)
	require.NoError(t, getErr)
	require.NotNil(t, c)
	assert.Equal(t, entity.StateResults, c.State)
	assert.Equal(t, 3, c.Results.Cursor)

	h.whatsapp.err = nil
	h.send(t, "show more")
	bodies := h.whatsapp.bodies()
	assert.Contains(t, bodies[len(bodies)-1], "4. AIR INDIA")

	c, _ = h.store.Get(context.Background(), testUser)
	assert.Equal(t, 5, c.Results.Cursor)
}

func TestConversationProcessor_UndeliveredResultsRestoreConfirmation(t *testing.T) {
	h := newProcessorHarness(t)
	h.send(t, "flight from delhi to london on 2025-12-10")

	h.whatsapp.err = errors.New("graph api down")
	require.Error(t, h.processor.ProcessMessage(context.Background(), entity.NewInboundMessage("wamid.y", testUser, "yes")))

	c, err := h.store.Get(context.Background(), testUser)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, entity.StateReadyToConfirm, c.State)
	assert.Nil(t, c.Results)
}

func TestConversationProcessor_SerializesTurnsPerUser(t *testing.T) {
	h := newProcessorHarness(t)
	h.send(t, "flight from delhi to london on 2025-12-10")
	h.send(t, "yes")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, h.processor.ProcessMessage(context.Background(), entity.NewInboundMessage("wamid.y", testUser, "show more")))
		}()
	}
	wg.Wait()

	c, err := h.store.Get(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, 5, c.Results.Cursor)
	assert.Equal(t, 1, h.offers.calls())
}
