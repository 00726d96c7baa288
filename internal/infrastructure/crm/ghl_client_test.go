package crm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wagginmeals/backend/internal/domain/integration"
	"github.com/wagginmeals/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

type recorded struct {
	method string
	path   string
	header http.Header
	body   map[string]any
}

type fakeGHL struct {
	mu       sync.Mutex
	requests []recorded
	routes   map[string]func(w http.ResponseWriter)
}

func (f *fakeGHL) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec := recorded{method: r.Method, path: r.URL.Path, header: r.Header.Clone()}
	if r.Method == http.MethodPost {
		_ = json.NewDecoder(r.Body).Decode(&rec.body)
	}
	f.mu.Lock()
	f.requests = append(f.requests, rec)
	route := f.routes[r.Method+" "+r.URL.Path]
	f.mu.Unlock()
	if route == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	route(w)
}

func (f *fakeGHL) last(path string) *recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.requests) - 1; i >= 0; i-- {
		if f.requests[i].path == path {
			return &f.requests[i]
		}
	}
	return nil
}

func respond(status int, body string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func newFake(t *testing.T, routes map[string]func(w http.ResponseWriter)) (*fakeGHL, string) {
	t.Helper()
	f := &fakeGHL{routes: routes}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv.URL
}

func enabledConfig(base string) config.GHLConfig {
	return config.GHLConfig{
		Enabled:    true,
		APIKey:     "ghl-key",
		LocationID: "loc-1",
		CalendarID: "cal-1",
		BaseURL:    base,
		WebhookURL: base + "/hooks/wm",
	}
}

func TestSendEvent(t *testing.T) {
	fake, base := newFake(t, map[string]func(http.ResponseWriter){
		"POST /hooks/wm": respond(http.StatusOK, `{"ok":true}`),
	})
	c := NewGHLClient(enabledConfig(base), zap.NewNop())
	c.now = func() time.Time { return time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC) }

	err := c.SendEvent(context.Background(), integration.CRMEvent{
		EventType: integration.CRMEventOrderPlaced,
		Customer:  integration.CRMCustomer{Email: "pup@example.com", FirstName: "Dana"},
		Order:     &integration.CRMOrder{OrderNumber: "WM12345678", Amount: 42.5},
	})

	require.NoError(t, err)
	req := fake.last("/hooks/wm")
	require.NotNil(t, req)
	assert.Equal(t, "Bearer ghl-key", req.header.Get("Authorization"))
	assert.Equal(t, "order.placed", req.body["event_type"])
	assert.Equal(t, "2026-10-01T12:00:00Z", req.body["timestamp"])
	assert.Equal(t, "WM12345678", req.body["order"].(map[string]any)["order_number"])
	assert.NotContains(t, req.body, "subscription")
}

func TestSendEvent_NotConfiguredAndFailure(t *testing.T) {
	c := NewGHLClient(config.GHLConfig{}, zap.NewNop())
	assert.ErrorIs(t, c.SendEvent(context.Background(), integration.CRMEvent{EventType: "x"}), integration.ErrCRMNotConfigured)

	_, base := newFake(t, map[string]func(http.ResponseWriter){
		"POST /hooks/wm": respond(http.StatusInternalServerError, "boom"),
	})
	c = NewGHLClient(config.GHLConfig{WebhookURL: base + "/hooks/wm"}, zap.NewNop())
	assert.ErrorIs(t, c.SendEvent(context.Background(), integration.CRMEvent{EventType: "x"}), ErrRequestFailed)
}

func TestUpsertContact_MergesExistingTags(t *testing.T) {
	fake, base := newFake(t, map[string]func(http.ResponseWriter){
		"GET /contacts/search/duplicate": respond(http.StatusOK, `{"contact":{"id":"ct-1","tags":["customer","newsletter-footer"]}}`),
		"POST /contacts/upsert":          respond(http.StatusOK, `{"new":false,"contact":{"id":"ct-1"}}`),
	})
	c := NewGHLClient(enabledConfig(base), zap.NewNop())

	res, err := c.UpsertContact(context.Background(), integration.Contact{
		Email:        "pup@example.com",
		FirstName:    "Dana",
		Source:       "newsletter",
		Tags:         []string{"newsletter-footer", "lead-nurture"},
		CustomFields: map[string]string{"dog_name": "Biscuit", "dog_breed": "Beagle"},
	})

	require.NoError(t, err)
	assert.Equal(t, "ct-1", res.ContactID)
	assert.False(t, res.IsNew)
	assert.Equal(t, []string{"customer", "newsletter-footer", "lead-nurture"}, res.Tags)

	lookup := fake.last("/contacts/search/duplicate")
	require.NotNil(t, lookup)
	assert.Equal(t, apiVersion, lookup.header.Get("Version"))

	upsert := fake.last("/contacts/upsert")
	require.NotNil(t, upsert)
	assert.Equal(t, "loc-1", upsert.body["locationId"])
	assert.Equal(t, []any{"customer", "newsletter-footer", "lead-nurture"}, upsert.body["tags"])
	assert.Equal(t, []any{
		map[string]any{"key": "dog_breed", "field_value": "Beagle"},
		map[string]any{"key": "dog_name", "field_value": "Biscuit"},
	}, upsert.body["customFields"])
}

func TestUpsertContact_LookupFailureStillUpserts(t *testing.T) {
	_, base := newFake(t, map[string]func(http.ResponseWriter){
		"POST /contacts/upsert": respond(http.StatusOK, `{"new":true,"contact":{"id":"ct-9","tags":["lead"]}}`),
	})
	c := NewGHLClient(enabledConfig(base), zap.NewNop())

	res, err := c.UpsertContact(context.Background(), integration.Contact{Email: "new@example.com", Tags: []string{"lead"}})

	require.NoError(t, err)
	assert.True(t, res.IsNew)
	assert.Equal(t, []string{"lead"}, res.Tags)
}

func TestUpsertContact_Errors(t *testing.T) {
	c := NewGHLClient(config.GHLConfig{APIKey: "k", LocationID: "l"}, zap.NewNop())
	_, err := c.UpsertContact(context.Background(), integration.Contact{Email: "a@b.co"})
	assert.ErrorIs(t, err, integration.ErrCRMNotConfigured)

	_, base := newFake(t, map[string]func(http.ResponseWriter){
		"POST /contacts/upsert": respond(http.StatusOK, `{"new":true}`),
	})
	c = NewGHLClient(enabledConfig(base), zap.NewNop())
	_, err = c.UpsertContact(context.Background(), integration.Contact{Email: "a@b.co"})
	assert.ErrorIs(t, err, ErrRequestFailed)
}

func TestBookAppointment(t *testing.T) {
	fake, base := newFake(t, map[string]func(http.ResponseWriter){
		"GET /contacts/search/duplicate":      respond(http.StatusOK, `{}`),
		"POST /contacts/upsert":               respond(http.StatusOK, `{"new":true,"contact":{"id":"ct-2"}}`),
		"POST /calendars/events/appointments": respond(http.StatusCreated, `{"id":"appt-7"}`),
	})
	c := NewGHLClient(enabledConfig(base), zap.NewNop())
	start := time.Date(2026, 11, 3, 15, 0, 0, 0, time.UTC)

	res, err := c.BookAppointment(context.Background(), integration.Booking{
		Email:     "pup@example.com",
		FirstName: "Dana",
		StartTime: start,
		EndTime:   start.Add(30 * time.Minute),
		Title:     "Nutrition Consultation",
	})

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.False(t, res.Placeholder)
	assert.Equal(t, "appt-7", res.AppointmentID)
	assert.Equal(t, "ct-2", res.ContactID)

	appt := fake.last("/calendars/events/appointments")
	require.NotNil(t, appt)
	assert.Equal(t, "cal-1", appt.body["calendarId"])
	assert.Equal(t, "ct-2", appt.body["contactId"])
	assert.Equal(t, "2026-11-03T15:00:00Z", appt.body["startTime"])
	assert.Equal(t, "2026-11-03T15:30:00Z", appt.body["endTime"])
}

func TestBookAppointment_Placeholder(t *testing.T) {
	c := NewGHLClient(config.GHLConfig{Enabled: false, APIKey: "k", LocationID: "l", CalendarID: "c"}, zap.NewNop())

	res, err := c.BookAppointment(context.Background(), integration.Booking{Email: "pup@example.com"})

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, res.Placeholder)
}

func TestMergeTags(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		added    []string
		want     []string
	}{
		{"both empty", nil, nil, []string{}},
		{"dedupes", []string{"a", "b"}, []string{"b", "c"}, []string{"a", "b", "c"}},
		{"trims and drops blanks", []string{" a ", ""}, []string{"a"}, []string{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mergeTags(tt.existing, tt.added))
		})
	}
}
