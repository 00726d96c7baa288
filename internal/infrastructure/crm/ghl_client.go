// Package crm implements the GoHighLevel CRM adapter: the workflow webhook,
// contact upserts and calendar bookings.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/wagginmeals/backend/internal/domain/integration"
	"github.com/wagginmeals/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const apiVersion = "2021-07-28"

// ErrRequestFailed wraps non-2xx responses from GoHighLevel
var ErrRequestFailed = errors.New("crm: request failed")

// GHLClient implements integration.CRM
type GHLClient struct {
	enabled    bool
	webhookURL string
	apiKey     string
	locationID string
	calendarID string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	now        func() time.Time
}

var _ integration.CRM = (*GHLClient)(nil)

// NewGHLClient creates the adapter. Missing settings disable the matching
// operation instead of failing construction.
func NewGHLClient(cfg config.GHLConfig, logger *zap.Logger) *GHLClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "https://services.leadconnectorhq.com"
	}
	return &GHLClient{
		enabled:    cfg.Enabled,
		webhookURL: cfg.WebhookURL,
		apiKey:     cfg.APIKey,
		locationID: cfg.LocationID,
		calendarID: cfg.CalendarID,
		baseURL:    base,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		now:        time.Now,
	}
}

func (c *GHLClient) apiConfigured() bool {
	return c.enabled && c.apiKey != "" && c.locationID != ""
}

// SendEvent posts the event to the workflow webhook
func (c *GHLClient) SendEvent(ctx context.Context, event integration.CRMEvent) error {
	if c.webhookURL == "" {
		c.logger.Debug("CRM webhook not configured, skipping event", zap.String("event_type", event.EventType))
		return integration.ErrCRMNotConfigured
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = c.now().UTC()
	}
	headers := map[string]string{}
	if c.apiKey != "" {
		headers["Authorization"] = "Bearer " + c.apiKey
	}
	if err := c.post(ctx, c.webhookURL, headers, event, nil); err != nil {
		return err
	}
	c.logger.Info("CRM event sent",
		zap.String("event_type", event.EventType),
		zap.String("email", event.Customer.Email))
	return nil
}

type ghlCustomField struct {
	Key        string `json:"key"`
	FieldValue string `json:"field_value"`
}

type ghlUpsertRequest struct {
	LocationID   string           `json:"locationId"`
	Email        string           `json:"email"`
	FirstName    string           `json:"firstName,omitempty"`
	LastName     string           `json:"lastName,omitempty"`
	Phone        string           `json:"phone,omitempty"`
	Source       string           `json:"source,omitempty"`
	Tags         []string         `json:"tags,omitempty"`
	CustomFields []ghlCustomField `json:"customFields,omitempty"`
}

type ghlContact struct {
	ID   string   `json:"id"`
	Tags []string `json:"tags"`
}

type ghlContactResponse struct {
	New     bool        `json:"new"`
	Contact *ghlContact `json:"contact"`
}

// UpsertContact creates or updates the contact, keeping the tags it already has
func (c *GHLClient) UpsertContact(ctx context.Context, contact integration.Contact) (*integration.ContactResult, error) {
	if !c.apiConfigured() {
		return nil, integration.ErrCRMNotConfigured
	}

	existing, err := c.findContact(ctx, contact.Email)
	if err != nil {
		c.logger.Warn("CRM contact lookup failed, upserting without existing tags",
			zap.String("email", contact.Email), zap.Error(err))
	}
	tags := mergeTags(nil, contact.Tags)
	if existing != nil {
		tags = mergeTags(existing.Tags, contact.Tags)
	}

	req := ghlUpsertRequest{
		LocationID: c.locationID,
		Email:      contact.Email,
		FirstName:  contact.FirstName,
		LastName:   contact.LastName,
		Phone:      contact.Phone,
		Source:     contact.Source,
		Tags:       tags,
	}
	keys := make([]string, 0, len(contact.CustomFields))
	for k := range contact.CustomFields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		req.CustomFields = append(req.CustomFields, ghlCustomField{Key: k, FieldValue: contact.CustomFields[k]})
	}

	var resp ghlContactResponse
	if err := c.post(ctx, c.baseURL+"/contacts/upsert", c.apiHeaders(), req, &resp); err != nil {
		return nil, err
	}
	if resp.Contact == nil || resp.Contact.ID == "" {
		return nil, fmt.Errorf("%w: upsert response has no contact id", ErrRequestFailed)
	}
	result := &integration.ContactResult{ContactID: resp.Contact.ID, IsNew: resp.New, Tags: tags}
	if len(resp.Contact.Tags) > 0 {
		result.Tags = resp.Contact.Tags
	}
	return result, nil
}

// findContact returns nil without error when no contact has the email
func (c *GHLClient) findContact(ctx context.Context, email string) (*ghlContact, error) {
	q := url.Values{}
	q.Set("locationId", c.locationID)
	q.Set("email", email)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/contacts/search/duplicate?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.apiHeaders() {
		req.Header.Set(k, v)
	}
	var resp ghlContactResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return resp.Contact, nil
}

type ghlAppointmentRequest struct {
	CalendarID        string `json:"calendarId"`
	LocationID        string `json:"locationId"`
	ContactID         string `json:"contactId"`
	StartTime         string `json:"startTime"`
	EndTime           string `json:"endTime"`
	Title             string `json:"title"`
	AppointmentStatus string `json:"appointmentStatus"`
	Notes             string `json:"notes,omitempty"`
}

type ghlAppointmentResponse struct {
	ID string `json:"id"`
}

// BookAppointment upserts the contact then books it on the consultation calendar.
// With the integration disabled a placeholder result is returned.
func (c *GHLClient) BookAppointment(ctx context.Context, b integration.Booking) (*integration.BookingResult, error) {
	if !c.apiConfigured() || c.calendarID == "" {
		c.logger.Info("CRM booking placeholder",
			zap.String("email", b.Email),
			zap.Time("start", b.StartTime))
		return &integration.BookingResult{
			Success:     true,
			Placeholder: true,
			Message:     "Booking received (calendar integration not yet configured)",
		}, nil
	}

	contact, err := c.UpsertContact(ctx, integration.Contact{
		Email:     b.Email,
		FirstName: b.FirstName,
		LastName:  b.LastName,
		Phone:     b.Phone,
		Source:    "consultation-booking",
		Tags:      []string{"consultation-booked"},
	})
	if err != nil {
		return nil, err
	}

	var resp ghlAppointmentResponse
	err = c.post(ctx, c.baseURL+"/calendars/events/appointments", c.apiHeaders(), ghlAppointmentRequest{
		CalendarID:        c.calendarID,
		LocationID:        c.locationID,
		ContactID:         contact.ContactID,
		StartTime:         b.StartTime.UTC().Format(time.RFC3339),
		EndTime:           b.EndTime.UTC().Format(time.RFC3339),
		Title:             b.Title,
		AppointmentStatus: "confirmed",
		Notes:             b.Notes,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &integration.BookingResult{
		Success:       true,
		AppointmentID: resp.ID,
		ContactID:     contact.ContactID,
		Message:       "Appointment booked",
	}, nil
}

func (c *GHLClient) apiHeaders() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + c.apiKey,
		"Version":       apiVersion,
		"Accept":        "application/json",
	}
}

func (c *GHLClient) post(ctx context.Context, endpoint string, headers map[string]string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return c.do(req, out)
}

func (c *GHLClient) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrRequestFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := string(raw)
		if len(msg) > 300 {
			msg = msg[:300]
		}
		return fmt.Errorf("%w: %s %s returned %d: %s", ErrRequestFailed, req.Method, req.URL.Path, resp.StatusCode, msg)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: invalid json: %v", ErrRequestFailed, err)
	}
	return nil
}

// mergeTags unions the tag lists, keeping first-seen order
func mergeTags(existing, added []string) []string {
	out := make([]string, 0, len(existing)+len(added))
	seen := make(map[string]struct{}, cap(out))
	for _, list := range [][]string{existing, added} {
		for _, t := range list {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}
