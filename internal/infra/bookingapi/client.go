package bookingapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"kase/internal/app/policies"
	domaincheckout "kase/internal/domain/checkout"
	domainlistings "kase/internal/domain/listings"
	"kase/internal/domain/shared/money"
)

// Client talks to the external booking REST API. Its timeout and error
// policy govern when an in-flight submission definitively fails; the
// checkout core has no cancellation of its own.
type Client struct {
	HTTP    *http.Client
	BaseURL string
	Timeout time.Duration
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		HTTP:    &http.Client{Timeout: timeout},
		BaseURL: strings.TrimRight(baseURL, "/"),
		Timeout: timeout,
	}
}

type createBookingRequest struct {
	ListingID   string    `json:"listing_id"`
	Kind        string    `json:"kind"`
	CheckIn     string    `json:"check_in"`
	CheckOut    string    `json:"check_out,omitempty"`
	Guests      int       `json:"guests"`
	Total       int64     `json:"total"`
	Currency    string    `json:"currency"`
	UserID      string    `json:"user_id,omitempty"`
	GuestName   string    `json:"guest_name,omitempty"`
	GuestEmail  string    `json:"guest_email,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

type createBookingResponse struct {
	ID        string    `json:"id"`
	ListingID string    `json:"listing_id"`
	CheckIn   string    `json:"check_in"`
	CheckOut  string    `json:"check_out"`
	Guests    int       `json:"guests"`
	Total     int64     `json:"total"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
}

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

const dateLayout = "2006-01-02"

// CreateBooking submits the pinned booking request. A non-2xx response maps
// to policies.BookingError carrying the server's human-readable message so
// the checkout flow can surface it verbatim.
func (c *Client) CreateBooking(ctx context.Context, req domaincheckout.BookingRequest) (domaincheckout.BookingRecord, error) {
	var zero domaincheckout.BookingRecord
	if c == nil || c.HTTP == nil {
		return zero, errors.New("bookingapi: http client not configured")
	}
	if c.BaseURL == "" {
		return zero, errors.New("bookingapi: base url not configured")
	}

	payload := createBookingRequest{
		ListingID:   string(req.ListingID),
		Kind:        string(req.Kind),
		CheckIn:     req.CheckIn.Format(dateLayout),
		Guests:      req.Guests,
		Total:       req.Total.Amount,
		Currency:    req.Total.Currency,
		UserID:      req.Identity.UserID,
		GuestName:   req.Identity.Name,
		GuestEmail:  req.Identity.Email,
		RequestedAt: time.Now().UTC(),
	}
	if !req.CheckOut.IsZero() {
		payload.CheckOut = req.CheckOut.Format(dateLayout)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return zero, err
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/bookings", bytes.NewReader(body))
	if err != nil {
		return zero, err
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := c.HTTP.Do(request)
	if err != nil {
		return zero, fmt.Errorf("bookingapi: create booking: %w", err)
	}
	defer response.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(response.Body, 1<<20))
	if err != nil {
		return zero, fmt.Errorf("bookingapi: read response: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return zero, &policies.BookingError{Message: extractMessage(raw, response.StatusCode)}
	}

	var decoded createBookingResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return zero, fmt.Errorf("bookingapi: decode response: %w", err)
	}
	return mapRecord(decoded)
}

func mapRecord(resp createBookingResponse) (domaincheckout.BookingRecord, error) {
	var zero domaincheckout.BookingRecord
	if resp.ID == "" {
		return zero, errors.New("bookingapi: response missing booking id")
	}
	record := domaincheckout.BookingRecord{
		ID:        resp.ID,
		ListingID: domainlistings.ListingID(resp.ListingID),
		Guests:    resp.Guests,
		Total:     money.Money{Amount: resp.Total, Currency: resp.Currency},
		CreatedAt: resp.CreatedAt,
	}
	if resp.CheckIn != "" {
		checkIn, err := time.Parse(dateLayout, resp.CheckIn)
		if err != nil {
			return zero, fmt.Errorf("bookingapi: bad check_in in response: %w", err)
		}
		record.CheckIn = checkIn
	}
	if resp.CheckOut != "" {
		checkOut, err := time.Parse(dateLayout, resp.CheckOut)
		if err != nil {
			return zero, fmt.Errorf("bookingapi: bad check_out in response: %w", err)
		}
		record.CheckOut = checkOut
	}
	return record, nil
}

func extractMessage(raw []byte, status int) string {
	var decoded apiError
	if err := json.Unmarshal(raw, &decoded); err == nil {
		if decoded.Message != "" {
			return decoded.Message
		}
		if decoded.Error != "" {
			return decoded.Error
		}
	}
	trimmed := strings.TrimSpace(string(raw))
	if trimmed != "" && len(trimmed) < 200 {
		return trimmed
	}
	return fmt.Sprintf("booking request failed with status %d", status)
}

var _ policies.BookingPort = (*Client)(nil)
