// Package editor forwards single-field amendments of failure records to the
// remote edit endpoint.
//
// The endpoint locates the row by normalized loco number and by the date
// column's display string. DateFailed is therefore sent exactly as shown to
// the user and never re-formatted.
package editor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"locoboard/internal/metrics"
	"locoboard/internal/model"
)

// ErrDisabled is returned when no endpoint is configured.
var ErrDisabled = errors.New("edit endpoint not configured")

// Request is one amendment.
type Request struct {
	VehicleID          string        `json:"vehicleId"`
	DateFailed         string        `json:"dateFailed"`
	NewValue           string        `json:"newValue"`
	AuthToken          string        `json:"authToken"`
	Variant            model.Variant `json:"variant"`
	ResponsibilityHint string        `json:"responsibilityHint,omitempty"`
}

// Result is a completed amendment. Logged is false when the value was saved
// but the audit entry could not be written.
type Result struct {
	RequestID string `json:"requestId"`
	Saved     bool   `json:"saved"`
	Logged    bool   `json:"logged"`
	Message   string `json:"message"`
}

// Partial reports a saved-but-not-logged result.
func (r Result) Partial() bool {
	return r.Saved && !r.Logged
}

// RemoteUpdateError is a rejected amendment. Code follows HTTP conventions:
// 400 malformed, 401 bad token, 403 unauthorized identity, 404 no matching
// record, 500 internal.
type RemoteUpdateError struct {
	RequestID string
	Code      int
	Message   string
}

func (e *RemoteUpdateError) Error() string {
	return fmt.Sprintf("edit rejected (%d): %s", e.Code, e.Message)
}

type response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Code    int    `json:"code"`
	Logged  *bool  `json:"logged"`
}

// EditLogWriter persists edit outcomes.
type EditLogWriter interface {
	InsertEditLog(ctx context.Context, l model.EditLog) (int64, error)
}

// Config configures the client.
type Config struct {
	URL       string
	Timeout   time.Duration
	Transport http.RoundTripper
	Logs      EditLogWriter
	Logger    *slog.Logger
}

// Client posts amendments. It never retries.
type Client struct {
	httpClient *http.Client
	url        string
	logs       EditLogWriter
	logger     *slog.Logger
	newID      func() string
}

// NewClient constructs a Client.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout, Transport: cfg.Transport},
		url:        strings.TrimSpace(cfg.URL),
		logs:       cfg.Logs,
		logger:     cfg.Logger,
		newID:      uuid.NewString,
	}
}

// Enabled reports whether an endpoint is configured.
func (c *Client) Enabled() bool {
	return c.url != ""
}

// Validate checks a request locally.
func Validate(req Request) error {
	switch {
	case strings.TrimSpace(req.VehicleID) == "":
		return &RemoteUpdateError{Code: http.StatusBadRequest, Message: "vehicleId is required"}
	case strings.TrimSpace(req.DateFailed) == "":
		return &RemoteUpdateError{Code: http.StatusBadRequest, Message: "dateFailed is required"}
	case strings.TrimSpace(req.NewValue) == "":
		return &RemoteUpdateError{Code: http.StatusBadRequest, Message: "newValue is required"}
	case req.Variant != model.VariantA && req.Variant != model.VariantB:
		return &RemoteUpdateError{Code: http.StatusBadRequest, Message: fmt.Sprintf("variant must be A or B, got %q", req.Variant)}
	case strings.TrimSpace(req.AuthToken) == "":
		return &RemoteUpdateError{Code: http.StatusUnauthorized, Message: "authToken is required"}
	}
	return nil
}

// Submit validates and posts req. A partial success is returned as a Result
// with Logged false, not as an error.
func (c *Client) Submit(ctx context.Context, req Request) (Result, error) {
	if !c.Enabled() {
		return Result{}, ErrDisabled
	}
	id := c.newID()
	res, err := c.submit(ctx, id, req)
	c.record(ctx, id, req, res, err)
	return res, err
}

func (c *Client) submit(ctx context.Context, id string, req Request) (Result, error) {
	if err := Validate(req); err != nil {
		var rue *RemoteUpdateError
		if errors.As(err, &rue) {
			rue.RequestID = id
		}
		return Result{}, err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return Result{}, fmt.Errorf("encode edit request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("build edit request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-ID", id)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("edit request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("read edit response: %w", err)
	}

	var r response
	decodeErr := json.Unmarshal(raw, &r)

	code := resp.StatusCode
	if r.Code != 0 {
		code = r.Code
	}
	if code >= 400 || strings.EqualFold(r.Status, "error") {
		switch {
		case r.Code != 0 && (r.Code < 400 || r.Code > 599):
			// The body code must be an HTTP error status.
			code = http.StatusBadGateway
		case code < 400:
			code = http.StatusInternalServerError
		case code > 599:
			code = http.StatusBadGateway
		}
		msg := r.Message
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		if msg == "" {
			msg = http.StatusText(code)
		}
		return Result{}, &RemoteUpdateError{RequestID: id, Code: code, Message: msg}
	}
	if decodeErr != nil {
		return Result{}, &RemoteUpdateError{RequestID: id, Code: http.StatusBadGateway, Message: "unreadable response from edit endpoint"}
	}

	res := Result{RequestID: id, Saved: true, Logged: true, Message: r.Message}
	if strings.EqualFold(r.Status, "partial") || (r.Logged != nil && !*r.Logged) {
		res.Logged = false
	}
	return res, nil
}

// Outcome names an edit result for logs and metrics.
func Outcome(res Result, err error) string {
	var rue *RemoteUpdateError
	switch {
	case err == nil && res.Partial():
		return "partial"
	case err == nil:
		return "success"
	case errors.As(err, &rue) && rue.Code == http.StatusBadRequest:
		return "invalid"
	}
	return "error"
}

func (c *Client) record(ctx context.Context, id string, req Request, res Result, err error) {
	outcome := Outcome(res, err)
	metrics.RecordEdit(outcome)

	entry := model.EditLog{
		RequestID:  id,
		LocoNo:     strings.TrimSpace(req.VehicleID),
		DateFailed: req.DateFailed,
		NewValue:   req.NewValue,
		Variant:    req.Variant,
		Status:     outcome,
		Code:       http.StatusOK,
		Message:    res.Message,
		CreatedAt:  time.Now(),
	}
	var rue *RemoteUpdateError
	if errors.As(err, &rue) {
		entry.Code, entry.Message = rue.Code, rue.Message
	} else if err != nil {
		entry.Code, entry.Message = 0, err.Error()
	}

	if err != nil {
		c.logger.Warn("edit failed", "request_id", id, "loco", entry.LocoNo, "code", entry.Code, "err", err)
	} else {
		c.logger.Info("edit saved", "request_id", id, "loco", entry.LocoNo, "logged", res.Logged)
	}

	if c.logs == nil {
		return
	}
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if _, werr := c.logs.InsertEditLog(wctx, entry); werr != nil {
		c.logger.Error("write edit log", "request_id", id, "err", werr)
	}
}
