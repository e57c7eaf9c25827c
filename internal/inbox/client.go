package inbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/support-intel/internal/config"
	apperrors "github.com/spec-kit/support-intel/pkg/util"
)

// AttachmentMeta describes one attachment on a mailbox message. Only the
// metadata travels with the message; the payload is fetched on demand.
type AttachmentMeta struct {
	Index       int    `json:"index"`
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	IsImage     bool   `json:"isImage"`
}

// Message is one mailbox message as the web app reports it.
type Message struct {
	ThreadID       string           `json:"threadId"`
	MessageID      string           `json:"messageId"`
	DateISO        string           `json:"dateISO"`
	DateMs         int64            `json:"dateMs"`
	Subject        string           `json:"subject"`
	FromRaw        string           `json:"fromRaw"`
	FromName       string           `json:"fromName"`
	FromEmail      string           `json:"fromEmail"`
	ToRaw          string           `json:"toRaw"`
	CcRaw          string           `json:"ccRaw"`
	BccRaw         string           `json:"bccRaw"`
	BodyText       string           `json:"bodyText"`
	IsFromMe       bool             `json:"isFromMe"`
	HasAttachments bool             `json:"hasAttachments"`
	Attachments    []AttachmentMeta `json:"attachments"`
}

// AttachmentPayload is a fully fetched attachment, base64 encoded.
type AttachmentPayload struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	SizeBytes   int64  `json:"sizeBytes"`
	IsImage     bool   `json:"isImage"`
	Base64      string `json:"base64"`
}

// OutgoingAttachment is an attachment on an operator reply.
type OutgoingAttachment struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Base64      string `json:"base64"`
}

type inboxResponse struct {
	OK    bool      `json:"ok"`
	Count int       `json:"count"`
	Items []Message `json:"items"`
	Error string    `json:"error"`
}

type threadResponse struct {
	OK       bool      `json:"ok"`
	ThreadID string    `json:"threadId"`
	Count    int       `json:"count"`
	Messages []Message `json:"messages"`
	Error    string    `json:"error"`
}

type attachmentResponse struct {
	OK bool `json:"ok"`
	AttachmentPayload
	Error string `json:"error"`
}

type postResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// Client talks to the Gmail Apps Script web app. Reads are plain GETs with a
// route query parameter; writes are POSTs carrying the shared key in a JSON
// body with a text/plain content type, which is what the web app expects.
type Client struct {
	cfg    config.InboxConfig
	http   *http.Client
	logger *zap.Logger
}

// NewClient constructs the web app client.
func NewClient(cfg config.InboxConfig, logger *zap.Logger) *Client {
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

// FetchInbox returns messages newer than sinceMs, up to max items.
func (c *Client) FetchInbox(ctx context.Context, sinceMs int64, max int) ([]Message, error) {
	var res inboxResponse
	err := c.get(ctx, url.Values{
		"route": {"inbox"},
		"since": {strconv.FormatInt(sinceMs, 10)},
		"max":   {strconv.Itoa(max)},
	}, &res)
	if err != nil {
		return nil, err
	}
	if !res.OK {
		return nil, apperrors.NewUpstreamError("mailbox", fmt.Errorf("inbox fetch: %s", orUnknown(res.Error)))
	}
	return res.Items, nil
}

// FetchThread returns every message in one thread.
func (c *Client) FetchThread(ctx context.Context, threadID string) ([]Message, error) {
	var res threadResponse
	err := c.get(ctx, url.Values{
		"route":    {"thread"},
		"threadId": {threadID},
	}, &res)
	if err != nil {
		return nil, err
	}
	if !res.OK {
		return nil, apperrors.NewUpstreamError("mailbox", fmt.Errorf("thread fetch: %s", orUnknown(res.Error)))
	}
	return res.Messages, nil
}

// FetchAttachment downloads one attachment payload.
func (c *Client) FetchAttachment(ctx context.Context, threadID, messageID string, index int) (*AttachmentPayload, error) {
	var res attachmentResponse
	err := c.get(ctx, url.Values{
		"route":     {"attachment"},
		"threadId":  {threadID},
		"messageId": {messageID},
		"attIndex":  {strconv.Itoa(index)},
	}, &res)
	if err != nil {
		return nil, err
	}
	if !res.OK {
		return nil, apperrors.NewUpstreamError("mailbox", fmt.Errorf("attachment fetch: %s", orUnknown(res.Error)))
	}
	return &res.AttachmentPayload, nil
}

// Reply sends an operator reply into a thread, with optional attachments.
func (c *Client) Reply(ctx context.Context, threadID, text string, attachments []OutgoingAttachment) error {
	return c.post(ctx, "reply", map[string]any{
		"threadId":    threadID,
		"text":        text,
		"attachments": attachments,
	})
}

// TrashThread moves a thread to the mailbox trash.
func (c *Client) TrashThread(ctx context.Context, threadID string) error {
	return c.post(ctx, "trash", map[string]any{"threadId": threadID})
}

func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.WebAppURL+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, route string, payload map[string]any) error {
	payload["key"] = c.cfg.APIKey
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	params := url.Values{"route": {route}, "key": {c.cfg.APIKey}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.WebAppURL+"?"+params.Encode(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "text/plain;charset=utf-8")

	var res postResponse
	if err := c.do(req, &res); err != nil {
		return err
	}
	if !res.OK {
		return apperrors.NewUpstreamError("mailbox", fmt.Errorf("%s: %s", route, orUnknown(res.Error)))
	}
	return nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.NewUpstreamError("mailbox", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return apperrors.NewUpstreamError("mailbox", err)
	}
	if resp.StatusCode != http.StatusOK {
		return apperrors.NewUpstreamError("mailbox", fmt.Errorf("status %d", resp.StatusCode))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apperrors.NewUpstreamError("mailbox", fmt.Errorf("non-JSON response: %w", err))
	}
	return nil
}

func orUnknown(msg string) string {
	if msg == "" {
		return "unknown error"
	}
	return msg
}
