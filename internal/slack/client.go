package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultBaseURL is the Slack Web API root
const DefaultBaseURL = "https://slack.com/api"

// defaultTimeout bounds the structured API calls. The raw byte upload gets
// its own, longer timeout from config.
const defaultTimeout = 15 * time.Second

// APIError is a failure the platform itself reported (ok: false), as opposed
// to a transport failure reaching it. Callers rarely need the distinction;
// both arrive as plain errors.
type APIError struct {
	Endpoint string
	Code     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("slack %s: %s", e.Endpoint, e.Code)
}

// Config configures a Client
type Config struct {
	Token         string
	Channel       string
	BaseURL       string        // defaults to DefaultBaseURL
	UploadTimeout time.Duration // raw byte-upload bound
	Logger        zerolog.Logger
}

// Client is a thin synchronous layer over the Slack Web API. Every method is
// one blocking HTTP exchange; there are no retries.
type Client struct {
	token      string
	channel    string
	baseURL    string
	httpClient *http.Client
	uploader   *http.Client
	logger     zerolog.Logger
}

// New creates a Slack client
func New(cfg Config) (*Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("slack token is required")
	}
	if cfg.Channel == "" {
		return nil, fmt.Errorf("slack channel is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	uploadTimeout := cfg.UploadTimeout
	if uploadTimeout == 0 {
		uploadTimeout = 60 * time.Second
	}

	return &Client{
		token:      cfg.Token,
		channel:    cfg.Channel,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		uploader:   &http.Client{Timeout: uploadTimeout},
		logger:     cfg.Logger.With().Str("component", "slack").Logger(),
	}, nil
}

// Channel returns the destination channel id
func (c *Client) Channel() string {
	return c.channel
}

// apiResponse is the shared Web API envelope; endpoints populate the fields
// they use and leave the rest empty.
type apiResponse struct {
	OK        bool      `json:"ok"`
	Error     string    `json:"error"`
	TS        string    `json:"ts"`
	UserID    string    `json:"user_id"`
	UploadURL string    `json:"upload_url"`
	FileID    string    `json:"file_id"`
	Messages  []Message `json:"messages"`
}

// Message is a thread message as returned by conversations.replies
type Message struct {
	TS    string `json:"ts"`
	User  string `json:"user"`
	BotID string `json:"bot_id,omitempty"`
	Text  string `json:"text"`
}

// postJSON POSTs a JSON body to a Web API endpoint
func (c *Client) postJSON(ctx context.Context, endpoint string, payload any) (*apiResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", endpoint, err)
	}
	return c.do(ctx, endpoint, bytes.NewReader(body), "application/json; charset=utf-8")
}

// postForm POSTs form-encoded params to a Web API endpoint
func (c *Client) postForm(ctx context.Context, endpoint string, params url.Values) (*apiResponse, error) {
	return c.do(ctx, endpoint, strings.NewReader(params.Encode()), "application/x-www-form-urlencoded")
}

func (c *Client) do(ctx context.Context, endpoint string, body io.Reader, contentType string) (*apiResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}

	if !parsed.OK {
		code := parsed.Error
		if code == "" {
			code = "unknown_error"
		}
		return nil, &APIError{Endpoint: endpoint, Code: code}
	}

	return &parsed, nil
}

// PostMessage posts text to the channel and returns the message timestamp.
// With a threadTS it posts as a reply in that thread; with an empty one it
// posts a new root message.
func (c *Client) PostMessage(ctx context.Context, text, threadTS string) (string, error) {
	payload := map[string]any{
		"channel": c.channel,
		"text":    text,
	}
	if threadTS != "" {
		payload["thread_ts"] = threadTS
	}

	resp, err := c.postJSON(ctx, "chat.postMessage", payload)
	if err != nil {
		return "", err
	}

	c.logger.Debug().Str("ts", resp.TS).Str("thread_ts", threadTS).Msg("Message posted")
	return resp.TS, nil
}

// DeleteFile deletes an uploaded file. Callers treat failure as best-effort:
// an already-deleted file must not block a new upload.
func (c *Client) DeleteFile(ctx context.Context, fileID string) error {
	_, err := c.postJSON(ctx, "files.delete", map[string]any{"file": fileID})
	if err != nil {
		return err
	}

	c.logger.Debug().Str("file_id", fileID).Msg("File deleted")
	return nil
}

// GetUploadURL asks the platform for a presigned upload destination and a
// provisional file id. length must be the exact byte count that will be
// pushed to the returned URL.
func (c *Client) GetUploadURL(ctx context.Context, filename string, length int) (uploadURL, fileID string, err error) {
	params := url.Values{
		"filename": {filename},
		"length":   {strconv.Itoa(length)},
	}

	resp, err := c.postForm(ctx, "files.getUploadURLExternal", params)
	if err != nil {
		return "", "", err
	}

	return resp.UploadURL, resp.FileID, nil
}

// UploadToURL pushes raw bytes to a presigned destination. This is a direct
// request outside the API envelope; only the HTTP status signals success.
func (c *Client) UploadToURL(ctx context.Context, uploadURL string, content []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, bytes.NewReader(content))
	if err != nil {
		return fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.uploader.Do(req)
	if err != nil {
		return fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("upload rejected with status %d", resp.StatusCode)
	}

	c.logger.Debug().Int("bytes", len(content)).Msg("Transcript bytes uploaded")
	return nil
}

// CompleteUpload commits previously pushed bytes as a visible file, attached
// to the given thread root when threadTS is set.
func (c *Client) CompleteUpload(ctx context.Context, fileID, title, threadTS string) error {
	payload := map[string]any{
		"files":      []map[string]string{{"id": fileID, "title": title}},
		"channel_id": c.channel,
	}
	if threadTS != "" {
		payload["thread_ts"] = threadTS
	}

	if _, err := c.postJSON(ctx, "files.completeUploadExternal", payload); err != nil {
		return err
	}

	c.logger.Debug().Str("file_id", fileID).Str("thread_ts", threadTS).Msg("Upload finalized")
	return nil
}

// AuthTest returns the bot's own user id. The listener uses it to skip the
// bot's messages when reading thread replies.
func (c *Client) AuthTest(ctx context.Context) (string, error) {
	resp, err := c.postForm(ctx, "auth.test", url.Values{})
	if err != nil {
		return "", err
	}
	return resp.UserID, nil
}

// ThreadReplies fetches replies to a thread. With oldest set, only messages
// at or after that timestamp are returned (the boundary is inclusive).
func (c *Client) ThreadReplies(ctx context.Context, threadTS, oldest string) ([]Message, error) {
	params := url.Values{
		"channel": {c.channel},
		"ts":      {threadTS},
		"limit":   {"50"},
	}
	if oldest != "" {
		params.Set("oldest", oldest)
	}

	resp, err := c.postForm(ctx, "conversations.replies", params)
	if err != nil {
		return nil, err
	}
	return resp.Messages, nil
}
