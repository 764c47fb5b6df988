package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"
)

// XClient posts to the X API v2. Media is uploaded first, then referenced
// from the tweet payload.
type XClient struct {
	baseURL string
	token   string
	client  *http.Client
}

var _ Publisher = (*XClient)(nil)

func NewXClient(baseURL, token string, timeout time.Duration) *XClient {
	return &XClient{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

type tweetRequest struct {
	Text  string      `json:"text"`
	Media *tweetMedia `json:"media,omitempty"`
}

type tweetMedia struct {
	MediaIDs []string `json:"media_ids"`
}

type tweetResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

func (c *XClient) Publish(ctx context.Context, text string, image []byte) (string, error) {
	var mediaIDs []string
	if len(image) > 0 {
		mediaID, err := c.uploadMedia(ctx, image)
		if err != nil {
			// Media failure is not worth losing the post over.
			slog.Warn("media upload failed, publishing text-only", "error", err)
		} else {
			mediaIDs = append(mediaIDs, mediaID)
		}
	}

	payload := tweetRequest{Text: text}
	if len(mediaIDs) > 0 {
		payload.Media = &tweetMedia{MediaIDs: mediaIDs}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", &Error{Kind: KindRejected, Err: fmt.Errorf("marshal tweet: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/2/tweets", bytes.NewReader(body))
	if err != nil {
		return "", &Error{Kind: KindNetwork, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &Error{Kind: KindNetwork, Err: err}
	}
	defer closeBody(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", statusError(resp)
	}

	var tr tweetResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", &Error{Kind: KindNetwork, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	if tr.Data.ID == "" {
		return "", &Error{Kind: KindRejected, StatusCode: resp.StatusCode, Err: fmt.Errorf("response carried no post id")}
	}
	return tr.Data.ID, nil
}

func (c *XClient) uploadMedia(ctx context.Context, image []byte) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("media", "card.png")
	if err != nil {
		return "", err
	}
	if _, err := part.Write(image); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/1.1/media/upload.json", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer closeBody(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", statusError(resp)
	}

	var mr struct {
		MediaIDString string `json:"media_id_string"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return "", err
	}
	if mr.MediaIDString == "" {
		return "", fmt.Errorf("upload response carried no media id")
	}
	return mr.MediaIDString, nil
}

func statusError(resp *http.Response) *Error {
	err := fmt.Errorf("platform returned status %d", resp.StatusCode)
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return &Error{
			Kind:       KindRateLimited,
			StatusCode: resp.StatusCode,
			RetryAfter: retryAfter(resp),
			Err:        err,
		}
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &Error{Kind: KindAuth, StatusCode: resp.StatusCode, Err: err}
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return &Error{Kind: KindRejected, StatusCode: resp.StatusCode, Err: err}
	default:
		return &Error{Kind: KindNetwork, StatusCode: resp.StatusCode, Err: err}
	}
}

func retryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return 0
}

func closeBody(body io.ReadCloser) {
	if err := body.Close(); err != nil {
		slog.Warn("failed to close response body", "error", err)
	}
}
