package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/framefest/platform/pkg/common/config"
	"github.com/framefest/platform/pkg/common/httpclient"
	"github.com/framefest/platform/pkg/common/logger"
	"golang.org/x/oauth2"
)

// ErrMissingCredentials is the fatal precondition of every collection run: no
// token means no external calls and no log row.
var ErrMissingCredentials = errors.New("media source access token not configured")

var ErrTagNotFound = errors.New("hashtag not found")

// Client talks to the media source's tag-search and recent-media endpoints.
// Authentication rides on an oauth2 static token transport over the tuned
// outbound HTTP client.
type Client struct {
	http     *http.Client
	baseURL  string
	pageSize int
	token    string
}

func NewClient(cfg *config.Config) *Client {
	base := httpclient.New(cfg.MediaSourceTimeout)
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.MediaSourceAccessToken})
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)

	return &Client{
		http:     oauth2.NewClient(ctx, ts),
		baseURL:  cfg.MediaSourceBaseURL,
		pageSize: cfg.MediaSourcePageSize,
		token:    cfg.MediaSourceAccessToken,
	}
}

func (c *Client) Configured() bool {
	return c.token != ""
}

// LookupTag resolves a hashtag keyword to the source's tag id.
func (c *Client) LookupTag(ctx context.Context, keyword string) (string, error) {
	endpoint := fmt.Sprintf("%s/ig_hashtag_search?q=%s", c.baseURL, url.QueryEscape(keyword))

	var payload struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return "", err
	}
	if len(payload.Data) == 0 {
		return "", ErrTagNotFound
	}
	return payload.Data[0].ID, nil
}

// RecentMedia fetches the most recent posts for a tag id, bounded by the
// configured page size. Items whose JSON does not parse are logged and
// dropped; shape validation is the pipeline's job.
func (c *Client) RecentMedia(ctx context.Context, tagID string) ([]MediaItem, error) {
	endpoint := fmt.Sprintf(
		"%s/%s/recent_media?fields=id,media_url,permalink,caption,timestamp,like_count,username&limit=%d",
		c.baseURL, url.PathEscape(tagID), c.pageSize,
	)

	var payload struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}

	items := make([]MediaItem, 0, len(payload.Data))
	for _, raw := range payload.Data {
		var item MediaItem
		if err := json.Unmarshal(raw, &item); err != nil {
			logger.Log.WithError(err).WithField("tag_id", tagID).Debug("discarding unparseable media item")
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	return httpclient.Retry(ctx, 3, 200*time.Millisecond, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("media source returned status %d", resp.StatusCode)
		}
		return json.NewDecoder(resp.Body).Decode(out)
	})
}
