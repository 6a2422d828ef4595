package bluesky

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
)

const defaultPDS = "https://bsky.social"

// WhatsHotFeed is the network's curated "What's Hot" feed generator, used as
// the base for the trending feed.
const WhatsHotFeed = "at://did:plc:z72i7hdynmk6r22z27h6tvur/app.bsky.feed.generator/whats-hot"

// Client is a minimal AT Protocol XRPC client covering the feed reads and
// like writes GLTCH needs. It holds at most one app-level session; per-user
// calls take an explicit Session instead.
type Client struct {
	pds        string
	httpClient *http.Client

	// populated after Login
	accessJwt string
	did       string
}

// NewClient creates a new Bluesky API client. If pds is empty, it defaults to
// https://bsky.social.
func NewClient(pds string) *Client {
	if pds == "" {
		pds = defaultPDS
	}
	return &Client{
		pds: pds,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Login authenticates with the PDS and stores the session token. Use an App
// Password, not an account password.
func (c *Client) Login(ctx context.Context, identifier, password string) error {
	session, err := c.CreateSession(ctx, identifier, password)
	if err != nil {
		return err
	}

	c.accessJwt = session.AccessJwt
	c.did = session.DID
	return nil
}

// DID returns the authenticated user's DID. Only valid after Login.
func (c *Client) DID() string {
	return c.did
}

// CreateSession authenticates an identifier/app-password pair and returns the
// session without storing it on the client.
func (c *Client) CreateSession(ctx context.Context, identifier, password string) (*Session, error) {
	body := map[string]string{
		"identifier": identifier,
		"password":   password,
	}

	var session Session
	if err := c.post(ctx, "/xrpc/com.atproto.server.createSession", "", body, &session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &session, nil
}

// GetTimeline fetches the default network timeline (app.bsky.feed.getTimeline)
func (c *Client) GetTimeline(ctx context.Context, limit int, cursor string) ([]Post, string, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	if cursor != "" {
		params.Set("cursor", cursor)
	}

	var resp feedResponse
	if err := c.get(ctx, "/xrpc/app.bsky.feed.getTimeline", params, &resp); err != nil {
		return nil, "", fmt.Errorf("get timeline: %w", err)
	}
	return postsFromFeed(resp.Feed), resp.Cursor, nil
}

// GetAuthorFeed fetches an actor's recent posts (app.bsky.feed.getAuthorFeed)
func (c *Client) GetAuthorFeed(ctx context.Context, actor string, limit int) ([]Post, error) {
	params := url.Values{}
	params.Set("actor", actor)
	params.Set("limit", strconv.Itoa(limit))

	var resp feedResponse
	if err := c.get(ctx, "/xrpc/app.bsky.feed.getAuthorFeed", params, &resp); err != nil {
		return nil, fmt.Errorf("get author feed for %s: %w", actor, err)
	}
	return postsFromFeed(resp.Feed), nil
}

// GetFeed fetches posts from a feed generator (app.bsky.feed.getFeed)
func (c *Client) GetFeed(ctx context.Context, feedURI string, limit int, cursor string) ([]Post, string, error) {
	params := url.Values{}
	params.Set("feed", feedURI)
	params.Set("limit", strconv.Itoa(limit))
	if cursor != "" {
		params.Set("cursor", cursor)
	}

	var resp feedResponse
	if err := c.get(ctx, "/xrpc/app.bsky.feed.getFeed", params, &resp); err != nil {
		return nil, "", fmt.Errorf("get feed %s: %w", feedURI, err)
	}
	return postsFromFeed(resp.Feed), resp.Cursor, nil
}

// SearchPosts runs a full-text post search (app.bsky.feed.searchPosts).
// The search endpoint does not page, so no cursor is returned.
func (c *Client) SearchPosts(ctx context.Context, query string, limit int) ([]Post, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))

	var resp searchResponse
	if err := c.get(ctx, "/xrpc/app.bsky.feed.searchPosts", params, &resp); err != nil {
		return nil, fmt.Errorf("search posts %q: %w", query, err)
	}
	return resp.Posts, nil
}

// GetActorLikes fetches posts the session's user has liked
func (c *Client) GetActorLikes(ctx context.Context, session *Session, limit int) ([]Post, error) {
	params := url.Values{}
	params.Set("actor", session.DID)
	params.Set("limit", strconv.Itoa(limit))

	var resp feedResponse
	if err := c.getWithToken(ctx, "/xrpc/app.bsky.feed.getActorLikes", params, session.AccessJwt, &resp); err != nil {
		return nil, fmt.Errorf("get actor likes: %w", err)
	}
	return postsFromFeed(resp.Feed), nil
}

// CreateLike writes an app.bsky.feed.like record in the user's repo and
// returns the like record's URI.
func (c *Client) CreateLike(ctx context.Context, session *Session, postURI, postCID string) (string, error) {
	body := map[string]interface{}{
		"repo":       session.DID,
		"collection": "app.bsky.feed.like",
		"record": map[string]interface{}{
			"subject": map[string]string{
				"uri": postURI,
				"cid": postCID,
			},
			"createdAt": time.Now().UTC().Format(time.RFC3339),
		},
	}

	var resp struct {
		URI string `json:"uri"`
		CID string `json:"cid"`
	}
	if err := c.post(ctx, "/xrpc/com.atproto.repo.createRecord", session.AccessJwt, body, &resp); err != nil {
		return "", fmt.Errorf("create like: %w", err)
	}
	return resp.URI, nil
}

// DeleteLike removes a previously created like record by its at:// URI
func (c *Client) DeleteLike(ctx context.Context, session *Session, likeURI string) error {
	rkey, err := recordKey(likeURI)
	if err != nil {
		return err
	}

	body := map[string]string{
		"repo":       session.DID,
		"collection": "app.bsky.feed.like",
		"rkey":       rkey,
	}

	var resp json.RawMessage
	if err := c.post(ctx, "/xrpc/com.atproto.repo.deleteRecord", session.AccessJwt, body, &resp); err != nil {
		return fmt.Errorf("delete like: %w", err)
	}
	return nil
}

// recordKey extracts the rkey from an at://did/collection/rkey URI
func recordKey(atURI string) (string, error) {
	for i := len(atURI) - 1; i >= 0; i-- {
		if atURI[i] == '/' {
			if i == len(atURI)-1 {
				break
			}
			return atURI[i+1:], nil
		}
	}
	return "", fmt.Errorf("malformed record uri: %s", atURI)
}

// get performs a GET XRPC call using the client's own session, if any
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	return c.getWithToken(ctx, endpoint, params, c.accessJwt, out)
}

func (c *Client) getWithToken(ctx context.Context, endpoint string, params url.Values, token string, out interface{}) error {
	u := c.pds + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, endpoint, token string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.pds+endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("xrpc error: status %d: %s", resp.StatusCode, bytes.TrimSpace(data))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
