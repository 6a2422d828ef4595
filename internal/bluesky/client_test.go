package bluesky

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTimeline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/xrpc/app.bsky.feed.getTimeline", r.URL.Path)
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		assert.Equal(t, "page2", r.URL.Query().Get("cursor"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"cursor": "page3",
			"feed": []map[string]interface{}{
				{"post": map[string]interface{}{
					"uri":       "at://did:plc:a/app.bsky.feed.post/1",
					"cid":       "bafy1",
					"author":    map[string]string{"did": "did:plc:a", "handle": "a.bsky.social"},
					"record":    map[string]string{"text": "hello", "createdAt": "2025-06-01T12:00:00Z"},
					"likeCount": 7,
				}},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	posts, cursor, err := client.GetTimeline(context.Background(), 25, "page2")
	require.NoError(t, err)
	assert.Equal(t, "page3", cursor)
	require.Len(t, posts, 1)
	assert.Equal(t, "at://did:plc:a/app.bsky.feed.post/1", posts[0].URI)
	assert.Equal(t, "a.bsky.social", posts[0].Author.Handle)
	assert.Equal(t, 7, posts[0].LikeCount)
	assert.Equal(t, "hello", posts[0].Record.Text)
}

func TestSearchPosts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/xrpc/app.bsky.feed.searchPosts", r.URL.Path)
		assert.Equal(t, "#retro", r.URL.Query().Get("q"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"posts": []map[string]interface{}{
				{"uri": "at://did:plc:b/app.bsky.feed.post/2", "cid": "bafy2"},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	posts, err := client.SearchPosts(context.Background(), "#retro", 10)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "at://did:plc:b/app.bsky.feed.post/2", posts[0].URI)
}

func TestLoginStoresSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/xrpc/com.atproto.server.createSession", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gltch.bsky.social", body["identifier"])

		json.NewEncoder(w).Encode(map[string]string{
			"did":        "did:plc:gltch",
			"handle":     "gltch.bsky.social",
			"accessJwt":  "access-token",
			"refreshJwt": "refresh-token",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	require.NoError(t, client.Login(context.Background(), "gltch.bsky.social", "app-password"))
	assert.Equal(t, "did:plc:gltch", client.DID())
}

func TestAuthenticatedCallsCarrySessionToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]interface{}{"feed": []interface{}{}})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	session := &Session{DID: "did:plc:user", AccessJwt: "user-token"}
	_, err := client.GetActorLikes(context.Background(), session, 50)
	require.NoError(t, err)
}

func TestCreateLikeReturnsRecordURI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/xrpc/com.atproto.repo.createRecord", r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "app.bsky.feed.like", body["collection"])
		assert.Equal(t, "did:plc:user", body["repo"])

		json.NewEncoder(w).Encode(map[string]string{
			"uri": "at://did:plc:user/app.bsky.feed.like/3jx",
			"cid": "bafylike",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	session := &Session{DID: "did:plc:user", AccessJwt: "user-token"}
	likeURI, err := client.CreateLike(context.Background(), session, "at://did:plc:a/app.bsky.feed.post/1", "bafy1")
	require.NoError(t, err)
	assert.Equal(t, "at://did:plc:user/app.bsky.feed.like/3jx", likeURI)
}

func TestDeleteLikeExtractsRecordKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/xrpc/com.atproto.repo.deleteRecord", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "3jx", body["rkey"])

		w.Write([]byte("{}"))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	session := &Session{DID: "did:plc:user", AccessJwt: "user-token"}
	err := client.DeleteLike(context.Background(), session, "at://did:plc:user/app.bsky.feed.like/3jx")
	require.NoError(t, err)
}

func TestErrorStatusSurfacesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":"UpstreamFailure"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, _, err := client.GetTimeline(context.Background(), 10, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
	assert.Contains(t, err.Error(), "UpstreamFailure")
}

func TestRecordKeyMalformedURI(t *testing.T) {
	_, err := recordKey("not-a-record-uri/")
	assert.Error(t, err)

	rkey, err := recordKey("at://did:plc:a/app.bsky.feed.like/abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", rkey)
}
