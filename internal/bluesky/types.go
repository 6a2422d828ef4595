package bluesky

import (
	"encoding/json"
	"fmt"
	"time"
)

// Author identifies the creator of a post on the AT Protocol network
type Author struct {
	DID         string `json:"did"`
	Handle      string `json:"handle"`
	DisplayName string `json:"displayName,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
}

// BlobRef is an AT Protocol blob reference inside an embed
type BlobRef struct {
	Ref struct {
		Link string `json:"$link"`
	} `json:"ref"`
	MimeType string `json:"mimeType,omitempty"`
	Size     int    `json:"size,omitempty"`
}

// EmbedImage is a single image inside an images embed
type EmbedImage struct {
	Image BlobRef `json:"image"`
	Alt   string  `json:"alt,omitempty"`
}

// EmbedExternal is an external link card embed
type EmbedExternal struct {
	URI         string `json:"uri"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// EmbedKind discriminates the known embed variants
type EmbedKind string

const (
	EmbedNone    EmbedKind = ""
	EmbedImages  EmbedKind = "app.bsky.embed.images"
	EmbedVideo   EmbedKind = "app.bsky.embed.video"
	EmbedLink    EmbedKind = "app.bsky.embed.external"
	EmbedUnknown EmbedKind = "unknown"
)

// Embed is a tagged union over the embed kinds GLTCH understands. Records
// carry arbitrary $type payloads; anything unrecognized is kept verbatim as
// EmbedUnknown so it round-trips through the API untouched.
type Embed struct {
	Kind     EmbedKind
	Images   []EmbedImage
	Video    *BlobRef
	External *EmbedExternal

	raw json.RawMessage
}

// UnmarshalJSON decodes an embed by its $type discriminator
func (e *Embed) UnmarshalJSON(data []byte) error {
	e.raw = append(e.raw[:0], data...)

	var probe struct {
		Type string `json:"$type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("embed: %w", err)
	}

	switch EmbedKind(probe.Type) {
	case EmbedImages:
		var body struct {
			Images []EmbedImage `json:"images"`
		}
		if err := json.Unmarshal(data, &body); err != nil {
			return fmt.Errorf("images embed: %w", err)
		}
		e.Kind = EmbedImages
		e.Images = body.Images
	case EmbedVideo:
		var body struct {
			Video *BlobRef `json:"video"`
		}
		if err := json.Unmarshal(data, &body); err != nil {
			return fmt.Errorf("video embed: %w", err)
		}
		e.Kind = EmbedVideo
		e.Video = body.Video
	case EmbedLink:
		var body struct {
			External *EmbedExternal `json:"external"`
		}
		if err := json.Unmarshal(data, &body); err != nil {
			return fmt.Errorf("external embed: %w", err)
		}
		e.Kind = EmbedLink
		e.External = body.External
	default:
		e.Kind = EmbedUnknown
	}

	return nil
}

// MarshalJSON re-emits the embed exactly as it arrived from the network
func (e Embed) MarshalJSON() ([]byte, error) {
	if len(e.raw) == 0 {
		return []byte("null"), nil
	}
	return e.raw, nil
}

// Record is the post record body (app.bsky.feed.post)
type Record struct {
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	Embed     *Embed    `json:"embed,omitempty"`
}

// Post is a post as returned by the app.bsky feed endpoints
type Post struct {
	URI         string    `json:"uri"`
	CID         string    `json:"cid"`
	Author      Author    `json:"author"`
	Record      Record    `json:"record"`
	ReplyCount  int       `json:"replyCount,omitempty"`
	RepostCount int       `json:"repostCount,omitempty"`
	LikeCount   int       `json:"likeCount,omitempty"`
	IndexedAt   time.Time `json:"indexedAt"`
}

// Time returns the post's creation time, falling back to indexedAt when the
// record has no createdAt. Feed ordering and score decay both key off this.
func (p *Post) Time() time.Time {
	if !p.Record.CreatedAt.IsZero() {
		return p.Record.CreatedAt
	}
	return p.IndexedAt
}

// ImageURL returns a CDN thumbnail URL for the post's first image embed
func (p *Post) ImageURL() string {
	e := p.Record.Embed
	if e == nil || e.Kind != EmbedImages || len(e.Images) == 0 {
		return ""
	}
	ref := e.Images[0].Image.Ref.Link
	if ref == "" {
		return ""
	}
	return fmt.Sprintf("https://cdn.bsky.app/img/feed_thumbnail/plain/%s/%s@jpeg", p.Author.DID, ref)
}

// VideoURL returns a blob URL for the post's video embed
func (p *Post) VideoURL() string {
	e := p.Record.Embed
	if e == nil || e.Kind != EmbedVideo || e.Video == nil {
		return ""
	}
	ref := e.Video.Ref.Link
	if ref == "" {
		return ""
	}
	return fmt.Sprintf("https://bsky.social/xrpc/com.atproto.sync.getBlob?did=%s&cid=%s", p.Author.DID, ref)
}

// Session is an authenticated AT Protocol session for a single user. Vote
// mirroring acts on behalf of the user, so callers pass their own session
// rather than the server's.
type Session struct {
	DID        string `json:"did"`
	Handle     string `json:"handle"`
	AccessJwt  string `json:"accessJwt"`
	RefreshJwt string `json:"refreshJwt,omitempty"`
}

// feedItem wraps a post in feed-shaped responses
type feedItem struct {
	Post Post `json:"post"`
}

type feedResponse struct {
	Feed   []feedItem `json:"feed"`
	Cursor string     `json:"cursor,omitempty"`
}

type searchResponse struct {
	Posts  []Post `json:"posts"`
	Cursor string `json:"cursor,omitempty"`
}

func postsFromFeed(items []feedItem) []Post {
	posts := make([]Post, 0, len(items))
	for _, item := range items {
		posts = append(posts, item.Post)
	}
	return posts
}
