// Package export implements the two ways a result leaves the dashboard:
// a share-ready post for a social platform and a Markdown summary file.
package export

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/tensortrade/council-dashboard/internal/model"
	"github.com/tensortrade/council-dashboard/internal/session"
)

// DismissAfter is how long the share confirmation stays on screen.
const DismissAfter = 10 * time.Second

const (
	xComposeURL        = "https://twitter.com/intent/tweet"
	linkedInComposeURL = "https://www.linkedin.com/feed/"
)

var (
	// ErrUnknownPlatform is returned for platforms other than x and linkedin.
	ErrUnknownPlatform = errors.New("export: unknown share platform")

	// ErrNoPost matches a *NoPostError.
	ErrNoPost = errors.New("export: no post available")
)

// Platform is a share target.
type Platform string

const (
	PlatformX        Platform = "x"
	PlatformLinkedIn Platform = "linkedin"
)

// ParsePlatform accepts "x" or "linkedin", case-insensitively.
func ParsePlatform(s string) (Platform, error) {
	switch Platform(strings.ToLower(strings.TrimSpace(s))) {
	case PlatformX:
		return PlatformX, nil
	case PlatformLinkedIn:
		return PlatformLinkedIn, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPlatform, s)
}

// Name is the platform's display name.
func (p Platform) Name() string {
	if p == PlatformLinkedIn {
		return "LinkedIn"
	}
	return "X"
}

// NoPostError means neither the cache nor the result has a post.
type NoPostError struct {
	Platform Platform
}

func (e *NoPostError) Error() string {
	return fmt.Sprintf("No %s post available. Please run an analysis first.\n\n"+
		"If you just ran an analysis, the PersonaAgent may not have generated content yet.", e.Platform.Name())
}

func (e *NoPostError) Is(target error) bool { return target == ErrNoPost }

// UpstreamError means the post is an error marker from the persona agent
// rather than real content.
type UpstreamError struct {
	Platform Platform
	Post     string
}

func (e *UpstreamError) Error() string {
	return "PersonaAgent Error: " + e.Post + "\n\nThe AI service may be rate limited. Please try again in a few moments."
}

// ShareResult is what the page needs to finish a share: the clipboard text
// and where to compose the post.
type ShareResult struct {
	Platform       Platform `json:"platform"`
	Text           string   `json:"text"`
	ComposeURL     string   `json:"compose_url"`
	Prefilled      bool     `json:"prefilled"`
	DismissAfterMS int64    `json:"dismiss_after_ms"`
}

// IsErrorMarker reports whether a post is the persona agent's error marker.
func IsErrorMarker(post string) bool {
	return strings.HasPrefix(post, "[Error") || strings.Contains(post, "[Error:")
}

// Share resolves the post for a platform: the cached entry, else the
// current result's persona_post, which is then written back to the cache.
// A failed share changes nothing else.
func Share(sess *session.Session, p Platform) (*ShareResult, error) {
	var post string
	sess.UpdateShare(func(result *model.AnalysisResult, share *model.ShareCache) {
		entry := &share.X
		if p == PlatformLinkedIn {
			entry = &share.LinkedIn
		}
		if *entry == "" && result != nil && result.PersonaPost != nil {
			if p == PlatformLinkedIn {
				*entry = result.PersonaPost.LinkedIn
			} else {
				*entry = result.PersonaPost.X
			}
		}
		post = *entry
	})

	if post == "" {
		return nil, &NoPostError{Platform: p}
	}
	if IsErrorMarker(post) {
		return nil, &UpstreamError{Platform: p, Post: post}
	}

	res := &ShareResult{
		Platform:       p,
		Text:           post,
		DismissAfterMS: DismissAfter.Milliseconds(),
	}
	switch p {
	case PlatformX:
		q := url.Values{"text": {strings.ReplaceAll(post, "\n", " ")}}
		res.ComposeURL = xComposeURL + "?" + q.Encode()
		res.Prefilled = true
	case PlatformLinkedIn:
		// LinkedIn has no text parameter; the user pastes from the clipboard.
		res.ComposeURL = linkedInComposeURL
	}
	return res, nil
}
