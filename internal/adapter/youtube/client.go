// Package youtube retrieves caption tracks for public videos through the
// innertube player endpoint, the same API the web player uses.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"brainweave/backend/internal/transcript"
)

const (
	defaultBaseURL = "https://www.youtube.com"
	clientName     = "WEB"
	clientVersion  = "2.20240101.00.00"
)

type Client struct {
	client  *http.Client
	baseURL string
}

func NewClient() *Client {
	return &Client{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: defaultBaseURL,
	}
}

func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
}

type playerResponse struct {
	PlayabilityStatus struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	Captions struct {
		TracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

// ListTracks enumerates the caption tracks the player exposes for a video.
func (c *Client) ListTracks(ctx context.Context, videoID string) ([]transcript.Track, error) {
	player, err := c.fetchPlayer(ctx, videoID)
	if err != nil {
		return nil, err
	}
	tracks := make([]transcript.Track, 0, len(player.Captions.TracklistRenderer.CaptionTracks))
	for _, ct := range player.Captions.TracklistRenderer.CaptionTracks {
		tracks = append(tracks, transcript.Track{
			Language:  ct.LanguageCode,
			Generated: ct.Kind == "asr",
		})
	}
	return tracks, nil
}

// FetchTrack downloads the segments for one caption track. The track must
// come from a prior ListTracks call for the same video.
func (c *Client) FetchTrack(ctx context.Context, videoID string, track transcript.Track) ([]transcript.Segment, error) {
	player, err := c.fetchPlayer(ctx, videoID)
	if err != nil {
		return nil, err
	}

	var baseURL string
	for _, ct := range player.Captions.TracklistRenderer.CaptionTracks {
		if ct.LanguageCode == track.Language && (ct.Kind == "asr") == track.Generated {
			baseURL = ct.BaseURL
			break
		}
	}
	if baseURL == "" {
		return nil, transcript.ErrNoTranscript
	}

	return c.fetchSegments(ctx, baseURL)
}

func (c *Client) fetchPlayer(ctx context.Context, videoID string) (*playerResponse, error) {
	body := fmt.Sprintf(`{"context":{"client":{"clientName":%q,"clientVersion":%q}},"videoId":%q}`,
		clientName, clientVersion, videoID)

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/youtubei/v1/player", strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("player request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, transcript.ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("player api error: %d", resp.StatusCode)
	}

	var player playerResponse
	if err := json.NewDecoder(resp.Body).Decode(&player); err != nil {
		return nil, fmt.Errorf("decode player response: %w", err)
	}

	switch player.PlayabilityStatus.Status {
	case "OK", "":
	case "ERROR", "LOGIN_REQUIRED", "UNPLAYABLE":
		return nil, fmt.Errorf("%w: %s", transcript.ErrVideoUnavailable, player.PlayabilityStatus.Reason)
	}

	if len(player.Captions.TracklistRenderer.CaptionTracks) == 0 {
		return nil, transcript.ErrCaptionsDisabled
	}
	return &player, nil
}

type timedText struct {
	Events []struct {
		StartMs    int64 `json:"tStartMs"`
		DurationMs int64 `json:"dDurationMs"`
		Segs       []struct {
			UTF8 string `json:"utf8"`
		} `json:"segs"`
	} `json:"events"`
}

func (c *Client) fetchSegments(ctx context.Context, trackURL string) ([]transcript.Segment, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", trackURL+"&fmt=json3", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("caption request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, transcript.ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("caption api error: %d", resp.StatusCode)
	}

	var tt timedText
	if err := json.NewDecoder(resp.Body).Decode(&tt); err != nil {
		return nil, fmt.Errorf("decode caption response: %w", err)
	}

	segments := make([]transcript.Segment, 0, len(tt.Events))
	for _, ev := range tt.Events {
		var sb strings.Builder
		for _, seg := range ev.Segs {
			sb.WriteString(seg.UTF8)
		}
		text := strings.TrimSpace(sb.String())
		if text == "" {
			continue
		}
		segments = append(segments, transcript.Segment{
			Start:    time.Duration(ev.StartMs) * time.Millisecond,
			Duration: time.Duration(ev.DurationMs) * time.Millisecond,
			Text:     text,
		})
	}
	if len(segments) == 0 {
		return nil, transcript.ErrNoTranscript
	}
	return segments, nil
}
