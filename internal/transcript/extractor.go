package transcript

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

type Extractor struct {
	provider Provider
}

func NewExtractor(provider Provider) *Extractor {
	return &Extractor{provider: provider}
}

// Fetch returns the best available transcript for the video. Tiers, in order:
// manually-created captions in the preferred language, auto-generated captions
// in the preferred language, manually-created captions in any language, then
// auto-generated captions in any language. The returned Language always
// reflects the track actually obtained, never the preference. An explicit
// captions-disabled signal from the provider short-circuits all tiers, and
// rate limits propagate untouched; retry policy lives with the caller.
func (e *Extractor) Fetch(ctx context.Context, videoID, language string) (*Transcript, error) {
	tracks, err := e.provider.ListTracks(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, fmt.Errorf("%w: video %s has no caption tracks", ErrNoTranscript, videoID)
	}

	tiers := []struct {
		language  string
		generated bool
	}{
		{language, false},
		{language, true},
		{"", false},
		{"", true},
	}

	for _, tier := range tiers {
		track, ok := pickTrack(tracks, tier.language, tier.generated)
		if !ok {
			continue
		}
		segments, err := e.provider.FetchTrack(ctx, videoID, track)
		if err != nil {
			return nil, err
		}
		source := SourceManual
		if track.Generated {
			source = SourceAuto
		}
		if !languageMatches(track.Language, language) {
			slog.InfoContext(ctx, "preferred transcript language unavailable, using fallback",
				"video_id", videoID, "preferred", language, "actual", track.Language, "source", source)
		}
		return &Transcript{Segments: segments, Language: track.Language, Source: source}, nil
	}

	return nil, fmt.Errorf("%w: video %s, preferred language %q", ErrNoTranscript, videoID, language)
}

// pickTrack returns the first track matching the tier. An empty language
// matches any track.
func pickTrack(tracks []Track, language string, generated bool) (Track, bool) {
	for _, t := range tracks {
		if t.Generated != generated {
			continue
		}
		if language == "" || languageMatches(t.Language, language) {
			return t, true
		}
	}
	return Track{}, false
}

// languageMatches treats regional variants ("en-US") as matching their base
// language ("en").
func languageMatches(actual, preferred string) bool {
	actual = strings.ToLower(actual)
	preferred = strings.ToLower(preferred)
	return actual == preferred || strings.HasPrefix(actual, preferred+"-")
}
