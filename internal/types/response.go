package types

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnrecognizedResponse is returned when a resource response body carries
// none of the known payload keys.
var ErrUnrecognizedResponse = errors.New("unrecognized resource response")

// ResourceResponse is the decoded body of a resource fetch. Exactly one of
// the payload fields is set.
type ResourceResponse struct {
	Metas     []MetaPreview `json:"metas,omitempty"`
	Meta      *MetaDetail   `json:"meta,omitempty"`
	Streams   []Stream      `json:"streams,omitempty"`
	Subtitles []Subtitle    `json:"subtitles,omitempty"`
}

// UnmarshalJSON rejects bodies that match no payload kind.
// An explicitly empty list (e.g. {"metas":[]}) is a valid response.
func (r *ResourceResponse) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var out ResourceResponse
	switch {
	case raw["metas"] != nil:
		if err := json.Unmarshal(raw["metas"], &out.Metas); err != nil {
			return fmt.Errorf("metas: %w", err)
		}
		if out.Metas == nil {
			out.Metas = []MetaPreview{}
		}
	case raw["meta"] != nil:
		if err := json.Unmarshal(raw["meta"], &out.Meta); err != nil {
			return fmt.Errorf("meta: %w", err)
		}
	case raw["streams"] != nil:
		if err := json.Unmarshal(raw["streams"], &out.Streams); err != nil {
			return fmt.Errorf("streams: %w", err)
		}
		if out.Streams == nil {
			out.Streams = []Stream{}
		}
	case raw["subtitles"] != nil:
		if err := json.Unmarshal(raw["subtitles"], &out.Subtitles); err != nil {
			return fmt.Errorf("subtitles: %w", err)
		}
		if out.Subtitles == nil {
			out.Subtitles = []Subtitle{}
		}
	default:
		return ErrUnrecognizedResponse
	}

	*r = out
	return nil
}

// MetaPreview is a catalog entry.
type MetaPreview struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	Poster      string `json:"poster,omitempty"`
	PosterShape string `json:"posterShape,omitempty"`
	Description string `json:"description,omitempty"`
	ReleaseInfo string `json:"releaseInfo,omitempty"`
}

// MetaDetail is the full description of a single title.
type MetaDetail struct {
	MetaPreview
	Genres []string `json:"genres,omitempty"`
	Videos []Video  `json:"videos,omitempty"`
}

// Video is one playable entry of a meta (an episode, a trailer, ...).
type Video struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Released string `json:"released,omitempty"`
	Season   int    `json:"season,omitempty"`
	Episode  int    `json:"episode,omitempty"`
}

// Stream is a playable source.
type Stream struct {
	Name        string `json:"name,omitempty"`
	Title       string `json:"title,omitempty"`
	URL         string `json:"url,omitempty"`
	InfoHash    string `json:"infoHash,omitempty"`
	FileIdx     *int   `json:"fileIdx,omitempty"`
	YtID        string `json:"ytId,omitempty"`
	ExternalURL string `json:"externalUrl,omitempty"`
}

// Subtitle is a subtitle track.
type Subtitle struct {
	ID   string `json:"id"`
	Lang string `json:"lang"`
	URL  string `json:"url"`
}
