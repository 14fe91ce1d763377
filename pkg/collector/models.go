package collector

import (
	"errors"
	"fmt"
	"time"
)

// MediaItem is the external media source's schema for one tagged post.
type MediaItem struct {
	ID        string `json:"id"`
	MediaURL  string `json:"media_url"`
	Permalink string `json:"permalink"`
	Caption   string `json:"caption,omitempty"`
	Timestamp string `json:"timestamp"`
	LikeCount int    `json:"like_count,omitempty"`
	Username  string `json:"username,omitempty"`
}

// timestampLayouts covers RFC3339 and the zone-offset variant the source
// actually emits.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
}

var (
	errMissingID        = errors.New("missing id")
	errMissingMediaURL  = errors.New("missing media_url")
	errMissingTimestamp = errors.New("missing timestamp")
)

// Validate checks the item against the expected external shape. Items that
// fail validation are discarded by the pipeline, logged but never fatal.
func (m MediaItem) Validate() error {
	if m.ID == "" {
		return errMissingID
	}
	if m.MediaURL == "" {
		return errMissingMediaURL
	}
	if m.Timestamp == "" {
		return errMissingTimestamp
	}
	if _, err := m.Time(); err != nil {
		return err
	}
	return nil
}

func (m MediaItem) Time() (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, m.Timestamp); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp '%s'", m.Timestamp)
}
