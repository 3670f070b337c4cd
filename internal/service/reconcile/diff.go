package reconcile

import (
	"fmt"
	"time"

	"lifebookshelf-sync/internal/domain"
)

// BuildUpdates compares the dashboard's view against the store of record and
// returns one update per publication whose status or publish date diverged.
// Pure computation: both inputs are already fetched, nothing here touches I/O.
//
// A mirrored publication with no authoritative counterpart is skipped, never
// an error, since editors can stage rows the store does not know yet. Duplicate
// publication ids in the store of record are data corruption and are rejected
// outright rather than silently resolved to the first row.
//
// The result preserves the mirrored iteration order (request date descending)
// so runs are deterministic.
func BuildUpdates(authoritative []domain.Publication, mirrored []domain.MirroredPublication) ([]domain.PublicationUpdate, error) {
	byID := make(map[int64]domain.Publication, len(authoritative))
	for _, pub := range authoritative {
		if _, ok := byID[pub.PublicationID]; ok {
			return nil, fmt.Errorf("duplicate publication id %d in store of record", pub.PublicationID)
		}
		byID[pub.PublicationID] = pub
	}

	var updates []domain.PublicationUpdate
	for _, m := range mirrored {
		pub, ok := byID[m.PublicationID]
		if !ok {
			continue
		}
		if pub.PublishStatus == m.PublishStatus && equalInstants(pub.PublishedAt, m.PublishedAt) {
			continue
		}
		updates = append(updates, domain.PublicationUpdate{
			PublicationID:         pub.PublicationID,
			PreviousPublishStatus: pub.PublishStatus,
			PreviousPublishedAt:   pub.PublishedAt,
			NewPublishStatus:      m.PublishStatus,
			NewPublishedAt:        m.PublishedAt,
		})
	}

	return updates, nil
}

// equalInstants compares two optional timestamps by instant, no tolerance.
func equalInstants(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
