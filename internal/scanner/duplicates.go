package scanner

import (
	"context"

	"media-catalog/internal/database"
)

// DuplicateGroup is one cluster of records sharing a fingerprint.
type DuplicateGroup struct {
	Fingerprint string                 `json:"fingerprint"`
	Records     []database.MediaRecord `json:"records"`
}

// Duplicates returns all duplicate clusters in the catalog. Records come
// back from the store ordered by fingerprint, so clustering is a single
// pass over contiguous runs. Empty when no fingerprint repeats.
func (s *Scanner) Duplicates(ctx context.Context) ([]DuplicateGroup, error) {
	records, err := s.db.Duplicates(ctx)
	if err != nil {
		return nil, err
	}
	return GroupDuplicates(records), nil
}

// GroupDuplicates clusters fingerprint-ordered records into groups.
func GroupDuplicates(records []database.MediaRecord) []DuplicateGroup {
	groups := []DuplicateGroup{}
	for _, rec := range records {
		if n := len(groups); n > 0 && groups[n-1].Fingerprint == rec.Fingerprint {
			groups[n-1].Records = append(groups[n-1].Records, rec)
			continue
		}
		groups = append(groups, DuplicateGroup{
			Fingerprint: rec.Fingerprint,
			Records:     []database.MediaRecord{rec},
		})
	}
	return groups
}
