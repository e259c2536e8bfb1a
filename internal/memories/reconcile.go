package memories

import "github.com/everkeep/backend/internal/models"

// Reconcile decides whether freshly fetched records differ meaningfully from
// the cached ones. When the cached slice is absent the fresh slice wins
// unconditionally. Otherwise the two are compared positionally by UpdatedAt;
// if the length and every pairwise fingerprint match, the original cached
// slice is returned unchanged so downstream consumers can skip work on
// reference equality.
//
// The positional comparison is order-sensitive: a backend returning the same
// logical set in a different order reads as a change. This mirrors the
// behavior the gallery has always had and is kept deliberately; ReconcileByID
// is the order-independent alternative.
func Reconcile(cached, fresh []models.Memory) []models.Memory {
	if cached == nil {
		return fresh
	}

	if len(cached) != len(fresh) {
		return fresh
	}
	for i := range fresh {
		if fresh[i].UpdatedAt != cached[i].UpdatedAt {
			return fresh
		}
	}

	return cached
}

// ReconcileByID compares the two sets keyed by record id instead of by
// position, so a reordered response with identical fingerprints still counts
// as unchanged.
func ReconcileByID(cached, fresh []models.Memory) []models.Memory {
	if cached == nil {
		return fresh
	}
	if len(cached) != len(fresh) {
		return fresh
	}

	fingerprints := make(map[string]string, len(cached))
	for _, item := range cached {
		fingerprints[item.ID] = item.UpdatedAt
	}
	for _, item := range fresh {
		updatedAt, ok := fingerprints[item.ID]
		if !ok || updatedAt != item.UpdatedAt {
			return fresh
		}
	}

	return cached
}
