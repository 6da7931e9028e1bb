// Package recon merges remote order snapshots into the client's working
// order list.
//
// The remote store is an append-only log polled every few seconds, so a
// fetched snapshot may be stale relative to transitions the kitchen just
// applied locally (remote lag) or ahead of them (another device advanced
// the order). The merge is monotonic in status rank: an order never moves
// backward across reconciliation cycles, which is what keeps a ticket
// from visually un-completing itself mid-shift.
package recon

import (
	"time"

	"comanda-system/internal/domain"
)

// Merge combines the current working list with a freshly fetched remote
// snapshot and returns the new working list. It is a pure function: no
// I/O, no mutation of either input.
//
// Guarantees:
//   - every order id in the snapshot appears exactly once in the result;
//   - a locally-created order not yet visible remotely survives unchanged;
//   - for ids on both sides, the merged status is the higher-ranked of
//     the two, with accepted/served timestamps taken from the side that
//     produced it.
//
// Result ordering is local-only orders first (in working-list order),
// then snapshot orders in snapshot order. Views sort for themselves.
func Merge(current, remote []domain.Order) []domain.Order {
	// The adapter already deduplicates by id, but a second last-write-wins
	// pass keeps the "exactly once" guarantee independent of it.
	remoteByID := make(map[string]int, len(remote))
	snapshot := make([]domain.Order, 0, len(remote))
	for _, ro := range remote {
		if ro.ID == "" {
			continue
		}
		if i, ok := remoteByID[ro.ID]; ok {
			snapshot[i] = ro
			continue
		}
		remoteByID[ro.ID] = len(snapshot)
		snapshot = append(snapshot, ro)
	}

	localByID := make(map[string]domain.Order, len(current))
	for _, lo := range current {
		if _, ok := localByID[lo.ID]; !ok {
			localByID[lo.ID] = lo
		}
	}

	merged := make([]domain.Order, 0, len(snapshot)+len(current))

	// Locally-created orders the snapshot has not caught up with yet.
	seen := make(map[string]struct{}, len(current))
	for _, lo := range current {
		if _, dup := seen[lo.ID]; dup {
			continue
		}
		seen[lo.ID] = struct{}{}
		if _, ok := remoteByID[lo.ID]; !ok {
			merged = append(merged, lo)
		}
	}

	for _, ro := range snapshot {
		lo, ok := localByID[ro.ID]
		if !ok {
			merged = append(merged, ro)
			continue
		}
		merged = append(merged, mergeOne(lo, ro))
	}
	return merged
}

// mergeOne resolves a single order present on both sides. The remote row
// is authoritative for everything except status and the transition
// timestamps, where a locally-applied forward transition wins over a
// stale read.
func mergeOne(local, remote domain.Order) domain.Order {
	out := remote

	lr, rr := local.Status.Rank(), remote.Status.Rank()
	switch {
	case lr > rr:
		out.Status = local.Status
		out.AcceptedAt = pickTime(local.AcceptedAt, remote.AcceptedAt)
		out.ServedAt = pickTime(local.ServedAt, remote.ServedAt)
	case rr > lr:
		out.AcceptedAt = pickTime(remote.AcceptedAt, local.AcceptedAt)
		out.ServedAt = pickTime(remote.ServedAt, local.ServedAt)
	default:
		// Equal rank: prefer a non-empty timestamp, local first since it
		// was set by a direct user action.
		out.AcceptedAt = pickTime(local.AcceptedAt, remote.AcceptedAt)
		out.ServedAt = pickTime(local.ServedAt, remote.ServedAt)
	}
	return out
}

func pickTime(primary, fallback time.Time) time.Time {
	if !primary.IsZero() {
		return primary
	}
	return fallback
}
