package heuristic

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConflictingSelection is returned when both include and exclude ids
	// are given.
	ErrConflictingSelection = errors.New("include and exclude are mutually exclusive")

	// ErrUnknownHeuristic is returned for ids that match no heuristic.
	ErrUnknownHeuristic = errors.New("unknown heuristic")
)

// All returns a fresh instance of every registered heuristic in registry
// order. The legitimacy gate is not part of the catalogue.
func All() []Heuristic {
	return []Heuristic{
		NewJustJoined(),
		NewMissingCommonFields(),
		NewCommitsFromUnlinkedEmails(),
		NewLowCommunityActivity(),
		NewStarredBySuspiciousUsers(),
		NewRepoCommitsSuspiciousEmails(),
		NewForksFromTakenDownRepos(DefaultMaxForksToAnalyze),
		NewOnlyForks(),
		NewStargazersJoinedSameDay(),
	}
}

// IDs returns the ids of All in registry order.
func IDs() []string {
	all := All()
	ids := make([]string, len(all))
	for i, h := range all {
		ids[i] = h.ID()
	}
	return ids
}

// Lookup returns the registered heuristic with the given id.
func Lookup(id string) (Heuristic, bool) {
	for _, h := range All() {
		if h.ID() == id {
			return h, true
		}
	}
	return nil, false
}

// Resolve selects heuristics from the catalogue. With include, only those
// ids are kept; with exclude, those ids are dropped; with neither, every
// heuristic is kept. Registry order is preserved either way. Unknown ids
// are rejected.
func Resolve(include, exclude []string) ([]Heuristic, error) {
	if len(include) > 0 && len(exclude) > 0 {
		return nil, ErrConflictingSelection
	}

	all := All()
	known := make(map[string]bool, len(all))
	for _, h := range all {
		known[h.ID()] = true
	}
	var unknown []string
	for _, id := range append(append([]string(nil), include...), exclude...) {
		if !known[id] {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownHeuristic, strings.Join(unknown, ", "))
	}

	selected := make([]Heuristic, 0, len(all))
	switch {
	case len(include) > 0:
		keep := toSet(include)
		for _, h := range all {
			if keep[h.ID()] {
				selected = append(selected, h)
			}
		}
	case len(exclude) > 0:
		drop := toSet(exclude)
		for _, h := range all {
			if !drop[h.ID()] {
				selected = append(selected, h)
			}
		}
	default:
		selected = all
	}
	return selected, nil
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
