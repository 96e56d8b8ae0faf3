package history

import (
	"errors"
	"sort"
	"time"
)

// ErrSessionNotFound is returned when no record satisfies both the start
// time and the project predicates.
var ErrSessionNotFound = errors.New("no session matches start time and project")

// FindSession returns the session id of the first record in log order with
// Timestamp >= startTS and a project equal to project. Equality is exact:
// no path normalization, no trailing-slash tolerance. The scan stops at the
// first hit, so a later record with a closer timestamp never wins. Records
// without a timestamp cannot qualify.
//
// When two sessions start for the same project inside the same window, the
// earlier record in file order decides, which can pick the wrong session.
// That ambiguity is inherent to the time+project correlation key.
func FindSession(records []Record, startTS int64, project string) (string, error) {
	for _, rec := range records {
		if rec.Timestamp != 0 && rec.Timestamp >= startTS && rec.Project == project {
			if rec.SessionID == "" {
				// The matching record predates session ids; there is
				// nothing to scope the history to.
				return "", ErrSessionNotFound
			}
			return rec.SessionID, nil
		}
	}
	return "", ErrSessionNotFound
}

// SessionRecords returns the records belonging to sessionID, in log order.
func SessionRecords(records []Record, sessionID string) []Record {
	var matched []Record
	for _, rec := range records {
		if rec.SessionID == sessionID {
			matched = append(matched, rec)
		}
	}
	return matched
}

// ProjectRecords returns every record for project across all of its
// sessions. Records sort by timestamp inside each session (stable, so ties
// keep log order), sessions order by their earliest timestamp, and the
// groups concatenate into one flat sequence.
func ProjectRecords(records []Record, project string) []Record {
	groups := make(map[string][]Record)
	var order []string
	for _, rec := range records {
		if rec.Project != project {
			continue
		}
		if _, ok := groups[rec.SessionID]; !ok {
			order = append(order, rec.SessionID)
		}
		groups[rec.SessionID] = append(groups[rec.SessionID], rec)
	}

	for _, id := range order {
		group := groups[id]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Timestamp < group[j].Timestamp
		})
	}
	// After the in-group sort the first record holds the minimum timestamp.
	sort.SliceStable(order, func(i, j int) bool {
		return groups[order[i]][0].Timestamp < groups[order[j]][0].Timestamp
	})

	var flattened []Record
	for _, id := range order {
		flattened = append(flattened, groups[id]...)
	}
	return flattened
}

// SessionSummary describes one session's activity within a project.
type SessionSummary struct {
	ID           string
	Project      string
	StartedAt    time.Time
	LastActivity time.Time
	Inputs       int
	FirstInput   string
}

// SummarizeSessions builds one summary per session seen for project, newest
// session first.
func SummarizeSessions(records []Record, project string) []SessionSummary {
	index := make(map[string]int)
	var summaries []SessionSummary
	for _, rec := range records {
		if rec.Project != project {
			continue
		}
		i, ok := index[rec.SessionID]
		if !ok {
			i = len(summaries)
			index[rec.SessionID] = i
			summaries = append(summaries, SessionSummary{ID: rec.SessionID, Project: rec.Project})
		}
		s := &summaries[i]
		s.Inputs++
		if rec.Timestamp != 0 {
			ts := time.UnixMilli(rec.Timestamp)
			if s.StartedAt.IsZero() || ts.Before(s.StartedAt) {
				s.StartedAt = ts
			}
			if ts.After(s.LastActivity) {
				s.LastActivity = ts
			}
		}
		if s.FirstInput == "" && rec.Display != "" {
			s.FirstInput = rec.Display
		}
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].StartedAt.After(summaries[j].StartedAt)
	})

	return summaries
}
