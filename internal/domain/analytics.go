package domain

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Contributor is a per-user activity summary for an ended session
type Contributor struct {
	UserID             string `json:"userId"`
	Name               string `json:"name"`
	Edits              int    `json:"edits"`
	Comments           int    `json:"comments"`
	ActivityScore      int    `json:"activityScore"`
	ActivityPercentage int    `json:"activityPercentage"`
}

// SessionAnalytics aggregates a session's event log
type SessionAnalytics struct {
	SessionID           uuid.UUID     `json:"sessionId"`
	SessionTitle        string        `json:"sessionTitle"`
	SessionDuration     string        `json:"sessionDuration"`
	DurationMinutes     int           `json:"durationMinutes"`
	TotalEdits          int           `json:"totalEdits"`
	TotalComments       int           `json:"totalComments"`
	TotalEvents         int           `json:"totalEvents"`
	ActiveCollaborators int           `json:"activeCollaborators"`
	Contributors        []Contributor `json:"contributors"`
}

// ComputeAnalytics derives activity metrics from a session's event log.
// Edits are weighted double. CODE_CHANGE events carry no user attribution
// and count only toward the session-wide edit total.
func ComputeAnalytics(session *Session, events []SessionEvent) *SessionAnalytics {
	var endedAt time.Time
	if session.EndedAt != nil {
		endedAt = *session.EndedAt
	}
	durationMinutes := int(endedAt.Sub(session.StartedAt).Minutes())

	totalEdits := 0
	totalComments := 0
	byUser := make(map[string]*Contributor)

	for _, e := range events {
		switch e.Type {
		case EventCodeChange:
			totalEdits++
		case EventCommentAdd, EventCommentResolve, EventCommentReopen:
			if e.Type == EventCommentAdd {
				totalComments++
			}
			p, ok := e.Payload.(ThreadPayload)
			if !ok {
				continue
			}
			creator := p.Thread.CreatedBy
			c, exists := byUser[creator.UserID]
			if !exists {
				c = &Contributor{UserID: creator.UserID, Name: creator.Name}
				byUser[creator.UserID] = c
			}
			// Only COMMENT_ADD scores; resolve/reopen still mark the
			// user as an active collaborator.
			if e.Type == EventCommentAdd {
				c.Comments++
			}
		}
	}

	contributors := make([]Contributor, 0, len(byUser))
	for _, c := range byUser {
		c.ActivityScore = c.Edits*2 + c.Comments
		contributors = append(contributors, *c)
	}

	sort.Slice(contributors, func(i, j int) bool {
		if contributors[i].ActivityScore != contributors[j].ActivityScore {
			return contributors[i].ActivityScore > contributors[j].ActivityScore
		}
		return contributors[i].Name < contributors[j].Name
	})

	maxScore := 1
	if len(contributors) > 0 && contributors[0].ActivityScore > 0 {
		maxScore = contributors[0].ActivityScore
	}
	for i := range contributors {
		contributors[i].ActivityPercentage = int(math.Round(
			float64(contributors[i].ActivityScore) / float64(maxScore) * 100,
		))
	}

	return &SessionAnalytics{
		SessionID:           session.ID,
		SessionTitle:        session.Title,
		SessionDuration:     fmt.Sprintf("%dm", durationMinutes),
		DurationMinutes:     durationMinutes,
		TotalEdits:          totalEdits,
		TotalComments:       totalComments,
		TotalEvents:         len(events),
		ActiveCollaborators: len(contributors),
		Contributors:        contributors,
	}
}
