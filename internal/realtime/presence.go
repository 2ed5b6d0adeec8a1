package realtime

import (
	"sync"
	"time"
)

// Participant is the ephemeral per-connection presence record for one
// room member. Created on join, discarded on disconnect, never persisted.
type Participant struct {
	UserID     string         `json:"userId"`
	Name       string         `json:"userName"`
	Color      string         `json:"userColor"`
	Cursor     CursorPosition `json:"position"`
	LastActive time.Time      `json:"lastActive"`
}

// Presence tracks connected participants and their last-known cursor
// position per session. Lives only in memory.
type Presence struct {
	mu        sync.RWMutex
	bySession map[string]map[string]*Participant
}

// NewPresence creates an empty presence registry
func NewPresence() *Presence {
	return &Presence{bySession: make(map[string]map[string]*Participant)}
}

// Add registers a participant in a session
func (p *Presence) Add(sessionID string, participant *Participant) {
	p.mu.Lock()
	defer p.mu.Unlock()

	room, ok := p.bySession[sessionID]
	if !ok {
		room = make(map[string]*Participant)
		p.bySession[sessionID] = room
	}
	participant.LastActive = time.Now()
	room[participant.UserID] = participant
}

// UpdateCursor records a participant's latest cursor position
func (p *Presence) UpdateCursor(sessionID, userID string, pos CursorPosition) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if participant, ok := p.bySession[sessionID][userID]; ok {
		participant.Cursor = pos
		participant.LastActive = time.Now()
	}
}

// Remove drops a participant from a session, discarding the session's
// registry when it empties
func (p *Presence) Remove(sessionID, userID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	room, ok := p.bySession[sessionID]
	if !ok {
		return
	}
	delete(room, userID)
	if len(room) == 0 {
		delete(p.bySession, sessionID)
	}
}

// List returns a snapshot of the participants in a session
func (p *Presence) List(sessionID string) []Participant {
	p.mu.RLock()
	defer p.mu.RUnlock()

	room := p.bySession[sessionID]
	participants := make([]Participant, 0, len(room))
	for _, participant := range room {
		participants = append(participants, *participant)
	}
	return participants
}
