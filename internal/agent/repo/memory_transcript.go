package repo

import (
	"context"
	"sync"

	"github.com/vesselquery/server/internal/agent/model"
)

// MemoryTranscriptRepository is the in-process default when no Redis endpoint
// is configured. Also used by tests.
type MemoryTranscriptRepository struct {
	mu       sync.Mutex
	sessions map[string][]model.Turn
}

func NewMemoryTranscriptRepository() *MemoryTranscriptRepository {
	return &MemoryTranscriptRepository{sessions: make(map[string][]model.Turn)}
}

func (r *MemoryTranscriptRepository) AppendTurn(_ context.Context, sessionID string, turn model.Turn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sessionID] = append(r.sessions[sessionID], turn)
	return nil
}

func (r *MemoryTranscriptRepository) LoadTranscript(_ context.Context, sessionID string) ([]model.Turn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Turn, len(r.sessions[sessionID]))
	copy(out, r.sessions[sessionID])
	return out, nil
}

func (r *MemoryTranscriptRepository) ClearTranscript(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
	return nil
}

func (r *MemoryTranscriptRepository) TurnCount(_ context.Context, sessionID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions[sessionID]), nil
}

var _ model.TranscriptRepository = (*MemoryTranscriptRepository)(nil)
