package conversations

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/vesselquery/server/internal/agent/model"
	logx "github.com/vesselquery/server/pkg/logger"
)

// Anaphoric vocabulary. Pronoun markers recover the last-referenced vessel
// list; continuation markers recover the last-referenced domain. Both may
// fire on the same query.
var (
	pronounPattern      = regexp.MustCompile(`\b(it|its|them|their)\b`)
	pronounPhrases      = []string{"that vessel", "those vessels", "the vessel", "the ship"}
	continuationPattern = regexp.MustCompile(`\b(same|again|also)\b`)
)

// session is the process-lifetime state for one conversation.
type session struct {
	mu         sync.Mutex
	transcript []model.Turn
	vessels    []string
	domain     model.Domain
}

// Manager owns bounded per-session conversational memory: the transcript,
// the last-referenced vessels and domain. All operations serialize per
// session; sessions never contend with each other.
type Manager struct {
	mu            sync.Mutex
	sessions      map[string]*session
	maxTranscript int

	// Optional write-mirror of transcripts; failures are logged, never fatal.
	archive model.TranscriptRepository
}

const DefaultMaxTranscript = 10

func NewManager(cfg model.SessionConfig, archive model.TranscriptRepository) *Manager {
	max := cfg.MaxTranscript
	if max <= 0 {
		max = DefaultMaxTranscript
	}
	return &Manager{
		sessions:      make(map[string]*session),
		maxTranscript: max,
		archive:       archive,
	}
}

func (m *Manager) session(id string) *session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		s = &session{}
		m.sessions[id] = s
	}
	return s
}

// Resolve scans the query for anaphoric markers and maps them to the
// last-referenced entities of the session. It never touches the transcript.
func (m *Manager) Resolve(sessionID, query string) model.ReferenceResolution {
	s := m.session(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()

	lower := strings.ToLower(query)
	var res model.ReferenceResolution

	if hasPronounMarker(lower) && len(s.vessels) > 0 {
		res.Vessels = append([]string(nil), s.vessels...)
		res.HasReference = true
		logx.Debug().Str("session_id", sessionID).Strs("vessels", res.Vessels).
			Msg("Resolved pronoun reference to vessels")
	}

	if continuationPattern.MatchString(lower) && s.domain != "" {
		res.Domain = s.domain
		res.HasReference = true
		logx.Debug().Str("session_id", sessionID).Str("domain", string(res.Domain)).
			Msg("Resolved continuation reference to domain")
	}

	return res
}

func hasPronounMarker(lower string) bool {
	if pronounPattern.MatchString(lower) {
		return true
	}
	for _, phrase := range pronounPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// Append adds a turn to the session transcript, evicting oldest-first once
// the configured bound is exceeded. The optional archive is mirrored
// best-effort.
func (m *Manager) Append(ctx context.Context, sessionID, role, content string) {
	s := m.session(sessionID)
	s.mu.Lock()
	s.transcript = append(s.transcript, model.Turn{Role: role, Content: content})
	for len(s.transcript) > m.maxTranscript {
		s.transcript = s.transcript[1:]
	}
	s.mu.Unlock()

	if m.archive != nil {
		if err := m.archive.AppendTurn(ctx, sessionID, model.Turn{Role: role, Content: content}); err != nil {
			logx.Warn().Err(err).Str("session_id", sessionID).Msg("transcript archive append failed")
		}
	}
}

// Transcript returns a copy of the session transcript.
func (m *Manager) Transcript(sessionID string) []model.Turn {
	s := m.session(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Turn, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// UpdateVesselContext overwrites the last-referenced vessel list. Called only
// after a successful run; an empty list is ignored so context survives
// listing-style queries.
func (m *Manager) UpdateVesselContext(sessionID string, vessels []string) {
	if len(vessels) == 0 {
		return
	}
	s := m.session(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vessels = append([]string(nil), vessels...)
}

// UpdateDomainContext overwrites the last-referenced domain.
func (m *Manager) UpdateDomainContext(sessionID string, domain model.Domain) {
	s := m.session(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.domain = domain
}

// ContextSummary renders the session context for inspection surfaces.
func (m *Manager) ContextSummary(sessionID string) string {
	s := m.session(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()

	var parts []string
	if len(s.vessels) > 0 {
		parts = append(parts, "Last vessels: "+strings.Join(s.vessels, ", "))
	}
	if s.domain != "" {
		parts = append(parts, "Last domain: "+string(s.domain))
	}
	parts = append(parts, "History length: "+strconv.Itoa(len(s.transcript)))
	return strings.Join(parts, " | ")
}

// Clear drops the session's transcript and context.
func (m *Manager) Clear(ctx context.Context, sessionID string) {
	s := m.session(sessionID)
	s.mu.Lock()
	s.transcript = nil
	s.vessels = nil
	s.domain = ""
	s.mu.Unlock()

	if m.archive != nil {
		if err := m.archive.ClearTranscript(ctx, sessionID); err != nil {
			logx.Warn().Err(err).Str("session_id", sessionID).Msg("transcript archive clear failed")
		}
	}
}
