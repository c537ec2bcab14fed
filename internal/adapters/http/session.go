package httpadapter

import (
	"sync"

	"github.com/gaiachat/horizon-rag/internal/core/ports"
)

// SessionRegistry hands out one chat service per conversation session, so
// each session keeps its own history and feedback window. Instances are
// created lazily and live for the process lifetime.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]ports.ChatService
	factory  func(sessionID string) ports.ChatService
}

func NewSessionRegistry(factory func(sessionID string) ports.ChatService) *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]ports.ChatService),
		factory:  factory,
	}
}

func (r *SessionRegistry) Get(sessionID string) ports.ChatService {
	r.mu.Lock()
	defer r.mu.Unlock()

	if service, ok := r.sessions[sessionID]; ok {
		return service
	}
	service := r.factory(sessionID)
	r.sessions[sessionID] = service
	return service
}
