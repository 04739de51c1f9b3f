package query

import (
	"context"

	"github.com/kestrelhq/kestrel/internal/cqrs"
	"github.com/kestrelhq/kestrel/internal/models"
	"github.com/kestrelhq/kestrel/internal/repository"
)

// AuthQueryService serves the read side of the auth endpoints: the current
// user's profile and their session list.
type AuthQueryService struct {
	userRead *repository.UserReadRepository
	sessions *repository.SessionRepository
}

func NewAuthQueryService(userRead *repository.UserReadRepository, sessions *repository.SessionRepository) *AuthQueryService {
	return &AuthQueryService{userRead: userRead, sessions: sessions}
}

// Me returns the calling user's view.
func (s *AuthQueryService) Me(organizationID, userID string) (*models.UserView, error) {
	return s.userRead.GetByID(context.Background(), organizationID, userID)
}

// ListSessions returns the caller's active sessions, most recently used
// first, flagging the one backing this request.
func (s *AuthQueryService) ListSessions(q cqrs.ListSessionsQuery) ([]models.SessionView, error) {
	sessions, err := s.sessions.ListActiveForUser(context.Background(), q.UserID)
	if err != nil {
		return nil, err
	}

	views := make([]models.SessionView, 0, len(sessions))
	for _, session := range sessions {
		views = append(views, models.SessionView{
			ID:         session.ID,
			UserID:     session.UserID,
			UserAgent:  session.UserAgent,
			IPAddress:  session.IPAddress,
			Current:    session.ID == q.CurrentSessionID,
			CreatedAt:  session.CreatedAt,
			LastUsedAt: session.LastUsedAt,
			ExpiresAt:  session.ExpiresAt,
		})
	}
	return views, nil
}
