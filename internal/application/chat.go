package application

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"app-hub/internal/domain"
	"app-hub/internal/ports"
)

const maxChatQuery = 4000

type ChatService struct {
	provider    ports.ChatProvider
	transcripts ports.TranscriptRepository
	logger      ports.Logger
	now         func() time.Time
}

// NewChatService builds the proxy. transcripts may be nil when no archive is configured.
func NewChatService(provider ports.ChatProvider, transcripts ports.TranscriptRepository, logger ports.Logger) *ChatService {
	return &ChatService{provider: provider, transcripts: transcripts, logger: logger, now: time.Now}
}

func (s *ChatService) Ask(ctx context.Context, caller domain.User, query string) (domain.ChatReply, error) {
	query = strings.TrimSpace(query)
	if query == "" || utf8.RuneCountInString(query) > maxChatQuery {
		return domain.ChatReply{}, domain.ErrInvalidInput
	}
	requestedAt := s.now().UTC()
	reply, err := s.provider.Generate(ctx, query)
	if err != nil {
		s.logger.Error(ctx, "chat provider failed", "user_id", caller.ID, "error", err.Error())
		return domain.ChatReply{}, err
	}
	if reply.Sources == nil {
		reply.Sources = []domain.ChatSource{}
	}

	if s.transcripts != nil {
		err := s.transcripts.Put(ctx, domain.ChatTranscript{
			UserID:      caller.ID,
			Query:       query,
			Reply:       reply,
			RequestedAt: requestedAt,
		})
		if err != nil {
			s.logger.Warn(ctx, "chat transcript not archived", "user_id", caller.ID, "error", err.Error())
		}
	}
	return reply, nil
}
