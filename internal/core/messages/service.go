package messages

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

type messageService struct {
	repo     Repository
	likers   LikerLister
	profiles ProfileLister
	sub      Subscriber
	logger   *slog.Logger
	now      func() time.Time
}

// NewMessageService creates a message service. sub may be nil, in which case
// Watch is unavailable.
func NewMessageService(repo Repository, likers LikerLister, profiles ProfileLister, sub Subscriber, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &messageService{
		repo:     repo,
		likers:   likers,
		profiles: profiles,
		sub:      sub,
		logger:   logger,
		now:      time.Now,
	}
}

// ListLikers returns the distinct users who liked any of me's posts, not
// including me
func (s *messageService) ListLikers(ctx context.Context, me string) ([]*Liker, error) {
	if strings.TrimSpace(me) == "" {
		return nil, ErrUnauthenticated
	}

	ids, err := s.likers.ListLikerIDs(ctx, me)
	if err != nil {
		return nil, fmt.Errorf("failed to list likers: %w", err)
	}

	seen := make(map[string]struct{}, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == me || id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return []*Liker{}, nil
	}

	profiles, err := s.profiles.ListProfiles(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("failed to load liker profiles: %w", err)
	}
	return profiles, nil
}

// Conversation returns every message between me and other, oldest first
func (s *messageService) Conversation(ctx context.Context, me, other string) ([]*Message, error) {
	if strings.TrimSpace(me) == "" {
		return nil, ErrUnauthenticated
	}
	if strings.TrimSpace(other) == "" {
		return nil, NewValidationError("userId", "user id is required")
	}

	msgs, err := s.repo.ListConversation(ctx, me, other)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversation: %w", err)
	}
	if msgs == nil {
		msgs = []*Message{}
	}
	return msgs, nil
}

// Send trims and stores a message from me to other
func (s *messageService) Send(ctx context.Context, me, other string, req SendRequest) (*Message, error) {
	if strings.TrimSpace(me) == "" {
		return nil, ErrUnauthenticated
	}
	if strings.TrimSpace(other) == "" {
		return nil, NewValidationError("userId", "user id is required")
	}
	if me == other {
		return nil, ErrSelfMessage
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, ErrEmptyMessage
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return nil, NewValidationError("content", fmt.Sprintf("content must not exceed %d characters", MaxContentLength))
	}

	msg := &Message{
		ID:        uuid.NewString(),
		AuthorID:  me,
		ToUserID:  other,
		Content:   content,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	s.logger.Debug("message sent", "from", me, "to", other, "id", msg.ID)
	return msg, nil
}

// Watch subscribes to message inserts and forwards the ones between me and other
func (s *messageService) Watch(ctx context.Context, me, other string, handler func(*Message)) (Subscription, error) {
	if s.sub == nil {
		return nil, errors.New("message change feed not configured")
	}
	if strings.TrimSpace(me) == "" {
		return nil, ErrUnauthenticated
	}

	sub, err := s.sub.SubscribeMessageInserts(ctx, func(msg *Message) {
		if BelongsTo(msg, me, other) {
			handler(msg)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to messages: %w", err)
	}
	return sub, nil
}
