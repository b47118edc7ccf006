package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/unimate-backend/internal/domain"
	"github.com/unimate-backend/internal/infrastructure/llm"
	"github.com/unimate-backend/internal/pkg/id"
)

const maxContextRules = 12

type Service interface {
	// Ask answers a regulation question. The reply streams through onDelta
	// fragment by fragment while the full text accumulates; both the question
	// and the finished reply land in the conversation history. A nil onDelta
	// switches to a blocking completion and only the stored messages carry
	// the reply.
	Ask(ctx context.Context, userID string, req domain.ChatRequest, onDelta func(delta string) error) (*domain.ChatMessage, error)

	// History returns every message of a conversation, oldest first. Only the
	// user the conversation belongs to may read it.
	History(ctx context.Context, userID, conversationID string) ([]domain.ChatMessage, error)
}

type ruleStore interface {
	Search(ctx context.Context, category, keyword string) ([]domain.Rule, error)
	List(ctx context.Context) ([]domain.Rule, error)
}

type messageStore interface {
	Put(ctx context.Context, m *domain.ChatMessage) error
	ListByConversation(ctx context.Context, conversationID string) ([]domain.ChatMessage, error)
}

type completer interface {
	Complete(ctx context.Context, messages []llm.Message) (string, error)
	Stream(ctx context.Context, messages []llm.Message, onDelta func(delta string) error) error
}

type service struct {
	rules     ruleStore
	messages  messageStore
	completer completer
}

type ServiceDeps struct {
	RuleRepo    ruleStore
	MessageRepo messageStore
	Completer   completer
}

func NewService(deps ServiceDeps) Service {
	return &service{rules: deps.RuleRepo, messages: deps.MessageRepo, completer: deps.Completer}
}

func (s *service) Ask(ctx context.Context, userID string, req domain.ChatRequest, onDelta func(delta string) error) (*domain.ChatMessage, error) {
	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = id.New()
	} else {
		if err := s.checkOwnership(ctx, userID, conversationID); err != nil {
			return nil, err
		}
	}

	rules, err := s.relevantRules(ctx, req)
	if err != nil {
		return nil, err
	}
	history, err := s.messages.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	prompt := make([]llm.Message, 0, len(history)+2)
	prompt = append(prompt, llm.Message{Role: domain.RoleSystem, Content: buildSystemPrompt(rules)})
	for _, m := range history {
		prompt = append(prompt, llm.Message{Role: m.Role, Content: m.Content})
	}
	prompt = append(prompt, llm.Message{Role: domain.RoleUser, Content: req.Question})

	if err := s.messages.Put(ctx, &domain.ChatMessage{
		ConversationID: conversationID,
		MessageID:      id.New(),
		UserID:         userID,
		Role:           domain.RoleUser,
		Content:        req.Question,
		CreatedAt:      time.Now().UTC(),
	}); err != nil {
		return nil, err
	}

	var replyText string
	if onDelta == nil {
		replyText, err = s.completer.Complete(ctx, prompt)
	} else {
		var reply strings.Builder
		err = s.completer.Stream(ctx, prompt, func(delta string) error {
			reply.WriteString(delta)
			return onDelta(delta)
		})
		replyText = reply.String()
	}
	if err != nil {
		return nil, fmt.Errorf("assistant completion: %w", err)
	}

	assistant := &domain.ChatMessage{
		ConversationID: conversationID,
		MessageID:      id.New(),
		UserID:         userID,
		Role:           domain.RoleAssistant,
		Content:        replyText,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.messages.Put(ctx, assistant); err != nil {
		return nil, err
	}
	return assistant, nil
}

func (s *service) History(ctx context.Context, userID, conversationID string) ([]domain.ChatMessage, error) {
	messages, err := s.messages.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, fmt.Errorf("conversation not found: %w", domain.ErrNotFound)
	}
	if messages[0].UserID != userID {
		return nil, fmt.Errorf("conversation belongs to another user: %w", domain.ErrForbidden)
	}
	return messages, nil
}

func (s *service) checkOwnership(ctx context.Context, userID, conversationID string) error {
	messages, err := s.messages.ListByConversation(ctx, conversationID)
	if err != nil {
		return err
	}
	if len(messages) > 0 && messages[0].UserID != userID {
		return fmt.Errorf("conversation belongs to another user: %w", domain.ErrForbidden)
	}
	return nil
}

// relevantRules narrows the rule sheet to the question. A keyword search over
// the question text runs first; when nothing matches, the whole category (or
// the whole sheet) goes in so the model still has grounding material.
func (s *service) relevantRules(ctx context.Context, req domain.ChatRequest) ([]domain.Rule, error) {
	for _, kw := range keywords(req.Question) {
		rules, err := s.rules.Search(ctx, req.Category, kw)
		if err != nil {
			return nil, err
		}
		if len(rules) > 0 {
			return limitRules(rules), nil
		}
	}
	if req.Category != "" {
		rules, err := s.rules.Search(ctx, req.Category, "")
		if err != nil {
			return nil, err
		}
		return limitRules(rules), nil
	}
	rules, err := s.rules.List(ctx)
	if err != nil {
		return nil, err
	}
	return limitRules(rules), nil
}

func limitRules(rules []domain.Rule) []domain.Rule {
	if len(rules) > maxContextRules {
		return rules[:maxContextRules]
	}
	return rules
}

// keywords splits the question into candidate search terms, skipping
// particles and other short tokens.
func keywords(question string) []string {
	fields := strings.Fields(question)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,!?\"'()")
		if len([]rune(f)) < 2 {
			continue
		}
		out = append(out, f)
	}
	return out
}

func buildSystemPrompt(rules []domain.Rule) string {
	var b strings.Builder
	b.WriteString("You are UniMate, a campus assistant that answers questions about university regulations. ")
	b.WriteString("Answer only from the regulation excerpts below. ")
	b.WriteString("If the excerpts do not cover the question, say you do not know and suggest contacting the administration office.\n\n")
	for _, r := range rules {
		fmt.Fprintf(&b, "[%s] %s\n%s\n\n", r.Category, r.Title, r.Body)
	}
	return strings.TrimRight(b.String(), "\n")
}
