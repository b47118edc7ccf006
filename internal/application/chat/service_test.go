package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unimate-backend/internal/domain"
	"github.com/unimate-backend/internal/infrastructure/llm"
)

// fakeRules serves a fixed rule set through the same search semantics as the
// sheet-backed repo.
type fakeRules struct {
	rules []domain.Rule
	err   error
}

func (f *fakeRules) List(context.Context) ([]domain.Rule, error) {
	return f.rules, f.err
}

func (f *fakeRules) Search(_ context.Context, category, keyword string) ([]domain.Rule, error) {
	if f.err != nil {
		return nil, f.err
	}
	kw := strings.ToLower(keyword)
	var out []domain.Rule
	for _, r := range f.rules {
		if category != "" && r.Category != category {
			continue
		}
		if kw != "" && !strings.Contains(strings.ToLower(r.Title), kw) && !strings.Contains(strings.ToLower(r.Body), kw) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

type fakeMessages struct {
	stored []domain.ChatMessage
	putErr error
}

func (f *fakeMessages) Put(_ context.Context, m *domain.ChatMessage) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.stored = append(f.stored, *m)
	return nil
}

func (f *fakeMessages) ListByConversation(_ context.Context, conversationID string) ([]domain.ChatMessage, error) {
	var out []domain.ChatMessage
	for _, m := range f.stored {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out, nil
}

// fakeCompleter serves canned fragments and records the prompt it was given.
type fakeCompleter struct {
	fragments   []string
	err         error
	prompt      []llm.Message
	streamCalls int
}

func (f *fakeCompleter) Complete(_ context.Context, messages []llm.Message) (string, error) {
	f.prompt = messages
	if f.err != nil {
		return "", f.err
	}
	return strings.Join(f.fragments, ""), nil
}

func (f *fakeCompleter) Stream(_ context.Context, messages []llm.Message, onDelta func(string) error) error {
	f.prompt = messages
	f.streamCalls++
	if f.err != nil {
		return f.err
	}
	for _, frag := range f.fragments {
		if err := onDelta(frag); err != nil {
			return err
		}
	}
	return nil
}

func campusRules() []domain.Rule {
	return []domain.Rule{
		{Category: "library", Title: "Loan periods", Body: "Undergraduates may borrow books for 14 days."},
		{Category: "library", Title: "Study rooms", Body: "Rooms are bookable up to 7 days ahead."},
		{Category: "dorm", Title: "Curfew", Body: "Dormitory gates close at 01:00."},
	}
}

func newTestService(rules *fakeRules, msgs *fakeMessages, comp *fakeCompleter) Service {
	return NewService(ServiceDeps{RuleRepo: rules, MessageRepo: msgs, Completer: comp})
}

func TestAsk_StreamsAndPersistsBothTurns(t *testing.T) {
	msgs := &fakeMessages{}
	comp := &fakeCompleter{fragments: []string{"14 ", "days."}}
	svc := newTestService(&fakeRules{rules: campusRules()}, msgs, comp)

	var streamed strings.Builder
	reply, err := svc.Ask(context.Background(), "stu001", domain.ChatRequest{Question: "How long can I borrow books?"},
		func(delta string) error { streamed.WriteString(delta); return nil })

	require.NoError(t, err)
	assert.Equal(t, "14 days.", streamed.String())
	assert.Equal(t, "14 days.", reply.Content)
	assert.Equal(t, domain.RoleAssistant, reply.Role)

	require.Len(t, msgs.stored, 2)
	assert.Equal(t, domain.RoleUser, msgs.stored[0].Role)
	assert.Equal(t, "How long can I borrow books?", msgs.stored[0].Content)
	assert.Equal(t, msgs.stored[0].ConversationID, msgs.stored[1].ConversationID)
	assert.NotEmpty(t, reply.ConversationID)
}

func TestAsk_NilSinkUsesBlockingCompletion(t *testing.T) {
	msgs := &fakeMessages{}
	comp := &fakeCompleter{fragments: []string{"14 ", "days."}}
	svc := newTestService(&fakeRules{rules: campusRules()}, msgs, comp)

	reply, err := svc.Ask(context.Background(), "stu001", domain.ChatRequest{Question: "How long can I borrow books?"}, nil)

	require.NoError(t, err)
	assert.Equal(t, "14 days.", reply.Content)
	assert.Zero(t, comp.streamCalls)
	require.Len(t, msgs.stored, 2)
	assert.Equal(t, domain.RoleAssistant, msgs.stored[1].Role)
	assert.Equal(t, "14 days.", msgs.stored[1].Content)
}

func TestAsk_SystemPromptCarriesMatchingRules(t *testing.T) {
	comp := &fakeCompleter{fragments: []string{"ok"}}
	svc := newTestService(&fakeRules{rules: campusRules()}, &fakeMessages{}, comp)

	_, err := svc.Ask(context.Background(), "stu001", domain.ChatRequest{Question: "When do study rooms open?"}, nil)

	require.NoError(t, err)
	require.NotEmpty(t, comp.prompt)
	assert.Equal(t, domain.RoleSystem, comp.prompt[0].Role)
	assert.Contains(t, comp.prompt[0].Content, "Study rooms")
	assert.NotContains(t, comp.prompt[0].Content, "Curfew")
}

func TestAsk_CategoryFallbackWhenNoKeywordMatch(t *testing.T) {
	comp := &fakeCompleter{fragments: []string{"ok"}}
	svc := newTestService(&fakeRules{rules: campusRules()}, &fakeMessages{}, comp)

	_, err := svc.Ask(context.Background(), "stu001",
		domain.ChatRequest{Question: "zzzz qqqq", Category: "dorm"}, nil)

	require.NoError(t, err)
	assert.Contains(t, comp.prompt[0].Content, "Curfew")
	assert.NotContains(t, comp.prompt[0].Content, "Loan periods")
}

func TestAsk_FollowUpKeepsConversationAndHistoryInPrompt(t *testing.T) {
	msgs := &fakeMessages{}
	comp := &fakeCompleter{fragments: []string{"Yes."}}
	svc := newTestService(&fakeRules{rules: campusRules()}, msgs, comp)

	first, err := svc.Ask(context.Background(), "stu001", domain.ChatRequest{Question: "How long can I borrow books?"}, nil)
	require.NoError(t, err)

	_, err = svc.Ask(context.Background(), "stu001",
		domain.ChatRequest{ConversationID: first.ConversationID, Question: "Can I renew the books?"}, nil)
	require.NoError(t, err)

	require.Len(t, msgs.stored, 4)
	for _, m := range msgs.stored {
		assert.Equal(t, first.ConversationID, m.ConversationID)
	}
	// The follow-up prompt replays the earlier turns between system and question.
	require.Len(t, comp.prompt, 4)
	assert.Equal(t, domain.RoleUser, comp.prompt[1].Role)
	assert.Equal(t, domain.RoleAssistant, comp.prompt[2].Role)
	assert.Equal(t, "Can I renew the books?", comp.prompt[3].Content)
}

func TestAsk_ForeignConversationRejected(t *testing.T) {
	msgs := &fakeMessages{stored: []domain.ChatMessage{
		{ConversationID: "conv1", MessageID: "m1", UserID: "owner", Role: domain.RoleUser, Content: "hi", CreatedAt: time.Now()},
	}}
	svc := newTestService(&fakeRules{rules: campusRules()}, msgs, &fakeCompleter{})

	_, err := svc.Ask(context.Background(), "intruder",
		domain.ChatRequest{ConversationID: "conv1", Question: "anything"}, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestAsk_CompleterFailureLeavesQuestionPersisted(t *testing.T) {
	msgs := &fakeMessages{}
	svc := newTestService(&fakeRules{rules: campusRules()}, msgs, &fakeCompleter{err: errors.New("upstream 502")})

	_, err := svc.Ask(context.Background(), "stu001", domain.ChatRequest{Question: "How long can I borrow books?"}, nil)

	require.Error(t, err)
	require.Len(t, msgs.stored, 1)
	assert.Equal(t, domain.RoleUser, msgs.stored[0].Role)
}

func TestAsk_RuleSheetUnavailable(t *testing.T) {
	svc := newTestService(&fakeRules{err: domain.ErrUnavailable}, &fakeMessages{}, &fakeCompleter{})

	_, err := svc.Ask(context.Background(), "stu001", domain.ChatRequest{Question: "anything at all"}, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnavailable))
}

func TestHistory_OwnershipAndOrder(t *testing.T) {
	msgs := &fakeMessages{stored: []domain.ChatMessage{
		{ConversationID: "conv1", MessageID: "m1", UserID: "stu001", Role: domain.RoleUser, Content: "q"},
		{ConversationID: "conv1", MessageID: "m2", UserID: "stu001", Role: domain.RoleAssistant, Content: "a"},
	}}
	svc := newTestService(&fakeRules{}, msgs, &fakeCompleter{})

	history, err := svc.History(context.Background(), "stu001", "conv1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.RoleUser, history[0].Role)

	_, err = svc.History(context.Background(), "intruder", "conv1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	_, err = svc.History(context.Background(), "stu001", "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
