package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"chatwire/internal/core/domain"

	"github.com/google/uuid"
)

type fakeConvRepo struct {
	mu    sync.Mutex
	convs map[uuid.UUID]*domain.Conversation
}

func newFakeConvRepo() *fakeConvRepo {
	return &fakeConvRepo{convs: make(map[uuid.UUID]*domain.Conversation)}
}

func (r *fakeConvRepo) GetConversationByID(_ context.Context, id uuid.UUID) (*domain.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.convs[id]
	if !ok {
		return nil, domain.ErrConversationNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeConvRepo) CreateConversation(_ context.Context, c *domain.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.convs[c.ID] = &cp
	return nil
}

func (r *fakeConvRepo) ListForUser(_ context.Context, _ uuid.UUID) ([]domain.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Conversation
	for _, c := range r.convs {
		out = append(out, *c)
	}
	return out, nil
}

// passthroughTx runs the callback without a real transaction.
type passthroughTx struct{}

func (passthroughTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestConversationService() (*ConversationService, *fakeConvRepo, *fakeMemberRepo) {
	convs := newFakeConvRepo()
	members := newFakeMemberRepo()
	return NewConversationService(testLogger(), convs, members, passthroughTx{}), convs, members
}

func TestCreateAddsCreatorAsAdmin(t *testing.T) {
	svc, _, members := newTestConversationService()
	creator := uuid.New()

	name := "team"
	conv, err := svc.Create(context.Background(), creator, domain.ConversationGroup, &name)
	if err != nil {
		t.Fatal(err)
	}
	isMember, err := members.IsMember(context.Background(), conv.ID, creator)
	if err != nil {
		t.Fatal(err)
	}
	if !isMember {
		t.Error("creator should be a member of the new conversation")
	}
}

func TestJoinOnceThenConflict(t *testing.T) {
	svc, _, _ := newTestConversationService()
	ctx := context.Background()
	creator, joiner := uuid.New(), uuid.New()

	conv, err := svc.Create(ctx, creator, domain.ConversationGroup, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Join(ctx, conv.ID, joiner); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Join(ctx, conv.ID, joiner); !errors.Is(err, domain.ErrAlreadyMember) {
		t.Errorf("second join err = %v, want ErrAlreadyMember", err)
	}
}

func TestJoinUnknownConversation(t *testing.T) {
	svc, _, _ := newTestConversationService()

	_, err := svc.Join(context.Background(), uuid.New(), uuid.New())
	if !errors.Is(err, domain.ErrConversationNotFound) {
		t.Errorf("err = %v, want ErrConversationNotFound", err)
	}
}

func TestGetOnlyForMembers(t *testing.T) {
	svc, _, _ := newTestConversationService()
	ctx := context.Background()
	creator, outsider := uuid.New(), uuid.New()

	conv, err := svc.Create(ctx, creator, domain.ConversationPrivate, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Get(ctx, conv.ID, creator); err != nil {
		t.Errorf("member should see the conversation, got %v", err)
	}
	if _, err := svc.Get(ctx, conv.ID, outsider); !errors.Is(err, domain.ErrNotMember) {
		t.Errorf("outsider err = %v, want ErrNotMember", err)
	}
}
