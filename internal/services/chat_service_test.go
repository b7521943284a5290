package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"gorm.io/gorm"

	"github.com/talentscout/talentscout-server/internal/domain"
	"github.com/talentscout/talentscout-server/internal/repo"
)

// ----- Fake repo -----

type fakeChatRepo struct {
	mu         sync.Mutex
	match      *domain.Match
	athlete    *domain.Athlete
	recruiter  *domain.Recruiter
	messages   []domain.Message
	nextSeq    uint64
	createErr  error
	listErr    error
	countErr   error
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{
		match:     &domain.Match{ID: "m1", AthleteID: "a1", RecruiterID: "r1", Status: domain.MatchAccepted},
		athlete:   &domain.Athlete{ID: "a1", UserID: "athlete-user", Sport: "Soccer"},
		recruiter: &domain.Recruiter{ID: "r1", UserID: "recruiter-user", Company: "Acme"},
	}
}

func (r *fakeChatRepo) GetMatch(ctx context.Context, db *gorm.DB, id string) (*domain.Match, error) {
	if r.match != nil && r.match.ID == id {
		return r.match, nil
	}
	return nil, repo.ErrNotFound
}

func (r *fakeChatRepo) GetAthlete(ctx context.Context, db *gorm.DB, id string) (*domain.Athlete, error) {
	if r.athlete != nil && r.athlete.ID == id {
		return r.athlete, nil
	}
	return nil, repo.ErrNotFound
}

func (r *fakeChatRepo) GetRecruiter(ctx context.Context, db *gorm.DB, id string) (*domain.Recruiter, error) {
	if r.recruiter != nil && r.recruiter.ID == id {
		return r.recruiter, nil
	}
	return nil, repo.ErrNotFound
}

func (r *fakeChatRepo) CreateMessage(db *gorm.DB, matchID, senderID, text string) (*domain.Message, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextSeq++
	m := domain.Message{Seq: r.nextSeq, ID: "msg", MatchID: matchID, SenderID: senderID, Text: text}
	r.messages = append(r.messages, m)
	return &m, nil
}

func (r *fakeChatRepo) ListMessages(db *gorm.DB, matchID string, limit int) ([]domain.Message, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Message, 0, len(r.messages))
	for _, m := range r.messages {
		if m.MatchID == matchID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeChatRepo) CountMessages(db *gorm.DB, matchID string) (int64, error) {
	if r.countErr != nil {
		return 0, r.countErr
	}
	out, _ := r.ListMessages(db, matchID, 0)
	return int64(len(out)), nil
}

func (r *fakeChatRepo) ListMessagesPage(db *gorm.DB, matchID string, offset, limit int) ([]domain.Message, error) {
	all, err := r.ListMessages(db, matchID, 0)
	if err != nil {
		return nil, err
	}
	if offset >= len(all) {
		return []domain.Message{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *fakeChatRepo) MessagesStats(ctx context.Context, db *gorm.DB, matchID string) (int64, uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.messages)), r.nextSeq, nil
}

// ----- Tests -----

func TestAppend_ValidatesText(t *testing.T) {
	s := NewChatService(nil, newFakeChatRepo())
	ctx := context.Background()

	if _, err := s.Append(ctx, "athlete-user", "m1", "   "); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("err = %v; want ErrEmptyMessage", err)
	}
	if _, err := s.Append(ctx, "athlete-user", "m1", strings.Repeat("x", s.MaxMessageLen+1)); !errors.Is(err, ErrMessageTooLong) {
		t.Fatalf("err = %v; want ErrMessageTooLong", err)
	}
}

func TestAppend_UnknownRoom(t *testing.T) {
	s := NewChatService(nil, newFakeChatRepo())
	if _, err := s.Append(context.Background(), "athlete-user", "missing", "hi"); !errors.Is(err, ErrMatchNotFound) {
		t.Fatalf("err = %v; want ErrMatchNotFound", err)
	}
}

func TestAppend_ParticipantsOnly(t *testing.T) {
	s := NewChatService(nil, newFakeChatRepo())
	if _, err := s.Append(context.Background(), "stranger", "m1", "hi"); !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("err = %v; want ErrNotParticipant", err)
	}
}

func TestAppend_TrimsAndAssignsSequence(t *testing.T) {
	s := NewChatService(nil, newFakeChatRepo())
	ctx := context.Background()

	first, err := s.Append(ctx, "athlete-user", "m1", "  hello  ")
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if first.Text != "hello" {
		t.Fatalf("Text = %q; want trimmed", first.Text)
	}
	second, err := s.Append(ctx, "recruiter-user", "m1", "hi back")
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if second.Seq <= first.Seq {
		t.Fatalf("seq not increasing: %d then %d", first.Seq, second.Seq)
	}
}

func TestHistory_OrderAndAuthorization(t *testing.T) {
	s := NewChatService(nil, newFakeChatRepo())
	ctx := context.Background()

	for _, text := range []string{"one", "two", "three"} {
		if _, err := s.Append(ctx, "athlete-user", "m1", text); err != nil {
			t.Fatalf("Append(%q): %v", text, err)
		}
	}

	out, err := s.History(ctx, "recruiter-user", "m1")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(out) != 3 || out[0].Text != "one" || out[2].Text != "three" {
		t.Fatalf("history = %+v", out)
	}

	if _, err := s.History(ctx, "stranger", "m1"); !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("err = %v; want ErrNotParticipant", err)
	}
	if _, err := s.History(ctx, "athlete-user", "missing"); !errors.Is(err, ErrMatchNotFound) {
		t.Fatalf("err = %v; want ErrMatchNotFound", err)
	}
}

func TestHistory_EmptyRoomIsEmptySlice(t *testing.T) {
	s := NewChatService(nil, newFakeChatRepo())
	out, err := s.History(context.Background(), "athlete-user", "m1")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if out == nil || len(out) != 0 {
		t.Fatalf("history = %#v; want empty non-nil slice", out)
	}
}

func TestHistoryPage_DefaultsAndPaging(t *testing.T) {
	s := NewChatService(nil, newFakeChatRepo())
	ctx := context.Background()

	for _, text := range []string{"one", "two", "three"} {
		if _, err := s.Append(ctx, "athlete-user", "m1", text); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	items, total, err := s.HistoryPage(ctx, "athlete-user", "m1", 0, 0)
	if err != nil {
		t.Fatalf("HistoryPage: %v", err)
	}
	if total != 3 || len(items) != 3 {
		t.Fatalf("page = %d items, total %d; want 3/3", len(items), total)
	}

	items, total, err = s.HistoryPage(ctx, "athlete-user", "m1", 2, 2)
	if err != nil {
		t.Fatalf("HistoryPage: %v", err)
	}
	if total != 3 || len(items) != 1 || items[0].Text != "three" {
		t.Fatalf("second page = %+v (total %d)", items, total)
	}
}

func TestStats_Passthrough(t *testing.T) {
	s := NewChatService(nil, newFakeChatRepo())
	ctx := context.Background()

	if _, err := s.Append(ctx, "athlete-user", "m1", "hello"); err != nil {
		t.Fatalf("Append: %v", err)
	}
	count, maxSeq, err := s.Stats(ctx, "m1")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if count != 1 || maxSeq == 0 {
		t.Fatalf("stats = (%d, %d)", count, maxSeq)
	}
}
