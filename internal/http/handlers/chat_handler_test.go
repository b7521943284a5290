package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/talentscout/talentscout-server/internal/domain"
	"github.com/talentscout/talentscout-server/internal/repo"
	"github.com/talentscout/talentscout-server/internal/services"
)

// ---------- test DB + repo shim ----------

func newChatDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Unique DSN per call to avoid cross-test contamination
	dsn := fmt.Sprintf("file:chat_handlers_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	db.Exec("PRAGMA foreign_keys=ON;")
	if err := db.AutoMigrate(
		&domain.User{}, &domain.Athlete{}, &domain.Recruiter{},
		&domain.Match{}, &domain.Message{}, &domain.Idempotency{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Minimal shim implementing services.ChatRepo using the repo package (like router.go)
type testChatRepo struct{}

func (testChatRepo) GetMatch(ctx context.Context, db *gorm.DB, id string) (*domain.Match, error) {
	return repo.GetMatch(ctx, db, id)
}

func (testChatRepo) GetAthlete(ctx context.Context, db *gorm.DB, id string) (*domain.Athlete, error) {
	return repo.GetAthlete(ctx, db, id)
}

func (testChatRepo) GetRecruiter(ctx context.Context, db *gorm.DB, id string) (*domain.Recruiter, error) {
	return repo.GetRecruiter(ctx, db, id)
}

func (testChatRepo) CreateMessage(db *gorm.DB, matchID, senderID, text string) (*domain.Message, error) {
	return repo.CreateMessage(db, matchID, senderID, text)
}

func (testChatRepo) ListMessages(db *gorm.DB, matchID string, limit int) ([]domain.Message, error) {
	return repo.ListMessages(db, matchID, limit)
}

func (testChatRepo) CountMessages(db *gorm.DB, matchID string) (int64, error) {
	return repo.CountMessages(db, matchID)
}

func (testChatRepo) ListMessagesPage(db *gorm.DB, matchID string, offset, limit int) ([]domain.Message, error) {
	return repo.ListMessagesPage(db, matchID, offset, limit)
}

func (testChatRepo) MessagesStats(ctx context.Context, db *gorm.DB, matchID string) (int64, uint64, error) {
	return repo.MessagesStats(ctx, db, matchID)
}

// seedRoom creates two accounts with profiles and an accepted match between
// them. Returns (athleteUserID, recruiterUserID, matchID).
func seedRoom(t *testing.T, db *gorm.DB) (string, string, string) {
	t.Helper()
	ctx := context.Background()

	au, err := repo.CreateUser(ctx, db, "Ath", uuid.NewString()+"@example.com", "hash", domain.RoleAthlete)
	if err != nil {
		t.Fatalf("seed athlete user: %v", err)
	}
	ru, err := repo.CreateUser(ctx, db, "Rec", uuid.NewString()+"@example.com", "hash", domain.RoleRecruiter)
	if err != nil {
		t.Fatalf("seed recruiter user: %v", err)
	}
	a, err := repo.CreateAthlete(ctx, db, au.ID, "Soccer", "Forward", "")
	if err != nil {
		t.Fatalf("seed athlete: %v", err)
	}
	rec, err := repo.CreateRecruiter(ctx, db, ru.ID, "Acme", "")
	if err != nil {
		t.Fatalf("seed recruiter: %v", err)
	}
	m, err := repo.CreateMatch(ctx, db, a.ID, rec.ID)
	if err != nil {
		t.Fatalf("seed match: %v", err)
	}
	if _, err := repo.TransitionMatchStatus(ctx, db, m.ID, domain.MatchAccepted); err != nil {
		t.Fatalf("accept match: %v", err)
	}
	return au.ID, ru.ID, m.ID
}

// recordingNotifier captures broadcast messages.
type recordingNotifier struct {
	got []domain.Message
}

func (n *recordingNotifier) PublishChatMessage(msg domain.Message) {
	n.got = append(n.got, msg)
}

// ---------- sanitizeText ----------

func Test_sanitizeText(t *testing.T) {
	cases := map[string]string{
		"hello":                   "hello",
		"  padded \n":             "padded",
		"a\r\nb\rc":               "a\nb\nc",
		"p1\n\n\n\n\np2":          "p1\n\np2",
		"\r\n \r\n":               "",
		"keep\n\ninner\nnewlines": "keep\n\ninner\nnewlines",
	}
	for in, want := range cases {
		if got := sanitizeText(in); got != want {
			t.Fatalf("sanitizeText(%q) = %q; want %q", in, got, want)
		}
	}
}

// ---------- PostChatMessage ----------

func TestPostChatMessage_Validation(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// Non-UUID match id -> 400
	{
		h := newStubHandlers(nil, nil, nil, nil, nil)
		r := gin.New()
		r.POST("/matches/:id/messages", h.PostChatMessage)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/matches/not-a-uuid/messages",
			bytes.NewBufferString(`{"text":"hi"}`))
		req.Header.Set("X-User-ID", "u1")
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("bad id -> %d", w.Code)
		}
	}

	// Whitespace-only text -> 400 after sanitize
	{
		h := newStubHandlers(nil, nil, nil, nil, nil)
		r := gin.New()
		r.POST("/matches/:id/messages", h.PostChatMessage)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/matches/"+uuid.NewString()+"/messages",
			bytes.NewBufferString(`{"text":"  \r\n "}`))
		req.Header.Set("X-User-ID", "u1")
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("blank text -> %d", w.Code)
		}
	}

	// Service error mapping
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"unknown room", services.ErrMatchNotFound, http.StatusNotFound},
		{"outsider", services.ErrNotParticipant, http.StatusForbidden},
		{"too long", services.ErrMessageTooLong, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newStubHandlers(nil, nil, nil, stubChatSvc{
				append: func(context.Context, string, string, string) (*domain.Message, error) {
					return nil, tc.err
				},
			}, nil)
			r := gin.New()
			r.POST("/matches/:id/messages", h.PostChatMessage)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/matches/"+uuid.NewString()+"/messages",
				bytes.NewBufferString(`{"text":"hi"}`))
			req.Header.Set("X-User-ID", "u1")
			r.ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Fatalf("%s -> %d; want %d", tc.name, w.Code, tc.want)
			}
		})
	}
}

func TestPostChatMessage_PersistThenBroadcast(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newChatDB(t)
	athleteUID, _, matchID := seedRoom(t, db)

	svc := services.NewChatService(db, testChatRepo{})
	notifier := &recordingNotifier{}
	h := New(stubAuthSvc{}, stubProfileSvc{}, stubMatchSvc{}, svc, stubBillingSvc{}, notifier)

	r := gin.New()
	r.POST("/matches/:id/messages", h.PostChatMessage)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/matches/"+matchID+"/messages",
		bytes.NewBufferString(`{"text":"  Great reel!\r\n"}`))
	req.Header.Set("X-User-ID", athleteUID)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("post -> %d body=%s", w.Code, w.Body.String())
	}

	var out PostChatMessageResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if out.Message == nil || out.Message.Text != "Great reel!" || out.Message.Seq == 0 {
		t.Fatalf("unexpected message: %+v", out.Message)
	}

	// Broadcast happens after the append is durable, with the stored payload.
	if len(notifier.got) != 1 || notifier.got[0].ID != out.Message.ID {
		t.Fatalf("broadcasts = %+v; want exactly the stored message", notifier.got)
	}
}

func TestPostChatMessage_IdempotentReplay(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newChatDB(t)
	athleteUID, _, matchID := seedRoom(t, db)

	svc := services.NewChatService(db, testChatRepo{})
	notifier := &recordingNotifier{}
	h := New(stubAuthSvc{}, stubProfileSvc{}, stubMatchSvc{}, svc, stubBillingSvc{}, notifier)

	r := gin.New()
	r.POST("/matches/:id/messages", h.PostChatMessage)

	key := uuid.NewString()
	send := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/matches/"+matchID+"/messages",
			bytes.NewBufferString(`{"text":"once"}`))
		req.Header.Set("X-User-ID", athleteUID)
		req.Header.Set("Idempotency-Key", key)
		r.ServeHTTP(w, req)
		return w
	}

	// First send persists.
	w1 := send()
	if w1.Code != http.StatusCreated {
		t.Fatalf("first send -> %d body=%s", w1.Code, w1.Body.String())
	}
	if w1.Header().Get("Idempotency-Replayed") != "" {
		t.Fatalf("first send must not be marked replayed")
	}
	var first PostChatMessageResponse
	if err := json.Unmarshal(w1.Body.Bytes(), &first); err != nil {
		t.Fatalf("json: %v", err)
	}

	// Retry with the same key returns the recorded result without a new row.
	w2 := send()
	if w2.Code != http.StatusCreated {
		t.Fatalf("replay -> %d body=%s", w2.Code, w2.Body.String())
	}
	if w2.Header().Get("Idempotency-Replayed") != "true" {
		t.Fatalf("replay missing Idempotency-Replayed header")
	}
	var second PostChatMessageResponse
	if err := json.Unmarshal(w2.Body.Bytes(), &second); err != nil {
		t.Fatalf("json: %v", err)
	}
	if second.Message.ID != first.Message.ID || second.Message.Seq != first.Message.Seq {
		t.Fatalf("replay returned a different message: %+v vs %+v", second.Message, first.Message)
	}

	if n, err := repo.CountMessages(db, matchID); err != nil || n != 1 {
		t.Fatalf("messages = %d err=%v; retry must not duplicate", n, err)
	}
	if len(notifier.got) != 1 {
		t.Fatalf("broadcasts = %d; replay must not rebroadcast", len(notifier.got))
	}
}

// ---------- ListChatMessages ----------

func TestListChatMessages_Order_Paging_ETag(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newChatDB(t)
	athleteUID, recruiterUID, matchID := seedRoom(t, db)

	svc := services.NewChatService(db, testChatRepo{})
	h := New(stubAuthSvc{}, stubProfileSvc{}, stubMatchSvc{}, svc, stubBillingSvc{}, nil)

	r := gin.New()
	r.GET("/matches/:id/messages", h.ListChatMessages)
	r.POST("/matches/:id/messages", h.PostChatMessage)

	post := func(uid, text string) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/matches/"+matchID+"/messages",
			bytes.NewBufferString(`{"text":"`+text+`"}`))
		req.Header.Set("X-User-ID", uid)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusCreated {
			t.Fatalf("post %q -> %d", text, w.Code)
		}
	}
	post(athleteUID, "first")
	post(recruiterUID, "second")
	post(athleteUID, "third")

	// Full history in send order.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/matches/"+matchID+"/messages", nil)
	req.Header.Set("X-User-ID", athleteUID)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list -> %d body=%s", w.Code, w.Body.String())
	}
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("missing ETag header")
	}
	var out ListChatMessagesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(out.Messages) != 3 || out.Messages[0].Text != "first" || out.Messages[2].Text != "third" {
		t.Fatalf("history out of order: %+v", out.Messages)
	}
	for i := 1; i < len(out.Messages); i++ {
		if out.Messages[i].Seq <= out.Messages[i-1].Seq {
			t.Fatalf("sequence not increasing: %+v", out.Messages)
		}
	}

	// Conditional revalidation: unchanged history -> 304.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/matches/"+matchID+"/messages", nil)
	req.Header.Set("X-User-ID", athleteUID)
	req.Header.Set("If-None-Match", etag)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotModified {
		t.Fatalf("revalidation -> %d; want 304", w.Code)
	}

	// New message invalidates the tag.
	post(recruiterUID, "fourth")
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/matches/"+matchID+"/messages", nil)
	req.Header.Set("X-User-ID", athleteUID)
	req.Header.Set("If-None-Match", etag)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("stale tag -> %d; want 200", w.Code)
	}

	// Paging slices the ordered history.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/matches/"+matchID+"/messages?page=2&page_size=2", nil)
	req.Header.Set("X-User-ID", athleteUID)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("page 2 -> %d", w.Code)
	}
	out = ListChatMessagesResponse{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(out.Messages) != 2 || out.Messages[0].Text != "third" {
		t.Fatalf("page 2 unexpected: %+v", out.Messages)
	}
	if out.Pagination.Total != 4 || out.Pagination.TotalPages != 2 || out.Pagination.HasNext {
		t.Fatalf("pagination meta unexpected: %+v", out.Pagination)
	}

	// Outsider cannot read the room.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/matches/"+matchID+"/messages", nil)
	req.Header.Set("X-User-ID", uuid.NewString())
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("outsider list -> %d; want 403", w.Code)
	}
}

func TestListChatMessages_OutsiderSeesNoStats(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// Authorization must run before any history stats are computed, so an
	// outsider learns nothing about the room, not even via ETag.
	h := newStubHandlers(nil, nil, stubMatchSvc{
		isPart: func(context.Context, string, *domain.Match) (bool, error) {
			return false, nil
		},
	}, stubChatSvc{
		stats: func(context.Context, string) (int64, uint64, error) {
			t.Fatalf("stats computed for a non-participant")
			return 0, 0, nil
		},
	}, nil)
	r := gin.New()
	r.GET("/matches/:id/messages", h.ListChatMessages)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/matches/"+uuid.NewString()+"/messages", nil)
	req.Header.Set("X-User-ID", "outsider")
	req.Header.Set("If-None-Match", `W/"messages:m:1:1"`)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("outsider list -> %d; want 403", w.Code)
	}
	if w.Header().Get("ETag") != "" {
		t.Fatalf("ETag set for a non-participant")
	}
}

func TestListChatMessages_BadID_And_UnknownRoom(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := newStubHandlers(nil, nil, nil, stubChatSvc{
		history: func(context.Context, string, string, int, int) ([]domain.Message, int64, error) {
			return nil, 0, services.ErrMatchNotFound
		},
	}, nil)
	r := gin.New()
	r.GET("/matches/:id/messages", h.ListChatMessages)

	// Non-UUID id -> 400
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/matches/nope/messages", nil)
	req.Header.Set("X-User-ID", "u1")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad id -> %d", w.Code)
	}

	// Unknown room -> 404
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/matches/"+uuid.NewString()+"/messages", nil)
	req.Header.Set("X-User-ID", "u1")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown room -> %d", w.Code)
	}
}
