package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/profilebot/internal/compose"
	"github.com/edgard/profilebot/internal/config"
	"github.com/edgard/profilebot/internal/logger"
	"github.com/edgard/profilebot/internal/photo"
	"github.com/edgard/profilebot/internal/status"
)

const adminID = 42

type sentMessages struct {
	mu     sync.Mutex
	bodies []string
}

func (s *sentMessages) all() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.bodies...)
}

// newTestBot returns a bot whose API calls are answered by a local server
// that records every sendMessage body.
func newTestBot(t *testing.T) (*tgbot.Bot, *sentMessages) {
	t.Helper()
	sent := &sentMessages{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if strings.HasSuffix(r.URL.Path, "/sendMessage") {
			sent.mu.Lock()
			sent.bodies = append(sent.bodies, string(body))
			sent.mu.Unlock()
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":1,"type":"private"}}}`)
	}))
	t.Cleanup(srv.Close)

	b, err := tgbot.New("123:abc", tgbot.WithServerURL(srv.URL), tgbot.WithSkipGetMe())
	if err != nil {
		t.Fatalf("tgbot.New() error = %v", err)
	}
	return b, sent
}

func message(from int64, text string) *models.Update {
	return &models.Update{
		ID: 1,
		Message: &models.Message{
			ID:   7,
			Text: text,
			Chat: models.Chat{ID: from, Type: models.ChatTypePrivate},
			From: &models.User{ID: from},
		},
	}
}

type stubComposer struct{ fields compose.Fields }

func (s stubComposer) Compose(context.Context, time.Time) compose.Fields { return s.fields }

type stubRotator struct {
	res    photo.Result
	err    error
	forced bool
}

func (s *stubRotator) Rotate(_ context.Context, _ time.Time, force bool) (photo.Result, error) {
	s.forced = force
	return s.res, s.err
}

func testDeps(rot *stubRotator) HandlerDeps {
	cfg := &config.Config{}
	cfg.Profile.Name = "Ali"
	cfg.Profile.Timezone = "Asia/Tashkent"
	cfg.Location.City = "Tashkent"
	cfg.Telegram.AdminUserID = adminID

	return HandlerDeps{
		Logger: logger.Discard(),
		Config: cfg,
		Composer: stubComposer{fields: compose.Fields{
			First: "Ali | Ishda 🧑‍💻 | 11:00",
			Last:  "Chor 11 Iyn | 13 Ram 1446",
			Bio:   "Peshin 12:00 (qoldi: 1 soat 0 daqiqa)\nT: +23°C, Quyoshli",
			Report: compose.Report{
				NextPrayer: compose.Part{Outcome: compose.OutcomeOK},
				Hijri:      compose.Part{Outcome: compose.OutcomeOK},
				Weather:    compose.Part{Outcome: compose.OutcomeOK, Detail: "fresh"},
			},
		}},
		Photos: rot,
		Clock:  status.Fixed(time.Date(2025, time.June, 11, 11, 0, 0, 0, time.UTC)),
	}
}

func TestAdminOnly(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		admin      int64
		update     *models.Update
		wantCalled bool
		wantReply  bool
	}{
		{"admin passes", adminID, message(adminID, "/preview"), true, false},
		{"stranger rejected", adminID, message(7, "/preview"), false, true},
		{"no admin configured", 0, message(adminID, "/preview"), false, true},
		{"no message dropped", adminID, &models.Update{ID: 2}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b, sent := newTestBot(t)
			deps := testDeps(&stubRotator{})
			deps.Config.Telegram.AdminUserID = tt.admin

			called := false
			next := func(context.Context, *tgbot.Bot, *models.Update) { called = true }
			AdminOnly(deps)(next)(context.Background(), b, tt.update)

			if called != tt.wantCalled {
				t.Errorf("next called = %v, want %v", called, tt.wantCalled)
			}
			replies := sent.all()
			if tt.wantReply && (len(replies) != 1 || !strings.Contains(replies[0], unauthorizedMsg)) {
				t.Errorf("replies = %q, want the unauthorized message", replies)
			}
			if !tt.wantReply && len(replies) != 0 {
				t.Errorf("unexpected replies: %q", replies)
			}
		})
	}
}

func TestPreviewHandler(t *testing.T) {
	t.Parallel()

	b, sent := newTestBot(t)
	NewPreviewHandler(testDeps(&stubRotator{}))(context.Background(), b, message(adminID, "/preview"))

	replies := sent.all()
	if len(replies) != 1 {
		t.Fatalf("got %d replies, want 1", len(replies))
	}
	if !strings.Contains(replies[0], "Chor 11 Iyn | 13 Ram 1446") {
		t.Errorf("reply does not contain the last name: %q", replies[0])
	}
}

func TestPhotoHandlerForcesRotation(t *testing.T) {
	t.Parallel()

	b, sent := newTestBot(t)
	rot := &stubRotator{res: photo.Result{Outcome: photo.OutcomeApplied, Weekday: "wed", Path: "profile_pics/wed.jpg"}}
	NewPhotoHandler(testDeps(rot))(context.Background(), b, message(adminID, "/photo"))

	if !rot.forced {
		t.Error("/photo should force the rotation")
	}
	if replies := sent.all(); len(replies) != 1 || !strings.Contains(replies[0], "wed.jpg") {
		t.Errorf("replies = %q", replies)
	}
}

func TestStartAndHelp(t *testing.T) {
	t.Parallel()

	b, sent := newTestBot(t)
	deps := testDeps(&stubRotator{})
	NewStartHandler(deps)(context.Background(), b, message(adminID, "/start"))
	NewHelpHandler(deps)(context.Background(), b, message(adminID, "/help"))

	replies := sent.all()
	if len(replies) != 2 {
		t.Fatalf("got %d replies, want 2", len(replies))
	}
	if !strings.Contains(replies[0], "Tashkent") {
		t.Errorf("start reply = %q", replies[0])
	}
	if !strings.Contains(replies[1], "/preview") {
		t.Errorf("help reply = %q", replies[1])
	}
}

func TestPreviewText(t *testing.T) {
	t.Parallel()

	f := compose.Fields{
		First: "Ali | Tungi 💤 | 23:00",
		Last:  "Chor 11 Iyn | Hijri: ???",
		Bio:   "Namoz: ?\nT: ?°C, ?",
		Report: compose.Report{
			NextPrayer: compose.Part{Outcome: compose.OutcomeFallback, Detail: "aladhan down"},
			Hijri:      compose.Part{Outcome: compose.OutcomeFallback, Detail: "aladhan down"},
			Weather:    compose.Part{Outcome: compose.OutcomeFallback},
		},
	}

	want := "First name: Ali | Tungi 💤 | 23:00\n" +
		"Last name: Chor 11 Iyn | Hijri: ???\n" +
		"Bio:\nNamoz: ?\nT: ?°C, ?\n\n" +
		"Next prayer: fallback (aladhan down)\n" +
		"Hijri: fallback (aladhan down)\n" +
		"Weather: fallback"
	if got := PreviewText(f); got != want {
		t.Errorf("PreviewText() =\n%s\nwant\n%s", got, want)
	}
}

func TestPhotoText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		res  photo.Result
		err  error
		want string
	}{
		{"applied", photo.Result{Outcome: photo.OutcomeApplied, Path: "p/mon.jpg"}, nil, "Profile photo set to p/mon.jpg."},
		{"missing", photo.Result{Outcome: photo.OutcomeMissing, Weekday: "mon", Path: "p/mon.jpg"}, nil, "No photo for mon: p/mon.jpg not found."},
		{"skipped", photo.Result{Outcome: photo.OutcomeSkipped, Weekday: "mon"}, nil, "Photo for mon already applied today."},
		{"failed", photo.Result{}, errors.New("boom"), "Photo update failed: boom"},
	}

	for _, tt := range tests {
		if got := PhotoText(tt.res, tt.err); got != tt.want {
			t.Errorf("%s: PhotoText() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestRegisterAllCommands(t *testing.T) {
	t.Parallel()

	cmds := RegisterAllCommands(testDeps(&stubRotator{}))
	for _, name := range []string{"/start", "/help", "/preview", "/photo"} {
		h, ok := cmds[name]
		if !ok {
			t.Errorf("command %s not registered", name)
			continue
		}
		if h.Handler == nil || len(h.Middleware) != 1 || h.Pattern != strings.TrimPrefix(name, "/") {
			t.Errorf("command %s = %+v", name, h)
		}
	}
}
