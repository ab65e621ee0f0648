package app

import (
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/edgard/profilebot/internal/config"
	"github.com/edgard/profilebot/internal/logger"
	"github.com/edgard/profilebot/internal/photo"
)

const timingsBody = `{"code":200,"status":"OK","data":{
  "timings":{"Fajr":"00:00","Dhuhr":"00:01","Asr":"00:02","Maghrib":"00:03","Isha":"00:04"},
  "date":{"hijri":{"day":"13","month":{"number":9},"year":"1446"}}}}`

func upstreams(t *testing.T) (weatherURL, prayerURL string) {
	t.Helper()
	w := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `{"weather":[{"description":"clear sky"}],"main":{"temp":21.6}}`)
	}))
	p := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, timingsBody)
	}))
	t.Cleanup(w.Close)
	t.Cleanup(p.Close)
	return w.URL, p.URL
}

type fakeTelegram struct {
	mu      sync.Mutex
	methods []string
	enabled bool
}

func (f *fakeTelegram) serve(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
	f.mu.Lock()
	f.methods = append(f.methods, method)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if method == "getMe" {
		io.WriteString(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"profilebot"}}`)
		return
	}
	if method == "getBusinessConnection" {
		enabled := "false"
		if f.enabled {
			enabled = "true"
		}
		io.WriteString(w, `{"ok":true,"result":{"id":"conn","user":{"id":99},"user_chat_id":99,"date":1,"is_enabled":`+enabled+`}}`)
		return
	}
	io.WriteString(w, `{"ok":true,"result":true}`)
}

func (f *fakeTelegram) called() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.methods...)
}

func testConfig(t *testing.T, telegramURL string) *config.Config {
	t.Helper()
	weatherURL, prayerURL := upstreams(t)

	cfg := &config.Config{Zone: time.UTC}
	cfg.Profile = config.ProfileConfig{Name: "Ali", Timezone: "UTC", PhotoDir: t.TempDir(), PhotoExt: ".png"}
	cfg.Location = config.LocationConfig{City: "Tashkent", Latitude: 41.2995, Longitude: 69.2401}
	cfg.Weather = config.WeatherConfig{APIKey: "k", BaseURL: weatherURL, Timeout: time.Second, CacheTTL: time.Minute}
	cfg.Prayer = config.PrayerConfig{BaseURL: prayerURL, School: 1, Timeout: time.Second}
	cfg.Retry = config.RetryConfig{Attempts: 1}
	cfg.Telegram = config.TelegramConfig{
		Token:                "123:abc",
		BusinessConnectionID: "conn",
		APIURL:               telegramURL,
		RatePerSecond:        100,
		Burst:                10,
	}
	cfg.Database.Path = filepath.Join(t.TempDir(), "state.db")
	return cfg
}

func TestPreview(t *testing.T) {
	t.Parallel()

	a := New(testConfig(t, "http://127.0.0.1:1"), logger.Discard())
	f := a.Preview(context.Background())

	if !strings.HasPrefix(f.First, "Ali | ") {
		t.Errorf("First = %q", f.First)
	}
	if !strings.HasSuffix(f.Last, "| 13 Ram 1446") {
		t.Errorf("Last = %q", f.Last)
	}
	if !strings.HasSuffix(f.Bio, "\nT: +22°C, Quyoshli") {
		t.Errorf("Bio = %q", f.Bio)
	}
}

func TestPhoto(t *testing.T) {
	t.Parallel()

	tg := &fakeTelegram{enabled: true}
	srv := httptest.NewServer(http.HandlerFunc(tg.serve))
	t.Cleanup(srv.Close)

	cfg := testConfig(t, srv.URL)
	stem := photo.FileStem(time.Now().In(cfg.Zone).Weekday())
	f, err := os.Create(filepath.Join(cfg.Profile.PhotoDir, stem+".png"))
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, image.NewGray(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatal(err)
	}
	f.Close()

	a := New(cfg, logger.Discard())
	t.Cleanup(a.Close)

	res, err := a.Photo(context.Background(), false)
	if err != nil {
		t.Fatalf("Photo() error = %v", err)
	}
	if res.Outcome != photo.OutcomeApplied {
		t.Errorf("Outcome = %s, want applied", res.Outcome)
	}
	if cfg.Telegram.AdminUserID != 99 {
		t.Errorf("AdminUserID = %d, want it derived from the connection", cfg.Telegram.AdminUserID)
	}

	res, err = a.Photo(context.Background(), false)
	if err != nil || res.Outcome != photo.OutcomeSkipped {
		t.Errorf("second Photo() = %+v, %v; want skipped", res, err)
	}

	want := []string{"getMe", "getBusinessConnection", "removeBusinessAccountProfilePhoto", "setBusinessAccountProfilePhoto"}
	got := tg.called()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("API calls = %v, want %v", got, want)
	}
}

func TestPhotoDisabledConnection(t *testing.T) {
	t.Parallel()

	tg := &fakeTelegram{enabled: false}
	srv := httptest.NewServer(http.HandlerFunc(tg.serve))
	t.Cleanup(srv.Close)

	a := New(testConfig(t, srv.URL), logger.Discard())
	t.Cleanup(a.Close)

	if _, err := a.Photo(context.Background(), true); err == nil {
		t.Fatal("Photo() should fail when the business connection is disabled")
	}
}

func TestPhotoRequiresTelegram(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.Telegram.Token = ""
	a := New(cfg, logger.Discard())

	if _, err := a.Photo(context.Background(), true); !errors.Is(err, config.ErrConfiguration) {
		t.Fatalf("Photo() error = %v, want ErrConfiguration", err)
	}
}
