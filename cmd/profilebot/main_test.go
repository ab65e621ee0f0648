package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/edgard/profilebot/internal/compose"
)

func TestPrintFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printFields(&buf, compose.Fields{
		First: "Ali | Tungi 💤 | 23:10",
		Last:  "Chor 11 Iyn | 13 Ram 1446",
		Bio:   "Bugun 🕌✅\nT: ?°C, ?",
		Report: compose.Report{
			NextPrayer: compose.Part{Outcome: compose.OutcomeOK},
			Hijri:      compose.Part{Outcome: compose.OutcomeOK},
			Weather:    compose.Part{Outcome: compose.OutcomeFallback},
		},
	})

	want := "first_name: Ali | Tungi 💤 | 23:10\n" +
		"last_name:  Chor 11 Iyn | 13 Ram 1446\n" +
		"bio:\nBugun 🕌✅\nT: ?°C, ?\n" +
		"fallbacks: next_prayer=ok hijri=ok weather=fallback\n"
	if buf.String() != want {
		t.Errorf("printFields() =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestPreviewCommand(t *testing.T) {
	weatherSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `{"weather":[{"description":"light rain"}],"main":{"temp":12.2}}`)
	}))
	defer weatherSrv.Close()
	prayerSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer prayerSrv.Close()

	t.Setenv("BOT_PROFILE_NAME", "Ali")
	t.Setenv("BOT_WEATHER_BASE_URL", weatherSrv.URL)
	t.Setenv("BOT_WEATHER_API_KEY", "k")
	t.Setenv("BOT_PRAYER_BASE_URL", prayerSrv.URL)
	t.Setenv("BOT_RETRY_ATTEMPTS", "1")
	t.Setenv("BOT_LOG_LEVEL", "error")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"preview", "--env-file", filepath.Join(t.TempDir(), "none.env")})

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("preview error = %v", err)
	}

	got := out.String()
	for _, want := range []string{"first_name: Ali | ", "Hijri: ???", "Namoz: ?\nT: +12°C, Yengil yomgʻir", "next_prayer=fallback"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestPhotoCommandRequiresTelegram(t *testing.T) {
	t.Setenv("BOT_PROFILE_NAME", "Ali")
	t.Setenv("BOT_TELEGRAM_TOKEN", "")
	t.Setenv("BOT_LOG_LEVEL", "error")

	code := execute(context.Background(), []string{"photo", "--env-file", filepath.Join(t.TempDir(), "none.env")})
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
}

func TestUnknownCommand(t *testing.T) {
	t.Parallel()

	if code := execute(context.Background(), []string{"launch"}); code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
}
