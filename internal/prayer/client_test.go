package prayer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/edgard/profilebot/internal/retry"
)

const timingsBody = `{
  "code": 200,
  "status": "OK",
  "data": {
    "timings": {"Fajr": "03:00", "Sunrise": "04:48", "Dhuhr": "12:00", "Asr": "15:30", "Maghrib": "18:00", "Isha": "19:30"},
    "date": {"hijri": {"date": "13-09-1446", "day": "13", "month": {"number": 9, "en": "Ramaḍān"}, "year": "1446"}}
  }
}`

func newTestClient(url string) *Client {
	return NewClient(ClientConfig{
		BaseURL:   url,
		Latitude:  41.2995,
		Longitude: 69.2401,
		Timezone:  "Asia/Tashkent",
		School:    1,
		Timeout:   time.Second,
		Retry:     retry.Policy{Attempts: 3, Delay: time.Millisecond},
	}, nil)
}

func TestClientDay(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/timings/11-06-2025" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("latitude") != "41.2995" || q.Get("longitude") != "69.2401" || q.Get("school") != "1" || q.Get("timezonestring") != "Asia/Tashkent" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(timingsBody))
	}))
	defer ts.Close()

	day, err := newTestClient(ts.URL).Day(context.Background(), at(9, 0, 0))
	if err != nil {
		t.Fatalf("Day() error = %v", err)
	}
	if day.Schedule[Dhuhr] != "12:00" || day.Schedule[Isha] != "19:30" {
		t.Errorf("schedule = %v", day.Schedule)
	}
	if got := HijriShort(day.Hijri); got != "13 Ram 1446" {
		t.Errorf("hijri = %q", got)
	}
}

func TestClientDayMissingHijri(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"timings":{"Fajr":"03:00"},"date":{}}}`))
	}))
	defer ts.Close()

	day, err := newTestClient(ts.URL).Day(context.Background(), at(9, 0, 0))
	if err != nil {
		t.Fatalf("Day() error = %v", err)
	}
	if got := HijriShort(day.Hijri); got != Placeholder {
		t.Errorf("hijri = %q, want placeholder", got)
	}
}

func TestClientDayPropagatesFailure(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	_, err := newTestClient(ts.URL).Day(context.Background(), at(9, 0, 0))
	if !errors.Is(err, retry.ErrExhausted) {
		t.Errorf("error = %v, want exhausted", err)
	}
	if n := hits.Load(); n != 3 {
		t.Errorf("requests = %d, want 3", n)
	}
}

func TestClientDayMalformed(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"code":200,"data":{}}`))
	}))
	defer ts.Close()

	_, err := newTestClient(ts.URL).Day(context.Background(), at(9, 0, 0))
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("error = %v, want ErrMalformed", err)
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("requests = %d, want 1", n)
	}
}

type countingSource struct {
	calls atomic.Int32
	err   error
}

func (s *countingSource) Day(context.Context, time.Time) (Day, error) {
	s.calls.Add(1)
	time.Sleep(5 * time.Millisecond)
	if s.err != nil {
		return Day{}, s.err
	}
	return Day{Schedule: sampleSchedule(), Hijri: HijriDate{Day: 13, Month: 9, Year: 1446}}, nil
}

func TestCachedSourceReusesDay(t *testing.T) {
	t.Parallel()

	src := &countingSource{}
	cached := NewCachedSource(src)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cached.Day(context.Background(), at(9, 0, 0)); err != nil {
				t.Errorf("Day() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if _, err := cached.Day(context.Background(), at(23, 0, 0)); err != nil {
		t.Fatalf("Day() error = %v", err)
	}
	if n := src.calls.Load(); n != 1 {
		t.Errorf("upstream calls = %d, want 1", n)
	}

	if _, err := cached.Day(context.Background(), at(9, 0, 0).AddDate(0, 0, 1)); err != nil {
		t.Fatalf("Day() error = %v", err)
	}
	if n := src.calls.Load(); n != 2 {
		t.Errorf("upstream calls = %d, want 2 after date change", n)
	}
}

func TestCachedSourceDoesNotCacheFailures(t *testing.T) {
	t.Parallel()

	src := &countingSource{err: errors.New("down")}
	cached := NewCachedSource(src)

	for i := 0; i < 2; i++ {
		if _, err := cached.Day(context.Background(), at(9, 0, 0)); err == nil {
			t.Fatal("expected error")
		}
	}
	if n := src.calls.Load(); n != 2 {
		t.Errorf("upstream calls = %d, want 2", n)
	}
}

type blockingSource struct {
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
}

func (s *blockingSource) Day(ctx context.Context, _ time.Time) (Day, error) {
	if s.calls.Add(1) == 1 {
		close(s.entered)
	}
	select {
	case <-s.release:
		return Day{Schedule: sampleSchedule(), Hijri: HijriDate{Day: 13, Month: 9, Year: 1446}}, nil
	case <-ctx.Done():
		return Day{}, ctx.Err()
	}
}

func TestCachedSourceCallerCancelDoesNotFailOthers(t *testing.T) {
	t.Parallel()

	src := &blockingSource{entered: make(chan struct{}), release: make(chan struct{})}
	cached := NewCachedSource(src)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := cached.Day(firstCtx, at(9, 0, 0))
		firstErr <- err
	}()
	<-src.entered

	secondErr := make(chan error, 1)
	go func() {
		_, err := cached.Day(context.Background(), at(9, 0, 0))
		secondErr <- err
	}()
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	select {
	case err := <-firstErr:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("cancelled caller error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("cancelled caller did not return")
	}

	close(src.release)
	select {
	case err := <-secondErr:
		if err != nil {
			t.Errorf("waiting caller error = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("waiting caller did not return")
	}

	if n := src.calls.Load(); n != 1 {
		t.Errorf("upstream calls = %d, want 1", n)
	}
	if _, err := cached.Day(context.Background(), at(10, 0, 0)); err != nil {
		t.Errorf("day should be cached after the shared fetch, error = %v", err)
	}
	if n := src.calls.Load(); n != 1 {
		t.Errorf("upstream calls = %d after cache hit, want 1", n)
	}
}
