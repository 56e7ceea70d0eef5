package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Gautamrajanand/crm-supabase-sub000/app"
	"github.com/Gautamrajanand/crm-supabase-sub000/notify"
	"github.com/Gautamrajanand/crm-supabase-sub000/session"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func newTestSrv(t *testing.T) *Srv {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	b := notify.NewBroadcaster(nil)
	t.Cleanup(b.Close)
	return &Srv{
		Streams:   session.NewActiveStreamStore(rdb, time.Hour),
		AppSess:   session.NewAppSessionStore(rdb, time.Hour),
		Broadcast: b,
		WebOrigin: "http://localhost:3000",
		Cfg:       app.Config{WebOrigin: "http://localhost:3000", SessionTTL: time.Hour},
	}
}

func newTestGinContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	return c, w
}

func streamCookieValue(res *http.Response) (string, bool) {
	for _, ck := range res.Cookies() {
		if ck.Name == app.StreamCookie {
			return ck.Value, ck.MaxAge >= 0
		}
	}
	return "", false
}

func TestActivateStreamPersistsMirrorsAndBroadcastsOnce(t *testing.T) {
	s := newTestSrv(t)
	c, w := newTestGinContext(t)

	ch, cancel := s.Broadcast.Subscribe()
	defer cancel()

	ref, err := s.activateStream(c, "sess1", "stream-b")
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if ref.StreamID != "stream-b" || ref.Epoch != 1 {
		t.Errorf("ref = %+v", ref)
	}

	// The store and the mirrored cookie agree on the new stream.
	stored, err := s.Streams.Get(c.Request.Context(), "sess1")
	if err != nil || stored == nil || stored.StreamID != "stream-b" {
		t.Errorf("stored ref = %+v, %v", stored, err)
	}
	val, live := streamCookieValue(w.Result())
	if val != "stream-b" || !live {
		t.Errorf("stream cookie = %q (live=%v), want stream-b", val, live)
	}

	// Exactly one switch notification, carrying the new stream and epoch.
	select {
	case ev := <-ch:
		if ev.SessionID != "sess1" || ev.StreamID != "stream-b" || ev.Epoch != ref.Epoch {
			t.Errorf("broadcast = %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("no switch broadcast")
	}
	select {
	case ev := <-ch:
		t.Errorf("duplicate broadcast %+v", ev)
	default:
	}
}

func TestClearActiveStreamExpiresCookieAndBumpsEpoch(t *testing.T) {
	s := newTestSrv(t)
	c, w := newTestGinContext(t)

	ref, err := s.activateStream(c, "sess1", "stream-a")
	if err != nil {
		t.Fatalf("activate: %v", err)
	}

	if err := s.clearActiveStream(c, "sess1"); err != nil {
		t.Fatalf("clear: %v", err)
	}

	stored, err := s.Streams.Get(c.Request.Context(), "sess1")
	if err != nil || stored != nil {
		t.Errorf("ref after clear = %+v, %v", stored, err)
	}
	// A response started before the clear is now stale.
	stale, err := s.Streams.Stale(c.Request.Context(), "sess1", ref.Epoch)
	if err != nil || !stale {
		t.Errorf("stale after clear = %v, %v; want true", stale, err)
	}

	// Last cookie written wins: it must be the expiring one.
	cookies := w.Result().Cookies()
	var last *http.Cookie
	for _, ck := range cookies {
		if ck.Name == app.StreamCookie {
			last = ck
		}
	}
	if last == nil || last.MaxAge != -1 {
		t.Errorf("stream cookie not expired: %+v", last)
	}
}
