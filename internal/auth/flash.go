package auth

import (
	"crypto/sha256"
	"net/http"

	"github.com/gorilla/sessions"
)

const flashSessionName = "mess_flash"

const (
	FlashError   = "error"
	FlashSuccess = "success"
)

// Flashes are the one-shot messages consumed by the next rendered page.
type Flashes struct {
	Errors    []string
	Successes []string
}

// FlashStore keeps flash messages in a signed cookie.
type FlashStore struct {
	store *sessions.CookieStore
}

func NewFlashStore(secret string, secure bool) *FlashStore {
	key := sha256.Sum256([]byte("flash:" + secret))
	store := sessions.NewCookieStore(key[:])
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &FlashStore{store: store}
}

// Add queues a message for the next page. Must run before the response
// headers are written.
func (f *FlashStore) Add(w http.ResponseWriter, r *http.Request, kind, msg string) {
	session, _ := f.store.Get(r, flashSessionName)
	session.AddFlash(msg, kind)
	_ = session.Save(r, w)
}

// Pop returns and clears all pending messages.
func (f *FlashStore) Pop(w http.ResponseWriter, r *http.Request) Flashes {
	session, err := f.store.Get(r, flashSessionName)
	if err != nil {
		return Flashes{}
	}

	out := Flashes{
		Errors:    toStrings(session.Flashes(FlashError)),
		Successes: toStrings(session.Flashes(FlashSuccess)),
	}
	if len(out.Errors) > 0 || len(out.Successes) > 0 {
		_ = session.Save(r, w)
	}
	return out
}

func toStrings(values []interface{}) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
