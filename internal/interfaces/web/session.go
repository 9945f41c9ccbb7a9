package web

import (
	"net/http"

	"github.com/gorilla/securecookie"
)

const sessionName = "visawatch_session"

type SessionManager struct{ sc *securecookie.SecureCookie }

// NewSessionManager uses random keys for whichever of hashKey and blockKey is
// empty, so sessions then last only as long as the process.
func NewSessionManager(hashKey, blockKey []byte) *SessionManager {
	if len(hashKey) == 0 {
		hashKey = securecookie.GenerateRandomKey(32)
	}
	if len(blockKey) == 0 {
		blockKey = securecookie.GenerateRandomKey(32)
	}
	return &SessionManager{sc: securecookie.New(hashKey, blockKey)}
}

func (s *SessionManager) SetUser(w http.ResponseWriter, username string) error {
	value := map[string]string{"user": username}
	encoded, err := s.sc.Encode(sessionName, value)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name: sessionName, Value: encoded, Path: "/",
		HttpOnly: true, SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (s *SessionManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name: sessionName, Value: "", Path: "/", MaxAge: -1,
		HttpOnly: true, SameSite: http.SameSiteLaxMode,
	})
}

func (s *SessionManager) User(r *http.Request) (string, bool) {
	c, err := r.Cookie(sessionName)
	if err != nil {
		return "", false
	}
	value := map[string]string{}
	if err := s.sc.Decode(sessionName, c.Value, &value); err != nil {
		return "", false
	}
	user := value["user"]
	if user == "" {
		return "", false
	}
	return user, true
}
