package models

import "time"

// Player is the per-username document. It is written once when the
// username is first minted and never mutated afterwards.
type Player struct {
	ID        string    `json:"_id" bson:"_id"`
	Reg       bool      `json:"reg" bson:"reg"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// UserSession is the identity attached to every request, stored as a
// JSON string in the session store under its session id. IsNew marks
// a session whose cookie still has to be sent to the client.
type UserSession struct {
	Username     string `json:"username"`
	Reg          bool   `json:"reg"`
	CodeVerifier string `json:"code_verifier"`
	Session      string `json:"session"`
	IsNew        bool   `json:"is_new"`
}

func NewUserSession(username, session string, reg bool) *UserSession {
	return &UserSession{
		Username: username,
		Reg:      reg,
		Session:  session,
		IsNew:    true,
	}
}

// Player derives the document minted for a newly registered session.
func (s *UserSession) Player() *Player {
	return &Player{ID: s.Username, Reg: s.Reg, CreatedAt: time.Now()}
}

// VueUser is the login-state payload the SPA polls for.
type VueUser struct {
	Username string `json:"username"`
	Logged   bool   `json:"logged"`
}

func (s *UserSession) VueUser() VueUser {
	return VueUser{Username: s.Username, Logged: s.Reg}
}
