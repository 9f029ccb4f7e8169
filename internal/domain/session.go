package domain

// Busy reports which long-running operations are in flight for a session.
type Busy struct {
	SigningIn   bool `json:"signing_in"`
	SigningOut  bool `json:"signing_out"`
	CheckingOut bool `json:"checking_out"`
}

// SessionState is everything one shopper session holds. It is replaced as a whole
// on every transition.
type SessionState struct {
	View View  `json:"view"`
	Cart Cart  `json:"cart"`
	User *User `json:"user,omitempty"`
	Busy Busy  `json:"busy"`
}

func NewSessionState() SessionState {
	return SessionState{View: ViewHome}
}

// Clone returns a copy that shares nothing mutable with s.
func (s SessionState) Clone() SessionState {
	c := s
	c.Cart = s.Cart.Clone()
	if s.User != nil {
		u := *s.User
		c.User = &u
	}
	return c
}

func (s SessionState) Authenticated() bool {
	return s.User != nil
}
