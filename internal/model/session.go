package model

// Session is the in-memory record of the selected port and what the last
// probe found. Only a probe changes Connected and the flash size.
type Session struct {
	Port         string // selected serial port
	FlashSize    int64  // detected flash size in bytes, valid when HasFlashSize
	HasFlashSize bool
	Connected    bool // true after a successful probe
}

// NewSession returns the initial Disconnected state for port
func NewSession(port string) Session {
	return Session{Port: port}
}

// BuildEnabled reports whether creating an image is allowed
func (s Session) BuildEnabled() bool {
	return s.Connected
}

// WithProbeSuccess returns the Connected state with the detected size
func (s Session) WithProbeSuccess(flashSize int64) Session {
	s.Connected = true
	s.FlashSize = flashSize
	s.HasFlashSize = true
	return s
}

// WithProbeFailure returns the Disconnected state, clearing any size
func (s Session) WithProbeFailure() Session {
	s.Connected = false
	s.FlashSize = 0
	s.HasFlashSize = false
	return s
}

// WithPort returns the state with a different port selected
func (s Session) WithPort(port string) Session {
	s.Port = port
	return s
}

// StatusText returns the connection label
func (s Session) StatusText() string {
	if s.Connected {
		return "Connected"
	}
	return "Not Connected"
}
