package event

import (
	"fmt"
	"strings"
	"time"
)

// Kind tags the payload carried by an Event.
type Kind int

const (
	KindRequest Kind = iota + 1
	KindResponse
	KindConsole
	KindSocket
)

func (k Kind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindResponse:
		return "response"
	case KindConsole:
		return "console"
	case KindSocket:
		return "socket"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "request":
		return KindRequest, nil
	case "response":
		return KindResponse, nil
	case "console":
		return KindConsole, nil
	case "socket":
		return KindSocket, nil
	}
	return 0, fmt.Errorf("unknown event kind %q", s)
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Request is an outgoing network request issued by a page.
type Request struct {
	Method string `json:"method"`
	URL    string `json:"url"`
}

// Response is a finished network response, body included.
type Response struct {
	URL        string `json:"url"`
	Path       string `json:"path"`
	Status     int64  `json:"status"`
	StatusText string `json:"status_text,omitempty"`
	Body       string `json:"body,omitempty"`
}

// Console is a console API call made by page scripts.
type Console struct {
	Type string   `json:"type"`
	Text string   `json:"text"`
	Args []string `json:"args,omitempty"`
}

// SocketPhase names a WebSocket lifecycle step.
type SocketPhase string

const (
	SocketCreated           SocketPhase = "created"
	SocketClosed            SocketPhase = "closed"
	SocketHandshakeSent     SocketPhase = "handshake-sent"
	SocketHandshakeReceived SocketPhase = "handshake-received"
	SocketFrameReceived     SocketPhase = "frame-received"
	SocketFrameSent         SocketPhase = "frame-sent"
	SocketError             SocketPhase = "error"
)

// Socket is a WebSocket lifecycle event observed on a page.
type Socket struct {
	Phase     SocketPhase `json:"phase"`
	RequestID string      `json:"request_id"`
	URL       string      `json:"url,omitempty"`
	Status    int64       `json:"status,omitempty"`
	Opcode    float64     `json:"opcode,omitempty"`
	Payload   string      `json:"payload,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// Event is a page event forwarded onto the bus. Exactly one payload field is
// set, the one matching Kind.
type Event struct {
	Kind      Kind      `json:"kind"`
	SessionID string    `json:"session_id"`
	Time      time.Time `json:"time"`
	Request   *Request  `json:"request,omitempty"`
	Response  *Response `json:"response,omitempty"`
	Console   *Console  `json:"console,omitempty"`
	Socket    *Socket   `json:"socket,omitempty"`
}

func NewRequest(sessionID string, r Request) Event {
	return Event{Kind: KindRequest, SessionID: sessionID, Time: time.Now(), Request: &r}
}

func NewResponse(sessionID string, r Response) Event {
	return Event{Kind: KindResponse, SessionID: sessionID, Time: time.Now(), Response: &r}
}

func NewConsole(sessionID string, c Console) Event {
	return Event{Kind: KindConsole, SessionID: sessionID, Time: time.Now(), Console: &c}
}

func NewSocket(sessionID string, s Socket) Event {
	return Event{Kind: KindSocket, SessionID: sessionID, Time: time.Now(), Socket: &s}
}
