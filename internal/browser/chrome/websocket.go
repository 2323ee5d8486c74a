package chrome

import (
	"github.com/chromedp/cdproto/network"
	"github.com/luispater/storefrontBot/internal/event"
	log "github.com/sirupsen/logrus"
)

// WebSocketListener receives the WebSocket lifecycle of a page.
// Nil callbacks are skipped; every event is also published on the bus.
type WebSocketListener struct {
	OnCreated           func(*network.EventWebSocketCreated)
	OnClosed            func(*network.EventWebSocketClosed)
	OnHandshakeSent     func(*network.EventWebSocketWillSendHandshakeRequest)
	OnHandshakeReceived func(*network.EventWebSocketHandshakeResponseReceived)
	OnFrameReceived     func(*network.EventWebSocketFrameReceived)
	OnFrameSent         func(*network.EventWebSocketFrameSent)
	OnError             func(*network.EventWebSocketFrameError)
}

// LoggingWebSocketListener logs every socket event at debug level.
func LoggingWebSocketListener() *WebSocketListener {
	return &WebSocketListener{
		OnCreated: func(ev *network.EventWebSocketCreated) {
			log.Debugf("WebSocket %s created: %s", ev.RequestID, ev.URL)
		},
		OnClosed: func(ev *network.EventWebSocketClosed) {
			log.Debugf("WebSocket %s closed", ev.RequestID)
		},
		OnHandshakeSent: func(ev *network.EventWebSocketWillSendHandshakeRequest) {
			log.Debugf("WebSocket %s sending handshake", ev.RequestID)
		},
		OnHandshakeReceived: func(ev *network.EventWebSocketHandshakeResponseReceived) {
			if ev.Response != nil {
				log.Debugf("WebSocket %s handshake response %d", ev.RequestID, ev.Response.Status)
			}
		},
		OnFrameReceived: func(ev *network.EventWebSocketFrameReceived) {
			if ev.Response != nil {
				log.Debugf("WebSocket %s received: %s", ev.RequestID, ev.Response.PayloadData)
			}
		},
		OnFrameSent: func(ev *network.EventWebSocketFrameSent) {
			if ev.Response != nil {
				log.Debugf("WebSocket %s sent: %s", ev.RequestID, ev.Response.PayloadData)
			}
		},
		OnError: func(ev *network.EventWebSocketFrameError) {
			log.Errorf("WebSocket %s error: %s", ev.RequestID, ev.ErrorMessage)
		},
	}
}

// onSocket handles WebSocket events once an inspector is attached.
func (f *forwarder) onSocket(ifEv interface{}) {
	f.mu.Lock()
	l := f.sockets
	f.mu.Unlock()
	if l == nil {
		return
	}

	var s event.Socket
	switch ev := ifEv.(type) {
	case *network.EventWebSocketCreated:
		f.mu.Lock()
		f.wsURLs[ev.RequestID] = ev.URL
		f.mu.Unlock()
		s = event.Socket{Phase: event.SocketCreated}
		if l.OnCreated != nil {
			l.OnCreated(ev)
		}
	case *network.EventWebSocketClosed:
		s = event.Socket{Phase: event.SocketClosed}
		if l.OnClosed != nil {
			l.OnClosed(ev)
		}
	case *network.EventWebSocketWillSendHandshakeRequest:
		s = event.Socket{Phase: event.SocketHandshakeSent}
		if l.OnHandshakeSent != nil {
			l.OnHandshakeSent(ev)
		}
	case *network.EventWebSocketHandshakeResponseReceived:
		s = event.Socket{Phase: event.SocketHandshakeReceived}
		if ev.Response != nil {
			s.Status = ev.Response.Status
		}
		if l.OnHandshakeReceived != nil {
			l.OnHandshakeReceived(ev)
		}
	case *network.EventWebSocketFrameReceived:
		s = event.Socket{Phase: event.SocketFrameReceived}
		if ev.Response != nil {
			s.Opcode = ev.Response.Opcode
			s.Payload = ev.Response.PayloadData
		}
		if l.OnFrameReceived != nil {
			l.OnFrameReceived(ev)
		}
	case *network.EventWebSocketFrameSent:
		s = event.Socket{Phase: event.SocketFrameSent}
		if ev.Response != nil {
			s.Opcode = ev.Response.Opcode
			s.Payload = ev.Response.PayloadData
		}
		if l.OnFrameSent != nil {
			l.OnFrameSent(ev)
		}
	case *network.EventWebSocketFrameError:
		s = event.Socket{Phase: event.SocketError, Error: ev.ErrorMessage}
		if l.OnError != nil {
			l.OnError(ev)
		}
	default:
		return
	}

	requestID := socketRequestID(ifEv)
	s.RequestID = string(requestID)
	f.mu.Lock()
	s.URL = f.wsURLs[requestID]
	if s.Phase == event.SocketClosed {
		delete(f.wsURLs, requestID)
	}
	f.mu.Unlock()
	f.bus.Publish(event.NewSocket(f.sessionID, s))
}

func socketRequestID(ifEv interface{}) network.RequestID {
	switch ev := ifEv.(type) {
	case *network.EventWebSocketCreated:
		return ev.RequestID
	case *network.EventWebSocketClosed:
		return ev.RequestID
	case *network.EventWebSocketWillSendHandshakeRequest:
		return ev.RequestID
	case *network.EventWebSocketHandshakeResponseReceived:
		return ev.RequestID
	case *network.EventWebSocketFrameReceived:
		return ev.RequestID
	case *network.EventWebSocketFrameSent:
		return ev.RequestID
	case *network.EventWebSocketFrameError:
		return ev.RequestID
	}
	return ""
}
