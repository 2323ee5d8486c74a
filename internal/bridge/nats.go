// Package bridge copies bus events onto a NATS subject tree.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/luispater/storefrontBot/internal/config"
	"github.com/luispater/storefrontBot/internal/event"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

// Publisher is the part of a NATS connection the bridge needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Subject returns the subject an event kind is published on.
func Subject(prefix string, kind event.Kind) string {
	if prefix == "" {
		return kind.String()
	}
	return fmt.Sprintf("%s.%s", prefix, kind)
}

// Bridge forwards every event on a bus to a Publisher.
type Bridge struct {
	pub    Publisher
	prefix string
	conn   *nats.Conn
	sub    *event.Subscription
	done   chan struct{}
}

// New starts forwarding bus events to pub under prefix.
func New(bus *event.Bus, pub Publisher, prefix string) *Bridge {
	b := &Bridge{
		pub:    pub,
		prefix: prefix,
		sub:    bus.Subscribe(event.Any()),
		done:   make(chan struct{}),
	}
	go b.loop()
	return b
}

// Connect dials the configured NATS server and bridges bus onto it.
func Connect(bus *event.Bus, cfg config.AppConfigNATS) (*Bridge, error) {
	if cfg.URL == "" {
		return nil, errors.New("nats url is empty")
	}
	conn, err := nats.Connect(cfg.URL,
		nats.Name("storefrontBot"),
		nats.Timeout(5*time.Second),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	log.Infof("Publishing events to NATS %s under %s", cfg.URL, cfg.SubjectPrefix)

	b := New(bus, conn, cfg.SubjectPrefix)
	b.conn = conn
	return b, nil
}

func (b *Bridge) loop() {
	defer close(b.done)
	for {
		ev, err := b.sub.Next(context.Background())
		if err != nil {
			return
		}
		data, err := json.Marshal(ev)
		if err != nil {
			log.Debugf("Error encoding %s event: %v", ev.Kind, err)
			continue
		}
		if err = b.pub.Publish(Subject(b.prefix, ev.Kind), data); err != nil {
			log.Debugf("Error publishing %s event: %v", ev.Kind, err)
		}
	}
}

// Close stops forwarding and drains the NATS connection if the bridge owns one.
func (b *Bridge) Close() error {
	b.sub.Unsubscribe()
	<-b.done
	if b.conn != nil {
		return b.conn.Drain()
	}
	return nil
}
