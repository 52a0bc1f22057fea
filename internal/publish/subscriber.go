package publish

import (
	"fmt"
	"log"

	"Go2NetLoss/internal/config"
	"Go2NetLoss/internal/model"

	"github.com/nats-io/nats.go"
)

// SummaryHandler processes a received scenario summary.
type SummaryHandler func(summary *model.GroupSummary)

// Subscriber receives the summaries announced by a Publisher.
type Subscriber struct {
	nc      *nats.Conn
	sub     *nats.Subscription
	subject string
}

// NewSubscriber creates a new NATS subscriber.
func NewSubscriber(cfg config.PublisherConfig) (*Subscriber, error) {
	nc, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", cfg.NATSURL, err)
	}
	log.Printf("Connected to NATS server at %s", cfg.NATSURL)
	return &Subscriber{nc: nc, subject: cfg.Subject}, nil
}

// Start subscribes to the configured subject and passes every decodable
// summary to handler.
func (s *Subscriber) Start(handler SummaryHandler) error {
	sub, err := s.nc.Subscribe(s.subject, dispatch(handler))
	if err != nil {
		return err
	}
	s.sub = sub
	log.Printf("Subscribed to '%s'. Waiting for summaries...", s.subject)
	return nil
}

func dispatch(handler SummaryHandler) nats.MsgHandler {
	return func(msg *nats.Msg) {
		summary, err := Decode(msg.Data)
		if err != nil {
			log.Printf("Dropping message on '%s': %v", msg.Subject, err)
			return
		}
		handler(summary)
	}
}

// Close unsubscribes and closes the NATS connection.
func (s *Subscriber) Close() {
	if s.sub != nil {
		s.sub.Unsubscribe()
	}
	if s.nc != nil {
		s.nc.Close()
		log.Println("NATS connection closed.")
	}
}
