package notify

import (
	"github.com/Nhattien2912/ExpenseManager-sub000/internal/logging"

	"github.com/sirupsen/logrus"
)

// Notification is what the core hands to the delivery layer. Delivery is
// fire-and-forget: the core never waits for or assumes an acknowledgment.
type Notification struct {
	Channel   string
	Title     string
	Body      string
	DedupeKey string
}

// Sink receives notifications for delivery.
type Sink interface {
	Send(n Notification)
}

// LogSink writes notifications to the structured log. It stands in for an
// OS-level delivery mechanism, which is outside this service.
type LogSink struct {
	log *logrus.Logger
}

func NewLogSink(log *logrus.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Send(n Notification) {
	s.log.WithFields(logrus.Fields{
		logging.FieldChannel:   n.Channel,
		logging.FieldDedupeKey: n.DedupeKey,
	}).Infof("notification: %s: %s", n.Title, n.Body)
}
