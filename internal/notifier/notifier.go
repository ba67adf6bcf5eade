package notifier

import (
	"context"
	"errors"
	"fmt"
)

// Notifier publishes a message to a staff channel.
type Notifier interface {
	Publish(ctx context.Context, message string) error
}

// NotificationError reports a failed delivery to one channel.
type NotificationError struct {
	Channel string
	Err     error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("notify %s: %v", e.Channel, e.Err)
}

func (e *NotificationError) Unwrap() error {
	return e.Err
}

// Multi fans a message out to every registered channel. One channel failing
// does not stop delivery to the rest; all failures are joined.
type Multi struct {
	targets []target
}

type target struct {
	name     string
	notifier Notifier
}

func NewMulti() *Multi {
	return &Multi{}
}

func (m *Multi) Add(name string, n Notifier) {
	m.targets = append(m.targets, target{name: name, notifier: n})
}

func (m *Multi) Len() int {
	return len(m.targets)
}

func (m *Multi) Publish(ctx context.Context, message string) error {
	var errs []error
	for _, t := range m.targets {
		if err := t.notifier.Publish(ctx, message); err != nil {
			errs = append(errs, &NotificationError{Channel: t.name, Err: err})
		}
	}
	return errors.Join(errs...)
}
