package ports

import (
	"context"

	"github.com/sirpyerre/storefront-api/internal/core/domain"
)

// TxManager runs fn inside one storage transaction. Repositories called with
// the ctx handed to fn take part in it; any error returned by fn aborts it.
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// IdempotencyStore remembers which resource a client request key produced.
type IdempotencyStore interface {
	// Claim reserves key within scope. When the key was already claimed it
	// returns claimed=false and the stored result id, which is empty while
	// the first request is still running.
	Claim(ctx context.Context, scope, key string) (resultID string, claimed bool, err error)
	Complete(ctx context.Context, scope, key, resultID string) error
	Release(ctx context.Context, scope, key string) error
}

// EventSink accepts lifecycle events for asynchronous delivery.
type EventSink interface {
	Enqueue(event domain.Event)
}

// EventPublisher delivers a single event to the message broker.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

// Mailer sends account e-mails.
type Mailer interface {
	SendRecoveryCode(ctx context.Context, to, name, code string) error
}
