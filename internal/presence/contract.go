//go:generate mockgen -destination=mock_contract_test.go -package=${GOPACKAGE} -source=contract.go
package presence

import (
	"context"

	"github.com/s21platform/room-service/internal/model"
)

// MembershipStore is the durable table of (room, user) pairs. Inserts are
// idempotent, deletes of absent rows succeed; the store never surfaces
// either as an error.
type MembershipStore interface {
	GetRoom(ctx context.Context, roomID string) (*model.Room, error)
	AddRoomMember(ctx context.Context, roomID, userID string) error
	RemoveRoomMember(ctx context.Context, roomID, userID string) error
	ListRoomMembers(ctx context.Context, roomID string) ([]string, error)
}

// EventSource opens live subscriptions to a room's membership change
// events. Delivery is at least once; a transport that lost events emits a
// resubscribed marker instead of replaying them.
type EventSource interface {
	Subscribe(ctx context.Context, roomID string) (Subscription, error)
}

type Subscription interface {
	Events() <-chan model.MembershipEvent
	Close() error
}

type ProfileResolver interface {
	ResolveMany(ctx context.Context, userIDs []string) (map[string]model.UserProfile, error)
}
