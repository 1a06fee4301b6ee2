//go:generate mockgen -destination=mock_contract_test.go -package=${GOPACKAGE} -source=contract.go
package rest

import (
	"context"

	"github.com/s21platform/room-service/internal/api"
	"github.com/s21platform/room-service/internal/model"
)

type DBRepo interface {
	CreateRoom(ctx context.Context, room *model.Room) (string, error)
	GetRoom(ctx context.Context, roomID string) (*model.Room, error)
	AddRoomMember(ctx context.Context, roomID, userID string) error
	RemoveRoomMember(ctx context.Context, roomID, userID string) error
	ListRoomMembers(ctx context.Context, roomID string) ([]string, error)
	IsRoomMember(ctx context.Context, roomID, userID string) (bool, error)
	GetUserRooms(ctx context.Context, userID string) ([]string, error)
	GetUserProfiles(ctx context.Context, userIDs []string) ([]model.UserProfile, error)

	WithTx(ctx context.Context, cb func(ctx context.Context) error) error
}

// CentrifugeClient fans membership events out to browser clients.
type CentrifugeClient interface {
	Publish(ctx context.Context, channel string, ev model.MembershipEvent) error
}

// EventBroker fans membership events out to in-process subscribers.
type EventBroker interface {
	Publish(ev model.MembershipEvent)
}

type Validator interface {
	ValidateCreateRoom(req *api.CreateRoomRequest) error
	ValidateKickMember(targetUserID string) error
}

type JWTGenerator interface {
	GenerateConnectToken(userID string) (string, int64, error)
	GenerateSubscribeToken(userID, roomID string) (string, int64, error)
	ValidateConnectToken(tokenString string) (*model.CentrifugoConnectClaims, error)
	ValidateSubscribeToken(tokenString string) (*model.CentrifugoSubscribeClaims, error)
}
