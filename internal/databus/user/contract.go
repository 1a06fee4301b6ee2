//go:generate mockgen -destination=mock_contract_test.go -package=${GOPACKAGE} -source=contract.go
package user

import (
	"context"

	"github.com/s21platform/room-service/internal/model"
)

type DBRepo interface {
	UpsertUser(ctx context.Context, profile *model.UserProfile) error
	GetUserRooms(ctx context.Context, userID string) ([]string, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, channel string, ev model.MembershipEvent) error
}
