package user

import (
	"context"
	"encoding/json"
	"fmt"

	logger_lib "github.com/s21platform/logger-lib"

	"github.com/s21platform/room-service/internal/config"
	"github.com/s21platform/room-service/internal/model"
)

// Handler consumes the platform user topic. An attribute change does not
// touch membership identity: the denormalized profile row is updated and
// every room the user belongs to gets an updated event so clients refetch
// their rosters.
type Handler struct {
	repository DBRepo
	publisher  EventPublisher
}

func New(repo DBRepo, publisher EventPublisher) *Handler {
	return &Handler{
		repository: repo,
		publisher:  publisher,
	}
}

func (h *Handler) Handler(ctx context.Context, in []byte) error {
	logger := logger_lib.FromContext(ctx, config.KeyLogger)
	logger.AddFuncName("UserUpdatedHandler")

	var msg model.UserUpdatedMessage
	if err := json.Unmarshal(in, &msg); err != nil {
		return fmt.Errorf("failed to unmarshal user update: %w", err)
	}

	if msg.UserID == "" {
		return fmt.Errorf("user update without user id")
	}

	err := h.repository.UpsertUser(ctx, &model.UserProfile{
		UserID:    msg.UserID,
		Nickname:  msg.Nickname,
		AvatarURL: msg.AvatarURL,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert user %s: %w", msg.UserID, err)
	}

	roomIDs, err := h.repository.GetUserRooms(ctx, msg.UserID)
	if err != nil {
		return fmt.Errorf("failed to get rooms of user %s: %w", msg.UserID, err)
	}

	for _, roomID := range roomIDs {
		ev := model.MembershipEvent{
			RoomID: roomID,
			UserID: msg.UserID,
			Type:   model.EventUpdated,
		}
		// события рассылаем по возможности: пропуск восполнит refetch
		if err := h.publisher.Publish(ctx, model.RoomChannel(roomID), ev); err != nil {
			logger.Error(fmt.Sprintf("failed to publish update for room %s: %v", roomID, err))
		}
	}

	return nil
}
