package validator

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/s21platform/room-service/internal/api"
	"github.com/s21platform/room-service/internal/model"
)

const maxRoomNameLength = 100

type Validator struct{}

func New() *Validator {
	return &Validator{}
}

func (v *Validator) ValidateCreateRoom(req *api.CreateRoomRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("room name is required")
	}

	if len([]rune(req.Name)) > maxRoomNameLength {
		return fmt.Errorf("room name exceeds maximum length of %d characters", maxRoomNameLength)
	}

	switch req.Kind {
	case model.StudyRoomKind, model.WatchRoomKind:
	default:
		return fmt.Errorf("room kind '%s' is not supported", req.Kind)
	}

	if req.VideoUrl != nil && req.Kind != model.WatchRoomKind {
		return fmt.Errorf("video url is only allowed for watch rooms")
	}

	return nil
}

func (v *Validator) ValidateKickMember(targetUserID string) error {
	if strings.TrimSpace(targetUserID) == "" {
		return fmt.Errorf("target user id is required")
	}

	if _, err := uuid.Parse(targetUserID); err != nil {
		return fmt.Errorf("target user id is not a valid uuid")
	}

	return nil
}
