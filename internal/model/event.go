package model

type MembershipEventType string

const (
	EventInserted MembershipEventType = "inserted"
	EventUpdated  MembershipEventType = "updated"
	EventDeleted  MembershipEventType = "deleted"

	// EventResubscribed marks a delivery gap: the transport reconnected and
	// events may have been missed, so subscribers must refetch the roster.
	EventResubscribed MembershipEventType = "resubscribed"
)

type MembershipEvent struct {
	RoomID string              `json:"room_id"`
	UserID string              `json:"user_id,omitempty"`
	Type   MembershipEventType `json:"type"`
}

// RoomChannel is the centrifugo channel carrying membership events of one room.
func RoomChannel(roomID string) string {
	return "room:" + roomID
}
