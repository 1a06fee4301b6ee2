package model

import (
	"time"
)

const (
	StudyRoomKind = "study"
	WatchRoomKind = "watch"
)

type Room struct {
	ID        string    `db:"id" json:"id"`
	OwnerID   string    `db:"owner_id" json:"owner_id"`
	Name      string    `db:"name" json:"name"`
	Kind      string    `db:"kind" json:"kind"`
	VideoURL  *string   `db:"video_url" json:"video_url,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
