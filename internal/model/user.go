package model

// UserUpdatedMessage is the payload of the platform user topic consumed by
// the kafka worker.
type UserUpdatedMessage struct {
	UserID    string `json:"user_id"`
	Nickname  string `json:"nickname"`
	AvatarURL string `json:"avatar_url"`
}
