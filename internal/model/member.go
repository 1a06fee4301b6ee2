package model

// PlaceholderNickname is shown when profile resolution fails or the user
// has no profile row yet.
const PlaceholderNickname = "Unknown User"

type RoomMember struct {
	RoomID string `db:"room_id"`
	UserID string `db:"user_id"`
}

type UserProfile struct {
	UserID    string `db:"id"`
	Nickname  string `db:"nickname"`
	AvatarURL string `db:"avatar_url"`
}

type RosterEntry struct {
	UserID    string `json:"user_id"`
	Nickname  string `json:"nickname"`
	AvatarURL string `json:"avatar_url"`
	IsOwner   bool   `json:"is_owner"`
}

// Roster is the per-client projection of a room's current members.
// The owner's entry is always first.
type Roster []RosterEntry

func (r Roster) Contains(userID string) bool {
	for _, entry := range r {
		if entry.UserID == userID {
			return true
		}
	}
	return false
}
