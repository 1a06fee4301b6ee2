// Package api declares the REST request and response bodies of room-service.
package api

type CreateRoomRequest struct {
	Name     string  `json:"name"`
	Kind     string  `json:"kind"`
	VideoUrl *string `json:"video_url,omitempty"`
}

type CreateRoomResponse struct {
	Id string `json:"id"`
}

type RoomMember struct {
	UserId    string `json:"user_id"`
	Nickname  string `json:"nickname"`
	AvatarUrl string `json:"avatar_url"`
	IsOwner   bool   `json:"is_owner"`
}

type JoinRoomResponse struct {
	RoomId  string       `json:"room_id"`
	OwnerId string       `json:"owner_id"`
	Kind    string       `json:"kind"`
	Members []RoomMember `json:"members"`
}

type GetRoomMembersResponse struct {
	Members []RoomMember `json:"members"`
}

type GetMyRoomsResponse struct {
	RoomIds []string `json:"room_ids"`
}

type GetConnectAccessTokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

type GetRoomSubscribeTokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
	Channel   string `json:"channel"`
}

type Error struct {
	Error string `json:"error"`
}
