package presence

import "errors"

var (
	// ErrRoomNotFound is fatal for the session: the caller must leave the
	// room view, not retry.
	ErrRoomNotFound = errors.New("room not found")

	// ErrStoreUnavailable is a transient store failure. The product treats
	// it the same as a deleted room: the caller exits the room view.
	ErrStoreUnavailable = errors.New("membership store unavailable")

	// ErrAlreadyExists may be returned by a MembershipStore whose insert is
	// not idempotent; the coordinator normalizes it to success.
	ErrAlreadyExists = errors.New("membership already exists")

	ErrNotAuthorized = errors.New("not authorized")
	ErrLeaveFailed   = errors.New("failed to leave room")
	ErrKickFailed    = errors.New("failed to kick member")
)
