package presence

import (
	"github.com/s21platform/room-service/internal/model"
)

// BuildRoster projects a member id list onto profile data. Duplicate ids
// collapse into one entry, the owner's entry is moved to the front and the
// remaining order is preserved. Missing profiles degrade to placeholders.
func BuildRoster(ownerID string, userIDs []string, profiles map[string]model.UserProfile) model.Roster {
	roster := make(model.Roster, 0, len(userIDs))
	seen := make(map[string]struct{}, len(userIDs))

	for _, id := range userIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		entry := model.RosterEntry{
			UserID:   id,
			Nickname: model.PlaceholderNickname,
			IsOwner:  id == ownerID,
		}
		if profile, ok := profiles[id]; ok {
			if profile.Nickname != "" {
				entry.Nickname = profile.Nickname
			}
			entry.AvatarURL = profile.AvatarURL
		}
		roster = append(roster, entry)
	}

	for i := range roster {
		if roster[i].IsOwner {
			if i > 0 {
				owner := roster[i]
				copy(roster[1:i+1], roster[0:i])
				roster[0] = owner
			}
			break
		}
	}

	return roster
}

func removeEntry(roster model.Roster, userID string) (model.Roster, bool) {
	for i, entry := range roster {
		if entry.UserID == userID {
			out := make(model.Roster, 0, len(roster)-1)
			out = append(out, roster[:i]...)
			out = append(out, roster[i+1:]...)
			return out, true
		}
	}
	return roster, false
}

func cloneRoster(roster model.Roster) model.Roster {
	if roster == nil {
		return nil
	}
	out := make(model.Roster, len(roster))
	copy(out, roster)
	return out
}
