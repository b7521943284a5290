package services

import "github.com/talentscout/talentscout-server/internal/domain"

// Notifier delivers realtime events to connected clients. Delivery is
// best-effort: implementations must never block the caller and absent
// recipients are silently skipped. The realtime hub implements this
// interface; a nil Notifier disables publishing.
type Notifier interface {
	// PublishMatchEvent notifies both participants of a created or
	// transitioned match.
	PublishMatchEvent(m domain.Match, athleteUserID, recruiterUserID string)

	// PublishChatMessage fans a persisted message out to every session
	// currently joined to the match room.
	PublishChatMessage(msg domain.Message)
}
