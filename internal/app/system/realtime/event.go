// internal/app/system/realtime/event.go

package realtime

import "encoding/json"

// Room names follow the "<kind>:<id>" convention used across the API,
// for example "org:64f..." or "user:64f...".
func OrgRoom(orgID string) string   { return "org:" + orgID }
func UserRoom(userID string) string { return "user:" + userID }

// Event is a realtime notification delivered to every subscriber of a
// room. Payload is pre-marshaled so the hub never touches domain types.
type Event struct {
	Room    string          `json:"room"`
	Name    string          `json:"name"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Event names. Clients merge task events into their local board state
// keyed by task id.
const (
	EventTaskCreated   = "task.created"
	EventTaskUpdated   = "task.updated"
	EventTaskMoved     = "task.moved"
	EventTaskAssigned  = "task.assigned"
	EventTaskDeleted   = "task.deleted"
	EventCommentAdded  = "comment.added"
	EventMemberJoined  = "member.joined"
	EventMemberRemoved = "member.removed"
	EventNotification  = "notification"
)
