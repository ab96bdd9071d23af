package models

// Event is the shallow event record returned to clients. Optional references
// are omitted when unset so responses never carry null placeholder fields.
type Event struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Start      int64    `json:"start"`
	End        int64    `json:"end"`
	Venues     []string `json:"venues"`
	Attendance int64    `json:"attendance"`
	Ents       string   `json:"ents,omitempty"`
	State      string   `json:"state,omitempty"`
	Author     string   `json:"author"`
	Reserved   *bool    `json:"reserved,omitempty"`
}

// Signup links a user to an event under a role. The (role, user, event)
// triple is unique.
type Signup struct {
	ID    string `json:"id"`
	User  string `json:"user"`
	Event string `json:"event"`
	Role  string `json:"role"`
	Date  int64  `json:"date"`
}

// EntState is a named entertainment state with display metadata.
type EntState struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// Comment is attached to an arbitrary asset (usually an event).
type Comment struct {
	ID                string `json:"id"`
	AssetType         string `json:"assetType"`
	AssetID           string `json:"assetID"`
	Poster            string `json:"poster"`
	Posted            int64  `json:"posted"`
	Topic             string `json:"topic,omitempty"`
	Body              string `json:"body"`
	RequiresAttention bool   `json:"requiresAttention"`
	AttendedDate      *int64 `json:"attendedDate,omitempty"`
}

// Changelog actions recorded per mutation.
const (
	ChangeInserted = "inserted"
	ChangeUpdated  = "updated"
	ChangeDeleted  = "delete"
)

// ChangelogEntry is one append-only audit row. Changes carries the update
// document when the action was an update.
type ChangelogEntry struct {
	ID        string `json:"id"`
	Action    string `json:"action"`
	Timestamp int64  `json:"timestamp"`
	Changes   any    `json:"changes,omitempty"`
}
