package models

// Typed request payloads, one per intention per resource. Each embeds the
// Envelope so the correlation fields survive the round trip. Pointer fields
// distinguish "not supplied" from zero values when compiling store filters.

// CreateEventRequest carries the full creation payload for an event.
type CreateEventRequest struct {
	Envelope
	Name       string   `json:"name"`
	Start      int64    `json:"start"`
	End        int64    `json:"end"`
	VenueIDs   []string `json:"venueIDs"`
	Attendance int64    `json:"attendance"`
	EntsID     *string  `json:"entsID,omitempty"`
	StateID    *string  `json:"stateID,omitempty"`
	Reserved   *bool    `json:"reserved,omitempty"`
}

// ReadEventRequest is the declarative event query. All predicates combine
// with AND; the three venue selectors are mutually exclusive by contract.
type ReadEventRequest struct {
	Envelope
	ID                   *IDList  `json:"id,omitempty"`
	Name                 *string  `json:"name,omitempty"`
	Start                *int64   `json:"start,omitempty"`
	End                  *int64   `json:"end,omitempty"`
	Attendance           *int64   `json:"attendance,omitempty"`
	StartRangeBegin      *int64   `json:"startRangeBegin,omitempty"`
	StartRangeEnd        *int64   `json:"startRangeEnd,omitempty"`
	EndRangeBegin        *int64   `json:"endRangeBegin,omitempty"`
	EndRangeEnd          *int64   `json:"endRangeEnd,omitempty"`
	AttendanceRangeBegin *int64   `json:"attendanceRangeBegin,omitempty"`
	AttendanceRangeEnd   *int64   `json:"attendanceRangeEnd,omitempty"`
	VenueIDs             []string `json:"venueIDs,omitempty"`
	AllVenues            []string `json:"allVenues,omitempty"`
	AnyVenues            []string `json:"anyVenues,omitempty"`
	EntsID               *string  `json:"entsID,omitempty"`
	StateID              *string  `json:"stateID,omitempty"`
	StateIn              []string `json:"stateIn,omitempty"`
	Reserved             *bool    `json:"reserved,omitempty"`
	LocalOnly            bool     `json:"localOnly,omitempty"`
}

// UpdateEventRequest applies a partial update to a single event. EntsID and
// StateID are tri-state so a reference can be explicitly cleared.
type UpdateEventRequest struct {
	Envelope
	ID           string           `json:"id"`
	Name         *string          `json:"name,omitempty"`
	Start        *int64           `json:"start,omitempty"`
	End          *int64           `json:"end,omitempty"`
	Attendance   *int64           `json:"attendance,omitempty"`
	EntsID       Optional[string] `json:"entsID,omitzero"`
	StateID      Optional[string] `json:"stateID,omitzero"`
	Reserved     *bool            `json:"reserved,omitempty"`
	AddVenues    []string         `json:"addVenues,omitempty"`
	RemoveVenues []string         `json:"removeVenues,omitempty"`
	LocalOnly    bool             `json:"localOnly,omitempty"`
}

// DeleteEventRequest removes a single event by id. Hard delete, no tombstone.
type DeleteEventRequest struct {
	Envelope
	ID        string `json:"id"`
	LocalOnly bool   `json:"localOnly,omitempty"`
}

// CreateSignupRequest registers a user for an event under a role. SignupUser
// defaults to the requester when absent.
type CreateSignupRequest struct {
	Envelope
	SignupUser *string `json:"signupUser,omitempty"`
	EventID    string  `json:"eventID"`
	Role       string  `json:"role"`
}

// ReadSignupRequest is the declarative signup query.
type ReadSignupRequest struct {
	Envelope
	ID             *IDList `json:"id,omitempty"`
	SignupUser     *string `json:"signupUser,omitempty"`
	EventID        *string `json:"eventID,omitempty"`
	Role           *string `json:"role,omitempty"`
	Date           *int64  `json:"date,omitempty"`
	DateRangeBegin *int64  `json:"dateRangeBegin,omitempty"`
	DateRangeEnd   *int64  `json:"dateRangeEnd,omitempty"`
	LocalOnly      bool    `json:"localOnly,omitempty"`
}

// UpdateSignupRequest changes the role of a single signup.
type UpdateSignupRequest struct {
	Envelope
	ID        string  `json:"id"`
	Role      *string `json:"role,omitempty"`
	LocalOnly bool    `json:"localOnly,omitempty"`
}

// DeleteSignupRequest removes a single signup by id.
type DeleteSignupRequest struct {
	Envelope
	ID        string `json:"id"`
	LocalOnly bool   `json:"localOnly,omitempty"`
}

// CreateEntStateRequest adds a new ent state definition.
type CreateEntStateRequest struct {
	Envelope
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// ReadEntStateRequest is the declarative ent state query.
type ReadEntStateRequest struct {
	Envelope
	ID    *IDList `json:"id,omitempty"`
	Name  *string `json:"name,omitempty"`
	Icon  *string `json:"icon,omitempty"`
	Color *string `json:"color,omitempty"`
}

// UpdateEntStateRequest applies a partial update to a single ent state.
type UpdateEntStateRequest struct {
	Envelope
	ID    string  `json:"id"`
	Name  *string `json:"name,omitempty"`
	Icon  *string `json:"icon,omitempty"`
	Color *string `json:"color,omitempty"`
}

// DeleteEntStateRequest removes a single ent state by id.
type DeleteEntStateRequest struct {
	Envelope
	ID string `json:"id"`
}

// CreateCommentRequest attaches a comment to an asset.
type CreateCommentRequest struct {
	Envelope
	AssetType         string  `json:"assetType"`
	AssetID           string  `json:"assetID"`
	Topic             *string `json:"topic,omitempty"`
	Body              string  `json:"body"`
	RequiresAttention *bool   `json:"requiresAttention,omitempty"`
}

// ReadCommentRequest is the declarative comment query.
type ReadCommentRequest struct {
	Envelope
	ID                *IDList `json:"id,omitempty"`
	AssetType         *string `json:"assetType,omitempty"`
	AssetID           *string `json:"assetID,omitempty"`
	Poster            *string `json:"posterID,omitempty"`
	Body              *string `json:"body,omitempty"`
	Posted            *int64  `json:"posted,omitempty"`
	PostedRangeBegin  *int64  `json:"postedRangeBegin,omitempty"`
	PostedRangeEnd    *int64  `json:"postedRangeEnd,omitempty"`
	RequiresAttention *bool   `json:"requiresAttention,omitempty"`
	LocalOnly         bool    `json:"localOnly,omitempty"`
}

// UpdateCommentRequest applies a partial update to a single comment.
type UpdateCommentRequest struct {
	Envelope
	ID                string  `json:"id"`
	Topic             *string `json:"topic,omitempty"`
	Body              *string `json:"body,omitempty"`
	RequiresAttention *bool   `json:"requiresAttention,omitempty"`
	AttendedDate      *int64  `json:"attendedDate,omitempty"`
	LocalOnly         bool    `json:"localOnly,omitempty"`
}

// DeleteCommentRequest removes a single comment by id.
type DeleteCommentRequest struct {
	Envelope
	ID        string `json:"id"`
	LocalOnly bool   `json:"localOnly,omitempty"`
}

// DiscoverRequest asks how many local records reference a foreign asset.
type DiscoverRequest struct {
	Envelope
	AssetType      string `json:"assetType"`
	AssetID        string `json:"assetID"`
	LocalAssetOnly bool   `json:"localAssetOnly,omitempty"`
}
