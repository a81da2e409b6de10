// Package domain defines the persistence models for actions, events, tool
// records, region links, delayed tasks, and fax dispatches. These types are
// mapped with GORM and form the core data layer of the Turnout backend.
package domain

// EventType identifies one kind of tracked occurrence on an Action.
//
// The string values are the wire-level codes stored in the events table and
// accepted by the tracking API. Several of them are historical short codes
// (e.g. "FinishPrint" for the self-print path); the stored values must not
// change, even where the Go names have been modernized.
type EventType string

const (
	EventStart                   EventType = "Start"
	EventFinishSelfPrint         EventType = "FinishPrint"
	EventFinishExternal          EventType = "FinishExternal"
	EventFinishExternalConfirmed EventType = "FinishExternalConfirmed"
	EventFinishLEO               EventType = "FinishLEO"
	EventFinishLEOFaxPending     EventType = "FinishLEOFaxPending"
	EventFinishLEOFaxSent        EventType = "FinishLEOFaxSent"
	EventFinishLEOFaxFailed      EventType = "FinishLEOFaxFailed"
	EventFinish                  EventType = "Finish"
	EventDownload                EventType = "Download"
	EventDonate                  EventType = "Donate"
	EventRestart                 EventType = "Restart"
	EventFinishLobConfirm        EventType = "FinishLobConfirm"
	EventLobMailed               EventType = "LobMailed"
	EventLobProcessedForDelivery EventType = "LobProcessedForDelivery"
	EventLobRerouted             EventType = "LobRerouted"
	EventLobReturned             EventType = "LobReturned"
)

// eventTypes is the closed enumeration accepted by the tracking boundary.
var eventTypes = map[EventType]struct{}{
	EventStart:                   {},
	EventFinishSelfPrint:         {},
	EventFinishExternal:          {},
	EventFinishExternalConfirmed: {},
	EventFinishLEO:               {},
	EventFinishLEOFaxPending:     {},
	EventFinishLEOFaxSent:        {},
	EventFinishLEOFaxFailed:      {},
	EventFinish:                  {},
	EventDownload:                {},
	EventDonate:                  {},
	EventRestart:                 {},
	EventFinishLobConfirm:        {},
	EventLobMailed:               {},
	EventLobProcessedForDelivery: {},
	EventLobRerouted:             {},
	EventLobReturned:             {},
}

// Valid reports whether t is a member of the closed event-type enumeration.
func (t EventType) Valid() bool {
	_, ok := eventTypes[t]
	return ok
}

// FaxStatus is the dispatch state of an outbound fax.
//
// A fax starts PENDING and reaches SENT or PERMANENT_FAILURE via the gateway
// callback. TEMPORARY_FAILURE is a non-terminal gateway report: the gateway
// will retry and deliver another callback later.
type FaxStatus string

const (
	FaxPending          FaxStatus = "pending"
	FaxSent             FaxStatus = "sent"
	FaxTemporaryFailure FaxStatus = "tmp_fail"
	FaxPermanentFailure FaxStatus = "perm_fail"
)

// Terminal reports whether s is a final dispatch state.
func (s FaxStatus) Terminal() bool {
	return s == FaxSent || s == FaxPermanentFailure
}

// ToolName identifies which user-facing tool created an Action.
type ToolName string

const (
	ToolVerify   ToolName = "verify"
	ToolRegister ToolName = "register"
	ToolAbsentee ToolName = "absentee"
	ToolReminder ToolName = "reminder"
)

// ToolRecord is implemented by the concrete per-tool records that own an
// Action (BallotRequest, Registration, ReminderRequest, Lookup). Actions
// attach to at most one tool record, and the association never changes.
type ToolRecord interface {
	Tool() ToolName
	ActionKey() string
}

// HasRegion is implemented by tool records that carry a geographic region
// reference (used by ballot-delivery link resolution).
type HasRegion interface {
	RegionKey() *int64
}

// StateVBMLinkField is the StateInformation field consulted as the statewide
// fallback when no per-region ballot-delivery override exists.
const StateVBMLinkField = "external_tool_vbm_application"
