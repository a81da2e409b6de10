package domain

import (
	"time"

	"gorm.io/gorm"
)

// Action is the generic tracking handle shared by every tool workflow. One
// Action is created when a tool flow starts; it owns an append-only stream of
// Events and at most one concrete tool record. Actions are never deleted
// (events reference them with a protected foreign key).
type Action struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Action.
func (Action) TableName() string { return "actions" }

// Event is one immutable, timestamped occurrence attached to an Action.
// Events are only ever inserted; there is no update or delete path.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - ActionID: owning action (indexed; delete of the action is restricted).
//   - EventType: wire-level code from the closed enumeration (see enums.go).
//   - CreatedAt: insertion timestamp; display order is created_at descending,
//     but status derivation always considers the full event set.
type Event struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	ActionID  string    `json:"action"     gorm:"type:char(36);not null;index:idx_action_events,priority:1"`
	EventType EventType `json:"event_type" gorm:"type:varchar(40);not null;index"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_action_events,priority:2"`

	Action Action `json:"-" gorm:"foreignKey:ActionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// TableName returns the database table name for Event.
func (Event) TableName() string { return "events" }

// ActionDetails is the derived status projection for one Action: a pure
// reduction of the Action's full event set into the current status flags.
// It is never stored; services.Reduce recomputes it from the events on every
// read, so the same event set always yields the same details.
//
// DownloadCount is nil unless the action went down the self-print path:
// "never printed" is distinct from "printed, zero downloads so far".
type ActionDetails struct {
	ActionID       string    `json:"action_id"`
	Finished       bool      `json:"finished"`
	SelfPrint      bool      `json:"self_print"`
	FinishExternal bool      `json:"finish_external"`
	FinishLEO      bool      `json:"finish_leo"`
	FinishLob      bool      `json:"finish_lob"`
	DownloadCount  *int64    `json:"download_count"`
	LatestEvent    time.Time `json:"latest_event"`
}

// Region is one local election jurisdiction (a county or equivalent),
// identified by the external id assigned by the upstream officials dataset.
type Region struct {
	ExternalID int64  `json:"external_id" gorm:"primaryKey;autoIncrement:false"`
	County     string `json:"county"      gorm:"type:varchar(120);not null"`
	State      string `json:"state"       gorm:"type:char(2);not null;index"`
}

// TableName returns the database table name for Region.
func (Region) TableName() string { return "regions" }

// StateInformation is a per-state key/value field maintained by the elections
// data pipeline. The resolver consults the "external_tool_vbm_application"
// field as the statewide ballot-delivery fallback link.
type StateInformation struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	State     string    `json:"state"      gorm:"type:char(2);not null;uniqueIndex:ux_state_field,priority:1"`
	FieldType string    `json:"field_type" gorm:"type:varchar(80);not null;uniqueIndex:ux_state_field,priority:2"`
	Text      string    `json:"text"       gorm:"type:text"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for StateInformation.
func (StateInformation) TableName() string { return "state_information" }

// RegionOVBMLink is a per-region override URL for an online vote-by-mail
// application. Rows are replaced wholesale by each successful scrape refresh;
// a region absent from the newest source loses its link.
type RegionOVBMLink struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	RegionID  int64     `json:"region"     gorm:"not null;uniqueIndex"`
	URL       string    `json:"url"        gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`

	Region Region `json:"-" gorm:"foreignKey:RegionID;references:ExternalID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for RegionOVBMLink.
func (RegionOVBMLink) TableName() string { return "region_ovbm_links" }

// StorageItem is a generated document (a filled PDF) available at a stable
// URL, referenced by fax dispatches and tool result links.
type StorageItem struct {
	ID        string    `json:"id"        gorm:"type:char(36);primaryKey"`
	FileURL   string    `json:"file_url"  gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for StorageItem.
func (StorageItem) TableName() string { return "storage_items" }

// BallotRequest is the absentee tool record. Region and state are tracked
// separately: a region correction can point at a jurisdiction outside the
// stated state, and link resolution honors the region first.
type BallotRequest struct {
	ID           string         `json:"id"          gorm:"type:char(36);primaryKey"`
	ActionID     string         `json:"action"      gorm:"type:char(36);not null;uniqueIndex"`
	RegionID     *int64         `json:"region"`
	State        string         `json:"state"       gorm:"type:char(2);not null;index"`
	Email        string         `json:"email"       gorm:"type:varchar(254)"`
	Phone        string         `json:"phone"       gorm:"type:varchar(20)"`
	FirstName    string         `json:"first_name"  gorm:"type:varchar(120)"`
	LastName     string         `json:"last_name"   gorm:"type:varchar(120)"`
	ResultItemID *string        `json:"result_item" gorm:"type:char(36)"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-"           gorm:"index"`

	Action Action `json:"-" gorm:"foreignKey:ActionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// TableName returns the database table name for BallotRequest.
func (BallotRequest) TableName() string { return "ballot_requests" }

// Tool implements ToolRecord.
func (BallotRequest) Tool() ToolName { return ToolAbsentee }

// ActionKey implements ToolRecord.
func (b BallotRequest) ActionKey() string { return b.ActionID }

// RegionKey implements HasRegion.
func (b BallotRequest) RegionKey() *int64 { return b.RegionID }

// Registration is the voter-registration tool record.
type Registration struct {
	ID        string         `json:"id"     gorm:"type:char(36);primaryKey"`
	ActionID  string         `json:"action" gorm:"type:char(36);not null;uniqueIndex"`
	State     string         `json:"state"  gorm:"type:char(2);not null;index"`
	Email     string         `json:"email"  gorm:"type:varchar(254)"`
	Phone     string         `json:"phone"  gorm:"type:varchar(20)"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"      gorm:"index"`

	Action Action `json:"-" gorm:"foreignKey:ActionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// TableName returns the database table name for Registration.
func (Registration) TableName() string { return "registrations" }

// Tool implements ToolRecord.
func (Registration) Tool() ToolName { return ToolRegister }

// ActionKey implements ToolRecord.
func (r Registration) ActionKey() string { return r.ActionID }

// ReminderRequest is the election-reminder signup tool record.
type ReminderRequest struct {
	ID        string         `json:"id"     gorm:"type:char(36);primaryKey"`
	ActionID  string         `json:"action" gorm:"type:char(36);not null;uniqueIndex"`
	State     string         `json:"state"  gorm:"type:char(2);not null;index"`
	Email     string         `json:"email"  gorm:"type:varchar(254)"`
	Phone     string         `json:"phone"  gorm:"type:varchar(20)"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"      gorm:"index"`

	Action Action `json:"-" gorm:"foreignKey:ActionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// TableName returns the database table name for ReminderRequest.
func (ReminderRequest) TableName() string { return "reminder_requests" }

// Tool implements ToolRecord.
func (ReminderRequest) Tool() ToolName { return ToolReminder }

// ActionKey implements ToolRecord.
func (r ReminderRequest) ActionKey() string { return r.ActionID }

// Lookup is the voter-verification tool record.
type Lookup struct {
	ID        string         `json:"id"     gorm:"type:char(36);primaryKey"`
	ActionID  string         `json:"action" gorm:"type:char(36);not null;uniqueIndex"`
	State     string         `json:"state"  gorm:"type:char(2);not null;index"`
	Email     string         `json:"email"  gorm:"type:varchar(254)"`
	Phone     string         `json:"phone"  gorm:"type:varchar(20)"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"      gorm:"index"`

	Action Action `json:"-" gorm:"foreignKey:ActionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// TableName returns the database table name for Lookup.
func (Lookup) TableName() string { return "lookups" }

// Tool implements ToolRecord.
func (Lookup) Tool() ToolName { return ToolVerify }

// ActionKey implements ToolRecord.
func (l Lookup) ActionKey() string { return l.ActionID }
