package domain

import "time"

// DelayedTask is a persisted "run this task at or after due_at" descriptor.
// Rows are claimed by the sweep with a conditional update on started_at, so
// two concurrent sweeps never deliver the same task twice.
//
// Args is the JSON-encoded argument list handed to the task runner. A task is
// delivered at most once; retries are the delivered task's own business.
type DelayedTask struct {
	ID        string     `json:"id"         gorm:"type:char(36);primaryKey"`
	TaskName  string     `json:"task_name"  gorm:"type:varchar(120);not null"`
	Args      string     `json:"args"       gorm:"type:text"`
	DueAt     time.Time  `json:"due_at"     gorm:"index:idx_due_started,priority:1"`
	StartedAt *time.Time `json:"started_at" gorm:"index:idx_due_started,priority:2"`
	CreatedAt time.Time  `json:"created_at"`
}

// TableName returns the database table name for DelayedTask.
func (DelayedTask) TableName() string { return "delayed_tasks" }

// Fax is one outbound fax dispatch. The record is created PENDING before the
// gateway is contacted; the gateway reports the outcome through an
// asynchronous callback correlated by Token (not by primary key, so
// sequential identifiers never leak into callback URLs).
//
// To always holds the caller's nominal destination. When a test-mode
// destination override is active, only the enqueued gateway message is
// rewritten; the persisted record keeps the original address.
type Fax struct {
	ID            string     `json:"id"     gorm:"type:char(36);primaryKey"`
	Token         string     `json:"-"      gorm:"type:char(36);not null;uniqueIndex"`
	StorageItemID string     `json:"storage_item" gorm:"type:char(36);not null"`
	To            string     `json:"to"     gorm:"type:varchar(20);not null"`
	Status        FaxStatus  `json:"status" gorm:"type:varchar(12);not null;index"`
	StatusMessage *string    `json:"status_message" gorm:"type:text"`
	StatusAt      *time.Time `json:"status_timestamp"`

	OnCompleteTask    string `json:"-" gorm:"type:varchar(120)"`
	OnCompleteTaskArg string `json:"-" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	StorageItem StorageItem `json:"-" gorm:"foreignKey:StorageItemID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// TableName returns the database table name for Fax.
func (Fax) TableName() string { return "faxes" }

// ValidateToken reports whether the callback-supplied token matches this
// dispatch record.
func (f *Fax) ValidateToken(token string) bool {
	return token != "" && token == f.Token
}
