package inventory

// UserRef is a write-time snapshot of the acting identity. It is denormalized
// onto items and activity log entries and never updated retroactively.
type UserRef struct {
	UserID      string `json:"user_id" gorm:"column:user_id;type:varchar(64)"`
	DisplayName string `json:"display_name,omitempty" gorm:"column:display_name;type:varchar(255)"`
	Anonymous   bool   `json:"anonymous" gorm:"column:anonymous"`
}

// Label returns a human-readable name for the actor
func (u UserRef) Label() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if u.Anonymous {
		return "Anonymous"
	}
	return u.UserID
}
