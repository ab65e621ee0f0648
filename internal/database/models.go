package database

import "time"

// PhotoState records the last profile photo applied to the account.
// AppliedOn is the local calendar date in YYYY-MM-DD form.
type PhotoState struct {
	Weekday   string    `db:"weekday"`
	FileName  string    `db:"file_name"`
	AppliedOn string    `db:"applied_on"`
	UpdatedAt time.Time `db:"updated_at"`
}
