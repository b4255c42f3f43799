package entity

// Record is one row of the `status_data` table: a user's status for a
// single calendar day. DataKey is the opaque "{year}-{month0to11}-{day}"
// string written by clients.
type Record struct {
	ID          int64  `db:"id"`
	UserID      string `db:"user_id"`
	DataKey     string `db:"data_key"`
	StatusValue string `db:"status_value"`
	UpdatedBy   string `db:"updated_by"`
}

// Recommended status labels. Values outside this set are stored as given.
const (
	LabelAvailable   = "Available"
	LabelBusy        = "Busy"
	LabelOutOfOffice = "Out of Office"
	LabelMeeting     = "Meeting"
	LabelTravel      = "Travel"
	LabelVacation    = "Vacation"
)

// Labels returns the recommended label set in display order.
func Labels() []string {
	return []string{LabelAvailable, LabelBusy, LabelOutOfOffice, LabelMeeting, LabelTravel, LabelVacation}
}
