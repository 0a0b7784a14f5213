package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyProgramID  = "program_id"
	KeyTaskID     = "task_id"
	KeyPropertyID = "property_id"
	KeyWingID     = "wing_id"
	KeyCategoryID = "category_id"
	KeyItemID     = "checklist_item_id"
	KeyRunDate    = "run_date"
	KeyDueCount   = "due_count"
	KeyDurationMS = "duration_ms"
	KeySubject    = "subject"
	KeyMethod     = "method"
	KeyPath       = "path"
	KeyRemoteAddr = "remote_addr"
	KeyStatusCode = "status_code"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func ProgramID(id string) slog.Attr    { return slog.String(KeyProgramID, id) }
func TaskID(id string) slog.Attr       { return slog.String(KeyTaskID, id) }
func PropertyID(id string) slog.Attr   { return slog.String(KeyPropertyID, id) }
func WingID(id string) slog.Attr       { return slog.String(KeyWingID, id) }
func CategoryID(id string) slog.Attr   { return slog.String(KeyCategoryID, id) }
func ItemID(id string) slog.Attr       { return slog.String(KeyItemID, id) }
func RunDate(d string) slog.Attr       { return slog.String(KeyRunDate, d) }
func DueCount(n int) slog.Attr         { return slog.Int(KeyDueCount, n) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Subject(s string) slog.Attr       { return slog.String(KeySubject, s) }
func Method(m string) slog.Attr        { return slog.String(KeyMethod, m) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func RemoteAddr(addr string) slog.Attr { return slog.String(KeyRemoteAddr, addr) }
func StatusCode(code int) slog.Attr    { return slog.Int(KeyStatusCode, code) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
