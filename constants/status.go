package constants

// JobStatus is the canonical status for rows in jobs.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusActive    JobStatus = "ACTIVE"
	JobStatusCompleted JobStatus = "COMPLETED"
	JobStatusOnHold    JobStatus = "ON_HOLD"
)

// TimesheetStatus is the canonical status for rows in timesheets.
type TimesheetStatus string

const (
	TimesheetWorking   TimesheetStatus = "WORKING"   // clocked in, no clock-out yet
	TimesheetCompleted TimesheetStatus = "COMPLETED" // clocked out
	TimesheetFlagged   TimesheetStatus = "FLAGGED"   // held for review
)

// WorkerRole distinguishes owning accounts from their crew.
type WorkerRole string

const (
	RoleOwner  WorkerRole = "OWNER"
	RoleWorker WorkerRole = "WORKER"
)

// AlertType classifies advisory events emitted by the alert policy.
type AlertType string

const (
	AlertBudget    AlertType = "BUDGET"
	AlertPayment   AlertType = "PAYMENT"
	AlertTimesheet AlertType = "TIMESHEET"
	AlertLabor     AlertType = "LABOR"
	AlertReceipt   AlertType = "RECEIPT"
	AlertDocument  AlertType = "DOCUMENT"
)

// AlertSeverity orders alerts for display; no behavior hangs off it here.
type AlertSeverity string

const (
	SeverityInfo     AlertSeverity = "INFO"
	SeverityWarning  AlertSeverity = "WARNING"
	SeverityCritical AlertSeverity = "CRITICAL"
)
