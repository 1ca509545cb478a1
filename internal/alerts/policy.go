// Package alerts turns financial snapshots and timesheets into advisory
// events. The policy is state-machine-free: every rule is evaluated
// independently on each pass, and deduplicating repeat firings is the storage
// layer's problem, not ours.
package alerts

import (
	"fmt"
	"time"

	"github.com/joseph-ayodele/jobsite-tracker/constants"
	"github.com/joseph-ayodele/jobsite-tracker/internal/common"
	"github.com/joseph-ayodele/jobsite-tracker/internal/entity"
	"github.com/joseph-ayodele/jobsite-tracker/internal/finance"
)

// Policy evaluates jobs against configured thresholds. Thresholds are
// injected so deployments can tune them; Now is injectable for tests.
type Policy struct {
	Thresholds common.AlertThresholds
	Now        func() time.Time
}

func NewPolicy(thresholds common.AlertThresholds) *Policy {
	return &Policy{Thresholds: thresholds, Now: time.Now}
}

// Evaluate runs every rule for one job and returns the alerts that fired.
// Emitted alerts carry no ID; the store assigns identity on insert.
// timesheets must already be filtered to the job.
func (p *Policy) Evaluate(job *entity.Job, snap finance.Snapshot, timesheets []*entity.Timesheet) []entity.Alert {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	t := p.Thresholds

	var out []entity.Alert
	emit := func(typ constants.AlertType, sev constants.AlertSeverity, title, msg string) {
		out = append(out, entity.Alert{
			OwnerID:   job.OwnerID,
			JobID:     &job.ID,
			Type:      typ,
			Severity:  sev,
			Title:     title,
			Message:   msg,
			CreatedAt: now(),
		})
	}

	// Labor budget: critical beats warning, one of the two at most.
	switch {
	case snap.LaborRatio > t.LaborRatioCritical:
		emit(constants.AlertBudget, constants.SeverityCritical,
			"Labor cost exceeds project value",
			fmt.Sprintf("%s: labor cost is %.0f%% of project value", job.JobName, snap.LaborRatio*100))
	case snap.LaborRatio > t.LaborRatioWarning:
		emit(constants.AlertBudget, constants.SeverityWarning,
			"Labor cost approaching project value",
			fmt.Sprintf("%s: labor cost is %.0f%% of project value", job.JobName, snap.LaborRatio*100))
	}

	// Low margin fires independently of the labor-ratio rule.
	if snap.ProfitMargin < t.LowProfitMargin && snap.Profit > 0 {
		emit(constants.AlertBudget, constants.SeverityWarning,
			"Low profit margin",
			fmt.Sprintf("%s: projected margin is %.1f%%", job.JobName, snap.ProfitMargin*100))
	}

	if job.Status == constants.JobStatusCompleted && snap.RemainingBalance > 0 {
		emit(constants.AlertPayment, constants.SeverityWarning,
			"Outstanding balance on completed job",
			fmt.Sprintf("%s: %.2f still unpaid", job.JobName, snap.RemainingBalance))
	}

	if job.Status == constants.JobStatusActive && job.ProjectValue != 0 &&
		job.AmountPaid/job.ProjectValue < t.UnderpaidRatio {
		emit(constants.AlertPayment, constants.SeverityInfo,
			"Less than half paid",
			fmt.Sprintf("%s: %.2f of %.2f received", job.JobName, job.AmountPaid, job.ProjectValue))
	}

	for _, ts := range timesheets {
		if hours, ok := ts.BillableHours(); ok && hours > t.LongShiftHours {
			emit(constants.AlertTimesheet, constants.SeverityWarning,
				"Unusually long shift",
				fmt.Sprintf("timesheet %s records %.1f hours", ts.ID, hours))
		}
		if ts.Status == constants.TimesheetWorking &&
			now().Sub(ts.ClockIn).Hours() > t.MissedClockOutHours {
			emit(constants.AlertTimesheet, constants.SeverityWarning,
				"Possible missed clock-out",
				fmt.Sprintf("timesheet %s has been open for %.1f hours", ts.ID, now().Sub(ts.ClockIn).Hours()))
		}
	}

	return out
}
