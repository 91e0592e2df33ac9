package tasks

import (
	"fmt"

	"github.com/desertthunder/handoff/internal/models"
)

// ProgressUpdate represents a progress event during a migration attempt.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ReadSource Phase = iota
	VerifyAccount
	CopyAccount
	CopySites
	RecordJob
)

func (p Phase) String() string {
	switch p {
	case ReadSource:
		return "read_source"
	case VerifyAccount:
		return "verify_account"
	case CopyAccount:
		return "copy_account"
	case CopySites:
		return "copy_sites"
	case RecordJob:
		return "record_job"
	default:
		return ""
	}
}

func readSourceUpdate(account *models.LegacyAccount, sites int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReadSource,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %s with %d site(s)", account.Username, sites),
		Data:    account,
	}
}

func verifyAccountUpdate(username string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   VerifyAccount,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Verified %s with the new service", username),
	}
}

func copyAccountUpdate(account *models.Account) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CopyAccount,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Account copied: %s", account.Username()),
		Data:    account,
	}
}

func siteCopiedUpdate(step, total int, site models.LegacySite) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CopySites,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, siteLabel(site)),
	}
}

func siteFailedUpdate(step, total int, site models.LegacySite, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CopySites,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, siteLabel(site), err),
	}
}

func jobRecordedUpdate(job *models.MigrationJob) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RecordJob,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Migration #%d %s (%d/%d sites)", job.Sequence(), job.Status(), job.SitesMigrated(), job.SitesTotal()),
		Data:    job,
	}
}

func siteLabel(site models.LegacySite) string {
	switch {
	case site.Name != "":
		return site.Name
	case site.HomeURL != "":
		return site.HomeURL
	default:
		return fmt.Sprintf("site %d", site.RemoteID)
	}
}
