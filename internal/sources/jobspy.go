package sources

import (
	"context"

	"github.com/DrJonoG/job-search/internal/model"
)

// JobSpy wraps python-jobspy, a scraping library with no Go
// equivalent anywhere in this ecosystem. The original degrades
// gracefully when python-jobspy isn't installed; this port preserves
// that behaviour by reporting permanently unavailable rather than
// fabricating a scraper for Indeed/Glassdoor/ZipRecruiter/Google/Bayt/
// Naukri/BDJobs. LinkedInDirect covers LinkedIn itself with a real
// scrape of the guest API.
type JobSpy struct{}

func NewJobSpy() *JobSpy { return &JobSpy{} }

func (j *JobSpy) Name() string      { return "JobSpy" }
func (j *JobSpy) IsAvailable() bool { return false }

func (j *JobSpy) FetchJobs(ctx context.Context, c Criteria) ([]model.Job, error) {
	return nil, nil
}

// LinkedIn mirrors the original's JobSpy-backed LinkedIn-only source.
// Same rationale as JobSpy: permanently unavailable here, superseded
// by LinkedInDirect.
type LinkedIn struct{}

func NewLinkedIn() *LinkedIn { return &LinkedIn{} }

func (l *LinkedIn) Name() string      { return "LinkedIn" }
func (l *LinkedIn) IsAvailable() bool { return false }

func (l *LinkedIn) FetchJobs(ctx context.Context, c Criteria) ([]model.Job, error) {
	return nil, nil
}
