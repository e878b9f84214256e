package sources

import (
	"time"

	"github.com/DrJonoG/job-search/internal/config"
)

// New constructs the full set of adapters this installation can run,
// wiring operator-configured credentials and board lists from cfg.
// Adapters that need no key (RSS feeds, ATS boards, public APIs) are
// always included; adapters gated on a credential report themselves
// unavailable at search time when unset, so the orchestrator can skip
// them without special-casing configuration here.
func New(cfg *config.Config) []Adapter {
	t := Tuning{
		RequestTimeout: time.Duration(cfg.Adapters.RequestTimeoutSeconds) * time.Second,
		RateLimitDelay: time.Duration(cfg.Adapters.RateLimitDelaySeconds * float64(time.Second)),
		MaxResultsCap:  cfg.Adapters.MaxResultsPerSource,
	}
	keys := cfg.SourceKeys

	return []Adapter{
		NewArbeitnow(t),
		NewRemotive(t),
		NewJobicy(t),
		NewTheMuse(t),
		NewHNHiring(t),
		NewRemoteOK(t),
		NewLobsters(t),
		NewWeWorkRemotely(t),
		NewDevITjobs(t),
		NewTotaljobs(t),
		NewJobsCollider(t),
		NewGovUK(t),

		NewLever(t, keys.LeverBoards),
		NewAshby(t, keys.AshbyBoards),
		NewWorkable(t, keys.WorkableBoards),
		NewGreenhouse(t, keys.GreenhouseBoards),

		NewAdzuna(t, keys.AdzunaAppID, keys.AdzunaAppKey, cfg.Adapters.Countries),
		NewReed(t, keys.ReedAPIKey),
		NewUSAJobs(t, keys.USAJobsAPIKey, keys.USAJobsEmail),
		NewFindwork(t, keys.FindworkAPIKey),
		NewJooble(t, keys.JoobleAPIKey),
		NewSerpAPI(t, keys.SerpAPIKey),
		NewCareerJet(t, keys.CareerjetAffID),
		NewJobData(t, keys.JobDataAPIKey),

		NewLinkedInDirect(t, nil, keys.LinkedInBrowserMode, keys.LinkedInProfileDir),
		NewJobSpy(),
		NewLinkedIn(),
	}
}
