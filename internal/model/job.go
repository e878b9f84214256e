// Package model defines the canonical job record shared by every source
// adapter, the storage engine, and the HTTP surface.
package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// Remote classifications a Job Record may carry.
const (
	RemoteYes     = "Remote"
	RemoteNo      = "On-site"
	RemoteHybrid  = "Hybrid"
	RemoteUnknown = "Unknown"
)

// CSVColumns is the stable, contractually fixed export column order.
// Tests lock this order; never derive it from struct field order or
// map iteration.
var CSVColumns = []string{
	"job_id", "title", "company", "location", "description", "url",
	"source", "remote", "salary_min", "salary_max", "salary_currency",
	"job_type", "experience_level", "date_posted", "date_scraped",
	"tags", "company_logo",
}

// Job is the canonical in-memory job record produced by adapters and
// persisted by the storage engine.
type Job struct {
	JobID            string
	Title            string
	Company          string
	Location         string
	Description      string
	URL              string
	Source           string
	Remote           string
	SalaryMin        *float64
	SalaryMax        *float64
	SalaryCurrency   string
	JobType          string
	ExperienceLevel  string
	DatePosted       string
	DateScraped      time.Time
	Tags             string
	CompanyLogo      string
}

// New constructs a Job Record, deriving JobID if absent, trimming
// description whitespace, and stamping DateScraped if unset.
func New(j Job) Job {
	j.Description = strings.TrimSpace(j.Description)
	if j.DateScraped.IsZero() {
		j.DateScraped = time.Now().UTC()
	}
	if j.Remote == "" {
		j.Remote = RemoteUnknown
	}
	if j.JobID == "" {
		j.JobID = DeriveID(j.Source, j.URL, j.Title, j.Company)
	}
	return j
}

// DeriveID computes the deterministic content hash that identifies a
// job record. If url is non-empty the hash is over source|url;
// otherwise it is over source|title|company. The same (source, url)
// pair always yields the same id, which is the dedup key save_jobs
// relies on.
//
// The Python original hashed with MD5; this module uses sha256
// truncated to 16 hex characters. Both satisfy the spec's only
// requirement: a stable content hash.
func DeriveID(source, url, title, company string) string {
	var basis string
	if url != "" {
		basis = source + "|" + url
	} else {
		basis = source + "|" + title + "|" + company
	}
	sum := sha256.Sum256([]byte(basis))
	return hex.EncodeToString(sum[:])[:16]
}

// CSVRow renders the job as a slice matching CSVColumns order.
func (j Job) CSVRow() []string {
	row := make([]string, len(CSVColumns))
	row[0] = j.JobID
	row[1] = j.Title
	row[2] = j.Company
	row[3] = j.Location
	row[4] = j.Description
	row[5] = j.URL
	row[6] = j.Source
	row[7] = j.Remote
	row[8] = formatFloatPtr(j.SalaryMin)
	row[9] = formatFloatPtr(j.SalaryMax)
	row[10] = j.SalaryCurrency
	row[11] = j.JobType
	row[12] = j.ExperienceLevel
	row[13] = j.DatePosted
	row[14] = j.DateScraped.Format("2006-01-02 15:04:05")
	row[15] = j.Tags
	row[16] = j.CompanyLogo
	return row
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
