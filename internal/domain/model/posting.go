//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

// StandardJobFamily groups related standard jobs in the job taxonomy.
type StandardJobFamily struct {
	ID   string `json:"id"   db:"id"`
	Name string `json:"name" db:"name"`
}

// StandardJob is a normalized job-taxonomy entry postings are grouped under.
type StandardJob struct {
	ID                  string `json:"id"                     db:"id"`
	Name                string `json:"name"                   db:"name"`
	StandardJobFamilyID string `json:"standard_job_family_id" db:"standard_job_family_id"`
}

// JobPosting is one observed hiring event. Postings are read-only input for
// aggregation; the service never mutates them.
//
// CountryCode is nil when the posting does not name a country; such rows only
// contribute to global aggregates. DaysToHire is nil when the posting has not
// been filled yet; such rows never contribute to any aggregate.
type JobPosting struct {
	ID            string  `json:"id"                     db:"id"`
	Title         string  `json:"title"                  db:"title"`
	StandardJobID string  `json:"standard_job_id"        db:"standard_job_id"`
	CountryCode   *string `json:"country_code,omitempty" db:"country_code"`
	DaysToHire    *int    `json:"days_to_hire,omitempty" db:"days_to_hire"`
}

// PostingCombination is one distinct (standard job, country) pair observed in
// the posting table. CountryCode is nil for postings without a country.
type PostingCombination struct {
	StandardJobID string  `db:"standard_job_id"`
	CountryCode   *string `db:"country_code"`
}

// CombinationFilter narrows a distinct-combination query. Empty fields do not
// filter.
type CombinationFilter struct {
	StandardJobID string
	CountryCode   string
}
