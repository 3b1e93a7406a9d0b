// Package devseed loads development fixtures: a small catalog of job
// families, standard jobs, and postings whose day values cover the save,
// skip, and global aggregation paths. Seeding is idempotent; fixture IDs
// are derived from stable names, so repeated runs land on the same rows.
package devseed

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Run executes the full development seeding workflow against the provided DB.
func Run(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	failures := 0
	failures += seedJobFamilies(ctx, db, logger)
	failures += seedStandardJobs(ctx, db, logger)
	failures += seedJobPostings(ctx, db, logger)
	if failures > 0 {
		return fmt.Errorf("%d seed errors; check logs", failures)
	}
	return nil
}

// seedID derives a stable UUID from a fixture name so reseeding never
// duplicates rows.
func seedID(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("hirestats:"+name)).String()
}

type familySeedSpec struct {
	slug string
	name string
}

func (s familySeedSpec) id() string { return seedID("family:" + s.slug) }

func defaultJobFamilies() []familySeedSpec {
	return []familySeedSpec{
		{slug: "engineering", name: "Engineering"},
		{slug: "data", name: "Data & Analytics"},
	}
}

func seedJobFamilies(ctx context.Context, db *sql.DB, logger *slog.Logger) int {
	failures := 0
	for _, spec := range defaultJobFamilies() {
		created, err := upsertJobFamily(ctx, db, spec)
		if err != nil {
			if logger != nil {
				logger.ErrorContext(ctx, "failed to seed job family", "name", spec.name, "error", err)
			}
			failures++
			continue
		}
		if logger != nil {
			msg := "job family already exists"
			if created {
				msg = "created job family"
			}
			logger.InfoContext(ctx, msg, "id", spec.id(), "name", spec.name)
		}
	}
	return failures
}

func upsertJobFamily(ctx context.Context, db *sql.DB, spec familySeedSpec) (bool, error) {
	const insertQ = `
		INSERT INTO standard_job_family (id, name)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
	`
	res, err := db.ExecContext(ctx, insertQ, spec.id(), spec.name)
	if err != nil {
		return false, err
	}
	if n, affectedErr := res.RowsAffected(); affectedErr == nil && n > 0 {
		return true, nil
	}

	const updateQ = `UPDATE standard_job_family SET name = $2 WHERE id = $1`
	_, err = db.ExecContext(ctx, updateQ, spec.id(), spec.name)
	return false, err
}

type jobSeedSpec struct {
	slug       string
	name       string
	familySlug string
}

func (s jobSeedSpec) id() string { return seedID("job:" + s.slug) }

func defaultStandardJobs() []jobSeedSpec {
	return []jobSeedSpec{
		{slug: "swe", name: "Software Engineer", familySlug: "engineering"},
		{slug: "qa", name: "QA Engineer", familySlug: "engineering"},
		{slug: "ds", name: "Data Scientist", familySlug: "data"},
	}
}

func seedStandardJobs(ctx context.Context, db *sql.DB, logger *slog.Logger) int {
	failures := 0
	for _, spec := range defaultStandardJobs() {
		created, err := upsertStandardJob(ctx, db, spec)
		if err != nil {
			if logger != nil {
				logger.ErrorContext(ctx, "failed to seed standard job", "name", spec.name, "error", err)
			}
			failures++
			continue
		}
		if logger != nil {
			msg := "standard job already exists"
			if created {
				msg = "created standard job"
			}
			logger.InfoContext(ctx, msg, "id", spec.id(), "name", spec.name)
		}
	}
	return failures
}

func upsertStandardJob(ctx context.Context, db *sql.DB, spec jobSeedSpec) (bool, error) {
	const insertQ = `
		INSERT INTO standard_job (id, name, standard_job_family_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`
	familyID := seedID("family:" + spec.familySlug)
	res, err := db.ExecContext(ctx, insertQ, spec.id(), spec.name, familyID)
	if err != nil {
		return false, err
	}
	if n, affectedErr := res.RowsAffected(); affectedErr == nil && n > 0 {
		return true, nil
	}

	const updateQ = `UPDATE standard_job SET name = $2, standard_job_family_id = $3 WHERE id = $1`
	_, err = db.ExecContext(ctx, updateQ, spec.id(), spec.name, familyID)
	return false, err
}

// postingGroupSpec expands into one posting per days value plus openRoles
// postings that have no recorded hire yet. A nil countryCode leaves the
// postings unattributed, so they count toward the global scope only.
type postingGroupSpec struct {
	jobSlug     string
	title       string
	countryCode *string
	days        []int
	openRoles   int
}

type postingSeedSpec struct {
	name        string
	title       string
	jobSlug     string
	countryCode *string
	daysToHire  *int
}

// defaultPostingGroups spreads postings across countries so a seeded run
// exercises every aggregation outcome: the larger groups clear the default
// minimum threshold, the DE, FR, and US QA groups stay below it, and the
// unattributed Software Engineer postings surface only in the global row.
func defaultPostingGroups() []postingGroupSpec {
	return []postingGroupSpec{
		{jobSlug: "swe", title: "Software Engineer", countryCode: stringPtr("UK"), days: []int{10, 12, 18, 21, 30, 35}, openRoles: 1},
		{jobSlug: "swe", title: "Software Engineer", countryCode: stringPtr("US"), days: []int{14, 15, 20, 25, 40}},
		{jobSlug: "swe", title: "Software Engineer", countryCode: stringPtr("DE"), days: []int{11, 13, 17}},
		{jobSlug: "swe", title: "Software Engineer", days: []int{9, 22}},
		{jobSlug: "qa", title: "QA Engineer", countryCode: stringPtr("UK"), days: []int{7, 9, 12, 15, 21}},
		{jobSlug: "qa", title: "QA Engineer", countryCode: stringPtr("US"), days: []int{10}, openRoles: 1},
		{jobSlug: "ds", title: "Data Scientist", countryCode: stringPtr("FR"), days: []int{28, 31, 35, 44}},
	}
}

func (g postingGroupSpec) postings() []postingSeedSpec {
	label := countryLabel(g.countryCode)
	out := make([]postingSeedSpec, 0, len(g.days)+g.openRoles)
	for i, days := range g.days {
		out = append(out, postingSeedSpec{
			name:        fmt.Sprintf("posting:%s:%s:%d", g.jobSlug, label, i+1),
			title:       g.title,
			jobSlug:     g.jobSlug,
			countryCode: g.countryCode,
			daysToHire:  intPtr(days),
		})
	}
	for i := 0; i < g.openRoles; i++ {
		out = append(out, postingSeedSpec{
			name:        fmt.Sprintf("posting:%s:%s:%d", g.jobSlug, label, len(g.days)+i+1),
			title:       g.title,
			jobSlug:     g.jobSlug,
			countryCode: g.countryCode,
		})
	}
	return out
}

func seedJobPostings(ctx context.Context, db *sql.DB, logger *slog.Logger) int {
	failures := 0
	for _, group := range defaultPostingGroups() {
		created, refreshed, err := upsertPostingGroup(ctx, db, group)
		if err != nil {
			if logger != nil {
				logger.ErrorContext(ctx, "failed to seed job postings",
					"job", group.jobSlug,
					"country", countryLabel(group.countryCode),
					"error", err,
				)
			}
			failures++
			continue
		}
		if logger != nil {
			logger.InfoContext(ctx, "seeded job postings",
				"job", group.jobSlug,
				"country", countryLabel(group.countryCode),
				"created", created,
				"refreshed", refreshed,
			)
		}
	}
	return failures
}

func upsertPostingGroup(ctx context.Context, db *sql.DB, group postingGroupSpec) (created, refreshed int, err error) {
	for _, p := range group.postings() {
		wasCreated, upsertErr := upsertPosting(ctx, db, p)
		if upsertErr != nil {
			return created, refreshed, fmt.Errorf("posting %q: %w", p.name, upsertErr)
		}
		if wasCreated {
			created++
		} else {
			refreshed++
		}
	}
	return created, refreshed, nil
}

func upsertPosting(ctx context.Context, db *sql.DB, p postingSeedSpec) (bool, error) {
	const insertQ = `
		INSERT INTO job_posting (id, title, standard_job_id, country_code, days_to_hire)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`
	id := seedID(p.name)
	jobID := seedID("job:" + p.jobSlug)
	res, err := db.ExecContext(ctx, insertQ, id, p.title, jobID, p.countryCode, p.daysToHire)
	if err != nil {
		return false, err
	}
	if n, affectedErr := res.RowsAffected(); affectedErr == nil && n > 0 {
		return true, nil
	}

	const updateQ = `
		UPDATE job_posting
		SET title = $2, standard_job_id = $3, country_code = $4, days_to_hire = $5
		WHERE id = $1
	`
	_, err = db.ExecContext(ctx, updateQ, id, p.title, jobID, p.countryCode, p.daysToHire)
	return false, err
}

func countryLabel(code *string) string {
	if code == nil {
		return "any"
	}
	return *code
}

func stringPtr(s string) *string { return &s }
func intPtr(i int) *int          { return &i }
