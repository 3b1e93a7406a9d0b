// Package testutil provides testing utilities and helpers for the hirestats system.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/hiremetrics/hirestats/internal/domain/model"
)

// PostingBuilder provides a fluent interface for building JobPosting fixtures for testing.
type PostingBuilder struct {
	posting model.JobPosting
}

// NewPosting creates a new PostingBuilder with sensible defaults.
func NewPosting(id, standardJobID string) *PostingBuilder {
	return &PostingBuilder{
		posting: model.JobPosting{
			ID:            id,
			Title:         "Posting " + id,
			StandardJobID: standardJobID,
		},
	}
}

// WithTitle sets the posting title.
func (b *PostingBuilder) WithTitle(title string) *PostingBuilder {
	b.posting.Title = title
	return b
}

// WithCountry sets the posting's country code.
func (b *PostingBuilder) WithCountry(code string) *PostingBuilder {
	b.posting.CountryCode = &code
	return b
}

// WithDaysToHire sets the posting's recorded days-to-hire value.
func (b *PostingBuilder) WithDaysToHire(days int) *PostingBuilder {
	b.posting.DaysToHire = &days
	return b
}

// Build returns the constructed posting.
func (b *PostingBuilder) Build() model.JobPosting {
	return b.posting
}

// Fixture insertion helpers for integration tests. These write directly with
// SQL so repository code under test is not also the code seeding its input.

// SeedStandardJob inserts a job family (idempotently) and a standard job under it.
func SeedStandardJob(t TestingTB, db *sql.DB, jobID, jobName, familyID string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, `
		INSERT INTO standard_job_family (id, name)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
	`, familyID, "Family "+familyID); err != nil {
		t.Fatalf("Failed to seed standard_job_family %s: %v", familyID, err)
	}

	if _, err := db.ExecContext(ctx, `
		INSERT INTO standard_job (id, name, standard_job_family_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`, jobID, jobName, familyID); err != nil {
		t.Fatalf("Failed to seed standard_job %s: %v", jobID, err)
	}
}

// InsertPostings inserts the given posting fixtures.
func InsertPostings(t TestingTB, db *sql.DB, postings ...model.JobPosting) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, p := range postings {
		if _, err := db.ExecContext(ctx, `
			INSERT INTO job_posting (id, title, standard_job_id, country_code, days_to_hire)
			VALUES ($1, $2, $3, $4, $5)
		`, p.ID, p.Title, p.StandardJobID, p.CountryCode, p.DaysToHire); err != nil {
			t.Fatalf("Failed to insert posting %s: %v", p.ID, err)
		}
	}
}

// NullDays marks a fixture posting whose days_to_hire should be NULL.
// Ordinary negative values are inserted verbatim so tests can exercise the
// data-integrity rejection path.
const NullDays = math.MinInt32

// SeedPostingGroup seeds a standard job and a batch of postings for one
// country in one call. Pass an empty country for postings without one.
func SeedPostingGroup(t TestingTB, db *sql.DB, jobID, country string, dayValues []int) {
	t.Helper()

	SeedStandardJob(t, db, jobID, "Job "+jobID, "fam-"+jobID)

	postings := make([]model.JobPosting, 0, len(dayValues))
	for i, d := range dayValues {
		b := NewPosting(fmt.Sprintf("%s-%s-%d", jobID, country, i), jobID)
		if country != "" {
			b.WithCountry(country)
		}
		if d != NullDays {
			b.WithDaysToHire(d)
		}
		postings = append(postings, b.Build())
	}
	InsertPostings(t, db, postings...)
}
