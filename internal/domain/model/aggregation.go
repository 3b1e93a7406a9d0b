//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import "sort"

// AggregateParams narrows and tunes one aggregation pass.
type AggregateParams struct {
	// MinThreshold is the minimum number of usable postings a combination
	// needs before a record is written. Must be at least 1.
	MinThreshold int

	// StandardJobID pins the pass to one job's combinations when set.
	StandardJobID string

	// CountryCode pins the pass to one country's combinations when set.
	// The storage sentinel pins the global combinations instead.
	CountryCode string
}

// AggregateSummary reports the outcome of one aggregation pass.
// Processed counts every combination attempted; each attempt lands in exactly
// one of Saved, Skipped, or Failed.
type AggregateSummary struct {
	Processed int `json:"processed"`
	Saved     int `json:"saved"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// WorkSetOptions controls how observed combinations expand into work-set keys.
type WorkSetOptions struct {
	// IncludeGlobal adds one global key per observed job in addition to its
	// specific-country keys.
	IncludeGlobal bool

	// GlobalOnly restricts the work set to one global key per observed job,
	// dropping all specific-country keys.
	GlobalOnly bool
}

// DeriveWorkSet expands the distinct combinations observed in the posting
// table into the ordered set of keys one aggregation pass processes. Jobs are
// ordered ascending; within a job, specific countries come first (ascending)
// and the global key last. Combinations without a country code only ever
// contribute a global key.
func DeriveWorkSet(combos []PostingCombination, opts WorkSetOptions) []StatsKey {
	countries := make(map[string][]string)
	jobs := make([]string, 0)
	for _, c := range combos {
		if _, seen := countries[c.StandardJobID]; !seen {
			countries[c.StandardJobID] = nil
			jobs = append(jobs, c.StandardJobID)
		}
		if c.CountryCode == nil || *c.CountryCode == "" {
			continue
		}
		countries[c.StandardJobID] = append(countries[c.StandardJobID], *c.CountryCode)
	}
	sort.Strings(jobs)

	keys := make([]StatsKey, 0, len(combos)+len(jobs))
	for _, job := range jobs {
		if !opts.GlobalOnly {
			codes := countries[job]
			sort.Strings(codes)
			prev := ""
			for _, code := range codes {
				if code == prev {
					continue
				}
				prev = code
				scope := CountryScopeFor(code)
				if scope.IsGlobal() {
					continue
				}
				keys = append(keys, StatsKey{StandardJobID: job, Scope: scope})
			}
		}
		if opts.GlobalOnly || opts.IncludeGlobal {
			keys = append(keys, StatsKey{StandardJobID: job, Scope: GlobalScope()})
		}
	}
	return keys
}
