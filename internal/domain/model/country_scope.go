// Package model defines the core data types for the hirestats service.
package model

import "strings"

// WorldCountryCode is the storage sentinel for global aggregates. It exists
// only at the persistence and wire boundaries; domain code works with
// CountryScope values instead.
const WorldCountryCode = "World"

// CountryScope selects either one specific country or the global aggregate
// computed across all countries. The zero value is the global scope.
type CountryScope struct {
	code string
}

// GlobalScope returns the scope covering postings from every country.
func GlobalScope() CountryScope {
	return CountryScope{}
}

// CountryScopeFor returns the scope for a single country code.
// An empty or sentinel code yields the global scope.
func CountryScopeFor(code string) CountryScope {
	return ParseCountryScope(code)
}

// ParseCountryScope interprets raw caller input. Empty input and the storage
// sentinel both mean the global scope; anything else names a country.
func ParseCountryScope(raw string) CountryScope {
	code := strings.TrimSpace(raw)
	if code == "" || code == WorldCountryCode {
		return CountryScope{}
	}
	return CountryScope{code: code}
}

// ScopeFromStorage converts a stored country_code column value back into a
// domain scope.
func ScopeFromStorage(code string) CountryScope {
	return ParseCountryScope(code)
}

// IsGlobal reports whether the scope covers all countries.
func (s CountryScope) IsGlobal() bool {
	return s.code == ""
}

// Country returns the specific country code and true, or ("", false) for the
// global scope.
func (s CountryScope) Country() (string, bool) {
	if s.code == "" {
		return "", false
	}
	return s.code, true
}

// StorageCode returns the country_code column value for this scope.
func (s CountryScope) StorageCode() string {
	if s.code == "" {
		return WorldCountryCode
	}
	return s.code
}

// String renders the scope for logs and error messages.
func (s CountryScope) String() string {
	if s.code == "" {
		return "global"
	}
	return s.code
}
