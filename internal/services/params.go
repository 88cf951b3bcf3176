package services

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Allowed values for the enumerated arguments.
var (
	ActivityScopes     = []string{"user", "friends", "everyone"}
	AlbumSorts         = []string{"dateAdded", "playCount", "artist", "name"}
	ArtistSorts        = []string{"name"}
	TrackSorts         = []string{"dateAdded", "playCount", "artist", "album", "name"}
	HeavyRotationTypes = []string{"artists", "albums"}
	NewReleaseTimes    = []string{"thisweek", "lastweek", "twoweeks"}
	ChartTypes         = []string{"Artist", "Album", "Track", "Playlist"}
	SearchTypes        = []string{"Artist", "Album", "Track", "Playlist", "User"}
)

// params accumulates the form fields of one call. Setters skip zero values so only
// supplied arguments are sent. The first validation failure is kept and returned by err.
type params struct {
	method string
	values url.Values
	failed error
}

func newParams(method string) *params {
	return &params{method: method, values: url.Values{"method": {method}}}
}

func (p *params) set(name, value string) *params {
	if value != "" {
		p.values.Set(name, value)
	}
	return p
}

func (p *params) setInt(name string, value int) *params {
	if value != 0 {
		p.values.Set(name, strconv.Itoa(value))
	}
	return p
}

func (p *params) setBool(name string, value bool) *params {
	if value {
		p.values.Set(name, "true")
	}
	return p
}

// setList comma-joins values in order. Values are not escaped, so an element
// containing a comma splits into two on the server.
func (p *params) setList(name string, values []string) *params {
	if len(values) > 0 {
		p.values.Set(name, strings.Join(values, ","))
	}
	return p
}

// require records a [MissingArgumentError] when value is empty.
func (p *params) require(name, value string) *params {
	if value == "" && p.failed == nil {
		p.failed = &MissingArgumentError{Method: p.method, Argument: name}
	}
	return p.set(name, value)
}

// requireList records a [MissingArgumentError] when values is empty.
func (p *params) requireList(name string, values []string) *params {
	if len(values) == 0 && p.failed == nil {
		p.failed = &MissingArgumentError{Method: p.method, Argument: name}
	}
	return p.setList(name, values)
}

// oneOf sets value when it is in allowed and records an [InvalidParameterError]
// otherwise. An empty value is skipped.
func (p *params) oneOf(name, value string, allowed []string) *params {
	if value == "" {
		return p
	}
	if !slices.Contains(allowed, value) {
		if p.failed == nil {
			p.failed = &InvalidParameterError{Method: p.method, Param: name, Value: value, Allowed: allowed}
		}
		return p
	}
	return p.set(name, value)
}

// subsetOf sets values when every element is in allowed.
func (p *params) subsetOf(name string, values []string, allowed []string) *params {
	for _, v := range values {
		if !slices.Contains(allowed, v) {
			if p.failed == nil {
				p.failed = &InvalidParameterError{Method: p.method, Param: name, Value: v, Allowed: allowed}
			}
			return p
		}
	}
	return p.setList(name, values)
}

// reject records an [InvalidParameterError] for a value that fails a check other than set membership.
func (p *params) reject(name, value string, allowed ...string) *params {
	if p.failed == nil {
		p.failed = &InvalidParameterError{Method: p.method, Param: name, Value: value, Allowed: allowed}
	}
	return p
}

func (p *params) err() error { return p.failed }

func (p *params) encode() string { return p.values.Encode() }
