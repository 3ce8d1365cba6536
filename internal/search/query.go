// Package search parses filter queries and scores process snapshots
// against them. Three modes exist: plain text is fuzzy-matched, /pat/flags
// is a regular expression, and /killed switches to the signal history.
package search

import (
	"fmt"
	"regexp"
	"strings"
)

// Mode selects how a query is interpreted.
type Mode int

const (
	ModeFuzzy Mode = iota
	ModeRegex
	ModeKilled
)

func (m Mode) String() string {
	switch m {
	case ModeFuzzy:
		return "fuzzy"
	case ModeRegex:
		return "regex"
	case ModeKilled:
		return "killed"
	}
	return "unknown"
}

// InvalidQueryError reports a query the parser could not accept, such as
// a regular expression that does not compile. The raw input is preserved
// so it can be echoed back in the status line.
type InvalidQueryError struct {
	Raw string
	Err error
}

func (e *InvalidQueryError) Error() string {
	return fmt.Sprintf("invalid query %q: %v", e.Raw, e.Err)
}

func (e *InvalidQueryError) Unwrap() error { return e.Err }

// Query is a parsed filter. A Query is immutable once built; Parse is the
// only constructor.
type Query struct {
	mode  Mode
	text  string
	flags string
	re    *regexp.Regexp
}

// Parse interprets raw input. The "/killed" prefix (case-insensitive, with
// an optional sub-filter after ':' or a space) selects history mode, a
// leading '/' otherwise starts a /pattern/flags regex, and anything else
// is fuzzy text. Whitespace around the input is ignored.
func Parse(raw string) (*Query, error) {
	trimmed := strings.TrimSpace(raw)
	lower := strings.ToLower(trimmed)

	if strings.HasPrefix(lower, "/killed") {
		rest := trimmed[len("/killed"):]
		rest = strings.TrimSpace(strings.TrimPrefix(rest, ":"))
		return &Query{mode: ModeKilled, text: rest}, nil
	}

	if strings.HasPrefix(trimmed, "/") && len(trimmed) > 1 {
		body := trimmed[1:]
		pat := body
		var flags string
		if i := strings.LastIndex(body, "/"); i > 0 {
			pat, flags = body[:i], body[i+1:]
		}
		prefix, err := regexFlagPrefix(flags)
		if err != nil {
			return nil, &InvalidQueryError{Raw: raw, Err: err}
		}
		re, err := regexp.Compile(prefix + pat)
		if err != nil {
			return nil, &InvalidQueryError{Raw: raw, Err: err}
		}
		return &Query{mode: ModeRegex, text: pat, flags: flags, re: re}, nil
	}

	return &Query{mode: ModeFuzzy, text: trimmed}, nil
}

// regexFlagPrefix maps trailing /i /m /s flags onto Go's inline syntax.
func regexFlagPrefix(flags string) (string, error) {
	if flags == "" {
		return "", nil
	}
	for _, f := range flags {
		switch f {
		case 'i', 'm', 's':
		default:
			return "", fmt.Errorf("unsupported regex flag %q", string(f))
		}
	}
	return "(?" + flags + ")", nil
}

// Mode reports how this query filters.
func (q *Query) Mode() Mode { return q.mode }

// Text returns the match text: the fuzzy needle, the regex pattern, or
// the /killed sub-filter.
func (q *Query) Text() string { return q.text }

// Flags returns the raw regex flag letters as typed, empty in other modes.
func (q *Query) Flags() string { return q.flags }

// Empty reports whether the query imposes no restriction at all. Empty
// queries pass every snapshot through unscored.
func (q *Query) Empty() bool {
	return q.mode == ModeFuzzy && q.text == ""
}
