package search

import (
	"sort"
	"strings"
	"unicode"

	"github.com/sahilm/fuzzy"

	"procsweep/internal/collector"
)

// Field weights dominate the sub-score so that a weak name match always
// outranks a strong environment match. The sub-score occupies the low
// fieldShift bits and is clamped to stay there.
const (
	fieldShift  = 20
	subScoreMax = 1<<fieldShift - 1

	// Only the first few environment entries are searched; scanning a
	// full environ per process per keystroke is too slow.
	envFieldLimit = 8
)

const (
	weightName = 5 - iota
	weightDecamel
	weightCmdline
	weightCwd
	weightEnviron
)

// Span marks a matched run of the process name in rune offsets,
// half-open [Start, End).
type Span struct {
	Start int
	End   int
}

// Match carries the rank score and the name highlight spans for one
// snapshot. Highlights are only produced when the winning field is the
// process name itself; matches buried in cmdline or environ have nothing
// visible to underline.
type Match struct {
	Score      int
	Highlights []Span
}

// Result pairs a snapshot with its match for ranking.
type Result struct {
	Snapshot collector.Snapshot
	Match    Match
}

// MatchSnapshot scores one snapshot against the query. The second return
// is false when the snapshot does not match at all. Killed-mode queries
// never match live snapshots; they are answered from history instead.
func (q *Query) MatchSnapshot(s collector.Snapshot) (Match, bool) {
	switch q.mode {
	case ModeKilled:
		return Match{}, false
	case ModeRegex:
		return q.matchRegex(s)
	default:
		if q.text == "" {
			return Match{}, true
		}
		return q.matchFuzzy(s)
	}
}

type field struct {
	weight int
	value  string
}

func snapshotFields(s collector.Snapshot) []field {
	fields := []field{
		{weightName, s.Name},
		{weightDecamel, decamel(s.Name)},
		{weightCmdline, strings.Join(s.Cmdline, " ")},
		{weightCwd, s.Cwd},
	}
	env := s.Environ
	if len(env) > envFieldLimit {
		env = env[:envFieldLimit]
	}
	for _, e := range env {
		fields = append(fields, field{weightEnviron, e})
	}
	return fields
}

func (q *Query) matchFuzzy(s collector.Snapshot) (Match, bool) {
	for _, f := range snapshotFields(s) {
		if f.value == "" {
			continue
		}
		found := fuzzy.Find(q.text, []string{f.value})
		if len(found) == 0 {
			continue
		}
		m := Match{Score: combineScore(f.weight, found[0].Score)}
		if f.weight == weightName {
			m.Highlights = indexSpans(found[0].MatchedIndexes)
		}
		return m, true
	}
	return Match{}, false
}

func (q *Query) matchRegex(s collector.Snapshot) (Match, bool) {
	for _, f := range snapshotFields(s) {
		if f.value == "" {
			continue
		}
		loc := q.re.FindStringIndex(f.value)
		if loc == nil {
			continue
		}
		// Longer matches closer to the start of the field rank higher.
		sub := (loc[1]-loc[0])*16 - loc[0]
		m := Match{Score: combineScore(f.weight, sub)}
		if f.weight == weightName {
			m.Highlights = regexSpans(f.value, q.re.FindAllStringIndex(f.value, -1))
		}
		return m, true
	}
	return Match{}, false
}

func combineScore(weight, sub int) int {
	if sub < 0 {
		sub = 0
	}
	if sub > subScoreMax {
		sub = subScoreMax
	}
	return weight<<fieldShift | sub
}

// Rank orders results by score descending. Ties fall through to the
// caller's comparator, normally the session's active sort column.
func Rank(results []Result, tie func(a, b collector.Snapshot) bool) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Match.Score != results[j].Match.Score {
			return results[i].Match.Score > results[j].Match.Score
		}
		if tie != nil {
			return tie(results[i].Snapshot, results[j].Snapshot)
		}
		return false
	})
}

// decamel lowers a camel-cased or punctuated name into spaced words, so
// "DataWarehouseD" also answers to "data warehouse".
func decamel(name string) string {
	var sb strings.Builder
	var prev rune
	for i, r := range name {
		switch {
		case r == '-' || r == '_' || r == '.':
			sb.WriteRune(' ')
		case i > 0 && unicode.IsUpper(r) && unicode.IsLower(prev):
			sb.WriteRune(' ')
			sb.WriteRune(unicode.ToLower(r))
		default:
			sb.WriteRune(unicode.ToLower(r))
		}
		prev = r
	}
	return sb.String()
}

// indexSpans merges per-rune match indexes into contiguous spans.
func indexSpans(indexes []int) []Span {
	if len(indexes) == 0 {
		return nil
	}
	sorted := append([]int(nil), indexes...)
	sort.Ints(sorted)

	spans := []Span{{Start: sorted[0], End: sorted[0] + 1}}
	for _, idx := range sorted[1:] {
		last := &spans[len(spans)-1]
		if idx == last.End {
			last.End++
			continue
		}
		if idx < last.End {
			continue
		}
		spans = append(spans, Span{Start: idx, End: idx + 1})
	}
	return spans
}

// regexSpans converts byte-offset locations into rune-offset spans.
func regexSpans(value string, locs [][]int) []Span {
	if len(locs) == 0 {
		return nil
	}
	byteToRune := make(map[int]int, len(value)+1)
	n := 0
	for i := range value {
		byteToRune[i] = n
		n++
	}
	byteToRune[len(value)] = n

	spans := make([]Span, 0, len(locs))
	for _, loc := range locs {
		if loc[0] == loc[1] {
			continue
		}
		spans = append(spans, Span{Start: byteToRune[loc[0]], End: byteToRune[loc[1]]})
	}
	return spans
}
