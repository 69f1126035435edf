package objective

// Entry is one logged evaluation: a point and its observed score.
type Entry struct {
	Point Point
	Score float64
}

// Mapping is the plain, unordered form of a call log, keyed by the
// canonical point encoding. Used for persistence and for returning the
// log to callers.
type Mapping map[string]float64

// CallLog is an ordered record of every (point, score) pair seen so far.
// Insertion order reflects evaluation order and is load-bearing: best-point
// extraction breaks ties in favor of the earliest insertion, and restores
// replay entries in their stored order.
//
// CallLog is not safe for concurrent mutation; the objective wrapper is
// expected to be its only writer during a run.
type CallLog struct {
	entries []Entry
	index   map[string]int // point key -> position in entries
}

// NewCallLog creates an empty call log.
func NewCallLog() *CallLog {
	return &CallLog{index: make(map[string]int)}
}

// Len returns the number of logged entries.
func (l *CallLog) Len() int {
	return len(l.entries)
}

// Insert appends (point, score) to the log. Re-inserting an existing point
// overwrites its score in place without changing its position.
func (l *CallLog) Insert(p Point, score float64) {
	key := p.Key()
	if i, ok := l.index[key]; ok {
		l.entries[i].Score = score
		return
	}
	l.index[key] = len(l.entries)
	l.entries = append(l.entries, Entry{Point: p.Clone(), Score: score})
}

// Get returns the stored score for the given point.
// Returns NotFoundError if the point was never logged.
func (l *CallLog) Get(p Point) (float64, error) {
	i, ok := l.index[p.Key()]
	if !ok {
		return 0, &NotFoundError{Key: p.Key()}
	}
	return l.entries[i].Score, nil
}

// Contains reports whether the point has been logged.
func (l *CallLog) Contains(p Point) bool {
	_, ok := l.index[p.Key()]
	return ok
}

// Entries returns the logged entries in insertion order.
// The returned slice must not be mutated.
func (l *CallLog) Entries() []Entry {
	return l.entries
}

// Merge appends all entries of other, preserving other's order after the
// receiver's existing entries. Points already present keep their position
// and take other's score.
func (l *CallLog) Merge(other *CallLog) {
	for _, e := range other.entries {
		l.Insert(e.Point, e.Score)
	}
}

// ToMapping exports the log as a plain mapping. Order is not represented;
// use Entries when order matters.
func (l *CallLog) ToMapping() Mapping {
	m := make(Mapping, len(l.entries))
	for _, e := range l.entries {
		m[e.Point.Key()] = e.Score
	}
	return m
}

// FromMapping builds a call log from a plain mapping. Iteration order of the
// mapping is unspecified, so the resulting entry order is arbitrary; restores
// that need deterministic order replay an ordered entry list instead.
func FromMapping(m Mapping) (*CallLog, error) {
	l := NewCallLog()
	for key, score := range m {
		p, err := ParseKey(key)
		if err != nil {
			return nil, err
		}
		l.Insert(p, score)
	}
	return l, nil
}

// Best returns the entry with the maximum (maximize) or minimum score,
// resolving ties in favor of the earliest insertion.
// Returns NotFoundError on an empty log.
func (l *CallLog) Best(maximize bool) (Entry, error) {
	if len(l.entries) == 0 {
		return Entry{}, &NotFoundError{}
	}
	best := l.entries[0]
	for _, e := range l.entries[1:] {
		if maximize && e.Score > best.Score {
			best = e
		} else if !maximize && e.Score < best.Score {
			best = e
		}
	}
	return best, nil
}
