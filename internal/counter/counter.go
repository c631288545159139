// Package counter models the final counter set of a completed job.
package counter

// Counter is one named value within a group. A nil Value means the job
// reported the counter without a usable value.
type Counter struct {
	Name  string
	Value *int64
}

// Group is a named, ordered collection of counters.
type Group struct {
	Name     string
	Counters []Counter
}

// Source exposes counter groups in a deterministic order.
type Source interface {
	Groups() []Group
}

// Groups is a Source backed by a slice.
type Groups []Group

// Groups returns the groups in slice order.
func (g Groups) Groups() []Group {
	return g
}

// Len returns the total number of counters across all groups.
func (g Groups) Len() int {
	n := 0

	for _, grp := range g {
		n += len(grp.Counters)
	}

	return n
}

// Int64 returns a pointer to v, for building counters with values.
func Int64(v int64) *int64 {
	return &v
}
