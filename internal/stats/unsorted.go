package stats

import (
	"sort"
)

// frequencies is the multiset of raw values behind cardinality, modes and
// antimodes. It holds every distinct value of the column in memory.
type frequencies struct {
	counts map[string]uint64
}

func newFrequencies() *frequencies {
	return &frequencies{counts: make(map[string]uint64)}
}

func (f *frequencies) add(v string) {
	f.counts[v]++
}

func (f *frequencies) merge(o *frequencies) {
	for v, n := range o.counts {
		f.counts[v] += n
	}
}

func (f *frequencies) cardinality() int {
	return len(f.counts)
}

func (f *frequencies) sortedKeys() []string {
	keys := make([]string, 0, len(f.counts))
	for k := range f.counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// modes returns every value tied at the highest count, how many there are
// and the count itself. When no value repeats it returns nothing and a zero
// count.
func (f *frequencies) modes() ([]string, int, uint64) {
	var highest uint64
	for _, n := range f.counts {
		if n > highest {
			highest = n
		}
	}
	if highest <= 1 {
		return nil, 0, 0
	}
	var out []string
	for _, k := range f.sortedKeys() {
		if f.counts[k] == highest {
			out = append(out, k)
		}
	}
	return out, len(out), highest
}

// antimodes returns the first limit values (in byte order) tied at the
// lowest count, the total number tied and the count itself.
func (f *frequencies) antimodes(limit int) ([]string, int, uint64) {
	if len(f.counts) == 0 {
		return nil, 0, 0
	}
	var lowest uint64
	first := true
	for _, n := range f.counts {
		if first || n < lowest {
			lowest, first = n, false
		}
	}
	var out []string
	total := 0
	for _, k := range f.sortedKeys() {
		if f.counts[k] != lowest {
			continue
		}
		total++
		if len(out) < limit {
			out = append(out, k)
		}
	}
	return out, total, lowest
}

// numbers is the numeric multiset behind median, MAD and quartiles.
// Temporal columns store epoch milliseconds.
type numbers struct {
	data   []float64
	sorted bool
}

func (n *numbers) add(x float64) {
	n.data = append(n.data, x)
	n.sorted = false
}

func (n *numbers) merge(o *numbers) {
	n.data = append(n.data, o.data...)
	n.sorted = false
}

func (n *numbers) sort() {
	if !n.sorted {
		sort.Float64s(n.data)
		n.sorted = true
	}
}

func (n *numbers) median() (float64, bool) {
	n.sort()
	return medianOnSorted(n.data)
}

// mad is the median absolute deviation around med.
func (n *numbers) mad(med float64) (float64, bool) {
	if len(n.data) == 0 {
		return 0, false
	}
	dev := make([]float64, len(n.data))
	for i, x := range n.data {
		d := x - med
		if d < 0 {
			d = -d
		}
		dev[i] = d
	}
	sort.Float64s(dev)
	return medianOnSorted(dev)
}

func (n *numbers) quartiles() (q1, q2, q3 float64, ok bool) {
	n.sort()
	return quartilesOnSorted(n.data)
}

func medianOnSorted(data []float64) (float64, bool) {
	l := len(data)
	switch {
	case l == 0:
		return 0, false
	case l%2 == 0:
		return (data[l/2-1] + data[l/2]) / 2, true
	default:
		return data[l/2], true
	}
}

// quartilesOnSorted uses Tukey's hinges: the median splits the data and
// q1/q3 are the medians of the lower and upper halves.
func quartilesOnSorted(data []float64) (q1, q2, q3 float64, ok bool) {
	l := len(data)
	switch {
	case l < 3:
		return 0, 0, 0, false
	case l == 3:
		return data[0], data[1], data[2], true
	}
	k := l / 4
	switch l % 4 {
	case 0:
		q1 = (data[k-1] + data[k]) / 2
		q2 = (data[2*k-1] + data[2*k]) / 2
		q3 = (data[3*k-1] + data[3*k]) / 2
	case 1:
		q1 = (data[k-1] + data[k]) / 2
		q2 = data[2*k]
		q3 = (data[3*k] + data[3*k+1]) / 2
	case 2:
		q1 = data[k]
		q2 = (data[2*k] + data[2*k+1]) / 2
		q3 = data[3*k+1]
	default:
		q1 = data[k]
		q2 = data[2*k+1]
		q3 = data[3*k+2]
	}
	return q1, q2, q3, true
}
