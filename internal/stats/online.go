package stats

import "math"

// onlineStats is a constant-memory mean/variance accumulator (Welford).
type onlineStats struct {
	size uint64
	mean float64
	q    float64
}

func (o *onlineStats) add(x float64) {
	oldMean := o.mean
	o.size++
	o.mean += (x - oldMean) / float64(o.size)
	o.q += (x - oldMean) * (x - o.mean)
}

// addNull counts a null in the population without adding to the sum.
func (o *onlineStats) addNull() {
	o.add(0)
}

func (o *onlineStats) variance() float64 {
	if o.size == 0 {
		return math.NaN()
	}
	return o.q / float64(o.size)
}

func (o *onlineStats) stddev() float64 {
	return math.Sqrt(o.variance())
}

// merge combines two populations with the parallel variance formula.
func (o *onlineStats) merge(other *onlineStats) {
	if other.size == 0 {
		return
	}
	if o.size == 0 {
		*o = *other
		return
	}
	s1, s2 := float64(o.size), float64(other.size)
	total := s1 + s2
	delta := other.mean - o.mean
	o.mean = (s1*o.mean + s2*other.mean) / total
	o.q += other.q + delta*delta*s1*s2/total
	o.size += other.size
}
