package session

import "trafficviz/internal/render"

// Series holds the per-step time series collected for post-hoc analysis.
type Series struct {
	Speeds    []float64
	WaitTimes []float64
	Arrivals  []int
}

// Stats is the running accumulator over a session. Averages are recomputed
// fresh from the current vehicle set each step (not smoothed); throughput
// is the cumulative number of arrivals.
type Stats struct {
	VehicleCount int
	AvgSpeed     float64
	AvgWaiting   float64
	Throughput   int
	Steps        int

	Series Series
}

func (st *Stats) update(vehicles []render.VehicleSnapshot, arrived int) {
	st.Steps++
	st.VehicleCount = len(vehicles)

	st.AvgSpeed = 0
	st.AvgWaiting = 0
	if len(vehicles) > 0 {
		var speed, wait float64
		for _, v := range vehicles {
			speed += v.Speed
			wait += v.Waiting
		}
		st.AvgSpeed = speed / float64(len(vehicles))
		st.AvgWaiting = wait / float64(len(vehicles))
	}

	st.Throughput += arrived
	st.Series.Speeds = append(st.Series.Speeds, st.AvgSpeed)
	st.Series.WaitTimes = append(st.Series.WaitTimes, st.AvgWaiting)
	st.Series.Arrivals = append(st.Series.Arrivals, arrived)
}
