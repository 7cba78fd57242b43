package perf

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the default capacity of the sample ring.
const DefaultRingSize = 4096

// Kind distinguishes HTTP request samples from SQL query samples.
type Kind uint8

const (
	KindRequest Kind = iota
	KindQuery
)

// Sample is one timing measurement.
type Sample struct {
	Kind       Kind
	Label      string // "METHOD /path" for requests, the SQLDB method for queries
	Status     int
	DurationMs float64
	At         time.Time
}

// Collector keeps the most recent samples in a fixed ring.
// When full, the oldest sample is overwritten.
type Collector struct {
	mu    sync.Mutex
	ring  []Sample
	next  int
	total atomic.Int64
}

// NewCollector creates a collector holding up to size samples.
// PRE: size > 0, otherwise DefaultRingSize is used
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{ring: make([]Sample, size)}
}

// Record stores a sample.
// POST: sample stored; oldest sample overwritten when the ring is full
func (c *Collector) Record(s Sample) {
	c.mu.Lock()
	c.ring[c.next] = s
	c.next = (c.next + 1) % len(c.ring)
	c.mu.Unlock()
	c.total.Add(1)
}

// TotalRecorded returns the number of samples ever recorded.
func (c *Collector) TotalRecorded() int64 {
	return c.total.Load()
}

// Summary holds latency percentiles for one kind of sample.
type Summary struct {
	Count int     `json:"count"`
	P50Ms float64 `json:"p50Ms"`
	P95Ms float64 `json:"p95Ms"`
	P99Ms float64 `json:"p99Ms"`
}

// LabelStat aggregates samples sharing a label.
type LabelStat struct {
	Label string  `json:"label"`
	Count int     `json:"count"`
	AvgMs float64 `json:"avgMs"`
	MaxMs float64 `json:"maxMs"`
}

// Report is the aggregated view served on the admin perf endpoint.
type Report struct {
	TotalRecorded  int64       `json:"totalRecorded"`
	Requests       Summary     `json:"requests"`
	Queries        Summary     `json:"queries"`
	SlowestRoutes  []LabelStat `json:"slowestRoutes"`
	SlowestQueries []LabelStat `json:"slowestQueries"`
}

// Snapshot aggregates samples newer than since.
// PRE: topN >= 0
// POST: SlowestRoutes and SlowestQueries hold at most topN entries, slowest average first
func (c *Collector) Snapshot(since time.Time, topN int) Report {
	c.mu.Lock()
	buf := make([]Sample, len(c.ring))
	copy(buf, c.ring)
	c.mu.Unlock()

	var reqDur, queryDur []float64
	reqStats := map[string]*LabelStat{}
	queryStats := map[string]*LabelStat{}
	for _, s := range buf {
		if s.At.IsZero() || s.At.Before(since) {
			continue
		}
		stats := reqStats
		if s.Kind == KindQuery {
			stats = queryStats
			queryDur = append(queryDur, s.DurationMs)
		} else {
			reqDur = append(reqDur, s.DurationMs)
		}
		st, ok := stats[s.Label]
		if !ok {
			st = &LabelStat{Label: s.Label}
			stats[s.Label] = st
		}
		st.Count++
		st.AvgMs += s.DurationMs
		st.MaxMs = math.Max(st.MaxMs, s.DurationMs)
	}

	return Report{
		TotalRecorded:  c.TotalRecorded(),
		Requests:       summarize(reqDur),
		Queries:        summarize(queryDur),
		SlowestRoutes:  slowest(reqStats, topN),
		SlowestQueries: slowest(queryStats, topN),
	}
}

func summarize(d []float64) Summary {
	if len(d) == 0 {
		return Summary{}
	}
	sort.Float64s(d)
	return Summary{
		Count: len(d),
		P50Ms: percentile(d, 50),
		P95Ms: percentile(d, 95),
		P99Ms: percentile(d, 99),
	}
}

// percentile interpolates the p-th percentile of a sorted slice.
func percentile(sorted []float64, p float64) float64 {
	idx := (p / 100) * float64(len(sorted)-1)
	lo := int(math.Floor(idx))
	hi := int(math.Ceil(idx))
	if lo == hi {
		return sorted[lo]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func slowest(stats map[string]*LabelStat, n int) []LabelStat {
	list := make([]LabelStat, 0, len(stats))
	for _, st := range stats {
		st.AvgMs /= float64(st.Count)
		list = append(list, *st)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].AvgMs == list[j].AvgMs {
			return list[i].Label < list[j].Label
		}
		return list[i].AvgMs > list[j].AvgMs
	})
	if len(list) > n {
		list = list[:n]
	}
	return list
}
