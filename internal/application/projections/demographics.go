package projections

import (
	"context"
	"sort"
	"strconv"
	"strings"

	domainAttendance "eventdesk/internal/domain/attendance"
)

// unspecified labels records with an empty field.
const unspecified = "Unspecified"

// Bucket is one bar or slice of a chart.
type Bucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Demographics summarises an event's participants for the report charts.
type Demographics struct {
	EventID        int64    `json:"eventId"`
	Registered     int      `json:"registered"`
	CheckedIn      int      `json:"checkedIn"`
	AttendanceRate float64  `json:"attendanceRate"`
	ByGender       []Bucket `json:"byGender"`
	ByFaculty      []Bucket `json:"byFaculty"`
	ByCourse       []Bucket `json:"byCourse"`
	ByYear         []Bucket `json:"byYear"`
	ByRole         []Bucket `json:"byRole"`
}

// DemographicsDeps holds dependencies for Demographics.
type DemographicsDeps struct {
	EventStore       EventStore
	ParticipantStore ParticipantStore
	AttendanceStore  AttendanceStore
}

// QueryDemographics counts an event's participants by attribute.
// PRE: eventID refers to an existing event
// POST: Buckets are sorted by count descending then label; empty values count as "Unspecified"
// INVARIANT: Every bucket list sums to Registered
func QueryDemographics(ctx context.Context, eventID int64, deps DemographicsDeps) (Demographics, error) {
	if _, err := lookupEvent(ctx, deps.EventStore, eventID); err != nil {
		return Demographics{}, err
	}
	participants, err := deps.ParticipantStore.ListAllByEvent(ctx, eventID)
	if err != nil {
		return Demographics{}, err
	}
	checkedIn, err := deps.AttendanceStore.CountByEvent(ctx, eventID)
	if err != nil {
		return Demographics{}, err
	}

	gender, faculty, course, year, role := counter{}, counter{}, counter{}, counter{}, counter{}
	for _, p := range participants {
		gender.add(p.Gender)
		faculty.add(p.Faculty)
		course.add(p.Course)
		role.add(p.Role)
		if p.Year > 0 {
			year.add("Year " + strconv.Itoa(p.Year))
		} else {
			year.add("")
		}
	}

	return Demographics{
		EventID:        eventID,
		Registered:     len(participants),
		CheckedIn:      checkedIn,
		AttendanceRate: domainAttendance.Rate(checkedIn, len(participants)),
		ByGender:       gender.buckets(),
		ByFaculty:      faculty.buckets(),
		ByCourse:       course.buckets(),
		ByYear:         year.buckets(),
		ByRole:         role.buckets(),
	}, nil
}

// counter groups values case-insensitively, keeping the first spelling seen.
type counter map[string]*Bucket

func (c counter) add(value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		value = unspecified
	}
	key := strings.ToLower(value)
	if b, ok := c[key]; ok {
		b.Count++
		return
	}
	c[key] = &Bucket{Label: value, Count: 1}
}

func (c counter) buckets() []Bucket {
	out := make([]Bucket, 0, len(c))
	for _, b := range c {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}
