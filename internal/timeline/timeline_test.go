package timeline_test

import (
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railops/railops/internal/classify"
	"github.com/railops/railops/internal/opclock"
	"github.com/railops/railops/internal/roster"
	"github.com/railops/railops/internal/timeline"
)

func trip(code, origin, dep, dest, arr string) roster.EnrichedTripReference {
	return roster.EnrichedTripReference{
		Ref:         roster.NewTripReference(code, "", ""),
		Link:        roster.Link{Kind: roster.LinkDirect, TripCode: code},
		TripCode:    code,
		Origin:      origin,
		Departure:   dep,
		Destination: dest,
		Arrival:     arr,
	}
}

func exampleDuty() (roster.Duty, []roster.EnrichedTripReference) {
	duty := roster.Duty{ID: "D1", Start: "05:00", End: "13:00", HomeLocation: "PC"}
	refs := []roster.EnrichedTripReference{trip("T1", "PC", "06:00", "RB", "07:30")}
	return duty, refs
}

func TestBuild_Example(t *testing.T) {
	duty, refs := exampleDuty()

	segs := timeline.Build(duty, refs)
	require.Len(t, segs, 3)

	assert.Equal(t, timeline.KindRest, segs[0].Kind)
	assert.Equal(t, "05:00", segs[0].StartTime())
	assert.Equal(t, "06:00", segs[0].EndTime())
	assert.Equal(t, "PC", segs[0].Location)
	assert.Equal(t, classify.TagTrunk, segs[0].Tag)
	assert.Equal(t, timeline.RestLong, segs[0].Rest)
	assert.Equal(t, 60, segs[0].Duration())

	assert.Equal(t, timeline.KindActivity, segs[1].Kind)
	assert.Equal(t, "06:00", segs[1].StartTime())
	assert.Equal(t, "07:30", segs[1].EndTime())
	assert.Equal(t, "T1", segs[1].TripCode)
	assert.Equal(t, 0, segs[1].TripIndex)

	assert.Equal(t, timeline.KindRest, segs[2].Kind)
	assert.Equal(t, "07:30", segs[2].StartTime())
	assert.Equal(t, "13:00", segs[2].EndTime())
	assert.Equal(t, "RB", segs[2].Location)
	assert.Equal(t, timeline.RestLong, segs[2].Rest)
}

func TestBuild_EmptyForNonPositiveDuration(t *testing.T) {
	_, refs := exampleDuty()

	assert.Empty(t, timeline.Build(roster.Duty{Start: "13:00", End: "05:00"}, refs))
	assert.Empty(t, timeline.Build(roster.Duty{Start: "05:00", End: "05:00"}, refs))
	assert.Empty(t, timeline.Build(roster.Duty{Start: "", End: "05:00"}, refs))
}

func TestBuild_NoTrips(t *testing.T) {
	segs := timeline.Build(roster.Duty{Start: "05:00", End: "05:10", HomeLocation: "SR"}, nil)

	require.Len(t, segs, 1)
	assert.Equal(t, timeline.KindRest, segs[0].Kind)
	assert.Equal(t, "SR", segs[0].Location)
	assert.Equal(t, timeline.RestWait, segs[0].Rest)
	assert.Equal(t, -1, segs[0].TripIndex)
}

func TestBuild_GapLabelsUsePreviousDestination(t *testing.T) {
	duty := roster.Duty{Start: "05:00", End: "10:00", HomeLocation: "PC"}
	refs := []roster.EnrichedTripReference{
		trip("T1", "PC", "05:00", "NA", "06:00"),
		trip("T2", "NA", "06:10", "PC", "07:00"),
		trip("T3", "PC", "08:00", "PN", "09:00"),
	}

	segs := timeline.Build(duty, refs)
	require.Len(t, segs, 6)

	assert.Equal(t, timeline.KindActivity, segs[0].Kind)
	assert.Equal(t, "NA", segs[1].Location)
	assert.Equal(t, timeline.RestWait, segs[1].Rest)
	assert.Equal(t, timeline.KindActivity, segs[2].Kind)
	assert.Equal(t, "PC", segs[3].Location)
	assert.Equal(t, timeline.RestLong, segs[3].Rest)
	assert.Equal(t, timeline.KindActivity, segs[4].Kind)
	assert.Equal(t, "PN", segs[5].Location)
	assert.Equal(t, classify.TagSabadell, segs[5].Tag)
}

func TestBuild_FirstGapUsesOriginOverride(t *testing.T) {
	duty := roster.Duty{Start: "05:00", End: "08:00", HomeLocation: "PC"}
	ref := trip("T42", "PN", "06:00", "RB", "07:00")
	ref.Link = roster.Link{Kind: roster.LinkProxy, TripCode: "T42", OriginOverride: "SC"}

	segs := timeline.Build(duty, []roster.EnrichedTripReference{ref})
	require.NotEmpty(t, segs)
	assert.Equal(t, "SC", segs[0].Location)
}

func TestBuild_CrossesMidnight(t *testing.T) {
	duty := roster.Duty{Start: "22:00", End: "01:30", HomeLocation: "PC"}
	refs := []roster.EnrichedTripReference{trip("T9", "PC", "23:50", "NA", "00:40")}

	segs := timeline.Build(duty, refs)
	require.Len(t, segs, 3)
	assert.Equal(t, "23:50", segs[1].StartTime())
	assert.Equal(t, "00:40", segs[1].EndTime())
	assert.Equal(t, 50, segs[1].Duration())
	assert.Equal(t, "01:30", segs[2].EndTime())
}

func TestBuild_DegenerateTripsEmitNothing(t *testing.T) {
	duty := roster.Duty{Start: "05:00", End: "08:00", HomeLocation: "PC"}
	refs := []roster.EnrichedTripReference{
		trip("BAD", "PC", "", "RB", ""),
		trip("T1", "PC", "06:00", "RB", "07:00"),
		trip("BACKWARDS", "RB", "07:30", "PC", "07:10"),
	}

	segs := timeline.Build(duty, refs)
	require.Len(t, segs, 3)
	assert.Equal(t, 1, segs[1].TripIndex)
	assertTiles(t, duty, segs)
}

func TestBuild_ClampsOverlapsAndDutyBounds(t *testing.T) {
	duty := roster.Duty{Start: "06:00", End: "08:00", HomeLocation: "PC"}
	refs := []roster.EnrichedTripReference{
		trip("EARLY", "PC", "05:30", "SR", "06:30"),
		trip("OVERLAP", "SR", "06:20", "PC", "07:00"),
		trip("LATE", "PC", "07:45", "NA", "08:40"),
	}

	segs := timeline.Build(duty, refs)
	assertTiles(t, duty, segs)

	require.Len(t, segs, 4)
	assert.Equal(t, "06:00", segs[0].StartTime())
	assert.Equal(t, "EARLY", segs[0].TripCode)
	assert.Equal(t, "06:30", segs[1].StartTime())
	assert.Equal(t, "OVERLAP", segs[1].TripCode)
	assert.Equal(t, timeline.KindRest, segs[2].Kind)
	assert.Equal(t, "LATE", segs[3].TripCode)
	assert.Equal(t, "08:00", segs[3].EndTime())
}

func TestSortByDeparture(t *testing.T) {
	refs := []roster.EnrichedTripReference{
		trip("NIGHT", "PC", "00:30", "NA", "01:00"),
		trip("UNKNOWN", "PC", "", "NA", ""),
		trip("MORNING", "PC", "06:00", "NA", "07:00"),
		trip("EVENING", "PC", "22:00", "NA", "23:00"),
	}

	sorted := timeline.SortByDeparture(refs)

	codes := make([]string, 0, len(sorted))
	for _, r := range sorted {
		codes = append(codes, r.TripCode)
	}
	assert.Equal(t, []string{"MORNING", "EVENING", "NIGHT", "UNKNOWN"}, codes)
	assert.Equal(t, "NIGHT", refs[0].TripCode, "input must not be reordered")
}

func TestIntervalState(t *testing.T) {
	assert.Equal(t, timeline.StateBefore, timeline.IntervalState(359, 360, 450))
	assert.Equal(t, timeline.StateActive, timeline.IntervalState(360, 360, 450))
	assert.Equal(t, timeline.StateActive, timeline.IntervalState(449, 360, 450))
	assert.Equal(t, timeline.StateAfter, timeline.IntervalState(450, 360, 450))
}

func TestTripState(t *testing.T) {
	state, ok := timeline.TripState(opclock.ToMinutes("06:45"), "06:00", "07:30")
	require.True(t, ok)
	assert.Equal(t, timeline.StateActive, state)

	_, ok = timeline.TripState(opclock.ToMinutes("06:45"), "", "07:30")
	assert.False(t, ok)
}

func TestResolveDuty_Example(t *testing.T) {
	duty, refs := exampleDuty()

	status := timeline.ResolveDuty(duty, refs, opclock.ToMinutes("06:45"))
	assert.Equal(t, timeline.StatusLiveTrip, status.Kind)
	assert.Equal(t, "T1", status.TripCode)
	assert.Equal(t, 0, status.TripIndex)
	assert.Equal(t, 1, status.SegmentIndex)
	require.NotNil(t, status.RemainingMinutes)
	assert.Equal(t, 45, *status.RemainingMinutes)
	assert.Equal(t, "trip-0", status.Target())
	assert.Contains(t, status.Label, "T1")
}

func TestResolveDuty_States(t *testing.T) {
	duty, refs := exampleDuty()

	tests := []struct {
		name          string
		at            string
		wantKind      timeline.StatusKind
		wantRemaining *int
		wantSegment   int
		wantLocation  string
	}{
		{name: "before start", at: "04:30", wantKind: timeline.StatusNotStarted, wantRemaining: intPtr(30), wantSegment: -1},
		{name: "first rest", at: "05:10", wantKind: timeline.StatusAtRest, wantRemaining: intPtr(50), wantSegment: 0, wantLocation: "PC"},
		{name: "trip starts on boundary", at: "06:00", wantKind: timeline.StatusLiveTrip, wantRemaining: intPtr(90), wantSegment: 1},
		{name: "rest after trip on boundary", at: "07:30", wantKind: timeline.StatusAtRest, wantRemaining: intPtr(330), wantSegment: 2, wantLocation: "RB"},
		{name: "duty end", at: "13:00", wantKind: timeline.StatusFinished, wantSegment: -1},
		{name: "after midnight is after the duty", at: "01:00", wantKind: timeline.StatusFinished, wantSegment: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := timeline.ResolveDuty(duty, refs, opclock.ToMinutes(tt.at))
			assert.Equal(t, tt.wantKind, status.Kind)
			assert.Equal(t, tt.wantRemaining, status.RemainingMinutes)
			assert.Equal(t, tt.wantSegment, status.SegmentIndex)
			assert.Equal(t, tt.wantLocation, status.Location)
		})
	}
}

func TestResolveDuty_NoTripsIsRestOverWholeDuty(t *testing.T) {
	duty := roster.Duty{Start: "05:00", End: "13:00", HomeLocation: "RB"}

	status := timeline.ResolveDuty(duty, nil, opclock.ToMinutes("09:00"))
	assert.Equal(t, timeline.StatusAtRest, status.Kind)
	assert.Equal(t, "RB", status.Location)
	assert.Equal(t, timeline.RestLong, status.Rest)
	require.NotNil(t, status.RemainingMinutes)
	assert.Equal(t, 240, *status.RemainingMinutes)
	assert.Equal(t, "segment-0", status.Target())
}

func TestResolveDuty_FinishedHasNoTarget(t *testing.T) {
	duty, refs := exampleDuty()

	status := timeline.ResolveDuty(duty, refs, opclock.ToMinutes("14:00"))
	assert.Equal(t, "", status.Target())
	assert.Nil(t, status.RemainingMinutes)
}

func TestResolveDuty_UnknownBoundsAgreeWithBuild(t *testing.T) {
	_, refs := exampleDuty()
	now := opclock.ToMinutes("09:00")

	for _, duty := range []roster.Duty{
		{Start: "5h00", End: "13:00", HomeLocation: "PC"},
		{Start: "05:00", End: "xx", HomeLocation: "PC"},
	} {
		assert.Empty(t, timeline.Build(duty, refs))

		status := timeline.ResolveDuty(duty, refs, now)
		assert.Equal(t, timeline.StatusUnknown, status.Kind)
		assert.Nil(t, status.RemainingMinutes)
		assert.NotContains(t, status.Label, "00:00")
		assert.Equal(t, -1, status.SegmentIndex)
		assert.Equal(t, "", status.Target())
	}
}

func TestResolveDutyAt(t *testing.T) {
	duty, refs := exampleDuty()
	at := time.Date(2026, 5, 4, 6, 45, 30, 0, time.UTC)

	assert.Equal(t, timeline.StatusLiveTrip, timeline.ResolveDutyAt(duty, refs, at).Kind)
}

// Randomized duties must tile exactly, agree with the status resolver inside
// every segment, and switch to the next segment on each boundary.
func TestBuildAndResolve_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for n := 0; n < 300; n++ {
		duty, refs := randomDuty(rng)
		segs := timeline.Build(duty, refs)

		start := opclock.ToMinutes(duty.Start)
		end := opclock.ToMinutes(duty.End)
		if end <= start {
			assert.Empty(t, segs)
			continue
		}
		assertTiles(t, duty, segs)

		for i, seg := range segs {
			for now := seg.Start + 1; now < seg.End; now++ {
				status := timeline.ResolveDuty(duty, refs, now)
				require.NotNil(t, status.RemainingMinutes)
				assert.Equal(t, seg.End-now, *status.RemainingMinutes)
				assert.Equal(t, i, status.SegmentIndex)
				if seg.Kind == timeline.KindActivity {
					assert.Equal(t, timeline.StatusLiveTrip, status.Kind)
					assert.Equal(t, seg.TripIndex, status.TripIndex)
				} else {
					assert.Equal(t, timeline.StatusAtRest, status.Kind)
				}
			}

			if i+1 < len(segs) {
				status := timeline.ResolveDuty(duty, refs, seg.End)
				assert.Equal(t, i+1, status.SegmentIndex, "boundary must resolve to the next segment")
			} else {
				assert.Equal(t, timeline.StatusFinished, timeline.ResolveDuty(duty, refs, seg.End).Kind)
			}
		}
	}
}

func randomDuty(rng *rand.Rand) (roster.Duty, []roster.EnrichedTripReference) {
	const lo, hi = 240, 1679

	start := lo + rng.Intn(900)
	end := start - 30 + rng.Intn(700)
	if end > hi {
		end = hi
	}

	duty := roster.Duty{
		ID:           "R",
		Start:        opclock.FromMinutes(start),
		End:          opclock.FromMinutes(end),
		HomeLocation: "PC",
	}

	stations := []string{"PC", "SR", "NA", "PN", "RB", "SC"}
	var refs []roster.EnrichedTripReference
	for i := rng.Intn(6); i > 0; i-- {
		dep := max(lo, start-30+rng.Intn(max(1, end-start+60)))
		arr := min(hi, dep-5+rng.Intn(90))
		refs = append(refs, trip("X", stations[rng.Intn(len(stations))], opclock.FromMinutes(dep),
			stations[rng.Intn(len(stations))], opclock.FromMinutes(arr)))
	}
	sort.SliceStable(refs, func(i, j int) bool {
		return opclock.ToMinutes(refs[i].Departure) < opclock.ToMinutes(refs[j].Departure)
	})
	for i := range refs {
		refs[i].TripCode = string(rune('A' + i))
	}

	return duty, refs
}

func assertTiles(t *testing.T, duty roster.Duty, segs []timeline.Segment) {
	t.Helper()
	require.NotEmpty(t, segs)

	assert.Equal(t, opclock.ToMinutes(duty.Start), segs[0].Start)
	assert.Equal(t, opclock.ToMinutes(duty.End), segs[len(segs)-1].End)
	for i, s := range segs {
		assert.Less(t, s.Start, s.End, "segment %d must have positive width", i)
		if i > 0 {
			assert.Equal(t, segs[i-1].End, s.Start, "segment %d must start where %d ends", i, i-1)
		}
	}
}

func intPtr(v int) *int {
	return &v
}
