package booking

import (
	"testing"

	"academy-backend/models"

	"github.com/stretchr/testify/assert"
)

func slot(id, coachID, branchID, date, start string) models.SessionSlot {
	return models.SessionSlot{
		ID:                  id,
		CoachID:             coachID,
		BranchID:            branchID,
		SessionDate:         date,
		StartTime:           start,
		EndTime:             "23:00",
		Status:              models.SessionAvailable,
		CoachName:           "Ramy Hassan",
		CoachSpecialization: "Footwork",
		BranchName:          "Downtown Club",
	}
}

func ids(slots []models.SessionSlot) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.ID
	}
	return out
}

func TestTimeBucketBoundaries(t *testing.T) {
	tests := []struct {
		start  string
		bucket string
		want   bool
	}{
		{"06:00", BucketMorning, true},
		{"06:00", BucketAfternoon, false},
		{"06:00", BucketEvening, false},
		{"11:59", BucketMorning, true},
		{"12:00", BucketMorning, false},
		{"12:00", BucketAfternoon, true},
		{"16:59", BucketAfternoon, true},
		{"17:00", BucketAfternoon, false},
		{"17:00", BucketEvening, true},
		{"21:59", BucketEvening, true},
		{"22:00", BucketEvening, false},
		{"05:00", BucketMorning, false},
	}

	for _, tt := range tests {
		t.Run(tt.start+"_"+tt.bucket, func(t *testing.T) {
			s := slot("s1", "c1", "b1", "2026-09-01", tt.start)
			got := Matches(s, Filters{Time: tt.bucket})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExactTimeFilter(t *testing.T) {
	s := slot("s1", "c1", "b1", "2026-09-01", "09:00")

	assert.True(t, Matches(s, Filters{Time: "09:00"}))
	assert.False(t, Matches(s, Filters{Time: "09:30"}))
}

func TestFreeTextSearchAcrossFields(t *testing.T) {
	s := slot("s1", "c1", "b1", "2026-09-01", "09:00")

	// OR across coach name, specialization, and branch name.
	assert.True(t, Matches(s, Filters{Query: "ramy"}))
	assert.True(t, Matches(s, Filters{Query: "FOOTWORK"}))
	assert.True(t, Matches(s, Filters{Query: "downtown"}))
	assert.False(t, Matches(s, Filters{Query: "yoga"}))
}

func TestSearchIsANDedWithOtherFilters(t *testing.T) {
	s := slot("s1", "c1", "b1", "2026-09-01", "09:00")

	assert.True(t, Matches(s, Filters{Query: "ramy", Time: BucketMorning}))
	assert.False(t, Matches(s, Filters{Query: "ramy", Time: BucketEvening}))
}

func TestApplyConjunction(t *testing.T) {
	slots := []models.SessionSlot{
		slot("s1", "c1", "b1", "2026-09-01", "09:00"),
		slot("s2", "c2", "b1", "2026-09-01", "13:00"),
		slot("s3", "c1", "b2", "2026-09-02", "18:00"),
		slot("s4", "c1", "b1", "2026-09-02", "07:30"),
	}

	got := Apply(slots, Filters{CoachID: "c1", Time: BucketMorning})
	assert.Equal(t, []string{"s1", "s4"}, ids(got))

	got = Apply(slots, Filters{BranchID: "b1", Date: "2026-09-01"})
	assert.Equal(t, []string{"s1", "s2"}, ids(got))

	got = Apply(slots, Filters{})
	assert.Len(t, got, 4)
}

func TestApplyOrderIndependence(t *testing.T) {
	slots := []models.SessionSlot{
		slot("s1", "c1", "b1", "2026-09-01", "09:00"),
		slot("s2", "c2", "b2", "2026-09-01", "09:00"),
		slot("s3", "c1", "b2", "2026-09-02", "18:00"),
	}

	f := Filters{CoachID: "c1", BranchID: "b2", Date: "2026-09-02", Time: BucketEvening, Query: "footwork"}

	// The conjunction is pure: any subset of the criteria removed in any
	// order yields a superset of the full filter's result.
	full := Apply(slots, f)
	assert.Equal(t, []string{"s3"}, ids(full))

	partial := Apply(Apply(Apply(slots, Filters{Query: f.Query}), Filters{Date: f.Date, Time: f.Time}), Filters{CoachID: f.CoachID, BranchID: f.BranchID})
	assert.Equal(t, ids(full), ids(partial))
}

func TestMalformedStartTimeNeverMatchesBuckets(t *testing.T) {
	s := slot("s1", "c1", "b1", "2026-09-01", "noon")

	assert.False(t, Matches(s, Filters{Time: BucketMorning}))
	assert.False(t, Matches(s, Filters{Time: BucketAfternoon}))
	assert.False(t, Matches(s, Filters{Time: BucketEvening}))
}
