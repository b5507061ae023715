package calculator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/vedbot/internal/rates"
)

func run(t *testing.T, inputs ...string) Transition {
	t.Helper()
	step := Start()
	var tr Transition
	for i, in := range inputs {
		tr = Advance(step, in)
		if i < len(inputs)-1 {
			require.Equal(t, OutcomeNext, tr.Outcome, "input %d (%q)", i, in)
			step = tr.Next
		}
	}
	return tr
}

func TestFullDialogue(t *testing.T) {
	tr := run(t, "A", "B", "150,5", "0,5", "3")
	require.Equal(t, OutcomeComplete, tr.Outcome)
	assert.Equal(t, Quote{From: "A", To: "B", Weight: 150.5, Volume: 0.5, Places: 3}, tr.Quote)

	cost := Compute(tr.Quote, rates.Defaults)
	assert.InDelta(t, 1.0, cost.EffectiveVolume, 1e-9)
	assert.InDelta(t, 50.0, cost.ToManzhouli, 1e-9)
	assert.InDelta(t, 110.0, cost.FromManzhouli, 1e-9)
	assert.InDelta(t, 160.0, cost.Total, 1e-9)
}

func TestComputeEffectiveVolume(t *testing.T) {
	cases := []struct {
		name   string
		weight float64
		volume float64
		want   float64
	}{
		{"floor", 10, 0.1, 1.0},
		{"volume wins", 300, 2.5, 2.5},
		{"weight wins", 900, 2, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Compute(Quote{Weight: tc.weight, Volume: tc.volume}, rates.Defaults)
			assert.InDelta(t, tc.want, c.EffectiveVolume, 1e-9)
			assert.InDelta(t, tc.want*50, c.ToManzhouli, 1e-9)
			assert.InDelta(t, tc.want*110, c.FromManzhouli, 1e-9)
			assert.InDelta(t, c.ToManzhouli+c.FromManzhouli, c.Total, 1e-9)
		})
	}
}

func TestLocationsStoredVerbatim(t *testing.T) {
	tr := Advance(Start(), "  Гуанчжоу, склад 5 ")
	require.Equal(t, OutcomeNext, tr.Outcome)
	assert.Equal(t, AwaitDestination{From: "  Гуанчжоу, склад 5 "}, tr.Next)
}

func TestInvalidNumberReprompts(t *testing.T) {
	steps := []Step{
		AwaitWeight{From: "A", To: "B"},
		AwaitVolume{From: "A", To: "B", Weight: 10},
		AwaitPlaces{From: "A", To: "B", Weight: 10, Volume: 1},
	}
	for _, s := range steps {
		for _, in := range []string{"", "abc", "1e5", "NaN", "inf", "1,2,3", "1.5kg", "--1"} {
			tr := Advance(s, in)
			assert.Equal(t, OutcomeReprompt, tr.Outcome, "%s with %q", s.Name(), in)
			assert.Equal(t, s, tr.Next, "%s with %q must not change", s.Name(), in)
		}
	}
}

func TestBack(t *testing.T) {
	cases := []struct {
		from Step
		want Step
	}{
		{AwaitDestination{From: "A"}, AwaitOrigin{}},
		{AwaitWeight{From: "A", To: "B"}, AwaitDestination{From: "A"}},
		{AwaitVolume{From: "A", To: "B", Weight: 5}, AwaitWeight{From: "A", To: "B"}},
		{AwaitPlaces{From: "A", To: "B", Weight: 5, Volume: 2}, AwaitVolume{From: "A", To: "B", Weight: 5}},
	}
	for _, tc := range cases {
		tr := Advance(tc.from, BackLabel)
		require.Equal(t, OutcomeNext, tr.Outcome, tc.from.Name())
		assert.Equal(t, tc.want, tr.Next)
		assert.Equal(t, tc.from.Index()-1, tr.Next.Index())
	}

	tr := Advance(AwaitOrigin{}, BackLabel)
	assert.Equal(t, OutcomeExit, tr.Outcome)
	assert.Nil(t, tr.Next)
}

func TestPlacesTruncated(t *testing.T) {
	s := AwaitPlaces{From: "A", To: "B", Weight: 1, Volume: 1}
	for in, want := range map[string]int{"3": 3, "3,9": 3, "2.5": 2, "-1,7": -1, ",5": 0} {
		tr := Advance(s, in)
		require.Equal(t, OutcomeComplete, tr.Outcome, in)
		assert.Equal(t, want, tr.Quote.Places, in)
	}
	tr := Advance(s, "99999999999")
	require.Equal(t, OutcomeComplete, tr.Outcome, "large counts beyond int32 are accepted")
	assert.EqualValues(t, int64(99999999999), tr.Quote.Places)
	assert.Equal(t, OutcomeReprompt, Advance(s, "1"+strings.Repeat("0", 25)).Outcome)
}

func TestParseNumber(t *testing.T) {
	ok := map[string]float64{
		"150":    150,
		"150,5":  150.5,
		"150.5":  150.5,
		" 0,5 ":  0.5,
		"+2":     2,
		"-3.25":  -3.25,
		",5":     0.5,
		"7.":     7,
		"007,10": 7.1,
	}
	for in, want := range ok {
		got, valid := ParseNumber(in)
		require.True(t, valid, in)
		assert.InDelta(t, want, got, 1e-9, in)
	}
	for _, in := range []string{"", " ", ".", "1 000", "1_000", "0x10", "1e3", "Infinity", "5,5,5", "1.2.3", "٣"} {
		_, valid := ParseNumber(in)
		assert.False(t, valid, in)
	}
}

func TestRecordRoundTrip(t *testing.T) {
	steps := []Step{
		AwaitOrigin{},
		AwaitDestination{From: "A"},
		AwaitWeight{From: "A", To: "B"},
		AwaitVolume{From: "A", To: "B", Weight: 150.5},
		AwaitPlaces{From: "A", To: "B", Weight: 150.5, Volume: 0.5},
	}
	for _, s := range steps {
		r := ToRecord(s)
		assert.Equal(t, s.Index(), r.Step)
		back, err := FromRecord(r)
		require.NoError(t, err)
		assert.Equal(t, s, back)
	}
}

func TestFromRecordInvalid(t *testing.T) {
	from := "A"
	for _, r := range []Record{
		{Step: 5},
		{Step: -1},
		{Step: 2, From: &from},
		{Step: 1},
	} {
		_, err := FromRecord(r)
		assert.ErrorIs(t, err, ErrInvalidRecord, "step %d", r.Step)
	}
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "reprompt", OutcomeReprompt.String())
	assert.Equal(t, "outcome(9)", Outcome(9).String())
}
