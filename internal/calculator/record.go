package calculator

import (
	"errors"
	"fmt"
)

// ErrInvalidRecord reports a stored session that does not describe a valid Step.
var ErrInvalidRecord = errors.New("calculator: invalid session record")

// Record is the flat storage shape of a Step. Fields not yet collected are nil.
type Record struct {
	Step   int      `db:"step"`
	From   *string  `db:"from_location"`
	To     *string  `db:"to_location"`
	Weight *float64 `db:"weight"`
	Volume *float64 `db:"volume"`
}

// ToRecord flattens s.
func ToRecord(s Step) Record {
	switch v := s.(type) {
	case AwaitDestination:
		return Record{Step: 1, From: &v.From}
	case AwaitWeight:
		return Record{Step: 2, From: &v.From, To: &v.To}
	case AwaitVolume:
		return Record{Step: 3, From: &v.From, To: &v.To, Weight: &v.Weight}
	case AwaitPlaces:
		return Record{Step: 4, From: &v.From, To: &v.To, Weight: &v.Weight, Volume: &v.Volume}
	}
	return Record{Step: 0}
}

// FromRecord rebuilds the Step stored in r.
func FromRecord(r Record) (Step, error) {
	need := func(ok bool, field string) error {
		if ok {
			return nil
		}
		return fmt.Errorf("%w: step %d without %s", ErrInvalidRecord, r.Step, field)
	}
	if r.Step >= 1 {
		if err := need(r.From != nil, "from_location"); err != nil {
			return nil, err
		}
	}
	if r.Step >= 2 {
		if err := need(r.To != nil, "to_location"); err != nil {
			return nil, err
		}
	}
	if r.Step >= 3 {
		if err := need(r.Weight != nil, "weight"); err != nil {
			return nil, err
		}
	}
	if r.Step >= 4 {
		if err := need(r.Volume != nil, "volume"); err != nil {
			return nil, err
		}
	}

	switch r.Step {
	case 0:
		return AwaitOrigin{}, nil
	case 1:
		return AwaitDestination{From: *r.From}, nil
	case 2:
		return AwaitWeight{From: *r.From, To: *r.To}, nil
	case 3:
		return AwaitVolume{From: *r.From, To: *r.To, Weight: *r.Weight}, nil
	case 4:
		return AwaitPlaces{From: *r.From, To: *r.To, Weight: *r.Weight, Volume: *r.Volume}, nil
	}
	return nil, fmt.Errorf("%w: step %d out of range", ErrInvalidRecord, r.Step)
}
