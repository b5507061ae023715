package logger

import (
	"strconv"
	"strings"
	"sync/atomic"
)

// ratioSampler passes num out of every den events. A zero ratio passes all.
// The ratio is packed into one word so Allow never takes a lock.
type ratioSampler struct {
	ratio atomic.Uint64 // num<<32 | den
	seen  atomic.Uint64
}

func newRatioSampler(num, den int) *ratioSampler {
	s := &ratioSampler{}
	s.Set(num, den)
	return s
}

func (s *ratioSampler) Set(num, den int) {
	var packed uint64
	if num > 0 && den > 0 {
		packed = uint64(min(num, den))<<32 | uint64(uint32(den))
	}
	s.ratio.Store(packed)
	s.seen.Store(0)
}

func (s *ratioSampler) Allow() bool {
	r := s.ratio.Load()
	den := r & 0xffffffff
	if den == 0 {
		return true
	}
	return (s.seen.Add(1)-1)%den < r>>32
}

// parseRatioSpec reads "n/d", or a bare "d" meaning 1/d. Anything else is 0/0.
func parseRatioSpec(spec string) (int, int) {
	n, d, hasSlash := strings.Cut(strings.TrimSpace(spec), "/")
	if !hasSlash {
		if v, err := strconv.Atoi(n); err == nil && v > 0 {
			return 1, v
		}
		return 0, 0
	}
	num, err1 := strconv.Atoi(strings.TrimSpace(n))
	den, err2 := strconv.Atoi(strings.TrimSpace(d))
	if err1 != nil || err2 != nil {
		return 0, 0
	}
	return num, den
}
