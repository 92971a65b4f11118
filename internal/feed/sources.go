package feed

import (
	"hash/fnv"
	"math"
	"math/bits"
)

// sourcePrecision gives 4096 one-byte registers, about 1.6% standard error.
const sourcePrecision = 12

// sourceSketch estimates how many distinct devices have pushed logs with a
// HyperLogLog sketch, so memory stays fixed however many senders show up.
type sourceSketch struct {
	registers []uint8
	alpha     float64
}

func newSourceSketch() *sourceSketch {
	m := 1 << sourcePrecision
	return &sourceSketch{
		registers: make([]uint8, m),
		alpha:     0.7213 / (1 + 1.079/float64(m)),
	}
}

func (s *sourceSketch) add(source string) {
	h := fnv.New64a()
	h.Write([]byte(source))
	sum := mix64(h.Sum64())

	idx := sum & (1<<sourcePrecision - 1)
	rest := sum >> sourcePrecision

	// rank is the position of the first set bit in the remaining 64-p bits.
	rank := uint8(64 - sourcePrecision + 1)
	if rest != 0 {
		rank = uint8(bits.LeadingZeros64(rest) - sourcePrecision + 1)
	}
	if rank > s.registers[idx] {
		s.registers[idx] = rank
	}
}

// mix64 is the murmur3 finalizer. FNV-1a leaves similar host names with
// correlated low bits, which skews register choice and ranks.
func mix64(h uint64) uint64 {
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	h *= 0xc4ceb9fe1a85ec53
	h ^= h >> 33
	return h
}

func (s *sourceSketch) estimate() uint64 {
	m := float64(len(s.registers))
	sum := 0.0
	zeros := 0
	for _, r := range s.registers {
		sum += 1.0 / float64(uint64(1)<<r)
		if r == 0 {
			zeros++
		}
	}

	est := s.alpha * m * m / sum
	// Linear counting is far more accurate while most registers are empty,
	// which is the normal case for a handful of switches.
	if est <= 2.5*m && zeros > 0 {
		est = m * math.Log(m/float64(zeros))
	}
	return uint64(math.Round(est))
}

func (s *sourceSketch) reset() {
	clear(s.registers)
}
