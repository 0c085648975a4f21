package bitrange

import (
	"fmt"
	"math"
)

// SafeInt64ToInt32 safely narrows int64 to int32.
// Returns an error if the value doesn't fit.
func SafeInt64ToInt32(v int64) (int32, error) {
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, fmt.Errorf("int64 value %d does not fit in int32", v)
	}
	return int32(v), nil
}

// SafeInt64ToInt safely narrows int64 to int, used when bit-range bounds
// parsed out of a document must become Go int field widths/offsets.
func SafeInt64ToInt(v int64) (int, error) {
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, fmt.Errorf("int64 value %d does not fit in a bit-range bound", v)
	}
	return int(v), nil
}

// SafeIntToUint narrows a non-negative int to uint, rejecting negatives
// rather than silently wrapping.
func SafeIntToUint(v int) (uint, error) {
	if v < 0 {
		return 0, fmt.Errorf("cannot convert negative int %d to uint", v)
	}
	return uint(v), nil
}

// SafeUint64ToUint32 narrows uint64 to uint32.
func SafeUint64ToUint32(v uint64) (uint32, error) {
	if v > math.MaxUint32 {
		return 0, fmt.Errorf("uint64 value 0x%X exceeds uint32 maximum", v)
	}
	return uint32(v), nil
}
