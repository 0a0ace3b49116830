package mser

// Comparator defines a total order over grayscale threshold values.
// It returns a negative number if a is emitted before b in the sweep,
// zero if they are the same threshold, and a positive number otherwise.
type Comparator func(a, b uint8) int

// ComputeDelta returns the threshold that lies delta steps earlier in the
// sweep direction, clamped to the valid grayscale range.
type ComputeDelta func(value uint8) uint8

// DarkToBrightComparator orders thresholds for a dark-to-bright sweep
// (ascending grayscale values).
func DarkToBrightComparator(a, b uint8) int {
	return int(a) - int(b)
}

// BrightToDarkComparator orders thresholds for a bright-to-dark sweep
// (descending grayscale values).
func BrightToDarkComparator(a, b uint8) int {
	return int(b) - int(a)
}

// DarkToBrightDelta returns a ComputeDelta computing value-delta for a
// dark-to-bright sweep.
func DarkToBrightDelta(delta uint8) ComputeDelta {
	return func(value uint8) uint8 {
		if value < delta {
			return 0
		}
		return value - delta
	}
}

// BrightToDarkDelta returns a ComputeDelta computing value+delta for a
// bright-to-dark sweep.
func BrightToDarkDelta(delta uint8) ComputeDelta {
	return func(value uint8) uint8 {
		if value > 255-delta {
			return 255
		}
		return value + delta
	}
}
