package objective

// CheckpointCadence is the fixed interval, in evaluations, at which the
// wrapper signals a checkpoint opportunity.
const CheckpointCadence = 2

// EffectiveCeiling converts a requested evaluation count into the ceiling
// actually enforced by the wrapper, padded so that the last permitted
// evaluation lands exactly on a checkpoint boundary. Without the padding a
// resumed run could lose an evaluation to rounding.
//
// The result is always odd, so the ceiling never coincides with the even
// checkpoint cadence. A requested count of 0 yields -1, which the wrapper
// treats as unbounded.
func EffectiveCeiling(requested int) int {
	h := requested / 2
	if requested%2 == 0 {
		return requested + 2*h - 1
	}
	return requested + 2*h
}
