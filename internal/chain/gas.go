package chain

// WithGasMargin adds 10% to a gas estimate, rounding down.
func WithGasMargin(estimate uint64) uint64 {
	return estimate * (10_000 + 1_000) / 10_000
}
