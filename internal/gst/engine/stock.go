package engine

// DebitStock removes qty from available without going below zero. It
// returns the remaining quantity and how much was actually removed.
func DebitStock(available, qty int64) (remaining, debited int64) {
	if qty <= 0 {
		return available, 0
	}
	if available <= 0 {
		return 0, 0
	}
	if qty >= available {
		return 0, available
	}
	return available - qty, qty
}

// CreditStock adds qty to available. Non-positive quantities are ignored.
func CreditStock(available, qty int64) int64 {
	if qty <= 0 {
		return available
	}
	return available + qty
}
