package booking

import "errors"

var ErrInvalidRange = errors.New("invalid date range")

// Quote returns the amount due for a rental: half the full rate times the
// inclusive day count, floored. The halving is the advance-payment policy,
// not a bug; the remainder is settled on vehicle return.
func Quote(ratePerDay int64, r DateRange) (int64, error) {
	days := r.Days()
	if days < 1 {
		return 0, ErrInvalidRange
	}

	return ratePerDay * int64(days) / 2, nil
}
