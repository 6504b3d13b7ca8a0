package wallet

import "github.com/shopspring/decimal"

// Split divides a released amount into the platform fee and the worker share.
//
// The fee is amount * rate rounded DOWN to whole cents; the worker receives
// the rest, including any sub cent remainder. This keeps fee + worker ==
// amount exact for every amount, which the ledger invariants require.
func Split(amount decimal.Decimal, rate decimal.Decimal) (fee, worker decimal.Decimal) {
	fee = amount.Mul(rate).RoundDown(2)
	worker = amount.Sub(fee)
	return fee, worker
}
