package payment

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Split divides a gross amount into platform fee and shop net using the
// organization's fee percentage. Both sides are rounded to cents; the net is
// derived from the rounded fee so the parts always sum to the gross.
func Split(amount, feePercent decimal.Decimal) (fee, net decimal.Decimal) {
	fee = amount.Mul(feePercent).Div(hundred).Round(2)
	net = amount.Sub(fee)
	return fee, net
}
