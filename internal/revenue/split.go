// Package revenue holds the commission split between gym owners and the
// platform.  Every place that reports owner earnings goes through Split so
// the rate is defined once.
package revenue

// PlatformRateBps is the platform commission in basis points (15%).
const PlatformRateBps = 1500

const bpsDenominator = 10000

// Share is the division of a gross amount, in minor currency units.
type Share struct {
	Gross    int64 `json:"gross_cents"`
	Owner    int64 `json:"owner_cents"`
	Platform int64 `json:"platform_cents"`
}

// Split divides gross into the owner's and the platform's part.  The
// platform part is rounded half up; the owner receives the remainder so the
// two parts always add up to gross.
func Split(gross int64) Share {
	platform := (gross*PlatformRateBps + bpsDenominator/2) / bpsDenominator
	return Share{Gross: gross, Owner: gross - platform, Platform: platform}
}

// Available is the amount an owner may still withdraw: the owner share of
// qualifying bookings minus payouts already requested or paid.
func Available(gross, committed int64) int64 {
	return Split(gross).Owner - committed
}
