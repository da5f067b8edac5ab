package model

// Counts is the raw aggregate behind the dashboard.  It is scoped either to
// the gyms of one owner or to the whole platform.
type Counts struct {
    Gyms     int64
    Plans    int64
    Bookings map[BookingStatus]int64
    // GrossCents sums the bookings that count toward revenue.
    GrossCents int64
}
