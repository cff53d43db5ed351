package pricing

import (
	"testing"
	"time"

	"kase/internal/domain/listings"
	"kase/internal/domain/shared/money"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNights(t *testing.T) {
	cases := []struct {
		name     string
		kind     listings.BookingKind
		checkIn  time.Time
		checkOut time.Time
		want     int
	}{
		{"stay three nights", listings.KindStay, date(2024, 6, 1), date(2024, 6, 4), 3},
		{"stay one night", listings.KindStay, date(2024, 6, 1), date(2024, 6, 2), 1},
		{"stay same day", listings.KindStay, date(2024, 6, 1), date(2024, 6, 1), 0},
		{"stay inverted range", listings.KindStay, date(2024, 6, 4), date(2024, 6, 1), 0},
		{"stay missing checkout", listings.KindStay, date(2024, 6, 1), time.Time{}, 0},
		{"stay missing checkin", listings.KindStay, time.Time{}, date(2024, 6, 4), 0},
		{"stay partial night rounds up", listings.KindStay, date(2024, 6, 1), date(2024, 6, 2).Add(6 * time.Hour), 2},
		{"experience ignores range", listings.KindExperience, date(2024, 6, 1), date(2024, 6, 9), 1},
		{"experience without dates", listings.KindExperience, time.Time{}, time.Time{}, 1},
		{"package single unit", listings.KindPackage, date(2024, 6, 1), time.Time{}, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Nights(tc.kind, tc.checkIn, tc.checkOut)
			if got != tc.want {
				t.Errorf("Nights(%v) = %d, want %d", tc.kind, got, tc.want)
			}
		})
	}
}

func TestTotal(t *testing.T) {
	usd := func(amount int64) money.Money { return money.Must(amount, "USD") }

	cases := []struct {
		name   string
		kind   listings.BookingKind
		unit   money.Money
		nights int
		guests int
		want   money.Money
	}{
		{"stay bills per night", listings.KindStay, usd(100), 3, 2, usd(300)},
		{"stay ignores guests", listings.KindStay, usd(100), 3, 9, usd(300)},
		{"stay zero nights totals zero", listings.KindStay, usd(100), 0, 2, usd(0)},
		{"stay negative nights totals zero", listings.KindStay, usd(100), -2, 2, usd(0)},
		{"experience bills per person", listings.KindExperience, usd(50), 1, 3, usd(150)},
		{"experience ignores nights", listings.KindExperience, usd(50), 7, 3, usd(150)},
		{"package bills per person", listings.KindPackage, usd(200), 1, 4, usd(800)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Total(tc.kind, tc.unit, tc.nights, tc.guests)
			if err != nil {
				t.Fatalf("Total returned error: %v", err)
			}
			if got != tc.want {
				t.Errorf("Total = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestTotalUnsupportedKind(t *testing.T) {
	_, err := Total(listings.BookingKind("CRUISE"), money.Must(10, "USD"), 1, 1)
	if err != ErrUnsupportedKind {
		t.Errorf("Total error = %v, want %v", err, ErrUnsupportedKind)
	}
}

func TestTotalLinearInGuestsForPerPersonKinds(t *testing.T) {
	unit := money.Must(50, "EUR")
	for guests := 1; guests <= 10; guests++ {
		got, err := Total(listings.KindExperience, unit, 1, guests)
		if err != nil {
			t.Fatalf("Total: %v", err)
		}
		if got.Amount != unit.Amount*int64(guests) {
			t.Errorf("guests=%d: total %d, want %d", guests, got.Amount, unit.Amount*int64(guests))
		}
	}
}

func TestPricingIsPure(t *testing.T) {
	checkIn, checkOut := date(2024, 6, 1), date(2024, 6, 4)
	first := Nights(listings.KindStay, checkIn, checkOut)
	for i := 0; i < 5; i++ {
		if got := Nights(listings.KindStay, checkIn, checkOut); got != first {
			t.Fatalf("Nights changed between calls: %d then %d", first, got)
		}
	}
	unit := money.Must(100, "USD")
	firstTotal, _ := Total(listings.KindStay, unit, 3, 2)
	for i := 0; i < 5; i++ {
		got, _ := Total(listings.KindStay, unit, 3, 2)
		if got != firstTotal {
			t.Fatalf("Total changed between calls: %+v then %+v", firstTotal, got)
		}
	}
}
