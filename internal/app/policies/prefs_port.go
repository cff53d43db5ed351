package policies

import "kase/internal/domain/shared/money"

// PreferencesPort formats base-currency amounts for display. Currency
// conversion and locale selection live with the preferences service; the
// checkout core only ever computes in the listing's base currency.
type PreferencesPort interface {
	FormatPrice(amount money.Money) string
}
