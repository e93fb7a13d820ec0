package records

// keySep never appears in an instrument code or an 8-digit date.
const keySep = "|"

// Key aligns rows of different datasets for the same instrument and trade date.
func Key(code, tradeDate string) string {
	return code + keySep + tradeDate
}
