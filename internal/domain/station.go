package domain

// Station is a named observer position with its civil time zone.
type Station struct {
	ID       string
	Name     string
	Location Location
	Timezone string // IANA zone name
}
