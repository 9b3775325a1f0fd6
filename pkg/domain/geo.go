package domain

// Country is an entry of the geographic reference data.
type Country struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	ISO2 string `json:"iso2,omitempty"`
}

// Subdivision is a state, province or region of a Country.
type Subdivision struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CountryID string `json:"country_id"`
}
