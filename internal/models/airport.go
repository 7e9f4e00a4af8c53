package models

// Airport is static reference data used for coordinate lookups
type Airport struct {
	ICAO      string   `gorm:"column:icao;primaryKey;size:4" json:"icao"`
	IATA      *string  `gorm:"column:iata;size:3" json:"iata"`
	Name      *string  `gorm:"size:100" json:"name"`
	City      *string  `gorm:"size:100" json:"city"`
	Country   *string  `gorm:"size:2" json:"country"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Timezone  *string  `gorm:"size:50" json:"timezone"`
}

// HasCoordinates reports whether the airport can be placed on a map
func (a Airport) HasCoordinates() bool {
	return a.Latitude != nil && a.Longitude != nil
}
