package models

import (
	"strconv"
	"time"
)

// Flight is one logged flight segment
type Flight struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Source       Source  `gorm:"size:20;not null" json:"source"`
	FlightDate   string  `gorm:"size:10;not null;index:ix_flights_flight_date" json:"flight_date"` // YYYY-MM-DD
	FlightNumber *string `gorm:"size:20" json:"flight_number"`
	Origin       string  `gorm:"size:4;not null;index:ix_flights_origin;index:ix_flights_route,priority:1" json:"origin"`
	Destination  string  `gorm:"size:4;not null;index:ix_flights_destination;index:ix_flights_route,priority:2" json:"destination"`

	// Minutes since local midnight
	DepartureTime *int `json:"departure_time"`
	ArrivalTime   *int `json:"arrival_time"`
	BlockMinutes  int  `gorm:"not null;default:0" json:"block_minutes"`

	TailNumber      *string `gorm:"size:10;index:ix_flights_tail_number" json:"tail_number"`
	AircraftTypeRaw *string `gorm:"size:20" json:"aircraft_type_raw"`
	AircraftType    *string `gorm:"size:20;index:ix_flights_aircraft_type" json:"aircraft_type"`

	IsDeadhead bool `gorm:"not null;default:false" json:"is_deadhead"`
	PICTakeoff bool `gorm:"column:pic_takeoff;not null;default:false" json:"pic_takeoff"`
	PICLanding bool `gorm:"column:pic_landing;not null;default:false" json:"pic_landing"`

	CrewPosition *string `gorm:"size:5" json:"crew_position"` // CA or FO
	CrewName     *string `gorm:"size:100;index:ix_flights_crew_name" json:"crew_name"`
	CrewID       *string `gorm:"size:20" json:"crew_id"`
	Remarks      *string `gorm:"type:text" json:"remarks"`

	ImportBatchID *string `gorm:"size:36;index" json:"import_batch_id"`

	// Relationships
	ImportBatch *ImportBatch      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Attributes  []FlightAttribute `gorm:"foreignKey:FlightID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"attributes,omitempty"`
}

// FlightAttribute is a sparse, source specific value attached to a flight (e.g. TAFB)
type FlightAttribute struct {
	ID       uint    `gorm:"primarykey" json:"id"`
	FlightID uint    `gorm:"not null;index:ix_flight_attributes_flight_id" json:"flight_id"`
	Name     string  `gorm:"column:attribute_name;size:50;not null" json:"name"`
	Value    string  `gorm:"column:attribute_value;type:text;not null" json:"value"`
	Unit     *string `gorm:"column:attribute_unit;size:20" json:"unit"`
}

// Year returns the calendar year of the flight date, or 0 if the date is malformed
func (f Flight) Year() int {
	if len(f.FlightDate) < 4 {
		return 0
	}
	year, err := strconv.Atoi(f.FlightDate[:4])
	if err != nil {
		return 0
	}
	return year
}

// Str returns the value of an optional string, or "" when absent
func Str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// OptString returns nil for an empty string
func OptString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
