package models

// Place is a geocoding result: a resolved place name with its coordinate.
type Place struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
