package models

type Village struct {
	ID        int64
	Name      string
	District  string
	State     string
	Latitude  float64
	Longitude float64
}
