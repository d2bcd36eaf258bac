package types

import "errors"

// ErrCityNotFound is returned by a Fetcher when the provider answered but did
// not recognise the requested location.
var ErrCityNotFound = errors.New("city not found")

// Weather is the current conditions for a location, as named by the provider.
type Weather struct {
	City         string   `json:"city"`
	Temp         float64  `json:"temp"`
	Descriptions []string `json:"descriptions"`
}

// FirstDescription returns the first condition text the provider reported.
func (w Weather) FirstDescription() (string, bool) {
	if len(w.Descriptions) == 0 {
		return "", false
	}
	return w.Descriptions[0], true
}
