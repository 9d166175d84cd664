package weather

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// UnknownPlaceName is used when the provider omits a place's name.
const UnknownPlaceName = "Unknown"

// Place is a named location. ID is local only and never part of equality
// or the JSON encoding.
type Place struct {
	ID      uuid.UUID
	Name    string
	Country *string
	Region  *string
}

// NewPlace builds a Place with a fresh identifier. Empty country or region
// are stored as absent.
func NewPlace(name, region, country string) Place {
	if name == "" {
		name = UnknownPlaceName
	}
	p := Place{ID: uuid.New(), Name: name}
	if region != "" {
		p.Region = &region
	}
	if country != "" {
		p.Country = &country
	}
	return p
}

// Equal reports whether both values describe the same real-world place.
func (p Place) Equal(o Place) bool {
	return p.Name == o.Name && eqOpt(p.Region, o.Region) && eqOpt(p.Country, o.Country)
}

func eqOpt(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// PlaceKey is a comparable form of a Place's identity.
type PlaceKey struct {
	Name, Region, Country string
	HasRegion, HasCountry bool
}

// Key returns the comparable identity of p.
func (p Place) Key() PlaceKey {
	k := PlaceKey{Name: p.Name}
	if p.Region != nil {
		k.Region, k.HasRegion = *p.Region, true
	}
	if p.Country != nil {
		k.Country, k.HasCountry = *p.Country, true
	}
	return k
}

// RegionOrEmpty returns the region or "".
func (p Place) RegionOrEmpty() string {
	if p.Region == nil {
		return ""
	}
	return *p.Region
}

// CountryOrEmpty returns the country or "".
func (p Place) CountryOrEmpty() string {
	if p.Country == nil {
		return ""
	}
	return *p.Country
}

// Query is the location descriptor the forecast endpoint expects.
func (p Place) Query() string {
	return fmt.Sprintf("%s, %s, %s", p.Name, p.RegionOrEmpty(), p.CountryOrEmpty())
}

// DisplayName renders "name - region", or just the name without a region.
func (p Place) DisplayName() string {
	if p.Region == nil {
		return p.Name
	}
	return p.Name + " - " + *p.Region
}

func (p Place) String() string { return p.DisplayName() }

// wrapped is the provider's single-key array-of-object scalar shape.
type wrapped []struct {
	Value string `json:"value"`
}

func (w wrapped) first() (string, bool) {
	if len(w) == 0 {
		return "", false
	}
	return w[0].Value, true
}

func wrap(s string) wrapped {
	return wrapped{{Value: s}}
}

type placeWire struct {
	AreaName wrapped `json:"areaName,omitempty"`
	Country  wrapped `json:"country,omitempty"`
	Region   wrapped `json:"region,omitempty"`
}

// UnmarshalJSON decodes the provider's wrapped shape.
func (p *Place) UnmarshalJSON(b []byte) error {
	var w placeWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}

	name, ok := w.AreaName.first()
	if !ok || name == "" {
		name = UnknownPlaceName
	}
	out := Place{ID: uuid.New(), Name: name}
	if c, ok := w.Country.first(); ok {
		out.Country = &c
	}
	if r, ok := w.Region.first(); ok {
		out.Region = &r
	}
	*p = out
	return nil
}

// MarshalJSON re-wraps each present field into the provider's shape.
func (p Place) MarshalJSON() ([]byte, error) {
	w := placeWire{AreaName: wrap(p.Name)}
	if p.Country != nil {
		w.Country = wrap(*p.Country)
	}
	if p.Region != nil {
		w.Region = wrap(*p.Region)
	}
	return json.Marshal(w)
}

// ContainsPlace reports whether places holds an entry equal to p.
func ContainsPlace(places []Place, p Place) bool {
	for _, q := range places {
		if q.Equal(p) {
			return true
		}
	}
	return false
}
