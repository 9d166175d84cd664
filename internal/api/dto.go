package api

import (
	"time"

	"github.com/neexbeast/skycast/internal/session"
	"github.com/neexbeast/skycast/internal/weather"
)

// placeDTO is the flat wire form of a place. An empty region or country is
// kept distinct from an absent one.
type placeDTO struct {
	Name    string  `json:"name" validate:"required,max=200"`
	Region  *string `json:"region,omitempty" validate:"omitempty,max=200"`
	Country *string `json:"country,omitempty" validate:"omitempty,max=200"`
}

func (p placeDTO) place() weather.Place {
	out := weather.NewPlace(p.Name, "", "")
	out.Region = cloneOpt(p.Region)
	out.Country = cloneOpt(p.Country)
	return out
}

func toPlaceDTO(p weather.Place) placeDTO {
	return placeDTO{Name: p.Name, Region: cloneOpt(p.Region), Country: cloneOpt(p.Country)}
}

func cloneOpt(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

type searchRequest struct {
	Text string `json:"text" validate:"max=200"`
}

type savedPlaceDTO struct {
	placeDTO
	DisplayName string       `json:"display_name"`
	Temperature string       `json:"temperature,omitempty"`
	Description string       `json:"description,omitempty"`
	Icon        weather.Icon `json:"icon,omitempty"`
}

type viewDTO struct {
	State           string          `json:"state"`
	FetchingPlace   *placeDTO       `json:"fetching_place,omitempty"`
	SearchText      string          `json:"search_text"`
	SearchResults   []placeDTO      `json:"search_results"`
	Saved           []savedPlaceDTO `json:"saved"`
	Selected        *placeDTO       `json:"selected,omitempty"`
	Presentation    string          `json:"presentation"`
	Toast           string          `json:"toast,omitempty"`
	CanEditPlaces   bool            `json:"can_edit_places"`
	SelectedIsSaved bool            `json:"selected_is_saved"`
	StoreError      string          `json:"store_error,omitempty"`
}

func toViewDTO(v session.View, now time.Time) viewDTO {
	out := viewDTO{
		State:           v.State.Kind.String(),
		SearchText:      v.SearchText,
		SearchResults:   make([]placeDTO, 0, len(v.SearchResults)),
		Saved:           make([]savedPlaceDTO, 0, len(v.Saved)),
		Presentation:    v.Presentation.String(),
		CanEditPlaces:   v.CanEditPlaces,
		SelectedIsSaved: v.SelectedIsSaved,
	}
	if v.State.Place != nil {
		p := toPlaceDTO(*v.State.Place)
		out.FetchingPlace = &p
	}
	for _, p := range v.SearchResults {
		out.SearchResults = append(out.SearchResults, toPlaceDTO(p))
	}
	for _, e := range v.Saved {
		dto := savedPlaceDTO{placeDTO: toPlaceDTO(e.Place), DisplayName: e.Place.DisplayName()}
		if e.Weather != nil {
			sum := weather.Summarize(e.Place, e.Weather, now)
			dto.Temperature = sum.Temperature
			dto.Description = sum.Description
			dto.Icon = sum.Icon
		}
		out.Saved = append(out.Saved, dto)
	}
	if v.Selected != nil {
		p := toPlaceDTO(*v.Selected)
		out.Selected = &p
	}
	if v.Toast != nil {
		out.Toast = v.Toast.Message
	}
	if v.StoreError != nil {
		out.StoreError = v.StoreError.Error()
	}
	return out
}
