// Package hateoas turns phones into HAL-style representations with navigation links.
package hateoas

import (
	"strconv"
	"strings"

	"phoneapi/internal/model"
)

// PhonesPath is the collection path every link is built from.
const PhonesPath = "/api/v1/phones"

// Link is a single hypermedia link.
type Link struct {
	Href string `json:"href"`
}

// PhoneLinks are the links attached to a single phone.
type PhoneLinks struct {
	Self   Link `json:"self"`
	Phones Link `json:"phones"`
}

// PhoneModel is a phone plus its links.
type PhoneModel struct {
	model.Phone
	Links PhoneLinks `json:"_links"`
}

// CollectionLinks are the links attached to the phone collection.
type CollectionLinks struct {
	Self Link `json:"self"`
}

// Embedded holds the embedded phone list.
type Embedded struct {
	PhoneList []PhoneModel `json:"phoneList"`
}

// PhoneCollection is the list representation.
type PhoneCollection struct {
	Embedded Embedded        `json:"_embedded"`
	Links    CollectionLinks `json:"_links"`
}

// CollectionHref returns the absolute collection URL for the given base (scheme://host).
func CollectionHref(base string) string {
	return strings.TrimRight(base, "/") + PhonesPath
}

// ItemHref returns the absolute URL of a single phone.
func ItemHref(base string, id int64) string {
	return CollectionHref(base) + "/" + strconv.FormatInt(id, 10)
}

// ToModel wraps p with its self and collection links.
func ToModel(base string, p model.Phone) PhoneModel {
	return PhoneModel{
		Phone: p,
		Links: PhoneLinks{
			Self:   Link{Href: ItemHref(base, p.ID)},
			Phones: Link{Href: CollectionHref(base)},
		},
	}
}

// ToCollection wraps every phone and adds the collection self link.
// The phone list is never null, even when phones is empty.
func ToCollection(base string, phones []model.Phone) PhoneCollection {
	items := make([]PhoneModel, 0, len(phones))
	for _, p := range phones {
		items = append(items, ToModel(base, p))
	}
	return PhoneCollection{
		Embedded: Embedded{PhoneList: items},
		Links:    CollectionLinks{Self: Link{Href: CollectionHref(base)}},
	}
}
