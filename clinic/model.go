// Package clinic holds the transient value objects exchanged with the
// petclinic backend services. None of them carry state beyond a single
// request/response cycle.
package clinic

import "encoding/json"

// Visit is a single visit record as returned by the visits service
type Visit struct {
	ID          int    `json:"id"`
	Date        Date   `json:"date"`
	Description string `json:"description"`
	PetID       int    `json:"petId"`
}

// Visits is the envelope returned by a batch visit lookup.
// Items keep the order the server sent them in.
type Visits struct {
	Items []Visit `json:"items"`
}

// UnmarshalJSON guarantees Items is non-nil after decoding
func (v *Visits) UnmarshalJSON(b []byte) error {
	type envelope Visits
	var e envelope
	if err := json.Unmarshal(b, &e); err != nil {
		return err
	}
	if e.Items == nil {
		e.Items = []Visit{}
	}
	*v = Visits(e)
	return nil
}

// PetType is one of the pet kinds known to the clinic
type PetType struct {
	ID   int    `json:"id,omitempty"`
	Name string `json:"name"`
}

// Known pet type identifiers
const (
	PetTypeCat     = 1
	PetTypeDog     = 2
	PetTypeLizard  = 3
	PetTypeSnake   = 4
	PetTypeBird    = 5
	PetTypeHamster = 6
)

// PetTypeNames maps pet type ids to their display name
var PetTypeNames = map[int]string{
	PetTypeCat:     "cat",
	PetTypeDog:     "dog",
	PetTypeLizard:  "lizard",
	PetTypeSnake:   "snake",
	PetTypeBird:    "bird",
	PetTypeHamster: "hamster",
}

// PetDetails mirrors the pet schema of the customers service
type PetDetails struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	BirthDate Date    `json:"birthDate"`
	Type      PetType `json:"type"`
	Visits    []Visit `json:"visits,omitempty"`
}

// OwnerDetails mirrors the owner schema of the customers service
type OwnerDetails struct {
	ID        int          `json:"id"`
	FirstName string       `json:"firstName"`
	LastName  string       `json:"lastName"`
	Address   string       `json:"address"`
	City      string       `json:"city"`
	Telephone string       `json:"telephone"`
	Pets      []PetDetails `json:"pets"`
}

// PetRequest is the body sent to add a pet to an owner
type PetRequest struct {
	ID        int    `json:"id,omitempty"`
	BirthDate Date   `json:"birthDate"`
	Name      string `json:"name"`
	TypeID    int    `json:"typeId"`
}

// OwnerRequest is the body sent to create an owner
type OwnerRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Address   string `json:"address"`
	City      string `json:"city"`
	Telephone string `json:"telephone"`
}

// Specialty is a veterinary specialty
type Specialty struct {
	ID   int    `json:"id,omitempty"`
	Name string `json:"name"`
}

// Vet describes a veterinarian. A *Vet is also used as an optional
// similarity-search filter, in which case zero fields are left out.
type Vet struct {
	ID          int         `json:"id,omitempty"`
	FirstName   string      `json:"firstName,omitempty"`
	LastName    string      `json:"lastName,omitempty"`
	Specialties []Specialty `json:"specialties,omitempty"`
}
