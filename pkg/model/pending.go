package model

import (
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// Location names the tier a memory item lives in
type Location string

const (
	LocationFree     Location = "free"
	LocationCategory Location = "category"
	LocationDomain   Location = "domain"
)

// Validate checks if the location is known
func (l Location) Validate() error {
	switch l {
	case LocationFree, LocationCategory, LocationDomain:
		return nil
	default:
		return goerr.Wrap(ErrInvalidLocation, "unknown location", goerr.V("location", l))
	}
}

type ConfirmationID string

// NewConfirmationID generates a new unique ConfirmationID
func NewConfirmationID() ConfirmationID {
	return ConfirmationID(uuid.New().String())
}

// PendingDeletion is a proposed memory deletion waiting for confirmation.
// It lives in session state only and is never persisted.
type PendingDeletion struct {
	Location Location `json:"location"`
	Category string   `json:"category,omitempty"`
	Domain   string   `json:"domain,omitempty"`
	Index    int      `json:"index"`

	// Item is a snapshot taken when the deletion was proposed
	Item MemoryItem `json:"item"`
}

// Group returns the category or domain name the item belongs to
func (p *PendingDeletion) Group() string {
	switch p.Location {
	case LocationCategory:
		return p.Category
	case LocationDomain:
		return p.Domain
	default:
		return ""
	}
}

// Validate checks that the group name matches the location
func (p *PendingDeletion) Validate() error {
	if err := p.Location.Validate(); err != nil {
		return err
	}
	if p.Index < 0 {
		return goerr.New("negative index", goerr.V("index", p.Index))
	}
	switch p.Location {
	case LocationFree:
		if p.Category != "" || p.Domain != "" {
			return goerr.New("free memory has a group", goerr.V("category", p.Category), goerr.V("domain", p.Domain))
		}
	case LocationCategory:
		if p.Category == "" || p.Domain != "" {
			return goerr.New("category deletion needs exactly a category", goerr.V("category", p.Category), goerr.V("domain", p.Domain))
		}
	case LocationDomain:
		if p.Domain == "" || p.Category != "" {
			return goerr.New("domain deletion needs exactly a domain", goerr.V("category", p.Category), goerr.V("domain", p.Domain))
		}
	}
	return nil
}
