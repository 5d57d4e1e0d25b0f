package identity

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrNotFound = errors.New("identity not found")

const (
	DefaultName       = "User"
	DefaultOccupation = "General Worker"
)

// Identity is the metadata a certificate is issued under.
type Identity struct {
	Name        string
	Occupation  string
	Description string
	// Onboarded is false until the identity has been saved at least once.
	Onboarded bool
	UpdatedAt time.Time
}

// Default is the identity used before onboarding.
func Default() Identity {
	return Identity{Name: DefaultName, Occupation: DefaultOccupation}
}

// UID is the identity label embedded in certificates, "<name> (<occupation>)".
func (i Identity) UID() string {
	return fmt.Sprintf("%s (%s)", i.Name, i.Occupation)
}

func normalize(i Identity) Identity {
	i.Name = strings.TrimSpace(i.Name)
	i.Occupation = strings.TrimSpace(i.Occupation)
	i.Description = strings.TrimSpace(i.Description)

	if i.Name == "" {
		i.Name = DefaultName
	}

	if i.Occupation == "" {
		i.Occupation = DefaultOccupation
	}

	return i
}
