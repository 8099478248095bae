package player

import (
	"fmt"
	"strings"
)

// Player is a tracked athlete as returned by the data provider.
type Player struct {
	ID               int64
	FirstName        string
	LastName         string
	ShortName        string
	TeamID           int64
	TeamName         string
	ImageDataURL     string
	TeamImageDataURL string
}

// DisplayName prefers the provider short name, then "First Last".
func (p Player) DisplayName() string {
	if name := strings.TrimSpace(p.ShortName); name != "" {
		return name
	}
	full := strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
	if full != "" {
		return full
	}
	return fmt.Sprintf("Player %d", p.ID)
}
