// Package link is the driverstation side of the controller: whether an
// external controller is connected, and the strip state it sends.
package link

import (
	"github.com/coreman2200/funtimes-lightstrip/internal/model"
)

// Always reports a permanent link: any press enters driven mode.
type Always struct{}

func (Always) IsLinked() bool { return true }

// Never reports no link, pinning the controller to manual mode.
type Never struct{}

func (Never) IsLinked() bool { return false }

// Indicator is the driven-mode stand-in when no driverstation protocol is
// configured: it fills the strip with Color once per activation.
type Indicator struct {
	Color model.Color

	pending bool
}

func (i *Indicator) Activate() { i.pending = true }

func (i *Indicator) ApplyExternal(strip *model.Strip) bool {
	if !i.pending {
		return false
	}
	i.pending = false
	strip.Fill(i.Color)
	return true
}
