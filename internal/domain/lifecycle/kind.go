package lifecycle

import "github.com/GriffinCanCode/AgentOS/workbench/internal/domain/kind"

// Apps selects the app endpoint family
type Apps struct{}

// Descriptor implements Kind
func (Apps) Descriptor() kind.Descriptor { return kind.MustLookup(kind.Apps) }

// Notebooks selects the notebook endpoint family
type Notebooks struct{}

// Descriptor implements Kind
func (Notebooks) Descriptor() kind.Descriptor { return kind.MustLookup(kind.Notebooks) }

// Kind is the closed set of resource kinds an Engine can be built for
type Kind interface {
	Apps | Notebooks
	Descriptor() kind.Descriptor
}
