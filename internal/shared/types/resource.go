package types

import (
	"time"

	"github.com/GriffinCanCode/AgentOS/workbench/internal/shared/validate"
)

// ResourceID identifies an app or a notebook
type ResourceID string

// String returns the raw id
func (id ResourceID) String() string { return string(id) }

// Resource is the constraint shared by every registry-managed type
type Resource interface {
	App | Notebook
	Key() ResourceID
}

// App is a user-built application that can be deployed
type App struct {
	ID             ResourceID `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description,omitempty"`
	CreatedOn      time.Time  `json:"created_on"`
	UpdatedOn      time.Time  `json:"updated_on"`
	DeploymentPort *int       `json:"deployment_port,omitempty"`
}

// Key returns the app id
func (a App) Key() ResourceID { return a.ID }

// Deployed reports whether the server has assigned a deployment port
func (a App) Deployed() bool { return a.DeploymentPort != nil }

// Notebook is a user-built notebook
type Notebook struct {
	ID          ResourceID `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	CreatedOn   time.Time  `json:"created_on"`
	UpdatedOn   time.Time  `json:"updated_on"`
}

// Key returns the notebook id
func (n Notebook) Key() ResourceID { return n.ID }

// CreateRequest is the body of a registry create call
type CreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// UpdateRequest is the body of a registry update call; nil fields are left alone
type UpdateRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Validate checks the name and description
func (r CreateRequest) Validate() error {
	if err := validate.Name(r.Name); err != nil {
		return err
	}
	return validate.Description(r.Description)
}

// Validate checks the fields that are set
func (r UpdateRequest) Validate() error {
	if r.Name != nil {
		if err := validate.Name(*r.Name); err != nil {
			return err
		}
	}
	if r.Description != nil {
		return validate.Description(*r.Description)
	}
	return nil
}
