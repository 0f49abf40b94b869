package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateRequestValidate(t *testing.T) {
	assert.NoError(t, CreateRequest{Name: "demo"}.Validate())
	assert.ErrorContains(t, CreateRequest{Description: "no name"}.Validate(), "name is required")
	assert.ErrorContains(t, CreateRequest{Name: "demo", Description: strings.Repeat("d", 5000)}.Validate(), "description")
}

func TestUpdateRequestValidate(t *testing.T) {
	empty := ""
	name := "renamed"

	assert.NoError(t, UpdateRequest{}.Validate())
	assert.NoError(t, UpdateRequest{Name: &name}.Validate())
	assert.ErrorContains(t, UpdateRequest{Name: &empty}.Validate(), "name is required")
	assert.NoError(t, UpdateRequest{Description: &empty}.Validate())
}
