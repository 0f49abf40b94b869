package fakeapi

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/GriffinCanCode/AgentOS/workbench/internal/domain/kind"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/shared/types"
)

// Fixture describes resources to preload into a platform
type Fixture struct {
	Apps      []ResourceFixture `yaml:"apps"`
	Notebooks []ResourceFixture `yaml:"notebooks"`
}

// ResourceFixture is one seeded resource
type ResourceFixture struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Deployed    bool   `yaml:"deployed"`
	// Sessions are started in order; "stopped" entries are stopped afterwards
	Sessions []string          `yaml:"sessions"`
	Files    map[string]string `yaml:"files"`
}

// DefaultFixture is loaded by the fake server unless seeding is disabled
func DefaultFixture() Fixture {
	return Fixture{
		Apps: []ResourceFixture{
			{
				Name:        "Sales dashboard",
				Description: "Quarterly revenue by region",
				Deployed:    true,
				Sessions:    []string{"active"},
			},
			{
				Name:        "Support triage",
				Description: "Routes incoming tickets to the right queue",
				Sessions:    []string{"stopped", "active"},
			},
		},
		Notebooks: []ResourceFixture{
			{
				Name:        "Churn exploration",
				Description: "Cohort analysis of cancelled accounts",
				Sessions:    []string{"active"},
				Files: map[string]string{
					"/analysis.ipynb": `{"cells": [], "nbformat": 4, "nbformat_minor": 5}`,
				},
			},
		},
	}
}

// LoadFixture reads a YAML fixture file
func LoadFixture(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("failed to read fixture: %w", err)
	}
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Fixture{}, fmt.Errorf("failed to parse fixture %s: %w", path, err)
	}
	return f, nil
}

// Seed loads f into p and returns the number of resources created
func (p *Platform) Seed(f Fixture) (int, error) {
	seeded := 0
	for _, group := range []struct {
		kind  kind.Kind
		items []ResourceFixture
	}{
		{kind.Apps, f.Apps},
		{kind.Notebooks, f.Notebooks},
	} {
		// Reverse so the first fixture entry lists first
		for i := len(group.items) - 1; i >= 0; i-- {
			if err := p.seedOne(group.kind, group.items[i]); err != nil {
				return seeded, fmt.Errorf("failed to seed %s %q: %w", group.kind, group.items[i].Name, err)
			}
			seeded++
		}
	}
	return seeded, nil
}

func (p *Platform) seedOne(k kind.Kind, rf ResourceFixture) error {
	if rf.Name == "" {
		return fmt.Errorf("name is required")
	}
	rid := p.Create(k, types.CreateRequest{Name: rf.Name, Description: rf.Description})

	if rf.Deployed {
		if k != kind.Apps {
			return fmt.Errorf("only apps can be deployed")
		}
		if _, err := p.Deploy(rid); err != nil {
			return err
		}
	}

	for _, status := range rf.Sessions {
		s, err := p.StartSession(k, rid)
		if err != nil {
			return err
		}
		var parsed types.Status
		if err := parsed.UnmarshalText([]byte(status)); err != nil {
			return err
		}
		if parsed == types.StatusStopped {
			if _, err := p.StopSession(k, s.Ref()); err != nil {
				return err
			}
		}
		for name, content := range rf.Files {
			if err := p.WriteFile(k, s.Ref(), types.FileContent{Path: name, Content: content}); err != nil {
				return err
			}
		}
	}
	return nil
}

// scaffold is the starting workspace of a new app session
func scaffold(appName string) map[string]string {
	return map[string]string{
		"/app.py": fmt.Sprintf(`import streamlit as st

st.title(%q)
`, appName),
		"/requirements.txt": "streamlit\n",
	}
}
