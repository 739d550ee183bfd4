package presentation

import (
	"github.com/zjrosen/scli/internal/script"
)

// ScriptDTO represents a discovered script for presentation.
type ScriptDTO struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Entry       string         `json:"entry"`
	Source      string         `json:"source"`
	Help        string         `json:"help,omitempty"`
	Config      map[string]any `json:"config,omitempty"`
}

// ProblemDTO represents a manifest that failed to load.
type ProblemDTO struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	Error string `json:"error"`
}

// ListDTO is the JSON document printed by `list-scripts --json`.
type ListDTO struct {
	Scripts  []ScriptDTO  `json:"scripts"`
	Problems []ProblemDTO `json:"problems,omitempty"`
}

// FromEntry converts a catalog entry to a DTO.
func FromEntry(e script.Entry) ScriptDTO {
	return ScriptDTO{
		Name:        e.Name,
		Description: e.Description,
		Entry:       e.EntryKey,
		Source:      e.Source,
		Help:        e.Help,
		Config:      e.Defaults,
	}
}

// FromEntries converts catalog entries to DTOs, preserving order.
func FromEntries(entries []script.Entry) []ScriptDTO {
	dtos := make([]ScriptDTO, len(entries))
	for i, e := range entries {
		dtos[i] = FromEntry(e)
	}
	return dtos
}

// FromProblems converts load problems to DTOs.
func FromProblems(problems []script.LoadError) []ProblemDTO {
	if len(problems) == 0 {
		return nil
	}
	dtos := make([]ProblemDTO, len(problems))
	for i, p := range problems {
		msg := ""
		if p.Err != nil {
			msg = p.Err.Error()
		}
		dtos[i] = ProblemDTO{Name: p.Name, Path: p.Path, Error: msg}
	}
	return dtos
}
