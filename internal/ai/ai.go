// Package ai defines the boundary to language models and browser agents.
package ai

import (
	"context"
	"errors"
)

var ErrEmptyResult = errors.New("agent returned empty result")

// Generator produces a single completion for a system instruction and a
// user message.
type Generator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
}

// Task is one unit of work for an Agent.
type Task struct {
	Portal     string
	Prompt     string
	SessionDir string
	Files      []string
	MaxSteps   int
}

// Agent takes a prompt and returns its free-text final answer.
type Agent interface {
	Run(ctx context.Context, task Task) (string, error)
}

type Param struct {
	Name        string
	Description string
}

// Tool is a function the agent may call mid-task. Arguments and results are
// plain text. Every declared Param is required.
type Tool struct {
	Name        string
	Description string
	Params      []Param
	Call        func(ctx context.Context, args map[string]string) (string, error)
}

// Missing returns the names of declared params absent from args.
func (t Tool) Missing(args map[string]string) []string {
	var missing []string
	for _, p := range t.Params {
		if _, ok := args[p.Name]; !ok {
			missing = append(missing, p.Name)
		}
	}
	return missing
}
