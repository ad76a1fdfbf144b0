package workflow

import (
	"fmt"
	"slices"
	"strings"
)

// Summary is a flat overview of a workflow, used for listings.
type Summary struct {
	Name   string       `json:"name,omitempty"`
	Events []string     `json:"events"`
	Jobs   []JobSummary `json:"jobs"`
}

// JobSummary describes one job.
type JobSummary struct {
	ID string `json:"id"`
	// Kind is "steps" for a normal job and "call" for a reusable workflow call.
	Kind string `json:"kind"`
	// Target is the runner selection or the called workflow.
	Target string   `json:"target"`
	Steps  int      `json:"steps"`
	Needs  []string `json:"needs,omitempty"`
}

// Job kinds reported by Summarize.
const (
	JobKindSteps = "steps"
	JobKindCall  = "call"
)

// EventNames returns the event names of a trigger in declaration order.
// An event mapping lists its events in canonical order.
func EventNames(t Trigger) []string {
	switch t := t.(type) {
	case BareEvent:
		return []string{t.String()}
	case BareEvents:
		names := make([]string, len(t))
		for i, e := range t {
			names[i] = e.String()
		}
		return names
	case *Events:
		return t.Names()
	default:
		return nil
	}
}

// JobIDs returns the job IDs in sorted order.
func (w *Workflow) JobIDs() []string {
	ids := make([]string, 0, len(w.Jobs))
	for id := range w.Jobs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Summarize builds the Summary of w. Jobs are sorted by ID.
func Summarize(w *Workflow) Summary {
	s := Summary{Events: EventNames(w.On), Jobs: make([]JobSummary, 0, len(w.Jobs))}
	if w.Name != nil {
		s.Name = *w.Name
	}
	for _, id := range w.JobIDs() {
		js := JobSummary{ID: id}
		switch j := w.Jobs[id].(type) {
		case *NormalJob:
			js.Kind = JobKindSteps
			js.Target = describeRunsOn(j.RunsOn)
			js.Steps = len(j.Steps)
			js.Needs = needsOf(j.Needs)
		case *ReusableWorkflowCallJob:
			js.Kind = JobKindCall
			js.Target = j.Uses
			js.Needs = needsOf(j.Needs)
		}
		s.Jobs = append(s.Jobs, js)
	}
	return s
}

func describeRunsOn(r RunsOn) string {
	switch r := r.(type) {
	case RunnerLabels:
		return strings.Join(r.Labels.Values(), ",")
	case *RunnerGroup:
		var parts []string
		if r.Group != nil {
			parts = append(parts, "group:"+*r.Group)
		}
		if r.Labels != nil {
			parts = append(parts, r.Labels.Values()...)
		}
		return strings.Join(parts, ",")
	default:
		return ""
	}
}

func needsOf(n *SoV[string]) []string {
	if n == nil {
		return nil
	}
	return n.Values()
}

// EnvScopes returns every literal env-like mapping of a workflow in its
// textual form, keyed by where it appears: the workflow and job env,
// container and service env, step env and the with inputs of steps and
// reusable workflow calls. Empty scopes and env given as an expression
// are left out.
func EnvScopes(w *Workflow) map[string]map[string]string {
	scopes := make(map[string]map[string]string)
	add := func(path string, env Env) {
		if len(env) > 0 {
			scopes[path] = env.Strings()
		}
	}
	addLoE := func(path string, env LoE[Env]) {
		if lit, ok := env.Literal(); ok {
			add(path, lit)
		}
	}
	addContainer := func(path string, c Container) {
		if spec, ok := c.(*ContainerSpec); ok {
			add(path+".env", spec.Env)
		}
	}

	add("env", w.Env)
	for _, id := range w.JobIDs() {
		base := "jobs." + id
		switch j := w.Jobs[id].(type) {
		case *NormalJob:
			addLoE(base+".env", j.Env)
			addContainer(base+".container", j.Container)
			for name, svc := range j.Services {
				addContainer(base+".services."+name, svc)
			}
			for i, step := range j.Steps {
				sp := fmt.Sprintf("%s.steps[%d]", base, i)
				addLoE(sp+".env", step.Env)
				if uses, ok := step.Body.(*UsesBody); ok {
					add(sp+".with", uses.With)
				}
			}
		case *ReusableWorkflowCallJob:
			add(base+".with", j.With)
		}
	}
	return scopes
}
