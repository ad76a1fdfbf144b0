// Package workflow is the typed model of a GitHub Actions workflow file and
// its decoder.
//
// Every field that GitHub accepts in more than one shape is declared as an
// ordered union in this package; the engine in internal/decode resolves
// it. Keyword tables, unions and schemas are package-level values built
// once at init and only read afterwards, so Decode is safe to call from
// many goroutines.
//
// References:
//   - https://docs.github.com/en/actions/using-workflows/workflow-syntax-for-github-actions
//   - https://json.schemastore.org/github-workflow.json
package workflow

import (
	"github.com/mrz1836/ghaworkflow/internal/decode"
	"github.com/mrz1836/ghaworkflow/internal/value"
)

// Workflow is a single workflow file.
type Workflow struct {
	Name        *string
	RunName     *string
	On          Trigger
	Permissions Permissions
	Env         Env
	Defaults    *Defaults
	Concurrency Concurrency
	Jobs        map[string]Job
}

// Trigger is the `on:` condition of a workflow: a single BareEvent,
// a BareEvents list, or an *Events mapping with per-event configuration.
type Trigger interface {
	isTrigger()
}

// Defaults apply to every run step of a workflow or job.
type Defaults struct {
	Run *RunDefaults
}

// RunDefaults are the defaults for run steps.
type RunDefaults struct {
	Shell            *string
	WorkingDirectory *string
}

// Concurrency limits parallel runs: a ConcurrencyGroup name or a
// *RichConcurrency.
type Concurrency interface {
	isConcurrency()
}

// ConcurrencyGroup names the group only.
type ConcurrencyGroup string

func (ConcurrencyGroup) isConcurrency() {}

// RichConcurrency names the group and whether a new run cancels the one in
// progress.
type RichConcurrency struct {
	Group            string
	CancelInProgress BoE
}

func (*RichConcurrency) isConcurrency() {}

//nolint:gochecknoglobals // Immutable unions and schemas
var (
	// The list form is declared before the mapping form. Sequences and
	// mappings never overlap, but the order is still tried literally.
	triggerUnion = decode.NewUnion("trigger",
		decode.Variant("bare event", decode.IsString, bareEvents.Decode,
			func(e BareEvent) Trigger { return e }),
		decode.Variant("bare event list", decode.IsSequence, decode.SequenceOf(bareEvents.Decode),
			func(es []BareEvent) Trigger { return BareEvents(es) }),
		decode.Variant("event mapping", decode.IsMapping, eventsSchema.Decode,
			func(e Events) Trigger { return &e }),
	)

	runDefaultsSchema = decode.NewSchema("run defaults",
		decode.Optional("shell", decode.String, func(r *RunDefaults) **string { return &r.Shell }),
		decode.Optional("working-directory", decode.String, func(r *RunDefaults) **string { return &r.WorkingDirectory }),
	)

	defaultsSchema = decode.NewSchema("defaults",
		decode.Optional("run", runDefaultsSchema.Decode, func(d *Defaults) **RunDefaults { return &d.Run }),
	)

	richConcurrencySchema = decode.NewSchema("concurrency",
		decode.Required("group", decode.String, func(c *RichConcurrency) *string { return &c.Group }),
		decode.DefaultFunc("cancel-in-progress", boeDecoder, defaultFalse,
			func(c *RichConcurrency) *BoE { return &c.CancelInProgress }),
	)

	concurrencyUnion = decode.NewUnion("concurrency",
		decode.Variant("group name", decode.IsString, decode.String,
			func(s string) Concurrency { return ConcurrencyGroup(s) }),
		decode.Variant("concurrency", decode.IsMapping, richConcurrencySchema.Decode,
			func(c RichConcurrency) Concurrency { return &c }),
	)

	workflowSchema = decode.NewSchema("workflow",
		decode.Optional("name", decode.String, func(w *Workflow) **string { return &w.Name }),
		decode.Optional("run-name", decode.String, func(w *Workflow) **string { return &w.RunName }),
		decode.Required("on", triggerUnion.Decode, func(w *Workflow) *Trigger { return &w.On }),
		decode.Default("permissions", permissionsUnion.Decode, defaultBase, func(w *Workflow) *Permissions { return &w.Permissions }),
		decode.DefaultFunc("env", envDecoder, newEnv, func(w *Workflow) *Env { return &w.Env }),
		decode.Optional("defaults", defaultsSchema.Decode, func(w *Workflow) **Defaults { return &w.Defaults }),
		decode.OptionalValue("concurrency", concurrencyUnion.Decode, func(w *Workflow) *Concurrency { return &w.Concurrency }),
		decode.Required("jobs", decode.MapOf(jobUnion.Decode), func(w *Workflow) *map[string]Job { return &w.Jobs }),
	)
)

// Decode builds a Workflow from a parsed document. The first problem found
// aborts the decode and is returned as a *decode.Error.
func Decode(root *value.Node, opts decode.Options) (*Workflow, error) {
	w, err := decode.Run(root, opts, workflowSchema.Decode)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// DecodeBytes parses YAML or JSON and decodes it.
func DecodeBytes(data []byte, opts decode.Options) (*Workflow, error) {
	root, err := value.Parse(data)
	if err != nil {
		return nil, err
	}
	return Decode(root, opts)
}
