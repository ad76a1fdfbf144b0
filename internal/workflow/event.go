package workflow

import (
	"github.com/mrz1836/ghaworkflow/internal/decode"
	"github.com/mrz1836/ghaworkflow/internal/value"
)

// BareEvent is a webhook event name used as a trigger without configuration.
type BareEvent int

// Webhook events that can trigger a workflow.
const (
	EventBranchProtectionRule BareEvent = iota + 1
	EventCheckRun
	EventCheckSuite
	EventCreate
	EventDelete
	EventDeployment
	EventDeploymentStatus
	EventDiscussion
	EventDiscussionComment
	EventFork
	EventGollum
	EventIssueComment
	EventIssues
	EventLabel
	EventMergeGroup
	EventMilestone
	EventPageBuild
	EventProject
	EventProjectCard
	EventProjectColumn
	EventPublic
	EventPullRequest
	EventPullRequestReview
	EventPullRequestReviewComment
	EventPullRequestTarget
	EventPush
	EventRegistryPackage
	EventRelease
	EventRepositoryDispatch
	EventSchedule
	EventStatus
	EventWatch
	EventWorkflowCall
	EventWorkflowDispatch
	EventWorkflowRun
)

func (BareEvent) isTrigger() {}

// String returns the event name as written in workflow files.
func (e BareEvent) String() string {
	return bareEvents.Keyword(e)
}

// BareEvents is a list of event names.
type BareEvents []BareEvent

func (BareEvents) isTrigger() {}

// BodyState tells the three forms of an event entry apart.
type BodyState uint8

// Event entry states.
const (
	// BodyMissing means the event key is absent.
	BodyMissing BodyState = iota
	// BodyDefault means the key is present with no configuration (null).
	BodyDefault
	// BodyPresent means the key carries a configuration body.
	BodyPresent
)

// OptionalBody is an event entry of an Events mapping.
type OptionalBody[T any] struct {
	state BodyState
	body  T
}

// DefaultBody returns an entry that is present without configuration.
func DefaultBody[T any]() OptionalBody[T] {
	return OptionalBody[T]{state: BodyDefault}
}

// Body returns an entry that carries a configuration.
func Body[T any](v T) OptionalBody[T] {
	return OptionalBody[T]{state: BodyPresent, body: v}
}

// State returns the entry's form.
func (o OptionalBody[T]) State() BodyState {
	return o.state
}

// IsSet reports whether the event key is present at all.
func (o OptionalBody[T]) IsSet() bool {
	return o.state != BodyMissing
}

// Get returns the configuration body, if one was given.
func (o OptionalBody[T]) Get() (T, bool) {
	return o.body, o.state == BodyPresent
}

// GenericEvent configures events that only filter on activity types.
type GenericEvent struct {
	Types *SoV[string]
}

// EmptyEvent configures events that take no options.
type EmptyEvent struct{}

// Push filters push events by ref and path.
type Push struct {
	Branches       []string
	BranchesIgnore []string
	Tags           []string
	TagsIgnore     []string
	Paths          []string
	PathsIgnore    []string
}

// PullRequest filters pull_request and pull_request_target events.
type PullRequest struct {
	Types          *SoV[string]
	Branches       []string
	BranchesIgnore []string
	Paths          []string
	PathsIgnore    []string
}

// WorkflowRun triggers on the completion of other workflows.
type WorkflowRun struct {
	Workflows      []string
	Types          *SoV[string]
	Branches       []string
	BranchesIgnore []string
}

// Cron is one schedule entry.
type Cron struct {
	Cron string
}

// WorkflowCallInputType is the declared type of a reusable workflow input.
type WorkflowCallInputType int

// Reusable workflow input types.
const (
	CallInputBoolean WorkflowCallInputType = iota + 1
	CallInputNumber
	CallInputString
)

// String returns the canonical keyword.
func (t WorkflowCallInputType) String() string {
	return callInputTypes.Keyword(t)
}

// WorkflowCallInput declares an input of a reusable workflow.
type WorkflowCallInput struct {
	Description *string
	Default     *EnvValue
	Required    bool
	Type        WorkflowCallInputType
}

// WorkflowCallOutput maps a reusable workflow output to a job output.
type WorkflowCallOutput struct {
	Description *string
	Value       string
}

// WorkflowCallSecret declares a secret a reusable workflow accepts.
type WorkflowCallSecret struct {
	Description *string
	Required    bool
}

// WorkflowCall makes the workflow callable from other workflows. A secret
// declared without options maps to nil.
type WorkflowCall struct {
	Inputs  map[string]WorkflowCallInput
	Outputs map[string]WorkflowCallOutput
	Secrets map[string]*WorkflowCallSecret
}

// WorkflowDispatchInputType is the declared type of a manual dispatch input.
type WorkflowDispatchInputType int

// Dispatch input types. The zero value is DispatchInputString.
const (
	DispatchInputString WorkflowDispatchInputType = iota
	DispatchInputBoolean
	DispatchInputChoice
	DispatchInputNumber
	DispatchInputEnvironment
)

// String returns the canonical keyword.
func (t WorkflowDispatchInputType) String() string {
	return dispatchInputTypes.Keyword(t)
}

// WorkflowDispatchInput declares an input of a manual run.
type WorkflowDispatchInput struct {
	Description *string
	Default     *EnvValue
	Required    bool
	Type        WorkflowDispatchInputType
	Options     []string
}

// WorkflowDispatch allows the workflow to be run by hand.
type WorkflowDispatch struct {
	Inputs map[string]WorkflowDispatchInput
}

// Events is the mapping form of a trigger, keyed by event name.
type Events struct {
	BranchProtectionRule     OptionalBody[GenericEvent]
	CheckRun                 OptionalBody[GenericEvent]
	CheckSuite               OptionalBody[GenericEvent]
	Create                   OptionalBody[EmptyEvent]
	Delete                   OptionalBody[EmptyEvent]
	Deployment               OptionalBody[EmptyEvent]
	DeploymentStatus         OptionalBody[EmptyEvent]
	Discussion               OptionalBody[GenericEvent]
	DiscussionComment        OptionalBody[GenericEvent]
	Fork                     OptionalBody[EmptyEvent]
	Gollum                   OptionalBody[EmptyEvent]
	IssueComment             OptionalBody[GenericEvent]
	Issues                   OptionalBody[GenericEvent]
	Label                    OptionalBody[GenericEvent]
	MergeGroup               OptionalBody[GenericEvent]
	Milestone                OptionalBody[GenericEvent]
	PageBuild                OptionalBody[EmptyEvent]
	Project                  OptionalBody[GenericEvent]
	ProjectCard              OptionalBody[GenericEvent]
	ProjectColumn            OptionalBody[GenericEvent]
	Public                   OptionalBody[EmptyEvent]
	PullRequest              OptionalBody[PullRequest]
	PullRequestReview        OptionalBody[GenericEvent]
	PullRequestReviewComment OptionalBody[GenericEvent]
	PullRequestTarget        OptionalBody[PullRequest]
	Push                     OptionalBody[Push]
	RegistryPackage          OptionalBody[GenericEvent]
	Release                  OptionalBody[GenericEvent]
	RepositoryDispatch       OptionalBody[GenericEvent]
	Schedule                 OptionalBody[[]Cron]
	Status                   OptionalBody[EmptyEvent]
	Watch                    OptionalBody[GenericEvent]
	WorkflowCall             OptionalBody[WorkflowCall]
	WorkflowDispatch         OptionalBody[WorkflowDispatch]
	WorkflowRun              OptionalBody[WorkflowRun]
}

func (*Events) isTrigger() {}

// Names returns the names of the configured events in canonical order.
func (e *Events) Names() []string {
	var names []string
	for _, ev := range eventEntries {
		if _, ok := ev.encode(e); ok {
			names = append(names, ev.field.Key())
		}
	}
	return names
}

// eventEntry ties an Events field to its decoder and encoder.
type eventEntry struct {
	field  decode.Field[Events]
	encode func(e *Events) (*value.Node, bool)
}

func eventOf[T any](key string, dec decode.Decoder[T], enc func(T) *value.Node, ref func(*Events) *OptionalBody[T]) eventEntry {
	return eventEntry{
		field: decode.Default(key, optionalBody(dec), OptionalBody[T]{}, ref),
		encode: func(e *Events) (*value.Node, bool) {
			ob := *ref(e)
			switch ob.state {
			case BodyDefault:
				return value.Null(), true
			case BodyPresent:
				return enc(ob.body), true
			default:
				return nil, false
			}
		},
	}
}

// optionalBody reads null as a present entry without configuration.
func optionalBody[T any](dec decode.Decoder[T]) decode.Decoder[OptionalBody[T]] {
	return func(st *decode.State, n *value.Node) (OptionalBody[T], error) {
		if n.IsNull() {
			return DefaultBody[T](), nil
		}
		v, err := dec(st, n)
		if err != nil {
			return OptionalBody[T]{}, err
		}
		return Body(v), nil
	}
}

func stringList() decode.Decoder[[]string] {
	return decode.SequenceOf(decode.String)
}

//nolint:gochecknoglobals // Immutable keyword tables and schemas
var (
	bareEvents = decode.NewEnum("event",
		decode.EnumValue("branch_protection_rule", EventBranchProtectionRule),
		decode.EnumValue("check_run", EventCheckRun),
		decode.EnumValue("check_suite", EventCheckSuite),
		decode.EnumValue("create", EventCreate),
		decode.EnumValue("delete", EventDelete),
		decode.EnumValue("deployment", EventDeployment),
		decode.EnumValue("deployment_status", EventDeploymentStatus),
		decode.EnumValue("discussion", EventDiscussion),
		decode.EnumValue("discussion_comment", EventDiscussionComment),
		decode.EnumValue("fork", EventFork),
		decode.EnumValue("gollum", EventGollum),
		decode.EnumValue("issue_comment", EventIssueComment),
		decode.EnumValue("issues", EventIssues),
		decode.EnumValue("label", EventLabel),
		decode.EnumValue("merge_group", EventMergeGroup),
		decode.EnumValue("milestone", EventMilestone),
		decode.EnumValue("page_build", EventPageBuild),
		decode.EnumValue("project", EventProject),
		decode.EnumValue("project_card", EventProjectCard),
		decode.EnumValue("project_column", EventProjectColumn),
		decode.EnumValue("public", EventPublic),
		decode.EnumValue("pull_request", EventPullRequest),
		decode.EnumValue("pull_request_review", EventPullRequestReview),
		decode.EnumValue("pull_request_review_comment", EventPullRequestReviewComment),
		decode.EnumValue("pull_request_target", EventPullRequestTarget),
		decode.EnumValue("push", EventPush),
		decode.EnumValue("registry_package", EventRegistryPackage),
		decode.EnumValue("release", EventRelease),
		decode.EnumValue("repository_dispatch", EventRepositoryDispatch),
		decode.EnumValue("schedule", EventSchedule),
		decode.EnumValue("status", EventStatus),
		decode.EnumValue("watch", EventWatch),
		decode.EnumValue("workflow_call", EventWorkflowCall),
		decode.EnumValue("workflow_dispatch", EventWorkflowDispatch),
		decode.EnumValue("workflow_run", EventWorkflowRun),
	)

	callInputTypes = decode.NewEnum("input type",
		decode.EnumValue("boolean", CallInputBoolean),
		decode.EnumValue("number", CallInputNumber),
		decode.EnumValue("string", CallInputString),
	)

	dispatchInputTypes = decode.NewEnum("dispatch input type",
		decode.EnumValue("string", DispatchInputString),
		decode.EnumValue("boolean", DispatchInputBoolean),
		decode.EnumValue("choice", DispatchInputChoice),
		decode.EnumValue("number", DispatchInputNumber),
		decode.EnumValue("environment", DispatchInputEnvironment),
	)

	genericEventSchema = decode.NewSchema("event",
		decode.Optional("types", stringOrList, func(g *GenericEvent) **SoV[string] { return &g.Types }),
	)

	emptyEventSchema = decode.NewSchema[EmptyEvent]("event without options")

	pushSchema = decode.NewSchema("push",
		decode.OptionalValue("branches", stringList(), func(p *Push) *[]string { return &p.Branches }),
		decode.OptionalValue("branches-ignore", stringList(), func(p *Push) *[]string { return &p.BranchesIgnore }),
		decode.OptionalValue("tags", stringList(), func(p *Push) *[]string { return &p.Tags }),
		decode.OptionalValue("tags-ignore", stringList(), func(p *Push) *[]string { return &p.TagsIgnore }),
		decode.OptionalValue("paths", stringList(), func(p *Push) *[]string { return &p.Paths }),
		decode.OptionalValue("paths-ignore", stringList(), func(p *Push) *[]string { return &p.PathsIgnore }),
	)

	pullRequestSchema = decode.NewSchema("pull request",
		decode.Optional("types", stringOrList, func(p *PullRequest) **SoV[string] { return &p.Types }),
		decode.OptionalValue("branches", stringList(), func(p *PullRequest) *[]string { return &p.Branches }),
		decode.OptionalValue("branches-ignore", stringList(), func(p *PullRequest) *[]string { return &p.BranchesIgnore }),
		decode.OptionalValue("paths", stringList(), func(p *PullRequest) *[]string { return &p.Paths }),
		decode.OptionalValue("paths-ignore", stringList(), func(p *PullRequest) *[]string { return &p.PathsIgnore }),
	)

	workflowRunSchema = decode.NewSchema("workflow run",
		decode.OptionalValue("workflows", stringList(), func(w *WorkflowRun) *[]string { return &w.Workflows }),
		decode.Optional("types", stringOrList, func(w *WorkflowRun) **SoV[string] { return &w.Types }),
		decode.OptionalValue("branches", stringList(), func(w *WorkflowRun) *[]string { return &w.Branches }),
		decode.OptionalValue("branches-ignore", stringList(), func(w *WorkflowRun) *[]string { return &w.BranchesIgnore }),
	)

	cronSchema = decode.NewSchema("schedule entry",
		decode.Required("cron", decode.String, func(c *Cron) *string { return &c.Cron }),
	)

	callInputSchema = decode.NewSchema("workflow call input",
		decode.Optional("description", decode.String, func(i *WorkflowCallInput) **string { return &i.Description }),
		decode.Optional("default", envValueUnion.Decode, func(i *WorkflowCallInput) **EnvValue { return &i.Default }),
		decode.Default("required", decode.Bool, false, func(i *WorkflowCallInput) *bool { return &i.Required }),
		decode.Required("type", callInputTypes.Decode, func(i *WorkflowCallInput) *WorkflowCallInputType { return &i.Type }),
	)

	callOutputSchema = decode.NewSchema("workflow call output",
		decode.Optional("description", decode.String, func(o *WorkflowCallOutput) **string { return &o.Description }),
		decode.Required("value", decode.String, func(o *WorkflowCallOutput) *string { return &o.Value }),
	)

	callSecretSchema = decode.NewSchema("workflow call secret",
		decode.Optional("description", decode.String, func(s *WorkflowCallSecret) **string { return &s.Description }),
		decode.Default("required", decode.Bool, false, func(s *WorkflowCallSecret) *bool { return &s.Required }),
	)

	workflowCallSchema = decode.NewSchema("workflow call",
		decode.OptionalValue("inputs", decode.MapOf(callInputSchema.Decode),
			func(w *WorkflowCall) *map[string]WorkflowCallInput { return &w.Inputs }),
		decode.OptionalValue("outputs", decode.MapOf(callOutputSchema.Decode),
			func(w *WorkflowCall) *map[string]WorkflowCallOutput { return &w.Outputs }),
		decode.OptionalValue("secrets", decode.MapOf(decode.Nullable(callSecretSchema.Decode)),
			func(w *WorkflowCall) *map[string]*WorkflowCallSecret { return &w.Secrets }),
	)

	dispatchInputSchema = decode.NewSchema("workflow dispatch input",
		decode.Optional("description", decode.String, func(i *WorkflowDispatchInput) **string { return &i.Description }),
		decode.Optional("default", envValueUnion.Decode, func(i *WorkflowDispatchInput) **EnvValue { return &i.Default }),
		decode.Default("required", decode.Bool, false, func(i *WorkflowDispatchInput) *bool { return &i.Required }),
		decode.EnumField("type", dispatchInputTypes, DispatchInputString,
			func(i *WorkflowDispatchInput) *WorkflowDispatchInputType { return &i.Type }),
		decode.OptionalValue("options", stringList(), func(i *WorkflowDispatchInput) *[]string { return &i.Options }),
	)

	workflowDispatchSchema = decode.NewSchema("workflow dispatch",
		decode.OptionalValue("inputs", decode.MapOf(dispatchInputSchema.Decode),
			func(w *WorkflowDispatch) *map[string]WorkflowDispatchInput { return &w.Inputs }),
	)

	eventEntries = []eventEntry{
		eventOf("branch_protection_rule", genericEventSchema.Decode, encodeGenericEvent, func(e *Events) *OptionalBody[GenericEvent] { return &e.BranchProtectionRule }),
		eventOf("check_run", genericEventSchema.Decode, encodeGenericEvent, func(e *Events) *OptionalBody[GenericEvent] { return &e.CheckRun }),
		eventOf("check_suite", genericEventSchema.Decode, encodeGenericEvent, func(e *Events) *OptionalBody[GenericEvent] { return &e.CheckSuite }),
		eventOf("create", emptyEventSchema.Decode, encodeEmptyEvent, func(e *Events) *OptionalBody[EmptyEvent] { return &e.Create }),
		eventOf("delete", emptyEventSchema.Decode, encodeEmptyEvent, func(e *Events) *OptionalBody[EmptyEvent] { return &e.Delete }),
		eventOf("deployment", emptyEventSchema.Decode, encodeEmptyEvent, func(e *Events) *OptionalBody[EmptyEvent] { return &e.Deployment }),
		eventOf("deployment_status", emptyEventSchema.Decode, encodeEmptyEvent, func(e *Events) *OptionalBody[EmptyEvent] { return &e.DeploymentStatus }),
		eventOf("discussion", genericEventSchema.Decode, encodeGenericEvent, func(e *Events) *OptionalBody[GenericEvent] { return &e.Discussion }),
		eventOf("discussion_comment", genericEventSchema.Decode, encodeGenericEvent, func(e *Events) *OptionalBody[GenericEvent] { return &e.DiscussionComment }),
		eventOf("fork", emptyEventSchema.Decode, encodeEmptyEvent, func(e *Events) *OptionalBody[EmptyEvent] { return &e.Fork }),
		eventOf("gollum", emptyEventSchema.Decode, encodeEmptyEvent, func(e *Events) *OptionalBody[EmptyEvent] { return &e.Gollum }),
		eventOf("issue_comment", genericEventSchema.Decode, encodeGenericEvent, func(e *Events) *OptionalBody[GenericEvent] { return &e.IssueComment }),
		eventOf("issues", genericEventSchema.Decode, encodeGenericEvent, func(e *Events) *OptionalBody[GenericEvent] { return &e.Issues }),
		eventOf("label", genericEventSchema.Decode, encodeGenericEvent, func(e *Events) *OptionalBody[GenericEvent] { return &e.Label }),
		eventOf("merge_group", genericEventSchema.Decode, encodeGenericEvent, func(e *Events) *OptionalBody[GenericEvent] { return &e.MergeGroup }),
		eventOf("milestone", genericEventSchema.Decode, encodeGenericEvent, func(e *Events) *OptionalBody[GenericEvent] { return &e.Milestone }),
		eventOf("page_build", emptyEventSchema.Decode, encodeEmptyEvent, func(e *Events) *OptionalBody[EmptyEvent] { return &e.PageBuild }),
		eventOf("project", genericEventSchema.Decode, encodeGenericEvent, func(e *Events) *OptionalBody[GenericEvent] { return &e.Project }),
		eventOf("project_card", genericEventSchema.Decode, encodeGenericEvent, func(e *Events) *OptionalBody[GenericEvent] { return &e.ProjectCard }),
		eventOf("project_column", genericEventSchema.Decode, encodeGenericEvent, func(e *Events) *OptionalBody[GenericEvent] { return &e.ProjectColumn }),
		eventOf("public", emptyEventSchema.Decode, encodeEmptyEvent, func(e *Events) *OptionalBody[EmptyEvent] { return &e.Public }),
		eventOf("pull_request", pullRequestSchema.Decode, encodePullRequest, func(e *Events) *OptionalBody[PullRequest] { return &e.PullRequest }),
		eventOf("pull_request_review", genericEventSchema.Decode, encodeGenericEvent, func(e *Events) *OptionalBody[GenericEvent] { return &e.PullRequestReview }),
		eventOf("pull_request_review_comment", genericEventSchema.Decode, encodeGenericEvent, func(e *Events) *OptionalBody[GenericEvent] { return &e.PullRequestReviewComment }),
		eventOf("pull_request_target", pullRequestSchema.Decode, encodePullRequest, func(e *Events) *OptionalBody[PullRequest] { return &e.PullRequestTarget }),
		eventOf("push", pushSchema.Decode, encodePush, func(e *Events) *OptionalBody[Push] { return &e.Push }),
		eventOf("registry_package", genericEventSchema.Decode, encodeGenericEvent, func(e *Events) *OptionalBody[GenericEvent] { return &e.RegistryPackage }),
		eventOf("release", genericEventSchema.Decode, encodeGenericEvent, func(e *Events) *OptionalBody[GenericEvent] { return &e.Release }),
		eventOf("repository_dispatch", genericEventSchema.Decode, encodeGenericEvent, func(e *Events) *OptionalBody[GenericEvent] { return &e.RepositoryDispatch }),
		eventOf("schedule", decode.SequenceOf(cronSchema.Decode), encodeSchedule, func(e *Events) *OptionalBody[[]Cron] { return &e.Schedule }),
		eventOf("status", emptyEventSchema.Decode, encodeEmptyEvent, func(e *Events) *OptionalBody[EmptyEvent] { return &e.Status }),
		eventOf("watch", genericEventSchema.Decode, encodeGenericEvent, func(e *Events) *OptionalBody[GenericEvent] { return &e.Watch }),
		eventOf("workflow_call", workflowCallSchema.Decode, encodeWorkflowCall, func(e *Events) *OptionalBody[WorkflowCall] { return &e.WorkflowCall }),
		eventOf("workflow_dispatch", workflowDispatchSchema.Decode, encodeWorkflowDispatch, func(e *Events) *OptionalBody[WorkflowDispatch] { return &e.WorkflowDispatch }),
		eventOf("workflow_run", workflowRunSchema.Decode, encodeWorkflowRun, func(e *Events) *OptionalBody[WorkflowRun] { return &e.WorkflowRun }),
	}

	eventsSchema = decode.NewSchema("events", eventFields()...)
)

func eventFields() []decode.Field[Events] {
	fields := make([]decode.Field[Events], 0, len(eventEntries))
	for _, ev := range eventEntries {
		fields = append(fields, ev.field)
	}
	return fields
}
