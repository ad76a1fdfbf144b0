package workflow

import (
	"github.com/mrz1836/ghaworkflow/internal/decode"
	"github.com/mrz1836/ghaworkflow/internal/value"
)

// Job is an entry of the workflow's jobs mapping: a *NormalJob that runs
// steps on a runner, or a *ReusableWorkflowCallJob that calls another workflow.
type Job interface {
	isJob()
}

// NormalJob runs a sequence of steps on a runner.
type NormalJob struct {
	Name            *string
	Permissions     Permissions
	Needs           *SoV[string]
	If              If
	RunsOn          RunsOn
	Environment     DeploymentEnvironment
	Concurrency     Concurrency
	Outputs         map[string]string
	Env             LoE[Env]
	Defaults        *Defaults
	Steps           []Step
	TimeoutMinutes  *LoE[float64]
	Strategy        *Strategy
	ContinueOnError BoE
	Container       Container
	Services        map[string]Container
}

func (*NormalJob) isJob() {}

// ReusableWorkflowCallJob calls a reusable workflow.
type ReusableWorkflowCallJob struct {
	Name        *string
	Permissions Permissions
	Needs       *SoV[string]
	If          If
	Uses        string
	With        Env
	Secrets     Secrets
	Strategy    *Strategy
	Concurrency Concurrency
}

func (*ReusableWorkflowCallJob) isJob() {}

// RunsOn selects the runner: RunnerLabels or a *RunnerGroup.
type RunsOn interface {
	isRunsOn()
}

// RunnerLabels selects a runner by one label or a list of labels.
type RunnerLabels struct {
	Labels SoV[string]
}

func (RunnerLabels) isRunsOn() {}

// RunnerGroup selects a runner from a group, optionally filtered by labels.
type RunnerGroup struct {
	Group  *string
	Labels *SoV[string]
}

func (*RunnerGroup) isRunsOn() {}

// DeploymentEnvironment is the environment a job deploys to: an
// EnvironmentName or a *DetailedEnvironment.
type DeploymentEnvironment interface {
	isDeploymentEnvironment()
}

// EnvironmentName references an environment by name only.
type EnvironmentName string

func (EnvironmentName) isDeploymentEnvironment() {}

// DetailedEnvironment references an environment and its deployment URL.
type DetailedEnvironment struct {
	Name string
	URL  *string
}

func (*DetailedEnvironment) isDeploymentEnvironment() {}

// Strategy configures a job matrix.
type Strategy struct {
	Matrix      *LoE[Matrix]
	FailFast    *BoE
	MaxParallel *LoE[float64]
}

// MatrixRow is one include or exclude entry. Values stay undecoded since
// a matrix may hold any shape.
type MatrixRow map[string]*value.Node

// Matrix holds the dimensions of a job matrix plus its include and
// exclude rows.
type Matrix struct {
	Include    LoE[[]MatrixRow]
	Exclude    LoE[[]MatrixRow]
	Dimensions map[string]LoE[[]*value.Node]
}

// Container is the image a job or service runs in: a ContainerImage or a
// *ContainerSpec.
type Container interface {
	isContainer()
}

// ContainerImage names the image only.
type ContainerImage string

func (ContainerImage) isContainer() {}

// ContainerSpec configures a container in full.
type ContainerSpec struct {
	Image       string
	Credentials *Credentials
	Env         Env
	Ports       []EnvValue
	Volumes     []string
	Options     *string
}

func (*ContainerSpec) isContainer() {}

// Credentials authenticate against a container registry.
type Credentials struct {
	Username string
	Password string
}

// Step is one step of a normal job.
type Step struct {
	ID              *string
	If              If
	Name            *string
	TimeoutMinutes  *LoE[float64]
	ContinueOnError BoE
	Env             LoE[Env]
	Body            StepBody
}

// StepBody is what a step does: a *UsesBody or a *RunBody.
type StepBody interface {
	isStepBody()
}

// UsesBody runs an action.
type UsesBody struct {
	Uses string
	With Env
}

func (*UsesBody) isStepBody() {}

// RunBody runs a shell command.
type RunBody struct {
	Run              string
	WorkingDirectory *string
	Shell            *string
}

func (*RunBody) isStepBody() {}

// Secrets passes secrets to a reusable workflow: SecretsInherit or SecretsMap.
type Secrets interface {
	isSecrets()
}

// SecretsInherit passes every secret of the caller through.
type SecretsInherit struct{}

func (SecretsInherit) isSecrets() {}

// SecretsMap passes named secrets.
type SecretsMap map[string]string

func (SecretsMap) isSecrets() {}

// usesStep and runStep are the two record forms of a step. Each declares
// the common step keys plus the keys of its body.
type usesStep struct {
	step Step
	body UsesBody
}

type runStep struct {
	step Step
	body RunBody
}

func stepFields[R any](step func(*R) *Step) []decode.Field[R] {
	return []decode.Field[R]{
		decode.Optional("id", decode.String, func(r *R) **string { return &step(r).ID }),
		decode.OptionalValue("if", ifUnion.Decode, func(r *R) *If { return &step(r).If }),
		decode.Optional("name", decode.String, func(r *R) **string { return &step(r).Name }),
		decode.Optional("timeout-minutes", numberOrExpr, func(r *R) **LoE[float64] { return &step(r).TimeoutMinutes }),
		decode.DefaultFunc("continue-on-error", boeDecoder, defaultFalse, func(r *R) *BoE { return &step(r).ContinueOnError }),
		decode.DefaultFunc("env", envOrExpr, defaultEnvLoE, func(r *R) *LoE[Env] { return &step(r).Env }),
	}
}

//nolint:gochecknoglobals // Immutable unions and schemas
var (
	runnerGroupSchema = decode.NewSchema("runner group",
		decode.Optional("group", decode.String, func(g *RunnerGroup) **string { return &g.Group }),
		decode.Optional("labels", stringOrList, func(g *RunnerGroup) **SoV[string] { return &g.Labels }),
	)

	runsOnUnion = decode.NewUnion("runs-on",
		decode.Variant("label", decode.IsString, decode.String,
			func(s string) RunsOn { return RunnerLabels{Labels: One(s)} }),
		decode.Variant("label list", decode.IsSequence, decode.SequenceOf(decode.String),
			func(ls []string) RunsOn { return RunnerLabels{Labels: SoV[string]{many: ls, isMany: true}} }),
		decode.Variant("runner group", decode.IsMapping, runnerGroupSchema.Decode,
			func(g RunnerGroup) RunsOn { return &g }),
	)

	detailedEnvironmentSchema = decode.NewSchema("environment",
		decode.Required("name", decode.String, func(e *DetailedEnvironment) *string { return &e.Name }),
		decode.Optional("url", decode.String, func(e *DetailedEnvironment) **string { return &e.URL }),
	)

	environmentUnion = decode.NewUnion("environment",
		decode.Variant("environment name", decode.IsString, decode.String,
			func(s string) DeploymentEnvironment { return EnvironmentName(s) }),
		decode.Variant("environment", decode.IsMapping, detailedEnvironmentSchema.Decode,
			func(e DetailedEnvironment) DeploymentEnvironment { return &e }),
	)

	matrixRows = loe("matrix rows", "row list", decode.IsSequence,
		decode.SequenceOf(decode.Map(decode.MapOf(decode.Raw), func(m map[string]*value.Node) MatrixRow { return MatrixRow(m) })))

	matrixDimension = loe("matrix dimension", "value list", decode.IsSequence, decode.SequenceOf(decode.Raw))

	emptyRows = func() LoE[[]MatrixRow] { return Literal([]MatrixRow{}) }

	matrixSchema = decode.NewSchema("matrix",
		decode.DefaultFunc("include", matrixRows, emptyRows, func(m *Matrix) *LoE[[]MatrixRow] { return &m.Include }),
		decode.DefaultFunc("exclude", matrixRows, emptyRows, func(m *Matrix) *LoE[[]MatrixRow] { return &m.Exclude }),
		decode.Remainder(matrixDimension, func(m *Matrix) *map[string]LoE[[]*value.Node] { return &m.Dimensions }),
	)

	strategySchema = decode.NewSchema("strategy",
		decode.Optional("matrix", loe("matrix", "matrix", decode.IsMapping, matrixSchema.Decode),
			func(s *Strategy) **LoE[Matrix] { return &s.Matrix }),
		decode.Optional("fail-fast", boeDecoder, func(s *Strategy) **BoE { return &s.FailFast }),
		decode.Optional("max-parallel", numberOrExpr, func(s *Strategy) **LoE[float64] { return &s.MaxParallel }),
	)

	credentialsSchema = decode.NewSchema("credentials",
		decode.Required("username", decode.String, func(c *Credentials) *string { return &c.Username }),
		decode.Required("password", decode.String, func(c *Credentials) *string { return &c.Password }),
	)

	containerSpecSchema = decode.NewSchema("container",
		decode.Required("image", decode.String, func(c *ContainerSpec) *string { return &c.Image }),
		decode.Optional("credentials", credentialsSchema.Decode, func(c *ContainerSpec) **Credentials { return &c.Credentials }),
		decode.OptionalValue("env", envDecoder, func(c *ContainerSpec) *Env { return &c.Env }),
		decode.OptionalValue("ports", decode.SequenceOf(envValueUnion.Decode), func(c *ContainerSpec) *[]EnvValue { return &c.Ports }),
		decode.OptionalValue("volumes", stringList(), func(c *ContainerSpec) *[]string { return &c.Volumes }),
		decode.Optional("options", decode.String, func(c *ContainerSpec) **string { return &c.Options }),
	)

	containerUnion = decode.NewUnion("container",
		decode.Variant("image", decode.IsString, decode.String,
			func(s string) Container { return ContainerImage(s) }),
		decode.Variant("container", decode.IsMapping, containerSpecSchema.Decode,
			func(c ContainerSpec) Container { return &c }),
	)

	usesStepSchema = decode.NewSchema("uses step", append(
		stepFields(func(r *usesStep) *Step { return &r.step }),
		decode.Required("uses", decode.String, func(r *usesStep) *string { return &r.body.Uses }),
		decode.DefaultFunc("with", envDecoder, newEnv, func(r *usesStep) *Env { return &r.body.With }),
	)...)

	runStepSchema = decode.NewSchema("run step", append(
		stepFields(func(r *runStep) *Step { return &r.step }),
		decode.Required("run", textDecoder, func(r *runStep) *string { return &r.body.Run }),
		decode.Optional("working-directory", decode.String, func(r *runStep) **string { return &r.body.WorkingDirectory }),
		decode.Optional("shell", decode.String, func(r *runStep) **string { return &r.body.Shell }),
	)...)

	stepUnion = decode.NewUnion("step",
		decode.Variant("uses step", decode.MappingWithKey("uses"), usesStepSchema.Decode, func(r usesStep) Step {
			s := r.step
			s.Body = &r.body
			return s
		}),
		decode.Variant("run step", decode.MappingWithKey("run"), runStepSchema.Decode, func(r runStep) Step {
			s := r.step
			s.Body = &r.body
			return s
		}),
	)

	secretsKeywords = decode.NewEnum("secrets keyword", decode.EnumValue("inherit", SecretsInherit{}))

	secretsUnion = decode.NewUnion("secrets",
		decode.Variant("inherit", decode.IsString, secretsKeywords.Decode,
			func(s SecretsInherit) Secrets { return s }),
		decode.Variant("secret mapping", decode.IsMapping, decode.MapOf(textDecoder),
			func(m map[string]string) Secrets { return SecretsMap(m) }),
	)

	normalJobSchema = decode.NewSchema("job",
		decode.Optional("name", decode.String, func(j *NormalJob) **string { return &j.Name }),
		decode.Default("permissions", permissionsUnion.Decode, defaultBase, func(j *NormalJob) *Permissions { return &j.Permissions }),
		decode.Optional("needs", stringOrList, func(j *NormalJob) **SoV[string] { return &j.Needs }),
		decode.OptionalValue("if", ifUnion.Decode, func(j *NormalJob) *If { return &j.If }),
		decode.Required("runs-on", runsOnUnion.Decode, func(j *NormalJob) *RunsOn { return &j.RunsOn }),
		decode.OptionalValue("environment", environmentUnion.Decode, func(j *NormalJob) *DeploymentEnvironment { return &j.Environment }),
		decode.OptionalValue("concurrency", concurrencyUnion.Decode, func(j *NormalJob) *Concurrency { return &j.Concurrency }),
		decode.OptionalValue("outputs", decode.MapOf(textDecoder), func(j *NormalJob) *map[string]string { return &j.Outputs }),
		decode.DefaultFunc("env", envOrExpr, defaultEnvLoE, func(j *NormalJob) *LoE[Env] { return &j.Env }),
		decode.Optional("defaults", defaultsSchema.Decode, func(j *NormalJob) **Defaults { return &j.Defaults }),
		decode.OptionalValue("steps", decode.SequenceOf(stepUnion.Decode), func(j *NormalJob) *[]Step { return &j.Steps }),
		decode.Optional("timeout-minutes", numberOrExpr, func(j *NormalJob) **LoE[float64] { return &j.TimeoutMinutes }),
		decode.Optional("strategy", strategySchema.Decode, func(j *NormalJob) **Strategy { return &j.Strategy }),
		decode.DefaultFunc("continue-on-error", boeDecoder, defaultFalse, func(j *NormalJob) *BoE { return &j.ContinueOnError }),
		decode.OptionalValue("container", containerUnion.Decode, func(j *NormalJob) *Container { return &j.Container }),
		decode.OptionalValue("services", decode.MapOf(containerUnion.Decode), func(j *NormalJob) *map[string]Container { return &j.Services }),
	)

	reusableJobSchema = decode.NewSchema("reusable workflow call",
		decode.Optional("name", decode.String, func(j *ReusableWorkflowCallJob) **string { return &j.Name }),
		decode.Default("permissions", permissionsUnion.Decode, defaultBase, func(j *ReusableWorkflowCallJob) *Permissions { return &j.Permissions }),
		decode.Optional("needs", stringOrList, func(j *ReusableWorkflowCallJob) **SoV[string] { return &j.Needs }),
		decode.OptionalValue("if", ifUnion.Decode, func(j *ReusableWorkflowCallJob) *If { return &j.If }),
		decode.Required("uses", decode.String, func(j *ReusableWorkflowCallJob) *string { return &j.Uses }),
		decode.DefaultFunc("with", envDecoder, newEnv, func(j *ReusableWorkflowCallJob) *Env { return &j.With }),
		decode.OptionalValue("secrets", secretsUnion.Decode, func(j *ReusableWorkflowCallJob) *Secrets { return &j.Secrets }),
		decode.Optional("strategy", strategySchema.Decode, func(j *ReusableWorkflowCallJob) **Strategy { return &j.Strategy }),
		decode.OptionalValue("concurrency", concurrencyUnion.Decode, func(j *ReusableWorkflowCallJob) *Concurrency { return &j.Concurrency }),
	)

	jobUnion = decode.NewUnion("job",
		decode.Variant("normal job", decode.MappingWithKey("runs-on"), normalJobSchema.Decode,
			func(j NormalJob) Job { return &j }),
		decode.Variant("reusable workflow call", decode.MappingWithKey("uses"), reusableJobSchema.Decode,
			func(j ReusableWorkflowCallJob) Job { return &j }),
	)
)
