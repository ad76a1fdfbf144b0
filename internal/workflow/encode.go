package workflow

import (
	"maps"
	"slices"

	"github.com/mrz1836/ghaworkflow/internal/value"
)

// Encode renders a workflow back into a document tree. Keywords are written
// in canonical form, map keys are sorted and fields that hold their
// default are left out, so decoding the result yields an equal Workflow.
func Encode(w *Workflow) *value.Node {
	var m mapping
	m.putString("name", w.Name)
	m.putString("run-name", w.RunName)
	if w.On != nil {
		m.put("on", encodeTrigger(w.On))
	}
	m.putPermissions(w.Permissions)
	if len(w.Env) > 0 {
		m.put("env", encodeEnv(w.Env))
	}
	if w.Defaults != nil {
		m.put("defaults", encodeDefaults(w.Defaults))
	}
	if w.Concurrency != nil {
		m.put("concurrency", encodeConcurrency(w.Concurrency))
	}
	m.put("jobs", sortedMapping(w.Jobs, encodeJob))
	return m.node()
}

// mapping accumulates entries in output order.
type mapping []value.Entry

func (m *mapping) put(key string, n *value.Node) {
	*m = append(*m, value.Pair(key, n))
}

func (m *mapping) putString(key string, s *string) {
	if s != nil {
		m.put(key, value.String(*s))
	}
}

func (m *mapping) putStrings(key string, ss []string) {
	if ss != nil {
		m.put(key, encodeStrings(ss))
	}
}

func (m *mapping) putPermissions(p Permissions) {
	if p == nil || p == Permissions(BasePermissionDefault) {
		return
	}
	m.put("permissions", encodePermissions(p))
}

func (m *mapping) putEnvLoE(key string, l LoE[Env]) {
	if env, ok := l.Literal(); ok && len(env) == 0 {
		return
	}
	m.put(key, encodeLoE(l, encodeEnv))
}

func (m *mapping) putBoE(key string, b BoE) {
	if v, ok := b.Literal(); ok && !v {
		return
	}
	m.put(key, encodeLoE(b, value.Bool))
}

func (m *mapping) putIf(cond If) {
	if cond != nil {
		m.put("if", encodeIf(cond))
	}
}

func (m *mapping) putNeeds(needs *SoV[string]) {
	if needs != nil {
		m.put("needs", encodeSoV(*needs, value.String))
	}
}

func (m mapping) node() *value.Node {
	return value.Mapping(m...)
}

func sortedMapping[T any](src map[string]T, enc func(T) *value.Node) *value.Node {
	var m mapping
	for _, k := range slices.Sorted(maps.Keys(src)) {
		m.put(k, enc(src[k]))
	}
	return m.node()
}

func encodeStrings(ss []string) *value.Node {
	items := make([]*value.Node, 0, len(ss))
	for _, s := range ss {
		items = append(items, value.String(s))
	}
	return value.Sequence(items...)
}

func encodeSequence[T any](vs []T, enc func(T) *value.Node) *value.Node {
	items := make([]*value.Node, 0, len(vs))
	for _, v := range vs {
		items = append(items, enc(v))
	}
	return value.Sequence(items...)
}

func encodeLoE[T any](l LoE[T], enc func(T) *value.Node) *value.Node {
	if e, ok := l.Expr(); ok {
		return value.String(string(e))
	}
	v, _ := l.Literal()
	return enc(v)
}

func encodeSoV[T any](s SoV[T], enc func(T) *value.Node) *value.Node {
	if s.IsOne() {
		return enc(s.one)
	}
	return encodeSequence(s.many, enc)
}

func encodeEnvValue(v EnvValue) *value.Node {
	switch v.origin {
	case value.KindNumber:
		return value.Number(v.num)
	case value.KindBool:
		return value.Bool(v.b)
	default:
		return value.String(v.str)
	}
}

func encodeEnv(env Env) *value.Node {
	return sortedMapping(env, encodeEnvValue)
}

func encodeIf(cond If) *value.Node {
	switch c := cond.(type) {
	case IfBool:
		return value.Bool(bool(c))
	case IfExpr:
		return value.String(string(c))
	default:
		return value.Null()
	}
}

func encodePermissions(p Permissions) *value.Node {
	switch p := p.(type) {
	case BasePermission:
		return value.String(p.String())
	case *ExplicitPermissions:
		var m mapping
		for _, s := range permissionScopes {
			if level := *s.ref(p); level != PermissionNone {
				m.put(s.key, value.String(level.String()))
			}
		}
		return m.node()
	default:
		return value.Null()
	}
}

func encodeTrigger(t Trigger) *value.Node {
	switch t := t.(type) {
	case BareEvent:
		return value.String(t.String())
	case BareEvents:
		return encodeSequence(t, func(e BareEvent) *value.Node { return value.String(e.String()) })
	case *Events:
		var m mapping
		for _, ev := range eventEntries {
			if n, ok := ev.encode(t); ok {
				m.put(ev.field.Key(), n)
			}
		}
		return m.node()
	default:
		return value.Null()
	}
}

func encodeTypes(m *mapping, types *SoV[string]) {
	if types != nil {
		m.put("types", encodeSoV(*types, value.String))
	}
}

func encodeGenericEvent(g GenericEvent) *value.Node {
	var m mapping
	encodeTypes(&m, g.Types)
	return m.node()
}

func encodeEmptyEvent(EmptyEvent) *value.Node {
	return value.Mapping()
}

func encodePush(p Push) *value.Node {
	var m mapping
	m.putStrings("branches", p.Branches)
	m.putStrings("branches-ignore", p.BranchesIgnore)
	m.putStrings("tags", p.Tags)
	m.putStrings("tags-ignore", p.TagsIgnore)
	m.putStrings("paths", p.Paths)
	m.putStrings("paths-ignore", p.PathsIgnore)
	return m.node()
}

func encodePullRequest(p PullRequest) *value.Node {
	var m mapping
	encodeTypes(&m, p.Types)
	m.putStrings("branches", p.Branches)
	m.putStrings("branches-ignore", p.BranchesIgnore)
	m.putStrings("paths", p.Paths)
	m.putStrings("paths-ignore", p.PathsIgnore)
	return m.node()
}

func encodeWorkflowRun(w WorkflowRun) *value.Node {
	var m mapping
	m.putStrings("workflows", w.Workflows)
	encodeTypes(&m, w.Types)
	m.putStrings("branches", w.Branches)
	m.putStrings("branches-ignore", w.BranchesIgnore)
	return m.node()
}

func encodeSchedule(crons []Cron) *value.Node {
	return encodeSequence(crons, func(c Cron) *value.Node {
		return value.Mapping(value.Pair("cron", value.String(c.Cron)))
	})
}

func encodeWorkflowCall(w WorkflowCall) *value.Node {
	var m mapping
	if w.Inputs != nil {
		m.put("inputs", sortedMapping(w.Inputs, func(in WorkflowCallInput) *value.Node {
			var im mapping
			im.putString("description", in.Description)
			if in.Default != nil {
				im.put("default", encodeEnvValue(*in.Default))
			}
			if in.Required {
				im.put("required", value.Bool(true))
			}
			im.put("type", value.String(in.Type.String()))
			return im.node()
		}))
	}
	if w.Outputs != nil {
		m.put("outputs", sortedMapping(w.Outputs, func(out WorkflowCallOutput) *value.Node {
			var om mapping
			om.putString("description", out.Description)
			om.put("value", value.String(out.Value))
			return om.node()
		}))
	}
	if w.Secrets != nil {
		m.put("secrets", sortedMapping(w.Secrets, func(s *WorkflowCallSecret) *value.Node {
			if s == nil {
				return value.Null()
			}
			var sm mapping
			sm.putString("description", s.Description)
			if s.Required {
				sm.put("required", value.Bool(true))
			}
			return sm.node()
		}))
	}
	return m.node()
}

func encodeWorkflowDispatch(w WorkflowDispatch) *value.Node {
	var m mapping
	if w.Inputs != nil {
		m.put("inputs", sortedMapping(w.Inputs, func(in WorkflowDispatchInput) *value.Node {
			var im mapping
			im.putString("description", in.Description)
			if in.Default != nil {
				im.put("default", encodeEnvValue(*in.Default))
			}
			if in.Required {
				im.put("required", value.Bool(true))
			}
			im.put("type", value.String(in.Type.String()))
			im.putStrings("options", in.Options)
			return im.node()
		}))
	}
	return m.node()
}

func encodeDefaults(d *Defaults) *value.Node {
	var m mapping
	if d.Run != nil {
		var rm mapping
		rm.putString("shell", d.Run.Shell)
		rm.putString("working-directory", d.Run.WorkingDirectory)
		m.put("run", rm.node())
	}
	return m.node()
}

func encodeConcurrency(c Concurrency) *value.Node {
	switch c := c.(type) {
	case ConcurrencyGroup:
		return value.String(string(c))
	case *RichConcurrency:
		var m mapping
		m.put("group", value.String(c.Group))
		m.putBoE("cancel-in-progress", c.CancelInProgress)
		return m.node()
	default:
		return value.Null()
	}
}

func encodeJob(j Job) *value.Node {
	switch j := j.(type) {
	case *NormalJob:
		return encodeNormalJob(j)
	case *ReusableWorkflowCallJob:
		return encodeReusableJob(j)
	default:
		return value.Null()
	}
}

func encodeNormalJob(j *NormalJob) *value.Node {
	var m mapping
	m.putString("name", j.Name)
	m.putPermissions(j.Permissions)
	m.putNeeds(j.Needs)
	m.putIf(j.If)
	if j.RunsOn != nil {
		m.put("runs-on", encodeRunsOn(j.RunsOn))
	}
	if j.Environment != nil {
		m.put("environment", encodeEnvironment(j.Environment))
	}
	if j.Concurrency != nil {
		m.put("concurrency", encodeConcurrency(j.Concurrency))
	}
	if j.Outputs != nil {
		m.put("outputs", sortedMapping(j.Outputs, value.String))
	}
	m.putEnvLoE("env", j.Env)
	if j.Defaults != nil {
		m.put("defaults", encodeDefaults(j.Defaults))
	}
	if j.Steps != nil {
		m.put("steps", encodeSequence(j.Steps, encodeStep))
	}
	if j.TimeoutMinutes != nil {
		m.put("timeout-minutes", encodeLoE(*j.TimeoutMinutes, value.Number))
	}
	if j.Strategy != nil {
		m.put("strategy", encodeStrategy(j.Strategy))
	}
	m.putBoE("continue-on-error", j.ContinueOnError)
	if j.Container != nil {
		m.put("container", encodeContainer(j.Container))
	}
	if j.Services != nil {
		m.put("services", sortedMapping(j.Services, encodeContainer))
	}
	return m.node()
}

func encodeReusableJob(j *ReusableWorkflowCallJob) *value.Node {
	var m mapping
	m.putString("name", j.Name)
	m.putPermissions(j.Permissions)
	m.putNeeds(j.Needs)
	m.putIf(j.If)
	m.put("uses", value.String(j.Uses))
	if len(j.With) > 0 {
		m.put("with", encodeEnv(j.With))
	}
	switch s := j.Secrets.(type) {
	case SecretsInherit:
		m.put("secrets", value.String(secretsKeywords.Keyword(s)))
	case SecretsMap:
		m.put("secrets", sortedMapping(s, value.String))
	}
	if j.Strategy != nil {
		m.put("strategy", encodeStrategy(j.Strategy))
	}
	if j.Concurrency != nil {
		m.put("concurrency", encodeConcurrency(j.Concurrency))
	}
	return m.node()
}

func encodeRunsOn(r RunsOn) *value.Node {
	switch r := r.(type) {
	case RunnerLabels:
		return encodeSoV(r.Labels, value.String)
	case *RunnerGroup:
		var m mapping
		m.putString("group", r.Group)
		if r.Labels != nil {
			m.put("labels", encodeSoV(*r.Labels, value.String))
		}
		return m.node()
	default:
		return value.Null()
	}
}

func encodeEnvironment(e DeploymentEnvironment) *value.Node {
	switch e := e.(type) {
	case EnvironmentName:
		return value.String(string(e))
	case *DetailedEnvironment:
		var m mapping
		m.put("name", value.String(e.Name))
		m.putString("url", e.URL)
		return m.node()
	default:
		return value.Null()
	}
}

func encodeStrategy(s *Strategy) *value.Node {
	var m mapping
	if s.Matrix != nil {
		m.put("matrix", encodeLoE(*s.Matrix, encodeMatrix))
	}
	if s.FailFast != nil {
		m.put("fail-fast", encodeLoE(*s.FailFast, value.Bool))
	}
	if s.MaxParallel != nil {
		m.put("max-parallel", encodeLoE(*s.MaxParallel, value.Number))
	}
	return m.node()
}

func encodeMatrix(mx Matrix) *value.Node {
	var m mapping
	for _, k := range slices.Sorted(maps.Keys(mx.Dimensions)) {
		m.put(k, encodeLoE(mx.Dimensions[k], func(vs []*value.Node) *value.Node {
			return value.Sequence(vs...)
		}))
	}
	rows := func(key string, l LoE[[]MatrixRow]) {
		if rs, ok := l.Literal(); ok && len(rs) == 0 {
			return
		}
		m.put(key, encodeLoE(l, func(rs []MatrixRow) *value.Node {
			return encodeSequence(rs, func(r MatrixRow) *value.Node {
				return sortedMapping(r, func(n *value.Node) *value.Node { return n })
			})
		}))
	}
	rows("include", mx.Include)
	rows("exclude", mx.Exclude)
	return m.node()
}

func encodeContainer(c Container) *value.Node {
	switch c := c.(type) {
	case ContainerImage:
		return value.String(string(c))
	case *ContainerSpec:
		var m mapping
		m.put("image", value.String(c.Image))
		if c.Credentials != nil {
			m.put("credentials", value.Mapping(
				value.Pair("username", value.String(c.Credentials.Username)),
				value.Pair("password", value.String(c.Credentials.Password)),
			))
		}
		if c.Env != nil {
			m.put("env", encodeEnv(c.Env))
		}
		if c.Ports != nil {
			m.put("ports", encodeSequence(c.Ports, encodeEnvValue))
		}
		m.putStrings("volumes", c.Volumes)
		m.putString("options", c.Options)
		return m.node()
	default:
		return value.Null()
	}
}

func encodeStep(s Step) *value.Node {
	var m mapping
	m.putString("id", s.ID)
	m.putIf(s.If)
	m.putString("name", s.Name)
	if s.TimeoutMinutes != nil {
		m.put("timeout-minutes", encodeLoE(*s.TimeoutMinutes, value.Number))
	}
	m.putBoE("continue-on-error", s.ContinueOnError)
	m.putEnvLoE("env", s.Env)
	switch b := s.Body.(type) {
	case *UsesBody:
		m.put("uses", value.String(b.Uses))
		if len(b.With) > 0 {
			m.put("with", encodeEnv(b.With))
		}
	case *RunBody:
		m.put("run", value.String(b.Run))
		m.putString("working-directory", b.WorkingDirectory)
		m.putString("shell", b.Shell)
	}
	return m.node()
}
