package workflow

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/ghaworkflow/internal/decode"
	wferrors "github.com/mrz1836/ghaworkflow/internal/errors"
	"github.com/mrz1836/ghaworkflow/internal/value"
)

const minimalJobs = `
jobs:
  build:
    runs-on: ubuntu-latest
    steps:
      - run: make
`

func mustDecode(t *testing.T, doc string) *Workflow {
	t.Helper()
	w, err := DecodeBytes([]byte(doc), decode.DefaultOptions())
	require.NoError(t, err)
	return w
}

func decodeErr(t *testing.T, doc string, opts decode.Options) *decode.Error {
	t.Helper()
	_, err := DecodeBytes([]byte(doc), opts)
	require.Error(t, err)
	de, ok := decode.AsError(err)
	require.True(t, ok, "want *decode.Error, got %T: %v", err, err)
	return de
}

func TestDecode_PermissionsBaseKeyword(t *testing.T) {
	w := mustDecode(t, "on: push\npermissions: read-all\n"+minimalJobs)
	assert.Equal(t, BasePermissionReadAll, w.Permissions)
}

func TestDecode_PermissionsExplicitScope(t *testing.T) {
	w := mustDecode(t, "on: push\npermissions:\n  security-events: write\n"+minimalJobs)

	require.IsType(t, &ExplicitPermissions{}, w.Permissions)
	assert.Equal(t, &ExplicitPermissions{SecurityEvents: PermissionWrite}, w.Permissions)

	p := w.Permissions.(*ExplicitPermissions)
	for _, s := range permissionScopes {
		if s.key == "security-events" {
			continue
		}
		assert.Equal(t, PermissionNone, *s.ref(p), s.key)
	}
}

func TestDecode_OnBareEvent(t *testing.T) {
	w := mustDecode(t, "on: push\n"+minimalJobs)
	assert.Equal(t, EventPush, w.On)
}

func TestDecode_OnBareEventList(t *testing.T) {
	w := mustDecode(t, "on: [push, fork]\n"+minimalJobs)
	assert.Equal(t, BareEvents{EventPush, EventFork}, w.On)
}

func TestDecode_EnvStringifiesScalars(t *testing.T) {
	w := mustDecode(t, "on: push\nenv: {FOO: 1, BAR: true, BAZ: '1.0', PI: 3.14}\n"+minimalJobs)

	assert.Equal(t, map[string]string{"FOO": "1", "BAR": "true", "BAZ": "1.0", "PI": "3.14"}, w.Env.Strings())
	assert.Equal(t, value.KindNumber, w.Env["FOO"].Origin())
	assert.Equal(t, value.KindBool, w.Env["BAR"].Origin())
	assert.Equal(t, value.KindString, w.Env["BAZ"].Origin())
}

func TestDecode_UnknownFieldStrict(t *testing.T) {
	doc := "on: push\nunrelated-key: 1\n" + minimalJobs

	de := decodeErr(t, doc, decode.DefaultOptions())
	require.ErrorIs(t, de, wferrors.ErrUnknownField)
	assert.Equal(t, "unrelated-key", de.Path.String())
	assert.Contains(t, de.Detail, `"unrelated-key"`)
	assert.Equal(t, 2, de.Pos.Line)

	w, err := DecodeBytes([]byte(doc), decode.Options{UnknownFields: decode.Lenient})
	require.NoError(t, err)
	assert.Equal(t, EventPush, w.On)
}

func TestDecode_Defaults(t *testing.T) {
	w := mustDecode(t, "on: push\n"+minimalJobs)

	assert.Nil(t, w.Name)
	assert.Nil(t, w.RunName)
	assert.Equal(t, BasePermissionDefault, w.Permissions)
	assert.NotNil(t, w.Env)
	assert.Empty(t, w.Env)
	assert.Nil(t, w.Defaults)
	assert.Nil(t, w.Concurrency)

	job := w.Jobs["build"].(*NormalJob)
	assert.Equal(t, BasePermissionDefault, job.Permissions)
	assert.Equal(t, Literal(false), job.ContinueOnError)
	env, ok := job.Env.Literal()
	require.True(t, ok)
	assert.Empty(t, env)
	assert.Nil(t, job.Needs)
	assert.Nil(t, job.If)
	assert.Nil(t, job.Strategy)

	step := job.Steps[0]
	assert.Equal(t, Literal(false), step.ContinueOnError)
	assert.Equal(t, &RunBody{Run: "make"}, step.Body)
}

func TestDecode_DefaultsAreNotShared(t *testing.T) {
	a := mustDecode(t, "on: push\n"+minimalJobs)
	b := mustDecode(t, "on: push\n"+minimalJobs)

	a.Env["X"] = EnvString("y")
	assert.Empty(t, b.Env)
}

func TestDecode_LiteralOrExpressionAreExclusive(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		wantExpr bool
		wantErr  error
	}{
		{"bool literal", "true", false, nil},
		{"expression", "${{ github.ref == 'refs/heads/main' }}", true, nil},
		{"string that is not an expression", "'yes please'", false, wferrors.ErrNoMatchingShape},
		{"quoted boolean word", "'true'", false, wferrors.ErrNoMatchingShape},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			doc := "on: push\nconcurrency:\n  group: g\n  cancel-in-progress: " + tc.value + "\n" + minimalJobs
			if tc.wantErr != nil {
				de := decodeErr(t, doc, decode.DefaultOptions())
				require.ErrorIs(t, de, tc.wantErr)
				assert.Equal(t, "concurrency.cancel-in-progress", de.Path.String())
				assert.Equal(t, []string{"bool", "expression"}, de.Tried)
				return
			}
			w := mustDecode(t, doc)
			c := w.Concurrency.(*RichConcurrency)
			assert.Equal(t, tc.wantExpr, c.CancelInProgress.IsExpr())
			_, isLiteral := c.CancelInProgress.Literal()
			assert.NotEqual(t, tc.wantExpr, isLiteral)
		})
	}
}

func TestDecode_ScalarOrVectorKeepsSingular(t *testing.T) {
	single := mustDecode(t, "on: push\njobs:\n  a:\n    runs-on: x\n  b:\n    runs-on: x\n    needs: a\n")
	list := mustDecode(t, "on: push\njobs:\n  a:\n    runs-on: x\n  b:\n    runs-on: x\n    needs: [a]\n")

	one := single.Jobs["b"].(*NormalJob).Needs
	many := list.Jobs["b"].(*NormalJob).Needs
	require.NotNil(t, one)
	require.NotNil(t, many)

	assert.True(t, one.IsOne())
	assert.False(t, many.IsOne())
	assert.NotEqual(t, *one, *many)
	assert.Equal(t, one.Values(), many.Values())
	assert.Equal(t, One("a"), *one)
	assert.Equal(t, Many("a"), *many)
}

func TestDecode_RunsOnShapes(t *testing.T) {
	tests := []struct {
		runsOn string
		want   RunsOn
	}{
		{"ubuntu-latest", RunnerLabels{Labels: One("ubuntu-latest")}},
		{"[self-hosted, gpu]", RunnerLabels{Labels: Many("self-hosted", "gpu")}},
		{"{group: large}", &RunnerGroup{Group: ptr("large")}},
	}
	for _, tc := range tests {
		t.Run(tc.runsOn, func(t *testing.T) {
			w := mustDecode(t, "on: push\njobs:\n  a:\n    runs-on: "+tc.runsOn+"\n")
			assert.Equal(t, tc.want, w.Jobs["a"].(*NormalJob).RunsOn)
		})
	}
}

func TestDecode_JobUnion(t *testing.T) {
	w := mustDecode(t, `
on: workflow_dispatch
jobs:
  call:
    uses: org/repo/.github/workflows/deploy.yml@v1
    secrets:
      token: ${{ secrets.TOKEN }}
  plain:
    runs-on: ubuntu-latest
`)
	require.IsType(t, &ReusableWorkflowCallJob{}, w.Jobs["call"])
	require.IsType(t, &NormalJob{}, w.Jobs["plain"])
	call := w.Jobs["call"].(*ReusableWorkflowCallJob)
	assert.Equal(t, SecretsMap{"token": "${{ secrets.TOKEN }}"}, call.Secrets)

	t.Run("runs-on wins over uses", func(t *testing.T) {
		de := decodeErr(t, "on: push\njobs:\n  a:\n    runs-on: x\n    uses: ./w.yml\n", decode.DefaultOptions())
		require.ErrorIs(t, de, wferrors.ErrUnknownField)
		assert.Equal(t, "jobs.a.uses", de.Path.String())
	})

	t.Run("neither shape", func(t *testing.T) {
		de := decodeErr(t, "on: push\njobs:\n  a:\n    name: x\n", decode.DefaultOptions())
		require.ErrorIs(t, de, wferrors.ErrNoMatchingShape)
		assert.Equal(t, []string{"normal job", "reusable workflow call"}, de.Tried)
		assert.Equal(t, "jobs.a", de.Path.String())
	})
}

func TestDecode_StepUnion(t *testing.T) {
	w := mustDecode(t, `
on: push
jobs:
  a:
    runs-on: x
    steps:
      - uses: actions/setup-go@v5
        with: {go-version: 1.25, cache: false}
      - run: 42
        shell: bash
`)
	steps := w.Jobs["a"].(*NormalJob).Steps
	require.Len(t, steps, 2)
	uses := steps[0].Body.(*UsesBody)
	assert.Equal(t, "actions/setup-go@v5", uses.Uses)
	assert.Equal(t, map[string]string{"go-version": "1.25", "cache": "false"}, uses.With.Strings())
	assert.Equal(t, &RunBody{Run: "42", Shell: ptr("bash")}, steps[1].Body)

	de := decodeErr(t, "on: push\njobs:\n  a:\n    runs-on: x\n    steps:\n      - name: nothing\n", decode.DefaultOptions())
	require.ErrorIs(t, de, wferrors.ErrNoMatchingShape)
	assert.Equal(t, "jobs.a.steps[0]", de.Path.String())
}

func TestDecode_EventBodies(t *testing.T) {
	w := mustDecode(t, `
on:
  push:
  pull_request:
    branches: [main]
  issues:
    types: opened
`)
	ev := w.On.(*Events)
	assert.Equal(t, BodyDefault, ev.Push.State())
	pr, ok := ev.PullRequest.Get()
	require.True(t, ok)
	assert.Equal(t, []string{"main"}, pr.Branches)
	assert.Equal(t, BodyMissing, ev.Fork.State())
	assert.False(t, ev.Fork.IsSet())
	issues, _ := ev.Issues.Get()
	assert.Equal(t, &GenericEvent{Types: &SoV[string]{one: "opened"}}, &issues)
	assert.Equal(t, []string{"issues", "pull_request", "push"}, ev.Names())
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		kind error
		path string
	}{
		{"missing on", minimalJobs, wferrors.ErrMissingRequiredField, "on"},
		{"missing jobs", "on: push\n", wferrors.ErrMissingRequiredField, "jobs"},
		{"unknown event", "on: teleport\n" + minimalJobs, wferrors.ErrUnknownVariant, "on"},
		{"unknown event in list", "on: [push, teleport]\n" + minimalJobs, wferrors.ErrUnknownVariant, "on[1]"},
		{"unknown base permission", "on: push\npermissions: admin\n" + minimalJobs, wferrors.ErrUnknownVariant, "permissions"},
		{"unknown scope level", "on: push\npermissions: {issues: admin}\n" + minimalJobs, wferrors.ErrUnknownVariant, "permissions.issues"},
		{"permissions as list", "on: push\npermissions: [read]\n" + minimalJobs, wferrors.ErrNoMatchingShape, "permissions"},
		{"trigger as number", "on: 1\n" + minimalJobs, wferrors.ErrNoMatchingShape, "on"},
		{"env value as list", "on: push\nenv: {A: [1]}\n" + minimalJobs, wferrors.ErrNoMatchingShape, "env.A"},
		{"env not a mapping", "on: push\nenv: [1]\n" + minimalJobs, wferrors.ErrShapeMismatch, "env"},
		{"document not a mapping", "- on\n", wferrors.ErrShapeMismatch, "<root>"},
		{"bad dispatch input type", "on:\n  workflow_dispatch:\n    inputs:\n      x: {type: file}\n" + minimalJobs,
			wferrors.ErrUnknownVariant, "on.workflow_dispatch.inputs.x.type"},
		{"empty event with options", "on:\n  fork: {types: [x]}\n" + minimalJobs, wferrors.ErrUnknownField, "on.fork.types"},
		{"bad secrets keyword", "on: push\njobs:\n  a:\n    uses: ./x.yml\n    secrets: all\n", wferrors.ErrUnknownVariant, "jobs.a.secrets"},
		{"timeout as string", "on: push\njobs:\n  a:\n    runs-on: x\n    timeout-minutes: ten\n", wferrors.ErrNoMatchingShape, "jobs.a.timeout-minutes"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			de := decodeErr(t, tc.doc, decode.DefaultOptions())
			require.ErrorIs(t, de, tc.kind)
			assert.Equal(t, tc.path, de.Path.String())
		})
	}
}

func TestDecode_EmptyDocument(t *testing.T) {
	de := decodeErr(t, "", decode.DefaultOptions())
	require.ErrorIs(t, de, wferrors.ErrShapeMismatch)
}

func TestDecodeBytes_ParseError(t *testing.T) {
	_, err := DecodeBytes([]byte("on: [push"), decode.DefaultOptions())
	require.ErrorIs(t, err, wferrors.ErrDocumentParse)
}

func TestDecode_FullWorkflow(t *testing.T) {
	w := loadFixture(t)

	assert.Equal(t, ptr("CI"), w.Name)
	ev := w.On.(*Events)
	assert.Equal(t, []string{"fork", "pull_request", "push", "release", "schedule", "workflow_dispatch"}, ev.Names())

	crons, _ := ev.Schedule.Get()
	assert.Equal(t, []Cron{{Cron: "0 3 * * 1"}}, crons)

	dispatch, _ := ev.WorkflowDispatch.Get()
	level := dispatch.Inputs["level"]
	assert.Equal(t, DispatchInputChoice, level.Type)
	assert.True(t, level.Required)
	assert.Equal(t, []string{"info", "debug"}, level.Options)
	assert.Equal(t, DispatchInputBoolean, dispatch.Inputs["dry-run"].Type)
	assert.Equal(t, "false", dispatch.Inputs["dry-run"].Default.String())

	assert.Equal(t, "1.25", w.Env["GO_VERSION"].String())
	assert.Equal(t, "0", w.Env["CGO_ENABLED"].String())
	assert.Equal(t, &Defaults{Run: &RunDefaults{Shell: ptr("bash"), WorkingDirectory: ptr("./src")}}, w.Defaults)

	c := w.Concurrency.(*RichConcurrency)
	expr, ok := c.CancelInProgress.Expr()
	require.True(t, ok)
	assert.Equal(t, "github.ref != 'refs/heads/main'", expr.Body())

	test := w.Jobs["test"].(*NormalJob)
	require.NotNil(t, test.Strategy)
	mx, ok := test.Strategy.Matrix.Literal()
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"go", "os"}, keys(mx.Dimensions))
	rows, _ := mx.Include.Literal()
	require.Len(t, rows, 1)
	assert.True(t, rows[0]["experimental"].Equal(value.Bool(true)))
	assert.True(t, rows[0]["experimental"].Pos().IsZero())
	assert.True(t, test.Steps[1].ContinueOnError.IsExpr())
	assert.Equal(t, IfExpr("github.event_name == 'push'"), test.Steps[1].If)

	lint := w.Jobs["lint"].(*NormalJob)
	spec := lint.Container.(*ContainerSpec)
	assert.Equal(t, []EnvValue{EnvNumber(8080), EnvString("9090:9090")}, spec.Ports)
	assert.Equal(t, ContainerImage("redis:7"), lint.Services["redis"])
	assert.Equal(t, &DetailedEnvironment{Name: "staging", URL: ptr("https://staging.example.com")}, lint.Environment)

	release := w.Jobs["release"].(*ReusableWorkflowCallJob)
	assert.Equal(t, SecretsInherit{}, release.Secrets)
	assert.Equal(t, Many("test", "lint"), *release.Needs)
	assert.Equal(t, IfExpr("${{ always() }}"), release.If)
}

func TestEncode_RoundTrip(t *testing.T) {
	docs := map[string]*Workflow{
		"fixture":  loadFixture(t),
		"minimal":  mustDecode(t, "on: push\n"+minimalJobs),
		"explicit": mustDecode(t, "on: [push]\npermissions: {}\nenv: {A: 1}\n"+minimalJobs),
		"matrix": mustDecode(t, `
on: {push: {}}
jobs:
  a:
    runs-on: {group: g, labels: x}
    strategy:
      matrix: ${{ fromJSON(needs.setup.outputs.matrix) }}
  b:
    runs-on: x
    strategy:
      matrix:
        include: []
        exclude: ${{ fromJSON('[]') }}
        os: ${{ fromJSON(inputs.os) }}
`),
	}
	for name, w := range docs {
		t.Run(name, func(t *testing.T) {
			encoded := Encode(w)
			again, err := Decode(encoded, decode.DefaultOptions())
			require.NoError(t, err)
			assert.Equal(t, w, again)
			reencoded := Encode(again)
			assert.True(t, reencoded.Equal(encoded), "re-encoded tree differs:\n%s", spew.Sdump(reencoded))
		})
	}
}

func TestEncode_TextRoundTrip(t *testing.T) {
	w := mustDecode(t, `name: "2024"
on: push
env:
  ONE: "1"
  YES: "true"
  NOTHING: "null"
  TILDE: "~"
  MERGE: "<<"
  HEX: "0x1F"
  NEG_ZERO: -0.0
  NUM: 1
  BIG: 1e20
  SMALL: 1e-7
  FLAG: false
jobs:
  build:
    runs-on: "1"
    steps:
      - uses: actions/setup-node@v4
        with:
          node-version: "20"
          cache: "false"
`)

	out, err := value.Marshal(Encode(w))
	require.NoError(t, err)

	again, err := DecodeBytes(out, decode.DefaultOptions())
	require.NoError(t, err, "re-parsing:\n%s", out)
	assert.Equal(t, w, again)

	assert.Equal(t, w.Env.Strings(), again.Env.Strings())
	assert.Equal(t, "-0", again.Env["NEG_ZERO"].String())
	for key, origin := range map[string]value.Kind{
		"ONE": value.KindString, "YES": value.KindString, "NOTHING": value.KindString,
		"TILDE": value.KindString, "HEX": value.KindString, "NUM": value.KindNumber,
		"FLAG": value.KindBool,
	} {
		assert.Equal(t, origin, again.Env[key].Origin(), key)
	}
	assert.Equal(t, "2024", *again.Name)

	build, ok := again.Jobs["build"].(*NormalJob)
	require.True(t, ok)
	with := build.Steps[0].Body.(*UsesBody).With
	assert.Equal(t, value.KindString, with["node-version"].Origin())
	assert.Equal(t, value.KindString, with["cache"].Origin())
}

func TestEncode_Canonical(t *testing.T) {
	w := mustDecode(t, "on: PUSH\npermissions: Read_All\n"+minimalJobs)
	encoded := Encode(w)

	want := value.Mapping(
		value.Pair("on", value.String("push")),
		value.Pair("permissions", value.String("read-all")),
		value.Pair("jobs", value.Mapping(value.Pair("build", value.Mapping(
			value.Pair("runs-on", value.String("ubuntu-latest")),
			value.Pair("steps", value.Sequence(value.Mapping(value.Pair("run", value.String("make"))))),
		)))),
	)
	assert.True(t, want.Equal(encoded), "got:\n%s", spew.Sdump(encoded))

	out, err := value.Marshal(encoded)
	require.NoError(t, err)
	assert.Contains(t, string(out), "on: push\npermissions: read-all\njobs:\n  build:\n")
}

func loadFixture(t *testing.T) *Workflow {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "full.yml"))
	require.NoError(t, err)
	w, err := DecodeBytes(data, decode.DefaultOptions())
	require.NoError(t, err)
	return w
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func ptr[T any](v T) *T {
	return &v
}
