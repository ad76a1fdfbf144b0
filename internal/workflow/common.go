package workflow

import (
	"strings"

	"github.com/mrz1836/ghaworkflow/internal/decode"
	"github.com/mrz1836/ghaworkflow/internal/value"
)

// Permissions is the GITHUB_TOKEN permission set of a workflow or job:
// a BasePermission applied to every scope, or an *ExplicitPermissions record.
type Permissions interface {
	isPermissions()
}

// BasePermission is a single permission keyword applied uniformly.
type BasePermission int

// Base permission keywords.
const (
	// BasePermissionDefault keeps whatever the repository grants by default.
	BasePermissionDefault BasePermission = iota
	BasePermissionReadAll
	BasePermissionWriteAll
)

func (BasePermission) isPermissions() {}

// String returns the canonical keyword.
func (b BasePermission) String() string {
	return basePermissions.Keyword(b)
}

// Permission is the access level of one permission scope.
type Permission int

// Permission levels. The zero value is PermissionNone.
const (
	PermissionNone Permission = iota
	PermissionRead
	PermissionWrite
)

// String returns the canonical keyword.
func (p Permission) String() string {
	return permissionLevels.Keyword(p)
}

// ExplicitPermissions lists a level per scope. Omitted scopes are PermissionNone.
type ExplicitPermissions struct {
	Actions            Permission
	Checks             Permission
	Contents           Permission
	Deployments        Permission
	IDToken            Permission
	Issues             Permission
	Discussions        Permission
	Packages           Permission
	Pages              Permission
	PullRequests       Permission
	RepositoryProjects Permission
	SecurityEvents     Permission
	Statuses           Permission
}

func (*ExplicitPermissions) isPermissions() {}

// Env maps environment variable names to their configured values.
type Env map[string]EnvValue

func newEnv() Env {
	return Env{}
}

// Strings returns every value in its textual form.
func (e Env) Strings() map[string]string {
	out := make(map[string]string, len(e))
	for k, v := range e {
		out[k] = v.String()
	}
	return out
}

// EnvValue is a scalar that is always consumed as text. The kind it was
// written as is kept so it can be stringified correctly.
type EnvValue struct {
	origin value.Kind
	str    string
	num    float64
	b      bool
}

// EnvString returns an EnvValue written as a string.
func EnvString(s string) EnvValue {
	return EnvValue{origin: value.KindString, str: s}
}

// EnvNumber returns an EnvValue written as a number.
func EnvNumber(f float64) EnvValue {
	return EnvValue{origin: value.KindNumber, num: f}
}

// EnvBool returns an EnvValue written as a boolean.
func EnvBool(b bool) EnvValue {
	return EnvValue{origin: value.KindBool, b: b}
}

// Origin returns the scalar kind the value was written as.
func (v EnvValue) Origin() value.Kind {
	return v.origin
}

// String returns the value as text: numbers in shortest decimal form and
// booleans as true or false.
func (v EnvValue) String() string {
	switch v.origin {
	case value.KindNumber:
		return decode.StringifyNumber(v.num)
	case value.KindBool:
		return decode.StringifyBool(v.b)
	default:
		return v.str
	}
}

// Expression is an unevaluated ${{ }} placeholder, kept verbatim.
type Expression string

// Body returns the text between the delimiters, trimmed.
func (e Expression) Body() string {
	s := strings.TrimSpace(string(e))
	s = strings.TrimPrefix(s, decode.ExprOpen)
	s = strings.TrimSuffix(s, decode.ExprClose)
	return strings.TrimSpace(s)
}

// LoE holds either a literal T or an expression that evaluates to one.
type LoE[T any] struct {
	literal T
	expr    Expression
	isExpr  bool
}

// BoE is a boolean or an expression.
type BoE = LoE[bool]

// Literal returns the literal branch.
func Literal[T any](v T) LoE[T] {
	return LoE[T]{literal: v}
}

// Expr returns the expression branch.
func Expr[T any](e Expression) LoE[T] {
	return LoE[T]{expr: e, isExpr: true}
}

// IsExpr reports whether the expression branch is held.
func (l LoE[T]) IsExpr() bool {
	return l.isExpr
}

// Literal returns the literal and true, or the zero T and false.
func (l LoE[T]) Literal() (T, bool) {
	if l.isExpr {
		var zero T
		return zero, false
	}
	return l.literal, true
}

// Expr returns the expression and true, or "" and false.
func (l LoE[T]) Expr() (Expression, bool) {
	return l.expr, l.isExpr
}

// SoV holds either one T or a sequence of them. A single value stays
// single; use Values for a uniform slice.
type SoV[T any] struct {
	one    T
	many   []T
	isMany bool
}

// One returns the singular form.
func One[T any](v T) SoV[T] {
	return SoV[T]{one: v}
}

// Many returns the sequence form. It is distinct from One even with a
// single element.
func Many[T any](vs ...T) SoV[T] {
	return SoV[T]{many: append([]T{}, vs...), isMany: true}
}

// IsOne reports whether the singular form is held.
func (s SoV[T]) IsOne() bool {
	return !s.isMany
}

// Values returns the held values as a fresh slice.
func (s SoV[T]) Values() []T {
	if s.isMany {
		return append([]T{}, s.many...)
	}
	return decode.SingularExpand(s.one)
}

// If is the condition of a job or step: an IfBool literal or an IfExpr.
type If interface {
	isIf()
}

// IfBool is a literal condition.
type IfBool bool

// IfExpr is a condition expression. It may be written with or without
// the ${{ }} delimiters.
type IfExpr string

func (IfBool) isIf() {}
func (IfExpr) isIf() {}

//nolint:gochecknoglobals // Immutable keyword tables, unions and schemas
var (
	basePermissions = decode.NewEnum("base permission",
		decode.EnumValue("default", BasePermissionDefault),
		decode.EnumValue("read-all", BasePermissionReadAll),
		decode.EnumValue("write-all", BasePermissionWriteAll),
	)

	permissionLevels = decode.NewEnum("permission",
		decode.EnumValue("read", PermissionRead),
		decode.EnumValue("write", PermissionWrite),
		decode.EnumValue("none", PermissionNone),
	)

	permissionScopes = []struct {
		key string
		ref func(*ExplicitPermissions) *Permission
	}{
		{"actions", func(p *ExplicitPermissions) *Permission { return &p.Actions }},
		{"checks", func(p *ExplicitPermissions) *Permission { return &p.Checks }},
		{"contents", func(p *ExplicitPermissions) *Permission { return &p.Contents }},
		{"deployments", func(p *ExplicitPermissions) *Permission { return &p.Deployments }},
		{"id-token", func(p *ExplicitPermissions) *Permission { return &p.IDToken }},
		{"issues", func(p *ExplicitPermissions) *Permission { return &p.Issues }},
		{"discussions", func(p *ExplicitPermissions) *Permission { return &p.Discussions }},
		{"packages", func(p *ExplicitPermissions) *Permission { return &p.Packages }},
		{"pages", func(p *ExplicitPermissions) *Permission { return &p.Pages }},
		{"pull-requests", func(p *ExplicitPermissions) *Permission { return &p.PullRequests }},
		{"repository-projects", func(p *ExplicitPermissions) *Permission { return &p.RepositoryProjects }},
		{"security-events", func(p *ExplicitPermissions) *Permission { return &p.SecurityEvents }},
		{"statuses", func(p *ExplicitPermissions) *Permission { return &p.Statuses }},
	}

	explicitPermissionsSchema = decode.NewSchema("explicit permissions", scopeFields()...)

	permissionsUnion = decode.NewUnion("permissions",
		decode.Variant("base permission", decode.IsString, basePermissions.Decode,
			func(b BasePermission) Permissions { return b }),
		decode.Variant("explicit permissions", decode.IsMapping, explicitPermissionsSchema.Decode,
			func(p ExplicitPermissions) Permissions { return &p }),
	)

	envValueUnion = decode.NewUnion("env value",
		decode.Variant("string", decode.IsString, decode.String, EnvString),
		decode.Variant("number", decode.IsNumber, decode.Number, EnvNumber),
		decode.Variant("bool", decode.IsBool, decode.Bool, EnvBool),
	)

	envDecoder = decode.Map(decode.MapOf(envValueUnion.Decode), func(m map[string]EnvValue) Env { return Env(m) })

	ifUnion = decode.NewUnion("if",
		decode.Variant("bool", decode.IsBool, decode.Bool, func(b bool) If { return IfBool(b) }),
		decode.Variant("condition", decode.IsString, decode.String, func(s string) If { return IfExpr(s) }),
	)

	// Stringly fields that GitHub also accepts as numbers or booleans.
	textDecoder = decode.Map(envValueUnion.Decode, EnvValue.String)

	boeDecoder    = loe("boolean or expression", "bool", decode.IsBool, decode.Bool)
	numberOrExpr  = loe("number or expression", "number", decode.IsNumber, decode.Number)
	envOrExpr     = loe("env or expression", "env mapping", decode.IsMapping, envDecoder)
	stringOrList  = sov("string or list", "string", decode.IsString, decode.String)
	defaultFalse  = func() BoE { return Literal(false) }
	defaultEnvLoE = func() LoE[Env] { return Literal(newEnv()) }
	defaultBase   = Permissions(BasePermissionDefault)
)

func scopeFields() []decode.Field[ExplicitPermissions] {
	fields := make([]decode.Field[ExplicitPermissions], 0, len(permissionScopes))
	for _, s := range permissionScopes {
		fields = append(fields, decode.EnumField(s.key, permissionLevels, PermissionNone, s.ref))
	}
	return fields
}

func expression(st *decode.State, n *value.Node) (Expression, error) {
	s, err := decode.String(st, n)
	return Expression(s), err
}

// loe builds the literal-or-expression union for T. The literal is tried
// first; the expression branch only accepts ${{ }} strings.
func loe[T any](name, literalShape string, match decode.Matcher, dec decode.Decoder[T]) decode.Decoder[LoE[T]] {
	return decode.NewUnion(name,
		decode.Variant(literalShape, match, dec, Literal[T]),
		decode.Variant("expression", decode.IsExpression, expression, Expr[T]),
	).Decode
}

// sov builds the scalar-or-vector union for T: one value first, then a sequence.
func sov[T any](name, oneShape string, match decode.Matcher, dec decode.Decoder[T]) decode.Decoder[SoV[T]] {
	return decode.NewUnion(name,
		decode.Variant(oneShape, match, dec, One[T]),
		decode.Variant("sequence", decode.IsSequence, decode.SequenceOf(dec), func(vs []T) SoV[T] {
			return SoV[T]{many: vs, isMany: true}
		}),
	).Decode
}
