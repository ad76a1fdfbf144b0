package decode_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/ghaworkflow/internal/decode"
	wferrors "github.com/mrz1836/ghaworkflow/internal/errors"
	"github.com/mrz1836/ghaworkflow/internal/value"
)

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    decode.Policy
		wantErr bool
	}{
		{"", decode.Strict, false},
		{"strict", decode.Strict, false},
		{"Lenient", decode.Lenient, false},
		{" LENIENT ", decode.Lenient, false},
		{"loose", decode.Strict, true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := decode.ParsePolicy(tc.in)
			if tc.wantErr {
				require.ErrorIs(t, err, wferrors.ErrInvalidPolicy)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPolicy_Text(t *testing.T) {
	var p decode.Policy
	require.NoError(t, p.UnmarshalText([]byte("lenient")))
	assert.Equal(t, decode.Lenient, p)

	out, err := p.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "lenient", string(out))

	require.Error(t, p.UnmarshalText([]byte("nope")))
	assert.Equal(t, "policy(7)", decode.Policy(7).String())
	assert.Equal(t, decode.Strict, decode.DefaultOptions().UnknownFields)
}

func TestPath_String(t *testing.T) {
	st := decode.NewState(decode.DefaultOptions())
	assert.Equal(t, "<root>", st.Path().String())

	deep := st.Field("jobs").Field("build").Field("steps").Index(2).Field("with")
	assert.Equal(t, "jobs.build.steps[2].with", deep.Path().String())

	// Siblings must not share backing storage.
	a := st.Field("jobs").Field("a")
	b := st.Field("jobs").Field("b")
	assert.Equal(t, "jobs.a", a.Path().String())
	assert.Equal(t, "jobs.b", b.Path().String())
}

func TestState_Wrap(t *testing.T) {
	st := decode.NewState(decode.DefaultOptions()).Field("env").Field("FOO")
	n := value.Sequence().At(value.Position{Line: 3, Column: 7})

	_, accessorErr := n.AsString()
	err := st.Wrap(accessorErr, n)
	require.ErrorIs(t, err, wferrors.ErrTypeMismatch)
	de, ok := decode.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "expected string, got sequence", de.Detail)
	assert.Equal(t, "env.FOO (line 3, column 7): type mismatch: expected string, got sequence", err.Error())

	t.Run("already positioned errors pass through", func(t *testing.T) {
		again := decode.NewState(decode.DefaultOptions()).Wrap(err, n)
		assert.Same(t, de, again)
	})

	t.Run("foreign errors keep their chain", func(t *testing.T) {
		foreign := errors.New("boom")
		wrapped := st.Wrap(fmt.Errorf("ctx: %w", foreign), n)
		require.ErrorIs(t, wrapped, foreign)
	})

	assert.NoError(t, st.Wrap(nil, n))
}

func TestNullable(t *testing.T) {
	dec := decode.Nullable(decode.String)
	st := decode.NewState(decode.DefaultOptions())

	got, err := dec(st, value.Null())
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = dec(st, value.String("x"))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "x", *got)
}

func TestSequenceOf(t *testing.T) {
	dec := decode.SequenceOf(decode.String)
	st := decode.NewState(decode.DefaultOptions()).Field("branches")

	got, err := dec(st, value.Sequence(value.String("main"), value.String("dev")))
	require.NoError(t, err)
	assert.Equal(t, []string{"main", "dev"}, got)

	_, err = dec(st, value.String("main"))
	require.ErrorIs(t, err, wferrors.ErrShapeMismatch)

	_, err = dec(st, value.Sequence(value.String("main"), value.Number(1)))
	require.ErrorIs(t, err, wferrors.ErrTypeMismatch)
	de, _ := decode.AsError(err)
	assert.Equal(t, "branches[1]", de.Path.String())
}

func TestMapOf_ShapeMismatch(t *testing.T) {
	_, err := decode.MapOf(decode.String)(decode.NewState(decode.DefaultOptions()), value.Sequence())
	require.ErrorIs(t, err, wferrors.ErrShapeMismatch)
}

func TestRaw(t *testing.T) {
	n := value.Mapping(value.Pair("os", value.String("linux"))).At(value.Position{Line: 2, Column: 3})
	got, err := decode.Raw(nil, n)
	require.NoError(t, err)
	assert.NotSame(t, n, got)
	assert.True(t, got.Equal(n))
	assert.True(t, got.Pos().IsZero())

	got, err = decode.Raw(nil, nil)
	require.NoError(t, err)
	assert.True(t, got.IsNull())
}
