package decode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/ghaworkflow/internal/decode"
	wferrors "github.com/mrz1836/ghaworkflow/internal/errors"
	"github.com/mrz1836/ghaworkflow/internal/value"
)

func constant(s string) decode.Decoder[string] {
	return func(*decode.State, *value.Node) (string, error) { return s, nil }
}

func TestUnion_FirstMatchWins(t *testing.T) {
	// Both candidates accept a string; the earlier one must win.
	u := decode.NewUnion("synthetic",
		decode.Candidate[string]{Shape: "first", Match: decode.IsString, Decode: constant("first")},
		decode.Candidate[string]{Shape: "second", Match: decode.IsScalar, Decode: constant("second")},
	)

	got, err := u.Decode(decode.NewState(decode.DefaultOptions()), value.String("x"))
	require.NoError(t, err)
	assert.Equal(t, "first", got)

	got, err = u.Decode(decode.NewState(decode.DefaultOptions()), value.Number(1))
	require.NoError(t, err)
	assert.Equal(t, "second", got)
}

func TestUnion_ReorderingChangesResult(t *testing.T) {
	u := decode.NewUnion("synthetic",
		decode.Candidate[string]{Shape: "second", Match: decode.IsScalar, Decode: constant("second")},
		decode.Candidate[string]{Shape: "first", Match: decode.IsString, Decode: constant("first")},
	)

	got, err := u.Decode(decode.NewState(decode.DefaultOptions()), value.String("x"))
	require.NoError(t, err)
	assert.Equal(t, "second", got)
}

func TestUnion_CommitDoesNotFallThrough(t *testing.T) {
	// The first candidate matches but its decoder fails on a string; the
	// second candidate would succeed but must not be consulted.
	u := decode.NewUnion("flag",
		decode.Candidate[bool]{Shape: "any scalar as bool", Match: decode.IsScalar, Decode: decode.Bool},
		decode.Candidate[bool]{Shape: "string", Match: decode.IsString, Decode: func(*decode.State, *value.Node) (bool, error) {
			return true, nil
		}},
	)

	_, err := u.Decode(decode.NewState(decode.DefaultOptions()), value.String("yes"))
	require.ErrorIs(t, err, wferrors.ErrTypeMismatch)
}

func TestUnion_NoMatchingShape(t *testing.T) {
	u := decode.NewUnion("trigger",
		decode.Candidate[string]{Shape: "bare event", Match: decode.IsString, Decode: decode.String},
		decode.Candidate[string]{Shape: "bare event list", Match: decode.IsSequence, Decode: constant("list")},
	)

	st := decode.NewState(decode.DefaultOptions()).Field("on")
	_, err := u.Decode(st, value.Number(3).At(value.Position{Line: 2, Column: 5}))
	require.ErrorIs(t, err, wferrors.ErrNoMatchingShape)

	de, ok := decode.AsError(err)
	require.True(t, ok)
	assert.Equal(t, []string{"bare event", "bare event list"}, de.Tried)
	assert.Equal(t, "on", de.Path.String())
	assert.Equal(t, value.Position{Line: 2, Column: 5}, de.Pos)
	assert.Equal(t,
		"on (line 2, column 5): no matching shape: trigger cannot be a number, expected one of: bare event, bare event list",
		err.Error())
}

func TestVariant_Wraps(t *testing.T) {
	type wrapped struct{ n float64 }
	u := decode.NewUnion("wrapped",
		decode.Variant("number", decode.IsNumber, decode.Number, func(f float64) wrapped { return wrapped{n: f} }),
	)

	got, err := u.Decode(decode.NewState(decode.DefaultOptions()), value.Number(2))
	require.NoError(t, err)
	assert.Equal(t, wrapped{n: 2}, got)
	assert.Equal(t, "wrapped", u.Name())
	assert.Equal(t, []string{"number"}, u.Shapes())
}
