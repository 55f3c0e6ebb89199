package product

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidateValidate(t *testing.T) {
	p, err := Candidate{ProductCode: " P1 ", Name: " Pen ", Price: " 1.50 "}.Validate()
	require.NoError(t, err)
	assert.Equal(t, Product{ProductCode: "P1", Name: "Pen", Price: 1.5, Owner: UnknownOwner}, p)
	assert.False(t, p.Persisted())

	_, err = Candidate{ProductCode: "P1", Name: "Pen", Price: "NaN"}.Validate()
	verr, ok := IsValidation(err)
	require.True(t, ok)
	assert.Equal(t, map[string]string{"price": "Valid price is required"}, verr.Fields)
}

func TestParsePrice(t *testing.T) {
	for _, raw := range []string{"", "abc", "-0.01", "Inf", "1e400"} {
		_, err := ParsePrice(raw)
		assert.Error(t, err, raw)
	}
	v, err := ParsePrice("0")
	require.NoError(t, err)
	assert.Zero(t, v)
}

func TestChangesNormalize(t *testing.T) {
	name := "  Pad "
	price := 2.0
	got, err := Changes{Name: &name, Price: &price}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, "Pad", *got.Name)

	blank := " "
	nan := math.NaN()
	_, err = Changes{Name: &blank, Price: &nan}.Normalize()
	verr, ok := IsValidation(err)
	require.True(t, ok)
	assert.Len(t, verr.Fields, 2)

	p := Product{Name: "Pen", Price: 1}
	Changes{Price: &price}.Apply(&p)
	assert.Equal(t, Product{Name: "Pen", Price: 2}, p)
	assert.True(t, Changes{}.Empty())
}

func TestOperationError(t *testing.T) {
	cause := errors.New("network down")
	err := error(&OperationError{Op: "delete", Err: cause})
	assert.ErrorIs(t, err, ErrRemoteOperation)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "delete product: network down", err.Error())

	wrapped := &OperationError{Op: "delete", Err: ErrNotFound}
	assert.ErrorIs(t, wrapped, ErrNotFound)
}

func TestValidationErrorMessage(t *testing.T) {
	verr := &ValidationError{}
	assert.False(t, verr.HasErrors())
	verr.Add("name", "first")
	verr.Add("name", "second")
	verr.Add("code", "x")
	assert.Equal(t, "validation failed: code: x; name: first", verr.Error())
}
