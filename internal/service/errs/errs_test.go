package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/corray333/foodorder/internal/service/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissingAddressFields(t *testing.T) {
	err := errs.MissingAddressFields([]string{"street", "zipCode"})

	assert.Equal(t, errs.KindValidation, err.Kind)
	assert.Equal(t, errs.CodeMissingAddressFields, err.Code)
	assert.Equal(t, []string{"street", "zipCode"}, err.Fields)
	assert.Equal(t, "missing address fields: street, zipCode", err.Error())
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errs.Kind
	}{
		{name: "plain error", err: errors.New("boom"), want: errs.KindInternal},
		{name: "not found", err: errs.NotFound(errs.CodeOrderNotFound, "order not found"), want: errs.KindNotFound},
		{
			name: "wrapped external",
			err:  fmt.Errorf("create: %w", errs.ExternalService("catalog lookup failed", errors.New("timeout"))),
			want: errs.KindExternalService,
		},
		{name: "transition", err: errs.InvalidTransition("finalizado", "pendente"), want: errs.KindConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errs.KindOf(tt.err))
		})
	}
}

func TestErrorIsMatchesKindAndCode(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := fmt.Errorf("lookup: %w", errs.ExternalService("catalog unavailable", cause))

	require.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, &errs.Error{Kind: errs.KindExternalService, Code: errs.CodeExternalService})
	assert.NotErrorIs(t, err, &errs.Error{Kind: errs.KindNotFound, Code: errs.CodeOrderNotFound})
}
