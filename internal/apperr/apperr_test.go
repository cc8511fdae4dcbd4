package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("bad"), http.StatusBadRequest},
		{"not found", NotFound("categoria", "abc"), http.StatusNotFound},
		{"conflict", Conflict("ya existe %s", "x"), http.StatusConflict},
		{"wrapped not found", fmt.Errorf("load: %w", NotFound("usuario", nil)), http.StatusNotFound},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.err))
		})
	}
}

func TestCollect(t *testing.T) {
	assert.NoError(t, Collect("nada", nil))

	var errs *multierror.Error
	errs = multierror.Append(errs, errors.New("monto debe ser mayor a 0"), errors.New("tipo inválido"))
	err := Collect("operación inválida", errs)
	require.Error(t, err)

	var v *ValidationError
	require.True(t, errors.As(err, &v))
	assert.Equal(t, []string{"monto debe ser mayor a 0", "tipo inválido"}, v.Details())
	assert.Contains(t, err.Error(), "tipo inválido")
}

func TestNotFoundMessage(t *testing.T) {
	assert.Equal(t, "billetera 42 no encontrado", NotFound("billetera", 42).Error())
	assert.Equal(t, "usuario no encontrado", NotFound("usuario", nil).Error())
}

func TestStackIncludesOrigin(t *testing.T) {
	stack := Stack(Validation("bad"))
	assert.Contains(t, stack, "apperr_test.go")
}
