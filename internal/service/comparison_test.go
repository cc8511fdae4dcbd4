package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cupitman9/finanzas-bot/internal/apperr"
	"github.com/cupitman9/finanzas-bot/internal/model"
)

func TestResolvePeriod(t *testing.T) {
	now := time.Date(2025, time.March, 15, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		now      time.Time
		mes      *int
		anio     *int
		wantMes  int
		wantAnio int
	}{
		{"default previous month", now, nil, nil, 2, 2025},
		{"january wraps to december", time.Date(2025, time.January, 3, 0, 0, 0, 0, time.UTC), nil, nil, 12, 2024},
		{"explicit month", now, ptr(8), nil, 8, 2025},
		{"explicit month and year", now, ptr(12), ptr(2023), 12, 2023},
		{"explicit year only", now, nil, ptr(2020), 2, 2020},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ResolvePeriod(tt.now, tt.mes, tt.anio)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMes, p.Mes)
			assert.Equal(t, tt.wantAnio, p.Anio)
			assert.Equal(t, 1, p.Desde.Day())
			assert.Equal(t, p.Desde.AddDate(0, 1, 0), p.Hasta)
		})
	}

	_, err := ResolvePeriod(now, ptr(13), nil)
	assert.True(t, apperr.IsValidation(err))
	_, err = ResolvePeriod(now, ptr(0), nil)
	assert.True(t, apperr.IsValidation(err))
}

func TestBuildBreakdownWithoutExpenses(t *testing.T) {
	defaults := []model.Category{{ID: uuid.New(), Nombre: "Comida y Bebida"}, {ID: uuid.New(), Nombre: "Transporte"}}
	period, err := ResolvePeriod(time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC), nil, nil)
	require.NoError(t, err)

	income := []model.Operation{{Monto: 500, Tipo: model.OperationIncome, CategoryID: defaults[0].ID, Fecha: period.Desde}}
	res := BuildBreakdown(income, defaults, period)

	require.Len(t, res.Categorias, 2)
	for _, c := range res.Categorias {
		assert.Equal(t, 0.0, c.MontoTotal)
	}
	assert.Equal(t, 0, res.TotalOperaciones)
	assert.Equal(t, 0.0, res.TotalGastado)
	assert.Nil(t, res.PrimeraOperacion)
	assert.Nil(t, res.UltimaOperacion)
}

func TestBuildBreakdownSumsDefaultCategoriesOnly(t *testing.T) {
	food := model.Category{ID: uuid.New(), Nombre: "Comida y Bebida"}
	transport := model.Category{ID: uuid.New(), Nombre: "Transporte"}
	custom := uuid.New()
	period, err := ResolvePeriod(time.Now(), ptr(8), ptr(2025))
	require.NoError(t, err)

	day := func(d int) time.Time { return time.Date(2025, time.August, d, 12, 0, 0, 0, time.UTC) }
	ops := []model.Operation{
		{Monto: 10.1, Tipo: model.OperationExpense, CategoryID: food.ID, Fecha: day(5)},
		{Monto: 20.2, Tipo: model.OperationExpense, CategoryID: food.ID, Fecha: day(1)},
		{Monto: 99, Tipo: model.OperationExpense, CategoryID: custom, Fecha: day(20)},
		{Monto: 5, Tipo: model.OperationExpense, CategoryID: transport.ID, Fecha: day(31)},
		{Monto: 7, Tipo: model.OperationExpense, CategoryID: transport.ID, Fecha: period.Hasta},
	}
	res := BuildBreakdown(ops, []model.Category{food, transport}, period)

	assert.Equal(t, []model.CategoriaTotal{
		{CategoriaID: food.ID, Nombre: food.Nombre, MontoTotal: 30.3},
		{CategoriaID: transport.ID, Nombre: transport.Nombre, MontoTotal: 5},
	}, res.Categorias)
	assert.Equal(t, 35.3, res.TotalGastado)
	assert.Equal(t, 4, res.TotalOperaciones)
	assert.Equal(t, day(1), *res.PrimeraOperacion)
	assert.Equal(t, day(31), *res.UltimaOperacion)
}

func TestCompare(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	a := env.store.addUser(model.User{AuthID: "a", Sueldo: ptr(1000.0)})
	b := env.store.addUser(model.User{AuthID: "b", Sueldo: ptr(1050.0)})
	food := env.store.addDefaultCategory("Comida y Bebida")
	wallet, err := env.wallets.Default(ctx, a.ID)
	require.NoError(t, err)

	fecha := time.Date(2025, time.July, 10, 0, 0, 0, 0, time.UTC)
	_, err = env.operations.Create(ctx, a.ID, model.OperationInput{
		Monto: 25, Tipo: model.OperationExpense, Fecha: fecha, CategoriaID: food.ID, BilleteraID: wallet.ID,
	})
	require.NoError(t, err)

	cmp := NewComparison(env.store, env.store, env.store, NewSimilarity(env.store, &seqRandom{values: []float64{0}}))
	cmp.now = func() time.Time { return time.Date(2025, time.August, 2, 0, 0, 0, 0, time.UTC) }

	res, err := cmp.Compare(ctx, a.ID, b.ID, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 7, res.Usuario.Mes)
	assert.Equal(t, 25.0, res.Usuario.TotalGastado)
	assert.Equal(t, 0.0, res.Comparado.TotalGastado)
	assert.Equal(t, b.ID, *res.Comparado.UsuarioID)

	_, err = cmp.Compare(ctx, a.ID, a.ID, nil, nil)
	assert.True(t, apperr.IsValidation(err))
	_, err = cmp.Compare(ctx, a.ID, uuid.New(), nil, nil)
	assert.True(t, apperr.IsNotFound(err))

	anon, err := cmp.CompareWithCandidate(ctx, &a, model.CriteriosComparacion{})
	require.NoError(t, err)
	assert.Nil(t, anon.Comparado.UsuarioID)
	assert.Equal(t, []string{"sueldo"}, anon.MatchBy)
	assert.Equal(t, 25.0, anon.Usuario.TotalGastado)
}
