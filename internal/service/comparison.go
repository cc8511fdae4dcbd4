package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cupitman9/finanzas-bot/internal/apperr"
	"github.com/cupitman9/finanzas-bot/internal/model"
)

type userGetter interface {
	UserByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

type operationLister interface {
	OperationsByUser(ctx context.Context, userID uuid.UUID, f model.OperationFilter) ([]model.Operation, error)
}

type defaultCategoryLister interface {
	DefaultCategories(ctx context.Context) ([]model.Category, error)
}

// Period is one calendar month, Hasta exclusive.
type Period struct {
	Mes   int
	Anio  int
	Desde time.Time
	Hasta time.Time
}

type Comparison struct {
	users      userGetter
	operations operationLister
	categories defaultCategoryLister
	similarity *Similarity
	now        func() time.Time
}

func NewComparison(users userGetter, operations operationLister, categories defaultCategoryLister, similarity *Similarity) *Comparison {
	return &Comparison{users: users, operations: operations, categories: categories, similarity: similarity, now: time.Now}
}

// Compare builds expense breakdowns for both users over the same month.
func (s *Comparison) Compare(ctx context.Context, userID, otherID uuid.UUID, mes, anio *int) (*model.Comparacion, error) {
	if userID == otherID {
		return nil, apperr.Validation("no se puede comparar un usuario consigo mismo")
	}
	period, err := ResolvePeriod(s.now(), mes, anio)
	if err != nil {
		return nil, err
	}
	for _, id := range []uuid.UUID{userID, otherID} {
		u, err := s.users.UserByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if u == nil {
			return nil, apperr.NotFound("usuario", id)
		}
	}
	return s.compare(ctx, userID, otherID, period)
}

// CompareWithCandidate picks an anonymous partner for user and compares against it.
func (s *Comparison) CompareWithCandidate(ctx context.Context, user *model.User, c model.CriteriosComparacion) (*model.Comparacion, error) {
	period, err := ResolvePeriod(s.now(), c.Mes, c.Anio)
	if err != nil {
		return nil, err
	}
	candidate, matchBy, err := s.similarity.FindCandidate(ctx, user, c)
	if err != nil {
		return nil, err
	}
	res, err := s.compare(ctx, user.ID, candidate.ID, period)
	if err != nil {
		return nil, err
	}
	res.Comparado.UsuarioID = nil
	res.MatchBy = matchBy
	return res, nil
}

func (s *Comparison) compare(ctx context.Context, userID, otherID uuid.UUID, period Period) (*model.Comparacion, error) {
	defaults, err := s.categories.DefaultCategories(ctx)
	if err != nil {
		return nil, err
	}
	mine, err := s.breakdown(ctx, userID, defaults, period)
	if err != nil {
		return nil, err
	}
	theirs, err := s.breakdown(ctx, otherID, defaults, period)
	if err != nil {
		return nil, err
	}
	return &model.Comparacion{Usuario: mine, Comparado: theirs}, nil
}

func (s *Comparison) breakdown(ctx context.Context, userID uuid.UUID, defaults []model.Category, period Period) (model.ComparacionUsuario, error) {
	ops, err := s.operations.OperationsByUser(ctx, userID, model.OperationFilter{
		Tipo:  model.OperationExpense,
		Desde: &period.Desde,
		Hasta: &period.Hasta,
	})
	if err != nil {
		return model.ComparacionUsuario{}, err
	}
	res := BuildBreakdown(ops, defaults, period)
	id := userID
	res.UsuarioID = &id
	return res, nil
}

// ResolvePeriod turns an optional month (1-12) and year into a calendar month.
// Without a month the previous month relative to now is used.
func ResolvePeriod(now time.Time, mes, anio *int) (Period, error) {
	prev := time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, time.UTC)
	month, year := prev.Month(), prev.Year()
	if mes != nil {
		if *mes < 1 || *mes > 12 {
			return Period{}, apperr.Validation("mes debe estar entre 1 y 12")
		}
		month, year = time.Month(*mes), now.Year()
	}
	if anio != nil {
		if *anio < 1 {
			return Period{}, apperr.Validation("año inválido")
		}
		year = *anio
	}
	desde := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Period{Mes: int(month), Anio: year, Desde: desde, Hasta: desde.AddDate(0, 1, 0)}, nil
}

// BuildBreakdown sums expense operations inside period into one bucket per default category.
// Every default category is present even with a zero total; other categories are ignored.
func BuildBreakdown(ops []model.Operation, defaults []model.Category, period Period) model.ComparacionUsuario {
	totals := make(map[uuid.UUID]decimal.Decimal, len(defaults))
	for _, c := range defaults {
		totals[c.ID] = decimal.Zero
	}

	res := model.ComparacionUsuario{Mes: period.Mes, Anio: period.Anio, Desde: period.Desde, Hasta: period.Hasta}
	spent := decimal.Zero
	for _, op := range ops {
		if op.Tipo != model.OperationExpense || op.Fecha.Before(period.Desde) || !op.Fecha.Before(period.Hasta) {
			continue
		}
		res.TotalOperaciones++
		fecha := op.Fecha
		if res.PrimeraOperacion == nil || fecha.Before(*res.PrimeraOperacion) {
			res.PrimeraOperacion = &fecha
		}
		if res.UltimaOperacion == nil || fecha.After(*res.UltimaOperacion) {
			res.UltimaOperacion = &fecha
		}

		total, ok := totals[op.CategoryID]
		if !ok {
			continue
		}
		amount := decimal.NewFromFloat(op.Monto)
		totals[op.CategoryID] = total.Add(amount)
		spent = spent.Add(amount)
	}

	res.Categorias = make([]model.CategoriaTotal, 0, len(defaults))
	for _, c := range defaults {
		res.Categorias = append(res.Categorias, model.CategoriaTotal{
			CategoriaID: c.ID,
			Nombre:      c.Nombre,
			MontoTotal:  totals[c.ID].Round(2).InexactFloat64(),
		})
	}
	res.TotalGastado = spent.Round(2).InexactFloat64()
	return res
}
