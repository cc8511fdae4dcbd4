package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/cupitman9/finanzas-bot/internal/apperr"
	"github.com/cupitman9/finanzas-bot/internal/model"
)

const (
	// candidatePoolSize is how many best matches enter the weighted draw.
	candidatePoolSize = 3
	// selectionFactor is the geometric weight ratio between consecutive ranks.
	selectionFactor = 0.6

	DefaultSimilarCount = 3
	MaxSimilarCount     = 20
)

type Similarity struct {
	users SimilarUserFinder
	rnd   Random
}

func NewSimilarity(users SimilarUserFinder, rnd Random) *Similarity {
	return &Similarity{users: users, rnd: rnd}
}

// BySalary ranks other users by salary distance to ref.
func (s *Similarity) BySalary(ctx context.Context, ref *model.User, count int) ([]model.SimilarUser, error) {
	if ref.Sueldo == nil {
		return nil, apperr.Validation("el usuario no tiene sueldo registrado")
	}
	users, err := s.users.SimilarUsers(ctx, model.SimilarityQuery{
		ExcludeUserID: ref.ID,
		Salary:        ref.Sueldo,
		RequireSalary: true,
		Limit:         clampCount(count),
	})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, apperr.NotFound("usuarios con sueldo similar", nil)
	}
	return toSimilar(ref, users, []string{"sueldo"}), nil
}

// ByProfession returns users with exactly the same profession as ref.
func (s *Similarity) ByProfession(ctx context.Context, ref *model.User, count int) ([]model.SimilarUser, error) {
	if ref.Profesion == "" {
		return nil, apperr.Validation("el usuario no tiene profesión registrada")
	}
	users, err := s.users.SimilarUsers(ctx, model.SimilarityQuery{
		ExcludeUserID: ref.ID,
		Profession:    &ref.Profesion,
		Salary:        ref.Sueldo,
		Limit:         clampCount(count),
	})
	if err != nil {
		return nil, err
	}
	return toSimilar(ref, users, []string{"profesion"}), nil
}

// ByLocation returns users sharing ref's location down to precision.
func (s *Similarity) ByLocation(ctx context.Context, ref *model.User, precision string, count int) ([]model.SimilarUser, error) {
	p, err := parsePrecision(precision)
	if err != nil {
		return nil, err
	}
	if err := requireLocation(ref, p); err != nil {
		return nil, err
	}
	users, err := s.users.SimilarUsers(ctx, model.SimilarityQuery{
		ExcludeUserID: ref.ID,
		Location:      &ref.Ubicacion,
		Precision:     p,
		Salary:        ref.Sueldo,
		Limit:         clampCount(count),
	})
	if err != nil {
		return nil, err
	}
	return toSimilar(ref, filterLocation(ref.Ubicacion, p, users), p.MatchFields()), nil
}

// FindCandidate picks one comparison partner matching every requested criterion.
// Salary is used when no criterion is set.
func (s *Similarity) FindCandidate(ctx context.Context, ref *model.User, c model.CriteriosComparacion) (*model.User, []string, error) {
	if !c.Sueldo && !c.Profesion && c.Ubicacion == "" {
		c.Sueldo = true
	}

	q := model.SimilarityQuery{ExcludeUserID: ref.ID, Limit: candidatePoolSize, Salary: ref.Sueldo}
	var matchBy []string
	if c.Sueldo {
		if ref.Sueldo == nil {
			return nil, nil, apperr.Validation("el usuario no tiene sueldo registrado")
		}
		q.RequireSalary = true
		matchBy = append(matchBy, "sueldo")
	}
	if c.Profesion {
		if ref.Profesion == "" {
			return nil, nil, apperr.Validation("el usuario no tiene profesión registrada")
		}
		q.Profession = &ref.Profesion
		matchBy = append(matchBy, "profesion")
	}
	if c.Ubicacion != "" {
		p, err := parsePrecision(string(c.Ubicacion))
		if err != nil {
			return nil, nil, err
		}
		if err := requireLocation(ref, p); err != nil {
			return nil, nil, err
		}
		q.Location = &ref.Ubicacion
		q.Precision = p
		matchBy = append(matchBy, p.MatchFields()...)
	}

	users, err := s.users.SimilarUsers(ctx, q)
	if err != nil {
		return nil, nil, err
	}
	if q.Location != nil {
		users = filterLocation(ref.Ubicacion, q.Precision, users)
	}
	if len(users) == 0 {
		return nil, nil, apperr.NotFound("candidato para comparación", nil)
	}

	picked := users[PickWeighted(len(users), selectionFactor, s.rnd)]
	return &picked, matchBy, nil
}

// PickWeighted draws an index in [0, n) with weight factor^rank.
func PickWeighted(n int, factor float64, rnd Random) int {
	if n <= 1 {
		return 0
	}
	total := 0.0
	for i := 0; i < n; i++ {
		total += math.Pow(factor, float64(i))
	}
	r := rnd.Float64() * total
	for i := 0; i < n; i++ {
		r -= math.Pow(factor, float64(i))
		if r < 0 {
			return i
		}
	}
	return n - 1
}

func parsePrecision(precision string) (model.LocationPrecision, error) {
	p := model.LocationPrecision(strings.ToLower(strings.TrimSpace(precision)))
	if !p.Valid() {
		return "", apperr.Validation(fmt.Sprintf("exactitud inválida %q: use %s, %s o %s", precision,
			model.PrecisionProvince, model.PrecisionMunicipality, model.PrecisionLocality))
	}
	return p, nil
}

func requireLocation(ref *model.User, p model.LocationPrecision) error {
	for _, field := range p.MatchFields() {
		if locationField(ref.Ubicacion, field) == "" {
			return apperr.Validation(fmt.Sprintf("la ubicación del usuario no tiene %s", field))
		}
	}
	return nil
}

// filterLocation drops candidates that differ from loc on any field implied by p.
func filterLocation(loc model.Location, p model.LocationPrecision, users []model.User) []model.User {
	out := users[:0:0]
	for _, u := range users {
		match := true
		for _, field := range p.MatchFields() {
			if locationField(u.Ubicacion, field) != locationField(loc, field) {
				match = false
				break
			}
		}
		if match {
			out = append(out, u)
		}
	}
	return out
}

func locationField(loc model.Location, field string) string {
	switch field {
	case "provincia":
		return loc.Provincia
	case "municipio":
		return loc.Municipio
	case "localidad":
		return loc.Localidad
	}
	return ""
}

func toSimilar(ref *model.User, users []model.User, matchBy []string) []model.SimilarUser {
	out := make([]model.SimilarUser, 0, len(users))
	for _, u := range users {
		su := model.SimilarUser{
			ID:        u.ID,
			Nombre:    u.Nombre,
			Sueldo:    u.Sueldo,
			Profesion: u.Profesion,
			Ubicacion: u.Ubicacion,
			MatchBy:   matchBy,
		}
		if ref.Sueldo != nil && u.Sueldo != nil {
			diff := math.Abs(*u.Sueldo - *ref.Sueldo)
			su.DiferenciaSueldo = &diff
		}
		out = append(out, su)
	}
	return out
}

func clampCount(count int) int {
	switch {
	case count <= 0:
		return DefaultSimilarCount
	case count > MaxSimilarCount:
		return MaxSimilarCount
	}
	return count
}
