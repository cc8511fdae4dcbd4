package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/cupitman9/finanzas-bot/internal/apperr"
	"github.com/cupitman9/finanzas-bot/internal/model"
)

// register creates the DB user for the authenticated identity.
func (s *server) register(c *fiber.Ctx) error {
	id := identityOf(c)
	if id == nil {
		return apperr.Validation("identidad no disponible")
	}
	var in model.ProfileInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	u, err := s.svc.Users.Register(c.UserContext(), *id, in)
	if err != nil {
		return err
	}
	return created(c, u, "usuario registrado")
}

func (s *server) me(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	return ok(c, u)
}

func (s *server) updateMe(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	var in model.ProfileInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	updated, err := s.svc.Users.UpdateProfile(c.UserContext(), u, in)
	if err != nil {
		return err
	}
	return ok(c, updated)
}

func (s *server) similarBySalary(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	similar, err := s.svc.Similarity.BySalary(c.UserContext(), u, c.QueryInt("count"))
	if err != nil {
		return err
	}
	return ok(c, similar)
}

func (s *server) similarByProfession(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	similar, err := s.svc.Similarity.ByProfession(c.UserContext(), u, c.QueryInt("count"))
	if err != nil {
		return err
	}
	return ok(c, similar)
}

func (s *server) similarByLocation(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	similar, err := s.svc.Similarity.ByLocation(c.UserContext(), u, c.Query("exactitud"), c.QueryInt("count"))
	if err != nil {
		return err
	}
	return ok(c, similar)
}

func (s *server) compare(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	otherID, err := paramID(c)
	if err != nil {
		return err
	}
	mes, err := optionalInt(c, "mes")
	if err != nil {
		return err
	}
	anio, err := optionalInt(c, "anio")
	if err != nil {
		return err
	}
	cmp, err := s.svc.Comparison.Compare(c.UserContext(), u.ID, otherID, mes, anio)
	if err != nil {
		return err
	}
	return ok(c, cmp)
}

func (s *server) compareWithCandidate(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	var criterios model.CriteriosComparacion
	if err := parseBody(c, &criterios); err != nil {
		return err
	}
	cmp, err := s.svc.Comparison.CompareWithCandidate(c.UserContext(), u, criterios)
	if err != nil {
		return err
	}
	return ok(c, cmp)
}

func optionalInt(c *fiber.Ctx, key string) (*int, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, apperr.Validation(key+" inválido", err)
	}
	return &n, nil
}
