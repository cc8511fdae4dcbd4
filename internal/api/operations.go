package api

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/cupitman9/finanzas-bot/internal/apperr"
	"github.com/cupitman9/finanzas-bot/internal/model"
)

const dateLayout = "2006-01-02"

// listOperations serves the unfiltered listing and the egresos/ingresos views.
func (s *server) listOperations(tipo model.OperationType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := currentUser(c)
		if err != nil {
			return err
		}
		f, err := operationFilter(c, tipo)
		if err != nil {
			return err
		}
		ops, err := s.svc.Operations.List(c.UserContext(), u.ID, f)
		if err != nil {
			return err
		}
		return ok(c, ops)
	}
}

func (s *server) getOperation(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	op, err := s.svc.Operations.Get(c.UserContext(), u.ID, id)
	if err != nil {
		return err
	}
	return ok(c, op)
}

func (s *server) createOperation(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	var in model.OperationInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	op, err := s.svc.Operations.Create(c.UserContext(), u.ID, in)
	if err != nil {
		return err
	}
	return created(c, op, "operación creada")
}

func (s *server) updateOperation(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var in model.OperationInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	op, err := s.svc.Operations.Update(c.UserContext(), u.ID, id, in)
	if err != nil {
		return err
	}
	return ok(c, op)
}

func (s *server) deleteOperation(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := s.svc.Operations.Delete(c.UserContext(), u.ID, id); err != nil {
		return err
	}
	return deleted(c, "operación eliminada")
}

// operationFilter reads tipo, desde and hasta. A date-only hasta includes that whole day.
func operationFilter(c *fiber.Ctx, tipo model.OperationType) (model.OperationFilter, error) {
	f := model.OperationFilter{Tipo: tipo}
	if tipo == "" {
		f.Tipo = model.OperationType(c.Query("tipo"))
	}

	if v := c.Query("desde"); v != "" {
		t, _, err := parseDate(v)
		if err != nil {
			return f, apperr.Validation("desde inválido", err)
		}
		f.Desde = &t
	}
	if v := c.Query("hasta"); v != "" {
		t, dateOnly, err := parseDate(v)
		if err != nil {
			return f, apperr.Validation("hasta inválido", err)
		}
		if dateOnly {
			t = t.AddDate(0, 0, 1)
		}
		f.Hasta = &t
	}
	return f, nil
}

func parseDate(v string) (time.Time, bool, error) {
	if t, err := time.Parse(dateLayout, v); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	return t, false, err
}
