package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cupitman9/finanzas-bot/internal/model"
)

func (s *server) listCategories(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	categories, err := s.svc.Categories.List(c.UserContext(), u.ID)
	if err != nil {
		return err
	}
	return ok(c, categories)
}

func (s *server) getCategory(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	category, err := s.svc.Categories.Get(c.UserContext(), u.ID, id)
	if err != nil {
		return err
	}
	return ok(c, category)
}

func (s *server) createCategory(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	var in model.CategoryInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	category, err := s.svc.Categories.Create(c.UserContext(), u.ID, in)
	if err != nil {
		return err
	}
	return created(c, category, "categoría creada")
}

func (s *server) updateCategory(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var in model.CategoryInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	category, err := s.svc.Categories.Update(c.UserContext(), u.ID, id, in)
	if err != nil {
		return err
	}
	return ok(c, category)
}

func (s *server) deleteCategory(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := s.svc.Categories.Delete(c.UserContext(), u.ID, id); err != nil {
		return err
	}
	return deleted(c, "categoría eliminada")
}

func (s *server) listWallets(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	wallets, err := s.svc.Wallets.List(c.UserContext(), u.ID)
	if err != nil {
		return err
	}
	return ok(c, wallets)
}

func (s *server) getWallet(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	wallet, err := s.svc.Wallets.Get(c.UserContext(), u.ID, id)
	if err != nil {
		return err
	}
	return ok(c, wallet)
}

func (s *server) createWallet(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	var in model.WalletInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	wallet, err := s.svc.Wallets.Create(c.UserContext(), u.ID, in)
	if err != nil {
		return err
	}
	return created(c, wallet, "billetera creada")
}

func (s *server) updateWallet(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var in model.WalletInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	wallet, err := s.svc.Wallets.Update(c.UserContext(), u.ID, id, in)
	if err != nil {
		return err
	}
	return ok(c, wallet)
}

func (s *server) deleteWallet(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := s.svc.Wallets.Delete(c.UserContext(), u.ID, id); err != nil {
		return err
	}
	return deleted(c, "billetera eliminada")
}

func (s *server) listObjectives(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	objectives, err := s.svc.Objectives.List(c.UserContext(), u.ID)
	if err != nil {
		return err
	}
	return ok(c, objectives)
}

func (s *server) getObjective(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	objective, err := s.svc.Objectives.Get(c.UserContext(), u.ID, id)
	if err != nil {
		return err
	}
	return ok(c, objective)
}

func (s *server) createObjective(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	var in model.ObjectiveInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	objective, err := s.svc.Objectives.Create(c.UserContext(), u.ID, in)
	if err != nil {
		return err
	}
	return created(c, objective, "objetivo creado")
}

func (s *server) updateObjective(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var in model.ObjectiveInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	objective, err := s.svc.Objectives.Update(c.UserContext(), u.ID, id, in)
	if err != nil {
		return err
	}
	return ok(c, objective)
}

func (s *server) deleteObjective(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := s.svc.Objectives.Delete(c.UserContext(), u.ID, id); err != nil {
		return err
	}
	return deleted(c, "objetivo eliminado")
}

// Professions and provinces are shared catalogs; only an authenticated caller is required.

func (s *server) listProfessions(c *fiber.Ctx) error {
	professions, err := s.svc.Professions.List(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, professions)
}

func (s *server) createProfession(c *fiber.Ctx) error {
	var in model.ProfessionInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	p, err := s.svc.Professions.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return created(c, p, "profesión creada")
}

func (s *server) updateProfession(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var in model.ProfessionInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	p, err := s.svc.Professions.Update(c.UserContext(), id, in)
	if err != nil {
		return err
	}
	return ok(c, p)
}

func (s *server) deleteProfession(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := s.svc.Professions.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return deleted(c, "profesión eliminada")
}

func (s *server) listProvinces(c *fiber.Ctx) error {
	provinces, err := s.svc.Locations.Provinces(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, provinces)
}

func (s *server) getProvince(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	p, err := s.svc.Locations.Province(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, p)
}
