// Package api is the JSON HTTP surface over the finance services.
package api

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/cupitman9/finanzas-bot/internal/apperr"
	"github.com/cupitman9/finanzas-bot/internal/model"
)

type UserService interface {
	Register(ctx context.Context, id model.Identity, in model.ProfileInput) (*model.User, error)
	ByAuthID(ctx context.Context, authID string) (*model.User, error)
	UpdateProfile(ctx context.Context, u *model.User, in model.ProfileInput) (*model.User, error)
}

type CategoryService interface {
	List(ctx context.Context, userID uuid.UUID) ([]model.Category, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*model.Category, error)
	Create(ctx context.Context, userID uuid.UUID, in model.CategoryInput) (*model.Category, error)
	Update(ctx context.Context, userID, id uuid.UUID, in model.CategoryInput) (*model.Category, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type WalletService interface {
	List(ctx context.Context, userID uuid.UUID) ([]model.Wallet, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*model.Wallet, error)
	Create(ctx context.Context, userID uuid.UUID, in model.WalletInput) (*model.Wallet, error)
	Update(ctx context.Context, userID, id uuid.UUID, in model.WalletInput) (*model.Wallet, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type OperationService interface {
	List(ctx context.Context, userID uuid.UUID, f model.OperationFilter) ([]model.Operation, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*model.Operation, error)
	Create(ctx context.Context, userID uuid.UUID, in model.OperationInput) (*model.Operation, error)
	Update(ctx context.Context, userID, id uuid.UUID, in model.OperationInput) (*model.Operation, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type ObjectiveService interface {
	List(ctx context.Context, userID uuid.UUID) ([]model.Objective, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*model.Objective, error)
	Create(ctx context.Context, userID uuid.UUID, in model.ObjectiveInput) (*model.Objective, error)
	Update(ctx context.Context, userID, id uuid.UUID, in model.ObjectiveInput) (*model.Objective, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type ProfessionService interface {
	List(ctx context.Context) ([]model.Profession, error)
	Create(ctx context.Context, in model.ProfessionInput) (*model.Profession, error)
	Update(ctx context.Context, id uuid.UUID, in model.ProfessionInput) (*model.Profession, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type LocationService interface {
	Provinces(ctx context.Context) ([]model.Province, error)
	Province(ctx context.Context, id uuid.UUID) (*model.Province, error)
}

type SimilarityService interface {
	BySalary(ctx context.Context, ref *model.User, count int) ([]model.SimilarUser, error)
	ByProfession(ctx context.Context, ref *model.User, count int) ([]model.SimilarUser, error)
	ByLocation(ctx context.Context, ref *model.User, precision string, count int) ([]model.SimilarUser, error)
}

type ComparisonService interface {
	Compare(ctx context.Context, userID, otherID uuid.UUID, mes, anio *int) (*model.Comparacion, error)
	CompareWithCandidate(ctx context.Context, user *model.User, c model.CriteriosComparacion) (*model.Comparacion, error)
}

// TokenVerifier turns a bearer token into the identity it was issued for.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*model.Identity, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Services struct {
	Users       UserService
	Categories  CategoryService
	Wallets     WalletService
	Operations  OperationService
	Objectives  ObjectiveService
	Professions ProfessionService
	Locations   LocationService
	Similarity  SimilarityService
	Comparison  ComparisonService
}

type Options struct {
	Services    Services
	Verifier    TokenVerifier
	Health      Pinger
	Log         *logrus.Logger
	Development bool
}

type server struct {
	svc      Services
	verifier TokenVerifier
	health   Pinger
	log      *logrus.Logger
}

const (
	localIdentity = "identity"
	localUser     = "dbUser"
)

// New builds the fiber app with every route mounted.
func New(opts Options) *fiber.App {
	s := &server{svc: opts.Services, verifier: opts.Verifier, health: opts.Health, log: opts.Log}

	app := fiber.New(fiber.Config{
		AppName:               "finanzas-bot",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(opts.Log, opts.Development),
	})
	app.Use(requestid.New())
	app.Use(requestLogger(opts.Log))
	app.Use(recover.New(recover.Config{EnableStackTrace: opts.Development}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Get("/health", s.healthCheck)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")
	api.Get("/saludos", s.greet)

	auth := api.Group("", s.authenticate)

	categorias := auth.Group("/categorias")
	categorias.Get("/", s.listCategories)
	categorias.Get("/:id", s.getCategory)
	categorias.Post("/", s.createCategory)
	categorias.Put("/:id", s.updateCategory)
	categorias.Delete("/:id", s.deleteCategory)

	billeteras := auth.Group("/billeteras")
	billeteras.Get("/", s.listWallets)
	billeteras.Get("/:id", s.getWallet)
	billeteras.Post("/", s.createWallet)
	billeteras.Put("/:id", s.updateWallet)
	billeteras.Delete("/:id", s.deleteWallet)

	operaciones := auth.Group("/operaciones")
	operaciones.Get("/", s.listOperations(""))
	operaciones.Get("/egresos", s.listOperations(model.OperationExpense))
	operaciones.Get("/ingresos", s.listOperations(model.OperationIncome))
	operaciones.Get("/:id", s.getOperation)
	operaciones.Post("/", s.createOperation)
	operaciones.Put("/:id", s.updateOperation)
	operaciones.Delete("/:id", s.deleteOperation)

	objetivos := auth.Group("/objetivos")
	objetivos.Get("/", s.listObjectives)
	objetivos.Get("/:id", s.getObjective)
	objetivos.Post("/", s.createObjective)
	objetivos.Put("/:id", s.updateObjective)
	objetivos.Delete("/:id", s.deleteObjective)

	usuarios := auth.Group("/usuarios")
	usuarios.Post("/", s.register)
	usuarios.Get("/me", s.me)
	usuarios.Put("/me", s.updateMe)
	usuarios.Get("/similar/sueldo", s.similarBySalary)
	usuarios.Get("/similar/profesion", s.similarByProfession)
	usuarios.Get("/similar/ubicacion", s.similarByLocation)
	usuarios.Post("/comparar/candidato", s.compareWithCandidate)
	usuarios.Get("/comparar/:id", s.compare)

	profesiones := auth.Group("/profesiones")
	profesiones.Get("/", s.listProfessions)
	profesiones.Post("/", s.createProfession)
	profesiones.Put("/:id", s.updateProfession)
	profesiones.Delete("/:id", s.deleteProfession)

	provincias := auth.Group("/provincias")
	provincias.Get("/", s.listProvinces)
	provincias.Get("/:id", s.getProvince)

	return app
}

func (s *server) greet(c *fiber.Ctx) error {
	return ok(c, fiber.Map{"mensaje": "¡Hola! La API de finanzas está funcionando."})
}

func (s *server) healthCheck(c *fiber.Ctx) error {
	if s.health != nil {
		if err := s.health.Ping(c.UserContext()); err != nil {
			s.log.WithError(err).Warn("health check failed")
			return fiber.NewError(fiber.StatusServiceUnavailable, "base de datos no disponible")
		}
	}
	return ok(c, fiber.Map{"status": "ok"})
}

// authenticate verifies the bearer token and loads the registered user, when there is one.
func (s *server) authenticate(c *fiber.Ctx) error {
	if s.verifier == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "autenticación no configurada")
	}
	token, found := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
	if !found || strings.TrimSpace(token) == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "token de autenticación requerido")
	}

	id, err := s.verifier.Verify(c.UserContext(), token)
	if err != nil {
		s.log.WithField("requestId", requestID(c)).WithError(err).Debug("token rejected")
		return fiber.NewError(fiber.StatusUnauthorized, "token inválido")
	}
	c.Locals(localIdentity, id)

	u, err := s.svc.Users.ByAuthID(c.UserContext(), id.Subject)
	switch {
	case err == nil:
		c.Locals(localUser, u)
	case !apperr.IsNotFound(err):
		return err
	}
	return c.Next()
}

func identityOf(c *fiber.Ctx) *model.Identity {
	id, _ := c.Locals(localIdentity).(*model.Identity)
	return id
}

// currentUser is the registered user behind the request.
func currentUser(c *fiber.Ctx) (*model.User, error) {
	u, found := c.Locals(localUser).(*model.User)
	if !found || u == nil {
		return nil, apperr.Validation("usuario no registrado")
	}
	return u, nil
}

func paramID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, apperr.Validation("id inválido", err)
	}
	return id, nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperr.Validation("cuerpo de la petición inválido", err)
	}
	return nil
}
