package api

import (
	"context"
	"log/slog"
	"time"

	"campuspaws/internal/animals"
	"campuspaws/internal/auth"
	"campuspaws/internal/config"
	"campuspaws/internal/database"
	"campuspaws/internal/impact"
	"campuspaws/internal/importer"
	"campuspaws/internal/medical"
	"campuspaws/internal/notifications"
	"campuspaws/internal/ratelimit"
	"campuspaws/internal/storage"
	"campuspaws/internal/tasks"
	"campuspaws/internal/territories"

	"github.com/gofiber/fiber/v2"
)

type Server struct {
	logger        *slog.Logger
	cfg           *config.Config
	db            *database.Database
	auth          auth.Authenticator
	limiter       *ratelimit.Limiter
	storage       storage.Storage
	animals       *animals.Manager
	tasks         *tasks.Manager
	medical       *medical.Manager
	territories   *territories.Manager
	notifications *notifications.Manager
	impact        *impact.Manager
	importer      *importer.Importer
}

// Registrar creates accounts. The auth chain and the bare provider both
// satisfy it; the mock alone does not, so mock-only setups reject
// registration.
type Registrar interface {
	Register(ctx context.Context, input auth.RegisterInput) (database.User, error)
}

type Deps struct {
	Logger        *slog.Logger
	Config        *config.Config
	DB            *database.Database
	Auth          auth.Authenticator
	Limiter       *ratelimit.Limiter
	Storage       storage.Storage
	Animals       *animals.Manager
	Tasks         *tasks.Manager
	Medical       *medical.Manager
	Territories   *territories.Manager
	Notifications *notifications.Manager
	Impact        *impact.Manager
	Importer      *importer.Importer
}

func NewServer(deps Deps) *Server {
	return &Server{
		logger:        deps.Logger,
		cfg:           deps.Config,
		db:            deps.DB,
		auth:          deps.Auth,
		limiter:       deps.Limiter,
		storage:       deps.Storage,
		animals:       deps.Animals,
		tasks:         deps.Tasks,
		medical:       deps.Medical,
		territories:   deps.Territories,
		notifications: deps.Notifications,
		impact:        deps.Impact,
		importer:      deps.Importer,
	}
}

func (s *Server) Router() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "campuspaws",
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		BodyLimit:    25 * 1024 * 1024,
	})

	app.Get("/health", s.Health)

	api := app.Group("/api", s.Authenticate())

	authGroup := api.Group("/auth")
	authGroup.Post("/login", s.Login)
	authGroup.Post("/logout", s.Logout)
	authGroup.Post("/register", s.HandleRegister)
	authGroup.Get("/me", s.RequireAuthenticated(), s.Me)

	animalsGroup := api.Group("/animals")
	animalsGroup.Get("/", s.ListAnimals)
	animalsGroup.Get("/attention", s.RequireRole(auth.RoleVolunteer), s.ListAnimalsNeedingAttention)
	animalsGroup.Get("/:id", s.GetAnimal)
	animalsGroup.Post("/", s.RequireRole(auth.RoleVolunteer), s.CreateAnimal)
	animalsGroup.Patch("/:id", s.RequireRole(auth.RoleVolunteer), s.UpdateAnimal)
	animalsGroup.Delete("/:id", s.RequireRole(auth.RoleAdmin), s.DeleteAnimal)
	animalsGroup.Post("/:id/photos", s.RequireRole(auth.RoleVolunteer), s.UploadAnimalPhoto)
	animalsGroup.Get("/:id/medical", s.RequireRole(auth.RoleVolunteer), s.ListAnimalMedicalRecords)
	animalsGroup.Post("/import", s.RequireRole(auth.RoleAdmin), s.ImportAnimals)

	tasksGroup := api.Group("/tasks", s.RequireRole(auth.RoleVolunteer))
	tasksGroup.Get("/", s.ListTasks)
	tasksGroup.Get("/mine", s.ListMyTasks)
	tasksGroup.Get("/:id", s.GetTask)
	tasksGroup.Post("/", s.CreateTask)
	tasksGroup.Patch("/:id", s.UpdateTask)
	tasksGroup.Post("/:id/complete", s.CompleteTask)
	tasksGroup.Delete("/:id", s.RequireRole(auth.RoleAdmin), s.DeleteTask)

	medicalGroup := api.Group("/medical", s.RequireRole(auth.RoleVolunteer))
	medicalGroup.Get("/", s.ListMedicalRecords)
	medicalGroup.Get("/:id", s.GetMedicalRecord)
	medicalGroup.Post("/", s.CreateMedicalRecord)
	medicalGroup.Patch("/:id", s.UpdateMedicalRecord)
	medicalGroup.Delete("/:id", s.RequireRole(auth.RoleAdmin), s.DeleteMedicalRecord)
	medicalGroup.Post("/:id/documents", s.UploadMedicalDocument)

	territoriesGroup := api.Group("/territories", s.RequireRole(auth.RoleVolunteer))
	territoriesGroup.Get("/", s.ListTerritories)
	territoriesGroup.Get("/:id", s.GetTerritory)
	territoriesGroup.Post("/", s.RequireRole(auth.RoleAdmin), s.CreateTerritory)
	territoriesGroup.Patch("/:id", s.RequireRole(auth.RoleAdmin), s.UpdateTerritory)
	territoriesGroup.Delete("/:id", s.RequireRole(auth.RoleAdmin), s.DeleteTerritory)
	territoriesGroup.Post("/:id/volunteers/:volunteerID", s.RequireRole(auth.RoleAdmin), s.AssignTerritoryVolunteer)
	territoriesGroup.Delete("/:id/volunteers/:volunteerID", s.RequireRole(auth.RoleAdmin), s.UnassignTerritoryVolunteer)

	notificationsGroup := api.Group("/notifications", s.RequireRole(auth.RoleVolunteer))
	notificationsGroup.Get("/", s.ListNotifications)
	notificationsGroup.Get("/unread-count", s.UnreadCount)
	notificationsGroup.Post("/:id/read", s.MarkNotificationRead)
	notificationsGroup.Post("/read-all", s.MarkAllNotificationsRead)
	notificationsGroup.Delete("/:id", s.DeleteNotification)
	notificationsGroup.Get("/preferences", s.GetNotificationPreferences)
	notificationsGroup.Patch("/preferences", s.UpdateNotificationPreferences)

	impactGroup := api.Group("/impact")
	impactGroup.Get("/", s.ImpactSummary)
	impactGroup.Get("/activity", s.RecentActivity)

	return app
}

func (s *Server) Health(c *fiber.Ctx) error {
	if err := s.db.Ping(c.Context()); err != nil {
		s.logger.Error("health check failed", "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unhealthy",
		})
	}
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
