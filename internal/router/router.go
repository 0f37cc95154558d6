package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-classroom-api/internal/config"
	"github.com/noah-isme/gema-classroom-api/internal/handler"
	"github.com/noah-isme/gema-classroom-api/internal/middleware"
	"github.com/noah-isme/gema-classroom-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	DB                        *gorm.DB
	Redis                     *redis.Client
	AssignmentHandler         *handler.AssignmentHandler
	StudentAssignmentHandler  *handler.StudentAssignmentHandler
	TestHandler               *handler.TestHandler
	RosterHandler             *handler.RosterHandler
	VocabularyCategoryHandler *handler.VocabularyCategoryHandler
	ActivityHandler           *handler.ActivityHandler
	JWTMiddleware             fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.DB, deps.Redis))
	api.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = middleware.JWTProtected(cfg.JWTSecret)
	}
	staff := middleware.RequireRole(middleware.RoleTeacher, middleware.RoleAdmin)

	classroom := app.Group("/api/v2/classroom", jwtMiddleware)

	if deps.RosterHandler != nil {
		deps.RosterHandler.Register(classroom, staff)
	}

	if deps.TestHandler != nil {
		tests := classroom.Group("/tests")
		deps.TestHandler.Register(tests, staff)

		if deps.AssignmentHandler != nil {
			window := cfg.AssignRateWindow
			if window <= 0 {
				window = time.Minute
			}
			tests.Post("/:id/assignments",
				staff,
				middleware.RateLimit("assign", cfg.AssignRateLimit, window),
				deps.AssignmentHandler.Assign,
			)
		}
	}

	if deps.AssignmentHandler != nil {
		deps.AssignmentHandler.Register(classroom.Group("/assignments"), staff)
	}

	if deps.StudentAssignmentHandler != nil {
		deps.StudentAssignmentHandler.Register(classroom.Group("/student-assignments"))
	}

	if deps.VocabularyCategoryHandler != nil {
		deps.VocabularyCategoryHandler.Register(classroom.Group("/vocabulary-categories"), staff)
	}

	if deps.ActivityHandler != nil {
		deps.ActivityHandler.Register(classroom.Group("/activities"), staff)
	}
}
