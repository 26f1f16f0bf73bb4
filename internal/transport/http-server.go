package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Rogue-Bear-Innovations/movielist-back/internal/catalog"
	"github.com/Rogue-Bear-Innovations/movielist-back/internal/config"
	"github.com/Rogue-Bear-Innovations/movielist-back/internal/db"
	"github.com/Rogue-Bear-Innovations/movielist-back/internal/metrics"
	"github.com/Rogue-Bear-Innovations/movielist-back/internal/models"
	"github.com/Rogue-Bear-Innovations/movielist-back/internal/service"
)

var Module = fx.Provide(NewHTTPServer)

type (
	AccountRegistry interface {
		Register(ctx context.Context, name, email, pass string) (uint64, error)
		Authenticate(ctx context.Context, email, pass string) (*db.Account, error)
		VerifyEmailExists(ctx context.Context, email string) error
		ResetPassword(ctx context.Context, email, newPass string) error
	}

	ListEngine interface {
		Add(ctx context.Context, e service.NewEntry) (service.AddOutcome, error)
		Move(ctx context.Context, accountID, movieID uint64, category db.Category) error
		Remove(ctx context.Context, accountID, movieID uint64, category db.Category) error
		List(ctx context.Context, accountID uint64, category *db.Category) ([]db.ListEntry, error)
	}

	Catalog interface {
		Search(ctx context.Context, term string) ([]json.RawMessage, error)
	}

	CustomValidator struct {
		validator *validator.Validate
	}

	HTTPServer struct {
		app          *fiber.App
		accounts     AccountRegistry
		lists        ListEngine
		catalog      Catalog
		validator    *CustomValidator
		errorHandler fiber.ErrorHandler
		logger       *zap.SugaredLogger
	}
)

func NewHTTPServer(
	lc fx.Lifecycle,
	cfg *config.Config,
	accounts *service.Accounts,
	lists *service.Lists,
	catalogClient *catalog.Client,
	logger *zap.SugaredLogger,
) *HTTPServer {
	instance := New(cfg, accounts, lists, catalogClient, logger)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := instance.app.Listen(cfg.HTTPAddr()); err != nil && err != http.ErrServerClosed {
					logger.Fatalw("shutting down the server", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping HTTP server.")
			return instance.app.ShutdownWithContext(ctx)
		},
	})

	return instance
}

// New builds the fiber application without starting it.
func New(cfg *config.Config, accounts AccountRegistry, lists ListEngine, catalogClient Catalog, logger *zap.SugaredLogger) *HTTPServer {
	instance := HTTPServer{
		accounts:  accounts,
		lists:     lists,
		catalog:   catalogClient,
		validator: NewCustomValidator(),
		logger:    logger,
	}
	instance.errorHandler = instance.handleError

	app := fiber.New(fiber.Config{
		AppName:               "movielist",
		DisableStartupMessage: true,
		ErrorHandler:          instance.errorHandler,
	})
	instance.app = app

	app.Use(instance.AccessLog)
	app.Use(recover.New())
	app.Use(cors.New())

	app.Post("/registrar", instance.Register)
	app.Post("/logar", instance.Login)
	app.Post("/verificar-email", instance.VerifyEmail)
	app.Post("/redefinir-senha", instance.ResetPassword)

	apiG := app.Group("/api")
	apiG.Get("/search", RateLimit(rate.NewLimiter(rate.Limit(cfg.SearchRateLimit), cfg.SearchRateBurst)), instance.Search)

	listG := apiG.Group("/listas")
	listG.Get("/:userId", instance.ListGet)
	listG.Post("", instance.ListAdd)
	listG.Put("", instance.ListMove)
	listG.Delete("", instance.ListRemove)

	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	if cfg.StaticDir != "" {
		app.Static("/", cfg.StaticDir, fiber.Static{Index: "login.html"})
	}

	return &instance
}

func (s *HTTPServer) App() *fiber.App {
	return s.app
}

func (s *HTTPServer) Register(c *fiber.Ctx) error {
	req := models.RegisterReq{}
	if err := s.BindAndValidate(c, &req); err != nil {
		return err
	}

	id, err := s.accounts.Register(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrDuplicate) {
			return fiber.NewError(fiber.StatusConflict, "this email is already registered")
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(models.RegisterResp{
		Message: "user registered successfully",
		UserID:  id,
	})
}

func (s *HTTPServer) Login(c *fiber.Ctx) error {
	req := models.LoginReq{}
	if err := s.BindAndValidate(c, &req); err != nil {
		return err
	}

	account, err := s.accounts.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(models.LoginResp{
		Message: "login successful",
		Account: models.AccountResp{
			ID:    account.ID,
			Name:  account.Name,
			Email: account.Email,
		},
	})
}

func (s *HTTPServer) VerifyEmail(c *fiber.Ctx) error {
	req := models.EmailReq{}
	if err := s.BindAndValidate(c, &req); err != nil {
		return err
	}

	if err := s.accounts.VerifyEmailExists(c.UserContext(), req.Email); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "email is not registered")
		}
		return err
	}

	return c.JSON(models.MessageResp{Message: "email is valid"})
}

func (s *HTTPServer) ResetPassword(c *fiber.Ctx) error {
	req := models.ResetPasswordReq{}
	if err := s.BindAndValidate(c, &req); err != nil {
		return err
	}

	if err := s.accounts.ResetPassword(c.UserContext(), req.Email, req.NewPassword); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "no user found for this email")
		}
		return err
	}

	return c.JSON(models.MessageResp{Message: "password reset successfully"})
}

func (s *HTTPServer) Search(c *fiber.Ctx) error {
	results, err := s.catalog.Search(c.UserContext(), c.Query("query"))
	if err != nil {
		return err
	}
	return c.JSON(results)
}

func (s *HTTPServer) ListGet(c *fiber.Ctx) error {
	userID, err := GetAndParseParam(c, "userId")
	if err != nil {
		return err
	}

	var category *db.Category
	if raw := c.Query("category"); raw != "" {
		parsed, err := db.ParseCategory(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "unknown list category")
		}
		category = &parsed
	}

	entries, err := s.lists.List(c.UserContext(), userID, category)
	if err != nil {
		return err
	}

	resp := make([]models.ListEntryResp, len(entries))
	for i := range entries {
		resp[i] = models.ListEntryResp{
			MovieID:    entries[i].MovieID,
			Title:      entries[i].Title,
			PosterPath: entries[i].PosterPath,
			Category:   entries[i].Category.String(),
		}
	}
	return c.JSON(resp)
}

func (s *HTTPServer) ListAdd(c *fiber.Ctx) error {
	req := models.ListEntryReq{}
	if err := s.BindAndValidate(c, &req); err != nil {
		return err
	}

	outcome, err := s.lists.Add(c.UserContext(), service.NewEntry{
		AccountID:  req.UserID,
		MovieID:    req.MovieID,
		Title:      req.Title,
		PosterPath: req.PosterPath,
		Category:   db.Category(req.Category),
	})
	if err != nil {
		return err
	}

	if outcome == service.AlreadyPresent {
		return c.JSON(models.MessageResp{Message: "movie is already in a list"})
	}
	return c.Status(fiber.StatusCreated).JSON(models.MessageResp{Message: "movie added successfully"})
}

func (s *HTTPServer) ListMove(c *fiber.Ctx) error {
	req := models.ListChangeReq{}
	if err := s.BindAndValidate(c, &req); err != nil {
		return err
	}

	if err := s.lists.Move(c.UserContext(), req.UserID, req.MovieID, db.Category(req.Category)); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "movie not found in the user's lists")
		}
		return err
	}

	return c.JSON(models.MessageResp{Message: "movie moved to another list"})
}

// ListRemove takes its fields from the body or, for clients that do not send
// DELETE payloads, from the query string.
func (s *HTTPServer) ListRemove(c *fiber.Ctx) error {
	req := models.ListChangeReq{}
	if len(c.Body()) == 0 {
		if err := c.QueryParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "malformed query")
		}
		if err := s.validator.Validate(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
	} else if err := s.BindAndValidate(c, &req); err != nil {
		return err
	}

	if err := s.lists.Remove(c.UserContext(), req.UserID, req.MovieID, db.Category(req.Category)); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "movie not found in the given list")
		}
		return err
	}

	return c.JSON(models.MessageResp{Message: "movie removed successfully"})
}

////////

func (s *HTTPServer) handleError(c *fiber.Ctx, err error) error {
	code, msg := statusOf(err)
	if code >= fiber.StatusInternalServerError {
		s.logger.Errorw("request failed", "path", c.Path(), "error", err)
	}
	return c.Status(code).JSON(models.MessageResp{Message: msg})
}

func statusOf(err error) (int, string) {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code, fiberErr.Message
	}

	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return fiber.StatusBadRequest, validationErr.Msg
	case errors.Is(err, catalog.ErrEmptyQuery):
		return fiber.StatusBadRequest, "search term is required"
	case errors.Is(err, service.ErrInvalidCredentials):
		return fiber.StatusUnauthorized, "invalid email or password"
	case errors.Is(err, service.ErrDuplicate):
		return fiber.StatusConflict, "already exists"
	case errors.Is(err, service.ErrNotFound):
		return fiber.StatusNotFound, "not found"
	case errors.Is(err, catalog.ErrUnavailable):
		return fiber.StatusInternalServerError, "error communicating with the movie catalog"
	default:
		return fiber.StatusInternalServerError, "internal server error"
	}
}

func NewCustomValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return db.Category(fl.Field().String()).Valid()
	})
	return &CustomValidator{validator: v}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	fields := make([]string, len(fieldErrs))
	for i, fe := range fieldErrs {
		fields[i] = fe.Field()
	}
	return errors.Errorf("missing or invalid fields: %s", strings.Join(fields, ", "))
}

func (s *HTTPServer) BindAndValidate(c *fiber.Ctx, v interface{}) error {
	if err := c.BodyParser(v); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed request body")
	}
	if err := s.validator.Validate(v); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

func GetParam(c *fiber.Ctx, name string) (string, error) {
	value := c.Params(name)
	if value == "" {
		return "", fiber.NewError(fiber.StatusBadRequest, "invalid path param '"+name+"'")
	}
	return value, nil
}

func GetAndParseParam(c *fiber.Ctx, name string) (uint64, error) {
	v, e := GetParam(c, name)
	if e != nil {
		return 0, e
	}
	vv, e := strconv.ParseUint(v, 10, 64)
	if e != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid path param '"+name+"'")
	}
	return vv, nil
}
