package auth

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-router/flash"
)

// RegisterPortalRoutes mounts the authentication pages on the app.
func RegisterPortalRoutes[T any](app router.Router[T], opts ...PortalControllerOption) {

	controller := NewPortalController(opts...)

	app.
		Get(controller.Routes.Login, controller.LoginShow).
		SetName("sign-in.get")

	app.
		Post(controller.Routes.Login, controller.LoginPost).
		SetName("sign-in.post")

	app.Get(controller.Routes.Logout, controller.LogOut).SetName("sign-out.get")

	app.Get(controller.Routes.Register, controller.RegistrationShow).
		SetName("register.get")
	app.Post(controller.Routes.Register, controller.RegistrationCreate).
		SetName("register.post")

	app.Get(controller.Routes.PasswordReset, controller.PasswordResetShow).
		SetName("pwd-reset.get")
	app.Post(controller.Routes.PasswordReset, controller.PasswordResetPost).
		SetName("pwd-reset.post")

	app.Post(controller.Routes.DeleteAccount, controller.DeleteAccountPost).
		SetName("account-delete.post")
}

type PortalControllerRoutes struct {
	Login         string
	Logout        string
	Register      string
	PasswordReset string
	DeleteAccount string
}

type PortalControllerViews struct {
	Login         string
	Register      string
	PasswordReset string
}

// PortalController binds the auth flow to the portal's login, signup and
// password reset pages. It owns no state of its own; all session writes go
// through the flow controller.
type PortalController struct {
	Debug        bool
	Logger       Logger
	Flow         *AuthFlow
	Store        *SessionStore
	Guard        *RouteGuard
	Routes       *PortalControllerRoutes
	Views        *PortalControllerViews
	ErrorHandler router.ErrorHandler
}

type PortalControllerOption func(*PortalController) *PortalController

func WithControllerFlow(flow *AuthFlow) PortalControllerOption {
	return func(c *PortalController) *PortalController {
		c.Flow = flow
		return c
	}
}

func WithControllerStore(store *SessionStore) PortalControllerOption {
	return func(c *PortalController) *PortalController {
		c.Store = store
		return c
	}
}

func WithControllerGuard(guard *RouteGuard) PortalControllerOption {
	return func(c *PortalController) *PortalController {
		c.Guard = guard
		return c
	}
}

func WithControllerLogger(logger Logger) PortalControllerOption {
	return func(c *PortalController) *PortalController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func NewPortalController(opts ...PortalControllerOption) *PortalController {
	c := &PortalController{
		Logger:       defLogger{},
		ErrorHandler: defaultErrHandler,
		Routes: &PortalControllerRoutes{
			Login:         LoginRoute,
			Logout:        "/logout",
			Register:      "/register",
			PasswordReset: "/password-reset",
			DeleteAccount: "/account/delete",
		},
		Views: &PortalControllerViews{
			Login:         "login",
			Register:      "register",
			PasswordReset: "password_reset",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Flow == nil {
		panic("Missing AuthFlow in portal controller...")
	}

	if c.Store == nil {
		panic("Missing SessionStore in portal controller...")
	}

	if c.Guard == nil {
		c.Guard = NewRouteGuard(c.Store)
	}

	return c
}

func (a *PortalController) LoginShow(ctx router.Context) error {
	return ctx.Render(a.Views.Login, router.ViewContext{
		"errors": nil,
		"record": LoginRequest{Email: a.Store.RememberedEmail()},
	})
}

// LoginForm is the login page payload; RememberMe controls whether the
// email is kept to pre-fill the form next time.
type LoginForm struct {
	Email      string `form:"email" json:"email"`
	Password   string `form:"password" json:"password"`
	RememberMe bool   `form:"remember_me" json:"remember_me"`
}

func (a *PortalController) LoginPost(ctx router.Context) error {
	payload := new(LoginForm)

	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if a.Debug {
		a.Logger.Debug("login submission: %s", print.MaybePrettyJSON(map[string]any{
			"email":       payload.Email,
			"remember_me": payload.RememberMe,
		}))
	}

	outcome := a.Flow.Login(ctx.Context(), payload.Email, payload.Password)
	payload.Password = ""

	if outcome.Failed() {
		return ctx.Render(a.Views.Login, router.ViewContext{
			"record": LoginRequest{Email: payload.Email},
			"errors": map[string]string{"authentication": outcome.Message},
		})
	}

	if payload.RememberMe {
		a.Store.RememberEmail(normalizeEmail(payload.Email))
	} else {
		a.Store.ForgetEmail()
	}

	return ctx.Redirect(a.postLoginRedirect(ctx, outcome), fiber.StatusSeeOther)
}

// postLoginRedirect prefers the route the visitor was denied on, but only
// when the fresh session is actually allowed there; everything else lands
// on the role's home route.
func (a *PortalController) postLoginRedirect(ctx router.Context, outcome Outcome) string {
	rejected := a.Guard.GetRedirect(ctx, "")
	if rejected != "" && CheckRoute(rejected, a.Store.Get()).Allowed {
		return rejected
	}
	return outcome.Redirect
}

func (a *PortalController) LogOut(ctx router.Context) error {
	outcome := a.Flow.Logout(ctx.Context())
	return ctx.Redirect(outcome.Redirect, fiber.StatusTemporaryRedirect)
}

func (a *PortalController) RegistrationShow(ctx router.Context) error {
	return ctx.Render(a.Views.Register, router.ViewContext{
		"errors": map[string]string{},
		"record": SignupRequest{},
		"roles":  AllRoles(),
	})
}

func (a *PortalController) RegistrationCreate(ctx router.Context) error {
	payload := new(SignupRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("signup parse payload: %v", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error parsing body",
		}).Status(fiber.StatusBadRequest).Render(a.Views.Register, router.ViewContext{
			"errors": map[string]string{"form": "Failed to parse form"},
			"record": payload,
		})
	}

	outcome := a.Flow.Signup(ctx.Context(), *payload)
	payload.Password = ""
	payload.ConfirmPassword = ""

	if outcome.Failed() {
		a.Logger.Error("signup rejected: %v", outcome.Err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message": outcome.Message,
		}).Render(a.Views.Register, router.ViewContext{
			"record": payload,
			"errors": map[string]string{"signup": outcome.Message},
		})
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Successful registration",
	}).Redirect(outcome.Redirect, fiber.StatusSeeOther)
}

func (a *PortalController) PasswordResetShow(ctx router.Context) error {
	return ctx.Render(a.Views.PasswordReset, router.ViewContext{
		"errors": nil,
		"record": PasswordResetForm{},
		"roles":  AllRoles(),
	})
}

// PasswordResetForm holds values for password reset
type PasswordResetForm struct {
	Email string `form:"email" json:"email"`
	Role  string `form:"role" json:"role"`
}

func (a *PortalController) PasswordResetPost(ctx router.Context) error {
	payload := new(PasswordResetForm)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("password reset parse payload: %v", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error parsing body",
		}).Status(fiber.StatusBadRequest).Render(a.Views.PasswordReset, router.ViewContext{
			"errors": map[string]string{"form": "Failed to parse form"},
			"record": payload,
		})
	}

	role, _ := ParseRole(payload.Role)
	outcome := a.Flow.RequestPasswordReset(ctx.Context(), payload.Email, role)

	// Outcome is success-shaped regardless of whether the email exists.
	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": outcome.Message,
	}).Render(a.Views.PasswordReset, router.ViewContext{
		"record":  PasswordResetForm{},
		"message": outcome.Message,
	})
}

func (a *PortalController) DeleteAccountPost(ctx router.Context) error {
	outcome := a.Flow.DeleteAccount(ctx.Context())

	if outcome.Failed() {
		a.Logger.Error("account deletion failed: %v", outcome.Err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message": outcome.Message,
		}).Redirect(fmt.Sprintf("%s?deleted=0", a.Routes.Login), fiber.StatusSeeOther)
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": outcome.Message,
	}).Redirect(outcome.Redirect, fiber.StatusSeeOther)
}

func defaultErrHandler(c router.Context, err error) error {
	return c.Render("errors/500", router.ViewContext{
		"message": err.Error(),
	})
}
