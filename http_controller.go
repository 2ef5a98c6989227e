package connections

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-auth"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// RouteRegistrar captures the router methods used by the controller.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// HTTPController exposes the lifecycle operations over HTTP.
type HTTPController struct {
	scheduler *RefreshScheduler
	deauth    *DeauthorizationService
	webhooks  *RevocationWebhookHandler
	config    HTTPConfig
	logger    Logger
}

// HTTPConfig configures the HTTP controller.
type HTTPConfig struct {
	// SessionContextKey is the router locals key used by go-auth (default: "user")
	SessionContextKey string

	// ErrorHandler handles errors (optional)
	ErrorHandler func(ctx router.Context, err error) error

	// Logger for request-scoped diagnostics (optional)
	Logger Logger
}

// NewHTTPController creates the controller.
func NewHTTPController(
	scheduler *RefreshScheduler,
	deauth *DeauthorizationService,
	webhooks *RevocationWebhookHandler,
	cfg HTTPConfig,
) *HTTPController {
	if cfg.SessionContextKey == "" {
		cfg.SessionContextKey = "user"
	}

	return &HTTPController{
		scheduler: scheduler,
		deauth:    deauth,
		webhooks:  webhooks,
		config:    cfg,
		logger:    normalizeLogger(cfg.Logger),
	}
}

// RegisterRoutes registers lifecycle routes, typically under /oauth.
func (c *HTTPController) RegisterRoutes(group RouteRegistrar) {
	group.Get("/sync-tokens", c.SyncTokens)
	group.Post("/:provider/webhook", c.Webhook)
	group.Delete("/:provider/deauthorize", c.Deauthorize)
}

// SyncTokens runs one refresh pass over soon-to-expire credentials. It is
// meant for scheduled invocation; re-running after a successful pass refreshes
// nothing new because the expiry horizon has moved forward.
func (c *HTTPController) SyncTokens(ctx router.Context) error {
	summary, err := c.scheduler.Run(ctx.Context())
	if err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"success": true,
		"stats": map[string]any{
			"total":     summary.Total,
			"refreshed": summary.Refreshed,
			"skipped":   summary.Skipped,
			"errors":    summary.Errors,
			"duration":  summary.Duration.String(),
		},
		"results": summary.Results,
	})
}

// DeauthorizeRequest is the disconnect payload.
type DeauthorizeRequest struct {
	AccountID string `json:"account_id" form:"account_id"`
}

// Validate will run validation rules
func (r DeauthorizeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.AccountID,
			validation.Required,
		),
	)
}

// Deauthorize disconnects one account for the authenticated user.
func (c *HTTPController) Deauthorize(ctx router.Context) error {
	if _, ok := ParseProvider(ctx.Param("provider")); !ok {
		return c.handleError(ctx, ErrUnknownProvider)
	}

	payload := new(DeauthorizeRequest)
	if err := ctx.Bind(payload); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
	}

	session, err := auth.GetRouterSession(ctx, c.config.SessionContextKey)
	if err != nil {
		return c.handleError(ctx, ErrUnauthenticated)
	}

	result, err := c.deauth.Deauthorize(ctx.Context(), session.GetUserID(), payload.AccountID)
	if err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"success":       true,
		"provider":      result.Provider,
		"token_revoked": result.TokenRevoked,
	})
}

// MetaWebhookRequest is the form-encoded Meta deauthorization payload.
type MetaWebhookRequest struct {
	SignedRequest string `json:"signed_request" form:"signed_request"`
}

// Validate will run validation rules
func (r MetaWebhookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.SignedRequest,
			validation.Required,
		),
	)
}

// Webhook dispatches provider-initiated revocation callbacks by the family
// tag on the route.
func (c *HTTPController) Webhook(ctx router.Context) error {
	family, ok := ParseFamilyTag(ctx.Param("provider"))
	if !ok {
		return c.handleError(ctx, ErrUnknownProvider)
	}

	var result *RevocationResult
	var err error

	switch family {
	case FamilyGoogle:
		payload := new(GoogleRevocationPayload)
		if bindErr := ctx.Bind(payload); bindErr != nil {
			return ctx.JSON(router.StatusBadRequest, map[string]string{
				"error": "invalid request body",
			})
		}
		result, err = c.webhooks.HandleGoogle(ctx.Context(), *payload)

	case FamilyMeta:
		payload := new(MetaWebhookRequest)
		if bindErr := ctx.Bind(payload); bindErr != nil {
			return ctx.JSON(router.StatusBadRequest, map[string]string{
				"error": "invalid request body",
			})
		}
		if validErr := payload.Validate(); validErr != nil {
			return ctx.JSON(router.StatusBadRequest, map[string]string{
				"error": validErr.Error(),
			})
		}
		result, err = c.webhooks.HandleMeta(ctx.Context(), payload.SignedRequest)

	case FamilyX:
		// X offers no revocation callback.
		return ctx.JSON(http.StatusNotImplemented, map[string]string{
			"error": "provider does not support revocation callbacks",
		})
	}

	if err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"success": true,
		"deleted": result.Deleted,
	})
}

func (c *HTTPController) handleError(ctx router.Context, err error) error {
	if c.config.ErrorHandler != nil {
		return c.config.ErrorHandler(ctx, err)
	}

	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	c.logger.Info(
		"lifecycle request error: %s text_code=%s details=%s",
		richErr.Message, richErr.TextCode, print.MaybePrettyJSON(richErr.Metadata),
	)

	return ctx.JSON(richErr.Code, map[string]string{
		"error":     richErr.Message,
		"text_code": richErr.TextCode,
	})
}
