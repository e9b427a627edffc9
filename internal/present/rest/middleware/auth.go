package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	punchline "github.com/jokehub/punchline"
	"github.com/jokehub/punchline/internal/domain"
)

var tracer = otel.Tracer("auth")

// IdentityMiddleware extracts the signed-in identity from the request.
// Authentication itself happens upstream: the identity provider's
// proxy verifies the session and forwards the opaque identity token as
// a Bearer credential, with display attributes in side headers. This
// middleware only unpacks that into the request context; handlers that
// mutate state check for its presence themselves.
type IdentityMiddleware struct{}

func NewIdentityMiddleware() *IdentityMiddleware {
	return &IdentityMiddleware{}
}

func (m *IdentityMiddleware) IdentifyRequester(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, span := tracer.Start(c.Request().Context(), "Auth.IdentifyRequester")
		defer span.End()

		authHeader := c.Request().Header.Get("authorization")
		if authHeader != "" {
			split := strings.Split(authHeader, " ")
			if len(split) == 2 && split[0] == "Bearer" && split[1] != "" {
				ident := punchline.Identity{
					UID:   split[1],
					Name:  c.Request().Header.Get(domain.IdentityNameHeader),
					Email: c.Request().Header.Get(domain.IdentityEmailHeader),
				}
				ctx = context.WithValue(ctx, domain.RequesterIdentityCtxKey, ident)
				span.SetAttributes(attribute.String("RequesterUID", ident.UID))
			}
		}

		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

// RequesterIdentity returns the identity placed in the context by
// IdentifyRequester, if any.
func RequesterIdentity(ctx context.Context) (punchline.Identity, bool) {
	ident, ok := ctx.Value(domain.RequesterIdentityCtxKey).(punchline.Identity)
	return ident, ok && ident.UID != ""
}
