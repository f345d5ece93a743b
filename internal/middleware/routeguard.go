package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/eaas-dev/eaas-backend/internal/logger"
	"github.com/eaas-dev/eaas-backend/internal/services"
)

// RouteClass is the access class of a browser-facing path.
type RouteClass string

const (
	RouteProtected RouteClass = "protected"
	RouteAuthOnly  RouteClass = "auth-only"
	RoutePublic    RouteClass = "public"
)

const (
	SignInPath  = "/auth/signin"
	LandingPath = "/dashboard"
)

var protectedPrefixes = []string{"/dashboard", "/experiments", "/rubrics", "/upload", "/profile"}

var authOnlyPaths = map[string]bool{
	"/auth/signin": true,
	"/auth/signup": true,
}

// Classify maps a request path to its access class. Prefix matching follows
// path-segment boundaries so /uploads stays public while /upload is
// protected.
func Classify(path string) RouteClass {
	path = strings.TrimSuffix(path, "/")
	if path == "" {
		return RoutePublic
	}
	if authOnlyPaths[path] {
		return RouteAuthOnly
	}
	for _, prefix := range protectedPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return RouteProtected
		}
	}
	return RoutePublic
}

// GuardDecision is what the guard does with a request: empty redirect means
// pass through.
type GuardDecision struct {
	Redirect string
}

// Decide applies the access rules: unauthenticated visitors bounce off
// protected pages to sign-in (carrying the origin), authenticated ones
// bounce off the auth pages to the landing page.
func Decide(path string, authenticated bool) GuardDecision {
	switch Classify(path) {
	case RouteProtected:
		if !authenticated {
			return GuardDecision{Redirect: SignInPath + "?redirectTo=" + url.QueryEscape(path)}
		}
	case RouteAuthOnly:
		if authenticated {
			return GuardDecision{Redirect: LandingPath}
		}
	}
	return GuardDecision{}
}

type RouteGuard struct {
	log      *logger.Logger
	sessions services.SessionService
}

func NewRouteGuard(log *logger.Logger, sessions services.SessionService) *RouteGuard {
	return &RouteGuard{log: log.With("middleware", "RouteGuard"), sessions: sessions}
}

// Handler enforces Decide over browser navigation. Authentication is read
// from the bearer token when present; an invalid token counts as anonymous,
// not an error.
func (rg *RouteGuard) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		authenticated := false
		if token := extractToken(c); token != "" {
			if _, err := rg.sessions.Validate(c.Request.Context(), token); err == nil {
				authenticated = true
			}
		}
		if d := Decide(c.Request.URL.Path, authenticated); d.Redirect != "" {
			c.Redirect(http.StatusFound, d.Redirect)
			c.Abort()
			return
		}
		c.Next()
	}
}
