package middleware

import (
	"net/netip"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "casedesk/internal/errors"
)

// AllowAnyIP disables the allowlist when present in it.
const AllowAnyIP = "*"

// IPAllowlist rejects requests whose client address is not listed.
// IPv4-mapped IPv6 addresses match their IPv4 form.
func IPAllowlist(allowed []string, log *zap.Logger) echo.MiddlewareFunc {
	set := make(map[string]struct{}, len(allowed))
	for _, ip := range allowed {
		if ip == AllowAnyIP {
			return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
		}
		set[normalizeIP(ip)] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := normalizeIP(c.RealIP())
			if _, ok := set[ip]; !ok {
				log.Warn("request from disallowed ip", zap.String("ip", ip), zap.String("path", c.Path()))
				return HTTPError(apperrors.ErrIPNotAllowed)
			}
			return next(c)
		}
	}
}

func normalizeIP(s string) string {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return s
	}
	return addr.Unmap().String()
}
