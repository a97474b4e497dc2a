package serverutils

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

func jwtSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_secret"
	}
	return []byte(secret)
}

func parseClaims(ctx *fiber.Ctx) (jwt.MapClaims, error) {
	authHeader := ctx.Get("Authorization")
	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Missing or invalid authorization header")
	}
	tokenStr := authHeader[7:]

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return jwtSecret(), nil
	})

	if err != nil || token == nil || !token.Valid {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
	}
	return claims, nil
}

func JwtMiddleware(ctx *fiber.Ctx) error {
	claims, err := parseClaims(ctx)
	if err != nil {
		fe := err.(*fiber.Error)
		return ctx.Status(fe.Code).JSON(ErrorResponse(fe.Code, fe.Message))
	}

	ctx.Locals("user_id", claims["user_id"])
	if role, exists := claims["role"]; exists {
		ctx.Locals("role", role)
	}
	return ctx.Next()
}

// RequireRoles builds a middleware that authenticates the request and
// rejects callers whose role claim is not in the allowed set.
func RequireRoles(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(ctx *fiber.Ctx) error {
		claims, err := parseClaims(ctx)
		if err != nil {
			fe := err.(*fiber.Error)
			return ctx.Status(fe.Code).JSON(ErrorResponse(fe.Code, fe.Message))
		}

		role, ok := claims["role"].(string)
		if !ok {
			return ctx.Status(fiber.StatusForbidden).JSON(ErrorResponse(403, "Access denied: Role missing"))
		}
		if _, found := allowed[role]; !found {
			return ctx.Status(fiber.StatusForbidden).JSON(ErrorResponse(403, "Access denied: Insufficient permissions"))
		}

		ctx.Locals("user_id", claims["user_id"])
		ctx.Locals("role", role)
		return ctx.Next()
	}
}
