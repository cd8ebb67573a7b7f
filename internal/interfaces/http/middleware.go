package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/api-inventario/internal/application/dto"
	"github.com/jhoicas/api-inventario/internal/infrastructure/ratelimit"
	"github.com/jhoicas/api-inventario/pkg/logger"
)

// requestID devuelve el id asignado por el middleware requestid.
func requestID(c *fiber.Ctx) string {
	return c.GetRespHeader(fiber.HeaderXRequestID)
}

// RequestLogger registra método, ruta, status, latencia y request_id de cada petición.
// Los errores se resuelven aquí con el ErrorHandler de la app para registrar el status final.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		status := c.Response().StatusCode()
		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.Error()
		} else if status >= fiber.StatusBadRequest {
			ev = log.Warn()
		}
		ev.Str("request_id", requestID(c)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request")
		return nil
	}
}

// RateLimiter limita a limit peticiones por IP dentro de window usando store.
// Si el store falla la petición continúa.
func RateLimiter(store ratelimit.Store, prefix string, limit int, window time.Duration, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		count, resetIn, err := store.Hit(c.UserContext(), prefix+":"+c.IP(), window)
		if err != nil {
			log.Warn().Err(err).Str("request_id", requestID(c)).Msg("rate limiter no disponible")
			return c.Next()
		}
		if count > int64(limit) {
			secs := int((resetIn + time.Second - 1) / time.Second)
			if secs < 1 {
				secs = 1
			}
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(secs))
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Code:    "RATE_LIMITED",
				Message: "demasiados intentos, intente nuevamente en un momento",
			})
		}
		return c.Next()
	}
}
