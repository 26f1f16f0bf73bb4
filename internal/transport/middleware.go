package transport

import (
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"

	"github.com/Rogue-Bear-Innovations/movielist-back/internal/metrics"
)

const censored = "$censored"

var censoredFields = []string{"password", "newPassword"}

// AccessLog assigns a request id, resolves handler errors into responses so
// the final status is known, then logs and records the request.
func (s *HTTPServer) AccessLog(c *fiber.Ctx) error {
	id := c.Get(fiber.HeaderXRequestID)
	if id == "" {
		id = uuid.New().String()
	}
	c.Set(fiber.HeaderXRequestID, id)

	if s.logger.Desugar().Core().Enabled(zapcore.DebugLevel) && len(c.Body()) > 0 {
		s.logger.Debugw("request body", "request_id", id, "body", string(censorBody(c.Body())))
	}

	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		metrics.HTTPRequestDuration.WithLabelValues(c.Method(), c.Route().Path).Observe(v)
	}))
	if chainErr := c.Next(); chainErr != nil {
		if err := s.errorHandler(c, chainErr); err != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	status := c.Response().StatusCode()
	latency := timer.ObserveDuration()
	metrics.HTTPRequestsTotal.WithLabelValues(c.Method(), c.Route().Path, strconv.Itoa(status)).Inc()

	s.logger.Infow("request",
		"request_id", id,
		"method", c.Method(),
		"path", c.Path(),
		"status", status,
		"latency", latency,
	)
	return nil
}

func RateLimit(limiter *rate.Limiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !limiter.Allow() {
			return fiber.NewError(fiber.StatusTooManyRequests, "too many requests")
		}
		return c.Next()
	}
}

// censorBody masks credential fields of a JSON object. Anything that is not a
// JSON object is returned as is.
func censorBody(b []byte) []byte {
	body := map[string]interface{}{}
	if err := json.Unmarshal(b, &body); err != nil {
		return b
	}
	for _, field := range censoredFields {
		if _, ok := body[field]; ok {
			body[field] = censored
		}
	}
	out, err := json.Marshal(body)
	if err != nil {
		return b
	}
	return out
}
