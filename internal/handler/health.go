package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// Health reports liveness.  When a Redis client is configured its status
// is included; a Redis outage degrades features but keeps the service up,
// so the endpoint still answers 200.
func Health(rdb *redis.Client) echo.HandlerFunc {
	return func(c echo.Context) error {
		redisState := "disabled"
		if rdb != nil {
			ctx, cancel := context.WithTimeout(c.Request().Context(), time.Second)
			defer cancel()
			redisState = "up"
			if err := rdb.Ping(ctx).Err(); err != nil {
				redisState = "down"
			}
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ok", "redis": redisState})
	}
}
