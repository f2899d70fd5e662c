package dashboard

import (
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/hr-dashboard/internal/backend"
	"github.com/example/hr-dashboard/internal/resource"
)

// Caches holds one cache per backend resource kind.
type Caches struct {
	Users      resource.Cache[backend.User]
	Timesheets resource.Cache[[]backend.TimesheetRecord]
	Status     resource.Cache[backend.StatusCounts]
}

// MemoryCaches keeps every resource in process.
func MemoryCaches(size int, ttl time.Duration) Caches {
	return Caches{
		Users:      resource.NewMemoryCache[backend.User](size, ttl),
		Timesheets: resource.NewMemoryCache[[]backend.TimesheetRecord](size, ttl),
		Status:     resource.NewMemoryCache[backend.StatusCounts](size, ttl),
	}
}

// RedisCaches shares every resource through Redis.
func RedisCaches(client redis.Cmdable, ttl time.Duration, logger *slog.Logger) Caches {
	return Caches{
		Users:      resource.NewRedisCache[backend.User](client, "dashboard:user:", ttl, logger),
		Timesheets: resource.NewRedisCache[[]backend.TimesheetRecord](client, "dashboard:timesheets:", ttl, logger),
		Status:     resource.NewRedisCache[backend.StatusCounts](client, "dashboard:status:", ttl, logger),
	}
}
