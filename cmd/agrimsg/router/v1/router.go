package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"agrimsg/internal/infrastructure/realtime"
	"agrimsg/internal/pkg/messaging/cache"
	msghttp "agrimsg/internal/pkg/messaging/presentation/http"
	notifsvc "agrimsg/internal/pkg/notification/service"
)

// RegisterRoutes mounts all version 1 API routes under /api/v1.
func RegisterRoutes(r *gin.Engine, pool *pgxpool.Pool, qc *cache.QueryCache, notifier notifsvc.Notifier, router *realtime.Router) {
	v1 := r.Group("/api/v1")
	msghttp.RegisterRoutes(v1, pool, qc, notifier, router)
}
