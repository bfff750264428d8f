package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/cliniga/cliniga-api/internal/model"
)

const ContextActorKey = "actor"

// ActorFromContext returns the verified caller identity set by the
// auth middleware.
func ActorFromContext(c *gin.Context) (model.Actor, bool) {
	v, ok := c.Get(ContextActorKey)
	if !ok {
		return model.Actor{}, false
	}
	actor, ok := v.(model.Actor)
	return actor, ok
}
