package middleware

import (
	"net/http"
	"slices"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/h4ks-com/farmhand/internal/services"
	"go.uber.org/zap"
)

const (
	farmIDKey   = "farmID"
	farmRoleKey = "farmRole"
)

// FarmAccess resolves the :farmID path parameter against the caller's memberships.
type FarmAccess struct {
	farmService *services.FarmService
	log         *zap.Logger
}

func NewFarmAccess(farmService *services.FarmService, log *zap.Logger) *FarmAccess {
	return &FarmAccess{
		farmService: farmService,
		log:         log,
	}
}

// RequireMember aborts unless the caller holds an active role on the farm.
func (m *FarmAccess) RequireMember() gin.HandlerFunc {
	return func(c *gin.Context) {
		username := GetUsername(c)
		if username == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}

		farmID, err := strconv.ParseUint(c.Param("farmID"), 10, 32)
		if err != nil || farmID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid farm ID"})
			c.Abort()
			return
		}

		role, err := m.farmService.Role(uint(farmID), username)
		if err != nil {
			m.log.Error("farm role lookup failed", zap.Uint64("farm_id", farmID), zap.String("username", username), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check farm access"})
			c.Abort()
			return
		}

		if role == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "no access to this farm"})
			c.Abort()
			return
		}

		c.Set(farmIDKey, uint(farmID))
		c.Set(farmRoleKey, role)
		c.Next()
	}
}

// RequireRole must run after RequireMember.
func (m *FarmAccess) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !slices.Contains(roles, GetFarmRole(c)) {
			c.JSON(http.StatusForbidden, gin.H{"error": "insufficient farm role"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func GetFarmID(c *gin.Context) uint {
	return c.GetUint(farmIDKey)
}

func GetFarmRole(c *gin.Context) string {
	return c.GetString(farmRoleKey)
}
