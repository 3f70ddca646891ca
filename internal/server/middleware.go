package server

import (
	stderrors "errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/sstanqq/web-task-manager/internal/auth"
	"github.com/sstanqq/web-task-manager/internal/domain/errors"
	"github.com/sstanqq/web-task-manager/internal/domain/models"
)

const currentUserKey = "currentUser"

// RequireAuth resolves the bearer token on every request of a protected
// group and stores the resulting user in the gin context. It runs before
// any ownership check downstream.
func RequireAuth(resolver *auth.SessionResolver) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			ctx.Header("WWW-Authenticate", "Bearer")
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Could not validate credentials"})
			return
		}

		user, err := resolver.Resolve(ctx.Request.Context(), parts[1])
		if err != nil {
			ctx.Header("WWW-Authenticate", "Bearer")
			if stderrors.Is(err, errors.ErrTokenExpired) {
				ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Token has expired"})
				return
			}
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Could not validate credentials"})
			return
		}

		ctx.Set(currentUserKey, user)
		ctx.Next()
	}
}

func currentUser(ctx *gin.Context) *models.User {
	user, _ := ctx.MustGet(currentUserKey).(*models.User)
	return user
}

// RequestID tags every request with an X-Request-ID, generating one when
// the client did not send its own.
func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		ctx.Writer.Header().Set("X-Request-ID", id)
		ctx.Set("requestID", id)
		ctx.Next()
	}
}

// RateLimit throttles clients per IP. It guards the credential endpoints
// against brute-force attempts.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	type client struct {
		limiter  *rate.Limiter
		lastSeen time.Time
	}
	var (
		mu      sync.Mutex
		clients = make(map[string]*client)
	)
	go func() {
		for {
			time.Sleep(time.Minute)
			mu.Lock()
			for ip, c := range clients {
				if time.Since(c.lastSeen) >= 3*time.Minute {
					delete(clients, ip)
				}
			}
			mu.Unlock()
		}
	}()

	return func(ctx *gin.Context) {
		ip := ctx.ClientIP()

		mu.Lock()
		c, ok := clients[ip]
		if !ok {
			c = &client{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
			clients[ip] = c
		}
		c.lastSeen = time.Now()
		allowed := c.limiter.Allow()
		mu.Unlock()

		if !allowed {
			ctx.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"detail": "rate limit exceeded"})
			return
		}
		ctx.Next()
	}
}
