package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ipAttemptTracker struct {
	attempts     map[string]*ipAttemptInfo
	mu           sync.RWMutex
	maxAttempts  int
	cleanupEvery time.Duration
}

type ipAttemptInfo struct {
	Count       int
	LastAttempt time.Time
	Blocked     bool
}

func newIPAttemptTracker(maxAttempts int) *ipAttemptTracker {
	tracker := &ipAttemptTracker{
		attempts:     make(map[string]*ipAttemptInfo),
		maxAttempts:  maxAttempts,
		cleanupEvery: 5 * time.Minute,
	}

	go tracker.startCleanup()

	return tracker
}

func (t *ipAttemptTracker) startCleanup() {
	ticker := time.NewTicker(t.cleanupEvery)
	defer ticker.Stop()

	for range ticker.C {
		t.cleanOldEntries()
	}
}

func (t *ipAttemptTracker) cleanOldEntries() {
	t.mu.Lock()
	defer t.mu.Unlock()

	expiry := time.Now().Add(-30 * time.Second)
	for ip, info := range t.attempts {
		if info.LastAttempt.Before(expiry) {
			delete(t.attempts, ip)
		}
	}
}

func (t *ipAttemptTracker) recordAttempt(ip string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	info, exists := t.attempts[ip]
	if !exists {
		info = &ipAttemptInfo{}
		t.attempts[ip] = info
	}

	info.Count++
	info.LastAttempt = time.Now()

	if info.Count > t.maxAttempts {
		info.Blocked = true
	}
}

func (t *ipAttemptTracker) isBlocked(ip string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	info, exists := t.attempts[ip]
	return exists && info.Blocked
}

type RequestMiddleware struct {
	logger         *zap.Logger
	attemptTracker *ipAttemptTracker
}

func NewRequestMiddleware(logger *zap.Logger, maxLoginAttempts int) *RequestMiddleware {
	return &RequestMiddleware{
		logger:         logger,
		attemptTracker: newIPAttemptTracker(maxLoginAttempts),
	}
}

// ProcessRequest attaches a request id and writes structured start/finish
// logs for every request.
func (rm *RequestMiddleware) ProcessRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.New().String()
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		start := time.Now()
		rm.logger.Info("Request started",
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()))
		c.Next()
		rm.logger.Info("Request completed",
			zap.String("request_id", requestID),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.Int("size", c.Writer.Size()))
	}
}

// LoginAttemptMiddleware rejects login attempts from addresses that keep
// failing; entries age out after thirty quiet seconds.
func (rm *RequestMiddleware) LoginAttemptMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodPost && c.FullPath() == "/api/auth/login" {
			clientIP := c.ClientIP()
			rm.attemptTracker.recordAttempt(clientIP)
			if rm.attemptTracker.isBlocked(clientIP) {
				rm.logger.Warn("Blocking login attempt",
					zap.String("client_ip", clientIP))
				c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
					"error": "Too many login attempts, try again later",
				})
				return
			}
		}
		c.Next()
	}
}

// RecoverPanic converts panics into 500 responses with a logged stack.
func (rm *RequestMiddleware) RecoverPanic() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				requestID := c.GetString("request_id")
				rm.logger.Error("Panic recovered",
					zap.String("request_id", requestID),
					zap.Any("error", err),
					zap.Stack("stack"))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
			}
		}()
		c.Next()
	}
}
