// Package server exposes the engine over HTTP: a webhook receiver for
// inbound collaboration events and a small read API the delivery side
// polls for recorded notifications.
package server

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mentionbot/internal/github"
	"mentionbot/internal/notifications"
	logx "mentionbot/pkg/logx"
)

// EventHandler processes one normalized event. Implemented by pings.Handler.
type EventHandler interface {
	HandleEvent(ctx context.Context, ev github.Event) error
}

// Config controls the HTTP server.
//
// If WebhookSecret is empty, signature verification is disabled; only do
// that behind a trusted proxy.
type Config struct {
	Addr          string
	WebhookSecret string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type Server struct {
	cfg     Config
	router  *gin.Engine
	handler EventHandler
	store   notifications.Store
	log     logx.Logger
}

func New(cfg Config, handler EventHandler, store notifications.Store, log logx.Logger) *Server {
	if strings.TrimSpace(cfg.Addr) == "" {
		cfg.Addr = "127.0.0.1:8080"
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		cfg:     cfg,
		router:  router,
		handler: handler,
		store:   store,
		log:     log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.POST("/webhook", s.handleWebhook())
	s.router.GET("/notifications/:login", s.handleListNotifications())
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// HTTPServer wraps the router in an http.Server with the configured
// timeouts, ready for ListenAndServe or Shutdown.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler { return s.router }

// handleWebhook verifies, decodes and dispatches one webhook delivery.
//
// Unknown event families are answered 200 and dropped: the sender retries
// on non-2xx and there is nothing a retry would fix.
func (s *Server) handleWebhook() gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable payload"})
			return
		}

		if !s.verifySignature(payload, c.GetHeader("X-Hub-Signature-256")) {
			s.log.Warn("webhook signature mismatch", logx.String("remote", c.ClientIP()))
			c.JSON(http.StatusForbidden, gin.H{"error": "signature mismatch"})
			return
		}

		delivery := strings.TrimSpace(c.GetHeader("X-GitHub-Delivery"))
		if delivery == "" {
			delivery = uuid.New().String()
		}
		log := s.log.With(logx.String("delivery", delivery))

		eventName := c.GetHeader("X-GitHub-Event")
		ev, err := decodeEvent(eventName, payload)
		if err != nil {
			log.Warn("webhook payload rejected", logx.String("event", eventName), logx.Err(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed payload"})
			return
		}
		if ev == nil {
			log.Debug("ignoring webhook event", logx.String("event", eventName))
			c.JSON(http.StatusOK, gin.H{"status": "ignored"})
			return
		}

		// One delivery is one logical task, processed synchronously; the
		// sender's timeout is far above our directory/ledger budget.
		if err := s.handler.HandleEvent(c.Request.Context(), ev); err != nil {
			log.Error("event processing failed", logx.String("event", eventName), logx.Err(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "processing failed"})
			return
		}

		log.Debug("webhook processed", logx.String("event", eventName))
		c.JSON(http.StatusOK, gin.H{"status": "processed"})
	}
}

// decodeEvent maps a webhook event name to the closed event union.
// Unknown names decode to (nil, nil) and are ignored upstream.
func decodeEvent(name string, payload []byte) (github.Event, error) {
	switch name {
	case "issues":
		var ev github.IssueEvent
		if err := json.Unmarshal(payload, &ev); err != nil {
			return nil, err
		}
		return &ev, nil
	case "issue_comment":
		var ev github.IssueCommentEvent
		if err := json.Unmarshal(payload, &ev); err != nil {
			return nil, err
		}
		return &ev, nil
	default:
		return nil, nil
	}
}

func (s *Server) verifySignature(payload []byte, header string) bool {
	secret := strings.TrimSpace(s.cfg.WebhookSecret)
	if secret == "" {
		return true
	}

	sig, ok := strings.CutPrefix(strings.TrimSpace(header), "sha256=")
	if !ok {
		return false
	}
	got, err := hex.DecodeString(sig)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hmac.Equal(got, mac.Sum(nil))
}

// notificationResponse is the JSON shape of one recorded ping.
type notificationResponse struct {
	UserID           int64   `json:"user_id"`
	OriginURL        string  `json:"origin_url"`
	OriginHTML       string  `json:"origin_html"`
	Time             string  `json:"time"`
	ShortDescription *string `json:"short_description,omitempty"`
	TeamName         *string `json:"team_name,omitempty"`
}

func toNotificationResponses(ns []notifications.Notification) []notificationResponse {
	out := make([]notificationResponse, 0, len(ns))
	for _, n := range ns {
		out = append(out, notificationResponse{
			UserID:           n.UserID,
			OriginURL:        n.OriginURL,
			OriginHTML:       n.OriginHTML,
			Time:             n.Time.UTC().Format(time.RFC3339),
			ShortDescription: n.ShortDescription,
			TeamName:         n.TeamName,
		})
	}
	return out
}

// handleListNotifications returns the recorded pings for a login, oldest
// first. This is the read path the delivery/digest side consumes.
func (s *Server) handleListNotifications() gin.HandlerFunc {
	return func(c *gin.Context) {
		login := c.Param("login")
		ns, err := s.store.NotificationsForLogin(c.Request.Context(), login)
		if err != nil {
			s.log.Error("listing notifications failed", logx.String("login", login), logx.Err(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "listing notifications failed"})
			return
		}
		c.JSON(http.StatusOK, toNotificationResponses(ns))
	}
}
