package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"resumeEditor/internal/api/middleware"
	"resumeEditor/internal/tasks"
)

const (
	notifyPingInterval = 30 * time.Second
	notifyWriteTimeout = 5 * time.Second
	notifyAuthTimeout  = 10 * time.Second
)

// Subscription 是单个用户通知频道上的订阅。
type Subscription interface {
	Messages() <-chan string
	Close() error
}

// Subscriber 打开用户通知频道的订阅，生产环境是 RedisSubscriber。
type Subscriber interface {
	Subscribe(ctx context.Context, channel string) Subscription
}

// RedisSubscriber 用 Redis Pub/Sub 实现 Subscriber。
type RedisSubscriber struct {
	Client *redis.Client
}

type redisSubscription struct {
	pubsub *redis.PubSub
	out    chan string
}

func (s RedisSubscriber) Subscribe(ctx context.Context, channel string) Subscription {
	sub := &redisSubscription{pubsub: s.Client.Subscribe(ctx, channel), out: make(chan string)}
	go func() {
		defer close(sub.out)
		for msg := range sub.pubsub.Channel() {
			select {
			case sub.out <- msg.Payload:
			case <-ctx.Done():
				return
			}
		}
	}()
	return sub
}

func (s *redisSubscription) Messages() <-chan string { return s.out }
func (s *redisSubscription) Close() error            { return s.pubsub.Close() }

// NotifyHandler 把后台任务通知转发到 WebSocket。连接建立后第一条消息必须是
// {"type":"auth","token":"..."}。
type NotifyHandler struct {
	subscriber Subscriber
	validator  middleware.TokenValidator
	logger     *slog.Logger
	upgrader   websocket.Upgrader
}

// NewNotifyHandler 构造处理器；allowedOrigins 为空时只接受同源连接。
func NewNotifyHandler(subscriber Subscriber, validator middleware.TokenValidator, logger *slog.Logger, allowedOrigins []string) *NotifyHandler {
	h := &NotifyHandler{subscriber: subscriber, validator: validator, logger: logger}
	h.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			if len(allowedOrigins) == 0 {
				u, err := url.Parse(origin)
				return err == nil && strings.EqualFold(u.Host, r.Host)
			}
			return slices.Contains(allowedOrigins, origin)
		},
	}
	return h
}

type wsAuthMessage struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// HandleConnection 升级连接，完成鉴权后订阅用户频道。
func (h *NotifyHandler) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("upgrade websocket failed", slog.Any("error", err))
		return
	}
	defer conn.Close()

	log := h.logger.With(slog.String("client_ip", c.ClientIP()))
	userID, err := h.authenticate(conn)
	if err != nil {
		log.Warn("websocket authentication failed", slog.Any("error", err))
		writeClose(conn, websocket.ClosePolicyViolation, "unauthorized")
		return
	}
	log = log.With(slog.String("user_id", userID))
	log.Info("websocket authenticated")

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	go func() {
		// 之后客户端发来的消息都忽略，读失败即视为断开。
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := h.forward(ctx, conn, userID); err != nil {
		log.Info("websocket connection closed", slog.Any("error", err))
		return
	}
	log.Info("websocket connection closed")
}

func (h *NotifyHandler) authenticate(conn *websocket.Conn) (string, error) {
	if err := conn.SetReadDeadline(time.Now().Add(notifyAuthTimeout)); err != nil {
		return "", err
	}
	_, message, err := conn.ReadMessage()
	if err != nil {
		return "", fmt.Errorf("read auth message: %w", err)
	}
	var auth wsAuthMessage
	if err := json.Unmarshal(message, &auth); err != nil {
		return "", fmt.Errorf("decode auth payload: %w", err)
	}
	if auth.Type != "auth" || auth.Token == "" {
		return "", errors.New("auth message required")
	}
	userID, err := h.validator.ValidateUser(auth.Token)
	if err != nil {
		return "", fmt.Errorf("validate token: %w", err)
	}
	if userID == "" {
		return "", errors.New("token carries no user")
	}
	return userID, conn.SetReadDeadline(time.Time{})
}

func (h *NotifyHandler) forward(ctx context.Context, conn *websocket.Conn, userID string) error {
	sub := h.subscriber.Subscribe(ctx, tasks.NotifyChannel(userID))
	defer sub.Close()

	ticker := time.NewTicker(notifyPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-sub.Messages():
			if !ok {
				return errors.New("subscription closed")
			}
			if err := conn.SetWriteDeadline(time.Now().Add(notifyWriteTimeout)); err != nil {
				return err
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return fmt.Errorf("write message: %w", err)
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(notifyWriteTimeout)); err != nil {
				return fmt.Errorf("write ping: %w", err)
			}
		}
	}
}

func writeClose(conn *websocket.Conn, code int, text string) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), time.Now().Add(notifyWriteTimeout))
}
