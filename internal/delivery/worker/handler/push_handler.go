package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"fintracker/config"
	deliverycontext "fintracker/internal/delivery/context"
	"fintracker/internal/domain/entity"
	"fintracker/internal/domain/repository"
	"fintracker/internal/domain/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"google.golang.org/api/idtoken"
)

// PushMessage is the body Pub/Sub sends to a push subscription.
type PushMessage struct {
	Message struct {
		Data        string            `json:"data"`
		Attributes  map[string]string `json:"attributes,omitempty"`
		MessageID   string            `json:"messageId"`
		PublishTime string            `json:"publishTime"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// retryableError marks failures Pub/Sub should redeliver.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string {
	return fmt.Sprintf("retryable: %v", e.err)
}

func (e *retryableError) Unwrap() error {
	return e.err
}

func newRetryableError(err error) error {
	return &retryableError{err: err}
}

func isRetryableError(err error) bool {
	var re *retryableError

	return errors.As(err, &re)
}

type tokenValidator func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

// PushHandler appends pushed ledger events to the audit trail.
type PushHandler struct {
	verifyPushAuth bool
	pushAudience   string
	validateToken  tokenValidator
	logger         *slog.Logger
	auditRepo      repository.LedgerAuditRepository
	now            func() time.Time
}

type PushHandlerParams struct {
	fx.In

	Config    *config.Config
	Logger    *slog.Logger
	AuditRepo repository.LedgerAuditRepository
}

func NewPushHandler(params PushHandlerParams) *PushHandler {
	handler := &PushHandler{
		validateToken: idtoken.Validate,
		logger:        params.Logger,
		auditRepo:     params.AuditRepo,
		now:           time.Now,
	}
	if params.Config.Worker != nil {
		handler.verifyPushAuth = params.Config.Worker.VerifyPushAuth
		handler.pushAudience = params.Config.Worker.PushAudience
	}

	return handler
}

// HandlePush answers 200 to ack, 503 to have Pub/Sub retry. Payloads that can
// never succeed are acked so they do not loop forever.
func (h *PushHandler) HandlePush(c echo.Context) error {
	ctx := c.Request().Context()

	if h.verifyPushAuth {
		if err := h.verifyPubSubToken(c.Request()); err != nil {
			h.logger.Warn("[Worker] Invalid Pub/Sub token", slog.Any("error", err))

			return c.NoContent(http.StatusUnauthorized)
		}
	}

	var pushMsg PushMessage
	if err := c.Bind(&pushMsg); err != nil {
		h.logger.Error("[Worker] Failed to parse push message", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	event, err := decodeLedgerEvent(pushMsg.Message.Data)
	if err != nil {
		h.logger.Error("[Worker] Dropping undecodable ledger event",
			slog.String("message_id", pushMsg.Message.MessageID),
			slog.Any("error", err),
		)

		return c.NoContent(http.StatusOK)
	}

	requestID := h.extractRequestID(ctx, &pushMsg, event)
	reqLogger := h.logger.With(slog.String("request_id", requestID))
	ctx = deliverycontext.WithRequestID(ctx, requestID)
	ctx = deliverycontext.WithLogger(ctx, reqLogger)

	if err := h.processEvent(ctx, pushMsg.Message.MessageID, requestID, event); err != nil {
		reqLogger.Error("[Worker] Failed to record ledger event",
			slog.String("message_id", pushMsg.Message.MessageID),
			slog.String("type", event.Type),
			slog.Any("error", err),
			slog.Bool("retryable", isRetryableError(err)),
		)
		if isRetryableError(err) {
			return c.NoContent(http.StatusServiceUnavailable)
		}

		return c.NoContent(http.StatusOK)
	}

	return c.NoContent(http.StatusOK)
}

func decodeLedgerEvent(data string) (*service.LedgerEvent, error) {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, errors.Wrap(err, "decode message data")
	}

	var event service.LedgerEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		return nil, errors.Wrap(err, "unmarshal ledger event")
	}

	return &event, nil
}

// extractRequestID prefers the message attribute, then the event body, then the
// X-Request-Id the middleware put on the context.
func (h *PushHandler) extractRequestID(ctx context.Context, pushMsg *PushMessage, event *service.LedgerEvent) string {
	if requestID := pushMsg.Message.Attributes["request_id"]; requestID != "" {
		return requestID
	}
	if event.RequestID != "" {
		return event.RequestID
	}
	if requestID := deliverycontext.GetRequestIDFromContext(ctx); requestID != "" {
		return requestID
	}

	return uuid.New().String()
}

func (h *PushHandler) processEvent(ctx context.Context, messageID, requestID string, event *service.LedgerEvent) error {
	entry, err := h.toAuditEntry(messageID, requestID, event)
	if err != nil {
		return err
	}

	inserted, err := h.auditRepo.Append(ctx, entry)
	if err != nil {
		return newRetryableError(errors.WithStack(err))
	}

	logger := deliverycontext.GetLoggerOrDefault(ctx, h.logger)
	if !inserted {
		logger.Info("[Worker] Duplicate ledger event ignored", slog.String("message_id", messageID))

		return nil
	}

	logger.Info("[Worker] Ledger event recorded",
		slog.String("message_id", messageID),
		slog.String("type", event.Type),
		slog.String("entity_id", event.EntityID),
	)

	return nil
}

func (h *PushHandler) toAuditEntry(messageID, requestID string, event *service.LedgerEvent) (*entity.LedgerAuditEntry, error) {
	if messageID == "" {
		return nil, errors.New("message id is empty")
	}
	if event.Type == "" {
		return nil, errors.New("event type is empty")
	}

	userID, err := uuid.Parse(event.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "parse user_id")
	}
	entityID, err := uuid.Parse(event.EntityID)
	if err != nil {
		return nil, errors.Wrap(err, "parse entity_id")
	}

	entry := &entity.LedgerAuditEntry{
		MessageID:  messageID,
		RequestID:  requestID,
		EventType:  event.Type,
		UserID:     userID,
		EntityID:   entityID,
		OccurredAt: event.OccurredAt,
		ReceivedAt: h.now().UTC(),
	}
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = entry.ReceivedAt
	}

	if event.Amount != "" {
		amount, err := decimal.NewFromString(event.Amount)
		if err != nil {
			return nil, errors.Wrap(err, "parse amount")
		}
		entry.Amount = &amount
	}
	if event.CategoryID != "" {
		categoryID, err := uuid.Parse(event.CategoryID)
		if err != nil {
			return nil, errors.Wrap(err, "parse category_id")
		}
		entry.CategoryID = &categoryID
	}

	return entry, nil
}

// verifyPubSubToken checks the Google-signed OIDC token Pub/Sub attaches to
// authenticated push requests.
func (h *PushHandler) verifyPubSubToken(req *http.Request) error {
	authHeader := req.Header.Get("Authorization")
	if authHeader == "" {
		return errors.New("missing authorization header")
	}

	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return errors.New("invalid authorization header format")
	}
	token := strings.TrimPrefix(authHeader, bearerPrefix)

	audience := h.pushAudience
	if audience == "" {
		scheme := "https"
		if req.TLS == nil {
			scheme = "http"
		}
		audience = fmt.Sprintf("%s://%s%s", scheme, req.Host, req.URL.Path)
	}

	payload, err := h.validateToken(req.Context(), token, audience)
	if err != nil {
		return errors.Wrap(err, "failed to validate token")
	}

	if payload.Issuer != "accounts.google.com" && payload.Issuer != "https://accounts.google.com" {
		return errors.Errorf("invalid issuer: %s", payload.Issuer)
	}

	if emailVerified, ok := payload.Claims["email_verified"].(bool); ok && !emailVerified {
		return errors.New("email not verified")
	}

	return nil
}
