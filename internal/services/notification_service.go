package services

import (
	"context"

	"ridelink/internal/models"
	"ridelink/internal/repositories/interfaces"
	"ridelink/pkg/logger"
	"ridelink/pkg/push"
	"ridelink/pkg/sms"
	"ridelink/pkg/websocket"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationService fans a domain event out to a user's devices. Delivery
// is fire-and-forget: failures are logged and never fail the caller, so ride
// transactions cannot be rolled back by a push outage.
type NotificationService interface {
	NotifyRider(ctx context.Context, riderID primitive.ObjectID, kind models.NotificationType, title, message string, data map[string]string)
	NotifyDriver(ctx context.Context, driverID primitive.ObjectID, kind models.NotificationType, title, message string, data map[string]string)
}

type notificationService struct {
	riderRepo        interfaces.RiderRepository
	driverRepo       interfaces.DriverRepository
	notificationRepo interfaces.NotificationRepository
	fcm              push.PushProvider
	apns             push.PushProvider
	smsProvider      sms.SMSProvider
	wsHandler        *websocket.Handler
	log              *logger.Logger
}

func NewNotificationService(
	riderRepo interfaces.RiderRepository,
	driverRepo interfaces.DriverRepository,
	notificationRepo interfaces.NotificationRepository,
	fcm push.PushProvider,
	apns push.PushProvider,
	smsProvider sms.SMSProvider,
	wsHandler *websocket.Handler,
	log *logger.Logger,
) NotificationService {
	return &notificationService{
		riderRepo:        riderRepo,
		driverRepo:       driverRepo,
		notificationRepo: notificationRepo,
		fcm:              fcm,
		apns:             apns,
		smsProvider:      smsProvider,
		wsHandler:        wsHandler,
		log:              log,
	}
}

func (s *notificationService) NotifyRider(ctx context.Context, riderID primitive.ObjectID, kind models.NotificationType, title, message string, data map[string]string) {
	rider, err := s.riderRepo.GetByID(ctx, riderID)
	if err != nil {
		s.log.WithError(err).WithUserID(riderID).Warn("notify: failed to load rider")
		return
	}

	s.deliver(ctx, riderID, rider.DeviceTokens, rider.Phone, kind, title, message, data)
}

func (s *notificationService) NotifyDriver(ctx context.Context, driverID primitive.ObjectID, kind models.NotificationType, title, message string, data map[string]string) {
	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		s.log.WithError(err).WithUserID(driverID).Warn("notify: failed to load driver")
		return
	}

	s.deliver(ctx, driverID, driver.DeviceTokens, driver.Phone, kind, title, message, data)
}

func (s *notificationService) deliver(ctx context.Context, userID primitive.ObjectID, tokens []models.DeviceToken, phone string, kind models.NotificationType, title, message string, data map[string]string) {
	record := &models.Notification{
		UserID:  userID,
		Type:    kind,
		Title:   title,
		Message: message,
		Data:    data,
	}
	if err := s.notificationRepo.Create(ctx, record); err != nil {
		s.log.WithError(err).WithUserID(userID).Warn("notify: failed to persist notification")
	}

	for _, token := range tokens {
		provider := s.providerFor(token.Platform)
		if provider == nil {
			continue
		}

		req := &push.NotificationRequest{
			Token:    token.Token,
			Title:    title,
			Body:     message,
			Data:     data,
			Priority: "high",
		}
		if _, err := provider.SendNotification(ctx, req); err != nil {
			s.log.WithError(err).WithUserID(userID).WithField("platform", string(token.Platform)).Warn("notify: push delivery failed")
		}
	}

	if s.wsHandler != nil {
		payload := map[string]interface{}{"title": title, "message": message}
		for k, v := range data {
			payload[k] = v
		}
		s.wsHandler.SendUserNotification(userID, string(kind), payload)
	}

	if s.smsProvider != nil && phone != "" && smsWorthy(kind) {
		req := &sms.SMSRequest{
			To:      phone,
			Message: title + ": " + message,
			Type:    "transactional",
		}
		if _, err := s.smsProvider.SendSMS(ctx, req); err != nil {
			s.log.WithError(err).WithUserID(userID).Warn("notify: sms delivery failed")
		}
	}
}

func (s *notificationService) providerFor(platform models.DevicePlatform) push.PushProvider {
	switch platform {
	case models.PlatformAndroid:
		return s.fcm
	case models.PlatformIOS:
		return s.apns
	default:
		return nil
	}
}

// smsWorthy limits SMS to the events a user must see even with the app closed.
func smsWorthy(kind models.NotificationType) bool {
	return kind == models.NotificationRideAccepted || kind == models.NotificationRideCancelled
}
