package push

import (
	"context"
	"fmt"
	"strconv"

	"github.com/groupcal/reminder-service/internal/model"
	"github.com/groupcal/reminder-service/internal/pkg/fcm"
	"go.uber.org/zap"
)

type fcmService interface {
	SendMessage(ctx context.Context, m *fcm.Message) error
}

// Provider delivers reminders as FCM data messages. The same delivery path
// backs the PUSH, DISPLAY and AUDIO channels; the channel name and sound
// flag in the payload let the client render them differently.
type Provider struct {
	fcm     fcmService
	logger  *zap.SugaredLogger
	channel model.NotificationType
	sound   bool
}

func NewPushProvider(fcm fcmService, logger *zap.SugaredLogger) *Provider {
	return &Provider{fcm: fcm, logger: logger, channel: model.NotificationTypePush}
}

func NewDisplayProvider(fcm fcmService, logger *zap.SugaredLogger) *Provider {
	return &Provider{fcm: fcm, logger: logger, channel: model.NotificationTypeDisplay}
}

func NewAudioProvider(fcm fcmService, logger *zap.SugaredLogger) *Provider {
	return &Provider{fcm: fcm, logger: logger, channel: model.NotificationTypeAudio, sound: true}
}

func (p *Provider) Send(ctx context.Context, occurrence *model.EventOccurrence, calendarDisplayName string, user *model.User) error {
	if user.PushToken == "" || !user.Notify {
		p.logger.Debugw("user not reachable over push, skipping",
			"user", user.UID,
			"channel", p.channel,
		)
		return nil
	}

	data := map[string]string{
		"channel":       string(p.channel),
		"event_uid":     occurrence.UID,
		"event_title":   occurrence.Summary,
		"event_start":   strconv.FormatInt(occurrence.Start.Unix(), 10),
		"event_end":     strconv.FormatInt(occurrence.End.Unix(), 10),
		"calendar_name": calendarDisplayName,
	}
	if occurrence.Location != "" {
		data["event_location"] = occurrence.Location
	}
	if p.sound {
		data["sound"] = "default"
	}

	if err := p.fcm.SendMessage(ctx, &fcm.Message{Token: user.PushToken, Data: data}); err != nil {
		return fmt.Errorf("fcm.SendMessage: %w", err)
	}

	return nil
}
