package email

import (
	"context"
	"fmt"
	"time"

	"github.com/groupcal/reminder-service/internal/config"
	"github.com/groupcal/reminder-service/internal/model"
	mail "github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

type Provider struct {
	client *mail.Client
	from   string
	logger *zap.SugaredLogger
}

func NewProvider(logger *zap.SugaredLogger) (*Provider, error) {
	opts := []mail.Option{
		mail.WithPort(config.SmtpPort()),
	}
	if config.SmtpUser() != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(config.SmtpUser()),
			mail.WithPassword(config.SmtpPassword()),
		)
	}

	client, err := mail.NewClient(config.SmtpHost(), opts...)
	if err != nil {
		return nil, fmt.Errorf("init smtp client: %w", err)
	}

	return &Provider{
		client: client,
		from:   config.SmtpFrom(),
		logger: logger,
	}, nil
}

func (p *Provider) Send(ctx context.Context, occurrence *model.EventOccurrence, calendarDisplayName string, user *model.User) error {
	if user.Email == "" {
		p.logger.Debugw("user has no email address, skipping", "user", user.UID)
		return nil
	}

	m := mail.NewMsg()
	if err := m.From(p.from); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := m.To(user.Email); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}

	title := occurrence.Summary
	if title == "" {
		title = "Untitled event"
	}
	m.Subject(fmt.Sprintf("Reminder: %s", title))
	m.SetBodyString(mail.TypeTextPlain, body(occurrence, calendarDisplayName, user))

	if err := p.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	return nil
}

func body(occurrence *model.EventOccurrence, calendarDisplayName string, user *model.User) string {
	var when string
	if occurrence.AllDay {
		when = occurrence.Start.Format("Monday, 2 January 2006")
	} else {
		when = fmt.Sprintf("%s - %s",
			occurrence.Start.Format(time.RFC1123),
			occurrence.End.Format(time.RFC1123),
		)
	}

	text := fmt.Sprintf("Hello %s,\n\nThis is a reminder for the upcoming event %q in calendar %q.\n\nWhen: %s\n",
		user.DisplayName, occurrence.Summary, calendarDisplayName, when)
	if occurrence.Location != "" {
		text += fmt.Sprintf("Where: %s\n", occurrence.Location)
	}
	if occurrence.Description != "" {
		text += fmt.Sprintf("\n%s\n", occurrence.Description)
	}

	return text
}
