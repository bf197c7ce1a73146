package fcm

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/messaging"
)

type Service struct {
	client *messaging.Client
}

func NewService(ctx context.Context) (*Service, error) {
	app, err := firebase.NewApp(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("obtaining messaging client: %w", err)
	}

	return &Service{client: client}, nil
}

type Message struct {
	Token string
	Data  map[string]string
}

func (s *Service) SendMessage(ctx context.Context, m *Message) error {
	message := &messaging.Message{
		Data:  m.Data,
		Token: m.Token,
	}

	_, err := s.client.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	return nil
}
