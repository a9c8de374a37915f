package repository

import (
	"encoding/json"

	"marketplace_chat_service/internal/chat/domain"
	"marketplace_chat_service/pkg/database"

	"github.com/streadway/amqp"
)

// NotificationQueue definition hand-off to the external notifier
// (email/push workers consume the queue)
type NotificationQueue interface {
	PublishMessageNotification(n domain.MessageNotification) error
}

type rabbitNotificationQueue struct {
	rabbit database.RabbitRepo
	queue  string
}

// NewRabbitNotificationQueue create a NotificationQueue on rabbitmq,
// declaring the durable queue up front so messages published before any
// notifier worker starts are not dropped
func NewRabbitNotificationQueue(rabbit database.RabbitRepo, queue string) (NotificationQueue, error) {
	if _, err := rabbit.GetRabbit().QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		return nil, err
	}
	return &rabbitNotificationQueue{rabbit: rabbit, queue: queue}, nil
}

func (q *rabbitNotificationQueue) PublishMessageNotification(n domain.MessageNotification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return q.rabbit.Publish(
		"",      // default exchange
		q.queue, // queue name
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        data,
		},
	)
}
