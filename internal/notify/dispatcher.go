package notify

import (
	"context"
	"sync"
	"time"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"

	"io.winapps.starlight/internal/metrics"
)

// Sender delivers one FCM message; *messaging.Client satisfies it
type Sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

type job struct {
	uid   string
	title string
	body  string
	data  map[string]string
}

// Dispatcher queues notifications and sends them from background workers.
// Notify never blocks; when the queue is full the notification is dropped.
type Dispatcher struct {
	sender   Sender
	registry Registry
	metrics  metrics.Recorder
	logger   *zap.SugaredLogger

	queue   chan job
	wg      sync.WaitGroup
	timeout time.Duration
}

func NewDispatcher(sender Sender, registry Registry, queueSize int, rec metrics.Recorder, logger *zap.SugaredLogger) *Dispatcher {
	if rec == nil {
		rec = metrics.Nop{}
	}
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Dispatcher{
		sender:   sender,
		registry: registry,
		metrics:  rec,
		logger:   logger,
		queue:    make(chan job, queueSize),
		timeout:  10 * time.Second,
	}
}

// Start runs workers until ctx is cancelled. Wait blocks until they exit.
func (d *Dispatcher) Start(ctx context.Context, workers int) {
	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case j := <-d.queue:
					d.deliver(ctx, j)
				}
			}
		}()
	}
}

func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) Notify(ctx context.Context, uid, title, body string, data map[string]string) {
	select {
	case d.queue <- job{uid: uid, title: title, body: body, data: data}:
	default:
		d.metrics.RecordNotification("dropped")
		d.logger.Warnw("notification queue full, dropping", "user_uid", uid)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, j job) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	token, err := d.registry.Token(ctx, j.uid)
	if err != nil {
		d.metrics.RecordNotification("error")
		d.logger.Warnw("failed to load push token", "user_uid", j.uid, "error", err)
		return
	}
	if token == nil {
		d.metrics.RecordNotification("no_token")
		return
	}
	d.SendTo(ctx, *token, j.title, j.body, j.data)
}

// SendTo sends one message synchronously and reports whether it was accepted
func (d *Dispatcher) SendTo(ctx context.Context, token PushToken, title, body string, data map[string]string) bool {
	_, err := d.sender.Send(ctx, buildMessage(token.FCMToken, title, body, data))
	if err == nil {
		d.metrics.RecordNotification("sent")
		return true
	}

	d.metrics.RecordNotification("error")
	if messaging.IsUnregistered(err) {
		d.logger.Infow("push token unregistered, deactivating", "user_uid", token.UserID)
		if err := d.registry.Deactivate(ctx, token.UserID); err != nil {
			d.logger.Warnw("failed to deactivate push token", "user_uid", token.UserID, "error", err)
		}
		return false
	}
	d.logger.Warnw("failed to send notification", "user_uid", token.UserID, "error", err)
	return false
}

func buildMessage(token, title, body string, data map[string]string) *messaging.Message {
	return &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Webpush: &messaging.WebpushConfig{
			Notification: &messaging.WebpushNotification{
				Title: title,
				Body:  body,
				Icon:  "/icon-192.png",
			},
		},
		Android: &messaging.AndroidConfig{
			Notification: &messaging.AndroidNotification{
				ChannelID: "starlight",
				Priority:  messaging.PriorityHigh,
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: title,
						Body:  body,
					},
					Sound: "default",
				},
			},
		},
	}
}
