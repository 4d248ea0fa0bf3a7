package email

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"
	"time"

	"github.com/aleksishere/wsb-GymManager/internal/logger"
	"github.com/aleksishere/wsb-GymManager/internal/metrics"

	"github.com/redis/go-redis/v9"
)

const queueKey = "emails"

type Job struct {
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Type    string    `json:"type"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

type Sender interface {
	Send(ctx context.Context, to, name, subject, body, emailType string) error
	SendMembershipConfirmation(ctx context.Context, to, name, typeName string, expiration time.Time) error
	SendEnrollmentConfirmation(ctx context.Context, to, name, className string, classDate time.Time) error
}

type Service struct {
	redis    *redis.Client
	from     string
	fromName string
	smtpHost string
	smtpPort string
	smtpUser string
	smtpPass string
}

func New(fromEmail, fromName, smtpHost, smtpPort, smtpUser, smtpPass, redisAddr string) *Service {
	return &Service{
		redis: redis.NewClient(&redis.Options{
			Addr: redisAddr,
		}),
		from:     fromEmail,
		fromName: fromName,
		smtpHost: smtpHost,
		smtpPort: smtpPort,
		smtpUser: smtpUser,
		smtpPass: smtpPass,
	}
}

// NewWithClient lets tests inject a redismock client.
func NewWithClient(client *redis.Client, fromEmail, fromName string) *Service {
	return &Service{
		redis:    client,
		from:     fromEmail,
		fromName: fromName,
	}
}

func (s *Service) Send(ctx context.Context, to, name, subject, body, emailType string) error {
	job := Job{
		To:      to,
		Name:    name,
		Subject: subject,
		Body:    body,
		Type:    emailType,
		Tries:   0,
		Created: time.Now(),
	}

	data, err := json.Marshal(job)
	if err != nil {
		logger.Errorf("Failed to marshal email job: %v", err)
		return err
	}

	if err := s.redis.LPush(ctx, queueKey, data).Err(); err != nil {
		logger.Errorf("Failed to queue email to %s: %v", to, err)
		metrics.RecordEmail(emailType, "queue_error")
		return err
	}

	metrics.EmailQueueLength.Inc()
	logger.Infof("Email queued: %s to %s", subject, to)
	return nil
}

func (s *Service) SendMembershipConfirmation(ctx context.Context, to, name, typeName string, expiration time.Time) error {
	subject := "Membership purchased: " + typeName
	body := fmt.Sprintf(
		"Hi %s,\n\nYour %s membership is now active. It is valid until %s.\n\nSee you at the gym!",
		name, typeName, expiration.Format("Jan 2, 2006"),
	)
	return s.Send(ctx, to, name, subject, body, "membership_confirmation")
}

func (s *Service) SendEnrollmentConfirmation(ctx context.Context, to, name, className string, classDate time.Time) error {
	subject := "Class enrollment confirmed: " + className
	body := fmt.Sprintf(
		"Hi %s,\n\nYou are signed up for %s on %s.\n\nSee you there!",
		name, className, classDate.Format("Jan 2, 2006 at 3:04 PM"),
	)
	return s.Send(ctx, to, name, subject, body, "enrollment_confirmation")
}

// Start drains the queue until ctx is cancelled. Runs as a goroutine
// next to the HTTP server.
func (s *Service) Start(ctx context.Context) {
	logger.Info("Email service started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Email service stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		return
	}

	metrics.EmailQueueLength.Dec()

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Errorf("Bad email data: %v", err)
		return
	}

	job.Tries++
	logger.Infof("Sending email to %s (attempt %d)", job.To, job.Tries)
	if err := s.sendNow(job); err != nil {
		logger.Errorf("Failed to send email to %s: %v", job.To, err)

		if job.Tries < 3 {
			time.Sleep(5 * time.Second)
			data, _ := json.Marshal(job)
			s.redis.LPush(context.Background(), queueKey, data)
			metrics.EmailQueueLength.Inc()
		} else {
			logger.Errorf("Email to %s failed after 3 attempts", job.To)
			metrics.RecordEmail(job.Type, "failed")
		}
		return
	}

	metrics.RecordEmail(job.Type, "sent")
	logger.Infof("Email sent successfully to %s", job.To)
}

func (s *Service) sendNow(job Job) error {
	addr := s.smtpHost + ":" + s.smtpPort

	msg := []byte(fmt.Sprintf(
		"From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s\r\n",
		s.fromName, s.from, job.To, job.Subject, job.Body,
	))

	var auth smtp.Auth
	if s.smtpUser != "" {
		auth = smtp.PlainAuth("", s.smtpUser, s.smtpPass, s.smtpHost)
	}

	return smtp.SendMail(addr, auth, s.from, []string{job.To}, msg)
}

// QueueLength reports how many emails are waiting in the queue.
func (s *Service) QueueLength(ctx context.Context) int64 {
	length, err := s.redis.LLen(ctx, queueKey).Result()
	if err != nil {
		return 0
	}
	return length
}

func (s *Service) Close() error {
	return s.redis.Close()
}
