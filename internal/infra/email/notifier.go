package email

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/qwp-look/frame-extractor/internal/domain/entity"
	"go.uber.org/zap"
)

type SMTPNotifier struct {
	host   string
	port   int
	from   string
	logger *zap.Logger
}

func NewSMTPNotifier(host string, port int, from string, logger *zap.Logger) *SMTPNotifier {
	return &SMTPNotifier{host: host, port: port, from: from, logger: logger}
}

func (n *SMTPNotifier) NotifyFailure(_ context.Context, userEmail string, job *entity.Job) error {
	addr := fmt.Sprintf("%s:%d", n.host, n.port)

	err := smtp.SendMail(addr, nil, n.from, []string{userEmail}, failureMessage(n.from, userEmail, job))
	if err != nil {
		n.logger.Error("failed to send failure notification email",
			zap.String("to", userEmail),
			zap.String("job_id", job.ID.String()),
			zap.Error(err),
		)
		return fmt.Errorf("send email: %w", err)
	}

	n.logger.Info("failure notification email sent",
		zap.String("to", userEmail),
		zap.String("job_id", job.ID.String()),
	)
	return nil
}

func failureMessage(from, to string, job *entity.Job) []byte {
	subject := fmt.Sprintf("Frame extraction failed [Job %s]", job.ID)
	body := fmt.Sprintf(
		"Hello,\r\n\r\n"+
			"Frames could not be extracted from your video.\r\n\r\n"+
			"Job ID: %s\r\n"+
			"Video: %s\r\n"+
			"Attempts: %d/%d\r\n"+
			"Error: %s\r\n\r\n"+
			"Check that the file is an .mp4 or .avi video and that the requested frame count is positive.\r\n",
		job.ID, job.VideoKey, job.Attempt, job.MaxAttempts, job.ErrorMessage,
	)
	return []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", from, to, subject, body))
}
