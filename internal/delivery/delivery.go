// Package delivery hands finished volume artifacts to their destinations.
//
// Two senders exist: KindleSender mails an artifact to a Kindle address over
// SMTP, and LibrarySender drops a verified copy into a local library
// directory. Both receive only finished artifact paths and know nothing
// about how volumes were packed.
package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/wneessen/go-mail"

	"tankobon/internal/config"
	"tankobon/internal/fileutil"
	"tankobon/internal/logging"
	"tankobon/internal/services"
)

// Sender delivers one finished volume artifact.
type Sender interface {
	Send(ctx context.Context, artifactPath string) error
}

// sendMail is swapped out by tests.
var sendMail = func(ctx context.Context, client *mail.Client, msg *mail.Msg) error {
	return client.DialAndSendWithContext(ctx, msg)
}

// KindleSender mails artifacts to a Kindle address. Amazon's ingestion
// keys off the subject line: an .azw3 attachment is sent as-is, anything
// else is submitted for conversion.
type KindleSender struct {
	cfg    config.Email
	logger *slog.Logger
}

// NewKindleSender validates the email settings and returns a sender.
func NewKindleSender(cfg config.Email, logger *slog.Logger) (*KindleSender, error) {
	for field, value := range map[string]string{
		"smtp_host":      cfg.SMTPHost,
		"from":           cfg.From,
		"kindle_address": cfg.KindleAddress,
	} {
		if strings.TrimSpace(value) == "" {
			return nil, services.Wrap(services.ErrConfiguration, "delivery", "kindle", field+" not configured", nil)
		}
	}
	return &KindleSender{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "delivery"),
	}, nil
}

// Send mails the artifact as an attachment.
func (k *KindleSender) Send(ctx context.Context, artifactPath string) error {
	if _, err := os.Stat(artifactPath); err != nil {
		return services.Wrap(services.ErrNotFound, "delivery", "kindle", "artifact missing", err)
	}

	msg := mail.NewMsg()
	if err := msg.From(k.cfg.From); err != nil {
		return services.Wrap(services.ErrConfiguration, "delivery", "kindle", "invalid from address", err)
	}
	if err := msg.To(k.cfg.KindleAddress); err != nil {
		return services.Wrap(services.ErrConfiguration, "delivery", "kindle", "invalid kindle address", err)
	}
	msg.Subject(subjectFor(artifactPath))
	msg.SetBodyString(mail.TypeTextPlain, "")
	msg.AttachFile(artifactPath)

	client, err := mail.NewClient(k.cfg.SMTPHost,
		mail.WithPort(k.cfg.SMTPPort),
		mail.WithSSL(),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(k.cfg.Username),
		mail.WithPassword(k.cfg.Password),
	)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "delivery", "kindle", "smtp client", err)
	}

	k.logger.Info("mailing volume to kindle",
		logging.String("artifact", filepath.Base(artifactPath)),
		logging.String("subject", subjectFor(artifactPath)),
	)
	if err := sendMail(ctx, client, msg); err != nil {
		return services.Wrap(services.ErrTransient, "delivery", "kindle", "send failed", err)
	}
	return nil
}

// subjectFor picks the ingestion subject: native Kindle formats are sent
// untouched, everything else asks Amazon to convert on arrival.
func subjectFor(artifactPath string) string {
	if strings.EqualFold(filepath.Ext(artifactPath), ".azw3") {
		return "Send"
	}
	return "Convert"
}

// LibrarySender places a verified copy of each artifact into a library
// directory, e.g. one watched by an ebook manager.
type LibrarySender struct {
	dir    string
	logger *slog.Logger
}

// NewLibrarySender returns a sender copying into dir.
func NewLibrarySender(dir string, logger *slog.Logger) (*LibrarySender, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "delivery", "library", "library directory not configured", nil)
	}
	return &LibrarySender{
		dir:    dir,
		logger: logging.NewComponentLogger(logger, "delivery"),
	}, nil
}

// Send copies the artifact into the library directory, verifying the copy
// byte-for-byte before reporting success.
func (l *LibrarySender) Send(_ context.Context, artifactPath string) error {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "delivery", "library", "create library directory", err)
	}
	dest := filepath.Join(l.dir, filepath.Base(artifactPath))
	if err := fileutil.CopyFileVerified(artifactPath, dest); err != nil {
		return services.Wrap(services.ErrTransient, "delivery", "library", fmt.Sprintf("copy %s", filepath.Base(artifactPath)), err)
	}
	l.logger.Info("volume copied to library", logging.String("path", dest))
	return nil
}

var (
	_ Sender = (*KindleSender)(nil)
	_ Sender = (*LibrarySender)(nil)
)
