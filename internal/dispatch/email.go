package dispatch

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/emailzus/reminder-engine/internal/model"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailDispatcher sends rendered emails through SendGrid.
//
// Sender identity depends on the company: a company whose business email sits
// on an authorized sending domain sends as itself; everyone else sends from
// the platform address with the company set as reply-to, so customer replies
// still reach the company.
type EmailDispatcher struct {
	client            *sendgrid.Client
	fromAddress       string
	fromName          string
	authorizedDomains map[string]struct{}
	attachmentRoot    string
}

type EmailConfig struct {
	APIKey            string
	FromAddress       string
	FromName          string
	AuthorizedDomains []string
	AttachmentRoot    string
}

func NewEmailDispatcher(cfg EmailConfig) *EmailDispatcher {
	domains := make(map[string]struct{}, len(cfg.AuthorizedDomains))
	for _, d := range cfg.AuthorizedDomains {
		domains[strings.ToLower(d)] = struct{}{}
	}
	return &EmailDispatcher{
		client:            sendgrid.NewSendClient(cfg.APIKey),
		fromAddress:       cfg.FromAddress,
		fromName:          cfg.FromName,
		authorizedDomains: domains,
		attachmentRoot:    cfg.AttachmentRoot,
	}
}

func (d *EmailDispatcher) SendEmail(ctx context.Context, msg *EmailMessage) (*Result, error) {
	message, err := d.build(msg)
	if err != nil {
		return nil, err
	}

	resp, err := d.client.SendWithContext(ctx, message)
	if err != nil {
		return nil, &Error{Channel: model.ChannelEmail, Detail: "provider call failed", Err: err}
	}
	if resp.StatusCode >= 400 {
		return nil, &Error{
			Channel: model.ChannelEmail,
			Detail:  fmt.Sprintf("provider rejected message: %d %s", resp.StatusCode, resp.Body),
		}
	}

	return &Result{
		ProviderID: messageID(resp.Headers),
		Response:   fmt.Sprintf("accepted: %d", resp.StatusCode),
	}, nil
}

func messageID(headers map[string][]string) string {
	if ids := headers["X-Message-Id"]; len(ids) > 0 {
		return ids[0]
	}
	return ""
}

func (d *EmailDispatcher) build(msg *EmailMessage) (*mail.SGMailV3, error) {
	from, replyTo := d.sender(msg.Company)

	message := mail.NewV3Mail()
	message.SetFrom(from)
	if replyTo != nil {
		message.SetReplyTo(replyTo)
	}
	message.Subject = msg.Subject

	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail(msg.ToName, msg.To))
	message.AddPersonalizations(p)

	message.AddContent(mail.NewContent("text/html", msg.HTML))

	for _, path := range msg.Attachments {
		att, err := d.loadAttachment(path)
		if err != nil {
			return nil, &Error{Channel: model.ChannelEmail, Detail: "attachment unreadable", Err: err}
		}
		message.AddAttachment(att)
	}

	return message, nil
}

// sender picks the from and reply-to pair for a company. Companies without a
// business email always send as the platform with no reply-to.
func (d *EmailDispatcher) sender(company *model.Company) (*mail.Email, *mail.Email) {
	platform := mail.NewEmail(d.fromName, d.fromAddress)

	if company == nil || company.BusinessEmail == "" {
		return platform, nil
	}
	if d.domainAuthorized(company.BusinessEmail) {
		return mail.NewEmail(company.Name, company.BusinessEmail), nil
	}
	return platform, mail.NewEmail(company.Name, company.BusinessEmail)
}

func (d *EmailDispatcher) domainAuthorized(address string) bool {
	at := strings.LastIndex(address, "@")
	if at < 0 {
		return false
	}
	_, ok := d.authorizedDomains[strings.ToLower(address[at+1:])]
	return ok
}

func (d *EmailDispatcher) loadAttachment(path string) (*mail.Attachment, error) {
	full := filepath.Join(d.attachmentRoot, filepath.Clean("/"+path))
	content, err := os.ReadFile(full)
	if err != nil {
		return nil, err
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	att := mail.NewAttachment()
	att.SetContent(base64.StdEncoding.EncodeToString(content))
	att.SetType(contentType)
	att.SetFilename(filepath.Base(path))
	att.SetDisposition("attachment")
	return att, nil
}
