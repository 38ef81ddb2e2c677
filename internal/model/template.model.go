package model

import (
	"errors"
	"time"
)

// Channel selects the delivery transport of a template or a dispatch attempt.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

type Template struct {
	ID          int64     `json:"id"`
	CompanyID   int64     `json:"company_id"`
	Channel     Channel   `json:"channel"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Attachments []string  `json:"attachments"` // file paths, email templates only
	CreatedAt   time.Time `json:"created_at"`
}

func (Template) TableName() string { return "templates" }

type TemplateCreateRequest struct {
	CompanyID   int64
	Channel     Channel
	Title       string
	Body        string
	Attachments []string
}

func (p TemplateCreateRequest) Validate() error {
	if p.CompanyID == 0 {
		return errors.New("company_id is required")
	}
	if p.Channel != ChannelEmail && p.Channel != ChannelSMS {
		return errors.New("channel must be email or sms")
	}
	if p.Title == "" {
		return errors.New("title is required")
	}
	if p.Body == "" {
		return errors.New("body is required")
	}
	if p.Channel == ChannelSMS && len(p.Attachments) > 0 {
		return errors.New("sms templates cannot carry attachments")
	}
	return nil
}
