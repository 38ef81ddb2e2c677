package engine

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/emailzus/reminder-engine/internal/model"
)

const (
	emailBrandingFooter = `<br/><br/><p style="font-size:12px;color:#888;">Powered by <a href="https://emailzus.com">Email Zus</a></p>`
	smsBrandingFooter   = " - Powered by Email Zus"
)

// tokenPattern matches {{ token.name }} with optional inner whitespace.
var tokenPattern = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_.]*)\s*\}\}`)

// Renderer substitutes placeholder tokens in template bodies and appends the
// channel's branding footer unless the subscription suppresses it.
//
// Substitution is a single pass over the body: every token is resolved
// against a table built once per call, so one token's value can never be
// re-expanded by a later token. Tokens absent from the table stay in the
// output verbatim.
type Renderer struct {
	AssetBaseURL string
}

// Render produces the final message content for one channel.
func (r *Renderer) Render(tpl *model.Template, customer *model.Customer, company *model.Company, sub *model.Subscription, channel model.Channel, now time.Time) string {
	table := r.tokenTable(customer, company, channel)

	body := tokenPattern.ReplaceAllStringFunc(tpl.Body, func(match string) string {
		name := strings.ToLower(tokenPattern.FindStringSubmatch(match)[1])
		if value, ok := table[name]; ok {
			return value
		}
		return match
	})

	if sub != nil && sub.CanRemoveBranding(now) {
		return body
	}
	if channel == model.ChannelSMS {
		return body + smsBrandingFooter
	}
	return body + emailBrandingFooter
}

// Subject derives the email subject line from the template title.
func Subject(tpl *model.Template) string {
	return "Reminder: " + tpl.Title
}

func (r *Renderer) tokenTable(customer *model.Customer, company *model.Company, channel model.Channel) map[string]string {
	table := map[string]string{
		"customer.name":    customer.Name,
		"customer.email":   customer.Email,
		"customer.phone":   customer.Phone,
		"customer.address": customer.Address,
		"customer.country": customer.Country,
		"company.name":     company.Name,
		"company.address":  company.Address,

		// generic synonyms kept for older template bodies
		"name":            customer.Name,
		"email":           customer.Email,
		"company":         company.Name,
		"recipient.name":  customer.Name,
		"recipient.email": customer.Email,
		"sender.name":     company.Name,
		"sender.email":    company.BusinessEmail,
	}

	// image tokens are meaningless in plain text, so SMS leaves them alone
	if channel == model.ChannelEmail {
		table["company.logo"] = r.imageTag(company.Logo, company.Name+" logo")
		table["company.signature"] = r.imageTag(company.Signature, company.Name+" signature")
	}

	return table
}

func (r *Renderer) imageTag(asset, alt string) string {
	if asset == "" {
		return ""
	}
	src := strings.TrimRight(r.AssetBaseURL, "/") + "/" + strings.TrimLeft(asset, "/")
	return fmt.Sprintf(`<img src="%s" alt="%s"/>`, src, alt)
}
