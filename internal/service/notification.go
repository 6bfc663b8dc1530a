package service

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"evcharge-storefront/internal/client"
	"evcharge-storefront/internal/model"
	"evcharge-storefront/internal/validation"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	htmlTemplates = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/*.html.tmpl"))
	textTemplates = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/*.txt.tmpl"))
)

type NotificationService interface {
	SendOrderConfirmation(ctx context.Context, order *model.Order) (string, error)
	SendContactMessage(ctx context.Context, msg model.ContactMessage) (string, error)
}

type NotificationSettings struct {
	From      string
	ContactTo string
}

type notificationServiceImpl struct {
	email    client.EmailClient
	settings NotificationSettings
	validate *validator.Validate
}

func NewNotificationService(email client.EmailClient, settings NotificationSettings) NotificationService {
	return &notificationServiceImpl{
		email:    email,
		settings: settings,
		validate: validation.New(),
	}
}

type confirmationLine struct {
	Title     string
	Quantity  int
	UnitPrice string
	Total     string
}

type confirmationData struct {
	OrderNumber     string
	Lines           []confirmationLine
	Subtotal        string
	Shipping        string
	Carrier         string
	Total           string
	Currency        string
	ShippingAddress *model.Address
}

func (s *notificationServiceImpl) SendOrderConfirmation(ctx context.Context, order *model.Order) (string, error) {
	to := strings.TrimSpace(order.UserEmail)
	if to == "" {
		return "", ErrMissingRecipient
	}

	data := confirmationData{
		OrderNumber: order.OrderNumber,
		Subtotal:    order.Subtotal.String(),
		Shipping:    order.ShippingMethod.Price.String(),
		Carrier:     order.ShippingMethod.Carrier,
		Total:       order.Total.String(),
		Currency:    strings.ToUpper(order.Currency),
	}
	for _, l := range order.Lines {
		data.Lines = append(data.Lines, confirmationLine{
			Title:     l.Title,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice.String(),
			Total:     l.Total().String(),
		})
	}
	if !order.ShippingAddress.IsZero() {
		addr := order.ShippingAddress
		data.ShippingAddress = &addr
	}

	htmlBody, textBody, err := render("order_confirmation", data)
	if err != nil {
		return "", err
	}

	id, err := s.send(ctx, &client.EmailMessage{
		From:    s.settings.From,
		To:      []string{to},
		Subject: "Order confirmation " + order.OrderNumber,
		HTML:    htmlBody,
		Text:    textBody,
	})
	if err != nil {
		return "", err
	}

	zerolog.Ctx(ctx).Info().Str("order_number", order.OrderNumber).Str("email_id", id).Msg("order confirmation sent")
	return id, nil
}

func (s *notificationServiceImpl) SendContactMessage(ctx context.Context, msg model.ContactMessage) (string, error) {
	msg = sanitizeContact(msg)

	if err := s.validate.Struct(msg); err != nil {
		fields := validation.Fields(err)
		if len(fields) == 0 {
			return "", ErrInvalidContact.Wrap(err)
		}
		return "", ErrInvalidContact.WithMessage("Invalid fields: " + strings.ToLower(strings.Join(fields, ", "))).Wrap(err)
	}

	if s.settings.ContactTo == "" {
		return "", ErrConfiguration.WithMessage("Contact inbox is not configured")
	}

	// html/template escapes every interpolated field
	htmlBody, textBody, err := render("contact", msg)
	if err != nil {
		return "", err
	}

	return s.send(ctx, &client.EmailMessage{
		From:    s.settings.From,
		To:      []string{s.settings.ContactTo},
		ReplyTo: msg.Email,
		Subject: "Contact request from " + msg.Name,
		HTML:    htmlBody,
		Text:    textBody,
	})
}

func (s *notificationServiceImpl) send(ctx context.Context, msg *client.EmailMessage) (string, error) {
	id, err := s.email.Send(ctx, msg)
	if err != nil {
		if errors.Is(err, client.ErrNotConfigured) {
			return "", ErrConfiguration.WithMessage("Email is not configured").Wrap(err)
		}
		return "", ErrEmailUpstream.Wrap(err)
	}
	return id, nil
}

func render(name string, data any) (string, string, error) {
	var htmlBuf, textBuf bytes.Buffer
	if err := htmlTemplates.ExecuteTemplate(&htmlBuf, name+".html.tmpl", data); err != nil {
		return "", "", err
	}
	if err := textTemplates.ExecuteTemplate(&textBuf, name+".txt.tmpl", data); err != nil {
		return "", "", err
	}
	return htmlBuf.String(), textBuf.String(), nil
}

func sanitizeContact(msg model.ContactMessage) model.ContactMessage {
	return model.ContactMessage{
		Name:    singleLine(msg.Name),
		Phone:   singleLine(msg.Phone),
		Email:   singleLine(msg.Email),
		Message: strings.TrimSpace(stripControl(msg.Message, true)),
	}
}

func singleLine(s string) string {
	return strings.TrimSpace(stripControl(s, false))
}

func stripControl(s string, keepNewlines bool) string {
	return strings.Map(func(r rune) rune {
		if keepNewlines && (r == '\n' || r == '\t') {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
