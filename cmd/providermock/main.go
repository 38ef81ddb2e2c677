package main

import (
	"context"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// A local stand-in for the email and SMS providers, used when developing the
// engine without live SendGrid/Twilio credentials. It speaks just enough of
// each provider's surface for the dispatch adapters: a v3 mail send endpoint
// and a message create endpoint, with configurable failure injection.

type SendMailRequest struct {
	Personalizations []struct {
		To []struct {
			Email string `json:"email"`
		} `json:"to"`
	} `json:"personalizations"`
	Subject string `json:"subject"`
}

type CreateMessageResponse struct {
	Sid         string     `json:"sid"`
	Status      string     `json:"status"`
	To          string     `json:"to"`
	DateCreated *time.Time `json:"date_created,omitempty"`
	ErrorCode   string     `json:"error_code,omitempty"`
	ErrorMsg    string     `json:"error_message,omitempty"`
}

// MockProvider simulates both transports with a shared delivery rate.
type MockProvider struct {
	deliveryRate float64
	minDelay     time.Duration
	maxDelay     time.Duration
	providerID   string
	rng          *rand.Rand
}

func NewMockProvider(deliveryRate float64, minDelay, maxDelay time.Duration) *MockProvider {
	return &MockProvider{
		deliveryRate: deliveryRate,
		minDelay:     minDelay,
		maxDelay:     maxDelay,
		providerID:   "MOCK_PROVIDER_" + uuid.New().String()[:8],
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (m *MockProvider) randomDelay() time.Duration {
	delta := m.maxDelay - m.minDelay
	return m.minDelay + time.Duration(m.rng.Int63n(int64(delta)))
}

func (m *MockProvider) shouldSucceed() bool {
	return m.rng.Float64() < m.deliveryRate
}

type Handler struct {
	provider *MockProvider
}

func NewHandler(provider *MockProvider) *Handler {
	return &Handler{provider: provider}
}

// SendMail mimics the SendGrid v3 mail send call: 202 with a message id
// header on success, 500 on injected failure.
func (h *Handler) SendMail(c *gin.Context) {
	var req SendMailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []gin.H{{"message": err.Error()}}})
		return
	}

	time.Sleep(h.provider.randomDelay())

	to := ""
	if len(req.Personalizations) > 0 && len(req.Personalizations[0].To) > 0 {
		to = req.Personalizations[0].To[0].Email
	}

	if !h.provider.shouldSucceed() {
		log.Warn().Str("to", to).Str("subject", req.Subject).Msg("mail delivery failed")
		c.JSON(http.StatusInternalServerError, gin.H{"errors": []gin.H{{"message": "simulated provider outage"}}})
		return
	}

	messageID := uuid.New().String()
	log.Info().Str("to", to).Str("subject", req.Subject).Str("message_id", messageID).Msg("mail accepted")
	c.Header("X-Message-Id", messageID)
	c.Status(http.StatusAccepted)
}

// CreateMessage mimics the Twilio message create call.
func (h *Handler) CreateMessage(c *gin.Context) {
	to := c.PostForm("To")
	body := c.PostForm("Body")
	if to == "" || body == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "To and Body are required"})
		return
	}

	time.Sleep(h.provider.randomDelay())

	resp := CreateMessageResponse{
		Sid: "SM" + uuid.New().String()[:32],
		To:  to,
	}

	if !h.provider.shouldSucceed() {
		resp.Status = "failed"
		resp.ErrorCode = "30008"
		resp.ErrorMsg = "Unknown destination handset error"
		log.Warn().Str("to", to).Msg("sms delivery failed")
		c.JSON(http.StatusOK, resp)
		return
	}

	now := time.Now()
	resp.Status = "queued"
	resp.DateCreated = &now
	log.Info().Str("to", to).Str("sid", resp.Sid).Msg("sms accepted")
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "healthy",
		"provider_id":   h.provider.providerID,
		"timestamp":     time.Now(),
		"delivery_rate": h.provider.deliveryRate,
	})
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	deliveryRate := 0.95
	provider := NewMockProvider(deliveryRate, 20*time.Millisecond, 200*time.Millisecond)
	handler := NewHandler(provider)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.POST("/v3/mail/send", handler.SendMail)
	r.POST("/2010-04-01/Accounts/:sid/Messages.json", handler.CreateMessage)
	r.GET("/health", handler.Health)

	addr := os.Getenv("PROVIDER_MOCK_ADDR")
	if addr == "" {
		addr = ":8090"
	}

	srv := &http.Server{Addr: addr, Handler: r}
	go func() {
		log.Info().Str("addr", addr).Str("provider_id", provider.providerID).Msg("provider mock listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info().Msg("provider mock stopped")
}
