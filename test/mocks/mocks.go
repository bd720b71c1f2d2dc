package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/avatarctic/docflow/internal/core/domain/auth"
	"github.com/avatarctic/docflow/internal/core/domain/billing"
	"github.com/avatarctic/docflow/internal/core/domain/document"
	"github.com/avatarctic/docflow/internal/core/domain/image"
	"github.com/avatarctic/docflow/internal/core/domain/messaging"
	"github.com/avatarctic/docflow/internal/core/domain/ratelimit"
	"github.com/avatarctic/docflow/internal/core/domain/reminder"
	"github.com/avatarctic/docflow/internal/core/domain/user"
	"github.com/avatarctic/docflow/internal/core/layout"
	"github.com/avatarctic/docflow/internal/core/ports"
)

// RateLimitRepositoryMock is a lightweight mock for RateLimitRepository
type RateLimitRepositoryMock struct {
	IncrementFn func(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

func (m *RateLimitRepositoryMock) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if m.IncrementFn != nil {
		return m.IncrementFn(ctx, key, window)
	}
	return 1, window, nil
}

// RateLimiterServiceMock admits everything unless AllowFn says otherwise
type RateLimiterServiceMock struct {
	AllowFn func(ctx context.Context, identity string) ratelimit.Decision
}

func (m *RateLimiterServiceMock) Allow(ctx context.Context, identity string) ratelimit.Decision {
	if m.AllowFn != nil {
		return m.AllowFn(ctx, identity)
	}
	return ratelimit.Decision{Allowed: true, Identity: identity, Limit: 5, Remaining: 4, Reset: time.Now().Add(time.Minute)}
}

// UserRepositoryMock is an in-memory UserRepository
type UserRepositoryMock struct {
	CreateFn     func(ctx context.Context, u *user.User) error
	GetByIDFn    func(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetByEmailFn func(ctx context.Context, email string) (*user.User, error)
}

func (m *UserRepositoryMock) Create(ctx context.Context, u *user.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, u)
	}
	return nil
}
func (m *UserRepositoryMock) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, fmt.Errorf("not found")
}
func (m *UserRepositoryMock) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}
	return nil, fmt.Errorf("not found")
}

// AuthServiceMock is a lightweight mock for AuthService
type AuthServiceMock struct {
	SignupFn         func(ctx context.Context, req *user.SignupRequest) (*user.User, error)
	LoginFn          func(ctx context.Context, req *auth.LoginRequest) (*auth.AuthTokens, error)
	ValidateTokenFn  func(ctx context.Context, token string) (*auth.Claims, error)
	IsEmailAllowedFn func(email string) bool
	Allowed          []string
}

func (m *AuthServiceMock) Signup(ctx context.Context, req *user.SignupRequest) (*user.User, error) {
	if m.SignupFn != nil {
		return m.SignupFn(ctx, req)
	}
	return &user.User{ID: uuid.New(), Email: req.Email, Name: req.Name}, nil
}
func (m *AuthServiceMock) Login(ctx context.Context, req *auth.LoginRequest) (*auth.AuthTokens, error) {
	if m.LoginFn != nil {
		return m.LoginFn(ctx, req)
	}
	return &auth.AuthTokens{AccessToken: "token", TokenType: auth.TokenTypeBearer, ExpiresIn: 3600}, nil
}
func (m *AuthServiceMock) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, token)
	}
	return nil, fmt.Errorf("invalid token")
}
func (m *AuthServiceMock) IsEmailAllowed(email string) bool {
	if m.IsEmailAllowedFn != nil {
		return m.IsEmailAllowedFn(email)
	}
	return true
}
func (m *AuthServiceMock) AllowedEmails() []string { return m.Allowed }

// DocumentRepositoryMock keeps documents in a map
type DocumentRepositoryMock struct {
	mu        sync.Mutex
	Docs      map[uuid.UUID]*document.Document
	CreateErr error
}

func NewDocumentRepositoryMock() *DocumentRepositoryMock {
	return &DocumentRepositoryMock{Docs: map[uuid.UUID]*document.Document{}}
}

func (m *DocumentRepositoryMock) Create(ctx context.Context, d *document.Document) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Docs[d.ID] = d
	return nil
}
func (m *DocumentRepositoryMock) GetByID(ctx context.Context, id uuid.UUID) (*document.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.Docs[id]; ok {
		return d, nil
	}
	return nil, document.ErrNotFound
}
func (m *DocumentRepositoryMock) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]document.Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []document.Summary
	for _, d := range m.Docs {
		if d.UserID == userID {
			out = append(out, document.Summary{ID: d.ID, OriginalName: d.OriginalName, Text: d.Text, CreatedAt: d.CreatedAt})
		}
	}
	return out, nil
}

// TextExtractorMock returns Text or Err
type TextExtractorMock struct {
	Text string
	Err  error
}

func (m *TextExtractorMock) Name() string { return "mock" }
func (m *TextExtractorMock) Extract(ctx context.Context, img document.Upload) (string, error) {
	return m.Text, m.Err
}

// DocumentRendererMock records the blocks it was given
type DocumentRendererMock struct {
	Fmt    document.Format
	Out    []byte
	Err    error
	Blocks []layout.Block
}

func (m *DocumentRendererMock) Format() document.Format { return m.Fmt }
func (m *DocumentRendererMock) Render(blocks []layout.Block) ([]byte, error) {
	m.Blocks = blocks
	return m.Out, m.Err
}

// DocumentServiceMock is a lightweight mock for DocumentService
type DocumentServiceMock struct {
	ProcessFn  func(ctx context.Context, userID uuid.UUID, up document.Upload) (*document.ProcessResult, error)
	ListFn     func(ctx context.Context, userID uuid.UUID) ([]document.Summary, error)
	DownloadFn func(ctx context.Context, userID, id uuid.UUID) (*document.Document, error)
}

func (m *DocumentServiceMock) Process(ctx context.Context, userID uuid.UUID, up document.Upload) (*document.ProcessResult, error) {
	if m.ProcessFn != nil {
		return m.ProcessFn(ctx, userID, up)
	}
	return nil, fmt.Errorf("not implemented")
}
func (m *DocumentServiceMock) List(ctx context.Context, userID uuid.UUID) ([]document.Summary, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, userID)
	}
	return nil, nil
}
func (m *DocumentServiceMock) Download(ctx context.Context, userID, id uuid.UUID) (*document.Document, error) {
	if m.DownloadFn != nil {
		return m.DownloadFn(ctx, userID, id)
	}
	return nil, document.ErrNotFound
}

// BillingClientMock returns Clients filtered by the given filter
type BillingClientMock struct {
	Clients []billing.Client
	Err     error
	Delay   time.Duration
	Calls   int
	mu      sync.Mutex
}

func (m *BillingClientMock) FetchClients(ctx context.Context, filter *billing.ClientFilter) ([]billing.Client, error) {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	if m.Delay > 0 {
		time.Sleep(m.Delay)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return filter.Apply(m.Clients), nil
}

// CallCount returns the number of FetchClients calls so far
func (m *BillingClientMock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}

// SentTemplate is one recorded SendTemplate call
type SentTemplate struct {
	To         string
	Name       string
	Components []messaging.TemplateComponent
}

// MessengerMock records outgoing messages; FailFor makes sends to a number fail
type MessengerMock struct {
	mu        sync.Mutex
	Templates []SentTemplate
	Texts     map[string][]string
	Read      []string
	FailFor   map[string]error
}

func (m *MessengerMock) SendTemplate(ctx context.Context, to, name string, components []messaging.TemplateComponent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.FailFor[to]; err != nil {
		return err
	}
	m.Templates = append(m.Templates, SentTemplate{To: to, Name: name, Components: components})
	return nil
}
func (m *MessengerMock) SendText(ctx context.Context, to, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.FailFor[to]; err != nil {
		return err
	}
	if m.Texts == nil {
		m.Texts = map[string][]string{}
	}
	m.Texts[to] = append(m.Texts[to], body)
	return nil
}
func (m *MessengerMock) MarkRead(ctx context.Context, messageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Read = append(m.Read, messageID)
	return nil
}

// WebhookServiceMock is a lightweight mock for WebhookService
type WebhookServiceMock struct {
	VerifyFn func(mode, token, challenge string) (string, bool)
	HandleFn func(ctx context.Context, n *messaging.WebhookNotification) string
}

func (m *WebhookServiceMock) Verify(mode, token, challenge string) (string, bool) {
	if m.VerifyFn != nil {
		return m.VerifyFn(mode, token, challenge)
	}
	return challenge, true
}
func (m *WebhookServiceMock) Handle(ctx context.Context, n *messaging.WebhookNotification) string {
	if m.HandleFn != nil {
		return m.HandleFn(ctx, n)
	}
	return messaging.WebhookStatusOK
}

// ReminderServiceMock is a lightweight mock for ReminderService
type ReminderServiceMock struct {
	SendFn func(ctx context.Context, kind reminder.Kind) (*reminder.Report, error)
}

func (m *ReminderServiceMock) SendPaymentReminders(ctx context.Context) (*reminder.Report, error) {
	return m.Send(ctx, reminder.KindPayment)
}
func (m *ReminderServiceMock) SendFinalReminders(ctx context.Context) (*reminder.Report, error) {
	return m.Send(ctx, reminder.KindFinal)
}
func (m *ReminderServiceMock) Send(ctx context.Context, kind reminder.Kind) (*reminder.Report, error) {
	if m.SendFn != nil {
		return m.SendFn(ctx, kind)
	}
	return &reminder.Report{Kind: kind}, nil
}

// EmailServiceMock records reminder emails
type EmailServiceMock struct {
	mu   sync.Mutex
	Sent []ports.ReminderEmail
	Err  error
}

func (m *EmailServiceMock) SendReminder(ctx context.Context, msg ports.ReminderEmail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, msg)
	return nil
}

// ImageGeneratorMock is a lightweight mock for ImageGenerator
type ImageGeneratorMock struct {
	EnhancePromptFn func(ctx context.Context, prompt, previous string) (string, error)
	GenerateFn      func(ctx context.Context, prompt string) (string, error)
}

func (m *ImageGeneratorMock) EnhancePrompt(ctx context.Context, prompt, previous string) (string, error) {
	if m.EnhancePromptFn != nil {
		return m.EnhancePromptFn(ctx, prompt, previous)
	}
	return prompt, nil
}
func (m *ImageGeneratorMock) Generate(ctx context.Context, prompt string) (string, error) {
	if m.GenerateFn != nil {
		return m.GenerateFn(ctx, prompt)
	}
	return "aW1n", nil
}

// ImageServiceMock is a lightweight mock for ImageService
type ImageServiceMock struct {
	GenerateFn func(ctx context.Context, userID uuid.UUID, req *image.GenerateRequest) (*image.GenerateResult, error)
}

func (m *ImageServiceMock) Generate(ctx context.Context, userID uuid.UUID, req *image.GenerateRequest) (*image.GenerateResult, error) {
	if m.GenerateFn != nil {
		return m.GenerateFn(ctx, userID, req)
	}
	return &image.GenerateResult{ImageBase64: "aW1n", DataURL: "data:image/png;base64,aW1n", ResponseID: uuid.NewString()}, nil
}

// SchedulerMock is a lightweight mock for Scheduler
type SchedulerMock struct {
	Jobs map[string]string
}

func (m *SchedulerMock) Schedule(name, spec string, job ports.Job) error {
	if m.Jobs == nil {
		m.Jobs = map[string]string{}
	}
	m.Jobs[name] = spec
	return nil
}
func (m *SchedulerMock) Stop(name string) bool {
	_, ok := m.Jobs[name]
	delete(m.Jobs, name)
	return ok
}
func (m *SchedulerMock) StopAll() { m.Jobs = nil }
func (m *SchedulerMock) JobNames() []string {
	names := make([]string, 0, len(m.Jobs))
	for n := range m.Jobs {
		names = append(names, n)
	}
	return names
}
func (m *SchedulerMock) Status() []ports.JobStatus {
	out := make([]ports.JobStatus, 0, len(m.Jobs))
	for n, s := range m.Jobs {
		out = append(out, ports.JobStatus{Name: n, Schedule: s, Running: true})
	}
	return out
}

// CacheMock is an in-memory ports.Cache that ignores TTLs
type CacheMock struct {
	mu   sync.Mutex
	Data map[string][]byte
	Err  error
}

func NewCacheMock() *CacheMock { return &CacheMock{Data: map[string][]byte{}} }

func (m *CacheMock) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, false, m.Err
	}
	v, ok := m.Data[key]
	return v, ok, nil
}
func (m *CacheMock) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Data[key] = value
	return nil
}
func (m *CacheMock) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Data, key)
	return nil
}

// HealthCheckerMock reports Err from Check
type HealthCheckerMock struct {
	NameValue string
	Err       error
}

func (m *HealthCheckerMock) Name() string                    { return m.NameValue }
func (m *HealthCheckerMock) Check(ctx context.Context) error { return m.Err }
