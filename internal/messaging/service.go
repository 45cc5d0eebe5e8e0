// Package messaging provides the message delivery abstraction for Venille.
package messaging

import (
	"context"
	"regexp"
	"sync"
	"time"

	"github.com/venille-ai/venille/internal/models"
)

// Constants shared by service implementations.
const (
	// DefaultChannelBufferSize defines the default buffer size for the response channel
	DefaultChannelBufferSize = 100
	// DefaultChannelTimeout defines the default timeout for non-blocking channel operations
	DefaultChannelTimeout = 1 * time.Second
)

// phoneNumberRegex matches everything that is not a digit.
var phoneNumberRegex = regexp.MustCompile(`[^0-9]`)

// Service defines a pluggable message delivery abstraction.
type Service interface {
	// ValidateAndCanonicalizeRecipient validates and canonicalizes a recipient
	// identifier. Each service implements its own recipient rules.
	ValidateAndCanonicalizeRecipient(recipient string) (string, error)

	// SendMessage sends a message to a recipient.
	SendMessage(ctx context.Context, to string, body string) error

	// Start begins any background processing (e.g., polling for events).
	Start(ctx context.Context) error

	// Stop stops background processing and cleans up resources.
	Stop() error

	// Responses returns a channel of incoming user messages.
	Responses() <-chan models.Response
}

// MockService implements Service in memory for tests.
type MockService struct {
	mu        sync.Mutex
	Sent      []SentMessage
	SendErr   error
	responses chan models.Response
}

// SentMessage records one outbound message captured by MockService.
type SentMessage struct {
	To   string
	Body string
}

// NewMockService creates an empty mock messaging service.
func NewMockService() *MockService {
	return &MockService{responses: make(chan models.Response, DefaultChannelBufferSize)}
}

func (m *MockService) ValidateAndCanonicalizeRecipient(recipient string) (string, error) {
	return canonicalizePhone(recipient)
}

func (m *MockService) SendMessage(ctx context.Context, to string, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendErr != nil {
		return m.SendErr
	}
	m.Sent = append(m.Sent, SentMessage{To: to, Body: body})
	return nil
}

func (m *MockService) Start(ctx context.Context) error { return nil }
func (m *MockService) Stop() error                     { return nil }

func (m *MockService) Responses() <-chan models.Response { return m.responses }

// Inject feeds an inbound message into the mock response channel.
func (m *MockService) Inject(resp models.Response) { m.responses <- resp }

// SentTo returns the bodies of all messages sent to a recipient.
func (m *MockService) SentTo(to string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, s := range m.Sent {
		if s.To == to {
			out = append(out, s.Body)
		}
	}
	return out
}
