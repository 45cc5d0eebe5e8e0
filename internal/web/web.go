// Package web serves the operator-facing pairing page.
//
// It exposes the current login QR code as a PNG, a connection status endpoint,
// and a small auto-refreshing HTML page, so a device can be paired without
// terminal access to the host.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"rsc.io/qr"
)

// DefaultAddr is the default listen address for the pairing page.
const DefaultAddr = ":8080"

// PairingStatus is the view of the transport client the page needs.
type PairingStatus interface {
	// LastQR returns the pending pairing QR code, if any.
	LastQR() (string, bool)
	// Connected reports whether the transport has a live session.
	Connected() bool
}

// Opts holds configuration options for the web server.
type Opts struct {
	Addr    string
	Webhook http.HandlerFunc // optional inbound-message webhook (Twilio transport)
}

// Option defines a configuration option for the web server.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// WithWebhook mounts an inbound webhook handler at /webhook.
func WithWebhook(h http.HandlerFunc) Option {
	return func(o *Opts) { o.Webhook = h }
}

// Server is the operator pairing web server.
type Server struct {
	status PairingStatus
	srv    *http.Server
}

// noPairing stands in for transports without a QR pairing flow.
type noPairing struct{}

func (noPairing) LastQR() (string, bool) { return "", false }
func (noPairing) Connected() bool        { return true }

// NewServer creates a pairing web server for the given transport status.
// A nil status means the transport has no pairing flow (e.g. Twilio).
func NewServer(status PairingStatus, opts ...Option) *Server {
	if status == nil {
		status = noPairing{}
	}
	cfg := Opts{Addr: DefaultAddr}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Server{status: status}
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.indexHandler)
	mux.HandleFunc("/qr", s.qrHandler)
	mux.HandleFunc("/status", s.statusHandler)
	if cfg.Webhook != nil {
		mux.HandleFunc("/webhook", cfg.Webhook)
	}
	s.srv = &http.Server{Addr: cfg.Addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	return s
}

// Start begins serving in a background goroutine.
func (s *Server) Start() {
	go func() {
		slog.Info("Pairing web server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Pairing web server failed", "error", err)
		}
	}()
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) qrHandler(w http.ResponseWriter, r *http.Request) {
	code, ok := s.status.LastQR()
	if !ok {
		http.Error(w, "No QR code available. WhatsApp might already be connected.", http.StatusNotFound)
		return
	}
	img, err := qr.Encode(code, qr.L)
	if err != nil {
		slog.Error("Failed to encode pairing QR code", "error", err)
		http.Error(w, "Failed to encode QR code", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(img.PNG()); err != nil {
		slog.Debug("Failed to write QR PNG response", "error", err)
	}
}

func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	_, hasQR := s.status.LastQR()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{
		"connected": s.status.Connected(),
		"hasQR":     hasQR,
	})
}

func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(indexHTML))
}

const indexHTML = `<!DOCTYPE html>
<html>
<head>
  <title>WhatsApp QR Code</title>
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <style>
    body { font-family: Arial, sans-serif; text-align: center; margin: 0; padding: 20px; }
    .container { max-width: 500px; margin: 0 auto; }
    img { max-width: 100%; height: auto; border: 1px solid #ddd; }
    .status { margin: 20px 0; padding: 10px; border-radius: 4px; }
    .connected { background-color: #d4edda; color: #155724; }
    .waiting { background-color: #fff3cd; color: #856404; }
  </style>
  <script>
    function checkStatus() {
      fetch('/status')
        .then(response => response.json())
        .then(data => {
          if (data.connected) {
            document.getElementById('status').className = 'status connected';
            document.getElementById('status').textContent = 'Connected to WhatsApp!';
            document.getElementById('qr-container').style.display = 'none';
          } else {
            setTimeout(() => { window.location.reload(); }, 10000);
          }
        });
    }
  </script>
</head>
<body onload="checkStatus()">
  <div class="container">
    <h1>WhatsApp Bot QR Code</h1>
    <div id="status" class="status waiting">Waiting for connection...</div>
    <div id="qr-container">
      <p>Scan this QR code with your WhatsApp app to connect:</p>
      <img src="/qr" alt="WhatsApp QR Code" id="qr-code">
      <p><small>The page will automatically refresh until connected.</small></p>
    </div>
  </div>
</body>
</html>
`
