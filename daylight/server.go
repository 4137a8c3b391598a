package daylight

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/devskill-org/daylight/form"
	"github.com/devskill-org/daylight/utils"
	"github.com/devskill-org/daylight/zones"
)

// WebServer provides the calculation API, health endpoints and the form page
type WebServer struct {
	service   *Service
	logger    *slog.Logger
	server    *http.Server
	port      int
	startTime time.Time
	upgrader  websocket.Upgrader
	clients   sync.Map
	requestID atomic.Uint64
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string        `json:"status"`
	Timestamp string        `json:"timestamp"`
	Version   string        `json:"version,omitempty"`
	Service   ServiceHealth `json:"service"`
	System    SystemHealth  `json:"system"`
}

// ServiceHealth represents calculation-specific health information
type ServiceHealth struct {
	Engine           string `json:"engine"`
	DefaultTimeZone  string `json:"default_time_zone"`
	WebSocketClients int    `json:"websocket_clients"`
	Stats
}

// SystemHealth represents system-level health information
type SystemHealth struct {
	Uptime     string `json:"uptime"`
	Goroutines int    `json:"goroutines,omitempty"`
}

// ErrorResponse is returned for rejected or failed calculations.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Reason  form.Reason `json:"reason,omitempty"`
	Field   string      `json:"field,omitempty"`
	Message string      `json:"message"`
}

// WSMessage is a reply sent over the WebSocket.
type WSMessage struct {
	Type   string         `json:"type"`
	Result *Result        `json:"result,omitempty"`
	Error  *ErrorResponse `json:"error,omitempty"`
}

// NewWebServer creates a new web server for the service
func NewWebServer(service *Service, logger *slog.Logger) *WebServer {
	config := service.GetConfig()
	if config.Port <= 0 {
		return nil // Web server disabled
	}
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	hs := &WebServer{
		service:   service,
		logger:    logger,
		port:      config.Port,
		startTime: time.Now(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(config.AllowedOrigins),
		},
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", config.Port),
			Handler:      mux,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
	}

	mux.HandleFunc("/api/health", hs.healthHandler)
	mux.HandleFunc("/api/ready", hs.readinessHandler)
	mux.HandleFunc("/api/zones", hs.zonesHandler)
	mux.HandleFunc("/api/calculate", hs.calculateHandler)
	mux.HandleFunc("/api/ws", hs.wsHandler)
	mux.HandleFunc("/", hs.formHandler)

	return hs
}

// originChecker allows any origin when allowed is empty, otherwise only
// requests whose Origin host matches an entry.
func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(r *http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) || strings.EqualFold(a, u.Host) {
				return true
			}
		}
		return false
	}
}

// Handler returns the HTTP handler serving all routes.
func (hs *WebServer) Handler() http.Handler {
	return hs.server.Handler
}

// Run serves until ctx is cancelled, then shuts down within the
// configured shutdown timeout.
func (hs *WebServer) Run(ctx context.Context) error {
	if hs == nil {
		<-ctx.Done()
		return nil
	}

	errCh := make(chan error, 1)
	go func() {
		hs.logger.Info("web server listening", "port", hs.port)
		if err := hs.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), hs.service.GetConfig().ShutdownTimeout)
	defer cancel()
	return hs.Stop(shutdownCtx)
}

// Stop gracefully stops the web server
func (hs *WebServer) Stop(ctx context.Context) error {
	if hs == nil {
		return nil // Web server disabled
	}

	// Close all WebSocket connections
	hs.clients.Range(func(key, value any) bool {
		if conn, ok := key.(*websocket.Conn); ok {
			conn.Close()
		}
		return true
	})

	hs.logger.Info("web server stopping")
	return hs.server.Shutdown(ctx)
}

// requestContext attaches a request-scoped logger to the request context.
func (hs *WebServer) requestContext(r *http.Request) context.Context {
	ctx := WithLogger(r.Context(), hs.logger)
	return ctxlogWith(ctx, "request_id", hs.requestID.Add(1), "path", r.URL.Path)
}

func (hs *WebServer) clientCount() int {
	n := 0
	hs.clients.Range(func(key, value any) bool {
		n++
		return true
	})
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func (hs *WebServer) health() HealthResponse {
	config := hs.service.GetConfig()
	return HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
		Service: ServiceHealth{
			Engine:           hs.service.Engine(),
			DefaultTimeZone:  config.DefaultTimeZone,
			WebSocketClients: hs.clientCount(),
			Stats:            hs.service.Stats(),
		},
		System: SystemHealth{
			Uptime:     formatUptime(time.Since(hs.startTime)),
			Goroutines: runtime.NumGoroutine(),
		},
	}
}

// healthHandler handles the /api/health endpoint
func (hs *WebServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, hs.health())
}

// readinessHandler handles the /api/ready endpoint. The server is ready
// once the default zone can be loaded.
func (hs *WebServer) readinessHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ready := true
	id := zones.StripLabel(hs.service.DefaultZone())
	if !strings.EqualFold(id, zones.Auto) {
		_, err := time.LoadLocation(id)
		ready = err == nil
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"ready":     ready,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// zonesHandler handles the /api/zones endpoint
func (hs *WebServer) zonesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	list, err := hs.service.Zones()
	if err != nil {
		loggerFrom(hs.requestContext(r)).Error("listing zones", "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "zones", Message: err.Error()})
		return
	}

	labels := make([]string, len(list))
	ids := make([]string, len(list))
	for i, z := range list {
		labels[i] = z.Label()
		ids[i] = z.ID
	}

	defaultZone := zones.StripLabel(hs.service.DefaultZone())
	if !strings.EqualFold(defaultZone, zones.Auto) && !contains(ids, defaultZone) {
		defaultZone = zones.DefaultID(ids)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"default": defaultZone,
		"zones":   list,
		"labels":  labels,
	})
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// calculateHandler handles the /api/calculate endpoint. It accepts a JSON
// body or form values, and GET query parameters.
func (hs *WebServer) calculateHandler(w http.ResponseWriter, r *http.Request) {
	var sub form.Submission
	switch r.Method {
	case http.MethodGet:
		sub = submissionFromValues(r.URL.Query())
	case http.MethodPost:
		ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if ct == "application/json" {
			if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
				writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "request", Message: "invalid JSON body"})
				return
			}
		} else {
			if err := r.ParseForm(); err != nil {
				writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "request", Message: "invalid form body"})
				return
			}
			sub = submissionFromValues(r.PostForm)
		}
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	result, err := hs.service.Calculate(hs.requestContext(r), sub)
	if err != nil {
		status, resp := errorResponse(err)
		writeJSON(w, status, resp)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func submissionFromValues(v url.Values) form.Submission {
	return form.Submission{
		Date:            v.Get("date"),
		LatDegrees:      v.Get("lat_degrees"),
		LatMinutes:      v.Get("lat_minutes"),
		LatSeconds:      v.Get("lat_seconds"),
		LatHemisphere:   v.Get("lat_hemisphere"),
		LongDegrees:     v.Get("long_degrees"),
		LongMinutes:     v.Get("long_minutes"),
		LongSeconds:     v.Get("long_seconds"),
		LongHemisphere:  v.Get("long_hemisphere"),
		TimeZone:        v.Get("time_zone"),
		DaylightSavings: v.Get("daylight_savings"),
	}
}

// errorResponse maps a calculation error to its HTTP status and body.
func errorResponse(err error) (int, *ErrorResponse) {
	var verr *form.ValidationError
	if errors.As(err, &verr) {
		return http.StatusUnprocessableEntity, &ErrorResponse{
			Error:   "validation",
			Reason:  verr.Reason,
			Field:   verr.Field,
			Message: verr.Message,
		}
	}
	return http.StatusInternalServerError, &ErrorResponse{
		Error:   "computation",
		Message: ErrComputation.Error(),
	}
}

// wsHandler handles WebSocket connections. Each text message is a JSON
// submission answered with a result or error message.
func (hs *WebServer) wsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := hs.requestContext(r)
	logger := loggerFrom(ctx)

	conn, err := hs.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	hs.clients.Store(conn, true)
	logger.Info("websocket client connected", "clients", hs.clientCount())

	defer func() {
		hs.clients.Delete(conn)
		conn.Close()
		logger.Info("websocket client disconnected", "clients", hs.clientCount())
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("websocket read failed", "error", err)
			}
			return
		}

		var reply WSMessage
		var sub form.Submission
		if err := json.Unmarshal(data, &sub); err != nil {
			reply = WSMessage{Type: "error", Error: &ErrorResponse{Error: "request", Message: "invalid message"}}
		} else if result, err := hs.service.Calculate(ctx, sub); err != nil {
			_, resp := errorResponse(err)
			reply = WSMessage{Type: "error", Error: resp}
		} else {
			reply = WSMessage{Type: "result", Result: result}
		}

		if err := conn.WriteJSON(reply); err != nil {
			logger.Warn("websocket write failed", "error", err)
			return
		}
	}
}

// formHandler serves the calculation form.
func (hs *WebServer) formHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	list, err := hs.service.Zones()
	if err != nil {
		loggerFrom(hs.requestContext(r)).Warn("listing zones", "error", err)
	}
	page := formPage{
		Placeholder: form.DatePlaceholder,
		Today:       utils.FormatFormDate(time.Now()),
		Default:     zones.StripLabel(hs.service.DefaultZone()),
		Zones:       list,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := formTemplate.Execute(w, page); err != nil {
		http.Error(w, "Failed to render form", http.StatusInternalServerError)
	}
}

// formatUptime formats a duration into a human-readable uptime string
func formatUptime(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
