package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/cors"
	"github.com/waribei/unit-economics/internal/app"
	"github.com/waribei/unit-economics/internal/ledger"
	"github.com/waribei/unit-economics/internal/session"
	"github.com/waribei/unit-economics/pkg/constants"
	"github.com/waribei/unit-economics/pkg/datetime"
	"github.com/waribei/unit-economics/pkg/economics"
	"github.com/waribei/unit-economics/pkg/output"
	"github.com/waribei/unit-economics/pkg/validation"
	"go.uber.org/zap"
)

type handler struct {
	logger      *zap.Logger
	app         *app.App
	maxBodySize int64
	version     string
	now         func() time.Time
}

// NewHandler constructs the HTTP handler that serves the calculator API over
// a single shared session. Requests from allowedOrigins are granted CORS
// access; an empty list disables cross-origin requests.
func NewHandler(logger *zap.Logger, application *app.App, maxBodySize int64, allowedOrigins []string, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxBodySize <= 0 {
		maxBodySize = constants.DefaultMaxBodySizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:      logger,
		app:         application,
		maxBodySize: maxBodySize,
		version:     trimmedVersion,
		now:         time.Now,
	}

	mux := http.NewServeMux()

	// Metadata
	mux.HandleFunc("/api/version", h.handleVersion)

	// Live session
	mux.HandleFunc("/api/state", h.handleState)
	mux.HandleFunc("/api/inputs", h.handleInputs)
	mux.HandleFunc("/api/date", h.handleDate)
	mux.HandleFunc("/api/quick-scenarios", h.handleQuickScenarios)
	mux.HandleFunc("/api/breakdown", h.handleBreakdown)

	// Stateless calculator
	mux.HandleFunc("/api/compute", h.handleCompute)

	// Ledger
	mux.HandleFunc("/api/scenarios", h.handleScenarios)
	mux.HandleFunc("/api/scenarios/export", h.handleExport)
	mux.HandleFunc("/api/baseline", h.handleBaseline)
	mux.HandleFunc("/api/compare", h.handleCompare)
	mux.HandleFunc("/api/timeseries", h.handleTimeSeries)
	mux.HandleFunc("/api/presets", h.handlePresets)

	return cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(mux)
}

type scenarioView struct {
	ID          string                `json:"id"`
	Date        string                `json:"date"`
	Name        string                `json:"name"`
	Label       string                `json:"label"`
	Assumptions economics.Assumptions `json:"assumptions"`
	Volume      economics.Volume      `json:"volume"`
	Metrics     economics.Metrics     `json:"metrics"`
}

type stateView struct {
	Date           string                `json:"date"`
	Name           string                `json:"name"`
	Assumptions    economics.Assumptions `json:"assumptions"`
	Volume         economics.Volume      `json:"volume"`
	Metrics        economics.Metrics     `json:"metrics"`
	PresetState    string                `json:"presetState"`
	LastPresetDate string                `json:"lastPresetDate,omitempty"`
}

type presetView struct {
	Date        string                `json:"date"`
	Name        string                `json:"name"`
	Version     int                   `json:"version"`
	Assumptions economics.Assumptions `json:"assumptions"`
	Volume      *economics.Volume     `json:"volume,omitempty"`
}

type breakdownResponse struct {
	Breakdown []economics.BreakdownItem `json:"breakdown"`
	Waterfall []economics.WaterfallStep `json:"waterfall"`
}

type computeRequest struct {
	Assumptions economics.Assumptions `json:"assumptions"`
	Volume      economics.Volume      `json:"volume"`
}

type computeResponse struct {
	Metrics   economics.Metrics         `json:"metrics"`
	Breakdown []economics.BreakdownItem `json:"breakdown"`
	Waterfall []economics.WaterfallStep `json:"waterfall"`
}

type inputsRequest struct {
	Name        *string                `json:"name,omitempty"`
	Assumptions *economics.Assumptions `json:"assumptions,omitempty"`
	Volume      *economics.Volume      `json:"volume,omitempty"`
}

type dateRequest struct {
	// Date is YYYY-MM-DD; empty selects today.
	Date  string `json:"date"`
	Force bool   `json:"force"`
}

type dateResponse struct {
	Applied bool      `json:"applied"`
	State   stateView `json:"state"`
}

type quickScenarioRequest struct {
	Name string `json:"name"`
}

type deleteRequest struct {
	Labels []string `json:"labels"`
}

type deleteResponse struct {
	Removed int `json:"removed"`
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, toStateView(h.app.Session.State()))
}

func (h *handler) handleInputs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	const op = "server.handleInputs"
	var req inputsRequest
	if !h.decodeBody(w, r, &req, op) {
		return
	}

	if req.Assumptions != nil {
		if err := validation.ValidateAssumptions(*req.Assumptions); err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
			return
		}
	}
	if req.Volume != nil {
		if err := validation.ValidateVolume(*req.Volume); err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
			return
		}
	}

	s := h.app.Session
	if req.Assumptions != nil {
		s.SetAssumptions(*req.Assumptions)
	}
	if req.Volume != nil {
		s.SetVolume(*req.Volume)
	}
	if req.Name != nil {
		s.SetName(strings.TrimSpace(*req.Name))
	}

	h.writeJSON(w, http.StatusOK, toStateView(s.State()))
}

func (h *handler) handleDate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	const op = "server.handleDate"
	var req dateRequest
	if !h.decodeBody(w, r, &req, op) {
		return
	}

	s := h.app.Session
	var applied bool
	if strings.TrimSpace(req.Date) == "" {
		applied = s.SelectToday(h.now())
	} else {
		date, err := datetime.ParseDate(req.Date)
		if err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
			return
		}
		applied = s.SelectDate(date)
		if req.Force {
			applied = s.ApplyPreset(date, true)
		}
	}

	h.writeJSON(w, http.StatusOK, dateResponse{
		Applied: applied,
		State:   toStateView(s.State()),
	})
}

func (h *handler) handleQuickScenarios(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleQuickScenarios"

	switch r.Method {
	case http.MethodGet:
		h.writeJSON(w, http.StatusOK, h.app.Session.QuickScenarios())
	case http.MethodPost:
		var req quickScenarioRequest
		if !h.decodeBody(w, r, &req, op) {
			return
		}
		if !h.app.Session.SelectQuickScenario(req.Name) {
			h.respondErrorWithOp(w, http.StatusNotFound, fmt.Sprintf("unknown quick scenario %q", req.Name), op)
			return
		}
		h.writeJSON(w, http.StatusOK, toStateView(h.app.Session.State()))
	default:
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

func (h *handler) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, breakdownResponse{
		Breakdown: h.app.Session.Breakdown(),
		Waterfall: h.app.Session.Waterfall(),
	})
}

func (h *handler) handleCompute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	const op = "server.handleCompute"
	var req computeRequest
	if !h.decodeBody(w, r, &req, op) {
		return
	}

	h.writeJSON(w, http.StatusOK, computeResponse{
		Metrics:   economics.Compute(req.Assumptions, req.Volume),
		Breakdown: economics.Breakdown(req.Assumptions),
		Waterfall: economics.Waterfall(req.Assumptions),
	})
}

func (h *handler) handleScenarios(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleScenarios"

	switch r.Method {
	case http.MethodGet:
		h.writeJSON(w, http.StatusOK, toScenarioViews(h.app.Ledger.ListSorted()))
	case http.MethodPost:
		saved := h.app.Session.Save()
		h.persist(r, op)
		h.writeJSON(w, http.StatusCreated, toScenarioView(saved))
	case http.MethodDelete:
		var req deleteRequest
		if !h.decodeBody(w, r, &req, op) {
			return
		}
		removed := h.app.Session.Delete(req.Labels)
		if removed > 0 {
			h.persist(r, op)
		}
		h.writeJSON(w, http.StatusOK, deleteResponse{Removed: removed})
	default:
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

func (h *handler) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	const op = "server.handleExport"
	format := r.URL.Query().Get("format")
	if format == "" {
		format = constants.OutputFormatCSV
	}
	if err := validation.ValidateOutputFormat(format); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	scenarios := h.app.Ledger.ListSorted()
	var buf bytes.Buffer
	var err error
	contentType := "text/plain; charset=utf-8"
	switch format {
	case constants.OutputFormatCSV:
		err = output.WriteCSV(&buf, scenarios)
		contentType = "text/csv; charset=utf-8"
	default:
		err = output.WritePretty(&buf, scenarios)
	}
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to render scenarios: %v", err), op)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("failed to write export response",
			zap.String("op", op),
			zap.Error(err),
		)
	}
}

func (h *handler) handleBaseline(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	baseline, ok := h.app.Ledger.Baseline()
	if !ok {
		h.respondErrorWithOp(w, http.StatusNotFound, "no baseline yet", "server.handleBaseline")
		return
	}
	h.writeJSON(w, http.StatusOK, toScenarioView(baseline))
}

func (h *handler) handleCompare(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	cmp, ok := h.app.Session.CompareToBaseline()
	if !ok {
		h.respondErrorWithOp(w, http.StatusNotFound, "no baseline yet", "server.handleCompare")
		return
	}
	h.writeJSON(w, http.StatusOK, cmp)
}

func (h *handler) handleTimeSeries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, toScenarioViews(h.app.Ledger.TimeSeries()))
}

func (h *handler) handlePresets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	presets := h.app.Ledger.Presets()
	views := make([]presetView, 0, len(presets))
	for _, p := range presets {
		views = append(views, presetView{
			Date:        datetime.Format(p.Date),
			Name:        p.Name,
			Version:     p.Version,
			Assumptions: p.Assumptions,
			Volume:      p.Volume,
		})
	}
	h.writeJSON(w, http.StatusOK, views)
}

// persist writes the ledger to the store. A store failure is logged and the
// request still succeeds; the in-memory ledger stays authoritative.
func (h *handler) persist(r *http.Request, op string) {
	if err := h.app.Persist(r.Context()); err != nil {
		h.logger.Warn("scenario change not persisted",
			zap.String("op", op),
			zap.Error(err),
		)
	}
}

func (h *handler) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds limit of %d bytes", h.maxBodySize), op)
			return false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return false
	}
	return true
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func toStateView(st session.State) stateView {
	view := stateView{
		Date:        datetime.Format(st.Date),
		Name:        st.Name,
		Assumptions: st.Assumptions,
		Volume:      st.Volume,
		Metrics:     st.Metrics,
		PresetState: st.PresetState,
	}
	if st.LastPresetDate != nil {
		view.LastPresetDate = datetime.Format(*st.LastPresetDate)
	}
	return view
}

func toScenarioView(s ledger.Scenario) scenarioView {
	return scenarioView{
		ID:          s.ID,
		Date:        datetime.Format(s.Date),
		Name:        s.Name,
		Label:       s.Label(),
		Assumptions: s.Assumptions,
		Volume:      s.Volume,
		Metrics:     s.Metrics,
	}
}

func toScenarioViews(scenarios []ledger.Scenario) []scenarioView {
	views := make([]scenarioView, 0, len(scenarios))
	for _, s := range scenarios {
		views = append(views, toScenarioView(s))
	}
	return views
}
