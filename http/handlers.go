package http

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"diabetesdx/app"
	"diabetesdx/dataset"
	"diabetesdx/ml"
)

//go:embed templates/index.html
var templateFS embed.FS

// 直方图PNG尺寸与缓存容量
const (
	chartWidth     = 480
	chartHeight    = 320
	chartCacheSize = 32
)

// Handler 诊断页面、JSON API与数据集视图的处理器
type Handler struct {
	app    *app.App
	view   *View
	page   *template.Template
	charts *lru.Cache[string, []byte]
	bins   int
	logger *zap.Logger
}

// NewHandler 创建处理器，模板与摘要在此一次性准备
func NewHandler(a *app.App, logger *zap.Logger) (*Handler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	view, err := NewView(a.Schema, a.Dataset)
	if err != nil {
		return nil, fmt.Errorf("build view: %w", err)
	}
	page, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	charts, err := lru.New[string, []byte](chartCacheSize)
	if err != nil {
		return nil, err
	}
	bins := dataset.DefaultBins
	if a.Config != nil && a.Config.Dataset.HistogramBins > 0 {
		bins = a.Config.Dataset.HistogramBins
	}
	return &Handler{
		app:    a,
		view:   view,
		page:   page,
		charts: charts,
		bins:   bins,
		logger: logger,
	}, nil
}

// Register 注册所有路由
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.handleIndex)
	mux.HandleFunc("POST /predict", h.handlePredictForm)
	mux.HandleFunc("POST /api/predict", h.handlePredictAPI)
	mux.HandleFunc("GET /api/schema", h.handleSchema)
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("GET /histogram/{file}", h.handleHistogram)
	mux.HandleFunc("GET /data.xlsx", h.handleExport)
}

// handleHealth 健康检查
func handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleIndex 渲染页面，不读取客户端提供的标签
// 切换视图时，已显示的诊断由触发时的输入快照重新得出
func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	state := h.baseState(query)
	state.Inputs = h.lenientInputs(query)

	if triggered, ok := h.snapshotInputs(query); ok {
		result, err := h.app.Pipeline.Run(r.Context(), triggered)
		if err != nil {
			h.logger.Warn("restore diagnosis", zap.String("request_id", GetRequestID(r.Context())), zap.Error(err))
		} else {
			state.Label = &result.Label
			state.Triggered = triggered
		}
	}
	h.renderPage(w, http.StatusOK, state)
}

func (h *Handler) handlePredictForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderPage(w, http.StatusBadRequest, State{Inputs: h.app.Schema.Defaults(), Error: "invalid form"})
		return
	}
	state := h.baseState(r.PostForm)

	inputs, err := h.formInputs(r.PostForm)
	if err != nil {
		state.Inputs = h.lenientInputs(r.PostForm)
		state.Error = err.Error()
		h.renderPage(w, http.StatusBadRequest, state)
		return
	}
	state.Inputs = h.app.Schema.Clamp(inputs)

	result, err := h.app.Pipeline.Run(r.Context(), state.Inputs)
	if err != nil {
		h.logger.Error("prediction failed", zap.String("request_id", GetRequestID(r.Context())), zap.Error(err))
		state.Error = err.Error()
		h.renderPage(w, statusFor(err), state)
		return
	}
	state.Label = &result.Label
	state.Triggered = state.Inputs
	h.renderPage(w, http.StatusOK, state)
}

func (h *Handler) handlePredictAPI(w http.ResponseWriter, r *http.Request) {
	var inputs ml.Inputs
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&inputs); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if err := h.app.Pipeline.Validate(inputs); err != nil {
		respondError(w, statusFor(err), err)
		return
	}
	result, err := h.app.Pipeline.Run(r.Context(), inputs)
	if err != nil {
		h.logger.Error("prediction failed", zap.String("request_id", GetRequestID(r.Context())), zap.Error(err))
		respondError(w, statusFor(err), err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *Handler) handleSchema(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.app.Schema)
}

func (h *Handler) handleHistogram(w http.ResponseWriter, r *http.Request) {
	column, ok := strings.CutSuffix(r.PathValue("file"), ".png")
	if !ok || !h.app.Dataset.HasColumn(column) {
		http.NotFound(w, r)
		return
	}

	img, ok := h.charts.Get(column)
	if !ok {
		hist, err := h.app.Dataset.Histogram(column, h.bins)
		if err != nil {
			respondError(w, http.StatusInternalServerError, err)
			return
		}
		var buf bytes.Buffer
		if err := hist.RenderPNG(&buf, chartWidth, chartHeight); err != nil {
			h.logger.Error("render histogram", zap.String("column", column), zap.Error(err))
			respondError(w, http.StatusInternalServerError, err)
			return
		}
		img = buf.Bytes()
		h.charts.Add(column, img)
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(img)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.app.Dataset.WriteXLSX(&buf); err != nil {
		h.logger.Error("export dataset", zap.Error(err))
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="diabetes.xlsx"`)
	w.Write(buf.Bytes())
}

func (h *Handler) renderPage(w http.ResponseWriter, status int, state State) {
	var buf bytes.Buffer
	if err := h.page.Execute(&buf, h.view.Render(state)); err != nil {
		h.logger.Error("render page", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func (h *Handler) baseState(values url.Values) State {
	return State{
		ShowData: values.Get("view_data") == "1",
		ShowDist: values.Get("view_dist") == "1",
	}
}

// formInputs 按schema读取每个字段，空值取默认值，无法解析则报错
func (h *Handler) formInputs(values url.Values) (ml.Inputs, error) {
	inputs := make(ml.Inputs, h.app.Schema.Len())
	for _, f := range h.app.Schema.Fields() {
		raw := strings.TrimSpace(values.Get(f.Name))
		if raw == "" {
			inputs[f.Name] = f.Default
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %q is not a number", f.Name, raw)
		}
		inputs[f.Name] = v
	}
	return inputs, nil
}

// lenientInputs 用于重新渲染，无法解析的值回退为默认值
func (h *Handler) lenientInputs(values url.Values) ml.Inputs {
	inputs := h.app.Schema.Defaults()
	for _, f := range h.app.Schema.Fields() {
		if v, err := strconv.ParseFloat(strings.TrimSpace(values.Get(f.Name)), 64); err == nil {
			inputs[f.Name] = v
		}
	}
	return inputs
}

// snapshotInputs 读取触发预测时的输入快照，缺少任一字段即视为无快照
func (h *Handler) snapshotInputs(values url.Values) (ml.Inputs, bool) {
	inputs := make(ml.Inputs, h.app.Schema.Len())
	for _, f := range h.app.Schema.Fields() {
		v, err := strconv.ParseFloat(strings.TrimSpace(values.Get(snapshotPrefix+f.Name)), 64)
		if err != nil {
			return nil, false
		}
		inputs[f.Name] = v
	}
	return h.app.Schema.Clamp(inputs), true
}

// statusFor 将领域错误映射为HTTP状态码
func statusFor(err error) int {
	switch {
	case errors.Is(err, ml.ErrNameResolution):
		return http.StatusBadRequest
	case errors.Is(err, ml.ErrRangeViolation):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondJSON 统一JSON响应
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError 统一错误响应
func respondError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, map[string]string{"error": err.Error()})
}
