package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"vaxmarket/internal/engine"
	"vaxmarket/internal/export"
	"vaxmarket/internal/models"
	"vaxmarket/internal/modules"
)

const (
	defaultPageSize = 100
	maxPageSize     = 1000

	mimeXLSX  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeArrow = "application/vnd.apache.arrow.stream"
)

// Query parameters that are never filter fields.
var reservedParams = map[string]bool{"limit": true, "offset": true}

type Handler struct {
	cache *engine.Cache
	opts  modules.Options
	log   *zap.SugaredLogger
}

func NewHandler(cache *engine.Cache, opts modules.Options, log *zap.SugaredLogger) *Handler {
	return &Handler{cache: cache, opts: opts, log: log}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)

	api := e.Group("/api")
	api.GET("/modules", h.ListModules)
	api.GET("/modules/:module", h.RunModule)
	api.GET("/modules/:module/filters", h.GetFilterOptions)
	api.GET("/modules/:module/export.xlsx", h.ExportModule)
	api.GET("/dataset", h.GetDataset)
	api.GET("/records", h.GetRecords)
	api.GET("/records.arrow", h.ExportRecords)
}

// --- HELPERS ---
func getPaginationParams(c echo.Context, defaultLimit int) (int, int) {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	offset, err := strconv.Atoi(c.QueryParam("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

// getPredicates reads filter values from the query string. A field may be
// repeated or carry a comma-separated list.
func getPredicates(c echo.Context) (engine.Predicates, error) {
	raw := make(map[string][]string)
	for name, values := range c.QueryParams() {
		if reservedParams[name] {
			continue
		}
		for _, v := range values {
			for _, part := range strings.Split(v, ",") {
				if part = strings.TrimSpace(part); part != "" {
					raw[name] = append(raw[name], part)
				}
			}
		}
	}
	return engine.ParsePredicates(raw)
}

// httpError maps engine and module errors onto status codes.
func (h *Handler) httpError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, engine.ErrUnknownField),
		errors.Is(err, engine.ErrUnknownMeasure),
		errors.Is(err, modules.ErrFieldNotAllowed):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, modules.ErrUnknownModule):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	h.log.Errorw("request failed", "path", c.Path(), "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "dataset unavailable").SetInternal(err)
}

func (h *Handler) store(c echo.Context) (*engine.ColumnStore, error) {
	cs, err := h.cache.Get()
	if err != nil {
		return nil, h.httpError(c, fmt.Errorf("load dataset: %w", err))
	}
	return cs, nil
}

func (h *Handler) runModule(c echo.Context) (*models.ModuleResult, error) {
	plan, err := modules.Lookup(c.Param("module"))
	if err != nil {
		return nil, h.httpError(c, err)
	}
	preds, err := getPredicates(c)
	if err != nil {
		return nil, h.httpError(c, err)
	}
	cs, err := h.store(c)
	if err != nil {
		return nil, err
	}
	res, err := plan.Run(cs, preds, h.opts)
	if err != nil {
		return nil, h.httpError(c, err)
	}
	return res, nil
}

// --- HANDLERS ---

// Health answers 503 until the dataset has been generated.
func (h *Handler) Health(c echo.Context) error {
	if !h.cache.Ready() {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "loading"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}

func (h *Handler) ListModules(c echo.Context) error {
	plans := modules.All()
	out := make([]models.ModuleInfo, len(plans))
	for i, p := range plans {
		out[i] = p.Info()
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) RunModule(c echo.Context) error {
	res, err := h.runModule(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) GetFilterOptions(c echo.Context) error {
	plan, err := modules.Lookup(c.Param("module"))
	if err != nil {
		return h.httpError(c, err)
	}
	cs, err := h.store(c)
	if err != nil {
		return err
	}
	opts, err := plan.FilterOptions(cs)
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusOK, opts)
}

func (h *Handler) ExportModule(c echo.Context) error {
	res, err := h.runModule(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, res); err != nil {
		return h.httpError(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", res.Module+".xlsx"))
	return c.Blob(http.StatusOK, mimeXLSX, buf.Bytes())
}

func (h *Handler) GetDataset(c echo.Context) error {
	cs, err := h.store(c)
	if err != nil {
		return err
	}
	dims := make(map[string]int)
	for _, f := range engine.Fields() {
		dict, _ := cs.Dict(f)
		dims[f.String()] = len(dict)
	}
	return c.JSON(http.StatusOK, models.DatasetInfo{
		Records:        cs.Len(),
		RecordsDisplay: engine.FormatCount(cs.Len()),
		Seed:           cs.Seed,
		Dimensions:     dims,
	})
}

func (h *Handler) filteredView(c echo.Context) (engine.View, error) {
	preds, err := getPredicates(c)
	if err != nil {
		return engine.View{}, h.httpError(c, err)
	}
	cs, err := h.store(c)
	if err != nil {
		return engine.View{}, err
	}
	v, err := engine.Filter(cs.All(), preds)
	if err != nil {
		return engine.View{}, h.httpError(c, err)
	}
	return v, nil
}

func (h *Handler) GetRecords(c echo.Context) error {
	v, err := h.filteredView(c)
	if err != nil {
		return err
	}
	total := v.Len()
	limit, offset := getPaginationParams(c, defaultPageSize)
	limit = min(limit, maxPageSize)

	page := models.RecordPage{Data: []models.RecordRow{}, Total: total, Limit: limit, Offset: offset}
	if offset >= total {
		return c.JSON(http.StatusOK, page)
	}

	end := min(offset+limit, total)
	cs := v.Store()
	for i := offset; i < end; i++ {
		row := v.Row(i)
		rec := models.RecordRow{
			ID:         cs.IDs[row],
			Dimensions: make(map[string]string),
			Measures:   make(map[string]float64),
		}
		for _, f := range engine.Fields() {
			rec.Dimensions[f.String()] = cs.Value(f, row)
		}
		for _, m := range engine.Measures() {
			x, err := cs.MeasureValue(m, row)
			if err != nil {
				return h.httpError(c, err)
			}
			rec.Measures[m.String()] = x
		}
		page.Data = append(page.Data, rec)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *Handler) ExportRecords(c echo.Context) error {
	v, err := h.filteredView(c)
	if err != nil {
		return err
	}
	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, mimeArrow)
	resp.WriteHeader(http.StatusOK)
	if err := export.WriteArrow(resp, v, export.DefaultBatchRows); err != nil {
		// Headers are out; the client sees a truncated stream.
		h.log.Errorw("arrow export failed", "records", v.Len(), "error", err)
	}
	return nil
}
