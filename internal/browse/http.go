package browse

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"MiniCatalog/internal/catalog"
	"MiniCatalog/internal/device"
	"MiniCatalog/internal/listview"
	"MiniCatalog/internal/prefs"
	"MiniCatalog/pkg/kit"
)

const tracerName = "MiniCatalog/internal/browse"

// Catalog is the read side of the product store.
type Catalog interface {
	All() []catalog.Product
}

type Server struct {
	Catalog  Catalog
	Prefs    prefs.Store
	Sessions *Manager
	Devices  *device.TokenMaker
	Log      *zap.Logger
}

// Screen is everything the list screen renders.
type Screen struct {
	Input   string                         `json:"search_input"`
	Term    string                         `json:"search_term"`
	Pending bool                           `json:"search_pending"`
	Page    int                            `json:"page"`
	View    prefs.ViewMode                 `json:"view"`
	Result  listview.Page[catalog.Product] `json:"result"`
}

type searchReq struct {
	Term string `json:"term"`
}

type pageReq struct {
	Page int `json:"page"`
}

type viewReq struct {
	View string `json:"view"`
}

var errNoDevice = errors.New("no device")

// Routes serves the list screen. Mount it at /browse.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	if s.Devices != nil {
		r.Use(device.Identify(s.Devices, s.Log))
	}

	r.Get("/", s.show)
	r.Post("/search", s.search)
	r.Post("/page", s.setPage)
	r.Put("/view", s.setView)

	return r
}

func (s *Server) show(w http.ResponseWriter, r *http.Request) {
	id, sess, err := s.session(r)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}
	kit.WriteJSON(w, http.StatusOK, s.screen(r.Context(), id, sess))
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	id, sess, err := s.session(r)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}

	var req searchReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	sess.Type(req.Term)
	kit.WriteJSON(w, http.StatusAccepted, s.screen(r.Context(), id, sess))
}

func (s *Server) setPage(w http.ResponseWriter, r *http.Request) {
	id, sess, err := s.session(r)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}

	var req pageReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}
	if err := sess.SetPage(req.Page); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad page", map[string]any{"page": req.Page})
		return
	}

	kit.WriteJSON(w, http.StatusOK, s.screen(r.Context(), id, sess))
}

func (s *Server) setView(w http.ResponseWriter, r *http.Request) {
	id, sess, err := s.session(r)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}

	var req viewReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	mode, err := prefs.ParseViewMode(req.View)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad view", map[string]any{
			"view":    req.View,
			"allowed": []prefs.ViewMode{prefs.ViewGrid, prefs.ViewList},
		})
		return
	}

	if err := prefs.SaveViewMode(r.Context(), s.Prefs, id, mode); err != nil {
		if s.Log != nil {
			s.Log.Error("save view mode failed", zap.Error(err), zap.String("device", id))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	kit.WriteJSON(w, http.StatusOK, s.screen(r.Context(), id, sess))
}

func (s *Server) session(r *http.Request) (string, *Session, error) {
	id, ok := device.FromContext(r.Context())
	if !ok {
		return "", nil, errNoDevice
	}
	return id, s.Sessions.Session(id), nil
}

// screen renders from the latest catalog snapshot, so products added since
// the last search show up without retyping.
func (s *Server) screen(ctx context.Context, deviceID string, sess *Session) Screen {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "browse.screen")
	defer span.End()

	st := sess.State()

	view, err := prefs.LoadViewMode(ctx, s.Prefs, deviceID)
	if err != nil && s.Log != nil {
		s.Log.Warn("load view mode failed", zap.Error(err), zap.String("device", deviceID))
	}

	result := listview.View(s.Catalog.All(), listview.Query{Term: st.Term, Page: st.Page}, catalog.ProductName)
	span.SetAttributes(
		attribute.Int("browse.page", st.Page),
		attribute.Int("browse.total", result.Total),
		attribute.Bool("browse.pending", st.Pending),
	)

	return Screen{
		Input:   st.Input,
		Term:    st.Term,
		Pending: st.Pending,
		Page:    st.Page,
		View:    view,
		Result:  result,
	}
}
