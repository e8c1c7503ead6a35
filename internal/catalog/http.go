package catalog

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"MiniCatalog/internal/listview"
	"MiniCatalog/pkg/kit"
)

const tracerName = "MiniCatalog/internal/catalog"

type Server struct {
	Store   *Store
	Log     *zap.Logger
	Metrics *Metrics

	// WriteLimit guards POST and PUT; nil means unlimited.
	WriteLimit *kit.IPRateLimiter
}

// Routes serves the product API. Mount it at /products.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	if s.Metrics != nil {
		s.Metrics.Products.Set(float64(s.Store.Len()))
	}

	r.Get("/", s.list)
	r.Get("/{id}", s.get)

	r.Group(func(wr chi.Router) {
		if s.WriteLimit != nil {
			wr.Use(s.WriteLimit.Middleware)
		}
		wr.Post("/", s.create)
		wr.Put("/{id}", s.update)
	})

	return r
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	q := listview.Query{Term: r.URL.Query().Get("search"), Page: 1}

	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			kit.WriteError(w, r, http.StatusBadRequest, "bad page", map[string]any{"page": raw})
			return
		}
		q.Page = page
	}

	_, span := otel.Tracer(tracerName).Start(r.Context(), "catalog.list")
	defer span.End()

	page := listview.View(s.Store.All(), q, ProductName)
	span.SetAttributes(
		attribute.Int("catalog.page", q.Page),
		attribute.Int("catalog.total", page.Total),
	)

	kit.WriteJSON(w, http.StatusOK, page)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	p, ok := s.lookup(r)
	if !ok {
		writeNotFound(w, r)
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var form ProductForm
	if err := kit.DecodeJSON(w, r, &form); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}
	if errs := form.Validate(); errs != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "validation failed", errs)
		return
	}

	_, span := otel.Tracer(tracerName).Start(r.Context(), "catalog.add")
	defer span.End()

	p := s.Store.Add(form.Fields())
	span.SetAttributes(attribute.Int("catalog.product_id", p.ID))
	s.Metrics.write("add", s.Store.Len())

	if s.Log != nil {
		s.Log.Info("product added", zap.Int("id", p.ID), zap.String("name", p.Name))
	}
	kit.WriteJSON(w, http.StatusCreated, p)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	existing, ok := s.lookup(r)
	if !ok {
		writeNotFound(w, r)
		return
	}

	var form ProductForm
	if err := kit.DecodeJSON(w, r, &form); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}
	if errs := form.Validate(); errs != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "validation failed", errs)
		return
	}

	_, span := otel.Tracer(tracerName).Start(r.Context(), "catalog.edit")
	defer span.End()
	span.SetAttributes(attribute.Int("catalog.product_id", existing.ID))

	p := form.Apply(existing)
	s.Store.Edit(p)
	s.Metrics.write("edit", s.Store.Len())

	if s.Log != nil {
		s.Log.Info("product edited", zap.Int("id", p.ID))
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

// lookup resolves the {id} URL param. A non-numeric id cannot name a
// product, so it is reported the same way as a missing one.
func (s *Server) lookup(r *http.Request) (Product, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		return Product{}, false
	}
	return s.Store.Get(id)
}

func writeNotFound(w http.ResponseWriter, r *http.Request) {
	kit.WriteError(w, r, http.StatusNotFound, "product not found", map[string]any{"id": chi.URLParam(r, "id")})
}
