package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	authdomain "backoffice/catalog/internal/domain/auth"
	productdomain "backoffice/catalog/internal/domain/product"
	"backoffice/catalog/internal/obs"
	"backoffice/catalog/internal/usecase/session"
)

const duplicateCodeMessage = "This product code has already been used."

func (s *Server) registerRoutes() {
	s.router.Handle("/health", http.HandlerFunc(s.handleHealth))
	s.router.Handle("/metrics", s.metricsHandler())
	s.router.Handle("/login", http.HandlerFunc(s.handleLogin))
	s.router.Handle("/register", http.HandlerFunc(s.handleRegister))
	s.router.Handle("/logout", http.HandlerFunc(s.handleLogout))

	gated := s.gateMiddleware
	s.router.Handle("/products/", gated(http.HandlerFunc(s.handleProductByID)))
	s.router.Handle("/", http.HandlerFunc(s.handleRoot))
}

func (s *Server) metricsHandler() http.Handler {
	if s.metrics == nil {
		return http.NotFoundHandler()
	}
	return s.metrics.Handler()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.health(ctx); err != nil {
			obs.Logger.Warn("health_check_failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleRoot serves the catalog screen on "/" and the not-found screen on
// every other unmatched path.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "page not found",
			"home":  "/",
		})
		return
	}
	s.gateMiddleware(http.HandlerFunc(s.handleCatalog)).ServeHTTP(w, r)
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	switch r.Method {
	case http.MethodGet:
		if err := s.catalog.EnsureLoaded(ctx); err != nil {
			writeError(w, http.StatusBadGateway, "Failed to load products.")
			return
		}
		keyword := r.URL.Query().Get("q")
		items := s.catalog.Search(keyword)
		user, _ := identityFromContext(ctx)
		writeJSON(w, http.StatusOK, map[string]any{
			"user":    user,
			"keyword": keyword,
			"items":   items,
			"count":   len(items),
		})
	case http.MethodPost:
		var payload struct {
			ProductCode string `json:"productCode"`
			Name        string `json:"name"`
			Price       any    `json:"price"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON payload")
			return
		}

		item, err := s.catalog.Create(ctx, productdomain.Candidate{
			ProductCode: payload.ProductCode,
			Name:        payload.Name,
			Price:       priceText(payload.Price),
		})
		if err != nil {
			if verr, ok := productdomain.IsValidation(err); ok {
				writeFieldErrors(w, http.StatusUnprocessableEntity, "validation failed", verr.Fields)
				return
			}
			if errors.Is(err, productdomain.ErrDuplicateCode) {
				writeFieldErrors(w, http.StatusConflict, duplicateCodeMessage, map[string]string{
					productdomain.FieldProductCode.String(): duplicateCodeMessage,
				})
				return
			}
			writeError(w, http.StatusBadGateway, "Failed to add product.")
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"item":  item,
			"items": s.catalog.Snapshot(),
		})
	default:
		writeMethodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleProductByID(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/products/"), "/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "product id required")
		return
	}

	ctx := r.Context()

	switch r.Method {
	case http.MethodPatch, http.MethodPut:
		var payload struct {
			Name  *string `json:"name"`
			Price any     `json:"price"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			if errors.Is(err, io.EOF) {
				writeError(w, http.StatusBadRequest, "update payload required")
			} else {
				writeError(w, http.StatusBadRequest, "invalid JSON payload")
			}
			return
		}

		changes := productdomain.Changes{Name: payload.Name}
		if payload.Price != nil {
			price, err := productdomain.ParsePrice(priceText(payload.Price))
			if err != nil {
				verr, _ := productdomain.IsValidation(err)
				writeFieldErrors(w, http.StatusUnprocessableEntity, "validation failed", verr.Fields)
				return
			}
			changes.Price = &price
		}

		items, err := s.catalog.Edit(ctx, id, changes)
		if err != nil {
			switch verr, ok := productdomain.IsValidation(err); {
			case ok:
				writeFieldErrors(w, http.StatusUnprocessableEntity, "validation failed", verr.Fields)
			case errors.Is(err, productdomain.ErrNotFound):
				writeError(w, http.StatusNotFound, productdomain.ErrNotFound.Error())
			default:
				writeError(w, http.StatusBadGateway, "Failed to update product.")
			}
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})
	case http.MethodDelete:
		if err := s.catalog.Delete(ctx, id); err != nil {
			if errors.Is(err, productdomain.ErrNotFound) {
				writeError(w, http.StatusNotFound, productdomain.ErrNotFound.Error())
			} else {
				writeError(w, http.StatusBadGateway, "Failed to delete product.")
			}
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeMethodNotAllowed(w, http.MethodPatch, http.MethodPut, http.MethodDelete)
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{
			"screen":   "login",
			"fields":   []string{"email", "password"},
			"register": "/register",
		})
	case http.MethodPost:
		payload, ok := decodeCredentials(w, r)
		if !ok {
			return
		}
		identity, err := s.auth.SignIn(r.Context(), payload.Email, payload.Password)
		if err != nil {
			if errors.Is(err, authdomain.ErrInvalidCredentials) {
				writeError(w, http.StatusUnauthorized, "Invalid email or password.")
			} else {
				obs.Logger.Error("sign_in_failed", "error", err)
				writeError(w, http.StatusBadGateway, "Sign in failed.")
			}
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"user": identity, "redirect": "/"})
	default:
		writeMethodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{
			"screen": "register",
			"fields": []string{"email", "password"},
			"login":  session.LoginPath,
		})
	case http.MethodPost:
		payload, ok := decodeCredentials(w, r)
		if !ok {
			return
		}
		identity, err := s.auth.SignUp(r.Context(), payload.Email, payload.Password)
		if err != nil {
			switch {
			case errors.Is(err, authdomain.ErrEmailInUse):
				writeFieldErrors(w, http.StatusConflict, err.Error(), map[string]string{"email": err.Error()})
			case errors.Is(err, authdomain.ErrWeakPassword):
				writeFieldErrors(w, http.StatusUnprocessableEntity, err.Error(), map[string]string{"password": err.Error()})
			default:
				writeError(w, http.StatusBadRequest, err.Error())
			}
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"user": identity, "redirect": "/"})
	default:
		writeMethodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}
	if err := s.auth.SignOut(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, "Sign out failed.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"redirect": session.LoginPath})
}

// gateMiddleware mounts a fresh access gate per request. Pending sessions get
// a loading response and denied ones are redirected to the login screen.
func (s *Server) gateMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gate := session.NewGate(s.tracker)
		switch gate.Evaluate() {
		case session.StatePending:
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "loading"})
		case session.StateDenied:
			http.Redirect(w, r, session.LoginPath, http.StatusSeeOther)
		default:
			identity, _ := s.tracker.Current()
			ctx := context.WithValue(r.Context(), ctxKeyIdentity{}, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
	})
}

type ctxKeyIdentity struct{}

func identityFromContext(ctx context.Context) (*authdomain.Identity, bool) {
	identity, ok := ctx.Value(ctxKeyIdentity{}).(*authdomain.Identity)
	if !ok || identity == nil {
		return nil, false
	}
	return identity, true
}

type credentialsPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentialsPayload, bool) {
	var payload credentialsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		if errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "email and password required")
		} else {
			writeError(w, http.StatusBadRequest, "invalid JSON payload")
		}
		return credentialsPayload{}, false
	}
	return payload, true
}

// priceText turns a decoded JSON price, number or string, into form text.
func priceText(v any) string {
	switch p := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(p, 'f', -1, 64)
	case string:
		return p
	default:
		return "invalid"
	}
}
