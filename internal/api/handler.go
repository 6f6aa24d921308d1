// Package api wires the HTTP surface: auth, the product catalog CRUD,
// the sale registry and the point-of-sale register sessions.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/arelyshop/tiendatemp/domain"
	"github.com/arelyshop/tiendatemp/internal/pdf"
	"github.com/arelyshop/tiendatemp/internal/pos"
	"github.com/arelyshop/tiendatemp/internal/store"
)

type ctxKey string

const ctxOperator ctxKey = "operator"

// Store is the persistence surface the handlers depend on. *store.Store
// implements it; tests substitute an in-memory fake.
type Store interface {
	ListProducts(ctx context.Context, search string) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (domain.Product, error)
	GetProductByBarcode(ctx context.Context, barcode string) (domain.Product, error)
	CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error)
	UpdateProduct(ctx context.Context, p domain.Product) (domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) (domain.Product, error)
	ListSales(ctx context.Context, search string) ([]domain.Sale, error)
	GetSale(ctx context.Context, saleID string) (domain.Sale, error)
	CreateSale(ctx context.Context, sub domain.SaleSubmission) (domain.Sale, error)
	AnnulSale(ctx context.Context, saleID string) (domain.Sale, error)
	LatestSaleID(ctx context.Context) (string, error)
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)
	CreateUser(ctx context.Context, u domain.User) (domain.User, error)
}

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	store             Store
	secret            string
	allowRegistration bool
	logger            *zap.Logger
	docs              *pdf.Generator
	catalog           *pos.Catalog
	hub               *pos.Hub
	checkout          *pos.Checkout
}

// New constructs a Handler and its point-of-sale state containers.
func New(st Store, secret string, allowRegistration bool, docs *pdf.Generator, logger *zap.Logger) *Handler {
	catalog := pos.NewCatalog(st)
	return &Handler{
		store:             st,
		secret:            secret,
		allowRegistration: allowRegistration,
		logger:            logger,
		docs:              docs,
		catalog:           catalog,
		hub:               pos.NewHub(catalog),
		checkout:          pos.NewCheckout(st, catalog, docs, logger),
	}
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.login)
		if h.allowRegistration {
			r.Post("/register", h.register)
		}
	})

	// Storefront fetches are public.
	r.Get("/products", h.listProducts)
	r.Get("/products/{id}", h.getProduct)

	r.Group(func(pr chi.Router) {
		pr.Use(h.authMiddleware)

		pr.Get("/products/barcode/{code}", h.productByBarcode)

		pr.Route("/sales", func(r chi.Router) {
			r.Get("/", h.listSales)
			r.Post("/", h.createSale)
			r.Put("/annul", h.annulSale)
			r.Get("/{saleID}/receipt", h.saleReceipt)
		})

		pr.Route("/register", func(r chi.Router) {
			r.Post("/carts", h.createCart)
			r.Route("/carts/{cartID}", func(r chi.Router) {
				r.Get("/", h.getCart)
				r.Delete("/", h.deleteCart)
				r.Post("/items", h.addCartItem)
				r.Put("/items/{productID}", h.updateCartItem)
				r.Delete("/items/{productID}", h.removeCartItem)
				r.Post("/checkout", h.checkoutCart)
				r.Post("/quote", h.quoteCart)
			})
		})

		// Catalog mutations are admin only.
		pr.Group(func(admin chi.Router) {
			admin.Use(h.requireRole("admin"))
			admin.Post("/products", h.createProduct)
			admin.Put("/products/{id}", h.updateProduct)
			admin.Delete("/products/{id}", h.deleteProduct)
		})
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Authentication

type authClaims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

func (h *Handler) generateToken(u domain.User) (string, error) {
	claims := authClaims{
		UserID:   u.ID,
		Username: u.Username,
		FullName: u.FullName,
		Role:     u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.secret))
}

func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		tokenString := strings.TrimSpace(header[len("Bearer "):])
		token, err := jwt.ParseWithClaims(tokenString, &authClaims{}, func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwt.SigningMethodHS256 {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(h.secret), nil
		})
		if err != nil || !token.Valid {
			respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		claims, ok := token.Claims.(*authClaims)
		if !ok {
			respondError(w, http.StatusUnauthorized, "invalid token claims")
			return
		}
		ctx := context.WithValue(r.Context(), ctxOperator, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) requireRole(allowed ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := claimsFromContext(r)
			if claims == nil {
				respondError(w, http.StatusUnauthorized, "missing credentials")
				return
			}
			for _, role := range allowed {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			respondError(w, http.StatusForbidden, "insufficient permissions")
		})
	}
}

func claimsFromContext(r *http.Request) *authClaims {
	claims, _ := r.Context().Value(ctxOperator).(*authClaims)
	return claims
}

// Auth handlers

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	user, err := h.store.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	token, err := h.generateToken(user)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to generate token")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"token":  token,
		"user":   user,
	})
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Username == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "username and password are required")
		return
	}
	if req.Role == "" {
		req.Role = "seller"
	}
	if req.Role != "admin" && req.Role != "seller" {
		respondError(w, http.StatusBadRequest, "role must be admin or seller")
		return
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to secure password")
		return
	}
	user, err := h.store.CreateUser(r.Context(), domain.User{
		Username: req.Username,
		Password: string(hashed),
		FullName: req.FullName,
		Role:     req.Role,
	})
	if err != nil {
		if strings.Contains(err.Error(), "unique constraint") || strings.Contains(err.Error(), "duplicate key") {
			respondError(w, http.StatusConflict, "username already exists")
			return
		}
		h.logger.Error("create user", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "unable to create user")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"status": "success", "user": user})
}

// Helpers

func decodeJSON(r *http.Request, dest interface{}) error {
	return json.NewDecoder(r.Body).Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondData(w http.ResponseWriter, status int, data interface{}) {
	respondJSON(w, status, map[string]any{"status": "success", "data": data})
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"status": "error", "message": message})
}

// storeErrorStatus maps store sentinels onto HTTP statuses.
func storeErrorStatus(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrInsufficientStock):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrSaleAnnulled):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
