package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"

	"github.com/shehabalqudiry/vend/domain"
	"github.com/shehabalqudiry/vend/internal/ledger"
)

type ctxKey string

const ctxDeviceID ctxKey = "deviceID"

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	ledger *ledger.Store
	secret string
}

// New constructs a Handler.
func New(store *ledger.Store, secret string) *Handler {
	return &Handler{ledger: store, secret: secret}
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)
	r.Post("/activation", h.activate)

	r.Group(func(pr chi.Router) {
		pr.Use(h.authMiddleware)

		pr.Route("/products", func(r chi.Router) {
			r.Post("/", h.createProduct)
			r.Get("/", h.listProducts)
			r.Get("/barcode/{code}", h.findByBarcode)
			r.Put("/{id}", h.updateProduct)
			r.Delete("/{id}", h.deleteProduct)
			r.Post("/{id}/stock/reset", h.resetStock)
		})

		pr.Route("/customers", func(r chi.Router) {
			r.Post("/", h.createCustomer)
			r.Get("/", h.listCustomers)
			r.Get("/{id}", h.getCustomer)
			r.Post("/{id}/payments", h.recordPayment)
			r.Get("/{id}/reconcile", h.reconcileDebt)
		})

		pr.Route("/sales", func(r chi.Router) {
			r.Post("/", h.commitSale)
			r.Get("/{id}", h.receipt)
		})

		pr.Route("/reports", func(r chi.Router) {
			r.Get("/summary", h.summary)
			r.Get("/history", h.history)
		})

		pr.Get("/dashboard", h.dashboard)
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Activation

// The activation key is derived from the device id the same way the
// companion app generates it: fixed prefix and suffix around the reversed
// device id, uppercased.
const (
	activationPrefix = "9pQ"
	activationSuffix = "Z2!"
)

func expectedActivationKey(deviceID string) string {
	runes := []rune(deviceID)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return strings.ToUpper(activationPrefix + string(runes) + activationSuffix)
}

type authClaims struct {
	DeviceID string `json:"device_id"`
	jwt.RegisteredClaims
}

func (h *Handler) generateToken(deviceID string) (string, error) {
	claims := authClaims{
		DeviceID: deviceID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(30 * 24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.secret))
}

type activationRequest struct {
	DeviceID string `json:"device_id"`
	Key      string `json:"key"`
}

func (h *Handler) activate(w http.ResponseWriter, r *http.Request) {
	var req activationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	deviceID := strings.ToUpper(strings.TrimSpace(req.DeviceID))
	if deviceID == "" {
		respondError(w, http.StatusBadRequest, "device_id is required")
		return
	}
	if strings.ToUpper(strings.TrimSpace(req.Key)) != expectedActivationKey(deviceID) {
		respondError(w, http.StatusUnauthorized, "activation key does not match this device")
		return
	}
	token, err := h.generateToken(deviceID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to generate token")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"token": token})
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
		ctx := context.WithValue(r.Context(), ctxDeviceID, claims.DeviceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Product handlers

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var in ledger.ProductInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	product, err := h.ledger.CreateProduct(r.Context(), in)
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, product)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	var in ledger.ProductInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.ledger.UpdateProduct(r.Context(), id, in); err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	if err := h.ledger.DeleteProduct(r.Context(), id); err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) resetStock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	if err := h.ledger.ResetStock(r.Context(), id); err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "stock reset"})
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.ledger.ListProducts(r.Context())
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handler) findByBarcode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	product, err := h.ledger.FindByBarcode(r.Context(), code)
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	if product == nil {
		respondError(w, http.StatusNotFound, "barcode not registered")
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// Customer handlers

type customerRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	customer, err := h.ledger.CreateCustomer(r.Context(), req.Name, req.Phone)
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, customer)
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.ledger.ListCustomers(r.Context())
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, customers)
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid customer id")
		return
	}
	customer, err := h.ledger.GetCustomer(r.Context(), id)
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, customer)
}

type paymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid customer id")
		return
	}
	var req paymentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	paymentID, err := h.ledger.RecordPayment(r.Context(), id, req.Amount)
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]int64{"payment_id": paymentID})
}

func (h *Handler) reconcileDebt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid customer id")
		return
	}
	result, err := h.ledger.ReconcileDebt(r.Context(), id)
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Sale handlers

type saleRequest struct {
	Items         []ledger.SaleLine `json:"items"`
	PaymentMethod string            `json:"payment_method"`
	CustomerID    *int64            `json:"customer_id,omitempty"`
}

func (h *Handler) commitSale(w http.ResponseWriter, r *http.Request) {
	var req saleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = domain.PaymentCash
	}
	saleID, err := h.ledger.CommitSale(r.Context(), req.Items, req.PaymentMethod, req.CustomerID)
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]int64{"sale_id": saleID})
}

func (h *Handler) receipt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid sale id")
		return
	}
	receipt, err := h.ledger.Receipt(r.Context(), id)
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, receipt)
}

// Reports

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	window, err := ledger.ParseWindow(r.URL.Query().Get("window"))
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	summary, err := h.ledger.Summarize(r.Context(), window)
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	window, err := ledger.ParseWindow(r.URL.Query().Get("window"))
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	entries, err := h.ledger.History(r.Context(), window)
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.ledger.Dashboard(r.Context())
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// Helpers

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func respondLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrValidation):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrConstraint):
		respondError(w, http.StatusConflict, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "storage failure")
	}
}

func decodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
