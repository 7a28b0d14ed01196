package httptransport

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	appCheckout "github.com/quantium/marketplace-checkout/internal/application/checkout"
	appNotification "github.com/quantium/marketplace-checkout/internal/application/notification"
	appOnboarding "github.com/quantium/marketplace-checkout/internal/application/onboarding"
	domainCheckout "github.com/quantium/marketplace-checkout/internal/domain/checkout"
	"github.com/quantium/marketplace-checkout/internal/pkg/apperr"
)

// SignatureHeader carries the notification signature on webhook deliveries.
const SignatureHeader = "Payment-Signature"

const maxWebhookBody = 1 << 20

type Handler struct {
	checkoutService *appCheckout.Service
	notifications   *appNotification.Service
	onboarding      *appOnboarding.Service
}

func NewHandler(checkoutSvc *appCheckout.Service, notificationSvc *appNotification.Service, onboardingSvc *appOnboarding.Service) *Handler {
	return &Handler{
		checkoutService: checkoutSvc,
		notifications:   notificationSvc,
		onboarding:      onboardingSvc,
	}
}

func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/checkout/session", requireMethod(http.MethodPost, h.handleCreateCheckoutSession))
	mux.HandleFunc("/webhook/payment", requireMethod(http.MethodPost, h.handlePaymentWebhook))
	mux.HandleFunc("/business/register", requireMethod(http.MethodPost, h.handleRegisterBusiness))
	mux.HandleFunc("/health", requireMethod(http.MethodGet, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))

	return mux
}

// requireMethod emulates Go 1.22+ ServeMux method patterns (e.g. "POST /path")
// on the Go 1.21 ServeMux, which does not parse them.
func requireMethod(method string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			w.Header().Set("Allow", method)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		next(w, r)
	}
}

type createCheckoutSessionRequest struct {
	Items []domainCheckout.CartItem `json:"items"`
}

type createCheckoutSessionResponse struct {
	CheckoutURL string `json:"checkout_url"`
}

func (h *Handler) handleCreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var req createCheckoutSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := h.checkoutService.AssembleCheckout(r.Context(), req.Items)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, createCheckoutSessionResponse{
		CheckoutURL: result.CheckoutURL,
	})
}

type webhookResponse struct {
	Received bool   `json:"received"`
	Outcome  string `json:"outcome"`
}

func (h *Handler) handlePaymentWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	outcome, err := h.notifications.Handle(r.Context(), payload, r.Header.Get(SignatureHeader))
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, webhookResponse{
		Received: true,
		Outcome:  string(outcome),
	})
}

type registerBusinessRequest struct {
	Email        string `json:"email"`
	BusinessName string `json:"business_name"`
}

type registerBusinessResponse struct {
	AccountID     string `json:"account_id"`
	OnboardingURL string `json:"onboarding_url"`
}

func (h *Handler) handleRegisterBusiness(w http.ResponseWriter, r *http.Request) {
	var req registerBusinessRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := h.onboarding.Register(r.Context(), req.Email, req.BusinessName)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, registerBusinessResponse{
		AccountID:     result.AccountID,
		OnboardingURL: result.OnboardingURL,
	})
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// writeAppError maps the error taxonomy to HTTP statuses. Unauthenticated
// notifications answer 400 so the sender treats the delivery as a hard
// failure instead of retrying it verbatim; Internal answers 500 so it retries
// the whole notification.
func writeAppError(w http.ResponseWriter, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	status := http.StatusInternalServerError
	switch appErr.Code {
	case apperr.CodeInvalidArgument, apperr.CodeUnauthenticated:
		status = http.StatusBadRequest
	case apperr.CodeNotFound:
		status = http.StatusNotFound
	case apperr.CodeOutOfRange, apperr.CodeOutOfStock:
		status = http.StatusConflict
	case apperr.CodeFailedPrecondition:
		status = http.StatusUnprocessableEntity
	case apperr.CodeInternal:
		status = http.StatusInternalServerError
	}

	writeJSON(w, status, map[string]string{
		"code":  string(appErr.Code),
		"error": appErr.Message,
	})
}
