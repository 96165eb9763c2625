package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/qpay/securegate/internal/fraud"
	"github.com/qpay/securegate/internal/ledger"
	"github.com/qpay/securegate/internal/metrics"
	"github.com/qpay/securegate/internal/models"
	"github.com/qpay/securegate/internal/otp"
	"github.com/qpay/securegate/internal/processor"
	"github.com/qpay/securegate/internal/ratelimit"
	"github.com/qpay/securegate/internal/repository"
	"github.com/qpay/securegate/internal/service"
	"github.com/qpay/securegate/internal/token"
)

// memUserRepo is an in-memory UserRepository and AccountResolver.
type memUserRepo struct {
	mu    sync.Mutex
	users []models.User
}

func (r *memUserRepo) ExistsByEmailOrMobile(_ context.Context, email, mobile string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email || u.Mobile == mobile {
			return true, nil
		}
	}
	return false, nil
}

func (r *memUserRepo) Create(_ context.Context, u models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, u)
	return nil
}

func (r *memUserRepo) FindByIdentifier(_ context.Context, identifier string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == identifier || u.Mobile == identifier {
			found := u
			return &found, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

// memCardRepo is an in-memory CardRepository.
type memCardRepo struct {
	mu    sync.Mutex
	cards []models.Cardholder
}

func (r *memCardRepo) ExistsByNumber(_ context.Context, cardNumber string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.cards {
		if c.CardNumber == cardNumber {
			return true, nil
		}
	}
	return false, nil
}

func (r *memCardRepo) Create(_ context.Context, c models.Cardholder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cards = append(r.cards, c)
	return nil
}

func (r *memCardRepo) MobileByCard(_ context.Context, cardNumber string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.cards {
		if c.CardNumber == cardNumber {
			return c.Mobile, nil
		}
	}
	return "", repository.ErrCardNotFound
}

// memTxnRepo is an in-memory TransactionRepository.
type memTxnRepo struct {
	mu   sync.Mutex
	txns []models.Transaction
}

func (r *memTxnRepo) Create(_ context.Context, t models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.txns = append(r.txns, t)
	return nil
}

// memFraudRepo is an in-memory FraudLogRepository.
type memFraudRepo struct {
	mu   sync.Mutex
	logs []models.FraudLog
}

func (r *memFraudRepo) Create(_ context.Context, l models.FraudLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, l)
	return nil
}

// captureDispatcher records the last dispatched code body.
type captureDispatcher struct {
	mu       sync.Mutex
	lastBody string
}

func (d *captureDispatcher) SendCode(_ context.Context, _, body string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastBody = body
	return nil
}

func (d *captureDispatcher) code() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return regexp.MustCompile(`\d{6}`).FindString(d.lastBody)
}

// instantProcessor succeeds immediately so the flow test stays fast.
type instantProcessor struct{}

func (instantProcessor) Process(context.Context, float64, models.PaymentMethod) (processor.Result, error) {
	return processor.Result{Status: models.StatusSuccess, Latency: 10 * time.Millisecond}, nil
}

type gatewayFixture struct {
	server     *httptest.Server
	dispatcher *captureDispatcher
	txns       *memTxnRepo
	fraudLogs  *memFraudRepo
}

func newGatewayFixture(t *testing.T) *gatewayFixture {
	t.Helper()
	log := zap.NewNop()

	users := &memUserRepo{}
	cards := &memCardRepo{}
	txns := &memTxnRepo{}
	fraudLogs := &memFraudRepo{}
	dispatcher := &captureDispatcher{}

	authority := token.NewAuthority("test-secret", 30*time.Minute, users)
	gate := ratelimit.New(100, time.Minute)
	manager := otp.NewManager(otp.NewMemoryStore(), dispatcher, 5*time.Minute, time.Minute, log)
	engine := fraud.NewEngine(fraud.NewNearestNeighbor())

	authSvc := service.NewAuthService(users, authority, log)
	cardSvc := service.NewCardService(cards, log)
	otpSvc := service.NewOTPService(cardSvc, manager)
	paymentSvc := service.NewPaymentService(txns, fraudLogs, engine, instantProcessor{}, ledger.NewStub(log), 100000, log)

	router := NewRouter(
		&AuthHandler{AuthService: authSvc},
		&CardHandler{CardService: cardSvc},
		&OTPHandler{OTPService: otpSvc},
		&TransactionHandler{PaymentService: paymentSvc},
		gate,
		authority,
		metrics.New(),
		15*time.Second,
		log,
	)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &gatewayFixture{server: srv, dispatcher: dispatcher, txns: txns, fraudLogs: fraudLogs}
}

func (f *gatewayFixture) post(t *testing.T, path, body, bearer string) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequest("POST", f.server.URL+path, bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	res, err := f.server.Client().Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer res.Body.Close()

	var payload map[string]any
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return res.StatusCode, payload
}

func TestGateway_FullPaymentFlow(t *testing.T) {
	f := newGatewayFixture(t)

	// register
	code, body := f.post(t, "/auth/register",
		`{"name":"Asha","email":"asha@example.com","mobile_number":"9876543210","password":"secret99"}`, "")
	if code != http.StatusOK {
		t.Fatalf("register: expected 200, got %d (%v)", code, body)
	}

	// duplicate registration is rejected
	code, _ = f.post(t, "/auth/register",
		`{"name":"Asha","email":"asha@example.com","mobile_number":"9876543210","password":"secret99"}`, "")
	if code != http.StatusBadRequest {
		t.Fatalf("duplicate register: expected 400, got %d", code)
	}

	// login
	code, body = f.post(t, "/auth/login",
		`{"identifier":"asha@example.com","password":"secret99"}`, "")
	if code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d (%v)", code, body)
	}
	bearer, _ := body["access_token"].(string)
	if bearer == "" {
		t.Fatal("login: expected an access token")
	}

	// register a card linked to the mobile
	code, _ = f.post(t, "/card/register",
		`{"card_number":"4111111111111111","cardholder_name":"Asha Rao","expiry":"12/28","mobile_number":"9876543210","user_email":"asha@example.com"}`, "")
	if code != http.StatusOK {
		t.Fatalf("card register: expected 200, got %d", code)
	}

	// send the OTP challenge
	code, body = f.post(t, "/otp/send",
		`{"card_number":"4111111111111111","transaction_id":"txn-e2e"}`, "")
	if code != http.StatusOK {
		t.Fatalf("otp send: expected 200, got %d (%v)", code, body)
	}
	otpCode := f.dispatcher.code()
	if otpCode == "" {
		t.Fatal("otp send: no code was dispatched")
	}

	// a wrong code is rejected and the challenge is retained
	code, _ = f.post(t, "/otp/verify",
		`{"mobile_number":"9876543210","transaction_id":"txn-e2e","otp":"000000"}`, "")
	if code != http.StatusBadRequest {
		t.Fatalf("otp verify wrong code: expected 400, got %d", code)
	}

	// the dispatched code verifies and is consumed
	code, _ = f.post(t, "/otp/verify",
		fmt.Sprintf(`{"mobile_number":"9876543210","transaction_id":"txn-e2e","otp":"%s"}`, otpCode), "")
	if code != http.StatusOK {
		t.Fatalf("otp verify: expected 200, got %d", code)
	}
	code, _ = f.post(t, "/otp/verify",
		fmt.Sprintf(`{"mobile_number":"9876543210","transaction_id":"txn-e2e","otp":"%s"}`, otpCode), "")
	if code != http.StatusBadRequest {
		t.Fatalf("otp replay: expected 400, got %d", code)
	}

	// unauthenticated processing is rejected
	code, _ = f.post(t, "/transactions/process",
		`{"amount":500,"payment_method":"card","card_number":"4111111111111111","location":"India","device":"Chrome"}`, "")
	if code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated process: expected 401, got %d", code)
	}

	// authenticated processing succeeds and persists one record
	code, body = f.post(t, "/transactions/process",
		`{"amount":500,"payment_method":"card","card_number":"4111111111111111","location":"India","device":"Chrome"}`, bearer)
	if code != http.StatusOK {
		t.Fatalf("process: expected 200, got %d (%v)", code, body)
	}
	if len(f.txns.txns) != 1 {
		t.Fatalf("expected exactly one persisted transaction, got %d", len(f.txns.txns))
	}
	if f.txns.txns[0].Status != models.StatusSuccess {
		t.Errorf("expected persisted status Success, got %q", f.txns.txns[0].Status)
	}

	// a fraudulent attempt is rejected with 403 and audited
	code, body = f.post(t, "/transactions/process",
		`{"amount":500,"payment_method":"card","card_number":"4111111111111111","location":"North Korea","device":"Chrome"}`, bearer)
	if code != http.StatusForbidden {
		t.Fatalf("fraud process: expected 403, got %d (%v)", code, body)
	}
	if len(f.fraudLogs.logs) != 1 {
		t.Fatalf("expected one fraud audit record, got %d", len(f.fraudLogs.logs))
	}
	if len(f.txns.txns) != 1 {
		t.Errorf("fraudulent attempt must not persist a transaction")
	}

	// over-ceiling amounts require manual verification
	code, _ = f.post(t, "/transactions/process",
		`{"amount":150000,"payment_method":"card","card_number":"4111111111111111","location":"India","device":"Chrome"}`, bearer)
	if code != http.StatusForbidden {
		t.Fatalf("high-risk process: expected 403, got %d", code)
	}
}

func TestGateway_RateLimitRejectsBurst(t *testing.T) {
	log := zap.NewNop()
	users := &memUserRepo{}
	authority := token.NewAuthority("test-secret", 30*time.Minute, users)
	gate := ratelimit.New(3, time.Minute)

	router := NewRouter(
		&AuthHandler{AuthService: service.NewAuthService(users, authority, log)},
		&CardHandler{CardService: service.NewCardService(&memCardRepo{}, log)},
		&OTPHandler{OTPService: &fakeOTPService{}},
		&TransactionHandler{PaymentService: &fakePaymentService{}},
		gate,
		authority,
		metrics.New(),
		15*time.Second,
		log,
	)
	srv := httptest.NewServer(router)
	defer srv.Close()

	var last *http.Response
	for i := 0; i < 4; i++ {
		req, _ := http.NewRequest("GET", srv.URL+"/banks/list", nil)
		res, err := srv.Client().Do(req)
		if err != nil {
			t.Fatalf("request %d failed: %v", i, err)
		}
		res.Body.Close()
		last = res
	}
	if last.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on the 4th request, got %d", last.StatusCode)
	}
	if last.Header.Get("Retry-After") == "" {
		t.Error("expected a Retry-After header on rejection")
	}

	// health bypasses the gate even while the client is over limit
	res, err := srv.Client().Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Errorf("expected /health to bypass the rate limit, got %d", res.StatusCode)
	}
}

func TestGateway_BankListAndHealth(t *testing.T) {
	f := newGatewayFixture(t)

	res, err := f.server.Client().Get(f.server.URL + "/banks/list")
	if err != nil {
		t.Fatalf("banks request failed: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	var payload map[string][]models.Bank
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode banks: %v", err)
	}
	if len(payload["banks"]) == 0 {
		t.Error("expected a non-empty bank roster")
	}

	health, err := f.server.Client().Get(f.server.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	health.Body.Close()
	if health.StatusCode != http.StatusOK {
		t.Errorf("expected 200 from /health, got %d", health.StatusCode)
	}
}
