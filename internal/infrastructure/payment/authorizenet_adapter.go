package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/wagginmeals/backend/internal/domain/payment"
	"github.com/wagginmeals/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const (
	anetDuplicateProfile = "E00039"
	anetApproved         = "1"
	defaultTimeout       = 30 * time.Second
)

var (
	existingProfileID = regexp.MustCompile(`ID (\d+)`)
	utf8BOM           = []byte{0xEF, 0xBB, 0xBF}
)

// AuthorizeNetGateway implements payment.Gateway against the Authorize.net JSON API.
// Cards are stored in its Customer Information Manager (CIM).
type AuthorizeNetGateway struct {
	endpoint   string
	auth       anetMerchantAuth
	liveMode   bool
	httpClient *http.Client
	logger     *zap.Logger
}

// NewAuthorizeNetGateway creates the adapter
func NewAuthorizeNetGateway(cfg config.AuthorizeNetConfig, logger *zap.Logger) (*AuthorizeNetGateway, error) {
	if !cfg.IsConfigured() {
		return nil, fmt.Errorf("%w: authorize.net login id and transaction key are required", payment.ErrGatewayNotConfigured)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &AuthorizeNetGateway{
		endpoint:   cfg.Endpoint(),
		auth:       anetMerchantAuth{Name: cfg.LoginID, TransactionKey: cfg.TransactionKey},
		liveMode:   cfg.Environment == "production",
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

// Provider returns authorizenet
func (g *AuthorizeNetGateway) Provider() payment.Provider {
	return payment.ProviderAuthorizeNet
}

// CreateCustomerProfile creates a CIM profile. An existing profile for the
// same customer is reused.
func (g *AuthorizeNetGateway) CreateCustomerProfile(ctx context.Context, req payment.CreateProfileRequest) (string, error) {
	description := req.Description
	if description == "" {
		description = "Customer " + req.CustomerID
	}
	body := anetCreateProfileEnvelope{Request: anetCreateProfileRequest{
		MerchantAuthentication: g.auth,
		Profile: anetProfile{
			MerchantCustomerID: truncate(req.CustomerID, 20),
			Description:        description,
			Email:              req.Email,
		},
	}}

	resp, err := g.do(ctx, body)
	if err != nil {
		return "", err
	}
	if resp.ok() {
		g.logger.Info("authorize.net customer profile created", zap.String("profile_id", resp.CustomerProfileID))
		return resp.CustomerProfileID, nil
	}

	msg := resp.firstMessage()
	if msg.Code == anetDuplicateProfile {
		if m := existingProfileID.FindStringSubmatch(msg.Text); m != nil {
			g.logger.Info("authorize.net customer profile already exists", zap.String("profile_id", m[1]))
			return m[1], nil
		}
		return "", fmt.Errorf("%w: %s", payment.ErrDuplicateProfile, msg.Text)
	}
	code, text := resp.errorText()
	return "", fmt.Errorf("%w: create customer profile: %s (%s)", payment.ErrGatewayRequestFailed, text, code)
}

// CreatePaymentProfile stores a card under the profile
func (g *AuthorizeNetGateway) CreatePaymentProfile(ctx context.Context, req payment.CreatePaymentProfileRequest) (string, error) {
	if err := req.Card.Validate(); err != nil {
		return "", err
	}
	mode := "testMode"
	if g.liveMode {
		mode = "liveMode"
	}
	country := req.BillTo.Country
	if country == "" {
		country = "US"
	}

	body := anetCreatePaymentProfileEnvelope{Request: anetCreatePaymentProfileRequest{
		MerchantAuthentication: g.auth,
		CustomerProfileID:      req.ProfileID,
		PaymentProfile: anetPaymentProfile{
			BillTo: anetBillTo{
				FirstName: req.BillTo.FirstName,
				LastName:  req.BillTo.LastName,
				Address:   strings.TrimSpace(req.BillTo.Street + " " + req.BillTo.Street2),
				City:      req.BillTo.City,
				State:     req.BillTo.State,
				Zip:       req.BillTo.ZipCode,
				Country:   country,
			},
			Payment: anetPayment{CreditCard: anetCreditCard{
				CardNumber:     req.Card.Digits(),
				ExpirationDate: fmt.Sprintf("%04d-%02d", req.Card.ExpirationYear, req.Card.ExpirationMonth),
				CardCode:       req.Card.CVV,
			}},
			DefaultPayment: req.IsDefault,
		},
		ValidationMode: mode,
	}}

	resp, err := g.do(ctx, body)
	if err != nil {
		return "", err
	}
	if !resp.ok() {
		code, text := resp.errorText()
		g.logger.Warn("authorize.net rejected card",
			zap.String("profile_id", req.ProfileID),
			zap.String("code", code),
			zap.String("last_four", req.Card.LastFour()),
		)
		return "", fmt.Errorf("%w: %s", payment.ErrInvalidCard, text)
	}
	return resp.CustomerPaymentProfileID, nil
}

// ChargeProfile runs an authCaptureTransaction on a stored card
func (g *AuthorizeNetGateway) ChargeProfile(ctx context.Context, req payment.ChargeRequest) (*payment.ChargeResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	description := req.Description
	if description == "" {
		description = "Order " + req.InvoiceNumber
	}

	txn := anetTransactionRequest{
		TransactionType: "authCaptureTransaction",
		Amount:          req.Amount.StringFixed(2),
		Profile: &anetChargeProfile{
			CustomerProfileID: req.ProfileID,
			PaymentProfile:    anetPaymentProfileLink{PaymentProfileID: req.PaymentProfileID},
		},
		Order: &anetOrder{InvoiceNumber: truncate(req.InvoiceNumber, 20), Description: truncate(description, 255)},
	}
	if req.CustomerID != "" || req.CustomerEmail != "" {
		txn.Customer = &anetCustomerDetail{ID: truncate(req.CustomerID, 20), Email: req.CustomerEmail}
	}

	return g.transact(ctx, txn, req.InvoiceNumber)
}

// Refund credits a settled transaction back to the card
func (g *AuthorizeNetGateway) Refund(ctx context.Context, req payment.RefundRequest) (*payment.ChargeResult, error) {
	if req.TransactionID == "" {
		return nil, payment.ErrRefundNotAllowed
	}
	if !req.Amount.IsPositive() {
		return nil, payment.ErrInvalidAmount
	}
	txn := anetTransactionRequest{
		TransactionType: "refundTransaction",
		Amount:          req.Amount.StringFixed(2),
		Payment: &anetPayment{CreditCard: anetCreditCard{
			CardNumber:     req.LastFour,
			ExpirationDate: "XXXX",
		}},
		RefTransID: req.TransactionID,
	}
	return g.transact(ctx, txn, req.TransactionID)
}

// TestConnection calls getMerchantDetails
func (g *AuthorizeNetGateway) TestConnection(ctx context.Context) error {
	var body anetMerchantDetailsEnvelope
	body.Request.MerchantAuthentication = g.auth

	resp, err := g.do(ctx, body)
	if err != nil {
		return err
	}
	if !resp.ok() {
		_, text := resp.errorText()
		return fmt.Errorf("%w: %s", payment.ErrGatewayRequestFailed, text)
	}
	return nil
}

func (g *AuthorizeNetGateway) transact(ctx context.Context, txn anetTransactionRequest, reference string) (*payment.ChargeResult, error) {
	resp, err := g.do(ctx, anetTransactionEnvelope{Request: anetTransactionRequestWrapper{
		MerchantAuthentication: g.auth,
		TransactionRequest:     txn,
	}})
	if err != nil {
		return nil, err
	}

	tr := resp.TransactionResponse
	if !resp.ok() || tr == nil || tr.ResponseCode != anetApproved {
		code, text := resp.errorText()
		g.logger.Warn("authorize.net transaction declined",
			zap.String("type", txn.TransactionType),
			zap.String("reference", reference),
			zap.String("code", code),
			zap.String("reason", text),
		)
		return nil, fmt.Errorf("%w: %s", payment.ErrChargeDeclined, text)
	}

	g.logger.Info("authorize.net transaction approved",
		zap.String("type", txn.TransactionType),
		zap.String("reference", reference),
		zap.String("transaction_id", tr.TransID),
	)
	return &payment.ChargeResult{
		TransactionID: tr.TransID,
		AuthCode:      tr.AuthCode,
		ResponseCode:  tr.ResponseCode,
		AccountNumber: tr.AccountNumber,
		AccountType:   tr.AccountType,
	}, nil
}

// do posts one API call and decodes the envelope
func (g *AuthorizeNetGateway) do(ctx context.Context, payload any) (*anetResponse, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("authorize.net: failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("authorize.net: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrGatewayRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrGatewayRequestFailed, err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d", payment.ErrGatewayRequestFailed, resp.StatusCode)
	}

	var out anetResponse
	if err := json.Unmarshal(bytes.TrimPrefix(body, utf8BOM), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrGatewayInvalidResponse, err)
	}
	return &out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

var _ payment.Gateway = (*AuthorizeNetGateway)(nil)
