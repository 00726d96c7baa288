package payment

// Authorize.net validates JSON element order against its XML schema, so
// requests are structs with fields declared in schema order.

type anetMerchantAuth struct {
	Name           string `json:"name"`
	TransactionKey string `json:"transactionKey"`
}

type anetCreateProfileEnvelope struct {
	Request anetCreateProfileRequest `json:"createCustomerProfileRequest"`
}

type anetCreateProfileRequest struct {
	MerchantAuthentication anetMerchantAuth `json:"merchantAuthentication"`
	Profile                anetProfile      `json:"profile"`
}

type anetProfile struct {
	MerchantCustomerID string `json:"merchantCustomerId"`
	Description        string `json:"description"`
	Email              string `json:"email"`
}

type anetCreatePaymentProfileEnvelope struct {
	Request anetCreatePaymentProfileRequest `json:"createCustomerPaymentProfileRequest"`
}

type anetCreatePaymentProfileRequest struct {
	MerchantAuthentication anetMerchantAuth   `json:"merchantAuthentication"`
	CustomerProfileID      string             `json:"customerProfileId"`
	PaymentProfile         anetPaymentProfile `json:"paymentProfile"`
	ValidationMode         string             `json:"validationMode"`
}

type anetPaymentProfile struct {
	BillTo         anetBillTo  `json:"billTo"`
	Payment        anetPayment `json:"payment"`
	DefaultPayment bool        `json:"defaultPaymentProfile,omitempty"`
}

type anetBillTo struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
}

type anetPayment struct {
	CreditCard anetCreditCard `json:"creditCard"`
}

type anetCreditCard struct {
	CardNumber     string `json:"cardNumber"`
	ExpirationDate string `json:"expirationDate"`
	CardCode       string `json:"cardCode,omitempty"`
}

type anetTransactionEnvelope struct {
	Request anetTransactionRequestWrapper `json:"createTransactionRequest"`
}

type anetTransactionRequestWrapper struct {
	MerchantAuthentication anetMerchantAuth       `json:"merchantAuthentication"`
	TransactionRequest     anetTransactionRequest `json:"transactionRequest"`
}

type anetTransactionRequest struct {
	TransactionType string              `json:"transactionType"`
	Amount          string              `json:"amount"`
	Payment         *anetPayment        `json:"payment,omitempty"`
	Profile         *anetChargeProfile  `json:"profile,omitempty"`
	RefTransID      string              `json:"refTransId,omitempty"`
	Order           *anetOrder          `json:"order,omitempty"`
	Customer        *anetCustomerDetail `json:"customer,omitempty"`
}

type anetChargeProfile struct {
	CustomerProfileID string                 `json:"customerProfileId"`
	PaymentProfile    anetPaymentProfileLink `json:"paymentProfile"`
}

type anetPaymentProfileLink struct {
	PaymentProfileID string `json:"paymentProfileId"`
}

type anetOrder struct {
	InvoiceNumber string `json:"invoiceNumber"`
	Description   string `json:"description"`
}

type anetCustomerDetail struct {
	ID    string `json:"id,omitempty"`
	Email string `json:"email,omitempty"`
}

type anetMerchantDetailsEnvelope struct {
	Request struct {
		MerchantAuthentication anetMerchantAuth `json:"merchantAuthentication"`
	} `json:"getMerchantDetailsRequest"`
}

type anetMessage struct {
	Code string `json:"code"`
	Text string `json:"text"`
}

type anetResponse struct {
	Messages struct {
		ResultCode string        `json:"resultCode"`
		Message    []anetMessage `json:"message"`
	} `json:"messages"`
	CustomerProfileID        string                   `json:"customerProfileId"`
	CustomerPaymentProfileID string                   `json:"customerPaymentProfileId"`
	TransactionResponse      *anetTransactionResponse `json:"transactionResponse"`
}

type anetTransactionResponse struct {
	ResponseCode  string `json:"responseCode"`
	AuthCode      string `json:"authCode"`
	TransID       string `json:"transId"`
	AccountNumber string `json:"accountNumber"`
	AccountType   string `json:"accountType"`
	Errors        []struct {
		ErrorCode string `json:"errorCode"`
		ErrorText string `json:"errorText"`
	} `json:"errors"`
}

func (r *anetResponse) ok() bool {
	return r.Messages.ResultCode == "Ok"
}

// firstMessage returns the first result message, if any
func (r *anetResponse) firstMessage() anetMessage {
	if len(r.Messages.Message) == 0 {
		return anetMessage{}
	}
	return r.Messages.Message[0]
}

// errorText prefers the transaction error over the envelope message
func (r *anetResponse) errorText() (code, text string) {
	if tr := r.TransactionResponse; tr != nil && len(tr.Errors) > 0 {
		return tr.Errors[0].ErrorCode, tr.Errors[0].ErrorText
	}
	m := r.firstMessage()
	if m.Text == "" {
		return m.Code, "Unknown error"
	}
	return m.Code, m.Text
}
