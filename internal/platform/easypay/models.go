package easypay

import (
	"bytes"
	"encoding/json"

	"github.com/samber/lo"
)

// PaymentType is the kind of single payment requested.
type PaymentType string

const (
	PaymentTypeSale          PaymentType = "sale"
	PaymentTypeAuthorisation PaymentType = "authorisation"
)

var paymentTypes = []PaymentType{PaymentTypeSale, PaymentTypeAuthorisation}

func (t PaymentType) Valid() bool { return lo.Contains(paymentTypes, t) }

// MethodType is the payment method offered to the customer.
type MethodType string

const (
	MethodTypeMultibanco    MethodType = "mb"
	MethodTypeCreditCard    MethodType = "cc"
	MethodTypeBoleto        MethodType = "bb"
	MethodTypeMbway         MethodType = "mbw"
	MethodTypeDebitoDirecto MethodType = "dd"
)

var methodTypes = []MethodType{
	MethodTypeMultibanco,
	MethodTypeCreditCard,
	MethodTypeBoleto,
	MethodTypeMbway,
	MethodTypeDebitoDirecto,
}

func (m MethodType) Valid() bool { return lo.Contains(methodTypes, m) }

// MethodTypes lists the accepted method values in wire form.
func MethodTypes() []string {
	return lo.Map(methodTypes, func(m MethodType, _ int) string { return string(m) })
}

// MethodStatus is the remote lifecycle state of a payment method.
// The gateway does not guarantee notification order, so no ordering is
// defined between values.
type MethodStatus string

const (
	MethodStatusWaiting    MethodStatus = "waiting"
	MethodStatusPending    MethodStatus = "pending"
	MethodStatusActive     MethodStatus = "active"
	MethodStatusAuthorised MethodStatus = "authorised"
	MethodStatusCaptured   MethodStatus = "captured"
	MethodStatusPaid       MethodStatus = "paid"
	MethodStatusSuccess    MethodStatus = "success"
	MethodStatusDeclined   MethodStatus = "declined"
	MethodStatusFailed     MethodStatus = "failed"
	MethodStatusExpired    MethodStatus = "expired"
	MethodStatusCanceled   MethodStatus = "canceled"
	MethodStatusDeleted    MethodStatus = "deleted"
	MethodStatusRefunded   MethodStatus = "refunded"
)

var methodStatuses = []MethodStatus{
	MethodStatusWaiting,
	MethodStatusPending,
	MethodStatusActive,
	MethodStatusAuthorised,
	MethodStatusCaptured,
	MethodStatusPaid,
	MethodStatusSuccess,
	MethodStatusDeclined,
	MethodStatusFailed,
	MethodStatusExpired,
	MethodStatusCanceled,
	MethodStatusDeleted,
	MethodStatusRefunded,
}

func (s MethodStatus) Valid() bool { return lo.Contains(methodStatuses, s) }

// Currency accepted by the single payment endpoint.
type Currency string

const (
	CurrencyEUR Currency = "EUR"
	CurrencyBRL Currency = "BRL"
)

const DefaultPhoneIndicative = "+351"

// Account references a previously created customer account.
type Account struct {
	ID string `json:"id,omitempty"`
}

// Customer is the customer sub-object shared by requests, responses and notifications.
type Customer struct {
	ID              string `json:"id,omitempty"`
	Name            string `json:"name,omitempty"`
	Email           string `json:"email,omitempty" validate:"omitempty,email"`
	Phone           string `json:"phone,omitempty"`
	PhoneIndicative string `json:"phone_indicative,omitempty"`
	FiscalNumber    string `json:"fiscal_number,omitempty" validate:"omitempty,min=3"`
	Key             string `json:"key,omitempty"`
}

// Capture describes how a sale should be captured.
type Capture struct {
	TransactionKey string   `json:"transaction_key,omitempty"`
	CaptureDate    string   `json:"capture_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Account        *Account `json:"account,omitempty"`
	Descriptive    string   `json:"descriptive,omitempty"`
}

// PaymentRequest is the body of POST /single.
type PaymentRequest struct {
	Type           PaymentType `json:"type"`
	Capture        *Capture    `json:"capture,omitempty"`
	ExpirationTime string      `json:"expiration_time,omitempty" validate:"omitempty,datetime=2006-01-02 15:04"`
	Currency       Currency    `json:"currency"`
	Customer       *Customer   `json:"customer,omitempty"`
	Key            string      `json:"key,omitempty"`
	Value          float64     `json:"value"`
	Method         MethodType  `json:"method"`
}

// EntityCode is the Multibanco entity number. The API has sent it both as a
// JSON number and as a numeric string, so either form decodes.
type EntityCode string

func (e *EntityCode) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*e = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*e = EntityCode(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*e = EntityCode(n.String())
	return nil
}

// PaymentMethod is the method block of a payment response.
type PaymentMethod struct {
	Type      MethodType   `json:"type"`
	Status    MethodStatus `json:"status"`
	Entity    EntityCode   `json:"entity,omitempty"`
	Reference string       `json:"reference,omitempty"`
	URL       string       `json:"url,omitempty"`
	Alias     string       `json:"alias,omitempty"`
	IBAN      string       `json:"iban,omitempty"`
	LastFour  string       `json:"last_four,omitempty"`
}

// PaymentResponse is returned by POST /single and GET /single/{id}.
type PaymentResponse struct {
	ID       string         `json:"id"`
	Status   string         `json:"status"`
	Messages Messages       `json:"message,omitempty"`
	Method   *PaymentMethod `json:"method,omitempty"`
	Customer *Customer      `json:"customer,omitempty"`
	Value    float64        `json:"value,omitempty"`
	Currency Currency       `json:"currency,omitempty"`
	Key      string         `json:"key,omitempty"`
}

// UnmarshalJSON accepts the message list under either "message" or "messages".
func (r *PaymentResponse) UnmarshalJSON(b []byte) error {
	type alias PaymentResponse
	aux := struct {
		*alias
		AltMessages Messages `json:"messages"`
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if len(r.Messages) == 0 {
		r.Messages = aux.AltMessages
	}
	return nil
}

// MethodStatus returns the status embedded in the method block, if any.
func (r *PaymentResponse) MethodStatus() MethodStatus {
	if r == nil || r.Method == nil {
		return ""
	}
	return r.Method.Status
}

// MethodType returns the method type embedded in the method block, if any.
func (r *PaymentResponse) MethodType() MethodType {
	if r == nil || r.Method == nil {
		return ""
	}
	return r.Method.Type
}

func (r *PaymentResponse) CustomerID() string {
	if r == nil || r.Customer == nil {
		return ""
	}
	return r.Customer.ID
}
