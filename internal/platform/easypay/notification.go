package easypay

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/gin-gonic/gin/binding"
)

// NotificationKind identifies the webhook a notification was delivered to.
type NotificationKind string

const (
	NotificationKindGeneric       NotificationKind = "generic"
	NotificationKindAuthorisation NotificationKind = "authorisation"
	NotificationKindTransaction   NotificationKind = "transaction"
	NotificationKindMbway         NotificationKind = "mbway"
)

// Notification is a claim pushed by the gateway. It is never a source of
// truth for payment status.
type Notification interface {
	Kind() NotificationKind
	PaymentID() string
	MerchantKey() string
	TransactionInfo() *Transaction
}

type TransactionValues struct {
	Requested   float64 `json:"requested"`
	Paid        float64 `json:"paid"`
	FixedFee    float64 `json:"fixed_fee"`
	VariableFee float64 `json:"variable_fee"`
	Tax         float64 `json:"tax"`
	Transfer    float64 `json:"transfer"`
}

// Transaction is the transaction sub-record of a notification.
type Transaction struct {
	ID             string             `json:"id"`
	Key            string             `json:"key,omitempty"`
	Type           string             `json:"type,omitempty"`
	Date           string             `json:"date,omitempty"`
	Values         *TransactionValues `json:"values,omitempty"`
	TransferDate   string             `json:"transfer_date,omitempty"`
	DocumentNumber string             `json:"document_number,omitempty"`
}

// NotificationPayload holds the fields shared by every notification variant.
type NotificationPayload struct {
	ID             string       `json:"id"`
	Value          float64      `json:"value,omitempty"`
	Currency       Currency     `json:"currency,omitempty"`
	Key            string       `json:"key,omitempty"`
	ExpirationTime string       `json:"expiration_time,omitempty"`
	Method         MethodType   `json:"method,omitempty"`
	Customer       *Customer    `json:"customer,omitempty"`
	Account        *Account     `json:"account,omitempty"`
	Transaction    *Transaction `json:"transaction,omitempty"`
}

func (p *NotificationPayload) PaymentID() string { return p.ID }

func (p *NotificationPayload) MerchantKey() string { return p.Key }

func (p *NotificationPayload) TransactionInfo() *Transaction { return p.Transaction }

type GenericNotification struct {
	NotificationPayload
	Type     string   `json:"type,omitempty"`
	Status   string   `json:"status,omitempty"`
	Messages Messages `json:"messages,omitempty"`
	Date     string   `json:"date,omitempty"`
}

func (n *GenericNotification) Kind() NotificationKind { return NotificationKindGeneric }

// AuthorisationNotification is decoded but not acted upon.
type AuthorisationNotification struct {
	NotificationPayload
	Type     string   `json:"type,omitempty"`
	Status   string   `json:"status,omitempty"`
	Messages Messages `json:"messages,omitempty"`
	Date     string   `json:"date,omitempty"`
}

func (n *AuthorisationNotification) Kind() NotificationKind { return NotificationKindAuthorisation }

type TransactionNotification struct {
	NotificationPayload
}

func (n *TransactionNotification) Kind() NotificationKind { return NotificationKindTransaction }

// MbwayNotification arrives form-encoded with the legacy ep_* field names.
type MbwayNotification struct {
	NotificationPayload
	CIN    string `json:"ep_cin,omitempty"`
	User   string `json:"ep_user,omitempty"`
	Alias  string `json:"ep_alias,omitempty"`
	Status string `json:"ep_status,omitempty"`
}

func (n *MbwayNotification) Kind() NotificationKind { return NotificationKindMbway }

type mbwayForm struct {
	CIN         string  `form:"ep_cin"`
	User        string  `form:"ep_user"`
	Doc         string  `form:"ep_doc"`
	Type        string  `form:"ep_type"`
	Status      string  `form:"ep_status"`
	PaymentID   string  `form:"ep_key"`
	Value       float64 `form:"ep_value"`
	Currency    string  `form:"ep_currency"`
	Date        string  `form:"ep_date"`
	Alias       string  `form:"ep_alias"`
	MerchantKey string  `form:"t_key"`
}

func malformed(kind NotificationKind, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrMalformedNotification, kind, err)
}

func decodeJSONNotification(kind NotificationKind, body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return malformed(kind, err)
	}
	return nil
}

func ParseGenericNotification(body []byte) (*GenericNotification, error) {
	var n GenericNotification
	if err := decodeJSONNotification(NotificationKindGeneric, body, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func ParseAuthorisationNotification(body []byte) (*AuthorisationNotification, error) {
	var n AuthorisationNotification
	if err := decodeJSONNotification(NotificationKindAuthorisation, body, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func ParseTransactionNotification(body []byte) (*TransactionNotification, error) {
	var n TransactionNotification
	if err := decodeJSONNotification(NotificationKindTransaction, body, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func ParseMbwayNotification(body []byte) (*MbwayNotification, error) {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, malformed(NotificationKindMbway, err)
	}
	if len(values) == 0 {
		return nil, malformed(NotificationKindMbway, fmt.Errorf("empty form"))
	}

	var form mbwayForm
	if err := binding.MapFormWithTag(&form, values, "form"); err != nil {
		return nil, malformed(NotificationKindMbway, err)
	}

	n := &MbwayNotification{
		NotificationPayload: NotificationPayload{
			ID:       form.PaymentID,
			Value:    form.Value,
			Currency: Currency(form.Currency),
			Key:      form.MerchantKey,
			Method:   MethodTypeMbway,
			Account:  &Account{ID: form.CIN},
		},
		CIN:    form.CIN,
		User:   form.User,
		Alias:  form.Alias,
		Status: form.Status,
	}
	if form.Doc != "" {
		n.Transaction = &Transaction{
			ID:             form.Doc,
			Type:           form.Type,
			Date:           form.Date,
			DocumentNumber: form.Doc,
		}
	}
	return n, nil
}

// ParseNotification decodes body according to the wire format of kind.
func ParseNotification(kind NotificationKind, body []byte) (Notification, error) {
	var (
		n   Notification
		err error
	)
	switch kind {
	case NotificationKindGeneric:
		n, err = asNotification[*GenericNotification](ParseGenericNotification(body))
	case NotificationKindAuthorisation:
		n, err = asNotification[*AuthorisationNotification](ParseAuthorisationNotification(body))
	case NotificationKindTransaction:
		n, err = asNotification[*TransactionNotification](ParseTransactionNotification(body))
	case NotificationKindMbway:
		n, err = asNotification[*MbwayNotification](ParseMbwayNotification(body))
	default:
		err = fmt.Errorf("%w: unknown notification kind %q", ErrMalformedNotification, kind)
	}
	return n, err
}

// asNotification keeps a typed nil pointer out of the interface.
func asNotification[T Notification](n T, err error) (Notification, error) {
	if err != nil {
		return nil, err
	}
	return n, nil
}
