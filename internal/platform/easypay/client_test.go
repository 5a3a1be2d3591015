package easypay

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	cli, err := NewClient(&ClientOptions{BackendURL: srv.URL + "/2.0/", AccountID: "acc-id", APIKey: "api-key", Timeout: 5 * time.Second})
	require.NoError(t, err)
	return cli, srv
}

func TestClient_CreatePayment_Success(t *testing.T) {
	var (
		gotMethod, gotPath, gotAccount, gotKey, gotContentType string
		gotBody                                                map[string]any
	)
	cli, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		gotAccount, gotKey = r.Header.Get("AccountId"), r.Header.Get("ApiKey")
		gotContentType = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"status":"ok","message":["Your request was successfully created"],"id":"abc-123","method":{"type":"mb","status":"pending","entity":21098,"reference":"999999999"},"customer":{"id":"cust-1"}}`))
	})

	res, err := cli.CreatePayment(context.Background(), &PaymentRequest{Value: 10.50, Method: MethodTypeMultibanco, Key: "mk-1"})
	require.NoError(t, err)
	require.Equal(t, "abc-123", res.ID)
	require.Equal(t, "ok", res.Status)
	require.Equal(t, MethodStatusPending, res.MethodStatus())
	require.Equal(t, MethodTypeMultibanco, res.MethodType())
	require.Equal(t, "cust-1", res.CustomerID())
	require.Equal(t, Messages{"Your request was successfully created"}, res.Messages)

	require.Equal(t, http.MethodPost, gotMethod)
	require.Equal(t, "/2.0/single", gotPath)
	require.Equal(t, "acc-id", gotAccount)
	require.Equal(t, "api-key", gotKey)
	require.Equal(t, "application/json", gotContentType)
	require.Equal(t, "sale", gotBody["type"])
	require.Equal(t, "mb", gotBody["method"])
	require.Equal(t, "EUR", gotBody["currency"])
	require.Equal(t, 10.5, gotBody["value"])
	require.Equal(t, "mk-1", gotBody["key"])
}

func TestClient_CreatePayment_InvalidArgumentsSkipNetwork(t *testing.T) {
	var calls int32
	cli, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})

	cases := []struct {
		name string
		req  *PaymentRequest
		want string
	}{
		{name: "nil", req: nil, want: "nil"},
		{name: "nan", req: &PaymentRequest{Value: math.NaN(), Method: MethodTypeMultibanco}, want: "value must be a number"},
		{name: "inf", req: &PaymentRequest{Value: math.Inf(1), Method: MethodTypeMultibanco}, want: "value must be a number"},
		{name: "method", req: &PaymentRequest{Value: 1, Method: "paypal"}, want: "[mb cc bb mbw dd]"},
		{name: "type", req: &PaymentRequest{Value: 1, Method: MethodTypeCreditCard, Type: "refund"}, want: "type must be one of"},
		{name: "currency", req: &PaymentRequest{Value: 1, Method: MethodTypeCreditCard, Currency: "USD"}, want: "currency must be one of"},
		{name: "email", req: &PaymentRequest{Value: 1, Method: MethodTypeCreditCard, Customer: &Customer{Email: "not-an-email"}}, want: "Email"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := cli.CreatePayment(context.Background(), tc.req)
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrInvalidArgument))
			require.Contains(t, err.Error(), tc.want)
		})
	}
	require.Zero(t, atomic.LoadInt32(&calls))
}

func TestClient_MissingCredentials(t *testing.T) {
	cli, err := NewClient(&ClientOptions{BackendURL: "https://api.test.easypay.pt/2.0"})
	require.NoError(t, err)

	_, err = cli.GetPayment(context.Background(), "abc-123")
	require.True(t, errors.Is(err, ErrInvalidArgument))
	require.Contains(t, err.Error(), "account id")
}

func TestClient_GetPayment(t *testing.T) {
	var gotMethod, gotPath string
	cli, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		_, _ = w.Write([]byte(`{"id":"abc-123","method":{"type":"mb","status":"paid"}}`))
	})

	res, err := cli.GetPayment(context.Background(), "abc-123")
	require.NoError(t, err)
	require.Equal(t, MethodStatusPaid, res.MethodStatus())
	require.Equal(t, http.MethodGet, gotMethod)
	require.Equal(t, "/2.0/single/abc-123", gotPath)
}

func TestClient_GetPayment_EntityAsNumberOrString(t *testing.T) {
	for name, body := range map[string]string{
		"number": `{"id":"abc-123","method":{"type":"mb","status":"pending","entity":21098,"reference":"123456789"}}`,
		"string": `{"id":"abc-123","method":{"type":"mb","status":"pending","entity":"21098","reference":"123456789"}}`,
	} {
		t.Run(name, func(t *testing.T) {
			cli, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			})
			res, err := cli.GetPayment(context.Background(), "abc-123")
			require.NoError(t, err)
			require.Equal(t, EntityCode("21098"), res.Method.Entity)
			require.Equal(t, MethodStatusPending, res.MethodStatus())
		})
	}
}

func TestClient_GetPayment_EmptyID(t *testing.T) {
	var calls int32
	cli, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})
	_, err := cli.GetPayment(context.Background(), "  ")
	require.True(t, errors.Is(err, ErrInvalidArgument))
	require.Zero(t, atomic.LoadInt32(&calls))
}

func TestClient_GetPayment_GatewayError(t *testing.T) {
	cli, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status":"error","message":["Payment not found"]}`))
	})

	_, err := cli.GetPayment(context.Background(), "missing")
	var gerr *GatewayError
	require.True(t, errors.As(err, &gerr))
	require.Equal(t, http.StatusNotFound, gerr.StatusCode)
	require.Equal(t, []string{"Payment not found"}, gerr.Messages)
}

func TestClient_DeletePayment(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusOK)
	var gotMethod, gotPath atomic.Value
	cli, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod.Store(r.Method)
		gotPath.Store(r.URL.Path)
		w.WriteHeader(int(status.Load()))
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	ok, err := cli.DeletePayment(context.Background(), "abc-123")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, http.MethodDelete, gotMethod.Load())
	require.Equal(t, "/2.0/single/abc-123", gotPath.Load())

	status.Store(http.StatusBadRequest)
	ok, err = cli.DeletePayment(context.Background(), "abc-123")
	require.NoError(t, err)
	require.False(t, ok)

	_, err = cli.DeletePayment(context.Background(), "")
	require.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestNewClient_InvalidBackendURL(t *testing.T) {
	_, err := NewClient(&ClientOptions{BackendURL: "not a url"})
	require.Error(t, err)
}
