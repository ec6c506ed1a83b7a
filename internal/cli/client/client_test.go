package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookify-dev/bookify/internal/session"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *session.MemoryStore) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := session.NewMemoryStore()
	c, err := New(Config{BaseURL: srv.URL + "/api/", Store: store})
	require.NoError(t, err)
	return c, store
}

func TestNew_NormalizesBaseURL(t *testing.T) {
	c, err := New(Config{BaseURL: "http://localhost:8080/api/"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api", c.BaseURL())

	c, err = New(Config{})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api", c.BaseURL())

	_, err = New(Config{BaseURL: "ftp://example.com"})
	assert.Error(t, err)

	_, err = New(Config{BaseURL: "http://"})
	assert.Error(t, err)
}

func TestClient_AttachesStoredToken(t *testing.T) {
	var gotAuth, gotRequestID string
	c, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := c.ListBookNames(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
	assert.NotEmpty(t, gotRequestID)

	require.NoError(t, store.Set(session.FieldToken, "abc"))
	_, err = c.ListBookNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", gotAuth)

	// token changes are picked up on the next request
	require.NoError(t, store.Set(session.FieldToken, "def"))
	_, err = c.ListBookNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer def", gotAuth)
}

func TestClient_Login(t *testing.T) {
	c, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/login", r.URL.Path)

		var req LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "secret12" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("Invalid credentials"))
			return
		}
		_ = json.NewEncoder(w).Encode(LoginResponse{Token: "t", Role: "ROLE_USER"})
	})

	resp, err := c.Login(context.Background(), "a@b.com", "secret12")
	require.NoError(t, err)
	assert.Equal(t, "t", resp.Token)
	assert.Equal(t, "ROLE_USER", resp.Role)

	_, err = c.Login(context.Background(), "a@b.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, KindUnauthorized, Classify(err))
	assert.Equal(t, "Invalid credentials", Message(err, "fallback"))

	// Login never writes the session on its own
	tok, err := session.Token(store)
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestClient_PaginationAndSearchQueries(t *testing.T) {
	var gotQuery string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"content":[{"id":1,"name":"Go"}],"totalPages":3,"totalElements":9,"number":1,"size":3}`))
	})

	page, err := c.ListUserBooks(context.Background(), 1, DefaultUserBookPageSize)
	require.NoError(t, err)
	assert.Equal(t, "page=1&size=3", gotQuery)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "Go", page.Content[0].Name)

	_, err = c.SearchAuthors(context.Background(), "ada", 0, DefaultAuthorPageSize)
	require.NoError(t, err)
	assert.Equal(t, "name=ada&page=0&size=4", gotQuery)
}

func TestClient_PlainTextResponses(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/register":
			_, _ = w.Write([]byte("User registered successfully"))
		case "/api/cart/7/name":
			_, _ = w.Write([]byte(`"Ada"`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	msg, err := c.Register(context.Background(), RegisterRequest{Name: "Ada", Email: "a@b.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "User registered successfully", msg)

	name, err := c.GetUserName(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Ada", name)
}

func TestClient_UpdateReturnStatusSendsQuery(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/admin/returns/update-status/5", r.URL.Path)
		assert.Equal(t, "APPROVED", r.URL.Query().Get("status"))
		_, _ = w.Write([]byte(`{"id":5,"status":"APPROVED","type":"RETURN","reason":"torn"}`))
	})

	req, err := c.UpdateReturnStatus(context.Background(), 5, ReturnStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, ReturnStatusApproved, req.Status)
}

func TestClient_RefundAcceptsJSONText(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"rfnd_1","amount":49900,"currency":"INR","payment_id":"pay_1","status":"processed"}`))
	})

	refund, err := c.RefundReturnRequest(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "rfnd_1", refund.ID)
	assert.Equal(t, int64(49900), refund.Amount)
}

func TestClient_PlacePaidOrderEnvelope(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/payment/place-order", r.URL.Path)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var payload map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(body, &payload))
		assert.Contains(t, payload, "order")
		assert.Contains(t, payload, "paymentData")
		assert.True(t, strings.Contains(string(payload["paymentData"]), `"razorpay_order_id":"order_1"`))

		_, _ = w.Write([]byte(`{"id":11,"orderMode":"UPI","userName":"Ada","address":"x","phoneNumber":"9999999999","items":[]}`))
	})

	order, err := c.PlacePaidOrder(context.Background(),
		Order{UserName: "Ada", OrderMode: OrderModeUPI},
		PaymentData{OrderID: "order_1", PaymentID: "pay_1", Signature: "sig"})
	require.NoError(t, err)
	assert.Equal(t, int64(11), order.ID)
}

func TestDateTime_Decode(t *testing.T) {
	var o Order
	require.NoError(t, json.Unmarshal([]byte(`{"createdAt":"2025-09-01T10:00:00","deliveryDate":null,"updatedAt":"2025-09-01T10:00:00.123456"}`), &o))
	assert.Equal(t, 2025, o.CreatedAt.Year())
	assert.True(t, o.DeliveryDate.IsZero())
	assert.Equal(t, 10, o.UpdatedAt.Hour())

	var bad Order
	assert.Error(t, json.Unmarshal([]byte(`{"createdAt":"yesterday"}`), &bad))
}
