package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookify-dev/bookify/internal/auth"
	"github.com/bookify-dev/bookify/internal/cli/client"
	"github.com/bookify-dev/bookify/internal/config"
	"github.com/bookify-dev/bookify/internal/models"
	"github.com/bookify-dev/bookify/internal/session"
)

const testKeySecret = "test_key_secret"

type testEnv struct {
	server *Server
	url    string
}

func newTestEnv(t *testing.T, opts ...auth.IssuerOption) *testEnv {
	t.Helper()

	srv, err := New(config.StubConfig{
		DatabaseURL:      ":memory:",
		JWTSecret:        "test-jwt-secret",
		AllowedOrigins:   []string{"http://localhost:3000"},
		PaymentKeyID:     "rzp_test_key",
		PaymentKeySecret: testKeySecret,
	}, zerolog.Nop(), opts...)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &testEnv{server: srv, url: ts.URL + "/api"}
}

func (e *testEnv) newClient(t *testing.T) *client.Client {
	t.Helper()
	c, err := client.New(client.Config{BaseURL: e.url, Store: session.NewMemoryStore()})
	require.NoError(t, err)
	return c
}

// signIn registers (if needed) and logs in, establishing a session on c
func (e *testEnv) signIn(t *testing.T, c *client.Client, name, email string, admin bool) {
	t.Helper()
	ctx := context.Background()

	req := client.RegisterRequest{Name: name, Email: email, Password: "secret123"}
	var err error
	if admin {
		_, err = c.RegisterAdmin(ctx, req)
	} else {
		_, err = c.Register(ctx, req)
	}
	require.NoError(t, err)

	resp, err := c.Login(ctx, email, "secret123")
	require.NoError(t, err)
	state, err := c.SetSession(ctx, resp.Token, session.Role(resp.Role))
	require.NoError(t, err)
	require.Equal(t, client.StateEstablished, state)
}

func image(name string) *client.File {
	return &client.File{Name: name, Content: strings.NewReader("\x89PNG fake image")}
}

// seedBook creates an author and one book through the admin API
func seedBook(t *testing.T, admin *client.Client, name string, price float64, quantity int) *client.Book {
	t.Helper()
	ctx := context.Background()

	author, err := admin.CreateAuthor(ctx, client.AuthorInput{
		Name:                 "Rob " + name,
		Description:          "Writes about Go",
		Gender:               "Male",
		ProgrammingLanguages: []string{"Go"},
	}, image("rob.png"))
	require.NoError(t, err)

	book, err := admin.CreateBook(ctx, client.BookInput{
		Name:        name,
		Description: "A book about " + name,
		AuthorID:    author.ID,
		Price:       price,
		Quantity:    quantity,
	}, image("cover.png"))
	require.NoError(t, err)
	return book
}

func TestAuthEndpoints(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.newClient(t)

	t.Run("Register", func(t *testing.T) {
		msg, err := c.Register(ctx, client.RegisterRequest{Name: "Alice", Email: "alice@bookify.test", Password: "secret123"})
		require.NoError(t, err)
		assert.Equal(t, "User registered successfully", msg)

		_, err = c.Register(ctx, client.RegisterRequest{Name: "Alice", Email: "alice@bookify.test", Password: "secret123"})
		require.Error(t, err)
		assert.Equal(t, client.KindValidation, client.Classify(err))
		assert.Equal(t, "Email already in use", client.Message(err, ""))
	})

	t.Run("RegisterValidation", func(t *testing.T) {
		_, err := c.Register(ctx, client.RegisterRequest{Name: "Al", Email: "nope", Password: "1"})
		require.Error(t, err)
		var apiErr *client.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadRequest, apiErr.Status)
		assert.Len(t, apiErr.Messages, 3)
	})

	t.Run("Login", func(t *testing.T) {
		_, err := c.Login(ctx, "alice@bookify.test", "wrong-password")
		require.Error(t, err)
		assert.Equal(t, client.KindUnauthorized, client.Classify(err))
		assert.Equal(t, "Invalid credentials", client.Message(err, ""))

		resp, err := c.Login(ctx, "alice@bookify.test", "secret123")
		require.NoError(t, err)
		assert.Equal(t, "ROLE_USER", resp.Role)
		assert.NotEmpty(t, resp.Token)

		state, err := c.SetSession(ctx, resp.Token, session.Role(resp.Role))
		require.NoError(t, err)
		assert.Equal(t, client.StateEstablished, state)

		s, err := c.Session()
		require.NoError(t, err)
		assert.Equal(t, "alice@bookify.test", s.Email)
		assert.Equal(t, "1", s.UserID)
	})

	t.Run("RegisterAdminOnce", func(t *testing.T) {
		_, err := c.RegisterAdmin(ctx, client.RegisterRequest{Name: "Admin", Email: "admin@bookify.test", Password: "secret123"})
		require.NoError(t, err)

		_, err = c.RegisterAdmin(ctx, client.RegisterRequest{Name: "Other", Email: "other@bookify.test", Password: "secret123"})
		require.Error(t, err)
		assert.Equal(t, "Admin already exists", client.Message(err, ""))
	})

	t.Run("UserIDByEmail", func(t *testing.T) {
		id, err := c.UserIDByEmail(ctx, "alice@bookify.test")
		require.NoError(t, err)
		assert.Equal(t, int64(1), id)

		_, err = c.UserIDByEmail(ctx, "ghost@bookify.test")
		require.Error(t, err)
		assert.Equal(t, "User not found", client.Message(err, ""))
	})

	t.Run("PasswordReset", func(t *testing.T) {
		msg, err := c.ForgotPassword(ctx, "alice@bookify.test")
		require.NoError(t, err)
		assert.Equal(t, "Password reset email sent successfully", msg)

		var user models.User
		require.NoError(t, env.server.DB().Where("email = ?", "alice@bookify.test").First(&user).Error)
		require.NotEmpty(t, user.ResetToken)

		msg, err = c.ResetPassword(ctx, user.ResetToken, "newsecret1")
		require.NoError(t, err)
		assert.Equal(t, "Password reset successfully", msg)

		_, err = c.Login(ctx, "alice@bookify.test", "newsecret1")
		require.NoError(t, err)
	})
}

func TestUserIDClaim(t *testing.T) {
	env := newTestEnv(t, auth.WithUserIDClaim())
	c := env.newClient(t)
	env.signIn(t, c, "Alice", "alice@bookify.test", false)

	s, err := c.Session()
	require.NoError(t, err)
	assert.Equal(t, "1", s.UserID)
}

func TestProtectedRoutes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	anon := env.newClient(t)
	_, err := anon.ListUserBooks(ctx, 0, 3)
	require.Error(t, err)
	assert.Equal(t, client.KindUnauthorized, client.Classify(err))

	user := env.newClient(t)
	env.signIn(t, user, "Alice", "alice@bookify.test", false)
	_, err = user.ListAllOrders(ctx)
	require.Error(t, err)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)

	// another account's cart is off limits
	_, err = user.GetCart(ctx, 99)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
}

func TestCatalog(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.newClient(t)
	env.signIn(t, admin, "Admin", "admin@bookify.test", true)

	for _, name := range []string{"Go Basics", "Concurrency", "gRPC Guide", "Testing Go"} {
		seedBook(t, admin, name, 199, 5)
	}

	t.Run("Pagination", func(t *testing.T) {
		page, err := admin.ListUserBooks(ctx, 0, 3)
		require.NoError(t, err)
		assert.Len(t, page.Content, 3)
		assert.Equal(t, 2, page.TotalPages)
		assert.Equal(t, int64(4), page.TotalElements)
		assert.Equal(t, "Testing Go", page.Content[0].Name)
		require.NotNil(t, page.Content[0].Author)

		authors, err := admin.ListAuthors(ctx, 0, 4)
		require.NoError(t, err)
		require.Len(t, authors.Content, 4)
		assert.Equal(t, int64(1), authors.Content[0].BookCount)
	})

	t.Run("Search", func(t *testing.T) {
		page, err := admin.SearchBooks(ctx, "GO", 0, 8)
		require.NoError(t, err)
		assert.Equal(t, int64(2), page.TotalElements)
	})

	t.Run("Names", func(t *testing.T) {
		names, err := admin.ListBookNames(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Concurrency", "Go Basics", "gRPC Guide", "Testing Go"}, names)
	})

	t.Run("AuthorValidation", func(t *testing.T) {
		_, err := admin.CreateAuthor(ctx, client.AuthorInput{Name: "Al", Description: "x", Gender: "Male"}, image("a.png"))
		require.Error(t, err)
		var apiErr *client.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadRequest, apiErr.Status)
		assert.NotEmpty(t, apiErr.Messages)

		_, err = admin.CreateAuthor(ctx, client.AuthorInput{
			Name: "No Image", Description: "Has no portrait", Gender: "Female", ProgrammingLanguages: []string{"C"},
		}, nil)
		require.Error(t, err)
		assert.Equal(t, "Image is required for new author", client.Message(err, ""))
	})

	t.Run("UploadedImageIsServed", func(t *testing.T) {
		book, err := admin.GetBook(ctx, 1)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(book.ImageURL, "/uploads/"))

		resp, err := http.Get(strings.TrimSuffix(env.url, "/api") + book.ImageURL)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(body), "fake image")
	})

	t.Run("DeleteAuthorInUse", func(t *testing.T) {
		err := admin.DeleteAuthor(ctx, 1)
		require.Error(t, err)
		assert.Equal(t, "Cannot delete author because it is referenced by books.", client.Message(err, ""))
	})
}

func TestCartAndWishlist(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.newClient(t)
	env.signIn(t, admin, "Admin", "admin@bookify.test", true)
	book := seedBook(t, admin, "Go Basics", 250, 3)

	user := env.newClient(t)
	env.signIn(t, user, "Alice", "alice@bookify.test", false)
	userID, err := user.EnsureUserID(ctx)
	require.NoError(t, err)

	item, err := user.AddToCart(ctx, userID, book.ID)
	require.NoError(t, err)
	assert.Equal(t, book.ID, item.Book.ID)

	_, err = user.AddToCart(ctx, userID, book.ID)
	require.Error(t, err)
	assert.Equal(t, client.KindConflict, client.Classify(err))
	assert.Equal(t, "Book already exists in cart", client.Message(err, ""))

	cart, err := user.GetCart(ctx, userID)
	require.NoError(t, err)
	require.Len(t, cart, 1)

	_, err = user.AddToWishlist(ctx, userID, book.ID)
	require.NoError(t, err)
	_, err = user.AddToWishlist(ctx, userID, book.ID)
	assert.Equal(t, client.KindConflict, client.Classify(err))

	name, err := user.GetUserName(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", name)

	carts, err := admin.ListAllCartItems(ctx)
	require.NoError(t, err)
	require.Len(t, carts, 1)
	require.NotNil(t, carts[0].User)
	assert.Equal(t, "alice@bookify.test", carts[0].User.Email)

	require.NoError(t, user.RemoveFromCart(ctx, userID, cart[0].ID))
	cart, err = user.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, cart)
}

func TestOrders(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.newClient(t)
	env.signIn(t, admin, "Admin", "admin@bookify.test", true)
	goBook := seedBook(t, admin, "Go Basics", 250, 3)
	rustBook := seedBook(t, admin, "Rust Basics", 100, 10)

	user := env.newClient(t)
	env.signIn(t, user, "Alice", "alice@bookify.test", false)
	userID, err := user.EnsureUserID(ctx)
	require.NoError(t, err)

	_, err = user.AddToCart(ctx, userID, goBook.ID)
	require.NoError(t, err)

	order := client.Order{
		UserName:    "Alice",
		OrderMode:   client.OrderModeCash,
		Address:     "1 Gopher Way",
		PhoneNumber: "9876543210",
		User:        &client.UserRef{ID: userID},
		Items: []client.OrderItem{
			{BookID: goBook.ID, Quantity: 2},
			{BookID: rustBook.ID, Quantity: 1},
		},
	}

	var placed *client.Order
	t.Run("Place", func(t *testing.T) {
		placed, err = user.PlaceOrder(ctx, order)
		require.NoError(t, err)
		assert.Equal(t, "Placed", placed.OrderStatus)
		assert.InDelta(t, 600, placed.Total, 0.001)
		require.Len(t, placed.Items, 2)
		assert.Equal(t, "Rob Go Basics", placed.Items[0].AuthorName)
		assert.InDelta(t, 500, placed.Items[0].Subtotal, 0.001)
		assert.WithinDuration(t, placed.CreatedAt.Add(72*time.Hour), placed.DeliveryDate.Time, time.Second)

		book, err := admin.GetBook(ctx, goBook.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, book.Quantity)

		cart, err := user.GetCart(ctx, userID)
		require.NoError(t, err)
		assert.Empty(t, cart)
	})

	t.Run("InsufficientStock", func(t *testing.T) {
		_, err := user.PlaceOrder(ctx, client.Order{
			UserName: "Alice", OrderMode: client.OrderModeCash, Address: "x", PhoneNumber: "9876543210",
			Items: []client.OrderItem{{BookID: goBook.ID, Quantity: 5}},
		})
		require.Error(t, err)
		assert.Equal(t, "Insufficient stock for book: Go Basics", client.Message(err, ""))
	})

	t.Run("Edit", func(t *testing.T) {
		edited, err := user.EditOrder(ctx, placed.ID, client.OrderUpdate{Address: "2 Gopher Way", DeliveryDate: "2031-01-05"})
		require.NoError(t, err)
		assert.Equal(t, "2 Gopher Way", edited.Address)
		assert.Equal(t, "Alice", edited.UserName)
		assert.Equal(t, 2031, edited.DeliveryDate.Year())
	})

	t.Run("Review", func(t *testing.T) {
		rating := 4.0
		item, err := user.AddReview(ctx, placed.ID, goBook.ID, client.ReviewInput{Rating: rating, Review: "Clear and short"})
		require.NoError(t, err)
		assert.Equal(t, "Clear and short", item.Review)

		book, err := admin.GetBook(ctx, goBook.ID)
		require.NoError(t, err)
		require.Len(t, book.Reviews, 1)
		assert.Equal(t, "Clear and short", book.Reviews[0].Comment)
	})

	t.Run("RemoveItem", func(t *testing.T) {
		msg, err := user.RemoveOrderItem(ctx, placed.ID, rustBook.ID)
		require.NoError(t, err)
		assert.NotEmpty(t, msg)

		orders, err := user.ListOrders(ctx, userID)
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.InDelta(t, 500, orders[0].Total, 0.001)

		book, err := admin.GetBook(ctx, rustBook.ID)
		require.NoError(t, err)
		assert.Equal(t, 10, book.Quantity)
	})

	t.Run("AdminStatus", func(t *testing.T) {
		_, err := admin.UpdateOrderStatus(ctx, placed.ID, "Teleported")
		require.Error(t, err)

		updated, err := admin.UpdateOrderStatus(ctx, placed.ID, "Delivered")
		require.NoError(t, err)
		assert.Equal(t, "Delivered", updated.OrderStatus)

		printed, err := user.PrintOrder(ctx, placed.ID)
		require.NoError(t, err)
		assert.Equal(t, placed.ID, printed.ID)
	})

	t.Run("Stats", func(t *testing.T) {
		stats, err := admin.OrderStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), stats.TodayCount)
		assert.Equal(t, int64(1), stats.TotalCount)
		assert.InDelta(t, 500, stats.TotalAmount, 0.001)
		assert.Len(t, stats.RecentOrders, 1)

		weekly, err := admin.WeeklyOrderStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), weekly.OrderCount)

		now := time.Now()
		ranged, err := admin.OrderStatsByRange(ctx, client.StatsRange{
			StartDate: client.DateTime{Time: now.Add(-time.Hour)},
			EndDate:   client.DateTime{Time: now.Add(time.Hour)},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), ranged.OrderCount)
	})

	t.Run("Remove", func(t *testing.T) {
		_, err := user.RemoveOrder(ctx, placed.ID)
		require.NoError(t, err)

		book, err := admin.GetBook(ctx, goBook.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, book.Quantity)

		orders, err := user.ListOrders(ctx, userID)
		require.NoError(t, err)
		assert.Empty(t, orders)
	})
}

func TestPaymentsAndReturns(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.newClient(t)
	env.signIn(t, admin, "Admin", "admin@bookify.test", true)
	book := seedBook(t, admin, "Go Basics", 250, 5)

	user := env.newClient(t)
	env.signIn(t, user, "Alice", "alice@bookify.test", false)
	userID, err := user.EnsureUserID(ctx)
	require.NoError(t, err)

	key, err := user.PaymentKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, "rzp_test_key", key)

	gw, err := user.CreateGatewayOrder(ctx, 525)
	require.NoError(t, err)
	assert.Equal(t, int64(52500), gw.Amount)
	assert.Equal(t, "INR", gw.Currency)
	assert.True(t, strings.HasPrefix(gw.Receipt, "txn_"))

	data := client.PaymentData{OrderID: gw.ID, PaymentID: "pay_test123"}

	t.Run("BadSignature", func(t *testing.T) {
		bad := data
		bad.Signature = "deadbeef"
		_, err := user.VerifyPayment(ctx, bad)
		require.Error(t, err)
		assert.Equal(t, "Invalid Razorpay payment signature.", client.Message(err, ""))
	})

	data.Signature = SignPayment(testKeySecret, data.OrderID, data.PaymentID)
	ok, err := user.VerifyPayment(ctx, data)
	require.NoError(t, err)
	require.True(t, ok)

	order, err := user.PlacePaidOrder(ctx, client.Order{
		UserName:    "Alice",
		OrderMode:   client.OrderModeUPI,
		Address:     "1 Gopher Way",
		PhoneNumber: "9876543210",
		User:        &client.UserRef{ID: userID},
		Items:       []client.OrderItem{{BookID: book.ID, Quantity: 2}},
	}, data)
	require.NoError(t, err)

	info, err := user.PaymentInfo(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "pay_test123", info.RazorpayPaymentID)

	var rr *client.ReturnRequest
	t.Run("CreateReturn", func(t *testing.T) {
		_, err := user.CreateReturnRequest(ctx, client.ReturnRequest{
			UserID: userID, OrderID: order.ID, BookID: 999, Quantity: 1, Type: client.ReturnTypeReturn, Reason: "Damaged",
		})
		require.Error(t, err)
		assert.Equal(t, "Book not found in order", client.Message(err, ""))

		_, err = user.CreateReturnRequest(ctx, client.ReturnRequest{
			UserID: userID, OrderID: order.ID, BookID: book.ID, Quantity: 3, Type: client.ReturnTypeReturn, Reason: "Damaged",
		})
		require.Error(t, err)
		assert.Equal(t, "Quantity cannot exceed ordered quantity (2)", client.Message(err, ""))

		rr, err = user.CreateReturnRequest(ctx, client.ReturnRequest{
			UserID: userID, OrderID: order.ID, BookID: book.ID, Quantity: 1, Type: client.ReturnTypeReturn, Reason: "Damaged",
		}, image("damage.jpg"))
		require.NoError(t, err)
		assert.Equal(t, client.ReturnStatusPending, rr.Status)
		assert.Equal(t, "Alice", rr.CustomerName)
		assert.Len(t, rr.ImageURLs, 1)

		_, err = user.CreateReturnRequest(ctx, client.ReturnRequest{
			UserID: userID, OrderID: order.ID, BookID: book.ID, Quantity: 1, Type: client.ReturnTypeReturn, Reason: "Again",
		})
		require.Error(t, err)
		assert.Contains(t, client.Message(err, ""), "already have an active")
	})

	t.Run("RefundBeforeApproval", func(t *testing.T) {
		_, err := admin.RefundReturnRequest(ctx, rr.ID)
		require.Error(t, err)
		assert.Equal(t, "Return must be approved before refunding.", client.Message(err, ""))
	})

	t.Run("Approve", func(t *testing.T) {
		approved, err := admin.UpdateReturnStatus(ctx, rr.ID, "approved")
		require.NoError(t, err)
		assert.Equal(t, client.ReturnStatusApproved, approved.Status)
		assert.False(t, approved.ProcessedDate.IsZero())

		orders, err := user.ListOrders(ctx, userID)
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, 1, orders[0].Items[0].Quantity)
		assert.InDelta(t, 250, orders[0].Total, 0.001)

		pending, err := admin.ListReturnRequestsByStatus(ctx, "approved")
		require.NoError(t, err)
		assert.Len(t, pending, 1)
	})

	t.Run("Refund", func(t *testing.T) {
		refund, err := admin.RefundReturnRequest(ctx, rr.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(25000), refund.Amount)
		assert.Equal(t, "pay_test123", refund.PaymentID)

		got, err := user.GetReturnRequest(ctx, rr.ID)
		require.NoError(t, err)
		assert.Equal(t, client.ReturnStatusRefunded, got.Status)
		require.NotNil(t, got.RefundedAmount)
		assert.InDelta(t, 250, *got.RefundedAmount, 0.001)
	})
}

func TestSignPayment(t *testing.T) {
	sig := SignPayment("secret", "order_1", "pay_1")
	assert.Len(t, sig, 64)
	assert.Equal(t, sig, SignPayment("secret", "order_1", "pay_1"))
	assert.NotEqual(t, sig, SignPayment("secret", "order_1", "pay_2"))
}
