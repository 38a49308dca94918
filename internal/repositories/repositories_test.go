package repositories_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"storefront/internal/apperrors"
	"storefront/internal/database/dbtest"
	"storefront/internal/models"
	"storefront/internal/repositories"
)

type repoSet struct {
	users       repositories.UserRepository
	products    repositories.ProductRepository
	carts       repositories.CartRepository
	checkouts   repositories.CheckoutRepository
	orders      repositories.OrderRepository
	subscribers repositories.SubscriberRepository
}

func gormRepos(t *testing.T) repoSet {
	db := dbtest.New(t)
	return repoSet{
		users:       repositories.NewGORMUserRepository(db),
		products:    repositories.NewGORMProductRepository(db),
		carts:       repositories.NewGORMCartRepository(db),
		checkouts:   repositories.NewGORMCheckoutRepository(db),
		orders:      repositories.NewGORMOrderRepository(db),
		subscribers: repositories.NewGORMSubscriberRepository(db),
	}
}

func memoryRepos(*testing.T) repoSet {
	orders := repositories.NewMemoryOrderRepository()
	carts := repositories.NewMemoryCartRepository()
	return repoSet{
		users:       repositories.NewMemoryUserRepository(),
		products:    repositories.NewMemoryProductRepository(),
		carts:       carts,
		checkouts:   repositories.NewMemoryCheckoutRepository(orders, carts),
		orders:      orders,
		subscribers: repositories.NewMemorySubscriberRepository(),
	}
}

// RepositorySuite runs the same behaviour checks against every backend.
type RepositorySuite struct {
	suite.Suite
	newRepos func(t *testing.T) repoSet
	r        repoSet
	ctx      context.Context
}

func (s *RepositorySuite) SetupTest() {
	s.r = s.newRepos(s.T())
	s.ctx = context.Background()
}

func TestGORMRepositories(t *testing.T) {
	suite.Run(t, &RepositorySuite{newRepos: gormRepos})
}

func TestMemoryRepositories(t *testing.T) {
	suite.Run(t, &RepositorySuite{newRepos: memoryRepos})
}

func (s *RepositorySuite) seedProducts() {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	products := []models.Product{
		{ID: "p1", Name: "Classic Tee", Description: "Cotton shirt", Price: 20, SKU: "SKU-1", Category: "Top Wear", Collections: "Summer", Material: "Cotton", Brand: "Acme", Gender: "Men", Sizes: []string{"S", "M"}, Colors: []string{"Red"}, Rating: 4.5},
		{ID: "p2", Name: "Slim Jeans", Description: "Denim 100%", Price: 60, SKU: "SKU-2", Category: "Bottom Wear", Collections: "Winter", Material: "Denim", Brand: "Blue Co", Gender: "Women", Sizes: []string{"M", "L"}, Colors: []string{"Blue"}, Rating: 4.8},
		{ID: "p3", Name: "Linen Shirt", Description: "Light summer TEE alternative", Price: 35, SKU: "SKU-3", Category: "Top Wear", Collections: "Summer", Material: "Linen", Brand: "Acme", Gender: "Men", Sizes: []string{"L"}, Colors: []string{"White", "Red"}, Rating: 4.8},
		{ID: "p4", Name: "Polo", Description: "Pique", Price: 25, SKU: "SKU-4", Category: "Top Wear", Collections: "Summer", Material: "Cotton", Brand: "Other", Gender: "Men", Sizes: []string{"XL"}, Colors: []string{"Dark Red"}, Rating: 3},
	}
	for i := range products {
		products[i].CreatedAt = base.Add(time.Duration(i) * time.Hour)
		s.Require().NoError(s.r.products.Create(s.ctx, &products[i]))
	}
}

func productIDs(products []models.Product) []string {
	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	return ids
}

func (s *RepositorySuite) TestUser_CreateAndLookup() {
	u := &models.User{Name: "Jane", Email: "Jane@Example.com", Password: "hash", Role: models.RoleCustomer}
	s.Require().NoError(s.r.users.Create(s.ctx, u))
	s.NotEmpty(u.ID)

	got, err := s.r.users.GetByEmail(s.ctx, "jane@example.com")
	s.Require().NoError(err)
	s.Equal(u.ID, got.ID)

	dup := &models.User{Name: "Other", Email: "jane@example.com", Password: "hash", Role: models.RoleCustomer}
	s.ErrorIs(s.r.users.Create(s.ctx, dup), apperrors.ErrConflict)

	got.Role = models.RoleAdmin
	s.Require().NoError(s.r.users.Update(s.ctx, got))
	reloaded, err := s.r.users.GetByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal(models.RoleAdmin, reloaded.Role)

	s.Require().NoError(s.r.users.Delete(s.ctx, u.ID))
	s.ErrorIs(s.r.users.Delete(s.ctx, u.ID), apperrors.ErrNotFound)
	_, err = s.r.users.GetByID(s.ctx, u.ID)
	s.ErrorIs(err, apperrors.ErrNotFound)
	s.ErrorIs(s.r.users.Update(s.ctx, got), apperrors.ErrNotFound)
}

func (s *RepositorySuite) TestProduct_Query() {
	s.seedProducts()
	minPrice := 25.0

	tests := []struct {
		name   string
		filter models.ProductFilter
		want   []string
	}{
		{"all", models.ProductFilter{}, []string{"p1", "p2", "p3", "p4"}},
		{"sizes any of", models.ProductFilter{Sizes: []string{"S", "XL"}}, []string{"p1", "p4"}},
		{"color is exact membership", models.ProductFilter{Color: "Red"}, []string{"p1", "p3"}},
		{"limit after list predicate", models.ProductFilter{Color: "Red", Limit: 1}, []string{"p1"}},
		{"materials and brand", models.ProductFilter{Materials: []string{"Cotton"}, Brands: []string{"Acme"}}, []string{"p1"}},
		{"search case insensitive", models.ProductFilter{Search: "tee"}, []string{"p1", "p3"}},
		{"search treats wildcard literally", models.ProductFilter{Search: "100%"}, []string{"p2"}},
		{"min price sorted desc", models.ProductFilter{MinPrice: &minPrice, SortBy: models.SortPriceDesc}, []string{"p2", "p3", "p4"}},
		{"sorted asc with limit", models.ProductFilter{SortBy: models.SortPriceAsc, Limit: 2}, []string{"p1", "p4"}},
		{"nothing matches", models.ProductFilter{Category: "Shoes"}, []string{}},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			got, err := s.r.products.Query(s.ctx, tt.filter)
			s.Require().NoError(err)
			s.Equal(tt.want, productIDs(got))
		})
	}
}

func (s *RepositorySuite) TestSubscriber_UniqueNormalizedEmail() {
	sub := &models.Subscriber{Email: "  News@Example.com "}
	s.Require().NoError(s.r.subscribers.Create(s.ctx, sub))
	s.NotEmpty(sub.ID)
	s.Equal("news@example.com", sub.Email)

	got, err := s.r.subscribers.GetByEmail(s.ctx, "NEWS@example.com")
	s.Require().NoError(err)
	s.Equal(sub.ID, got.ID)
	s.False(got.SubscribedAt.IsZero())

	s.ErrorIs(s.r.subscribers.Create(s.ctx, &models.Subscriber{Email: "news@EXAMPLE.com"}), apperrors.ErrConflict)

	_, err = s.r.subscribers.GetByEmail(s.ctx, "other@example.com")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *RepositorySuite) TestProduct_QuerySearchFoldsNonASCII() {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	products := []models.Product{
		{ID: "e1", Name: "ÉTÉ Dress", Description: "Light dress", Price: 40, SKU: "SKU-E1", Category: "Dresses"},
		{ID: "e2", Name: "Scarf", Description: "Pairs with any Été outfit", Price: 15, SKU: "SKU-E2", Category: "Accessories"},
		{ID: "e3", Name: "Wool Coat", Description: "Warm", Price: 90, SKU: "SKU-E3", Category: "Outerwear"},
	}
	for i := range products {
		products[i].CreatedAt = base.Add(time.Duration(i) * time.Hour)
		s.Require().NoError(s.r.products.Create(s.ctx, &products[i]))
	}

	tests := []struct {
		name   string
		filter models.ProductFilter
		want   []string
	}{
		{"lower case needle", models.ProductFilter{Search: "été"}, []string{"e1", "e2"}},
		{"upper case needle", models.ProductFilter{Search: "ÉTÉ"}, []string{"e1", "e2"}},
		{"limit applies after folding", models.ProductFilter{Search: "été", Limit: 1}, []string{"e1"}},
		{"ascii needle on mixed name", models.ProductFilter{Search: "DRESS"}, []string{"e1"}},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			got, err := s.r.products.Query(s.ctx, tt.filter)
			s.Require().NoError(err)
			s.Equal(tt.want, productIDs(got))
		})
	}
}

func (s *RepositorySuite) TestProduct_AuxiliaryQueries() {
	_, err := s.r.products.BestSeller(s.ctx)
	s.ErrorIs(err, apperrors.ErrNotFound)

	s.seedProducts()

	best, err := s.r.products.BestSeller(s.ctx)
	s.Require().NoError(err)
	s.Equal("p2", best.ID, "ties on rating go to the lowest id")

	arrivals, err := s.r.products.NewArrivals(s.ctx, 2)
	s.Require().NoError(err)
	s.Equal([]string{"p4", "p3"}, productIDs(arrivals))

	p1, err := s.r.products.GetByID(s.ctx, "p1")
	s.Require().NoError(err)
	similar, err := s.r.products.Similar(s.ctx, p1, 4)
	s.Require().NoError(err)
	s.Equal([]string{"p3", "p4"}, productIDs(similar))
}

func (s *RepositorySuite) TestProduct_UpdateAndDelete() {
	s.seedProducts()

	p, err := s.r.products.GetByID(s.ctx, "p1")
	s.Require().NoError(err)
	p.Price = 29.99
	p.IsFeatured = false
	s.Require().NoError(s.r.products.Update(s.ctx, p))

	got, err := s.r.products.GetByID(s.ctx, "p1")
	s.Require().NoError(err)
	s.Equal(29.99, got.Price)
	s.Equal("Classic Tee", got.Name)
	s.Equal([]string{"S", "M"}, got.Sizes)

	got.SKU = "SKU-2"
	s.ErrorIs(s.r.products.Update(s.ctx, got), apperrors.ErrConflict)

	s.ErrorIs(s.r.products.Update(s.ctx, &models.Product{ID: "missing", SKU: "X"}), apperrors.ErrNotFound)
	s.Require().NoError(s.r.products.Delete(s.ctx, "p1"))
	s.ErrorIs(s.r.products.Delete(s.ctx, "p1"), apperrors.ErrNotFound)

	all, err := s.r.products.List(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 3)
}

func (s *RepositorySuite) TestCart_Mutate() {
	owner := models.GuestOwner("guest-1")

	_, err := s.r.carts.Mutate(s.ctx, owner, false, func(*models.Cart) error { return nil })
	s.ErrorIs(err, apperrors.ErrNotFound)

	cart, err := s.r.carts.Mutate(s.ctx, owner, true, func(c *models.Cart) error {
		return c.AddItem(models.LineItem{ProductID: "p1", Name: "Tee", Price: 12.5, Size: "M"}, 2)
	})
	s.Require().NoError(err)
	s.Equal(25.0, cart.TotalPrice)
	s.Nil(cart.UserID)

	_, err = s.r.carts.Mutate(s.ctx, owner, true, func(c *models.Cart) error {
		return c.AddItem(models.LineItem{ProductID: "p1", Size: "M"}, -5)
	})
	s.ErrorIs(err, apperrors.ErrInvalidRequest)

	stored, err := s.r.carts.Get(s.ctx, owner)
	s.Require().NoError(err)
	s.Equal(25.0, stored.TotalPrice)
	s.Equal(2, stored.Products[0].Quantity)

	_, err = s.r.carts.Get(s.ctx, models.CartOwner{UserID: "u", GuestID: "g"})
	s.ErrorIs(err, apperrors.ErrInvalidRequest)
}

func (s *RepositorySuite) TestCart_MergeGuest() {
	add := func(owner models.CartOwner, id string, qty int) {
		_, err := s.r.carts.Mutate(s.ctx, owner, true, func(c *models.Cart) error {
			return c.AddItem(models.LineItem{ProductID: id, Name: id, Price: 10}, qty)
		})
		s.Require().NoError(err)
	}

	_, err := s.r.carts.MergeGuest(s.ctx, "g1", "u1")
	s.ErrorIs(err, apperrors.ErrNotFound)

	add(models.GuestOwner("g1"), "p1", 2)
	add(models.UserOwner("u1"), "p1", 1)
	add(models.UserOwner("u1"), "p2", 1)

	merged, err := s.r.carts.MergeGuest(s.ctx, "g1", "u1")
	s.Require().NoError(err)
	s.Equal(40.0, merged.TotalPrice)
	s.Equal("u1", *merged.UserID)

	_, err = s.r.carts.Get(s.ctx, models.GuestOwner("g1"))
	s.ErrorIs(err, apperrors.ErrNotFound)

	// without a user cart the guest cart is handed over
	add(models.GuestOwner("g2"), "p3", 1)
	handed, err := s.r.carts.MergeGuest(s.ctx, "g2", "u2")
	s.Require().NoError(err)
	s.Nil(handed.GuestID)
	s.Equal("u2", *handed.UserID)
	s.Equal(10.0, handed.TotalPrice)
}

func (s *RepositorySuite) TestCart_DeleteGuestCartsOlderThan() {
	for _, owner := range []models.CartOwner{models.GuestOwner("g1"), models.GuestOwner("g2"), models.UserOwner("u1")} {
		_, err := s.r.carts.Mutate(s.ctx, owner, true, func(c *models.Cart) error {
			return c.AddItem(models.LineItem{ProductID: "p1", Name: "Tee", Price: 1}, 1)
		})
		s.Require().NoError(err)
	}

	n, err := s.r.carts.DeleteGuestCartsOlderThan(s.ctx, time.Now().UTC().Add(-time.Hour))
	s.Require().NoError(err)
	s.Zero(n)

	n, err = s.r.carts.DeleteGuestCartsOlderThan(s.ctx, time.Now().UTC().Add(time.Hour))
	s.Require().NoError(err)
	s.Equal(int64(2), n)

	_, err = s.r.carts.Get(s.ctx, models.UserOwner("u1"))
	s.NoError(err)
	s.ErrorIs(s.r.carts.Delete(s.ctx, models.GuestOwner("g1")), apperrors.ErrNotFound)
}

func (s *RepositorySuite) newCheckout(userID string) *models.Checkout {
	c := models.NewCheckout(userID,
		[]models.LineItem{
			{ProductID: "p1", Name: "Tee", Price: 20, Quantity: 1},
			{ProductID: "p2", Name: "Jeans", Price: 30, Quantity: 1},
		},
		models.ShippingAddress{Address: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "US"},
		"PayPal", 50)
	s.Require().NoError(s.r.checkouts.Create(s.ctx, c))
	return c
}

func (s *RepositorySuite) TestCheckout_MarkPaid() {
	c := s.newCheckout("u1")
	at := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)

	_, err := s.r.checkouts.MarkPaid(s.ctx, "missing", models.PaymentPaid, nil, at)
	s.ErrorIs(err, apperrors.ErrNotFound)

	_, err = s.r.checkouts.MarkPaid(s.ctx, c.ID, models.PaymentPending, nil, at)
	s.ErrorIs(err, apperrors.ErrInvalidState)

	paid, err := s.r.checkouts.MarkPaid(s.ctx, c.ID, models.PaymentPaid, models.PaymentDetails{"id": "PAY-1"}, at)
	s.Require().NoError(err)
	s.True(paid.IsPaid)
	s.Equal(models.PaymentPaid, paid.PaymentStatus)

	again, err := s.r.checkouts.MarkPaid(s.ctx, c.ID, models.PaymentPaid, models.PaymentDetails{"id": "PAY-2"}, at.Add(time.Hour))
	s.Require().NoError(err)
	s.Equal("PAY-1", again.PaymentDetails["id"])
	s.True(again.PaidAt.Equal(at))
}

func (s *RepositorySuite) TestCheckout_Finalize() {
	_, err := s.r.carts.Mutate(s.ctx, models.UserOwner("u1"), true, func(c *models.Cart) error {
		return c.AddItem(models.LineItem{ProductID: "p1", Name: "Tee", Price: 20}, 1)
	})
	s.Require().NoError(err)
	_, err = s.r.carts.Mutate(s.ctx, models.UserOwner("u2"), true, func(c *models.Cart) error {
		return c.AddItem(models.LineItem{ProductID: "p1", Name: "Tee", Price: 20}, 1)
	})
	s.Require().NoError(err)

	c := s.newCheckout("u1")
	at := time.Now().UTC()

	_, err = s.r.checkouts.Finalize(s.ctx, "missing", at)
	s.ErrorIs(err, apperrors.ErrNotFound)

	_, err = s.r.checkouts.Finalize(s.ctx, c.ID, at)
	s.ErrorIs(err, apperrors.ErrNotPaid)

	_, err = s.r.checkouts.MarkPaid(s.ctx, c.ID, models.PaymentPaid, models.PaymentDetails{"id": "PAY-1"}, at)
	s.Require().NoError(err)

	order, err := s.r.checkouts.Finalize(s.ctx, c.ID, at)
	s.Require().NoError(err)
	s.Equal(c.ID, order.CheckoutID)
	s.Equal(50.0, order.TotalPrice)
	s.False(order.IsDelivered)
	s.Len(order.OrderItems, 2)

	_, err = s.r.checkouts.Finalize(s.ctx, c.ID, at)
	s.ErrorIs(err, apperrors.ErrAlreadyFinalized)

	stored, err := s.r.checkouts.GetByID(s.ctx, c.ID)
	s.Require().NoError(err)
	s.True(stored.IsFinalized)
	s.NotNil(stored.FinalizedAt)

	_, err = s.r.carts.Get(s.ctx, models.UserOwner("u1"))
	s.ErrorIs(err, apperrors.ErrNotFound)
	_, err = s.r.carts.Get(s.ctx, models.UserOwner("u2"))
	s.NoError(err, "other users' carts are untouched")

	orders, err := s.r.orders.GetAll(s.ctx)
	s.Require().NoError(err)
	s.Len(orders, 1)
}

func (s *RepositorySuite) TestCheckout_ConcurrentFinalizeCreatesOneOrder() {
	c := s.newCheckout("u1")
	_, err := s.r.checkouts.MarkPaid(s.ctx, c.ID, models.PaymentPaid, nil, time.Now())
	s.Require().NoError(err)

	const callers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		errs      []error
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.r.checkouts.Finalize(s.ctx, c.ID, time.Now().UTC())
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
				return
			}
			errs = append(errs, err)
		}()
	}
	wg.Wait()

	s.Equal(1, succeeded)
	for _, err := range errs {
		s.ErrorIs(err, apperrors.ErrAlreadyFinalized)
	}
	orders, err := s.r.orders.GetAll(s.ctx)
	s.Require().NoError(err)
	s.Len(orders, 1)
}

func (s *RepositorySuite) TestOrder_StatusAndListing() {
	first := s.newCheckout("u1")
	second := s.newCheckout("u1")
	other := s.newCheckout("u2")
	var ids []string
	for _, c := range []*models.Checkout{first, second, other} {
		_, err := s.r.checkouts.MarkPaid(s.ctx, c.ID, models.PaymentPaid, nil, time.Now())
		s.Require().NoError(err)
		o, err := s.r.checkouts.Finalize(s.ctx, c.ID, time.Now().UTC())
		s.Require().NoError(err)
		ids = append(ids, o.ID)
		time.Sleep(5 * time.Millisecond)
	}

	mine, err := s.r.orders.ListByUser(s.ctx, "u1")
	s.Require().NoError(err)
	s.Require().Len(mine, 2)
	s.Equal(ids[1], mine[0].ID, "newest first")

	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	updated, err := s.r.orders.UpdateStatus(s.ctx, ids[0], models.OrderDelivered, at)
	s.Require().NoError(err)
	s.True(updated.IsDelivered)
	s.Equal(models.OrderDelivered, updated.Status)

	reloaded, err := s.r.orders.GetByID(s.ctx, ids[0])
	s.Require().NoError(err)
	s.True(reloaded.IsDelivered)
	s.True(reloaded.DeliveredAt.Equal(at))

	_, err = s.r.orders.UpdateStatus(s.ctx, "missing", models.OrderShipped, at)
	s.ErrorIs(err, apperrors.ErrNotFound)

	s.Require().NoError(s.r.orders.Delete(s.ctx, ids[2]))
	s.ErrorIs(s.r.orders.Delete(s.ctx, ids[2]), apperrors.ErrNotFound)

	// checkouts are independent of their orders
	_, err = s.r.checkouts.GetByID(s.ctx, other.ID)
	s.NoError(err)
}
