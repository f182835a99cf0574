package service

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dvfens/ags/internal/app/model"
	"github.com/dvfens/ags/internal/app/repository"
	"github.com/dvfens/ags/internal/cart"
	"github.com/dvfens/ags/internal/db"
	"github.com/dvfens/ags/internal/statestore"
	"github.com/dvfens/ags/pkg/geocode"
	"github.com/dvfens/ags/pkg/mailer"
	"github.com/dvfens/ags/pkg/pricing"
)

type fakeMailer struct {
	mu      sync.Mutex
	enabled bool
	err     error
	sent    []mailer.Message
	onSend  func()
}

func (f *fakeMailer) Enabled() bool { return f.enabled }

func (f *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	if f.onSend != nil {
		f.onSend()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakeGeocoder struct {
	res *geocode.Result
	err error
}

func (f *fakeGeocoder) Reverse(_ context.Context, _, _ float64) (*geocode.Result, error) {
	return f.res, f.err
}

// storefront wires every service over one in-memory database.
type storefront struct {
	db       *gorm.DB
	user     *model.User
	roses    *model.Product // 100
	mug      *model.Product // 49.50
	retired  *model.Product // not available
	wraps    []model.GiftWrap
	mail     *fakeMailer
	geocoder *fakeGeocoder

	cartStore     *statestore.MemoryStore[cart.State]
	locationStore *statestore.MemoryStore[LocationState]

	catalog    CatalogService
	addresses  AddressService
	recipients RecipientService
	orders     OrderService
	carts      CartService
	locations  LocationService
	checkout   CheckoutService
}

func setupStorefront(t *testing.T) *storefront {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})
	require.NoError(t, db.SeedDefaults(testDB))

	s := &storefront{
		db:            testDB,
		mail:          &fakeMailer{enabled: true},
		geocoder:      &fakeGeocoder{},
		cartStore:     statestore.NewMemoryStore[cart.State](),
		locationStore: statestore.NewMemoryStore[LocationState](),
	}

	s.user = &model.User{Email: "buyer@example.com", PasswordHash: "h", Name: "Buyer", Phone: "9000000001"}
	require.NoError(t, testDB.Create(s.user).Error)

	s.roses = &model.Product{Name: "Red Roses", Price: decimal.NewFromInt(100), IsAvailable: true, ImageURL: "roses.jpg"}
	s.mug = &model.Product{Name: "Mug", Price: decimal.RequireFromString("49.50"), IsAvailable: true}
	s.retired = &model.Product{Name: "Old Candle", Price: decimal.NewFromInt(80), IsAvailable: true}
	for _, p := range []*model.Product{s.roses, s.mug, s.retired} {
		require.NoError(t, testDB.Create(p).Error)
	}
	require.NoError(t, testDB.Model(s.retired).Update("is_available", false).Error)
	s.retired.IsAvailable = false

	require.NoError(t, testDB.Order("id ASC").Find(&s.wraps).Error)

	productRepo := repository.NewProductRepository(testDB)
	giftRepo := repository.NewGiftRepository(testDB)
	addressRepo := repository.NewAddressRepository(testDB)
	recipientRepo := repository.NewRecipientRepository(testDB)
	engine := pricing.NewEngine(pricing.DefaultConfig())

	s.catalog = NewCatalogService(productRepo, repository.NewCategoryRepository(testDB), giftRepo)
	s.addresses = NewAddressService(addressRepo)
	s.recipients = NewRecipientService(recipientRepo)
	s.orders = NewOrderService(
		repository.NewOrderRepository(testDB),
		productRepo,
		addressRepo,
		recipientRepo,
		giftRepo,
		repository.NewUserRepository(testDB),
		engine,
		s.mail,
	)
	s.carts = NewCartService(s.cartStore, s.catalog, engine)
	s.locations = NewLocationService(s.locationStore, s.geocoder, s.addresses)
	s.checkout = NewCheckoutService(s.carts, s.locations, s.addresses, s.orders)
	return s
}

// wrapNamed returns a seeded gift wrap.
func (s *storefront) wrapNamed(t *testing.T, name string) model.GiftWrap {
	t.Helper()
	for _, w := range s.wraps {
		if w.Name == name {
			return w
		}
	}
	t.Fatalf("gift wrap %q not seeded", name)
	return model.GiftWrap{}
}

func (s *storefront) addAddress(t *testing.T, userID uint, street string, isDefault bool) *model.Address {
	t.Helper()
	address, err := s.addresses.CreateAddress(userID, CreateAddressInput{
		Street:    street,
		City:      "Bengaluru",
		State:     "Karnataka",
		Pincode:   "560001",
		Latitude:  12.97,
		Longitude: 77.59,
		IsDefault: isDefault,
	})
	require.NoError(t, err)
	return address
}

func (s *storefront) addRecipient(t *testing.T, userID uint) *model.Recipient {
	t.Helper()
	recipient, err := s.recipients.CreateRecipient(userID, "Asha", "9000000002", "asha@example.com")
	require.NoError(t, err)
	return recipient
}

func (s *storefront) otherUser(t *testing.T) *model.User {
	t.Helper()
	other := &model.User{Email: "other@example.com", PasswordHash: "h", Name: "Other", Phone: "9000000003"}
	require.NoError(t, s.db.Create(other).Error)
	return other
}

func uintPtr(v uint) *uint { return &v }

func boolPtr(v bool) *bool { return &v }

func strPtr(v string) *string { return &v }

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }
