package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/dvfens/ags/internal/cart"
	"github.com/dvfens/ags/internal/gift"
	"github.com/dvfens/ags/internal/statestore"
	"github.com/dvfens/ags/pkg/logger"
	"github.com/dvfens/ags/pkg/pricing"
)

// CartView is the cart as returned to the storefront. Totals are recomputed on every read.
type CartView struct {
	Items      []cart.Item    `json:"items"`
	Gift       gift.Options   `json:"gift"`
	Totals     pricing.Totals `json:"totals"`
	TotalItems int            `json:"totalItems"`
}

// CartService manages the per-session cart held in a state store.
type CartService interface {
	GetCart(ctx context.Context, sessionID string) (*CartView, error)
	GetState(ctx context.Context, sessionID string) (cart.State, error)
	AddItem(ctx context.Context, sessionID string, productID uint, quantity int) (*CartView, error)
	UpdateItem(ctx context.Context, sessionID string, productID uint, quantity int) (*CartView, error)
	RemoveItem(ctx context.Context, sessionID string, productID uint) (*CartView, error)
	Clear(ctx context.Context, sessionID string) error
	RemoveOrdered(ctx context.Context, sessionID string, ordered []cart.Item) error
	UpdateGift(ctx context.Context, sessionID string, update gift.Update) (*CartView, error)
	View(state cart.State) (*CartView, error)
}

type cartService struct {
	store   statestore.Store[cart.State]
	catalog CatalogService
	engine  *pricing.Engine
}

func NewCartService(store statestore.Store[cart.State], catalog CatalogService, engine *pricing.Engine) CartService {
	return &cartService{
		store:   store,
		catalog: catalog,
		engine:  engine,
	}
}

// GetState returns the session cart refreshed against the catalog.
func (s *cartService) GetState(ctx context.Context, sessionID string) (cart.State, error) {
	state, err := statestore.GetOr(ctx, s.store, sessionID, cart.New())
	if err != nil {
		return state, err
	}
	state, _, err = s.refresh(state)
	return state, err
}

func (s *cartService) GetCart(ctx context.Context, sessionID string) (*CartView, error) {
	state, err := s.GetState(ctx, sessionID)
	if err != nil {
		logger.Error("Failed to load cart", err, map[string]interface{}{
			"session_id": sessionID,
		})
		return nil, err
	}
	return s.View(state)
}

// View prices a cart state. Line prices and the wrap price come from the catalog.
func (s *cartService) View(state cart.State) (*CartView, error) {
	state, wrapPrice, err := s.refresh(state)
	if err != nil {
		return nil, err
	}
	items := state.Items
	if items == nil {
		items = []cart.Item{}
	}
	return &CartView{
		Items:      items,
		Gift:       state.Gift,
		Totals:     s.engine.ComputeTotals(state.Lines(), wrapPrice),
		TotalItems: state.TotalItems(),
	}, nil
}

// refresh copies current name, price and image onto each line and drops a selected
// wrap that left the catalog. Lines whose product is gone keep their stored values.
func (s *cartService) refresh(state cart.State) (cart.State, decimal.Decimal, error) {
	if len(state.Items) > 0 {
		ids := make([]uint, 0, len(state.Items))
		for _, it := range state.Items {
			ids = append(ids, it.ID)
		}
		products, err := s.catalog.GetProductsByIDs(ids)
		if err != nil {
			return state, decimal.Zero, err
		}
		current := make(map[uint]cart.Item, len(products))
		for id, p := range products {
			current[id] = cart.Item{ID: p.ID, Name: p.Name, Price: p.Price, Image: p.ImageURL}
		}
		state = state.Refresh(current)
	}

	if !state.Gift.IsGift || state.Gift.GiftWrapID == nil {
		return state, decimal.Zero, nil
	}
	wraps, err := s.catalog.ListGiftWraps()
	if err != nil {
		return state, decimal.Zero, err
	}
	catalog := make([]gift.Wrap, 0, len(wraps))
	for _, w := range wraps {
		catalog = append(catalog, gift.Wrap{ID: w.ID, Price: w.Price})
	}
	state.Gift = state.Gift.WithoutUnknownWrap(catalog)
	return state, state.Gift.WrapPrice(catalog), nil
}

func (s *cartService) update(ctx context.Context, sessionID string, fn func(cart.State) (cart.State, error)) (*CartView, error) {
	state, err := statestore.Update(ctx, s.store, sessionID, cart.New(), fn)
	if err != nil {
		return nil, err
	}
	return s.View(state)
}

// AddItem takes name, price and image from the catalog, never from the client.
func (s *cartService) AddItem(ctx context.Context, sessionID string, productID uint, quantity int) (*CartView, error) {
	product, err := s.catalog.GetProduct(productID)
	if err != nil {
		return nil, err
	}
	if !product.IsAvailable {
		logger.Warn("Attempt to add unavailable product to cart", map[string]interface{}{
			"session_id": sessionID,
			"product_id": productID,
		})
		return nil, ErrProductUnavailable
	}

	item := cart.Item{
		ID:    product.ID,
		Name:  product.Name,
		Price: product.Price,
		Image: product.ImageURL,
	}
	view, err := s.update(ctx, sessionID, func(st cart.State) (cart.State, error) {
		return st.AddItem(item, quantity), nil
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("Item added to cart", map[string]interface{}{
		"session_id":  sessionID,
		"product_id":  productID,
		"total_items": view.TotalItems,
	})
	return view, nil
}

// UpdateItem sets a quantity; zero or less removes the line.
func (s *cartService) UpdateItem(ctx context.Context, sessionID string, productID uint, quantity int) (*CartView, error) {
	return s.update(ctx, sessionID, func(st cart.State) (cart.State, error) {
		return st.UpdateQuantity(productID, quantity), nil
	})
}

func (s *cartService) RemoveItem(ctx context.Context, sessionID string, productID uint) (*CartView, error) {
	return s.update(ctx, sessionID, func(st cart.State) (cart.State, error) {
		return st.RemoveItem(productID), nil
	})
}

// Clear resets the cart and gift options. Listeners see an empty cart.
func (s *cartService) Clear(ctx context.Context, sessionID string) error {
	if err := s.store.Set(ctx, sessionID, cart.New()); err != nil {
		logger.Error("Failed to clear cart", err, map[string]interface{}{
			"session_id": sessionID,
		})
		return err
	}
	return nil
}

// RemoveOrdered takes the ordered quantities out of the cart and resets gift options.
// Anything added while the order was being placed stays.
func (s *cartService) RemoveOrdered(ctx context.Context, sessionID string, ordered []cart.Item) error {
	_, err := statestore.Update(ctx, s.store, sessionID, cart.New(), func(st cart.State) (cart.State, error) {
		return st.RemoveOrdered(ordered), nil
	})
	if err != nil {
		logger.Error("Failed to remove ordered items from cart", err, map[string]interface{}{
			"session_id": sessionID,
		})
	}
	return err
}

// UpdateGift applies a gift options change. Referenced wraps and occasions must exist.
func (s *cartService) UpdateGift(ctx context.Context, sessionID string, update gift.Update) (*CartView, error) {
	if update.GiftWrapID != nil && !update.ClearGiftWrap {
		if _, err := s.catalog.GetGiftWrap(*update.GiftWrapID); err != nil {
			return nil, err
		}
	}
	if update.OccasionID != nil && !update.ClearOccasion {
		if _, err := s.catalog.GetOccasion(*update.OccasionID); err != nil {
			return nil, err
		}
	}

	return s.update(ctx, sessionID, func(st cart.State) (cart.State, error) {
		opts, err := st.Gift.Apply(update)
		if err != nil {
			return st, err
		}
		return st.WithGift(opts), nil
	})
}
