package service

import (
	"context"
	"strconv"
	"strings"

	"cncraft/internal/cart"
	"cncraft/internal/cartstore"

	"go.uber.org/zap"
)

// CartState is what a cart mutation hands back to the web layer: the
// canonical cart plus the persistent-cookie value that must go out on the
// response so the two replicas stay in lockstep.
type CartState struct {
	Cart        cart.Cart
	CookieValue string
}

type CartService struct {
	store    *cartstore.Store
	catalog  cart.PriceResolver
	delivery cart.DeliveryConfig
	log      *zap.Logger
}

func NewCartService(store *cartstore.Store, catalog cart.PriceResolver, delivery cart.DeliveryConfig, log *zap.Logger) *CartService {
	return &CartService{
		store:    store,
		catalog:  catalog,
		delivery: delivery,
		log:      log,
	}
}

// ParseQuantity turns raw form input into a quantity. Anything that is not
// an integer is rejected as cart.ErrInvalidQuantity rather than crashing
// or defaulting.
func ParseQuantity(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, cart.ErrInvalidQuantity
	}
	return n, nil
}

// AddItem adds qty units of the product to the cart. The product must
// exist in the catalog; the quantity must be positive. On success both
// cart replicas are rewritten.
func (s *CartService) AddItem(ctx context.Context, sessionID, cookieValue, productID string, qty int) (*CartState, error) {
	if _, err := s.catalog.ResolvePrice(ctx, productID); err != nil {
		return nil, err
	}

	c, err := s.store.Load(ctx, sessionID, cookieValue)
	if err != nil {
		return nil, err
	}
	if _, err := c.Add(productID, qty); err != nil {
		return nil, err
	}
	return s.persist(ctx, sessionID, c)
}

// AdjustItem sets an existing line to exactly qty; qty <= 0 removes the
// line. Absent lines report cart.ErrItemNotFound.
func (s *CartService) AdjustItem(ctx context.Context, sessionID, cookieValue, productID string, qty int) (*CartState, error) {
	c, err := s.store.Load(ctx, sessionID, cookieValue)
	if err != nil {
		return nil, err
	}
	if err := c.Adjust(productID, qty); err != nil {
		return nil, err
	}
	return s.persist(ctx, sessionID, c)
}

func (s *CartService) RemoveItem(ctx context.Context, sessionID, cookieValue, productID string) (*CartState, error) {
	c, err := s.store.Load(ctx, sessionID, cookieValue)
	if err != nil {
		return nil, err
	}
	if err := c.Remove(productID); err != nil {
		return nil, err
	}
	return s.persist(ctx, sessionID, c)
}

// ClearCart empties both replicas unconditionally.
func (s *CartService) ClearCart(ctx context.Context, sessionID string) error {
	return s.store.Clear(ctx, sessionID)
}

// Count reports (total units, distinct lines) for the badge display.
func (s *CartService) Count(ctx context.Context, sessionID, cookieValue string) (int, int, error) {
	c, err := s.store.Load(ctx, sessionID, cookieValue)
	if err != nil {
		return 0, 0, err
	}
	productCount, lineCount := c.Count()
	return productCount, lineCount, nil
}

// Summary prices the cart. Lines whose product no longer resolves are
// skipped in the totals; when any were skipped the pruned cart is saved
// back, so stale lines heal out instead of lingering forever.
func (s *CartService) Summary(ctx context.Context, sessionID, cookieValue string) (*cart.Totals, *CartState, error) {
	c, err := s.store.Load(ctx, sessionID, cookieValue)
	if err != nil {
		return nil, nil, err
	}

	totals, err := cart.ComputeTotals(ctx, c, s.catalog, s.delivery)
	if err != nil {
		return nil, nil, err
	}

	priced := make(map[string]struct{}, len(totals.Lines))
	for _, line := range totals.Lines {
		priced[line.ProductID] = struct{}{}
	}
	if len(priced) == len(c) {
		return totals, nil, nil
	}

	healed := cart.Cart{}
	for id, e := range c {
		if _, ok := priced[id]; ok {
			healed[id] = e
		}
	}
	s.log.Info("dropping stale cart lines",
		zap.Int("before", len(c)),
		zap.Int("after", len(healed)),
	)
	state, err := s.persist(ctx, sessionID, healed)
	if err != nil {
		return nil, nil, err
	}
	return totals, state, nil
}

// MergeOnLogin folds the guest cookie cart into the freshly authenticated
// session. The caller must expire the cookie afterwards: post-merge the
// cart lives in the session only.
func (s *CartService) MergeOnLogin(ctx context.Context, sessionID, cookieValue string) (cart.Cart, error) {
	return s.store.MergeOnLogin(ctx, sessionID, cookieValue)
}

func (s *CartService) persist(ctx context.Context, sessionID string, c cart.Cart) (*CartState, error) {
	cookie, err := s.store.Save(ctx, sessionID, c)
	if err != nil {
		return nil, err
	}
	return &CartState{Cart: c, CookieValue: cookie}, nil
}
