package application

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	catalogdomain "github.com/Apurer/ventrest-api/internal/domains/catalog/domain"
	"github.com/Apurer/ventrest-api/internal/domains/orders/domain"
	"github.com/Apurer/ventrest-api/internal/domains/orders/ports"
	"github.com/Apurer/ventrest-api/internal/shared/auth"
)

var _ ports.Service = (*Service)(nil)

// Service implements order placement and the order lifecycle.
type Service struct {
	uow       ports.UnitOfWork
	repo      ports.Repository
	keys      ports.IdempotencyStore
	publisher ports.EventPublisher
	logger    *slog.Logger
	now       func() time.Time
	newID     func() uuid.UUID
}

// Option customises optional collaborators.
type Option func(*Service)

// WithPublisher enables order events.
func WithPublisher(p ports.EventPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithLogger sets the logger used for failures that do not fail the request.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides order ID generation for deterministic tests.
func WithIDGenerator(fn func() uuid.UUID) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewService wires the orders service. Stores usually share one backend.
func NewService(uow ports.UnitOfWork, repo ports.Repository, keys ports.IdempotencyStore, opts ...Option) *Service {
	s := &Service{
		uow:    uow,
		repo:   repo,
		keys:   keys,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
		newID:  uuid.New,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// PlaceOrders validates the cart, decrements stock and persists the orders in one unit.
// With an idempotency key a repeated request returns the orders of the first one.
func (s *Service) PlaceOrders(ctx context.Context, input ports.PlaceOrdersInput) ([]*ports.OrderProjection, error) {
	if !input.Caller.IsVendor() {
		return nil, fmt.Errorf("%w: only vendors can place orders", ErrForbidden)
	}
	if err := validateCart(input.Items); err != nil {
		return nil, mapError(err)
	}
	key := strings.TrimSpace(input.IdempotencyKey)
	var fingerprint string
	if key != "" {
		var err error
		if fingerprint, err = FingerprintPlaceOrders(input); err != nil {
			return nil, mapError(err)
		}
		replayed, err := s.replay(ctx, key, input.Caller.UserID, fingerprint)
		if err != nil || replayed != nil {
			return replayed, err
		}
	}

	var placed []*domain.Order
	err := s.uow.Do(ctx, func(ctx context.Context, tx ports.Tx) error {
		orders, err := s.buildOrders(ctx, tx, input)
		if err != nil {
			return err
		}
		ids := make([]uuid.UUID, 0, len(orders))
		for _, order := range orders {
			order.IdempotencyKey = key
			order.RequestFingerprint = fingerprint
			if err := tx.InsertOrder(ctx, order); err != nil {
				return err
			}
			ids = append(ids, order.ID)
		}
		if key != "" {
			record := ports.IdempotencyRecord{
				Key:         key,
				VendorID:    input.Caller.UserID,
				RequestHash: fingerprint,
				OrderIDs:    ids,
				CreatedAt:   s.now(),
			}
			if err := tx.ClaimIdempotencyKey(ctx, record); err != nil {
				return err
			}
		}
		placed = orders
		return nil
	})
	if errors.Is(err, ports.ErrKeyClaimed) {
		// A concurrent request with the same key committed first.
		replayed, rerr := s.replay(ctx, key, input.Caller.UserID, fingerprint)
		if rerr != nil {
			return nil, rerr
		}
		if replayed == nil {
			return nil, mapError(err)
		}
		return replayed, nil
	}
	if err != nil {
		return nil, mapError(err)
	}

	result := make([]*ports.OrderProjection, 0, len(placed))
	for _, order := range placed {
		saved, err := s.repo.GetByID(ctx, order.ID)
		if err != nil {
			return nil, mapError(err)
		}
		result = append(result, saved)
		s.publish(ctx, domain.NewOrderPlaced(saved.Entity, s.now()))
	}
	return result, nil
}

// Get returns an order to its vendor or its supplier.
func (s *Service) Get(ctx context.Context, caller auth.Identity, id uuid.UUID) (*ports.OrderProjection, error) {
	found, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	if !found.Entity.Involves(caller) {
		return nil, fmt.Errorf("%w: order belongs to another account", ErrForbidden)
	}
	return found, nil
}

// ListMine returns the calling vendor's orders, newest first.
func (s *Service) ListMine(ctx context.Context, caller auth.Identity) ([]*ports.OrderProjection, error) {
	if !caller.IsVendor() {
		return nil, fmt.Errorf("%w: only vendors have placed orders", ErrForbidden)
	}
	return s.repo.ListByVendor(ctx, caller.UserID)
}

// ListForSupplier returns the orders addressed to the calling supplier, newest first.
func (s *Service) ListForSupplier(ctx context.Context, caller auth.Identity) ([]*ports.OrderProjection, error) {
	if !caller.IsSupplier() {
		return nil, fmt.Errorf("%w: only suppliers receive orders", ErrForbidden)
	}
	return s.repo.ListBySupplier(ctx, caller.UserID)
}

// UpdateStatus applies one lifecycle transition with a compare-and-set on the previous status.
func (s *Service) UpdateStatus(ctx context.Context, caller auth.Identity, input ports.UpdateStatusInput) (*ports.OrderProjection, error) {
	next, err := domain.ParseStatus(input.Status)
	if err != nil {
		return nil, mapError(err)
	}
	found, err := s.Get(ctx, caller, input.OrderID)
	if err != nil {
		return nil, err
	}
	order := found.Entity
	from := order.Status
	if err := order.TransitionTo(caller.Role, next, s.now()); err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.UpdateStatus(ctx, order, from)
	if err != nil {
		return nil, mapError(err)
	}
	s.publish(ctx, domain.NewOrderStatusChanged(saved.Entity, from, s.now()))
	return saved, nil
}

// UpdatePayment changes the payment status. Only the supplier of the order may do so.
func (s *Service) UpdatePayment(ctx context.Context, caller auth.Identity, input ports.UpdatePaymentInput) (*ports.OrderProjection, error) {
	next, err := domain.ParsePaymentStatus(input.PaymentStatus)
	if err != nil {
		return nil, mapError(err)
	}
	found, err := s.Get(ctx, caller, input.OrderID)
	if err != nil {
		return nil, err
	}
	if !caller.IsSupplier() {
		return nil, fmt.Errorf("%w: only the supplier can change payment status", ErrForbidden)
	}
	order := found.Entity
	from := order.PaymentStatus
	if err := order.ChangePayment(next); err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.UpdatePayment(ctx, order, from)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

// Review attaches the vendor rating to a delivered order. A second review is rejected.
func (s *Service) Review(ctx context.Context, caller auth.Identity, input ports.ReviewInput) (*ports.OrderProjection, error) {
	if !caller.IsVendor() {
		return nil, mapError(domain.ErrReviewNotAllowed)
	}
	found, err := s.Get(ctx, caller, input.OrderID)
	if err != nil {
		return nil, err
	}
	order := found.Entity
	if err := order.AttachReview(input.Rating, input.Review); err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.SaveReview(ctx, order)
	if errors.Is(err, ports.ErrStaleOrder) {
		return nil, mapError(domain.ErrAlreadyReviewed)
	}
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

type supplierCart struct {
	supplierID uuid.UUID
	items      []domain.LineItem
}

// buildOrders locks every product, validates each line and decrements stock.
func (s *Service) buildOrders(ctx context.Context, tx ports.Tx, input ports.PlaceOrdersInput) ([]*domain.Order, error) {
	products, err := lockProducts(ctx, tx, input.Items)
	if err != nil {
		return nil, err
	}
	var carts []*supplierCart
	bySupplier := map[uuid.UUID]*supplierCart{}
	for _, line := range input.Items {
		product := products[line.ProductID]
		if err := checkLine(input, product, line.Quantity); err != nil {
			return nil, fmt.Errorf("product %q: %w", product.Name, err)
		}
		if err := tx.DecrementStock(ctx, product.ID, line.Quantity); err != nil {
			return nil, fmt.Errorf("product %q: %w", product.Name, err)
		}
		item, err := domain.NewLineItem(product.ID, product.Name, line.Quantity, product.Price)
		if err != nil {
			return nil, err
		}
		cart, ok := bySupplier[product.SupplierID]
		if !ok {
			cart = &supplierCart{supplierID: product.SupplierID}
			bySupplier[product.SupplierID] = cart
			carts = append(carts, cart)
		}
		cart.items = append(cart.items, item)
	}

	orders := make([]*domain.Order, 0, len(carts))
	for _, cart := range carts {
		order, err := domain.NewOrder(s.newID(), input.Caller.UserID, cart.supplierID, cart.items, input.DeliveryAddress)
		if err != nil {
			return nil, err
		}
		order.DeliveryInstructions = strings.TrimSpace(input.DeliveryInstructions)
		order.Notes = strings.TrimSpace(input.Notes)
		order.EstimatedDelivery = input.EstimatedDelivery
		orders = append(orders, order)
	}
	return orders, nil
}

// lockProducts takes row locks in ascending id order so concurrent carts cannot deadlock.
func lockProducts(ctx context.Context, tx ports.Tx, lines []ports.CartLine) (map[uuid.UUID]*catalogdomain.Product, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		if !slices.Contains(ids, line.ProductID) {
			ids = append(ids, line.ProductID)
		}
	}
	slices.SortFunc(ids, func(a, b uuid.UUID) int { return bytes.Compare(a[:], b[:]) })
	products := make(map[uuid.UUID]*catalogdomain.Product, len(ids))
	for _, id := range ids {
		product, err := tx.LockProduct(ctx, id)
		if err != nil {
			if errors.Is(err, ports.ErrProductNotFound) {
				return nil, fmt.Errorf("%w: %s", ports.ErrProductNotFound, id)
			}
			return nil, err
		}
		products[id] = product
	}
	return products, nil
}

func checkLine(input ports.PlaceOrdersInput, product *catalogdomain.Product, qty int) error {
	if !input.Checkout() && product.SupplierID != input.SupplierID {
		return domain.ErrSupplierMismatch
	}
	if !product.IsAvailable() {
		return domain.ErrProductUnavailable
	}
	if qty < product.MinOrderQuantity {
		return fmt.Errorf("%w (%d)", domain.ErrBelowMinimum, product.MinOrderQuantity)
	}
	return nil
}

func validateCart(items []ports.CartLine) error {
	if len(items) == 0 {
		return domain.ErrEmptyCart
	}
	for _, line := range items {
		if line.ProductID == uuid.Nil {
			return domain.ErrMissingProduct
		}
		if line.Quantity < 1 {
			return domain.ErrInvalidQuantity
		}
	}
	return nil
}

func (s *Service) replay(ctx context.Context, key string, vendorID uuid.UUID, fingerprint string) ([]*ports.OrderProjection, error) {
	record, err := s.keys.Get(ctx, key)
	if err != nil || record == nil {
		return nil, mapError(err)
	}
	if record.VendorID != vendorID || record.RequestHash != fingerprint {
		return nil, mapError(ErrIdempotencyConflict)
	}
	result := make([]*ports.OrderProjection, 0, len(record.OrderIDs))
	for _, id := range record.OrderIDs {
		found, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, mapError(err)
		}
		result = append(result, found)
	}
	return result, nil
}

func (s *Service) publish(ctx context.Context, event domain.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to publish order event",
			slog.String("event", event.EventName()),
			slog.String("order.id", event.AggregateID().String()),
			slog.String("error", err.Error()))
	}
}
