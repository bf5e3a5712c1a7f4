package shop

import (
	"context"
	"shoptogether/pkg/domain"
	"shoptogether/pkg/serrors"
	"shoptogether/pkg/storage"

	"github.com/go-faster/errors"
)

// ItemInput is one line of an order request.
type ItemInput struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// PlaceOrderInput is the payload to place an order. ForFamily books the order
// on the buyer's family so every member sees it.
type PlaceOrderInput struct {
	Items     []ItemInput `json:"items"`
	ForFamily bool        `json:"forFamily"`
}

type orderLine struct {
	id       domain.ProductID
	quantity int
}

// mergeItems validates the requested lines and merges repeated products,
// keeping the order of first appearance.
func mergeItems(items []ItemInput) ([]orderLine, error) {
	if len(items) == 0 {
		return nil, serrors.With(serrors.ErrBadRequest, "an order needs at least one item")
	}

	lines := make([]orderLine, 0, len(items))
	index := map[domain.ProductID]int{}
	for _, item := range items {
		id, err := domain.ParseProductID(item.ProductID)
		if err != nil {
			return nil, serrors.Wrap(serrors.ErrBadRequest, err, "invalid product id %q", item.ProductID)
		}
		if item.Quantity < 1 {
			return nil, serrors.With(serrors.ErrBadRequest, "quantity must be at least 1")
		}

		if i, ok := index[id]; ok {
			lines[i].quantity += item.Quantity

			continue
		}
		index[id] = len(lines)
		lines = append(lines, orderLine{id: id, quantity: item.Quantity})
	}

	return lines, nil
}

// PlaceOrder reserves stock, stores the order and queues its confirmation in a
// single transaction.
func (s *Service) PlaceOrder(ctx context.Context, userID domain.UserID, in PlaceOrderInput) (*domain.Order, error) {
	lines, err := mergeItems(in.Items)
	if err != nil {
		return nil, err
	}

	var order *domain.Order
	err = s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		buyer, err := tx.UserByID(ctx, userID)
		if err != nil {
			return errors.Wrap(err, "get user")
		}
		if buyer == nil {
			return serrors.With(serrors.ErrNotFound, "user not found")
		}
		if in.ForFamily && buyer.FamilyID == nil {
			return serrors.With(serrors.ErrBadRequest, "you do not belong to a family")
		}

		ids := make([]domain.ProductID, 0, len(lines))
		for _, l := range lines {
			ids = append(ids, l.id)
		}
		products, err := tx.ProductsByIDs(ctx, ids)
		if err != nil {
			return errors.Wrap(err, "get products")
		}
		byID := make(map[domain.ProductID]domain.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		items := make([]domain.OrderItem, 0, len(lines))
		for _, l := range lines {
			p, ok := byID[l.id]
			if !ok {
				return serrors.With(serrors.ErrNotFound, "product %s not found", l.id)
			}

			reserved, err := tx.AdjustStock(ctx, l.id, -l.quantity)
			if err != nil {
				return errors.Wrap(err, "reserve stock")
			}
			if !reserved {
				return serrors.With(serrors.ErrConflict, "insufficient stock for %s", p.Name)
			}

			items = append(items, domain.OrderItem{
				ProductID:      p.ID,
				Name:           p.Name,
				Quantity:       l.quantity,
				UnitPriceCents: p.PriceCents,
			})
		}

		newOrder := domain.Order{
			Number:     s.numbers.Next(),
			UserID:     userID,
			Items:      items,
			TotalCents: domain.Total(items),
			Status:     domain.OrderStatusPending,
		}
		if in.ForFamily {
			newOrder.FamilyID = buyer.FamilyID
		}

		if order, err = tx.StoreOrder(ctx, newOrder); err != nil {
			return errors.Wrap(err, "store order")
		}

		if _, err := tx.AddJob(ctx, ConfirmOrderArgs{
			OrderID:     order.ID.String(),
			maxAttempts: s.options.ConfirmMaxAttempts,
			delay:       s.options.ConfirmDelay,
		}, nil); err != nil {
			return errors.Wrap(err, "queue order confirmation")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

func (s *Service) ListOrders(ctx context.Context, userID domain.UserID) ([]domain.Order, error) {
	orders, err := s.storage.UserOrders(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}

	return orders, nil
}

func ownOrder(ctx context.Context, st storage.AllStorage, userID domain.UserID, id domain.OrderID) (*domain.Order, error) {
	o, err := st.OrderByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "get order")
	}
	// other users' orders are reported as missing
	if o == nil || o.UserID != userID {
		return nil, serrors.With(serrors.ErrNotFound, "order not found")
	}

	return o, nil
}

func (s *Service) GetOrder(ctx context.Context, userID domain.UserID, id domain.OrderID) (*domain.Order, error) {
	return ownOrder(ctx, s.storage, userID, id)
}

// CancelOrder cancels a pending order and puts its items back in stock.
func (s *Service) CancelOrder(ctx context.Context, userID domain.UserID, id domain.OrderID) (*domain.Order, error) {
	var cancelled *domain.Order
	err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		o, err := ownOrder(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		if o.Status != domain.OrderStatusPending {
			return serrors.With(serrors.ErrConflict, "only pending orders can be cancelled")
		}

		cancelled, err = tx.TransitionOrder(ctx, id, domain.OrderStatusPending, domain.OrderStatusCancelled)
		if err != nil {
			return errors.Wrap(err, "cancel order")
		}
		if cancelled == nil {
			return serrors.With(serrors.ErrConflict, "only pending orders can be cancelled")
		}

		for _, item := range o.Items {
			// a product deleted since then has no stock to restore
			if _, err := tx.AdjustStock(ctx, item.ProductID, item.Quantity); err != nil {
				return errors.Wrap(err, "restore stock")
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return cancelled, nil
}

func (s *Service) ConfirmOrder(ctx context.Context, id domain.OrderID) (*domain.Order, error) {
	o, err := s.storage.TransitionOrder(ctx, id, domain.OrderStatusPending, domain.OrderStatusConfirmed)
	if err != nil {
		return nil, errors.Wrap(err, "confirm order")
	}

	return o, nil
}
