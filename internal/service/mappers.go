package service

import (
	"encoding/json"
	"fmt"

	"github.com/dukerupert/mercato/internal/address"
	"github.com/dukerupert/mercato/internal/domain"
	"github.com/dukerupert/mercato/internal/repository"
)

func toCart(c repository.Cart) domain.Cart {
	return domain.Cart{
		ID:        c.ID,
		UserID:    c.UserID,
		Status:    domain.CartStatus(c.Status),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toCartItem(row repository.ListCartItemsRow) domain.CartItem {
	return domain.CartItem{
		ID:          row.ID,
		VariantID:   row.VariantID,
		SKU:         row.Sku,
		ProductName: row.ProductName,
		Quantity:    row.Quantity,
		UnitPrice:   row.UnitPrice,
		LineTotal:   domain.LineTotal(row.UnitPrice, row.Quantity),
		AddedAt:     row.AddedAt,
	}
}

func toOrder(o repository.Order) (domain.Order, error) {
	var shipping address.Address
	if len(o.ShippingAddress) > 0 {
		if err := json.Unmarshal(o.ShippingAddress, &shipping); err != nil {
			return domain.Order{}, fmt.Errorf("failed to decode shipping address of order %s: %w", uuidString(o.ID), err)
		}
	}
	return domain.Order{
		ID:              o.ID,
		UserID:          o.UserID,
		CartID:          o.CartID,
		Status:          domain.OrderStatus(o.Status),
		PlacedAt:        o.PlacedAt,
		Currency:        o.Currency,
		TotalAmount:     o.TotalAmount,
		ShippingAddress: shipping,
		UpdatedAt:       o.UpdatedAt,
	}, nil
}

func toOrderItems(items []repository.OrderItem) []domain.OrderItem {
	out := make([]domain.OrderItem, 0, len(items))
	for _, i := range items {
		out = append(out, domain.OrderItem{
			ID:          i.ID,
			OrderID:     i.OrderID,
			VariantID:   i.VariantID,
			ProductName: i.ProductName,
			SKU:         i.Sku,
			UnitPrice:   i.UnitPrice,
			Quantity:    i.Quantity,
			LineTotal:   i.LineTotal,
		})
	}
	return out
}

func toPayment(p repository.Payment) *domain.Payment {
	payment := &domain.Payment{
		ID:        p.ID,
		OrderID:   p.OrderID,
		Provider:  p.Provider,
		Amount:    p.Amount,
		Status:    domain.PaymentStatus(p.Status),
		TxnRef:    p.TxnRef.String,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.PaidAt.Valid {
		paidAt := p.PaidAt.Time
		payment.PaidAt = &paidAt
	}
	return payment
}

func toStockLevel(i repository.Inventory) *domain.StockLevel {
	return &domain.StockLevel{
		VariantID:    i.VariantID,
		QtyAvailable: i.QtyAvailable,
		UpdatedAt:    i.UpdatedAt,
	}
}

func toCategory(c repository.Category) *domain.Category {
	return &domain.Category{
		ID:       c.ID,
		ParentID: c.ParentID,
		Name:     c.Name,
		Slug:     c.Slug,
		IsActive: c.IsActive,
	}
}

func toProduct(p repository.Product) *domain.Product {
	return &domain.Product{
		ID:          p.ID,
		CategoryID:  p.CategoryID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		BasePrice:   p.BasePrice,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
	}
}

func toVariant(v repository.ProductVariant) (*domain.Variant, error) {
	attrs := map[string]string{}
	if len(v.Attrs) > 0 {
		if err := json.Unmarshal(v.Attrs, &attrs); err != nil {
			return nil, fmt.Errorf("failed to decode attrs of variant %s: %w", v.Sku, err)
		}
	}
	return &domain.Variant{
		ID:            v.ID,
		ProductID:     v.ProductID,
		SKU:           v.Sku,
		Attrs:         attrs,
		PriceOverride: v.PriceOverride,
	}, nil
}

func toUser(u repository.GetUserRow) *domain.User {
	return &domain.User{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Phone:     u.Phone,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

func toSavedAddress(a repository.Address) domain.SavedAddress {
	return domain.SavedAddress{
		ID:        a.ID,
		UserID:    a.UserID,
		Address:   toAddress(a),
		IsDefault: a.IsDefault,
		CreatedAt: a.CreatedAt,
	}
}

func toAddress(a repository.Address) address.Address {
	return address.Address{
		Label:         a.Label,
		RecipientName: a.RecipientName,
		Line1:         a.Line1,
		Line2:         a.Line2,
		City:          a.City,
		State:         a.State,
		PostalCode:    a.PostalCode,
		Country:       a.Country,
		Phone:         a.Phone,
	}
}

func toReview(r repository.Review) domain.Review {
	return domain.Review{
		ID:        r.ID,
		UserID:    r.UserID,
		ProductID: r.ProductID,
		Rating:    r.Rating,
		Title:     r.Title,
		Body:      r.Body,
		Status:    domain.ReviewStatus(r.Status),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
