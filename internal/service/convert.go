package service

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iablee/iablee/internal/domain"
	"github.com/iablee/iablee/internal/repository"
)

// pgUUID converts a uuid.UUID to its pgtype representation.
func pgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

// fromPgUUID converts a pgtype.UUID back to uuid.UUID. Invalid values map to
// the zero UUID.
func fromPgUUID(id pgtype.UUID) uuid.UUID {
	if !id.Valid {
		return uuid.Nil
	}
	return uuid.UUID(id.Bytes)
}

func pgText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

func pgTimePtr(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}

func timePtr(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

// mapPlanRow converts a catalog row, decoding the JSON feature and price-map
// columns.
func mapPlanRow(row repository.BillingPlan) (*domain.PlanDefinition, error) {
	plan := &domain.PlanDefinition{
		ID:          row.ID,
		Name:        row.Name,
		Currency:    row.Currency,
		AmountCents: row.AmountCents,
		Interval:    domain.PlanInterval(row.BillingInterval),
	}

	if len(row.Features) > 0 {
		if err := json.Unmarshal(row.Features, &plan.Features); err != nil {
			return nil, fmt.Errorf("decode plan %s features: %w", row.ID, err)
		}
	}

	if len(row.ProviderPriceIds) > 0 {
		prices := map[string]string{}
		if err := json.Unmarshal(row.ProviderPriceIds, &prices); err != nil {
			return nil, fmt.Errorf("decode plan %s price map: %w", row.ID, err)
		}
		plan.ProviderPriceMap = make(map[domain.Provider]string, len(prices))
		for provider, priceID := range prices {
			plan.ProviderPriceMap[domain.Provider(provider)] = priceID
		}
	}

	return plan, nil
}

func mapSubscriptionRow(row repository.BillingSubscription) *domain.Subscription {
	return &domain.Subscription{
		ID:                     fromPgUUID(row.ID),
		UserID:                 fromPgUUID(row.UserID),
		PlanID:                 row.PlanID,
		Status:                 domain.SubscriptionStatus(row.Status),
		Provider:               domain.Provider(row.Provider),
		ProviderSubscriptionID: row.ProviderSubscriptionID,
		ProviderCustomerID:     row.ProviderCustomerID.String,
		CurrentPeriodStart:     timePtr(row.CurrentPeriodStart),
		CurrentPeriodEnd:       timePtr(row.CurrentPeriodEnd),
		CancelAtPeriodEnd:      row.CancelAtPeriodEnd,
		CanceledAt:             timePtr(row.CanceledAt),
		CreatedAt:              row.CreatedAt.Time,
		UpdatedAt:              row.UpdatedAt.Time,
	}
}

func mapPaymentMethodRow(row repository.BillingPaymentMethod) *domain.PaymentMethod {
	return &domain.PaymentMethod{
		ID:                 fromPgUUID(row.ID),
		UserID:             fromPgUUID(row.UserID),
		Provider:           domain.Provider(row.Provider),
		ProviderCustomerID: row.ProviderCustomerID,
		Token:              row.ProviderPaymentMethodID,
		Brand:              row.Brand.String,
		Last4:              row.Last4.String,
		ExpMonth:           row.ExpMonth.Int32,
		ExpYear:            row.ExpYear.Int32,
		IsDefault:          row.IsDefault,
		CreatedAt:          row.CreatedAt.Time,
	}
}

func mapInvoiceRow(row repository.BillingInvoice) domain.Invoice {
	inv := domain.Invoice{
		ID:                fromPgUUID(row.ID),
		UserID:            fromPgUUID(row.UserID),
		Provider:          domain.Provider(row.Provider),
		ProviderInvoiceID: row.ProviderInvoiceID,
		AmountCents:       row.AmountCents,
		Currency:          row.Currency,
		Status:            domain.InvoiceStatus(row.Status),
		IssuedAt:          row.IssuedAt.Time,
		PaidAt:            timePtr(row.PaidAt),
	}
	if row.SubscriptionID.Valid {
		id := fromPgUUID(row.SubscriptionID)
		inv.SubscriptionID = &id
	}
	return inv
}
