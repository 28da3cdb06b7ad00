package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iablee/iablee/internal/billing"
	"github.com/iablee/iablee/internal/domain"
	"github.com/iablee/iablee/internal/repository"
	"github.com/iablee/iablee/internal/telemetry"
)

// BillingService implements domain.BillingService on top of a payment gateway
// registry and the repository.
//
// Provider-issued identifiers are the source of truth for subscription and
// invoice state: webhook events upsert by provider id, so deliveries can
// arrive duplicated or out of order without corrupting local rows.
type BillingService struct {
	repo     repository.Querier
	registry *billing.Registry
	logger   *slog.Logger
}

var _ domain.BillingService = (*BillingService)(nil)

// NewBillingService creates the billing orchestration service.
func NewBillingService(repo repository.Querier, registry *billing.Registry, logger *slog.Logger) *BillingService {
	return &BillingService{
		repo:     repo,
		registry: registry,
		logger:   logger.With(slog.String("service", "billing")),
	}
}

// =============================================================================
// Plan Catalog
// =============================================================================

// ListPlans returns the active plan catalog ordered by price.
func (s *BillingService) ListPlans(ctx context.Context) ([]domain.PlanDefinition, error) {
	const op = "billing.list_plans"

	rows, err := s.repo.ListActivePlans(ctx)
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to list plans")
	}

	plans := make([]domain.PlanDefinition, 0, len(rows))
	for _, row := range rows {
		plan, err := mapPlanRow(row)
		if err != nil {
			return nil, domain.WrapError(err, domain.EINTERNAL, op, "malformed plan row")
		}
		plans = append(plans, *plan)
	}
	return plans, nil
}

// GetPlan returns a single plan by id.
func (s *BillingService) GetPlan(ctx context.Context, planID string) (*domain.PlanDefinition, error) {
	const op = "billing.get_plan"

	row, err := s.repo.GetPlan(ctx, planID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound(op, "plan", planID)
		}
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to get plan")
	}

	plan, err := mapPlanRow(row)
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "malformed plan row")
	}
	return plan, nil
}

// =============================================================================
// Subscriptions
// =============================================================================

// GetSubscription returns the user's current subscription. Users without one
// get a synthetic free-plan subscription so callers never special-case the
// unsubscribed state.
func (s *BillingService) GetSubscription(ctx context.Context, userID uuid.UUID) (*domain.Subscription, error) {
	const op = "billing.get_subscription"

	row, err := s.repo.GetActiveSubscriptionForUser(ctx, pgUUID(userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &domain.Subscription{
				UserID: userID,
				PlanID: domain.FreePlanID,
				Status: domain.SubscriptionActive,
			}, nil
		}
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to get subscription")
	}

	return mapSubscriptionRow(row), nil
}

// CreateSubscription starts a paid subscription on the primary provider.
func (s *BillingService) CreateSubscription(ctx context.Context, params domain.CreateSubscriptionParams) (*domain.SubscriptionCheckout, error) {
	const op = "billing.create_subscription"

	// Step 1: Resolve and validate the plan
	plan, err := s.GetPlan(ctx, params.PlanID)
	if err != nil {
		return nil, err
	}
	if plan.AmountCents == 0 {
		return nil, domain.Invalid(op, "the free plan does not require a subscription")
	}

	// Step 2: Reject a second concurrent subscription
	existing, err := s.repo.GetActiveSubscriptionForUser(ctx, pgUUID(params.UserID))
	if err == nil && existing.ProviderSubscriptionID != "" {
		return nil, domain.Conflict(op, "an active subscription already exists")
	}
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to check existing subscription")
	}

	gateway, err := s.registry.Primary()
	if err != nil {
		return nil, domain.WrapError(err, domain.ECONFIG, op, "no billing provider configured")
	}

	// Step 3: Resolve the provider customer, reusing any stored reference
	customerID, err := s.getOrCreateCustomer(ctx, gateway, params.UserID, params.Email, params.Name)
	if err != nil {
		return nil, s.mapGatewayError(err, op)
	}

	// Step 4: Create the provider subscription
	result, err := gateway.CreateSubscription(ctx, billing.CreateSubscriptionParams{
		CustomerID:           customerID,
		Plan:                 plan,
		DefaultPaymentMethod: params.PaymentMethodToken,
		Metadata: map[string]string{
			"user_id": params.UserID.String(),
			"plan_id": plan.ID,
		},
	})
	if err != nil {
		return nil, s.mapGatewayError(err, op)
	}

	// Step 5: Persist the local row
	row, err := s.repo.CreateSubscription(ctx, repository.CreateSubscriptionParams{
		ID:                     pgUUID(uuid.New()),
		UserID:                 pgUUID(params.UserID),
		PlanID:                 plan.ID,
		Provider:               string(gateway.Name()),
		ProviderSubscriptionID: result.ProviderSubscriptionID,
		ProviderCustomerID:     pgText(result.ProviderCustomerID),
		Status:                 string(result.Status),
		CurrentPeriodStart:     pgTimePtr(result.CurrentPeriodStart),
		CurrentPeriodEnd:       pgTimePtr(result.CurrentPeriodEnd),
		CancelAtPeriodEnd:      result.CancelAtPeriodEnd,
	})
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to store subscription")
	}

	s.logger.InfoContext(ctx, "subscription created",
		slog.String("user_id", params.UserID.String()),
		slog.String("plan_id", plan.ID),
		slog.String("provider", string(gateway.Name())),
		slog.String("provider_subscription_id", result.ProviderSubscriptionID))

	return &domain.SubscriptionCheckout{
		Subscription: mapSubscriptionRow(row),
		ClientSecret: result.ClientSecret,
	}, nil
}

// ChangePlan switches the user's active subscription to a different plan.
func (s *BillingService) ChangePlan(ctx context.Context, userID uuid.UUID, planID string) (*domain.Subscription, error) {
	const op = "billing.change_plan"

	plan, err := s.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	row, err := s.repo.GetActiveSubscriptionForUser(ctx, pgUUID(userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound(op, "subscription", userID.String())
		}
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to get subscription")
	}
	if row.PlanID == plan.ID {
		return nil, domain.Invalid(op, "subscription is already on this plan")
	}

	gateway, err := s.registry.Gateway(domain.Provider(row.Provider))
	if err != nil {
		return nil, domain.WrapError(err, domain.ECONFIG, op, "billing provider not configured")
	}

	result, err := gateway.UpdateSubscription(ctx, billing.UpdateSubscriptionParams{
		ProviderSubscriptionID: row.ProviderSubscriptionID,
		Plan:                   plan,
	})
	if err != nil {
		return nil, s.mapGatewayError(err, op)
	}

	updated, err := s.repo.UpdateSubscriptionPlan(ctx, repository.UpdateSubscriptionPlanParams{
		ID:     row.ID,
		PlanID: plan.ID,
		Status: string(result.Status),
	})
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to store plan change")
	}

	s.logger.InfoContext(ctx, "subscription plan changed",
		slog.String("user_id", userID.String()),
		slog.String("plan_id", plan.ID))

	return mapSubscriptionRow(updated), nil
}

// CancelSubscription cancels at period end (default) or immediately.
func (s *BillingService) CancelSubscription(ctx context.Context, userID uuid.UUID, atPeriodEnd bool) (*domain.Subscription, error) {
	const op = "billing.cancel_subscription"

	row, err := s.repo.GetActiveSubscriptionForUser(ctx, pgUUID(userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound(op, "subscription", userID.String())
		}
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to get subscription")
	}

	gateway, err := s.registry.Gateway(domain.Provider(row.Provider))
	if err != nil {
		return nil, domain.WrapError(err, domain.ECONFIG, op, "billing provider not configured")
	}

	result, err := gateway.CancelSubscription(ctx, row.ProviderSubscriptionID, atPeriodEnd)
	if err != nil {
		return nil, s.mapGatewayError(err, op)
	}

	updated, err := s.repo.UpdateSubscriptionByProviderID(ctx, repository.UpdateSubscriptionByProviderIDParams{
		Provider:               row.Provider,
		ProviderSubscriptionID: row.ProviderSubscriptionID,
		Status:                 string(result.Status),
		CurrentPeriodStart:     pgTimePtr(result.CurrentPeriodStart),
		CurrentPeriodEnd:       pgTimePtr(result.CurrentPeriodEnd),
		CancelAtPeriodEnd:      result.CancelAtPeriodEnd,
		CanceledAt:             pgTimePtr(result.CanceledAt),
	})
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to store cancellation")
	}

	s.logger.InfoContext(ctx, "subscription canceled",
		slog.String("user_id", userID.String()),
		slog.Bool("at_period_end", atPeriodEnd))

	return mapSubscriptionRow(updated), nil
}

// ReactivateSubscription clears a pending at-period-end cancellation.
func (s *BillingService) ReactivateSubscription(ctx context.Context, userID uuid.UUID) (*domain.Subscription, error) {
	const op = "billing.reactivate_subscription"

	row, err := s.repo.GetActiveSubscriptionForUser(ctx, pgUUID(userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound(op, "subscription", userID.String())
		}
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to get subscription")
	}
	if !row.CancelAtPeriodEnd {
		return nil, domain.Invalid(op, "subscription is not scheduled for cancellation")
	}

	gateway, err := s.registry.Gateway(domain.Provider(row.Provider))
	if err != nil {
		return nil, domain.WrapError(err, domain.ECONFIG, op, "billing provider not configured")
	}

	result, err := gateway.ReactivateSubscription(ctx, row.ProviderSubscriptionID)
	if err != nil {
		return nil, s.mapGatewayError(err, op)
	}

	updated, err := s.repo.UpdateSubscriptionByProviderID(ctx, repository.UpdateSubscriptionByProviderIDParams{
		Provider:               row.Provider,
		ProviderSubscriptionID: row.ProviderSubscriptionID,
		Status:                 string(result.Status),
		CurrentPeriodStart:     pgTimePtr(result.CurrentPeriodStart),
		CurrentPeriodEnd:       pgTimePtr(result.CurrentPeriodEnd),
		CancelAtPeriodEnd:      false,
	})
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to store reactivation")
	}

	return mapSubscriptionRow(updated), nil
}

// =============================================================================
// Payment Methods
// =============================================================================

// AttachPaymentMethod stores a tokenized instrument against the user. The
// first stored method always becomes the default.
func (s *BillingService) AttachPaymentMethod(ctx context.Context, params domain.AttachPaymentMethodParams) (*domain.PaymentMethod, error) {
	const op = "billing.attach_payment_method"

	if params.Token == "" {
		return nil, domain.Invalid(op, "payment method token is required")
	}

	gateway, err := s.registry.Primary()
	if err != nil {
		return nil, domain.WrapError(err, domain.ECONFIG, op, "no billing provider configured")
	}
	provider := string(gateway.Name())

	customerID, err := s.getOrCreateCustomer(ctx, gateway, params.UserID, params.Email, params.Name)
	if err != nil {
		return nil, s.mapGatewayError(err, op)
	}

	attached, err := gateway.AttachPaymentMethod(ctx, customerID, params.Token)
	if err != nil {
		return nil, s.mapGatewayError(err, op)
	}

	makeDefault := params.MakeDefault
	if !makeDefault {
		defaults, err := s.repo.CountDefaultPaymentMethods(ctx, repository.CountDefaultPaymentMethodsParams{
			UserID:   pgUUID(params.UserID),
			Provider: provider,
		})
		if err != nil {
			return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to count default payment methods")
		}
		makeDefault = defaults == 0
	}

	if makeDefault {
		if err := gateway.SetDefaultPaymentMethod(ctx, customerID, params.Token); err != nil {
			return nil, s.mapGatewayError(err, op)
		}
		// Clear before set keeps the one-default invariant even if the
		// insert below fails.
		if err := s.repo.ClearDefaultPaymentMethods(ctx, repository.ClearDefaultPaymentMethodsParams{
			UserID:   pgUUID(params.UserID),
			Provider: provider,
		}); err != nil {
			return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to clear default payment methods")
		}
	}

	row, err := s.repo.CreatePaymentMethod(ctx, repository.CreatePaymentMethodParams{
		ID:                      pgUUID(uuid.New()),
		UserID:                  pgUUID(params.UserID),
		Provider:                provider,
		ProviderPaymentMethodID: attached.Token,
		ProviderCustomerID:      customerID,
		Brand:                   pgText(attached.Brand),
		Last4:                   pgText(attached.Last4),
		ExpMonth:                pgtype.Int4{Int32: attached.ExpMonth, Valid: attached.ExpMonth != 0},
		ExpYear:                 pgtype.Int4{Int32: attached.ExpYear, Valid: attached.ExpYear != 0},
		IsDefault:               makeDefault,
	})
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to store payment method")
	}

	s.logger.InfoContext(ctx, "payment method attached",
		slog.String("user_id", params.UserID.String()),
		slog.String("brand", attached.Brand),
		slog.Bool("default", makeDefault))

	return mapPaymentMethodRow(row), nil
}

// SetDefaultPaymentMethod marks one stored method as default, clearing any
// previous default first.
func (s *BillingService) SetDefaultPaymentMethod(ctx context.Context, userID, paymentMethodID uuid.UUID) error {
	const op = "billing.set_default_payment_method"

	row, err := s.repo.GetPaymentMethodByIDAndUser(ctx, repository.GetPaymentMethodByIDAndUserParams{
		ID:     pgUUID(paymentMethodID),
		UserID: pgUUID(userID),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.NotFound(op, "payment method", paymentMethodID.String())
		}
		return domain.WrapError(err, domain.EINTERNAL, op, "failed to get payment method")
	}

	gateway, err := s.registry.Gateway(domain.Provider(row.Provider))
	if err != nil {
		return domain.WrapError(err, domain.ECONFIG, op, "billing provider not configured")
	}

	if err := gateway.SetDefaultPaymentMethod(ctx, row.ProviderCustomerID, row.ProviderPaymentMethodID); err != nil {
		return s.mapGatewayError(err, op)
	}

	// Clear-then-set so at most one default survives any partial failure.
	if err := s.repo.ClearDefaultPaymentMethods(ctx, repository.ClearDefaultPaymentMethodsParams{
		UserID:   pgUUID(userID),
		Provider: row.Provider,
	}); err != nil {
		return domain.WrapError(err, domain.EINTERNAL, op, "failed to clear default payment methods")
	}
	if _, err := s.repo.SetDefaultPaymentMethod(ctx, repository.SetDefaultPaymentMethodParams{
		ID:     pgUUID(paymentMethodID),
		UserID: pgUUID(userID),
	}); err != nil {
		return domain.WrapError(err, domain.EINTERNAL, op, "failed to set default payment method")
	}

	return nil
}

// DetachPaymentMethod removes a stored instrument. The default method backing
// an active subscription cannot be detached.
func (s *BillingService) DetachPaymentMethod(ctx context.Context, userID, paymentMethodID uuid.UUID) error {
	const op = "billing.detach_payment_method"

	row, err := s.repo.GetPaymentMethodByIDAndUser(ctx, repository.GetPaymentMethodByIDAndUserParams{
		ID:     pgUUID(paymentMethodID),
		UserID: pgUUID(userID),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.NotFound(op, "payment method", paymentMethodID.String())
		}
		return domain.WrapError(err, domain.EINTERNAL, op, "failed to get payment method")
	}

	if row.IsDefault {
		sub, err := s.repo.GetActiveSubscriptionForUser(ctx, pgUUID(userID))
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return domain.WrapError(err, domain.EINTERNAL, op, "failed to check subscription")
		}
		if err == nil && domain.SubscriptionStatus(sub.Status).IsActive() {
			return domain.Conflict(op, "cannot detach the default payment method of an active subscription")
		}
	}

	gateway, err := s.registry.Gateway(domain.Provider(row.Provider))
	if err != nil {
		return domain.WrapError(err, domain.ECONFIG, op, "billing provider not configured")
	}
	if err := gateway.DetachPaymentMethod(ctx, row.ProviderPaymentMethodID); err != nil {
		return s.mapGatewayError(err, op)
	}

	deleted, err := s.repo.DeletePaymentMethod(ctx, repository.DeletePaymentMethodParams{
		ID:     pgUUID(paymentMethodID),
		UserID: pgUUID(userID),
	})
	if err != nil {
		return domain.WrapError(err, domain.EINTERNAL, op, "failed to delete payment method")
	}
	if deleted == 0 {
		return domain.NotFound(op, "payment method", paymentMethodID.String())
	}

	return nil
}

// ListPaymentMethods returns the user's stored methods for the primary
// provider, default first.
func (s *BillingService) ListPaymentMethods(ctx context.Context, userID uuid.UUID) ([]domain.PaymentMethod, error) {
	const op = "billing.list_payment_methods"

	rows, err := s.repo.ListPaymentMethodsForUser(ctx, repository.ListPaymentMethodsForUserParams{
		UserID:   pgUUID(userID),
		Provider: string(s.registry.PrimaryProvider()),
	})
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to list payment methods")
	}

	methods := make([]domain.PaymentMethod, len(rows))
	for i, row := range rows {
		methods[i] = *mapPaymentMethodRow(row)
	}
	return methods, nil
}

// =============================================================================
// Invoices
// =============================================================================

// ListInvoices returns the user's invoices, newest first.
func (s *BillingService) ListInvoices(ctx context.Context, userID uuid.UUID, limit int32) ([]domain.Invoice, error) {
	const op = "billing.list_invoices"

	if limit <= 0 {
		limit = 24
	}

	rows, err := s.repo.ListInvoicesForUser(ctx, repository.ListInvoicesForUserParams{
		UserID: pgUUID(userID),
		Limit:  limit,
	})
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to list invoices")
	}

	invoices := make([]domain.Invoice, len(rows))
	for i, row := range rows {
		invoices[i] = mapInvoiceRow(row)
	}
	return invoices, nil
}

// =============================================================================
// Hosted Sessions
// =============================================================================

// CreateCheckoutSession builds a provider-hosted checkout for the plan.
func (s *BillingService) CreateCheckoutSession(ctx context.Context, params domain.CheckoutParams) (*domain.CheckoutIntent, error) {
	const op = "billing.create_checkout_session"

	plan, err := s.GetPlan(ctx, params.PlanID)
	if err != nil {
		return nil, err
	}
	if plan.AmountCents == 0 {
		return nil, domain.Invalid(op, "the free plan does not require checkout")
	}

	gateway, err := s.registry.Primary()
	if err != nil {
		return nil, domain.WrapError(err, domain.ECONFIG, op, "no billing provider configured")
	}

	session, err := gateway.CreateCheckoutSession(ctx, billing.CheckoutSessionParams{
		Plan:       plan,
		BuyerEmail: params.Email,
		BuyerName:  params.Name,
		UserID:     params.UserID.String(),
		SuccessURL: params.SuccessURL,
		CancelURL:  params.CancelURL,
	})
	if err != nil {
		return nil, s.mapGatewayError(err, op)
	}

	return &domain.CheckoutIntent{
		SessionID:   session.ID,
		RedirectURL: session.URL,
		FormAction:  session.FormAction,
		FormFields:  session.FormFields,
	}, nil
}

// CreatePortalSession builds a provider-hosted billing portal session.
func (s *BillingService) CreatePortalSession(ctx context.Context, userID uuid.UUID, returnURL string) (string, error) {
	const op = "billing.create_portal_session"

	gateway, err := s.registry.Primary()
	if err != nil {
		return "", domain.WrapError(err, domain.ECONFIG, op, "no billing provider configured")
	}

	customerID, err := s.repo.GetProviderCustomerIDForUser(ctx, repository.GetProviderCustomerIDForUserParams{
		UserID:   pgUUID(userID),
		Provider: string(gateway.Name()),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.NotFound(op, "billing profile", userID.String())
		}
		return "", domain.WrapError(err, domain.EINTERNAL, op, "failed to resolve customer")
	}

	session, err := gateway.CreatePortalSession(ctx, customerID, returnURL)
	if err != nil {
		return "", s.mapGatewayError(err, op)
	}
	return session.URL, nil
}

// =============================================================================
// Webhook Event Application
// =============================================================================

// HandleWebhookEvent records the event in the append-only audit log and
// applies it. The audit insert doubles as the idempotency gate: a duplicate
// (provider, provider_event_id) inserts zero rows and the event is
// acknowledged without reprocessing.
func (s *BillingService) HandleWebhookEvent(ctx context.Context, event *domain.NormalizedEvent) error {
	const op = "billing.handle_webhook_event"

	if event == nil {
		return nil
	}

	inserted, err := s.repo.InsertWebhookEvent(ctx, repository.InsertWebhookEventParams{
		ID:              pgUUID(uuid.New()),
		Provider:        string(event.Provider),
		ProviderEventID: event.ID,
		EventType:       string(event.Type),
		Payload:         event.Raw,
	})
	if err != nil {
		return domain.WrapError(err, domain.EINTERNAL, op, "failed to record webhook event")
	}
	if inserted == 0 {
		s.logger.InfoContext(ctx, "duplicate webhook event acknowledged",
			slog.String("provider", string(event.Provider)),
			slog.String("event_id", event.ID))
		return nil
	}

	switch event.Type {
	case domain.EventSubscriptionCreated, domain.EventSubscriptionUpdated, domain.EventSubscriptionCanceled:
		return s.applySubscriptionEvent(ctx, event)
	case domain.EventInvoicePaid, domain.EventInvoicePaymentFailed:
		return s.applyInvoiceEvent(ctx, event)
	case domain.EventPaymentMethodDetached:
		return s.applyPaymentMethodDetached(ctx, event)
	default:
		// Attach and customer events carry nothing the attach flow has not
		// already stored.
		s.logger.DebugContext(ctx, "webhook event recorded without side effects",
			slog.String("type", string(event.Type)))
		return nil
	}
}

func (s *BillingService) applySubscriptionEvent(ctx context.Context, event *domain.NormalizedEvent) error {
	const op = "billing.apply_subscription_event"

	data, ok := event.SubscriptionData()
	if !ok {
		return domain.Errorf(domain.EINTERNAL, op, "event %s carries no subscription data", event.ID)
	}

	existing, err := s.repo.GetSubscriptionByProviderID(ctx, repository.GetSubscriptionByProviderIDParams{
		Provider:               string(event.Provider),
		ProviderSubscriptionID: data.ProviderSubscriptionID,
	})
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return domain.WrapError(err, domain.EINTERNAL, op, "failed to get subscription")
	}

	if err == nil {
		current := domain.SubscriptionStatus(existing.Status)
		if !current.CanTransitionTo(data.Status) {
			s.logger.WarnContext(ctx, "ignoring disallowed subscription status transition",
				slog.String("provider_subscription_id", data.ProviderSubscriptionID),
				slog.String("from", string(current)),
				slog.String("to", string(data.Status)))
			return nil
		}

		if _, err := s.repo.UpdateSubscriptionByProviderID(ctx, repository.UpdateSubscriptionByProviderIDParams{
			Provider:               string(event.Provider),
			ProviderSubscriptionID: data.ProviderSubscriptionID,
			Status:                 string(data.Status),
			CurrentPeriodStart:     pgTimePtr(data.CurrentPeriodStart),
			CurrentPeriodEnd:       pgTimePtr(data.CurrentPeriodEnd),
			CancelAtPeriodEnd:      data.CancelAtPeriodEnd,
			CanceledAt:             pgTimePtr(data.CanceledAt),
		}); err != nil {
			return domain.WrapError(err, domain.EINTERNAL, op, "failed to update subscription")
		}

		if data.PlanID != "" && data.PlanID != existing.PlanID {
			if _, err := s.repo.UpdateSubscriptionPlan(ctx, repository.UpdateSubscriptionPlanParams{
				ID:     existing.ID,
				PlanID: data.PlanID,
				Status: string(data.Status),
			}); err != nil {
				return domain.WrapError(err, domain.EINTERNAL, op, "failed to update subscription plan")
			}
		}
		return nil
	}

	// First sight of this provider subscription: attribute it to a local
	// user via the stored customer reference or the echoed-back user id.
	// Events attributable to neither are acknowledged and dropped.
	userID, resolveErr := s.resolveUser(ctx, event.Provider, data.ProviderCustomerID, data.UserID)
	if resolveErr != nil {
		s.logger.WarnContext(ctx, "webhook subscription has no local user, skipping",
			slog.String("provider_subscription_id", data.ProviderSubscriptionID),
			slog.String("provider_customer_id", data.ProviderCustomerID))
		return nil
	}

	planID := data.PlanID
	if planID == "" {
		s.logger.WarnContext(ctx, "webhook subscription carries no plan id, skipping insert",
			slog.String("provider_subscription_id", data.ProviderSubscriptionID))
		return nil
	}

	if _, err := s.repo.UpsertSubscriptionByProviderID(ctx, repository.UpsertSubscriptionByProviderIDParams{
		ID:                     pgUUID(uuid.New()),
		UserID:                 userID,
		PlanID:                 planID,
		Provider:               string(event.Provider),
		ProviderSubscriptionID: data.ProviderSubscriptionID,
		ProviderCustomerID:     pgText(data.ProviderCustomerID),
		Status:                 string(data.Status),
		CurrentPeriodStart:     pgTimePtr(data.CurrentPeriodStart),
		CurrentPeriodEnd:       pgTimePtr(data.CurrentPeriodEnd),
		CancelAtPeriodEnd:      data.CancelAtPeriodEnd,
		CanceledAt:             pgTimePtr(data.CanceledAt),
	}); err != nil {
		return domain.WrapError(err, domain.EINTERNAL, op, "failed to upsert subscription")
	}
	return nil
}

func (s *BillingService) applyInvoiceEvent(ctx context.Context, event *domain.NormalizedEvent) error {
	const op = "billing.apply_invoice_event"

	data, ok := event.InvoiceData()
	if !ok {
		return domain.Errorf(domain.EINTERNAL, op, "event %s carries no invoice data", event.ID)
	}

	var (
		userID         pgtype.UUID
		subscriptionID pgtype.UUID
	)

	sub, err := s.repo.GetSubscriptionByProviderID(ctx, repository.GetSubscriptionByProviderIDParams{
		Provider:               string(event.Provider),
		ProviderSubscriptionID: data.ProviderSubscriptionID,
	})
	switch {
	case err == nil:
		userID = sub.UserID
		subscriptionID = sub.ID
	case errors.Is(err, pgx.ErrNoRows):
		userID, err = s.resolveUser(ctx, event.Provider, data.ProviderCustomerID, data.UserID)
		if err != nil {
			s.logger.WarnContext(ctx, "webhook invoice has no local user, skipping",
				slog.String("provider_invoice_id", data.ProviderInvoiceID))
			return nil
		}
	default:
		return domain.WrapError(err, domain.EINTERNAL, op, "failed to resolve subscription")
	}

	if _, err := s.repo.UpsertInvoiceByProviderID(ctx, repository.UpsertInvoiceByProviderIDParams{
		ID:                     pgUUID(uuid.New()),
		UserID:                 userID,
		SubscriptionID:         subscriptionID,
		Provider:               string(event.Provider),
		ProviderInvoiceID:      data.ProviderInvoiceID,
		ProviderCustomerID:     pgText(data.ProviderCustomerID),
		ProviderSubscriptionID: pgText(data.ProviderSubscriptionID),
		AmountCents:            data.AmountCents,
		Currency:               data.Currency,
		Status:                 string(data.Status),
		IssuedAt:               pgtype.Timestamptz{Time: event.OccurredAt, Valid: true},
		PaidAt:                 pgTimePtr(data.PaidAt),
	}); err != nil {
		return domain.WrapError(err, domain.EINTERNAL, op, "failed to upsert invoice")
	}

	if telemetry.Business != nil {
		switch event.Type {
		case domain.EventInvoicePaid:
			telemetry.Business.PaymentSucceeded.WithLabelValues(string(event.Provider)).Inc()
			telemetry.Business.RevenueCollected.
				WithLabelValues(string(event.Provider), data.Currency).
				Add(float64(data.AmountCents))
		case domain.EventInvoicePaymentFailed:
			telemetry.Business.PaymentFailed.WithLabelValues(string(event.Provider)).Inc()
		}
	}

	// Payment outcomes move the backing subscription when the state machine
	// allows it: paid activates, failed marks past due.
	if subscriptionID.Valid {
		current := domain.SubscriptionStatus(sub.Status)
		var next domain.SubscriptionStatus
		switch event.Type {
		case domain.EventInvoicePaid:
			next = domain.SubscriptionActive
		case domain.EventInvoicePaymentFailed:
			next = domain.SubscriptionPastDue
		}
		if next != "" && next != current && current.CanTransitionTo(next) {
			if _, err := s.repo.UpdateSubscriptionByProviderID(ctx, repository.UpdateSubscriptionByProviderIDParams{
				Provider:               string(event.Provider),
				ProviderSubscriptionID: sub.ProviderSubscriptionID,
				Status:                 string(next),
				CancelAtPeriodEnd:      sub.CancelAtPeriodEnd,
				CanceledAt:             sub.CanceledAt,
			}); err != nil {
				return domain.WrapError(err, domain.EINTERNAL, op, "failed to update subscription status")
			}
		}
	}

	return nil
}

func (s *BillingService) applyPaymentMethodDetached(ctx context.Context, event *domain.NormalizedEvent) error {
	const op = "billing.apply_payment_method_detached"

	data, ok := event.Data.(domain.PaymentMethodEventData)
	if !ok {
		return domain.Errorf(domain.EINTERNAL, op, "event %s carries no payment method data", event.ID)
	}

	row, err := s.repo.GetPaymentMethodByProviderID(ctx, repository.GetPaymentMethodByProviderIDParams{
		Provider:                string(event.Provider),
		ProviderPaymentMethodID: data.ProviderPaymentMethodID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return domain.WrapError(err, domain.EINTERNAL, op, "failed to get payment method")
	}

	if _, err := s.repo.DeletePaymentMethod(ctx, repository.DeletePaymentMethodParams{
		ID:     row.ID,
		UserID: row.UserID,
	}); err != nil {
		return domain.WrapError(err, domain.EINTERNAL, op, "failed to delete payment method")
	}
	return nil
}

// =============================================================================
// Helpers
// =============================================================================

// getOrCreateCustomer reuses the provider customer reference already stored
// with the user's payment methods, falling back to the gateway's own
// email-based get-or-create.
func (s *BillingService) getOrCreateCustomer(ctx context.Context, gateway billing.Gateway, userID uuid.UUID, email, name string) (string, error) {
	stored, err := s.repo.GetProviderCustomerIDForUser(ctx, repository.GetProviderCustomerIDForUserParams{
		UserID:   pgUUID(userID),
		Provider: string(gateway.Name()),
	})
	if err == nil && stored != "" {
		return stored, nil
	}
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return "", err
	}

	ref, err := gateway.GetOrCreateCustomer(ctx, billing.CreateCustomerParams{
		Email:  email,
		Name:   name,
		UserID: userID.String(),
		Metadata: map[string]string{
			"user_id": userID.String(),
		},
	})
	if err != nil {
		return "", err
	}
	return ref.ProviderCustomerID, nil
}

// resolveUser maps a provider customer reference to a local user via the
// stored payment methods. When no reference resolves, it falls back to the
// user id the checkout form sent along and the provider echoed back. That
// fallback is what attributes events from providers with no customer vault.
func (s *BillingService) resolveUser(ctx context.Context, provider domain.Provider, providerCustomerID, userRef string) (pgtype.UUID, error) {
	if providerCustomerID != "" {
		id, err := s.repo.GetUserIDByProviderCustomerID(ctx, repository.GetUserIDByProviderCustomerIDParams{
			Provider:           string(provider),
			ProviderCustomerID: providerCustomerID,
		})
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return pgtype.UUID{}, err
		}
	}

	if parsed, err := uuid.Parse(userRef); err == nil {
		return pgUUID(parsed), nil
	}
	return pgtype.UUID{}, pgx.ErrNoRows
}

// mapGatewayError translates adapter errors into the domain taxonomy.
func (s *BillingService) mapGatewayError(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case billing.IsMissingPriceMapping(err):
		return domain.WrapError(err, domain.ECONFIG, op, "plan is not configured for the active billing provider")
	case billing.IsUnsupported(err):
		return domain.WrapError(err, domain.EPAYMENT, op, "the billing provider does not support this operation")
	default:
		return domain.WrapError(err, domain.EPAYMENT, op, "billing provider request failed")
	}
}
