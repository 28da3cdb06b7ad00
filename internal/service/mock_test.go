package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iablee/iablee/internal/repository"
)

// mockQuerier implements repository.Querier with overridable Func fields and
// a call log for asserting ordering. Unstubbed reads return pgx.ErrNoRows,
// unstubbed writes fail loudly.
type mockQuerier struct {
	mu      sync.Mutex
	CallLog []string

	ClearDefaultPaymentMethodsFunc    func(ctx context.Context, arg repository.ClearDefaultPaymentMethodsParams) error
	CountAssetsForUserFunc            func(ctx context.Context, userID pgtype.UUID) (int64, error)
	CountBeneficiariesForUserFunc     func(ctx context.Context, userID pgtype.UUID) (int64, error)
	CountDefaultPaymentMethodsFunc    func(ctx context.Context, arg repository.CountDefaultPaymentMethodsParams) (int64, error)
	CreateBeneficiaryFunc             func(ctx context.Context, arg repository.CreateBeneficiaryParams) (repository.Beneficiary, error)
	CreateDigitalAssetFunc            func(ctx context.Context, arg repository.CreateDigitalAssetParams) (repository.DigitalAsset, error)
	CreatePaymentMethodFunc           func(ctx context.Context, arg repository.CreatePaymentMethodParams) (repository.BillingPaymentMethod, error)
	CreateSessionFunc                 func(ctx context.Context, arg repository.CreateSessionParams) (repository.Session, error)
	CreateSubscriptionFunc            func(ctx context.Context, arg repository.CreateSubscriptionParams) (repository.BillingSubscription, error)
	CreateUserFunc                    func(ctx context.Context, arg repository.CreateUserParams) (repository.User, error)
	DeleteExpiredSessionsFunc         func(ctx context.Context) (int64, error)
	DeletePaymentMethodFunc           func(ctx context.Context, arg repository.DeletePaymentMethodParams) (int64, error)
	DeleteSessionFunc                 func(ctx context.Context, token string) error
	GetActiveSubscriptionForUserFunc  func(ctx context.Context, userID pgtype.UUID) (repository.BillingSubscription, error)
	GetPaymentMethodByIDAndUserFunc   func(ctx context.Context, arg repository.GetPaymentMethodByIDAndUserParams) (repository.BillingPaymentMethod, error)
	GetPaymentMethodByProviderIDFunc  func(ctx context.Context, arg repository.GetPaymentMethodByProviderIDParams) (repository.BillingPaymentMethod, error)
	GetPlanFunc                       func(ctx context.Context, id string) (repository.BillingPlan, error)
	GetProviderCustomerIDForUserFunc  func(ctx context.Context, arg repository.GetProviderCustomerIDForUserParams) (string, error)
	GetSessionByTokenFunc             func(ctx context.Context, token string) (repository.Session, error)
	GetSubscriptionByProviderIDFunc   func(ctx context.Context, arg repository.GetSubscriptionByProviderIDParams) (repository.BillingSubscription, error)
	GetUserByEmailFunc                func(ctx context.Context, email string) (repository.User, error)
	GetUserByIDFunc                   func(ctx context.Context, id pgtype.UUID) (repository.User, error)
	GetUserIDByProviderCustomerIDFunc func(ctx context.Context, arg repository.GetUserIDByProviderCustomerIDParams) (pgtype.UUID, error)
	InsertWebhookEventFunc            func(ctx context.Context, arg repository.InsertWebhookEventParams) (int64, error)
	ListActivePlansFunc               func(ctx context.Context) ([]repository.BillingPlan, error)
	ListInvoicesForUserFunc           func(ctx context.Context, arg repository.ListInvoicesForUserParams) ([]repository.BillingInvoice, error)
	ListPaymentMethodsForUserFunc     func(ctx context.Context, arg repository.ListPaymentMethodsForUserParams) ([]repository.BillingPaymentMethod, error)
	SetDefaultPaymentMethodFunc       func(ctx context.Context, arg repository.SetDefaultPaymentMethodParams) (repository.BillingPaymentMethod, error)
	SumAssetBytesForUserFunc          func(ctx context.Context, userID pgtype.UUID) (int64, error)
	UpdateSubscriptionByProviderIDFunc func(ctx context.Context, arg repository.UpdateSubscriptionByProviderIDParams) (repository.BillingSubscription, error)
	UpdateSubscriptionPlanFunc        func(ctx context.Context, arg repository.UpdateSubscriptionPlanParams) (repository.BillingSubscription, error)
	UpsertInvoiceByProviderIDFunc     func(ctx context.Context, arg repository.UpsertInvoiceByProviderIDParams) (repository.BillingInvoice, error)
	UpsertSubscriptionByProviderIDFunc func(ctx context.Context, arg repository.UpsertSubscriptionByProviderIDParams) (repository.BillingSubscription, error)
}

var _ repository.Querier = (*mockQuerier)(nil)

func (m *mockQuerier) log(format string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallLog = append(m.CallLog, fmt.Sprintf(format, args...))
}

func notStubbed(name string) error {
	return fmt.Errorf("mockQuerier: %s not stubbed", name)
}

func (m *mockQuerier) ClearDefaultPaymentMethods(ctx context.Context, arg repository.ClearDefaultPaymentMethodsParams) error {
	m.log("ClearDefaultPaymentMethods(%s)", arg.Provider)
	if m.ClearDefaultPaymentMethodsFunc != nil {
		return m.ClearDefaultPaymentMethodsFunc(ctx, arg)
	}
	return nil
}

func (m *mockQuerier) CountAssetsForUser(ctx context.Context, userID pgtype.UUID) (int64, error) {
	m.log("CountAssetsForUser")
	if m.CountAssetsForUserFunc != nil {
		return m.CountAssetsForUserFunc(ctx, userID)
	}
	return 0, nil
}

func (m *mockQuerier) CountBeneficiariesForUser(ctx context.Context, userID pgtype.UUID) (int64, error) {
	m.log("CountBeneficiariesForUser")
	if m.CountBeneficiariesForUserFunc != nil {
		return m.CountBeneficiariesForUserFunc(ctx, userID)
	}
	return 0, nil
}

func (m *mockQuerier) CountDefaultPaymentMethods(ctx context.Context, arg repository.CountDefaultPaymentMethodsParams) (int64, error) {
	m.log("CountDefaultPaymentMethods")
	if m.CountDefaultPaymentMethodsFunc != nil {
		return m.CountDefaultPaymentMethodsFunc(ctx, arg)
	}
	return 0, nil
}

func (m *mockQuerier) CreateBeneficiary(ctx context.Context, arg repository.CreateBeneficiaryParams) (repository.Beneficiary, error) {
	m.log("CreateBeneficiary")
	if m.CreateBeneficiaryFunc != nil {
		return m.CreateBeneficiaryFunc(ctx, arg)
	}
	return repository.Beneficiary{}, notStubbed("CreateBeneficiary")
}

func (m *mockQuerier) CreateDigitalAsset(ctx context.Context, arg repository.CreateDigitalAssetParams) (repository.DigitalAsset, error) {
	m.log("CreateDigitalAsset")
	if m.CreateDigitalAssetFunc != nil {
		return m.CreateDigitalAssetFunc(ctx, arg)
	}
	return repository.DigitalAsset{}, notStubbed("CreateDigitalAsset")
}

func (m *mockQuerier) CreatePaymentMethod(ctx context.Context, arg repository.CreatePaymentMethodParams) (repository.BillingPaymentMethod, error) {
	m.log("CreatePaymentMethod(%s)", arg.ProviderPaymentMethodID)
	if m.CreatePaymentMethodFunc != nil {
		return m.CreatePaymentMethodFunc(ctx, arg)
	}
	return repository.BillingPaymentMethod{
		ID:                      arg.ID,
		UserID:                  arg.UserID,
		Provider:                arg.Provider,
		ProviderPaymentMethodID: arg.ProviderPaymentMethodID,
		ProviderCustomerID:      arg.ProviderCustomerID,
		Brand:                   arg.Brand,
		Last4:                   arg.Last4,
		ExpMonth:                arg.ExpMonth,
		ExpYear:                 arg.ExpYear,
		IsDefault:               arg.IsDefault,
	}, nil
}

func (m *mockQuerier) CreateSession(ctx context.Context, arg repository.CreateSessionParams) (repository.Session, error) {
	m.log("CreateSession")
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, arg)
	}
	return repository.Session{Token: arg.Token, Data: arg.Data, ExpiresAt: arg.ExpiresAt}, nil
}

func (m *mockQuerier) CreateSubscription(ctx context.Context, arg repository.CreateSubscriptionParams) (repository.BillingSubscription, error) {
	m.log("CreateSubscription(%s)", arg.ProviderSubscriptionID)
	if m.CreateSubscriptionFunc != nil {
		return m.CreateSubscriptionFunc(ctx, arg)
	}
	return repository.BillingSubscription{
		ID:                     arg.ID,
		UserID:                 arg.UserID,
		PlanID:                 arg.PlanID,
		Provider:               arg.Provider,
		ProviderSubscriptionID: arg.ProviderSubscriptionID,
		ProviderCustomerID:     arg.ProviderCustomerID,
		Status:                 arg.Status,
		CurrentPeriodStart:     arg.CurrentPeriodStart,
		CurrentPeriodEnd:       arg.CurrentPeriodEnd,
		CancelAtPeriodEnd:      arg.CancelAtPeriodEnd,
	}, nil
}

func (m *mockQuerier) CreateUser(ctx context.Context, arg repository.CreateUserParams) (repository.User, error) {
	m.log("CreateUser(%s)", arg.Email)
	if m.CreateUserFunc != nil {
		return m.CreateUserFunc(ctx, arg)
	}
	return repository.User{ID: arg.ID, Email: arg.Email, PasswordHash: arg.PasswordHash, FullName: arg.FullName}, nil
}

func (m *mockQuerier) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	m.log("DeleteExpiredSessions")
	if m.DeleteExpiredSessionsFunc != nil {
		return m.DeleteExpiredSessionsFunc(ctx)
	}
	return 0, nil
}

func (m *mockQuerier) DeletePaymentMethod(ctx context.Context, arg repository.DeletePaymentMethodParams) (int64, error) {
	m.log("DeletePaymentMethod")
	if m.DeletePaymentMethodFunc != nil {
		return m.DeletePaymentMethodFunc(ctx, arg)
	}
	return 1, nil
}

func (m *mockQuerier) DeleteSession(ctx context.Context, token string) error {
	m.log("DeleteSession")
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, token)
	}
	return nil
}

func (m *mockQuerier) GetActiveSubscriptionForUser(ctx context.Context, userID pgtype.UUID) (repository.BillingSubscription, error) {
	m.log("GetActiveSubscriptionForUser")
	if m.GetActiveSubscriptionForUserFunc != nil {
		return m.GetActiveSubscriptionForUserFunc(ctx, userID)
	}
	return repository.BillingSubscription{}, pgx.ErrNoRows
}

func (m *mockQuerier) GetPaymentMethodByIDAndUser(ctx context.Context, arg repository.GetPaymentMethodByIDAndUserParams) (repository.BillingPaymentMethod, error) {
	m.log("GetPaymentMethodByIDAndUser")
	if m.GetPaymentMethodByIDAndUserFunc != nil {
		return m.GetPaymentMethodByIDAndUserFunc(ctx, arg)
	}
	return repository.BillingPaymentMethod{}, pgx.ErrNoRows
}

func (m *mockQuerier) GetPaymentMethodByProviderID(ctx context.Context, arg repository.GetPaymentMethodByProviderIDParams) (repository.BillingPaymentMethod, error) {
	m.log("GetPaymentMethodByProviderID")
	if m.GetPaymentMethodByProviderIDFunc != nil {
		return m.GetPaymentMethodByProviderIDFunc(ctx, arg)
	}
	return repository.BillingPaymentMethod{}, pgx.ErrNoRows
}

func (m *mockQuerier) GetPlan(ctx context.Context, id string) (repository.BillingPlan, error) {
	m.log("GetPlan(%s)", id)
	if m.GetPlanFunc != nil {
		return m.GetPlanFunc(ctx, id)
	}
	return repository.BillingPlan{}, pgx.ErrNoRows
}

func (m *mockQuerier) GetProviderCustomerIDForUser(ctx context.Context, arg repository.GetProviderCustomerIDForUserParams) (string, error) {
	m.log("GetProviderCustomerIDForUser")
	if m.GetProviderCustomerIDForUserFunc != nil {
		return m.GetProviderCustomerIDForUserFunc(ctx, arg)
	}
	return "", pgx.ErrNoRows
}

func (m *mockQuerier) GetSessionByToken(ctx context.Context, token string) (repository.Session, error) {
	m.log("GetSessionByToken")
	if m.GetSessionByTokenFunc != nil {
		return m.GetSessionByTokenFunc(ctx, token)
	}
	return repository.Session{}, pgx.ErrNoRows
}

func (m *mockQuerier) GetSubscriptionByProviderID(ctx context.Context, arg repository.GetSubscriptionByProviderIDParams) (repository.BillingSubscription, error) {
	m.log("GetSubscriptionByProviderID(%s)", arg.ProviderSubscriptionID)
	if m.GetSubscriptionByProviderIDFunc != nil {
		return m.GetSubscriptionByProviderIDFunc(ctx, arg)
	}
	return repository.BillingSubscription{}, pgx.ErrNoRows
}

func (m *mockQuerier) GetUserByEmail(ctx context.Context, email string) (repository.User, error) {
	m.log("GetUserByEmail(%s)", email)
	if m.GetUserByEmailFunc != nil {
		return m.GetUserByEmailFunc(ctx, email)
	}
	return repository.User{}, pgx.ErrNoRows
}

func (m *mockQuerier) GetUserByID(ctx context.Context, id pgtype.UUID) (repository.User, error) {
	m.log("GetUserByID")
	if m.GetUserByIDFunc != nil {
		return m.GetUserByIDFunc(ctx, id)
	}
	return repository.User{}, pgx.ErrNoRows
}

func (m *mockQuerier) GetUserIDByProviderCustomerID(ctx context.Context, arg repository.GetUserIDByProviderCustomerIDParams) (pgtype.UUID, error) {
	m.log("GetUserIDByProviderCustomerID(%s)", arg.ProviderCustomerID)
	if m.GetUserIDByProviderCustomerIDFunc != nil {
		return m.GetUserIDByProviderCustomerIDFunc(ctx, arg)
	}
	return pgtype.UUID{}, pgx.ErrNoRows
}

func (m *mockQuerier) InsertWebhookEvent(ctx context.Context, arg repository.InsertWebhookEventParams) (int64, error) {
	m.log("InsertWebhookEvent(%s)", arg.ProviderEventID)
	if m.InsertWebhookEventFunc != nil {
		return m.InsertWebhookEventFunc(ctx, arg)
	}
	return 1, nil
}

func (m *mockQuerier) ListActivePlans(ctx context.Context) ([]repository.BillingPlan, error) {
	m.log("ListActivePlans")
	if m.ListActivePlansFunc != nil {
		return m.ListActivePlansFunc(ctx)
	}
	return nil, nil
}

func (m *mockQuerier) ListInvoicesForUser(ctx context.Context, arg repository.ListInvoicesForUserParams) ([]repository.BillingInvoice, error) {
	m.log("ListInvoicesForUser(limit=%d)", arg.Limit)
	if m.ListInvoicesForUserFunc != nil {
		return m.ListInvoicesForUserFunc(ctx, arg)
	}
	return nil, nil
}

func (m *mockQuerier) ListPaymentMethodsForUser(ctx context.Context, arg repository.ListPaymentMethodsForUserParams) ([]repository.BillingPaymentMethod, error) {
	m.log("ListPaymentMethodsForUser")
	if m.ListPaymentMethodsForUserFunc != nil {
		return m.ListPaymentMethodsForUserFunc(ctx, arg)
	}
	return nil, nil
}

func (m *mockQuerier) SetDefaultPaymentMethod(ctx context.Context, arg repository.SetDefaultPaymentMethodParams) (repository.BillingPaymentMethod, error) {
	m.log("SetDefaultPaymentMethod")
	if m.SetDefaultPaymentMethodFunc != nil {
		return m.SetDefaultPaymentMethodFunc(ctx, arg)
	}
	return repository.BillingPaymentMethod{ID: arg.ID, UserID: arg.UserID, IsDefault: true}, nil
}

func (m *mockQuerier) SumAssetBytesForUser(ctx context.Context, userID pgtype.UUID) (int64, error) {
	m.log("SumAssetBytesForUser")
	if m.SumAssetBytesForUserFunc != nil {
		return m.SumAssetBytesForUserFunc(ctx, userID)
	}
	return 0, nil
}

func (m *mockQuerier) UpdateSubscriptionByProviderID(ctx context.Context, arg repository.UpdateSubscriptionByProviderIDParams) (repository.BillingSubscription, error) {
	m.log("UpdateSubscriptionByProviderID(%s->%s)", arg.ProviderSubscriptionID, arg.Status)
	if m.UpdateSubscriptionByProviderIDFunc != nil {
		return m.UpdateSubscriptionByProviderIDFunc(ctx, arg)
	}
	return repository.BillingSubscription{
		Provider:               arg.Provider,
		ProviderSubscriptionID: arg.ProviderSubscriptionID,
		Status:                 arg.Status,
		CurrentPeriodStart:     arg.CurrentPeriodStart,
		CurrentPeriodEnd:       arg.CurrentPeriodEnd,
		CancelAtPeriodEnd:      arg.CancelAtPeriodEnd,
		CanceledAt:             arg.CanceledAt,
	}, nil
}

func (m *mockQuerier) UpdateSubscriptionPlan(ctx context.Context, arg repository.UpdateSubscriptionPlanParams) (repository.BillingSubscription, error) {
	m.log("UpdateSubscriptionPlan(%s)", arg.PlanID)
	if m.UpdateSubscriptionPlanFunc != nil {
		return m.UpdateSubscriptionPlanFunc(ctx, arg)
	}
	return repository.BillingSubscription{ID: arg.ID, PlanID: arg.PlanID, Status: arg.Status}, nil
}

func (m *mockQuerier) UpsertInvoiceByProviderID(ctx context.Context, arg repository.UpsertInvoiceByProviderIDParams) (repository.BillingInvoice, error) {
	m.log("UpsertInvoiceByProviderID(%s)", arg.ProviderInvoiceID)
	if m.UpsertInvoiceByProviderIDFunc != nil {
		return m.UpsertInvoiceByProviderIDFunc(ctx, arg)
	}
	return repository.BillingInvoice{
		ID:                arg.ID,
		UserID:            arg.UserID,
		SubscriptionID:    arg.SubscriptionID,
		Provider:          arg.Provider,
		ProviderInvoiceID: arg.ProviderInvoiceID,
		AmountCents:       arg.AmountCents,
		Currency:          arg.Currency,
		Status:            arg.Status,
		IssuedAt:          arg.IssuedAt,
		PaidAt:            arg.PaidAt,
	}, nil
}

func (m *mockQuerier) UpsertSubscriptionByProviderID(ctx context.Context, arg repository.UpsertSubscriptionByProviderIDParams) (repository.BillingSubscription, error) {
	m.log("UpsertSubscriptionByProviderID(%s)", arg.ProviderSubscriptionID)
	if m.UpsertSubscriptionByProviderIDFunc != nil {
		return m.UpsertSubscriptionByProviderIDFunc(ctx, arg)
	}
	return repository.BillingSubscription{
		ID:                     arg.ID,
		UserID:                 arg.UserID,
		PlanID:                 arg.PlanID,
		Provider:               arg.Provider,
		ProviderSubscriptionID: arg.ProviderSubscriptionID,
		ProviderCustomerID:     arg.ProviderCustomerID,
		Status:                 arg.Status,
	}, nil
}
