package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/dukerupert/mercato/internal/address"
	"github.com/dukerupert/mercato/internal/domain"
	"github.com/dukerupert/mercato/internal/repository"
	"github.com/go-playground/validator/v10"
)

type accountService struct {
	store     repository.Store
	addresses address.Validator
	validate  *validator.Validate
	deps      Deps
}

// NewAccountService creates the account collaborator that owns users and
// their saved addresses.
func NewAccountService(store repository.Store, addresses address.Validator, deps Deps) domain.AccountService {
	if addresses == nil {
		addresses = address.NewBasicValidator()
	}
	return &accountService{
		store:     store,
		addresses: addresses,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		deps:      deps.withDefaults(),
	}
}

// CreateUser registers a user and their profile. Emails are stored
// lowercased so uniqueness is case-insensitive.
func (s *accountService) CreateUser(ctx context.Context, email, fullName, phone string) (*domain.User, error) {
	const op = "account.create_user"

	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, domain.NewValidationError(op, "email", "must be a valid email address")
	}

	var user repository.GetUserRow
	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		created, err := q.CreateUser(ctx, repository.CreateUserParams{
			Email:     email,
			CreatedAt: s.deps.Clock(),
		})
		if err != nil {
			if repository.IsConstraint(err, repository.ErrUniqueViolation, repository.ConstraintUserEmail) {
				return domain.WithOp(domain.ErrEmailTaken, op)
			}
			return fmt.Errorf("failed to create user: %w", err)
		}

		profile, err := q.CreateUserProfile(ctx, repository.CreateUserProfileParams{
			UserID:   created.ID,
			FullName: strings.TrimSpace(fullName),
			Phone:    strings.TrimSpace(phone),
		})
		if err != nil {
			return fmt.Errorf("failed to create user profile: %w", err)
		}

		user = repository.GetUserRow{
			ID:        created.ID,
			Email:     created.Email,
			IsActive:  created.IsActive,
			CreatedAt: created.CreatedAt,
			FullName:  profile.FullName,
			Phone:     profile.Phone,
		}
		return nil
	})
	if err != nil {
		return nil, s.deps.fail(op, err)
	}

	s.deps.Logger.Info("User created", "user_id", uuidString(user.ID))
	return toUser(user), nil
}

func (s *accountService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	const op = "account.get_user"

	id, err := parseUUID(op, "user_id", userID)
	if err != nil {
		return nil, err
	}

	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.WithOp(domain.ErrUserNotFound, op)
		}
		return nil, s.deps.fail(op, err, "user_id", userID)
	}
	return toUser(user), nil
}

// AddAddress saves an address for the user. The first address a user saves
// becomes the default, and makeDefault moves the default to the new one.
func (s *accountService) AddAddress(ctx context.Context, userID string, addr address.Address, makeDefault bool) (*domain.SavedAddress, error) {
	const op = "account.add_address"

	uid, err := parseUUID(op, "user_id", userID)
	if err != nil {
		return nil, err
	}

	result, err := s.addresses.Validate(ctx, addr)
	if err != nil {
		return nil, s.deps.fail(op, fmt.Errorf("failed to validate address: %w", err), "user_id", userID)
	}
	if !result.IsValid {
		return nil, domain.NewFieldsError(op, result.Fields())
	}
	normalized := addr.Normalize()
	if result.NormalizedAddress != nil {
		normalized = *result.NormalizedAddress
	}

	var saved repository.Address
	err = s.deps.run(ctx, op, func(ctx context.Context) error {
		return s.store.ExecTx(ctx, func(q repository.Querier) error {
			count, err := q.CountAddresses(ctx, uid)
			if err != nil {
				return fmt.Errorf("failed to count addresses: %w", err)
			}

			isDefault := makeDefault || count == 0
			if isDefault && count > 0 {
				if err := q.ClearDefaultAddress(ctx, uid); err != nil {
					return fmt.Errorf("failed to clear default address: %w", err)
				}
			}

			created, err := q.CreateAddress(ctx, repository.CreateAddressParams{
				UserID:        uid,
				Label:         normalized.Label,
				RecipientName: normalized.RecipientName,
				Line1:         normalized.Line1,
				Line2:         normalized.Line2,
				City:          normalized.City,
				State:         normalized.State,
				PostalCode:    normalized.PostalCode,
				Country:       normalized.Country,
				Phone:         normalized.Phone,
				IsDefault:     isDefault,
				CreatedAt:     s.deps.Clock(),
			})
			if err != nil {
				switch {
				case repository.IsConstraint(err, repository.ErrUniqueViolation, repository.ConstraintDefaultAddress):
					// Another request set a default between our count and insert.
					return domain.WithOp(domain.ErrConflictRetry, op)
				case repository.IsConstraint(err, repository.ErrForeignKeyViolation, ""):
					return domain.WithOp(domain.ErrUserNotFound, op)
				}
				return fmt.Errorf("failed to create address: %w", err)
			}
			saved = created
			return nil
		})
	})
	if err != nil {
		return nil, s.deps.fail(op, err, "user_id", userID)
	}

	a := toSavedAddress(saved)
	return &a, nil
}

// ListAddresses returns the user's addresses with the default first.
func (s *accountService) ListAddresses(ctx context.Context, userID string) ([]domain.SavedAddress, error) {
	const op = "account.list_addresses"

	uid, err := parseUUID(op, "user_id", userID)
	if err != nil {
		return nil, err
	}

	rows, err := s.store.ListAddresses(ctx, uid)
	if err != nil {
		return nil, s.deps.fail(op, err, "user_id", userID)
	}

	addresses := make([]domain.SavedAddress, 0, len(rows))
	for _, row := range rows {
		addresses = append(addresses, toSavedAddress(row))
	}
	return addresses, nil
}

func (s *accountService) GetAddress(ctx context.Context, addressID string) (*domain.SavedAddress, error) {
	const op = "account.get_address"

	id, err := parseUUID(op, "address_id", addressID)
	if err != nil {
		return nil, err
	}

	row, err := s.store.GetAddress(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.WithOp(domain.ErrAddressNotFound, op)
		}
		return nil, s.deps.fail(op, err, "address_id", addressID)
	}

	a := toSavedAddress(row)
	return &a, nil
}
