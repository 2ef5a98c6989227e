package repository

import (
	"context"
	"time"

	"github.com/goliatone/go-connections"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// SocialAccountModel is the Bun model for social accounts. Token columns hold
// vault ciphertext only.
type SocialAccountModel struct {
	bun.BaseModel `bun:"table:social_accounts"`

	ID             uuid.UUID  `bun:"id,pk,nullzero,type:uuid"`
	TeamID         uuid.UUID  `bun:"team_id,notnull,type:uuid"`
	Provider       string     `bun:"provider,notnull"`
	ProviderUserID string     `bun:"provider_user_id,notnull"`
	Scope          string     `bun:"scope"`
	AccessToken    string     `bun:"access_token"`
	RefreshToken   string     `bun:"refresh_token"`
	ExpiresAt      *time.Time `bun:"expires_at"`
	CreatedAt      time.Time  `bun:"created_at,default:current_timestamp"`
	UpdatedAt      time.Time  `bun:"updated_at,default:current_timestamp"`
}

// SocialAccountsRepository implements connections.AccountStore using Bun,
// with a TokenVault at the boundary so plaintext never reaches a row.
type SocialAccountsRepository struct {
	db    *bun.DB
	vault connections.TokenVault
}

// NewSocialAccountsRepository creates a new repository.
func NewSocialAccountsRepository(db *bun.DB, vault connections.TokenVault) *SocialAccountsRepository {
	return &SocialAccountsRepository{db: db, vault: vault}
}

var _ connections.AccountStore = (*SocialAccountsRepository)(nil)

// Upsert writes an authorization result. Re-authorizing the same
// (team, provider, provider user) overwrites tokens, scope and expiry in
// place rather than duplicating the row.
func (r *SocialAccountsRepository) Upsert(ctx context.Context, account *connections.SocialAccount, tokens connections.TokenUpdate) error {
	model, err := r.fromAccount(account, tokens)
	if err != nil {
		return err
	}
	model.UpdatedAt = time.Now()

	_, err = r.db.NewInsert().
		Model(model).
		On("CONFLICT (team_id, provider, provider_user_id) DO UPDATE").
		Set("scope = EXCLUDED.scope").
		Set("access_token = EXCLUDED.access_token").
		Set("refresh_token = EXCLUDED.refresh_token").
		Set("expires_at = EXCLUDED.expires_at").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)

	return err
}

// FindByID implements connections.AccountStore.
func (r *SocialAccountsRepository) FindByID(ctx context.Context, id string) (*connections.SocialAccount, error) {
	var model SocialAccountModel
	err := r.db.NewSelect().
		Model(&model).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return r.toAccount(&model), nil
}

// FindByProviderUser implements connections.AccountStore.
func (r *SocialAccountsRepository) FindByProviderUser(ctx context.Context, family connections.Family, providerUserID string) ([]*connections.SocialAccount, error) {
	var models []SocialAccountModel
	err := r.db.NewSelect().
		Model(&models).
		Where("provider IN (?)", bun.In(providerNames(family))).
		Where("provider_user_id = ?", providerUserID).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	accounts := make([]*connections.SocialAccount, len(models))
	for i, m := range models {
		accounts[i] = r.toAccount(&m)
	}
	return accounts, nil
}

// ExpiringWithin implements connections.AccountStore. Only rows with a real
// expiry and a stored refresh token qualify, soonest expiry first.
func (r *SocialAccountsRepository) ExpiringWithin(ctx context.Context, now time.Time, horizon time.Duration) ([]*connections.SocialAccount, error) {
	var models []SocialAccountModel
	err := r.db.NewSelect().
		Model(&models).
		Where("expires_at IS NOT NULL").
		Where("expires_at < ?", now.Add(horizon)).
		Where("refresh_token <> ''").
		Order("expires_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	accounts := make([]*connections.SocialAccount, len(models))
	for i, m := range models {
		accounts[i] = r.toAccount(&m)
	}
	return accounts, nil
}

// UpdateTokens implements connections.AccountStore. An empty refresh token or
// nil expiry in the update keeps the stored value; providers rotate the
// refresh token and restate the expiry only sometimes.
func (r *SocialAccountsRepository) UpdateTokens(ctx context.Context, id string, update connections.TokenUpdate) error {
	accessToken, err := r.vault.Encrypt(update.AccessToken)
	if err != nil {
		return err
	}

	q := r.db.NewUpdate().
		Model((*SocialAccountModel)(nil)).
		Set("access_token = ?", accessToken).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id)

	if update.ExpiresAt != nil {
		q = q.Set("expires_at = ?", update.ExpiresAt)
	}

	if update.RefreshToken != "" {
		refreshToken, err := r.vault.Encrypt(update.RefreshToken)
		if err != nil {
			return err
		}
		q = q.Set("refresh_token = ?", refreshToken)
	}

	if update.Scope != "" {
		q = q.Set("scope = ?", update.Scope)
	}

	_, err = q.Exec(ctx)
	return err
}

// Delete implements connections.AccountStore.
func (r *SocialAccountsRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.NewDelete().
		Model((*SocialAccountModel)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// DeleteByProviderUser implements connections.AccountStore.
func (r *SocialAccountsRepository) DeleteByProviderUser(ctx context.Context, family connections.Family, providerUserID string) (int64, error) {
	res, err := r.db.NewDelete().
		Model((*SocialAccountModel)(nil)).
		Where("provider IN (?)", bun.In(providerNames(family))).
		Where("provider_user_id = ?", providerUserID).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// AccessToken implements connections.AccountStore. One row, one column, one
// decrypt; there is no bulk plaintext read.
func (r *SocialAccountsRepository) AccessToken(ctx context.Context, id string) (string, error) {
	return r.tokenColumn(ctx, id, "access_token")
}

// RefreshToken implements connections.AccountStore.
func (r *SocialAccountsRepository) RefreshToken(ctx context.Context, id string) (string, error) {
	return r.tokenColumn(ctx, id, "refresh_token")
}

func (r *SocialAccountsRepository) tokenColumn(ctx context.Context, id, column string) (string, error) {
	var ciphertext string
	err := r.db.NewSelect().
		Model((*SocialAccountModel)(nil)).
		Column(column).
		Where("id = ?", id).
		Scan(ctx, &ciphertext)
	if err != nil {
		return "", err
	}
	return r.vault.Decrypt(ciphertext)
}

func providerNames(family connections.Family) []string {
	providers := family.Providers()
	names := make([]string, len(providers))
	for i, p := range providers {
		names[i] = string(p)
	}
	return names
}

func (r *SocialAccountsRepository) toAccount(m *SocialAccountModel) *connections.SocialAccount {
	return &connections.SocialAccount{
		ID:              m.ID.String(),
		TeamID:          m.TeamID.String(),
		Provider:        connections.Provider(m.Provider),
		ProviderUserID:  m.ProviderUserID,
		Scope:           m.Scope,
		HasRefreshToken: m.RefreshToken != "",
		ExpiresAt:       m.ExpiresAt,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func (r *SocialAccountsRepository) fromAccount(a *connections.SocialAccount, tokens connections.TokenUpdate) (*SocialAccountModel, error) {
	var id uuid.UUID
	if a.ID != "" {
		if parsed, err := uuid.Parse(a.ID); err == nil {
			id = parsed
		}
	}
	if id == uuid.Nil {
		id = uuid.New()
	}

	var teamID uuid.UUID
	if a.TeamID != "" {
		if parsed, err := uuid.Parse(a.TeamID); err == nil {
			teamID = parsed
		}
	}

	accessToken, err := r.vault.Encrypt(tokens.AccessToken)
	if err != nil {
		return nil, err
	}
	refreshToken, err := r.vault.Encrypt(tokens.RefreshToken)
	if err != nil {
		return nil, err
	}

	expiresAt := a.ExpiresAt
	if tokens.ExpiresAt != nil {
		expiresAt = tokens.ExpiresAt
	}

	scope := a.Scope
	if tokens.Scope != "" {
		scope = tokens.Scope
	}

	return &SocialAccountModel{
		ID:             id,
		TeamID:         teamID,
		Provider:       string(a.Provider),
		ProviderUserID: a.ProviderUserID,
		Scope:          scope,
		AccessToken:    accessToken,
		RefreshToken:   refreshToken,
		ExpiresAt:      expiresAt,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}, nil
}
