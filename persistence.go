package auth

import (
	"context"
	"encoding/json"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	stateKeySession         = "session"
	stateKeyRememberedEmail = "remembered_email"
)

// StateRecord is a key/value row backing the client's persisted local
// state: the serialized session and the remembered login email.
type StateRecord struct {
	bun.BaseModel `bun:"table:portal_state,alias:ps"`

	ID        uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Key       string     `bun:"key,notnull,unique" json:"key"`
	Value     string     `bun:"value" json:"value,omitempty"`
	UpdatedAt *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// NewStateRepository returns the repository for local state records,
// addressed by their key.
func NewStateRepository(db *bun.DB) repository.Repository[*StateRecord] {
	handlers := repository.ModelHandlers[*StateRecord]{
		NewRecord: func() *StateRecord {
			return &StateRecord{}
		},
		GetID: func(record *StateRecord) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *StateRecord, id uuid.UUID) {
			record.ID = id
		},
		GetIdentifier: func() string {
			return "key"
		},
	}
	return repository.NewRepository(db, handlers)
}

// BunPersister keeps the session and remembered email in a local sqlite
// database so they survive restarts. The session row is removed on logout;
// the remembered email row is independent and survives it.
type BunPersister struct {
	db   *bun.DB
	repo repository.Repository[*StateRecord]
}

var _ Persister = (*BunPersister)(nil)

func NewBunPersister(db *bun.DB) *BunPersister {
	return &BunPersister{
		db:   db,
		repo: NewStateRepository(db),
	}
}

// Init creates the backing table when missing.
func (p *BunPersister) Init(ctx context.Context) error {
	if _, err := p.db.NewCreateTable().
		Model((*StateRecord)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to initialize local state table")
	}
	return nil
}

func (p *BunPersister) SaveSession(ctx context.Context, session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode session")
	}
	return p.save(ctx, stateKeySession, string(data))
}

func (p *BunPersister) ClearSession(ctx context.Context) error {
	return p.clear(ctx, stateKeySession)
}

func (p *BunPersister) LoadSession(ctx context.Context) (*Session, error) {
	value, err := p.load(ctx, stateKeySession)
	if err != nil || value == "" {
		return nil, err
	}

	session := &Session{}
	if err := json.Unmarshal([]byte(value), session); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to decode persisted session")
	}
	return session, nil
}

func (p *BunPersister) SaveRememberedEmail(ctx context.Context, email string) error {
	return p.save(ctx, stateKeyRememberedEmail, email)
}

func (p *BunPersister) ClearRememberedEmail(ctx context.Context) error {
	return p.clear(ctx, stateKeyRememberedEmail)
}

func (p *BunPersister) LoadRememberedEmail(ctx context.Context) (string, error) {
	return p.load(ctx, stateKeyRememberedEmail)
}

func (p *BunPersister) save(ctx context.Context, key, value string) error {
	now := time.Now()
	record := &StateRecord{
		ID:        uuid.New(),
		Key:       key,
		Value:     value,
		UpdatedAt: &now,
	}

	if _, err := p.db.NewInsert().
		Model(record).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to save local state").
			WithMetadata(map[string]any{"key": key})
	}
	return nil
}

func (p *BunPersister) load(ctx context.Context, key string) (string, error) {
	record, err := p.repo.GetByIdentifier(ctx, key)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return "", nil
		}
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load local state").
			WithMetadata(map[string]any{"key": key})
	}
	return record.Value, nil
}

func (p *BunPersister) clear(ctx context.Context, key string) error {
	if _, err := p.db.NewDelete().
		Model((*StateRecord)(nil)).
		Where("key = ?", key).
		Exec(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to clear local state").
			WithMetadata(map[string]any{"key": key})
	}
	return nil
}
