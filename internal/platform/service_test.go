package platform

import (
	"context"
	"errors"
	"testing"

	"github.com/cryptobalance/tracker/internal/domain"
)

type mockRepo struct {
	platforms map[string]domain.Platform
	saveErr   error
}

func newMockRepo() *mockRepo {
	return &mockRepo{platforms: make(map[string]domain.Platform)}
}

func (m *mockRepo) FindByID(_ context.Context, id string) (domain.Platform, error) {
	p, ok := m.platforms[id]
	if !ok {
		return domain.Platform{}, ErrNotFound
	}
	return p, nil
}

func (m *mockRepo) FindAllByIDs(_ context.Context, ids []string) ([]domain.Platform, error) {
	var out []domain.Platform
	for _, id := range ids {
		if p, ok := m.platforms[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockRepo) FindAll(_ context.Context) ([]domain.Platform, error) {
	var out []domain.Platform
	for _, p := range m.platforms {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockRepo) Save(_ context.Context, p domain.Platform) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	for _, existing := range m.platforms {
		if existing.Name == p.Name {
			return ErrDuplicateName
		}
	}
	m.platforms[p.ID] = p
	return nil
}

func (m *mockRepo) Update(_ context.Context, p domain.Platform) error {
	if _, ok := m.platforms[p.ID]; !ok {
		return ErrNotFound
	}
	m.platforms[p.ID] = p
	return nil
}

func (m *mockRepo) DeleteByID(_ context.Context, id string) error {
	if _, ok := m.platforms[id]; !ok {
		return ErrNotFound
	}
	delete(m.platforms, id)
	return nil
}

func TestCreateNormalizesName(t *testing.T) {
	svc := NewService(newMockRepo())

	p, err := svc.Create(context.Background(), "binance")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "BINANCE" {
		t.Errorf("name = %q, want BINANCE", p.Name)
	}
	if p.ID == "" {
		t.Error("expected generated id")
	}
}

func TestCreateRejectsInvalidNames(t *testing.T) {
	svc := NewService(newMockRepo())

	for _, name := range []string{"", "my wallet", "wallet-2", "averyveryverylongplatformname"} {
		if _, err := svc.Create(context.Background(), name); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Create(%q) error = %v, want ErrInvalidName", name, err)
		}
	}
}

func TestCreateRejectsDuplicate(t *testing.T) {
	svc := NewService(newMockRepo())

	if _, err := svc.Create(context.Background(), "Kraken"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Create(context.Background(), "KRAKEN"); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("error = %v, want ErrDuplicateName", err)
	}
}

func TestRename(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	p, err := svc.Create(context.Background(), "Ledger")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	renamed, err := svc.Rename(context.Background(), p.ID, "trezor")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if renamed.Name != "TREZOR" {
		t.Errorf("name = %q, want TREZOR", renamed.Name)
	}
}

func TestRenameNotFound(t *testing.T) {
	svc := NewService(newMockRepo())

	if _, err := svc.Rename(context.Background(), "missing", "Kraken"); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}
