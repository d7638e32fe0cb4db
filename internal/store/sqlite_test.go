package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/navyaanair/M-A-lead-generation-tool/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleCompany(name string) model.Company {
	return model.Company{
		Name:        name,
		Industry:    "Software",
		Location:    "Austin, TX",
		Revenue:     "$25M",
		Employees:   120,
		Description: "Workflow automation",
		KeyMetrics:  &model.KeyMetrics{GrowthRate: "35%", Margins: "20%"},
		Strengths:   []string{"Enterprise customers"},
		Challenges:  []string{"Key-person risk"},
	}
}

func TestAddThenGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	added, err := s.Add(ctx, sampleCompany("TechFlow"))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if added.ID == "" {
		t.Fatal("expected Add to assign an ID")
	}

	got, err := s.Get(ctx, added.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "TechFlow" || got.Employees != 120 || got.Revenue != "$25M" {
		t.Errorf("Get = %+v", got)
	}
	if got.KeyMetrics == nil || got.KeyMetrics.GrowthRate != "35%" {
		t.Errorf("KeyMetrics = %+v", got.KeyMetrics)
	}
	if len(got.Strengths) != 1 || got.Strengths[0] != "Enterprise customers" {
		t.Errorf("Strengths = %v", got.Strengths)
	}
}

func TestAddKeepsGivenIDAndRejectsDuplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c := sampleCompany("DataCo")
	c.ID = "data-co"
	if _, err := s.Add(ctx, c); err != nil {
		t.Fatalf("first Add: %v", err)
	}
	if _, err := s.Add(ctx, c); err == nil {
		t.Fatal("expected error adding a duplicate ID")
	}
}

func TestAddValidates(t *testing.T) {
	s := newTestStore(t)

	c := sampleCompany("")
	if _, err := s.Add(context.Background(), c); err == nil {
		t.Fatal("expected validation error for missing name")
	}
}

func TestListPreservesInsertionOrderWithoutMetrics(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"Charlie", "Alpha", "Bravo"} {
		c := sampleCompany(name)
		c.KeyMetrics = nil
		c.Strengths = nil
		if _, err := s.Add(ctx, c); err != nil {
			t.Fatalf("Add %s: %v", name, err)
		}
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 3 || list[0].Name != "Charlie" || list[1].Name != "Alpha" || list[2].Name != "Bravo" {
		t.Fatalf("List order = %+v", list)
	}
	if list[0].KeyMetrics != nil {
		t.Errorf("expected nil KeyMetrics, got %+v", list[0].KeyMetrics)
	}
	if list[0].Strengths == nil || len(list[0].Strengths) != 0 {
		t.Errorf("expected empty strengths, got %#v", list[0].Strengths)
	}
}

func TestGetAndDeleteUnknownReturnNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, model.ErrCompanyNotFound) {
		t.Errorf("Get: expected ErrCompanyNotFound, got %v", err)
	}
	if err := s.Delete(ctx, "missing"); !errors.Is(err, model.ErrCompanyNotFound) {
		t.Errorf("Delete: expected ErrCompanyNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	added, err := s.Add(ctx, sampleCompany("Gone Soon"))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.Delete(ctx, added.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected empty catalog, got %d companies", len(list))
	}
}

func TestReopenKeepsCatalog(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "catalog.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	if _, err := s.Add(ctx, sampleCompany("Persistent")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	s.Close()

	s, err = NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].Name != "Persistent" {
		t.Errorf("List after reopen = %+v", list)
	}
}
