package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/authentix/internal/server/models"
)

func TestFactorService_StatusesSynthesizeDefaults(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := newFakeRepoManager()

	now := time.Now()
	rm.f.listOut = []*models.FactorStatus{
		{UserID: "u1", Modality: models.ModalityFace, IsEnrolled: true, EnrolledAt: &now},
		{UserID: "u1", Modality: models.ModalityCode, IsEnrolled: true, EnrolledAt: &now},
	}

	svc := NewFactorService(db, rm)
	statuses, err := svc.Statuses(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Statuses error: %v", err)
	}

	if len(statuses) != 4 {
		t.Fatalf("expected one status per modality, got %d", len(statuses))
	}
	want := map[models.Modality]bool{
		models.ModalityFace:    true,
		models.ModalityVoice:   false,
		models.ModalityGesture: false,
		models.ModalityCode:    true,
	}
	for i, m := range models.Modalities() {
		st := statuses[i]
		if st.Modality != m {
			t.Fatalf("statuses out of sequence order at %d: %v", i, st.Modality)
		}
		if st.IsEnrolled != want[m] {
			t.Fatalf("modality %v: IsEnrolled = %v, want %v", m, st.IsEnrolled, want[m])
		}
		if !st.IsEnrolled && st.EnrolledAt != nil {
			t.Fatalf("synthesized default must have nil EnrolledAt: %+v", st)
		}
	}
}

func TestFactorService_EnrolledCountAndFullySecured(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := newFakeRepoManager()
	svc := NewFactorService(db, rm)
	ctx := context.Background()

	count, err := svc.EnrolledCount(ctx, "u1")
	if err != nil {
		t.Fatalf("EnrolledCount error: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 enrolled, got %d", count)
	}

	now := time.Now()
	for _, m := range models.Modalities() {
		rm.f.listOut = append(rm.f.listOut, &models.FactorStatus{
			UserID: "u1", Modality: m, IsEnrolled: true, EnrolledAt: &now,
		})
	}

	secured, err := svc.FullySecured(ctx, "u1")
	if err != nil {
		t.Fatalf("FullySecured error: %v", err)
	}
	if !secured {
		t.Fatal("all four factors enrolled must report fully secured")
	}
}

func TestFactorService_AttemptsDefaultLimit(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := newFakeRepoManager()
	rm.a.listOut = []*models.AuthAttempt{{ID: "a1", UserID: "u1"}}

	svc := NewFactorService(db, rm)
	list, err := svc.Attempts(context.Background(), "u1", 0)
	if err != nil {
		t.Fatalf("Attempts error: %v", err)
	}
	if len(list) != 1 || list[0].ID != "a1" {
		t.Fatalf("unexpected attempts: %+v", list)
	}
}
