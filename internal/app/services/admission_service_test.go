package services

import (
	"context"
	"testing"
	"time"

	authz "github.com/campusly/campusly/internal/app/auth"
	"github.com/campusly/campusly/internal/app/models"
	"github.com/campusly/campusly/internal/app/models/dto"
	"github.com/campusly/campusly/internal/pkg/apperrors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pooled builds a SUBMITTED application; interObtained is out of 1100
func pooled(id int64, score string, interObtained int64) *models.AdmissionApplication {
	return &models.AdmissionApplication{
		ID:               id,
		ProgramID:        1,
		Session:          "2025",
		ApplicantName:    "Applicant",
		ApplicantEmail:   "applicant@campusly.test",
		MatricObtained:   decimal.NewFromInt(900),
		MatricTotal:      decimal.NewFromInt(1100),
		InterObtained:    decimal.NewFromInt(interObtained),
		InterTotal:       decimal.NewFromInt(1100),
		EligibilityScore: dec(score),
		Status:           models.ApplicationSubmitted,
		SubmittedAt:      time.Date(2025, time.February, int(id), 9, 0, 0, 0, time.UTC),
	}
}

func newAdmissionFixture(pool []*models.AdmissionApplication, admitted int) (*admissionService, *fakeApplications, *fakeMailer, authz.Actor) {
	apps := &fakeApplications{pool: pool, admitted: admitted}
	programs := fakePrograms{
		1: {ID: 1, CampusID: 1, Name: "BS Computer Science", Code: "BSCS", TotalSeats: 2, MinPercentage: dec("60"), IsActive: true},
		2: {ID: 2, CampusID: 1, Name: "BS Physics", Code: "BSPHY", TotalSeats: 10, MinPercentage: dec("50"), IsActive: false},
		3: {ID: 3, CampusID: 2, Name: "BBA", Code: "BBA", TotalSeats: 10, MinPercentage: dec("50"), IsActive: true},
	}
	mailer := &fakeMailer{}
	svc := NewAdmissionService(apps, programs, nil, mailer, testLogger).(*admissionService)
	svc.now = fixedClock
	campus := int64(1)
	return svc, apps, mailer, authz.Actor{UserID: 5, Role: models.RoleAdmissionOfficer, CampusID: &campus}
}

func applicationRequest() *dto.ApplicationRequest {
	return &dto.ApplicationRequest{
		ProgramID:      1,
		Session:        "2025",
		ApplicantName:  "Zara Ali",
		ApplicantEmail: "Zara.Ali@Example.com",
		DateOfBirth:    "2006-05-14",
		MatricObtained: dec("990"),
		MatricTotal:    dec("1100"),
		InterObtained:  dec("880"),
		InterTotal:     dec("1100"),
	}
}

func TestSubmitApplication(t *testing.T) {
	ctx := context.Background()

	t.Run("scores and normalizes", func(t *testing.T) {
		svc, apps, _, _ := newAdmissionFixture(nil, 0)
		app, err := svc.SubmitApplication(ctx, applicationRequest())
		require.NoError(t, err)
		assert.Equal(t, models.ApplicationSubmitted, app.Status)
		assert.Equal(t, "zara.ali@example.com", app.ApplicantEmail)
		assert.True(t, app.EligibilityScore.IsPositive())
		assert.Equal(t, fixedNow, app.SubmittedAt)
		assert.Len(t, apps.created, 1)
	})

	t.Run("obtained above total", func(t *testing.T) {
		svc, _, _, _ := newAdmissionFixture(nil, 0)
		req := applicationRequest()
		req.InterObtained = dec("1200")
		_, err := svc.SubmitApplication(ctx, req)
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})

	t.Run("test marks come in pairs", func(t *testing.T) {
		svc, _, _, _ := newAdmissionFixture(nil, 0)
		req := applicationRequest()
		obtained := dec("70")
		req.TestObtained = &obtained
		_, err := svc.SubmitApplication(ctx, req)
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})

	t.Run("inactive program", func(t *testing.T) {
		svc, _, _, _ := newAdmissionFixture(nil, 0)
		req := applicationRequest()
		req.ProgramID = 2
		_, err := svc.SubmitApplication(ctx, req)
		assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	})
}

func TestGenerateMeritList(t *testing.T) {
	ctx := context.Background()
	pool := []*models.AdmissionApplication{
		pooled(1, "85", 880), // 80%
		pooled(2, "90", 935), // 85%
		pooled(3, "70", 770), // 70%
		pooled(4, "95", 550), // 50%, below the 60% threshold
	}
	svc, apps, mailer, actor := newAdmissionFixture(pool, 1)

	resp, err := svc.GenerateMeritList(ctx, actor, &dto.GenerateMeritListRequest{ProgramID: 1, Session: "2025"})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.AvailableSeats, "one of two seats is already taken")
	assert.Equal(t, 1, resp.Selected)
	assert.Equal(t, 2, resp.Waitlisted)
	assert.Equal(t, 1, resp.Rejected)

	require.Len(t, resp.Entries, 3)
	assert.Equal(t, int64(2), resp.Entries[0].ApplicationID)
	assert.Equal(t, models.ApplicationSelected, resp.Entries[0].Status)
	assert.Equal(t, int64(1), resp.Entries[1].ApplicationID)
	assert.Equal(t, 2, resp.Entries[1].Rank)
	assert.Equal(t, models.ApplicationWaitlisted, resp.Entries[2].Status)

	require.Len(t, apps.applied, 4)
	assert.Equal(t, int64(4), apps.applied[0].ApplicationID)
	assert.Equal(t, models.ApplicationRejected, apps.applied[0].Status)
	assert.Equal(t, RemarkBelowEligibility, *apps.applied[0].Remarks)

	assert.Len(t, mailer.decisions, 4)
}

func TestGenerateMeritListSeatOverride(t *testing.T) {
	ctx := context.Background()
	svc, _, _, actor := newAdmissionFixture([]*models.AdmissionApplication{pooled(1, "85", 880)}, 3)

	resp, err := svc.GenerateMeritList(ctx, actor, &dto.GenerateMeritListRequest{ProgramID: 1, Session: "2025"})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.AvailableSeats, "seats never go negative")
	assert.Equal(t, 1, resp.Waitlisted)

	seats := 10
	resp, err = svc.GenerateMeritList(ctx, actor, &dto.GenerateMeritListRequest{ProgramID: 1, Session: "2025", TotalSeats: &seats})
	require.NoError(t, err)
	assert.Equal(t, 7, resp.AvailableSeats)
	assert.Equal(t, 1, resp.Selected)
}

func TestGenerateMeritListStalePool(t *testing.T) {
	pool := []*models.AdmissionApplication{pooled(1, "85", 880), pooled(2, "90", 935)}
	svc, apps, mailer, actor := newAdmissionFixture(pool, 0)
	apps.applyErr = apperrors.NewTransitionError("application 1 changed while the merit list was generated")

	_, err := svc.GenerateMeritList(context.Background(), actor, &dto.GenerateMeritListRequest{ProgramID: 1, Session: "2025"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidStateTransition)
	assert.Empty(t, mailer.decisions, "no decision mail for a run that was not saved")
	assert.Equal(t, models.ApplicationSubmitted, pool[0].Status)
	assert.Nil(t, pool[0].MeritRank)
}

func TestGenerateMeritListOtherCampus(t *testing.T) {
	svc, _, _, actor := newAdmissionFixture(nil, 0)
	_, err := svc.GenerateMeritList(context.Background(), actor, &dto.GenerateMeritListRequest{ProgramID: 3, Session: "2025"})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}
