package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sentinelcore/inehss/internal/model"
)

func TestReportService_Create_Defaults(t *testing.T) {
	db := &mockDB{}
	svc := NewReportService(db, "INH")
	ctx := context.Background()

	db.On("Exec", ctx, sqlContains("INSERT INTO reports"), mock.Anything).Return(okTag(), nil).Once()

	rep := &model.Report{FormTemplateID: "form-1"}
	err := svc.Create(ctx, rep)
	require.NoError(t, err)

	assert.NotEmpty(t, rep.ID)
	assert.True(t, strings.HasPrefix(rep.TrackingCode, "INH-"))
	assert.Equal(t, model.ReportNew, rep.Status)
	assert.Equal(t, model.PriorityMedium, rep.Priority)
	assert.JSONEq(t, "{}", string(rep.Data))
	db.AssertExpectations(t)
}

func TestReportService_Create_KeepsExplicitFields(t *testing.T) {
	db := &mockDB{}
	svc := NewReportService(db, "INH")
	ctx := context.Background()

	db.On("Exec", ctx, sqlContains("INSERT INTO reports"), mock.Anything).Return(okTag(), nil).Once()

	rep := &model.Report{
		FormTemplateID: "form-1",
		Status:         model.ReportResolved,
		Priority:       model.PriorityHigh,
		Data:           []byte(`{"note":"synthesized"}`),
	}
	err := svc.Create(ctx, rep)
	require.NoError(t, err)
	assert.Equal(t, model.ReportResolved, rep.Status)
	assert.Equal(t, model.PriorityHigh, rep.Priority)
}

func TestReportService_Create_InsertError(t *testing.T) {
	db := &mockDB{}
	svc := NewReportService(db, "INH")
	ctx := context.Background()

	db.On("Exec", ctx, sqlContains("INSERT INTO reports"), mock.Anything).
		Return(pgconn.CommandTag{}, errors.New("unique violation")).Once()

	err := svc.Create(ctx, &model.Report{FormTemplateID: "form-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create report")
}

func TestReportService_GetByTrackingCode(t *testing.T) {
	db := &mockDB{}
	svc := NewReportService(db, "INH")
	ctx := context.Background()

	db.On("QueryRow", ctx, sqlContains("WHERE tracking_code"), mock.Anything).
		Return(&mockRow{scanFunc: scanReport("report-1", "INH-20260831-0001", "form-1",
			model.ReportNew, model.PriorityMedium, nil, nil, nil)}).Once()

	rep, err := svc.GetByTrackingCode(ctx, "INH-20260831-0001")
	require.NoError(t, err)
	assert.Equal(t, "report-1", rep.ID)
	db.AssertExpectations(t)
}

func TestReportService_GetByID_NotFound(t *testing.T) {
	db := &mockDB{}
	svc := NewReportService(db, "INH")
	ctx := context.Background()

	db.On("QueryRow", ctx, sqlContains("FROM reports WHERE id"), mock.Anything).
		Return(&mockRow{scanFunc: func(dest ...any) error {
			return errors.New("no rows in result set")
		}}).Once()

	_, err := svc.GetByID(ctx, "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReportService_List_FiltersAndPagination(t *testing.T) {
	db := &mockDB{}
	svc := NewReportService(db, "INH")
	ctx := context.Background()

	rows := newMockRows(
		scanReport("report-1", "INH-20260831-0001", "form-1", model.ReportNew, model.PriorityHigh, nil, nil, nil),
		scanReport("report-2", "INH-20260831-0002", "form-1", model.ReportNew, model.PriorityHigh, nil, nil, nil),
		scanReport("report-3", "INH-20260831-0003", "form-1", model.ReportNew, model.PriorityHigh, nil, nil, nil),
	)
	db.On("Query", ctx, sqlContains("FROM reports"), mock.Anything).Return(rows, nil).Once()

	reports, hasMore, err := svc.List(ctx, ReportFilters{Status: model.ReportNew, Priority: model.PriorityHigh}, 2, "")
	require.NoError(t, err)
	assert.True(t, hasMore)
	assert.Len(t, reports, 2)
	db.AssertExpectations(t)
}

func TestReportService_UpdateStatus_StaffOnly(t *testing.T) {
	db := &mockDB{}
	svc := NewReportService(db, "INH")

	err := svc.UpdateStatus(context.Background(), "report-1", model.ReportClosed, officerActor)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestReportService_UpdateStatus_UnknownStatus(t *testing.T) {
	db := &mockDB{}
	svc := NewReportService(db, "INH")

	err := svc.UpdateStatus(context.Background(), "report-1", "vanished", staffActor)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestReportService_UpdateStatus_Success(t *testing.T) {
	db := &mockDB{}
	svc := NewReportService(db, "INH")
	ctx := context.Background()

	db.On("Exec", ctx, sqlContains("UPDATE reports SET status"), mock.Anything).Return(okTag(), nil).Once()

	err := svc.UpdateStatus(ctx, "report-1", model.ReportClosed, staffActor)
	require.NoError(t, err)
	db.AssertExpectations(t)
}

func TestReportService_Delete_ProtectedWhileReferenced(t *testing.T) {
	db := &mockDB{}
	svc := NewReportService(db, "INH")
	ctx := context.Background()

	db.On("QueryRow", ctx, sqlContains("COUNT(*) FROM assignments"), mock.Anything).
		Return(&mockRow{scanFunc: func(dest ...any) error {
			*(dest[0].(*int)) = 2
			return nil
		}}).Once()

	err := svc.Delete(ctx, "report-1", staffActor)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	db.AssertNotCalled(t, "Exec", mock.Anything, mock.Anything, mock.Anything)
}

func TestReportService_Delete_Success(t *testing.T) {
	db := &mockDB{}
	svc := NewReportService(db, "INH")
	ctx := context.Background()

	db.On("QueryRow", ctx, sqlContains("COUNT(*) FROM assignments"), mock.Anything).
		Return(&mockRow{scanFunc: func(dest ...any) error {
			*(dest[0].(*int)) = 0
			return nil
		}}).Once()
	db.On("Exec", ctx, sqlContains("DELETE FROM reports"), mock.Anything).
		Return(pgconn.NewCommandTag("DELETE 1"), nil).Once()

	err := svc.Delete(ctx, "report-1", staffActor)
	require.NoError(t, err)
	db.AssertExpectations(t)
}

func TestReportService_Delete_NonStaffForbidden(t *testing.T) {
	db := &mockDB{}
	svc := NewReportService(db, "INH")

	err := svc.Delete(context.Background(), "report-1", officerActor)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrForbidden)
}
