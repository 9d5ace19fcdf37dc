package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sentinelcore/inehss/internal/model"
)

func newPropagatorWithMocks(db *mockDB, pub Publisher) *Propagator {
	reports := NewReportService(db, "INH")
	events := NewEventService(db)
	templates := NewFormTemplateService(db)
	return NewPropagator(db, reports, events, templates, pub)
}

func scanReport(id, trackingCode, templateID, status, priority string, lat, lng *float64, eventID *string) func(dest ...any) error {
	return func(dest ...any) error {
		*(dest[0].(*string)) = id
		*(dest[1].(*string)) = trackingCode
		*(dest[2].(*string)) = templateID
		*(dest[4].(**float64)) = lat
		*(dest[5].(**float64)) = lng
		*(dest[7].(*string)) = status
		*(dest[8].(*string)) = priority
		*(dest[14].(**string)) = eventID
		return nil
	}
}

func scanTemplate(id, name, category string) func(dest ...any) error {
	return func(dest ...any) error {
		*(dest[0].(*string)) = id
		*(dest[1].(*string)) = name
		*(dest[8].(*string)) = category
		return nil
	}
}

func scanEvent(id string) func(dest ...any) error {
	return func(dest ...any) error {
		*(dest[0].(*string)) = id
		return nil
	}
}

func TestSeverityFromPriority(t *testing.T) {
	assert.Equal(t, model.EventSeverityLow, severityFromPriority(model.PriorityLow))
	assert.Equal(t, model.EventSeverityMedium, severityFromPriority(model.PriorityMedium))
	assert.Equal(t, model.EventSeverityHigh, severityFromPriority(model.PriorityHigh))
	assert.Equal(t, model.EventSeverityCritical, severityFromPriority(model.PriorityCritical))
	assert.Equal(t, model.EventSeverityMedium, severityFromPriority("unheard-of"))
}

// Officer submission against a report that already has an event: the event's
// location follows the submission, and an update notice goes out.
func TestPropagator_AfterSubmission_UpdatesLinkedEvent(t *testing.T) {
	db := &mockDB{}
	pub := &capturePublisher{}
	p := newPropagatorWithMocks(db, pub)
	ctx := context.Background()

	lat, lng := 59.91, 10.75
	reportID := "report-1"
	eventID := "event-1"

	db.On("QueryRow", ctx, sqlContains("FROM reports WHERE id"), mock.Anything).
		Return(&mockRow{scanFunc: scanReport("report-1", "INH-20260831-0001", "form-1",
			model.ReportInProgress, model.PriorityHigh, nil, nil, &eventID)}).Once()
	db.On("Exec", ctx, sqlContains("UPDATE reports SET latitude"), mock.Anything).Return(okTag(), nil).Once()
	db.On("Exec", ctx, sqlContains("UPDATE events SET latitude"), mock.Anything).Return(okTag(), nil).Once()
	db.On("QueryRow", ctx, sqlContains("FROM events WHERE id"), mock.Anything).
		Return(&mockRow{scanFunc: scanEvent("event-1")}).Once()

	asg := &model.Assignment{ID: "asg-1", ReportID: &reportID, OfficerID: "officer-1"}
	sub := &model.Submission{ID: "sub-1", AssignmentID: "asg-1", Latitude: &lat, Longitude: &lng, SubmittedBy: "officer-1"}

	err := p.AfterSubmission(ctx, asg, sub)
	require.NoError(t, err)

	require.Len(t, pub.published, 1)
	assert.Equal(t, GroupEventsLive, pub.published[0].Group)
	notice := pub.published[0].Payload.(EventNotice)
	assert.Equal(t, "event_updated", notice.Type)
	assert.Equal(t, "event-1", notice.Data.ID)
	db.AssertExpectations(t)
}

// Officer submission against a located report with no event yet: a verified
// trust-1.0 event materializes and is linked back.
func TestPropagator_AfterSubmission_MaterializesVerifiedEvent(t *testing.T) {
	db := &mockDB{}
	pub := &capturePublisher{}
	p := newPropagatorWithMocks(db, pub)
	ctx := context.Background()

	lat, lng := 59.91, 10.75
	reportID := "report-1"

	db.On("QueryRow", ctx, sqlContains("FROM reports WHERE id"), mock.Anything).
		Return(&mockRow{scanFunc: scanReport("report-1", "INH-20260831-0001", "form-1",
			model.ReportInProgress, model.PriorityCritical, nil, nil, nil)}).Once()
	db.On("Exec", ctx, sqlContains("UPDATE reports SET latitude"), mock.Anything).Return(okTag(), nil).Once()
	db.On("QueryRow", ctx, sqlContains("FROM form_templates WHERE id"), mock.Anything).
		Return(&mockRow{scanFunc: scanTemplate("form-1", "Gas Leak Inspection", "hazmat")}).Once()

	var insertedSeverity, insertedStatus string
	var insertedTrust float64
	db.On("Exec", ctx, sqlContains("INSERT INTO events"), mock.Anything).
		Run(func(args mock.Arguments) {
			values := args.Get(2).([]any)
			insertedSeverity = values[4].(string)
			insertedStatus = values[5].(string)
			insertedTrust = values[10].(float64)
		}).Return(okTag(), nil).Once()
	db.On("Exec", ctx, sqlContains("UPDATE reports SET event_id"), mock.Anything).Return(okTag(), nil).Once()

	asg := &model.Assignment{ID: "asg-1", ReportID: &reportID, OfficerID: "officer-1"}
	sub := &model.Submission{ID: "sub-1", AssignmentID: "asg-1", Latitude: &lat, Longitude: &lng, SubmittedBy: "officer-1"}

	err := p.AfterSubmission(ctx, asg, sub)
	require.NoError(t, err)

	assert.Equal(t, model.EventSeverityCritical, insertedSeverity)
	assert.Equal(t, model.EventVerified, insertedStatus)
	assert.Equal(t, 1.0, insertedTrust)

	require.Len(t, pub.published, 1)
	notice := pub.published[0].Payload.(EventNotice)
	assert.Equal(t, "event_created", notice.Type)
	assert.Equal(t, "Gas Leak Inspection - INH-20260831-0001", notice.Data.Title)
	assert.Equal(t, "hazmat", notice.Data.Category)
	db.AssertExpectations(t)
}

// Patrol submission: no linked report, so a resolved officer-originated one
// is synthesized and the event path runs against it.
func TestPropagator_AfterSubmission_SynthesizesPatrolReport(t *testing.T) {
	db := &mockDB{}
	pub := &capturePublisher{}
	p := newPropagatorWithMocks(db, pub)
	ctx := context.Background()

	lat, lng := 59.91, 10.75

	db.On("QueryRow", ctx, sqlContains("username FROM users"), mock.Anything).
		Return(&mockRow{scanFunc: func(dest ...any) error {
			*(dest[0].(*string)) = "jensen"
			return nil
		}}).Once()

	var insertedStatus, insertedReporter string
	db.On("Exec", ctx, sqlContains("INSERT INTO reports"), mock.Anything).
		Run(func(args mock.Arguments) {
			values := args.Get(2).([]any)
			insertedStatus = values[7].(string)
			insertedReporter = values[9].(string)
		}).Return(okTag(), nil).Once()
	db.On("QueryRow", ctx, sqlContains("FROM form_templates WHERE id"), mock.Anything).
		Return(&mockRow{scanFunc: scanTemplate("form-2", "Patrol Inspection", "patrol")}).Once()
	db.On("Exec", ctx, sqlContains("INSERT INTO events"), mock.Anything).Return(okTag(), nil).Once()
	db.On("Exec", ctx, sqlContains("UPDATE reports SET event_id"), mock.Anything).Return(okTag(), nil).Once()

	asg := &model.Assignment{ID: "asg-1", OfficerID: "officer-1", InspectionFormID: "form-2", IsPersistent: true}
	sub := &model.Submission{ID: "sub-1", AssignmentID: "asg-1", Latitude: &lat, Longitude: &lng,
		SubmittedBy: "officer-1", Data: []byte(`{"observation":"all clear"}`)}

	err := p.AfterSubmission(ctx, asg, sub)
	require.NoError(t, err)

	assert.Equal(t, model.ReportResolved, insertedStatus)
	assert.Equal(t, "Officer jensen", insertedReporter)
	// The assignment row is untouched; each patrol cycle synthesizes afresh.
	assert.Nil(t, asg.ReportID)
	db.AssertExpectations(t)
}

func TestPropagator_AfterSubmission_NoLocationNoEvent(t *testing.T) {
	db := &mockDB{}
	pub := &capturePublisher{}
	p := newPropagatorWithMocks(db, pub)
	ctx := context.Background()

	reportID := "report-1"
	db.On("QueryRow", ctx, sqlContains("FROM reports WHERE id"), mock.Anything).
		Return(&mockRow{scanFunc: scanReport("report-1", "INH-20260831-0001", "form-1",
			model.ReportInProgress, model.PriorityMedium, nil, nil, nil)}).Once()

	asg := &model.Assignment{ID: "asg-1", ReportID: &reportID, OfficerID: "officer-1"}
	sub := &model.Submission{ID: "sub-1", AssignmentID: "asg-1", SubmittedBy: "officer-1"}

	err := p.AfterSubmission(ctx, asg, sub)
	require.NoError(t, err)
	assert.Empty(t, pub.published)
	db.AssertExpectations(t)
}

// Citizen path: a located public report gets a pending trust-0.5 event.
func TestPropagator_MaterializeForReport_CitizenPending(t *testing.T) {
	db := &mockDB{}
	pub := &capturePublisher{}
	p := newPropagatorWithMocks(db, pub)
	ctx := context.Background()

	db.On("QueryRow", ctx, sqlContains("FROM form_templates WHERE id"), mock.Anything).
		Return(&mockRow{scanFunc: scanTemplate("form-1", "Pothole Report", "roads")}).Once()

	var insertedStatus string
	var insertedTrust float64
	db.On("Exec", ctx, sqlContains("INSERT INTO events"), mock.Anything).
		Run(func(args mock.Arguments) {
			values := args.Get(2).([]any)
			insertedStatus = values[5].(string)
			insertedTrust = values[10].(float64)
		}).Return(okTag(), nil).Once()
	db.On("Exec", ctx, sqlContains("UPDATE reports SET event_id"), mock.Anything).Return(okTag(), nil).Once()

	lat, lng := 59.91, 10.75
	rep := &model.Report{ID: "report-1", TrackingCode: "INH-20260831-0002",
		FormTemplateID: "form-1", Priority: model.PriorityLow, Latitude: &lat, Longitude: &lng}

	err := p.MaterializeForReport(ctx, rep)
	require.NoError(t, err)

	assert.Equal(t, model.EventPending, insertedStatus)
	assert.Equal(t, 0.5, insertedTrust)
	require.NotNil(t, rep.EventID)

	require.Len(t, pub.published, 1)
	assert.Equal(t, "event_created", pub.published[0].Payload.(EventNotice).Type)
	db.AssertExpectations(t)
}

// A report without coordinates stays off the map entirely.
func TestPropagator_MaterializeForReport_NoLocationSkips(t *testing.T) {
	db := &mockDB{}
	pub := &capturePublisher{}
	p := newPropagatorWithMocks(db, pub)

	rep := &model.Report{ID: "report-1", FormTemplateID: "form-1"}
	err := p.MaterializeForReport(context.Background(), rep)
	require.NoError(t, err)
	assert.Nil(t, rep.EventID)
	assert.Empty(t, pub.published)
	db.AssertNotCalled(t, "Exec", mock.Anything, mock.Anything, mock.Anything)
}
