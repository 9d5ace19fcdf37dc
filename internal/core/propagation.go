package core

import (
	"context"
	"fmt"

	"github.com/sentinelcore/inehss/internal/model"
)

// Realtime group names. The publisher only sees opaque group strings.
const (
	GroupEventsLive   = "events_live"
	RegionGroupPrefix = "region_"
)

// Publisher is the abstract group-send primitive of the real-time fabric.
// Publishing is fire-and-forget: implementations must not block the caller
// and delivery is at-least-once, best-effort.
type Publisher interface {
	Publish(group string, payload any)
}

// EventNotice is the wire shape broadcast on every event create/update.
type EventNotice struct {
	Type string       `json:"type"`
	Data *model.Event `json:"data"`
}

// Trust scores by provenance: officer-submitted work is trusted, citizen
// reports start unverified.
const (
	trustOfficer = 1.0
	trustCitizen = 0.5
)

// Propagator keeps a report, its map event, and the real-time feed mutually
// consistent after submissions and report creations. Propagation is a derived
// projection: every method returns an error for the caller to log and
// deliberately discard, and never touches the durable write that triggered it.
type Propagator struct {
	db        DB
	reports   *ReportService
	events    *EventService
	templates *FormTemplateService
	pub       Publisher
}

func NewPropagator(db DB, reports *ReportService, events *EventService, templates *FormTemplateService, pub Publisher) *Propagator {
	return &Propagator{db: db, reports: reports, events: events, templates: templates, pub: pub}
}

// severityFromPriority maps report priority onto event severity.
func severityFromPriority(priority string) string {
	switch priority {
	case model.PriorityLow:
		return model.EventSeverityLow
	case model.PriorityMedium:
		return model.EventSeverityMedium
	case model.PriorityHigh:
		return model.EventSeverityHigh
	case model.PriorityCritical:
		return model.EventSeverityCritical
	default:
		return model.EventSeverityMedium
	}
}

// AfterSubmission runs the officer-path propagation once a submission has
// durably committed:
//
//  1. no linked report on the assignment → synthesize a resolved,
//     officer-originated report from the submission (patrol mode; persistent
//     assignments synthesize one per cycle, without rewriting the assignment),
//  2. submission location overwrites the report location,
//  3. event sync: update the linked event's location, or materialize a
//     verified trust-1.0 event and link it back.
func (p *Propagator) AfterSubmission(ctx context.Context, asg *model.Assignment, sub *model.Submission) error {
	rep, err := p.targetReport(ctx, asg, sub)
	if err != nil {
		return err
	}

	if sub.HasLocation() {
		if err := p.reports.SetLocation(ctx, rep.ID, sub.Latitude, sub.Longitude); err != nil {
			return err
		}
		rep.Latitude = sub.Latitude
		rep.Longitude = sub.Longitude
	}

	if rep.EventID != nil {
		evt, err := p.events.UpdateLocation(ctx, *rep.EventID, rep.Latitude, rep.Longitude)
		if err != nil {
			return err
		}
		p.pub.Publish(GroupEventsLive, EventNotice{Type: "event_updated", Data: evt})
		return nil
	}

	// First materialization requires a location; until one arrives there is
	// nothing to put on the map.
	if !rep.HasLocation() {
		return nil
	}
	return p.materializeEvent(ctx, rep, model.EventVerified, trustOfficer)
}

// targetReport resolves or synthesizes the report this submission cycle
// propagates into.
func (p *Propagator) targetReport(ctx context.Context, asg *model.Assignment, sub *model.Submission) (*model.Report, error) {
	if asg.ReportID != nil {
		return p.reports.GetByID(ctx, *asg.ReportID)
	}

	reporter := "Officer " + sub.SubmittedBy
	var username string
	if err := p.db.QueryRow(ctx,
		`SELECT username FROM users WHERE id = $1`, sub.SubmittedBy,
	).Scan(&username); err == nil && username != "" {
		reporter = "Officer " + username
	}

	rep := &model.Report{
		FormTemplateID: asg.InspectionFormID,
		Data:           sub.Data,
		Latitude:       sub.Latitude,
		Longitude:      sub.Longitude,
		Status:         model.ReportResolved,
		Priority:       model.PriorityMedium,
		ReporterName:   reporter,
	}
	if err := p.reports.Create(ctx, rep); err != nil {
		return nil, err
	}
	return rep, nil
}

// MaterializeForReport runs the citizen-path event materialization after a
// public report has durably committed. Citizen events start pending at trust
// 0.5, and a report with no location gets no event at all; propagation
// resumes once a later officer submission supplies one.
func (p *Propagator) MaterializeForReport(ctx context.Context, rep *model.Report) error {
	if !rep.HasLocation() {
		return nil
	}
	return p.materializeEvent(ctx, rep, model.EventPending, trustCitizen)
}

// materializeEvent is the single event-creation rule shared by both paths.
// The created event is linked back onto the report; once linked it is only
// ever updated in place.
func (p *Propagator) materializeEvent(ctx context.Context, rep *model.Report, status string, trustScore float64) error {
	tmpl, err := p.templates.GetByID(ctx, rep.FormTemplateID)
	if err != nil {
		return err
	}

	evt := &model.Event{
		Title: fmt.Sprintf("%s - %s", tmpl.Name, rep.TrackingCode),
		Description: fmt.Sprintf("Hazard report %s.\n\nType: %s\nTracking: %s\nAddress: %s",
			rep.TrackingCode, tmpl.Name, rep.TrackingCode, rep.Address),
		Category:   tmpl.EventCategory,
		Severity:   severityFromPriority(rep.Priority),
		Status:     status,
		Latitude:   rep.Latitude,
		Longitude:  rep.Longitude,
		TrustScore: trustScore,
	}
	if err := p.events.Create(ctx, evt); err != nil {
		return err
	}
	if err := p.reports.LinkEvent(ctx, rep.ID, evt.ID); err != nil {
		return err
	}
	rep.EventID = &evt.ID

	p.pub.Publish(GroupEventsLive, EventNotice{Type: "event_created", Data: evt})
	return nil
}
